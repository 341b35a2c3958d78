package auth

import (
	"net/http"

	"bookhive/crypto"

	"github.com/gorilla/sessions"
)

const SessionName = "bookhive-session"

// Sessions keeps the authenticated identity in a signed and encrypted cookie.
type Sessions struct {
	store *sessions.CookieStore
}

func NewSessions(keys crypto.SessionKeys, secure bool) *Sessions {
	store := sessions.NewCookieStore(keys.Auth, keys.Encryption)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Sessions{store: store}
}

// Load returns the identity stored in the request's session cookie. A
// missing, expired or tampered cookie yields the anonymous identity.
func (s *Sessions) Load(r *http.Request) Identity {
	session, err := s.store.Get(r, SessionName)
	if err != nil {
		return Identity{}
	}
	id, _ := session.Values["userID"].(int)
	role, _ := session.Values["role"].(string)
	username, _ := session.Values["username"].(string)
	if id == 0 || role == "" {
		return Identity{}
	}
	return Identity{UserID: id, Username: username, Role: role}
}

// SetSession replaces whatever the session held with the given identity.
func (s *Sessions) SetSession(w http.ResponseWriter, r *http.Request, id Identity) error {
	session, _ := s.store.Get(r, SessionName)
	session.Values = map[any]any{
		"userID":   id.UserID,
		"role":     id.Role,
		"username": id.Username,
	}
	return session.Save(r, w)
}

func (s *Sessions) ClearSession(w http.ResponseWriter, r *http.Request) error {
	session, _ := s.store.Get(r, SessionName)
	session.Values = map[any]any{}
	session.Options.MaxAge = -1
	return session.Save(r, w)
}

// Middleware loads the session once per request and carries the identity in the request context.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), s.Load(r))))
	})
}
