package auth

import "net/http"

// Capability is what a route requires of the caller.
type Capability int

const (
	Public Capability = iota
	AnySession
	AdminOnly
	StudentOnly
)

func (c Capability) Allows(id Identity) bool {
	switch c {
	case Public:
		return true
	case AnySession:
		return id.Authenticated()
	case AdminOnly:
		return id.IsAdmin()
	case StudentOnly:
		return id.IsStudent()
	}
	return false
}

// LoginPath is where a caller lacking the capability is sent.
func (c Capability) LoginPath() string {
	switch c {
	case AdminOnly:
		return "/login/admin"
	case StudentOnly:
		return "/login/student"
	}
	return "/"
}

// Require redirects requests whose identity (see Sessions.Middleware) lacks c.
func Require(c Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !c.Allows(IdentityFrom(r.Context())) {
				http.Redirect(w, r, c.LoginPath(), http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
