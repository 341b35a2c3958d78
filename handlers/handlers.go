package handlers

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"net/http"

	"bookhive/auth"
	"bookhive/config"
	"bookhive/db"
	"bookhive/i18n"
	"bookhive/models"
	"bookhive/templates"

	"github.com/dchest/captcha"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// BookRepository is the catalog as the handlers use it.
type BookRepository interface {
	Add(ctx context.Context, b models.Book) error
	Get(ctx context.Context, id int64) (models.Book, error)
	List(ctx context.Context) ([]models.Book, error)
	SetAvailability(ctx context.Context, id int64, available bool) error
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, query string) ([]models.Book, error)
	Import(ctx context.Context, books []models.Book) (added, skipped int, err error)
}

type Handler struct {
	cfg      config.Config
	books    BookRepository
	auth     *auth.Service
	sessions *auth.Sessions
	logger   *zap.Logger

	loginLimiter  *rateLimiter
	signupLimiter *rateLimiter
}

func New(cfg config.Config, books BookRepository, authService *auth.Service, sessions *auth.Sessions, logger *zap.Logger) *Handler {
	return &Handler{
		cfg:           cfg,
		books:         books,
		auth:          authService,
		sessions:      sessions,
		logger:        logger,
		loginLimiter:  newRateLimiter(),
		signupLimiter: newRateLimiter(),
	}
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.renderTemplate(w, r, "role_select.html", nil)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	role := chi.URLParam(r, "role")
	if !models.ValidRole(role) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	data := map[string]any{"Role": role}
	if r.Method != http.MethodPost {
		h.renderTemplate(w, r, "login.html", data)
		return
	}

	lang := i18n.DetectLanguage(r)
	ip := getClientIP(r)
	if !h.loginLimiter.Allow(ip) {
		data["Error"] = i18n.T(lang, "TooManyAttempts")
		h.renderStatus(w, r, http.StatusTooManyRequests, "login.html", data)
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")
	data["Username"] = username

	if err := auth.ValidateCredentials(username, password); err != nil {
		data["Error"] = i18n.T(lang, "MissingCredentials")
		h.renderStatus(w, r, http.StatusBadRequest, "login.html", data)
		return
	}

	identity, err := h.auth.Authenticate(r.Context(), username, password, role)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		h.loginLimiter.RecordFailure(ip)
		h.logger.Info("login failed",
			zap.String("request_id", GetRequestID(r.Context())),
			zap.String("username", username),
			zap.String("role", role),
		)
		data["Error"] = i18n.T(lang, "InvalidCredentials")
		h.renderStatus(w, r, http.StatusUnauthorized, "login.html", data)
		return
	}
	if err != nil {
		h.serverError(w, r, "authenticate", err)
		return
	}

	h.loginLimiter.Reset(ip)
	if err := h.sessions.SetSession(w, r, identity); err != nil {
		h.serverError(w, r, "save session", err)
		return
	}

	if role == models.RoleAdmin {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/student", http.StatusSeeOther)
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{}
	if r.Method != http.MethodPost {
		h.renderSignup(w, r, http.StatusOK, data)
		return
	}

	lang := i18n.DetectLanguage(r)
	ip := getClientIP(r)
	if !h.signupLimiter.Allow(ip) {
		data["Message"] = i18n.T(lang, "TooManyAttempts")
		h.renderSignup(w, r, http.StatusTooManyRequests, data)
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")
	data["Username"] = username

	if h.cfg.SignupCaptcha && !captcha.VerifyString(r.FormValue("captcha_id"), r.FormValue("captcha_solution")) {
		data["Message"] = i18n.T(lang, "InvalidCaptcha")
		h.renderSignup(w, r, http.StatusBadRequest, data)
		return
	}

	_, err := h.auth.CreateStudent(r.Context(), username, password)
	switch {
	case errors.Is(err, auth.ErrMissingCredentials):
		data["Message"] = i18n.T(lang, "MissingCredentials")
		h.renderSignup(w, r, http.StatusBadRequest, data)
		return
	case errors.Is(err, db.ErrUsernameTaken):
		data["Message"] = i18n.T(lang, "UsernameAlreadyExists")
		h.renderSignup(w, r, http.StatusConflict, data)
		return
	case err != nil:
		h.serverError(w, r, "create student", err)
		return
	}

	// Count account creations per IP
	h.signupLimiter.RecordFailure(ip)
	h.logger.Info("student account created",
		zap.String("request_id", GetRequestID(r.Context())),
		zap.String("username", username),
	)
	http.Redirect(w, r, "/login/student", http.StatusSeeOther)
}

func (h *Handler) renderSignup(w http.ResponseWriter, r *http.Request, status int, data map[string]any) {
	if h.cfg.SignupCaptcha {
		data["CaptchaID"] = captcha.New()
	}
	h.renderStatus(w, r, status, "signup.html", data)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.ClearSession(w, r); err != nil {
		h.logger.Warn("clear session", zap.Error(err))
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	books, err := h.books.List(r.Context())
	if err != nil {
		h.serverError(w, r, "list books", err)
		return
	}
	h.renderTemplate(w, r, "admin.html", map[string]any{"Books": books})
}

func (h *Handler) StudentDashboard(w http.ResponseWriter, r *http.Request) {
	h.renderTemplate(w, r, "student.html", nil)
}

func (h *Handler) renderTemplate(w http.ResponseWriter, r *http.Request, name string, data map[string]any) {
	h.renderStatus(w, r, http.StatusOK, name, data)
}

func (h *Handler) renderStatus(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) {
	lang := i18n.DetectLanguage(r)

	funcMap := template.FuncMap{
		"T": func(key string) string {
			return i18n.T(lang, key)
		},
	}

	tmpl, err := template.New(name).Funcs(funcMap).ParseFS(templates.FS, "layout.html", "partials.html", name)
	if err != nil {
		h.serverError(w, r, "parse template "+name, err)
		return
	}

	if data == nil {
		data = map[string]any{}
	}
	data["AppName"] = h.cfg.AppName
	data["Lang"] = lang
	data["csrfField"] = csrf.TemplateField(r)
	data["Identity"] = auth.IdentityFrom(r.Context())

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		h.serverError(w, r, "execute template "+name, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logError(r, op, err)
	http.Error(w, i18n.T(i18n.DetectLanguage(r), "InternalServerError"), http.StatusInternalServerError)
}
