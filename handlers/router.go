package handlers

import (
	"net/http"
	"time"

	"bookhive/auth"

	"github.com/dchest/captcha"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

// NewRouter wires every route behind the capability it requires. CSRF
// protection is added by the caller around the returned handler.
func (h *Handler) NewRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggerMiddleware(h.logger))
	r.Use(RecoveryMiddleware(h.logger))
	r.Use(SecurityHeadersMiddleware)
	if h.cfg.RequestsPerMinute > 0 {
		r.Use(httprate.LimitByIP(h.cfg.RequestsPerMinute, time.Minute))
	}
	r.Use(h.sessions.Middleware)

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(h.cfg.StaticDir))))
	r.Handle("/captcha/*", captcha.Server(captcha.StdWidth, captcha.StdHeight))

	// auth.Public
	r.Get("/", h.Index)
	r.Get("/login/{role}", h.Login)
	r.Post("/login/{role}", h.Login)
	r.Get("/signup", h.Signup)
	r.Post("/signup", h.Signup)
	r.Get("/logout", h.Logout)

	r.Group(func(r chi.Router) {
		r.Use(auth.Require(auth.AdminOnly))
		r.Get("/admin", h.AdminDashboard)
		r.Get("/admin/add", h.AddBook)
		r.Post("/admin/add", h.AddBook)
		r.Get("/admin/issue", h.IssueBook)
		r.Post("/admin/issue", h.IssueBook)
		r.Get("/admin/return", h.ReturnBook)
		r.Post("/admin/return", h.ReturnBook)
		r.Get("/admin/delete", h.DeleteBook)
		r.Post("/admin/delete", h.DeleteBook)
		r.Get("/admin/export", h.ExportBooks)
		r.Get("/admin/import", h.ImportBooks)
		r.Post("/admin/import", h.ImportBooks)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.Require(auth.StudentOnly))
		r.Get("/student", h.StudentDashboard)
		r.Get("/search", h.Search)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.With(requireAPI(auth.AdminOnly)).Get("/books", h.APIListBooks)
		r.With(requireAPI(auth.StudentOnly)).Get("/search", h.APISearchBooks)
	})

	return r
}
