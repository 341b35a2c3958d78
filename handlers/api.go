package handlers

import (
	"encoding/json"
	"net/http"

	"bookhive/auth"
	"bookhive/i18n"
)

type APIResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func sendJSONResponse(w http.ResponseWriter, status int, response APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

// requireAPI applies the same capability check as auth.Require but answers
// with JSON 401 instead of redirecting to a login page.
func requireAPI(c auth.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !c.Allows(auth.IdentityFrom(r.Context())) {
				lang := i18n.DetectLanguage(r)
				sendJSONResponse(w, http.StatusUnauthorized, APIResponse{Status: "error", Message: i18n.T(lang, "Unauthorized")})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (h *Handler) APIListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.books.List(r.Context())
	if err != nil {
		h.apiServerError(w, r, "list books", err)
		return
	}
	sendJSONResponse(w, http.StatusOK, APIResponse{Status: "success", Data: books})
}

func (h *Handler) APISearchBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.books.Search(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		h.apiServerError(w, r, "search books", err)
		return
	}
	sendJSONResponse(w, http.StatusOK, APIResponse{Status: "success", Data: books})
}

func (h *Handler) apiServerError(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logError(r, op, err)
	lang := i18n.DetectLanguage(r)
	sendJSONResponse(w, http.StatusInternalServerError, APIResponse{Status: "error", Message: i18n.T(lang, "InternalServerError")})
}
