package auth

import (
	"net/http"

	"github.com/georgemunganga/vendor-portal/internal/pkg/apperr"
	"github.com/georgemunganga/vendor-portal/internal/pkg/httpx"
	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the public login route.
func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/login", h.login)
}

// RegisterProtectedRoutes mounts routes that need an authenticated admin.
func (h *Handler) RegisterProtectedRoutes(router chi.Router) {
	router.Get("/me", h.me)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}

	token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	httpx.Respond(w, http.StatusOK, map[string]string{"token": token})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		httpx.Error(w, apperr.New(apperr.Unauthorized, "authentication required"))
		return
	}
	httpx.Respond(w, http.StatusOK, map[string]interface{}{
		"id":    claims.Subject,
		"email": claims.Email,
		"role":  claims.Role,
	})
}
