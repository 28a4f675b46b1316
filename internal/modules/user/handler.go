package user

import (
	"net/http"

	"github.com/georgemunganga/vendor-portal/internal/pkg/httpx"
	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the account routes on an authenticated admin router.
// Accounts are created with portalctl, so there is no registration route.
func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/users", h.listUsers)
	router.Get("/users/{id}", h.getUser)
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	if users == nil {
		users = []*User{}
	}
	httpx.Respond(w, http.StatusOK, users)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	httpx.Respond(w, http.StatusOK, user)
}
