package address

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

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/streets", h.searchStreets)
}

func (h *Handler) searchStreets(w http.ResponseWriter, r *http.Request) {
	var req struct {
		City  string `json:"city"`
		Query string `json:"query"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, map[string]interface{}{
		"streets": h.service.SearchStreets(r.Context(), req.City, req.Query),
	})
}
