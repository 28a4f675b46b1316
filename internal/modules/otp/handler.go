package otp

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
	router.Post("/send", h.send)
	router.Post("/verify", h.verify)
}

func (h *Handler) send(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}

	result, err := h.service.Send(r.Context(), req.Token)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, map[string]interface{}{
		"success":            true,
		"sent_to":            result.SentTo,
		"expires_in_seconds": result.ExpiresInSeconds,
	})
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
		Code  string `json:"code"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}

	if err := h.service.Verify(r.Context(), req.Token, req.Code); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, map[string]interface{}{"success": true, "verified": true})
}
