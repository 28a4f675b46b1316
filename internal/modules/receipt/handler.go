package receipt

import (
	"io"
	"mime"
	"net/http"

	"github.com/georgemunganga/vendor-portal/internal/modules/auth"
	"github.com/georgemunganga/vendor-portal/internal/pkg/httpx"
	"github.com/georgemunganga/vendor-portal/internal/pkg/money"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	service        Service
	maxUploadBytes int64
	logger         *zap.Logger
}

func NewHandler(service Service, maxUploadBytes int64, logger *zap.Logger) *Handler {
	return &Handler{service: service, maxUploadBytes: maxUploadBytes, logger: logger}
}

// RegisterRoutes mounts the token-gated receipt routes.
func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/", h.fetch)
	router.Post("/upload", h.upload)
}

// RegisterAdminRoutes mounts receipt review on an authenticated router.
func (h *Handler) RegisterAdminRoutes(router chi.Router) {
	router.Get("/requests/{id}/receipts", h.listForRequest)
	router.Patch("/receipts/{id}", h.setStatus)
	router.Get("/receipts/{id}/file", h.download)
}

func (h *Handler) fetch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}

	listing, err := h.service.Fetch(r.Context(), req.Token)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"vendor":   listing.Vendor,
		"receipts": listing.Receipts,
	})
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	if err := httpx.ParseMultipart(w, r, h.maxUploadBytes); err != nil {
		httpx.Error(w, err)
		return
	}
	file, err := httpx.FormFile(r, "file")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	if file == nil {
		httpx.BadRequest(w, "יש לצרף קובץ")
		return
	}

	in := Upload{
		Token:       r.FormValue("token"),
		FileName:    file.Name,
		ContentType: file.ContentType,
		Data:        file.Data,
		Description: r.FormValue("description"),
	}
	if in.Amount, err = money.Parse(r.FormValue("amount")); err != nil {
		httpx.Error(w, err)
		return
	}

	rc, err := h.service.Upload(r.Context(), in)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusCreated, map[string]interface{}{"success": true, "receipt": rc})
}

func (h *Handler) listForRequest(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	receipts, err := h.service.ListForRequest(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	if receipts == nil {
		receipts = []*Receipt{}
	}
	httpx.Respond(w, http.StatusOK, receipts)
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	var review Review
	if err := httpx.Decode(r, &review); err != nil {
		httpx.Error(w, err)
		return
	}
	review.ReviewedBy = auth.AdminID(r.Context())

	rc, err := h.service.SetStatus(r.Context(), id, review)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, rc)
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	rc, body, err := h.service.Open(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": rc.FileName}))
	if _, err := io.Copy(w, body); err != nil {
		h.logger.Warn("Receipt download interrupted", zap.String("receipt_id", rc.ID.String()), zap.Error(err))
	}
}
