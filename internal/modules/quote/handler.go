package quote

import (
	"io"
	"mime"
	"net/http"
	"path"

	"github.com/georgemunganga/vendor-portal/internal/modules/auth"
	"github.com/georgemunganga/vendor-portal/internal/pkg/apperr"
	"github.com/georgemunganga/vendor-portal/internal/pkg/httpx"
	"github.com/georgemunganga/vendor-portal/internal/pkg/money"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
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

// RegisterRoutes mounts the token-gated quote routes.
func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/get", h.get)
	router.Post("/submit", h.submit)
}

// RegisterAdminRoutes mounts quote management on an authenticated router.
func (h *Handler) RegisterAdminRoutes(router chi.Router) {
	router.Get("/", h.list)
	router.Post("/", h.create)
	router.Get("/{id}", h.getByID)
	router.Post("/{id}/review", h.review)
	router.Get("/{id}/file", h.download)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}

	view, err := h.service.Get(r.Context(), req.Token)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, map[string]interface{}{"success": true, "quote": view})
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	if err := httpx.ParseMultipart(w, r, h.maxUploadBytes); err != nil {
		httpx.Error(w, err)
		return
	}
	upload, err := httpx.FormFile(r, "file")
	if err != nil {
		httpx.Error(w, err)
		return
	}

	sub := Submission{
		Token:       r.FormValue("token"),
		Description: r.FormValue("description"),
	}
	if upload != nil {
		sub.File = &File{Name: upload.Name, ContentType: upload.ContentType, Data: upload.Data}
	}
	if sub.Amount, err = money.Parse(r.FormValue("amount")); err != nil {
		httpx.Error(w, err)
		return
	}

	if err := h.service.Submit(r.Context(), sub); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "הצעת המחיר נשלחה בהצלחה",
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	quotes, err := h.service.List(r.Context(), Status(r.URL.Query().Get("status")))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	if quotes == nil {
		quotes = []*Quote{}
	}
	httpx.Respond(w, http.StatusOK, quotes)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	if id := auth.AdminID(r.Context()); id != uuid.Nil {
		req.CreatedBy = &id
	}

	q, err := h.service.Create(r.Context(), req)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusCreated, q)
}

func (h *Handler) getByID(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	q, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, q)
}

func (h *Handler) review(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	var req struct {
		Accept *bool `json:"accept"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	if req.Accept == nil {
		httpx.Error(w, apperr.New(apperr.Validation, "accept is required"))
		return
	}

	q, err := h.service.Review(r.Context(), id, *req.Accept)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, q)
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	q, rc, err := h.service.OpenFile(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": path.Base(q.FilePath)}))
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("Quote download interrupted", zap.String("quote_id", q.ID.String()), zap.Error(err))
	}
}
