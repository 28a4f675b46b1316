package document

import (
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/georgemunganga/vendor-portal/internal/pkg/apperr"
	"github.com/georgemunganga/vendor-portal/internal/pkg/httpx"
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

// RegisterRoutes mounts the token-gated document routes next to the vendor form routes.
func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/documents", h.upload)
	router.Post("/documents/list", h.list)
	router.Post("/documents/delete", h.delete)
}

// RegisterAdminRoutes mounts document review routes on an authenticated router.
func (h *Handler) RegisterAdminRoutes(router chi.Router) {
	router.Get("/requests/{id}/documents", h.listForRequest)
	router.Get("/documents/{id}/file", h.download)
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
	confirmed, _ := strconv.ParseBool(r.FormValue("confirm"))

	result, err := h.service.Upload(r.Context(), Upload{
		Token:     r.FormValue("token"),
		Kind:      Kind(r.FormValue("kind")),
		FileName:  file.Name,
		Type:      file.ContentType,
		Data:      file.Data,
		Confirmed: confirmed,
	})
	if err != nil {
		httpx.Error(w, err)
		return
	}

	if result.Decision.Outcome == OutcomeConfirmRequired {
		httpx.Respond(w, http.StatusConflict, map[string]interface{}{
			"requires_confirmation": true,
			"expected_type":         result.Decision.Expected,
			"detected_type":         result.Decision.Detected,
			"reasoning":             result.Decision.Reasoning,
		})
		return
	}

	httpx.Respond(w, http.StatusCreated, map[string]interface{}{
		"success":  true,
		"document": result.Document,
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}

	docs, err := h.service.List(r.Context(), req.Token)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	if docs == nil {
		docs = []*Document{}
	}
	httpx.Respond(w, http.StatusOK, map[string]interface{}{"success": true, "documents": docs})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token      string `json:"token"`
		DocumentID string `json:"document_id"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	id, err := uuid.Parse(req.DocumentID)
	if err != nil {
		httpx.Error(w, apperr.Wrap(apperr.NotFound, notFoundMessage, err))
		return
	}

	if err := h.service.Delete(r.Context(), req.Token, id); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (h *Handler) listForRequest(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		httpx.Error(w, err)
		return
	}

	docs, err := h.service.ListForRequest(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	if docs == nil {
		docs = []*Document{}
	}
	httpx.Respond(w, http.StatusOK, docs)
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		httpx.Error(w, err)
		return
	}

	doc, rc, err := h.service.Open(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	defer rc.Close()

	contentType := doc.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.FileName}))
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("Document download interrupted", zap.String("document_id", doc.ID.String()), zap.Error(err))
	}
}
