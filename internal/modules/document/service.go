package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/georgemunganga/vendor-portal/internal/modules/vendor"
	"github.com/georgemunganga/vendor-portal/internal/pkg/apperr"
	"github.com/georgemunganga/vendor-portal/internal/pkg/blob"
	"github.com/georgemunganga/vendor-portal/internal/pkg/httpx"
	"github.com/georgemunganga/vendor-portal/internal/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Requests resolves the vendor request a document belongs to.
type Requests interface {
	Resolve(ctx context.Context, token string) (*vendor.VendorRequest, error)
	Get(ctx context.Context, id uuid.UUID) (*vendor.VendorRequest, error)
}

// Service defines the vendor document workflow.
type Service interface {
	Upload(ctx context.Context, in Upload) (*UploadResult, error)
	List(ctx context.Context, token string) ([]*Document, error)
	Delete(ctx context.Context, token string, id uuid.UUID) error

	ListForRequest(ctx context.Context, requestID uuid.UUID) ([]*Document, error)
	Open(ctx context.Context, id uuid.UUID) (*Document, io.ReadCloser, error)
}

type service struct {
	repo       Repository
	requests   Requests
	blobs      blob.Store
	classifier Classifier
	gate       Gate
	metrics    *metrics.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// NewService creates a new document service.
func NewService(repo Repository, requests Requests, blobs blob.Store, classifier Classifier, gate Gate, m *metrics.Metrics, logger *zap.Logger) Service {
	return &service{
		repo:       repo,
		requests:   requests,
		blobs:      blobs,
		classifier: classifier,
		gate:       gate,
		metrics:    m,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *service) Upload(ctx context.Context, in Upload) (*UploadResult, error) {
	if !in.Kind.Valid() {
		return nil, apperr.New(apperr.Validation, "סוג המסמך אינו תקין")
	}
	if len(in.Data) == 0 {
		return nil, apperr.New(apperr.Validation, "יש לצרף קובץ")
	}

	req, err := s.requests.Resolve(ctx, in.Token)
	if err != nil {
		return nil, err
	}
	if !req.VendorWritable() {
		return nil, apperr.New(apperr.InvalidState, "לא ניתן להעלות מסמכים בשלב זה")
	}

	classification := s.classify(ctx, req.ID, in)
	decision := s.gate.Evaluate(in.Kind, classification, in.Confirmed)
	s.metrics.DocumentDecisions.WithLabelValues(string(decision.Outcome)).Inc()

	switch decision.Outcome {
	case OutcomeConfirmRequired:
		return &UploadResult{Decision: decision}, nil
	case OutcomeReject:
		return nil, apperr.New(apperr.Validation, "המסמך שהועלה אינו תואם את סוג המסמך שנבחר")
	}

	name := httpx.SafeFileName(in.FileName)
	doc := &Document{
		ID:                uuid.New(),
		VendorRequestID:   req.ID,
		Kind:              in.Kind,
		FileName:          name,
		FilePath:          fmt.Sprintf("vendors/%s/%s/%d-%s", req.ID, in.Kind, s.now().UnixNano(), name),
		ContentType:       in.Type,
		SizeBytes:         int64(len(in.Data)),
		DetectedType:      decision.Detected,
		MismatchConfirmed: decision.Mismatch,
	}

	if err := s.blobs.Put(ctx, doc.FilePath, in.Data, doc.ContentType); err != nil {
		return nil, apperr.Wrap(apperr.Upstream, "שמירת הקובץ נכשלה", err)
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		s.discard(doc.FilePath)
		return nil, err
	}

	s.logger.Info("Document uploaded",
		zap.String("request_id", req.ID.String()),
		zap.String("document_id", doc.ID.String()),
		zap.String("kind", string(doc.Kind)),
		zap.Bool("mismatch_confirmed", doc.MismatchConfirmed),
	)
	return &UploadResult{Decision: decision, Document: doc}, nil
}

// classify runs for every upload, confirmed or not, so the stored detected
// type always comes from the classifier. A failing classifier is inconclusive.
func (s *service) classify(ctx context.Context, requestID uuid.UUID, in Upload) Classification {
	c, err := s.classifier.Classify(ctx, in.FileName, in.Type, in.Data)
	if err != nil {
		s.logger.Warn("Document classification failed, accepting as inconclusive",
			zap.String("request_id", requestID.String()),
			zap.String("kind", string(in.Kind)),
			zap.Error(err),
		)
		return Classification{}
	}
	return c
}

// discard removes a blob whose metadata write failed. It runs on a fresh
// context so a cancelled request still cleans up.
func (s *service) discard(path string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.blobs.Delete(ctx, path); err != nil {
		s.logger.Error("Failed to delete orphaned blob", zap.String("path", path), zap.Error(err))
	}
}

func (s *service) List(ctx context.Context, token string) ([]*Document, error) {
	req, err := s.requests.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByRequest(ctx, req.ID)
}

func (s *service) Delete(ctx context.Context, token string, id uuid.UUID) error {
	req, err := s.requests.Resolve(ctx, token)
	if err != nil {
		return err
	}
	if !req.VendorWritable() {
		return apperr.New(apperr.InvalidState, "לא ניתן למחוק מסמכים בשלב זה")
	}

	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if doc.VendorRequestID != req.ID {
		return apperr.New(apperr.NotFound, notFoundMessage)
	}

	if err := s.repo.Delete(ctx, doc.ID, req.ID); err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, doc.FilePath); err != nil && !errors.Is(err, blob.ErrNotFound) {
		s.logger.Error("Failed to delete document blob",
			zap.String("document_id", doc.ID.String()),
			zap.String("path", doc.FilePath),
			zap.Error(err),
		)
	}
	return nil
}

func (s *service) ListForRequest(ctx context.Context, requestID uuid.UUID) ([]*Document, error) {
	if _, err := s.requests.Get(ctx, requestID); err != nil {
		return nil, err
	}
	return s.repo.ListByRequest(ctx, requestID)
}

func (s *service) Open(ctx context.Context, id uuid.UUID) (*Document, io.ReadCloser, error) {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.blobs.Open(ctx, doc.FilePath)
	if errors.Is(err, blob.ErrNotFound) {
		return nil, nil, apperr.Wrap(apperr.NotFound, "הקובץ לא נמצא", err)
	}
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.Upstream, "could not read stored file", err)
	}
	return doc, rc, nil
}
