package quote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"strings"
	"time"
	"unicode"

	"github.com/georgemunganga/vendor-portal/internal/modules/vendor"
	"github.com/georgemunganga/vendor-portal/internal/pkg/apperr"
	"github.com/georgemunganga/vendor-portal/internal/pkg/blob"
	"github.com/georgemunganga/vendor-portal/internal/pkg/config"
	"github.com/georgemunganga/vendor-portal/internal/pkg/httpx"
	"github.com/georgemunganga/vendor-portal/internal/pkg/mailer"
	"github.com/georgemunganga/vendor-portal/internal/pkg/metrics"
	"github.com/georgemunganga/vendor-portal/internal/pkg/money"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service defines the quote sub-workflow.
type Service interface {
	Get(ctx context.Context, token string) (*View, error)
	// Submit accepts the vendor's quote once. A second submission is a Conflict.
	Submit(ctx context.Context, sub Submission) error

	Create(ctx context.Context, req CreateRequest) (*Quote, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Quote, error)
	List(ctx context.Context, status Status) ([]*Quote, error)
	Review(ctx context.Context, id uuid.UUID, accept bool) (*Quote, error)
	OpenFile(ctx context.Context, id uuid.UUID) (*Quote, io.ReadCloser, error)
}

type service struct {
	repo    Repository
	blobs   blob.Store
	mail    mailer.Mailer
	cfg     *config.Config
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewService creates a new quote service.
func NewService(repo Repository, blobs blob.Store, mail mailer.Mailer, cfg *config.Config, m *metrics.Metrics, logger *zap.Logger) Service {
	return &service{repo: repo, blobs: blobs, mail: mail, cfg: cfg, metrics: m, logger: logger, now: time.Now}
}

func (s *service) resolve(ctx context.Context, token string) (*Quote, error) {
	token = strings.TrimSpace(token)
	if !vendor.ValidToken(token) {
		return nil, apperr.New(apperr.NotFound, notFoundMessage)
	}
	return s.repo.GetByToken(ctx, strings.ToLower(token))
}

func (s *service) Get(ctx context.Context, token string) (*View, error) {
	q, err := s.resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	return q.View(), nil
}

func (s *service) Submit(ctx context.Context, sub Submission) error {
	err := s.submit(ctx, sub)
	switch {
	case err == nil:
		s.metrics.QuoteSubmissions.WithLabelValues("accepted").Inc()
	case apperr.Is(err, apperr.Conflict):
		s.metrics.QuoteSubmissions.WithLabelValues("duplicate").Inc()
	default:
		s.metrics.QuoteSubmissions.WithLabelValues("failed").Inc()
	}
	return err
}

func (s *service) submit(ctx context.Context, sub Submission) error {
	q, err := s.resolve(ctx, sub.Token)
	if err != nil {
		return err
	}
	if q.VendorSubmitted {
		return apperr.New(apperr.Conflict, "הצעת המחיר כבר הוגשה")
	}
	if err := money.Check(sub.Amount); err != nil {
		return err
	}
	if sub.File == nil && sub.Amount == nil {
		return apperr.New(apperr.Validation, "יש לצרף קובץ או להזין סכום")
	}

	now := s.now()
	var filePath string
	if sub.File != nil {
		filePath = fmt.Sprintf("quotes/%s/%d-%s", q.ID, now.UnixNano(), httpx.SafeFileName(sub.File.Name))
		if err := s.blobs.Put(ctx, filePath, sub.File.Data, sub.File.ContentType); err != nil {
			return apperr.Wrap(apperr.Upstream, "שמירת הקובץ נכשלה", err)
		}
	}

	if err := s.repo.MarkSubmitted(ctx, q.ID, sub.Amount, strings.TrimSpace(sub.Description), filePath, now); err != nil {
		if filePath != "" {
			s.discard(filePath)
		}
		return err
	}

	s.logger.Info("Quote submitted", zap.String("quote_id", q.ID.String()), zap.Bool("has_file", filePath != ""))
	return nil
}

// discard removes a blob whose metadata write failed.
func (s *service) discard(path string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.blobs.Delete(ctx, path); err != nil {
		s.logger.Error("Failed to delete orphaned blob", zap.String("path", path), zap.Error(err))
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Quote, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.VendorEmail = strings.ToLower(strings.TrimSpace(req.VendorEmail))
	if req.Title == "" {
		return nil, apperr.New(apperr.Validation, "title is required")
	}
	if strings.ContainsFunc(req.Title, unicode.IsControl) {
		return nil, apperr.New(apperr.Validation, "title must not contain control characters")
	}
	if _, err := mail.ParseAddress(req.VendorEmail); err != nil {
		return nil, apperr.Wrap(apperr.Validation, "a valid vendor email is required", err)
	}

	q := &Quote{
		ID:                 uuid.New(),
		VendorRequestID:    req.VendorRequestID,
		SecureToken:        vendor.NewToken(),
		Title:              req.Title,
		RequestDescription: strings.TrimSpace(req.RequestDescription),
		VendorEmail:        req.VendorEmail,
		Status:             StatusRequested,
		CreatedBy:          req.CreatedBy,
	}
	if err := s.repo.Create(ctx, q); err != nil {
		return nil, err
	}

	link := s.cfg.PortalURL() + "/quote/" + q.SecureToken
	if err := s.mail.Send(ctx, mailer.QuoteLink(q.VendorEmail, q.Title, link)); err != nil {
		s.logger.Error("Failed to send quote link", zap.String("quote_id", q.ID.String()), zap.Error(err))
	}
	return q, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*Quote, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, status Status) ([]*Quote, error) {
	if status != "" && !status.Valid() {
		return nil, apperr.New(apperr.Validation, "unknown status filter")
	}
	return s.repo.List(ctx, status)
}

func (s *service) Review(ctx context.Context, id uuid.UUID, accept bool) (*Quote, error) {
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if q.Status != StatusPendingReview {
		return nil, apperr.New(apperr.InvalidState, fmt.Sprintf("cannot review a quote in status %s", q.Status))
	}

	next := StatusRejected
	if accept {
		next = StatusAccepted
	}
	if err := s.repo.UpdateStatus(ctx, id, StatusPendingReview, next); err != nil {
		return nil, err
	}
	q.Status = next
	return q, nil
}

func (s *service) OpenFile(ctx context.Context, id uuid.UUID) (*Quote, io.ReadCloser, error) {
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if q.FilePath == "" {
		return nil, nil, apperr.New(apperr.NotFound, "no file was attached to this quote")
	}
	rc, err := s.blobs.Open(ctx, q.FilePath)
	if errors.Is(err, blob.ErrNotFound) {
		return nil, nil, apperr.Wrap(apperr.NotFound, "הקובץ לא נמצא", err)
	}
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.Upstream, "could not read stored file", err)
	}
	return q, rc, nil
}
