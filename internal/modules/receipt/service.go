package receipt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/georgemunganga/vendor-portal/internal/modules/vendor"
	"github.com/georgemunganga/vendor-portal/internal/pkg/apperr"
	"github.com/georgemunganga/vendor-portal/internal/pkg/blob"
	"github.com/georgemunganga/vendor-portal/internal/pkg/httpx"
	"github.com/georgemunganga/vendor-portal/internal/pkg/money"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Requests resolves the vendor request receipts belong to.
type Requests interface {
	Resolve(ctx context.Context, token string) (*vendor.VendorRequest, error)
	Get(ctx context.Context, id uuid.UUID) (*vendor.VendorRequest, error)
}

// Verifier reports whether a request's token holder passed a one-time code check.
type Verifier interface {
	IsVerified(ctx context.Context, requestID uuid.UUID) (bool, error)
}

// Service defines the receipts sub-workflow.
type Service interface {
	Fetch(ctx context.Context, token string) (*Listing, error)
	Upload(ctx context.Context, in Upload) (*Receipt, error)

	ListForRequest(ctx context.Context, requestID uuid.UUID) ([]*Receipt, error)
	SetStatus(ctx context.Context, id uuid.UUID, review Review) (*Receipt, error)
	Open(ctx context.Context, id uuid.UUID) (*Receipt, io.ReadCloser, error)
}

type service struct {
	repo     Repository
	requests Requests
	verifier Verifier
	blobs    blob.Store
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a new receipt service.
func NewService(repo Repository, requests Requests, verifier Verifier, blobs blob.Store, logger *zap.Logger) Service {
	return &service{repo: repo, requests: requests, verifier: verifier, blobs: blobs, logger: logger, now: time.Now}
}

func (s *service) Fetch(ctx context.Context, token string) (*Listing, error) {
	req, err := s.requests.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	receipts, err := s.repo.ListByRequest(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if receipts == nil {
		receipts = []*Receipt{}
	}
	return &Listing{
		Vendor:   VendorSummary{ID: req.ID, VendorName: req.VendorName, Status: req.Status},
		Receipts: receipts,
	}, nil
}

func (s *service) Upload(ctx context.Context, in Upload) (*Receipt, error) {
	if len(in.Data) == 0 {
		return nil, apperr.New(apperr.Validation, "יש לצרף קובץ")
	}
	if err := money.Check(in.Amount); err != nil {
		return nil, err
	}

	req, err := s.requests.Resolve(ctx, in.Token)
	if err != nil {
		return nil, err
	}
	if req.Status != vendor.StatusApproved {
		return nil, apperr.New(apperr.InvalidState, "ניתן להעלות קבלות רק לאחר אישור הספק")
	}
	verified, err := s.verifier.IsVerified(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if !verified {
		return nil, apperr.New(apperr.Validation, "verification required")
	}

	name := httpx.SafeFileName(in.FileName)
	rc := &Receipt{
		ID:              uuid.New(),
		VendorRequestID: req.ID,
		FileName:        name,
		FilePath:        fmt.Sprintf("receipts/%s/%d-%s", req.ID, s.now().UnixNano(), name),
		Amount:          in.Amount,
		Description:     strings.TrimSpace(in.Description),
		Status:          StatusPending,
	}

	if err := s.blobs.Put(ctx, rc.FilePath, in.Data, in.ContentType); err != nil {
		return nil, apperr.Wrap(apperr.Upstream, "שמירת הקובץ נכשלה", err)
	}
	if err := s.repo.Create(ctx, rc); err != nil {
		delCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if delErr := s.blobs.Delete(delCtx, rc.FilePath); delErr != nil {
			s.logger.Error("Failed to delete orphaned blob", zap.String("path", rc.FilePath), zap.Error(delErr))
		}
		return nil, err
	}

	s.logger.Info("Receipt uploaded", zap.String("request_id", req.ID.String()), zap.String("receipt_id", rc.ID.String()))
	return rc, nil
}

func (s *service) ListForRequest(ctx context.Context, requestID uuid.UUID) ([]*Receipt, error) {
	if _, err := s.requests.Get(ctx, requestID); err != nil {
		return nil, err
	}
	return s.repo.ListByRequest(ctx, requestID)
}

func (s *service) SetStatus(ctx context.Context, id uuid.UUID, review Review) (*Receipt, error) {
	if review.Status != StatusApproved && review.Status != StatusRejected {
		return nil, apperr.New(apperr.Validation, "status must be approved or rejected")
	}
	review.Note = strings.TrimSpace(review.Note)
	if err := s.repo.SetStatus(ctx, id, review); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

func (s *service) Open(ctx context.Context, id uuid.UUID) (*Receipt, io.ReadCloser, error) {
	rc, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	body, err := s.blobs.Open(ctx, rc.FilePath)
	if errors.Is(err, blob.ErrNotFound) {
		return nil, nil, apperr.Wrap(apperr.NotFound, "הקובץ לא נמצא", err)
	}
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.Upstream, "could not read stored file", err)
	}
	return rc, body, nil
}
