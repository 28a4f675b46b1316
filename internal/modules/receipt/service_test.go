package receipt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/georgemunganga/vendor-portal/internal/modules/vendor"
	"github.com/georgemunganga/vendor-portal/internal/pkg/apperr"
	"github.com/georgemunganga/vendor-portal/internal/pkg/blob/blobtest"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type memoryRepository struct {
	mu        sync.Mutex
	receipts  []*Receipt
	CreateErr error
}

func (m *memoryRepository) Create(ctx context.Context, r *Receipt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	r.CreatedAt = time.Now()
	m.receipts = append(m.receipts, r)
	return nil
}

func (m *memoryRepository) Get(ctx context.Context, id uuid.UUID) (*Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.receipts {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, apperr.New(apperr.NotFound, notFoundMessage)
}

func (m *memoryRepository) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]*Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Receipt
	for i := len(m.receipts) - 1; i >= 0; i-- {
		if m.receipts[i].VendorRequestID == requestID {
			out = append(out, m.receipts[i])
		}
	}
	return out, nil
}

func (m *memoryRepository) SetStatus(ctx context.Context, id uuid.UUID, review Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.receipts {
		if r.ID == id {
			r.Status = review.Status
			r.ReviewNote = review.Note
			r.ReviewedBy = &review.ReviewedBy
			return nil
		}
	}
	return apperr.New(apperr.NotFound, notFoundMessage)
}

type fakeRequests struct {
	req *vendor.VendorRequest
}

func (f *fakeRequests) Resolve(ctx context.Context, token string) (*vendor.VendorRequest, error) {
	if token == f.req.SecureToken {
		return f.req, nil
	}
	return nil, apperr.New(apperr.NotFound, "not found")
}

func (f *fakeRequests) Get(ctx context.Context, id uuid.UUID) (*vendor.VendorRequest, error) {
	if id == f.req.ID {
		return f.req, nil
	}
	return nil, apperr.New(apperr.NotFound, "not found")
}

type fakeVerifier struct {
	verified bool
}

func (f *fakeVerifier) IsVerified(ctx context.Context, requestID uuid.UUID) (bool, error) {
	return f.verified, nil
}

type fixture struct {
	svc      Service
	repo     *memoryRepository
	blobs    *blobtest.Memory
	verifier *fakeVerifier
	req      *vendor.VendorRequest
}

func newFixture(t *testing.T, status vendor.Status, verified bool) *fixture {
	t.Helper()
	f := &fixture{
		repo:     &memoryRepository{},
		blobs:    blobtest.NewMemory(),
		verifier: &fakeVerifier{verified: verified},
		req:      &vendor.VendorRequest{ID: uuid.New(), SecureToken: uuid.NewString(), VendorName: "ספק", Status: status},
	}
	f.svc = NewService(f.repo, &fakeRequests{req: f.req}, f.verifier, f.blobs, zap.NewNop())
	return f
}

func (f *fixture) upload(name string) (*Receipt, error) {
	return f.svc.Upload(context.Background(), Upload{Token: f.req.SecureToken, FileName: name, Data: []byte("img")})
}

func TestUploadRequiresApprovedAndVerified(t *testing.T) {
	tests := []struct {
		name     string
		status   vendor.Status
		verified bool
		wantKind apperr.Kind
	}{
		{"submitted", vendor.StatusSubmitted, true, apperr.InvalidState},
		{"with vendor", vendor.StatusWithVendor, true, apperr.InvalidState},
		{"not verified", vendor.StatusApproved, false, apperr.Validation},
		{"ok", vendor.StatusApproved, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.status, tt.verified)
			rc, err := f.upload("r.jpg")
			if tt.wantKind == "" {
				if err != nil {
					t.Fatalf("Upload() error = %v", err)
				}
				if rc.Status != StatusPending {
					t.Errorf("new receipt status = %s", rc.Status)
				}
				return
			}
			if !apperr.Is(err, tt.wantKind) {
				t.Fatalf("expected %s, got %v", tt.wantKind, err)
			}
			if len(f.blobs.Paths()) != 0 {
				t.Error("rejected upload stored a blob")
			}
		})
	}
}

func TestUploadRejectsUnstorableAmounts(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(-1), 1e12, -3} {
		f := newFixture(t, vendor.StatusApproved, true)
		amt := v
		_, err := f.svc.Upload(context.Background(), Upload{Token: f.req.SecureToken, FileName: "r.jpg", Data: []byte("img"), Amount: &amt})
		if !apperr.Is(err, apperr.Validation) {
			t.Errorf("amount %v: expected validation_error, got %v", v, err)
		}
		if len(f.blobs.Paths()) != 0 || len(f.repo.receipts) != 0 {
			t.Errorf("amount %v: rejected upload left state behind", v)
		}
	}
}

func TestUploadCompensatesFailedInsert(t *testing.T) {
	f := newFixture(t, vendor.StatusApproved, true)
	f.repo.CreateErr = apperr.Wrap(apperr.Store, "database error", errors.New("deadlock"))

	if _, err := f.upload("r.jpg"); !apperr.Is(err, apperr.Store) {
		t.Fatalf("expected database_error, got %v", err)
	}
	if len(f.blobs.Paths()) != 0 || len(f.blobs.Deleted) != 1 {
		t.Fatal("blob was not compensated")
	}
}

func TestFetchNewestFirst(t *testing.T) {
	f := newFixture(t, vendor.StatusApproved, true)
	first, _ := f.upload("first.jpg")
	second, _ := f.upload("second.jpg")

	listing, err := f.svc.Fetch(context.Background(), f.req.SecureToken)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(listing.Receipts) != 2 || listing.Receipts[0].ID != second.ID || listing.Receipts[1].ID != first.ID {
		t.Fatalf("unexpected order %+v", listing.Receipts)
	}
	if listing.Vendor.VendorName != "ספק" || listing.Vendor.Status != vendor.StatusApproved {
		t.Errorf("unexpected vendor summary %+v", listing.Vendor)
	}
}

func TestSetStatus(t *testing.T) {
	f := newFixture(t, vendor.StatusApproved, true)
	rc, _ := f.upload("r.jpg")
	admin := uuid.New()

	if _, err := f.svc.SetStatus(context.Background(), rc.ID, Review{Status: StatusPending}); !apperr.Is(err, apperr.Validation) {
		t.Fatalf("expected validation_error, got %v", err)
	}
	got, err := f.svc.SetStatus(context.Background(), rc.ID, Review{Status: StatusApproved, Note: " תקין ", ReviewedBy: admin})
	if err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}
	if got.Status != StatusApproved || got.ReviewNote != "תקין" || *got.ReviewedBy != admin {
		t.Errorf("unexpected receipt %+v", got)
	}
}

func TestFetchHandler(t *testing.T) {
	f := newFixture(t, vendor.StatusApproved, true)
	router := chi.NewRouter()
	NewHandler(f.svc, 1<<20, zap.NewNop()).RegisterRoutes(router)

	body, _ := json.Marshal(map[string]string{"token": f.req.SecureToken})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body)))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"receipts":[]`) {
		t.Errorf("expected empty receipts array, got %s", rr.Body.String())
	}
}

func TestOpenMapsStoreErrors(t *testing.T) {
	tests := []struct {
		name       string
		breakStore func(f *fixture, rc *Receipt)
		wantKind   apperr.Kind
	}{
		{"missing blob", func(f *fixture, rc *Receipt) { f.blobs.Delete(context.Background(), rc.FilePath) }, apperr.NotFound},
		{"store failure", func(f *fixture, rc *Receipt) { f.blobs.OpenErr = errors.New("input/output error") }, apperr.Upstream},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, vendor.StatusApproved, true)
			rc, err := f.upload("r.jpg")
			if err != nil {
				t.Fatalf("Upload() error = %v", err)
			}
			tt.breakStore(f, rc)
			if _, _, err := f.svc.Open(context.Background(), rc.ID); !apperr.Is(err, tt.wantKind) {
				t.Fatalf("expected %s, got %v", tt.wantKind, err)
			}
		})
	}
}

func TestDownloadLogsInterruptedCopy(t *testing.T) {
	f := newFixture(t, vendor.StatusApproved, true)
	rc, err := f.upload("r.jpg")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	f.blobs.ReadErr = errors.New("connection reset")

	core, logs := observer.New(zap.WarnLevel)
	router := chi.NewRouter()
	NewHandler(f.svc, 1<<20, zap.New(core)).RegisterAdminRoutes(router)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/receipts/"+rc.ID.String()+"/file", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if n := logs.FilterMessage("Receipt download interrupted").Len(); n != 1 {
		t.Fatalf("expected one interrupted-download warning, got %d", n)
	}
}
