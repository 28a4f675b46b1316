package quote

import (
	"bytes"
	"context"
	"errors"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/georgemunganga/vendor-portal/internal/pkg/apperr"
	"github.com/georgemunganga/vendor-portal/internal/pkg/blob/blobtest"
	"github.com/georgemunganga/vendor-portal/internal/pkg/config"
	"github.com/georgemunganga/vendor-portal/internal/pkg/mailer/mailertest"
	"github.com/georgemunganga/vendor-portal/internal/pkg/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type memoryRepository struct {
	mu      sync.Mutex
	quotes  map[uuid.UUID]*Quote
	MarkErr error
	lookups int
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{quotes: make(map[uuid.UUID]*Quote)}
}

func (m *memoryRepository) Create(ctx context.Context, q *Quote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *q
	m.quotes[q.ID] = &cp
	return nil
}

func (m *memoryRepository) GetByToken(ctx context.Context, token string) (*Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups++
	for _, q := range m.quotes {
		if q.SecureToken == token {
			cp := *q
			return &cp, nil
		}
	}
	return nil, apperr.New(apperr.NotFound, notFoundMessage)
}

func (m *memoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quotes[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, notFoundMessage)
	}
	cp := *q
	return &cp, nil
}

func (m *memoryRepository) List(ctx context.Context, status Status) ([]*Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Quote
	for _, q := range m.quotes {
		if status == "" || q.Status == status {
			cp := *q
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memoryRepository) MarkSubmitted(ctx context.Context, id uuid.UUID, amount *float64, description, filePath string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.MarkErr != nil {
		return m.MarkErr
	}
	q, ok := m.quotes[id]
	if !ok {
		return apperr.New(apperr.NotFound, notFoundMessage)
	}
	if q.VendorSubmitted {
		return apperr.New(apperr.Conflict, "already submitted")
	}
	q.VendorSubmitted = true
	q.Amount = amount
	q.Description = description
	q.FilePath = filePath
	q.SubmittedAt = &at
	q.Status = StatusPendingReview
	return nil
}

func (m *memoryRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quotes[id]
	if !ok {
		return apperr.New(apperr.NotFound, notFoundMessage)
	}
	if q.Status != from {
		return apperr.New(apperr.Conflict, "status changed")
	}
	q.Status = to
	return nil
}

// staleRepository answers token lookups with a snapshot taken before any
// submission, the way a concurrent reader would see it.
type staleRepository struct {
	*memoryRepository
	snapshot Quote
}

func (s *staleRepository) GetByToken(ctx context.Context, token string) (*Quote, error) {
	cp := s.snapshot
	return &cp, nil
}

type fixture struct {
	svc   Service
	repo  *memoryRepository
	blobs *blobtest.Memory
	mail  *mailertest.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{repo: newMemoryRepository(), blobs: blobtest.NewMemory(), mail: &mailertest.Recorder{}}
	f.svc = NewService(f.repo, f.blobs, f.mail, &config.Config{Env: "production"}, metrics.New(), zap.NewNop())
	return f
}

func (f *fixture) create(t *testing.T) *Quote {
	t.Helper()
	q, err := f.svc.Create(context.Background(), CreateRequest{Title: "הדפסת חוברות", VendorEmail: "vendor@example.com"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return q
}

func amount(v float64) *float64 { return &v }

func TestCreateSendsLink(t *testing.T) {
	f := newFixture(t)
	q := f.create(t)

	if q.Status != StatusRequested || q.VendorSubmitted {
		t.Fatalf("unexpected new quote %+v", q)
	}
	msgs := f.mail.Messages()
	if len(msgs) != 1 || !strings.Contains(msgs[0].Body, "/quote/"+q.SecureToken) {
		t.Fatalf("expected quote link email, got %+v", msgs)
	}
}

func TestCreateRejectsHeaderBreakInTitle(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background(), CreateRequest{Title: "חוברות\r\nBcc: victim@example.com", VendorEmail: "vendor@example.com"})
	if !apperr.Is(err, apperr.Validation) {
		t.Fatalf("expected validation_error, got %v", err)
	}
	if len(f.mail.Messages()) != 0 {
		t.Error("mail sent for rejected title")
	}
}

func TestSubmitOnce(t *testing.T) {
	f := newFixture(t)
	q := f.create(t)
	ctx := context.Background()

	err := f.svc.Submit(ctx, Submission{
		Token:       q.SecureToken,
		File:        &File{Name: "quote.pdf", Data: []byte("%PDF")},
		Amount:      amount(1500),
		Description: "כולל מע\"מ",
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	got, _ := f.repo.GetByID(ctx, q.ID)
	if !got.VendorSubmitted || got.Status != StatusPendingReview || got.SubmittedAt == nil {
		t.Fatalf("quote not marked submitted: %+v", got)
	}
	if !strings.HasPrefix(got.FilePath, "quotes/"+q.ID.String()+"/") {
		t.Errorf("unexpected file path %s", got.FilePath)
	}

	for _, sub := range []Submission{
		{Token: q.SecureToken, Amount: amount(1)},
		{Token: q.SecureToken, File: &File{Name: "other.pdf", Data: []byte("x")}},
	} {
		if err := f.svc.Submit(ctx, sub); !apperr.Is(err, apperr.Conflict) {
			t.Errorf("second Submit() expected conflict, got %v", err)
		}
	}
	if len(f.blobs.Paths()) != 1 {
		t.Errorf("expected exactly one stored blob, got %v", f.blobs.Paths())
	}
}

func TestSubmitRejectsUnstorableAmounts(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
	}{
		{"nan", math.NaN()},
		{"infinity", math.Inf(1)},
		{"negative", -1},
		{"column overflow", 1e12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			q := f.create(t)
			err := f.svc.Submit(context.Background(), Submission{
				Token:  q.SecureToken,
				Amount: amount(tt.amount),
				File:   &File{Name: "q.pdf", Data: []byte("%PDF")},
			})
			if !apperr.Is(err, apperr.Validation) {
				t.Fatalf("expected validation_error, got %v", err)
			}
			got, _ := f.repo.GetByID(context.Background(), q.ID)
			if got.VendorSubmitted || len(f.blobs.Paths()) != 0 {
				t.Fatalf("rejected amount left state behind: %+v stored=%v", got, f.blobs.Paths())
			}
		})
	}
}

func TestSubmitLostRaceDeletesBlob(t *testing.T) {
	f := newFixture(t)
	q := f.create(t)
	snapshot, _ := f.repo.GetByID(context.Background(), q.ID)

	if err := f.svc.Submit(context.Background(), Submission{Token: q.SecureToken, Amount: amount(10)}); err != nil {
		t.Fatal(err)
	}

	stale := &staleRepository{memoryRepository: f.repo, snapshot: *snapshot}
	svc := NewService(stale, f.blobs, f.mail, &config.Config{}, metrics.New(), zap.NewNop())
	err := svc.Submit(context.Background(), Submission{Token: q.SecureToken, File: &File{Name: "late.pdf", Data: []byte("x")}})
	if !apperr.Is(err, apperr.Conflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(f.blobs.Paths()) != 0 || len(f.blobs.Deleted) != 1 {
		t.Fatalf("late blob not removed: stored=%v deleted=%v", f.blobs.Paths(), f.blobs.Deleted)
	}
}

func TestSubmitConcurrent(t *testing.T) {
	f := newFixture(t)
	q := f.create(t)

	const n = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		accepted  int
		conflicts int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := f.svc.Submit(context.Background(), Submission{Token: q.SecureToken, Amount: amount(5)})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				accepted++
			case apperr.Is(err, apperr.Conflict):
				conflicts++
			}
		}()
	}
	wg.Wait()

	if accepted != 1 || conflicts != n-1 {
		t.Fatalf("accepted=%d conflicts=%d", accepted, conflicts)
	}
}

func TestSubmitMetadataFailureDeletesBlob(t *testing.T) {
	f := newFixture(t)
	q := f.create(t)
	f.repo.MarkErr = apperr.Wrap(apperr.Store, "database error", errors.New("timeout"))

	err := f.svc.Submit(context.Background(), Submission{Token: q.SecureToken, File: &File{Name: "q.pdf", Data: []byte("x")}})
	if !apperr.Is(err, apperr.Store) {
		t.Fatalf("expected database_error, got %v", err)
	}
	if len(f.blobs.Paths()) != 0 {
		t.Fatal("blob left behind after failed metadata write")
	}
}

func TestSubmitUploadFailureWritesNothing(t *testing.T) {
	f := newFixture(t)
	q := f.create(t)
	f.blobs.PutErr = errors.New("disk full")

	err := f.svc.Submit(context.Background(), Submission{Token: q.SecureToken, File: &File{Name: "q.pdf", Data: []byte("x")}})
	if !apperr.Is(err, apperr.Upstream) {
		t.Fatalf("expected upstream_error, got %v", err)
	}
	got, _ := f.repo.GetByID(context.Background(), q.ID)
	if got.VendorSubmitted {
		t.Fatal("metadata written without file")
	}
}

func TestSubmitUnknownAndMalformedTokens(t *testing.T) {
	f := newFixture(t)

	if err := f.svc.Submit(context.Background(), Submission{Token: "bad", Amount: amount(1)}); !apperr.Is(err, apperr.NotFound) {
		t.Errorf("malformed token: expected not_found, got %v", err)
	}
	if f.repo.lookups != 0 {
		t.Errorf("malformed token reached the store")
	}
	if err := f.svc.Submit(context.Background(), Submission{Token: uuid.NewString(), Amount: amount(1)}); !apperr.Is(err, apperr.NotFound) {
		t.Errorf("unknown token: expected not_found, got %v", err)
	}
}

func TestReview(t *testing.T) {
	f := newFixture(t)
	q := f.create(t)
	ctx := context.Background()

	if _, err := f.svc.Review(ctx, q.ID, true); !apperr.Is(err, apperr.InvalidState) {
		t.Fatalf("review before submission: expected invalid_state, got %v", err)
	}
	f.svc.Submit(ctx, Submission{Token: q.SecureToken, Amount: amount(3)})

	got, err := f.svc.Review(ctx, q.ID, false)
	if err != nil || got.Status != StatusRejected {
		t.Fatalf("Review() = %+v, %v", got, err)
	}
}

func TestSubmitHandler(t *testing.T) {
	f := newFixture(t)
	q := f.create(t)

	router := chi.NewRouter()
	NewHandler(f.svc, 1<<20, zap.NewNop()).RegisterRoutes(router)

	send := func() *httptest.ResponseRecorder {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		mw.WriteField("token", q.SecureToken)
		mw.WriteField("amount", "1,250.50")
		mw.WriteField("description", "הצעה")
		mw.Close()
		req := httptest.NewRequest(http.MethodPost, "/submit", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr
	}

	first := send()
	if first.Code != http.StatusOK || !strings.Contains(first.Body.String(), `"success":true`) {
		t.Fatalf("first submit: %d %s", first.Code, first.Body.String())
	}
	second := send()
	if second.Code != http.StatusConflict || !strings.Contains(second.Body.String(), `"error":"conflict"`) {
		t.Fatalf("second submit: %d %s", second.Code, second.Body.String())
	}

	got, _ := f.repo.GetByID(context.Background(), q.ID)
	if got.Amount == nil || *got.Amount != 1250.50 {
		t.Errorf("amount = %v", got.Amount)
	}
}

func TestSubmitHandlerRejectsNaNAmount(t *testing.T) {
	f := newFixture(t)
	q := f.create(t)

	router := chi.NewRouter()
	NewHandler(f.svc, 1<<20, zap.NewNop()).RegisterRoutes(router)

	for _, raw := range []string{"NaN", "Inf", "1000000000000"} {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		mw.WriteField("token", q.SecureToken)
		mw.WriteField("amount", raw)
		mw.Close()
		req := httptest.NewRequest(http.MethodPost, "/submit", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if rr.Code != http.StatusBadRequest || !strings.Contains(rr.Body.String(), `"error":"validation_error"`) {
			t.Errorf("amount=%s: %d %s", raw, rr.Code, rr.Body.String())
		}
	}
	got, _ := f.repo.GetByID(context.Background(), q.ID)
	if got.VendorSubmitted {
		t.Error("quote marked submitted after rejected amounts")
	}
}

func (f *fixture) submitted(t *testing.T) *Quote {
	t.Helper()
	q := f.create(t)
	if err := f.svc.Submit(context.Background(), Submission{Token: q.SecureToken, File: &File{Name: "quote.pdf", Data: []byte("%PDF-1.4")}}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	got, _ := f.repo.GetByID(context.Background(), q.ID)
	return got
}

func TestOpenFileMapsStoreErrors(t *testing.T) {
	tests := []struct {
		name     string
		breakStore   func(f *fixture, q *Quote)
		wantKind apperr.Kind
	}{
		{"missing blob", func(f *fixture, q *Quote) { f.blobs.Delete(context.Background(), q.FilePath) }, apperr.NotFound},
		{"store failure", func(f *fixture, q *Quote) { f.blobs.OpenErr = errors.New("input/output error") }, apperr.Upstream},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			q := f.submitted(t)
			tt.breakStore(f, q)
			if _, _, err := f.svc.OpenFile(context.Background(), q.ID); !apperr.Is(err, tt.wantKind) {
				t.Fatalf("expected %s, got %v", tt.wantKind, err)
			}
		})
	}
}

func TestDownloadLogsInterruptedCopy(t *testing.T) {
	f := newFixture(t)
	q := f.submitted(t)
	f.blobs.ReadErr = errors.New("connection reset")

	core, logs := observer.New(zap.WarnLevel)
	router := chi.NewRouter()
	NewHandler(f.svc, 1<<20, zap.New(core)).RegisterAdminRoutes(router)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/"+q.ID.String()+"/file", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	entries := logs.FilterMessage("Quote download interrupted").All()
	if len(entries) != 1 {
		t.Fatalf("expected one interrupted-download warning, got %d", len(entries))
	}
	if id := entries[0].ContextMap()["quote_id"]; id != q.ID.String() {
		t.Errorf("quote_id = %v", id)
	}
}
