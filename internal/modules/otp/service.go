package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/georgemunganga/vendor-portal/internal/modules/vendor"
	"github.com/georgemunganga/vendor-portal/internal/pkg/apperr"
	"github.com/georgemunganga/vendor-portal/internal/pkg/config"
	"github.com/georgemunganga/vendor-portal/internal/pkg/mailer"
	"github.com/georgemunganga/vendor-portal/internal/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const codeDigits = 6

// Requests resolves the vendor request a code is sent for.
type Requests interface {
	Resolve(ctx context.Context, token string) (*vendor.VendorRequest, error)
}

// SendResult tells the vendor where the code went without revealing the address.
type SendResult struct {
	SentTo           string `json:"sent_to"`
	ExpiresInSeconds int    `json:"expires_in_seconds"`
}

// Service defines one-time code verification for token holders.
type Service interface {
	Send(ctx context.Context, token string) (*SendResult, error)
	Verify(ctx context.Context, token, code string) error
	// IsVerified reports whether the request's token holder verified recently.
	IsVerified(ctx context.Context, requestID uuid.UUID) (bool, error)
}

// Options are the tunables of a Service.
type Options struct {
	TTL            time.Duration
	MaxAttempts    int
	ResendInterval time.Duration
	VerifiedTTL    time.Duration
}

// OptionsFromConfig reads the OTP settings from cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		TTL:            cfg.OTPTTL,
		MaxAttempts:    cfg.OTPMaxAttempts,
		ResendInterval: cfg.OTPResendInterval,
		VerifiedTTL:    cfg.OTPVerifiedTTL,
	}
}

type service struct {
	store    CodeStore
	requests Requests
	mail     mailer.Mailer
	opts     Options
	limiter  *limiter
	metrics  *metrics.Metrics
	logger   *zap.Logger
	hashCost int
	now      func() time.Time
}

// NewService creates a new OTP service.
func NewService(store CodeStore, requests Requests, mail mailer.Mailer, opts Options, m *metrics.Metrics, logger *zap.Logger) Service {
	return &service{
		store:    store,
		requests: requests,
		mail:     mail,
		opts:     opts,
		limiter:  newLimiter(opts.ResendInterval),
		metrics:  m,
		logger:   logger,
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
}

func (s *service) Send(ctx context.Context, token string) (*SendResult, error) {
	req, err := s.requests.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	if req.ContactEmail == "" {
		return nil, apperr.New(apperr.Validation, "לא הוגדרה כתובת דוא\"ל לספק")
	}
	subject := req.ID.String()

	release, ok := s.limiter.Reserve(subject, s.now())
	if !ok {
		s.metrics.OTPEvents.WithLabelValues("send", "throttled").Inc()
		return nil, apperr.New(apperr.RateLimited, "נשלח קוד לאחרונה, יש להמתין לפני בקשת קוד חדש")
	}
	// Only a delivered code costs the vendor their resend slot.
	delivered := false
	defer func() {
		if !delivered {
			release()
		}
	}()

	code, err := generateCode()
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), s.hashCost)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveCode(ctx, subject, string(hash), s.opts.TTL); err != nil {
		return nil, apperr.Wrap(apperr.Store, "verification store unavailable", err)
	}

	minutes := int(s.opts.TTL.Round(time.Minute) / time.Minute)
	if err := s.mail.Send(ctx, mailer.OTPCode(req.ContactEmail, code, minutes)); err != nil {
		s.metrics.OTPEvents.WithLabelValues("send", "failed").Inc()
		if delErr := s.store.DeleteCode(ctx, subject); delErr != nil {
			s.logger.Error("Failed to drop undelivered code", zap.String("request_id", subject), zap.Error(delErr))
		}
		return nil, apperr.Wrap(apperr.Upstream, "שליחת הקוד נכשלה, נסו שוב מאוחר יותר", err)
	}
	delivered = true

	s.metrics.OTPEvents.WithLabelValues("send", "ok").Inc()
	s.logger.Info("Verification code sent", zap.String("request_id", subject))
	return &SendResult{
		SentTo:           maskEmail(req.ContactEmail),
		ExpiresInSeconds: int(s.opts.TTL / time.Second),
	}, nil
}

func (s *service) Verify(ctx context.Context, token, code string) error {
	req, err := s.requests.Resolve(ctx, token)
	if err != nil {
		return err
	}
	subject := req.ID.String()

	code = strings.TrimSpace(code)
	if len(code) != codeDigits || strings.Trim(code, "0123456789") != "" {
		return apperr.New(apperr.Validation, "הקוד חייב להכיל 6 ספרות")
	}

	hash, err := s.store.GetCode(ctx, subject)
	if errors.Is(err, ErrNoCode) {
		s.metrics.OTPEvents.WithLabelValues("verify", "expired").Inc()
		return apperr.New(apperr.Validation, "הקוד פג תוקף, יש לבקש קוד חדש")
	}
	if err != nil {
		return apperr.Wrap(apperr.Store, "verification store unavailable", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) != nil {
		attempts, err := s.store.IncrAttempts(ctx, subject, s.opts.TTL)
		if err != nil {
			return apperr.Wrap(apperr.Store, "verification store unavailable", err)
		}
		if attempts >= int64(s.opts.MaxAttempts) {
			if err := s.store.DeleteCode(ctx, subject); err != nil {
				return apperr.Wrap(apperr.Store, "verification store unavailable", err)
			}
			s.metrics.OTPEvents.WithLabelValues("verify", "locked").Inc()
			return apperr.New(apperr.Validation, "מספר הניסיונות הגיע למקסימום, יש לבקש קוד חדש")
		}
		s.metrics.OTPEvents.WithLabelValues("verify", "wrong").Inc()
		return apperr.New(apperr.Validation, fmt.Sprintf("קוד שגוי, נותרו %d ניסיונות", int64(s.opts.MaxAttempts)-attempts))
	}

	if err := s.store.DeleteCode(ctx, subject); err != nil {
		return apperr.Wrap(apperr.Store, "verification store unavailable", err)
	}
	if err := s.store.MarkVerified(ctx, subject, s.opts.VerifiedTTL); err != nil {
		return apperr.Wrap(apperr.Store, "verification store unavailable", err)
	}
	s.metrics.OTPEvents.WithLabelValues("verify", "ok").Inc()
	return nil
}

func (s *service) IsVerified(ctx context.Context, requestID uuid.UUID) (bool, error) {
	ok, err := s.store.IsVerified(ctx, requestID.String())
	if err != nil {
		return false, apperr.Wrap(apperr.Store, "verification store unavailable", err)
	}
	return ok, nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// maskEmail keeps the first letter of the local part and the domain.
func maskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "***"
	}
	return email[:1] + strings.Repeat("*", max(at-1, 3)) + email[at:]
}
