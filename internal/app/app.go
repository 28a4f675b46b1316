// Package app builds the portal's services from configuration and mounts them on a router.
package app

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/georgemunganga/vendor-portal/internal/modules/address"
	"github.com/georgemunganga/vendor-portal/internal/modules/auth"
	"github.com/georgemunganga/vendor-portal/internal/modules/document"
	"github.com/georgemunganga/vendor-portal/internal/modules/otp"
	"github.com/georgemunganga/vendor-portal/internal/modules/quote"
	"github.com/georgemunganga/vendor-portal/internal/modules/receipt"
	"github.com/georgemunganga/vendor-portal/internal/modules/reference"
	"github.com/georgemunganga/vendor-portal/internal/modules/user"
	"github.com/georgemunganga/vendor-portal/internal/modules/vendor"
	"github.com/georgemunganga/vendor-portal/internal/pkg/blob"
	"github.com/georgemunganga/vendor-portal/internal/pkg/config"
	"github.com/georgemunganga/vendor-portal/internal/pkg/httpx"
	"github.com/georgemunganga/vendor-portal/internal/pkg/logger"
	"github.com/georgemunganga/vendor-portal/internal/pkg/mailer"
	"github.com/georgemunganga/vendor-portal/internal/pkg/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// App holds every service of the portal.
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *metrics.Metrics

	db    *sql.DB
	redis *redis.Client

	Users     user.Service
	Auth      auth.Service
	Vendors   vendor.Service
	Documents document.Service
	Quotes    quote.Service
	Receipts  receipt.Service
	OTP       otp.Service
	Address   address.Service
}

// New wires the services. db and rdb are owned by the caller.
func New(cfg *config.Config, db *sql.DB, rdb *redis.Client, log *zap.Logger) (*App, error) {
	blobs, err := blob.NewFSStore(cfg.BlobRoot)
	if err != nil {
		return nil, err
	}

	var mail mailer.Mailer
	if cfg.SMTPEnabled() {
		mail = mailer.NewSMTPMailer(mailer.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
			Timeout:  cfg.UpstreamTimeout,
		})
	} else {
		log.Warn("SMTP_HOST not set, emails will only be logged")
		mail = mailer.NewLogMailer(log)
	}

	var classifier document.Classifier = document.NoopClassifier{}
	if cfg.ClassifierURL != "" {
		classifier = document.NewHTTPClassifier(cfg.ClassifierURL, cfg.ClassifierAPIKey, cfg.UpstreamTimeout)
	} else {
		log.Warn("CLASSIFIER_URL not set, document classification is disabled")
	}

	m := metrics.New()
	a := &App{Config: cfg, Logger: log, Metrics: m, db: db, redis: rdb}

	// ── Admin identity ──────────────────────────────────────
	userRepo := user.NewPostgresRepository(db)
	a.Users = user.NewService(userRepo)
	a.Auth = auth.NewService(userRepo, cfg.JWTSecret, cfg.JWTTTL)

	// ── Vendor onboarding ───────────────────────────────────
	a.Vendors = vendor.NewService(vendor.NewPostgresRepository(db), mail, cfg, m, log.Named("vendor"))
	a.Documents = document.NewService(
		document.NewPostgresRepository(db),
		a.Vendors,
		blobs,
		classifier,
		document.Gate{Policy: document.Policy(cfg.MismatchPolicy)},
		m,
		log.Named("document"),
	)
	// ── Quotes, verification & receipts ─────────────────────
	a.Quotes = quote.NewService(quote.NewPostgresRepository(db), blobs, mail, cfg, m, log.Named("quote"))
	a.OTP = otp.NewService(otp.NewRedisStore(rdb), a.Vendors, mail, otp.OptionsFromConfig(cfg), m, log.Named("otp"))
	a.Receipts = receipt.NewService(receipt.NewPostgresRepository(db), a.Vendors, a.OTP, blobs, log.Named("receipt"))
	a.Address = address.NewService(address.NewHTTPGeocoder(cfg.GeocoderURL, cfg.UpstreamTimeout), log.Named("address"))

	return a, nil
}

// Router mounts every route of the API.
func (a *App) Router() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(logger.Middleware(a.Logger))
	router.Use(a.Metrics.Middleware)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))

	router.Get("/health", a.health)
	router.Method(http.MethodGet, "/metrics", a.Metrics.Handler())

	maxUpload := a.Config.MaxUploadBytes
	documents := document.NewHandler(a.Documents, maxUpload, a.Logger.Named("document"))
	quotes := quote.NewHandler(a.Quotes, maxUpload, a.Logger.Named("quote"))
	receipts := receipt.NewHandler(a.Receipts, maxUpload, a.Logger.Named("receipt"))
	vendors := vendor.NewHandler(a.Vendors)
	authHandler := auth.NewHandler(a.Auth)

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/reference", reference.NewHandler().RegisterRoutes)
		r.Route("/address", address.NewHandler(a.Address).RegisterRoutes)
		r.Route("/otp", otp.NewHandler(a.OTP).RegisterRoutes)
		r.Route("/vendor", func(r chi.Router) {
			vendors.RegisterRoutes(r)
			documents.RegisterRoutes(r)
		})
		r.Route("/quotes", quotes.RegisterRoutes)
		r.Route("/receipts", receipts.RegisterRoutes)

		r.Route("/admin", func(r chi.Router) {
			authHandler.RegisterRoutes(r)
			r.Group(func(r chi.Router) {
				r.Use(auth.Middleware(a.Auth))
				authHandler.RegisterProtectedRoutes(r)
				user.NewHandler(a.Users).RegisterRoutes(r)
				vendors.RegisterAdminRoutes(r)
				documents.RegisterAdminRoutes(r)
				receipts.RegisterAdminRoutes(r)
				r.Route("/quotes", quotes.RegisterAdminRoutes)
			})
		})
	})

	return router
}

func (a *App) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{"status": "ok", "database": "ok", "redis": "ok"}
	code := http.StatusOK
	if err := a.db.PingContext(ctx); err != nil {
		a.Logger.Warn("Health check: database unreachable", zap.Error(err))
		status["status"], status["database"] = "degraded", "unreachable"
		code = http.StatusServiceUnavailable
	}
	if err := a.redis.Ping(ctx).Err(); err != nil {
		a.Logger.Warn("Health check: redis unreachable", zap.Error(err))
		status["status"], status["redis"] = "degraded", "unreachable"
		code = http.StatusServiceUnavailable
	}
	httpx.Respond(w, code, status)
}
