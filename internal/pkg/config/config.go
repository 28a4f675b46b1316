package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	productionBaseURL  = "https://vendors.portal.example.com"
	developmentBaseURL = "http://localhost:5173"
)

// Config holds all application configuration. It is built once at startup
// and handed to every constructor that needs it.
type Config struct {
	Env         string `env:"APP_ENV" envDefault:"development"`
	Port        string `env:"APP_PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	BaseURL     string `env:"PORTAL_BASE_URL"`
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"false"`
	RedisURL    string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`

	JWTSecret string        `env:"JWT_SECRET,required,notEmpty"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"12h"`

	BlobRoot       string `env:"BLOB_ROOT" envDefault:"./data/blobs"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"` // 10MB

	ClassifierURL    string        `env:"CLASSIFIER_URL"`
	ClassifierAPIKey string        `env:"CLASSIFIER_API_KEY"`
	GeocoderURL      string        `env:"GEOCODER_URL" envDefault:"https://nominatim.openstreetmap.org/search"`
	UpstreamTimeout  time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"20s"`

	MismatchPolicy string `env:"DOCUMENT_MISMATCH_POLICY" envDefault:"advisory"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	MailFrom     string `env:"MAIL_FROM" envDefault:"no-reply@portal.example.com"`

	OTPTTL            time.Duration `env:"OTP_TTL" envDefault:"10m"`
	OTPMaxAttempts    int           `env:"OTP_MAX_ATTEMPTS" envDefault:"5"`
	OTPResendInterval time.Duration `env:"OTP_RESEND_INTERVAL" envDefault:"60s"`
	OTPVerifiedTTL    time.Duration `env:"OTP_VERIFIED_TTL" envDefault:"30m"`
}

// Load reads configuration from environment variables, after loading a .env
// file when one is present.
func Load() (*Config, error) {
	// Attempt to load .env file for local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values env tags cannot express.
func (c *Config) Validate() error {
	switch c.MismatchPolicy {
	case "advisory", "strict":
	default:
		return fmt.Errorf("DOCUMENT_MISMATCH_POLICY must be advisory or strict, got %q", c.MismatchPolicy)
	}
	if c.OTPMaxAttempts < 1 {
		return fmt.Errorf("OTP_MAX_ATTEMPTS must be positive")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

// IsProduction reports whether the process runs in the production environment.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// PortalURL is the front-end base URL used in links sent to vendors.
func (c *Config) PortalURL() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	if c.IsProduction() {
		return productionBaseURL
	}
	return developmentBaseURL
}

// SMTPEnabled reports whether outgoing mail should go through SMTP.
func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != ""
}
