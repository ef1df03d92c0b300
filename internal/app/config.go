package app

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/sakura-salon/sakura/internal/api"
	"github.com/sakura-salon/sakura/internal/mail"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"30s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// PGDSN is optional; without it auth events are not recorded and
	// booking keys live in Redis.
	PGDSN      string `envconfig:"PG_DSN"`
	PGMaxConns int32  `envconfig:"PG_MAX_CONNS" default:"5"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	SessionSecret string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"720h"`
	SessionCookie string        `envconfig:"SESSION_COOKIE" default:"sakura_session"`

	CSRFSecret string `envconfig:"CSRF_SECRET" required:"true"`

	APIBaseURL      string        `envconfig:"API_BASE_URL" default:"https://functions.poehali.dev"`
	APIAuthPath     string        `envconfig:"API_AUTH_PATH" default:"4fc9e859-8204-4a89-a644-13ff2262147a"`
	APIBookingsPath string        `envconfig:"API_BOOKINGS_PATH" default:"f02eae3d-b70d-4e88-af2c-6429ae1b0a03"`
	APIReviewsPath  string        `envconfig:"API_REVIEWS_PATH" default:"f7d21145-37df-4392-95cc-4cc3b5e4f72d"`
	APIFeedbackPath string        `envconfig:"API_FEEDBACK_PATH" default:"5b65bea3-349f-4793-ace0-eb564074ed31"`
	APITimeout      time.Duration `envconfig:"API_TIMEOUT" default:"15s"`

	AuthRevalidateTTL time.Duration `envconfig:"AUTH_REVALIDATE_TTL" default:"1m"`
	AuthCheckTimeout  time.Duration `envconfig:"AUTH_CHECK_TIMEOUT" default:"10s"`
	AuthSettle        time.Duration `envconfig:"AUTH_SETTLE" default:"300ms"`
	AuthRateLimit     int           `envconfig:"AUTH_RATE_LIMIT" default:"10"`
	RateLimit         int           `envconfig:"RATE_LIMIT" default:"120"`

	ReviewsCacheTTL      time.Duration `envconfig:"REVIEWS_CACHE_TTL" default:"10m"`
	IdempotencyTTL       time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"24h"`
	IdempotencyRetention int           `envconfig:"IDEMPOTENCY_RETENTION_HOURS" default:"72"`

	SMTPHost           string `envconfig:"SMTP_HOST"`
	SMTPPort           int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername       string `envconfig:"SMTP_USERNAME"`
	SMTPPassword       string `envconfig:"SMTP_PASSWORD"`
	SMTPEncryption     string `envconfig:"SMTP_ENCRYPTION" default:"starttls"`
	SMTPAuthType       string `envconfig:"SMTP_AUTH_TYPE" default:"plain"`
	SMTPCertValidation bool   `envconfig:"SMTP_CERT_VALIDATION" default:"true"`
	SMTPFrom           string `envconfig:"SMTP_FROM" default:"Sakura <no-reply@sakura.local>"`
	SalonNotifyEmail   string `envconfig:"SALON_NOTIFY_EMAIL"`

	WorkerConcurrency int `envconfig:"WORKER_CONCURRENCY" default:"5"`

	GotenbergURL string `envconfig:"GOTENBERG_URL"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.SessionSecret == "" {
		return nil, errors.New("session secret must be provided")
	}
	if cfg.CSRFSecret == "" {
		return nil, errors.New("csrf secret must be provided")
	}
	if cfg.APIBaseURL == "" {
		return nil, errors.New("api base url must be provided")
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// APIConfig maps the remote API settings onto the client configuration.
func (c *Config) APIConfig(observer api.Observer) api.Config {
	return api.Config{
		BaseURL: c.APIBaseURL,
		Paths: map[api.Endpoint]string{
			api.EndpointAuth:     c.APIAuthPath,
			api.EndpointBookings: c.APIBookingsPath,
			api.EndpointReviews:  c.APIReviewsPath,
			api.EndpointFeedback: c.APIFeedbackPath,
		},
		Timeout:  c.APITimeout,
		Observer: observer,
	}
}

// SMTPConfig maps the SMTP settings onto the mail sender configuration.
func (c *Config) SMTPConfig() mail.SMTPConfig {
	return mail.SMTPConfig{
		Host:           c.SMTPHost,
		Port:           c.SMTPPort,
		Username:       c.SMTPUsername,
		Password:       c.SMTPPassword,
		Encryption:     c.SMTPEncryption,
		AuthType:       c.SMTPAuthType,
		CertValidation: c.SMTPCertValidation,
		From:           c.SMTPFrom,
	}
}
