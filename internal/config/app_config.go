package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Supported values for DB_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Supported values for EMAIL_PROVIDER.
const (
	EmailProviderSMTP     = "smtp"
	EmailProviderPostmark = "postmark"
	EmailProviderDev      = "dev"
)

var dotEnvOnce sync.Once

// AppConfig holds all application-level configuration loaded from environment variables.
type AppConfig struct {
	// Port is the HTTP server port. Defaults to 8990.
	Port int `envconfig:"PORT" default:"8990"`

	// DataDir is the root data directory. Defaults to ~/.notifier.
	DataDir string `envconfig:"NOTIFIER_DATA_DIR"`

	// LogLevel sets the minimum log level (debug, info, warn, error). Defaults to info.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// LogFormat selects the slog handler: json or text.
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	DBDriver    string `envconfig:"DB_DRIVER" default:"sqlite"`
	DatabaseURL string `envconfig:"DATABASE_URL"`

	EmailProvider string `envconfig:"EMAIL_PROVIDER" default:"dev"`

	SMTPHost       string        `envconfig:"SMTP_HOST"`
	SMTPPort       int           `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername   string        `envconfig:"SMTP_USERNAME"`
	SMTPPassword   string        `envconfig:"SMTP_PASSWORD"`
	SMTPEncryption string        `envconfig:"SMTP_ENCRYPTION" default:"starttls"`
	SMTPTimeout    time.Duration `envconfig:"SMTP_TIMEOUT" default:"5s"`

	PostmarkServerToken  string `envconfig:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `envconfig:"POSTMARK_ACCOUNT_TOKEN"`

	// EmailFrom is the fixed sender address of every email.
	EmailFrom string `envconfig:"EMAIL_FROM" default:"noreply@notificationservice.com"`
	// EmailDefaultSubject is used when a notification carries no subject.
	EmailDefaultSubject string `envconfig:"EMAIL_DEFAULT_SUBJECT" default:"Notification from Notification Service"`

	WebhookTimeout   time.Duration `envconfig:"WEBHOOK_TIMEOUT" default:"5s"`
	WebhookUserAgent string        `envconfig:"WEBHOOK_USER_AGENT" default:"NotificationService/1.0"`

	// CORSAllowedOrigins is a comma separated list. Empty disables CORS headers.
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS"`

	// StalePendingAfter is the age after which a PENDING record is reported as stale.
	StalePendingAfter time.Duration `envconfig:"STALE_PENDING_AFTER" default:"10m"`
	// StaleSweepInterval is how often the stale sweep runs. Zero disables it.
	StaleSweepInterval time.Duration `envconfig:"STALE_SWEEP_INTERVAL" default:"1m"`

	// OTLPEndpoint enables trace export over OTLP/gRPC when set.
	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Load reads AppConfig from environment variables using envconfig.
// A .env file in the working directory is applied first if present;
// variables already set in the environment take precedence.
// DataDir defaults to ~/.notifier if not set.
func Load() (*AppConfig, error) {
	dotEnvOnce.Do(func() {
		// The .env file is optional.
		_ = godotenv.Load()
	})

	var c AppConfig
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		c.DataDir = filepath.Join(home, ".notifier")
	}
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	c.EmailProvider = strings.ToLower(strings.TrimSpace(c.EmailProvider))

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate reports configuration combinations that cannot start the service.
func (c *AppConfig) Validate() error {
	var errs []error

	switch c.DBDriver {
	case DriverSQLite:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when DB_DRIVER=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver))
	}

	switch c.EmailProvider {
	case EmailProviderDev:
	case EmailProviderSMTP:
		if c.SMTPHost == "" {
			errs = append(errs, errors.New("SMTP_HOST is required when EMAIL_PROVIDER=smtp"))
		}
	case EmailProviderPostmark:
		if c.PostmarkServerToken == "" {
			errs = append(errs, errors.New("POSTMARK_SERVER_TOKEN is required when EMAIL_PROVIDER=postmark"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported EMAIL_PROVIDER %q", c.EmailProvider))
	}

	switch c.LogFormat {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("unsupported LOG_FORMAT %q", c.LogFormat))
	}

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid PORT %d", c.Port))
	}

	return errors.Join(errs...)
}

// SlogLevel converts the LogLevel string to a slog.Level.
// Unknown values default to slog.LevelInfo.
func (c *AppConfig) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogDir returns the path to the log directory (~/.notifier/logs).
func (c *AppConfig) LogDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// SQLitePath returns the path of the SQLite database file.
func (c *AppConfig) SQLitePath() string {
	return filepath.Join(c.DataDir, "notifier.db")
}

// OutboxDir returns where the dev email provider writes messages.
func (c *AppConfig) OutboxDir() string {
	return filepath.Join(c.DataDir, "outbox")
}
