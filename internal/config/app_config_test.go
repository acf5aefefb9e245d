package config

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppConfig_SlogLevel(t *testing.T) {
	tests := []struct {
		name     string
		logLevel string
		want     slog.Level
	}{
		{"debug", "debug", slog.LevelDebug},
		{"info", "info", slog.LevelInfo},
		{"warn", "warn", slog.LevelWarn},
		{"error", "error", slog.LevelError},
		{"unknown defaults to info", "unknown", slog.LevelInfo},
		{"empty defaults to info", "", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &AppConfig{LogLevel: tt.logLevel}
			assert.Equal(t, tt.want, c.SlogLevel())
		})
	}
}

func TestAppConfig_DirectoryPaths(t *testing.T) {
	c := &AppConfig{DataDir: "/data"}

	tests := []struct {
		name string
		fn   func() string
		want string
	}{
		{"LogDir", c.LogDir, "/data/logs"},
		{"SQLitePath", c.SQLitePath, "/data/notifier.db"},
		{"OutboxDir", c.OutboxDir, "/data/outbox"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fn())
		})
	}
}

// unsetEnv removes key for the duration of the test. envconfig applies
// defaults only to variables that are not set at all.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("NOTIFIER_DATA_DIR", "/tmp/test-notifier")
	for _, key := range []string{
		"PORT", "LOG_LEVEL", "LOG_FORMAT", "DB_DRIVER", "DATABASE_URL", "EMAIL_PROVIDER",
		"EMAIL_FROM", "EMAIL_DEFAULT_SUBJECT", "WEBHOOK_TIMEOUT", "WEBHOOK_USER_AGENT",
		"SMTP_TIMEOUT", "STALE_PENDING_AFTER", "STALE_SWEEP_INTERVAL", "CORS_ALLOWED_ORIGINS",
	} {
		unsetEnv(t, key)
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/test-notifier", cfg.DataDir)
	assert.Equal(t, 8990, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, EmailProviderDev, cfg.EmailProvider)
	assert.Equal(t, "noreply@notificationservice.com", cfg.EmailFrom)
	assert.Equal(t, "Notification from Notification Service", cfg.EmailDefaultSubject)
	assert.Equal(t, "NotificationService/1.0", cfg.WebhookUserAgent)
	assert.Equal(t, 5*time.Second, cfg.WebhookTimeout)
	assert.Equal(t, 5*time.Second, cfg.SMTPTimeout)
	assert.Equal(t, 10*time.Minute, cfg.StalePendingAfter)
	assert.Equal(t, time.Minute, cfg.StaleSweepInterval)
	assert.Empty(t, cfg.CORSAllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("NOTIFIER_DATA_DIR", "/tmp/n")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/notifier")
	t.Setenv("EMAIL_PROVIDER", "smtp")
	t.Setenv("SMTP_HOST", "mail.example.com")
	t.Setenv("WEBHOOK_TIMEOUT", "2s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test,http://b.test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, EmailProviderSMTP, cfg.EmailProvider)
	assert.Equal(t, 2*time.Second, cfg.WebhookTimeout)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("NOTIFIER_DATA_DIR", "/tmp/n")
	t.Setenv("WEBHOOK_TIMEOUT", "soon")

	_, err := Load()
	assert.Error(t, err)
}

func TestAppConfig_Validate(t *testing.T) {
	valid := func() AppConfig {
		return AppConfig{Port: 8990, LogFormat: "json", DBDriver: DriverSQLite, EmailProvider: EmailProviderDev}
	}

	tests := []struct {
		name    string
		mutate  func(c *AppConfig)
		wantErr string
	}{
		{"valid defaults", func(_ *AppConfig) {}, ""},
		{"unknown driver", func(c *AppConfig) { c.DBDriver = "mysql" }, `unsupported DB_DRIVER "mysql"`},
		{"postgres without url", func(c *AppConfig) { c.DBDriver = DriverPostgres }, "DATABASE_URL is required"},
		{"smtp without host", func(c *AppConfig) { c.EmailProvider = EmailProviderSMTP }, "SMTP_HOST is required"},
		{"postmark without token", func(c *AppConfig) { c.EmailProvider = EmailProviderPostmark }, "POSTMARK_SERVER_TOKEN is required"},
		{"unknown provider", func(c *AppConfig) { c.EmailProvider = "ses" }, `unsupported EMAIL_PROVIDER "ses"`},
		{"unknown log format", func(c *AppConfig) { c.LogFormat = "xml" }, `unsupported LOG_FORMAT "xml"`},
		{"port out of range", func(c *AppConfig) { c.Port = 70000 }, "invalid PORT 70000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
