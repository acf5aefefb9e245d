package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shaharia-lab/notifier/internal/config"
	"github.com/shaharia-lab/notifier/internal/eventbus"
	"github.com/shaharia-lab/notifier/internal/metrics"
	"github.com/shaharia-lab/notifier/internal/notification"
	"github.com/shaharia-lab/notifier/internal/service"
	"github.com/shaharia-lab/notifier/internal/storage"
)

const (
	postgresRetryAttempts = 5
	postgresRetryInterval = time.Second
	busWorkers            = 2
)

// app bundles the collaborators shared by every subcommand.
type app struct {
	store   storage.NotificationStore
	svc     service.NotificationService
	bus     eventbus.EventBus
	metrics *metrics.Recorder
	health  func(context.Context) error
	closers []func() error
}

func newApp(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (*app, error) {
	a := &app{}

	if err := a.openStore(ctx, cfg); err != nil {
		return nil, err
	}

	email, err := newEmailTransport(cfg)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	logger.Info("email transport configured", "provider", email.Name())

	router := notification.NewRouter(
		notification.NewEmailDeliverer(email, cfg.EmailDefaultSubject),
		notification.NewWebhookDeliverer(notification.NewHTTPWebhookTransport(cfg.WebhookTimeout), cfg.WebhookUserAgent),
	)

	a.metrics = metrics.NewRecorder()
	a.bus = eventbus.New(busWorkers, eventbus.WithLogger(logger))
	a.bus.Subscribe(a.metrics.Listener())
	a.closers = append(a.closers, func() error { a.bus.Close(); return nil })

	a.svc = service.NewNotificationService(a.store, router, a.bus, logger)
	return a, nil
}

func (a *app) openStore(ctx context.Context, cfg *config.AppConfig) error {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		pool, err := storage.NewPostgresPool(ctx, storage.PostgresConfig{
			URL:           cfg.DatabaseURL,
			RetryAttempts: postgresRetryAttempts,
			RetryInterval: postgresRetryInterval,
		})
		if err != nil {
			return fmt.Errorf("connecting to postgres: %w", err)
		}
		a.store = storage.NewPostgresNotificationStore(pool)
		a.health = storage.PostgresHealthcheck(pool)
		a.closers = append(a.closers, func() error { pool.Close(); return nil })
	default:
		db, _, err := storage.NewSQLiteDB(cfg.SQLitePath())
		if err != nil {
			return fmt.Errorf("opening sqlite database: %w", err)
		}
		a.store = storage.NewSQLiteNotificationStore(db)
		a.health = sqliteHealthcheck(db)
		a.closers = append(a.closers, db.Close)
	}
	return nil
}

func sqliteHealthcheck(db *sql.DB) func(context.Context) error {
	return func(ctx context.Context) error {
		return db.PingContext(ctx)
	}
}

func newEmailTransport(cfg *config.AppConfig) (notification.EmailTransport, error) {
	switch cfg.EmailProvider {
	case config.EmailProviderSMTP:
		return notification.NewSMTPTransport(notification.SMTPConfig{
			Host:       cfg.SMTPHost,
			Port:       cfg.SMTPPort,
			Username:   cfg.SMTPUsername,
			Password:   cfg.SMTPPassword,
			FromAddr:   cfg.EmailFrom,
			Encryption: cfg.SMTPEncryption,
			Timeout:    cfg.SMTPTimeout,
		}), nil
	case config.EmailProviderPostmark:
		t, err := notification.NewPostmarkTransport(cfg.PostmarkServerToken, cfg.PostmarkAccountToken, cfg.EmailFrom)
		if err != nil {
			return nil, fmt.Errorf("configuring postmark: %w", err)
		}
		return t, nil
	default:
		return notification.NewFileTransport(cfg.OutboxDir(), cfg.EmailFrom), nil
	}
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}
