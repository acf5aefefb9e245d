// Package scheduler runs periodic maintenance jobs with gocron. Its one job
// reports notifications left in PENDING longer than a threshold, which
// happens when the process stops between persisting the PENDING record and
// persisting the delivery outcome.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/shaharia-lab/notifier/internal/eventbus"
	"github.com/shaharia-lab/notifier/internal/notification"
)

const defaultStaleAfter = 10 * time.Minute

// PendingLister is the read access the sweep needs. Both
// storage.NotificationStore and service.NotificationService satisfy it.
type PendingLister interface {
	ListByStatus(ctx context.Context, status notification.Status) ([]notification.Notification, error)
}

// EventPublisher allows the scheduler to emit events without depending on a
// concrete event bus implementation.
type EventPublisher interface {
	Publish(eventType string, payload map[string]string)
}

// Config holds the scheduler configuration.
type Config struct {
	Lister PendingLister
	Logger *slog.Logger
	// StaleAfter is the minimum age of a PENDING record to count as stale.
	StaleAfter time.Duration
	// Interval between sweeps. Zero disables the job.
	Interval time.Duration
	// EventPublisher is optional. When set, every sweep publishes its count.
	EventPublisher EventPublisher
	// Now overrides the clock; defaults to time.Now.
	Now func() time.Time
}

// Scheduler manages the stale sweep job using gocron.
type Scheduler struct {
	cron   gocron.Scheduler
	cfg    Config
	logger *slog.Logger

	mu        sync.Mutex
	lastStale []notification.Notification
}

// New creates a new Scheduler.
func New(cfg Config) (*Scheduler, error) {
	if cfg.Lister == nil {
		return nil, errors.New("scheduler requires a pending lister")
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = defaultStaleAfter
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	cron, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("creating gocron scheduler: %w", err)
	}

	return &Scheduler{cron: cron, cfg: cfg, logger: cfg.Logger}, nil
}

// Start schedules the sweep and starts the gocron scheduler. The first sweep
// runs immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.cfg.Interval <= 0 {
		s.logger.Info("stale sweep disabled")
		return nil
	}

	_, err := s.cron.NewJob(
		gocron.DurationJob(s.cfg.Interval),
		gocron.NewTask(func() {
			if _, err := s.Sweep(ctx); err != nil {
				s.logger.Error("stale sweep failed", "error", err)
			}
		}),
		gocron.WithName("stale-pending-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("scheduling stale sweep: %w", err)
	}

	s.cron.Start()
	s.logger.Info("stale sweep scheduled", "interval", s.cfg.Interval, "stale_after", s.cfg.StaleAfter)
	return nil
}

// Stop shuts down the gocron scheduler.
func (s *Scheduler) Stop() error {
	return s.cron.Shutdown()
}

// Sweep lists PENDING notifications created more than StaleAfter ago. It
// only reports them; records are never modified.
func (s *Scheduler) Sweep(ctx context.Context) ([]notification.Notification, error) {
	pending, err := s.cfg.Lister.ListByStatus(ctx, notification.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("listing pending notifications: %w", err)
	}

	cutoff := s.cfg.Now().Add(-s.cfg.StaleAfter)
	stale := make([]notification.Notification, 0)
	for _, n := range pending {
		if n.CreatedAt.Before(cutoff) {
			stale = append(stale, n)
		}
	}

	for _, n := range stale {
		s.logger.Warn("notification stuck in PENDING",
			"id", n.ID, "user_id", n.UserID, "channel", n.Channel, "created_at", n.CreatedAt)
	}
	if s.cfg.EventPublisher != nil {
		s.cfg.EventPublisher.Publish(eventbus.EventNotificationStale, map[string]string{
			eventbus.KeyCount: strconv.Itoa(len(stale)),
		})
	}

	s.mu.Lock()
	s.lastStale = stale
	s.mu.Unlock()
	return stale, nil
}

// LastStale returns the result of the most recent sweep.
func (s *Scheduler) LastStale() []notification.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notification.Notification(nil), s.lastStale...)
}
