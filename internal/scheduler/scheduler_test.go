package scheduler_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/notifier/internal/eventbus"
	"github.com/shaharia-lab/notifier/internal/notification"
	"github.com/shaharia-lab/notifier/internal/scheduler"
	storagemocks "github.com/shaharia-lab/notifier/internal/storage/mocks"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type capturePublisher struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func (p *capturePublisher) Publish(eventType string, payload map[string]string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventbus.Event{Type: eventType, Payload: payload})
}

func (p *capturePublisher) len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func pendingAt(id string, createdAt time.Time) notification.Notification {
	return notification.Notification{
		ID: id, UserID: "u1", Channel: notification.ChannelEmail,
		Recipient: "a@b.com", Message: "hi", Status: notification.StatusPending, CreatedAt: createdAt,
	}
}

func TestSweep_ReportsOnlyOldPending(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	store := &storagemocks.MockNotificationStore{}
	store.On("ListByStatus", mock.Anything, notification.StatusPending).Return([]notification.Notification{
		pendingAt("fresh", now.Add(-time.Minute)),
		pendingAt("old", now.Add(-15*time.Minute)),
		pendingAt("older", now.Add(-time.Hour)),
	}, nil)

	pub := &capturePublisher{}
	s, err := scheduler.New(scheduler.Config{
		Lister:         store,
		Logger:         newTestLogger(),
		StaleAfter:     10 * time.Minute,
		EventPublisher: pub,
		Now:            func() time.Time { return now },
	})
	require.NoError(t, err)

	stale, err := s.Sweep(context.Background())
	require.NoError(t, err)
	require.Len(t, stale, 2)
	assert.Equal(t, "old", stale[0].ID)
	assert.Equal(t, "older", stale[1].ID)
	assert.Len(t, s.LastStale(), 2)

	require.Equal(t, 1, pub.len())
	assert.Equal(t, eventbus.EventNotificationStale, pub.events[0].Type)
	assert.Equal(t, "2", pub.events[0].Payload[eventbus.KeyCount])
	store.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestSweep_ListError(t *testing.T) {
	store := &storagemocks.MockNotificationStore{}
	store.On("ListByStatus", mock.Anything, notification.StatusPending).Return(nil, errors.New("db down"))

	s, err := scheduler.New(scheduler.Config{Lister: store, Logger: newTestLogger()})
	require.NoError(t, err)

	_, err = s.Sweep(context.Background())
	assert.ErrorContains(t, err, "db down")
}

func TestNew_RequiresLister(t *testing.T) {
	_, err := scheduler.New(scheduler.Config{})
	assert.Error(t, err)
}

func TestStart_RunsImmediately(t *testing.T) {
	store := &storagemocks.MockNotificationStore{}
	store.On("ListByStatus", mock.Anything, notification.StatusPending).Return([]notification.Notification{}, nil)

	pub := &capturePublisher{}
	s, err := scheduler.New(scheduler.Config{
		Lister:         store,
		Logger:         newTestLogger(),
		Interval:       time.Hour,
		EventPublisher: pub,
	})
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))
	defer func() { _ = s.Stop() }()

	assert.Eventually(t, func() bool { return pub.len() >= 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestStart_Disabled(t *testing.T) {
	store := &storagemocks.MockNotificationStore{}
	s, err := scheduler.New(scheduler.Config{Lister: store, Logger: newTestLogger()})
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Stop())
	store.AssertNotCalled(t, "ListByStatus", mock.Anything, mock.Anything)
}
