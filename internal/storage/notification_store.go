package storage

import (
	"context"
	"errors"
	"time"

	"github.com/shaharia-lab/notifier/internal/notification"
)

// ErrNotFound is returned when no notification matches the requested id.
var ErrNotFound = errors.New("notification not found")

// NotificationStore persists notifications and their delivery outcome.
// Implementations must make an Update visible to a subsequent Get of the
// same id.
type NotificationStore interface {
	// Create inserts a new notification. The id must not exist yet.
	Create(ctx context.Context, n notification.Notification) error
	// Update overwrites the mutable fields (status, sent_at, error) of an
	// existing notification. Returns ErrNotFound if the id is unknown.
	Update(ctx context.Context, n notification.Notification) error
	// Get returns the notification with the given id, or ErrNotFound.
	Get(ctx context.Context, id string) (*notification.Notification, error)
	// ListByUser returns the notifications of one user, most recent first.
	ListByUser(ctx context.Context, userID string) ([]notification.Notification, error)
	// ListByStatus returns notifications in the given status, most recent first.
	ListByStatus(ctx context.Context, status notification.Status) ([]notification.Notification, error)
	// List returns every notification, most recent first.
	List(ctx context.Context) ([]notification.Notification, error)
}

// timeLayout is a fixed-width UTC layout so that stored timestamps sort
// lexically in chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}
