package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaharia-lab/notifier/internal/notification"
)

const pgSelectNotificationColumns = `
		SELECT id, user_id, channel, recipient, subject, message, status,
		       created_at, sent_at, error
		FROM notifications`

// PostgresNotificationStore implements NotificationStore backed by PostgreSQL.
type PostgresNotificationStore struct {
	pool *pgxpool.Pool
}

// NewPostgresNotificationStore returns a new PostgresNotificationStore.
func NewPostgresNotificationStore(pool *pgxpool.Pool) *PostgresNotificationStore {
	return &PostgresNotificationStore{pool: pool}
}

// Create inserts a notification row.
func (s *PostgresNotificationStore) Create(ctx context.Context, n notification.Notification) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO notifications (id, user_id, channel, recipient, subject, message,
		                           status, created_at, sent_at, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		n.ID, n.UserID, string(n.Channel), n.Recipient, optional(n.Subject), n.Message,
		string(n.Status), n.CreatedAt.UTC(), n.SentAt, optional(n.Error),
	)
	if err != nil {
		return fmt.Errorf("inserting notification %q: %w", n.ID, err)
	}
	return nil
}

// Update writes the delivery outcome of an existing notification.
func (s *PostgresNotificationStore) Update(ctx context.Context, n notification.Notification) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE notifications SET status = $1, sent_at = $2, error = $3
		WHERE id = $4`,
		string(n.Status), n.SentAt, optional(n.Error), n.ID,
	)
	if err != nil {
		return fmt.Errorf("updating notification %q: %w", n.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Get returns the notification with the given id.
func (s *PostgresNotificationStore) Get(ctx context.Context, id string) (*notification.Notification, error) {
	row := s.pool.QueryRow(ctx, pgSelectNotificationColumns+` WHERE id = $1`, id)
	n, err := scanPgNotification(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting notification %q: %w", id, err)
	}
	return n, nil
}

// ListByUser returns a user's notifications ordered by created_at descending.
func (s *PostgresNotificationStore) ListByUser(ctx context.Context, userID string) ([]notification.Notification, error) {
	return s.query(ctx, pgSelectNotificationColumns+`
		WHERE user_id = $1
		ORDER BY created_at DESC, seq DESC`, userID)
}

// ListByStatus returns notifications in status ordered by created_at descending.
func (s *PostgresNotificationStore) ListByStatus(ctx context.Context, status notification.Status) ([]notification.Notification, error) {
	return s.query(ctx, pgSelectNotificationColumns+`
		WHERE status = $1
		ORDER BY created_at DESC, seq DESC`, string(status))
}

// List returns all notifications ordered by created_at descending.
func (s *PostgresNotificationStore) List(ctx context.Context) ([]notification.Notification, error) {
	return s.query(ctx, pgSelectNotificationColumns+`
		ORDER BY created_at DESC, seq DESC`)
}

func (s *PostgresNotificationStore) query(ctx context.Context, q string, args ...any) ([]notification.Notification, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying notifications: %w", err)
	}
	defer rows.Close()

	list := make([]notification.Notification, 0)
	for rows.Next() {
		n, err := scanPgNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning notification row: %w", err)
		}
		list = append(list, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating notification rows: %w", err)
	}
	return list, nil
}

func scanPgNotification(r pgx.Row) (*notification.Notification, error) {
	var (
		n               notification.Notification
		channel, status string
		subject, errMsg *string
		sentAt          *time.Time
	)
	if err := r.Scan(&n.ID, &n.UserID, &channel, &n.Recipient, &subject, &n.Message,
		&status, &n.CreatedAt, &sentAt, &errMsg); err != nil {
		return nil, err
	}
	n.Channel = notification.Channel(channel)
	n.Status = notification.Status(status)
	n.CreatedAt = n.CreatedAt.UTC()
	if subject != nil {
		n.Subject = *subject
	}
	if errMsg != nil {
		n.Error = *errMsg
	}
	if sentAt != nil {
		t := sentAt.UTC()
		n.SentAt = &t
	}
	return &n, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
