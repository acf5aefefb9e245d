package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shaharia-lab/notifier/internal/notification"
)

const selectNotificationColumns = `
		SELECT id, user_id, channel, recipient, subject, message, status,
		       created_at, sent_at, error
		FROM notifications`

// SQLiteNotificationStore implements NotificationStore backed by SQLite.
type SQLiteNotificationStore struct {
	db *sql.DB
}

// NewSQLiteNotificationStore returns a new SQLiteNotificationStore.
func NewSQLiteNotificationStore(db *sql.DB) *SQLiteNotificationStore {
	return &SQLiteNotificationStore{db: db}
}

// Create inserts a notification row.
func (s *SQLiteNotificationStore) Create(ctx context.Context, n notification.Notification) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, channel, recipient, subject, message,
		                           status, created_at, sent_at, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.UserID, string(n.Channel), n.Recipient, nullString(n.Subject), n.Message,
		string(n.Status), formatTime(n.CreatedAt), nullTime(n), nullString(n.Error),
	)
	if err != nil {
		return fmt.Errorf("inserting notification %q: %w", n.ID, err)
	}
	return nil
}

// Update writes the delivery outcome of an existing notification.
func (s *SQLiteNotificationStore) Update(ctx context.Context, n notification.Notification) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE notifications SET status = ?, sent_at = ?, error = ?
		WHERE id = ?`,
		string(n.Status), nullTime(n), nullString(n.Error), n.ID,
	)
	if err != nil {
		return fmt.Errorf("updating notification %q: %w", n.ID, err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Get returns the notification with the given id.
func (s *SQLiteNotificationStore) Get(ctx context.Context, id string) (*notification.Notification, error) {
	row := s.db.QueryRowContext(ctx, selectNotificationColumns+` WHERE id = ?`, id)
	n, err := scanNotification(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting notification %q: %w", id, err)
	}
	return n, nil
}

// ListByUser returns a user's notifications ordered by created_at descending.
func (s *SQLiteNotificationStore) ListByUser(ctx context.Context, userID string) ([]notification.Notification, error) {
	return s.query(ctx, selectNotificationColumns+`
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC`, userID)
}

// ListByStatus returns notifications in status ordered by created_at descending.
func (s *SQLiteNotificationStore) ListByStatus(ctx context.Context, status notification.Status) ([]notification.Notification, error) {
	return s.query(ctx, selectNotificationColumns+`
		WHERE status = ?
		ORDER BY created_at DESC, rowid DESC`, string(status))
}

// List returns all notifications ordered by created_at descending.
func (s *SQLiteNotificationStore) List(ctx context.Context) ([]notification.Notification, error) {
	return s.query(ctx, selectNotificationColumns+`
		ORDER BY created_at DESC, rowid DESC`)
}

func (s *SQLiteNotificationStore) query(ctx context.Context, q string, args ...any) (result []notification.Notification, err error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying notifications: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", cerr)
		}
	}()

	list := make([]notification.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
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

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanNotification(r rowScanner) (*notification.Notification, error) {
	var (
		n               notification.Notification
		channel, status string
		createdAt       string
		subject, errMsg sql.NullString
		sentAt          sql.NullString
	)
	if err := r.Scan(&n.ID, &n.UserID, &channel, &n.Recipient, &subject, &n.Message,
		&status, &createdAt, &sentAt, &errMsg); err != nil {
		return nil, err
	}

	n.Channel = notification.Channel(channel)
	n.Status = notification.Status(status)
	n.Subject = subject.String
	n.Error = errMsg.String

	var err error
	if n.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at of %q: %w", n.ID, err)
	}
	if sentAt.Valid {
		t, err := parseTime(sentAt.String)
		if err != nil {
			return nil, fmt.Errorf("parsing sent_at of %q: %w", n.ID, err)
		}
		n.SentAt = &t
	}
	return &n, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(n notification.Notification) sql.NullString {
	if n.SentAt == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*n.SentAt), Valid: true}
}
