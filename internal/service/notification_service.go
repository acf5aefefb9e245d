package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/shaharia-lab/notifier/internal/eventbus"
	"github.com/shaharia-lab/notifier/internal/notification"
	"github.com/shaharia-lab/notifier/internal/storage"
)

const tracerName = "github.com/shaharia-lab/notifier/internal/service"

// CreateRequest is the input of a single dispatch.
type CreateRequest struct {
	UserID    string `json:"userId"`
	Channel   string `json:"channel,omitempty"`
	Recipient string `json:"recipient"`
	Subject   string `json:"subject,omitempty"`
	Message   string `json:"message"`
}

// Dispatcher performs one delivery attempt. *notification.Router implements it.
type Dispatcher interface {
	Deliver(ctx context.Context, n notification.Notification) notification.Outcome
}

// NotificationService dispatches notifications and answers history queries.
type NotificationService interface {
	// CreateAndSend validates the request, persists a PENDING record, attempts
	// delivery once and persists the terminal state. Validation failures are
	// returned before anything is stored; delivery failures are recorded on
	// the returned notification and never returned as an error.
	CreateAndSend(ctx context.Context, req CreateRequest) (*notification.Notification, error)
	// GetByID returns a *NotFoundError when the id is unknown.
	GetByID(ctx context.Context, id string) (*notification.Notification, error)
	// ListByUser returns a user's notifications, most recent first.
	ListByUser(ctx context.Context, userID string) ([]notification.Notification, error)
	// ListByStatus returns notifications in one status, most recent first.
	ListByStatus(ctx context.Context, status notification.Status) ([]notification.Notification, error)
	// ListAll returns every notification, most recent first.
	ListAll(ctx context.Context) ([]notification.Notification, error)
}

// NotificationServiceOption customizes a NotificationService.
type NotificationServiceOption func(*notificationService)

// WithClock overrides the time source used for createdAt and sentAt.
func WithClock(now func() time.Time) NotificationServiceOption {
	return func(s *notificationService) { s.now = now }
}

// WithIDGenerator overrides how notification ids are generated.
func WithIDGenerator(newID func() string) NotificationServiceOption {
	return func(s *notificationService) { s.newID = newID }
}

type notificationService struct {
	store      storage.NotificationStore
	dispatcher Dispatcher
	publisher  EventPublisher
	logger     *slog.Logger
	tracer     trace.Tracer
	now        func() time.Time
	newID      func() string
}

// NewNotificationService creates a new NotificationService. publisher may be nil.
func NewNotificationService(
	store storage.NotificationStore,
	dispatcher Dispatcher,
	publisher EventPublisher,
	logger *slog.Logger,
	opts ...NotificationServiceOption,
) NotificationService {
	s := &notificationService{
		store:      store,
		dispatcher: dispatcher,
		publisher:  publisher,
		logger:     logger,
		tracer:     otel.Tracer(tracerName),
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *notificationService) CreateAndSend(ctx context.Context, req CreateRequest) (*notification.Notification, error) {
	ctx, span := s.tracer.Start(ctx, "notification.dispatch")
	defer span.End()

	channel, err := validateRequest(req)
	if err != nil {
		span.SetStatus(codes.Error, "invalid request")
		return nil, err
	}
	if err := notification.ValidateRecipient(channel, req.Recipient); err != nil {
		span.SetStatus(codes.Error, "invalid recipient")
		return nil, err
	}

	n := notification.Notification{
		ID:        s.newID(),
		UserID:    req.UserID,
		Channel:   channel,
		Recipient: req.Recipient,
		Subject:   req.Subject,
		Message:   req.Message,
		Status:    notification.StatusPending,
		CreatedAt: s.now().UTC(),
	}
	span.SetAttributes(
		attribute.String("notification.id", n.ID),
		attribute.String("notification.channel", string(n.Channel)),
	)

	if err := s.store.Create(ctx, n); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create failed")
		return nil, fmt.Errorf("creating notification: %w", err)
	}

	outcome := s.dispatcher.Deliver(ctx, n)
	var final notification.Notification
	if outcome.Failed() {
		final, err = n.MarkFailed(outcome.Cause)
	} else {
		final, err = n.MarkSent(s.now().UTC())
	}
	if err != nil {
		return nil, fmt.Errorf("finalizing notification %q: %w", n.ID, err)
	}
	n = final

	// The outcome is durable even when the caller has gone away mid-delivery.
	if err := s.store.Update(context.WithoutCancel(ctx), n); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return nil, fmt.Errorf("recording delivery outcome: %w", err)
	}

	span.SetAttributes(attribute.String("notification.status", string(n.Status)))
	if outcome.Failed() {
		span.SetStatus(codes.Error, "delivery failed")
		s.logger.Warn("notification delivery failed",
			"id", n.ID, "user_id", n.UserID, "channel", n.Channel, "error", n.Error)
	} else {
		s.logger.Info("notification sent", "id", n.ID, "user_id", n.UserID, "channel", n.Channel)
	}
	s.publish(n, outcome)

	return &n, nil
}

func (s *notificationService) publish(n notification.Notification, outcome notification.Outcome) {
	if s.publisher == nil {
		return
	}
	eventType := eventbus.EventNotificationSent
	payload := map[string]string{
		eventbus.KeyNotificationID: n.ID,
		eventbus.KeyUserID:         n.UserID,
		eventbus.KeyChannel:        string(n.Channel),
		eventbus.KeyDurationNS:     strconv.FormatInt(outcome.Duration.Nanoseconds(), 10),
	}
	if n.Status == notification.StatusFailed {
		eventType = eventbus.EventNotificationFailed
		payload[eventbus.KeyError] = n.Error
	}
	s.publisher.Publish(eventType, payload)
}

// validateRequest checks required fields and resolves the channel.
func validateRequest(req CreateRequest) (notification.Channel, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return "", &ValidationError{Field: "userId", Message: "userId is required"}
	}
	if strings.TrimSpace(req.Recipient) == "" {
		return "", &ValidationError{Field: "recipient", Message: "recipient is required"}
	}
	if strings.TrimSpace(req.Message) == "" {
		return "", &ValidationError{Field: "message", Message: "message is required"}
	}
	channel, err := notification.ParseChannel(req.Channel)
	if err != nil {
		return "", &ValidationError{Field: "channel", Message: err.Error()}
	}
	return channel, nil
}

func (s *notificationService) GetByID(ctx context.Context, id string) (*notification.Notification, error) {
	n, err := s.store.Get(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, &NotFoundError{
			Resource: "notification",
			ID:       id,
			Message:  "Notification not found with id: " + id,
		}
	}
	if err != nil {
		return nil, fmt.Errorf("getting notification: %w", err)
	}
	return n, nil
}

func (s *notificationService) ListByUser(ctx context.Context, userID string) ([]notification.Notification, error) {
	list, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing notifications for user %q: %w", userID, err)
	}
	return list, nil
}

func (s *notificationService) ListByStatus(ctx context.Context, status notification.Status) ([]notification.Notification, error) {
	list, err := s.store.ListByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("listing %s notifications: %w", status, err)
	}
	return list, nil
}

func (s *notificationService) ListAll(ctx context.Context) ([]notification.Notification, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	return list, nil
}
