package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrNonSuccessResponse is the failure recorded when a webhook endpoint
// answers with a non-2xx status.
var ErrNonSuccessResponse = errors.New("non-success response")

const defaultFailureCause = "delivery failed"

// DefaultUserAgent is sent with every webhook request unless overridden.
const DefaultUserAgent = "NotificationService/1.0"

// Deliverer sends a notification over exactly one channel.
type Deliverer interface {
	Channel() Channel
	Deliver(ctx context.Context, n Notification) error
}

// Outcome is the result of one delivery attempt. A non-empty Cause means
// the delivery failed.
type Outcome struct {
	Channel  Channel
	Cause    string
	Duration time.Duration
}

// Failed reports whether the attempt did not deliver the notification.
func (o Outcome) Failed() bool { return o.Cause != "" }

// Router dispatches notifications to the Deliverer registered for their channel.
type Router struct {
	deliverers map[Channel]Deliverer
}

// NewRouter registers deliverers by their channel. A later deliverer for
// the same channel replaces an earlier one.
func NewRouter(deliverers ...Deliverer) *Router {
	r := &Router{deliverers: make(map[Channel]Deliverer, len(deliverers))}
	for _, d := range deliverers {
		r.deliverers[d.Channel()] = d
	}
	return r
}

// Deliver performs a single delivery attempt for n. Transport errors are
// reported through the returned Outcome, never as a Go error.
func (r *Router) Deliver(ctx context.Context, n Notification) Outcome {
	start := time.Now()
	out := Outcome{Channel: n.Channel}

	d, ok := r.deliverers[n.Channel]
	if !ok {
		out.Cause = fmt.Sprintf("no deliverer registered for channel %q", n.Channel)
		out.Duration = time.Since(start)
		return out
	}

	if err := d.Deliver(ctx, n); err != nil {
		out.Cause = err.Error()
		if out.Cause == "" {
			out.Cause = defaultFailureCause
		}
	}
	out.Duration = time.Since(start)
	return out
}

// EmailDeliverer renders notifications as HTML and hands them to an EmailTransport.
type EmailDeliverer struct {
	transport      EmailTransport
	defaultSubject string
	now            func() time.Time
}

// NewEmailDeliverer returns an EmailDeliverer. An empty defaultSubject
// falls back to DefaultSubject.
func NewEmailDeliverer(transport EmailTransport, defaultSubject string) *EmailDeliverer {
	if defaultSubject == "" {
		defaultSubject = DefaultSubject
	}
	return &EmailDeliverer{transport: transport, defaultSubject: defaultSubject, now: time.Now}
}

// Channel returns ChannelEmail.
func (d *EmailDeliverer) Channel() Channel { return ChannelEmail }

// Deliver sends n to its recipient address.
func (d *EmailDeliverer) Deliver(ctx context.Context, n Notification) error {
	subject := n.Subject
	if subject == "" {
		subject = d.defaultSubject
	}
	body, err := renderEmailHTML(subject, n, d.now())
	if err != nil {
		return fmt.Errorf("rendering email body: %w", err)
	}
	return d.transport.Send(ctx, n.Recipient, subject, body)
}

// WebhookPayload is the JSON document posted to webhook recipients.
type WebhookPayload struct {
	Event     string      `json:"event"`
	Timestamp string      `json:"timestamp"`
	Data      WebhookData `json:"data"`
}

// WebhookData describes the notification inside a WebhookPayload.
type WebhookData struct {
	NotificationID string  `json:"notificationId"`
	UserID         string  `json:"userId"`
	Type           Channel `json:"type"`
	Subject        *string `json:"subject"`
	Message        string  `json:"message"`
	Recipient      string  `json:"recipient"`
	Status         Status  `json:"status"`
}

// WebhookEventSent is the event name carried by every webhook payload.
const WebhookEventSent = "notification.sent"

// NewWebhookPayload builds the payload for n, stamped with at.
func NewWebhookPayload(n Notification, at time.Time) WebhookPayload {
	return WebhookPayload{
		Event:     WebhookEventSent,
		Timestamp: at.UTC().Format(time.RFC3339Nano),
		Data: WebhookData{
			NotificationID: n.ID,
			UserID:         n.UserID,
			Type:           n.Channel,
			Subject:        nullable(n.Subject),
			Message:        n.Message,
			Recipient:      n.Recipient,
			Status:         n.Status,
		},
	}
}

// WebhookDeliverer posts a JSON description of the notification to its recipient URL.
type WebhookDeliverer struct {
	transport WebhookTransport
	userAgent string
	now       func() time.Time
}

// NewWebhookDeliverer returns a WebhookDeliverer. An empty userAgent falls
// back to DefaultUserAgent.
func NewWebhookDeliverer(transport WebhookTransport, userAgent string) *WebhookDeliverer {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &WebhookDeliverer{transport: transport, userAgent: userAgent, now: time.Now}
}

// Channel returns ChannelWebhook.
func (d *WebhookDeliverer) Channel() Channel { return ChannelWebhook }

// Deliver posts n to its recipient URL. A non-2xx answer yields ErrNonSuccessResponse.
func (d *WebhookDeliverer) Deliver(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(NewWebhookPayload(n, d.now()))
	if err != nil {
		return fmt.Errorf("encoding webhook payload: %w", err)
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("User-Agent", d.userAgent)
	header.Set("X-Notification-Id", n.ID)

	ok, err := d.transport.Post(ctx, n.Recipient, payload, header)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNonSuccessResponse
	}
	return nil
}
