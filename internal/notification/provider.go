// Package notification holds the notification model, recipient validation,
// the per-channel delivery router and the transports that perform the
// actual sends (SMTP, Postmark, local files, HTTP webhooks).
package notification

import (
	"context"
	"net/http"
)

// EmailTransport sends a single HTML email.
type EmailTransport interface {
	// Name returns the transport identifier (e.g. "smtp").
	Name() string
	// Send delivers an HTML message to the given address.
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// WebhookTransport performs HTTP POST requests carrying a JSON payload.
type WebhookTransport interface {
	// Post sends payload to url. It returns false with a nil error when the
	// endpoint answered with a non-2xx status.
	Post(ctx context.Context, url string, payload []byte, header http.Header) (bool, error)
}
