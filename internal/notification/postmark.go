package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrz1836/postmark"
)

// ErrPostmarkConfig is returned when the Postmark transport is missing credentials.
var ErrPostmarkConfig = errors.New("postmark transport requires a server token and a sender address")

// PostmarkTransport delivers email through Postmark's transactional API.
type PostmarkTransport struct {
	client   *postmark.Client
	fromAddr string
}

// NewPostmarkTransport creates a Postmark-backed email transport.
func NewPostmarkTransport(serverToken, accountToken, fromAddr string) (*PostmarkTransport, error) {
	if serverToken == "" || fromAddr == "" {
		return nil, ErrPostmarkConfig
	}
	return &PostmarkTransport{
		client:   postmark.NewClient(serverToken, accountToken),
		fromAddr: fromAddr,
	}, nil
}

// Name returns the transport identifier.
func (t *PostmarkTransport) Name() string { return "postmark" }

// Send delivers an HTML message using Postmark.
func (t *PostmarkTransport) Send(ctx context.Context, to, subject, htmlBody string) error {
	resp, err := t.client.SendEmail(ctx, postmark.Email{
		From:     t.fromAddr,
		To:       to,
		Subject:  subject,
		HTMLBody: htmlBody,
		Tag:      "notification",
	})
	if err != nil {
		return fmt.Errorf("postmark send: %w", err)
	}
	if resp.ErrorCode > 0 {
		return fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message)
	}
	return nil
}
