package notification

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Channel identifies the delivery mechanism of a notification.
type Channel string

// Supported delivery channels.
const (
	ChannelEmail   Channel = "EMAIL"
	ChannelWebhook Channel = "WEBHOOK"
)

// Channels lists every channel the service knows about.
var Channels = []Channel{ChannelEmail, ChannelWebhook}

// ParseChannel converts s into a Channel. Matching is case-insensitive.
// An empty string yields ChannelEmail, the default channel.
func ParseChannel(s string) (Channel, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ChannelEmail, nil
	}
	c := Channel(strings.ToUpper(s))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownChannel, s)
	}
	return c, nil
}

// Valid reports whether c is one of the supported channels.
func (c Channel) Valid() bool {
	switch c {
	case ChannelEmail, ChannelWebhook:
		return true
	}
	return false
}

// Status is the lifecycle state of a notification.
type Status string

// Notification lifecycle states. SENT and FAILED are terminal.
const (
	StatusPending Status = "PENDING"
	StatusSent    Status = "SENT"
	StatusFailed  Status = "FAILED"
)

// ParseStatus converts s into a Status. Matching is case-insensitive.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case StatusPending, StatusSent, StatusFailed:
		return st, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Terminal reports whether no further transition can happen from s.
func (s Status) Terminal() bool {
	return s == StatusSent || s == StatusFailed
}

var (
	// ErrUnknownChannel is returned when a channel value is not supported.
	ErrUnknownChannel = errors.New("unknown channel")

	// ErrAlreadyTerminal is returned when a transition is attempted on a
	// notification that already left PENDING.
	ErrAlreadyTerminal = errors.New("notification already in terminal state")
)

// Notification is a single request to notify a user on one channel, along
// with the outcome of its delivery.
type Notification struct {
	ID        string     `json:"id" yaml:"id"`
	UserID    string     `json:"userId" yaml:"userId"`
	Channel   Channel    `json:"channel" yaml:"channel"`
	Recipient string     `json:"recipient" yaml:"recipient"`
	Subject   string     `json:"subject" yaml:"subject,omitempty"`
	Message   string     `json:"message" yaml:"message"`
	Status    Status     `json:"status" yaml:"status"`
	CreatedAt time.Time  `json:"createdAt" yaml:"createdAt"`
	SentAt    *time.Time `json:"sentAt" yaml:"sentAt,omitempty"`
	Error     string     `json:"error" yaml:"error,omitempty"`
}

// MarkSent returns a copy of n transitioned to SENT at the given time.
func (n Notification) MarkSent(at time.Time) (Notification, error) {
	if n.Status != StatusPending {
		return n, fmt.Errorf("%w: %s is %s", ErrAlreadyTerminal, n.ID, n.Status)
	}
	sentAt := at.UTC()
	n.Status = StatusSent
	n.SentAt = &sentAt
	n.Error = ""
	return n, nil
}

// MarkFailed returns a copy of n transitioned to FAILED with the given cause.
func (n Notification) MarkFailed(cause string) (Notification, error) {
	if n.Status != StatusPending {
		return n, fmt.Errorf("%w: %s is %s", ErrAlreadyTerminal, n.ID, n.Status)
	}
	if cause == "" {
		cause = defaultFailureCause
	}
	n.Status = StatusFailed
	n.SentAt = nil
	n.Error = cause
	return n, nil
}

// MarshalJSON renders absent subject and error as null.
func (n Notification) MarshalJSON() ([]byte, error) {
	type alias Notification
	return json.Marshal(struct {
		alias
		Subject *string `json:"subject"`
		Error   *string `json:"error"`
	}{
		alias:   alias(n),
		Subject: nullable(n.Subject),
		Error:   nullable(n.Error),
	})
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
