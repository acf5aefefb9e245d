package notification

import (
	"fmt"
	"regexp"
	"strings"
)

var emailRE = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// Reasons reported by InvalidRecipientError.
const (
	ReasonInvalidEmail      = "invalid email address"
	ReasonInvalidWebhookURL = "webhook URL must start with http:// or https://"
)

// InvalidRecipientError is returned when a recipient does not satisfy the
// syntax rule of its channel.
type InvalidRecipientError struct {
	Channel   Channel
	Recipient string
	Reason    string
}

func (e *InvalidRecipientError) Error() string {
	if e.Channel == ChannelEmail {
		return fmt.Sprintf("%s: %s", e.Reason, e.Recipient)
	}
	return e.Reason
}

// ValidateRecipient checks recipient against the rule for channel.
func ValidateRecipient(channel Channel, recipient string) error {
	switch channel {
	case ChannelEmail:
		if !emailRE.MatchString(recipient) {
			return &InvalidRecipientError{Channel: channel, Recipient: recipient, Reason: ReasonInvalidEmail}
		}
	case ChannelWebhook:
		if !strings.HasPrefix(recipient, "http://") && !strings.HasPrefix(recipient, "https://") {
			return &InvalidRecipientError{Channel: channel, Recipient: recipient, Reason: ReasonInvalidWebhookURL}
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownChannel, channel)
	}
	return nil
}
