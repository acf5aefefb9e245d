package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
)

// SMTPConfig holds connection parameters for the SMTP transport.
type SMTPConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	FromAddr   string
	Encryption string // "none", "starttls", "ssl_tls"
	Timeout    time.Duration
}

// SMTPTransport delivers email via SMTP using the go-mail library.
type SMTPTransport struct {
	config SMTPConfig
}

// NewSMTPTransport creates a new SMTPTransport with the given configuration.
func NewSMTPTransport(config SMTPConfig) *SMTPTransport {
	return &SMTPTransport{config: config}
}

// Name returns the transport identifier.
func (t *SMTPTransport) Name() string { return "smtp" }

// Send delivers an HTML message using the configured SMTP server.
func (t *SMTPTransport) Send(ctx context.Context, to, subject, htmlBody string) error {
	m := mail.NewMsg()
	if err := m.From(t.config.FromAddr); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := m.To(to); err != nil {
		return fmt.Errorf("invalid recipient %q: %w", to, err)
	}
	m.Subject(subject)
	m.SetBodyString(mail.TypeTextHTML, htmlBody)

	c, err := mail.NewClient(t.config.Host, t.clientOptions()...)
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}

	return c.DialAndSendWithContext(ctx, m)
}

func (t *SMTPTransport) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(t.config.Port),
		mail.WithTLSPolicy(tlsPolicyFromEncryption(t.config.Encryption)),
	}
	if t.config.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(t.config.Timeout))
	}
	if t.config.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(t.config.Username),
			mail.WithPassword(t.config.Password),
		)
	}
	if t.config.Encryption == "ssl_tls" {
		opts = append(opts, mail.WithSSL())
	}
	return opts
}

// tlsPolicyFromEncryption converts the encryption string to a go-mail TLSPolicy.
func tlsPolicyFromEncryption(enc string) mail.TLSPolicy {
	switch enc {
	case "ssl_tls":
		return mail.TLSMandatory
	case "starttls":
		return mail.TLSOpportunistic
	default:
		return mail.NoTLS
	}
}
