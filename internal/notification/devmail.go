package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// FileTransport implements EmailTransport for local development. Each
// message is written to dir as an HTML file plus a JSON metadata file
// instead of being sent.
type FileTransport struct {
	dir      string
	fromAddr string
	now      func() time.Time
}

// NewFileTransport creates a FileTransport writing into dir.
// The directory is created on first send.
func NewFileTransport(dir, fromAddr string) *FileTransport {
	return &FileTransport{dir: dir, fromAddr: fromAddr, now: time.Now}
}

type outboxMetadata struct {
	Timestamp string `json:"timestamp"`
	From      string `json:"from"`
	To        string `json:"to"`
	Subject   string `json:"subject"`
}

// Name returns the transport identifier.
func (t *FileTransport) Name() string { return "dev" }

// Send writes the message to the outbox directory.
func (t *FileTransport) Send(_ context.Context, to, subject, htmlBody string) error {
	if err := os.MkdirAll(t.dir, 0750); err != nil {
		return fmt.Errorf("creating outbox directory %q: %w", t.dir, err)
	}

	now := t.now()
	base := fmt.Sprintf("%s_%s", now.Format("20060102_150405.000000000"), sanitizeFilename(to))

	if err := os.WriteFile(filepath.Join(t.dir, base+".html"), []byte(htmlBody), 0600); err != nil {
		return fmt.Errorf("writing outbox message: %w", err)
	}

	meta, err := json.MarshalIndent(outboxMetadata{
		Timestamp: now.UTC().Format(time.RFC3339Nano),
		From:      t.fromAddr,
		To:        to,
		Subject:   subject,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding outbox metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(t.dir, base+".json"), meta, 0600); err != nil {
		return fmt.Errorf("writing outbox metadata: %w", err)
	}
	return nil
}

var unsafeFilenameRE = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)

func sanitizeFilename(s string) string {
	s = unsafeFilenameRE.ReplaceAllString(strings.ReplaceAll(s, "@", "_at_"), "")
	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" {
		s = "email"
	}
	return strings.ToLower(s)
}
