package notification

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const defaultWebhookTimeout = 5 * time.Second

// HTTPWebhookTransport posts JSON payloads with a shared HTTP client.
type HTTPWebhookTransport struct {
	client *http.Client
}

// NewHTTPWebhookTransport returns a transport whose client times out after
// timeout (5s when timeout <= 0). Outgoing requests are traced with otelhttp.
func NewHTTPWebhookTransport(timeout time.Duration) *HTTPWebhookTransport {
	if timeout <= 0 {
		timeout = defaultWebhookTimeout
	}
	return &HTTPWebhookTransport{
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// NewHTTPWebhookTransportWithClient uses client as-is. A nil client falls
// back to NewHTTPWebhookTransport defaults.
func NewHTTPWebhookTransportWithClient(client *http.Client) *HTTPWebhookTransport {
	if client == nil {
		return NewHTTPWebhookTransport(0)
	}
	return &HTTPWebhookTransport{client: client}
}

// Post sends payload to url and reports whether the response status was 2xx.
func (t *HTTPWebhookTransport) Post(ctx context.Context, url string, payload []byte, header http.Header) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return false, fmt.Errorf("building webhook request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close() //nolint:errcheck

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	return resp.StatusCode >= 200 && resp.StatusCode < 300, nil
}
