package notification_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/notifier/internal/notification"
)

// --- stub transports ---

type stubEmailTransport struct {
	err     error
	to      string
	subject string
	body    string
	calls   int
}

func (s *stubEmailTransport) Name() string { return "stub" }

func (s *stubEmailTransport) Send(_ context.Context, to, subject, body string) error {
	s.calls++
	s.to, s.subject, s.body = to, subject, body
	return s.err
}

type stubWebhookTransport struct {
	ok      bool
	err     error
	url     string
	payload []byte
	header  http.Header
}

func (s *stubWebhookTransport) Post(_ context.Context, url string, payload []byte, header http.Header) (bool, error) {
	s.url, s.payload, s.header = url, payload, header
	return s.ok, s.err
}

func webhookNotification() notification.Notification {
	n := pending()
	n.UserID = "u2"
	n.Channel = notification.ChannelWebhook
	n.Recipient = "https://example.com/hook"
	return n
}

// --- tests ---

func TestEmailDeliverer_DefaultSubject(t *testing.T) {
	tr := &stubEmailTransport{}
	d := notification.NewEmailDeliverer(tr, "")

	require.NoError(t, d.Deliver(context.Background(), pending()))
	assert.Equal(t, "a@b.com", tr.to)
	assert.Equal(t, notification.DefaultSubject, tr.subject)
	assert.Contains(t, tr.body, "<!DOCTYPE html>")
	assert.Contains(t, tr.body, "hi")
	assert.Contains(t, tr.body, "User ID: u1")
}

func TestEmailDeliverer_ConfiguredAndExplicitSubject(t *testing.T) {
	tr := &stubEmailTransport{}
	d := notification.NewEmailDeliverer(tr, "Heads up")

	require.NoError(t, d.Deliver(context.Background(), pending()))
	assert.Equal(t, "Heads up", tr.subject)

	n := pending()
	n.Subject = "Invoice ready"
	require.NoError(t, d.Deliver(context.Background(), n))
	assert.Equal(t, "Invoice ready", tr.subject)
}

func TestEmailDeliverer_EscapesMessage(t *testing.T) {
	tr := &stubEmailTransport{}
	d := notification.NewEmailDeliverer(tr, "")

	n := pending()
	n.Message = "<script>alert(1)</script>"
	require.NoError(t, d.Deliver(context.Background(), n))
	assert.NotContains(t, tr.body, "<script>")
	assert.Contains(t, tr.body, "&lt;script&gt;")
}

func TestWebhookDeliverer_PayloadAndHeaders(t *testing.T) {
	tr := &stubWebhookTransport{ok: true}
	d := notification.NewWebhookDeliverer(tr, "")
	n := webhookNotification()

	require.NoError(t, d.Deliver(context.Background(), n))
	assert.Equal(t, "https://example.com/hook", tr.url)
	assert.Equal(t, "application/json", tr.header.Get("Content-Type"))
	assert.Equal(t, "NotificationService/1.0", tr.header.Get("User-Agent"))
	assert.Equal(t, n.ID, tr.header.Get("X-Notification-Id"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(tr.payload, &body))
	assert.Equal(t, "notification.sent", body["event"])
	assert.NotEmpty(t, body["timestamp"])

	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, n.ID, data["notificationId"])
	assert.Equal(t, "u2", data["userId"])
	assert.Equal(t, "WEBHOOK", data["type"])
	assert.Nil(t, data["subject"])
	assert.Equal(t, "hi", data["message"])
	assert.Equal(t, "https://example.com/hook", data["recipient"])
	assert.Equal(t, "PENDING", data["status"])
}

func TestWebhookDeliverer_NonSuccess(t *testing.T) {
	d := notification.NewWebhookDeliverer(&stubWebhookTransport{ok: false}, "custom/2.0")
	err := d.Deliver(context.Background(), webhookNotification())
	assert.ErrorIs(t, err, notification.ErrNonSuccessResponse)
	assert.Equal(t, "non-success response", err.Error())
}

func TestRouter_Deliver(t *testing.T) {
	tests := []struct {
		name      string
		email     *stubEmailTransport
		hook      *stubWebhookTransport
		n         notification.Notification
		wantCause string
	}{
		{
			name:  "email success",
			email: &stubEmailTransport{},
			hook:  &stubWebhookTransport{ok: true},
			n:     pending(),
		},
		{
			name:      "email transport error propagates its message",
			email:     &stubEmailTransport{err: errors.New("dial tcp: connection refused")},
			hook:      &stubWebhookTransport{ok: true},
			n:         pending(),
			wantCause: "dial tcp: connection refused",
		},
		{
			name:  "webhook success",
			email: &stubEmailTransport{},
			hook:  &stubWebhookTransport{ok: true},
			n:     webhookNotification(),
		},
		{
			name:      "webhook non-2xx is a soft failure",
			email:     &stubEmailTransport{},
			hook:      &stubWebhookTransport{ok: false},
			n:         webhookNotification(),
			wantCause: "non-success response",
		},
		{
			name:      "webhook transport error",
			email:     &stubEmailTransport{},
			hook:      &stubWebhookTransport{err: errors.New("context deadline exceeded")},
			n:         webhookNotification(),
			wantCause: "context deadline exceeded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := notification.NewRouter(
				notification.NewEmailDeliverer(tt.email, ""),
				notification.NewWebhookDeliverer(tt.hook, ""),
			)
			out := r.Deliver(context.Background(), tt.n)
			assert.Equal(t, tt.n.Channel, out.Channel)
			assert.Equal(t, tt.wantCause, out.Cause)
			assert.Equal(t, tt.wantCause != "", out.Failed())
		})
	}
}

func TestRouter_OnlyInvokesMatchingChannel(t *testing.T) {
	email := &stubEmailTransport{}
	hook := &stubWebhookTransport{ok: true}
	r := notification.NewRouter(
		notification.NewEmailDeliverer(email, ""),
		notification.NewWebhookDeliverer(hook, ""),
	)

	out := r.Deliver(context.Background(), webhookNotification())
	assert.False(t, out.Failed())
	assert.Equal(t, 0, email.calls)
}

func TestRouter_UnregisteredChannel(t *testing.T) {
	r := notification.NewRouter(notification.NewEmailDeliverer(&stubEmailTransport{}, ""))
	out := r.Deliver(context.Background(), webhookNotification())
	assert.True(t, out.Failed())
	assert.Contains(t, out.Cause, `no deliverer registered for channel "WEBHOOK"`)
}

func TestHTTPWebhookTransport_Post(t *testing.T) {
	var gotBody string
	var gotHeader http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotHeader = r.Header.Clone()
		if strings.HasSuffix(r.URL.Path, "/fail") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	tr := notification.NewHTTPWebhookTransportWithClient(srv.Client())
	header := http.Header{}
	header.Set("X-Notification-Id", "abc")

	ok, err := tr.Post(context.Background(), srv.URL+"/ok", []byte(`{"a":1}`), header)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"a":1}`, gotBody)
	assert.Equal(t, "abc", gotHeader.Get("X-Notification-Id"))
	assert.Equal(t, "application/json", gotHeader.Get("Content-Type"))

	ok, err = tr.Post(context.Background(), srv.URL+"/fail", []byte(`{}`), nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHTTPWebhookTransport_ConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	tr := notification.NewHTTPWebhookTransport(0)
	ok, err := tr.Post(context.Background(), url, []byte(`{}`), nil)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestWebhookDeliverer_EndToEnd(t *testing.T) {
	var received notification.WebhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&received)
		assert.Equal(t, "NotificationService/1.0", r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := webhookNotification()
	n.Recipient = srv.URL
	n.Subject = "Deploy finished"

	r := notification.NewRouter(notification.NewWebhookDeliverer(notification.NewHTTPWebhookTransportWithClient(srv.Client()), ""))
	out := r.Deliver(context.Background(), n)
	require.False(t, out.Failed(), out.Cause)
	assert.Equal(t, n.ID, received.Data.NotificationID)
	require.NotNil(t, received.Data.Subject)
	assert.Equal(t, "Deploy finished", *received.Data.Subject)
}
