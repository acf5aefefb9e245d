package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/notifier/internal/eventbus"
	"github.com/shaharia-lab/notifier/internal/notification"
)

func TestRecorder_Listener(t *testing.T) {
	r := NewRecorder()
	l := r.Listener()

	l(eventbus.Event{Type: eventbus.EventNotificationSent, Payload: map[string]string{
		eventbus.KeyChannel: "EMAIL", eventbus.KeyDurationNS: "12000000",
	}})
	l(eventbus.Event{Type: eventbus.EventNotificationFailed, Payload: map[string]string{
		eventbus.KeyChannel: "WEBHOOK", eventbus.KeyDurationNS: "250000000",
	}})
	l(eventbus.Event{Type: eventbus.EventNotificationFailed, Payload: map[string]string{
		eventbus.KeyChannel: "WEBHOOK",
	}})
	l(eventbus.Event{Type: eventbus.EventNotificationStale, Payload: map[string]string{eventbus.KeyCount: "4"}})
	l(eventbus.Event{Type: "unrelated"})

	assert.InDelta(t, 1, testutil.ToFloat64(r.dispatched.WithLabelValues("EMAIL", "SENT")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(r.dispatched.WithLabelValues("WEBHOOK", "FAILED")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(r.dispatched.WithLabelValues("EMAIL", "FAILED")), 0)
	assert.InDelta(t, 4, testutil.ToFloat64(r.stalePending), 0)
	assert.Equal(t, 2, testutil.CollectAndCount(r.deliverySecs))
}

func TestRecorder_SubMillisecondDelivery(t *testing.T) {
	r := NewRecorder()

	r.Listener()(eventbus.Event{Type: eventbus.EventNotificationSent, Payload: map[string]string{
		eventbus.KeyChannel: "WEBHOOK", eventbus.KeyDurationNS: "400000",
	}})

	body := scrape(t, r)
	assert.Contains(t, body, `notifier_delivery_duration_seconds_sum{channel="WEBHOOK"} 0.0004`)
}

func TestRecorder_BadDurationCountsWithoutLatency(t *testing.T) {
	r := NewRecorder()

	r.Listener()(eventbus.Event{Type: eventbus.EventNotificationSent, Payload: map[string]string{
		eventbus.KeyChannel: "EMAIL", eventbus.KeyDurationNS: "fast",
	}})

	assert.InDelta(t, 1, testutil.ToFloat64(r.dispatched.WithLabelValues("EMAIL", "SENT")), 0)
	assert.Contains(t, scrape(t, r), `notifier_delivery_duration_seconds_sum{channel="EMAIL"} 0`)
}

func scrape(t *testing.T, r *Recorder) string {
	t.Helper()
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestRecorder_StaleIgnoresBadCount(t *testing.T) {
	r := NewRecorder()
	r.SetStalePending(3)

	r.Listener()(eventbus.Event{Type: eventbus.EventNotificationStale, Payload: map[string]string{eventbus.KeyCount: "x"}})

	assert.InDelta(t, 3, testutil.ToFloat64(r.stalePending), 0)
}

func TestRecorder_HandlerAndMiddleware(t *testing.T) {
	r := NewRecorder()
	r.ObserveDispatch(notification.ChannelEmail, notification.StatusSent, 30*time.Millisecond)

	wrapped := r.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	wrapped.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/notifications/send", nil))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `notifier_notifications_dispatched_total{channel="EMAIL",status="SENT"} 1`)
	assert.Contains(t, string(body), `notifier_http_request_duration_seconds_count{code="201",method="post"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
