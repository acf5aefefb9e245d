// Package metrics exposes Prometheus metrics for notification dispatch.
// The Recorder is fed by the event bus and served on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaharia-lab/notifier/internal/eventbus"
	"github.com/shaharia-lab/notifier/internal/notification"
)

const namespace = "notifier"

// DeliveryBuckets are histogram bounds for delivery latency, in seconds.
var DeliveryBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// Recorder owns a private registry with the notifier's collectors.
type Recorder struct {
	registry      *prometheus.Registry
	dispatched    *prometheus.CounterVec
	deliverySecs  *prometheus.HistogramVec
	stalePending  prometheus.Gauge
	httpDurations *prometheus.HistogramVec
}

// NewRecorder creates a Recorder with Go runtime and process collectors registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		dispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_dispatched_total",
			Help:      "Notifications that reached a terminal state, by channel and status.",
		}, []string{"channel", "status"}),
		deliverySecs: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "delivery_duration_seconds",
			Help:      "Time spent in a single delivery attempt.",
			Buckets:   DeliveryBuckets,
		}, []string{"channel"}),
		stalePending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stale_pending_notifications",
			Help:      "PENDING notifications older than the stale threshold at the last sweep.",
		}),
		httpDurations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and status code.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"code", "method"}),
	}
	r.registry.MustRegister(
		r.dispatched,
		r.deliverySecs,
		r.stalePending,
		r.httpDurations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// ObserveDispatch records one terminal notification.
func (r *Recorder) ObserveDispatch(channel notification.Channel, status notification.Status, took time.Duration) {
	r.dispatched.WithLabelValues(string(channel), string(status)).Inc()
	r.deliverySecs.WithLabelValues(string(channel)).Observe(took.Seconds())
}

// SetStalePending records the result of the latest stale sweep.
func (r *Recorder) SetStalePending(n int) {
	r.stalePending.Set(float64(n))
}

// Listener returns an eventbus.Listener that turns lifecycle events into metrics.
func (r *Recorder) Listener() eventbus.Listener {
	return func(e eventbus.Event) {
		switch e.Type {
		case eventbus.EventNotificationSent, eventbus.EventNotificationFailed:
			status := notification.StatusSent
			if e.Type == eventbus.EventNotificationFailed {
				status = notification.StatusFailed
			}
			var took time.Duration
			if ns, err := strconv.ParseInt(e.Payload[eventbus.KeyDurationNS], 10, 64); err == nil {
				took = time.Duration(ns)
			}
			r.ObserveDispatch(notification.Channel(e.Payload[eventbus.KeyChannel]), status, took)
		case eventbus.EventNotificationStale:
			n, err := strconv.Atoi(e.Payload[eventbus.KeyCount])
			if err == nil {
				r.SetStalePending(n)
			}
		}
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Middleware records request latency for every request passing through it.
func (r *Recorder) Middleware(next http.Handler) http.Handler {
	return promhttp.InstrumentHandlerDuration(r.httpDurations, next)
}
