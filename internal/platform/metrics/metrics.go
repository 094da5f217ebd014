// Package metrics holds the Prometheus collectors and the snapshot counters
// exposed on the admin API. Counters are registered once at startup and
// passed explicitly; there is no ambient global state.
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all collectors for the application.
type Metrics struct {
	RequestsTotal  prometheus.Counter
	ErrorsTotal    *prometheus.CounterVec
	RequestLatency prometheus.Histogram
	SlowQueries    prometheus.Counter
	EmailsSent     prometheus.Counter
	EmailsFailed   prometheus.Counter
	QueueDepth     prometheus.Gauge

	// Plain atomics mirror the counters so the admin snapshot endpoint can
	// read values without scraping the registry.
	requests    atomic.Int64
	errors      atomic.Int64
	slowQueries atomic.Int64
	emailsSent  atomic.Int64
	emailsFail  atomic.Int64
}

// Snapshot is a point-in-time view of the process counters.
type Snapshot struct {
	Requests    int64 `json:"requests"`
	Errors      int64 `json:"errors"`
	SlowQueries int64 `json:"slow_queries"`
	EmailsSent  int64 `json:"emails_sent"`
	EmailsFail  int64 `json:"emails_failed"`
}

// New creates and registers all collectors on reg. Tests pass a private
// registry so parallel packages do not collide.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "treasurehunt_requests_total",
			Help: "Total HTTP requests handled.",
		}),
		ErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "treasurehunt_errors_total",
			Help: "Total handled errors by category code.",
		}, []string{"code"}),
		RequestLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "treasurehunt_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}),
		SlowQueries: factory.NewCounter(prometheus.CounterOpts{
			Name: "treasurehunt_slow_queries_total",
			Help: "Store calls exceeding the slow threshold.",
		}),
		EmailsSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "treasurehunt_emails_sent_total",
			Help: "Queue entries delivered successfully.",
		}),
		EmailsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "treasurehunt_emails_failed_total",
			Help: "Send attempts that failed.",
		}),
		QueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "treasurehunt_email_queue_depth",
			Help: "Entries currently eligible for dispatch.",
		}),
	}
}

// IncRequest records one handled HTTP request.
func (m *Metrics) IncRequest() {
	m.RequestsTotal.Inc()
	m.requests.Add(1)
}

// IncError records one handled error with its category code.
func (m *Metrics) IncError(code string) {
	m.ErrorsTotal.WithLabelValues(code).Inc()
	m.errors.Add(1)
}

// ObserveLatency records a request duration.
func (m *Metrics) ObserveLatency(d time.Duration) {
	m.RequestLatency.Observe(d.Seconds())
}

// IncSlowQuery records a store call that exceeded the slow threshold.
func (m *Metrics) IncSlowQuery() {
	m.SlowQueries.Inc()
	m.slowQueries.Add(1)
}

// IncEmailSent records a successful delivery.
func (m *Metrics) IncEmailSent() {
	m.EmailsSent.Inc()
	m.emailsSent.Add(1)
}

// IncEmailFailed records a failed send attempt.
func (m *Metrics) IncEmailFailed() {
	m.EmailsFailed.Inc()
	m.emailsFail.Add(1)
}

// SetQueueDepth updates the ready-entry gauge.
func (m *Metrics) SetQueueDepth(n int) {
	m.QueueDepth.Set(float64(n))
}

// GetSnapshot returns the current counter values.
func (m *Metrics) GetSnapshot() Snapshot {
	return Snapshot{
		Requests:    m.requests.Load(),
		Errors:      m.errors.Load(),
		SlowQueries: m.slowQueries.Load(),
		EmailsSent:  m.emailsSent.Load(),
		EmailsFail:  m.emailsFail.Load(),
	}
}
