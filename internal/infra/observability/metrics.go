package observability

import (
	"time"

	"github.com/foxfund/foxfund-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration   *prometheus.HistogramVec
	storeErrors       *prometheus.CounterVec
	cacheHits         *prometheus.CounterVec
	cacheMisses       *prometheus.CounterVec
	notificationsSent *prometheus.CounterVec
	requestsTotal     *prometheus.CounterVec
	logins            *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ff_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		storeErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ff_store_errors_total",
				Help: "Total errors from storage and external services.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ff_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ff_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		notificationsSent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ff_notifications_total",
				Help: "Total notifications created by type.",
			},
			[]string{"type"},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ff_requests_total",
				Help: "Total requests processed.",
			},
			[]string{"status"},
		),
		logins: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ff_logins_total",
				Help: "Total login attempts by outcome.",
			},
			[]string{"status"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrStoreError increments the storage/external error counter.
func (m *Metrics) IncrStoreError(service string) {
	m.storeErrors.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrNotification increments the notifications counter for a type.
func (m *Metrics) IncrNotification(notificationType string) {
	m.notificationsSent.WithLabelValues(notificationType).Inc()
}

// IncrRequest increments the request counter with a status label.
func (m *Metrics) IncrRequest(status string) {
	m.requestsTotal.WithLabelValues(status).Inc()
}

// IncrLogin increments the login counter with an outcome label.
func (m *Metrics) IncrLogin(status string) {
	m.logins.WithLabelValues(status).Inc()
}

// Snapshot returns current metric values suitable for the
// GET /v1/metrics/summary endpoint.
func (m *Metrics) Snapshot() *domain.MetricsSnapshot {
	// Prometheus counters expose cumulative values.
	totalRequests := getCounterValue(m.requestsTotal, "success") +
		getCounterValue(m.requestsTotal, "error")
	errorCount := getCounterValue(m.requestsTotal, "error")
	cacheHits := getCounterValue(m.cacheHits, "rates")
	cacheMisses := getCounterValue(m.cacheMisses, "rates")
	notifications := getCounterValue(m.notificationsSent, domain.NotificationBudgetShared) +
		getCounterValue(m.notificationsSent, domain.NotificationGoalAchieved)

	errorRate := float64(0)
	cacheHitRate := float64(0)

	if totalRequests > 0 {
		errorRate = errorCount / totalRequests
	}
	if cacheHits+cacheMisses > 0 {
		cacheHitRate = cacheHits / (cacheHits + cacheMisses)
	}

	return &domain.MetricsSnapshot{
		TotalRequests:     int64(totalRequests),
		ErrorRate:         errorRate,
		CacheHitRate:      cacheHitRate,
		NotificationsSent: int64(notifications),
		Period:            "all_time",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
