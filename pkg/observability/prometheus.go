package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "propgraph"

// PrometheusHooks records computer and cache events as Prometheus metrics.
type PrometheusHooks struct {
	// RunsTotal counts finished runs.
	// Labels: program, status (success, error)
	RunsTotal *prometheus.CounterVec

	// RunDuration measures whole runs.
	// Labels: program
	RunDuration *prometheus.HistogramVec

	// SuperstepDuration measures single supersteps, barrier included.
	// Labels: program
	SuperstepDuration *prometheus.HistogramVec

	// MessagesTotal counts messages delivered across barriers.
	// Labels: program
	MessagesTotal *prometheus.CounterVec

	// ActiveRuns tracks runs in progress.
	ActiveRuns prometheus.Gauge

	// CacheEvents counts cache lookups and writes.
	// Labels: key_type, event (hit, miss, set)
	CacheEvents *prometheus.CounterVec

	// CacheBytes counts bytes written to the cache.
	// Labels: key_type
	CacheBytes *prometheus.CounterVec
}

// NewPrometheusHooks creates the metrics and registers them on reg. A nil
// reg leaves them unregistered, which tests use.
func NewPrometheusHooks(reg prometheus.Registerer) *PrometheusHooks {
	h := &PrometheusHooks{
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "computer",
			Name:      "runs_total",
			Help:      "Total vertex program runs by status",
		}, []string{"program", "status"}),
		RunDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "computer",
			Name:      "run_duration_seconds",
			Help:      "Vertex program run duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"program"}),
		SuperstepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "computer",
			Name:      "superstep_duration_seconds",
			Help:      "Superstep duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"program"}),
		MessagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "computer",
			Name:      "messages_total",
			Help:      "Total messages delivered between supersteps",
		}, []string{"program"}),
		ActiveRuns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "computer",
			Name:      "active_runs",
			Help:      "Vertex program runs in progress",
		}),
		CacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "events_total",
			Help:      "Cache hits, misses and writes by key type",
		}, []string{"key_type", "event"}),
		CacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "written_bytes_total",
			Help:      "Bytes written to the cache by key type",
		}, []string{"key_type"}),
	}
	if reg != nil {
		reg.MustRegister(
			h.RunsTotal,
			h.RunDuration,
			h.SuperstepDuration,
			h.MessagesTotal,
			h.ActiveRuns,
			h.CacheEvents,
			h.CacheBytes,
		)
	}
	return h
}

func (h *PrometheusHooks) OnRunStart(_ context.Context, _ string, _ int) {
	h.ActiveRuns.Inc()
}

func (h *PrometheusHooks) OnSuperstep(_ context.Context, program string, _ int, messages int, d time.Duration) {
	h.SuperstepDuration.WithLabelValues(program).Observe(d.Seconds())
	h.MessagesTotal.WithLabelValues(program).Add(float64(messages))
}

func (h *PrometheusHooks) OnRunComplete(_ context.Context, program string, _ int, d time.Duration, err error) {
	h.ActiveRuns.Dec()
	status := "success"
	if err != nil {
		status = "error"
	}
	h.RunsTotal.WithLabelValues(program, status).Inc()
	h.RunDuration.WithLabelValues(program).Observe(d.Seconds())
}

func (h *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	h.CacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (h *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.CacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (h *PrometheusHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.CacheEvents.WithLabelValues(keyType, "set").Inc()
	h.CacheBytes.WithLabelValues(keyType).Add(float64(size))
}

