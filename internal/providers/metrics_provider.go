package providers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"cpd/internal/models"
	"cpd/internal/structures"
)

// StoreCounts is the slice of the snapshot service the gauges read.
type StoreCounts interface {
	SnapshotCount(platform models.Platform) int
	HandleCount() int
}

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObservePersistenceDuration(duration time.Duration)
	AddRefreshResults(ok, failed int)
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	persistenceDuration prometheus.Histogram
	refreshResults      *prometheus.CounterVec
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) AddRefreshResults(ok, failed int) {
	m.refreshResults.WithLabelValues("ok").Add(float64(ok))
	m.refreshResults.WithLabelValues("failed").Add(float64(failed))
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config, service StoreCounts) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	m := &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "cpd_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cpd_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cpd_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cpd_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "cpd_persistence_duration_seconds",
			Help:    "Duration of persistence operations in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		refreshResults: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "cpd_refresh_results_total",
			Help: "Per-handle refresh outcomes across all sweeps",
		}, []string{"result"}),
	}

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "cpd_snapshots_total",
		Help: "Total number of stored snapshots",
	}, func() float64 {
		return float64(service.SnapshotCount(""))
	})

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "cpd_handles_total",
		Help: "Total number of linked platform handles",
	}, func() float64 {
		return float64(service.HandleCount())
	})

	for _, p := range models.KnownPlatforms() {
		promauto.NewGaugeFunc(prometheus.GaugeOpts{
			Name:        "cpd_platform_snapshots_total",
			Help:        "Stored snapshots per platform",
			ConstLabels: prometheus.Labels{"platform": string(p)},
		}, func() float64 {
			return float64(service.SnapshotCount(p))
		})
	}

	return m
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (n *noopMetrics) AddRefreshResults(_, _ int)                       {}
