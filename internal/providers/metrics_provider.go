package providers

import (
	"jobdeck/internal/structures"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObservePersistenceDuration(duration time.Duration)
	IncStoreMutations(store, op string)
	IncUpstreamErrors(kind string)
}

// ProfileCounter reports how many profiles are currently open.
type ProfileCounter interface {
	ProfileCount() int
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	persistenceDuration prometheus.Histogram
	storeMutations      *prometheus.CounterVec
	upstreamErrors      *prometheus.CounterVec
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

func (m *MetricsProvider) IncStoreMutations(store, op string) {
	m.storeMutations.WithLabelValues(store, op).Inc()
}

func (m *MetricsProvider) IncUpstreamErrors(kind string) {
	m.upstreamErrors.WithLabelValues(kind).Inc()
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

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "jobdeck_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "jobdeck_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "jobdeck_cache_hits_total",
			Help: "Total number of search cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "jobdeck_cache_misses_total",
			Help: "Total number of search cache misses",
		}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "jobdeck_persistence_duration_seconds",
			Help:    "Duration of key-value writes in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		storeMutations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "jobdeck_store_mutations_total",
			Help: "Total number of state store mutations",
		}, []string{"store", "op"}),

		upstreamErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "jobdeck_upstream_errors_total",
			Help: "Total number of failed upstream requests by kind",
		}, []string{"kind"}),
	}
}

// RegisterProfileGauge exposes the open profile count. No-op when metrics are disabled.
func RegisterProfileGauge(conf *structures.Config, counter ProfileCounter) {
	if !conf.Metrics.Enabled {
		return
	}
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "jobdeck_profiles_total",
		Help: "Number of open profiles",
	}, func() float64 {
		return float64(counter.ProfileCount())
	})
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (n *noopMetrics) IncStoreMutations(_, _ string)                    {}
func (n *noopMetrics) IncUpstreamErrors(_ string)                       {}
