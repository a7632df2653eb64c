package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the board API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	storeDuration   *prometheus.HistogramVec
	cacheLookups    *prometheus.CounterVec
	postsCreated    *prometheus.CounterVec
	postsDeleted    *prometheus.CounterVec
}

// NewMetricsService registers the collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	storeDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "board_store_operation_seconds",
		Help:    "Duration of data file reads and writes",
		Buckets: prometheus.DefBuckets,
	}, []string{"op", "result"})

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "board_cache_lookups_total",
		Help: "Board cache lookups by outcome",
	}, []string{"result"})

	postsCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "board_posts_created_total",
		Help: "Posts added to the board",
	}, []string{"category"})

	postsDeleted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "board_posts_deleted_total",
		Help: "Posts removed from the board",
	}, []string{"category"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, storeDuration, cacheLookups, postsCreated, postsDeleted, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		storeDuration:   storeDuration,
		cacheLookups:    cacheLookups,
		postsCreated:    postsCreated,
		postsDeleted:    postsDeleted,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveStoreOperation records a data file load or save.
func (m *MetricsService) ObserveStoreOperation(op string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.storeDuration.WithLabelValues(op, result).Observe(duration.Seconds())
}

// RecordCacheLookup counts a cache hit or miss.
func (m *MetricsService) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
		return
	}
	m.cacheLookups.WithLabelValues("miss").Inc()
}

// RecordPostCreated counts a stored post.
func (m *MetricsService) RecordPostCreated(category string) {
	if m == nil {
		return
	}
	m.postsCreated.WithLabelValues(category).Inc()
}

// RecordPostsDeleted counts removed posts.
func (m *MetricsService) RecordPostsDeleted(category string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.postsDeleted.WithLabelValues(category).Add(float64(n))
}
