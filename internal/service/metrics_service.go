package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation. Every method is safe on a nil
// receiver so callers can run with metrics disabled.
type MetricsService struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestDuration  *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
	chatIntents      *prometheus.CounterVec
	providerRequests *prometheus.CounterVec
	providerLatency  *prometheus.HistogramVec
	scrapes          *prometheus.CounterVec
	cacheLookups     *prometheus.CounterVec
	enrollmentMoves  *prometheus.CounterVec
}

// NewMetricsService registers the service's collectors on a private registry.
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

	chatIntents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_intents_total",
		Help: "Chat replies by classified intent",
	}, []string{"intent"})

	providerRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_provider_requests_total",
		Help: "Chat provider calls by provider and outcome",
	}, []string{"provider", "outcome"})

	providerLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chat_provider_duration_seconds",
		Help:    "Latency of chat provider calls",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
	}, []string{"provider"})

	scrapes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_scrapes_total",
		Help: "Page scrapes by source (job, direct, failed)",
	}, []string{"source"})

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scrape_cache_lookups_total",
		Help: "Scrape cache lookups by result",
	}, []string{"result"})

	enrollmentMoves := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "enrollment_status_changes_total",
		Help: "Enrollment status transitions",
	}, []string{"from", "to"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, chatIntents, providerRequests, providerLatency,
		scrapes, cacheLookups, enrollmentMoves, goroutines)

	return &MetricsService{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		chatIntents:      chatIntents,
		providerRequests: providerRequests,
		providerLatency:  providerLatency,
		scrapes:          scrapes,
		cacheLookups:     cacheLookups,
		enrollmentMoves:  enrollmentMoves,
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

// Registry returns the underlying registry.
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
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordChatIntent counts one reply for the intent.
func (m *MetricsService) RecordChatIntent(intent string) {
	if m == nil {
		return
	}
	m.chatIntents.WithLabelValues(intent).Inc()
}

// ObserveProviderCall records one provider round trip.
func (m *MetricsService) ObserveProviderCall(provider string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.providerRequests.WithLabelValues(provider, outcome).Inc()
	m.providerLatency.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordScrape counts a scrape by the path that produced it.
func (m *MetricsService) RecordScrape(source string) {
	if m == nil {
		return
	}
	m.scrapes.WithLabelValues(source).Inc()
}

// RecordCacheLookup counts a scrape-cache hit or miss.
func (m *MetricsService) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// RecordStatusChange counts an applied enrollment transition.
func (m *MetricsService) RecordStatusChange(from, to string) {
	if m == nil {
		return
	}
	m.enrollmentMoves.WithLabelValues(from, to).Inc()
}
