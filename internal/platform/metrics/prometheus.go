package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsManager holds the service's Prometheus collectors on a private registry.
// A nil *MetricsManager is valid and records nothing.
type MetricsManager struct {
	Registry                 *prometheus.Registry
	ReviewEventsTotal        *prometheus.CounterVec
	CommentEventsTotal       *prometheus.CounterVec
	LikeTogglesTotal         *prometheus.CounterVec
	ReportEventsTotal        *prometheus.CounterVec
	AccountStateChangesTotal *prometheus.CounterVec
	AggregateRetriesTotal    prometheus.Counter
	APIErrorsTotal           *prometheus.CounterVec
	APILatency               *prometheus.HistogramVec
}

// NewMetricsManager creates and registers the collectors under namespace.
func NewMetricsManager(namespace string) *MetricsManager {
	registry := prometheus.NewRegistry()

	m := &MetricsManager{
		Registry: registry,
		ReviewEventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "review_events_total",
			Help:      "Review mutations by action.",
		}, []string{"action"}),
		CommentEventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comment_events_total",
			Help:      "Comment mutations by action.",
		}, []string{"action"}),
		LikeTogglesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "like_toggles_total",
			Help:      "Like toggles by target kind and resulting state.",
		}, []string{"target", "result"}),
		ReportEventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_events_total",
			Help:      "Report lifecycle events by action.",
		}, []string{"action"}),
		AccountStateChangesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "account_state_changes_total",
			Help:      "Account state changes by target state.",
		}, []string{"state"}),
		AggregateRetriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rating_aggregate_retries_total",
			Help:      "Retries of catalog rating aggregate writes after transient failures.",
		}),
		APIErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_errors_total",
			Help:      "HTTP responses with status >= 400 by route and error type.",
		}, []string{"route", "error_type"}),
		APILatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_latency_seconds",
			Help:      "Latency of HTTP requests by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	registry.MustRegister(
		m.ReviewEventsTotal,
		m.CommentEventsTotal,
		m.LikeTogglesTotal,
		m.ReportEventsTotal,
		m.AccountStateChangesTotal,
		m.AggregateRetriesTotal,
		m.APIErrorsTotal,
		m.APILatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *MetricsManager) IncReview(action string) {
	if m != nil {
		m.ReviewEventsTotal.WithLabelValues(action).Inc()
	}
}

func (m *MetricsManager) IncComment(action string) {
	if m != nil {
		m.CommentEventsTotal.WithLabelValues(action).Inc()
	}
}

func (m *MetricsManager) IncLike(target string, liked bool) {
	if m == nil {
		return
	}
	result := "unliked"
	if liked {
		result = "liked"
	}
	m.LikeTogglesTotal.WithLabelValues(target, result).Inc()
}

func (m *MetricsManager) IncReport(action string) {
	if m != nil {
		m.ReportEventsTotal.WithLabelValues(action).Inc()
	}
}

func (m *MetricsManager) IncAccountState(state string) {
	if m != nil {
		m.AccountStateChangesTotal.WithLabelValues(state).Inc()
	}
}

func (m *MetricsManager) IncAggregateRetry() {
	if m != nil {
		m.AggregateRetriesTotal.Inc()
	}
}

func (m *MetricsManager) ObserveRequest(method, route string, status int, errorType string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.APILatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
	if status >= http.StatusBadRequest {
		m.APIErrorsTotal.WithLabelValues(route, errorType).Inc()
	}
}

// NewMetricsServer returns an HTTP server exposing registry on /metrics.
func NewMetricsServer(port string, registry *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	return &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
