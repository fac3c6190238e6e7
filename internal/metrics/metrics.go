package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	SearchRequestsTotal   *prometheus.CounterVec
	SearchRequestDuration *prometheus.HistogramVec
	SearchInFlight        prometheus.Gauge

	SuggestRequestsTotal   *prometheus.CounterVec
	SuggestRequestDuration prometheus.Histogram

	PagesLoadedTotal      *prometheus.CounterVec
	StaleResponsesDropped *prometheus.CounterVec

	HistoryOpsTotal *prometheus.CounterVec

	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		SearchRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_pipeline_search_requests_total",
				Help: "Total number of search API page requests",
			},
			[]string{"category", "status"},
		),
		SearchRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "search_pipeline_search_request_duration_seconds",
				Help:    "Search page request duration in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"category"},
		),
		SearchInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "search_pipeline_search_in_flight",
				Help: "Number of page fetches currently in flight",
			},
		),

		SuggestRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_pipeline_suggest_requests_total",
				Help: "Total number of autocomplete requests",
			},
			[]string{"status"},
		),
		SuggestRequestDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "search_pipeline_suggest_request_duration_seconds",
				Help:    "Autocomplete request duration in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2},
			},
		),

		PagesLoadedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_pipeline_pages_loaded_total",
				Help: "Total number of result pages applied to pagination state",
			},
			[]string{"category"},
		),
		StaleResponsesDropped: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_pipeline_stale_responses_dropped_total",
				Help: "Responses discarded because their (query, page) tag no longer matched",
			},
			[]string{"category"},
		),

		HistoryOpsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_pipeline_history_ops_total",
				Help: "History store operations",
			},
			[]string{"op", "status"},
		),

		CacheHitsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "search_pipeline_suggest_cache_hits_total",
				Help: "Suggestion cache hits",
			},
		),
		CacheMissesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "search_pipeline_suggest_cache_misses_total",
				Help: "Suggestion cache misses",
			},
		),
	}

	return m
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func (m *Metrics) RecordSearch(category, status string, duration time.Duration) {
	m.SearchRequestsTotal.WithLabelValues(category, status).Inc()
	if duration > 0 {
		m.SearchRequestDuration.WithLabelValues(category).Observe(duration.Seconds())
	}
}

func (m *Metrics) RecordSuggest(status string, duration time.Duration) {
	m.SuggestRequestsTotal.WithLabelValues(status).Inc()
	if duration > 0 {
		m.SuggestRequestDuration.Observe(duration.Seconds())
	}
}

func (m *Metrics) RecordPageLoaded(category string) {
	m.PagesLoadedTotal.WithLabelValues(category).Inc()
}

func (m *Metrics) RecordStaleDropped(category string) {
	m.StaleResponsesDropped.WithLabelValues(category).Inc()
}

func (m *Metrics) RecordHistoryOp(op, status string) {
	m.HistoryOpsTotal.WithLabelValues(op, status).Inc()
}

func (m *Metrics) RecordCacheHit() {
	m.CacheHitsTotal.Inc()
}

func (m *Metrics) RecordCacheMiss() {
	m.CacheMissesTotal.Inc()
}

func (m *Metrics) IncSearchInFlight() {
	m.SearchInFlight.Inc()
}

func (m *Metrics) DecSearchInFlight() {
	m.SearchInFlight.Dec()
}
