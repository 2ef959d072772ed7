// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Fetch metrics
	TradesFetched    *prometheus.CounterVec
	PagesFetched     prometheus.Counter
	FetchErrors      *prometheus.CounterVec
	FetchDuration    *prometheus.HistogramVec
	FetchInFlight    prometheus.Gauge
	RateLimitedTotal prometheus.Counter

	// Analysis metrics
	AnalysisRunsTotal  *prometheus.CounterVec
	AnalysisDuration   prometheus.Histogram
	MatchedMarkets     prometheus.Gauge
	RankedTraders      prometheus.Gauge
	TradesAnalyzed     prometheus.Counter
	RecordsDropped     prometheus.Counter
	ReportsGenerated   prometheus.Counter

	// Watcher metrics
	WSMessagesReceived prometheus.Counter
	WSTradesCaptured   prometheus.Counter
	WSDecodeErrors     prometheus.Counter
	WSReconnects       prometheus.Counter
	WSConnected        prometheus.Gauge

	// Storage metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulFetch prometheus.Gauge
	LastSuccessfulRun   prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "polymarket_leaders"
	}

	return &Metrics{
		// Fetch metrics
		TradesFetched: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "trades_fetched_total",
			Help:      "Total number of raw trade records fetched per trader",
		}, []string{"trader"}),
		PagesFetched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "pages_fetched_total",
			Help:      "Total number of trade history pages fetched",
		}),
		FetchErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "errors_total",
			Help:      "Total number of fetch errors by trader",
		}, []string{"trader"}),
		FetchDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "duration_seconds",
			Help:      "Duration of per-trader history fetches",
			Buckets:   prometheus.DefBuckets,
		}, []string{"trader"}),
		FetchInFlight: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "in_flight",
			Help:      "Number of trader fetches currently in flight",
		}),
		RateLimitedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "rate_limited_total",
			Help:      "Total number of requests delayed by the rate limiter",
		}),

		// Analysis metrics
		AnalysisRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "runs_total",
			Help:      "Total number of analysis runs by status",
		}, []string{"status"}),
		AnalysisDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "duration_seconds",
			Help:      "Duration of analysis runs",
			Buckets:   prometheus.DefBuckets,
		}),
		MatchedMarkets: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "matched_markets",
			Help:      "Matched market count of the most recent run",
		}),
		RankedTraders: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "ranked_traders",
			Help:      "Ranked trader count of the most recent run",
		}),
		TradesAnalyzed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "trades_analyzed_total",
			Help:      "Total number of normalized trades fed into analysis",
		}),
		RecordsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "records_dropped_total",
			Help:      "Total number of raw records dropped during normalization",
		}),
		ReportsGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "reports_generated_total",
			Help:      "Total number of reports generated",
		}),

		// Watcher metrics
		WSMessagesReceived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "watch",
			Name:      "messages_received_total",
			Help:      "Total number of websocket messages received",
		}),
		WSTradesCaptured: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "watch",
			Name:      "trades_captured_total",
			Help:      "Total number of live trades captured and stored",
		}),
		WSDecodeErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "watch",
			Name:      "decode_errors_total",
			Help:      "Total number of websocket messages that failed to decode",
		}),
		WSReconnects: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "watch",
			Name:      "reconnects_total",
			Help:      "Total number of websocket reconnects",
		}),
		WSConnected: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "watch",
			Name:      "connected",
			Help:      "Whether the websocket is currently connected (0 or 1)",
		}),

		// Storage metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "query_duration_seconds",
			Help:      "Duration of database operations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "query_errors_total",
			Help:      "Total number of database operation errors",
		}, []string{"database", "operation"}),

		// Health metrics
		LastSuccessfulFetch: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_fetch_timestamp",
			Help:      "Unix timestamp of the last successful fetch",
		}),
		LastSuccessfulRun: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_run_timestamp",
			Help:      "Unix timestamp of the last successful analysis run",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordFetch records a completed per-trader fetch.
func RecordFetch(trader string, records int, seconds float64, err error) {
	DefaultMetrics.TradesFetched.WithLabelValues(trader).Add(float64(records))
	DefaultMetrics.FetchDuration.WithLabelValues(trader).Observe(seconds)
	if err != nil {
		DefaultMetrics.FetchErrors.WithLabelValues(trader).Inc()
	}
}

// RecordAnalysisRun records a completed analysis run.
func RecordAnalysisRun(status string, durationSeconds float64, matchedMarkets, rankedTraders int) {
	DefaultMetrics.AnalysisRunsTotal.WithLabelValues(status).Inc()
	DefaultMetrics.AnalysisDuration.Observe(durationSeconds)
	DefaultMetrics.MatchedMarkets.Set(float64(matchedMarkets))
	DefaultMetrics.RankedTraders.Set(float64(rankedTraders))
}

// RecordWatcherMessage increments the websocket messages counter.
func RecordWatcherMessage() {
	DefaultMetrics.WSMessagesReceived.Inc()
}

// RecordWatcherTrade increments the captured trades counter.
func RecordWatcherTrade() {
	DefaultMetrics.WSTradesCaptured.Inc()
}

// RecordWatcherDecodeError increments the decode errors counter.
func RecordWatcherDecodeError() {
	DefaultMetrics.WSDecodeErrors.Inc()
}

// RecordWatcherReconnect increments the reconnects counter.
func RecordWatcherReconnect() {
	DefaultMetrics.WSReconnects.Inc()
}

// SetWatcherConnected updates the websocket connection gauge.
func SetWatcherConnected(connected bool) {
	if connected {
		DefaultMetrics.WSConnected.Set(1)
	} else {
		DefaultMetrics.WSConnected.Set(0)
	}
}

// RecordDBQuery records database operation metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
