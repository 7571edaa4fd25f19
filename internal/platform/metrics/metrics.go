package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fpl_creator_match"

var (
	// Remote API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_requests_total",
			Help:      "Total number of FPL API requests by endpoint and status.",
		},
		[]string{"endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "remote_request_duration_seconds",
			Help:      "Duration of FPL API requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	CircuitState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_open",
			Help:      "1 while the named circuit breaker is open or half open.",
		},
		[]string{"dependency"},
	)

	RetryAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retry_attempts_total",
			Help:      "Failed attempts seen by the retry executor.",
		},
		[]string{"operation", "class"},
	)

	// Ingestion
	IngestionPagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingestion_pages_total",
			Help:      "Standings pages processed by result (committed, rejected, skipped).",
		},
		[]string{"result"},
	)

	IngestionManagersUpserted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingestion_managers_upserted_total",
			Help:      "Manager records written by ingestion.",
		},
	)

	IngestionLastPage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ingestion_checkpoint_last_page",
			Help:      "Last committed standings page.",
		},
	)

	// Cache
	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Cache lookups by cache class and result (hit, miss).",
		},
		[]string{"cache", "result"},
	)

	// Reference refresh
	ReferenceRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reference_refresh_squads_total",
			Help:      "Reference squads processed by refresh result.",
		},
		[]string{"result"},
	)

	ReferenceRefreshRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reference_refresh_running",
			Help:      "1 while a reference refresh is running.",
		},
	)

	ReferenceRefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reference_refresh_duration_seconds",
			Help:      "Duration of full reference refresh runs.",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)

	SchedulerTriggersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduler_triggers_total",
			Help:      "Scheduler triggers by source (cron, manual) and outcome (ran, coalesced).",
		},
		[]string{"source", "outcome"},
	)
)

func Handler() http.Handler {
	return promhttp.Handler()
}

func BoolGauge(v bool) float64 {
	if v {
		return 1
	}
	return 0
}
