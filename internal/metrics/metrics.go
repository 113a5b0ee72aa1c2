package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for LLMCallsTotal.
const (
	OutcomeSuccess    = "success"
	OutcomeQuota      = "quota"
	OutcomeError      = "error"
	OutcomeParseError = "parse_error"
)

var (
	// LLMCallsTotal tracks backend calls per model and outcome
	LLMCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecoscout_llm_calls_total",
			Help: "Total number of classification backend calls",
		},
		[]string{"backend", "model", "outcome"},
	)

	// LLMLatency tracks backend call latency
	LLMLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ecoscout_llm_latency_seconds",
			Help:    "Classification backend call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "model"},
	)

	// CredentialsEvicted tracks keys dropped after quota or auth failures
	CredentialsEvicted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecoscout_credentials_evicted_total",
			Help: "Total number of credentials evicted from a backend pool",
		},
		[]string{"backend"},
	)

	// CredentialsAvailable tracks the current pool size per backend
	CredentialsAvailable = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ecoscout_credentials_available",
			Help: "Number of usable credentials per backend",
		},
		[]string{"backend"},
	)

	// ClassificationsTotal tracks orchestrator results
	ClassificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecoscout_classifications_total",
			Help: "Total number of classifications returned",
		},
		[]string{"provider", "degraded"},
	)

	// PagesScraped tracks scrape outcomes
	PagesScraped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecoscout_pages_scraped_total",
			Help: "Total number of organisation pages scraped",
		},
		[]string{"status"},
	)

	// RecordsStored tracks storage upserts
	RecordsStored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecoscout_records_stored_total",
			Help: "Total number of organisation records written",
		},
		[]string{"result"},
	)
)
