package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	SourceFallback = "fallback"
	SourceLLM      = "llm"
)

var (
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_turns_total",
			Help: "Total number of answered turns by intent and reply source",
		},
		[]string{"intent", "source"},
	)

	RemoteFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_remote_failures_total",
			Help: "Total number of remote generation calls that fell back to the offline reply",
		},
		[]string{"provider"},
	)

	TurnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assistant_turn_duration_seconds",
			Help:    "Duration of turn processing in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 2, 5, 10},
		},
		[]string{"source"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "assistant_active_sessions",
			Help: "Number of chat sessions holding conversation memory",
		},
	)

	CatalogProducts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "assistant_catalog_products",
			Help: "Number of products in the current catalog snapshot",
		},
	)

	CatalogRefreshFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assistant_catalog_refresh_failures_total",
			Help: "Total number of catalog refreshes that kept the stale snapshot",
		},
	)
)
