// Package metrics exposes the Prometheus collectors that make the
// acknowledge-then-process webhook contract observable: the HTTP response
// only reports acceptance, these counters report what happened afterwards.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WebhooksReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screener_webhooks_received_total",
			Help: "Total number of webhook deliveries received, by action",
		},
		[]string{"action"},
	)

	SignatureFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "screener_signature_failures_total",
			Help: "Total number of webhook deliveries rejected for a bad signature",
		},
	)

	PipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screener_pipeline_runs_total",
			Help: "Total number of analysis pipeline runs, by outcome",
		},
		[]string{"status"},
	)

	PipelineDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "screener_pipeline_duration_seconds",
			Help: "Duration of analysis pipeline runs in seconds",
		},
	)
)

// Pipeline run outcomes.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)
