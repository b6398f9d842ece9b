// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ToolRunsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tool_runs_completed_total",
			Help: "Total number of tool runs that produced a success sentence",
		},
		[]string{"tool"},
	)

	ToolRunsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tool_runs_failed_total",
			Help: "Total number of tool runs that produced a failure sentence",
		},
		[]string{"tool", "error_category"},
	)

	ToolRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "tool_run_duration_seconds",
			Help: "Duration of a tool run in seconds",
		},
		[]string{"tool"},
	)

	RemoteCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "remote_call_duration_seconds",
			Help: "Duration of remote domain API calls in seconds",
		},
		[]string{"path", "outcome"},
	)

	RouterQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "router_queries_total",
			Help: "Total number of routed queries",
		},
		[]string{"strategy", "mode", "outcome"},
	)

	RouterIterations = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "router_reasoning_iterations",
			Help:    "Reasoning iterations used per routed query",
			Buckets: []float64{1, 2, 3, 5, 8, 12, 15},
		},
		[]string{"strategy"},
	)

	StreamsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "router_streams_active",
			Help: "Number of streaming queries currently running",
		},
		[]string{"transport"},
	)

	SessionsCleared = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "router_sessions_cleared_total",
			Help: "Total number of clear-session requests",
		},
		[]string{"found"},
	)

	DBAgentQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dbagent_queries_total",
			Help: "Total number of text-to-SQL questions answered",
		},
		[]string{"status"},
	)
)
