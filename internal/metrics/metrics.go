// Package metrics exposes Prometheus collectors for routing, probes, the agent loop and tools.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Decisions by intent and decision type.
	RoutingDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "router_decisions_total",
			Help: "Routing decisions by intent and decision type",
		},
		[]string{"intent", "type"},
	)

	// Probe verdicts by backend: agrees, disagrees, unavailable.
	ProbeVerdicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "router_probe_verdicts_total",
			Help: "Rule-engine probe verdicts compared with the native strategy",
		},
		[]string{"backend", "verdict"},
	)

	ProbeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "router_probe_duration_seconds",
			Help:    "Rule-engine probe latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		},
		[]string{"backend"},
	)

	// Agent turns by action taken.
	AgentTurns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_turns_total",
			Help: "Agent loop turns by parsed action",
		},
		[]string{"action"},
	)

	// Agent sessions by how they ended: final_answer, ask_user, max_turns, error.
	AgentOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_sessions_total",
			Help: "Agent sessions by terminal state",
		},
		[]string{"outcome"},
	)

	ToolCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tool_calls_total",
			Help: "Tool executions by tool, source and success",
		},
		[]string{"tool", "source", "success"},
	)

	LLMCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_call_duration_seconds",
			Help:    "LLM completion latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms to ~100s
		},
		[]string{"provider", "status"},
	)
)

// RecordDecision counts a routing decision.
func RecordDecision(intent, kind string) {
	RoutingDecisions.WithLabelValues(intent, kind).Inc()
}

// RecordProbe counts a probe verdict and observes its latency.
func RecordProbe(backend, verdict string, d time.Duration) {
	ProbeVerdicts.WithLabelValues(backend, verdict).Inc()
	ProbeDuration.WithLabelValues(backend).Observe(d.Seconds())
}

// RecordAgentTurn counts one agent turn.
func RecordAgentTurn(action string) {
	AgentTurns.WithLabelValues(action).Inc()
}

// RecordAgentOutcome counts how an agent session ended.
func RecordAgentOutcome(outcome string) {
	AgentOutcomes.WithLabelValues(outcome).Inc()
}

// RecordToolCall counts a tool execution.
func RecordToolCall(tool, source string, success bool) {
	s := "false"
	if success {
		s = "true"
	}
	ToolCalls.WithLabelValues(tool, source, s).Inc()
}

// RecordLLMCall observes an LLM call.
func RecordLLMCall(provider, status string, d time.Duration) {
	LLMCallDuration.WithLabelValues(provider, status).Observe(d.Seconds())
}
