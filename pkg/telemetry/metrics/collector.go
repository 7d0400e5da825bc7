// Package metrics provides Prometheus metrics for the policy engine and the
// tool transport.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"scoperoot-hq/scoperoot/pkg/config"
	"scoperoot-hq/scoperoot/pkg/policy"
)

// Collector owns all ScopeRoot metrics and their registry.
//
// Metrics:
//   - scoperoot_policy_evaluations_total{reason,operation}
//   - scoperoot_policy_evaluation_duration_seconds
//   - scoperoot_policy_reloads_total{outcome}
//   - scoperoot_policy_active_patterns
//   - scoperoot_tool_requests_total{tool,status}
//   - scoperoot_tool_request_duration_seconds{tool}
type Collector struct {
	enabled  bool
	registry *prometheus.Registry

	evaluationsTotal   *prometheus.CounterVec
	evaluationDuration prometheus.Histogram
	reloadsTotal       *prometheus.CounterVec
	activePatterns     prometheus.Gauge
	toolRequestsTotal  *prometheus.CounterVec
	toolDuration       *prometheus.HistogramVec
}

// NewCollector creates a collector and registers all metrics with the given
// registry. If registry is nil a fresh one is created.
func NewCollector(cfg config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "scoperoot"
	}

	c := &Collector{
		enabled:  cfg.Enabled == nil || *cfg.Enabled,
		registry: registry,

		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "policy_evaluations_total",
				Help:      "Total number of access evaluations by decision reason",
			},
			[]string{"reason", "operation"},
		),

		evaluationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "policy_evaluation_duration_seconds",
				Help:      "Duration of a single access evaluation",
				// Evaluations are a stat plus in-memory matching.
				Buckets: prometheus.ExponentialBuckets(0.000001, 2, 15),
			},
		),

		reloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "policy_reloads_total",
				Help:      "Total number of allow file reload attempts by outcome",
			},
			[]string{"outcome"},
		),

		activePatterns: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "policy_active_patterns",
				Help:      "Number of allow patterns in the active rule set",
			},
		),

		toolRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tool_requests_total",
				Help:      "Total number of tool invocations by outcome",
			},
			[]string{"tool", "status"},
		),

		toolDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "tool_request_duration_seconds",
				Help:      "Duration of tool invocations",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
			[]string{"tool"},
		),
	}

	registry.MustRegister(
		c.evaluationsTotal,
		c.evaluationDuration,
		c.reloadsTotal,
		c.activePatterns,
		c.toolRequestsTotal,
		c.toolDuration,
	)

	return c
}

// RecordEvaluation records one access decision.
func (c *Collector) RecordEvaluation(d policy.Decision, op policy.Operation, duration time.Duration) {
	if !c.enabled {
		return
	}
	c.evaluationsTotal.WithLabelValues(d.Reason.String(), op.String()).Inc()
	c.evaluationDuration.Observe(duration.Seconds())
}

// RecordReload records one reload attempt and the resulting pattern count.
func (c *Collector) RecordReload(ev policy.ReloadEvent) {
	if !c.enabled {
		return
	}
	c.reloadsTotal.WithLabelValues(ev.Outcome.String()).Inc()
	c.activePatterns.Set(float64(ev.Patterns))
}

// RecordToolRequest records one tool invocation.
func (c *Collector) RecordToolRequest(tool, status string, duration time.Duration) {
	if !c.enabled {
		return
	}
	c.toolRequestsTotal.WithLabelValues(tool, status).Inc()
	c.toolDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

// Handler returns the HTTP handler serving the /metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
