// Package metrics implements the decision core's observable-quantity set
// (§4.6) as Prometheus collectors using the promauto vector idiom.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	decisiondomain "github.com/hollis-varga/riskguard/internal/domain/decision"
	"github.com/hollis-varga/riskguard/internal/domain/pattern"
)

// Registry holds every Prometheus collector the decision core emits and
// implements internal/service/decision.Recorder.
type Registry struct {
	requestCount    *prometheus.CounterVec
	requestLatency  prometheus.Histogram
	decisionCount   *prometheus.CounterVec
	ruleEvalLatency prometheus.Histogram
	ruleHitCount    *prometheus.CounterVec
	patternMatch    *prometheus.CounterVec
	patternLatency  prometheus.Histogram
	errorCount      *prometheus.CounterVec
}

// NewRegistry constructs and registers the decision core's metric set
// against the given registerer (use prometheus.DefaultRegisterer in
// production, or a fresh prometheus.NewRegistry() in tests to avoid
// collisions across test runs).
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)

	return &Registry{
		requestCount: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "riskguard",
				Name:      "request_total",
				Help:      "Total number of decision requests processed",
			},
			[]string{"outcome"},
		),
		requestLatency: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "riskguard",
				Name:      "request_latency_seconds",
				Help:      "End-to-end decision request latency",
				Buckets:   prometheus.ExponentialBucketsRange(0.001, 1, 12), // 1ms to 1s
			},
		),
		decisionCount: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "riskguard",
				Name:      "decision_total",
				Help:      "Total decisions rendered, by outcome",
			},
			[]string{"outcome"},
		),
		ruleEvalLatency: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "riskguard",
				Name:      "rule_evaluation_latency_seconds",
				Help:      "Latency of a full rule-set evaluation pass",
				Buckets:   prometheus.ExponentialBucketsRange(0.0001, 0.5, 12),
			},
		),
		ruleHitCount: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "riskguard",
				Name:      "rule_hit_total",
				Help:      "Total times each rule id triggered",
			},
			[]string{"rule_id"},
		),
		patternMatch: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "riskguard",
				Name:      "pattern_match_total",
				Help:      "Total pattern matches, by category",
			},
			[]string{"category"},
		),
		patternLatency: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "riskguard",
				Name:      "pattern_match_latency_seconds",
				Help:      "Latency of a pattern match pass",
				Buckets:   prometheus.ExponentialBucketsRange(0.00001, 0.1, 12),
			},
		),
		errorCount: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "riskguard",
				Name:      "error_total",
				Help:      "Total errors, by component and kind",
			},
			[]string{"component", "kind"},
		),
	}
}

// Handler returns the Prometheus scrape handler for the given registry
// (§4.1 monitoring.metrics_path is expected to route here).
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func (r *Registry) RecordDecision(outcome decisiondomain.Outcome) {
	label := outcome.String()
	r.requestCount.WithLabelValues(label).Inc()
	r.decisionCount.WithLabelValues(label).Inc()
}

func (r *Registry) RecordEvaluationDuration(seconds float64) {
	r.requestLatency.Observe(seconds)
}

func (r *Registry) RecordRuleEvaluationDuration(seconds float64) {
	r.ruleEvalLatency.Observe(seconds)
}

func (r *Registry) RecordRuleHit(ruleID string) {
	r.ruleHitCount.WithLabelValues(ruleID).Inc()
}

func (r *Registry) RecordPatternMatch(category pattern.Category, count int) {
	if count <= 0 {
		return
	}
	r.patternMatch.WithLabelValues(string(category)).Add(float64(count))
}

func (r *Registry) RecordPatternMatchDuration(seconds float64) {
	r.patternLatency.Observe(seconds)
}

func (r *Registry) RecordError(component, kind string) {
	r.errorCount.WithLabelValues(component, kind).Inc()
}
