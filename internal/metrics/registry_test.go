package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	decisiondomain "github.com/hollis-varga/riskguard/internal/domain/decision"
	"github.com/hollis-varga/riskguard/internal/domain/pattern"
)

func TestRegistry_RecordDecision(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRegistry(reg)

	r.RecordDecision(decisiondomain.Approve)
	r.RecordDecision(decisiondomain.Decline)

	assert.Equal(t, float64(1), testutil.ToFloat64(r.decisionCount.WithLabelValues("APPROVE")))
	assert.Equal(t, float64(1), testutil.ToFloat64(r.decisionCount.WithLabelValues("DECLINE")))
}

func TestRegistry_RecordPatternMatch_SkipsZeroCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRegistry(reg)

	r.RecordPatternMatch(pattern.CategoryBlacklist, 0)
	r.RecordPatternMatch(pattern.CategoryBlacklist, 3)

	assert.Equal(t, float64(3), testutil.ToFloat64(r.patternMatch.WithLabelValues("blacklist")))
}

func TestRegistry_RecordError(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRegistry(reg)

	r.RecordError("orchestrator", "invalid_request")
	assert.Equal(t, float64(1), testutil.ToFloat64(r.errorCount.WithLabelValues("orchestrator", "invalid_request")))
}

func TestRegistry_RecordRuleHit(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRegistry(reg)

	r.RecordRuleHit("high_amount_rule")
	r.RecordRuleHit("high_amount_rule")
	assert.Equal(t, float64(2), testutil.ToFloat64(r.ruleHitCount.WithLabelValues("high_amount_rule")))
}
