package decision

import (
	"github.com/hollis-varga/riskguard/internal/domain/decision"
	"github.com/hollis-varga/riskguard/internal/domain/pattern"
	"github.com/hollis-varga/riskguard/internal/domain/request"
	"github.com/hollis-varga/riskguard/internal/domain/rule"
	"github.com/hollis-varga/riskguard/internal/patternmatcher"
	"github.com/hollis-varga/riskguard/internal/ruleengine"
)

// PatternMatcher is the subset of *patternmatcher.Matcher the orchestrator
// depends on, narrowed to ease testing against a fake.
type PatternMatcher interface {
	MatchText(text string, categoryFilter *pattern.Category) pattern.Results
	MatchTransaction(fields patternmatcher.TransactionFields, categoryFilter *pattern.Category) pattern.Results
}

// RuleWorker is the subset of *ruleengine.Worker the orchestrator depends on.
type RuleWorker interface {
	EvaluateRules(ctx *request.RuleContext) (*ruleengine.EvaluationMetrics, error)
}

// RuleConfigSource exposes the thresholds the orchestrator fuses against.
type RuleConfigSource interface {
	GetCurrentConfig() *rule.Config
}

// FeatureProvider resolves the feature-store-derived RuleContext fields
// (§4.2: merchant_risk, hourly_count, amount_sum) for one request. The
// decision path itself does no I/O (§5); a FeatureProvider backed by a
// remote cache must resolve synchronously from an already-warm local view,
// queuing any cache miss as an out-of-band warm rather than blocking this
// request on it, or be skipped via NoopFeatureProvider.
type FeatureProvider interface {
	Lookup(cacheKey string, amount float64) Features
}

// Features holds the resolved feature-store values for one request.
type Features struct {
	MerchantRisk float64
	HourlyCount  int
	AmountSum    float64
}

// NoopFeatureProvider returns the documented per-field defaults without
// performing any lookup.
type NoopFeatureProvider struct{}

// Lookup implements FeatureProvider with the §4.2 defaults.
func (NoopFeatureProvider) Lookup(_ string, amount float64) Features {
	return Features{MerchantRisk: 0, HourlyCount: 1, AmountSum: amount}
}

// Recorder is the metrics surface the orchestrator emits to (§4.6). The
// concrete implementation lives in internal/metrics.
type Recorder interface {
	RecordDecision(outcome decision.Outcome)
	RecordEvaluationDuration(seconds float64)
	RecordRuleEvaluationDuration(seconds float64)
	RecordRuleHit(ruleID string)
	RecordPatternMatch(category pattern.Category, count int)
	RecordPatternMatchDuration(seconds float64)
	RecordError(component, kind string)
}
