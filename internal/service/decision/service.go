// Package decision implements the orchestrator (C5): it assembles a rule
// evaluation context from an incoming request, invokes the pattern matcher
// and rule engine, fuses their outputs into a decision, and emits a
// structured response plus evaluation metrics.
package decision

import (
	"context"
	"math"
	"time"

	decisiondomain "github.com/hollis-varga/riskguard/internal/domain/decision"
	"github.com/hollis-varga/riskguard/internal/domain/pattern"
	"github.com/hollis-varga/riskguard/internal/domain/request"
	apperrors "github.com/hollis-varga/riskguard/internal/errors"
	"github.com/hollis-varga/riskguard/internal/infrastructure/telemetry"
	"github.com/hollis-varga/riskguard/internal/patternmatcher"
	"github.com/hollis-varga/riskguard/internal/ruleengine"
	"go.uber.org/zap"
)

const component = "orchestrator"

var blacklistCategory = pattern.CategoryBlacklist

// Service is the decision orchestrator. It holds shared, read-only
// references to the pattern matcher and rule engine for the duration of
// every decision it produces; it owns neither (§3 ownership rules).
type Service struct {
	matcher      PatternMatcher
	worker       RuleWorker
	rules        RuleConfigSource
	features     FeatureProvider
	recorder     Recorder
	modelVersion string
	logger       *zap.Logger
	tracer       telemetry.TracerInterface
}

// Option configures optional Service dependencies at construction time.
type Option func(*Service)

// WithFeatureProvider overrides the default NoopFeatureProvider.
func WithFeatureProvider(fp FeatureProvider) Option {
	return func(s *Service) { s.features = fp }
}

// WithLogger overrides the default no-op logger. Every decision and error
// ProcessDecision produces is logged through it, enriched with the active
// span's trace fields when tracing is enabled (§4.6, §9).
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithTracer overrides the default tracer, which otherwise resolves
// against whatever global TracerProvider is active (a no-op until
// telemetry.InitializeOpenTelemetry runs).
func WithTracer(tracer telemetry.TracerInterface) Option {
	return func(s *Service) { s.tracer = tracer }
}

// New constructs a Service over its three required collaborators.
func New(matcher PatternMatcher, worker RuleWorker, rules RuleConfigSource, recorder Recorder, modelVersion string, opts ...Option) *Service {
	s := &Service{
		matcher:      matcher,
		worker:       worker,
		rules:        rules,
		recorder:     recorder,
		modelVersion: modelVersion,
		features:     NoopFeatureProvider{},
		logger:       zap.NewNop(),
		tracer:       telemetry.NewOpenTelemetryTracer(component),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProcessDecision implements the orchestrator API's process_decision
// contract (§6, §4.5).
func (s *Service) ProcessDecision(ctx context.Context, body []byte) (*decisiondomain.Response, error) {
	start := time.Now()

	req, err := request.ParseRequest(body)
	if err != nil {
		s.recordErrorMetric(err)
		s.logger.Warn("request parsing failed", zap.Error(err))
		return nil, err
	}

	ctx, span := telemetry.StartDecisionSpan(ctx, s.tracer, req.RequestID)
	defer span.End()
	logger := telemetry.LoggerFromContext(ctx, s.logger).With(zap.String("request_id", req.RequestID))

	ruleCtx := request.NewRuleContext(req)
	if !ruleCtx.IsEvaluable() {
		err := apperrors.NewInvalidRequest(component, "CONTEXT_NOT_EVALUABLE", "request context is missing required fields")
		s.recordErrorMetric(err)
		telemetry.WithSpanError(span, err)
		logger.Warn("request context not evaluable")
		return nil, err
	}

	_, patternSpan := telemetry.StartPatternMatchSpan(ctx, s.tracer, req.RequestID)
	patternStart := time.Now()
	fields := patternmatcher.NewTransactionFields(
		req.Device.IP, req.Device.Fingerprint, req.Device.UserAgent,
		req.Transaction.MerchantID, req.Card.Token, req.Card.IssuerCountry,
		req.Card.CardBrand, req.Customer.ID, req.Transaction.Amount.Currency(),
		req.Transaction.POSEntryMode,
	)
	patternResults := s.matcher.MatchTransaction(fields, nil)
	patternDuration := time.Since(patternStart)
	patternSpan.End()
	s.recorder.RecordPatternMatch(pattern.CategoryBlacklist, len(patternResults.BlacklistHits))
	s.recorder.RecordPatternMatch(pattern.CategoryWhitelist, len(patternResults.WhitelistHits))
	s.recorder.RecordPatternMatchDuration(patternDuration.Seconds())

	for _, hit := range patternResults.BlacklistHits {
		if hit.MatchedText == req.Device.IP {
			ruleCtx.IPBlacklistMatch = true
			break
		}
	}

	features := s.features.Lookup(req.FeatureCacheKey(), ruleCtx.Amount)
	ruleCtx.MerchantRisk = features.MerchantRisk
	ruleCtx.HourlyCount = features.HourlyCount
	ruleCtx.AmountSum = features.AmountSum

	_, ruleSpan := telemetry.StartRuleEvaluationSpan(ctx, s.tracer, req.RequestID)
	ruleStart := time.Now()
	ruleMetrics, err := s.worker.EvaluateRules(ruleCtx)
	ruleDuration := time.Since(ruleStart)
	ruleSpan.End()
	s.recorder.RecordRuleEvaluationDuration(ruleDuration.Seconds())
	if err != nil {
		s.recordErrorMetric(err)
		telemetry.WithSpanError(span, err)
		logger.Error("rule evaluation failed", zap.Error(err))
		return nil, err
	}
	for _, r := range ruleMetrics.Results {
		if r.Triggered {
			s.recorder.RecordRuleHit(r.RuleID)
		}
	}

	cfg := s.rules.GetCurrentConfig()

	score := ruleMetrics.TotalScore
	adjustments := applyAdjustments(req, req.Transaction.Amount.IsMajor())
	for _, adj := range adjustments {
		score += adj.Amount
	}
	score += patternResults.Score()
	score = decisiondomain.ClampScore(score)

	outcome := thresholdDecision(score, cfg.Thresholds.Approve, cfg.Thresholds.Review)
	// A high-risk request or a blacklisted device IP is always declined.
	if (isHighRisk(req) || ruleCtx.IPBlacklistMatch) && outcome != decisiondomain.Decline {
		outcome = decisiondomain.Decline
	}

	reasons := buildReasons(ruleMetrics, adjustments, patternResults)

	resp := &decisiondomain.Response{
		RequestID:      req.RequestID,
		Decision:       outcome,
		RiskScore:      math.Round(score*100) / 100,
		TriggeredRules: reasons,
		LatencyMs:      float64(time.Since(start).Microseconds()) / 1000.0,
		ModelVersion:   s.modelVersion,
		Timestamp:      time.Now().UTC(),
	}

	s.recorder.RecordDecision(outcome)
	s.recorder.RecordEvaluationDuration(time.Since(start).Seconds())
	logger.Info("decision rendered",
		zap.String("decision", outcome.String()),
		zap.Float64("risk_score", resp.RiskScore),
		zap.Float64("latency_ms", resp.LatencyMs),
	)
	return resp, nil
}

func thresholdDecision(score, approve, review float64) decisiondomain.Outcome {
	switch {
	case score < approve:
		return decisiondomain.Approve
	case score >= review:
		return decisiondomain.Decline
	default:
		return decisiondomain.Review
	}
}

func buildReasons(ruleMetrics *ruleengine.EvaluationMetrics, adjustments []adjustment, patternResults pattern.Results) []string {
	var reasons []string
	for _, r := range ruleMetrics.Results {
		if r.Triggered {
			reasons = append(reasons, r.RuleID)
		}
	}
	for _, adj := range adjustments {
		reasons = append(reasons, adj.ReasonID)
	}
	for _, hit := range patternResults.BlacklistHits {
		reasons = append(reasons, "pattern:"+hit.PatternName)
	}
	return reasons
}

func (s *Service) recordErrorMetric(err error) {
	kind := apperrors.KindOf(err)
	comp := apperrors.ComponentOf(err)
	if comp == "" {
		comp = component
	}
	s.recorder.RecordError(comp, string(kind))
}
