package ruleengine

import (
	"time"

	"github.com/hollis-varga/riskguard/internal/domain/request"
	"github.com/hollis-varga/riskguard/internal/domain/rule"
	apperrors "github.com/hollis-varga/riskguard/internal/errors"
)

// Worker holds one goroutine's private compiled-expression cache, bound to
// the Engine it was created from. Workers are never shared across
// goroutines and share no mutable state with each other (§5, §9).
type Worker struct {
	engine     *Engine
	generation int64
	cache      map[string]*CompiledExpression
}

// NewWorker returns a Worker seeded lazily on first use; construction is
// cheap enough to call once per goroutine at startup.
func (e *Engine) NewWorker() *Worker {
	return &Worker{engine: e}
}

// refreshIfStale drops the worker's cache when the engine's active
// RuleConfig generation has moved on, so a fresh compile happens lazily on
// next access rather than eagerly from the reload callback (§4.4).
func (w *Worker) refreshIfStale() {
	gen := w.engine.currentGeneration()
	if gen != w.generation {
		w.cache = make(map[string]*CompiledExpression)
		w.generation = gen
	}
}

func (w *Worker) compiled(r *rule.Rule) (*CompiledExpression, error) {
	if ce, ok := w.cache[r.ID]; ok {
		return ce, nil
	}
	ce, err := Compile(r.Expression)
	if err != nil {
		return nil, err
	}
	if w.cache == nil {
		w.cache = make(map[string]*CompiledExpression)
	}
	w.cache[r.ID] = ce
	return ce, nil
}

// EvaluateRules runs the single-pass evaluation described in §4.4: iterate
// enabled rules in priority order, ensure each is compiled, evaluate it
// against ctx, accumulate triggered weights, and update per-rule stats.
// A rule that fails to compile or throws during evaluation is skipped for
// this request and excluded from the contribution; the whole evaluation
// never fails because one rule failed.
func (w *Worker) EvaluateRules(ctx *request.RuleContext) (*EvaluationMetrics, error) {
	if !w.engine.IsInitialized() {
		return nil, errRuleEngineNotInitialized
	}
	w.refreshIfStale()

	cfg := w.engine.GetCurrentConfig()
	metrics := &EvaluationMetrics{StartTime: time.Now()}

	vars := ctx.AsVariables()
	for _, r := range cfg.EnabledInPriorityOrder() {
		start := time.Now()

		ce, err := w.compiled(r)
		if err != nil {
			w.engine.recordError(apperrors.NewRuleCompileError(r.ID, err.Error()))
			continue
		}

		value, err := ce.Evaluate(vars)
		elapsed := time.Since(start)
		if err != nil {
			w.engine.recordError(apperrors.NewRuleEvaluationError(r.ID, err.Error()))
			continue
		}

		triggered := Triggered(value)
		r.Stats().RecordEvaluation(triggered, elapsed)

		result := RuleResult{
			RuleID:         r.ID,
			Triggered:      triggered,
			EvaluationTime: elapsed,
		}
		if triggered {
			result.ContributionScore = r.Weight
			metrics.TotalScore += r.Weight
			metrics.RulesTriggered++
		}

		metrics.Results = append(metrics.Results, result)
		metrics.RulesEvaluated++
		metrics.TotalEvaluationTime += elapsed
	}

	metrics.EndTime = time.Now()
	return metrics, nil
}
