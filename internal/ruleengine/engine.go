package ruleengine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/hollis-varga/riskguard/internal/domain/rule"
	apperrors "github.com/hollis-varga/riskguard/internal/errors"
	"github.com/hollis-varga/riskguard/internal/reload"
)

// RuleResult is one rule's outcome within a single evaluate_rules call.
type RuleResult struct {
	RuleID           string
	Triggered        bool
	ContributionScore float64
	EvaluationTime   time.Duration
	DebugInfo        string
}

// EvaluationMetrics is the aggregate result of one evaluate_rules call (§4.4).
type EvaluationMetrics struct {
	Results              []RuleResult
	TotalScore           float64
	RulesTriggered       int
	RulesEvaluated       int
	TotalEvaluationTime  time.Duration
	StartTime            time.Time
	EndTime              time.Time
}

// Engine owns the active RuleConfig and the shared per-rule statistics
// table. It never owns per-worker compiled-expression caches: those belong
// exclusively to each Worker (§9, §5).
type Engine struct {
	mu          sync.RWMutex
	config      *rule.Config
	generation  atomic.Int64
	initialized atomic.Bool

	errMu   sync.Mutex
	lastErr error

	coordinator *reload.Coordinator
}

func (e *Engine) recordError(err error) {
	e.errMu.Lock()
	e.lastErr = err
	e.errMu.Unlock()
}

// New constructs an uninitialized Engine. Call LoadRules before evaluating.
func New() *Engine {
	return &Engine{}
}

// LoadRules loads path into a validated RuleConfig and installs it as the
// active configuration, replacing any previous one atomically.
func (e *Engine) LoadRules(path string) error {
	cfg, err := LoadRuleFile(path)
	if err != nil {
		e.recordError(err)
		return err
	}
	e.installConfig(cfg)
	e.initialized.Store(true)
	return nil
}

func (e *Engine) installConfig(cfg *rule.Config) {
	e.mu.Lock()
	e.config = cfg
	e.mu.Unlock()
	e.generation.Add(1)
}

// GetCurrentConfig returns a shared, read-only reference to the active
// RuleConfig snapshot.
func (e *Engine) GetCurrentConfig() *rule.Config {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.config
}

// IsInitialized reports whether LoadRules has succeeded at least once.
func (e *Engine) IsInitialized() bool { return e.initialized.Load() }

// GetLastError returns the most recently recorded error, if any: a failed
// load/reload, or a rule compile or evaluation error reported by a worker.
func (e *Engine) GetLastError() error {
	e.errMu.Lock()
	defer e.errMu.Unlock()
	return e.lastErr
}

// EnableHotReload starts a background watcher on path that reloads the
// active RuleConfig whenever the file's modification time advances,
// invoking onReload (if non-nil) after each successful swap. Validation
// failures are recorded via GetLastError and never disturb the active
// configuration.
func (e *Engine) EnableHotReload(path string, interval time.Duration, onReload func(*rule.Config)) {
	e.coordinator = reload.New(path, func(p string) (interface{}, error) {
		return LoadRuleFile(p)
	}, func(err error) {
		e.recordError(err)
	})
	e.coordinator.Seed(e.GetCurrentConfig())

	e.coordinator.Enable(interval, func(v interface{}) {
		cfg := v.(*rule.Config)
		e.installConfig(cfg)
		if onReload != nil {
			onReload(cfg)
		}
	})
}

// DisableHotReload stops the background watcher, if one is running.
func (e *Engine) DisableHotReload() {
	if e.coordinator != nil {
		e.coordinator.Disable()
	}
}

// GetRuleStatistics returns a snapshot of every rule's evaluation/hit
// counters keyed by rule id.
func (e *Engine) GetRuleStatistics() map[string]RuleStatSnapshot {
	cfg := e.GetCurrentConfig()
	if cfg == nil {
		return nil
	}
	out := make(map[string]RuleStatSnapshot, len(cfg.Rules))
	for _, r := range cfg.Rules {
		out[r.ID] = RuleStatSnapshot{
			Rule:            r,
			EvaluationCount: r.Stats().EvaluationCount(),
			HitCount:        r.Stats().HitCount(),
			TotalTime:       r.Stats().TotalEvaluationTime(),
		}
	}
	return out
}

// RuleStatSnapshot pairs a Rule with its point-in-time statistics.
type RuleStatSnapshot struct {
	Rule            *rule.Rule
	EvaluationCount int64
	HitCount        int64
	TotalTime       time.Duration
}

// ResetStatistics zeroes every loaded rule's counters.
func (e *Engine) ResetStatistics() {
	cfg := e.GetCurrentConfig()
	if cfg == nil {
		return
	}
	for _, r := range cfg.Rules {
		r.Stats().Reset()
	}
}

var errRuleEngineNotInitialized = apperrors.NewInternalError("rule_engine", "rule engine has no loaded configuration")

// generation exposes the current config generation for Worker's staleness check.
func (e *Engine) currentGeneration() int64 { return e.generation.Load() }
