// Package rule defines the Rule, RuleConfig, and per-evaluation statistics
// entities evaluated by the rule engine (internal/ruleengine).
package rule

import (
	"fmt"
	"sort"
	"sync/atomic"
	"time"
)

// Rule is one weighted, optionally-enabled condition over a RuleContext.
type Rule struct {
	ID          string
	Name        string
	Expression  string
	Weight      float64
	Enabled     bool
	Description string

	stats Stats
}

// Stats holds the monotonic per-rule counters accumulated across
// evaluations. Fields are accessed only through atomic helpers: many
// worker goroutines update the same Rule concurrently.
type Stats struct {
	evaluationCount   atomic.Int64
	hitCount          atomic.Int64
	totalEvalTimeNs   atomic.Int64
}

// RecordEvaluation updates the stats after one evaluation attempt.
func (s *Stats) RecordEvaluation(triggered bool, elapsed time.Duration) {
	s.evaluationCount.Add(1)
	s.totalEvalTimeNs.Add(elapsed.Nanoseconds())
	if triggered {
		s.hitCount.Add(1)
	}
}

// EvaluationCount returns the number of evaluations recorded since the last reset.
func (s *Stats) EvaluationCount() int64 { return s.evaluationCount.Load() }

// HitCount returns the number of triggered evaluations recorded since the last reset.
func (s *Stats) HitCount() int64 { return s.hitCount.Load() }

// TotalEvaluationTime returns the accumulated evaluation duration since the last reset.
func (s *Stats) TotalEvaluationTime() time.Duration {
	return time.Duration(s.totalEvalTimeNs.Load())
}

// Reset zeroes all counters. Safe to call while evaluations are in flight;
// individual counters may undercount the in-flight evaluation that raced
// the reset, which is acceptable for a statistics surface.
func (s *Stats) Reset() {
	s.evaluationCount.Store(0)
	s.hitCount.Store(0)
	s.totalEvalTimeNs.Store(0)
}

// Stats exposes the rule's mutable statistics handle.
func (r *Rule) Stats() *Stats { return &r.stats }

// Validate checks the structural invariants a Rule must satisfy to be loaded.
func (r *Rule) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("rule id cannot be empty")
	}
	if r.Expression == "" {
		return fmt.Errorf("rule %q: expression cannot be empty", r.ID)
	}
	return nil
}

// Thresholds holds the approve/review boundaries a decision is compared against.
type Thresholds struct {
	Approve float64
	Review  float64
}

// Validate enforces the approve < review invariant and the [0,100] range.
func (t Thresholds) Validate() error {
	if t.Approve < 0 || t.Approve > 100 || t.Review < 0 || t.Review > 100 {
		return fmt.Errorf("thresholds must be within [0,100], got approve=%v review=%v", t.Approve, t.Review)
	}
	if t.Approve >= t.Review {
		return fmt.Errorf("approve threshold (%v) must be less than review threshold (%v)", t.Approve, t.Review)
	}
	return nil
}

// Config is an immutable, loaded set of rules plus thresholds. A Config is
// replaced wholesale on reload; it is never mutated after construction, so
// concurrent readers need no synchronization beyond the pointer swap that
// publishes a new Config.
type Config struct {
	Version    string
	Rules      []*Rule
	Thresholds Thresholds
	LoadedAt   time.Time
}

// Validate checks rule id uniqueness and threshold ordering.
func (c *Config) Validate() error {
	if err := c.Thresholds.Validate(); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(c.Rules))
	for _, r := range c.Rules {
		if _, dup := seen[r.ID]; dup {
			return fmt.Errorf("duplicate rule id %q", r.ID)
		}
		seen[r.ID] = struct{}{}
	}
	return nil
}

// EnabledInPriorityOrder returns enabled rules sorted by weight descending,
// the evaluation order mandated for a single pass over the rule set.
func (c *Config) EnabledInPriorityOrder() []*Rule {
	out := make([]*Rule, 0, len(c.Rules))
	for _, r := range c.Rules {
		if r.Enabled {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Weight > out[j].Weight })
	return out
}
