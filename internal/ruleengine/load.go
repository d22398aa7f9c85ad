package ruleengine

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/hollis-varga/riskguard/internal/domain/rule"
)

// document is the wire shape of a rule file (§6).
type document struct {
	Version    string               `json:"version"`
	Rules      []ruleDocument       `json:"rules"`
	Thresholds thresholdsDocument   `json:"thresholds"`
}

type ruleDocument struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Expression  string   `json:"expression"`
	Weight      *float64 `json:"weight"`
	Enabled     *bool    `json:"enabled"`
	Description string   `json:"description"`
}

type thresholdsDocument struct {
	Approve float64 `json:"approve_threshold"`
	Review  float64 `json:"review_threshold"`
}

// LoadErr records a failure to load or validate a rule file, alongside the
// ids of any rules that were individually skipped for a missing id or
// expression before the load failed.
type LoadErr struct {
	Path        string
	Cause       error
	SkippedRule []string
}

func (e *LoadErr) Error() string {
	return fmt.Sprintf("loading rule file %q: %v", e.Path, e.Cause)
}

func (e *LoadErr) Unwrap() error { return e.Cause }

// LoadRuleFile parses path into a validated *rule.Config. Rules missing an
// id or expression are skipped, not fatal; any other structural failure
// (duplicate id, invalid thresholds) fails the whole load. Skipped rules are
// not reported when the load succeeds; their ids appear only in
// LoadErr.SkippedRule when the load fails.
func LoadRuleFile(path string) (*rule.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadErr{Path: path, Cause: err}
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &LoadErr{Path: path, Cause: fmt.Errorf("parsing rule file: %w", err)}
	}

	cfg := &rule.Config{
		Version:  doc.Version,
		LoadedAt: time.Now(),
		Thresholds: rule.Thresholds{
			Approve: doc.Thresholds.Approve,
			Review:  doc.Thresholds.Review,
		},
	}

	var skipped []string
	for _, rd := range doc.Rules {
		if rd.ID == "" || rd.Expression == "" {
			skipped = append(skipped, rd.ID)
			continue
		}

		weight := 1.0
		if rd.Weight != nil {
			weight = *rd.Weight
		}
		enabled := true
		if rd.Enabled != nil {
			enabled = *rd.Enabled
		}

		cfg.Rules = append(cfg.Rules, &rule.Rule{
			ID:          rd.ID,
			Name:        rd.Name,
			Expression:  rd.Expression,
			Weight:      weight,
			Enabled:     enabled,
			Description: rd.Description,
		})
	}

	if err := cfg.Validate(); err != nil {
		return nil, &LoadErr{Path: path, Cause: err, SkippedRule: skipped}
	}

	return cfg, nil
}
