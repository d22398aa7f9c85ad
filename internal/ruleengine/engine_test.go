package ruleengine

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hollis-varga/riskguard/internal/domain/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRequestContext() *request.RuleContext {
	req, err := request.ParseRequest([]byte(`{
		"request_id": "req-1",
		"timestamp_ms": 1700000000000,
		"transaction": {"amount": 15000, "currency": "USD", "merchant_id": "m1", "merchant_category": 1},
		"card": {"card_token": "tok", "issuer_country": "US"},
		"device": {"ip_address": "8.8.8.8"},
		"customer": {"customer_id": "cust-1", "customer_risk_score": 10, "account_age_days": 400}
	}`))
	if err != nil {
		panic(err)
	}
	return request.NewRuleContext(req)
}

func TestEngine_EvaluateRules(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"version": "v1",
		"rules": [
			{"id": "high-amount", "expression": "amount > 10000", "weight": 25},
			{"id": "low-weight", "expression": "amount > 1", "weight": 1}
		],
		"thresholds": {"approve_threshold": 30, "review_threshold": 70}
	}`), 0o644))

	engine := New()
	require.NoError(t, engine.LoadRules(path))
	assert.True(t, engine.IsInitialized())

	worker := engine.NewWorker()
	metrics, err := worker.EvaluateRules(newTestRequestContext())
	require.NoError(t, err)

	assert.Equal(t, 2, metrics.RulesEvaluated)
	assert.Equal(t, 2, metrics.RulesTriggered)
	assert.Equal(t, float64(26), metrics.TotalScore)

	stats := engine.GetRuleStatistics()
	require.Contains(t, stats, "high-amount")
	assert.Equal(t, int64(1), stats["high-amount"].EvaluationCount)
	assert.Equal(t, int64(1), stats["high-amount"].HitCount)
}

func TestEngine_EvaluateRules_PriorityOrder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"version": "v1",
		"rules": [
			{"id": "low", "expression": "1", "weight": 1},
			{"id": "high", "expression": "1", "weight": 99}
		],
		"thresholds": {"approve_threshold": 30, "review_threshold": 70}
	}`), 0o644))

	engine := New()
	require.NoError(t, engine.LoadRules(path))

	metrics, err := engine.NewWorker().EvaluateRules(newTestRequestContext())
	require.NoError(t, err)
	require.Len(t, metrics.Results, 2)
	assert.Equal(t, "high", metrics.Results[0].RuleID)
	assert.Equal(t, "low", metrics.Results[1].RuleID)
}

func TestEngine_EvaluateRules_NotInitialized(t *testing.T) {
	engine := New()
	_, err := engine.NewWorker().EvaluateRules(newTestRequestContext())
	assert.Error(t, err)
}

func TestEngine_HotReload_SwapsConfigAndClearsWorkerCache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"version": "v1",
		"rules": [{"id": "r1", "expression": "amount > 1", "weight": 5}],
		"thresholds": {"approve_threshold": 30, "review_threshold": 70}
	}`), 0o644))

	engine := New()
	require.NoError(t, engine.LoadRules(path))
	worker := engine.NewWorker()

	_, err := worker.EvaluateRules(newTestRequestContext())
	require.NoError(t, err)

	engine.EnableHotReload(path, 10*time.Millisecond, nil)
	defer engine.DisableHotReload()

	require.NoError(t, os.WriteFile(path, []byte(`{
		"version": "v2",
		"rules": [{"id": "r2", "expression": "amount > 1", "weight": 9}],
		"thresholds": {"approve_threshold": 30, "review_threshold": 70}
	}`), 0o644))

	require.Eventually(t, func() bool {
		return engine.GetCurrentConfig().Version == "v2"
	}, time.Second, 5*time.Millisecond)

	metrics, err := worker.EvaluateRules(newTestRequestContext())
	require.NoError(t, err)
	require.Len(t, metrics.Results, 1)
	assert.Equal(t, "r2", metrics.Results[0].RuleID)
}

func TestEngine_ResetStatistics(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"version": "v1",
		"rules": [{"id": "r1", "expression": "amount > 1", "weight": 1}],
		"thresholds": {"approve_threshold": 30, "review_threshold": 70}
	}`), 0o644))

	engine := New()
	require.NoError(t, engine.LoadRules(path))
	_, err := engine.NewWorker().EvaluateRules(newTestRequestContext())
	require.NoError(t, err)

	engine.ResetStatistics()
	stats := engine.GetRuleStatistics()
	assert.Equal(t, int64(0), stats["r1"].EvaluationCount)
}
