package rule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRule_Validate(t *testing.T) {
	tests := []struct {
		name    string
		rule    Rule
		wantErr bool
	}{
		{"valid", Rule{ID: "r1", Expression: "amount > 100"}, false},
		{"empty id", Rule{ID: "", Expression: "amount > 100"}, true},
		{"empty expression", Rule{ID: "r1", Expression: ""}, true},
	}
	for i := range tests {
		tt := &tests[i]
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStats_RecordEvaluation(t *testing.T) {
	var s Stats
	s.RecordEvaluation(true, 5*time.Millisecond)
	s.RecordEvaluation(false, 3*time.Millisecond)

	assert.Equal(t, int64(2), s.EvaluationCount())
	assert.Equal(t, int64(1), s.HitCount())
	assert.Equal(t, 8*time.Millisecond, s.TotalEvaluationTime())

	s.Reset()
	assert.Equal(t, int64(0), s.EvaluationCount())
	assert.Equal(t, int64(0), s.HitCount())
}

func TestThresholds_Validate(t *testing.T) {
	require.NoError(t, Thresholds{Approve: 30, Review: 70}.Validate())
	assert.Error(t, Thresholds{Approve: 70, Review: 30}.Validate())
	assert.Error(t, Thresholds{Approve: 30, Review: 30}.Validate())
	assert.Error(t, Thresholds{Approve: -1, Review: 70}.Validate())
	assert.Error(t, Thresholds{Approve: 30, Review: 200}.Validate())
}

func TestConfig_Validate_DuplicateRuleID(t *testing.T) {
	cfg := &Config{
		Thresholds: Thresholds{Approve: 30, Review: 70},
		Rules: []*Rule{
			{ID: "r1", Expression: "amount > 1"},
			{ID: "r1", Expression: "amount > 2"},
		},
	}
	assert.Error(t, cfg.Validate())
}

func TestConfig_EnabledInPriorityOrder(t *testing.T) {
	cfg := &Config{
		Rules: []*Rule{
			{ID: "low", Expression: "1", Weight: 1, Enabled: true},
			{ID: "high", Expression: "1", Weight: 10, Enabled: true},
			{ID: "disabled", Expression: "1", Weight: 100, Enabled: false},
		},
	}

	ordered := cfg.EnabledInPriorityOrder()
	require.Len(t, ordered, 2)
	assert.Equal(t, "high", ordered[0].ID)
	assert.Equal(t, "low", ordered[1].ID)
}
