package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestService_Health_Ready(t *testing.T) {
	matcher := &mockMatcher{}
	worker := &mockWorker{}
	rules := &mockRuleConfigSource{}
	recorder := &mockRecorder{}
	rules.On("IsInitialized").Return(true)

	svc := New(matcher, worker, rules, recorder, "v1")
	assert.Equal(t, "healthy", svc.Health().Status)
	assert.Equal(t, "ready", svc.Ready().Status)
}

func TestService_Health_Ready_DegradedWhenRulesNotInitialized(t *testing.T) {
	matcher := &mockMatcher{}
	worker := &mockWorker{}
	rules := &mockRuleConfigSource{}
	recorder := &mockRecorder{}
	rules.On("IsInitialized").Return(false)

	svc := New(matcher, worker, rules, recorder, "v1")
	assert.Equal(t, "degraded", svc.Health().Status)
	assert.Equal(t, "not_ready", svc.Ready().Status)
}

