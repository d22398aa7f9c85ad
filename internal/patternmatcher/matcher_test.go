package patternmatcher

import (
	"strings"
	"testing"

	"github.com/hollis-varga/riskguard/internal/domain/pattern"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcher_CompileAndMatchText_Exact(t *testing.T) {
	m := New(BackendAuto)
	patterns := []*pattern.Pattern{
		{ID: 1, Name: "evil-ip", Text: "203.0.113.66", Category: pattern.CategoryBlacklist},
	}
	require.NoError(t, m.Compile(patterns))
	assert.Equal(t, StateReady, m.State())

	results := m.MatchText("request from 203.0.113.66 seen", nil)
	require.Len(t, results.Matches, 1)
	assert.Equal(t, "203.0.113.66", results.Matches[0].MatchedText)
	assert.Equal(t, uint32(1), results.Matches[0].PatternID)
}

func TestMatcher_CompileAndMatchText_Wildcard(t *testing.T) {
	m := New(BackendAuto)
	patterns := []*pattern.Pattern{
		{ID: 1, Name: "evil-domain", Text: "*.evil-host.com", Category: pattern.CategoryBlacklist},
	}
	require.NoError(t, m.Compile(patterns))

	results := m.MatchText("mail.evil-host.com", nil)
	assert.Len(t, results.Matches, 1)

	results = m.MatchText("mail.good-host.com", nil)
	assert.Empty(t, results.Matches)
}

func TestMatcher_CompileAndMatchText_CIDR24(t *testing.T) {
	m := New(BackendAuto)
	patterns := []*pattern.Pattern{
		{ID: 1, Name: "blocked-range", Text: "10.0.0.0/24", Category: pattern.CategoryBlacklist},
	}
	require.NoError(t, m.Compile(patterns))

	within := m.MatchText("10.0.0.42", nil)
	assert.Len(t, within.Matches, 1)

	outside := m.MatchText("10.0.1.42", nil)
	assert.Empty(t, outside.Matches)
}

func TestMatcher_CompileFailure_RetainsPreviousReadyBackend(t *testing.T) {
	m := New(BackendAuto)
	good := []*pattern.Pattern{{ID: 1, Text: "safe", Category: pattern.CategoryWhitelist}}
	require.NoError(t, m.Compile(good))
	assert.Equal(t, StateReady, m.State())

	bad := []*pattern.Pattern{{ID: 2, Text: "", Category: pattern.CategoryBlacklist}}
	err := m.Compile(bad)
	require.Error(t, err)

	results := m.MatchText("safe", nil)
	assert.Len(t, results.Matches, 1, "previous Ready database should still serve matches")
}

func TestMatcher_MatchBeforeCompile_ReturnsNoMatch(t *testing.T) {
	m := New(BackendAuto)
	results := m.MatchText("anything", nil)
	assert.Empty(t, results.Matches)
}

func TestMatcher_CategoryFilter(t *testing.T) {
	m := New(BackendAuto)
	patterns := []*pattern.Pattern{
		{ID: 1, Text: "shared", Category: pattern.CategoryBlacklist},
		{ID: 2, Text: "shared", Category: pattern.CategoryWhitelist},
	}
	require.NoError(t, m.Compile(patterns))

	blOnly := pattern.CategoryBlacklist
	results := m.MatchText("shared", &blOnly)
	require.Len(t, results.Matches, 1)
	assert.Equal(t, pattern.CategoryBlacklist, results.Matches[0].Category)
}

func TestMatcher_MatchTransaction_MergesFields(t *testing.T) {
	m := New(BackendAuto)
	patterns := []*pattern.Pattern{
		{ID: 1, Text: "203.0.113.66", Category: pattern.CategoryBlacklist},
		{ID: 2, Text: "merch-bad", Category: pattern.CategoryBlacklist},
	}
	require.NoError(t, m.Compile(patterns))

	fields := NewTransactionFields("203.0.113.66", "fp", "ua", "merch-bad", "tok", "US", "visa", "cust", "USD", "chip")
	results := m.MatchTransaction(fields, nil)
	assert.Len(t, results.Matches, 2)
}

func TestLoadLines_SkipsCommentsAndBlankLines(t *testing.T) {
	input := "# comment\n\n203.0.113.66\n  \n*.bad.com\n"
	patterns, err := LoadLines(strings.NewReader(input), pattern.CategoryBlacklist, 1)
	require.NoError(t, err)
	require.Len(t, patterns, 2)
	assert.Equal(t, "203.0.113.66", patterns[0].Text)
	assert.Equal(t, "*.bad.com", patterns[1].Text)
}

func TestLoadLines_RejectsUnknownCategory(t *testing.T) {
	_, err := LoadLines(strings.NewReader("x"), pattern.Category("unknown"), 1)
	assert.Error(t, err)
}
