package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPattern_Validate(t *testing.T) {
	require.NoError(t, (&Pattern{ID: 1, Text: "*.evil.com", Category: CategoryBlacklist}).Validate())
	assert.Error(t, (&Pattern{ID: 2, Text: "", Category: CategoryBlacklist}).Validate())
	assert.Error(t, (&Pattern{ID: 3, Text: "x", Category: Category("unknown")}).Validate())
}

func TestPattern_CategoryHelpers(t *testing.T) {
	bl := &Pattern{Category: Category("fraud_blacklist")}
	assert.True(t, bl.IsBlacklist())
	assert.False(t, bl.IsWhitelist())

	wl := &Pattern{Category: Category("trusted_whitelist")}
	assert.True(t, wl.IsWhitelist())
	assert.False(t, wl.IsBlacklist())
}

func TestResults_AddAndScore(t *testing.T) {
	var r Results
	r.Add(Match{PatternID: 1, Category: CategoryBlacklist, MatchedText: "a"})
	r.Add(Match{PatternID: 2, Category: CategoryBlacklist, MatchedText: "b"})
	r.Add(Match{PatternID: 3, Category: CategoryWhitelist, MatchedText: "c"})

	assert.Len(t, r.Matches, 3)
	assert.Len(t, r.BlacklistHits, 2)
	assert.Len(t, r.WhitelistHits, 1)
	assert.Equal(t, float64(15), r.Score()) // 2*10 - 1*5
}

func TestResults_ScoreFlooredAtZero(t *testing.T) {
	var r Results
	r.Add(Match{Category: CategoryWhitelist})
	r.Add(Match{Category: CategoryWhitelist})
	assert.Equal(t, float64(0), r.Score())
}

func TestResults_Merge(t *testing.T) {
	var a, b Results
	a.Add(Match{Category: CategoryBlacklist})
	b.Add(Match{Category: CategoryWhitelist})
	b.TextsProcessed = 2

	a.Merge(b)
	assert.Len(t, a.Matches, 2)
	assert.Equal(t, 2, a.TextsProcessed)
}
