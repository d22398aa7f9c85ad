// Package pattern defines the Pattern and PatternMatch entities compiled
// and scanned by internal/patternmatcher.
package pattern

import (
	"fmt"
	"strings"
)

// Category classifies a Pattern (or a match against one) as a block- or
// allow-list entry. The underlying string must contain "blacklist" or
// "whitelist" per the source-file category tag, so the type stays a string
// rather than a closed enum.
type Category string

const (
	CategoryBlacklist Category = "blacklist"
	CategoryWhitelist Category = "whitelist"
)

// Kind is the syntactic class a pattern was auto-classified into when parsed.
type Kind int

const (
	KindExact Kind = iota
	KindWildcard
	KindCIDR
)

func (k Kind) String() string {
	switch k {
	case KindExact:
		return "exact"
	case KindWildcard:
		return "wildcard"
	case KindCIDR:
		return "cidr"
	default:
		return "unknown"
	}
}

// Pattern is one compiled entry in the matcher database.
type Pattern struct {
	ID            uint32
	Name          string
	Text          string
	Category      Category
	Kind          Kind
	IsRegex       bool
	CaseSensitive bool
	Priority      int
}

// Validate checks the structural invariants a Pattern must satisfy before compilation.
func (p *Pattern) Validate() error {
	if p.Text == "" {
		return fmt.Errorf("pattern %d: text cannot be empty", p.ID)
	}
	if !strings.Contains(string(p.Category), string(CategoryBlacklist)) &&
		!strings.Contains(string(p.Category), string(CategoryWhitelist)) {
		return fmt.Errorf("pattern %d: category %q must contain %q or %q", p.ID, p.Category, CategoryBlacklist, CategoryWhitelist)
	}
	return nil
}

// IsBlacklist reports whether the pattern's category tag names the blacklist list.
func (p *Pattern) IsBlacklist() bool {
	return strings.Contains(string(p.Category), string(CategoryBlacklist))
}

// IsWhitelist reports whether the pattern's category tag names the whitelist list.
func (p *Pattern) IsWhitelist() bool {
	return strings.Contains(string(p.Category), string(CategoryWhitelist))
}

// Match is one hit of a Pattern against a scanned text, with byte offsets
// into the scanned text such that text[Start:End] == MatchedText.
type Match struct {
	PatternID   uint32
	PatternName string
	MatchedText string
	Start       int
	End         int
	Category    Category
}

// Results aggregates the matches produced by one match_text/match_batch/
// match_transaction call.
type Results struct {
	Matches         []Match
	BlacklistHits   []Match
	WhitelistHits   []Match
	TextsProcessed  int
	PatternsChecked int
	EvaluationTime  int64 // nanoseconds
}

// Add appends match to Matches and to the blacklist/whitelist sub-slice
// matching its category.
func (r *Results) Add(m Match) {
	r.Matches = append(r.Matches, m)
	if strings.Contains(string(m.Category), string(CategoryBlacklist)) {
		r.BlacklistHits = append(r.BlacklistHits, m)
	}
	if strings.Contains(string(m.Category), string(CategoryWhitelist)) {
		r.WhitelistHits = append(r.WhitelistHits, m)
	}
}

// Merge folds other's matches and counters into r, for combining per-field
// scan results into one transaction-level result.
func (r *Results) Merge(other Results) {
	r.Matches = append(r.Matches, other.Matches...)
	r.BlacklistHits = append(r.BlacklistHits, other.BlacklistHits...)
	r.WhitelistHits = append(r.WhitelistHits, other.WhitelistHits...)
	r.TextsProcessed += other.TextsProcessed
	r.PatternsChecked += other.PatternsChecked
	r.EvaluationTime += other.EvaluationTime
}

// Score applies the informational scoring helper from §4.3: +10 per
// blacklist hit, -5 per whitelist hit, floored at 0. The orchestrator is
// free to ignore this and compute its own fusion.
func (r *Results) Score() float64 {
	score := float64(len(r.BlacklistHits))*10 - float64(len(r.WhitelistHits))*5
	if score < 0 {
		return 0
	}
	return score
}
