package patternmatcher

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/hollis-varga/riskguard/internal/domain/pattern"
	apperrors "github.com/hollis-varga/riskguard/internal/errors"
)

// compiledEntry pairs a loaded Pattern with its compiled matcher.
type compiledEntry struct {
	pattern *pattern.Pattern
	re      *regexp.Regexp
}

// regexpBackend is the standard-library-backed matcher strategy: every
// pattern (exact, wildcard, or CIDR) is compiled to a regexp.Regexp and
// scanned with regexp.FindAllStringIndex. This is the STD backend and the
// current resolution of AUTO; grounded on the compiled-regexp Condition
// idiom the pack's WAF-style detectors use for rule matching.
type regexpBackend struct {
	entries []compiledEntry
}

func newRegexpBackend() *regexpBackend {
	return &regexpBackend{}
}

func (b *regexpBackend) Name() string { return "regexp" }

// Compile converts every pattern to a regular expression and compiles it.
// A single bad pattern fails the whole attempt (§4.3: compile errors are
// fatal to that attempt), reported as a PatternCompileError naming the
// offending pattern id; the caller (Matcher.Compile) is responsible for
// discarding this candidate and retaining its previous Ready backend.
func (b *regexpBackend) Compile(patterns []*pattern.Pattern) error {
	entries := make([]compiledEntry, 0, len(patterns))
	for _, p := range patterns {
		id := strconv.FormatUint(uint64(p.ID), 10)
		if err := p.Validate(); err != nil {
			return apperrors.NewPatternCompileError(id, fmt.Sprintf("pattern %d: %v", p.ID, err))
		}
		expr, kind, err := toRegexPattern(p.Text)
		if err != nil {
			return apperrors.NewPatternCompileError(id, fmt.Sprintf("pattern %d: %v", p.ID, err))
		}
		p.Kind = kind

		flags := ""
		if !p.CaseSensitive {
			flags = "(?i)"
		}
		re, err := regexp.Compile(flags + expr)
		if err != nil {
			return apperrors.NewPatternCompileError(id, fmt.Sprintf("pattern %d: compiling %q: %v", p.ID, p.Text, err))
		}
		entries = append(entries, compiledEntry{pattern: p, re: re})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].pattern.Priority > entries[j].pattern.Priority
	})

	b.entries = entries
	return nil
}

func (b *regexpBackend) MatchText(text string, categoryFilter *pattern.Category) pattern.Results {
	start := time.Now()
	var results pattern.Results
	results.TextsProcessed = 1

	for _, e := range b.entries {
		if categoryFilter != nil && !categoryMatches(e.pattern.Category, *categoryFilter) {
			continue
		}
		results.PatternsChecked++

		for _, loc := range e.re.FindAllStringIndex(text, -1) {
			results.Add(pattern.Match{
				PatternID:   e.pattern.ID,
				PatternName: e.pattern.Name,
				MatchedText: text[loc[0]:loc[1]],
				Start:       loc[0],
				End:         loc[1],
				Category:    e.pattern.Category,
			})
		}
	}

	results.EvaluationTime = time.Since(start).Nanoseconds()
	return results
}

func (b *regexpBackend) MatchBatch(texts []string, categoryFilter *pattern.Category) pattern.Results {
	var merged pattern.Results
	for _, text := range texts {
		merged.Merge(b.MatchText(text, categoryFilter))
	}
	return merged
}

func categoryMatches(patternCategory, filter pattern.Category) bool {
	return strings.Contains(string(patternCategory), string(filter))
}

// toRegexPattern classifies text per §4.3's auto-detection rules and
// returns the equivalent regular expression along with the detected Kind.
func toRegexPattern(text string) (string, pattern.Kind, error) {
	if isCIDR(text) {
		expr, err := cidrToRegex(text)
		if err != nil {
			return "", pattern.KindCIDR, err
		}
		return expr, pattern.KindCIDR, nil
	}
	if strings.ContainsAny(text, "*?") {
		return wildcardToRegex(text), pattern.KindWildcard, nil
	}
	return regexp.QuoteMeta(text), pattern.KindExact, nil
}

func isCIDR(text string) bool {
	if !strings.Contains(text, "/") {
		return false
	}
	return strings.Contains(text, ".") || strings.Contains(text, ":")
}

// wildcardToRegex converts a glob (where '*' matches any sequence and '?'
// matches exactly one character) into an anchored regular expression,
// escaping every other regex metacharacter.
func wildcardToRegex(glob string) string {
	var b strings.Builder
	b.WriteString("^")
	for _, r := range glob {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return b.String()
}
