// Package patternmatcher compiles a mixed corpus of exact strings, wildcard
// globs, and CIDR ranges into a single matcher database and scans the
// text-bearing fields of a decision request against it.
//
// The engine is modeled as a strategy over a Backend interface (§4.3's
// {AUTO, HIGH_PERF, STD, ALT} preference enum); the only Backend shipped
// here is a compiled-regexp implementation, grounded on the compiled
// regexp.Regexp Condition idiom used by the pack's WAF-style detectors.
// HIGH_PERF/ALT are reserved extension points selected by Backend but not
// implemented; AUTO currently always resolves to the regexp backend.
package patternmatcher

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/hollis-varga/riskguard/internal/domain/pattern"
)

// State is the initialization state machine described in §4.3.
type State int

const (
	StateUninit State = iota
	StateLoaded
	StateCompiled
	StateReady
	StateError
)

func (s State) String() string {
	switch s {
	case StateUninit:
		return "uninit"
	case StateLoaded:
		return "loaded"
	case StateCompiled:
		return "compiled"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// BackendPreference is the runtime backend-selection enum from §4.3/§9.
type BackendPreference int

const (
	BackendAuto BackendPreference = iota
	BackendHighPerf
	BackendStd
	BackendAlt
)

// Backend is the contract every pattern-matching strategy must expose.
type Backend interface {
	Name() string
	Compile(patterns []*pattern.Pattern) error
	MatchText(text string, categoryFilter *pattern.Category) pattern.Results
	MatchBatch(texts []string, categoryFilter *pattern.Category) pattern.Results
}

// Stats is the statistics surface required by §4.3: match_count, sum of
// match times, active backend name, counts by category.
type Stats struct {
	MatchCount        int64
	TotalMatchTimeNs  int64
	ActiveBackend     string
	BlacklistHitCount int64
	WhitelistHitCount int64
}

// Matcher owns the active compiled pattern database and serializes
// replacement of that database behind a reader-writer lock, so concurrent
// decisions never observe a half-compiled database.
type Matcher struct {
	mu      sync.RWMutex
	backend Backend
	state   State
	lastErr error
	stats   Stats
	hasDB   bool
}

// New constructs an uninitialized Matcher for the given backend preference.
// Only the regexp backend currently exists, so every preference resolves to it.
func New(_ BackendPreference) *Matcher {
	return &Matcher{
		backend: newRegexpBackend(),
		state:   StateUninit,
	}
}

// Compile loads and compiles patterns, transitioning Uninit/Loaded/Error ->
// Compiled -> Ready. A failed compile attempt leaves any previously Ready
// database untouched and reports State() == Error, per §4.3's failure
// semantics (fatal to this attempt; prior Ready database retained).
func (m *Matcher) Compile(patterns []*pattern.Pattern) error {
	candidate := newRegexpBackend()
	if err := candidate.Compile(patterns); err != nil {
		m.mu.Lock()
		m.lastErr = err
		m.state = StateError
		m.mu.Unlock()
		return err
	}

	m.mu.Lock()
	m.backend = candidate
	m.state = StateReady
	m.lastErr = nil
	m.hasDB = true
	m.mu.Unlock()
	return nil
}

// AddPattern appends a pattern to the currently loaded set and marks the
// matcher Loaded, requiring a subsequent Compile before matching resumes.
// While Loaded, MatchText and MatchBatch return empty Results.
func (m *Matcher) AddPattern(patterns []*pattern.Pattern, p *pattern.Pattern) []*pattern.Pattern {
	m.mu.Lock()
	m.state = StateLoaded
	m.mu.Unlock()
	return append(patterns, p)
}

// State reports the current lifecycle state.
func (m *Matcher) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// LastError returns the error recorded by the most recent failed Compile, if any.
func (m *Matcher) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

func (m *Matcher) canMatch() bool {
	return m.state == StateCompiled || m.state == StateReady || (m.state == StateError && m.hasDB)
}

// MatchText scans one text against the active database. Matching is only
// permitted in Compiled/Ready, or in Error when a previously compiled
// database was retained by a failed Compile; otherwise it returns an empty
// Results rather than an error, consistent with per-text match failures
// being treated as "no match" and never propagated as a decision error.
func (m *Matcher) MatchText(text string, categoryFilter *pattern.Category) pattern.Results {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.canMatch() {
		return pattern.Results{}
	}
	start := time.Now()
	results := m.backend.MatchText(text, categoryFilter)
	m.recordStatsLocked(results, time.Since(start))
	return results
}

// MatchBatch scans many texts against the active database in one call.
func (m *Matcher) MatchBatch(texts []string, categoryFilter *pattern.Category) pattern.Results {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.canMatch() {
		return pattern.Results{}
	}
	start := time.Now()
	results := m.backend.MatchBatch(texts, categoryFilter)
	m.recordStatsLocked(results, time.Since(start))
	return results
}

func (m *Matcher) recordStatsLocked(results pattern.Results, elapsed time.Duration) {
	// caller already holds m.mu for reading, which many matchers may hold
	// at once, so the counters are updated atomically.
	atomic.AddInt64(&m.stats.MatchCount, int64(len(results.Matches)))
	atomic.AddInt64(&m.stats.TotalMatchTimeNs, elapsed.Nanoseconds())
	atomic.AddInt64(&m.stats.BlacklistHitCount, int64(len(results.BlacklistHits)))
	atomic.AddInt64(&m.stats.WhitelistHitCount, int64(len(results.WhitelistHits)))
}

// Stats returns a snapshot of the match-count/timing/category statistics.
func (m *Matcher) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Stats{
		MatchCount:        atomic.LoadInt64(&m.stats.MatchCount),
		TotalMatchTimeNs:  atomic.LoadInt64(&m.stats.TotalMatchTimeNs),
		ActiveBackend:     m.backend.Name(),
		BlacklistHitCount: atomic.LoadInt64(&m.stats.BlacklistHitCount),
		WhitelistHitCount: atomic.LoadInt64(&m.stats.WhitelistHitCount),
	}
}

// TransactionFields is the fixed set of request fields scanned by
// MatchTransaction, per §4.3.
type TransactionFields struct {
	IPAddress         string
	DeviceFingerprint string
	UserAgent         string
	MerchantID        string
	CardToken         string
	IssuerCountry     string
	CardBrand         string
	CustomerID        string
	Currency          string
	POSEntryMode      string
}

// MatchTransaction scans the fixed set of text-bearing request fields and
// merges their results into one aggregate Results, applying categoryFilter
// (if non-nil) to both the scan and the classification of hits.
func (m *Matcher) MatchTransaction(f TransactionFields, categoryFilter *pattern.Category) pattern.Results {
	texts := []string{
		f.IPAddress, f.DeviceFingerprint, f.UserAgent, f.MerchantID,
		f.CardToken, f.IssuerCountry, f.CardBrand, f.CustomerID,
		f.Currency, f.POSEntryMode,
	}

	var merged pattern.Results
	for _, text := range texts {
		if text == "" {
			continue
		}
		merged.Merge(m.MatchText(text, categoryFilter))
	}
	return merged
}

// NewTransactionFields builds a TransactionFields from the request's
// text-bearing values, kept as a narrow struct rather than threading the
// full request package into patternmatcher (which would invert the
// dependency direction).
func NewTransactionFields(ip, deviceFingerprint, userAgent, merchantID, cardToken, issuerCountry, cardBrand, customerID, currency, posEntryMode string) TransactionFields {
	return TransactionFields{
		IPAddress:         ip,
		DeviceFingerprint: deviceFingerprint,
		UserAgent:         userAgent,
		MerchantID:        merchantID,
		CardToken:         cardToken,
		IssuerCountry:     issuerCountry,
		CardBrand:         cardBrand,
		CustomerID:        customerID,
		Currency:          currency,
		POSEntryMode:      posEntryMode,
	}
}
