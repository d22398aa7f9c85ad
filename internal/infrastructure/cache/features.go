package cache

import (
	"context"
	"time"

	"go.uber.org/zap"

	decision "github.com/hollis-varga/riskguard/internal/service/decision"
)

// Source computes a fresh decision.Features value when no cache tier holds
// one, standing in for the upstream feature-computation pipeline (a
// streaming aggregator, in a full deployment) this decision core does not
// own.
type Source interface {
	Compute(cacheKey string, amount float64) decision.Features
}

// TieredProvider implements decision.FeatureProvider over an L1 in-memory
// tier and an L2 Redis tier, falling back to Source on a full miss and
// backfilling both tiers, per §4.1's features section and §4.5 step 4.
type TieredProvider struct {
	l1     *localCache
	l2     Cache
	l2ttl  time.Duration
	source Source
	logger *zap.Logger
}

// NewTieredProvider constructs a TieredProvider. l2 may be nil, in which
// case lookups fall through straight from L1 to source.
func NewTieredProvider(l1TTL time.Duration, l1MaxEntries int, l2 Cache, l2TTL time.Duration, source Source, logger *zap.Logger) *TieredProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TieredProvider{
		l1:     newLocalCache(l1TTL, l1MaxEntries),
		l2:     l2,
		l2ttl:  l2TTL,
		source: source,
		logger: logger,
	}
}

// Lookup implements internal/service/decision.FeatureProvider. It never
// touches L2: an L1 hit returns synchronously, and an L1 miss returns the
// §4.2 defaults for this request while warm queues an out-of-band fetch so
// cacheKey is resolved in L1 by the time the next request needs it.
func (p *TieredProvider) Lookup(cacheKey string, amount float64) decision.Features {
	if v, ok := p.l1.get(cacheKey); ok {
		return v.(decision.Features)
	}

	go p.warm(cacheKey, amount)
	return decision.Features{MerchantRisk: 0, HourlyCount: 1, AmountSum: amount}
}

// warm resolves cacheKey off the decision path: L2 first, falling back to
// source on a full miss, backfilling whichever tiers missed.
func (p *TieredProvider) warm(cacheKey string, amount float64) {
	if p.l2 != nil {
		var features decision.Features
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		err := p.l2.GetJSON(ctx, FeaturePrefix+cacheKey, &features)
		cancel()
		if err == nil {
			p.l1.set(cacheKey, features)
			return
		}
		if _, notFound := err.(ErrCacheKeyNotFound); !notFound {
			p.logger.Warn("l2 feature lookup failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}

	features := p.source.Compute(cacheKey, amount)
	p.l1.set(cacheKey, features)
	if p.l2 != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		if err := p.l2.SetJSON(ctx, FeaturePrefix+cacheKey, features, p.l2ttl); err != nil {
			p.logger.Warn("l2 feature backfill failed", zap.String("key", cacheKey), zap.Error(err))
		}
		cancel()
	}
}

// StaticSource returns a fixed baseline Features value for every lookup,
// used where no live feature-computation pipeline is wired (development,
// tests).
type StaticSource struct {
	Baseline decision.Features
}

func (s StaticSource) Compute(_ string, amount float64) decision.Features {
	f := s.Baseline
	f.AmountSum += amount
	return f
}
