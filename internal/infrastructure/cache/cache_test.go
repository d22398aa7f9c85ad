package cache

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/hollis-varga/riskguard/internal/infrastructure/config"
	decision "github.com/hollis-varga/riskguard/internal/service/decision"
)

func setupTestRedis(t *testing.T) (*redisCache, *miniredis.Miniredis, func()) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	host, portStr, err := net.SplitHostPort(mr.Addr())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	cfg := config.FeaturesConfig{RedisHost: host, RedisPort: port}
	logger := zaptest.NewLogger(t)

	c, err := NewRedisCache(cfg, logger)
	require.NoError(t, err)

	rc := c.(*redisCache)
	cleanup := func() {
		c.Close()
		mr.Close()
	}
	return rc, mr, cleanup
}

func TestRedisCache_SetGetDelete(t *testing.T) {
	rc, _, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, rc.Set(ctx, "k", "v", time.Minute))

	v, err := rc.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	require.NoError(t, rc.Delete(ctx, "k"))
	_, err = rc.Get(ctx, "k")
	assert.IsType(t, ErrCacheKeyNotFound{}, err)
}

func TestRedisCache_JSONRoundTrip(t *testing.T) {
	rc, _, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	want := decision.Features{MerchantRisk: 0.5, HourlyCount: 3, AmountSum: 42.5}
	require.NoError(t, rc.SetJSON(ctx, "f", want, time.Minute))

	var got decision.Features
	require.NoError(t, rc.GetJSON(ctx, "f", &got))
	assert.Equal(t, want, got)
}

func TestLocalCache_ExpiresAndEvicts(t *testing.T) {
	c := newLocalCache(20*time.Millisecond, 2)
	c.set("a", 1)
	c.set("b", 2)
	assert.Equal(t, 2, c.len())

	c.set("c", 3) // triggers eviction since maxEntries=2
	assert.LessOrEqual(t, c.len(), 2)

	time.Sleep(40 * time.Millisecond)
	_, ok := c.get("a")
	assert.False(t, ok)
}

type fakeSource struct{ calls int }

func (f *fakeSource) Compute(_ string, amount float64) decision.Features {
	f.calls++
	return decision.Features{MerchantRisk: 0.1, HourlyCount: 1, AmountSum: amount}
}

func TestTieredProvider_L1MissReturnsDefaultsAndWarmsInBackground(t *testing.T) {
	source := &fakeSource{}
	p := NewTieredProvider(time.Minute, 100, nil, time.Minute, source, zaptest.NewLogger(t))

	first := p.Lookup("key1", 10)
	assert.Equal(t, decision.Features{MerchantRisk: 0, HourlyCount: 1, AmountSum: 10}, first,
		"an L1 miss must return the documented defaults, not block on the warm")

	require.Eventually(t, func() bool {
		return source.calls == 1
	}, time.Second, time.Millisecond, "background warm should have called source")

	second := p.Lookup("key1", 10)
	assert.Equal(t, decision.Features{MerchantRisk: 0.1, HourlyCount: 1, AmountSum: 10}, second,
		"once warmed, L1 should serve the computed value")
	assert.Equal(t, 1, source.calls, "a warmed key must not recompute on the next lookup")
}

func TestTieredProvider_L2BackfillsL1(t *testing.T) {
	rc, _, cleanup := setupTestRedis(t)
	defer cleanup()

	source := &fakeSource{}
	p := NewTieredProvider(time.Minute, 100, rc, time.Minute, source, zaptest.NewLogger(t))

	p.Lookup("key2", 20) // triggers the background warm; defaults are discarded below
	require.Eventually(t, func() bool {
		_, ok := p.l1.get("key2")
		return ok
	}, time.Second, time.Millisecond, "background warm should have populated L1")
	features, _ := p.l1.get("key2")
	assert.Equal(t, 1, source.calls)

	p2 := NewTieredProvider(time.Minute, 100, rc, time.Minute, source, zaptest.NewLogger(t))
	p2.Lookup("key2", 20) // L1 miss on p2, but the warm should hit L2, not source
	require.Eventually(t, func() bool {
		_, ok := p2.l1.get("key2")
		return ok
	}, time.Second, time.Millisecond, "background warm should have populated p2's L1 from L2")
	again, _ := p2.l1.get("key2")

	assert.Equal(t, features, again)
	assert.Equal(t, 1, source.calls, "second provider should hit L2, not recompute")
}
