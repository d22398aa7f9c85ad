package cache

import (
	"time"

	"go.uber.org/zap"

	"github.com/hollis-varga/riskguard/internal/infrastructure/config"
)

// NewFeatureProvider builds the L1/L2 feature-cache tiers from the features
// section of the system configuration. When enable_redis is false, or the
// Redis dial fails, it degrades to an L1-only provider rather than failing
// startup, logging the degradation.
func NewFeatureProvider(cfg config.FeaturesConfig, source Source, logger *zap.Logger) *TieredProvider {
	if logger == nil {
		logger = zap.NewNop()
	}

	l1MaxEntries := cfg.L1SizeMB * 1024 // rough entries-per-MB budget for small Features structs
	l1TTL := time.Duration(cfg.L1TTLSeconds) * time.Second

	var l2 Cache
	if cfg.EnableRedis {
		redisCache, err := NewRedisCache(cfg, logger)
		if err != nil {
			logger.Warn("redis feature cache unavailable, degrading to L1-only", zap.Error(err))
		} else {
			l2 = redisCache
		}
	}

	l2TTL := time.Duration(cfg.L2TTLSeconds) * time.Second
	return NewTieredProvider(l1TTL, l1MaxEntries, l2, l2TTL, source, logger)
}
