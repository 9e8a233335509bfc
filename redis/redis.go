package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/meinhoongagan/nhs-staffing/config"
	"github.com/meinhoongagan/nhs-staffing/logger"
	"github.com/meinhoongagan/nhs-staffing/metrics"
)

// Client is nil when REDIS_ADDR is unset; every cache helper then falls through to its loader.
var Client *redis.Client

var trustTTL = 10 * time.Minute

// InitRedis connects when an address is configured.
func InitRedis(ctx context.Context, cfg *config.Config) error {
	if cfg.RedisAddr == "" {
		logger.WithModule("redis").Info("redis disabled, approved-trust cache off")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
	}

	Client = client
	if cfg.TrustCacheTTL > 0 {
		trustTTL = cfg.TrustCacheTTL
	}
	logger.WithModule("redis").Info("connected to redis", zap.String("addr", cfg.RedisAddr))
	return nil
}

func Close() error {
	if Client == nil {
		return nil
	}
	return Client.Close()
}

func approvedTrustsKey(agencyID uint) string {
	return fmt.Sprintf("nhs:agency:%d:approved-trusts", agencyID)
}

// CachedApprovedTrusts returns the agency's approved trust ids, from the cache when
// possible. Cache errors are logged and never fail the lookup.
func CachedApprovedTrusts(ctx context.Context, c *redis.Client, agencyID uint, load func(context.Context) ([]uint, error)) ([]uint, error) {
	if c == nil {
		return load(ctx)
	}
	log := logger.WithModule("redis")
	key := approvedTrustsKey(agencyID)

	raw, err := c.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var ids []uint
		if jsonErr := json.Unmarshal(raw, &ids); jsonErr == nil {
			metrics.TrustCacheLookups.WithLabelValues("hit").Inc()
			return ids, nil
		}
		log.Warn("discarding malformed cache entry", zap.String("key", key))
	case errors.Is(err, redis.Nil):
		metrics.TrustCacheLookups.WithLabelValues("miss").Inc()
	default:
		metrics.TrustCacheLookups.WithLabelValues("error").Inc()
		log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}

	ids, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []uint{}
	}
	encoded, _ := json.Marshal(ids)
	if err := c.Set(ctx, key, encoded, trustTTL).Err(); err != nil {
		log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return ids, nil
}

// InvalidateApprovedTrusts drops the cached set after a grant changes.
func InvalidateApprovedTrusts(ctx context.Context, c *redis.Client, agencyID uint) {
	if c == nil {
		return
	}
	if err := c.Del(ctx, approvedTrustsKey(agencyID)).Err(); err != nil {
		logger.WithModule("redis").Warn("cache invalidation failed", zap.Uint("agency_id", agencyID), zap.Error(err))
	}
}
