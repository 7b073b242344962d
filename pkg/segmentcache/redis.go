package segmentcache

import (
	"context"
	"encoding/json"
	"time"

	"reskflow-route-optimizer/pkg"
	"reskflow-route-optimizer/pkg/datastructure"
	"reskflow-route-optimizer/pkg/geo"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisKeyPrefix = "segment:"

// RedisCache. redis-backed segment cache for multi-instance deployments.
// redis being down degrades to direct provider calls, never to a hard error.
type RedisCache struct {
	rdb      *redis.Client
	provider MappingProvider
	ttl      time.Duration
	log      *zap.Logger
}

func NewRedisCache(rdb *redis.Client, provider MappingProvider, ttl time.Duration,
	log *zap.Logger) *RedisCache {
	if ttl <= 0 {
		ttl = pkg.SEGMENT_CACHE_TTL
	}
	return &RedisCache{
		rdb:      rdb,
		provider: provider,
		ttl:      ttl,
		log:      log,
	}
}

func (c *RedisCache) Get(ctx context.Context, from, to geo.Coordinate) (datastructure.RouteSegment, error) {
	if err := from.Validate(); err != nil {
		return datastructure.RouteSegment{}, err
	}
	if err := to.Validate(); err != nil {
		return datastructure.RouteSegment{}, err
	}

	key := redisKeyPrefix + Key(from, to)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var seg datastructure.RouteSegment
		if err := json.Unmarshal(raw, &seg); err == nil {
			return seg, nil
		}
		c.log.Warn("corrupt segment cache entry, refetching", zap.String("key", key))
	} else if err != redis.Nil {
		c.log.Warn("redis unavailable, bypassing segment cache", zap.Error(err))
	}

	callCtx, cancel := context.WithTimeout(ctx, pkg.PROVIDER_TIMEOUT)
	defer cancel()

	seg, provErr := c.provider.RouteSegment(callCtx, from, to)
	if provErr != nil {
		c.log.Warn("mapping provider failed, using straight-line estimate",
			zap.String("key", key), zap.Error(provErr))
		return EstimateSegment(from, to), nil
	}

	if raw, err := json.Marshal(seg); err == nil {
		// last writer wins, segments are derived from a stable source
		if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.log.Warn("failed to store segment cache entry", zap.Error(err))
		}
	}

	return seg, nil
}

func (c *RedisCache) Evict(from, to geo.Coordinate) {
	c.rdb.Del(context.Background(), redisKeyPrefix+Key(from, to))
}

func (c *RedisCache) Clear() {
	ctx := context.Background()
	iter := c.rdb.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		c.rdb.Del(ctx, iter.Val())
	}
}
