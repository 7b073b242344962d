package segmentcache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupRedisCache(t *testing.T, provider MappingProvider) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewRedisCache(rdb, provider, time.Hour, zap.NewNop()), mr
}

func TestRedisCacheGetCachesSegment(t *testing.T) {
	provider := &countingProvider{}
	c, mr := setupRedisCache(t, provider)

	first, err := c.Get(context.Background(), pointA, pointB)
	require.NoError(t, err)
	require.Equal(t, 1, provider.callCount())

	again, err := c.Get(context.Background(), pointA, pointB)
	require.NoError(t, err)
	require.Equal(t, first, again)
	require.Equal(t, 1, provider.callCount())

	require.True(t, mr.Exists(redisKeyPrefix+Key(pointA, pointB)))
}

func TestRedisCacheTTL(t *testing.T) {
	provider := &countingProvider{}
	c, mr := setupRedisCache(t, provider)

	_, err := c.Get(context.Background(), pointA, pointB)
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)

	_, err = c.Get(context.Background(), pointA, pointB)
	require.NoError(t, err)
	require.Equal(t, 2, provider.callCount(), "expired entry must refetch")
}

func TestRedisCacheCorruptEntryRefetches(t *testing.T) {
	provider := &countingProvider{}
	c, mr := setupRedisCache(t, provider)

	require.NoError(t, mr.Set(redisKeyPrefix+Key(pointA, pointB), "not json"))

	seg, err := c.Get(context.Background(), pointA, pointB)
	require.NoError(t, err)
	require.False(t, seg.Estimated)
	require.Equal(t, 1, provider.callCount())
}

func TestRedisCacheDownDegradesToProvider(t *testing.T) {
	provider := &countingProvider{}
	c, mr := setupRedisCache(t, provider)
	mr.Close()

	seg, err := c.Get(context.Background(), pointA, pointB)
	require.NoError(t, err, "redis outage must not fail the lookup")
	require.False(t, seg.Estimated)
	require.Equal(t, 1, provider.callCount())
}

func TestRedisCacheProviderFailureDegrades(t *testing.T) {
	provider := &countingProvider{fail: true}
	c, _ := setupRedisCache(t, provider)

	seg, err := c.Get(context.Background(), pointA, pointB)
	require.NoError(t, err)
	require.True(t, seg.Estimated)
}

func TestRedisCacheEvictAndClear(t *testing.T) {
	provider := &countingProvider{}
	c, mr := setupRedisCache(t, provider)

	_, err := c.Get(context.Background(), pointA, pointB)
	require.NoError(t, err)

	c.Evict(pointB, pointA)
	require.False(t, mr.Exists(redisKeyPrefix+Key(pointA, pointB)))

	_, err = c.Get(context.Background(), pointA, pointB)
	require.NoError(t, err)
	c.Clear()
	require.False(t, mr.Exists(redisKeyPrefix+Key(pointA, pointB)))
}
