package segmentcache

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"reskflow-route-optimizer/pkg"
	"reskflow-route-optimizer/pkg/datastructure"
	"reskflow-route-optimizer/pkg/geo"

	"go.uber.org/zap"
)

// MappingProvider. external directions collaborator. implementations must
// honor ctx cancellation/deadline.
type MappingProvider interface {
	RouteSegment(ctx context.Context, from, to geo.Coordinate) (datastructure.RouteSegment, error)
}

// SegmentCache. memoizes provider-returned segments per coordinate pair.
type SegmentCache interface {
	Get(ctx context.Context, from, to geo.Coordinate) (datastructure.RouteSegment, error)
	Evict(from, to geo.Coordinate)
	Clear()
}

// Key. coordinate pair rounded to a fixed precision, normalized to a
// canonical ordering. driving costs are near-symmetric at ~11m key
// resolution, so both directions share one entry.
func Key(from, to geo.Coordinate) string {
	a := from.Rounded(pkg.COORDINATE_KEY_PRECISION)
	b := to.Rounded(pkg.COORDINATE_KEY_PRECISION)
	if b.Lat < a.Lat || (b.Lat == a.Lat && b.Lon < a.Lon) {
		a, b = b, a
	}
	return fmt.Sprintf("%s,%s|%s,%s",
		strconv.FormatFloat(a.Lat, 'f', pkg.COORDINATE_KEY_PRECISION, 64),
		strconv.FormatFloat(a.Lon, 'f', pkg.COORDINATE_KEY_PRECISION, 64),
		strconv.FormatFloat(b.Lat, 'f', pkg.COORDINATE_KEY_PRECISION, 64),
		strconv.FormatFloat(b.Lon, 'f', pkg.COORDINATE_KEY_PRECISION, 64))
}

// EstimateSegment. straight-line fallback used when the mapping provider is
// unavailable: haversine distance at an assumed average speed.
func EstimateSegment(from, to geo.Coordinate) datastructure.RouteSegment {
	dist := geo.HaversineDistance(from, to)
	seg := datastructure.NewRouteSegment(dist, dist/pkg.FALLBACK_SPEED_KMH*60.0,
		geo.PolylineFromCoords([]geo.Coordinate{from, to}))
	seg.Estimated = true
	return seg
}

type entry struct {
	segment   datastructure.RouteSegment
	expiresAt time.Time
}

// MemoryCache. in-process TTL cache. read-mostly, shared across drivers.
type MemoryCache struct {
	mu       sync.RWMutex
	entries  map[string]entry
	provider MappingProvider
	ttl      time.Duration
	log      *zap.Logger

	now func() time.Time
}

func NewMemoryCache(provider MappingProvider, ttl time.Duration, log *zap.Logger) *MemoryCache {
	if ttl <= 0 {
		ttl = pkg.SEGMENT_CACHE_TTL
	}
	return &MemoryCache{
		entries:  make(map[string]entry),
		provider: provider,
		ttl:      ttl,
		log:      log,
		now:      time.Now,
	}
}

// Get. returns the cached segment when present and unexpired, otherwise asks
// the mapping provider and stores the result. provider failure degrades to a
// straight-line estimate instead of failing the optimization.
func (c *MemoryCache) Get(ctx context.Context, from, to geo.Coordinate) (datastructure.RouteSegment, error) {
	if err := from.Validate(); err != nil {
		return datastructure.RouteSegment{}, err
	}
	if err := to.Validate(); err != nil {
		return datastructure.RouteSegment{}, err
	}

	key := Key(from, to)

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && c.now().Before(e.expiresAt) {
		return e.segment, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, pkg.PROVIDER_TIMEOUT)
	defer cancel()

	seg, err := c.provider.RouteSegment(callCtx, from, to)
	if err != nil {
		c.log.Warn("mapping provider failed, using straight-line estimate",
			zap.String("key", key), zap.Error(err))
		return EstimateSegment(from, to), nil
	}

	c.mu.Lock()
	c.entries[key] = entry{segment: seg, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()

	return seg, nil
}

func (c *MemoryCache) Evict(from, to geo.Coordinate) {
	c.mu.Lock()
	delete(c.entries, Key(from, to))
	c.mu.Unlock()
}

func (c *MemoryCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
