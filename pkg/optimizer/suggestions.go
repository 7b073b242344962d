package optimizer

import (
	"context"
	"sort"
	"sync"
	"time"

	"reskflow-route-optimizer/pkg/datastructure"
	"reskflow-route-optimizer/pkg/geo"
	"reskflow-route-optimizer/pkg/spatialindex"

	"go.uber.org/zap"
)

const (
	suggestionSearchRadiusKm = 8.0

	// suggestionIndexMaxAge bounds how long an obligation assigned elsewhere
	// can linger in the index before a query forces a rebuild.
	suggestionIndexMaxAge = 30 * time.Second
)

// SuggestionService. scores unassigned obligations near a driver. not part
// of the optimization pipeline itself, but shares its distance and earnings
// estimation utilities.
type SuggestionService struct {
	obligations ObligationStore
	routes      *RouteStore
	index       *spatialindex.ObligationIndex
	log         *zap.Logger

	mu          sync.Mutex
	lastRefresh time.Time
	now         func() time.Time
}

func NewSuggestionService(obligations ObligationStore, routes *RouteStore,
	log *zap.Logger) *SuggestionService {
	return &SuggestionService{
		obligations: obligations,
		routes:      routes,
		index:       spatialindex.NewObligationIndex(),
		log:         log,
		now:         time.Now,
	}
}

// RefreshIndex. rebuild the spatial index from the obligation store.
func (s *SuggestionService) RefreshIndex(ctx context.Context) error {
	obs, err := s.obligations.UnassignedObligations(ctx)
	if err != nil {
		return err
	}
	s.index.Build(obs)
	s.mu.Lock()
	s.lastRefresh = s.now()
	s.mu.Unlock()
	return nil
}

func (s *SuggestionService) indexStale() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now().Sub(s.lastRefresh) > suggestionIndexMaxAge
}

// GetRouteSuggestions. rank nearby unassigned obligations three ways:
// highest estimated payout, smallest detour off the driver's current route,
// and tightest reskflow deadline.
func (s *SuggestionService) GetRouteSuggestions(ctx context.Context, driverID string,
	driverLoc geo.Coordinate, limit int) (*datastructure.RouteSuggestions, error) {
	if err := driverLoc.Validate(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 5
	}

	refreshed := false
	if s.indexStale() {
		if err := s.RefreshIndex(ctx); err != nil {
			return nil, err
		}
		refreshed = true
	}

	candidates := s.index.SearchWithinRadius(driverLoc, suggestionSearchRadiusKm)
	if len(candidates) == 0 && !refreshed {
		if err := s.RefreshIndex(ctx); err != nil {
			return nil, err
		}
		candidates = s.index.SearchWithinRadius(driverLoc, suggestionSearchRadiusKm)
	}

	current, _ := s.routes.Current(driverID)

	scored := make([]datastructure.RouteSuggestion, 0, len(candidates))
	for _, ob := range candidates {
		toPickup := geo.HaversineDistance(driverLoc, ob.PickupLoc)
		tripLen := geo.HaversineDistance(ob.PickupLoc, ob.DropoffLoc)

		earnings := ob.Payout
		if earnings <= 0 {
			earnings = geo.EstimateEarnings(tripLen)
		}

		scored = append(scored, datastructure.RouteSuggestion{
			Obligation: ob,
			DistanceKm: toPickup,
			DetourKm:   s.detour(current, driverLoc, ob.PickupLoc, toPickup),
			Earnings:   earnings,
			Score:      earnings / (1.0 + toPickup),
		})
	}

	return &datastructure.RouteSuggestions{
		HighValue:     topBy(scored, limit, func(a, b datastructure.RouteSuggestion) bool { return a.Earnings > b.Earnings }),
		Efficient:     topBy(scored, limit, func(a, b datastructure.RouteSuggestion) bool { return a.DetourKm < b.DetourKm }),
		TimeSensitive: s.timeSensitive(scored, limit),
	}, nil
}

// detour. perpendicular distance from the pickup to the nearest leg of the
// driver's current route. without a current route the drive to pickup is the
// whole detour.
func (s *SuggestionService) detour(current *datastructure.Route, driverLoc geo.Coordinate,
	pickup geo.Coordinate, toPickup float64) float64 {
	if current == nil || len(current.Points) < 2 {
		return toPickup
	}
	best := toPickup
	prev := driverLoc
	for _, p := range current.Points[1:] {
		if d := geo.PointLineDetourDistance(prev, p.Location, pickup); d < best {
			best = d
		}
		prev = p.Location
	}
	return best
}

func (s *SuggestionService) timeSensitive(scored []datastructure.RouteSuggestion, limit int) []datastructure.RouteSuggestion {
	withDeadline := make([]datastructure.RouteSuggestion, 0, len(scored))
	for _, sg := range scored {
		if sg.Obligation.DropoffWindow != nil {
			withDeadline = append(withDeadline, sg)
		}
	}
	sort.SliceStable(withDeadline, func(i, j int) bool {
		return withDeadline[i].Obligation.DropoffWindow.End.Before(withDeadline[j].Obligation.DropoffWindow.End)
	})
	if len(withDeadline) > limit {
		withDeadline = withDeadline[:limit]
	}
	return withDeadline
}

func topBy(scored []datastructure.RouteSuggestion, limit int,
	less func(a, b datastructure.RouteSuggestion) bool) []datastructure.RouteSuggestion {
	out := make([]datastructure.RouteSuggestion, len(scored))
	copy(out, scored)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
