package optimizer

import (
	"context"
	"sync"

	"reskflow-route-optimizer/pkg/datastructure"
)

// RouteStore. per-driver "current route" state with an explicit lifecycle:
// created at service start, cleared on demand for tests, torn down at
// shutdown. the previous route for a driver lives only long enough to diff
// against the next one.
type RouteStore struct {
	mu           sync.RWMutex
	current      map[string]*datastructure.Route
	alternatives map[string][]datastructure.AlternativeRoute
}

func NewRouteStore() *RouteStore {
	return &RouteStore{
		current:      make(map[string]*datastructure.Route),
		alternatives: make(map[string][]datastructure.AlternativeRoute),
	}
}

func (s *RouteStore) Current(driverID string) (*datastructure.Route, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.current[driverID]
	return r, ok
}

func (s *RouteStore) Alternatives(driverID string) []datastructure.AlternativeRoute {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.alternatives[driverID]
}

func (s *RouteStore) Set(driverID string, route *datastructure.Route,
	alternatives []datastructure.AlternativeRoute) {
	s.mu.Lock()
	s.current[driverID] = route
	s.alternatives[driverID] = alternatives
	s.mu.Unlock()
}

func (s *RouteStore) Delete(driverID string) {
	s.mu.Lock()
	delete(s.current, driverID)
	delete(s.alternatives, driverID)
	s.mu.Unlock()
}

func (s *RouteStore) Clear() {
	s.mu.Lock()
	s.current = make(map[string]*datastructure.Route)
	s.alternatives = make(map[string][]datastructure.AlternativeRoute)
	s.mu.Unlock()
}

// InMemoryObligationStore. obligation store used by local development and
// tests. production deployments inject an adapter over the reskflow service.
type InMemoryObligationStore struct {
	mu         sync.RWMutex
	active     map[string][]datastructure.Obligation // driver id -> obligations
	unassigned map[string]datastructure.Obligation
}

func NewInMemoryObligationStore() *InMemoryObligationStore {
	return &InMemoryObligationStore{
		active:     make(map[string][]datastructure.Obligation),
		unassigned: make(map[string]datastructure.Obligation),
	}
}

func (s *InMemoryObligationStore) ActiveObligations(_ context.Context, driverID string) ([]datastructure.Obligation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obs := make([]datastructure.Obligation, len(s.active[driverID]))
	copy(obs, s.active[driverID])
	return obs, nil
}

func (s *InMemoryObligationStore) UnassignedObligations(_ context.Context) ([]datastructure.Obligation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obs := make([]datastructure.Obligation, 0, len(s.unassigned))
	for _, ob := range s.unassigned {
		obs = append(obs, ob)
	}
	return obs, nil
}

func (s *InMemoryObligationStore) Assign(driverID string, ob datastructure.Obligation) {
	s.mu.Lock()
	s.active[driverID] = append(s.active[driverID], ob)
	delete(s.unassigned, ob.ID)
	s.mu.Unlock()
}

func (s *InMemoryObligationStore) Complete(driverID, obligationID string) {
	s.mu.Lock()
	obs := s.active[driverID]
	for i, ob := range obs {
		if ob.ID == obligationID {
			s.active[driverID] = append(obs[:i], obs[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
}

func (s *InMemoryObligationStore) AddUnassigned(ob datastructure.Obligation) {
	s.mu.Lock()
	s.unassigned[ob.ID] = ob
	s.mu.Unlock()
}
