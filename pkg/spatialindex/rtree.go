package spatialindex

import (
	"math"
	"sync"

	"reskflow-route-optimizer/pkg/datastructure"
	"reskflow-route-optimizer/pkg/geo"
	"reskflow-route-optimizer/pkg/util"

	"github.com/tidwall/rtree"
)

// ObligationIndex. r-tree over unassigned obligations' pickup coordinates,
// rebuilt from the obligation store and queried by the suggestion scorer.
type ObligationIndex struct {
	mu sync.RWMutex
	tr *rtree.RTreeG[datastructure.Obligation]
}

func NewObligationIndex() *ObligationIndex {
	var tr rtree.RTreeG[datastructure.Obligation]
	return &ObligationIndex{tr: &tr}
}

// Build. replace the index contents with the given obligations.
func (ix *ObligationIndex) Build(obligations []datastructure.Obligation) {
	var tr rtree.RTreeG[datastructure.Obligation]
	for _, ob := range obligations {
		p := [2]float64{ob.PickupLoc.Lon, ob.PickupLoc.Lat}
		tr.Insert(p, p, ob)
	}
	ix.mu.Lock()
	ix.tr = &tr
	ix.mu.Unlock()
}

// SearchWithinRadius. obligations whose pickup lies within radiusKm of the
// center. the r-tree bounding-box query over-approximates, results are
// filtered by haversine distance.
func (ix *ObligationIndex) SearchWithinRadius(center geo.Coordinate, radiusKm float64) []datastructure.Obligation {
	latDelta := radiusKm / 110.574
	lonDelta := radiusKm / (111.320 * math.Cos(util.DegreeToRadians(center.Lat)))
	lonDelta = math.Abs(lonDelta)

	min := [2]float64{center.Lon - lonDelta, center.Lat - latDelta}
	max := [2]float64{center.Lon + lonDelta, center.Lat + latDelta}

	var out []datastructure.Obligation
	ix.mu.RLock()
	ix.tr.Search(min, max, func(_, _ [2]float64, ob datastructure.Obligation) bool {
		if geo.HaversineDistance(center, ob.PickupLoc) <= radiusKm {
			out = append(out, ob)
		}
		return true
	})
	ix.mu.RUnlock()
	return out
}

func (ix *ObligationIndex) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.tr.Len()
}
