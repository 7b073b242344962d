package optimizer

import (
	"context"

	"reskflow-route-optimizer/pkg/concurrent"
	"reskflow-route-optimizer/pkg/datastructure"
	"reskflow-route-optimizer/pkg/segmentcache"
)

// costMatrix. pairwise segment costs for one optimization request, prefetched
// through the segment cache so search strategies never trigger redundant
// provider lookups in their inner loops.
type costMatrix struct {
	dist [][]float64 // km
	dur  [][]float64 // minutes, free-flow
	segs [][]datastructure.RouteSegment

	// mult holds traffic duration multipliers, 1.0 until fetchTraffic runs.
	mult [][]float64

	degraded bool
}

type segmentJob struct {
	i, j int
}

type segmentResult struct {
	i, j int
	seg  datastructure.RouteSegment
	err  error
}

const matrixPrefetchWorkers = 8

func buildCostMatrix(ctx context.Context, points []datastructure.RoutePoint,
	cache segmentcache.SegmentCache) (*costMatrix, error) {
	n := len(points)
	m := &costMatrix{
		dist: newSquare(n),
		dur:  newSquare(n),
		segs: make([][]datastructure.RouteSegment, n),
		mult: newSquare(n),
	}
	for i := 0; i < n; i++ {
		m.segs[i] = make([]datastructure.RouteSegment, n)
		for j := 0; j < n; j++ {
			m.mult[i][j] = 1.0
		}
	}

	jobs := n * (n - 1) / 2
	pool := concurrent.NewWorkerPool[segmentJob, segmentResult](matrixPrefetchWorkers, jobs)
	pool.Start(ctx, func(job segmentJob) segmentResult {
		seg, err := cache.Get(ctx, points[job.i].Location, points[job.j].Location)
		return segmentResult{i: job.i, j: job.j, seg: seg, err: err}
	})

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pool.AddJob(segmentJob{i: i, j: j})
		}
	}
	pool.Close()
	pool.Wait()

	for res := range pool.CollectResults() {
		if res.err != nil {
			return nil, res.err
		}
		// segment cache keys are canonical, costs are treated as symmetric
		m.segs[res.i][res.j] = res.seg
		m.segs[res.j][res.i] = res.seg
		m.dist[res.i][res.j] = res.seg.Distance
		m.dist[res.j][res.i] = res.seg.Distance
		m.dur[res.i][res.j] = res.seg.Duration
		m.dur[res.j][res.i] = res.seg.Duration
		if res.seg.Estimated {
			m.degraded = true
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return m, nil
}

// fetchTraffic. fill the duration-multiplier matrix from the traffic
// collaborator. absence of a sample leaves the multiplier at 1.0.
func (m *costMatrix) fetchTraffic(ctx context.Context, points []datastructure.RoutePoint,
	traffic TrafficProvider) {
	if traffic == nil {
		return
	}
	n := len(points)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if sample, ok := traffic.TrafficSample(ctx, points[i].Location, points[j].Location); ok {
				m.mult[i][j] = sample.DurationMultiplier()
				m.mult[j][i] = m.mult[i][j]
			}
		}
	}
}

func newSquare(n int) [][]float64 {
	buf := make([][]float64, n)
	for i := range buf {
		buf[i] = make([]float64, n)
	}
	return buf
}
