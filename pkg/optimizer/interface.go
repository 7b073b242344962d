package optimizer

import (
	"context"

	"reskflow-route-optimizer/pkg/datastructure"
	"reskflow-route-optimizer/pkg/geo"
)

// TrafficProvider. live-traffic collaborator. ok=false means no sample is
// available and free flow should be assumed.
type TrafficProvider interface {
	TrafficSample(ctx context.Context, from, to geo.Coordinate) (datastructure.TrafficSample, bool)
}

// ObligationStore. read-only view of a driver's active pickup/reskflow
// obligations and of unassigned work near a coordinate.
type ObligationStore interface {
	ActiveObligations(ctx context.Context, driverID string) ([]datastructure.Obligation, error)
	UnassignedObligations(ctx context.Context) ([]datastructure.Obligation, error)
}

// NotificationDispatcher. external collaborator that alerts a driver about a
// changed plan. fire-and-forget, reskflow failures are not retried here.
type NotificationDispatcher interface {
	NotifyDriver(ctx context.Context, driverID, message string, payload map[string]interface{}) error
}
