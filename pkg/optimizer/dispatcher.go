package optimizer

import (
	"context"

	"go.uber.org/zap"
)

// Dispatcher. consumes route-change events and calls the notification
// collaborator. reskflow is fire-and-forget, failures are logged and not
// retried here.
type Dispatcher struct {
	notifier NotificationDispatcher
	log      *zap.Logger
}

func NewDispatcher(notifier NotificationDispatcher, log *zap.Logger) *Dispatcher {
	return &Dispatcher{notifier: notifier, log: log}
}

// Run. drain the event stream until ctx is cancelled or the stream closes.
func (d *Dispatcher) Run(ctx context.Context, events <-chan RouteChange) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			payload := map[string]interface{}{
				"distance_km":        ev.Route.Metrics.Distance,
				"duration_min":       ev.Route.Metrics.Duration,
				"savings_percentage": ev.Route.SavingsPercentage,
				"degraded":           ev.Route.Degraded,
				"stops":              len(ev.Route.Points) - 1,
			}
			if err := d.notifier.NotifyDriver(ctx, ev.DriverID, ChangeMessage(ev), payload); err != nil {
				d.log.Warn("driver notification failed",
					zap.String("driver", ev.DriverID), zap.Error(err))
			}
		}
	}
}
