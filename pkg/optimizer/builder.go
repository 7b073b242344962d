package optimizer

import (
	"fmt"

	"reskflow-route-optimizer/pkg/datastructure"
	"reskflow-route-optimizer/pkg/geo"
	"reskflow-route-optimizer/pkg/util"

	"go.uber.org/zap"
)

// BuildRoutePoints. convert the driver's location plus the active obligation
// set into the point arena: one start point at index 0, then one pickup and
// one reskflow point per obligation.
//
// a single bad obligation is logged and excluded, it does not abort the route.
// an invalid driver location is a hard error.
func BuildRoutePoints(driverLoc geo.Coordinate, obligations []datastructure.Obligation,
	log *zap.Logger) ([]datastructure.RoutePoint, error) {
	if err := driverLoc.Validate(); err != nil {
		return nil, util.WrapErrorf(err, util.ErrInvalidLocation, "driver location is not usable")
	}

	points := make([]datastructure.RoutePoint, 0, 1+2*len(obligations))
	points = append(points, datastructure.NewRoutePoint("start", datastructure.START,
		driverLoc, "", 0, nil))

	for _, ob := range obligations {
		if ob.ID == "" {
			log.Warn("skipping obligation without id")
			continue
		}
		if err := ob.PickupLoc.Validate(); err != nil {
			log.Warn("skipping obligation with unusable pickup location",
				zap.String("obligation", ob.ID), zap.Error(err))
			continue
		}
		if err := ob.DropoffLoc.Validate(); err != nil {
			log.Warn("skipping obligation with unusable drop-off location",
				zap.String("obligation", ob.ID), zap.Error(err))
			continue
		}

		points = append(points,
			datastructure.NewRoutePoint(fmt.Sprintf("pickup:%s", ob.ID), datastructure.PICKUP,
				ob.PickupLoc, ob.ID, ob.Priority, ob.PickupWindow),
			datastructure.NewRoutePoint(fmt.Sprintf("reskflow:%s", ob.ID), datastructure.DELIVERY,
				ob.DropoffLoc, ob.ID, ob.Priority, ob.DropoffWindow))
	}

	if len(points) == 1 {
		return nil, util.WrapErrorf(nil, util.ErrIncompleteObligation,
			"no usable obligations for this route")
	}

	return points, nil
}
