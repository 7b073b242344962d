package geo

import (
	"github.com/golang/geo/s2"
)

// ProjectPointToLineCoord. project snap onto the great-circle segment (pointA, pointB).
func ProjectPointToLineCoord(pointA Coordinate, pointB Coordinate,
	snap Coordinate) Coordinate {
	pointAS2 := s2.PointFromLatLng(s2.LatLngFromDegrees(pointA.Lat, pointA.Lon))
	pointBS2 := s2.PointFromLatLng(s2.LatLngFromDegrees(pointB.Lat, pointB.Lon))
	snapS2 := s2.PointFromLatLng(s2.LatLngFromDegrees(snap.Lat, snap.Lon))
	projection := s2.Project(snapS2, pointAS2, pointBS2)
	projectLatLng := s2.LatLngFromPoint(projection)
	return NewCoordinate(projectLatLng.Lat.Degrees(), projectLatLng.Lng.Degrees())
}

// PointLineDetourDistance. distance in km from point to the segment (pointA, pointB).
// used to score how far off a driver's current leg a candidate pickup is.
func PointLineDetourDistance(pointA Coordinate, pointB Coordinate,
	point Coordinate) float64 {
	projectionPoint := ProjectPointToLineCoord(pointA, pointB, point)

	return CalculateHaversineDistance(point.GetLat(), point.GetLon(),
		projectionPoint.GetLat(), projectionPoint.GetLon())
}
