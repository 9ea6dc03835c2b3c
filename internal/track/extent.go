package track

import "github.com/jengzang/trakxmap-backend-go/internal/spatial"

// ComputeExtent returns the bounding box over track, route and way points, in that order.
// An extent needs at least two coordinates; with fewer it returns nil.
func ComputeExtent(t *Track) *spatial.Extent {
	coords := Coordinates(t)
	if len(coords) < 2 {
		return nil
	}
	return spatial.ExtentOf(coords)
}

// Coordinates returns the coordinates of all points: track points, then route points, then way points
func Coordinates(t *Track) []spatial.Coordinate {
	coords := make([]spatial.Coordinate, 0, len(t.TrackPoints)+len(t.RoutePoints)+len(t.WayPoints))
	for _, points := range [][]*Point{t.TrackPoints, t.RoutePoints, t.WayPoints} {
		for _, p := range points {
			coords = append(coords, p.Coordinate)
		}
	}
	return coords
}
