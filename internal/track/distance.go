package track

import "github.com/jengzang/trakxmap-backend-go/internal/spatial"

// UpdateDistances sets the cumulative distance from the track start on every track point.
// Route and way points are left alone.
func UpdateDistances(t *Track) {
	var total float64
	for i, p := range t.TrackPoints {
		if i > 0 {
			total += spatial.DistanceMeters(t.TrackPoints[i-1].Coordinate, p.Coordinate)
		}
		p.Distance = float64Ptr(total)
	}
}

// NeedsDistances reports whether the track points have not been annotated yet
func NeedsDistances(t *Track) bool {
	return len(t.TrackPoints) > 0 && t.TrackPoints[0].Distance == nil
}
