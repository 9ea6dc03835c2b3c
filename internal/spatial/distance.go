package spatial

import (
	"github.com/golang/geo/s2"
)

// Coordinate is a latitude/longitude pair in degrees
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// LatLng converts the coordinate into an s2.LatLng
func (c Coordinate) LatLng() s2.LatLng {
	return s2.LatLngFromDegrees(c.Lat, c.Lon)
}

// DistanceMeters calculates the great-circle distance between two coordinates in meters.
// The operands are evaluated in a fixed order so DistanceMeters(a, b) == DistanceMeters(b, a) exactly.
func DistanceMeters(a, b Coordinate) float64 {
	if a == b {
		return 0
	}
	if less(b, a) {
		a, b = b, a
	}
	return a.LatLng().Distance(b.LatLng()).Radians() * EarthRadiusMeters
}

func less(a, b Coordinate) bool {
	if a.Lat != b.Lat {
		return a.Lat < b.Lat
	}
	return a.Lon < b.Lon
}

// EarthRadiusMeters is the mean earth radius used for all distances
const EarthRadiusMeters = 6371000.0
