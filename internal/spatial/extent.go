package spatial

import (
	"github.com/golang/geo/r1"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// Extent is the bounding box of a set of coordinates
type Extent struct {
	MinLat float64 `json:"minLat"`
	MinLon float64 `json:"minLon"`
	MaxLat float64 `json:"maxLat"`
	MaxLon float64 `json:"maxLon"`
}

// ExtentOf calculates the minimal bounding box containing all coordinates.
// Returns nil for an empty slice.
func ExtentOf(coords []Coordinate) *Extent {
	if len(coords) == 0 {
		return nil
	}

	e := Extent{
		MinLat: coords[0].Lat, MaxLat: coords[0].Lat,
		MinLon: coords[0].Lon, MaxLon: coords[0].Lon,
	}

	for _, c := range coords[1:] {
		if c.Lat < e.MinLat {
			e.MinLat = c.Lat
		}
		if c.Lat > e.MaxLat {
			e.MaxLat = c.Lat
		}
		if c.Lon < e.MinLon {
			e.MinLon = c.Lon
		}
		if c.Lon > e.MaxLon {
			e.MaxLon = c.Lon
		}
	}

	return &e
}

// Contains reports whether c lies inside the extent, borders included
func (e Extent) Contains(c Coordinate) bool {
	return c.Lat >= e.MinLat && c.Lat <= e.MaxLat && c.Lon >= e.MinLon && c.Lon <= e.MaxLon
}

// Center returns the center of the box in degree space, which is what a map view frames on
func (e Extent) Center() Coordinate {
	return Coordinate{
		Lat: (e.MinLat + e.MaxLat) / 2,
		Lon: (e.MinLon + e.MaxLon) / 2,
	}
}

// DiagonalMeters is the great-circle distance between the south-west and north-east corners
func (e Extent) DiagonalMeters() float64 {
	return DistanceMeters(Coordinate{Lat: e.MinLat, Lon: e.MinLon}, Coordinate{Lat: e.MaxLat, Lon: e.MaxLon})
}

// Rect converts the extent into an s2.Rect.
// The longitude interval never wraps the antimeridian since the extent is computed in degree space.
func (e Extent) Rect() s2.Rect {
	sw := s2.LatLngFromDegrees(e.MinLat, e.MinLon)
	ne := s2.LatLngFromDegrees(e.MaxLat, e.MaxLon)
	return s2.Rect{
		Lat: r1.Interval{Lo: sw.Lat.Radians(), Hi: ne.Lat.Radians()},
		Lng: s1.IntervalFromEndpoints(sw.Lng.Radians(), ne.Lng.Radians()),
	}
}
