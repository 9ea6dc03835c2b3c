package track

import (
	"time"

	"github.com/jengzang/trakxmap-backend-go/internal/spatial"
)

// Kind is the role of a point within a track
type Kind int

const (
	KindTrack Kind = iota // recorded path
	KindRoute             // planned route
	KindWay               // point of interest
)

// String returns the lowercase kind name used in the API and the database
func (k Kind) String() string {
	switch k {
	case KindTrack:
		return "track"
	case KindRoute:
		return "route"
	case KindWay:
		return "way"
	default:
		return "unknown"
	}
}

// ParseKind converts a kind name back into a Kind
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "track", "":
		return KindTrack, true
	case "route":
		return KindRoute, true
	case "way":
		return KindWay, true
	}
	return KindTrack, false
}

// Point is a geographic point of a track. Distance is only set on track points;
// Name is only meaningful for route and way points.
type Point struct {
	ID         int64              `json:"id,omitempty"`
	TrackID    int64              `json:"trackId,omitempty"` // owning track, not an ownership edge
	Kind       Kind               `json:"-"`
	Sequence   int                `json:"sequence"`
	Coordinate spatial.Coordinate `json:"coordinate"`
	Elevation  *float64           `json:"elevation,omitempty"`
	Timestamp  *time.Time         `json:"timestamp,omitempty"`
	Distance   *float64           `json:"distance,omitempty"`
	Name       string             `json:"name,omitempty"`
}

// NewPoint creates a point without sequence and owner; those are set when it is added to a track
func NewPoint(lat, lon float64, elevation *float64, timestamp *time.Time) *Point {
	return &Point{
		Coordinate: spatial.Coordinate{Lat: lat, Lon: lon},
		Elevation:  elevation,
		Timestamp:  timestamp,
	}
}

// WithName sets the name and returns the point
func (p *Point) WithName(name string) *Point {
	p.Name = name
	return p
}

func float64Ptr(v float64) *float64 {
	return &v
}
