package track

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Statistics holds values derived from the points of a track.
// Every field is optional and nil when the track carries no data for it.
type Statistics struct {
	TrackStartTime    *time.Time `json:"trackStartTime,omitempty"`
	TrackEndTime      *time.Time `json:"trackEndTime,omitempty"`
	RouteStartTime    *time.Time `json:"routeStartTime,omitempty"`
	FirstWaypointTime *time.Time `json:"firstWaypointTime,omitempty"`
	TrackDistance     *float64   `json:"trackDistance,omitempty"` // meters
	MinElevation      *float64   `json:"minElevation,omitempty"`
	MaxElevation      *float64   `json:"maxElevation,omitempty"`
}

// ComputeStatistics folds over the points of t.
// Track distances must have been set by UpdateDistances, otherwise TrackDistance stays nil.
func ComputeStatistics(t *Track) *Statistics {
	s := &Statistics{}
	for _, p := range t.TrackPoints {
		s.addTrackPoint(p)
	}
	for _, p := range t.RoutePoints {
		s.addRouteTime(p.Timestamp)
	}
	for _, p := range t.WayPoints {
		s.addWaypointTime(p.Timestamp)
	}
	return s
}

func (s *Statistics) addTrackPoint(p *Point) {
	if p == nil {
		return
	}
	s.addTrackTime(p.Timestamp)

	// the distance is cumulative, so the last one seen is the track length
	if p.Distance != nil {
		s.TrackDistance = float64Ptr(*p.Distance)
	}

	s.addElevation(p.Elevation)
}

// the start is the first timestamp seen, the end the latest one
func (s *Statistics) addTrackTime(ts *time.Time) {
	if ts == nil {
		return
	}
	if s.TrackStartTime == nil {
		s.TrackStartTime = timePtr(*ts)
	}
	if s.TrackEndTime == nil || ts.After(*s.TrackEndTime) {
		s.TrackEndTime = timePtr(*ts)
	}
}

// +0.0 marks a missing elevation reading and is skipped, -0.0 is a reading
func (s *Statistics) addElevation(elevation *float64) {
	if elevation == nil || math.Float64bits(*elevation) == 0 {
		return
	}
	e := *elevation
	if s.MinElevation == nil || e < *s.MinElevation {
		s.MinElevation = float64Ptr(e)
	}
	if s.MaxElevation == nil || e > *s.MaxElevation {
		s.MaxElevation = float64Ptr(e)
	}
}

func (s *Statistics) addRouteTime(ts *time.Time) {
	if ts != nil && s.RouteStartTime == nil {
		s.RouteStartTime = timePtr(*ts)
	}
}

func (s *Statistics) addWaypointTime(ts *time.Time) {
	if ts != nil && s.FirstWaypointTime == nil {
		s.FirstWaypointTime = timePtr(*ts)
	}
}

// Duration returns the time between track start and end, if both are known
func (s *Statistics) Duration() (time.Duration, bool) {
	if s.TrackStartTime == nil || s.TrackEndTime == nil {
		return 0, false
	}
	return s.TrackEndTime.Sub(*s.TrackStartTime), true
}

// TrackTimestamp returns the time that represents the track: the track start,
// else the first waypoint time, else the route start. Nil if none is set.
func (s *Statistics) TrackTimestamp() *time.Time {
	switch {
	case s.TrackStartTime != nil:
		return s.TrackStartTime
	case s.FirstWaypointTime != nil:
		return s.FirstWaypointTime
	default:
		return s.RouteStartTime
	}
}

func (s *Statistics) String() string {
	duration := ""
	if d, ok := s.Duration(); ok {
		duration = fmt.Sprintf(" duration=%s", d)
	}
	return fmt.Sprintf("Statistics{trackStartTime=%s routeStartTime=%s firstWaypointTime=%s%s distance=%s minElevation=%s maxElevation=%s}",
		formatTime(s.TrackStartTime), formatTime(s.RouteStartTime), formatTime(s.FirstWaypointTime), duration,
		formatFloat(s.TrackDistance), formatFloat(s.MinElevation), formatFloat(s.MaxElevation))
}

// SortByTimestamp sorts tracks newest first by their TrackTimestamp.
// Tracks without a timestamp go last and keep their relative order.
func SortByTimestamp(tracks []*Track) {
	sort.SliceStable(tracks, func(i, j int) bool {
		ti := tracks[i].Statistics().TrackTimestamp()
		tj := tracks[j].Statistics().TrackTimestamp()
		switch {
		case ti == nil:
			return false
		case tj == nil:
			return true
		default:
			return ti.After(*tj)
		}
	})
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "null"
	}
	return t.Format(LocalTimeLayout)
}

func formatFloat(f *float64) string {
	if f == nil {
		return "null"
	}
	return fmt.Sprintf("%.1f", *f)
}
