package models

import (
	"fmt"
	"time"

	"github.com/jengzang/trakxmap-backend-go/internal/spatial"
	"github.com/jengzang/trakxmap-backend-go/internal/track"
)

// TrackSummary is the list representation of a track
type TrackSummary struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Filename    string   `json:"filename"`
	Timestamp   *string  `json:"timestamp,omitempty"`  // Format: 2015-07-01T08:00:00, no zone
	LatestTime  *string  `json:"latestTime,omitempty"` // Format: 2015-07-01T08:00:00, no zone
	TrackPoints int      `json:"trackPoints"`
	RoutePoints int      `json:"routePoints"`
	WayPoints   int      `json:"wayPoints"`
	Distance    *float64 `json:"distance,omitempty"` // Meters
	Duration    *int64   `json:"duration,omitempty"` // Seconds
}

// TrackDetail adds statistics and extent to the summary
type TrackDetail struct {
	TrackSummary
	Statistics StatisticsView `json:"statistics"`
	Extent     *ExtentView    `json:"extent,omitempty"`
}

// StatisticsView is the JSON form of track.Statistics
type StatisticsView struct {
	TrackStartTime    *string  `json:"trackStartTime,omitempty"`
	TrackEndTime      *string  `json:"trackEndTime,omitempty"`
	RouteStartTime    *string  `json:"routeStartTime,omitempty"`
	FirstWaypointTime *string  `json:"firstWaypointTime,omitempty"`
	TrackDistance     *float64 `json:"trackDistance,omitempty"` // Meters
	MinElevation      *float64 `json:"minElevation,omitempty"`
	MaxElevation      *float64 `json:"maxElevation,omitempty"`
	Duration          *int64   `json:"duration,omitempty"` // Seconds
}

// ExtentView is the bounding box plus what a map needs to frame it
type ExtentView struct {
	spatial.Extent
	Center         spatial.Coordinate `json:"center"`
	DiagonalMeters float64            `json:"diagonalMeters"`
}

// PointView is the JSON form of a track, route or way point
type PointView struct {
	ID        int64    `json:"id"`
	Kind      string   `json:"kind"`
	Sequence  int      `json:"sequence"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Elevation *float64 `json:"elevation,omitempty"`
	Timestamp *string  `json:"timestamp,omitempty"`
	Distance  *float64 `json:"distance,omitempty"` // Meters from the track start
	Name      string   `json:"name,omitempty"`
}

// TrackFilter represents the query parameters of the track list
type TrackFilter struct {
	MinLat *float64 `form:"minLat"`
	MinLon *float64 `form:"minLon"`
	MaxLat *float64 `form:"maxLat"`
	MaxLon *float64 `form:"maxLon"`
}

// Viewport returns the requested viewport, nil when no bounds were given
func (f TrackFilter) Viewport() (*spatial.Extent, error) {
	bounds := []*float64{f.MinLat, f.MinLon, f.MaxLat, f.MaxLon}
	given := 0
	for _, b := range bounds {
		if b != nil {
			given++
		}
	}
	switch given {
	case 0:
		return nil, nil
	case len(bounds):
	default:
		return nil, fmt.Errorf("minLat, minLon, maxLat and maxLon must be given together")
	}

	e := &spatial.Extent{MinLat: *f.MinLat, MinLon: *f.MinLon, MaxLat: *f.MaxLat, MaxLon: *f.MaxLon}
	if e.MinLat > e.MaxLat || e.MinLon > e.MaxLon {
		return nil, fmt.Errorf("viewport minimum exceeds maximum")
	}
	if e.MinLat < -90 || e.MaxLat > 90 || e.MinLon < -180 || e.MaxLon > 180 {
		return nil, fmt.Errorf("viewport out of range")
	}
	return e, nil
}

// RenameRequest is the body of PUT /tracks/:id/name
type RenameRequest struct {
	Name string `json:"name" binding:"required"`
}

// UploadFailure describes an uploaded file that produced no track
type UploadFailure struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

// UploadResponse is the result of POST /tracks
type UploadResponse struct {
	Tracks []TrackSummary  `json:"tracks"`
	Failed []UploadFailure `json:"failed"`
}

// NewTrackSummary builds the summary of t
func NewTrackSummary(t *track.Track) TrackSummary {
	stats := t.Statistics()
	return TrackSummary{
		ID:          t.ID,
		Name:        t.DisplayName(),
		Filename:    t.Filename,
		Timestamp:   formatTime(stats.TrackTimestamp()),
		LatestTime:  formatTime(track.ComputeTimeInfo(t).LatestTime()),
		TrackPoints: len(t.TrackPoints),
		RoutePoints: len(t.RoutePoints),
		WayPoints:   len(t.WayPoints),
		Distance:    stats.TrackDistance,
		Duration:    durationSeconds(stats),
	}
}

// NewTrackSummaries builds the summaries of tracks, keeping their order
func NewTrackSummaries(tracks []*track.Track) []TrackSummary {
	summaries := make([]TrackSummary, len(tracks))
	for i, t := range tracks {
		summaries[i] = NewTrackSummary(t)
	}
	return summaries
}

// NewTrackDetail builds the detail view of t
func NewTrackDetail(t *track.Track) TrackDetail {
	return TrackDetail{
		TrackSummary: NewTrackSummary(t),
		Statistics:   NewStatisticsView(t.Statistics()),
		Extent:       NewExtentView(t.Extent()),
	}
}

// NewStatisticsView converts s
func NewStatisticsView(s *track.Statistics) StatisticsView {
	return StatisticsView{
		TrackStartTime:    formatTime(s.TrackStartTime),
		TrackEndTime:      formatTime(s.TrackEndTime),
		RouteStartTime:    formatTime(s.RouteStartTime),
		FirstWaypointTime: formatTime(s.FirstWaypointTime),
		TrackDistance:     s.TrackDistance,
		MinElevation:      s.MinElevation,
		MaxElevation:      s.MaxElevation,
		Duration:          durationSeconds(s),
	}
}

// NewExtentView converts e, nil stays nil
func NewExtentView(e *spatial.Extent) *ExtentView {
	if e == nil {
		return nil
	}
	return &ExtentView{
		Extent:         *e,
		Center:         e.Center(),
		DiagonalMeters: e.DiagonalMeters(),
	}
}

// NewPointViews converts points
func NewPointViews(points []*track.Point) []PointView {
	views := make([]PointView, len(points))
	for i, p := range points {
		views[i] = PointView{
			ID:        p.ID,
			Kind:      p.Kind.String(),
			Sequence:  p.Sequence,
			Latitude:  p.Coordinate.Lat,
			Longitude: p.Coordinate.Lon,
			Elevation: p.Elevation,
			Timestamp: formatTime(p.Timestamp),
			Distance:  p.Distance,
			Name:      p.Name,
		}
	}
	return views
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(track.LocalTimeLayout)
	return &s
}

func durationSeconds(s *track.Statistics) *int64 {
	d, ok := s.Duration()
	if !ok {
		return nil
	}
	secs := int64(d / time.Second)
	return &secs
}
