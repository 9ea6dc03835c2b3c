package track

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/jengzang/trakxmap-backend-go/internal/spatial"
)

// Track is a loaded track with its three point collections.
//
// Extent and statistics are computed on first access and cached. Changing the
// point collections afterwards does not invalidate them; call Recalculate (or
// RecalculateExtent / RecalculateStatistics) to refresh.
type Track struct {
	ID       int64
	Name     string
	Filename string

	TrackPoints []*Point
	RoutePoints []*Point
	WayPoints   []*Point

	mu         sync.Mutex
	extent     *spatial.Extent
	statistics *Statistics
}

// New creates an empty track with the given name
func New(name string) *Track {
	return &Track{Name: name}
}

// SetFilename stores the base name of path
func (t *Track) SetFilename(path string) {
	if path == "" {
		t.Filename = ""
		return
	}
	t.Filename = filepath.Base(path)
}

// SetID sets the track id and updates the back-reference of every point
func (t *Track) SetID(id int64) {
	t.ID = id
	for _, points := range [][]*Point{t.TrackPoints, t.RoutePoints, t.WayPoints} {
		for _, p := range points {
			p.TrackID = id
		}
	}
}

// AddTrackPoint appends p to the track points and numbers it
func (t *Track) AddTrackPoint(p *Point) {
	t.TrackPoints = t.add(t.TrackPoints, p, KindTrack)
}

// AddRoutePoint appends p to the route points and numbers it
func (t *Track) AddRoutePoint(p *Point) {
	t.RoutePoints = t.add(t.RoutePoints, p, KindRoute)
}

// AddWayPoint appends p to the way points and numbers it
func (t *Track) AddWayPoint(p *Point) {
	t.WayPoints = t.add(t.WayPoints, p, KindWay)
}

func (t *Track) add(points []*Point, p *Point, kind Kind) []*Point {
	p.Kind = kind
	p.TrackID = t.ID
	p.Sequence = len(points) + 1
	return append(points, p)
}

// Rename changes the name of a track that may already be shared between goroutines
func (t *Track) Rename(name string) {
	t.mu.Lock()
	t.Name = name
	t.mu.Unlock()
}

// DisplayName returns the current name, safe against a concurrent Rename
func (t *Track) DisplayName() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.Name
}

// Points returns the collection for the given kind
func (t *Track) Points(kind Kind) []*Point {
	switch kind {
	case KindRoute:
		return t.RoutePoints
	case KindWay:
		return t.WayPoints
	default:
		return t.TrackPoints
	}
}

// Extent returns the cached bounding box of all points, computing it if needed.
// Returns nil while the track has fewer than two points in total.
func (t *Track) Extent() *spatial.Extent {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.extent == nil {
		t.extent = ComputeExtent(t)
	}
	return t.extent
}

// RecalculateExtent drops the cached extent and computes it again
func (t *Track) RecalculateExtent() *spatial.Extent {
	t.mu.Lock()
	t.extent = nil
	t.mu.Unlock()
	return t.Extent()
}

// Statistics returns the cached statistics, computing them on first access
func (t *Track) Statistics() *Statistics {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.statistics == nil {
		t.statistics = ComputeStatistics(t)
	}
	return t.statistics
}

// RecalculateStatistics drops the cached statistics and computes them again
func (t *Track) RecalculateStatistics() *Statistics {
	t.mu.Lock()
	t.statistics = nil
	t.mu.Unlock()
	return t.Statistics()
}

// Recalculate refreshes every cached value after the point collections changed
func (t *Track) Recalculate() {
	t.RecalculateExtent()
	t.RecalculateStatistics()
}

func (t *Track) String() string {
	return fmt.Sprintf("Track{name=%q filename=%q #wayPoints=%d #routePoints=%d #trackPoints=%d}",
		t.DisplayName(), t.Filename, len(t.WayPoints), len(t.RoutePoints), len(t.TrackPoints))
}
