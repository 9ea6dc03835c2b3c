package track

import (
	"math"
	"testing"
	"time"
)

func TestStatisticsStartIsFirstSeenEndIsLatest(t *testing.T) {
	base := time.Date(2015, 3, 14, 9, 0, 0, 0, time.UTC)
	tr := New("out of order")
	for _, offset := range []time.Duration{0, 5 * time.Minute, 3 * time.Minute} {
		tr.AddTrackPoint(NewPoint(46, 7, nil, timePtr(base.Add(offset))))
	}

	stats := ComputeStatistics(tr)
	if !stats.TrackStartTime.Equal(base) {
		t.Errorf("expected start %v, got %v", base, stats.TrackStartTime)
	}
	if want := base.Add(5 * time.Minute); !stats.TrackEndTime.Equal(want) {
		t.Errorf("expected end %v, got %v", want, stats.TrackEndTime)
	}
	if d, ok := stats.Duration(); !ok || d != 5*time.Minute {
		t.Errorf("expected 5m duration, got %v", d)
	}
}

func TestStatisticsStartIgnoresEarlierLaterPoints(t *testing.T) {
	base := time.Date(2015, 3, 14, 9, 0, 0, 0, time.UTC)
	tr := New("earlier later")
	tr.AddTrackPoint(NewPoint(46, 7, nil, nil))
	tr.AddTrackPoint(NewPoint(46, 7, nil, timePtr(base)))
	tr.AddTrackPoint(NewPoint(46, 7, nil, timePtr(base.Add(-time.Hour))))

	stats := ComputeStatistics(tr)
	if !stats.TrackStartTime.Equal(base) {
		t.Errorf("start must be the first non-nil timestamp, got %v", stats.TrackStartTime)
	}
	if !stats.TrackEndTime.Equal(base) {
		t.Errorf("end must be the latest timestamp, got %v", stats.TrackEndTime)
	}
	if d, _ := stats.Duration(); d != 0 {
		t.Errorf("expected zero duration, got %v", d)
	}
}

func TestStatisticsElevationSkipsZero(t *testing.T) {
	tr := New("elevation")
	for _, e := range []float64{0.0, 100.0, 0.0, 50.0} {
		tr.AddTrackPoint(NewPoint(46, 7, float64Ptr(e), nil))
	}
	tr.AddTrackPoint(NewPoint(46, 7, nil, nil))
	// way point elevations are not part of the fold
	tr.AddWayPoint(NewPoint(46, 7, float64Ptr(4000), nil))

	stats := ComputeStatistics(tr)
	if stats.MinElevation == nil || *stats.MinElevation != 50.0 {
		t.Errorf("expected min elevation 50, got %v", stats.MinElevation)
	}
	if stats.MaxElevation == nil || *stats.MaxElevation != 100.0 {
		t.Errorf("expected max elevation 100, got %v", stats.MaxElevation)
	}
}

func TestStatisticsElevationKeepsNegativeZero(t *testing.T) {
	tr := New("coast")
	tr.AddTrackPoint(NewPoint(46, 7, float64Ptr(math.Copysign(0, -1)), nil))
	tr.AddTrackPoint(NewPoint(46, 7, float64Ptr(12.5), nil))

	stats := ComputeStatistics(tr)
	if stats.MinElevation == nil || *stats.MinElevation != 0 || !math.Signbit(*stats.MinElevation) {
		t.Errorf("expected -0.0 as min elevation, got %v", stats.MinElevation)
	}
	if stats.MaxElevation == nil || *stats.MaxElevation != 12.5 {
		t.Errorf("expected max elevation 12.5, got %v", stats.MaxElevation)
	}
}

func TestStatisticsDistanceIsLastCumulativeValue(t *testing.T) {
	tr := New("distance")
	tr.AddTrackPoint(NewPoint(0, 0, nil, nil))
	tr.AddTrackPoint(NewPoint(0.01, 0, nil, nil))
	tr.AddTrackPoint(NewPoint(0.02, 0, nil, nil))

	if stats := ComputeStatistics(tr); stats.TrackDistance != nil {
		t.Fatalf("expected no distance before UpdateDistances, got %v", *stats.TrackDistance)
	}

	UpdateDistances(tr)
	stats := ComputeStatistics(tr)
	if stats.TrackDistance == nil || *stats.TrackDistance != *tr.TrackPoints[2].Distance {
		t.Errorf("expected distance of the last point, got %v", stats.TrackDistance)
	}
}

func TestStatisticsEmptyTrack(t *testing.T) {
	stats := ComputeStatistics(New("empty"))
	if stats.TrackStartTime != nil || stats.TrackEndTime != nil || stats.TrackDistance != nil ||
		stats.MinElevation != nil || stats.MaxElevation != nil {
		t.Errorf("expected all fields nil, got %s", stats)
	}
	if _, ok := stats.Duration(); ok {
		t.Errorf("expected no duration")
	}
	if stats.TrackTimestamp() != nil {
		t.Errorf("expected no track timestamp")
	}
}

func TestTrackTimestampResolution(t *testing.T) {
	trackTime := time.Date(2015, 1, 3, 0, 0, 0, 0, time.UTC)
	wayTime := time.Date(2015, 1, 2, 0, 0, 0, 0, time.UTC)
	routeTime := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		track bool
		way   bool
		route bool
		want  *time.Time
	}{
		{"all set", true, true, true, &trackTime},
		{"no track", false, true, true, &wayTime},
		{"route only", false, false, true, &routeTime},
		{"none", false, false, false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New(tt.name)
			if tt.route {
				tr.AddRoutePoint(NewPoint(1, 1, nil, timePtr(routeTime)))
				tr.AddRoutePoint(NewPoint(1, 1, nil, timePtr(routeTime.Add(time.Hour))))
			}
			if tt.way {
				tr.AddWayPoint(NewPoint(1, 1, nil, nil))
				tr.AddWayPoint(NewPoint(1, 1, nil, timePtr(wayTime)))
			}
			if tt.track {
				tr.AddTrackPoint(NewPoint(1, 1, nil, timePtr(trackTime)))
			}

			got := ComputeStatistics(tr).TrackTimestamp()
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("expected nil, got %v", got)
			case tt.want != nil && (got == nil || !got.Equal(*tt.want)):
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestSortByTimestamp(t *testing.T) {
	day := func(d int) *time.Time { return timePtr(time.Date(2015, 1, d, 0, 0, 0, 0, time.UTC)) }

	older := New("older")
	older.AddTrackPoint(NewPoint(1, 1, nil, day(1)))
	newer := New("newer")
	newer.AddWayPoint(NewPoint(1, 1, nil, day(5)))
	undated := New("undated")
	undated.AddTrackPoint(NewPoint(1, 1, nil, nil))

	tracks := []*Track{undated, older, newer}
	SortByTimestamp(tracks)

	want := []string{"newer", "older", "undated"}
	for i, tr := range tracks {
		if tr.Name != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], tr.Name)
		}
	}
}

func TestTimeInfoLatestTime(t *testing.T) {
	day := func(d int) *time.Time { return timePtr(time.Date(2015, 1, d, 0, 0, 0, 0, time.UTC)) }

	tr := New("times")
	tr.AddRoutePoint(NewPoint(1, 1, nil, day(7)))
	tr.AddRoutePoint(NewPoint(1, 1, nil, day(9)))
	tr.AddWayPoint(NewPoint(1, 1, nil, day(12)))

	info := ComputeTimeInfo(tr)
	if got := info.LatestTime(); got == nil || !got.Equal(*day(9)) {
		t.Errorf("expected latest route time, got %v", got)
	}

	tr.AddTrackPoint(NewPoint(1, 1, nil, day(3)))
	tr.AddTrackPoint(NewPoint(1, 1, nil, day(2)))
	info = ComputeTimeInfo(tr)
	if got := info.LatestTime(); got == nil || !got.Equal(*day(3)) {
		t.Errorf("expected latest track time, got %v", got)
	}
	if !info.LatestWaypointTime.Equal(*day(12)) {
		t.Errorf("unexpected latest waypoint time %v", info.LatestWaypointTime)
	}
}
