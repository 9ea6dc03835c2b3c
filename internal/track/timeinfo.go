package track

import "time"

// TimeInfo tracks the latest timestamp seen per point kind
type TimeInfo struct {
	LatestTrackTime    *time.Time
	LatestRouteTime    *time.Time
	LatestWaypointTime *time.Time
}

// ComputeTimeInfo collects the latest timestamps of t
func ComputeTimeInfo(t *Track) *TimeInfo {
	info := &TimeInfo{}
	for _, p := range t.TrackPoints {
		info.LatestTrackTime = later(info.LatestTrackTime, p.Timestamp)
	}
	for _, p := range t.RoutePoints {
		info.LatestRouteTime = later(info.LatestRouteTime, p.Timestamp)
	}
	for _, p := range t.WayPoints {
		info.LatestWaypointTime = later(info.LatestWaypointTime, p.Timestamp)
	}
	return info
}

// LatestTime returns the latest track time, else the latest route time, else the latest waypoint time
func (i *TimeInfo) LatestTime() *time.Time {
	switch {
	case i.LatestTrackTime != nil:
		return i.LatestTrackTime
	case i.LatestRouteTime != nil:
		return i.LatestRouteTime
	default:
		return i.LatestWaypointTime
	}
}

func later(current, candidate *time.Time) *time.Time {
	if candidate == nil {
		return current
	}
	if current == nil || candidate.After(*current) {
		return timePtr(*candidate)
	}
	return current
}
