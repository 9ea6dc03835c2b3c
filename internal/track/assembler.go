package track

import (
	"path/filepath"
	"strings"
	"time"
)

// LocalTimeLayout formats zone-naive timestamps
const LocalTimeLayout = "2006-01-02T15:04:05.999999999"

// RawPoint is a parsed point record before it becomes part of a track
type RawPoint struct {
	Lat       float64
	Lon       float64
	Elevation *float64
	Timestamp *time.Time
	Name      string
}

// RawTrack holds the parsed point records of one source file
type RawTrack struct {
	MetadataName string
	TrackNames   []string
	TrackPoints  []RawPoint
	RoutePoints  []RawPoint
	WayPoints    []RawPoint
}

// Assemble builds a Track from raw records. Points are numbered per collection
// in the order given; the name is resolved with BuildName.
func Assemble(filename string, raw RawTrack) *Track {
	t := New(BuildName(raw.MetadataName, raw.TrackNames, filename))
	t.SetFilename(filename)

	for _, r := range raw.WayPoints {
		t.AddWayPoint(r.point())
	}
	for _, r := range raw.RoutePoints {
		t.AddRoutePoint(r.point())
	}
	for _, r := range raw.TrackPoints {
		p := r.point()
		p.Name = ""
		t.AddTrackPoint(p)
	}
	return t
}

func (r RawPoint) point() *Point {
	return NewPoint(r.Lat, r.Lon, r.Elevation, r.Timestamp).WithName(r.Name)
}

// BuildName resolves the display name of a track.
//
// The metadata name wins; track names are appended in parentheses when they
// differ from it. Without a metadata name the joined track names are used,
// and when both are empty the base name of filename.
func BuildName(metadataName string, trackNames []string, filename string) string {
	fromTracks := strings.Join(trackNames, "/")

	var name string
	switch {
	case metadataName == "":
		name = fromTracks
	case fromTracks == "" || fromTracks == metadataName:
		name = metadataName
	default:
		name = metadataName + "(" + fromTracks + ")"
	}

	if name == "" && filename != "" {
		name = filepath.Base(filename)
	}
	return name
}
