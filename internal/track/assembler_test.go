package track

import (
	"testing"
	"time"
)

func TestBuildName(t *testing.T) {
	tests := []struct {
		name         string
		metadataName string
		trackNames   []string
		filename     string
		want         string
	}{
		{"same names", "Alps", []string{"Alps"}, "/tmp/a.gpx", "Alps"},
		{"different names", "Alps", []string{"Day1", "Day2"}, "/tmp/a.gpx", "Alps(Day1/Day2)"},
		{"metadata only", "Alps", nil, "/tmp/a.gpx", "Alps"},
		{"track names only", "", []string{"Ride"}, "/tmp/a.gpx", "Ride"},
		{"several track names", "", []string{"Up", "Down"}, "/tmp/a.gpx", "Up/Down"},
		{"filename fallback", "", nil, "/tmp/foo.gpx", "foo.gpx"},
		{"nothing at all", "", nil, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildName(tt.metadataName, tt.trackNames, tt.filename); got != tt.want {
				t.Errorf("BuildName(%q, %v, %q) = %q, want %q", tt.metadataName, tt.trackNames, tt.filename, got, tt.want)
			}
		})
	}
}

func TestAssemble(t *testing.T) {
	ts := time.Date(2015, 7, 1, 8, 30, 0, 0, time.UTC)
	raw := RawTrack{
		MetadataName: "Alps",
		TrackNames:   []string{"Day1", "Day2"},
		TrackPoints: []RawPoint{
			{Lat: 46.0, Lon: 7.0, Elevation: float64Ptr(1200), Timestamp: &ts, Name: "ignored"},
			{Lat: 46.1, Lon: 7.1},
		},
		RoutePoints: []RawPoint{{Lat: 46.2, Lon: 7.2, Name: "via"}},
		WayPoints:   []RawPoint{{Lat: 46.3, Lon: 7.3, Name: "hut"}, {Lat: 46.4, Lon: 7.4}},
	}

	tr := Assemble("/data/gpx/alps.gpx", raw)

	if tr.Name != "Alps(Day1/Day2)" {
		t.Errorf("unexpected name %q", tr.Name)
	}
	if tr.Filename != "alps.gpx" {
		t.Errorf("unexpected filename %q", tr.Filename)
	}
	if len(tr.TrackPoints) != 2 || len(tr.RoutePoints) != 1 || len(tr.WayPoints) != 2 {
		t.Fatalf("unexpected point counts: %s", tr)
	}

	first := tr.TrackPoints[0]
	if first.Sequence != 1 || *first.Elevation != 1200 || !first.Timestamp.Equal(ts) {
		t.Errorf("unexpected first track point %+v", first)
	}
	if first.Name != "" {
		t.Errorf("track points carry no name, got %q", first.Name)
	}
	if tr.TrackPoints[1].Elevation != nil || tr.TrackPoints[1].Timestamp != nil {
		t.Errorf("optional values should stay nil")
	}
	if tr.WayPoints[0].Name != "hut" || tr.WayPoints[1].Sequence != 2 {
		t.Errorf("unexpected way points %+v %+v", tr.WayPoints[0], tr.WayPoints[1])
	}
	if tr.RoutePoints[0].Name != "via" || tr.RoutePoints[0].Kind != KindRoute {
		t.Errorf("unexpected route point %+v", tr.RoutePoints[0])
	}
}
