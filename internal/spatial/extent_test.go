package spatial

import (
	"math"
	"testing"

	"github.com/golang/geo/s2"
)

func TestExtentOfEmpty(t *testing.T) {
	if e := ExtentOf(nil); e != nil {
		t.Fatalf("expected nil extent, got %+v", e)
	}
}

func TestExtentOf(t *testing.T) {
	coords := []Coordinate{
		{Lat: 46.5, Lon: 7.2},
		{Lat: 46.1, Lon: 7.9},
		{Lat: 46.9, Lon: 6.8},
	}

	e := ExtentOf(coords)
	if e == nil {
		t.Fatal("expected extent")
	}

	want := Extent{MinLat: 46.1, MinLon: 6.8, MaxLat: 46.9, MaxLon: 7.9}
	if *e != want {
		t.Errorf("expected %+v, got %+v", want, *e)
	}

	for _, c := range coords {
		if !e.Contains(c) {
			t.Errorf("extent %+v does not contain %v", *e, c)
		}
	}

	if e.Contains(Coordinate{Lat: 47, Lon: 7}) {
		t.Errorf("extent should not contain a point north of it")
	}

	center := e.Center()
	if math.Abs(center.Lat-46.5) > 1e-9 || math.Abs(center.Lon-7.35) > 1e-9 {
		t.Errorf("unexpected center %v", center)
	}

	if e.DiagonalMeters() <= 0 {
		t.Errorf("expected positive diagonal")
	}
}

func TestExtentRect(t *testing.T) {
	e := Extent{MinLat: 46.1, MinLon: 6.8, MaxLat: 46.9, MaxLon: 7.9}
	rect := e.Rect()

	if !rect.ContainsLatLng(s2.LatLngFromDegrees(46.5, 7.2)) {
		t.Errorf("rect should contain interior point")
	}
	if rect.ContainsLatLng(s2.LatLngFromDegrees(45.0, 7.2)) {
		t.Errorf("rect should not contain point south of it")
	}

	other := Extent{MinLat: 46.8, MinLon: 7.5, MaxLat: 47.5, MaxLon: 8.5}
	if !rect.Intersects(other.Rect()) {
		t.Errorf("overlapping extents should intersect")
	}
}
