package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jengzang/trakxmap-backend-go/internal/database"
	"github.com/jengzang/trakxmap-backend-go/internal/loader"
	"github.com/jengzang/trakxmap-backend-go/internal/repository"
	"github.com/jengzang/trakxmap-backend-go/internal/spatial"
)

var testdata = filepath.Join("..", "loader", "testdata")

func newTestService(t *testing.T) (*TrackService, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "tracks.db")
	return openService(t, dbPath), dbPath
}

func openService(t *testing.T, dbPath string) *TrackService {
	t.Helper()

	conn, err := database.Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return NewTrackService(repository.NewTrackRepository(conn), loader.NewChain(loader.Options{Zone: "UTC"}), 4)
}

func TestLoadFiles(t *testing.T) {
	svc, _ := newTestService(t)

	paths := []string{
		filepath.Join(testdata, "alps.gpx"),
		filepath.Join(testdata, "broken.gpx"),
		filepath.Join(testdata, "unnamed.gpx"),
		filepath.Join(testdata, "missing.gpx"),
		filepath.Join(testdata, ".", "alps.gpx"),
	}

	var calls int32
	result, err := svc.LoadFiles(context.Background(), paths, func(string, error) {
		atomic.AddInt32(&calls, 1)
	})
	if err != nil {
		t.Fatalf("LoadFiles failed: %v", err)
	}

	if len(result.Tracks) != 2 {
		t.Fatalf("expected 2 tracks, got %d", len(result.Tracks))
	}
	if len(result.Failed) != 2 {
		t.Fatalf("expected 2 failures, got %+v", result.Failed)
	}
	for _, f := range result.Failed {
		if !errors.Is(f.Err, loader.ErrNoTrack) {
			t.Errorf("failure of %s should wrap ErrNoTrack: %v", f.Path, f.Err)
		}
	}
	if calls != 4 {
		t.Errorf("expected 4 progress calls for 4 distinct files, got %d", calls)
	}

	alps := result.Tracks[0]
	if alps.ID == 0 || alps.Name != "Alps(Day1/Day2)" {
		t.Errorf("unexpected first track %s (id %d)", alps, alps.ID)
	}
	if alps.TrackPoints[0].Distance == nil || *alps.Statistics().TrackDistance <= 0 {
		t.Errorf("distances not computed on load")
	}

	list := svc.ListTracks(nil)
	if len(list) != 2 || list[0] != alps {
		t.Errorf("expected alps first in list, got %v", list)
	}
}

func TestLoadFilesCanceled(t *testing.T) {
	svc, _ := newTestService(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := svc.LoadFiles(ctx, []string{filepath.Join(testdata, "alps.gpx")}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if len(result.Tracks) != 0 {
		t.Errorf("expected no tracks, got %d", len(result.Tracks))
	}
}

func TestLoadStored(t *testing.T) {
	svc, dbPath := newTestService(t)

	if _, err := svc.LoadFiles(context.Background(), []string{filepath.Join(testdata, "alps.gpx")}, nil); err != nil {
		t.Fatal(err)
	}

	reopened := openService(t, dbPath)
	if err := reopened.LoadStored(context.Background()); err != nil {
		t.Fatalf("LoadStored failed: %v", err)
	}

	list := reopened.ListTracks(nil)
	if len(list) != 1 || list[0].Name != "Alps(Day1/Day2)" || len(list[0].TrackPoints) != 4 {
		t.Errorf("unexpected stored tracks %v", list)
	}
}

func TestImportRenameDelete(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	data, err := os.ReadFile(filepath.Join(testdata, "unnamed.gpx"))
	if err != nil {
		t.Fatal(err)
	}

	tr, err := svc.Import(ctx, "upload.gpx", data)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if tr.DisplayName() != "upload.gpx" {
		t.Errorf("expected filename as name, got %q", tr.DisplayName())
	}

	if _, err := svc.Import(ctx, "bad.gpx", []byte("nope")); !errors.Is(err, loader.ErrNoTrack) {
		t.Errorf("expected ErrNoTrack, got %v", err)
	}

	renamed, err := svc.Rename(ctx, tr.ID, "Berlin walk")
	if err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if renamed.DisplayName() != "Berlin walk" {
		t.Errorf("unexpected name %q", renamed.DisplayName())
	}

	if err := svc.Delete(ctx, tr.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := svc.GetTrack(tr.ID); !errors.Is(err, ErrTrackNotFound) {
		t.Errorf("expected ErrTrackNotFound, got %v", err)
	}
	if err := svc.Delete(ctx, tr.ID); !errors.Is(err, ErrTrackNotFound) {
		t.Errorf("expected ErrTrackNotFound on second delete, got %v", err)
	}
	if _, err := svc.Rename(ctx, tr.ID, "x"); !errors.Is(err, ErrTrackNotFound) {
		t.Errorf("expected ErrTrackNotFound on rename, got %v", err)
	}
}

func TestListTracksViewport(t *testing.T) {
	svc, _ := newTestService(t)

	paths := []string{filepath.Join(testdata, "alps.gpx"), filepath.Join(testdata, "unnamed.gpx")}
	if _, err := svc.LoadFiles(context.Background(), paths, nil); err != nil {
		t.Fatal(err)
	}

	alps := &spatial.Extent{MinLat: 45.5, MinLon: 6.5, MaxLat: 47, MaxLon: 8.5}
	list := svc.ListTracks(alps)
	if len(list) != 1 || list[0].Filename != "alps.gpx" {
		t.Errorf("expected only the alps track, got %v", list)
	}

	ocean := &spatial.Extent{MinLat: -10, MinLon: -30, MaxLat: -5, MaxLon: -20}
	if list := svc.ListTracks(ocean); len(list) != 0 {
		t.Errorf("expected no tracks, got %v", list)
	}
}

func TestListTracksViewportSinglePoint(t *testing.T) {
	svc, _ := newTestService(t)

	single := []byte(`<gpx version="1.1" xmlns="http://www.topografix.com/GPX/1/1"><wpt lat="52.5" lon="13.4"/></gpx>`)
	if _, err := svc.Import(context.Background(), "marker.gpx", single); err != nil {
		t.Fatal(err)
	}

	berlin := &spatial.Extent{MinLat: 52, MinLon: 13, MaxLat: 53, MaxLon: 14}
	if list := svc.ListTracks(berlin); len(list) != 1 || list[0].Filename != "marker.gpx" {
		t.Errorf("expected the single point track, got %v", list)
	}

	alps := &spatial.Extent{MinLat: 45.5, MinLon: 6.5, MaxLat: 47, MaxLon: 8.5}
	if list := svc.ListTracks(alps); len(list) != 0 {
		t.Errorf("expected no tracks, got %v", list)
	}
}

// run with -race
func TestRenameWhileListing(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	data, err := os.ReadFile(filepath.Join(testdata, "alps.gpx"))
	if err != nil {
		t.Fatal(err)
	}
	tr, err := svc.Import(ctx, "alps.gpx", data)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			if _, err := svc.Rename(ctx, tr.ID, "Alps "+strconv.Itoa(i)); err != nil {
				t.Errorf("Rename failed: %v", err)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			for _, listed := range svc.ListTracks(nil) {
				_ = listed.DisplayName()
				_ = listed.String()
			}
		}
	}()
	wg.Wait()

	if got := tr.DisplayName(); got != "Alps 49" {
		t.Errorf("expected last rename to win, got %q", got)
	}
}

func TestUniquePaths(t *testing.T) {
	got := uniquePaths([]string{"a.gpx", "./a.gpx", "b.gpx", "dir/../a.gpx"})
	if len(got) != 2 || got[0] != "a.gpx" || got[1] != "b.gpx" {
		t.Errorf("unexpected paths %v", got)
	}
}
