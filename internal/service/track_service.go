package service

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jengzang/trakxmap-backend-go/internal/loader"
	"github.com/jengzang/trakxmap-backend-go/internal/spatial"
	"github.com/jengzang/trakxmap-backend-go/internal/track"
)

// TrackStore persists tracks
type TrackStore interface {
	Store(ctx context.Context, t *track.Track) error
	LoadAll(ctx context.Context) ([]*track.Track, error)
	UpdateName(ctx context.Context, id int64, name string) error
	DeleteTrack(ctx context.Context, id int64) error
}

// LoadFailure records a file that did not produce a track
type LoadFailure struct {
	Path string
	Err  error
}

// LoadResult is the outcome of loading a batch of files
type LoadResult struct {
	Tracks []*track.Track
	Failed []LoadFailure
}

// ProgressFunc is called once per finished file, possibly from several goroutines
type ProgressFunc func(path string, err error)

// TrackService keeps the loaded tracks in memory and in the store
type TrackService struct {
	store   TrackStore
	loader  loader.Loader
	workers int

	mu     sync.RWMutex
	tracks map[int64]*track.Track
}

// NewTrackService creates a new track service loading at most workers files at once
func NewTrackService(store TrackStore, l loader.Loader, workers int) *TrackService {
	if workers < 1 {
		workers = 1
	}
	return &TrackService{
		store:   store,
		loader:  l,
		workers: workers,
		tracks:  make(map[int64]*track.Track),
	}
}

// LoadStored reads all tracks from the store into memory
func (s *TrackService) LoadStored(ctx context.Context) error {
	tracks, err := s.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load stored tracks: %w", err)
	}

	s.mu.Lock()
	for _, t := range tracks {
		s.tracks[t.ID] = t
	}
	s.mu.Unlock()

	log.Printf("[TrackService] Loaded %d tracks from the database", len(tracks))
	return nil
}

// LoadFiles loads, annotates and stores the given files concurrently. A file
// that cannot be loaded is reported in the result and does not stop the
// others. The returned error is only set when ctx ends before all files are done.
func (s *TrackService) LoadFiles(ctx context.Context, paths []string, progress ProgressFunc) (*LoadResult, error) {
	paths = uniquePaths(paths)

	loaded := make([]*track.Track, len(paths))
	failed := make([]error, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			t, err := s.loadFile(gctx, path)
			if progress != nil {
				progress(path, err)
			}
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				log.Printf("[TrackService] Failed to load %s: %v", path, err)
				failed[i] = err
				return nil
			}
			loaded[i] = t
			return nil
		})
	}
	waitErr := g.Wait()

	result := &LoadResult{}
	for i, path := range paths {
		switch {
		case loaded[i] != nil:
			result.Tracks = append(result.Tracks, loaded[i])
		case failed[i] != nil:
			result.Failed = append(result.Failed, LoadFailure{Path: path, Err: failed[i]})
		}
	}

	log.Printf("[TrackService] Loaded %d of %d files, %d failed", len(result.Tracks), len(paths), len(result.Failed))
	return result, waitErr
}

func (s *TrackService) loadFile(ctx context.Context, path string) (*track.Track, error) {
	t, err := s.loader.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := s.add(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Import parses data read from filename and stores the resulting track
func (s *TrackService) Import(ctx context.Context, filename string, data []byte) (*track.Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t, err := s.loader.Parse(filename, data)
	if err != nil {
		return nil, err
	}
	if err := s.add(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// add computes distances, persists t and makes it visible
func (s *TrackService) add(ctx context.Context, t *track.Track) error {
	track.UpdateDistances(t)
	t.Recalculate()

	if err := s.store.Store(ctx, t); err != nil {
		return fmt.Errorf("failed to store track %s: %w", t.DisplayName(), err)
	}

	s.mu.Lock()
	s.tracks[t.ID] = t
	s.mu.Unlock()
	return nil
}

// ListTracks returns the tracks newest first. With a viewport only tracks whose
// extent intersects it are returned; a track too small for an extent is returned
// when one of its points lies inside the viewport.
func (s *TrackService) ListTracks(viewport *spatial.Extent) []*track.Track {
	s.mu.RLock()
	tracks := make([]*track.Track, 0, len(s.tracks))
	for _, t := range s.tracks {
		tracks = append(tracks, t)
	}
	s.mu.RUnlock()

	if viewport != nil {
		visible := tracks[:0]
		for _, t := range tracks {
			if inViewport(t, viewport) {
				visible = append(visible, t)
			}
		}
		tracks = visible
	}

	track.SortByTimestamp(tracks)
	return tracks
}

func inViewport(t *track.Track, viewport *spatial.Extent) bool {
	if ext := t.Extent(); ext != nil {
		return viewport.Rect().Intersects(ext.Rect())
	}
	for _, c := range track.Coordinates(t) {
		if viewport.Contains(c) {
			return true
		}
	}
	return false
}

// GetTrack returns the track with the given id
func (s *TrackService) GetTrack(id int64) (*track.Track, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tracks[id]
	if !ok {
		return nil, fmt.Errorf("track %d: %w", id, ErrTrackNotFound)
	}
	return t, nil
}

// Rename changes the name of a track
func (s *TrackService) Rename(ctx context.Context, id int64, name string) (*track.Track, error) {
	t, err := s.GetTrack(id)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateName(ctx, id, name); err != nil {
		return nil, fmt.Errorf("failed to rename track %d: %w", id, err)
	}

	t.Rename(name)
	return t, nil
}

// Delete removes a track from the store and from memory
func (s *TrackService) Delete(ctx context.Context, id int64) error {
	if _, err := s.GetTrack(id); err != nil {
		return err
	}

	if err := s.store.DeleteTrack(ctx, id); err != nil {
		return fmt.Errorf("failed to delete track %d: %w", id, err)
	}

	s.mu.Lock()
	delete(s.tracks, id)
	s.mu.Unlock()
	return nil
}

func uniquePaths(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	unique := make([]string, 0, len(paths))
	for _, p := range paths {
		key := filepath.Clean(p)
		if abs, err := filepath.Abs(p); err == nil {
			key = abs
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, p)
	}
	return unique
}
