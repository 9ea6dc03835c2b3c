package loader

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/jengzang/trakxmap-backend-go/internal/track"
)

var (
	// ErrNoTrack is returned when a source could not be turned into a track
	ErrNoTrack = errors.New("no track produced")
	// ErrNoLoader is returned when no registered loader accepted a file
	ErrNoLoader = fmt.Errorf("no loader for file: %w", ErrNoTrack)
)

// Loader turns a track file into a Track.
// Implementations must be safe for concurrent use.
type Loader interface {
	// Load reads and parses the file at path
	Load(ctx context.Context, path string) (*track.Track, error)

	// Parse parses data that was read from filename
	Parse(filename string, data []byte) (*track.Track, error)
}

// Options configure the loaders created from the registry
type Options struct {
	// Zone is the IANA zone timestamps are converted to before the zone is dropped.
	// Empty keeps the wall clock of the source file.
	Zone string
}

// Factory creates a loader instance
type Factory func(opts Options) Loader

type registration struct {
	ext     string
	order   int
	factory Factory
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]registration)
)

// Register registers a loader factory for a file extension such as ".gpx"
func Register(ext string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	ext = strings.ToLower(ext)
	registry[ext] = registration{ext: ext, order: len(registry), factory: factory}
}

// Extensions returns the registered file extensions in registration order
func Extensions() []string {
	regs := registrations()
	exts := make([]string, len(regs))
	for i, r := range regs {
		exts[i] = r.ext
	}
	return exts
}

func registrations() []registration {
	registryMu.RLock()
	defer registryMu.RUnlock()

	regs := make([]registration, 0, len(registry))
	for _, r := range registry {
		regs = append(regs, r)
	}
	sort.Slice(regs, func(i, j int) bool { return regs[i].order < regs[j].order })
	return regs
}

// Chain tries a sequence of loaders and returns the first track produced.
// Loaders registered for the file's extension are tried before the others.
type Chain struct {
	loaders map[string]Loader
	order   []string
}

// NewChain creates a chain with one loader per registered extension
func NewChain(opts Options) *Chain {
	c := &Chain{loaders: make(map[string]Loader)}
	for _, r := range registrations() {
		c.loaders[r.ext] = r.factory(opts)
		c.order = append(c.order, r.ext)
	}
	return c
}

// Load implements Loader
func (c *Chain) Load(ctx context.Context, path string) (*track.Track, error) {
	return c.try(path, func(l Loader) (*track.Track, error) {
		return l.Load(ctx, path)
	})
}

// Parse implements Loader
func (c *Chain) Parse(filename string, data []byte) (*track.Track, error) {
	return c.try(filename, func(l Loader) (*track.Track, error) {
		return l.Parse(filename, data)
	})
}

func (c *Chain) try(filename string, load func(Loader) (*track.Track, error)) (*track.Track, error) {
	var errs []error
	for _, ext := range c.candidates(filename) {
		t, err := load(c.loaders[ext])
		if err == nil {
			return t, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		log.Printf("[Loader] %s loader could not load %s: %v", ext, filename, err)
		errs = append(errs, err)
	}
	return nil, fmt.Errorf("%s: %w", filename, errors.Join(append([]error{ErrNoLoader}, errs...)...))
}

func (c *Chain) candidates(filename string) []string {
	ext := strings.ToLower(filepath.Ext(filename))
	candidates := make([]string, 0, len(c.order))
	if _, ok := c.loaders[ext]; ok {
		candidates = append(candidates, ext)
	}
	for _, e := range c.order {
		if e != ext {
			candidates = append(candidates, e)
		}
	}
	return candidates
}
