package index

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/vsivadasan/bookscout/internal/roots"
	"github.com/vsivadasan/bookscout/internal/scanner"
	"github.com/vsivadasan/bookscout/pkg/types"
)

// DefaultStaleAfter is how long a snapshot stays fresh before the next
// lookup forces a rescan.
const DefaultStaleAfter = 5 * time.Minute

// Scanner produces the candidate files for a set of roots. Implemented by
// *scanner.Scanner.
type Scanner interface {
	Scan(ctx context.Context, rts []roots.SearchRoot) (*scanner.Result, error)
}

// Cache memoizes the most recent scan. It holds exactly one live snapshot,
// published by atomic replacement so readers always observe a complete,
// consistent view. Rebuilds are collapsed through singleflight: concurrent
// callers during a rebuild share the in-progress result instead of
// triggering duplicate filesystem walks.
type Cache struct {
	scanner    Scanner
	rootSet    *roots.Set
	staleAfter time.Duration
	logger     *slog.Logger

	snapshot atomic.Pointer[types.Snapshot]
	group    singleflight.Group
}

// Option configures a Cache.
type Option func(*Cache)

// WithStaleAfter overrides the staleness window.
func WithStaleAfter(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.staleAfter = d
		}
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Cache over the given root set and scanner.
func New(rootSet *roots.Set, sc Scanner, opts ...Option) *Cache {
	c := &Cache{
		scanner:    sc,
		rootSet:    rootSet,
		staleAfter: DefaultStaleAfter,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrBuild returns the cached snapshot when its fingerprint still
// matches the scannable roots and it is younger than the staleness
// window; otherwise it rescans and atomically replaces the snapshot.
func (c *Cache) GetOrBuild(ctx context.Context) (*types.Snapshot, error) {
	rts := c.rootSet.Scannable()
	fp := Fingerprint(rts)

	if snap := c.fresh(fp); snap != nil {
		return snap, nil
	}

	v, err, _ := c.group.Do(fp, func() (interface{}, error) {
		// A caller that queued behind the rebuild finds the result here.
		if snap := c.fresh(fp); snap != nil {
			return snap, nil
		}
		return c.rebuild(ctx, rts, fp)
	})
	if err != nil {
		return nil, err
	}
	return v.(*types.Snapshot), nil
}

// Invalidate drops the live snapshot so the next GetOrBuild rebuilds
// regardless of staleness. Called whenever the root set mutates.
func (c *Cache) Invalidate() {
	c.snapshot.Store(nil)
}

// Current returns the live snapshot without triggering a rebuild, or nil
// when none has been built yet.
func (c *Cache) Current() *types.Snapshot {
	return c.snapshot.Load()
}

// fresh returns the live snapshot if it matches fp and is within the
// staleness window.
func (c *Cache) fresh(fp string) *types.Snapshot {
	snap := c.snapshot.Load()
	if snap == nil {
		return nil
	}
	if snap.RootsFingerprint != fp || time.Since(snap.BuiltAt) >= c.staleAfter {
		return nil
	}
	return snap
}

func (c *Cache) rebuild(ctx context.Context, rts []roots.SearchRoot, fp string) (*types.Snapshot, error) {
	start := time.Now()
	result, err := c.scanner.Scan(ctx, rts)
	if err != nil {
		return nil, err
	}

	snap := &types.Snapshot{
		RootsFingerprint: fp,
		Files:            result.Files,
		Warnings:         result.Warnings,
		BuiltAt:          time.Now(),
	}
	c.snapshot.Store(snap)

	c.logger.Debug("index rebuilt",
		"fingerprint", fp[:12], "files", len(snap.Files),
		"warnings", len(snap.Warnings), "duration", time.Since(start))
	return snap, nil
}
