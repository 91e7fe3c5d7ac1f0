package searcher

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/vsivadasan/bookscout/internal/index"
	"github.com/vsivadasan/bookscout/pkg/types"
)

const (
	// DefaultThreshold is the minimum similarity score a result must reach.
	DefaultThreshold = 60

	// DefaultLimit caps the result set size.
	DefaultLimit = 100

	// DefaultCacheTTL bounds how long a memoized response stays valid.
	DefaultCacheTTL = time.Minute

	// responseCacheSize is the LRU entry limit for memoized responses.
	responseCacheSize = 512
)

// Request contains the parameters for one search.
type Request struct {
	Query     string
	Threshold int           // minimum score in [0,100]
	Limit     int           // result cap; 0 means unlimited
	UseCache  bool          // memoize the response
	CacheTTL  time.Duration // response cache TTL (default DefaultCacheTTL)
}

// NewRequest returns a Request with the default threshold and limit.
func NewRequest(query string) Request {
	return Request{
		Query:     query,
		Threshold: DefaultThreshold,
		Limit:     DefaultLimit,
		UseCache:  true,
	}
}

// Response contains the ranked results and search metadata.
type Response struct {
	Results      []types.ScoredResult
	TotalScanned int // files considered before threshold filtering
	Warnings     []types.ScanWarning
	Duration     time.Duration
	CacheHit     bool
}

// cacheEntry is a memoized response with its expiry.
type cacheEntry struct {
	response  *Response
	expiresAt time.Time
}

// Searcher coordinates snapshot retrieval, scoring, and response caching.
type Searcher struct {
	index  *index.Cache
	cache  *lru.Cache[[32]byte, *cacheEntry]
	logger *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a Searcher over the given index cache.
func New(idx *index.Cache, opts ...Option) *Searcher {
	cache, err := lru.New[[32]byte, *cacheEntry](responseCacheSize)
	if err != nil {
		// Only possible with a non-positive size constant.
		panic(fmt.Sprintf("failed to create response cache: %v", err))
	}

	s := &Searcher{
		index:  idx,
		cache:  cache,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search validates the request, obtains the current snapshot (rebuilding
// it when stale), and ranks it against the query.
//
// A query that is empty after normalization (blank, or separator runes
// only) is rejected with types.ErrEmptyQuery before any snapshot access,
// so it has no scan side effects.
func (s *Searcher) Search(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	if types.NormalizeTitle(req.Query) == "" {
		return nil, types.ErrEmptyQuery
	}
	if req.Threshold < 0 || req.Threshold > 100 {
		return nil, types.ErrInvalidThreshold
	}

	snap, err := s.index.GetOrBuild(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build index: %w", err)
	}

	key := requestKey(snap.RootsFingerprint, req)
	if req.UseCache {
		if entry, ok := s.cache.Get(key); ok && time.Now().Before(entry.expiresAt) {
			resp := *entry.response
			resp.CacheHit = true
			resp.Duration = time.Since(start)
			return &resp, nil
		}
	}

	results, err := Rank(ctx, req.Query, snap, req.Threshold, req.Limit)
	if err != nil {
		return nil, err
	}

	resp := &Response{
		Results:      results,
		TotalScanned: len(snap.Files),
		Warnings:     snap.Warnings,
		Duration:     time.Since(start),
	}

	if req.UseCache {
		ttl := req.CacheTTL
		if ttl <= 0 {
			ttl = DefaultCacheTTL
		}
		s.cache.Add(key, &cacheEntry{response: resp, expiresAt: time.Now().Add(ttl)})
	}

	s.logger.Debug("search complete",
		"query", req.Query, "threshold", req.Threshold,
		"candidates", resp.TotalScanned, "results", len(results),
		"duration", resp.Duration)
	return resp, nil
}

// requestKey hashes the snapshot fingerprint together with every request
// parameter that affects the result.
func requestKey(fingerprint string, req Request) [32]byte {
	return sha256.Sum256([]byte(fmt.Sprintf("%s\x00%s\x00%d\x00%d",
		fingerprint, types.NormalizeTitle(req.Query), req.Threshold, req.Limit)))
}
