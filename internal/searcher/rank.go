package searcher

import (
	"context"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vsivadasan/bookscout/internal/match"
	"github.com/vsivadasan/bookscout/pkg/types"
)

// Rank scores every file in the snapshot, filters by threshold, and
// returns the survivors in the canonical order. Scoring is fanned out
// across CPUs; each worker writes into fixed slice positions, so the
// outcome is independent of goroutine scheduling.
//
// The cap, when positive, is applied strictly after sorting: the returned
// set is always the top-N of the full ordering.
func Rank(ctx context.Context, query string, snap *types.Snapshot, threshold, limit int) ([]types.ScoredResult, error) {
	normQuery := types.NormalizeTitle(query)
	files := snap.Files
	scores := make([]int, len(files))

	workers := runtime.NumCPU()
	if workers > len(files) {
		workers = len(files)
	}
	if workers > 1 {
		g, gctx := errgroup.WithContext(ctx)
		chunk := (len(files) + workers - 1) / workers
		for start := 0; start < len(files); start += chunk {
			end := start + chunk
			if end > len(files) {
				end = len(files)
			}
			start := start
			g.Go(func() error {
				for i := start; i < end; i++ {
					if i%256 == 0 && gctx.Err() != nil {
						return gctx.Err()
					}
					scores[i] = match.ScoreTitle(normQuery, files[i].Title())
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i := range files {
			scores[i] = match.ScoreTitle(normQuery, files[i].Title())
		}
	}

	results := make([]types.ScoredResult, 0, len(files))
	for i, f := range files {
		if scores[i] >= threshold {
			results = append(results, types.ScoredResult{File: f, Score: scores[i]})
		}
	}

	sort.Slice(results, func(a, b int) bool {
		if results[a].Score != results[b].Score {
			return results[a].Score > results[b].Score
		}
		fa := strings.ToLower(results[a].File.Filename)
		fb := strings.ToLower(results[b].File.Filename)
		if fa != fb {
			return fa < fb
		}
		return results[a].File.AbsolutePath < results[b].File.AbsolutePath
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
