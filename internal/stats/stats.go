// Package stats derives collection-wide metrics from an index snapshot.
package stats

import "github.com/vsivadasan/bookscout/pkg/types"

// Compute folds a snapshot into collection statistics: total file count,
// total bytes, and per-format counts. An empty or nil snapshot yields
// all-zero stats. Pure; safe to call from any goroutine.
func Compute(snap *types.Snapshot) types.CollectionStats {
	cs := types.CollectionStats{
		ByFormat: make(map[types.Format]uint64),
	}
	if snap == nil {
		return cs
	}
	for _, f := range snap.Files {
		cs.TotalFiles++
		cs.TotalBytes += f.SizeBytes
		cs.ByFormat[f.Format]++
	}
	return cs
}
