package types

import "time"

// ScoredResult represents a single search hit with its similarity score.
type ScoredResult struct {
	File  BookFile
	Score int // 0-100
}

// ScanWarning records a non-fatal failure encountered while walking a
// subtree. Warnings are collected, never thrown; a scan that hits
// permission errors still returns everything it could reach.
type ScanWarning struct {
	Path   string
	Reason string
}

// Snapshot is an immutable view of every discovered file at a point in
// time. It is owned by the index cache; one live snapshot exists at a
// time and rebuilds replace it wholesale.
type Snapshot struct {
	RootsFingerprint string
	Files            []BookFile
	Warnings         []ScanWarning
	BuiltAt          time.Time
}

// CollectionStats aggregates collection-wide metrics derived from a
// snapshot. Cheap to recompute, so never cached independently.
type CollectionStats struct {
	TotalFiles uint64
	TotalBytes uint64
	ByFormat   map[Format]uint64
}
