// Package scanner discovers ebook files under a set of search roots.
//
// Each root is walked on its own worker from a bounded pool, since roots
// are disjoint I/O subtrees. The walk is iterative with an explicit stack
// and a visited-directory set keyed by resolved real path, so symlink
// cycles cannot recurse forever. Per-subtree I/O failures are collected as
// warnings and never abort the scan.
//
// Results are merged deterministically: roots in insertion order, files
// within a root by filename then path, duplicates (one root nested in
// another, or symlink aliases) removed by resolved real path. For a fixed
// directory tree the merged output is identical regardless of how the
// concurrent walks interleave.
package scanner
