// Package index caches the result of directory scans.
//
// The cache owns the system's only piece of shared mutable state: the
// live Snapshot. It is published by atomic replace-on-rebuild, and the
// single-rebuild-in-flight rule is enforced with singleflight, so repeated
// searches against an unchanged root set never touch the filesystem until
// the staleness window expires.
package index
