// Package storage persists the configured search roots and user settings
// across restarts.
//
// The backing store is SQLite. Two drivers are supported, selected at
// build time: mattn/go-sqlite3 when building with CGO, and the pure Go
// modernc.org/sqlite otherwise. The schema is applied through ordered
// migrations on open.
//
// The engine core never touches this package directly; the CLI and HTTP
// layers load the root set at startup and write back after mutations.
package storage
