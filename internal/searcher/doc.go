// Package searcher ranks the cached file index against free-text queries.
//
// A search scores every file in the current snapshot with the match
// package, drops candidates below the similarity threshold, and sorts the
// survivors: score descending, then filename ascending (case-insensitive),
// then absolute path ascending. The tie-break is part of the contract:
// for a fixed snapshot and query the result order is reproducible.
//
// Responses are memoized in a small LRU keyed by the snapshot fingerprint
// and the request parameters, so repeating a query against an unchanged
// index skips the scoring pass entirely.
package searcher
