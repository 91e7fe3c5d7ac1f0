// Package match scores a free-text query against a book title derived
// from its filename.
//
// Two independent similarity measures are blended:
//
//   - partial ratio: the best indel-similarity of the shorter string
//     against every equal-length window of the longer one. Rewards exact
//     substring hits, the common case for precise titles.
//   - token-sort ratio: similarity after splitting both strings into
//     tokens, sorting them, and rejoining. Makes word order irrelevant,
//     so "Tolkien Hobbit" still matches "The Hobbit Tolkien".
//
// The final score is a fixed weighted combination favoring the partial
// signal. All functions are pure and rune-safe; nothing here holds state,
// so candidates can be scored from any number of goroutines.
package match
