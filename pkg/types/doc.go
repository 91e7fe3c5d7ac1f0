// Package types provides shared type definitions for the bookscout engine.
//
// This package defines the domain types used across the core components:
// book files discovered on disk, scored search results, collection
// statistics, and scan warnings.
//
// # Core Types
//
// BookFile is an immutable snapshot of a discovered ebook file:
//
//	file := types.BookFile{
//	    AbsolutePath: "/mnt/books/The_Hobbit-Tolkien.epub",
//	    Filename:     "The_Hobbit-Tolkien.epub",
//	    Format:       types.FormatEPUB,
//	    SizeBytes:    1048576,
//	}
//
// ScoredResult pairs a BookFile with its similarity score against a query:
//
//	result := types.ScoredResult{File: file, Score: 87}
//
// # Formats
//
// The supported ebook formats are a closed set. ParseFormat classifies a
// file extension case-insensitively:
//
//	format, ok := types.ParseFormat(".EPUB") // FormatEPUB, true
//
// Identity of a BookFile is its AbsolutePath. Snapshots are re-derived on
// every scan and never patched in place.
package types
