package types

import (
	"path/filepath"
	"strings"
	"time"
)

// Format identifies a supported ebook file format.
type Format string

// Supported ebook formats. Files with any other extension are skipped
// during a scan.
const (
	FormatPDF  Format = "pdf"
	FormatEPUB Format = "epub"
	FormatMOBI Format = "mobi"
	FormatAZW  Format = "azw"
	FormatAZW3 Format = "azw3"
	FormatDJVU Format = "djvu"
	FormatFB2  Format = "fb2"
	FormatTXT  Format = "txt"
)

// AllFormats lists every supported format in a stable order.
var AllFormats = []Format{
	FormatPDF, FormatEPUB, FormatMOBI, FormatAZW,
	FormatAZW3, FormatDJVU, FormatFB2, FormatTXT,
}

// ParseFormat classifies a file extension (with or without leading dot,
// any case) against the supported set. ok is false for anything else.
func ParseFormat(ext string) (Format, bool) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, f := range AllFormats {
		if string(f) == ext {
			return f, true
		}
	}
	return "", false
}

// Ext returns the format's file extension including the leading dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// BookFile is an immutable snapshot of a single discovered ebook file.
// Identity is AbsolutePath; entries are re-derived on every scan.
type BookFile struct {
	AbsolutePath string
	Filename     string
	Format       Format
	SizeBytes    uint64
	ModifiedAt   time.Time
	OwnerRoot    string // normalized path of the search root that produced this file
}

// Title derives the comparison title from the filename: extension
// stripped, separator runes folded to spaces, whitespace collapsed,
// lower-cased.
func (b BookFile) Title() string {
	name := strings.TrimSuffix(b.Filename, filepath.Ext(b.Filename))
	return NormalizeTitle(name)
}

// NormalizeTitle folds filename separators to spaces, collapses runs of
// whitespace, and lower-cases the result. It is the canonical form both
// queries and titles are reduced to before matching.
func NormalizeTitle(s string) string {
	replaced := strings.Map(func(r rune) rune {
		switch r {
		case '_', '-', '.':
			return ' '
		}
		return r
	}, s)
	return strings.ToLower(strings.Join(strings.Fields(replaced), " "))
}
