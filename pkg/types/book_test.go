package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		want Format
		ok   bool
	}{
		{"lowercase with dot", ".epub", FormatEPUB, true},
		{"uppercase", ".EPUB", FormatEPUB, true},
		{"mixed case no dot", "Pdf", FormatPDF, true},
		{"azw3", ".azw3", FormatAZW3, true},
		{"djvu", "djvu", FormatDJVU, true},
		{"unsupported", ".docx", "", false},
		{"empty", "", "", false},
		{"just a dot", ".", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseFormat(tt.ext)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatExt(t *testing.T) {
	assert.Equal(t, ".epub", FormatEPUB.Ext())
	assert.Equal(t, ".azw3", FormatAZW3.Ext())
}

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"The_Hobbit-Tolkien", "the hobbit tolkien"},
		{"war.and.peace", "war and peace"},
		{"  Mixed   Spaces ", "mixed spaces"},
		{"already normal", "already normal"},
		{"", ""},
		{"___", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeTitle(tt.in), "input %q", tt.in)
	}
}

func TestBookFileTitle(t *testing.T) {
	f := BookFile{
		AbsolutePath: "/lib/The_Hobbit-Tolkien.epub",
		Filename:     "The_Hobbit-Tolkien.epub",
		Format:       FormatEPUB,
		ModifiedAt:   time.Now(),
	}
	assert.Equal(t, "the hobbit tolkien", f.Title())

	noExt := BookFile{Filename: "README"}
	assert.Equal(t, "readme", noExt.Title())
}
