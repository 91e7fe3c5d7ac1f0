package searcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsivadasan/bookscout/internal/index"
	"github.com/vsivadasan/bookscout/internal/roots"
	"github.com/vsivadasan/bookscout/internal/scanner"
	"github.com/vsivadasan/bookscout/pkg/types"
)

// countingScanner counts filesystem passes so tests can assert on scan
// side effects.
type countingScanner struct {
	inner *scanner.Scanner
	calls atomic.Int64
}

func (c *countingScanner) Scan(ctx context.Context, rts []roots.SearchRoot) (*scanner.Result, error) {
	c.calls.Add(1)
	return c.inner.Scan(ctx, rts)
}

func newSearcherFixture(t *testing.T, filenames ...string) (*Searcher, *countingScanner) {
	t.Helper()
	dir := t.TempDir()
	for _, name := range filenames {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	set := roots.New()
	require.NoError(t, set.Add(dir))

	sc := &countingScanner{inner: scanner.New(nil)}
	return New(index.New(set, sc)), sc
}

func TestSearchEmptyQuery(t *testing.T) {
	s, sc := newSearcherFixture(t, "book.epub")

	// Separator-only queries normalize to nothing and must be rejected
	// the same way as blank ones.
	for _, query := range []string{"", "   ", "\t\n", "___", "-.-", "_ - ."} {
		_, err := s.Search(context.Background(), NewRequest(query))
		assert.ErrorIs(t, err, types.ErrEmptyQuery)
	}

	// Rejected before any snapshot access: no scan side effects.
	assert.Equal(t, int64(0), sc.calls.Load())
}

func TestSearchInvalidThreshold(t *testing.T) {
	s, _ := newSearcherFixture(t, "book.epub")

	for _, threshold := range []int{-1, 101} {
		req := NewRequest("book")
		req.Threshold = threshold
		_, err := s.Search(context.Background(), req)
		assert.ErrorIs(t, err, types.ErrInvalidThreshold)
	}
}

func TestSearchReturnsRankedResults(t *testing.T) {
	s, _ := newSearcherFixture(t,
		"The_Hobbit-Tolkien.epub",
		"Hobbit_Annotated.pdf",
		"War_and_Peace.epub",
	)

	req := NewRequest("hobbit tolkien")
	req.Threshold = 50

	resp, err := s.Search(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, resp.Results, 2)
	assert.Equal(t, "The_Hobbit-Tolkien.epub", resp.Results[0].File.Filename)
	assert.Equal(t, "Hobbit_Annotated.pdf", resp.Results[1].File.Filename)
	assert.Equal(t, 3, resp.TotalScanned)
	assert.False(t, resp.CacheHit)
}

func TestSearchResponseCache(t *testing.T) {
	s, sc := newSearcherFixture(t, "The_Hobbit-Tolkien.epub")

	req := NewRequest("hobbit")
	first, err := s.Search(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.CacheHit)

	second, err := s.Search(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.Results, second.Results)

	// One filesystem pass serves both requests.
	assert.Equal(t, int64(1), sc.calls.Load())
}

func TestSearchDifferentThresholdMissesCache(t *testing.T) {
	s, _ := newSearcherFixture(t, "The_Hobbit-Tolkien.epub")

	req := NewRequest("hobbit")
	req.Threshold = 10
	_, err := s.Search(context.Background(), req)
	require.NoError(t, err)

	req.Threshold = 90
	resp, err := s.Search(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, resp.CacheHit)
}

func TestSearchSurfacesScanWarnings(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "good.epub"), []byte("x"), 0644))
	require.NoError(t, os.Symlink(filepath.Join(dir, "gone.epub"), filepath.Join(dir, "dangling.epub")))

	set := roots.New()
	require.NoError(t, set.Add(dir))
	s := New(index.New(set, scanner.New(nil)))

	resp, err := s.Search(context.Background(), NewRequest("good"))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Warnings)
}
