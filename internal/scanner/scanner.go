package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"

	"github.com/vsivadasan/bookscout/internal/roots"
	"github.com/vsivadasan/bookscout/pkg/types"
)

const (
	// DefaultWorkers caps how many roots are walked concurrently. Kept low
	// so slow network-mounted volumes don't get hammered.
	DefaultWorkers = 4

	// DefaultMaxFiles bounds the total number of files a single scan may
	// collect.
	DefaultMaxFiles = 100000
)

// Config contains scanner tuning knobs.
type Config struct {
	Workers  int // concurrent root walks (default: DefaultWorkers)
	MaxFiles int // total file cap per scan (default: DefaultMaxFiles)
}

// Result is the outcome of one scan pass: the discovered files in
// canonical order plus every non-fatal failure hit along the way.
type Result struct {
	Files    []types.BookFile
	Warnings []types.ScanWarning
}

// Scanner walks search roots and enumerates supported ebook files.
type Scanner struct {
	workers  int
	maxFiles int
	logger   *slog.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a Scanner. A nil config uses the defaults.
func New(config *Config, opts ...Option) *Scanner {
	s := &Scanner{
		workers:  DefaultWorkers,
		maxFiles: DefaultMaxFiles,
		logger:   slog.Default(),
	}
	if config != nil {
		if config.Workers > 0 {
			s.workers = config.Workers
		}
		if config.MaxFiles > 0 {
			s.maxFiles = config.MaxFiles
		}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// rootResult holds the raw output of a single root's walk before merging.
type rootResult struct {
	files    []walkedFile
	warnings []types.ScanWarning
}

// Scan walks every given root and returns the merged, deduplicated file
// list. The roots are expected to be enabled, existing, and readable; the
// caller filters them via roots.Set.Scannable.
//
// A context deadline bounds the walk: on expiry the files found so far are
// returned along with a warning, never an error.
func (s *Scanner) Scan(ctx context.Context, rts []roots.SearchRoot) (*Result, error) {
	if len(rts) == 0 {
		return &Result{}, nil
	}

	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return nil, fmt.Errorf("failed to create scan pool: %w", err)
	}
	defer pool.Release()

	// Shared countdown so runaway trees stop doing I/O once the cap is hit.
	// The deterministic cut happens again after merging.
	var budget atomic.Int64
	budget.Store(int64(s.maxFiles))

	perRoot := make([]rootResult, len(rts))
	var wg sync.WaitGroup

	for i, root := range rts {
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			perRoot[i] = s.walkRoot(ctx, root, &budget)
		})
		if submitErr != nil {
			wg.Done()
			perRoot[i] = rootResult{warnings: []types.ScanWarning{{
				Path:   root.Path,
				Reason: fmt.Sprintf("scan not scheduled: %v", submitErr),
			}}}
		}
	}
	wg.Wait()

	result := s.merge(rts, perRoot)
	s.logger.Debug("scan complete",
		"roots", len(rts), "files", len(result.Files), "warnings", len(result.Warnings))
	return result, nil
}

// merge imposes the canonical order: roots by insertion order, files
// within a root by filename (case-insensitive) then absolute path, with
// cross-root duplicates removed by resolved real path. First root wins.
func (s *Scanner) merge(rts []roots.SearchRoot, perRoot []rootResult) *Result {
	result := &Result{}
	seen := make(map[string]struct{})

	for i := range rts {
		rr := perRoot[i]
		result.Warnings = append(result.Warnings, rr.warnings...)

		sort.Slice(rr.files, func(a, b int) bool {
			fa := strings.ToLower(rr.files[a].file.Filename)
			fb := strings.ToLower(rr.files[b].file.Filename)
			if fa != fb {
				return fa < fb
			}
			return rr.files[a].file.AbsolutePath < rr.files[b].file.AbsolutePath
		})

		for _, wf := range rr.files {
			if _, dup := seen[wf.realPath]; dup {
				continue
			}
			seen[wf.realPath] = struct{}{}
			result.Files = append(result.Files, wf.file)
		}
	}

	if len(result.Files) > s.maxFiles {
		result.Files = result.Files[:s.maxFiles]
		result.Warnings = append(result.Warnings, types.ScanWarning{
			Path:   "",
			Reason: fmt.Sprintf("file limit reached, results truncated to %d entries", s.maxFiles),
		})
	}
	return result
}
