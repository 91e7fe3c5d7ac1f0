package scanner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/vsivadasan/bookscout/internal/roots"
	"github.com/vsivadasan/bookscout/pkg/types"
)

// walkedFile pairs a discovered file with its resolved real path, the key
// used for cross-root deduplication.
type walkedFile struct {
	file     types.BookFile
	realPath string
}

// walkRoot traverses one root iteratively. Directories are tracked by
// resolved real path so a symlink loop is visited at most once. I/O
// failures on a subtree become warnings and the walk continues with the
// remaining siblings.
func (s *Scanner) walkRoot(ctx context.Context, root roots.SearchRoot, budget *atomic.Int64) rootResult {
	var rr rootResult
	visited := make(map[string]struct{})

	stack := []string{root.Path}
	for len(stack) > 0 {
		select {
		case <-ctx.Done():
			rr.warnings = append(rr.warnings, types.ScanWarning{
				Path:   root.Path,
				Reason: "scan deadline exceeded, partial results returned",
			})
			return rr
		default:
		}

		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		real, err := filepath.EvalSymlinks(dir)
		if err != nil {
			rr.warnings = append(rr.warnings, types.ScanWarning{Path: dir, Reason: err.Error()})
			continue
		}
		if _, ok := visited[real]; ok {
			continue
		}
		visited[real] = struct{}{}

		entries, err := os.ReadDir(dir)
		if err != nil {
			rr.warnings = append(rr.warnings, types.ScanWarning{Path: dir, Reason: err.Error()})
			continue
		}

		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())

			if entry.IsDir() {
				stack = append(stack, path)
				continue
			}

			// A symlink may point at a directory; classify by target.
			if entry.Type()&os.ModeSymlink != 0 {
				info, err := os.Stat(path)
				if err != nil {
					rr.warnings = append(rr.warnings, types.ScanWarning{Path: path, Reason: err.Error()})
					continue
				}
				if info.IsDir() {
					stack = append(stack, path)
					continue
				}
			}

			wf, ok, err := classify(path, entry, root.Path)
			if err != nil {
				rr.warnings = append(rr.warnings, types.ScanWarning{Path: path, Reason: err.Error()})
				continue
			}
			if !ok {
				continue
			}

			if budget.Add(-1) < 0 {
				rr.warnings = append(rr.warnings, types.ScanWarning{
					Path:   root.Path,
					Reason: "file limit reached, walk stopped early",
				})
				return rr
			}
			rr.files = append(rr.files, wf)
		}
	}
	return rr
}

// classify turns a directory entry into a walkedFile if its extension is
// in the supported set. Unsupported extensions are skipped, not errors.
func classify(path string, entry os.DirEntry, ownerRoot string) (walkedFile, bool, error) {
	format, ok := types.ParseFormat(strings.ToLower(filepath.Ext(entry.Name())))
	if !ok {
		return walkedFile{}, false, nil
	}

	// Stat follows symlinks so size/mtime describe the target.
	info, err := os.Stat(path)
	if err != nil {
		return walkedFile{}, false, err
	}

	real, err := filepath.EvalSymlinks(path)
	if err != nil {
		real = path
	}

	return walkedFile{
		file: types.BookFile{
			AbsolutePath: path,
			Filename:     entry.Name(),
			Format:       format,
			SizeBytes:    uint64(info.Size()),
			ModifiedAt:   info.ModTime(),
			OwnerRoot:    ownerRoot,
		},
		realPath: real,
	}, true, nil
}
