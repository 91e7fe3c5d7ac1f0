package roots

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vsivadasan/bookscout/pkg/types"
)

// SearchRoot is a configured directory under which ebooks are searched.
// Exists and Readable are probed lazily by Validate so a not-yet-mounted
// volume can be configured ahead of time.
type SearchRoot struct {
	Path     string
	Enabled  bool
	Exists   bool
	Readable bool
}

// Set is the ordered, deduplicated collection of search roots. Paths are
// unique after normalization; insertion order is preserved because it
// determines scan order (ranking is unaffected).
//
// All methods are safe for concurrent use.
type Set struct {
	mu    sync.RWMutex
	roots []SearchRoot
}

// New returns an empty root set.
func New() *Set {
	return &Set{}
}

// NewWithDefaults returns a root set seeded with the platform default
// ebook locations.
func NewWithDefaults() *Set {
	s := New()
	s.ResetToDefaults()
	return s
}

// Normalize converts a root path to its canonical form: absolute and
// cleaned, with any trailing separator stripped. Returns ErrInvalidPath
// for an empty or unresolvable path.
func Normalize(path string) (string, error) {
	if path == "" {
		return "", types.ErrInvalidPath
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrInvalidPath, err)
	}
	return filepath.Clean(abs), nil
}

// Add appends a new root. Adding a path that is already present is a
// no-op, not an error. The path does not have to exist yet.
func (s *Set) Add(path string) error {
	norm, err := Normalize(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.roots {
		if r.Path == norm {
			return nil
		}
	}
	s.roots = append(s.roots, SearchRoot{Path: norm, Enabled: true})
	return nil
}

// Remove deletes a root by normalized-path equality. Removing an absent
// path is a no-op.
func (s *Set) Remove(path string) error {
	norm, err := Normalize(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, r := range s.roots {
		if r.Path == norm {
			s.roots = append(s.roots[:i], s.roots[i+1:]...)
			return nil
		}
	}
	return nil
}

// ResetToDefaults replaces the set with the platform default list.
func (s *Set) ResetToDefaults() {
	defaults := DefaultDirectories()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.roots = s.roots[:0]
	for _, d := range defaults {
		norm, err := Normalize(d)
		if err != nil {
			continue
		}
		dup := false
		for _, r := range s.roots {
			if r.Path == norm {
				dup = true
				break
			}
		}
		if !dup {
			s.roots = append(s.roots, SearchRoot{Path: norm, Enabled: true})
		}
	}
}

// Clear empties the set.
func (s *Set) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roots = s.roots[:0]
}

// Validate probes each root for existence and readability and updates the
// per-root flags. Probe failures are recorded on the root, never returned.
func (s *Set) Validate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.roots {
		s.roots[i].Exists, s.roots[i].Readable = probe(s.roots[i].Path)
	}
}

// probe reports whether path is a readable directory.
func probe(path string) (exists, readable bool) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return false, false
	}
	f, err := os.Open(path)
	if err != nil {
		return true, false
	}
	_ = f.Close()
	return true, true
}

// All returns a copy of every configured root in insertion order.
func (s *Set) All() []SearchRoot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]SearchRoot, len(s.roots))
	copy(out, s.roots)
	return out
}

// Scannable re-probes the set and returns the roots a scanner should
// walk: enabled, existing, and readable, in insertion order.
func (s *Set) Scannable() []SearchRoot {
	s.Validate()

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]SearchRoot, 0, len(s.roots))
	for _, r := range s.roots {
		if r.Enabled && r.Exists && r.Readable {
			out = append(out, r)
		}
	}
	return out
}

// Replace swaps the whole set for the given paths, preserving order and
// dropping duplicates. Used when restoring persisted roots at startup.
func (s *Set) Replace(paths []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.roots = s.roots[:0]
	for _, p := range paths {
		norm, err := Normalize(p)
		if err != nil {
			continue
		}
		dup := false
		for _, r := range s.roots {
			if r.Path == norm {
				dup = true
				break
			}
		}
		if !dup {
			s.roots = append(s.roots, SearchRoot{Path: norm, Enabled: true})
		}
	}
}

// Paths returns the normalized path of every configured root in order.
func (s *Set) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.roots))
	for i, r := range s.roots {
		out[i] = r.Path
	}
	return out
}
