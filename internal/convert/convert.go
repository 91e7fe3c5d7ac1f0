// Package convert wraps Calibre's ebook-convert tool to prepare books
// for Kindle delivery. It is a thin subprocess wrapper; when Calibre is
// not installed the input file is copied through unchanged.
package convert

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// conversionTimeout bounds a single ebook-convert invocation.
const conversionTimeout = 5 * time.Minute

// Converter runs format conversions in a private temp directory. Safe
// for concurrent use; every call gets a unique output name.
type Converter struct {
	binary string
	logger *slog.Logger

	mu      sync.Mutex
	tempDir string
	seq     atomic.Uint64
}

// New creates a Converter using the given ebook-convert binary name or
// path. An empty binary defaults to "ebook-convert" on PATH.
func New(binary string, logger *slog.Logger) *Converter {
	if binary == "" {
		binary = "ebook-convert"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Converter{binary: binary, logger: logger}
}

// Available reports whether the Calibre binary can be found.
func (c *Converter) Available() bool {
	_, err := exec.LookPath(c.binary)
	return err == nil
}

// ForKindle converts the file at path into a Kindle-compatible form and
// returns the path of the produced file:
//
//   - .epub goes through the EPUB→MOBI→EPUB chain, which normalizes
//     books that Kindle's importer rejects
//   - .mobi/.azw/.azw3 convert to EPUB
//   - everything else is copied through unchanged
func (c *Converter) ForKindle(ctx context.Context, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("input file does not exist: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !c.Available() {
		c.logger.Warn("calibre not available, copying without conversion", "file", path)
		return c.copyThrough(path, ext)
	}

	switch ext {
	case ".epub":
		mobi, err := c.run(ctx, path, c.tempName(path, ".mobi"))
		if err != nil {
			return "", fmt.Errorf("epub to mobi conversion failed: %w", err)
		}
		out, err := c.run(ctx, mobi, c.tempName(path, "_final.epub"))
		if err != nil {
			return "", fmt.Errorf("mobi to epub conversion failed: %w", err)
		}
		return out, nil
	case ".mobi", ".azw", ".azw3":
		out, err := c.run(ctx, path, c.tempName(path, ".epub"))
		if err != nil {
			return "", fmt.Errorf("mobi to epub conversion failed: %w", err)
		}
		return out, nil
	default:
		return c.copyThrough(path, ext)
	}
}

// run invokes ebook-convert with format-specific tuning flags.
func (c *Converter) run(ctx context.Context, input, output string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, conversionTimeout)
	defer cancel()

	args := []string{input, output}
	inExt := strings.ToLower(filepath.Ext(input))
	outExt := strings.ToLower(filepath.Ext(output))
	switch {
	case inExt == ".epub" && outExt == ".mobi":
		args = append(args, "--output-profile", "kindle", "--mobi-file-type", "new")
	case inExt == ".mobi" && outExt == ".epub":
		args = append(args, "--output-profile", "tablet", "--epub-version", "2")
	}

	cmd := exec.CommandContext(ctx, c.binary, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("conversion timed out after %s", conversionTimeout)
		}
		return "", fmt.Errorf("ebook-convert failed: %v: %s", err, strings.TrimSpace(string(out)))
	}
	return output, nil
}

func (c *Converter) copyThrough(path, ext string) (string, error) {
	dst := c.tempName(path, ext)
	in, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return "", fmt.Errorf("failed to copy file: %w", err)
	}
	return dst, nil
}

// tempName places a derived filename inside the converter's temp dir,
// creating the dir on first use. A sequence number keeps concurrent
// conversions of the same input from colliding on one output path.
func (c *Converter) tempName(original, suffix string) string {
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	name := fmt.Sprintf("%s_converted_%d%s", base, c.seq.Add(1), suffix)
	return filepath.Join(c.ensureTempDir(), name)
}

func (c *Converter) ensureTempDir() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tempDir == "" {
		dir, err := os.MkdirTemp("", "bookscout_convert_")
		if err != nil {
			// Never remember the shared system temp dir; Cleanup would
			// otherwise delete it.
			c.logger.Warn("failed to create temp directory", "err", err)
			return os.TempDir()
		}
		c.tempDir = dir
	}
	return c.tempDir
}

// Cleanup removes the converter's temp directory and everything in it.
func (c *Converter) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tempDir == "" {
		return
	}
	if err := os.RemoveAll(c.tempDir); err != nil {
		c.logger.Warn("failed to clean up temp directory", "dir", c.tempDir, "err", err)
	}
	c.tempDir = ""
}
