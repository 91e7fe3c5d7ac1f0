package server

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"

	"github.com/vsivadasan/bookscout/internal/kindle"
	"github.com/vsivadasan/bookscout/internal/searcher"
	"github.com/vsivadasan/bookscout/internal/stats"
	"github.com/vsivadasan/bookscout/pkg/types"
)

// searchResultJSON is the wire shape of one ranked hit.
type searchResultJSON struct {
	Filename  string `json:"filename"`
	Directory string `json:"directory"`
	FullPath  string `json:"full_path"`
	Extension string `json:"extension"`
	Size      string `json:"size"`
	SizeBytes uint64 `json:"size_bytes"`
	Score     int    `json:"score"`
}

func (s *Server) handleSearch(c *gin.Context) {
	query := c.PostForm("query")

	// The configured default is range-checked at load time; zero means
	// match everything, not unset.
	threshold := s.cfg.DefaultThreshold
	if raw := c.PostForm("similarity_threshold"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "similarity_threshold must be an integer"})
			return
		}
		threshold = n
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.ScanTimeout)
	defer cancel()

	req := searcher.NewRequest(query)
	req.Threshold = threshold
	req.Limit = s.cfg.ResultLimit

	resp, err := s.searcher.Search(ctx, req)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, types.ErrEmptyQuery) || errors.Is(err, types.ErrInvalidThreshold) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"success": false, "message": err.Error(), "results": []searchResultJSON{}})
		return
	}

	results := make([]searchResultJSON, 0, len(resp.Results))
	for _, r := range resp.Results {
		results = append(results, toResultJSON(r))
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"results":  results,
		"warnings": warningsJSON(resp.Warnings),
		"stats": gin.H{
			"total_books":   resp.TotalScanned,
			"results_count": len(results),
			"cache_hit":     resp.CacheHit,
			"duration_ms":   resp.Duration.Milliseconds(),
		},
	})
}

func (s *Server) handleListDirectories(c *gin.Context) {
	s.rootSet.Validate()

	all := s.rootSet.All()
	valid := make([]string, 0, len(all))
	invalid := make([]string, 0)
	dirs := make([]gin.H, 0, len(all))
	for _, r := range all {
		dirs = append(dirs, gin.H{
			"path":     r.Path,
			"enabled":  r.Enabled,
			"exists":   r.Exists,
			"readable": r.Readable,
		})
		if r.Exists && r.Readable {
			valid = append(valid, r.Path)
		} else {
			invalid = append(invalid, r.Path)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"directories": dirs,
		"valid":       valid,
		"invalid":     invalid,
		"total":       len(all),
	})
}

func (s *Server) handleAddDirectory(c *gin.Context) {
	dir := c.PostForm("directory")
	if err := s.rootSet.Add(dir); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	s.persistRoots(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"success": true, "directories": s.rootSet.Paths()})
}

func (s *Server) handleRemoveDirectory(c *gin.Context) {
	dir := c.PostForm("directory")
	if err := s.rootSet.Remove(dir); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	s.persistRoots(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"success": true, "directories": s.rootSet.Paths()})
}

func (s *Server) handleResetDirectories(c *gin.Context) {
	s.rootSet.ResetToDefaults()
	s.persistRoots(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"success": true, "directories": s.rootSet.Paths()})
}

func (s *Server) handleClearDirectories(c *gin.Context) {
	s.rootSet.Clear()
	s.persistRoots(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"success": true, "directories": s.rootSet.Paths()})
}

func (s *Server) handleStats(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.ScanTimeout)
	defer cancel()

	snap, err := s.cache.GetOrBuild(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	cs := stats.Compute(snap)
	byFormat := make(map[string]uint64, len(cs.ByFormat))
	for f, n := range cs.ByFormat {
		byFormat[string(f)] = n
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"total_files": cs.TotalFiles,
		"total_bytes": cs.TotalBytes,
		"total_size":  humanize.Bytes(cs.TotalBytes),
		"by_format":   byFormat,
		"built_at":    snap.BuiltAt,
		"warnings":    warningsJSON(snap.Warnings),
	})
}

func (s *Server) handleKindleSend(c *gin.Context) {
	path := c.PostForm("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "path is required"})
		return
	}

	converted, err := s.conv.ForKindle(c.Request.Context(), path)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	if err := s.sender.Send(converted, c.PostForm("subject")); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, kindle.ErrNotConfigured) ||
			errors.Is(err, kindle.ErrUnsupportedFormat) ||
			errors.Is(err, kindle.ErrTooLarge) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleKindleInfo(c *gin.Context) {
	info := s.cfg.Summary()
	info["calibre_available"] = s.conv.Available()
	c.JSON(http.StatusOK, info)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func toResultJSON(r types.ScoredResult) searchResultJSON {
	return searchResultJSON{
		Filename:  r.File.Filename,
		Directory: filepath.Dir(r.File.AbsolutePath),
		FullPath:  r.File.AbsolutePath,
		Extension: r.File.Format.Ext(),
		Size:      humanize.Bytes(r.File.SizeBytes),
		SizeBytes: r.File.SizeBytes,
		Score:     r.Score,
	}
}

func warningsJSON(ws []types.ScanWarning) []gin.H {
	out := make([]gin.H, 0, len(ws))
	for _, w := range ws {
		out = append(out, gin.H{"path": w.Path, "reason": w.Reason})
	}
	return out
}
