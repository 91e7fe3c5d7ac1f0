// Package server exposes the search engine over a small JSON HTTP API.
// Handlers are thin: they bind parameters, call into the core packages,
// and map domain errors to status codes.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vsivadasan/bookscout/internal/config"
	"github.com/vsivadasan/bookscout/internal/convert"
	"github.com/vsivadasan/bookscout/internal/index"
	"github.com/vsivadasan/bookscout/internal/kindle"
	"github.com/vsivadasan/bookscout/internal/roots"
	"github.com/vsivadasan/bookscout/internal/searcher"
	"github.com/vsivadasan/bookscout/internal/storage"
)

// Server wires the HTTP API to the engine components.
type Server struct {
	cfg      *config.Config
	rootSet  *roots.Set
	cache    *index.Cache
	searcher *searcher.Searcher
	store    storage.Store
	conv     *convert.Converter
	sender   *kindle.Sender
	logger   *slog.Logger
}

// New creates a Server. store may be nil, in which case root mutations
// are not persisted.
func New(cfg *config.Config, rootSet *roots.Set, cache *index.Cache,
	srch *searcher.Searcher, store storage.Store, logger *slog.Logger) *Server {

	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:      cfg,
		rootSet:  rootSet,
		cache:    cache,
		searcher: srch,
		store:    store,
		conv:     convert.New(cfg.CalibreBinary, logger),
		sender:   kindle.NewSender(cfg, logger),
		logger:   logger,
	}
}

// BuildRouter constructs the gin engine with all routes registered.
func (s *Server) BuildRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.POST("/search", s.handleSearch)

	r.GET("/directories", s.handleListDirectories)
	r.POST("/directories/add", s.handleAddDirectory)
	r.POST("/directories/remove", s.handleRemoveDirectory)
	r.POST("/directories/reset", s.handleResetDirectories)
	r.POST("/directories/clear", s.handleClearDirectories)

	r.GET("/stats", s.handleStats)

	r.POST("/kindle/send", s.handleKindleSend)
	r.GET("/kindle/info", s.handleKindleInfo)

	r.GET("/healthz", s.handleHealth)

	return r
}

// Run serves the API until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.ListenAddr,
		Handler: s.BuildRouter(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.cfg.ListenAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		return srv.Shutdown(context.Background())
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// persistRoots writes the current root list back to storage after a
// mutation and drops the cached snapshot.
func (s *Server) persistRoots(ctx context.Context) {
	s.cache.Invalidate()
	if s.store == nil {
		return
	}
	if err := s.store.SaveRoots(ctx, s.rootSet.Paths()); err != nil {
		s.logger.Error("failed to persist roots", "err", err)
	}
}
