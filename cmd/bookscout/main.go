package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"github.com/vsivadasan/bookscout/internal/config"
	"github.com/vsivadasan/bookscout/internal/index"
	"github.com/vsivadasan/bookscout/internal/roots"
	"github.com/vsivadasan/bookscout/internal/scanner"
	"github.com/vsivadasan/bookscout/internal/searcher"
	"github.com/vsivadasan/bookscout/internal/server"
	"github.com/vsivadasan/bookscout/internal/stats"
	"github.com/vsivadasan/bookscout/internal/storage"
	"github.com/vsivadasan/bookscout/pkg/types"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "bookscout",
		Usage:   "Fuzzy ebook search across your library directories",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP search API",
				Action: serveCommand,
			},
			{
				Name:      "search",
				Usage:     "Search the configured roots for a title",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "threshold",
						Aliases: []string{"t"},
						Usage:   "Minimum similarity score (0-100)",
						Value:   searcher.DefaultThreshold,
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results",
						Value:   searcher.DefaultLimit,
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "Show collection statistics",
				Action: statsCommand,
			},
			{
				Name:  "roots",
				Usage: "Manage search root directories",
				Subcommands: []*cli.Command{
					{Name: "list", Usage: "List configured roots", Action: rootsListCommand},
					{Name: "add", Usage: "Add a root directory", ArgsUsage: "<path>", Action: rootsAddCommand},
					{Name: "remove", Usage: "Remove a root directory", ArgsUsage: "<path>", Action: rootsRemoveCommand},
					{Name: "reset", Usage: "Reset roots to platform defaults", Action: rootsResetCommand},
					{Name: "clear", Usage: "Remove every configured root", Action: rootsClearCommand},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func setupLogger(c *cli.Context) error {
	var level slog.Level
	switch strings.ToLower(c.String("log-level")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// application bundles the wired-up engine components shared by every
// command.
type application struct {
	cfg      *config.Config
	store    *storage.SQLiteStore
	rootSet  *roots.Set
	cache    *index.Cache
	searcher *searcher.Searcher
}

func newApplication() (*application, error) {
	cfg := config.Load()

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	store, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx := context.Background()
	rootSet := roots.New()
	persisted, err := store.LoadRoots(ctx)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to load roots: %w", err)
	}
	if len(persisted) > 0 {
		rootSet.Replace(persisted)
	} else {
		rootSet.ResetToDefaults()
		if err := store.SaveRoots(ctx, rootSet.Paths()); err != nil {
			slog.Warn("failed to persist default roots", "err", err)
		}
	}

	sc := scanner.New(&scanner.Config{
		Workers:  cfg.ScanWorkers,
		MaxFiles: cfg.MaxFiles,
	})
	cache := index.New(rootSet, sc, index.WithStaleAfter(cfg.StaleAfter))

	return &application{
		cfg:      cfg,
		store:    store,
		rootSet:  rootSet,
		cache:    cache,
		searcher: searcher.New(cache),
	}, nil
}

func (a *application) close() {
	if err := a.store.Close(); err != nil {
		slog.Warn("failed to close database", "err", err)
	}
}

func serveCommand(c *cli.Context) error {
	app, err := newApplication()
	if err != nil {
		return err
	}
	defer app.close()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(app.cfg, app.rootSet, app.cache, app.searcher, app.store, slog.Default())
	return srv.Run(ctx)
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")

	app, err := newApplication()
	if err != nil {
		return err
	}
	defer app.close()

	req := searcher.NewRequest(query)
	req.Threshold = c.Int("threshold")
	req.Limit = c.Int("limit")

	resp, err := app.searcher.Search(c.Context, req)
	if err != nil {
		return err
	}

	for _, w := range resp.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s: %s\n", w.Path, w.Reason)
	}
	if len(resp.Results) == 0 {
		fmt.Printf("No matches for %q (scanned %d files)\n", query, resp.TotalScanned)
		return nil
	}
	for _, r := range resp.Results {
		fmt.Printf("%3d  %-8s %s  %s\n",
			r.Score, humanize.Bytes(r.File.SizeBytes), r.File.Filename, r.File.AbsolutePath)
	}
	return nil
}

func statsCommand(c *cli.Context) error {
	app, err := newApplication()
	if err != nil {
		return err
	}
	defer app.close()

	snap, err := app.cache.GetOrBuild(c.Context)
	if err != nil {
		return err
	}

	cs := stats.Compute(snap)
	fmt.Printf("Files: %d\n", cs.TotalFiles)
	fmt.Printf("Total size: %s\n", humanize.Bytes(cs.TotalBytes))
	for _, f := range sortedFormats(cs) {
		fmt.Printf("  %-5s %d\n", f, cs.ByFormat[f])
	}
	for _, w := range snap.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s: %s\n", w.Path, w.Reason)
	}
	return nil
}

// sortedFormats returns the formats present in the stats in the stable
// AllFormats order.
func sortedFormats(cs types.CollectionStats) []types.Format {
	out := make([]types.Format, 0, len(cs.ByFormat))
	for _, f := range types.AllFormats {
		if cs.ByFormat[f] > 0 {
			out = append(out, f)
		}
	}
	return out
}

func rootsListCommand(c *cli.Context) error {
	app, err := newApplication()
	if err != nil {
		return err
	}
	defer app.close()

	app.rootSet.Validate()
	for _, r := range app.rootSet.All() {
		state := "ok"
		switch {
		case !r.Exists:
			state = "missing"
		case !r.Readable:
			state = "unreadable"
		}
		fmt.Printf("%-10s %s\n", state, r.Path)
	}
	return nil
}

func rootsAddCommand(c *cli.Context) error {
	return mutateRoots(c, func(app *application) error {
		return app.rootSet.Add(c.Args().First())
	})
}

func rootsRemoveCommand(c *cli.Context) error {
	return mutateRoots(c, func(app *application) error {
		return app.rootSet.Remove(c.Args().First())
	})
}

func rootsResetCommand(c *cli.Context) error {
	return mutateRoots(c, func(app *application) error {
		app.rootSet.ResetToDefaults()
		return nil
	})
}

func rootsClearCommand(c *cli.Context) error {
	return mutateRoots(c, func(app *application) error {
		app.rootSet.Clear()
		return nil
	})
}

func mutateRoots(c *cli.Context, fn func(*application) error) error {
	app, err := newApplication()
	if err != nil {
		return err
	}
	defer app.close()

	if err := fn(app); err != nil {
		return err
	}
	app.cache.Invalidate()
	if err := app.store.SaveRoots(c.Context, app.rootSet.Paths()); err != nil {
		return fmt.Errorf("failed to persist roots: %w", err)
	}
	for _, p := range app.rootSet.Paths() {
		fmt.Println(p)
	}
	return nil
}
