// Package app assembles the service from its configuration: the hgweb
// adapter at /hg, the file viewer at /files, metrics at /metrics and the
// project/task/item application everywhere else, all behind basic auth.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/vbonduro/hgdesk/internal/auth"
	"github.com/vbonduro/hgdesk/internal/blobstore/local"
	"github.com/vbonduro/hgdesk/internal/config"
	"github.com/vbonduro/hgdesk/internal/db"
	"github.com/vbonduro/hgdesk/internal/dispatch"
	"github.com/vbonduro/hgdesk/internal/hgweb"
	"github.com/vbonduro/hgdesk/internal/metrics"
	"github.com/vbonduro/hgdesk/internal/service"
	"github.com/vbonduro/hgdesk/internal/storage"
	"github.com/vbonduro/hgdesk/internal/store"
	"github.com/vbonduro/hgdesk/internal/web"
	"github.com/vbonduro/hgdesk/internal/web/templates"
	"golang.org/x/sync/errgroup"
)

const (
	hgPrefix      = "/hg"
	filesPrefix   = "/files"
	metricsPrefix = "/metrics"

	shutdownTimeout = 10 * time.Second
)

type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	db      *db.DB
	adapter *hgweb.Adapter
	hg      *hgweb.Process
	metrics *metrics.Metrics
	handler http.Handler
}

// New writes the hgweb config, opens the database and wires every component.
// runner performs `hg init` for the admin endpoints.
func New(cfg *config.Config, runner hgweb.Runner, logger *slog.Logger) (*App, error) {
	hgConfig, err := hgweb.Materialize(cfg.Root, hgweb.ConfigOptions{
		BaseURL:         hgPrefix,
		Style:           cfg.HgStyle,
		RefreshInterval: cfg.HgRefreshInterval,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("hgweb config written", "path", hgConfig)

	creds, err := auth.ParseCredentials(cfg.AuthCredentials)
	if err != nil {
		return nil, fmt.Errorf("invalid AUTH_CREDENTIALS: %w", err)
	}
	if len(creds) == 0 {
		logger.Warn("no credentials configured, every request will be rejected")
	}

	blobs, err := local.NewLocalStore(cfg.FilesDir())
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, logger: logger}

	var upstream *url.URL
	if cfg.HgUpstream != "" {
		upstream, err = url.Parse(cfg.HgUpstream)
		if err != nil {
			return nil, fmt.Errorf("invalid HG_UPSTREAM %q: %w", cfg.HgUpstream, err)
		}
	} else {
		a.hg = &hgweb.Process{
			Bin:        cfg.HgBin,
			ConfigPath: hgConfig,
			Addr:       cfg.HgListen,
			Prefix:     hgPrefix,
			Logger:     logger.With("component", "hgweb"),
		}
		upstream = a.hg.URL()
	}

	a.adapter, err = hgweb.NewAdapter(cfg.RepoDir(), hgPrefix, runner, upstream, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("repository root loaded", "dir", a.adapter.RepoDir(), "repos", len(a.adapter.Repos()))

	a.db, err = db.Open(cfg.DBURI)
	if err != nil {
		return nil, err
	}
	logger.Info("database ready", "dialect", a.db.Dialect().String())

	a.metrics = metrics.New()
	a.metrics.TrackRepositories(func() int { return len(a.adapter.Repos()) })

	projects := service.NewProjectService(store.NewProjectStore(a.db), store.NewTaskStore(a.db), logger)
	items := service.NewItemService(store.NewItemStore(a.db))
	files := storage.New(store.NewObjectStore(a.db), blobs, filesPrefix, logger)

	d := dispatch.New(web.NewServer(projects, items, a.adapter, templates.FS, a.metrics, logger))
	d.Mount(hgPrefix, a.adapter, false)
	d.Mount(filesPrefix, web.NewFilesHandler(files, templates.FS, filesPrefix, cfg.MaxUploadBytes, a.metrics, logger), true)
	d.Mount(metricsPrefix, a.metrics.Handler(), false)

	a.handler = web.RequestLogger(logger, a.metrics, d.Match,
		auth.BasicAuth(creds, cfg.AuthRealm, logger, d))

	return a, nil
}

// Handler is the complete request chain: logging, auth, dispatch.
func (a *App) Handler() http.Handler {
	return a.handler
}

func (a *App) Adapter() *hgweb.Adapter {
	return a.adapter
}

// Run serves HTTP on the configured address, alongside the hg serve child
// and the repository watcher, until ctx is cancelled or the listener fails.
// A failing hg serve or watcher is logged and does not stop the service.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	if a.hg != nil {
		g.Go(func() error {
			if err := a.hg.Run(gctx); err != nil {
				a.logger.Error("hg serve stopped, repository browsing unavailable", "error", err)
			}
			return nil
		})
	}

	if a.cfg.HgWatch {
		g.Go(func() error {
			if err := a.adapter.Watch(gctx); err != nil {
				a.logger.Error("repository watcher stopped", "error", err)
			}
			return nil
		})
	}

	srv := &http.Server{
		Addr:              a.cfg.ListenAddr,
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       5 * time.Minute,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	g.Go(func() error {
		a.logger.Info("starting server", "addr", a.cfg.ListenAddr, "root", a.cfg.Root)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func (a *App) Close() error {
	if err := a.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
