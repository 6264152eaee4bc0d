// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/permcatalog/edu-catalog/internal/buildinfo"
	"github.com/permcatalog/edu-catalog/internal/config"
	"github.com/permcatalog/edu-catalog/internal/dataset"
	"github.com/permcatalog/edu-catalog/internal/logger"
	"github.com/permcatalog/edu-catalog/internal/metrics"
	"github.com/permcatalog/edu-catalog/internal/r2client"
	"github.com/permcatalog/edu-catalog/internal/sentry"
	"github.com/permcatalog/edu-catalog/internal/web"
)

// Application manages the application lifecycle and dependencies.
type Application struct {
	cfg      *config.Config
	logger   *logger.Logger
	metrics  *metrics.Metrics
	registry *prometheus.Registry
	store    *dataset.Store
	router   *gin.Engine
	server   *http.Server
}

// Initialize creates and initializes a new application with all dependencies.
// The first dataset load happens here; when it fails and no reload interval
// is configured the error is returned, otherwise the server starts not ready
// and the watcher keeps retrying.
func Initialize(ctx context.Context, cfg *config.Config) (*Application, error) {
	log := logger.NewWithOptions(logger.Options{
		Level:               cfg.LogLevel,
		Writer:              os.Stdout,
		BetterStackToken:    cfg.BetterStackToken,
		BetterStackEndpoint: cfg.BetterStackEndpoint,
	})

	log = log.WithField("service", "edu-catalog")
	if host, err := os.Hostname(); err == nil && host != "" {
		log = log.WithField("instance_id", host)
	}

	// Package-level slog.*Context calls pick up request_id and region too.
	slog.SetDefault(log.Logger)

	log.Info("Initializing application...")
	if cfg.BetterStackToken != "" {
		log.WithField("endpoint", cfg.BetterStackEndpoint).Info("Better Stack logging enabled")
	}

	if err := sentry.Initialize(sentry.Config{
		Token:       cfg.SentryToken,
		Host:        cfg.SentryHost,
		Environment: cfg.SentryEnvironment,
		Release:     buildinfo.Release(),
		SampleRate:  cfg.SentrySampleRate,
	}); err != nil {
		log.WithError(err).Warn("Sentry initialization failed, error tracking disabled")
	} else if sentry.IsEnabled() {
		log.WithField("environment", cfg.SentryEnvironment).Info("Sentry error tracking enabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewBuildInfoCollector(),
	)
	m := metrics.New(registry)
	m.ObserveLogDrops(log.Dropped)

	src, err := newSource(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("dataset source: %w", err)
	}
	store := dataset.NewStore(src, cfg.PinnedRegions, log, m)

	loadCtx, cancel := context.WithTimeout(ctx, config.DatasetLoad)
	_, err = store.Reload(loadCtx)
	cancel()
	if err != nil {
		if cfg.ReloadInterval <= 0 {
			return nil, fmt.Errorf("initial dataset load: %w", err)
		}
		log.WithError(err).Warn("Initial dataset load failed, serving not ready until a reload succeeds")
	}

	handler, err := web.New(store, web.Options{
		DefaultRegion:    cfg.DefaultRegion,
		VocationalPolicy: cfg.VocationalPolicy,
		DatastarURL:      cfg.DatastarURL,
	}, log, m)
	if err != nil {
		return nil, fmt.Errorf("web: %w", err)
	}

	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	app := &Application{
		cfg:      cfg,
		logger:   log,
		metrics:  m,
		registry: registry,
		store:    store,
	}
	app.router = app.newRouter(handler)

	app.server = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.router,
		ReadHeaderTimeout: config.HTTPRead,
		ReadTimeout:       config.HTTPRead,
		WriteTimeout:      config.HTTPWrite,
		IdleTimeout:       config.HTTPIdle,
	}

	log.WithField("dataset", store.Describe()).Info("Initialization complete")
	return app, nil
}

// newSource builds the dataset source selected by configuration.
func newSource(ctx context.Context, cfg *config.Config) (dataset.Source, error) {
	switch cfg.DataSource {
	case config.SourceFile:
		return dataset.NewFileSource(cfg.DataPath, "", cfg.DataCharset)
	case config.SourceSQLite:
		return dataset.NewFileSource(cfg.DataPath, dataset.FormatSQLite, "")
	case config.SourceR2:
		client, err := r2client.New(ctx, cfg.R2())
		if err != nil {
			return nil, err
		}
		return &dataset.R2Source{Store: client, Key: cfg.R2ObjectKey}, nil
	default:
		return nil, fmt.Errorf("unknown data source %q", cfg.DataSource)
	}
}

func (a *Application) newRouter(handler *web.Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if sentry.IsEnabled() {
		router.Use(sentry.Middleware())
	}
	router.Use(requestIDMiddleware())
	router.Use(securityHeadersMiddleware(a.cfg.DatastarURL))
	router.Use(loggingMiddleware(a.logger, a.metrics))

	handler.Register(router)

	router.GET("/livez", a.livenessCheck)
	router.HEAD("/livez", a.livenessCheck)
	router.GET("/readyz", a.readinessCheck)
	router.HEAD("/readyz", a.readinessCheck)
	router.GET("/metrics",
		metricsAuthMiddleware(basicAuth{
			enabled:  a.cfg.MetricsAuthEnabled,
			username: a.cfg.MetricsUsername,
			password: a.cfg.MetricsPassword,
		}),
		gin.WrapH(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))

	return router
}

func (a *Application) livenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "alive",
		"version": buildinfo.Release(),
	})
}

// readinessCheck reports ready once a dataset snapshot is active.
func (a *Application) readinessCheck(c *gin.Context) {
	snap, err := a.store.Snapshot()
	if err != nil {
		a.logger.Debug("Readiness check: no dataset loaded yet")
		c.Header("Retry-After", "5")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "dataset not loaded",
		})
		return
	}

	ds := gin.H{
		"source":    snap.Source,
		"version":   snap.Version,
		"regions":   len(snap.Regions),
		"rows":      snap.Dataset.Count(),
		"loaded_at": snap.LoadedAt.UTC().Format(time.RFC3339),
	}
	// Publish metadata (built-at, regions, rows, source) of a remote catalog.
	if len(snap.Meta) > 0 {
		ds["metadata"] = snap.Meta
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "dataset": ds})
}

// Run serves HTTP and watches the dataset until SIGINT/SIGTERM, then shuts
// down gracefully.
//
// Shutdown order: stop the watcher, drain HTTP requests, then flush the
// error tracker and the logger.
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.WithField("port", a.cfg.Port).Info("Starting HTTP server")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		a.store.Watch(gctx, a.cfg.ReloadInterval)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		if ctx.Err() != nil {
			a.logger.Info("Received shutdown signal")
		}
		return a.shutdown()
	})

	err := g.Wait()
	a.flush()
	return err
}

// shutdown stops accepting requests and waits for in-flight ones.
func (a *Application) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	a.logger.Info("Stopping HTTP server...")
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.WithError(err).Error("HTTP server shutdown error")
		return err
	}
	return nil
}

func (a *Application) flush() {
	if sentry.IsEnabled() && !sentry.Flush(config.SentryFlush) {
		a.logger.Warn("Sentry flush timed out")
	}

	a.logger.Info("Shutdown complete")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.logger.Shutdown(ctx); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "logger shutdown: %v\n", err)
	}
}
