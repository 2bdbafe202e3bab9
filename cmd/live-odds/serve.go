package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/live-odds/internal/api"
	"github.com/yourusername/live-odds/internal/cache"
	"github.com/yourusername/live-odds/internal/health"
	"github.com/yourusername/live-odds/internal/metrics"
	"github.com/yourusername/live-odds/internal/scheduler"
	"github.com/yourusername/live-odds/internal/stream"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API and run the background refresh",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func serve(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := os.MkdirAll(cfg.Storage.DataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	hub := stream.NewHub(appLog, cfg.Origins())
	deps, err := buildDependencies(cfg, appLog, hub)
	if err != nil {
		return err
	}
	defer deps.Close()

	liveCache := cache.NewLiveOddsCache(deps.orchestrator, cfg.Cache.TTL(), cache.WithRunContext(runCtx))

	checker := health.NewChecker(health.Config{
		ServiceName: cfg.App.Name,
		Version:     cfg.App.Version,
		Logger:      appLog,
	})
	checker.AddCheck("storage", func(context.Context) error {
		_, err := os.Stat(cfg.Storage.DataDir)
		return err
	})
	if deps.redis != nil {
		checker.AddCheck("redis", func(ctx context.Context) error {
			return deps.redis.Ping(ctx).Err()
		})
	}

	routerCfg := api.RouterConfig{
		AllowedOrigins: cfg.Origins(),
		StreamHandler:  hub.ServeWS,
		ServiceName:    cfg.App.Name,
	}
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		routerCfg.MetricsPath = cfg.Metrics.Path
		routerCfg.MetricsHandler = metrics.Handler()
	}

	handler := api.NewHandler(cfg.App.Name, cfg.App.Version, liveCache, deps.catalogue, appLog)
	server := &http.Server{
		Addr:         cfg.ListenAddress(),
		Handler:      api.NewRouter(routerCfg, handler, checker, appLog),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		hub.Run(runCtx)
	}()

	sched := scheduler.NewScheduler(appLog)
	if cfg.Scheduler.Enabled {
		if err := scheduleJobs(sched, liveCache, deps); err != nil {
			return err
		}
		if err := sched.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		go func() {
			if _, err := liveCache.Read(runCtx); err != nil {
				appLog.WithError(err).Warn("Initial live refresh failed")
			}
		}()
	}

	serverErr := make(chan error, 1)
	go func() {
		appLog.WithFields(logrus.Fields{
			"addr":      server.Addr,
			"scheduler": cfg.Scheduler.Enabled,
			"cache_ttl": cfg.Cache.TTL().String(),
		}).Infof("%s listening", cfg.App.Name)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	checker.SetReady(true)

	select {
	case <-ctx.Done():
		appLog.Info("Shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			appLog.WithError(err).Error("HTTP server failed")
		}
	}

	checker.SetReady(false)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLog.WithError(err).Error("HTTP server shutdown error")
	}
	if err := sched.Stop(shutdownCtx); err != nil {
		appLog.WithError(err).Error("Scheduler shutdown error")
	}
	cancel()
	wg.Wait()

	appLog.Infof("%s shut down", cfg.App.Name)
	return nil
}

func scheduleJobs(sched *scheduler.Scheduler, liveCache *cache.LiveOddsCache, deps *dependencies) error {
	interval := time.Duration(cfg.Scheduler.IntervalSeconds) * time.Second
	if err := sched.ScheduleLiveRefresh(liveCache, interval); err != nil {
		return err
	}

	if cfg.Scheduler.CatalogueIntervalSeconds > 0 {
		catInterval := time.Duration(cfg.Scheduler.CatalogueIntervalSeconds) * time.Second
		if err := sched.ScheduleCatalogueRefresh(deps.catalogue, catInterval); err != nil {
			return err
		}
	}
	return nil
}
