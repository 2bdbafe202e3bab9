// Package main provides the entry point for the live odds service.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/live-odds/internal/config"
	"github.com/yourusername/live-odds/internal/logger"
	"github.com/yourusername/live-odds/internal/tracing"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile string
	envFile    string
	cfg        *config.Config
	appLog     *logrus.Logger
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to .env file")
	rootCmd.AddCommand(serveCmd, refreshCmd, catalogueCmd)
}

var rootCmd = &cobra.Command{
	Use:   "live-odds",
	Short: "Live cricket odds ingestion service",
	Long:  `Polls the odds provider for in-play cricket matches, normalizes the encoded odds and serves them over HTTP.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd.Context())
	},
	SilenceUsage: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func setup(ctx context.Context) error {
	if err := config.LoadDotEnv(envFile); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}

	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if cfg.AWS.SecretsEnabled {
		secretsCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := config.LoadSecretsFromAWS(secretsCtx, cfg); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	appLog = logger.NewLogger(logger.Options{
		Level:  cfg.App.LogLevel,
		Format: cfg.App.LogFormat,
		File:   cfg.App.LogFile,
	})
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"log_level":   cfg.App.LogLevel,
		"version":     cfg.App.Version,
		"commit":      GitCommit,
	}).Debug("Configuration loaded")

	if Version != "dev" {
		cfg.App.Version = Version
	}

	return tracing.Initialize(tracing.Config{
		ServiceName:    cfg.App.Name,
		ServiceVersion: cfg.App.Version,
		Enabled:        cfg.Tracing.Enabled,
		SamplingRate:   cfg.Tracing.SamplingRate,
		DaemonAddr:     cfg.Tracing.DaemonAddr,
	}, appLog)
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Run one live odds refresh and write the snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDependencies(cfg, appLog, nil)
		if err != nil {
			return err
		}
		defer deps.Close()

		results, err := deps.orchestrator.Run(cmd.Context())
		if err != nil {
			return fmt.Errorf("refresh failed: %w", err)
		}

		if stats, ok := deps.orchestrator.LastRunStats(); ok {
			fmt.Println(stats.String())
		}
		fmt.Printf("Wrote %d live matches to %s\n", len(results), cfg.Storage.LivePath())
		return nil
	},
}

var catalogueCmd = &cobra.Command{
	Use:   "catalogue",
	Short: "Fetch the match listing and write the catalogue file",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDependencies(cfg, appLog, nil)
		if err != nil {
			return err
		}
		defer deps.Close()

		entries, err := deps.catalogue.Refresh(cmd.Context())
		if err != nil {
			return fmt.Errorf("catalogue refresh failed: %w", err)
		}

		live := 0
		for _, e := range entries {
			if e.Live {
				live++
			}
		}
		fmt.Printf("Wrote %d matches (%d live) to %s\n", len(entries), live, cfg.Storage.CataloguePath())
		return nil
	},
}
