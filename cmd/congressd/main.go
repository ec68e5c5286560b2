// Package main is the entry point for the congressd MCP server.
//
// The binary initializes logging, loads configuration (file, environment,
// and keyring fallback for the API key), wires the shared cache store and
// rate limiter into the Congress.gov client, and serves the MCP protocol
// over stdio. Subcommands cover serving, one-shot health checks, API key
// storage, and version reporting.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"congressd/internal/api"
	"congressd/internal/cache"
	"congressd/internal/config"
	"congressd/internal/health"
	"congressd/internal/logging"
	"congressd/internal/mcp"
	"congressd/internal/metrics"
	"congressd/internal/ratelimit"
	"congressd/internal/search"
)

var version = "1.0.0"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "congressd",
		Short: "MCP server for congressional data from Congress.gov",
		Long: "congressd exposes committees, bills, hearings, and members of\n" +
			"Congress as MCP tools and resources over stdio, with caching and\n" +
			"rate limiting against the Congress.gov API.",
		SilenceUsage: true,
	}
	root.AddCommand(serveCmd(), healthCmd(), setKeyCmd(), versionCmd())
	return root
}

// components wires the shared pieces every command needs.
type components struct {
	cfg     *config.Config
	logger  *logging.AppLogger
	client  *api.Client
	store   *cache.Store
	monitor *health.Monitor
	engine  *search.Engine
	metrics *metrics.Metrics
}

func buildComponents(logger *logging.AppLogger) (*components, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	logger.SetLevel(cfg.LogLevel)

	var backend cache.Backend
	switch cfg.CacheBackend {
	case "redis":
		backend = cache.NewRedisBackend(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		logger.Info("using redis cache backend", "addr", cfg.RedisAddr)
	default:
		backend = cache.NewMemoryBackend()
	}

	store := cache.NewStore(backend, map[string]time.Duration{
		cache.ClassCommittee: cfg.TTLFor(cache.ClassCommittee),
		cache.ClassHearing:   cfg.TTLFor(cache.ClassHearing),
		cache.ClassBill:      cfg.TTLFor(cache.ClassBill),
		cache.ClassMember:    cfg.TTLFor(cache.ClassMember),
		cache.ClassDefault:   cfg.TTLFor(cache.ClassDefault),
		cache.ClassHealth:    30 * time.Second,
	})

	limiter := ratelimit.New(cfg.RequestsPerHour, cfg.RequestsPerMinute)
	m := metrics.New()
	client := api.NewClient(cfg.BaseURL, cfg.APIKey, store, limiter, m, logger)

	return &components{
		cfg:     cfg,
		logger:  logger,
		client:  client,
		store:   store,
		monitor: health.NewMonitor(cfg, client, store, logger),
		engine:  search.NewEngine(client, logger),
		metrics: m,
	}, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the MCP protocol over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.NewAppLogger()
			c, err := buildComponents(logger)
			if err != nil {
				logger.Error("startup failed", "error", err)
				return err
			}

			srv := mcp.NewServer(c.cfg, c.logger, c.client, c.engine, c.monitor, c.metrics)
			logger.Info("starting congressd", "version", version)
			return srv.Start()
		},
	}
}

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Run the health checks once and print the report",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.NewAppLogger()
			c, err := buildComponents(logger)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			report, err := c.monitor.Report(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("status: %s\n", report.Status)
			for _, check := range report.Checks {
				fmt.Printf("  %s: %s", check.Name, check.Status)
				if check.Detail != "" {
					fmt.Printf(" (%s)", check.Detail)
				}
				fmt.Println()
			}
			if report.Status == health.StatusUnhealthy {
				os.Exit(1)
			}
			return nil
		},
	}
}

func setKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-key <api-key>",
		Short: "Store the Congress.gov API key in the system keyring",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.StoreAPIKey(args[0]); err != nil {
				return fmt.Errorf("storing API key: %w", err)
			}
			fmt.Println("API key stored.")
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the congressd version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("congressd %s\n", version)
		},
	}
}
