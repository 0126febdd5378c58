package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/jonathan/prospect-scorer/internal/db"
	"github.com/jonathan/prospect-scorer/internal/ranking"
	"github.com/jonathan/prospect-scorer/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve ranking, explanation and CSV export over HTTP",
	Long:  "Starts the HTTP API backed by PostgreSQL. Jobs are loaded per request and fresh scores are saved back.",
	RunE:  runServe,
}

var (
	servePort        int
	serveDatabaseURL string
	serveMigrate     bool
)

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (defaults to config server.port)")
	serveCmd.Flags().StringVar(&serveDatabaseURL, "database-url", "", "PostgreSQL URL (defaults to config database_url)")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "Create the tables before serving")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	databaseURL := serveDatabaseURL
	if databaseURL == "" {
		databaseURL = cfg.DatabaseURL
	}
	if databaseURL == "" {
		return errors.New("database URL is required: set --database-url, database_url or DATABASE_URL")
	}
	port := cfg.Server.Port
	if cmd.Flags().Changed("port") {
		port = servePort
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer store.Close()
	if serveMigrate {
		if err := store.Migrate(ctx); err != nil {
			return err
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := ranking.NewMetrics()
	if err := metrics.Register(registry); err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}
	svc, err := newService(metrics)
	if err != nil {
		return err
	}

	srv := server.New(store, svc, server.Config{
		Port:            port,
		DefaultPageSize: cfg.Ranking.DefaultPageSize,
		RateLimit:       cfg.RateLimiterConfig(),
		Gatherer:        registry,
		Logger:          log,
	})
	return srv.Run(ctx)
}
