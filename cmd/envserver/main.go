package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	corecfg "github.com/envmon-lab/env-server/internal/core/config"
	"github.com/envmon-lab/env-server/internal/core/storage/postgres"
	"github.com/envmon-lab/env-server/internal/ingestion"
	"github.com/envmon-lab/env-server/internal/migrations"
	"github.com/envmon-lab/env-server/internal/query"
	"github.com/envmon-lab/env-server/internal/server"
)

func main() {
	configPath := flag.String("config", "envserver.yaml", "Path to configuration file")
	flag.Parse()

	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Load Configuration (.env first so it can feed ENVSERVER_* vars)
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded config", "server", cfg.Server, "database_type", cfg.Database.Type)

	// 2. Run Database Migrations on a dedicated connection; the adapter
	// refuses to start against a missing schema.
	if err := runMigrations(cfg); err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}

	// 3. Initialize Storage (PostgreSQL)
	dbAdapter, err := postgres.NewAdapter(
		cfg.Database.DSN,
		cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns,
	)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer dbAdapter.Close()

	// 4. Initialize Services
	ingestionSvc := ingestion.NewService(dbAdapter, dbAdapter, cfg.Server.MaxBodySizeMB)
	querySvc := query.NewService(dbAdapter, dbAdapter)

	// 5. Initialize Server
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), dbAdapter.DB(), cfg.Server.Mode)
	ingestionSvc.RegisterRoutes(srv.Engine)
	querySvc.RegisterRoutes(srv.Engine)

	// 6. Start
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Signal handler → triggers the shutdown sequence below.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	// HTTP server blocks until ctx is cancelled.
	if err := srv.Run(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}

func runMigrations(cfg *corecfg.Config) error {
	db, err := migrationDB(cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	return migrations.RunMigrations(db, cfg.Database.AutoMigrate)
}

// migrationDB opens a short-lived connection for migrations. The postgres
// driver is registered by the storage adapter import.
func migrationDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres database: %w", err)
	}

	return db, nil
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
