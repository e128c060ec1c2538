package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/avschaefer/cloudhire-ai-api/internal/config"
	"github.com/avschaefer/cloudhire-ai-api/internal/platform/postgres"
	"github.com/avschaefer/cloudhire-ai-api/internal/store"
	"github.com/avschaefer/cloudhire-ai-api/migrations"
)

// openDatabase connects to Postgres, verifies the connection, and applies
// any pending migrations from the embedded set.
func openDatabase(ctx context.Context, log *slog.Logger, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		closeQuietly(db, log)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if cfg.Migrate {
		if err := runMigrations(ctx, db); err != nil {
			closeQuietly(db, log)
			return nil, err
		}
	}

	log.Info("database connection established")
	return db, nil
}

// runMigrations applies the embedded goose migrations.
func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// newJobStore creates the Postgres-backed job store.
func newJobStore(db *sql.DB) store.JobStore {
	return postgres.NewPostgresJobStore(db)
}

func closeQuietly(db *sql.DB, log *slog.Logger) {
	if err := db.Close(); err != nil {
		log.Error("failed to close database", "error", err)
	}
}
