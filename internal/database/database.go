// Package database owns Flik's PostgreSQL pool, the embedded goose schema and
// the development seed data.
package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"flik/internal/config"
)

//go:embed migrations
var embedMigrations embed.FS

// Connect opens the pool described by cfg and pings it once. The pool is
// closed again when the database is unreachable.
func Connect(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := open(cfg)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres %s:%s: %w", cfg.DBHost, cfg.DBPort, err)
	}

	slog.Info("database connected",
		"host", cfg.DBHost,
		"db", cfg.DBName,
		"max_open_conns", cfg.DBMaxOpenConns,
	)
	return db, nil
}

// open creates the pool without dialing; pgx connects lazily.
func open(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)
	return db, nil
}

// Migrate brings the schema up to the newest embedded migration.
func Migrate(db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, err := goose.GetDBVersion(db)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	slog.Info("database migrations applied", "version", version)
	return nil
}
