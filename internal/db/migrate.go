package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const initSchemaFile = "migrations/000001_init_schema.up.sql"

// SchemaSQL returns the initialization script, suitable for pasting into the
// Supabase SQL editor when the tables have not been created yet.
func SchemaSQL() string {
	data, err := migrationFiles.ReadFile(initSchemaFile)
	if err != nil {
		// The file is embedded at build time; a read failure is a build defect.
		panic(fmt.Sprintf("embedded schema missing: %v", err))
	}
	return string(data)
}

// Migrate applies all pending up migrations. It returns the resulting schema
// version and whether anything was applied.
func Migrate(ctx context.Context, conn *sql.DB) (uint, bool, error) {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return 0, false, fmt.Errorf("load migrations: %w", err)
	}

	// A dedicated connection keeps m.Close from closing the shared pool.
	dedicated, err := conn.Conn(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("acquire migration connection: %w", err)
	}
	driver, err := postgres.WithConnection(ctx, dedicated, &postgres.Config{})
	if err != nil {
		dedicated.Close()
		return 0, false, fmt.Errorf("postgres migrate driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		dedicated.Close()
		return 0, false, fmt.Errorf("init migrate: %w", err)
	}
	defer m.Close()

	applied := true
	if err := m.Up(); err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			return 0, false, fmt.Errorf("migrate up: %w", err)
		}
		applied = false
	}

	version, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, applied, fmt.Errorf("read schema version: %w", err)
	}
	return version, applied, nil
}
