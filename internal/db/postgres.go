package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when a row or document does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrNoRowsAffected is returned when a conditional update matched nothing.
	ErrNoRowsAffected = errors.New("no rows affected")
)

// PoolConfig tunes the database/sql connection pool.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultPoolConfig mirrors what a small Supabase instance tolerates.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
	}
}

// OpenPostgres opens and pings a Postgres connection pool.
func OpenPostgres(ctx context.Context, dsn string, pool PoolConfig) (*sqlx.DB, error) {
	if dsn == "" {
		return nil, errors.New("database DSN cannot be empty")
	}
	conn, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlx.Open: %w", err)
	}
	conn.SetMaxOpenConns(pool.MaxOpenConns)
	conn.SetMaxIdleConns(pool.MaxIdleConns)
	conn.SetConnMaxLifetime(pool.ConnMaxLifetime)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return conn, nil
}

// Postgres SQLSTATE codes that mean the schema has not been created yet.
const (
	sqlStateUndefinedTable  = "42P01"
	sqlStateInvalidSchema   = "3F000"
	sqlStateUndefinedColumn = "42703"
)

var schemaMissingMarkers = []string{
	"pgrst205",
	"could not find the table",
	"schema cache",
}

// IsSchemaMissing reports whether err means the application tables do not exist.
// It recognizes Postgres error codes as well as the PostgREST messages Supabase
// returns when a table is absent from the schema cache.
func IsSchemaMissing(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case sqlStateUndefinedTable, sqlStateInvalidSchema, sqlStateUndefinedColumn:
			return true
		}
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range schemaMissingMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return strings.Contains(msg, "relation") && strings.Contains(msg, "does not exist")
}

// withTx runs fn inside a transaction, committing on success and rolling back otherwise.
func withTx(ctx context.Context, conn *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
