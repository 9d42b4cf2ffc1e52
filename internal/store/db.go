package store

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool creates a new pgxpool connection pool. maxConns <= 0 keeps the
// pgx default.
func NewPool(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if maxConns > 0 {
		config.MaxConns = maxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

// RunMigrations executes one schema migration file.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, sql string) error {
	if _, err := pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("exec migration: %w", err)
	}
	return nil
}

// Migrate applies files from fsys in order. applied, if set, is called after
// each file.
func Migrate(ctx context.Context, pool *pgxpool.Pool, fsys fs.ReadFileFS, files []string, applied func(name string)) error {
	for _, name := range files {
		sql, err := fsys.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read migration file %s: %w", name, err)
		}
		if err := RunMigrations(ctx, pool, string(sql)); err != nil {
			return fmt.Errorf("migration %s: %w", name, err)
		}
		if applied != nil {
			applied(name)
		}
	}
	return nil
}

// querier is satisfied by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
