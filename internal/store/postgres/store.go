// Package postgres backs the demo dataset with an external PostgreSQL
// database. The demo tables are dropped and reseeded on startup so the
// backend behaves like the in-memory one: a fresh copy per process.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/querydeck/querydeck/internal/dataset"
	"github.com/querydeck/querydeck/internal/store"
)

type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
}

type Store struct {
	db *sql.DB
}

// Open connects to Postgres and reseeds the demo tables.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := bootstrap(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// New wraps an existing handle without reseeding. Used in tests.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func bootstrap(ctx context.Context, db *sql.DB) error {
	for _, stmt := range dataset.Reset() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("reset demo schema: %w", err)
		}
	}
	for _, stmt := range dataset.Schema() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create demo schema: %w", err)
		}
	}
	for _, stmt := range dataset.Seed() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
	}
	return nil
}

func (s *Store) Query(ctx context.Context, sqlText string, rowLimit int) (store.Result, error) {
	started := time.Now()
	rows, err := s.db.QueryContext(ctx, store.LimitQuery(sqlText, rowLimit))
	if err != nil {
		return store.Result{}, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	result, err := store.Collect(rows)
	if err != nil {
		return store.Result{}, err
	}
	result.Duration = time.Since(started)
	return result, nil
}

func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres ping: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
