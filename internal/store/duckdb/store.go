// Package duckdb backs the demo dataset with an in-process DuckDB
// database. Every process start seeds a fresh in-memory instance, so the
// data is always the canonical thirty rows.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/marcboeker/go-duckdb/v2"

	"github.com/querydeck/querydeck/internal/dataset"
	"github.com/querydeck/querydeck/internal/store"
)

type Store struct {
	db *sql.DB
}

// Open creates an in-memory DuckDB instance and seeds the demo tables.
func Open(ctx context.Context) (*Store, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	if err := bootstrap(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func bootstrap(ctx context.Context, db *sql.DB) error {
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
		return fmt.Errorf("duckdb ping: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
