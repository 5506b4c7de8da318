// Package store defines the query surface over the seeded demo dataset.
// Backends run arbitrary read statements and hand back fully materialized
// result sets; the dataset is small enough that streaming is not worth it.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Result is a fully materialized query outcome.
type Result struct {
	Columns  []string      `json:"columns"`
	Rows     [][]any       `json:"rows"`
	Duration time.Duration `json:"-"`
}

func (r Result) RowCount() int {
	return len(r.Rows)
}

// Store executes SQL against the seeded dataset.
type Store interface {
	// Query runs sqlText and returns up to rowLimit rows. A rowLimit of
	// zero or below means no limit.
	Query(ctx context.Context, sqlText string, rowLimit int) (Result, error)
	HealthCheck(ctx context.Context) error
	Close() error
}

// Collect drains rows into a Result. Driver byte slices are converted to
// strings so the payload serializes as JSON text rather than base64.
func Collect(rows *sql.Rows) (Result, error) {
	cols, err := rows.Columns()
	if err != nil {
		return Result{}, fmt.Errorf("read columns: %w", err)
	}

	result := Result{Columns: cols, Rows: [][]any{}}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return Result{}, fmt.Errorf("scan row: %w", err)
		}
		result.Rows = append(result.Rows, normalizeValues(values))
	}
	if err := rows.Err(); err != nil {
		return Result{}, fmt.Errorf("iterate rows: %w", err)
	}
	return result, nil
}

func normalizeValues(values []any) []any {
	for i, v := range values {
		if b, ok := v.([]byte); ok {
			values[i] = string(b)
		}
	}
	return values
}

// LimitQuery wraps sqlText in a subselect with a LIMIT clause. The wrapped
// form keeps the original statement intact so ORDER BY inside it survives.
func LimitQuery(sqlText string, rowLimit int) string {
	trimmed := stripTrailingSemicolons(sqlText)
	if rowLimit <= 0 {
		return trimmed
	}
	return fmt.Sprintf("SELECT * FROM (%s) AS q LIMIT %d", trimmed, rowLimit)
}

func stripTrailingSemicolons(sqlText string) string {
	trimmed := strings.TrimSpace(sqlText)
	for strings.HasSuffix(trimmed, ";") {
		trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, ";"))
	}
	return trimmed
}
