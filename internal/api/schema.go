package api

import (
	"fmt"
	"net/http"

	"github.com/querydeck/querydeck/internal/auth"
	"github.com/querydeck/querydeck/internal/dataset"
)

type tableContext struct {
	TableName  string   `json:"table_name"`
	Columns    []string `json:"columns"`
	SampleRows [][]any  `json:"sample_rows"`
}

func handleSchema(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Store == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "STORE_NOT_CONFIGURED", "dataset store is not configured", false, nil)
		return
	}
	if err := requireAnyRole(r, auth.RoleReader, auth.RoleAdmin); err != nil {
		writeError(r.Context(), w, http.StatusForbidden, "FORBIDDEN", err.Error(), false, nil)
		return
	}

	sampleRows := deps.SchemaSampleRows
	if sampleRows <= 0 {
		sampleRows = 10
	}

	tables := make([]tableContext, 0, len(dataset.TableNames()))
	for _, table := range dataset.TableNames() {
		result, err := deps.Store.Query(r.Context(), "SELECT * FROM "+table, sampleRows)
		if err != nil {
			writeError(r.Context(), w, http.StatusInternalServerError, "SCHEMA_FETCH_FAILED", "failed to load schema context", true, map[string]any{"details": err.Error()})
			return
		}
		tables = append(tables, tableContext{
			TableName:  table,
			Columns:    result.Columns,
			SampleRows: result.Rows,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tables":      tables,
		"description": dataset.Description(),
	})
}

func handleOverview(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Store == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "STORE_NOT_CONFIGURED", "dataset store is not configured", false, nil)
		return
	}
	if err := requireAnyRole(r, auth.RoleReader, auth.RoleAdmin); err != nil {
		writeError(r.Context(), w, http.StatusForbidden, "FORBIDDEN", err.Error(), false, nil)
		return
	}

	counts := make(map[string]any, len(dataset.TableNames()))
	for _, table := range dataset.TableNames() {
		value, err := scalar(deps, r, "SELECT COUNT(*) FROM "+table)
		if err != nil {
			writeError(r.Context(), w, http.StatusInternalServerError, "OVERVIEW_FAILED", "failed to aggregate dataset", true, map[string]any{"details": err.Error()})
			return
		}
		counts[table] = value
	}

	totalRevenue, err := scalar(deps, r, "SELECT SUM(amount) FROM orders")
	if err != nil {
		writeError(r.Context(), w, http.StatusInternalServerError, "OVERVIEW_FAILED", "failed to aggregate dataset", true, map[string]any{"details": err.Error()})
		return
	}
	avgOrder, err := scalar(deps, r, "SELECT AVG(amount) FROM orders")
	if err != nil {
		writeError(r.Context(), w, http.StatusInternalServerError, "OVERVIEW_FAILED", "failed to aggregate dataset", true, map[string]any{"details": err.Error()})
		return
	}
	avgSpent, err := scalar(deps, r, "SELECT AVG(total_spent) FROM customers")
	if err != nil {
		writeError(r.Context(), w, http.StatusInternalServerError, "OVERVIEW_FAILED", "failed to aggregate dataset", true, map[string]any{"details": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"row_counts":             counts,
		"total_revenue":          totalRevenue,
		"average_order_value":    avgOrder,
		"average_customer_spent": avgSpent,
	})
}

func scalar(deps Dependencies, r *http.Request, sqlText string) (any, error) {
	result, err := deps.Store.Query(r.Context(), sqlText, 1)
	if err != nil {
		return nil, err
	}
	if result.RowCount() == 0 || len(result.Rows[0]) == 0 {
		return nil, fmt.Errorf("query %q returned no value", sqlText)
	}
	return result.Rows[0][0], nil
}
