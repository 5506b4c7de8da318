package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/querydeck/querydeck/internal/auth"
	"github.com/querydeck/querydeck/internal/observability"
)

type queryRequest struct {
	SQL      string `json:"sql"`
	RowLimit int    `json:"row_limit"`
}

type queryResponse struct {
	Columns  []string       `json:"columns"`
	Rows     [][]any        `json:"rows"`
	RowCount int            `json:"row_count"`
	Stats    map[string]any `json:"stats"`
	Error    string         `json:"error,omitempty"`
}

// handleQuery runs arbitrary SQL against the seeded dataset. Execution
// failures come back as HTTP 200 with an empty result and an error banner,
// so a bad model-generated statement reads as an empty grid in the UI
// rather than a hard failure.
func handleQuery(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Store == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "STORE_NOT_CONFIGURED", "dataset store is not configured", false, nil)
		return
	}
	if err := requireAnyRole(r, auth.RoleReader, auth.RoleAdmin); err != nil {
		writeError(r.Context(), w, http.StatusForbidden, "FORBIDDEN", err.Error(), false, nil)
		return
	}

	var request queryRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid query request body", false, map[string]any{"details": err.Error()})
		return
	}
	if strings.TrimSpace(request.SQL) == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "SQL_REQUIRED", "sql is required", false, nil)
		return
	}

	result, err := deps.Store.Query(r.Context(), request.SQL, request.RowLimit)
	observability.ObserveQuery(result.Duration, err == nil)
	if err != nil {
		writeJSON(w, http.StatusOK, queryResponse{
			Columns:  []string{},
			Rows:     [][]any{},
			RowCount: 0,
			Stats:    map[string]any{"duration_ms": int64(0)},
			Error:    err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, queryResponse{
		Columns:  result.Columns,
		Rows:     result.Rows,
		RowCount: result.RowCount(),
		Stats:    map[string]any{"duration_ms": result.Duration.Milliseconds()},
	})
}
