package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/querydeck/querydeck/internal/auth"
	"github.com/querydeck/querydeck/internal/nlsql"
	"github.com/querydeck/querydeck/internal/observability"
)

type translateRequest struct {
	Prompt string `json:"prompt"`
}

type assessRequest struct {
	Prompt string `json:"prompt"`
	Task   string `json:"task"`
}

type demoRunRequest struct {
	Prompt   string `json:"prompt"`
	RowLimit int    `json:"row_limit"`
}

type demoStep struct {
	Name       string `json:"name"`
	DurationMs int64  `json:"duration_ms"`
}

func handleTranslate(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Dispatcher == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "ASSIST_NOT_CONFIGURED", "model assistance is not configured", false, nil)
		return
	}
	if err := requireAnyRole(r, auth.RoleReader, auth.RoleAdmin); err != nil {
		writeError(r.Context(), w, http.StatusForbidden, "FORBIDDEN", err.Error(), false, nil)
		return
	}

	var req translateRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid translation request body", false, map[string]any{"details": err.Error()})
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "PROMPT_REQUIRED", "prompt is required", false, nil)
		return
	}

	record, err := deps.Dispatcher.Dispatch(r.Context(), nlsql.TaskNLToSQL, req.Prompt)
	if err != nil {
		writeTranslateError(w, r, err)
		return
	}
	if deps.ModelID != "" {
		record["model"] = deps.ModelID
	}
	writeJSON(w, http.StatusOK, record)
}

func handleAssess(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Dispatcher == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "ASSIST_NOT_CONFIGURED", "model assistance is not configured", false, nil)
		return
	}
	if err := requireAnyRole(r, auth.RoleReader, auth.RoleAdmin); err != nil {
		writeError(r.Context(), w, http.StatusForbidden, "FORBIDDEN", err.Error(), false, nil)
		return
	}

	var req assessRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid assessment request body", false, map[string]any{"details": err.Error()})
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "PROMPT_REQUIRED", "prompt is required", false, nil)
		return
	}

	task := nlsql.TaskType(strings.TrimSpace(req.Task))
	if task != nlsql.TaskValidation && task != nlsql.TaskSyntheticData {
		writeError(r.Context(), w, http.StatusBadRequest, "TASK_INVALID", "task must be validation or synthetic_data", false, map[string]any{"task": req.Task})
		return
	}

	record, err := deps.Dispatcher.Dispatch(r.Context(), task, req.Prompt)
	if err != nil {
		writeTranslateError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// handleDemoRun chains translation and execution in one call: the prompt
// becomes SQL, the SQL runs against the dataset, and both outcomes come
// back together for the guided demo view.
func handleDemoRun(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Dispatcher == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "ASSIST_NOT_CONFIGURED", "model assistance is not configured", false, nil)
		return
	}
	if deps.Store == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "STORE_NOT_CONFIGURED", "dataset store is not configured", false, nil)
		return
	}
	if err := requireAnyRole(r, auth.RoleReader, auth.RoleAdmin); err != nil {
		writeError(r.Context(), w, http.StatusForbidden, "FORBIDDEN", err.Error(), false, nil)
		return
	}

	var req demoRunRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid demo request body", false, map[string]any{"details": err.Error()})
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "PROMPT_REQUIRED", "prompt is required", false, nil)
		return
	}

	steps := make([]demoStep, 0, 2)

	translateStart := time.Now()
	record, err := deps.Dispatcher.Dispatch(r.Context(), nlsql.TaskNLToSQL, req.Prompt)
	steps = append(steps, demoStep{Name: "generate_sql", DurationMs: time.Since(translateStart).Milliseconds()})
	if err != nil {
		writeTranslateError(w, r, err)
		return
	}

	sqlText, _ := record["sql"].(string)
	if strings.TrimSpace(sqlText) == "" {
		writeError(r.Context(), w, http.StatusBadGateway, "TRANSLATE_FAILED", "model returned no sql", true, nil)
		return
	}

	queryStart := time.Now()
	result, queryErr := deps.Store.Query(r.Context(), sqlText, req.RowLimit)
	steps = append(steps, demoStep{Name: "execute_query", DurationMs: time.Since(queryStart).Milliseconds()})
	observability.ObserveQuery(result.Duration, queryErr == nil)

	response := map[string]any{
		"sql":   sqlText,
		"steps": steps,
	}
	if queryErr != nil {
		response["columns"] = []string{}
		response["rows"] = [][]any{}
		response["row_count"] = 0
		response["error"] = queryErr.Error()
	} else {
		response["columns"] = result.Columns
		response["rows"] = result.Rows
		response["row_count"] = result.RowCount()
	}
	writeJSON(w, http.StatusOK, response)
}

func writeTranslateError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, nlsql.ErrNoModel) {
		writeError(r.Context(), w, http.StatusNotImplemented, "ASSIST_NOT_CONFIGURED", "model assistance is not configured", false, nil)
		return
	}
	writeError(r.Context(), w, http.StatusBadGateway, "TRANSLATE_FAILED", "failed to reach the hosted model", true, map[string]any{"details": err.Error()})
}
