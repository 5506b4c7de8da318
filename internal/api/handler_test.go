package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/querydeck/querydeck/internal/auth"
	"github.com/querydeck/querydeck/internal/config"
	"github.com/querydeck/querydeck/internal/export"
	"github.com/querydeck/querydeck/internal/nlsql"
	"github.com/querydeck/querydeck/internal/store"
)

type fakeStore struct {
	results   map[string]store.Result
	queryErr  error
	healthErr error
	lastSQL   string
	lastLimit int
}

func (f *fakeStore) Query(_ context.Context, sqlText string, rowLimit int) (store.Result, error) {
	f.lastSQL = sqlText
	f.lastLimit = rowLimit
	if f.queryErr != nil {
		return store.Result{}, f.queryErr
	}
	if result, ok := f.results[sqlText]; ok {
		return result, nil
	}
	return store.Result{
		Columns:  []string{"customer_id", "name"},
		Rows:     [][]any{{int64(1), "Alice Johnson"}},
		Duration: time.Millisecond,
	}, nil
}

func (f *fakeStore) HealthCheck(_ context.Context) error { return f.healthErr }
func (f *fakeStore) Close() error                        { return nil }

type fakeDispatcher struct {
	record     map[string]any
	err        error
	lastTask   nlsql.TaskType
	lastPrompt string
}

func (f *fakeDispatcher) Dispatch(_ context.Context, task nlsql.TaskType, prompt string) (map[string]any, error) {
	f.lastTask = task
	f.lastPrompt = prompt
	if f.err != nil {
		return nil, f.err
	}
	return f.record, nil
}

type fakeExporter struct {
	summary export.Summary
	err     error
}

func (f *fakeExporter) Run(_ context.Context) (export.Summary, error) {
	if f.err != nil {
		return export.Summary{}, f.err
	}
	return f.summary, nil
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.Load("querydeck-api", func(key string) (string, bool) {
		if key == "QUERYDECK_PROFILE" {
			return "test", true
		}
		return "", false
	})
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	return cfg
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v (body=%s)", err, rr.Body.String())
	}
	return payload
}

func TestHealthEndpoint(t *testing.T) {
	handler := NewHandler(testConfig(t), Dependencies{})

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	payload := decodeBody(t, rr)
	if payload["status"] != "ok" || payload["service"] != "querydeck-api" {
		t.Fatalf("unexpected payload %v", payload)
	}
}

func TestReadyEndpointReportsFailure(t *testing.T) {
	handler := NewHandler(testConfig(t), Dependencies{
		Readiness: func(_ context.Context) error { return errors.New("store down") },
	})

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/ready", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rr.Code)
	}
	payload := decodeBody(t, rr)
	if payload["error_code"] != "NOT_READY" {
		t.Fatalf("unexpected payload %v", payload)
	}
}

func TestReadyEndpointOKWithoutChecks(t *testing.T) {
	handler := NewHandler(testConfig(t), Dependencies{})

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/ready", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestMetricsEndpointExposed(t *testing.T) {
	handler := NewHandler(testConfig(t), Dependencies{})

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "go_") {
		t.Fatal("expected prometheus exposition output")
	}
}

func TestAuthRequiredBlocksProtectedRoutes(t *testing.T) {
	cfg := testConfig(t)
	cfg.Auth.Required = true
	validator, err := auth.NewStaticAPIKeyValidator("k1:alice:demo_reader")
	if err != nil {
		t.Fatalf("validator setup: %v", err)
	}

	handler := NewHandler(cfg, Dependencies{
		Store:          &fakeStore{},
		AuthMiddleware: auth.Middleware(nil, validator),
	})

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/schema", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status without key = %d", rr.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/schema", nil)
	req.Header.Set("X-API-Key", "k1")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status with key = %d (body=%s)", rr.Code, rr.Body.String())
	}
}

func TestAuthRequiredWithoutMiddlewareFailsClosed(t *testing.T) {
	cfg := testConfig(t)
	cfg.Auth.Required = true

	handler := NewHandler(cfg, Dependencies{Store: &fakeStore{}})

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/schema", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestTraceIDHeaderSet(t *testing.T) {
	handler := NewHandler(testConfig(t), Dependencies{})

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/health", nil))

	if rr.Header().Get("X-Trace-ID") == "" {
		t.Fatal("expected X-Trace-ID header")
	}
}

func TestCombineReadinessChecks(t *testing.T) {
	calls := 0
	ok := func(_ context.Context) error { calls++; return nil }
	fail := func(_ context.Context) error { return fmt.Errorf("nope") }

	combined := CombineReadinessChecks(ok, nil, fail, ok)
	if err := combined(context.Background()); err == nil {
		t.Fatal("expected combined check to fail")
	}
	if calls != 1 {
		t.Fatalf("expected short-circuit after failure, calls = %d", calls)
	}
}

func TestCheckStore(t *testing.T) {
	if err := CheckStore(nil)(context.Background()); err == nil {
		t.Fatal("expected error for nil store")
	}
	if err := CheckStore(&fakeStore{})(context.Background()); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if err := CheckStore(&fakeStore{healthErr: errors.New("down")})(context.Background()); err == nil {
		t.Fatal("expected health error to propagate")
	}
}
