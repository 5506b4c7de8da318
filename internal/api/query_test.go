package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestQueryReturnsRows(t *testing.T) {
	fake := &fakeStore{}
	handler := NewHandler(testConfig(t), Dependencies{Store: fake})

	body := strings.NewReader(`{"sql": "SELECT customer_id, name FROM customers", "row_limit": 50}`)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/query", body))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d (body=%s)", rr.Code, rr.Body.String())
	}
	payload := decodeBody(t, rr)
	if payload["row_count"] != float64(1) {
		t.Fatalf("unexpected row_count %v", payload["row_count"])
	}
	if _, found := payload["error"]; found {
		t.Fatalf("unexpected error banner in %v", payload)
	}
	if fake.lastLimit != 50 {
		t.Fatalf("expected row limit 50, got %d", fake.lastLimit)
	}
}

func TestQueryFailureDegradesToEmptyResult(t *testing.T) {
	fake := &fakeStore{queryErr: errors.New("Binder Error: column nope does not exist")}
	handler := NewHandler(testConfig(t), Dependencies{Store: fake})

	body := strings.NewReader(`{"sql": "SELECT nope FROM customers"}`)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/query", body))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with error banner", rr.Code)
	}
	payload := decodeBody(t, rr)
	if payload["row_count"] != float64(0) {
		t.Fatalf("unexpected row_count %v", payload["row_count"])
	}
	banner, _ := payload["error"].(string)
	if !strings.Contains(banner, "Binder Error") {
		t.Fatalf("expected error banner, got %v", payload)
	}
	rows, ok := payload["rows"].([]any)
	if !ok || len(rows) != 0 {
		t.Fatalf("expected empty rows, got %v", payload["rows"])
	}
}

func TestQueryRequiresSQL(t *testing.T) {
	handler := NewHandler(testConfig(t), Dependencies{Store: &fakeStore{}})

	body := strings.NewReader(`{"sql": "   "}`)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/query", body))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
	payload := decodeBody(t, rr)
	if payload["error_code"] != "SQL_REQUIRED" {
		t.Fatalf("unexpected payload %v", payload)
	}
}

func TestQueryRejectsUnknownFields(t *testing.T) {
	handler := NewHandler(testConfig(t), Dependencies{Store: &fakeStore{}})

	body := strings.NewReader(`{"sql": "SELECT 1", "mystery": true}`)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/query", body))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
}
