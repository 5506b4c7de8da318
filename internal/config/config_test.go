package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadDefaultsForDevProfile(t *testing.T) {
	cfg, err := Load("querydeck-api", mapLookup(map[string]string{}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Profile != ProfileDev {
		t.Fatalf("Profile = %q, want %q", cfg.Profile, ProfileDev)
	}
	if cfg.HTTP.Address != ":8080" {
		t.Fatalf("HTTP.Address = %q", cfg.HTTP.Address)
	}
	if cfg.Store.Backend != StoreBackendDuckDB {
		t.Fatalf("Store.Backend = %q", cfg.Store.Backend)
	}
	if cfg.Model.Enabled {
		t.Fatal("Model.Enabled should default to false")
	}
	if cfg.Model.Region != "us-east-2" {
		t.Fatalf("Model.Region = %q", cfg.Model.Region)
	}
	if cfg.UI.SchemaSampleRows != 10 {
		t.Fatalf("UI.SchemaSampleRows = %d", cfg.UI.SchemaSampleRows)
	}
	if cfg.Observability.LogLevel != slog.LevelDebug {
		t.Fatalf("LogLevel = %v", cfg.Observability.LogLevel)
	}
	if cfg.Auth.Required {
		t.Fatal("Auth.Required should default to false in dev")
	}
}

func TestLoadProdProfileDefaults(t *testing.T) {
	cfg, err := Load("querydeck-api", mapLookup(map[string]string{"QUERYDECK_PROFILE": "prod"}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.Auth.Required {
		t.Fatal("Auth.Required should default to true in prod")
	}
	if cfg.Observability.LogLevel != slog.LevelInfo {
		t.Fatalf("LogLevel = %v", cfg.Observability.LogLevel)
	}
	if !cfg.Export.UseSSL {
		t.Fatal("Export.UseSSL should default to true in prod")
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	cfg, err := Load("querydeck-api", mapLookup(map[string]string{
		"QUERYDECK_HTTP_ADDR":         ":9191",
		"QUERYDECK_HTTP_READ_TIMEOUT": "2s",
		"QUERYDECK_MODEL_ENABLED":     "true",
		"QUERYDECK_MODEL_ID":          "custom.model-id:0",
		"QUERYDECK_STORE_BACKEND":     "postgres",
		"QUERYDECK_STORE_DSN":         "postgres://demo@localhost:5432/demo",
	}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTP.Address != ":9191" {
		t.Fatalf("HTTP.Address = %q", cfg.HTTP.Address)
	}
	if cfg.HTTP.ReadTimeout != 2*time.Second {
		t.Fatalf("HTTP.ReadTimeout = %v", cfg.HTTP.ReadTimeout)
	}
	if !cfg.Model.Enabled {
		t.Fatal("Model.Enabled should be overridden to true")
	}
	if cfg.Model.ModelID != "custom.model-id:0" {
		t.Fatalf("Model.ModelID = %q", cfg.Model.ModelID)
	}
	if cfg.Store.Backend != StoreBackendPostgres {
		t.Fatalf("Store.Backend = %q", cfg.Store.Backend)
	}
}

func TestLoadRejectsPostgresBackendWithoutDSN(t *testing.T) {
	_, err := Load("querydeck-api", mapLookup(map[string]string{
		"QUERYDECK_STORE_BACKEND": "postgres",
	}))
	if err == nil {
		t.Fatal("expected error for postgres backend without DSN")
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	_, err := Load("querydeck-api", mapLookup(map[string]string{
		"QUERYDECK_STORE_BACKEND": "sqlite",
	}))
	if err == nil {
		t.Fatal("expected error for unknown store backend")
	}
}

func TestLoadRejectsInvalidProfile(t *testing.T) {
	_, err := Load("querydeck-api", mapLookup(map[string]string{"QUERYDECK_PROFILE": "staging"}))
	if err == nil {
		t.Fatal("expected error for invalid profile")
	}
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	_, err := Load("querydeck-api", mapLookup(map[string]string{"QUERYDECK_HTTP_READ_TIMEOUT": "soon"}))
	if err == nil {
		t.Fatal("expected error for invalid duration")
	}
}

func mapLookup(values map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
}
