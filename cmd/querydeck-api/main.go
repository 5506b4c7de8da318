package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/querydeck/querydeck/internal/api"
	"github.com/querydeck/querydeck/internal/api/uistatic"
	"github.com/querydeck/querydeck/internal/auth"
	"github.com/querydeck/querydeck/internal/bedrock"
	"github.com/querydeck/querydeck/internal/config"
	"github.com/querydeck/querydeck/internal/dataset"
	"github.com/querydeck/querydeck/internal/export"
	"github.com/querydeck/querydeck/internal/nlsql"
	"github.com/querydeck/querydeck/internal/observability"
	"github.com/querydeck/querydeck/internal/store"
	duckdbstore "github.com/querydeck/querydeck/internal/store/duckdb"
	postgresstore "github.com/querydeck/querydeck/internal/store/postgres"
	s3store "github.com/querydeck/querydeck/internal/storage/s3"
)

func main() {
	cfg, err := config.LoadFromEnv("querydeck-api")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg, os.Stdout)

	var dataStore store.Store
	switch cfg.Store.Backend {
	case config.StoreBackendPostgres:
		dataStore, err = postgresstore.Open(context.Background(), postgresstore.Config{
			DSN:             cfg.Store.DSN,
			MaxOpenConns:    cfg.Store.MaxOpenConns,
			MaxIdleConns:    cfg.Store.MaxIdleConns,
			ConnMaxIdleTime: cfg.Store.ConnMaxIdleTime,
			ConnMaxLifetime: cfg.Store.ConnMaxLifetime,
		})
	default:
		dataStore, err = duckdbstore.Open(context.Background())
	}
	if err != nil {
		logger.Error("failed to open dataset store", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = dataStore.Close() }()

	var dispatcher api.TaskDispatcher
	if cfg.Model.Enabled {
		client, err := bedrock.New(context.Background(), bedrock.Config{
			Region:     cfg.Model.Region,
			AWSProfile: cfg.Model.AWSProfile,
			ModelID:    cfg.Model.ModelID,
		})
		if err != nil {
			logger.Error("failed to initialize model client", slog.Any("error", err))
			os.Exit(1)
		}
		dispatcher = nlsql.NewDispatcher(client, dataset.Description())
	}

	var exporter api.Exporter
	if cfg.Export.Enabled {
		objectStore, err := s3store.New(context.Background(), s3store.Config{
			Endpoint:         cfg.Export.Endpoint,
			Region:           cfg.Export.Region,
			Bucket:           cfg.Export.Bucket,
			AccessKeyID:      cfg.Export.AccessKeyID,
			SecretAccessKey:  cfg.Export.SecretAccessKey,
			UseSSL:           cfg.Export.UseSSL,
			Prefix:           cfg.Export.Prefix,
			AutoCreateBucket: cfg.Export.AutoCreateBucket,
		})
		if err != nil {
			logger.Error("failed to initialize object store", slog.Any("error", err))
			os.Exit(1)
		}
		exporter = &export.Service{Store: objectStore, Logger: logger}
	}

	deps := api.Dependencies{
		Logger:           logger,
		Store:            dataStore,
		Dispatcher:       dispatcher,
		ModelID:          cfg.Model.ModelID,
		Exporter:         exporter,
		SchemaSampleRows: cfg.UI.SchemaSampleRows,
		UI:               uistatic.Handler(),
		Readiness: api.CombineReadinessChecks(
			api.CheckStore(dataStore),
			api.CheckExportConfig(cfg),
		),
		DependencyTimeout: time.Second,
	}
	if cfg.Auth.Required {
		validator, err := auth.NewStaticAPIKeyValidator(cfg.Auth.StaticKeys)
		if err != nil {
			logger.Error("failed to parse static auth keys", slog.Any("error", err))
			os.Exit(1)
		}
		deps.AuthMiddleware = auth.Middleware(logger, validator)
	}

	handler := api.NewHandler(cfg, deps)
	server := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting api server", slog.String("addr", cfg.HTTP.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down api server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
		_ = server.Close()
		os.Exit(1)
	}
}
