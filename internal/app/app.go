// Package app wires adapters into the core services for the command line.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/everydaystudy/golf-db-loader/internal/adapters/driven/config/file"
	"github.com/everydaystudy/golf-db-loader/internal/adapters/driven/metrics"
	"github.com/everydaystudy/golf-db-loader/internal/adapters/driven/storage/firestore"
	"github.com/everydaystudy/golf-db-loader/internal/adapters/driven/storage/memory"
	"github.com/everydaystudy/golf-db-loader/internal/adapters/driven/storage/sqlite"
	"github.com/everydaystudy/golf-db-loader/internal/adapters/driving/cli"
	"github.com/everydaystudy/golf-db-loader/internal/connectors/overpass"
	"github.com/everydaystudy/golf-db-loader/internal/core/domain"
	"github.com/everydaystudy/golf-db-loader/internal/core/ports/driven"
	"github.com/everydaystudy/golf-db-loader/internal/core/ports/driving"
	"github.com/everydaystudy/golf-db-loader/internal/core/services"
	"github.com/everydaystudy/golf-db-loader/internal/logger"
	"github.com/everydaystudy/golf-db-loader/internal/normalisers/osm"
)

// Ensure the constructors match the CLI factories.
var (
	_ cli.SettingsFactory = OpenSettings
	_ cli.EngineFactory   = OpenEngine
)

// OpenSettings reads the TOML config at configPath with environment
// overrides and service account key discovery.
func OpenSettings(configPath string) (driving.SettingsService, error) {
	store, err := file.NewConfigStore(configPath, file.WithEnv(os.Getenv, file.DefaultEnvBindings()))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return services.NewSettingsService(store, services.WithCredentialsLookup(func() string {
		return file.FindCredentials(file.CredentialDirs()...)
	})), nil
}

// OpenEngine builds the Overpass connector, OSM normaliser and configured
// document store, and returns a sync engine over every US state.
func OpenEngine(ctx context.Context, settings *domain.Settings, opts cli.EngineOptions) (driving.SyncEngine, io.Closer, error) {
	cfg := overpass.DefaultConfig()
	cfg.URL = settings.Overpass.URL
	cfg.RatePerSecond = settings.Overpass.RatePerSecond
	cfg.Timeout = time.Duration(settings.Overpass.TimeoutSeconds) * time.Second

	connector, err := overpass.New(cfg, nil)
	if err != nil {
		return nil, nil, &domain.ConfigError{Field: "overpass.url", Value: cfg.URL, Reason: err.Error()}
	}

	store, err := OpenStore(ctx, settings)
	if err != nil {
		return nil, nil, err
	}

	engineOpts := []services.SyncOption{}
	if opts.MetricsFile != "" {
		engineOpts = append(engineOpts, services.WithMetrics(metrics.NewTextfileExporter(opts.MetricsFile)))
	}

	engine := services.NewSyncEngine(connector, osm.New(), store, domain.USStates(), engineOpts...)
	return engine, store, nil
}

// OpenStore opens the document store selected by settings.Store.Backend.
func OpenStore(ctx context.Context, settings *domain.Settings) (driven.DocumentStore, error) {
	switch settings.Store.Backend {
	case domain.StoreFirestore:
		return firestore.New(ctx, firestore.Config{
			Project:         settings.Firestore.Project,
			Database:        settings.Firestore.Database,
			Collection:      settings.Store.Collection,
			CredentialsFile: settings.Firestore.CredentialsFile,
		})
	case domain.StoreSQLite:
		store, err := sqlite.NewStore(settings.SQLite.DataDir)
		if err != nil {
			return nil, err
		}
		logger.Debug("Using SQLite store %s", store.Path())
		return store, nil
	case domain.StoreMemory:
		logger.Warn("Using the in-memory store; nothing is persisted")
		return memory.NewDocumentStore(), nil
	default:
		return nil, &domain.ConfigError{
			Field:  "store.backend",
			Value:  settings.Store.Backend.String(),
			Reason: "unsupported backend",
		}
	}
}
