package cmd

import (
	"context"
	"fmt"
	"time"

	"deck-sync/core/config"
	"deck-sync/core/database"
	"deck-sync/core/logger"
	"deck-sync/core/record"
	"deck-sync/core/runner"
	"deck-sync/core/storage"
	"deck-sync/feature/decks"
	"deck-sync/feature/decks/extract"
	"deck-sync/feature/decks/store"
	"deck-sync/feature/integrity"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app bundles the components every command builds from the configuration.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	db        *gorm.DB
	client    storage.Client
	store     *store.Store
	extractor *extract.Extractor
	runner    *runner.Runner
}

// bootstrap loads and validates the configuration, then connects the database and storage.
func bootstrap() (*app, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("database connection required: %w", err)
	}

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	if err := storage.CheckBucket(context.Background(), client, cfg.Storage.Bucket, 5*time.Second); err != nil {
		l.Warn("Storage is not ready; rounds will fail until it is", zap.Error(err))
	}

	notes := store.New(db, client, cfg.Storage.Bucket, cfg.Sync.MediaPrefix, l)
	if err := notes.Migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate record database: %w", err)
	}

	return &app{
		cfg:       cfg,
		logger:    l,
		db:        db,
		client:    client,
		store:     notes,
		extractor: extract.NewExtractor(client, cfg.Storage.Bucket, cfg.Sync.ExportPrefix, l),
		runner:    runner.New(cfg.Sync.Workers, l),
	}, nil
}

// coordinator builds a sync coordinator that re-reads the configuration every round.
func (a *app) coordinator(notifier decks.Notifier) *decks.Coordinator {
	return decks.NewCoordinator(config.SettingsLoader(configDir), a.store, a.extractor, a.runner, decks.Options{
		Notifier: notifier,
		Logger:   a.logger,
	})
}

// integrity builds the integrity service for the configured bucket and database.
func (a *app) integrity() *integrity.Service {
	return integrity.NewService(integrity.Options{
		Client:      a.client,
		Bucket:      a.cfg.Storage.Bucket,
		Region:      a.cfg.Storage.Region,
		Folders:     []string{a.cfg.Sync.ExportPrefix, a.cfg.Sync.MediaPrefix},
		MediaPrefix: a.cfg.Sync.MediaPrefix,
		Sources: func() ([]record.SourceSpec, error) {
			settings, err := config.SettingsLoader(configDir)()
			if err != nil {
				return nil, err
			}
			return settings.Sources, nil
		},
		ArchiveKey: a.extractor.ObjectKey,
		DB:         a.db,
		Models:     store.Models(),
		Notes:      a.store,
		Logger:     a.logger,
	})
}
