// Package app assembles the ledger components from configuration. It is
// shared by the HTTP server and the operator CLI.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/config"
	"github.com/mamadbah2/stockledger/internal/repository/blob"
	"github.com/mamadbah2/stockledger/internal/repository/blob/fs"
	"github.com/mamadbah2/stockledger/internal/repository/blob/s3"
	"github.com/mamadbah2/stockledger/internal/repository/mongodb"
	"github.com/mamadbah2/stockledger/internal/repository/sheets"
	"github.com/mamadbah2/stockledger/internal/repository/tabular"
	"github.com/mamadbah2/stockledger/internal/repository/xlsx"
	"github.com/mamadbah2/stockledger/internal/service/auth"
	"github.com/mamadbah2/stockledger/internal/service/workflow"
)

// Repository holds user accounts and audit events.
type Repository interface {
	auth.UserRepository
	workflow.AuditSink
}

// App is the assembled object graph.
type App struct {
	Engine  *workflow.Engine
	Auth    *auth.Service
	Archive blob.Store
	Repo    Repository

	closers []func(context.Context) error
}

// Build wires every component named in cfg.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{}

	table, err := OpenTable(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	a.Archive, err = OpenArchive(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.MongoDB.URI == "" {
		logger.Warn("MONGODB_URI not set, users and audit events kept in memory")
		a.Repo = mongodb.NewMemoryRepository()
	} else {
		mongoRepo, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			return nil, fmt.Errorf("init mongodb repository: %w", err)
		}
		a.Repo = mongoRepo
		a.closers = append(a.closers, mongoRepo.Close)
	}

	a.Auth = auth.NewService(a.Repo, logger.Named("svc.auth"))
	if err := a.Auth.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password); err != nil {
		_ = a.Close(ctx)
		return nil, fmt.Errorf("bootstrap admin: %w", err)
	}

	store := tabular.NewStore(table, tabular.Options{Lenient: !cfg.Ledger.StrictLoad}, logger.Named("repo.tabular"))
	a.Engine = workflow.NewEngine(store, a.Archive, a.Repo, workflow.Options{
		AllowRestamp: cfg.Ledger.AllowRestamp,
		Location:     cfg.Location(),
	}, logger.Named("svc.workflow"))

	return a, nil
}

// OpenTable returns the configured inventory table backend.
func OpenTable(ctx context.Context, cfg *config.Config, logger *zap.Logger) (tabular.Table, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Ledger.Backend {
	case config.BackendSheets:
		repo, err := sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, cfg.Ledger.Sheet, logger.Named("repo.sheets"))
		if err != nil {
			return nil, fmt.Errorf("init sheets repository: %w", err)
		}
		return repo, nil
	case config.BackendXLSX:
		return xlsx.NewTable(cfg.Ledger.File, cfg.Ledger.Sheet, logger.Named("repo.xlsx")), nil
	default:
		return nil, fmt.Errorf("unsupported ledger backend %q", cfg.Ledger.Backend)
	}
}

// OpenArchive returns the configured attachment archive.
func OpenArchive(ctx context.Context, cfg *config.Config) (blob.Store, error) {
	switch cfg.Attachments.Driver {
	case config.DriverS3:
		store, err := s3.New(ctx, s3.Config{
			Region:    cfg.Attachments.S3Region,
			Bucket:    cfg.Attachments.S3Bucket,
			Endpoint:  cfg.Attachments.S3Endpoint,
			PathStyle: cfg.Attachments.S3PathStyle,
		})
		if err != nil {
			return nil, fmt.Errorf("init s3 archive: %w", err)
		}
		return store, nil
	case config.DriverFS:
		store, err := fs.New(cfg.Attachments.Dir)
		if err != nil {
			return nil, fmt.Errorf("init fs archive: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported attachment driver %q", cfg.Attachments.Driver)
	}
}

// Close releases external connections.
func (a *App) Close(ctx context.Context) error {
	var firstErr error
	for _, c := range a.closers {
		if err := c(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
