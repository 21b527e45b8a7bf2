package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/app"
	"github.com/mamadbah2/stockledger/internal/config"
	"github.com/mamadbah2/stockledger/internal/scheduler"
	"github.com/mamadbah2/stockledger/internal/server/handlers"
	"github.com/mamadbah2/stockledger/internal/server/router"
	reportingsvc "github.com/mamadbah2/stockledger/internal/service/reporting"
	"github.com/mamadbah2/stockledger/pkg/clients/notify"
	"github.com/mamadbah2/stockledger/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	components, err := app.Build(ctx, cfg, baseLogger)
	if err != nil {
		baseLogger.Fatal("failed to assemble ledger", zap.Error(err))
	}
	defer func() {
		if err := components.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close connections", zap.Error(err))
		}
	}()

	baseLogger.Info("ledger ready",
		zap.String("backend", cfg.Ledger.Backend),
		zap.String("attachments", string(components.Archive.Driver())),
		zap.Bool("strict_load", cfg.Ledger.StrictLoad))

	var notifier notify.Client
	if cfg.Digest.WebhookURL != "" {
		notifier = notify.NewWebhookClient(cfg.Digest.WebhookURL)
		baseLogger.Info("digest webhook enabled")
	} else {
		baseLogger.Warn("NOTIFY_WEBHOOK_URL missing, pending digest will only be logged")
	}

	reportingSvc := reportingsvc.NewService(components.Engine, cfg.Location(), baseLogger.Named("svc.reporting"))
	sched := scheduler.NewScheduler(cfg.Digest.CronSchedule, cfg.Location(), reportingSvc, notifier, baseLogger.Named("scheduler"))
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	engine := router.New(router.Handlers{
		Ledger:      handlers.NewLedgerHandler(components.Engine, baseLogger.Named("handlers.ledger")),
		Auth:        handlers.NewAuthHandler(components.Auth, baseLogger.Named("handlers.auth")),
		Attachments: handlers.NewAttachmentHandler(components.Archive, baseLogger.Named("handlers.attachments")),
	}, router.Options{MaxBodyBytes: cfg.Server.MaxBodyBytes}, baseLogger.Named("router"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
