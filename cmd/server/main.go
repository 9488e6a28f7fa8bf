package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/dairy/internal/config"
	"github.com/mamadbah2/dairy/internal/repository"
	"github.com/mamadbah2/dairy/internal/repository/badger"
	"github.com/mamadbah2/dairy/internal/repository/memory"
	"github.com/mamadbah2/dairy/internal/repository/mongodb"
	"github.com/mamadbah2/dairy/internal/repository/sheets"
	"github.com/mamadbah2/dairy/internal/repository/sqlite"
	"github.com/mamadbah2/dairy/internal/scheduler"
	"github.com/mamadbah2/dairy/internal/server/handlers"
	"github.com/mamadbah2/dairy/internal/server/router"
	commandsvc "github.com/mamadbah2/dairy/internal/service/commands"
	entrysvc "github.com/mamadbah2/dairy/internal/service/entry"
	membersvc "github.com/mamadbah2/dairy/internal/service/members"
	ratesvc "github.com/mamadbah2/dairy/internal/service/rates"
	reportingsvc "github.com/mamadbah2/dairy/internal/service/reporting"
	whatsappsvc "github.com/mamadbah2/dairy/internal/service/whatsapp"
	"github.com/mamadbah2/dairy/pkg/clients/anthropic"
	whatsappclient "github.com/mamadbah2/dairy/pkg/clients/whatsapp"
	"github.com/mamadbah2/dairy/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	loc, err := cfg.Reporting.Location()
	if err != nil {
		baseLogger.Fatal("invalid timezone", zap.Error(err))
	}

	stores, err := openStores(context.Background(), cfg)
	if err != nil {
		baseLogger.Fatal("failed to init storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer func() {
		if err := stores.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close storage", zap.Error(err))
		}
	}()

	drafts, err := badger.Open(cfg.Storage.DraftDir, baseLogger.Named("repo.drafts"))
	if err != nil {
		baseLogger.Fatal("failed to open draft store", zap.Error(err))
	}
	defer func() {
		if err := drafts.Close(); err != nil {
			baseLogger.Error("failed to close draft store", zap.Error(err))
		}
	}()

	var sheet reportingsvc.SheetSink
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		sheet = sheetsRepo
	} else {
		baseLogger.Warn("google sheets not configured, session export disabled")
	}

	rateSvc := ratesvc.NewService(stores.Rates, baseLogger.Named("svc.rates"))
	memberSvc := membersvc.NewService(stores.Members, stores.Sessions, baseLogger.Named("svc.members"))
	saver := entrysvc.NewSaver(stores.Records, stores.Members, stores.Sessions, baseLogger.Named("svc.entry.saver"))
	entryEngine := entrysvc.NewEngine(rateSvc, stores.Members, drafts, saver, loc, baseLogger.Named("svc.entry"))
	if err := entryEngine.Restore(context.Background()); err != nil {
		baseLogger.Error("failed to restore entry grid", zap.Error(err))
	}
	reportingSvc := reportingsvc.NewService(stores.Sessions, rateSvc, sheet, loc, baseLogger.Named("svc.reporting"))

	// Initialize AI Client
	var aiClient anthropic.Client
	if cfg.AI.AnthropicKey != "" {
		aiClient = anthropic.NewClient(cfg.AI.AnthropicKey, "")
		baseLogger.Info("anthropic ai client enabled")
	} else {
		baseLogger.Warn("anthropic api key missing, natural language processing disabled")
	}
	commandDispatcher := commandsvc.NewService(entryEngine, rateSvc, reportingSvc, aiClient, baseLogger.Named("svc.commands"))

	var messagingSvc whatsappsvc.MessagingService
	var notifier scheduler.Notifier
	if cfg.WhatsApp.Enabled() {
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
		meta := whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsClient, commandDispatcher, baseLogger.Named("svc.whatsapp"))
		messagingSvc = meta
		notifier = meta
	} else {
		baseLogger.Warn("whatsapp not configured, webhook and notifications disabled")
	}

	engine := router.New(router.Handlers{
		Webhook:  handlers.NewWebhookHandler(messagingSvc, baseLogger.Named("handlers.whatsapp")),
		Rates:    handlers.NewRatesHandler(rateSvc, baseLogger.Named("handlers.rates")),
		Members:  handlers.NewMembersHandler(memberSvc, baseLogger.Named("handlers.members")),
		Rows:     handlers.NewRowsHandler(entryEngine, baseLogger.Named("handlers.rows")),
		Sessions: handlers.NewSessionsHandler(reportingSvc, messagingSvc, baseLogger.Named("handlers.sessions")),
	}, baseLogger.Named("router"))

	// Initialize Scheduler
	sched, err := scheduler.NewScheduler(cfg.Reporting, reportingSvc, notifier, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("storage", cfg.Storage.Driver))
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

func openStores(ctx context.Context, cfg *config.Config) (*repository.Stores, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		return sqlite.NewStores(ctx, cfg.Storage.SQLiteDSN)
	case config.DriverMongoDB:
		return mongodb.NewStores(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
	case config.DriverMemory:
		return memory.NewStores(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
