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

	"github.com/mamadbah2/ranch/internal/config"
	"github.com/mamadbah2/ranch/internal/repository/mongodb"
	"github.com/mamadbah2/ranch/internal/repository/sheets"
	"github.com/mamadbah2/ranch/internal/scheduler"
	"github.com/mamadbah2/ranch/internal/server/handlers"
	"github.com/mamadbah2/ranch/internal/server/metrics"
	"github.com/mamadbah2/ranch/internal/server/router"
	allocationsvc "github.com/mamadbah2/ranch/internal/service/allocation"
	"github.com/mamadbah2/ranch/internal/service/breakeven"
	commandsvc "github.com/mamadbah2/ranch/internal/service/commands"
	exportsvc "github.com/mamadbah2/ranch/internal/service/export"
	growthsvc "github.com/mamadbah2/ranch/internal/service/growth"
	inventorysvc "github.com/mamadbah2/ranch/internal/service/inventory"
	recordssvc "github.com/mamadbah2/ranch/internal/service/records"
	reportingsvc "github.com/mamadbah2/ranch/internal/service/reporting"
	whatsappsvc "github.com/mamadbah2/ranch/internal/service/whatsapp"
	whatsappclient "github.com/mamadbah2/ranch/pkg/clients/whatsapp"
	"github.com/mamadbah2/ranch/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	mongoRepo, err := mongodb.NewMongoDBRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := mongoRepo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	// Left as a nil interface when the export sheet is not configured.
	var sheetsRepo sheets.Repository
	if cfg.Sheets.Enabled() {
		repo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		sheetsRepo = repo
	} else {
		baseLogger.Warn("google sheets not configured, nutritionist export push disabled")
	}

	thresholds := breakeven.DefaultThresholds()
	thresholds.TargetADG = cfg.Finance.TargetADG
	calculator := breakeven.NewCalculator(breakeven.Scenarios{
		Target:    cfg.Finance.TargetMultiplier,
		BestCase:  cfg.Finance.BestCaseMultiplier,
		WorstCase: cfg.Finance.WorstCaseMultiplier,
	}, thresholds)

	allocationSvc := allocationsvc.NewService(mongoRepo, baseLogger.Named("svc.allocation"))
	growthSvc := growthsvc.NewService(mongoRepo, allocationSvc, cfg.Finance.DefaultADG, baseLogger.Named("svc.growth"))
	reportingSvc := reportingsvc.NewService(mongoRepo, allocationSvc, growthSvc, calculator, reportingsvc.Assumptions{
		TransportationCost: cfg.Finance.TransportationCost,
		CommissionFees:     cfg.Finance.CommissionFees,
		LaborCostPerDay:    cfg.Finance.LaborCostPerDay,
		FacilityCostPerDay: cfg.Finance.FacilityCostPerDay,
		AnnualInterestRate: cfg.Finance.AnnualInterestRate,
	}, baseLogger.Named("svc.reporting"))
	inventorySvc := inventorysvc.NewService(mongoRepo, baseLogger.Named("svc.inventory"))
	recordsSvc := recordssvc.NewService(mongoRepo, inventorySvc, baseLogger.Named("svc.records"))
	exportSvc := exportsvc.NewService(mongoRepo, growthSvc, sheetsRepo, baseLogger.Named("svc.export"))

	var (
		messagingSvc whatsappsvc.MessagingService
		reportSender scheduler.ReportSender
	)
	if cfg.WhatsApp.Enabled() {
		commandDispatcher := commandsvc.NewService(mongoRepo, recordsSvc, reportingSvc, commandsvc.NewSessionManager(), baseLogger.Named("svc.commands"))
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
		meta := whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsClient, commandDispatcher, baseLogger.Named("svc.whatsapp"))
		messagingSvc, reportSender = meta, meta
	} else {
		baseLogger.Warn("whatsapp not configured, commands and report delivery disabled")
	}

	m := metrics.New()
	webhookHandler := handlers.NewWebhookHandler(messagingSvc, baseLogger.Named("handlers.whatsapp"))
	apiHandler := handlers.NewAPIHandler(handlers.Services{
		Costs:         allocationSvc,
		Growth:        growthSvc,
		Profitability: reportingSvc,
		Calculator:    calculator,
		Inventory:     inventorySvc,
		Records:       recordsSvc,
		Export:        exportSvc,
	}, m, baseLogger.Named("handlers.api"))
	engine := router.New(webhookHandler, apiHandler, m, baseLogger.Named("router"))

	sched, err := scheduler.NewScheduler(*cfg, reportingSvc, reportSender, baseLogger.Named("scheduler"))
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
