package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/macroledger/backend/config"
	httpDelivery "github.com/macroledger/backend/internal/delivery/http"
	"github.com/macroledger/backend/internal/infrastructure/cache"
	"github.com/macroledger/backend/internal/infrastructure/sheet"
	"github.com/macroledger/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Server.Environment)
	slog.SetDefault(logger)

	logger.Info("starting macroledger backend",
		"version", config.Version,
		"environment", cfg.Server.Environment,
		"port", cfg.Server.Port,
	)

	// Initialize infrastructure dependencies
	store, err := sheet.NewStore(cfg.Store.Path, cfg.Store.FoodSheet, cfg.Store.LogSheet)
	if err != nil {
		logger.Error("failed to open workbook", "path", cfg.Store.Path, "error", err)
		os.Exit(1)
	}
	logger.Info("workbook ready",
		"path", cfg.Store.Path,
		"foodSheet", cfg.Store.FoodSheet,
		"logSheet", cfg.Store.LogSheet,
	)

	memoryCache := cache.NewMemoryCache()
	logger.Info("snapshot cache ready", "ttl", cfg.Cache.TTL)

	// Initialize usecase layer
	calculator := usecase.NewCalculator(usecase.CalculatorConfig{
		MinQuantity: cfg.Tracking.MinQuantity,
		StrictUnits: cfg.Tracking.StrictUnits,
	})
	catalog := usecase.NewCatalogService(store, memoryCache, cfg.Cache.TTL)
	ledger := usecase.NewLedgerService(store, memoryCache, catalog, calculator, cfg.Cache.TTL)
	reports := usecase.NewReportService(ledger, usecase.GoalTargets{
		Protein:  cfg.Goals.Protein,
		Carbs:    cfg.Goals.Carbs,
		Fats:     cfg.Goals.Fats,
		Calories: cfg.Goals.Calories,
		BandLow:  cfg.Goals.BandLow,
		BandHigh: cfg.Goals.BandHigh,
	})

	logger.Info("tracking policy",
		"minQuantity", cfg.Tracking.MinQuantity,
		"strictUnits", cfg.Tracking.StrictUnits,
		"proteinGoal", cfg.Goals.Protein,
	)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(catalog, ledger, reports, store)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Info("server listening", "addr", addr)

	if err := router.Run(addr); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// newLogger builds the JSON logger; development gets debug level.
func newLogger(env string) *slog.Logger {
	level := slog.LevelInfo
	if env == "development" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
