// Heron - Hospital billing analysis that deploys in 60 seconds.
// Copyright (c) 2025 opensource.health
// Licensed under the Apache License 2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/opensource-health/heron/internal/analytics"
	"github.com/opensource-health/heron/internal/api"
	"github.com/opensource-health/heron/internal/bus"
	"github.com/opensource-health/heron/internal/cache"
	"github.com/opensource-health/heron/internal/domain"
	"github.com/opensource-health/heron/internal/repository"
	"github.com/opensource-health/heron/internal/review"
	"github.com/opensource-health/heron/internal/rules"
	"github.com/opensource-health/heron/internal/scoring"
	"github.com/opensource-health/heron/internal/usage"
	"github.com/opensource-health/heron/internal/worker"
)

// Version information (set via ldflags)
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	// Initialize structured logger
	logLevel := slog.LevelInfo
	if os.Getenv("HERON_DEBUG") == "true" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	slog.Info("starting heron",
		"version", Version,
		"commit", Commit,
		"build_date", BuildDate,
	)

	// Load configuration
	cfg := domain.DefaultConfig()

	// Check for Pro tier via environment
	if os.Getenv("HERON_TIER") == "pro" {
		cfg = domain.ProConfig()
		slog.Info("running in Pro tier mode")
	}

	slog.Info("configuration loaded",
		"tier", cfg.Tier,
		"repository", cfg.Repository.Driver,
		"cache", cfg.Cache.Type,
		"eventbus", cfg.EventBus.Type,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		slog.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Initialize Repository
	repo, err := repository.New(cfg.Repository)
	if err != nil {
		slog.Error("failed to initialize repository", "error", err)
		os.Exit(1)
	}
	defer repo.Close()
	slog.Info("repository initialized", "driver", cfg.Repository.Driver)

	// Initialize Cache
	cacheImpl, err := cache.New(cfg.Cache)
	if err != nil {
		slog.Error("failed to initialize cache", "error", err)
		os.Exit(1)
	}
	defer cacheImpl.Close()
	slog.Info("cache initialized", "type", cfg.Cache.Type)

	// Initialize EventBus
	busImpl, err := bus.New(cfg.EventBus)
	if err != nil {
		slog.Error("failed to initialize event bus", "error", err)
		os.Exit(1)
	}
	defer busImpl.Close()
	slog.Info("event bus initialized", "type", cfg.EventBus.Type)

	// Initialize Usage Service
	usageSvc := usage.NewService(repo, cacheImpl)
	slog.Info("usage service initialized")

	// Initialize Audit Rule Engine with recent-bill-count getter
	engine, err := rules.NewEngine(usageSvc.GetRecentBillCount, 100)
	if err != nil {
		slog.Error("failed to initialize rule engine", "error", err)
		os.Exit(1)
	}

	if err := loadAuditRules(ctx, repo, engine); err != nil {
		slog.Error("failed to load audit rules", "error", err)
		os.Exit(1)
	}
	slog.Info("rule engine initialized", "rules_count", engine.RulesCount())

	// Initialize the analysis pipeline
	processor := review.NewProcessor()
	detector := scoring.NewAnomalyDetector()
	predictor := scoring.NewCostPredictor()
	profiler := scoring.NewRiskProfiler(predictor)
	aggregator := analytics.NewAggregator(analytics.NewRandomTrendSource(time.Now().UnixNano()))
	models := domain.NewModelRegistry()
	slog.Info("analysis pipeline initialized", "flag_threshold", processor.FlagThreshold)

	// Initialize async Worker (Pro tier)
	var asyncWorker *worker.Worker
	if cfg.Tier == domain.TierPro || os.Getenv("HERON_ASYNC_WORKER") == "true" {
		asyncWorker = worker.NewWorker(busImpl, repo, engine, detector, processor)

		var facilityIDs []string
		if envFacilities := os.Getenv("HERON_FACILITIES"); envFacilities != "" {
			facilityIDs = strings.Split(envFacilities, ",")
		}

		workerCfg := worker.Config{
			FacilityIDs: facilityIDs,
			WorkerCount: 5,
		}

		if err := asyncWorker.Start(workerCfg); err != nil {
			slog.Error("failed to start async worker", "error", err)
		} else {
			slog.Info("async worker started", "facility_count", len(facilityIDs))
		}
	}

	// Initialize Server
	srv := api.NewServer(cfg.Server, api.Deps{
		Repo:       repo,
		Cache:      cacheImpl,
		Bus:        busImpl,
		Engine:     engine,
		Processor:  processor,
		Detector:   detector,
		Predictor:  predictor,
		Profiler:   profiler,
		Aggregator: aggregator,
		Models:     models,
		Usage:      usageSvc,
		Version:    Version,
	})

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("heron is ready",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	printBanner(cfg, Version)

	<-ctx.Done()
	slog.Info("shutting down...")

	// Stop async worker first
	if asyncWorker != nil {
		if err := asyncWorker.Stop(); err != nil {
			slog.Error("failed to stop async worker", "error", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	slog.Info("heron shutdown complete")
}

// loadAuditRules loads rules from the database into the engine,
// falling back to the builtin set when the database has none.
func loadAuditRules(ctx context.Context, repo domain.Repository, engine *rules.Engine) error {
	dbRules, err := repo.ListAuditRules(ctx, api.GlobalFacilityID)
	if err != nil {
		slog.Warn("failed to list audit rules from database", "error", err)
		return engine.LoadRules(rules.BuiltinRules())
	}

	if len(dbRules) > 0 {
		slog.Info("loading audit rules from database", "count", len(dbRules))
		return engine.LoadRules(dbRules)
	}

	slog.Info("no audit rules in database, loading builtin set")
	return engine.LoadRules(rules.BuiltinRules())
}

func printBanner(cfg *domain.Config, version string) {
	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════╗")
	fmt.Println("  ║               🪶 HERON                     ║")
	fmt.Println("  ║    Hospital Billing Analysis Engine       ║")
	fmt.Println("  ║      Every bill, accounted for.           ║")
	fmt.Println("  ╚═══════════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("  Version:  %s\n", version)
	fmt.Printf("  Tier:     %s\n", cfg.Tier)
	fmt.Printf("  Server:   http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Println()
	fmt.Println("  Endpoints:")
	fmt.Println("    POST /analysis/predict-cost      - Predict bill cost")
	fmt.Println("    POST /analysis/assess-risk       - Assess patient risk")
	fmt.Println("    POST /analysis/billing-analytics - Aggregate billing history")
	fmt.Println("    POST /analysis/detect-anomalies  - Detect bill anomalies")
	fmt.Println("    GET  /analysis/models            - List heuristic models")
	fmt.Println("    GET  /items                      - List catalog items")
	fmt.Println("    POST /bills                      - Save a session bill")
	fmt.Println("    POST /audit                      - Audit a bill")
	fmt.Println("    GET  /audit/rules                - List audit rules")
	fmt.Println("    POST /audit/rules/reload         - Hot-reload audit rules")
	fmt.Println("    GET  /reports/{id}               - Get analysis report")
	fmt.Println("    GET  /health                     - Health check")
	fmt.Println()
}
