package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clusterscope/evidence-core/internal/api"
	"github.com/clusterscope/evidence-core/internal/config"
	"github.com/clusterscope/evidence-core/internal/intake"
	"github.com/clusterscope/evidence-core/internal/knowledge"
	"github.com/clusterscope/evidence-core/internal/services"
	"github.com/clusterscope/evidence-core/pkg/cache"
	"github.com/clusterscope/evidence-core/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logger.New(cfg.LogLevel)
	logger.Info("Starting EVIDENCE-CORE", "version", "v0.3.1", "environment", cfg.Environment)

	// Shared dedup cache; falls back to per-process dedup when Valkey is
	// unreachable so alert intake keeps working in degraded mode.
	dedupCache, err := cache.NewValkeyCache(
		cfg.Cache.Addr,
		cfg.Cache.DB,
		cfg.Cache.Password,
		time.Duration(cfg.Cache.TTL)*time.Second,
		logger,
	)
	if err != nil {
		logger.Warn("Valkey connection failed", "addr", cfg.Cache.Addr, "error", err)
		dedupCache = cache.NewMemoryCache(logger)
	} else {
		logger.Info("Valkey dedup cache connected", "addr", cfg.Cache.Addr)
	}

	investigator := services.NewInvestigatorService(cfg.Investigator, logger)
	releases := services.NewReleaseStoreService(cfg.Releases, logger)
	logStore := services.NewLogStoreService(cfg.LogStore, logger)

	knowledgeStore, err := knowledge.NewStore(cfg.Knowledge.Path, logger)
	if err != nil {
		logger.Fatal("Failed to open knowledge base", "path", cfg.Knowledge.Path, "error", err)
	}

	alertIntake := intake.New(dedupCache, investigator, cfg.Intake.TTL(), logger)

	apiServer := api.NewServer(cfg, logger, dedupCache, alertIntake, releases, logStore, knowledgeStore)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Hot-reload when a config file is present. Endpoints and TTLs apply on
	// the next restart; the reload mostly serves operator visibility.
	for _, path := range []string{"/etc/evidence-core/config.yaml", "./configs/config.yaml", "./config.yaml"} {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		watcher := config.NewConfigWatcher(path, logger)
		watcher.RegisterWatcher(func(updated *config.Config) {
			logger.Info("Configuration reloaded",
				"dedupTTL", updated.Intake.TTL(),
				"logLevel", updated.LogLevel,
			)
		})
		go func() {
			if err := watcher.Start(ctx); err != nil {
				logger.Warn("Configuration watcher exited", "error", err)
			}
		}()
		break
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		logger.Info("Shutdown signal received")
		cancel()
	}()

	if err := apiServer.Start(ctx); err != nil {
		logger.Fatal("Server failed to start", "error", err)
	}

	logger.Info("EVIDENCE-CORE shutdown complete")
}
