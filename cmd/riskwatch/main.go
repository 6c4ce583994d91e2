package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"riskwatch/internal/alerts"
	"riskwatch/internal/api"
	"riskwatch/internal/cache"
	"riskwatch/internal/catalog"
	"riskwatch/internal/config"
	"riskwatch/internal/engine"
	"riskwatch/internal/history"
	"riskwatch/internal/ingest"
	"riskwatch/internal/logging"
	"riskwatch/internal/model"
	"riskwatch/internal/storage"
)

const version = "1.0.0"

func main() {
	configPath := flag.String("config", "riskwatch.yaml", "path to config file")
	writeDefault := flag.Bool("write-default-config", false, "write a default config file and exit")
	flag.Parse()

	_ = godotenv.Load()

	if *writeDefault {
		cfg := config.DefaultConfig()
		if err := config.Save(*configPath, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "write config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("wrote default config to %s\n", *configPath)
		return
	}

	manager, err := config.NewManager(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	cfg := manager.Get()

	logger := logging.NewLogger(cfg.LogLevel)
	logger.Info("riskwatch starting", "version", version, "config", *configPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	countries, err := catalog.Load(config.ResolvePath(cfg.Catalog.Path))
	if err != nil {
		logger.Error("load country catalog", "err", err)
		os.Exit(1)
	}
	if countries.Len() > 0 {
		logger.Info("country catalog loaded", "countries", countries.Len())
	}

	store, err := storage.NewStore(cfg.Storage)
	if err != nil {
		logger.Error("open storage", "err", err)
		os.Exit(1)
	}
	if store != nil {
		if err := store.Init(ctx); err != nil {
			logger.Error("init storage", "err", err)
			os.Exit(1)
		}
		defer store.Close()
		logger.Info("storage enabled", "driver", cfg.Storage.Driver)
	}

	cacheStore := cache.New(cfg.Cache)

	historyStore := history.NewStore(cfg.History.StoreLimit)
	alertsStore := alerts.NewStore(cfg.Alerts.StoreLimit)

	eng := engine.NewEngine(cfg, logger, historyStore, alertsStore, store, cacheStore)

	evidence := make(chan model.EvidenceSet, cfg.Ingest.ChannelBuffer)
	eng.Start(ctx, evidence)

	if cfg.Ingest.REST.Enabled {
		ingest.StartREST(ctx, manager, evidence, logger)
	}
	if cfg.Ingest.Kafka.Enabled {
		ingest.StartKafka(ctx, manager, evidence, logger)
	}
	if cfg.Ingest.File.Enabled {
		ingest.StartFileTail(ctx, manager, evidence, logger)
	}

	api.Start(ctx, manager, historyStore, alertsStore, cacheStore, countries, eng, logger, version)

	go manager.Watch(10*time.Second,
		func(updated *config.Config) {
			eng.UpdateConfig(updated)
			logger.Info("config reloaded", "path", *configPath)
		},
		func(err error) {
			logger.Warn("config reload failed", "err", err)
		},
		ctx.Done(),
	)

	<-ctx.Done()
	logger.Info("riskwatch shutting down")
}
