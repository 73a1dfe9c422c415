// Package main - Entry point for the freight-cost quote server
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"freight-cost/adapters/catalog"
	"freight-cost/adapters/storage"
	"freight-cost/api"
	"freight-cost/core/engine"
	"freight-cost/internal/config"
	"freight-cost/internal/logging"
)

const version = "1.0.0"

func main() {
	cfgPath := flag.String("config", "", "config file")
	envFile := flag.String("env-file", ".env", "dotenv file with FREIGHT_COST_* overrides")
	addr := flag.String("addr", "", "server address (overrides config)")
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			panic(fmt.Sprintf("load config: %v", err))
		}
		cfg = loaded
	}
	cfg.LoadEnv(*envFile)
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	config.Set(cfg)

	if err := logging.Initialize(cfg.Logging); err != nil {
		panic(fmt.Sprintf("init logging: %v", err))
	}
	defer logging.Sync()
	log := logging.With(zap.String("version", version)).Named("server")

	store, err := storage.StoreFactory(storage.Backend(cfg.Storage.Backend), cfg.Storage.Options())
	if err != nil {
		log.Fatal("failed to open quote store", zap.Error(err))
	}
	defer store.Close()

	ec := engine.DefaultConfig()
	if cfg.Engine.FallbackTruckAgent != "" {
		ec.FallbackTruckAgent = cfg.Engine.FallbackTruckAgent
	}
	if tag, err := language.Parse(cfg.Engine.Locale); err == nil {
		ec.Locale = tag
	} else {
		log.Warn("invalid engine locale, using default", zap.String("locale", cfg.Engine.Locale))
	}

	server := api.NewServer(api.Options{
		Version:        version,
		Engine:         engine.New(ec, engine.WithLogger(logging.Named("engine"))),
		Store:          store,
		Logger:         log,
		MetricsEnabled: cfg.Server.MetricsEnabled,
		RateLimit:      cfg.Server.RateLimit,
		RateBurst:      cfg.Server.RateBurst,
	})

	reloader, err := catalog.NewReloader(cfg.Catalog.Path, cfg.Catalog.ReloadSchedule, server.SetCatalog, logging.Named("catalog"))
	if err != nil {
		log.Fatal("invalid catalog settings", zap.Error(err))
	}
	if _, err := reloader.Reload(); err != nil {
		log.Fatal("failed to load catalog", zap.String("path", cfg.Catalog.Path), zap.Error(err))
	}
	if err := reloader.Start(); err != nil {
		log.Fatal("failed to schedule catalog reload", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		reloader.Stop(ctx)
	}()

	log.Info("freight-cost server starting",
		zap.String("addr", cfg.Server.Addr),
		zap.String("catalog", cfg.Catalog.Path))

	if err := http.ListenAndServe(cfg.Server.Addr, server); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
