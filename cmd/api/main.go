package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/partyplan/party-order-backend/internal/api"
	"github.com/partyplan/party-order-backend/internal/domain/catalog"
	"github.com/partyplan/party-order-backend/internal/infrastructure/config"
	"github.com/partyplan/party-order-backend/internal/infrastructure/logging"
	"github.com/partyplan/party-order-backend/internal/infrastructure/storage"
)

func main() {
	var (
		configFile = flag.String("config", "", "Configuration file path")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.LoadOrEnvWithPath(*configFile)
	if *verbose {
		cfg.Observability.Logging.Level = slog.LevelDebug.String()
	}

	logger := logging.NewLoggerWithSystem(cfg.Observability.Logging, "api")

	store, err := storage.NewStorage(cfg.Storage.DatabasePath)
	if err != nil {
		logger.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	var cat *catalog.Catalog
	if cfg.Promotion.CatalogPath != "" {
		cat, err = catalog.Load(cfg.Promotion.CatalogPath)
		if errors.Is(err, catalog.ErrNotConfigured) {
			logger.Warn("promotion catalog file missing, catalog endpoint disabled", "path", cfg.Promotion.CatalogPath)
			cat = nil
		} else if err != nil {
			logger.Error("failed to load promotion catalog", "path", cfg.Promotion.CatalogPath, "error", err)
			os.Exit(1)
		}
	} else {
		cat = catalog.Default()
	}

	server := api.NewServer(api.Config{
		Port:           cfg.API.Port,
		AllowedOrigins: cfg.API.AllowedOrigins,
	}, store, cat, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logger.Info("received signal, shutting down", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("shutdown failed", "error", err)
			os.Exit(1)
		}
	}
}
