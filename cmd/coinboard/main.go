// Command coinboard serves the price history dashboard: it loads the
// daily OHLCV dataset, derives the chart series, and exposes them over
// HTTP.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"coinboard/internal/config"
	"coinboard/internal/loader"
	"coinboard/internal/logger"
	"coinboard/internal/server"
)

func main() {
	log := logger.Default()

	// Load environment variables from .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("failed to load .env file")
	}

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.WithError(err).Error("failed to load configuration")
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Error("invalid configuration")
		os.Exit(1)
	}
	if err := log.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.MaxAge); err != nil {
		log.WithError(err).Error("failed to configure logger")
		os.Exit(1)
	}

	// Load the dataset up front so a bad path or an unusable file
	// stops the process instead of surfacing on the first request.
	cache := loader.NewCache()
	frame, err := cache.Load(cfg.Data.CSVPath)
	if err != nil {
		log.WithError(err).WithFields(logger.Fields{"path": cfg.Data.CSVPath}).Error("failed to load dataset")
		os.Exit(1)
	}
	if frame.Empty() {
		log.WithFields(logger.Fields{"path": cfg.Data.CSVPath}).Error("dataset has no usable rows")
		os.Exit(1)
	}
	log.WithComponent("main").WithFields(logger.Fields{
		"path":  cfg.Data.CSVPath,
		"asset": cfg.Data.Asset,
		"rows":  frame.Len(),
		"start": frame.Start().Format("2006-01-02"),
		"end":   frame.End().Format("2006-01-02"),
	}).Info("dataset loaded")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.New(cfg, log, cache).Run(ctx); err != nil {
		log.WithError(err).Error("server exited with error")
		os.Exit(1)
	}
	log.Info("coinboard stopped")
}
