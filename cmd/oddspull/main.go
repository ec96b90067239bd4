// Package main runs one odds snapshot pull and exits.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/sportsbettor/ingest/internal/clock/system"
	"github.com/sportsbettor/ingest/internal/config"
	"github.com/sportsbettor/ingest/internal/logging"
	"github.com/sportsbettor/ingest/internal/odds"
	"github.com/sportsbettor/ingest/internal/storage/factory"
)

const (
	exitConfig  = 1
	exitStartup = 2
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	envPath := flag.String("env", "", "Path to .env file (default .env)")
	props := flag.Bool("props", false, "Pull per-event player prop markets instead of the single-market snapshot")
	flag.Parse()

	if err := config.LoadDotenv(*envPath); err != nil {
		fmt.Fprintf(os.Stderr, "load .env failed: %v\n", err)
		os.Exit(exitConfig)
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(exitConfig)
	}
	logger, err := logging.New("oddspull", cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(exitConfig)
	}
	defer func() {
		_ = logger.Sync()
	}()

	apiKey, err := config.OddsAPIKey()
	if err != nil {
		logger.Error("missing odds credential", zap.Error(err))
		os.Exit(exitConfig)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	blobs, err := factory.Build(ctx, cfg.Storage.Provider, cfg.Storage.GCSBucket, cfg.Storage.LocalDir)
	if err != nil {
		logger.Error("storage init failed", zap.Error(err))
		os.Exit(exitStartup)
	}
	client, err := odds.NewClient(cfg.Odds.BaseURL, apiKey, blobs, cfg.Storage.OddsPrefix, cfg.OddsTimeout(), logger)
	if err != nil {
		logger.Error("odds client init failed", zap.Error(err))
		os.Exit(exitStartup)
	}

	var snap odds.Snapshot
	if *props {
		snap, err = client.PullEventProps(ctx, odds.PropsParams{
			Sport:      cfg.Odds.Sport,
			Regions:    cfg.Odds.Regions,
			Markets:    cfg.Odds.PropMarkets,
			OddsFormat: cfg.Odds.OddsFormat,
			MaxEvents:  cfg.Odds.MaxEvents,
		}, system.New().Now())
	} else {
		snap, err = client.Pull(ctx, odds.Params{
			Sport:      cfg.Odds.Sport,
			Regions:    cfg.Odds.Regions,
			Bookmaker:  cfg.Odds.Bookmaker,
			Market:     cfg.Odds.Market,
			OddsFormat: cfg.Odds.OddsFormat,
			DaysFrom:   cfg.Odds.DaysFrom,
		}, system.New().Now())
	}
	if err != nil {
		logger.Error("odds pull failed", zap.Error(err))
		os.Exit(exitStartup)
	}

	logger.Info("odds pull complete",
		zap.String("artifact", snap.URI),
		zap.Int("events", snap.Events),
	)
}
