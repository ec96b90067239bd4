// Package main runs one RSS pull across the configured feeds and exits.
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
	"github.com/sportsbettor/ingest/internal/feeds"
	"github.com/sportsbettor/ingest/internal/logging"
	"github.com/sportsbettor/ingest/internal/storage/factory"
)

const (
	exitConfig  = 1
	exitStartup = 2
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	envPath := flag.String("env", "", "Path to .env file (default .env)")
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
	logger, err := logging.New("rsspull", cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(exitConfig)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if len(cfg.Feeds.Sources) == 0 {
		logger.Error("no feed sources configured")
		os.Exit(exitConfig)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	blobs, err := factory.Build(ctx, cfg.Storage.Provider, cfg.Storage.GCSBucket, cfg.Storage.LocalDir)
	if err != nil {
		logger.Error("storage init failed", zap.Error(err))
		os.Exit(exitStartup)
	}

	sources := make([]feeds.Source, len(cfg.Feeds.Sources))
	for i, s := range cfg.Feeds.Sources {
		sources[i] = feeds.Source{Name: s.Name, URL: s.URL}
	}
	puller := feeds.NewPuller(blobs, cfg.Storage.NewsPrefix, sources, cfg.FeedsTimeout(), logger)

	uri, count, err := puller.Pull(ctx, system.New().Now())
	if err != nil {
		logger.Error("rss pull failed", zap.Error(err))
		os.Exit(exitStartup)
	}
	if count == 0 {
		logger.Warn("no entries collected from any feed")
		return
	}
	logger.Info("rss pull complete",
		zap.String("artifact", uri),
		zap.Int("entries", count),
	)
}
