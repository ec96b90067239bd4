// Package main runs the rotating recent-search harvester.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/sportsbettor/ingest/internal/api"
	"github.com/sportsbettor/ingest/internal/checkpoint"
	"github.com/sportsbettor/ingest/internal/clock/system"
	"github.com/sportsbettor/ingest/internal/config"
	"github.com/sportsbettor/ingest/internal/harvest"
	"github.com/sportsbettor/ingest/internal/ledger"
	"github.com/sportsbettor/ingest/internal/logging"
	"github.com/sportsbettor/ingest/internal/media"
	"github.com/sportsbettor/ingest/internal/metrics"
	notifypubsub "github.com/sportsbettor/ingest/internal/notify/pubsub"
	"github.com/sportsbettor/ingest/internal/pacing"
	"github.com/sportsbettor/ingest/internal/storage/factory"
	"github.com/sportsbettor/ingest/internal/xsearch"
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
	logger, err := logging.New("harvester", cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(exitConfig)
	}
	defer func() {
		_ = logger.Sync()
	}()
	zap.ReplaceGlobals(logger)

	bearer, err := config.BearerToken()
	if err != nil {
		logger.Error("missing search credential", zap.Error(err))
		os.Exit(exitConfig)
	}
	batches, err := harvest.PlanBatches(cfg.X.Accounts, cfg.X.QueryClause, cfg.X.QuerySuffix, cfg.X.QueryMaxLen)
	if err != nil {
		logger.Error("query batch planning failed", zap.Error(err))
		os.Exit(exitConfig)
	}
	logger.Info("query batches planned",
		zap.Int("accounts", len(cfg.X.Accounts)),
		zap.Int("batches", len(batches)),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	blobs, err := factory.Build(ctx, cfg.Storage.Provider, cfg.Storage.GCSBucket, cfg.Storage.LocalDir)
	if err != nil {
		logger.Error("storage init failed", zap.Error(err))
		os.Exit(exitStartup)
	}
	searcher, err := xsearch.NewClient(xsearch.Config{
		BaseURL: cfg.X.BaseURL,
		Bearer:  bearer,
		Timeout: cfg.XTimeout(),
	})
	if err != nil {
		logger.Error("search client init failed", zap.Error(err))
		os.Exit(exitStartup)
	}
	normalizer, err := harvest.NewNormalizer()
	if err != nil {
		logger.Error("normalizer init failed", zap.Error(err))
		os.Exit(exitStartup)
	}
	refZone, err := time.LoadLocation(harvest.ReferenceZone)
	if err != nil {
		logger.Error("reference zone load failed", zap.Error(err))
		os.Exit(exitStartup)
	}

	clk := system.New()
	pacer, err := pacing.New(pacing.Windows{
		PeakStartHour: cfg.Harvest.PeakStartHour,
		PeakEndHour:   cfg.Harvest.PeakEndHour,
		Peak:          cfg.PeakInterval(),
		OffPeak:       cfg.OffPeakInterval(),
	}, refZone, clk)
	if err != nil {
		logger.Error("pacer init failed", zap.Error(err))
		os.Exit(exitConfig)
	}

	checkpoints := checkpoint.NewStore(blobs, cfg.Storage.RefPrefix)
	rotations := checkpoint.NewRotationStore(blobs, cfg.Storage.RefPrefix)

	persisted, err := checkpoints.Load(ctx)
	if err != nil {
		// A corrupt checkpoint blob means a full re-harvest, never a crash.
		logger.Warn("checkpoint load failed, starting without one", zap.Error(err))
		persisted = ""
	}
	rotation, err := rotations.Load(ctx)
	if err != nil {
		logger.Warn("rotation pointer load failed, starting at batch 0", zap.Error(err))
		rotation = checkpoint.Rotation{}
	}
	if rotation.BatchCount != len(batches) && rotation.BatchCount != 0 {
		logger.Info("batch list changed since last run, rotation restarts",
			zap.Int("was", rotation.BatchCount),
			zap.Int("now", len(batches)),
		)
		rotation.NextIndex = 0
	}
	rotor, err := harvest.NewRotor(len(batches), rotation.NextIndex)
	if err != nil {
		logger.Error("rotor init failed", zap.Error(err))
		os.Exit(exitConfig)
	}

	var cycleLedger harvest.Ledger = ledger.Noop{}
	if cfg.Ledger.DSN != "" {
		pg, err := ledger.NewPostgres(ctx, cfg.Ledger.DSN)
		if err != nil {
			logger.Error("cycle ledger init failed", zap.Error(err))
			os.Exit(exitStartup)
		}
		defer pg.Close()
		cycleLedger = pg
	}
	var notifier harvest.Notifier
	if cfg.Notify.ProjectID != "" && cfg.Notify.Topic != "" {
		nt, err := notifypubsub.New(ctx, cfg.Notify.ProjectID, cfg.Notify.Topic)
		if err != nil {
			logger.Error("commit notifier init failed", zap.Error(err))
			os.Exit(exitStartup)
		}
		defer func() {
			_ = nt.Close()
		}()
		notifier = nt
	}

	metrics.Init()

	loop := harvest.NewLoop(harvest.Deps{
		Batches:    batches,
		Rotor:      rotor,
		Tracker:    harvest.NewCycleTracker(persisted),
		Normalizer: normalizer,
		Searcher:   searcher,
		Sideloader: media.New(blobs, media.Config{
			Prefix:  cfg.Storage.MediaPrefix,
			Timeout: cfg.XTimeout(),
		}, logger.Named("media")),
		Committer:   harvest.NewCommitter(blobs, cfg.Storage.NewsPrefix),
		Checkpoints: checkpoints,
		Rotations:   rotations,
		Pacer:       pacer,
		Ledger:      cycleLedger,
		Notifier:    notifier,
		Clock:       clk,
		MaxResults:  cfg.X.MaxResults,
		Logger:      logger.Named("harvest"),
	})

	var srv *http.Server
	if cfg.API.Port > 0 {
		apiServer := api.NewServer(loop, nil, logger.Named("api"))
		srv = &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.API.Port),
			Handler:           apiServer.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("http server started", zap.Int("port", cfg.API.Port))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", zap.Error(err))
				stop()
			}
		}()
	}

	logger.Info("harvest loop started",
		zap.Int("batches", len(batches)),
		zap.String("checkpoint", string(persisted)),
		zap.Int("resume_index", rotor.NextIndex()),
	)
	if err := loop.Run(ctx); err != nil {
		logger.Error("harvest loop error", zap.Error(err))
	}

	logger.Info("shutdown initiated")
	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", zap.Error(err))
		}
	}
	logger.Info("shutdown complete")
}
