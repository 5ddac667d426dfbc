// Command worker drains the asynq queue that removes deleted students' blobs.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/dharsanguruparan/HostelDesk/internal/app"
	"github.com/dharsanguruparan/HostelDesk/internal/blobstore"
	"github.com/dharsanguruparan/HostelDesk/internal/config"
	"github.com/dharsanguruparan/HostelDesk/internal/logger"
	"github.com/dharsanguruparan/HostelDesk/internal/metrics"
	"github.com/dharsanguruparan/HostelDesk/internal/worker"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(os.Getenv("HOSTELDESK_CONFIG"))
	if err != nil {
		logger.Configure(logger.Config{})
		logger.Fatal().Err(err).Msg("load config")
	}
	log := logger.Configure(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogFormat == "pretty"})

	if cfg.S3Endpoint == "" {
		log.Fatal().Msg("S3_ENDPOINT is required by the worker")
	}
	blobs, err := blobstore.NewS3(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init storage")
	}
	if err := blobs.EnsureBuckets(ctx); err != nil {
		log.Fatal().Err(err).Msg("ensure buckets")
	}

	server := asynq.NewServer(app.RedisOpt(cfg), asynq.Config{
		Concurrency: cfg.WorkerConcurrency,
	})
	processor := worker.NewProcessor(blobs, metrics.New(), log)
	mux := processor.Handler()

	go func() {
		<-ctx.Done()
		server.Shutdown()
	}()

	log.Info().Int("concurrency", cfg.WorkerConcurrency).Msg("worker started")
	if err := server.Run(mux); err != nil {
		log.Error().Err(err).Msg("worker stopped")
		os.Exit(1)
	}
}
