// Command server runs the HostelDesk admin API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/dharsanguruparan/HostelDesk/internal/app"
	"github.com/dharsanguruparan/HostelDesk/internal/config"
	"github.com/dharsanguruparan/HostelDesk/internal/logger"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("HOSTELDESK_CONFIG"))
	if err != nil {
		logger.Configure(logger.Config{})
		logger.Fatal().Err(err).Msg("load config")
	}
	log := logger.Configure(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogFormat == "pretty"})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init app")
	}
	defer application.Close()

	log.Info().Str("address", cfg.Address).Str("store", cfg.Store).Msg("HostelDesk listening")
	if err := application.Server().Serve(ctx); err != nil {
		log.Error().Err(err).Msg("server stopped")
		application.Close()
		os.Exit(1)
	}
}
