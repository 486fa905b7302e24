package main

import (
	"context"
	"os"

	"legaleagle-backend/app"
	"legaleagle-backend/config"
	"legaleagle-backend/handlers"
	"legaleagle-backend/logging"

	"github.com/rs/zerolog/log"
)

func main() {
	// Try current directory first, then project root (relative to cmd/server/)
	config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger := logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
		Output: os.Stdout,
	})

	application, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer application.Close()

	caseHandler := handlers.NewCaseHandler(
		application.Search,
		application.Summary,
		application.Ask,
		logging.Component(logger, "http"),
	)

	r := handlers.NewRouter(caseHandler, application.Metrics.Handler())

	logger.Info().
		Str("port", cfg.Port).
		Str("document_source", cfg.DocumentSource).
		Msg("Server starting")
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
}
