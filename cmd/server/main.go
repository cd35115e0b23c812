package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/emowed/emowed-server/internal/config"
	"github.com/emowed/emowed-server/internal/database"
	"github.com/emowed/emowed-server/internal/server"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	// Load .env file (ignore error if a file doesn't exist)
	// Use Overload to force to overwrite any existing environment variables
	if err := godotenv.Overload(); err != nil {
		log.Warn().Err(err).Msg("no .env file loaded")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close database")
		}
	}()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	srv := server.New(cfg, db, log)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}
