package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/kiritosahai/agrisense-insights/agriservice"
)

func main() {
	// Best effort; deployments set real environment variables.
	_ = godotenv.Load()

	if err := agriservice.Run(); err != nil {
		log.Error().Err(err).Msg("service exited with error")
		os.Exit(1)
	}
}
