package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/GoAgora/go-agora/app"
)

func main() {
	if _, err := maxprocs.Set(maxprocs.Logger(log.Debug().Msgf)); err != nil {
		log.Warn().Err(err).Msg("failed to set GOMAXPROCS")
	}

	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
