package app

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"exusiai.dev/booking-backend/cmd/app/cli/snapshot"
	"exusiai.dev/booking-backend/cmd/app/server"
	"exusiai.dev/booking-backend/internal/pkg/bininfo"
)

func Run() {
	app := &cli.App{
		Name:        "bookingbackend",
		Description: "Admin backend of the booking dashboard. Aggregates record counts into dashboard metrics. Built with Go, fiber, bun and go.uber.org/fx.",
		Version:     bininfo.Version,
		Commands: []*cli.Command{
			server.Command(),
			snapshot.Command(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("failed to run app")
	}
}
