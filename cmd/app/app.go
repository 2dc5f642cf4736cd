package app

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"eversoul.dev/stageguide/cmd/app/cli/refresh"
	"eversoul.dev/stageguide/cmd/app/server"
	"eversoul.dev/stageguide/internal/pkg/bininfo"
)

func Run() {
	app := &cli.App{
		Name:        "stageguide",
		Description: "EverSoul stage guide backend. Derives stage details and stage lists from the published master data tables. Built with Go, fiber, bun and go.uber.org/fx.",
		Version:     bininfo.Version,
		Commands: []*cli.Command{
			server.Command(),
			refresh.Command(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("failed to run app")
	}
}
