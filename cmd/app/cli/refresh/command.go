package refresh

import (
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"go.uber.org/fx"

	cliapp "eversoul.dev/stageguide/cmd/app/cli"
	"eversoul.dev/stageguide/internal/constant"
	"eversoul.dev/stageguide/internal/service"
	"eversoul.dev/stageguide/internal/util/rekuest"
)

type CommandDeps struct {
	fx.In

	RefreshService *service.Refresh
}

func Command() *cli.Command {
	return &cli.Command{
		Name:  "refresh",
		Usage: "download every table of a data source into the persisted cache",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "source",
				Aliases: []string{"s"},
				Usage:   "data source to refresh: all, live or review",
				Value:   constant.SourceAll,
			},
		},
		Action: func(c *cli.Context) error {
			source := c.String("source")
			if err := rekuest.Validate.Var(source, "refreshtarget"); err != nil {
				return cli.Exit("invalid source: expect one of all, live, review, but got: "+source, 2)
			}

			var deps CommandDeps
			stop, err := cliapp.Start(fx.Populate(&deps))
			if err != nil {
				return err
			}
			defer stop()

			task, err := deps.RefreshService.Run(c.Context, source, constant.TaskTypeManual)
			if err != nil {
				return err
			}

			log.Info().
				Str("evt.name", "cli.refresh.finished").
				Str("taskId", task.ID).
				Int("updatedFiles", task.UpdatedFiles).
				Msg("refresh finished")
			return nil
		},
	}
}
