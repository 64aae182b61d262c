package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v2"
	"go.uber.org/fx"

	cliapp "exusiai.dev/booking-backend/cmd/app/cli"
	"exusiai.dev/booking-backend/internal/service"
)

type CommandDeps struct {
	fx.In

	DashboardService *service.Dashboard
}

func Command() *cli.Command {
	return &cli.Command{
		Name:  "snapshot",
		Usage: "compute the admin dashboard metrics once and print them as JSON",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "overall timeout of the aggregation pass",
				Value: 30 * time.Second,
			},
			&cli.BoolFlag{
				Name:  "fail-on-degraded",
				Usage: "exit with a non-zero status when any metric is degraded",
			},
		},
		Action: func(c *cli.Context) error {
			var deps CommandDeps
			stop, err := cliapp.Start(fx.Populate(&deps))
			if err != nil {
				return err
			}
			defer func() { _ = stop() }()

			ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
			defer cancel()

			state, err := deps.DashboardService.Refresh(ctx)
			if err != nil {
				return err
			}

			b, err := json.MarshalIndent(state.Snapshot, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, string(b))

			if c.Bool("fail-on-degraded") && state.Snapshot != nil && state.Snapshot.Degraded() {
				return cli.Exit("one or more metrics are degraded", 2)
			}
			return nil
		},
	}
}
