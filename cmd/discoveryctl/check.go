package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lk2023060901/vehicle-discovery/internal/pkg/injector"
	"github.com/urfave/cli/v3"
)

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Run change detection for all saved searches, or one with --id",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "id",
				Usage: "Saved search id",
			},
			&cli.StringFlag{
				Name:  "principal",
				Usage: "Owner of the saved search given by --id",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			id, principal := c.String("id"), c.String("principal")
			if id != "" && principal == "" {
				return errors.New("--principal is required with --id")
			}

			config, log, err := loadEnv(c)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			app, cleanup, err := injector.InitializeApp(config, log)
			if err != nil {
				return err
			}
			defer cleanup()

			out := c.Root().Writer
			if id != "" {
				result, err := app.Detector.CheckByID(ctx, id, principal)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s: %d new since last check, checked at %s\n",
					id, result.NewCount, result.LastCheckedAt.Format(time.RFC3339))
				return nil
			}

			summary, err := app.Scheduler.RunOnce(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "checked %d saved searches, %d failed, %d new matches\n",
				summary.Checked, summary.Failed, summary.NewMatches)
			return nil
		},
	}
}
