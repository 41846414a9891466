package main

import (
	"context"
	"fmt"

	"github.com/lk2023060901/vehicle-discovery/internal/data"
	"github.com/lk2023060901/vehicle-discovery/internal/pkg/database"
	"github.com/urfave/cli/v3"
)

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Create or update the listings, favorites and saved search tables",
		Action: func(ctx context.Context, c *cli.Command) error {
			config, log, err := loadEnv(c)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			db, err := database.New(&config.Database, log)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			if err := db.Migrate(data.Models()...); err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "migrated %d tables\n", len(data.Models()))
			return nil
		},
	}
}
