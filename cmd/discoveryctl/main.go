package main

import (
	"context"
	"log"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	app := &cli.Command{
		Name:  "discoveryctl",
		Usage: "Operate the vehicle discovery service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Configuration file path",
				Value: "configs/config.yaml",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Log to the console at debug level",
			},
		},
		Commands: []*cli.Command{
			migrateCommand(),
			checkCommand(),
			tokenCommand(),
			seedCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
