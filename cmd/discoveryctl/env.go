package main

import (
	"fmt"

	"github.com/lk2023060901/vehicle-discovery/internal/conf"
	"github.com/lk2023060901/vehicle-discovery/internal/pkg/logger"
	"github.com/urfave/cli/v3"
)

// loadEnv reads config and builds the logger shared by every command.
// debug swaps the configured logger for a console one at debug level.
func loadEnv(c *cli.Command) (*conf.Config, *logger.Logger, error) {
	config, err := conf.LoadConfig(c.String("config"))
	if err != nil {
		return nil, nil, err
	}

	var log *logger.Logger
	if c.Bool("debug") {
		log, err = logger.Development(logger.WithService("discoveryctl"))
	} else {
		log, err = logger.New(&config.Log)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.SetGlobal(log)

	return config, log, nil
}
