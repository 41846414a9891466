package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/lk2023060901/vehicle-discovery/internal/auth"
	"github.com/urfave/cli/v3"
)

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Mint a bearer token for a principal (development only)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "principal",
				Usage:    "Principal id to embed as user_id",
				Required: true,
			},
			&cli.DurationFlag{
				Name:  "ttl",
				Usage: "Token lifetime; defaults to auth.token_ttl",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			principal := c.String("principal")
			if principal == "" {
				return errors.New("principal must not be empty")
			}

			config, _, err := loadEnv(c)
			if err != nil {
				return err
			}

			ttl := config.Auth.TokenTTL
			if c.IsSet("ttl") {
				ttl = c.Duration("ttl")
			}

			token, err := auth.NewJWTManager(config.Auth.JWTSecret, config.Auth.JWTIssuer, ttl).GenerateToken(principal)
			if err != nil {
				return err
			}

			fmt.Fprintln(c.Root().Writer, token)
			return nil
		},
	}
}
