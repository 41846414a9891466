package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/lk2023060901/vehicle-discovery/internal/data"
	listingdata "github.com/lk2023060901/vehicle-discovery/internal/listing/data"
	"github.com/lk2023060901/vehicle-discovery/internal/listing/types"
	"github.com/lk2023060901/vehicle-discovery/internal/pkg/database"
	"github.com/urfave/cli/v3"
	"gorm.io/gorm"
)

const seedMaxRetries = 3

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:      "seed",
		Usage:     "Load listings from a JSON array into the store in one transaction",
		ArgsUsage: "<listings.json>",
		Action: func(ctx context.Context, c *cli.Command) error {
			path := c.Args().First()
			if path == "" {
				return fmt.Errorf("missing listings file")
			}

			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			listings, err := decodeListings(f, time.Now().UTC())
			if err != nil {
				return err
			}

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

			if err := seedListings(ctx, db, listings); err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "seeded %d listings\n", len(listings))
			return nil
		},
	}
}

// decodeListings reads a JSON array of listings. Missing status defaults to
// ACTIVE and missing creation time to now.
func decodeListings(r io.Reader, now time.Time) ([]*types.Listing, error) {
	var listings []*types.Listing
	if err := json.NewDecoder(r).Decode(&listings); err != nil {
		return nil, fmt.Errorf("failed to decode listings: %w", err)
	}

	for i, l := range listings {
		if l == nil {
			return nil, fmt.Errorf("listing %d is null", i)
		}
		l.ID = 0
		if l.Status == "" {
			l.Status = types.StatusActive
		}
		if l.Mode == "" {
			l.Mode = types.ModeSale
		}
		if l.CreatedAt.IsZero() {
			l.CreatedAt = now
		}
	}
	return listings, nil
}

func seedListings(ctx context.Context, db *database.DB, listings []*types.Listing) error {
	repo := listingdata.NewListingRepo(db).(*listingdata.ListingRepo)
	tm := database.NewTransactionManager(db)

	return tm.ExecuteWithRetry(ctx, seedMaxRetries, func(tx *gorm.DB) error {
		return repo.CreateBatch(ctx, tx, listings)
	})
}
