package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/joho/godotenv"
	"github.com/prudhvinik1/foodbridge/internal/app"
	"github.com/prudhvinik1/foodbridge/internal/config"
	"github.com/prudhvinik1/foodbridge/internal/seed"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// withSeeder opens the configured store and hands a seeder to fn.
func withSeeder(ctx context.Context, fn func(*seed.Seeder) error) error {
	godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	stores, err := app.OpenStores(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("opening stores: %w", err)
	}
	defer stores.Close()

	faker := gofakeit.New(seedValue)
	return fn(seed.NewSeeder(stores.Users, stores.Listings, faker, logger))
}

var (
	userCount    int
	listingCount int
	seedValue    uint64
)

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load or remove development data",
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Replace all users and listings with fake data",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSeeder(cmd.Context(), func(s *seed.Seeder) error {
			result, err := s.Import(cmd.Context(), userCount, listingCount)
			if err != nil {
				return err
			}
			fmt.Printf("Created %d users (%d donors) and %d listings\n", result.Users, result.Donors, result.Listings)
			fmt.Printf("All users share the password %q\n", seed.Password)
			return nil
		})
	},
}

var destroyCmd = &cobra.Command{
	Use:   "destroy",
	Short: "Delete all users and listings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSeeder(cmd.Context(), func(s *seed.Seeder) error {
			users, listings, err := s.Destroy(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Deleted %d users and %d listings\n", users, listings)
			return nil
		})
	},
}

func init() {
	importCmd.Flags().IntVar(&userCount, "users", 15, "number of users to create")
	importCmd.Flags().IntVar(&listingCount, "listings", 30, "number of listings to create")
	importCmd.Flags().Uint64Var(&seedValue, "seed", 0, "random seed, 0 picks one at random")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(destroyCmd)
}
