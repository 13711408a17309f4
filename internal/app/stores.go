// Package app wires the configured storage backend for the server and the
// seeder.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prudhvinik1/foodbridge/internal/config"
	"github.com/prudhvinik1/foodbridge/internal/database"
	"github.com/prudhvinik1/foodbridge/internal/database/migrations"
	"github.com/prudhvinik1/foodbridge/internal/repositories"
)

type Stores struct {
	Users    repositories.UserRepository
	Listings repositories.ListingRepository
	Sessions repositories.SessionRepository

	closers []func()
}

// OpenStores connects to the backend named by cfg.StoreBackend. For postgres
// it also applies pending migrations. The caller must defer Close.
func OpenStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Stores, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		logger.Warn("using in-memory store, data is lost on restart")
		return &Stores{
			Users:    repositories.NewMemoryUserRepository(),
			Listings: repositories.NewMemoryListingRepository(),
			Sessions: repositories.NewMemorySessionRepository(),
		}, nil

	case config.BackendPostgres:
		pool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, err
		}
		s := &Stores{closers: []func(){pool.Close}}

		if err := migrations.MigrateUp(pool); err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}

		redisClient, err := database.NewRedisClient(ctx, cfg.RedisURL, logger)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.closers = append(s.closers, func() { redisClient.Close() })

		s.Users = repositories.NewPostgresUserRepository(pool)
		s.Listings = repositories.NewPostgresListingRepository(pool)
		s.Sessions = repositories.NewRedisSessionRepository(redisClient, logger)
		return s, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// Close releases connections in reverse order of opening.
func (s *Stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}
