// Package seed fills the store with fake users and listings for local
// development.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/prudhvinik1/foodbridge/internal/models"
	"github.com/prudhvinik1/foodbridge/internal/repositories"
	"github.com/prudhvinik1/foodbridge/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

// Password is shared by every seeded user.
const Password = "password123"

const maxEmailAttempts = 5

var ErrNoDonors = errors.New("no donor users were generated, cannot create listings")

type Seeder struct {
	users        repositories.UserRepository
	listings     repositories.ListingRepository
	faker        *gofakeit.Faker
	logger       *slog.Logger
	passwordCost int
}

type Result struct {
	Users    int
	Donors   int
	Listings int
}

func NewSeeder(users repositories.UserRepository, listings repositories.ListingRepository, faker *gofakeit.Faker, logger *slog.Logger) *Seeder {
	return &Seeder{
		users:        users,
		listings:     listings,
		faker:        faker,
		logger:       logger,
		passwordCost: bcrypt.DefaultCost,
	}
}

// Import replaces all data with userCount users and listingCount listings
// owned by randomly chosen donors.
func (s *Seeder) Import(ctx context.Context, userCount, listingCount int) (*Result, error) {
	if _, _, err := s.Destroy(ctx); err != nil {
		return nil, err
	}
	s.logger.Info("previous data destroyed")

	hash, err := utils.HashPasswordWithCost(Password, s.passwordCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash seed password: %w", err)
	}

	result := &Result{}
	var donors []*models.User
	for i := 0; i < userCount; i++ {
		user, err := s.createUser(ctx, hash)
		if err != nil {
			return nil, err
		}
		result.Users++
		if user.Role == models.RoleDonor {
			donors = append(donors, user)
		}
	}
	result.Donors = len(donors)
	s.logger.Info("users created", "count", result.Users, "donors", result.Donors)

	if listingCount > 0 && len(donors) == 0 {
		return result, ErrNoDonors
	}

	for i := 0; i < listingCount; i++ {
		donor := donors[s.faker.IntRange(0, len(donors)-1)]
		listing := &models.Listing{
			Title:       s.faker.ProductName(),
			Description: s.faker.Sentence(10),
			Quantity:    s.faker.IntRange(1, 20),
			Location:    fmt.Sprintf("%s, %s", s.faker.Street(), s.faker.City()),
			DonorID:     donor.ID,
		}
		if err := s.listings.Create(ctx, listing); err != nil {
			return result, fmt.Errorf("failed to create listing: %w", err)
		}
		result.Listings++
	}
	s.logger.Info("listings created", "count", result.Listings)

	return result, nil
}

func (s *Seeder) createUser(ctx context.Context, hash string) (*models.User, error) {
	role := models.Role(s.faker.RandomString([]string{string(models.RoleDonor), string(models.RoleReceiver)}))

	for attempt := 0; attempt < maxEmailAttempts; attempt++ {
		user := &models.User{
			Name:         s.faker.Name(),
			Email:        strings.ToLower(s.faker.Email()),
			PasswordHash: hash,
			Role:         role,
		}
		err := s.users.Create(ctx, user)
		if errors.Is(err, repositories.ErrEmailExists) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		return user, nil
	}
	return nil, fmt.Errorf("failed to find a free email after %d attempts", maxEmailAttempts)
}

// Destroy removes all listings and then all users.
func (s *Seeder) Destroy(ctx context.Context) (users, listings int64, err error) {
	listings, err = s.listings.DeleteAll(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to delete listings: %w", err)
	}
	users, err = s.users.DeleteAll(ctx)
	if err != nil {
		return 0, listings, fmt.Errorf("failed to delete users: %w", err)
	}
	return users, listings, nil
}
