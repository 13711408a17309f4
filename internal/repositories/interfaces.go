package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/prudhvinik1/foodbridge/internal/models"
)

var (
	ErrNotFound = errors.New("not found")

	// ErrStatusConflict is returned when a conditional transition finds the
	// listing in a state other than the expected one.
	ErrStatusConflict = errors.New("status conflict: listing was modified by another request")

	ErrEmailExists = errors.New("email already exists")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// ListingRepository persists listings. Transition is the only way status and
// receiver change, and it must be a single atomic check-and-set.
type ListingRepository interface {
	Create(ctx context.Context, listing *models.Listing) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	ListByStatus(ctx context.Context, status models.ListingStatus) ([]*models.Listing, error)
	Transition(ctx context.Context, id uuid.UUID, from, to models.ListingStatus, receiverID *uuid.UUID) (*models.Listing, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context) (int64, error)
}

type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, id string) (*models.Session, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) error
}
