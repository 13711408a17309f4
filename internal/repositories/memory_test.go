package repositories

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/prudhvinik1/foodbridge/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryListingRepository_CreateResetsLifecycleFields(t *testing.T) {
	repo := NewMemoryListingRepository()
	ctx := context.Background()
	stray := uuid.New()

	listing := &models.Listing{
		Title:      "Bread",
		Quantity:   5,
		DonorID:    uuid.New(),
		Status:     models.StatusPickedUp,
		ReceiverID: &stray,
	}
	require.NoError(t, repo.Create(ctx, listing))

	assert.NotEqual(t, uuid.Nil, listing.ID)
	assert.Equal(t, models.StatusAvailable, listing.Status)
	assert.Nil(t, listing.ReceiverID)
	assert.False(t, listing.CreatedAt.IsZero())
}

func TestMemoryListingRepository_Transition(t *testing.T) {
	repo := NewMemoryListingRepository()
	ctx := context.Background()

	listing := &models.Listing{Title: "Soup", Quantity: 2, DonorID: uuid.New()}
	require.NoError(t, repo.Create(ctx, listing))
	receiver := uuid.New()

	claimed, err := repo.Transition(ctx, listing.ID, models.StatusAvailable, models.StatusClaimed, &receiver)
	require.NoError(t, err)
	assert.Equal(t, models.StatusClaimed, claimed.Status)
	require.NotNil(t, claimed.ReceiverID)
	assert.Equal(t, receiver, *claimed.ReceiverID)

	// Second transition from the same state loses
	_, err = repo.Transition(ctx, listing.ID, models.StatusAvailable, models.StatusClaimed, &receiver)
	assert.ErrorIs(t, err, ErrStatusConflict)

	// nil receiver keeps the existing one
	picked, err := repo.Transition(ctx, listing.ID, models.StatusClaimed, models.StatusPickedUp, nil)
	require.NoError(t, err)
	assert.Equal(t, receiver, *picked.ReceiverID)

	_, err = repo.Transition(ctx, uuid.New(), models.StatusAvailable, models.StatusClaimed, &receiver)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryListingRepository_ConcurrentTransitionHasOneWinner(t *testing.T) {
	repo := NewMemoryListingRepository()
	ctx := context.Background()

	listing := &models.Listing{Title: "Rice", Quantity: 10, DonorID: uuid.New()}
	require.NoError(t, repo.Create(ctx, listing))

	const racers = 50
	var wins, conflicts int64
	var winner atomic.Value
	var wg sync.WaitGroup
	wg.Add(racers)
	for i := 0; i < racers; i++ {
		go func() {
			defer wg.Done()
			receiver := uuid.New()
			_, err := repo.Transition(ctx, listing.ID, models.StatusAvailable, models.StatusClaimed, &receiver)
			switch {
			case err == nil:
				atomic.AddInt64(&wins, 1)
				winner.Store(receiver)
			case errors.Is(err, ErrStatusConflict):
				atomic.AddInt64(&conflicts, 1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), wins)
	assert.Equal(t, int64(racers-1), conflicts)

	// The stored receiver is the one racer that won
	stored, err := repo.GetByID(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusClaimed, stored.Status)
	require.NotNil(t, stored.ReceiverID)
	assert.Equal(t, winner.Load().(uuid.UUID), *stored.ReceiverID)
}

func TestMemoryListingRepository_ListByStatus(t *testing.T) {
	repo := NewMemoryListingRepository()
	ctx := context.Background()
	donor := uuid.New()

	a := &models.Listing{Title: "A", Quantity: 1, DonorID: donor}
	b := &models.Listing{Title: "B", Quantity: 1, DonorID: donor}
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	receiver := uuid.New()
	_, err := repo.Transition(ctx, a.ID, models.StatusAvailable, models.StatusClaimed, &receiver)
	require.NoError(t, err)

	available, err := repo.ListByStatus(ctx, models.StatusAvailable)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, b.ID, available[0].ID)

	n, err := repo.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestMemoryUserRepository_EmailUnique(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{Name: "Ann", Email: "ann@example.com", Role: models.RoleDonor}))
	err := repo.Create(ctx, &models.User{Name: "Ann 2", Email: "ANN@example.com", Role: models.RoleReceiver})
	assert.ErrorIs(t, err, ErrEmailExists)

	user, err := repo.GetByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ann", user.Name)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}
