package repositories

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/prudhvinik1/foodbridge/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSessionRepository_Create tests creating a session with TTL
func TestSessionRepository_Create(t *testing.T) {
	mr, client := getTestRedis(t)
	repo := NewRedisSessionRepository(client, discardLogger())
	ctx := context.Background()

	userID := uuid.New()

	// ACT: Create a session
	session := &models.Session{
		ID:        "session-123",
		UserID:    userID,
		ExpiresAt: time.Now().Add(24 * time.Hour),
		CreatedAt: time.Now(),
	}
	err := repo.Create(ctx, session)

	// ASSERT: Should succeed
	require.NoError(t, err)

	retrieved, err := repo.GetByID(ctx, "session-123")
	require.NoError(t, err)
	assert.Equal(t, userID, retrieved.UserID)

	// TTL follows ExpiresAt
	ttl := mr.TTL(sessionPrefix + "session-123")
	assert.InDelta(t, (24 * time.Hour).Seconds(), ttl.Seconds(), 5)

	// Verify secondary index was created
	sessions, err := repo.ListByUserID(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, sessions, 1, "User should have 1 session")
	assert.Equal(t, "session-123", sessions[0].ID)
}

func TestSessionRepository_CreateRejectsExpired(t *testing.T) {
	_, client := getTestRedis(t)
	repo := NewRedisSessionRepository(client, discardLogger())

	err := repo.Create(context.Background(), &models.Session{
		ID:        "stale",
		UserID:    uuid.New(),
		ExpiresAt: time.Now().Add(-time.Minute),
	})

	assert.Error(t, err)
}

// TestSessionRepository_Expiration tests the lazy cleanup of the user index
func TestSessionRepository_Expiration(t *testing.T) {
	mr, client := getTestRedis(t)
	repo := NewRedisSessionRepository(client, discardLogger())
	ctx := context.Background()

	userID := uuid.New()

	require.NoError(t, repo.Create(ctx, &models.Session{
		ID:        "expired-session",
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Second),
		CreatedAt: time.Now(),
	}))
	require.NoError(t, repo.Create(ctx, &models.Session{
		ID:        "valid-session",
		UserID:    userID,
		ExpiresAt: time.Now().Add(24 * time.Hour),
		CreatedAt: time.Now(),
	}))

	// Let the first session expire
	mr.FastForward(2 * time.Second)

	// ACT: List sessions - should trigger lazy cleanup
	sessions, err := repo.ListByUserID(ctx, userID)

	// ASSERT: Only the valid session remains, expired one removed from the index
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "valid-session", sessions[0].ID)

	_, err = repo.GetByID(ctx, "expired-session")
	assert.ErrorIs(t, err, ErrNotFound)

	members, err := client.SMembers(ctx, "user:"+userID.String()+":sessions").Result()
	require.NoError(t, err)
	assert.Equal(t, []string{"valid-session"}, members)
}

// TestSessionRepository_Delete tests removing a session and cleaning up index
func TestSessionRepository_Delete(t *testing.T) {
	_, client := getTestRedis(t)
	repo := NewRedisSessionRepository(client, discardLogger())
	ctx := context.Background()

	userID := uuid.New()
	require.NoError(t, repo.Create(ctx, &models.Session{
		ID:        "session-to-delete",
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
	}))

	// ACT
	err := repo.Delete(ctx, "session-to-delete")

	// ASSERT
	require.NoError(t, err)

	_, err = repo.GetByID(ctx, "session-to-delete")
	assert.ErrorIs(t, err, ErrNotFound, "Session should be deleted")

	sessions, err := repo.ListByUserID(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, sessions)

	// Deleting again reports not found
	assert.ErrorIs(t, repo.Delete(ctx, "session-to-delete"), ErrNotFound)
}

func TestSessionRepository_DeleteAllForUser(t *testing.T) {
	_, client := getTestRedis(t)
	repo := NewRedisSessionRepository(client, discardLogger())
	ctx := context.Background()

	userID := uuid.New()
	otherID := uuid.New()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &models.Session{
			ID:        uuid.NewString(),
			UserID:    userID,
			ExpiresAt: time.Now().Add(time.Hour),
			CreatedAt: time.Now(),
		}))
	}
	require.NoError(t, repo.Create(ctx, &models.Session{
		ID:        "other",
		UserID:    otherID,
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	// ACT
	err := repo.DeleteAllForUser(ctx, userID)

	// ASSERT: only the target user's sessions are gone
	require.NoError(t, err)

	sessions, err := repo.ListByUserID(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, sessions)

	_, err = repo.GetByID(ctx, "other")
	assert.NoError(t, err)
}

// getTestRedis starts an in-process Redis server for the test
func getTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
