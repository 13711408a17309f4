package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/prudhvinik1/foodbridge/internal/models"
	"github.com/prudhvinik1/foodbridge/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newTestAuthService(expiry time.Duration) *AuthService {
	return NewAuthService(
		repositories.NewMemoryUserRepository(),
		repositories.NewMemorySessionRepository(),
		testSecret,
		expiry,
	)
}

func registerDonor(t *testing.T, svc *AuthService) *models.User {
	t.Helper()
	user, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Dana Donor",
		Email:    "Dana@Example.com",
		Password: "password123",
		Role:     models.RoleDonor,
	})
	require.NoError(t, err)
	return user
}

func TestAuthService_Register(t *testing.T) {
	svc := newTestAuthService(time.Hour)

	user := registerDonor(t, svc)

	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, "dana@example.com", user.Email, "email is normalized")
	assert.NotEqual(t, "password123", user.PasswordHash)
	assert.Equal(t, models.RoleDonor, user.Role)
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	svc := newTestAuthService(time.Hour)
	registerDonor(t, svc)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Other",
		Email:    "dana@example.com",
		Password: "password123",
		Role:     models.RoleReceiver,
	})

	assert.ErrorIs(t, err, ErrConflict)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	svc := newTestAuthService(time.Hour)

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"missing name", RegisterRequest{Email: "a@b.co", Password: "password123", Role: models.RoleDonor}},
		{"bad email", RegisterRequest{Name: "A", Email: "not-an-email", Password: "password123", Role: models.RoleDonor}},
		{"bad role", RegisterRequest{Name: "A", Email: "a@b.co", Password: "password123", Role: "admin"}},
		{"short password", RegisterRequest{Name: "A", Email: "a@b.co", Password: "short", Role: models.RoleDonor}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestAuthService_LoginAndAuthenticate(t *testing.T) {
	svc := newTestAuthService(time.Hour)
	ctx := context.Background()
	user := registerDonor(t, svc)

	// ACT
	resp, err := svc.Login(ctx, "dana@example.com", "password123")

	// ASSERT
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, user.ID, resp.User.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), resp.ExpiresAt, 5*time.Second)

	identity, err := svc.Authenticate(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.UserID)
	assert.Equal(t, models.RoleDonor, identity.Role)

	me, err := svc.Me(ctx, identity.UserID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, me.Email)
}

func TestAuthService_LoginRejectsBadCredentials(t *testing.T) {
	svc := newTestAuthService(time.Hour)
	registerDonor(t, svc)

	_, err := svc.Login(context.Background(), "dana@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Login(context.Background(), "nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthService_LogoutRevokesToken(t *testing.T) {
	svc := newTestAuthService(time.Hour)
	ctx := context.Background()
	registerDonor(t, svc)

	resp, err := svc.Login(ctx, "dana@example.com", "password123")
	require.NoError(t, err)
	identity, err := svc.Authenticate(ctx, resp.Token)
	require.NoError(t, err)

	// ACT
	require.NoError(t, svc.Logout(ctx, identity))

	// ASSERT: the token is still well-formed but no longer accepted
	_, err = svc.VerifyToken(resp.Token)
	assert.NoError(t, err)
	_, err = svc.Authenticate(ctx, resp.Token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthService_LogoutAll(t *testing.T) {
	svc := newTestAuthService(time.Hour)
	ctx := context.Background()
	registerDonor(t, svc)

	first, err := svc.Login(ctx, "dana@example.com", "password123")
	require.NoError(t, err)
	second, err := svc.Login(ctx, "dana@example.com", "password123")
	require.NoError(t, err)

	identity, err := svc.Authenticate(ctx, first.Token)
	require.NoError(t, err)
	require.NoError(t, svc.LogoutAll(ctx, identity))

	_, err = svc.Authenticate(ctx, first.Token)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = svc.Authenticate(ctx, second.Token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthService_RejectsForeignTokens(t *testing.T) {
	svc := newTestAuthService(time.Hour)

	claims := jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		ID:        "session",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}

	wrongKey, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	require.NoError(t, err)
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"wrong key": wrongKey,
		"alg none":  unsigned,
		"garbage":   "not.a.token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.VerifyToken(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestAuthService_ExpiredToken(t *testing.T) {
	svc := newTestAuthService(-time.Minute)
	registerDonor(t, svc)

	resp, err := svc.Login(context.Background(), "dana@example.com", "password123")
	require.NoError(t, err)

	_, err = svc.VerifyToken(resp.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
