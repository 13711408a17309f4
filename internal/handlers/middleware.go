package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/prudhvinik1/foodbridge/internal/services"
)

type contextKey string

const identityContextKey contextKey = "identity"

// Authenticator resolves a bearer token to the caller's identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*services.Identity, error)
}

// RequireAuth rejects requests without a valid bearer token with 401 and
// stores the caller's identity in the request context otherwise.
func RequireAuth(auth Authenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeMessage(w, http.StatusUnauthorized, "Not authorized, no token")
				return
			}

			identity, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				writeError(w, logger, err)
				return
			}

			ctx := context.WithValue(r.Context(), identityContextKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext returns the identity stored by RequireAuth.
func IdentityFromContext(ctx context.Context) (*services.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(*services.Identity)
	return identity, ok && identity != nil
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// mustIdentity is used by handlers mounted behind RequireAuth.
func mustIdentity(w http.ResponseWriter, r *http.Request) (*services.Identity, bool) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Not authorized")
	}
	return identity, ok
}
