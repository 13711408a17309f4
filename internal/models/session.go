package models

import (
	"time"

	"github.com/google/uuid"
)

// Session backs one issued token. Its ID is the token's jti; deleting the
// session revokes the token.
type Session struct {
	ID        string    `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
