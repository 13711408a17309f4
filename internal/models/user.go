package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleDonor    Role = "donor"
	RoleReceiver Role = "receiver"
)

func (r Role) Valid() bool {
	return r == RoleDonor || r == RoleReceiver
}

type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
