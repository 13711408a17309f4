package models

import (
	"time"

	"github.com/google/uuid"
)

// ListingStatus is the lifecycle state of a listing. It only moves forward:
// available -> claimed -> pickedUp.
type ListingStatus string

const (
	StatusAvailable ListingStatus = "available"
	StatusClaimed   ListingStatus = "claimed"
	StatusPickedUp  ListingStatus = "pickedUp"
)

func (s ListingStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusClaimed, StatusPickedUp:
		return true
	}
	return false
}

type Listing struct {
	ID          uuid.UUID     `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Quantity    int           `json:"quantity"`
	Location    string        `json:"location"`
	Status      ListingStatus `json:"status"`
	DonorID     uuid.UUID     `json:"donor"`
	ReceiverID  *uuid.UUID    `json:"receiver"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}
