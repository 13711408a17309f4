package models

import "github.com/google/uuid"

const (
	EventListingClaimed  = "listingClaimed"
	EventPickupConfirmed = "pickupConfirmed"
)

// Event is a notification addressed to a single user. Payload is encoded
// as the "data" field of the outgoing websocket frame.
type Event struct {
	Recipient uuid.UUID
	Name      string
	Payload   any
}

type ListingClaimedPayload struct {
	Message    string    `json:"message"`
	ListingID  uuid.UUID `json:"listingId"`
	ReceiverID uuid.UUID `json:"receiverId"`
}

type PickupConfirmedPayload struct {
	Message   string    `json:"message"`
	ListingID uuid.UUID `json:"listingId"`
}
