package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/prudhvinik1/foodbridge/internal/models"
	"github.com/prudhvinik1/foodbridge/internal/obs"
	"github.com/prudhvinik1/foodbridge/internal/repositories"
)

// EventPublisher receives the events produced by successful transitions.
// Publish must not block on delivery.
type EventPublisher interface {
	Publish(ev models.Event)
}

// ListingService owns every write to a listing's status and receiver.
type ListingService struct {
	listings repositories.ListingRepository
	events   EventPublisher
	logger   *slog.Logger
	metrics  *obs.Metrics
}

type CreateListingInput struct {
	Title       string
	Description string
	Quantity    int
	Location    string
}

func NewListingService(
	listings repositories.ListingRepository,
	events EventPublisher,
	logger *slog.Logger,
	metrics *obs.Metrics,
) *ListingService {
	return &ListingService{
		listings: listings,
		events:   events,
		logger:   logger,
		metrics:  metrics,
	}
}

func (s *ListingService) Create(ctx context.Context, donorID uuid.UUID, in CreateListingInput) (*models.Listing, error) {
	listing, err := s.create(ctx, donorID, in)
	s.record("create", err)
	return listing, err
}

func (s *ListingService) create(ctx context.Context, donorID uuid.UUID, in CreateListingInput) (*models.Listing, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Location = strings.TrimSpace(in.Location)

	var missing []string
	if in.Title == "" {
		missing = append(missing, "title")
	}
	if in.Description == "" {
		missing = append(missing, "description")
	}
	if in.Location == "" {
		missing = append(missing, "location")
	}
	if len(missing) > 0 {
		return nil, newError(ErrValidation, "Missing required fields: %s", strings.Join(missing, ", "))
	}
	if in.Quantity < 1 {
		return nil, newError(ErrValidation, "Quantity must be at least 1")
	}
	// quantity is an INTEGER column
	if in.Quantity > math.MaxInt32 {
		return nil, newError(ErrValidation, "Quantity must be at most %d", math.MaxInt32)
	}

	listing := &models.Listing{
		Title:       in.Title,
		Description: in.Description,
		Quantity:    in.Quantity,
		Location:    in.Location,
		DonorID:     donorID,
	}
	if err := s.listings.Create(ctx, listing); err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}

	s.logger.Info("listing created", "listing_id", listing.ID, "donor_id", donorID)
	return listing, nil
}

func (s *ListingService) Get(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	return s.find(ctx, id)
}

// ListAvailable returns only listings that can still be claimed.
func (s *ListingService) ListAvailable(ctx context.Context) ([]*models.Listing, error) {
	listings, err := s.listings.ListByStatus(ctx, models.StatusAvailable)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	return listings, nil
}

// Claim reserves an available listing for requesterID. Of several concurrent
// claims exactly one succeeds; the rest get ErrConflict. The donor is
// notified on success.
func (s *ListingService) Claim(ctx context.Context, id, requesterID uuid.UUID) (*models.Listing, error) {
	listing, err := s.claim(ctx, id, requesterID)
	s.record("claim", err)
	return listing, err
}

func (s *ListingService) claim(ctx context.Context, id, requesterID uuid.UUID) (*models.Listing, error) {
	listing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.DonorID == requesterID {
		return nil, newError(ErrForbidden, "You cannot claim your own listing")
	}
	if listing.Status != models.StatusAvailable {
		return nil, newError(ErrConflict, "Listing already claimed")
	}

	claimed, err := s.transition(ctx, id, models.StatusAvailable, models.StatusClaimed, &requesterID)
	if errors.Is(err, repositories.ErrStatusConflict) {
		return nil, newError(ErrConflict, "Listing already claimed")
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("listing claimed", "listing_id", id, "donor_id", claimed.DonorID, "receiver_id", requesterID)
	s.events.Publish(models.Event{
		Recipient: claimed.DonorID,
		Name:      models.EventListingClaimed,
		Payload: models.ListingClaimedPayload{
			Message:    "Your listing has been claimed!",
			ListingID:  claimed.ID,
			ReceiverID: requesterID,
		},
	})
	return claimed, nil
}

// ConfirmPickup is called by the donor once the receiver has collected the
// food. The receiver is notified on success.
func (s *ListingService) ConfirmPickup(ctx context.Context, id, requesterID uuid.UUID) (*models.Listing, error) {
	listing, err := s.confirmPickup(ctx, id, requesterID)
	s.record("confirm", err)
	return listing, err
}

func (s *ListingService) confirmPickup(ctx context.Context, id, requesterID uuid.UUID) (*models.Listing, error) {
	listing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.DonorID != requesterID {
		return nil, newError(ErrForbidden, "Only the donor can confirm pickup")
	}
	if listing.Status != models.StatusClaimed {
		return nil, newError(ErrConflict, "Listing is not awaiting pickup")
	}

	picked, err := s.transition(ctx, id, models.StatusClaimed, models.StatusPickedUp, nil)
	if errors.Is(err, repositories.ErrStatusConflict) {
		return nil, newError(ErrConflict, "Listing is not awaiting pickup")
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("pickup confirmed", "listing_id", id, "donor_id", requesterID)
	if picked.ReceiverID != nil {
		s.events.Publish(models.Event{
			Recipient: *picked.ReceiverID,
			Name:      models.EventPickupConfirmed,
			Payload: models.PickupConfirmedPayload{
				Message:   "Your pickup has been confirmed!",
				ListingID: picked.ID,
			},
		})
	}
	return picked, nil
}

// Delete removes a listing in any status; only its donor may do so.
func (s *ListingService) Delete(ctx context.Context, id, requesterID uuid.UUID) error {
	err := s.delete(ctx, id, requesterID)
	s.record("delete", err)
	return err
}

func (s *ListingService) delete(ctx context.Context, id, requesterID uuid.UUID) error {
	listing, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if listing.DonorID != requesterID {
		return newError(ErrForbidden, "Only the donor can delete this listing")
	}

	err = s.listings.Delete(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return newError(ErrNotFound, "Listing not found")
	}
	if err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}

	s.logger.Info("listing deleted", "listing_id", id, "donor_id", requesterID, "status", listing.Status)
	return nil
}

func (s *ListingService) find(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	listing, err := s.listings.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, newError(ErrNotFound, "Listing not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	return listing, nil
}

func (s *ListingService) transition(ctx context.Context, id uuid.UUID, from, to models.ListingStatus, receiverID *uuid.UUID) (*models.Listing, error) {
	listing, err := s.listings.Transition(ctx, id, from, to, receiverID)
	switch {
	case errors.Is(err, repositories.ErrStatusConflict):
		return nil, err
	case errors.Is(err, repositories.ErrNotFound):
		return nil, newError(ErrNotFound, "Listing not found")
	case err != nil:
		return nil, fmt.Errorf("failed to update listing: %w", err)
	}
	return listing, nil
}

func (s *ListingService) record(op string, err error) {
	if s.metrics == nil {
		return
	}
	result := "success"
	switch {
	case err == nil:
	case errors.Is(err, ErrValidation):
		result = "invalid"
	case errors.Is(err, ErrForbidden):
		result = "forbidden"
	case errors.Is(err, ErrConflict):
		result = "conflict"
	case errors.Is(err, ErrNotFound):
		result = "not_found"
	default:
		result = "error"
	}
	s.metrics.TransitionsTotal.WithLabelValues(op, result).Inc()
}
