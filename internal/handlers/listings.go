package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prudhvinik1/foodbridge/internal/models"
	"github.com/prudhvinik1/foodbridge/internal/services"
)

type ListingHandler struct {
	listings *services.ListingService
	auth     Authenticator
	logger   *slog.Logger
}

func NewListingHandler(listings *services.ListingService, auth Authenticator, logger *slog.Logger) *ListingHandler {
	return &ListingHandler{listings: listings, auth: auth, logger: logger}
}

// Routes is mounted at /api/listings.
func (h *ListingHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.list)
	r.Get("/{id}", h.get)

	r.Group(func(r chi.Router) {
		r.Use(RequireAuth(h.auth, h.logger))
		r.Post("/", h.create)
		r.Post("/claim/{id}", h.claim)
		r.Post("/confirm/{id}", h.confirm)
		r.Delete("/{id}", h.delete)
	})

	return r
}

type createListingRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	Location    string `json:"location"`
}

type listingResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Listing *models.Listing `json:"listing"`
}

type listingsResponse struct {
	Success  bool              `json:"success"`
	Count    int               `json:"count"`
	Listings []*models.Listing `json:"listings"`
}

func (h *ListingHandler) create(w http.ResponseWriter, r *http.Request) {
	identity, ok := mustIdentity(w, r)
	if !ok {
		return
	}

	var req createListingRequest
	if err := readJSON(w, r, &req); err != nil {
		writeBadBody(w, err)
		return
	}

	listing, err := h.listings.Create(r.Context(), identity.UserID, services.CreateListingInput{
		Title:       req.Title,
		Description: req.Description,
		Quantity:    req.Quantity,
		Location:    req.Location,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, listingResponse{Success: true, Listing: listing})
}

func (h *ListingHandler) list(w http.ResponseWriter, r *http.Request) {
	listings, err := h.listings.ListAvailable(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, listingsResponse{Success: true, Count: len(listings), Listings: listings})
}

func (h *ListingHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := listingID(w, r)
	if !ok {
		return
	}

	listing, err := h.listings.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, listingResponse{Success: true, Listing: listing})
}

func (h *ListingHandler) claim(w http.ResponseWriter, r *http.Request) {
	identity, ok := mustIdentity(w, r)
	if !ok {
		return
	}
	id, ok := listingID(w, r)
	if !ok {
		return
	}

	listing, err := h.listings.Claim(r.Context(), id, identity.UserID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, listingResponse{
		Success: true,
		Message: "Listing claimed successfully",
		Listing: listing,
	})
}

func (h *ListingHandler) confirm(w http.ResponseWriter, r *http.Request) {
	identity, ok := mustIdentity(w, r)
	if !ok {
		return
	}
	id, ok := listingID(w, r)
	if !ok {
		return
	}

	listing, err := h.listings.ConfirmPickup(r.Context(), id, identity.UserID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, listingResponse{
		Success: true,
		Message: "Pickup confirmed successfully",
		Listing: listing,
	})
}

func (h *ListingHandler) delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := mustIdentity(w, r)
	if !ok {
		return
	}
	id, ok := listingID(w, r)
	if !ok {
		return
	}

	if err := h.listings.Delete(r.Context(), id, identity.UserID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Listing deleted"})
}

// listingID treats a malformed id like an unknown one.
func listingID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Listing not found")
		return uuid.Nil, false
	}
	return id, true
}
