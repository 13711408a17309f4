package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prudhvinik1/foodbridge/internal/models"
)

// MemoryListingRepository keeps listings in process memory. It backs
// STORE_BACKEND=memory and tests; the mutex plays the role the row-level
// conditional update plays in Postgres.
type MemoryListingRepository struct {
	mu       sync.Mutex
	listings map[uuid.UUID]models.Listing
}

func NewMemoryListingRepository() *MemoryListingRepository {
	return &MemoryListingRepository{listings: make(map[uuid.UUID]models.Listing)}
}

func (r *MemoryListingRepository) Create(ctx context.Context, listing *models.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	listing.ID = uuid.New()
	listing.Status = models.StatusAvailable
	listing.ReceiverID = nil
	listing.CreatedAt = now
	listing.UpdatedAt = now
	r.listings[listing.ID] = *listing
	return nil
}

func (r *MemoryListingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	listing, ok := r.listings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &listing, nil
}

func (r *MemoryListingRepository) ListByStatus(ctx context.Context, status models.ListingStatus) ([]*models.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	listings := []*models.Listing{}
	for _, l := range r.listings {
		if l.Status == status {
			listing := l
			listings = append(listings, &listing)
		}
	}
	sort.Slice(listings, func(i, j int) bool {
		return listings[i].CreatedAt.After(listings[j].CreatedAt)
	})
	return listings, nil
}

func (r *MemoryListingRepository) Transition(ctx context.Context, id uuid.UUID, from, to models.ListingStatus, receiverID *uuid.UUID) (*models.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	listing, ok := r.listings[id]
	if !ok {
		return nil, ErrNotFound
	}
	if listing.Status != from {
		return nil, ErrStatusConflict
	}

	listing.Status = to
	if receiverID != nil {
		rid := *receiverID
		listing.ReceiverID = &rid
	}
	listing.UpdatedAt = time.Now().UTC()
	r.listings[id] = listing
	return &listing, nil
}

func (r *MemoryListingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.listings[id]; !ok {
		return ErrNotFound
	}
	delete(r.listings, id)
	return nil
}

func (r *MemoryListingRepository) DeleteAll(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := int64(len(r.listings))
	r.listings = make(map[uuid.UUID]models.Listing)
	return n, nil
}

type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[uuid.UUID]models.User)}
}

func (r *MemoryUserRepository) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) {
			return ErrEmailExists
		}
	}

	now := time.Now().UTC()
	user.ID = uuid.New()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return nil
}

func (r *MemoryUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			user := u
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryUserRepository) DeleteAll(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := int64(len(r.users))
	r.users = make(map[uuid.UUID]models.User)
	return n, nil
}

// MemorySessionRepository drops sessions lazily once they pass ExpiresAt.
type MemorySessionRepository struct {
	mu       sync.Mutex
	sessions map[string]models.Session
}

func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{sessions: make(map[string]models.Session)}
}

func (r *MemorySessionRepository) Create(ctx context.Context, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[session.ID] = *session
	return nil
}

func (r *MemorySessionRepository) GetByID(ctx context.Context, id string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if time.Now().After(session.ExpiresAt) {
		delete(r.sessions, id)
		return nil, ErrNotFound
	}
	return &session, nil
}

func (r *MemorySessionRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var sessions []*models.Session
	now := time.Now()
	for id, s := range r.sessions {
		if now.After(s.ExpiresAt) {
			delete(r.sessions, id)
			continue
		}
		if s.UserID == userID {
			session := s
			sessions = append(sessions, &session)
		}
	}
	return sessions, nil
}

func (r *MemorySessionRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(r.sessions, id)
	return nil
}

func (r *MemorySessionRepository) DeleteAllForUser(ctx context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, s := range r.sessions {
		if s.UserID == userID {
			delete(r.sessions, id)
		}
	}
	return nil
}
