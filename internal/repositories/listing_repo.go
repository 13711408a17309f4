package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prudhvinik1/foodbridge/internal/models"
)

const listingColumns = `id, title, description, quantity, location, status, donor_id, receiver_id, created_at, updated_at`

type PostgresListingRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresListingRepository(pool *pgxpool.Pool) *PostgresListingRepository {
	return &PostgresListingRepository{pool: pool}
}

func (r *PostgresListingRepository) Create(ctx context.Context, listing *models.Listing) error {
	query := `INSERT INTO listings (title, description, quantity, location, status, donor_id)
	          VALUES ($1, $2, $3, $4, 'available', $5)
	          RETURNING ` + listingColumns

	created, err := scanListing(r.pool.QueryRow(ctx, query,
		listing.Title,
		listing.Description,
		listing.Quantity,
		listing.Location,
		listing.DonorID,
	))
	if err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}
	*listing = *created
	return nil
}

func (r *PostgresListingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`

	listing, err := scanListing(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	return listing, nil
}

func (r *PostgresListingRepository) ListByStatus(ctx context.Context, status models.ListingStatus) ([]*models.Listing, error) {
	query := `SELECT ` + listingColumns + `
	          FROM listings
	          WHERE status = $1
	          ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	defer rows.Close()

	listings := []*models.Listing{}
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, listing)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating listings: %w", err)
	}
	return listings, nil
}

// Transition moves a listing from one status to the next in a single
// statement. The WHERE clause on status is the check-and-set: of any number
// of concurrent callers expecting the same from-status, exactly one sees a
// row come back. A nil receiverID keeps the current receiver.
func (r *PostgresListingRepository) Transition(ctx context.Context, id uuid.UUID, from, to models.ListingStatus, receiverID *uuid.UUID) (*models.Listing, error) {
	query := `UPDATE listings
	          SET status = $3,
	              receiver_id = COALESCE($4::uuid, receiver_id),
	              updated_at = NOW()
	          WHERE id = $1 AND status = $2
	          RETURNING ` + listingColumns

	listing, err := scanListing(r.pool.QueryRow(ctx, query, id, string(from), string(to), receiverID))
	if errors.Is(err, pgx.ErrNoRows) {
		// No row matched: either it's gone or someone else moved it first.
		if _, getErr := r.GetByID(ctx, id); errors.Is(getErr, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, ErrStatusConflict
	}
	if err != nil {
		return nil, fmt.Errorf("failed to transition listing: %w", err)
	}
	return listing, nil
}

func (r *PostgresListingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresListingRepository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM listings`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete listings: %w", err)
	}
	return result.RowsAffected(), nil
}

func scanListing(row pgx.Row) (*models.Listing, error) {
	var listing models.Listing
	var status string
	err := row.Scan(
		&listing.ID,
		&listing.Title,
		&listing.Description,
		&listing.Quantity,
		&listing.Location,
		&status,
		&listing.DonorID,
		&listing.ReceiverID,
		&listing.CreatedAt,
		&listing.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	listing.Status = models.ListingStatus(status)
	return &listing, nil
}
