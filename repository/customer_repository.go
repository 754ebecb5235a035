package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"rtn-loyalty-tier3/db"
	"rtn-loyalty-tier3/models"
)

// ErrCIDCollision is returned when a freshly derived CID is already owned by
// another loyalty ID. The caller regenerates the CID and retries once.
var ErrCIDCollision = errors.New("cid customer id already in use")

// CustomerRepository handles database operations for customer profiles
type CustomerRepository struct{}

// NewCustomerRepository creates a new CustomerRepository
func NewCustomerRepository() *CustomerRepository {
	return &CustomerRepository{}
}

// Ensure CustomerRepository implements CustomerRepositoryInterface
var _ CustomerRepositoryInterface = (*CustomerRepository)(nil)

// UpsertOnVisit inserts the profile on first sight or refreshes it on a
// repeat visit, bumping total_transactions. first_seen, cid_customer_id and
// store_id keep their first-sighting values; the manager-card flag is
// sticky once set. Returns the post-upsert row.
func (r *CustomerRepository) UpsertOnVisit(ctx context.Context, loyaltyID, cidCustomerID, formatType, storeID string, isManagerCard bool) (*models.CustomerProfile, error) {
	query := `
		INSERT INTO customer_profiles (loyalty_id, cid_customer_id, format_type, store_id, first_seen, last_seen, total_transactions, is_manager_card)
		VALUES ($1, $2, $3, $4, NOW(), NOW(), 1, $5)
		ON CONFLICT (loyalty_id)
		DO UPDATE SET last_seen = NOW(),
		              total_transactions = customer_profiles.total_transactions + 1,
		              is_manager_card = customer_profiles.is_manager_card OR $5
		RETURNING loyalty_id, cid_customer_id, format_type, store_id, first_seen, last_seen,
		          total_transactions, is_manager_card, avt_verified, last_avt_verified,
		          eaiv_verified, last_eaiv_verified
	`

	var profile models.CustomerProfile
	var lastAVT, lastEAIV sql.NullTime

	err := db.DB.QueryRowContext(ctx, query, loyaltyID, cidCustomerID, formatType, storeID, isManagerCard).Scan(
		&profile.LoyaltyID,
		&profile.CIDCustomerID,
		&profile.FormatType,
		&profile.StoreID,
		&profile.FirstSeen,
		&profile.LastSeen,
		&profile.TotalTransactions,
		&profile.IsManagerCard,
		&profile.AVTVerified,
		&lastAVT,
		&profile.EAIVVerified,
		&lastEAIV,
	)
	if err != nil {
		// A unique violation on cid_customer_id means the derived CID belongs
		// to a different loyalty ID; surface it so the caller can regenerate.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			log.Printf("⚠️ UpsertOnVisit: CID collision for loyalty_id=%s cid=%s", loyaltyID, cidCustomerID)
			return nil, ErrCIDCollision
		}
		log.Printf("❌ UpsertOnVisit: Error upserting profile: %v", err)
		return nil, fmt.Errorf("failed to upsert customer profile: %w", err)
	}

	if lastAVT.Valid {
		profile.LastAVTVerified = &lastAVT.Time
	}
	if lastEAIV.Valid {
		profile.LastEAIVVerified = &lastEAIV.Time
	}

	return &profile, nil
}

// MarkAVTVerified records a successful in-person age verification on the profile.
func (r *CustomerRepository) MarkAVTVerified(ctx context.Context, loyaltyID string, when time.Time) error {
	query := `
		UPDATE customer_profiles
		SET avt_verified = TRUE, last_avt_verified = $2
		WHERE loyalty_id = $1
	`
	_, err := db.DB.ExecContext(ctx, query, loyaltyID, when)
	if err != nil {
		log.Printf("❌ MarkAVTVerified: Error updating profile for loyalty_id=%s: %v", loyaltyID, err)
		return fmt.Errorf("failed to mark profile AVT verified: %w", err)
	}
	return nil
}
