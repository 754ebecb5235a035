package repository

import (
	"context"
	"fmt"
	"log"

	"rtn-loyalty-tier3/db"
	"rtn-loyalty-tier3/models"
)

// AVTRepository handles the age verification transaction audit trail
type AVTRepository struct{}

// NewAVTRepository creates a new AVTRepository
func NewAVTRepository() *AVTRepository {
	return &AVTRepository{}
}

// Ensure AVTRepository implements AVTRepositoryInterface
var _ AVTRepositoryInterface = (*AVTRepository)(nil)

// Insert writes one AVT audit row and returns its id. This record is a legal
// requirement for tobacco sales; callers must abort the decision if it fails.
func (r *AVTRepository) Insert(ctx context.Context, rec *models.AVTRecord) (int64, error) {
	query := `
		INSERT INTO avt_transactions (transaction_id, store_id, loyalty_id, cid_customer_id, avt_performed, avt_method, avt_timestamp, cashier_id, eaiv_verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	var id int64
	err := db.DB.QueryRowContext(ctx, query,
		rec.TransactionID,
		rec.StoreID,
		rec.LoyaltyID,
		rec.CIDCustomerID,
		rec.AVTPerformed,
		rec.AVTMethod,
		rec.AVTTimestamp,
		rec.CashierID,
		rec.EAIVVerified,
	).Scan(&id)
	if err != nil {
		log.Printf("❌ Insert: Error inserting AVT record for transaction_id=%s: %v", rec.TransactionID, err)
		return 0, fmt.Errorf("failed to insert avt record: %w", err)
	}

	return id, nil
}
