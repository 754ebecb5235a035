package repository

import (
	"context"
	"fmt"
	"log"

	"rtn-loyalty-tier3/db"
	"rtn-loyalty-tier3/models"
)

// ValidationLogRepository handles the loyalty validation audit log
type ValidationLogRepository struct{}

// NewValidationLogRepository creates a new ValidationLogRepository
func NewValidationLogRepository() *ValidationLogRepository {
	return &ValidationLogRepository{}
}

// Ensure ValidationLogRepository implements ValidationLogRepositoryInterface
var _ ValidationLogRepositoryInterface = (*ValidationLogRepository)(nil)

// Append records one validation attempt. Callers treat failures as
// best-effort: a lost log row never blocks the decision.
func (r *ValidationLogRepository) Append(ctx context.Context, entry *models.ValidationLogEntry) error {
	query := `
		INSERT INTO loyalty_validation_log (loyalty_id, store_id, valid, eligible_for_tier3, eligible_for_cid_fund, is_manager_card, daily_count, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := db.DB.ExecContext(ctx, query,
		entry.LoyaltyID,
		entry.StoreID,
		entry.Valid,
		entry.EligibleForTier3,
		entry.EligibleForCIDFund,
		entry.IsManagerCard,
		entry.DailyCount,
		entry.Reason,
	)
	if err != nil {
		log.Printf("❌ Append: Error inserting validation log: %v", err)
		return fmt.Errorf("failed to insert validation log: %w", err)
	}

	return nil
}
