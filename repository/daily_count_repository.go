package repository

import (
	"context"
	"fmt"
	"log"

	"rtn-loyalty-tier3/db"
)

// DailyCountRepository handles the per-loyalty-ID daily transaction counter
type DailyCountRepository struct{}

// NewDailyCountRepository creates a new DailyCountRepository
func NewDailyCountRepository() *DailyCountRepository {
	return &DailyCountRepository{}
}

// Ensure DailyCountRepository implements DailyCountRepositoryInterface
var _ DailyCountRepositoryInterface = (*DailyCountRepository)(nil)

// IncrementAndGet bumps the counter for (loyalty_id, transaction_date) and
// returns the post-increment count. The single upsert statement takes a row
// lock, so concurrent requests for the same loyalty ID serialize here and
// every caller observes a distinct count.
func (r *DailyCountRepository) IncrementAndGet(ctx context.Context, loyaltyID, transactionDate string) (int, error) {
	query := `
		INSERT INTO daily_transaction_counts (loyalty_id, transaction_date, count, updated_at)
		VALUES ($1, $2, 1, NOW())
		ON CONFLICT (loyalty_id, transaction_date)
		DO UPDATE SET count = daily_transaction_counts.count + 1, updated_at = NOW()
		RETURNING count
	`

	var count int
	err := db.DB.QueryRowContext(ctx, query, loyaltyID, transactionDate).Scan(&count)
	if err != nil {
		log.Printf("❌ IncrementAndGet: Error upserting daily count for loyalty_id=%s: %v", loyaltyID, err)
		return 0, fmt.Errorf("failed to increment daily count: %w", err)
	}

	return count, nil
}

// Cleanup deletes counter rows older than the retention window.
// Runs at startup; the counter only matters within a single day.
func (r *DailyCountRepository) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	query := `
		DELETE FROM daily_transaction_counts
		WHERE transaction_date < CURRENT_DATE - $1::int
	`

	res, err := db.DB.ExecContext(ctx, query, olderThanDays)
	if err != nil {
		log.Printf("❌ Cleanup: Error deleting old daily counts: %v", err)
		return 0, fmt.Errorf("failed to clean up daily counts: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read cleanup row count: %w", err)
	}
	if deleted > 0 {
		log.Printf("✓ Cleanup: Removed %d daily count rows older than %d days", deleted, olderThanDays)
	}
	return deleted, nil
}
