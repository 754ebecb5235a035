package repository

import (
	"context"
	"fmt"
	"log"

	"rtn-loyalty-tier3/db"
	"rtn-loyalty-tier3/models"
)

// TransactionRepository handles persistence of priced transactions
type TransactionRepository struct{}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository() *TransactionRepository {
	return &TransactionRepository{}
}

// Ensure TransactionRepository implements TransactionRepositoryInterface
var _ TransactionRepositoryInterface = (*TransactionRepository)(nil)

// SaveDecision persists the transaction header and every line atomically.
// Either the whole decision lands or none of it does.
func (r *TransactionRepository) SaveDecision(ctx context.Context, rec *models.TransactionRecord, lines []models.TransactionLineRecord) (int64, error) {
	log.Printf("💰 SaveDecision: Persisting transaction_id=%s with %d lines", rec.TransactionID, len(lines))

	tx, err := db.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Printf("❌ SaveDecision: Error starting transaction: %v", err)
		return 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	queryInsertHeader := `
		INSERT INTO transactions (transaction_id, store_id, loyalty_id, cid_customer_id, age_verified, eaiv_verified, tier3_eligible, cid_fund_eligible, total_discount, line_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	var id int64
	err = tx.QueryRowContext(ctx, queryInsertHeader,
		rec.TransactionID,
		rec.StoreID,
		rec.LoyaltyID,
		rec.CIDCustomerID,
		rec.AgeVerified,
		rec.EAIVVerified,
		rec.Tier3Eligible,
		rec.CIDFundEligible,
		rec.TotalDiscount,
		len(lines),
	).Scan(&id)
	if err != nil {
		log.Printf("❌ SaveDecision: Error inserting transaction: %v", err)
		return 0, fmt.Errorf("failed to insert transaction: %w", err)
	}

	queryInsertLine := `
		INSERT INTO transaction_lines (transaction_ref, line_number, upc, skuguid, sku_name, uom, quantity, unit_price, base_extended_price,
			multi_unit_discount, manufacturer_coupon_discount, loyalty_discount, retailer_discount, other_manufacturer_discount, transaction_discount,
			total_discount, final_unit_price, final_extended_price, is_unknown, is_multi_pack)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`

	for _, line := range lines {
		_, err = tx.ExecContext(ctx, queryInsertLine,
			id,
			line.LineNumber,
			line.UPC,
			line.SKUGUID,
			line.SKUName,
			line.UOM,
			line.Quantity,
			line.UnitPrice,
			line.BaseExtendedPrice,
			line.Discounts.MultiUnit,
			line.Discounts.ManufacturerCoupon,
			line.Discounts.Loyalty,
			line.Discounts.Retailer,
			line.Discounts.OtherManufacturer,
			line.Discounts.Transaction,
			line.TotalDiscount,
			line.FinalUnitPrice,
			line.FinalExtendedPrice,
			line.IsUnknown,
			line.IsMultiPack,
		)
		if err != nil {
			log.Printf("❌ SaveDecision: Error inserting line %d: %v", line.LineNumber, err)
			return 0, fmt.Errorf("failed to insert transaction line: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		log.Printf("❌ SaveDecision: Error committing transaction: %v", err)
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Printf("✅ SaveDecision: Persisted transaction_id=%s as id=%d", rec.TransactionID, id)
	return id, nil
}
