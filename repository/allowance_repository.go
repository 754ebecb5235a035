package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"rtn-loyalty-tier3/db"
	"rtn-loyalty-tier3/models"
)

// AllowanceRepository handles database operations for loyalty allowance rules
type AllowanceRepository struct{}

// NewAllowanceRepository creates a new AllowanceRepository
func NewAllowanceRepository() *AllowanceRepository {
	return &AllowanceRepository{}
}

// Ensure AllowanceRepository implements AllowanceRepositoryInterface
var _ AllowanceRepositoryInterface = (*AllowanceRepository)(nil)

// ActiveRules returns every allowance rule whose date window contains day,
// with its SKU links stitched in. Rules without links match all products.
func (r *AllowanceRepository) ActiveRules(ctx context.Context, day time.Time) ([]models.AllowanceRule, error) {
	dateArg := day.Format("2006-01-02")

	queryRules := `
		SELECT id, allowance_type, description, min_qty, eligible_uoms,
		       max_allowance_per_transaction, manufacturer_funded_amount,
		       max_daily_transactions_per_loyalty, promo_code, promotional_upcs_eligible,
		       start_date, end_date, active
		FROM loyalty_allowances
		WHERE active = TRUE
		  AND (start_date IS NULL OR start_date <= $1)
		  AND (end_date IS NULL OR end_date >= $1)
		ORDER BY id ASC
	`

	rows, err := db.DB.QueryContext(ctx, queryRules, dateArg)
	if err != nil {
		log.Printf("❌ ActiveRules: Error querying allowances: %v", err)
		return nil, fmt.Errorf("failed to query allowances: %w", err)
	}
	defer rows.Close()

	var rules []models.AllowanceRule
	index := make(map[int64]int)

	for rows.Next() {
		var rule models.AllowanceRule
		var uoms string
		var start, end sql.NullTime

		err := rows.Scan(
			&rule.ID,
			&rule.AllowanceType,
			&rule.Description,
			&rule.MinQty,
			&uoms,
			&rule.MaxAllowancePerTransaction,
			&rule.ManufacturerFundedAmount,
			&rule.MaxDailyTransactions,
			&rule.PromoCode,
			&rule.PromotionalUPCsEligible,
			&start,
			&end,
			&rule.Active,
		)
		if err != nil {
			log.Printf("❌ ActiveRules: Error scanning allowance: %v", err)
			continue
		}

		if uoms != "" {
			for _, u := range strings.Split(uoms, ",") {
				if u = strings.TrimSpace(u); u != "" {
					rule.EligibleUOMs = append(rule.EligibleUOMs, u)
				}
			}
		}
		if start.Valid {
			rule.StartDate = start.Time
		}
		if end.Valid {
			rule.EndDate = end.Time
		}

		index[rule.ID] = len(rules)
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		log.Printf("❌ ActiveRules: Error iterating allowances: %v", err)
		return nil, fmt.Errorf("failed to iterate allowances: %w", err)
	}

	if len(rules) == 0 {
		return rules, nil
	}

	queryLinks := `
		SELECT s.allowance_id, s.skuguid
		FROM loyalty_allowance_skus s
		JOIN loyalty_allowances a ON a.id = s.allowance_id
		WHERE a.active = TRUE
		  AND (a.start_date IS NULL OR a.start_date <= $1)
		  AND (a.end_date IS NULL OR a.end_date >= $1)
		ORDER BY s.allowance_id ASC
	`

	linkRows, err := db.DB.QueryContext(ctx, queryLinks, dateArg)
	if err != nil {
		log.Printf("❌ ActiveRules: Error querying allowance skus: %v", err)
		return nil, fmt.Errorf("failed to query allowance skus: %w", err)
	}
	defer linkRows.Close()

	for linkRows.Next() {
		var allowanceID int64
		var skuguid string
		if err := linkRows.Scan(&allowanceID, &skuguid); err != nil {
			log.Printf("❌ ActiveRules: Error scanning allowance sku: %v", err)
			continue
		}
		if i, ok := index[allowanceID]; ok {
			rules[i].SKUGUIDs = append(rules[i].SKUGUIDs, skuguid)
		}
	}
	if err := linkRows.Err(); err != nil {
		log.Printf("❌ ActiveRules: Error iterating allowance skus: %v", err)
		return nil, fmt.Errorf("failed to iterate allowance skus: %w", err)
	}

	return rules, nil
}

// ReplaceAllowances writes allowance feed entries and their SKU links in one
// transaction. Returns (upserted, skipped). Entries with no id or no type
// are skipped.
func (r *AllowanceRepository) ReplaceAllowances(ctx context.Context, allowances []models.FeedAllowance) (int, int, error) {
	log.Printf("📦 ReplaceAllowances: Writing %d allowance entries", len(allowances))

	tx, err := db.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Printf("❌ ReplaceAllowances: Error starting transaction: %v", err)
		return 0, 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	queryUpsert := `
		INSERT INTO loyalty_allowances (id, allowance_type, description, min_qty, eligible_uoms,
			max_allowance_per_transaction, manufacturer_funded_amount, max_daily_transactions_per_loyalty,
			promo_code, promotional_upcs_eligible, start_date, end_date, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id)
		DO UPDATE SET allowance_type = $2, description = $3, min_qty = $4, eligible_uoms = $5,
		              max_allowance_per_transaction = $6, manufacturer_funded_amount = $7,
		              max_daily_transactions_per_loyalty = $8, promo_code = $9,
		              promotional_upcs_eligible = $10, start_date = $11, end_date = $12, active = $13
	`

	upserted, skipped := 0, 0
	for _, a := range allowances {
		if a.AllowanceID == 0 || strings.TrimSpace(a.AllowanceType) == "" {
			skipped++
			continue
		}

		_, err := tx.ExecContext(ctx, queryUpsert,
			a.AllowanceID,
			strings.ToUpper(a.AllowanceType),
			a.Description,
			a.MinQty,
			strings.Join(a.EligibleUOMs, ","),
			nullDecimalArg(a.MaxAllowancePerTransaction),
			nullDecimalArg(a.ManufacturerFundedAmount),
			a.MaxDailyTransactions,
			a.PromoCode,
			a.PromotionalUPCsEligible,
			nullDateArg(a.StartDate),
			nullDateArg(a.EndDate),
			a.Active,
		)
		if err != nil {
			log.Printf("❌ ReplaceAllowances: Error upserting allowance id=%d: %v", a.AllowanceID, err)
			return 0, 0, fmt.Errorf("failed to upsert allowance: %w", err)
		}

		// SKU links are replaced wholesale so removed links disappear.
		if _, err := tx.ExecContext(ctx, `DELETE FROM loyalty_allowance_skus WHERE allowance_id = $1`, a.AllowanceID); err != nil {
			log.Printf("❌ ReplaceAllowances: Error clearing sku links for id=%d: %v", a.AllowanceID, err)
			return 0, 0, fmt.Errorf("failed to clear allowance skus: %w", err)
		}
		for _, skuguid := range a.SKUGUIDs {
			if strings.TrimSpace(skuguid) == "" {
				continue
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO loyalty_allowance_skus (allowance_id, skuguid) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				a.AllowanceID, skuguid)
			if err != nil {
				log.Printf("❌ ReplaceAllowances: Error inserting sku link id=%d sku=%s: %v", a.AllowanceID, skuguid, err)
				return 0, 0, fmt.Errorf("failed to insert allowance sku: %w", err)
			}
		}

		upserted++
	}

	if err := tx.Commit(); err != nil {
		log.Printf("❌ ReplaceAllowances: Error committing transaction: %v", err)
		return 0, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Printf("✓ ReplaceAllowances: %d upserted, %d skipped", upserted, skipped)
	return upserted, skipped, nil
}

// nullDecimalArg converts a feed decimal string to a SQL-ready value.
// Empty or malformed strings land as NULL.
func nullDecimalArg(s string) interface{} {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return d
}

// nullDateArg converts a feed YYYY-MM-DD string to a SQL-ready value.
func nullDateArg(s string) interface{} {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return nil
	}
	return s
}
