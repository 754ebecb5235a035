package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"rtn-loyalty-tier3/db"
	"rtn-loyalty-tier3/models"
)

// CatalogRepository handles database operations for the tobacco product catalog
type CatalogRepository struct{}

// NewCatalogRepository creates a new CatalogRepository
func NewCatalogRepository() *CatalogRepository {
	return &CatalogRepository{}
}

// Ensure CatalogRepository implements CatalogRepositoryInterface
var _ CatalogRepositoryInterface = (*CatalogRepository)(nil)

// ResolveUPC resolves a scanned UPC against the catalog, checking
// carton_upc, then pack_upc, then carton_suppressed_upc. The first column
// that hits fixes the product and its unit of measure. A miss returns a
// synthetic unknown-tobacco match, never an error.
func (r *CatalogRepository) ResolveUPC(ctx context.Context, upc string) (*models.UPCMatch, error) {
	query := `
		SELECT skuguid, sku_name, brand, manufacturer, category,
		       carton_upc, carton_suppressed_upc, carton_conversion_factor, carton_is_promotional,
		       pack_upc, pack_conversion_factor, pack_is_promotional, program_eligibility
		FROM products
		WHERE carton_upc = $1 OR pack_upc = $1 OR carton_suppressed_upc = $1
		ORDER BY CASE
			WHEN carton_upc = $1 THEN 0
			WHEN pack_upc = $1 THEN 1
			ELSE 2
		END
		LIMIT 1
	`

	var p models.Product
	err := db.DB.QueryRowContext(ctx, query, upc).Scan(
		&p.SKUGUID,
		&p.SKUName,
		&p.Brand,
		&p.Manufacturer,
		&p.Category,
		&p.CartonUPC,
		&p.CartonSuppressedUPC,
		&p.CartonConversionFactor,
		&p.CartonIsPromotional,
		&p.PackUPC,
		&p.PackConversionFactor,
		&p.PackIsPromotional,
		&p.ProgramEligibility,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.UPCMatch{UOM: models.UOMPack, Unknown: true}, nil
		}
		log.Printf("❌ ResolveUPC: Error resolving upc=%s: %v", upc, err)
		return nil, fmt.Errorf("failed to resolve upc: %w", err)
	}

	match := &models.UPCMatch{Product: &p}
	switch upc {
	case p.CartonUPC:
		match.UOM = models.UOMCarton
		match.MatchedField = models.UPCFieldCarton
		match.IsPromotional = p.CartonIsPromotional
	case p.PackUPC:
		match.UOM = models.UOMPack
		match.MatchedField = models.UPCFieldPack
		match.IsPromotional = p.PackIsPromotional
	default:
		match.UOM = models.UOMCarton
		match.MatchedField = models.UPCFieldCartonSuppressed
		match.IsPromotional = p.CartonIsPromotional
	}

	return match, nil
}

// UpsertProducts writes catalog feed entries in one transaction.
// Returns (upserted, skipped). Entries without a SKUGUID or without any UPC
// are skipped, matching what the manufacturer feed occasionally ships.
func (r *CatalogRepository) UpsertProducts(ctx context.Context, skus []models.FeedSKU) (int, int, error) {
	log.Printf("📦 UpsertProducts: Writing %d catalog entries", len(skus))

	tx, err := db.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Printf("❌ UpsertProducts: Error starting transaction: %v", err)
		return 0, 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO products (skuguid, sku_name, brand, manufacturer, category,
			carton_upc, carton_suppressed_upc, carton_conversion_factor, carton_is_promotional,
			pack_upc, pack_conversion_factor, pack_is_promotional, program_eligibility, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW())
		ON CONFLICT (skuguid)
		DO UPDATE SET sku_name = $2, brand = $3, manufacturer = $4, category = $5,
		              carton_upc = $6, carton_suppressed_upc = $7, carton_conversion_factor = $8, carton_is_promotional = $9,
		              pack_upc = $10, pack_conversion_factor = $11, pack_is_promotional = $12, program_eligibility = $13,
		              updated_at = NOW()
	`

	upserted, skipped := 0, 0
	for _, sku := range skus {
		if strings.TrimSpace(sku.SKUGUID) == "" || (sku.CartonUPC == "" && sku.PackUPC == "" && sku.CartonSuppressedUPC == "") {
			skipped++
			continue
		}

		_, err := tx.ExecContext(ctx, query,
			sku.SKUGUID,
			sku.SKUName,
			strings.ToUpper(sku.Brand),
			sku.Manufacturer,
			sku.Category,
			sku.CartonUPC,
			sku.CartonSuppressedUPC,
			sku.CartonConversionFactor,
			sku.CartonIsPromotional,
			sku.PackUPC,
			sku.PackConversionFactor,
			sku.PackIsPromotional,
			sku.ProgramEligibility,
		)
		if err != nil {
			log.Printf("❌ UpsertProducts: Error upserting skuguid=%s: %v", sku.SKUGUID, err)
			return 0, 0, fmt.Errorf("failed to upsert product: %w", err)
		}
		upserted++
	}

	if err := tx.Commit(); err != nil {
		log.Printf("❌ UpsertProducts: Error committing transaction: %v", err)
		return 0, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Printf("✓ UpsertProducts: %d upserted, %d skipped", upserted, skipped)
	return upserted, skipped, nil
}
