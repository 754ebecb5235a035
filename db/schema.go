package db

import (
	"context"
	"fmt"
	"log"
)

// schemaStatements creates every table and index the sidecar needs.
// All statements are idempotent so the installer can run on every start.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS products (
		skuguid                  TEXT PRIMARY KEY,
		sku_name                 TEXT NOT NULL,
		brand                    TEXT NOT NULL DEFAULT '',
		manufacturer             TEXT NOT NULL DEFAULT '',
		category                 TEXT NOT NULL DEFAULT '',
		carton_upc               TEXT NOT NULL DEFAULT '',
		carton_suppressed_upc    TEXT NOT NULL DEFAULT '',
		carton_conversion_factor INTEGER NOT NULL DEFAULT 10,
		carton_is_promotional    BOOLEAN NOT NULL DEFAULT FALSE,
		pack_upc                 TEXT NOT NULL DEFAULT '',
		pack_conversion_factor   INTEGER NOT NULL DEFAULT 1,
		pack_is_promotional      BOOLEAN NOT NULL DEFAULT FALSE,
		program_eligibility      TEXT NOT NULL DEFAULT '',
		updated_at               TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_products_carton_upc ON products (carton_upc)`,
	`CREATE INDEX IF NOT EXISTS idx_products_pack_upc ON products (pack_upc)`,
	`CREATE INDEX IF NOT EXISTS idx_products_carton_suppressed_upc ON products (carton_suppressed_upc)`,

	`CREATE TABLE IF NOT EXISTS loyalty_allowances (
		id                                 BIGINT PRIMARY KEY,
		allowance_type                     TEXT NOT NULL,
		description                        TEXT NOT NULL DEFAULT '',
		min_qty                            INTEGER NOT NULL DEFAULT 1,
		eligible_uoms                      TEXT NOT NULL DEFAULT '',
		max_allowance_per_transaction      NUMERIC(10,2),
		manufacturer_funded_amount         NUMERIC(10,2),
		max_daily_transactions_per_loyalty INTEGER NOT NULL DEFAULT 0,
		promo_code                         TEXT NOT NULL DEFAULT '',
		promotional_upcs_eligible          BOOLEAN NOT NULL DEFAULT FALSE,
		start_date                         DATE,
		end_date                           DATE,
		active                             BOOLEAN NOT NULL DEFAULT TRUE
	)`,

	`CREATE TABLE IF NOT EXISTS loyalty_allowance_skus (
		allowance_id BIGINT NOT NULL REFERENCES loyalty_allowances(id) ON DELETE CASCADE,
		skuguid      TEXT NOT NULL,
		PRIMARY KEY (allowance_id, skuguid)
	)`,

	`CREATE TABLE IF NOT EXISTS customer_profiles (
		loyalty_id         TEXT PRIMARY KEY,
		cid_customer_id    TEXT NOT NULL UNIQUE,
		format_type        TEXT NOT NULL,
		store_id           TEXT NOT NULL DEFAULT '',
		first_seen         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		last_seen          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		total_transactions INTEGER NOT NULL DEFAULT 0,
		is_manager_card    BOOLEAN NOT NULL DEFAULT FALSE,
		avt_verified       BOOLEAN NOT NULL DEFAULT FALSE,
		last_avt_verified  TIMESTAMPTZ,
		eaiv_verified      BOOLEAN NOT NULL DEFAULT FALSE,
		last_eaiv_verified TIMESTAMPTZ
	)`,

	`CREATE TABLE IF NOT EXISTS daily_transaction_counts (
		loyalty_id       TEXT NOT NULL,
		transaction_date DATE NOT NULL,
		count            INTEGER NOT NULL DEFAULT 0,
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (loyalty_id, transaction_date)
	)`,

	`CREATE TABLE IF NOT EXISTS loyalty_validation_log (
		id                    BIGSERIAL PRIMARY KEY,
		loyalty_id            TEXT NOT NULL DEFAULT '',
		store_id              TEXT NOT NULL DEFAULT '',
		valid                 BOOLEAN NOT NULL,
		eligible_for_tier3    BOOLEAN NOT NULL,
		eligible_for_cid_fund BOOLEAN NOT NULL,
		is_manager_card       BOOLEAN NOT NULL DEFAULT FALSE,
		daily_count           INTEGER NOT NULL DEFAULT 0,
		reason                TEXT NOT NULL DEFAULT '',
		created_at            TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS avt_transactions (
		id              BIGSERIAL PRIMARY KEY,
		transaction_id  TEXT NOT NULL,
		store_id        TEXT NOT NULL DEFAULT '',
		loyalty_id      TEXT NOT NULL,
		cid_customer_id TEXT NOT NULL DEFAULT '',
		avt_performed   BOOLEAN NOT NULL,
		avt_method      TEXT NOT NULL,
		avt_timestamp   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		cashier_id      TEXT NOT NULL DEFAULT '',
		eaiv_verified   BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_avt_transactions_loyalty_id ON avt_transactions (loyalty_id)`,

	`CREATE TABLE IF NOT EXISTS transactions (
		id                BIGSERIAL PRIMARY KEY,
		transaction_id    TEXT NOT NULL,
		store_id          TEXT NOT NULL DEFAULT '',
		loyalty_id        TEXT NOT NULL DEFAULT '',
		cid_customer_id   TEXT NOT NULL DEFAULT '',
		age_verified      BOOLEAN NOT NULL DEFAULT FALSE,
		eaiv_verified     BOOLEAN NOT NULL DEFAULT FALSE,
		tier3_eligible    BOOLEAN NOT NULL DEFAULT FALSE,
		cid_fund_eligible BOOLEAN NOT NULL DEFAULT FALSE,
		total_discount    NUMERIC(10,2) NOT NULL DEFAULT 0,
		line_count        INTEGER NOT NULL DEFAULT 0,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_transaction_id ON transactions (transaction_id)`,

	`CREATE TABLE IF NOT EXISTS transaction_lines (
		id                           BIGSERIAL PRIMARY KEY,
		transaction_ref              BIGINT NOT NULL REFERENCES transactions(id) ON DELETE CASCADE,
		line_number                  INTEGER NOT NULL,
		upc                          TEXT NOT NULL,
		skuguid                      TEXT NOT NULL DEFAULT '',
		sku_name                     TEXT NOT NULL DEFAULT '',
		uom                          TEXT NOT NULL DEFAULT '',
		quantity                     INTEGER NOT NULL,
		unit_price                   NUMERIC(10,2) NOT NULL,
		base_extended_price          NUMERIC(10,2) NOT NULL,
		multi_unit_discount          NUMERIC(10,2) NOT NULL DEFAULT 0,
		manufacturer_coupon_discount NUMERIC(10,2) NOT NULL DEFAULT 0,
		loyalty_discount             NUMERIC(10,2) NOT NULL DEFAULT 0,
		retailer_discount            NUMERIC(10,2) NOT NULL DEFAULT 0,
		other_manufacturer_discount  NUMERIC(10,2) NOT NULL DEFAULT 0,
		transaction_discount         NUMERIC(10,2) NOT NULL DEFAULT 0,
		total_discount               NUMERIC(10,2) NOT NULL DEFAULT 0,
		final_unit_price             NUMERIC(10,2) NOT NULL,
		final_extended_price         NUMERIC(10,2) NOT NULL,
		is_unknown                   BOOLEAN NOT NULL DEFAULT FALSE,
		is_multi_pack                BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transaction_lines_transaction_ref ON transaction_lines (transaction_ref)`,
}

// InstallSchema creates all tables and indexes if they do not exist yet.
func InstallSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to install schema: %w", err)
		}
	}
	log.Printf("✓ Database schema installed (%d statements)", len(schemaStatements))
	return nil
}
