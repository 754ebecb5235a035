package service

import (
	"context"

	"rtn-loyalty-tier3/models"
)

// SyncServiceInterface defines the contract for catalog synchronization
type SyncServiceInterface interface {
	// SyncCatalog refreshes products, allowances and their SKU links from
	// the manufacturer API and returns per-family stats.
	SyncCatalog(ctx context.Context) (*models.CatalogSyncStats, error)
}
