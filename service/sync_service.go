package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"rtn-loyalty-tier3/models"
	"rtn-loyalty-tier3/repository"
)

// SyncService refreshes the local catalog tables from the manufacturer API.
// The decision path never waits on it: a failed sync just means requests
// keep pricing against the previous catalog.
type SyncService struct {
	client     ManufacturerAPIClientInterface
	catalog    repository.CatalogRepositoryInterface
	allowances repository.AllowanceRepositoryInterface
}

// NewSyncService creates a new SyncService
func NewSyncService(client ManufacturerAPIClientInterface, catalog repository.CatalogRepositoryInterface, allowances repository.AllowanceRepositoryInterface) *SyncService {
	return &SyncService{
		client:     client,
		catalog:    catalog,
		allowances: allowances,
	}
}

// Ensure SyncService implements SyncServiceInterface
var _ SyncServiceInterface = (*SyncService)(nil)

// SyncCatalog fetches both entity families and upserts each in one database
// transaction. SKUs land before allowances so new rules never reference
// products the catalog does not know yet.
func (s *SyncService) SyncCatalog(ctx context.Context) (*models.CatalogSyncStats, error) {
	log.Printf("📦 SyncCatalog: Starting catalog sync")
	stats := &models.CatalogSyncStats{}

	skus, err := s.client.FetchSKUs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sync catalog: %w", err)
	}
	stats.SKUsFetched = len(skus)

	stats.SKUsUpserted, stats.SKUsSkipped, err = s.catalog.UpsertProducts(ctx, skus)
	if err != nil {
		return nil, fmt.Errorf("failed to sync catalog: %w", err)
	}

	allowances, err := s.client.FetchAllowances(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sync allowances: %w", err)
	}
	stats.AllowancesFetched = len(allowances)

	stats.AllowancesUpserted, stats.AllowancesSkipped, err = s.allowances.ReplaceAllowances(ctx, allowances)
	if err != nil {
		return nil, fmt.Errorf("failed to sync allowances: %w", err)
	}

	log.Printf("✅ SyncCatalog: %d/%d skus upserted, %d/%d allowances upserted",
		stats.SKUsUpserted, stats.SKUsFetched, stats.AllowancesUpserted, stats.AllowancesFetched)
	return stats, nil
}

// RunPeriodic re-syncs on a fixed interval until the context is cancelled.
// Failures are logged and retried on the next tick.
func (s *SyncService) RunPeriodic(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	log.Printf("✓ Periodic catalog sync enabled every %s", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.SyncCatalog(ctx); err != nil {
				log.Printf("⚠️ RunPeriodic: catalog sync failed: %v", err)
			}
		}
	}
}
