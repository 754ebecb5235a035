package repository

import (
	"context"
	"time"

	"rtn-loyalty-tier3/models"
)

// CustomerRepositoryInterface defines the contract for customer profile operations
type CustomerRepositoryInterface interface {
	UpsertOnVisit(ctx context.Context, loyaltyID, cidCustomerID, formatType, storeID string, isManagerCard bool) (*models.CustomerProfile, error)
	MarkAVTVerified(ctx context.Context, loyaltyID string, when time.Time) error
}

// DailyCountRepositoryInterface defines the contract for the per-day transaction counter
type DailyCountRepositoryInterface interface {
	IncrementAndGet(ctx context.Context, loyaltyID, transactionDate string) (int, error)
	Cleanup(ctx context.Context, olderThanDays int) (int64, error)
}

// ValidationLogRepositoryInterface defines the contract for the validation audit log
type ValidationLogRepositoryInterface interface {
	Append(ctx context.Context, entry *models.ValidationLogEntry) error
}

// AVTRepositoryInterface defines the contract for age verification audit records
type AVTRepositoryInterface interface {
	Insert(ctx context.Context, rec *models.AVTRecord) (int64, error)
}

// TransactionRepositoryInterface defines the contract for persisting priced transactions
type TransactionRepositoryInterface interface {
	SaveDecision(ctx context.Context, rec *models.TransactionRecord, lines []models.TransactionLineRecord) (int64, error)
}

// CatalogRepositoryInterface defines the contract for tobacco product lookups
type CatalogRepositoryInterface interface {
	ResolveUPC(ctx context.Context, upc string) (*models.UPCMatch, error)
	UpsertProducts(ctx context.Context, skus []models.FeedSKU) (int, int, error)
}

// AllowanceRepositoryInterface defines the contract for allowance rule access
type AllowanceRepositoryInterface interface {
	ActiveRules(ctx context.Context, day time.Time) ([]models.AllowanceRule, error)
	ReplaceAllowances(ctx context.Context, allowances []models.FeedAllowance) (int, int, error)
}
