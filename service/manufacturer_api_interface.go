package service

import (
	"context"

	"rtn-loyalty-tier3/models"
)

// ManufacturerAPIClientInterface defines the contract for the manufacturer
// catalog API
type ManufacturerAPIClientInterface interface {
	// FetchSKUs returns the full tobacco SKU catalog.
	FetchSKUs(ctx context.Context) ([]models.FeedSKU, error)
	// FetchAllowances returns the current allowance rules with their SKU links.
	FetchAllowances(ctx context.Context) ([]models.FeedAllowance, error)
}

// TokenProviderInterface defines the contract for catalog API credentials.
// Token negotiation and refresh live behind this seam; the sidecar itself
// only ever attaches a bearer token.
type TokenProviderInterface interface {
	Token(ctx context.Context) (string, error)
}
