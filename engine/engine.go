package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"rtn-loyalty-tier3/models"
	"rtn-loyalty-tier3/repository"
)

// Config carries the tunables the pipeline needs. Now is the date provider;
// it defaults to time.Now and is swapped out in tests.
type Config struct {
	DefaultLoyaltyDiscount decimal.Decimal
	DailyManagerCardCap    int
	Now                    func() time.Time
}

// Dependencies bundles the repository contracts the pipeline writes through.
type Dependencies struct {
	Customers    repository.CustomerRepositoryInterface
	DailyCounts  repository.DailyCountRepositoryInterface
	Validations  repository.ValidationLogRepositoryInterface
	AVT          repository.AVTRepositoryInterface
	Transactions repository.TransactionRepositoryInterface
	Catalog      repository.CatalogRepositoryInterface
	Allowances   repository.AllowanceRepositoryInterface
}

// Engine runs the tier 3 decision pipeline for one POS transaction at a time:
// loyalty validation, age gating, basket normalization, discount typing,
// eligibility gating, ordered pricing, and response assembly.
type Engine struct {
	customers    repository.CustomerRepositoryInterface
	dailyCounts  repository.DailyCountRepositoryInterface
	validations  repository.ValidationLogRepositoryInterface
	avt          repository.AVTRepositoryInterface
	transactions repository.TransactionRepositoryInterface
	catalog      repository.CatalogRepositoryInterface
	allowances   repository.AllowanceRepositoryInterface

	cfg   Config
	locks *lidLocker
}

// NewEngine creates a new decision engine.
func NewEngine(deps Dependencies, cfg Config) *Engine {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.DailyManagerCardCap <= 0 {
		cfg.DailyManagerCardCap = 5
	}
	return &Engine{
		customers:    deps.Customers,
		dailyCounts:  deps.DailyCounts,
		validations:  deps.Validations,
		avt:          deps.AVT,
		transactions: deps.Transactions,
		catalog:      deps.Catalog,
		allowances:   deps.Allowances,
		cfg:          cfg,
		locks:        newLIDLocker(),
	}
}

func (e *Engine) now() time.Time {
	return e.cfg.Now()
}

// Process runs the full pipeline. Decision outcomes (invalid ID, failed age
// gate) come back inside the response; an error return means infrastructure
// failed and the caller must send the POS an empty-reward error response.
func (e *Engine) Process(ctx context.Context, req *models.RewardsRequest) (*models.DecisionResponse, error) {
	now := e.now()
	dc := &DecisionContext{
		Request: req,
		Today:   now,
		DateStr: now.Format("2006-01-02"),
	}

	log.Printf("🎯 Process: transaction_id=%s store=%s lines=%d", req.TransactionID, req.StoreID, len(req.Lines))

	if err := e.validateLoyaltyID(ctx, dc); err != nil {
		return nil, fmt.Errorf("loyalty validation: %w", err)
	}
	if err := e.gateAge(ctx, dc); err != nil {
		return nil, fmt.Errorf("age gating: %w", err)
	}
	if err := e.normalizeBasket(ctx, dc); err != nil {
		return nil, fmt.Errorf("basket normalization: %w", err)
	}
	if err := e.typeDiscounts(ctx, dc); err != nil {
		return nil, fmt.Errorf("discount typing: %w", err)
	}
	e.gateEligibility(dc)
	e.priceBuckets(dc)

	if err := e.persistDecision(ctx, dc); err != nil {
		return nil, fmt.Errorf("decision persistence: %w", err)
	}

	e.buildResponse(dc)

	log.Printf("✅ Process: transaction_id=%s rewards=%d total_discount=%s",
		req.TransactionID, len(dc.Response.Rewards), dc.Response.TotalDiscount.StringFixed(2))
	return dc.Response, nil
}

// persistDecision writes the transaction header and its lines atomically,
// after pricing and before the POS sees the response.
func (e *Engine) persistDecision(ctx context.Context, dc *DecisionContext) error {
	rec := &models.TransactionRecord{
		TransactionID:   dc.Request.TransactionID,
		StoreID:         dc.Request.StoreID,
		LoyaltyID:       dc.Validation.LoyaltyID,
		CIDCustomerID:   dc.Validation.CIDCustomerID,
		AgeVerified:     dc.Age.AgeVerified,
		EAIVVerified:    dc.Age.EAIVVerified,
		Tier3Eligible:   dc.Eligibility.Tier3Eligible,
		CIDFundEligible: dc.Validation.EligibleForCIDFund,
		TotalDiscount:   dc.Pricing.TotalDiscount,
	}

	lines := make([]models.TransactionLineRecord, 0, len(dc.Pricing.Lines))
	for _, l := range dc.Pricing.Lines {
		lines = append(lines, models.TransactionLineRecord{
			LineNumber:         l.LineNumber,
			UPC:                l.UPC,
			SKUGUID:            l.SKUGUID,
			SKUName:            l.SKUName,
			UOM:                l.UOM,
			Quantity:           l.Quantity,
			UnitPrice:          l.UnitPrice,
			BaseExtendedPrice:  l.BaseExtendedPrice,
			Discounts:          l.Discounts,
			TotalDiscount:      l.TotalDiscount,
			FinalUnitPrice:     l.FinalUnitPrice,
			FinalExtendedPrice: l.FinalExtendedPrice,
			IsUnknown:          l.IsUnknown,
			IsMultiPack:        l.IsMultiPack,
		})
	}

	if _, err := e.transactions.SaveDecision(ctx, rec, lines); err != nil {
		return err
	}
	return nil
}
