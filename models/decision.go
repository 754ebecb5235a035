package models

import "github.com/shopspring/decimal"

// RewardsRequest represents the engine input assembled from a POS GetRewardsRequest
type RewardsRequest struct {
	StoreID       string    `json:"storeId"`
	TransactionID string    `json:"transactionId"`
	CashierID     string    `json:"cashierId,omitempty"`
	LoyaltyID     string    `json:"loyaltyId,omitempty"`
	AVTStatus     string    `json:"avtStatus,omitempty"` // raw POS token, empty when not sent
	Lines         []RawLine `json:"lines"`
}

// AllowanceMatch binds a matched rule to the line it applies to (stage 4)
type AllowanceMatch struct {
	Rule       *AllowanceRule `json:"rule"`
	LineNumber int            `json:"lineNumber"`
}

// DiscountTypes represents the stage 4 output
type DiscountTypes struct {
	AllowanceMatches []AllowanceMatch `json:"allowanceMatches,omitempty"`
	MultiPackLines   []int            `json:"multiPackLines,omitempty"` // line numbers carrying a marker
}

// BucketGates holds the per-bucket on/off switches decided by stage 5
type BucketGates struct {
	MultiUnit          bool `json:"multiUnit"`
	ManufacturerCoupon bool `json:"manufacturerCoupon"`
	Loyalty            bool `json:"loyalty"`
	Retailer           bool `json:"retailer"`
	OtherManufacturer  bool `json:"otherManufacturer"`
	Transaction        bool `json:"transaction"`
}

// Enabled returns the gate for the named bucket.
func (g BucketGates) Enabled(bucket string) bool {
	switch bucket {
	case BucketMultiUnit:
		return g.MultiUnit
	case BucketManufacturerCoupon:
		return g.ManufacturerCoupon
	case BucketLoyalty:
		return g.Loyalty
	case BucketRetailer:
		return g.Retailer
	case BucketOtherManufacturer:
		return g.OtherManufacturer
	case BucketTransaction:
		return g.Transaction
	}
	return false
}

// EligibilityResult represents the stage 5 output
type EligibilityResult struct {
	Tier3Eligible           bool        `json:"tier3Eligible"`
	Tier3IncentivesEligible bool        `json:"tier3IncentivesEligible"`
	PMUSAAllowancesEligible bool        `json:"pmusaAllowancesEligible"`
	Buckets                 BucketGates `json:"buckets"`
	Reasons                 []string    `json:"reasons,omitempty"`
}

// DecisionResponse represents the POS-safe engine output (stage 7)
type DecisionResponse struct {
	LoyaltyIDValid  bool            `json:"loyaltyIdValid"`
	Tier3Eligible   bool            `json:"tier3Eligible"`
	CIDFundEligible bool            `json:"cidFundEligible"`
	AgeVerified     bool            `json:"ageVerified"`
	EAIVVerified    bool            `json:"eaivVerified"`
	Rewards         []Reward        `json:"rewards"`
	ReceiptLines    []string        `json:"receiptLines"`
	TotalDiscount   decimal.Decimal `json:"totalDiscount"`
}
