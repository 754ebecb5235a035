package models

// LoyaltyID format types as stored in customer_profiles.format_type
const (
	LoyaltyFormatPhone   = "PHONE_NUMBER"
	LoyaltyFormatQR      = "QR_CODE"
	LoyaltyFormatInvalid = "INVALID"
)

// ValidationResult represents the outcome of loyalty ID validation (stage 1)
// Example: {"valid": true, "eligibleForTier3": true, "eligibleForCidFund": true, "formatType": "PHONE", "dailyCount": 2}
type ValidationResult struct {
	Valid              bool   `json:"valid"`
	EligibleForTier3   bool   `json:"eligibleForTier3"`
	EligibleForCIDFund bool   `json:"eligibleForCidFund"`
	IsManagerCard      bool   `json:"isManagerCard"`
	LoyaltyID          string `json:"loyaltyId,omitempty"`
	CIDCustomerID      string `json:"cidCustomerId,omitempty"`
	FormatType         string `json:"formatType"`
	DailyCount         int    `json:"dailyCount"`
	Reason             string `json:"reason,omitempty"`
}

// AgeResult represents the outcome of age gating (stage 2)
type AgeResult struct {
	AgeVerified             bool   `json:"ageVerified"`
	EAIVVerified            bool   `json:"eaivVerified"`
	Tier3IncentivesEligible bool   `json:"tier3IncentivesEligible"`
	EAIVIncentivesEligible  bool   `json:"eaivIncentivesEligible"`
	Reason                  string `json:"reason,omitempty"`
}

// ValidationLogEntry represents one row of loyalty_validation_log
type ValidationLogEntry struct {
	ID                 int64  `json:"id"`
	LoyaltyID          string `json:"loyaltyId"`
	StoreID            string `json:"storeId"`
	Valid              bool   `json:"valid"`
	EligibleForTier3   bool   `json:"eligibleForTier3"`
	EligibleForCIDFund bool   `json:"eligibleForCidFund"`
	IsManagerCard      bool   `json:"isManagerCard"`
	DailyCount         int    `json:"dailyCount"`
	Reason             string `json:"reason,omitempty"`
	CreatedAt          string `json:"createdAt,omitempty"`
}
