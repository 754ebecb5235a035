package models

// FeedSKU represents one SKU entry from the manufacturer catalog API
type FeedSKU struct {
	SKUGUID                string `json:"skuGuid"`
	SKUName                string `json:"skuName"`
	Brand                  string `json:"brand"`
	Manufacturer           string `json:"manufacturer"`
	Category               string `json:"category"`
	CartonUPC              string `json:"cartonUpc"`
	CartonSuppressedUPC    string `json:"cartonSuppressedUpc"`
	CartonConversionFactor int    `json:"cartonConversionFactor"`
	CartonIsPromotional    bool   `json:"cartonIsPromotional"`
	PackUPC                string `json:"packUpc"`
	PackConversionFactor   int    `json:"packConversionFactor"`
	PackIsPromotional      bool   `json:"packIsPromotional"`
	ProgramEligibility     string `json:"programEligibility"`
}

// FeedAllowance represents one allowance entry from the manufacturer catalog API
type FeedAllowance struct {
	AllowanceID                int64    `json:"allowanceId"`
	AllowanceType              string   `json:"allowanceType"`
	Description                string   `json:"description"`
	MinQty                     int      `json:"minQty"`
	EligibleUOMs               []string `json:"eligibleUoms"`
	MaxAllowancePerTransaction string   `json:"maxAllowancePerTransaction"` // decimal string, may be empty
	ManufacturerFundedAmount   string   `json:"manufacturerFundedAmount"`   // decimal string, may be empty
	MaxDailyTransactions       int      `json:"maxDailyTransactions"`
	PromoCode                  string   `json:"promoCode"`
	PromotionalUPCsEligible    bool     `json:"promotionalUpcsEligible"`
	StartDate                  string   `json:"startDate"` // YYYY-MM-DD
	EndDate                    string   `json:"endDate"`   // YYYY-MM-DD
	Active                     bool     `json:"active"`
	SKUGUIDs                   []string `json:"skuGuids"`
}

// CatalogSyncStats represents the result of one catalog sync run
type CatalogSyncStats struct {
	SKUsFetched        int `json:"skusFetched"`
	SKUsUpserted       int `json:"skusUpserted"`
	SKUsSkipped        int `json:"skusSkipped"`
	AllowancesFetched  int `json:"allowancesFetched"`
	AllowancesUpserted int `json:"allowancesUpserted"`
	AllowancesSkipped  int `json:"allowancesSkipped"`
}
