package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionRecord represents a row of transactions
type TransactionRecord struct {
	ID              int64           `json:"id"`
	TransactionID   string          `json:"transactionId"`
	StoreID         string          `json:"storeId"`
	LoyaltyID       string          `json:"loyaltyId,omitempty"`
	CIDCustomerID   string          `json:"cidCustomerId,omitempty"`
	AgeVerified     bool            `json:"ageVerified"`
	EAIVVerified    bool            `json:"eaivVerified"`
	Tier3Eligible   bool            `json:"tier3Eligible"`
	CIDFundEligible bool            `json:"cidFundEligible"`
	TotalDiscount   decimal.Decimal `json:"totalDiscount"`
	LineCount       int             `json:"lineCount"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// TransactionLineRecord represents a row of transaction_lines
type TransactionLineRecord struct {
	ID                 int64           `json:"id"`
	TransactionRef     int64           `json:"transactionRef"`
	LineNumber         int             `json:"lineNumber"`
	UPC                string          `json:"upc"`
	SKUGUID            string          `json:"skuguid"`
	SKUName            string          `json:"skuName,omitempty"`
	UOM                string          `json:"uom"`
	Quantity           int             `json:"quantity"`
	UnitPrice          decimal.Decimal `json:"unitPrice"`
	BaseExtendedPrice  decimal.Decimal `json:"baseExtendedPrice"`
	Discounts          LineDiscounts   `json:"discounts"`
	TotalDiscount      decimal.Decimal `json:"totalDiscount"`
	FinalUnitPrice     decimal.Decimal `json:"finalUnitPrice"`
	FinalExtendedPrice decimal.Decimal `json:"finalExtendedPrice"`
	IsUnknown          bool            `json:"isUnknown"`
	IsMultiPack        bool            `json:"isMultiPack"`
}

// AVTRecord represents a row of avt_transactions (the age verification audit trail)
type AVTRecord struct {
	ID            int64     `json:"id"`
	TransactionID string    `json:"transactionId"`
	StoreID       string    `json:"storeId"`
	LoyaltyID     string    `json:"loyaltyId"`
	CIDCustomerID string    `json:"cidCustomerId,omitempty"`
	AVTPerformed  bool      `json:"avtPerformed"`
	AVTMethod     string    `json:"avtMethod"`
	AVTTimestamp  time.Time `json:"avtTimestamp"`
	CashierID     string    `json:"cashierId,omitempty"`
	EAIVVerified  bool      `json:"eaivVerified"`
}

// DailyCount represents a row of daily_transaction_counts
type DailyCount struct {
	LoyaltyID       string    `json:"loyaltyId"`
	TransactionDate string    `json:"transactionDate"` // YYYY-MM-DD
	Count           int       `json:"count"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
