package models

import "github.com/shopspring/decimal"

// SKUGUID prefix and brand used for catalog misses
const (
	UnknownSKUPrefix    = "UNKNOWN_"
	UnknownTobaccoName  = "UNKNOWN_TOBACCO"
	UnknownBrand        = "UNKNOWN"
	UnknownManufacturer = "UNKNOWN"
)

// RawLine represents one basket line as extracted from the POS request
type RawLine struct {
	LineNumber  int             `json:"lineNumber"`
	UPC         string          `json:"upc"`
	Description string          `json:"description,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// NormalizedLine represents a catalog-resolved, merged basket line
type NormalizedLine struct {
	LineNumber        int             `json:"lineNumber"` // first occurrence wins
	UPC               string          `json:"upc"`
	SKUGUID           string          `json:"skuguid"`
	SKUName           string          `json:"skuName"`
	Brand             string          `json:"brand"`
	Manufacturer      string          `json:"manufacturer"`
	UOM               string          `json:"uom"`
	Quantity          int             `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unitPrice"`
	BaseExtendedPrice decimal.Decimal `json:"baseExtendedPrice"`
	IsPromotional     bool            `json:"isPromotional"`
	IsUnknown         bool            `json:"isUnknown"`
	SourceLineNumbers []int           `json:"sourceLineNumbers"`
}

// NormalizedBasket is the stage 3 output
type NormalizedBasket struct {
	Lines        []NormalizedLine `json:"lines"`
	UnknownUPCs  []string         `json:"unknownUpcs,omitempty"`
	MergedCount  int              `json:"mergedCount"`  // raw lines folded into an earlier line
	DroppedCount int              `json:"droppedCount"` // unusable raw lines
}
