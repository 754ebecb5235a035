package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Units of measure a UPC match can resolve to
const (
	UOMCarton = "CARTON"
	UOMPack   = "PACK"
)

// UPC columns checked during catalog resolution, in match order
const (
	UPCFieldCarton           = "CARTON_UPC"
	UPCFieldPack             = "PACK_UPC"
	UPCFieldCartonSuppressed = "CARTON_SuppressedUPC"
)

// Allowance rule types as stored in loyalty_allowances.allowance_type
const (
	AllowanceTypeLoyalty            = "LOYALTY"
	AllowanceTypeManufacturerCoupon = "MANUFACTURER_COUPON"
)

// Product represents one tobacco SKU in the products catalog
type Product struct {
	SKUGUID                string    `json:"skuguid"`
	SKUName                string    `json:"skuName"`
	Brand                  string    `json:"brand"`
	Manufacturer           string    `json:"manufacturer"`
	Category               string    `json:"category"`
	CartonUPC              string    `json:"cartonUpc,omitempty"`
	CartonSuppressedUPC    string    `json:"cartonSuppressedUpc,omitempty"`
	CartonConversionFactor int       `json:"cartonConversionFactor"`
	CartonIsPromotional    bool      `json:"cartonIsPromotional"`
	PackUPC                string    `json:"packUpc,omitempty"`
	PackConversionFactor   int       `json:"packConversionFactor"`
	PackIsPromotional      bool      `json:"packIsPromotional"`
	ProgramEligibility     string    `json:"programEligibility,omitempty"`
	UpdatedAt              time.Time `json:"updatedAt"`
}

// UPCMatch represents the catalog resolution of one raw basket line
type UPCMatch struct {
	Product       *Product `json:"product,omitempty"`
	UOM           string   `json:"uom"`
	MatchedField  string   `json:"matchedField,omitempty"` // which UPC column hit
	IsPromotional bool     `json:"isPromotional"`
	Unknown       bool     `json:"unknown"`
}

// AllowanceRule represents a loyalty_allowances row joined to its SKU links
type AllowanceRule struct {
	ID                         int64               `json:"id"`
	AllowanceType              string              `json:"allowanceType"`
	Description                string              `json:"description,omitempty"`
	MinQty                     int                 `json:"minQty"`
	EligibleUOMs               []string            `json:"eligibleUoms,omitempty"` // empty means all
	MaxAllowancePerTransaction decimal.NullDecimal `json:"maxAllowancePerTransaction"`
	ManufacturerFundedAmount   decimal.NullDecimal `json:"manufacturerFundedAmount"`
	MaxDailyTransactions       int                 `json:"maxDailyTransactions"` // 0 means uncapped
	PromoCode                  string              `json:"promoCode,omitempty"`
	PromotionalUPCsEligible    bool                `json:"promotionalUpcsEligible"`
	StartDate                  time.Time           `json:"startDate"`
	EndDate                    time.Time           `json:"endDate"`
	Active                     bool                `json:"active"`
	SKUGUIDs                   []string            `json:"skuguids,omitempty"` // empty means all products
}

// AppliesToSKU reports whether the rule covers the given SKUGUID.
// A rule with no SKU links covers every product.
func (r *AllowanceRule) AppliesToSKU(skuguid string) bool {
	if len(r.SKUGUIDs) == 0 {
		return true
	}
	for _, s := range r.SKUGUIDs {
		if s == skuguid {
			return true
		}
	}
	return false
}

// AppliesToUOM reports whether the rule covers the given unit of measure.
// A rule with no eligible UOMs covers every unit of measure.
func (r *AllowanceRule) AppliesToUOM(uom string) bool {
	if len(r.EligibleUOMs) == 0 {
		return true
	}
	for _, u := range r.EligibleUOMs {
		if u == uom {
			return true
		}
	}
	return false
}

// ActiveOn reports whether the rule's date window contains the given day.
func (r *AllowanceRule) ActiveOn(day time.Time) bool {
	if !r.Active {
		return false
	}
	d := day.Truncate(24 * time.Hour)
	start := r.StartDate.Truncate(24 * time.Hour)
	end := r.EndDate.Truncate(24 * time.Hour)
	if !start.IsZero() && d.Before(start) {
		return false
	}
	if !end.IsZero() && d.After(end) {
		return false
	}
	return true
}
