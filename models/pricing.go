package models

import "github.com/shopspring/decimal"

// Discount bucket names in their fixed application order
const (
	BucketMultiUnit          = "multi_unit"
	BucketManufacturerCoupon = "manufacturer_coupon"
	BucketLoyalty            = "loyalty"
	BucketRetailer           = "retailer"
	BucketOtherManufacturer  = "other_manufacturer"
	BucketTransaction        = "transaction"
)

// BucketOrder fixes the order buckets are applied and reported in.
// New buckets are inserted here explicitly; bucket maps are never iterated.
var BucketOrder = []string{
	BucketMultiUnit,
	BucketManufacturerCoupon,
	BucketLoyalty,
	BucketRetailer,
	BucketOtherManufacturer,
	BucketTransaction,
}

// LineDiscounts holds per-bucket discount amounts, one slot per bucket
type LineDiscounts struct {
	MultiUnit          decimal.Decimal `json:"multiUnit"`
	ManufacturerCoupon decimal.Decimal `json:"manufacturerCoupon"`
	Loyalty            decimal.Decimal `json:"loyalty"`
	Retailer           decimal.Decimal `json:"retailer"`
	OtherManufacturer  decimal.Decimal `json:"otherManufacturer"`
	Transaction        decimal.Decimal `json:"transaction"`
}

// Amount returns the slot for the named bucket.
func (d *LineDiscounts) Amount(bucket string) decimal.Decimal {
	switch bucket {
	case BucketMultiUnit:
		return d.MultiUnit
	case BucketManufacturerCoupon:
		return d.ManufacturerCoupon
	case BucketLoyalty:
		return d.Loyalty
	case BucketRetailer:
		return d.Retailer
	case BucketOtherManufacturer:
		return d.OtherManufacturer
	case BucketTransaction:
		return d.Transaction
	}
	return decimal.Zero
}

// Add accumulates amount into the named bucket's slot.
func (d *LineDiscounts) Add(bucket string, amount decimal.Decimal) {
	switch bucket {
	case BucketMultiUnit:
		d.MultiUnit = d.MultiUnit.Add(amount)
	case BucketManufacturerCoupon:
		d.ManufacturerCoupon = d.ManufacturerCoupon.Add(amount)
	case BucketLoyalty:
		d.Loyalty = d.Loyalty.Add(amount)
	case BucketRetailer:
		d.Retailer = d.Retailer.Add(amount)
	case BucketOtherManufacturer:
		d.OtherManufacturer = d.OtherManufacturer.Add(amount)
	case BucketTransaction:
		d.Transaction = d.Transaction.Add(amount)
	}
}

// Total sums every bucket slot in bucket order.
func (d *LineDiscounts) Total() decimal.Decimal {
	total := decimal.Zero
	for _, b := range BucketOrder {
		total = total.Add(d.Amount(b))
	}
	return total
}

// PricedLine represents a normalized line after ordered bucket pricing (stage 6)
type PricedLine struct {
	NormalizedLine
	Discounts          LineDiscounts   `json:"discounts"`
	TotalDiscount      decimal.Decimal `json:"totalDiscount"`
	FinalUnitPrice     decimal.Decimal `json:"finalUnitPrice"`
	FinalExtendedPrice decimal.Decimal `json:"finalExtendedPrice"`
	IsMultiPack        bool            `json:"isMultiPack"`
	Reward             *Reward         `json:"reward,omitempty"`
}

// PricingSummary represents the complete pricing result for a transaction
type PricingSummary struct {
	Lines          []PricedLine    `json:"lines"`
	BucketTotals   LineDiscounts   `json:"bucketTotals"`
	TotalDiscount  decimal.Decimal `json:"totalDiscount"`
	MultiPackCount int             `json:"multiPackCount"`
}

// Reward represents one POS reward directive attached to a line
type Reward struct {
	ID               string          `json:"id"` // "{line}-1-B2_S150"
	TargetLineNumber int             `json:"targetLineNumber"`
	Value            decimal.Decimal `json:"value"`
	ShortDesc        string          `json:"shortDesc"` // max 32 chars
	LongDesc         string          `json:"longDesc"`  // max 32 chars
}
