package engine

import (
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	"rtn-loyalty-tier3/models"
	"rtn-loyalty-tier3/utils"
)

// priceBuckets applies the discount buckets to every line in their fixed
// order. Bucket math stays exact; each line is rounded half-up to 2 decimals
// exactly once, at the final summation. Every application clamps to the
// line's remaining value so the total never exceeds the base extended price.
func (e *Engine) priceBuckets(dc *DecisionContext) {
	summary := &models.PricingSummary{}

	loyaltyByLine := make(map[int][]*models.AllowanceRule)
	mfgByLine := make(map[int][]*models.AllowanceRule)
	for _, m := range dc.Types.AllowanceMatches {
		switch m.Rule.AllowanceType {
		case models.AllowanceTypeLoyalty:
			loyaltyByLine[m.LineNumber] = append(loyaltyByLine[m.LineNumber], m.Rule)
		case models.AllowanceTypeManufacturerCoupon:
			mfgByLine[m.LineNumber] = append(mfgByLine[m.LineNumber], m.Rule)
		}
	}

	multiPack := make(map[int]bool)
	for _, n := range dc.Types.MultiPackLines {
		multiPack[n] = true
	}

	gates := dc.Eligibility.Buckets

	for _, line := range dc.Basket.Lines {
		priced := models.PricedLine{NormalizedLine: line}
		remaining := line.BaseExtendedPrice

		for _, bucket := range models.BucketOrder {
			if !gates.Enabled(bucket) {
				continue
			}

			amount := decimal.Zero
			switch bucket {
			case models.BucketMultiUnit:
				if multiPack[line.LineNumber] {
					// Marker only; the register applies the multi-pack price.
					priced.IsMultiPack = true
				}
			case models.BucketManufacturerCoupon:
				for _, rule := range mfgByLine[line.LineNumber] {
					if rule.ManufacturerFundedAmount.Valid {
						amount = amount.Add(rule.ManufacturerFundedAmount.Decimal)
					}
				}
			case models.BucketLoyalty:
				for _, rule := range loyaltyByLine[line.LineNumber] {
					if rule.MaxAllowancePerTransaction.Valid {
						amount = amount.Add(rule.MaxAllowancePerTransaction.Decimal)
					} else {
						amount = amount.Add(e.cfg.DefaultLoyaltyDiscount)
					}
				}
			case models.BucketRetailer, models.BucketOtherManufacturer, models.BucketTransaction:
				// Placeholders; nothing funds these buckets yet.
			}

			if amount.IsPositive() {
				if amount.GreaterThan(remaining) {
					amount = remaining
				}
				priced.Discounts.Add(bucket, amount)
				remaining = remaining.Sub(amount)
			}
		}

		priced.TotalDiscount = priced.Discounts.Total()

		finalExt := line.BaseExtendedPrice.Sub(priced.TotalDiscount)
		if finalExt.IsNegative() {
			finalExt = decimal.Zero
		}
		priced.FinalExtendedPrice = utils.Round2(finalExt)
		if line.Quantity > 0 {
			priced.FinalUnitPrice = utils.Round2(priced.FinalExtendedPrice.Div(decimal.NewFromInt(int64(line.Quantity))))
		}

		// Rewards only carry funded discounts; the multi-pack marker is
		// receipt messaging, never a reward.
		if priced.TotalDiscount.IsPositive() {
			priced.Reward = buildReward(&priced)
		}

		for _, b := range models.BucketOrder {
			summary.BucketTotals.Add(b, priced.Discounts.Amount(b))
		}
		summary.TotalDiscount = summary.TotalDiscount.Add(priced.TotalDiscount)
		if priced.IsMultiPack {
			summary.MultiPackCount++
		}
		summary.Lines = append(summary.Lines, priced)
	}

	summary.TotalDiscount = utils.Round2(summary.TotalDiscount)
	dc.Pricing = summary

	if summary.TotalDiscount.IsPositive() || summary.MultiPackCount > 0 {
		log.Printf("💰 priceBuckets: total_discount=%s multi_pack_lines=%d",
			summary.TotalDiscount.StringFixed(2), summary.MultiPackCount)
	}
}

// buildReward emits the single POS reward directive for a priced line with a
// positive discount. One reward per line, no matter how many buckets
// contributed.
func buildReward(line *models.PricedLine) *models.Reward {
	hasLoyalty := line.Discounts.Loyalty.IsPositive()
	hasMfg := line.Discounts.ManufacturerCoupon.IsPositive()

	var short, long string
	switch {
	case hasLoyalty && hasMfg:
		short = "LOYALTY+MANUFACTURER"
		long = "RTN LOYALTY + MFG REWARD"
	case hasMfg:
		short = "MANUFACTURER"
		long = "MFG FUNDED REWARD"
	default:
		short = "LOYALTY"
		long = "RTN LOYALTY REWARD"
	}

	return &models.Reward{
		ID:               fmt.Sprintf("%d-1-B2_S150", line.LineNumber),
		TargetLineNumber: line.LineNumber,
		Value:            utils.Round2(line.TotalDiscount),
		ShortDesc:        utils.TruncateEllipsis(short, utils.ReceiptLineWidth),
		LongDesc:         utils.TruncateEllipsis(long, utils.ReceiptLineWidth),
	}
}
