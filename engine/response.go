package engine

import (
	"strings"

	"rtn-loyalty-tier3/models"
	"rtn-loyalty-tier3/utils"
)

// Receipt block literals. Every line fits the 32-column printer.
const (
	receiptHeader = "*** LOYALTY REWARDS ***"
	receiptFooter = "*** THANK YOU ***"

	receiptNotEligible = "Loyalty ID not eligible"
	receiptAgeRequired = "Age verification required"
	receiptNoRewards   = "No eligible rewards"

	receiptUpsell1 = "APP BONUS AVAILABLE"
	receiptUpsell2 = "VERIFY ID IN APP TO UNLOCK"
)

// buildResponse assembles the POS-safe decision output: flags, the per-line
// rewards from pricing, and the bounded receipt block.
func (e *Engine) buildResponse(dc *DecisionContext) {
	resp := &models.DecisionResponse{
		LoyaltyIDValid:  dc.Validation.Valid,
		Tier3Eligible:   dc.Eligibility.Tier3Eligible,
		CIDFundEligible: dc.Validation.EligibleForCIDFund,
		AgeVerified:     dc.Age.AgeVerified,
		EAIVVerified:    dc.Age.EAIVVerified,
		Rewards:         []models.Reward{},
		TotalDiscount:   dc.Pricing.TotalDiscount,
	}

	for _, line := range dc.Pricing.Lines {
		if line.Reward != nil {
			resp.Rewards = append(resp.Rewards, *line.Reward)
		}
	}

	resp.ReceiptLines = e.buildReceipt(dc)
	dc.Response = resp
}

// buildReceipt renders the receipt block: at most 10 lines of 32 columns.
func (e *Engine) buildReceipt(dc *DecisionContext) []string {
	sum := dc.Pricing

	if !sum.TotalDiscount.IsPositive() && sum.MultiPackCount == 0 {
		switch {
		case !dc.Validation.Valid || !dc.Eligibility.Tier3Eligible:
			return []string{receiptNotEligible}
		case !dc.Age.AgeVerified:
			return []string{receiptAgeRequired}
		default:
			return []string{receiptNoRewards}
		}
	}

	lines := []string{receiptHeader}

	if sum.BucketTotals.Loyalty.IsPositive() {
		lines = append(lines, utils.SavingsLine("LOYALTY SAVINGS", utils.FormatUSD(sum.BucketTotals.Loyalty)))
	}
	if sum.BucketTotals.ManufacturerCoupon.IsPositive() {
		lines = append(lines, utils.SavingsLine("MFG COUPON", utils.FormatUSD(sum.BucketTotals.ManufacturerCoupon)))
	}
	if sum.MultiPackCount > 0 {
		lines = append(lines, utils.SavingsLine("MULTI-BUY SAVINGS", "AT POS"))
	}
	if sum.BucketTotals.Retailer.IsPositive() {
		lines = append(lines, utils.SavingsLine("STORE SAVINGS", utils.FormatUSD(sum.BucketTotals.Retailer)))
	}

	lines = append(lines, strings.Repeat("-", utils.ReceiptLineWidth))
	lines = append(lines, utils.SavingsLine("TOTAL SAVINGS", utils.FormatUSD(sum.TotalDiscount)))
	lines = append(lines, receiptFooter)

	// App upsell rides along only when the budget still allows both lines.
	if dc.Eligibility.Tier3Eligible && !dc.Age.EAIVVerified && len(lines)+2 <= utils.ReceiptMaxLines {
		lines = append(lines, receiptUpsell1, receiptUpsell2)
	}

	if len(lines) > utils.ReceiptMaxLines {
		lines = lines[:utils.ReceiptMaxLines]
	}
	for i := range lines {
		lines[i] = utils.ClampLine(lines[i])
	}
	return lines
}
