package engine

import (
	"context"
	"fmt"
	"log"
	"strings"

	"rtn-loyalty-tier3/models"
)

// Multi-pack marker criteria. The POS applies the multi-pack price itself;
// the marker only drives receipt messaging.
const multiPackBrand = "MARLBORO"

// typeDiscounts classifies which discount families touch this basket:
// manufacturer allowance rules joined to the SKUs present, and multi-pack
// markers. Nothing is typed for IDs outside the tier 3 program.
func (e *Engine) typeDiscounts(ctx context.Context, dc *DecisionContext) error {
	types := &models.DiscountTypes{}
	dc.Types = types

	if !dc.Validation.EligibleForTier3 {
		return nil
	}

	rules, err := e.allowances.ActiveRules(ctx, dc.Today)
	if err != nil {
		return fmt.Errorf("failed to load allowance rules: %w", err)
	}

	for i := range rules {
		rule := &rules[i]
		if !rule.ActiveOn(dc.Today) {
			continue
		}
		// A rule can carry its own per-day cap on top of the manager-card cap.
		if rule.MaxDailyTransactions > 0 && dc.Validation.DailyCount > rule.MaxDailyTransactions {
			log.Printf("⚠️ typeDiscounts: rule %d skipped, daily count %d over rule cap %d",
				rule.ID, dc.Validation.DailyCount, rule.MaxDailyTransactions)
			continue
		}

		for j := range dc.Basket.Lines {
			line := &dc.Basket.Lines[j]
			if line.IsUnknown {
				continue
			}
			if line.Quantity < rule.MinQty {
				continue
			}
			if !rule.AppliesToUOM(line.UOM) {
				continue
			}
			if line.IsPromotional && !rule.PromotionalUPCsEligible {
				continue
			}
			if !rule.AppliesToSKU(line.SKUGUID) {
				continue
			}
			types.AllowanceMatches = append(types.AllowanceMatches, models.AllowanceMatch{
				Rule:       rule,
				LineNumber: line.LineNumber,
			})
		}
	}

	for i := range dc.Basket.Lines {
		line := &dc.Basket.Lines[i]
		if isMultiPackLine(line) {
			types.MultiPackLines = append(types.MultiPackLines, line.LineNumber)
		}
	}

	if len(types.AllowanceMatches) > 0 || len(types.MultiPackLines) > 0 {
		log.Printf("💰 typeDiscounts: %d allowance matches, %d multi-pack markers",
			len(types.AllowanceMatches), len(types.MultiPackLines))
	}
	return nil
}

// isMultiPackLine reports whether a merged line qualifies for the Marlboro
// two/three pack promotion.
func isMultiPackLine(line *models.NormalizedLine) bool {
	if line.IsUnknown || line.IsPromotional {
		return false
	}
	if line.UOM != models.UOMPack {
		return false
	}
	if !strings.Contains(strings.ToUpper(line.Brand), multiPackBrand) {
		return false
	}
	return line.Quantity == 2 || line.Quantity == 3
}
