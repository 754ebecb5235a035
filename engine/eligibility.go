package engine

import (
	"fmt"

	"rtn-loyalty-tier3/models"
)

// gateEligibility decides the transaction flags and the per-bucket gates.
// Gates only ever turn buckets off; pricing never re-enables one.
func (e *Engine) gateEligibility(dc *DecisionContext) {
	v, a := dc.Validation, dc.Age

	res := &models.EligibilityResult{
		Tier3Eligible: v.Valid && v.EligibleForTier3,
	}
	res.Tier3IncentivesEligible = res.Tier3Eligible && a.AgeVerified
	res.PMUSAAllowancesEligible = res.Tier3IncentivesEligible && v.EligibleForCIDFund

	switch {
	case !res.Tier3Eligible:
		if v.Reason != "" {
			res.Reasons = append(res.Reasons, v.Reason)
		} else {
			res.Reasons = append(res.Reasons, "loyalty ID not eligible")
		}

	case !a.AgeVerified:
		res.Reasons = append(res.Reasons, "age verification required")

	default:
		res.Buckets = models.BucketGates{
			MultiUnit:          true,
			ManufacturerCoupon: true,
			Loyalty:            true,
			Retailer:           true,
			OtherManufacturer:  true,
			Transaction:        true,
		}
		if !v.EligibleForCIDFund {
			// Manager/store cards never draw on manufacturer CID funds.
			res.Buckets.ManufacturerCoupon = false
			res.Buckets.MultiUnit = false
			res.Reasons = append(res.Reasons,
				fmt.Sprintf("PM USA allowances ineligible: loyalty ID exceeded %d transactions/day", e.cfg.DailyManagerCardCap))
		}
		if !a.EAIVVerified {
			res.Reasons = append(res.Reasons, "EAIV not verified")
		}
	}

	dc.Eligibility = res
}
