package engine

import (
	"time"

	"rtn-loyalty-tier3/models"
)

// DecisionContext carries one POS transaction through the pipeline.
// Stages run in a fixed order and each fills its own slot; later stages
// only read the slots of earlier ones.
type DecisionContext struct {
	Request *models.RewardsRequest
	Today   time.Time
	DateStr string // Today as YYYY-MM-DD, shared by the counter and log writes

	Profile     *models.CustomerProfile
	Validation  *models.ValidationResult
	Age         *models.AgeResult
	Basket      *models.NormalizedBasket
	Types       *models.DiscountTypes
	Eligibility *models.EligibilityResult
	Pricing     *models.PricingSummary
	Response    *models.DecisionResponse
}
