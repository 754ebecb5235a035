package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"rtn-loyalty-tier3/models"
)

func gate(v *models.ValidationResult, a *models.AgeResult) *models.EligibilityResult {
	e := newTestEngine(newFakeRepo())
	dc := &DecisionContext{Validation: v, Age: a}
	e.gateEligibility(dc)
	return dc.Eligibility
}

func TestGateEligibilityAllOpen(t *testing.T) {
	res := gate(
		&models.ValidationResult{Valid: true, EligibleForTier3: true, EligibleForCIDFund: true},
		&models.AgeResult{AgeVerified: true, EAIVVerified: true},
	)

	assert.True(t, res.Tier3Eligible)
	assert.True(t, res.Tier3IncentivesEligible)
	assert.True(t, res.PMUSAAllowancesEligible)
	assert.Empty(t, res.Reasons)
	for _, b := range models.BucketOrder {
		assert.True(t, res.Buckets.Enabled(b), "bucket %s", b)
	}
}

func TestGateEligibilityInvalidLID(t *testing.T) {
	res := gate(
		&models.ValidationResult{Valid: false, Reason: "LoyaltyID is missing"},
		&models.AgeResult{AgeVerified: true},
	)

	assert.False(t, res.Tier3Eligible)
	assert.False(t, res.Tier3IncentivesEligible)
	assert.False(t, res.PMUSAAllowancesEligible)
	assert.Equal(t, []string{"LoyaltyID is missing"}, res.Reasons)
	for _, b := range models.BucketOrder {
		assert.False(t, res.Buckets.Enabled(b), "bucket %s", b)
	}
}

func TestGateEligibilityAgeNotVerified(t *testing.T) {
	res := gate(
		&models.ValidationResult{Valid: true, EligibleForTier3: true, EligibleForCIDFund: true},
		&models.AgeResult{AgeVerified: false},
	)

	assert.True(t, res.Tier3Eligible)
	assert.False(t, res.Tier3IncentivesEligible)
	assert.False(t, res.PMUSAAllowancesEligible)
	assert.Equal(t, []string{"age verification required"}, res.Reasons)
	for _, b := range models.BucketOrder {
		assert.False(t, res.Buckets.Enabled(b), "bucket %s", b)
	}
}

func TestGateEligibilityManagerCard(t *testing.T) {
	res := gate(
		&models.ValidationResult{Valid: true, EligibleForTier3: true, EligibleForCIDFund: false, IsManagerCard: true},
		&models.AgeResult{AgeVerified: true, EAIVVerified: true},
	)

	// Manager cards stay in the program but lose the manufacturer buckets.
	assert.True(t, res.Tier3Eligible)
	assert.True(t, res.Tier3IncentivesEligible)
	assert.False(t, res.PMUSAAllowancesEligible)
	assert.False(t, res.Buckets.ManufacturerCoupon)
	assert.False(t, res.Buckets.MultiUnit)
	assert.True(t, res.Buckets.Loyalty)
	assert.True(t, res.Buckets.Retailer)
	assert.True(t, res.Buckets.OtherManufacturer)
	assert.True(t, res.Buckets.Transaction)
	assert.Equal(t,
		[]string{"PM USA allowances ineligible: loyalty ID exceeded 5 transactions/day"},
		res.Reasons)
}

func TestGateEligibilityEAIVNotVerifiedIsAdvisory(t *testing.T) {
	res := gate(
		&models.ValidationResult{Valid: true, EligibleForTier3: true, EligibleForCIDFund: true},
		&models.AgeResult{AgeVerified: true, EAIVVerified: false},
	)

	// EAIV gates nothing at tier 3; the reason only feeds the upsell.
	assert.Equal(t, []string{"EAIV not verified"}, res.Reasons)
	for _, b := range models.BucketOrder {
		assert.True(t, res.Buckets.Enabled(b), "bucket %s", b)
	}
}
