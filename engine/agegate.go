package engine

import (
	"context"
	"fmt"
	"log"
	"strings"

	"rtn-loyalty-tier3/models"
)

// AVTMethodInPerson is the only verification method the forecourt performs.
const AVTMethodInPerson = "in_person_confirmation"

// avtVerifiedTokens are the POS status texts accepted as a completed
// in-person age verification.
var avtVerifiedTokens = map[string]bool{
	"verified": true,
	"true":     true,
	"yes":      true,
	"1":        true,
	"ok":       true,
	"pass":     true,
}

// gateAge computes the age verification flags and writes the AVT audit row.
// AVT status comes only from the POS request; EAIV comes only from the
// stored profile, never from the POS.
func (e *Engine) gateAge(ctx context.Context, dc *DecisionContext) error {
	avtVerified := avtVerifiedTokens[strings.ToLower(strings.TrimSpace(dc.Request.AVTStatus))]

	eaivVerified := false
	if dc.Profile != nil {
		eaivVerified = dc.Profile.EAIVVerified
	}

	age := &models.AgeResult{
		AgeVerified:             avtVerified,
		EAIVVerified:            eaivVerified,
		Tier3IncentivesEligible: dc.Validation.EligibleForTier3 && avtVerified,
	}
	age.EAIVIncentivesEligible = age.Tier3IncentivesEligible && eaivVerified
	if !avtVerified {
		age.Reason = "age verification required"
	}
	dc.Age = age

	if !avtVerified || dc.Request.TransactionID == "" || dc.Request.StoreID == "" {
		return nil
	}

	// Tobacco age checks must leave an audit trail; losing this row is not
	// an option, so a failed write aborts the whole decision. The row lands
	// even for an invalid loyalty ID, with the identity fields left empty.
	rec := &models.AVTRecord{
		TransactionID: dc.Request.TransactionID,
		StoreID:       dc.Request.StoreID,
		AVTPerformed:  true,
		AVTMethod:     AVTMethodInPerson,
		AVTTimestamp:  e.now(),
		CashierID:     dc.Request.CashierID,
		EAIVVerified:  eaivVerified,
	}
	if dc.Validation.Valid {
		rec.LoyaltyID = dc.Validation.LoyaltyID
		rec.CIDCustomerID = dc.Validation.CIDCustomerID
	}
	if _, err := e.avt.Insert(ctx, rec); err != nil {
		return fmt.Errorf("failed to record age verification: %w", err)
	}

	if dc.Validation.Valid {
		if err := e.customers.MarkAVTVerified(ctx, dc.Validation.LoyaltyID, rec.AVTTimestamp); err != nil {
			log.Printf("⚠️ gateAge: profile AVT touch failed: %v", err)
		}
	}

	return nil
}
