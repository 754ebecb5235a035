package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"rtn-loyalty-tier3/models"
	"rtn-loyalty-tier3/repository"
)

// QRBaseURL is the literal prefix every RTNSmart app QR code carries.
const QRBaseURL = "https://rtnsmart.com/rtnsmartapp/?USER_"

var (
	phonePattern     = regexp.MustCompile(`^[0-9]{10,12}$`)
	digitsPattern    = regexp.MustCompile(`^[0-9]+$`)
	qrPayloadPattern = regexp.MustCompile(`^[A-Za-z0-9+/=]+$`)
	lidSeparators    = strings.NewReplacer(" ", "", "-", "")
)

// validateLoyaltyID runs loyalty ID validation and identity resolution.
// Format decisions are values on the result, never errors; an error return
// means infrastructure failed and the decision cannot proceed.
func (e *Engine) validateLoyaltyID(ctx context.Context, dc *DecisionContext) error {
	lid := strings.TrimSpace(dc.Request.LoyaltyID)

	if lid == "" {
		dc.Validation = e.invalidResult(ctx, dc, "", models.LoyaltyFormatInvalid, "LoyaltyID is missing")
		return nil
	}

	normalized, formatType, reason := classifyLoyaltyID(lid)
	if formatType == models.LoyaltyFormatInvalid {
		dc.Validation = e.invalidResult(ctx, dc, lid, formatType, reason)
		return nil
	}

	// Same-LID requests serialize here so the counter, profile and log
	// writes land in a consistent order.
	release := e.locks.Lock(normalized)
	defer release()

	count, err := e.dailyCounts.IncrementAndGet(ctx, normalized, dc.DateStr)
	if err != nil {
		return fmt.Errorf("failed to increment daily count: %w", err)
	}

	result := &models.ValidationResult{
		Valid:              true,
		EligibleForTier3:   true,
		EligibleForCIDFund: true,
		LoyaltyID:          normalized,
		FormatType:         formatType,
		DailyCount:         count,
	}

	if count > e.cfg.DailyManagerCardCap {
		// A single household does not transact this often; treat the ID as
		// a shared manager/store card. Still valid, but no CID funding.
		result.IsManagerCard = true
		result.EligibleForCIDFund = false
		result.Reason = fmt.Sprintf("Manager/store card detected: %d transactions today (exceeds cap of %d)",
			count, e.cfg.DailyManagerCardCap)
		log.Printf("⚠️ validateLoyaltyID: %s", result.Reason)
	}

	cid := deriveCID(normalized, formatType)
	profile, err := e.customers.UpsertOnVisit(ctx, normalized, cid, formatType, dc.Request.StoreID, result.IsManagerCard)
	if errors.Is(err, repository.ErrCIDCollision) {
		cid = fallbackCID()
		profile, err = e.customers.UpsertOnVisit(ctx, normalized, cid, formatType, dc.Request.StoreID, result.IsManagerCard)
	}
	if err != nil {
		return fmt.Errorf("failed to upsert customer profile: %w", err)
	}
	result.CIDCustomerID = profile.CIDCustomerID

	dc.Profile = profile
	dc.Validation = result
	e.appendValidationLog(ctx, dc, result)
	return nil
}

// classifyLoyaltyID decides the loyalty ID form. Returns the normalized ID,
// the format type, and a reason when the form is invalid.
func classifyLoyaltyID(lid string) (string, string, string) {
	if strings.HasPrefix(lid, QRBaseURL) {
		payload := lid[len(QRBaseURL):]
		if payload == "" || !qrPayloadPattern.MatchString(payload) {
			return "", models.LoyaltyFormatInvalid, "LoyaltyID QR code format invalid: invalid URL or encoded parameter"
		}
		return lid, models.LoyaltyFormatQR, ""
	}

	cleaned := lidSeparators.Replace(lid)
	if digitsPattern.MatchString(cleaned) {
		if !phonePattern.MatchString(cleaned) {
			return "", models.LoyaltyFormatInvalid,
				fmt.Sprintf("LoyaltyID format invalid: length %d not in range [10, 12]", len(cleaned))
		}
		return cleaned, models.LoyaltyFormatPhone, ""
	}

	return "", models.LoyaltyFormatInvalid, "LoyaltyID format unrecognized (must be phone number or RTNSmart QR code)"
}

// deriveCID computes the cardholder ID. Phone IDs are their own CID; QR IDs
// hash to a stable 16-hex-digit handle.
func deriveCID(normalizedID, formatType string) string {
	if formatType == models.LoyaltyFormatPhone {
		return normalizedID
	}
	sum := sha256.Sum256([]byte(normalizedID))
	return "CID_" + strings.ToUpper(hex.EncodeToString(sum[:]))[:16]
}

// fallbackCID generates a random CID after a hash collision.
func fallbackCID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "CID_" + strings.ToUpper(raw)[:16]
}

// invalidResult assembles the not-valid outcome and logs it.
func (e *Engine) invalidResult(ctx context.Context, dc *DecisionContext, lid, formatType, reason string) *models.ValidationResult {
	result := &models.ValidationResult{
		Valid:              false,
		EligibleForTier3:   false,
		EligibleForCIDFund: false,
		LoyaltyID:          lid,
		FormatType:         formatType,
		Reason:             reason,
	}
	log.Printf("⚠️ validateLoyaltyID: %s", reason)
	e.appendValidationLog(ctx, dc, result)
	return result
}

// appendValidationLog records the attempt best-effort; a lost audit row
// never blocks the decision.
func (e *Engine) appendValidationLog(ctx context.Context, dc *DecisionContext, result *models.ValidationResult) {
	entry := &models.ValidationLogEntry{
		LoyaltyID:          result.LoyaltyID,
		StoreID:            dc.Request.StoreID,
		Valid:              result.Valid,
		EligibleForTier3:   result.EligibleForTier3,
		EligibleForCIDFund: result.EligibleForCIDFund,
		IsManagerCard:      result.IsManagerCard,
		DailyCount:         result.DailyCount,
		Reason:             result.Reason,
	}
	if err := e.validations.Append(ctx, entry); err != nil {
		log.Printf("⚠️ appendValidationLog: %v", err)
	}
}
