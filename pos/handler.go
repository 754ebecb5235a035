package pos

import (
	"context"
	"log"

	"rtn-loyalty-tier3/engine"
	"rtn-loyalty-tier3/models"
)

// HandlerConfig carries the POS-facing tunables.
type HandlerConfig struct {
	// DefaultStoreID is used when the POS omits StoreLocationID.
	DefaultStoreID string
	// AgeVerificationRequired sets the response flag; the Passport prompts
	// the cashier when it sees yes.
	AgeVerificationRequired bool
}

// Handler routes extracted POS documents to the decision engine and encodes
// the replies. One handler serves every connection.
type Handler struct {
	engine *engine.Engine
	cfg    HandlerConfig
}

// NewHandler creates a new Handler.
func NewHandler(eng *engine.Engine, cfg HandlerConfig) *Handler {
	if cfg.DefaultStoreID == "" {
		cfg.DefaultStoreID = "UNKNOWN"
	}
	return &Handler{engine: eng, cfg: cfg}
}

// Handle processes one document payload and returns the reply, or nil for
// the fire-and-forget message types.
func (h *Handler) Handle(ctx context.Context, payload []byte) []byte {
	env, err := ParseEnvelope(payload, h.cfg.DefaultStoreID)
	if err != nil {
		log.Printf("⚠️ Handle: unparseable document: %v", err)
		return EncodeNotFoundResponse("")
	}

	log.Printf("⬇️ REQUEST: %s store=%s seq=%s", env.Name, env.StoreID, env.POSSequenceID)

	switch env.Name {
	case MsgOnlineStatus:
		return EncodeOnlineStatusResponse(env)
	case MsgGetRewards:
		return h.handleGetRewards(ctx, env)
	case MsgFinalize:
		return EncodeFinalizeResponse(env)
	case MsgCancel:
		return EncodeCancelResponse(env)
	case MsgBeginCustomer, MsgEndCustomer:
		// The Passport expects silence here; a reply confuses it.
		return nil
	default:
		log.Printf("⚠️ Handle: no handler for %s", env.Name)
		return EncodeNotFoundResponse(env.POSSequenceID)
	}
}

// handleGetRewards runs the decision pipeline. Infrastructure faults come
// back as an empty-reward response, never a protocol error: the POS must
// always be able to close the sale.
func (h *Handler) handleGetRewards(ctx context.Context, env *RequestEnvelope) []byte {
	req, err := BuildRewardsRequest(env)
	if err != nil {
		log.Printf("⚠️ handleGetRewards: %v", err)
		return EncodeNotFoundResponse(env.POSSequenceID)
	}

	resp, err := h.engine.Process(ctx, req)
	if err != nil {
		log.Printf("❌ handleGetRewards: pipeline error for transaction_id=%s: %v", req.TransactionID, err)
		resp = &models.DecisionResponse{
			Rewards:      []models.Reward{},
			ReceiptLines: []string{},
		}
	}

	return EncodeRewardsResponse(env, req.LoyaltyID, resp, h.cfg.AgeVerificationRequired)
}
