package pos

import (
	"fmt"
	"log"
	"math/rand"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"rtn-loyalty-tier3/models"
	"rtn-loyalty-tier3/utils"
)

// ResponseHeader constants the Passport expects on every reply.
const (
	InterfaceVersion   = "1.2"
	VendorName         = "Gilbarco"
	VendorModelVersion = "12.23.03.02"
)

// Known request root elements.
const (
	MsgOnlineStatus  = "GetLoyaltyOnlineStatusRequest"
	MsgGetRewards    = "GetRewardsRequest"
	MsgFinalize      = "FinalizeRewardsRequest"
	MsgCancel        = "CancelTransactionRequest"
	MsgBeginCustomer = "BeginCustomerRequest"
	MsgEndCustomer   = "EndCustomerRequest"
)

// RequestEnvelope carries the header fields every request type shares.
type RequestEnvelope struct {
	Root              *Node
	Name              string
	POSSequenceID     string
	LoyaltySequenceID string
	StoreID           string
}

// ParseEnvelope parses one extracted document and pulls the shared header
// fields. The store id falls back to defaultStoreID when the POS omits it.
func ParseEnvelope(raw []byte, defaultStoreID string) (*RequestEnvelope, error) {
	root, err := ParseDocument(raw)
	if err != nil {
		return nil, err
	}

	env := &RequestEnvelope{
		Root:              root,
		Name:              root.Name,
		POSSequenceID:     root.Find("POSSequenceID").Value(),
		LoyaltySequenceID: root.Find("LoyaltySequenceID").Value(),
		StoreID:           root.Find("StoreLocationID").Value(),
	}
	if env.StoreID == "" {
		env.StoreID = defaultStoreID
	}
	return env, nil
}

// avtElementNames are checked in order for the cashier's age confirmation.
var avtElementNames = []string{"AgeVerified", "AVTStatus", "AgeStatus", "AgeVerification", "IDVerified"}

// dlElementNames signal a driver's license scan, which implies the cashier
// verified age in person.
var dlElementNames = []string{"DriverLicense", "DLScanData", "DriverLicenseID", "DLNumber"}

// BuildRewardsRequest extracts the engine input from a GetRewardsRequest
// document. A missing transaction id or an empty usable basket is fatal at
// ingress; the caller answers Not Found.
func BuildRewardsRequest(env *RequestEnvelope) (*models.RewardsRequest, error) {
	root := env.Root

	transactionID := root.FirstValue("POSTransactionID", "TransactionID", "TransactionSequenceNumber")
	if transactionID == "" {
		return nil, fmt.Errorf("rewards request has no transaction id")
	}

	req := &models.RewardsRequest{
		StoreID:       env.StoreID,
		TransactionID: transactionID,
		CashierID:     root.FirstValue("CashierID", "OperatorID"),
		LoyaltyID:     root.Find("LoyaltyID").Value(),
		AVTStatus:     extractAVTStatus(root),
	}

	for _, txLine := range root.FindAll("TransactionLine") {
		item := txLine.Find("ItemLine")
		if item == nil {
			continue
		}

		line := models.RawLine{
			LineNumber:  lineNumberOf(txLine),
			UPC:         item.FirstValue("POSCode", "InHouseCode"),
			Description: item.Find("Description").Value(),
			Quantity:    1,
		}
		if qty := item.Find("SalesQuantity").Value(); qty != "" {
			if n, err := strconv.Atoi(strings.TrimSpace(qty)); err == nil && n > 0 {
				line.Quantity = n
			}
		}

		price, ok := extractUnitPrice(item, line.Quantity)
		if line.UPC == "" || !ok {
			log.Printf("⚠️ BuildRewardsRequest: dropping unusable line %d (upc=%q)", line.LineNumber, line.UPC)
			continue
		}
		line.UnitPrice = price

		req.Lines = append(req.Lines, line)
	}

	if len(req.Lines) == 0 {
		return nil, fmt.Errorf("rewards request %s has no usable basket lines", transactionID)
	}
	return req, nil
}

// extractAVTStatus returns the raw cashier age-confirmation token. A scanned
// driver's license counts as verified even without an explicit AVT element.
func extractAVTStatus(root *Node) string {
	for _, name := range avtElementNames {
		if v := root.Find(name).Value(); v != "" {
			return v
		}
	}
	for _, name := range dlElementNames {
		if n := root.Find(name); n != nil && n.Value() != "" {
			return "verified"
		}
	}
	return ""
}

// lineNumberOf reads the POS line number from the attribute or child form.
func lineNumberOf(txLine *Node) int {
	raw := strings.TrimSpace(txLine.Attrs["LineNumber"])
	if raw == "" {
		raw = txLine.Find("LineNumber").Value()
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	return 1
}

// extractUnitPrice resolves the per-unit price: RegularSellPrice first, then
// ExtendedPrice divided by quantity, then SellPrice and UnitPrice.
func extractUnitPrice(item *Node, quantity int) (decimal.Decimal, bool) {
	if d, ok := utils.ParsePrice(item.Find("RegularSellPrice").Value()); ok {
		return d, true
	}
	if d, ok := utils.ParsePrice(item.Find("ExtendedPrice").Value()); ok && quantity > 0 {
		return d.Div(decimal.NewFromInt(int64(quantity))), true
	}
	if d, ok := utils.ParsePrice(item.Find("SellPrice").Value()); ok {
		return d, true
	}
	if d, ok := utils.ParsePrice(item.Find("UnitPrice").Value()); ok {
		return d, true
	}
	return decimal.Zero, false
}

// sequenceIDChars feeds generated LoyaltySequenceIDs, 9 alphanumerics like
// the ones observed on the wire.
const sequenceIDChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// SequenceID echoes the request's loyalty sequence id or generates one.
func SequenceID(fromRequest string) string {
	if fromRequest != "" {
		return fromRequest
	}
	b := make([]byte, 9)
	for i := range b {
		b[i] = sequenceIDChars[rand.Intn(len(sequenceIDChars))]
	}
	return string(b)
}

// Overall result values.
const (
	ResultSuccess  = "Success"
	ResultNotFound = "Not Found"
)

// responseHeader renders the shared ResponseHeader block.
func responseHeader(posSeqID, loyaltySeqID, overallResult string) string {
	var b strings.Builder
	b.WriteString("<ResponseHeader>")
	b.WriteString("<POSLoyaltyInterfaceVersion>" + InterfaceVersion + "</POSLoyaltyInterfaceVersion>")
	b.WriteString("<VendorName>" + VendorName + "</VendorName>")
	b.WriteString("<VendorModelVersion>" + VendorModelVersion + "</VendorModelVersion>")
	b.WriteString("<POSSequenceID>" + escapeXML(posSeqID) + "</POSSequenceID>")
	b.WriteString("<LoyaltySequenceID>" + escapeXML(loyaltySeqID) + "</LoyaltySequenceID>")
	b.WriteString("<OverallResult>" + overallResult + "</OverallResult>")
	b.WriteString("</ResponseHeader>")
	return b.String()
}

// EncodeOnlineStatusResponse answers a GetLoyaltyOnlineStatusRequest. The
// sidecar is always online and always wants the loyalty prompt.
func EncodeOnlineStatusResponse(env *RequestEnvelope) []byte {
	xml := "<GetLoyaltyOnlineStatusResponse>" +
		responseHeader(env.POSSequenceID, SequenceID(env.LoyaltySequenceID), ResultSuccess) +
		`<PromptForLoyaltyFlag value="yes"></PromptForLoyaltyFlag>` +
		"</GetLoyaltyOnlineStatusResponse>"
	return []byte(xml)
}

// EncodeRewardsResponse renders the pipeline decision as a
// GetRewardsResponse document.
func EncodeRewardsResponse(env *RequestEnvelope, loyaltyID string, resp *models.DecisionResponse, ageVerificationRequired bool) []byte {
	var b strings.Builder
	b.WriteString("<GetRewardsResponse>")
	b.WriteString(responseHeader(env.POSSequenceID, SequenceID(env.LoyaltySequenceID), ResultSuccess))

	b.WriteString(fmt.Sprintf(`<LoyaltyIDValidFlag value="%s">%s</LoyaltyIDValidFlag>`,
		yesNo(resp.LoyaltyIDValid), escapeXML(loyaltyID)))
	b.WriteString(fmt.Sprintf(`<AgeVerified value="%s"></AgeVerified>`, yesNo(resp.AgeVerified)))
	b.WriteString(fmt.Sprintf(`<EAIVVerified value="%s"></EAIVVerified>`, yesNo(resp.EAIVVerified)))
	b.WriteString(fmt.Sprintf(`<AgeVerificationRequired value="%s"></AgeVerificationRequired>`, yesNo(ageVerificationRequired)))

	b.WriteString("<RewardActions>")
	for _, r := range resp.Rewards {
		b.WriteString("<AddReward>")
		b.WriteString("<LoyaltyRewardID>" + escapeXML(r.ID) + "</LoyaltyRewardID>")
		b.WriteString(`<InstantRewardFlag value="yes"></InstantRewardFlag>`)
		b.WriteString("<RewardTargetLineNumber>" + strconv.Itoa(r.TargetLineNumber) + "</RewardTargetLineNumber>")
		b.WriteString("<RewardDiscountMethod>amountOff</RewardDiscountMethod>")
		b.WriteString("<RewardValue>" + r.Value.StringFixed(2) + "</RewardValue>")
		b.WriteString(`<RewardLimit type="quantity">1</RewardLimit>`)
		b.WriteString("<RewardReceiptDescShort>" + escapeXML(r.ShortDesc) + "</RewardReceiptDescShort>")
		b.WriteString("<RewardReceiptDescLong>" + escapeXML(r.LongDesc) + "</RewardReceiptDescLong>")
		b.WriteString("</AddReward>")
	}
	b.WriteString("</RewardActions>")

	b.WriteString("<ReceiptBlock>")
	for _, line := range resp.ReceiptLines {
		b.WriteString("<LoyaltyReceiptLine>" + escapeXML(line) + "</LoyaltyReceiptLine>")
	}
	b.WriteString("</ReceiptBlock>")

	b.WriteString("</GetRewardsResponse>")
	return []byte(b.String())
}

// EncodeFinalizeResponse answers a FinalizeRewardsRequest. The result is
// Not Found only when the POS finalizes offline with no reward id, which is
// normal for rewardless or cancelled transactions.
func EncodeFinalizeResponse(env *RequestEnvelope) []byte {
	offline := strings.EqualFold(env.Root.Find("LoyaltyOfflineFlag").Value(), "yes")
	hasRewardID := env.Root.Find("LoyaltyRewardID").Value() != ""

	result := ResultSuccess
	if offline && !hasRewardID {
		result = ResultNotFound
	}

	xml := "<FinalizeRewardsResponse>" +
		responseHeader(env.POSSequenceID, SequenceID(env.LoyaltySequenceID), result) +
		"</FinalizeRewardsResponse>"
	return []byte(xml)
}

// EncodeCancelResponse answers a CancelTransactionRequest.
func EncodeCancelResponse(env *RequestEnvelope) []byte {
	xml := "<CancelTransactionResponse>" +
		responseHeader(env.POSSequenceID, SequenceID(env.LoyaltySequenceID), ResultSuccess) +
		"</CancelTransactionResponse>"
	return []byte(xml)
}

// EncodeNotFoundResponse answers anything unrecognized or unparseable.
func EncodeNotFoundResponse(posSeqID string) []byte {
	xml := "<GetLoyaltyResponse>" +
		responseHeader(posSeqID, SequenceID(""), ResultNotFound) +
		"</GetLoyaltyResponse>"
	return []byte(xml)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}
