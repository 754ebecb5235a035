package utils

import "fmt"

// Receipt geometry shared by the response builder and the POS encoder.
// Forecourt printers cut anything wider than 32 columns.
const (
	ReceiptMaxLines  = 10
	ReceiptLineWidth = 32

	receiptLabelWidth  = 23
	receiptAmountWidth = 6
)

// ClampLine hard-caps a receipt line at the printable width.
func ClampLine(s string) string {
	if len(s) <= ReceiptLineWidth {
		return s
	}
	return s[:ReceiptLineWidth]
}

// TruncateEllipsis shortens s to at most max bytes, ending in "..." when cut.
// Receipt and reward text is ASCII on the wire, so byte slicing is safe here.
func TruncateEllipsis(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

// SavingsLine renders a label padded to the label column plus a right-aligned
// amount column, e.g. "LOYALTY SAVINGS        -$0.97".
func SavingsLine(label, amount string) string {
	return ClampLine(fmt.Sprintf("%-*s%*s", receiptLabelWidth, label, receiptAmountWidth, amount))
}
