package models

// PaymentVerifier checks a client-supplied payment marker against the
// settlement network. The demo implementation only requires the marker to be
// present; a production implementation must check a signature and a ledger
// entry before accepting it.
type PaymentVerifier interface {
	// VerifyPayment validates marker against quote and returns the
	// settlement-network transaction hash that proves the payment.
	VerifyPayment(marker string, quote *PaymentQuote) (string, error)
}
