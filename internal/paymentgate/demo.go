// Package paymentgate holds implementations of models.PaymentVerifier, the
// collaborator the KYC gate consults before trusting a payment marker.
package paymentgate

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/taurusai/qgrid/internal/errs"
	"github.com/taurusai/qgrid/internal/models"
	"github.com/taurusai/qgrid/pkg/logger"
)

// DemoVerifier accepts any non-empty payment marker and fabricates a network
// transaction hash. It exists so the verification gate exercises the same
// code path a real verifier would sit behind; swapping in a production
// implementation (signature check plus ledger lookup) is a wiring change in
// main, not a handler change.
type DemoVerifier struct {
	logger *logger.Logger
}

// NewDemoVerifier creates the demo verifier.
func NewDemoVerifier(logger *logger.Logger) models.PaymentVerifier {
	return &DemoVerifier{logger: logger}
}

// VerifyPayment treats marker presence as proof and returns a synthetic
// transaction hash. An empty marker is rejected.
func (v *DemoVerifier) VerifyPayment(marker string, quote *models.PaymentQuote) (string, error) {
	if marker == "" {
		return "", errs.E(errs.Invalid, "payment marker is empty")
	}

	buf := make([]byte, 4)
	_, _ = rand.Read(buf)
	hash := "0x" + hex.EncodeToString(buf)

	v.logger.Debugw("payment marker accepted",
		"network", quote.Network, "amount", quote.Amount, "currency", quote.Currency, "txHash", hash)
	return hash, nil
}
