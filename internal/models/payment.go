package models

import "github.com/shopspring/decimal"

// PaymentStatus is the state of a payment transaction.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentConfirmed PaymentStatus = "CONFIRMED"
	PaymentFailed    PaymentStatus = "FAILED"
)

// Valid reports whether s is one of the closed payment status values.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentConfirmed, PaymentFailed:
		return true
	}
	return false
}

// PaymentTransaction records a payment made by a user, typically created as a
// side effect of a successful verification call.
type PaymentTransaction struct {
	// ID is the unique identifier for the payment (UUID).
	ID string `json:"id" gorm:"column:id;primaryKey"`
	// UserID references the paying user.
	UserID string `json:"userId" gorm:"column:user_id;index;not null"`
	// Amount is the payment amount.
	Amount decimal.Decimal `json:"amount" gorm:"column:amount;type:decimal(18,6);not null"`
	// Currency is the payment currency (USDC, USDT, etc.).
	Currency string `json:"currency" gorm:"column:currency;not null;default:USDC"`
	// Status is the payment state.
	Status PaymentStatus `json:"status" gorm:"column:status;not null;default:PENDING"`
	// TransactionHash is the settlement-network transaction hash.
	TransactionHash string `json:"transactionHash" gorm:"column:transaction_hash"`
	// VerificationType is the verification the payment covered
	// (age_check, address_check, full_kyc).
	VerificationType string `json:"verificationType" gorm:"column:verification_type"`
	// CreatedAt is the Unix timestamp when the payment was recorded.
	CreatedAt int64 `json:"createdAt" gorm:"column:created_at;index"`
}

// TableName keeps the table name aligned with the platform schema.
func (PaymentTransaction) TableName() string {
	return "payment_transactions"
}
