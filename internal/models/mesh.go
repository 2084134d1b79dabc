package models

import "github.com/shopspring/decimal"

// MeshStatus is the settlement state of a mesh transaction.
type MeshStatus string

const (
	MeshPendingSync MeshStatus = "PENDING_SYNC"
	MeshConfirmed   MeshStatus = "CONFIRMED"
	MeshFailed      MeshStatus = "FAILED"
)

// Valid reports whether s is one of the closed mesh status values.
func (s MeshStatus) Valid() bool {
	switch s {
	case MeshPendingSync, MeshConfirmed, MeshFailed:
		return true
	}
	return false
}

// MeshTransaction is a recorded point-to-point transfer between two registered
// devices, prior to external settlement. The nonce is the only anti-replay
// guard and must be globally unique.
type MeshTransaction struct {
	// ID is the unique identifier for the transaction (UUID).
	ID string `json:"id" gorm:"column:id;primaryKey"`
	// FromDeviceID is the sending device's DeviceID.
	FromDeviceID string `json:"fromDeviceId" gorm:"column:from_device_id;index;not null"`
	// ToDeviceID is the receiving device's DeviceID.
	ToDeviceID string `json:"toDeviceId" gorm:"column:to_device_id;index;not null"`
	// Amount is the transferred amount.
	Amount decimal.Decimal `json:"amount" gorm:"column:amount;type:decimal(18,6);not null"`
	// SequenceNumber is the sender-assigned ordering hint. Monotonicity is not
	// enforced server-side.
	SequenceNumber int `json:"sequenceNumber" gorm:"column:sequence_number"`
	// Nonce is the globally unique replay guard.
	Nonce string `json:"nonce" gorm:"column:nonce;unique;not null"`
	// Status is the settlement state.
	Status MeshStatus `json:"status" gorm:"column:status;not null;default:PENDING_SYNC"`
	// TransactionHash is the settlement reference, written when the transfer
	// is confirmed. Empty while pending.
	TransactionHash string `json:"transactionHash" gorm:"column:transaction_hash"`
	// Scenario tags the demo scenario that produced the transfer, if any.
	Scenario string `json:"scenario" gorm:"column:scenario"`
	// CreatedAt is the Unix timestamp when the transfer was recorded.
	CreatedAt int64 `json:"createdAt" gorm:"column:created_at;index"`
	// SettledAt is the Unix timestamp when the transfer was settled, 0 while pending.
	SettledAt int64 `json:"settledAt,omitempty" gorm:"column:settled_at"`
}

// TableName keeps the table name aligned with the platform schema.
func (MeshTransaction) TableName() string {
	return "mesh_transactions"
}

// BatchStatus is the state of a settlement batch.
type BatchStatus string

const (
	BatchPending    BatchStatus = "PENDING"
	BatchProcessing BatchStatus = "PROCESSING"
	BatchConfirmed  BatchStatus = "CONFIRMED"
)

// SettlementBatch aggregates all mesh transactions that were pending at
// settlement time, confirmed together under one external reference.
type SettlementBatch struct {
	// ID is the unique identifier for the batch (UUID).
	ID string `json:"id" gorm:"column:id;primaryKey"`
	// BatchSize is the number of transactions settled in the batch.
	BatchSize int `json:"batchSize" gorm:"column:batch_size;not null"`
	// TotalAmount is the sum of settled transaction amounts.
	TotalAmount decimal.Decimal `json:"totalAmount" gorm:"column:total_amount;type:decimal(18,6);not null"`
	// Status is the batch state.
	Status BatchStatus `json:"status" gorm:"column:status;not null;default:PENDING"`
	// HederaTransactionID is the synthetic external settlement reference.
	HederaTransactionID string `json:"hederaTransactionId" gorm:"column:hedera_transaction_id"`
	// CreatedAt is the Unix timestamp when the batch was opened.
	CreatedAt int64 `json:"createdAt" gorm:"column:created_at;index"`
	// SettledAt is the Unix timestamp when the batch was confirmed.
	SettledAt int64 `json:"settledAt,omitempty" gorm:"column:settled_at"`
}

// TableName keeps the table name aligned with the platform schema.
func (SettlementBatch) TableName() string {
	return "settlement_batches"
}
