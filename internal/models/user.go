package models

// KYCStatus is the verification state of a platform user.
type KYCStatus string

const (
	KYCPending  KYCStatus = "PENDING"
	KYCVerified KYCStatus = "VERIFIED"
	KYCRejected KYCStatus = "REJECTED"
)

// Valid reports whether s is one of the closed KYC status values.
func (s KYCStatus) Valid() bool {
	switch s {
	case KYCPending, KYCVerified, KYCRejected:
		return true
	}
	return false
}

// KYCUser represents a platform user subject to KYC verification.
type KYCUser struct {
	// ID is the unique identifier for the user (UUID).
	ID string `json:"id" gorm:"column:id;primaryKey"`
	// Name is the user's display name.
	Name string `json:"name" gorm:"column:name;not null"`
	// Email is the user's email address. Unique when set; the empty value is
	// excluded from the index so email stays optional.
	Email string `json:"email" gorm:"column:email;index:idx_kyc_users_email,unique,where:email <> ''"`
	// KYCStatus is the verification state. Transitions only via the verify flow
	// or an explicit status update.
	KYCStatus KYCStatus `json:"kycStatus" gorm:"column:kyc_status;not null;default:PENDING"`
	// WalletAddress is the user's settlement-network wallet address.
	WalletAddress string `json:"walletAddress" gorm:"column:wallet_address"`
	// CreatedAt is the Unix timestamp when the user was registered.
	CreatedAt int64 `json:"createdAt" gorm:"column:created_at;index"`
	// UpdatedAt is the Unix timestamp of the last status change.
	UpdatedAt int64 `json:"updatedAt" gorm:"column:updated_at"`
}

// TableName keeps the table name aligned with the platform schema.
func (KYCUser) TableName() string {
	return "kyc_users"
}
