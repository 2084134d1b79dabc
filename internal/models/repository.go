package models

import "github.com/shopspring/decimal"

// Repository is the persistence boundary for the platform. Multi-row
// operations (CreateMeshTransaction, SettlePending, VerifyUser) are single
// methods so implementations can make them atomic.
type Repository interface {
	Close() error

	// KYC users
	CreateUser(user *KYCUser) error
	GetUser(id string) (*KYCUser, error)
	GetUserByEmail(email string) (*KYCUser, error)
	ListUsers() ([]*KYCUser, error)
	RecentUsers(n int) ([]*KYCUser, error)
	UpdateUserStatus(id string, status KYCStatus, updatedAt int64) (*KYCUser, error)

	// Payment transactions
	CreatePayment(payment *PaymentTransaction) error
	GetPayment(id string) (*PaymentTransaction, error)
	ListPayments() ([]*PaymentTransaction, error)
	ListPaymentsByUser(userID string) ([]*PaymentTransaction, error)
	UpdatePaymentStatus(id string, status PaymentStatus, txHash string) (*PaymentTransaction, error)

	// Credentials
	CreateCredential(credential *Credential) error
	ListCredentials() ([]*Credential, error)
	ListCredentialsByUser(userID string) ([]*Credential, error)

	// Devices and mesh ledger
	CreateDevice(device *OfflineDevice) error
	GetDevice(deviceID string) (*OfflineDevice, error)
	ListDevices() ([]*OfflineDevice, error)

	// CreateMeshTransaction inserts the transfer and applies the balance pair
	// (sender -amount, receiver +amount) in one atomic step. A duplicate nonce
	// yields a Conflict error and leaves balances untouched; a transfer that
	// would drive the sender negative yields InsufficientFunds.
	CreateMeshTransaction(tx *MeshTransaction) error
	ListMeshTransactions() ([]*MeshTransaction, error)
	ListPendingMeshTransactions() ([]*MeshTransaction, error)

	// SettlePending claims every PENDING_SYNC transaction, creates one batch
	// and confirms all claimed rows under ref. With nothing pending it returns
	// (nil, 0, nil) and writes no batch row. Safe under concurrent invocation.
	SettlePending(ref string, now int64) (*SettlementBatch, int, error)
	ListBatches() ([]*SettlementBatch, error)

	// VerifyUser writes the payment row, the credential row and the user's
	// VERIFIED status in one atomic step. An unknown user yields NotFound with
	// nothing written.
	VerifyUser(userID string, payment *PaymentTransaction, credential *Credential, now int64) (*KYCUser, error)

	// Biometric profiles
	CreateBiometricProfile(profile *BiometricProfile) error
	ListBiometricProfiles() ([]*BiometricProfile, error)
	CountBiometricProfiles() (active int, total int, err error)

	// Verification logs
	CreateLog(entry *VerificationLog) error
	ListLogs() ([]*VerificationLog, error)
	RecentLogs(n int) ([]*VerificationLog, error)

	// TotalDeviceBalance sums the balances of all registered devices.
	TotalDeviceBalance() (decimal.Decimal, error)
}
