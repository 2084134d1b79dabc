package models

// PaymentQuote is the declarative price quote returned when a verification
// request arrives without a payment marker.
type PaymentQuote struct {
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
	Recipient string `json:"recipient"`
	Network   string `json:"network"`
}

// VerifyResult is the outcome of a verification attempt. Either PaymentRequired
// is true and Quote is set, or the verification completed and Payment plus
// Credential are set.
type VerifyResult struct {
	PaymentRequired bool
	Quote           *PaymentQuote
	Payment         *PaymentTransaction
	Credential      *Credential
	User            *KYCUser
}

// BatchResult is the outcome of a settlement run.
type BatchResult struct {
	// Settled is the number of transactions confirmed in this run.
	Settled int `json:"transactionsSettled"`
	// Message is a human-readable summary for the polling client.
	Message string `json:"message"`
	// Batch is the created batch, nil when nothing was pending.
	Batch *SettlementBatch `json:"batch,omitempty"`
}

// DashboardStats is the read-side aggregate served to the dashboard.
type DashboardStats struct {
	TotalBalance   string             `json:"totalBalance"`
	SecurityScore  int                `json:"securityScore"`
	ActiveProfiles int                `json:"activeProfiles"`
	TotalProfiles  int                `json:"totalProfiles"`
	RecentLogs     []*VerificationLog `json:"recentLogs"`
	RecentUsers    []*KYCUser         `json:"recentUsers"`
}

// Platform is the application service boundary exposed to the HTTP layer.
type Platform interface {
	// KYC users
	CreateUser(user *KYCUser) error
	GetUser(id string) (*KYCUser, error)
	ListUsers() ([]*KYCUser, error)
	UpdateUserStatus(id string, status KYCStatus) (*KYCUser, error)

	// Verify runs the x402-style verification gate for userID. An empty marker
	// yields a PaymentRequired result carrying the configured quote; a present
	// marker is checked by the injected PaymentVerifier and, on success, one
	// payment and one credential are written and the user becomes VERIFIED.
	Verify(userID, verificationType, marker string) (*VerifyResult, error)

	// Payment transactions. ListPayments filters by user when userID is
	// non-empty.
	CreatePayment(payment *PaymentTransaction) error
	GetPayment(id string) (*PaymentTransaction, error)
	ListPayments(userID string) ([]*PaymentTransaction, error)
	UpdatePaymentStatus(id string, status PaymentStatus, txHash string) (*PaymentTransaction, error)

	// Credentials. ListCredentials filters by user when userID is non-empty.
	CreateCredential(credential *Credential) error
	ListCredentials(userID string) ([]*Credential, error)

	// Devices and mesh ledger. ListMeshTransactions filters by settlement
	// state when status is non-empty; the pending view backs the client's
	// sync-queue polling.
	CreateDevice(device *OfflineDevice) error
	GetDevice(deviceID string) (*OfflineDevice, error)
	ListDevices() ([]*OfflineDevice, error)
	CreateMeshTransaction(tx *MeshTransaction) error
	ListMeshTransactions(status MeshStatus) ([]*MeshTransaction, error)
	ListBatches() ([]*SettlementBatch, error)

	// Settle confirms all currently pending mesh transactions as one batch.
	Settle() (*BatchResult, error)

	// Biometric profiles
	CreateBiometricProfile(profile *BiometricProfile) error
	ListBiometricProfiles() ([]*BiometricProfile, error)

	// Verification logs
	CreateLog(entry *VerificationLog) error
	ListLogs() ([]*VerificationLog, error)

	// DashboardStats recomputes the dashboard aggregate from the store.
	DashboardStats() (*DashboardStats, error)
}
