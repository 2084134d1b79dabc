package platform

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/taurusai/qgrid/internal/config"
	"github.com/taurusai/qgrid/internal/errs"
	"github.com/taurusai/qgrid/internal/models"
	"github.com/taurusai/qgrid/pkg/logger"
)

const (
	// recentWindow is how many rows the dashboard shows per recency list.
	recentWindow = 5
	// enrolledFactorTarget is the number of biometric factors a fully enrolled
	// user has; the security score is the enrolled share of it.
	enrolledFactorTarget = 5
	// credentialValidity is how long an issued credential remains valid.
	credentialValidity = 10 * 365 * 24 * time.Hour
)

// Platform is the main struct of the application and serves all business
// logic on top of the repository and the injected payment verifier.
type Platform struct {
	logger *logger.Logger
	config *config.Config

	repo     models.Repository
	verifier models.PaymentVerifier
}

// NewPlatform creates the application service.
func NewPlatform(repo models.Repository, verifier models.PaymentVerifier, logger *logger.Logger, config *config.Config) models.Platform {
	return &Platform{
		repo:     repo,
		verifier: verifier,
		logger:   logger,
		config:   config,
	}
}

// KYC users

// CreateUser registers a new KYC user with status PENDING unless one of the
// closed status values is supplied.
func (p *Platform) CreateUser(user *models.KYCUser) error {
	ve := errs.ValidationErrs()
	if user.Name == "" {
		ve.Add("name", "cannot be empty")
	}
	if user.KYCStatus != "" && !user.KYCStatus.Valid() {
		ve.Add("kycStatus", "must be one of PENDING, VERIFIED, REJECTED")
	}
	if err := ve.Err(); err != nil {
		return err
	}

	if user.Email != "" {
		_, err := p.repo.GetUserByEmail(user.Email)
		if err == nil {
			return errs.E(errs.Conflict, "email already registered")
		}
		if errs.KindOf(err) != errs.NotFound {
			return err
		}
	}

	now := time.Now().Unix()
	user.ID = uuid.NewString()
	if user.KYCStatus == "" {
		user.KYCStatus = models.KYCPending
	}
	user.CreatedAt = now
	user.UpdatedAt = now

	if err := p.repo.CreateUser(user); err != nil {
		return err
	}
	p.logger.Infow("user registered", "userId", user.ID, "kycStatus", user.KYCStatus)
	return nil
}

func (p *Platform) GetUser(id string) (*models.KYCUser, error) {
	return p.repo.GetUser(id)
}

func (p *Platform) ListUsers() ([]*models.KYCUser, error) {
	return p.repo.ListUsers()
}

func (p *Platform) UpdateUserStatus(id string, status models.KYCStatus) (*models.KYCUser, error) {
	if !status.Valid() {
		return nil, errs.E(errs.Invalid, "status must be one of PENDING, VERIFIED, REJECTED")
	}
	user, err := p.repo.UpdateUserStatus(id, status, time.Now().Unix())
	if err != nil {
		return nil, err
	}
	p.logger.Infow("user status updated", "userId", id, "kycStatus", status)
	return user, nil
}

// Verify runs the payment-gated verification for userID. Without a marker the
// caller gets the configured quote back; with one, the injected verifier
// checks it and the payment, credential and status flip land atomically.
func (p *Platform) Verify(userID, verificationType, marker string) (*models.VerifyResult, error) {
	if userID == "" {
		return nil, errs.EmptyFieldErr("userId")
	}

	quote := &models.PaymentQuote{
		Amount:    p.config.VerifyPriceAmount.String(),
		Currency:  p.config.VerifyPriceCurrency,
		Recipient: p.config.VerifyRecipient,
		Network:   p.config.SettlementNetwork,
	}

	if marker == "" {
		p.logger.Debugw("verification quoted, payment required", "userId", userID)
		return &models.VerifyResult{PaymentRequired: true, Quote: quote}, nil
	}

	txHash, err := p.verifier.VerifyPayment(marker, quote)
	if err != nil {
		return nil, err
	}

	if verificationType == "" {
		verificationType = "full_kyc"
	}

	now := time.Now()
	payment := &models.PaymentTransaction{
		ID:               uuid.NewString(),
		UserID:           userID,
		Amount:           p.config.VerifyPriceAmount,
		Currency:         p.config.VerifyPriceCurrency,
		Status:           models.PaymentConfirmed,
		TransactionHash:  txHash,
		VerificationType: verificationType,
		CreatedAt:        now.Unix(),
	}
	credential := &models.Credential{
		ID:             uuid.NewString(),
		UserID:         userID,
		CredentialType: "AADHAAR_KYC",
		CredentialHash: "sha256:" + randomHex(16),
		DID:            fmt.Sprintf("did:%s:mainnet:%s", p.config.SettlementNetwork, userID),
		IssuedAt:       now.Unix(),
		ExpiresAt:      now.Add(credentialValidity).Unix(),
	}

	user, err := p.repo.VerifyUser(userID, payment, credential, now.Unix())
	if err != nil {
		return nil, err
	}

	p.logger.Infow("user verified", "userId", userID, "verificationType", verificationType, "paymentId", payment.ID)
	return &models.VerifyResult{
		Payment:    payment,
		Credential: credential,
		User:       user,
	}, nil
}

// Payment transactions

func (p *Platform) CreatePayment(payment *models.PaymentTransaction) error {
	ve := errs.ValidationErrs()
	if payment.UserID == "" {
		ve.Add("userId", "cannot be empty")
	}
	if payment.Amount.IsNegative() {
		ve.Add("amount", "cannot be negative")
	}
	if payment.Status != "" && !payment.Status.Valid() {
		ve.Add("status", "must be one of PENDING, CONFIRMED, FAILED")
	}
	if err := ve.Err(); err != nil {
		return err
	}

	payment.ID = uuid.NewString()
	if payment.Currency == "" {
		payment.Currency = "USDC"
	}
	if payment.Status == "" {
		payment.Status = models.PaymentPending
	}
	payment.CreatedAt = time.Now().Unix()

	return p.repo.CreatePayment(payment)
}

func (p *Platform) GetPayment(id string) (*models.PaymentTransaction, error) {
	return p.repo.GetPayment(id)
}

func (p *Platform) ListPayments(userID string) ([]*models.PaymentTransaction, error) {
	if userID != "" {
		return p.repo.ListPaymentsByUser(userID)
	}
	return p.repo.ListPayments()
}

func (p *Platform) UpdatePaymentStatus(id string, status models.PaymentStatus, txHash string) (*models.PaymentTransaction, error) {
	if !status.Valid() {
		return nil, errs.E(errs.Invalid, "status must be one of PENDING, CONFIRMED, FAILED")
	}
	return p.repo.UpdatePaymentStatus(id, status, txHash)
}

// Credentials

func (p *Platform) CreateCredential(credential *models.Credential) error {
	ve := errs.ValidationErrs()
	if credential.UserID == "" {
		ve.Add("userId", "cannot be empty")
	}
	if credential.CredentialType == "" {
		ve.Add("credentialType", "cannot be empty")
	}
	if credential.CredentialHash == "" {
		ve.Add("credentialHash", "cannot be empty")
	}
	if err := ve.Err(); err != nil {
		return err
	}

	credential.ID = uuid.NewString()
	if credential.IssuedAt == 0 {
		credential.IssuedAt = time.Now().Unix()
	}
	return p.repo.CreateCredential(credential)
}

func (p *Platform) ListCredentials(userID string) ([]*models.Credential, error) {
	if userID != "" {
		return p.repo.ListCredentialsByUser(userID)
	}
	return p.repo.ListCredentials()
}

// Devices and mesh ledger

// CreateDevice registers an offline participant. Balance and offline limit
// default to zero; status defaults to ACTIVE.
func (p *Platform) CreateDevice(device *models.OfflineDevice) error {
	ve := errs.ValidationErrs()
	if device.DeviceID == "" {
		ve.Add("deviceId", "cannot be empty")
	}
	if device.OwnerName == "" {
		ve.Add("ownerName", "cannot be empty")
	}
	if !device.DeviceType.Valid() {
		ve.Add("deviceType", "must be one of CUSTOMER, MERCHANT, AID_WORKER")
	}
	if device.Balance.IsNegative() {
		ve.Add("balance", "cannot be negative")
	}
	if device.OfflineLimit.IsNegative() {
		ve.Add("offlineLimit", "cannot be negative")
	}
	if device.Status != "" && !device.Status.Valid() {
		ve.Add("status", "must be one of ACTIVE, OFFLINE, SYNCING")
	}
	if err := ve.Err(); err != nil {
		return err
	}

	device.ID = uuid.NewString()
	if device.Status == "" {
		device.Status = models.DeviceActive
	}
	device.CreatedAt = time.Now().Unix()

	if err := p.repo.CreateDevice(device); err != nil {
		return err
	}
	p.logger.Infow("device registered", "deviceId", device.DeviceID, "deviceType", device.DeviceType, "balance", device.Balance)
	return nil
}

func (p *Platform) GetDevice(deviceID string) (*models.OfflineDevice, error) {
	return p.repo.GetDevice(deviceID)
}

func (p *Platform) ListDevices() ([]*models.OfflineDevice, error) {
	return p.repo.ListDevices()
}

// CreateMeshTransaction records a transfer and moves the balance pair. The
// transfer always starts PENDING_SYNC; settlement later notarizes it.
func (p *Platform) CreateMeshTransaction(mt *models.MeshTransaction) error {
	ve := errs.ValidationErrs()
	if mt.FromDeviceID == "" {
		ve.Add("fromDeviceId", "cannot be empty")
	}
	if mt.ToDeviceID == "" {
		ve.Add("toDeviceId", "cannot be empty")
	}
	if mt.Nonce == "" {
		ve.Add("nonce", "cannot be empty")
	}
	if !mt.Amount.IsPositive() {
		ve.Add("amount", "must be positive")
	}
	if mt.FromDeviceID != "" && mt.FromDeviceID == mt.ToDeviceID {
		ve.Add("toDeviceId", "cannot equal fromDeviceId")
	}
	if err := ve.Err(); err != nil {
		return err
	}

	mt.ID = uuid.NewString()
	mt.Status = models.MeshPendingSync
	mt.TransactionHash = ""
	mt.SettledAt = 0
	mt.CreatedAt = time.Now().Unix()

	if err := p.repo.CreateMeshTransaction(mt); err != nil {
		return err
	}
	p.logger.Infow("mesh transaction recorded",
		"from", mt.FromDeviceID, "to", mt.ToDeviceID, "amount", mt.Amount, "nonce", mt.Nonce)
	return nil
}

// ListMeshTransactions returns the ledger, narrowed to one settlement state
// when status is non-empty. The pending view is what sync clients poll.
func (p *Platform) ListMeshTransactions(status models.MeshStatus) ([]*models.MeshTransaction, error) {
	switch {
	case status == "":
		return p.repo.ListMeshTransactions()
	case status == models.MeshPendingSync:
		return p.repo.ListPendingMeshTransactions()
	case !status.Valid():
		return nil, errs.E(errs.Invalid, "status must be one of PENDING_SYNC, CONFIRMED, FAILED")
	}

	all, err := p.repo.ListMeshTransactions()
	if err != nil {
		return nil, err
	}
	out := make([]*models.MeshTransaction, 0, len(all))
	for _, mt := range all {
		if mt.Status == status {
			out = append(out, mt)
		}
	}
	return out, nil
}

func (p *Platform) ListBatches() ([]*models.SettlementBatch, error) {
	return p.repo.ListBatches()
}

// Settle confirms every pending mesh transaction as one batch under a fresh
// settlement-network reference. With nothing pending it is a no-op and no
// batch row is written.
func (p *Platform) Settle() (*models.BatchResult, error) {
	ref := newSettlementRef()
	batch, settled, err := p.repo.SettlePending(ref, time.Now().Unix())
	if err != nil {
		return nil, err
	}

	if settled == 0 {
		p.logger.Debug("settlement requested with nothing pending")
		return &models.BatchResult{Settled: 0, Message: "No pending transactions to settle"}, nil
	}

	p.logger.Infow("settlement batch confirmed",
		"batchId", batch.ID, "batchSize", batch.BatchSize, "totalAmount", batch.TotalAmount, "ref", ref)
	return &models.BatchResult{
		Settled: settled,
		Message: fmt.Sprintf("Settled %d transactions", settled),
		Batch:   batch,
	}, nil
}

// Biometric profiles

func (p *Platform) CreateBiometricProfile(profile *models.BiometricProfile) error {
	ve := errs.ValidationErrs()
	if profile.UserID == "" {
		ve.Add("userId", "cannot be empty")
	}
	if profile.BiometricType == "" {
		ve.Add("biometricType", "cannot be empty")
	}
	if profile.Status != "" && !profile.Status.Valid() {
		ve.Add("status", "must be one of ACTIVE, NOT_ENROLLED, EXPIRED")
	}
	if profile.LivenessScore < 0 || profile.LivenessScore > 100 {
		ve.Add("livenessScore", "must be between 0 and 100")
	}
	if err := ve.Err(); err != nil {
		return err
	}

	profile.ID = uuid.NewString()
	if profile.Status == "" {
		profile.Status = models.BiometricNotEnrolled
	}
	profile.CreatedAt = time.Now().Unix()
	return p.repo.CreateBiometricProfile(profile)
}

func (p *Platform) ListBiometricProfiles() ([]*models.BiometricProfile, error) {
	return p.repo.ListBiometricProfiles()
}

// Verification logs

func (p *Platform) CreateLog(entry *models.VerificationLog) error {
	ve := errs.ValidationErrs()
	if entry.UserID == "" {
		ve.Add("userId", "cannot be empty")
	}
	if entry.EventType == "" {
		ve.Add("eventType", "cannot be empty")
	}
	if entry.Method == "" {
		ve.Add("method", "cannot be empty")
	}
	if !entry.Result.Valid() {
		ve.Add("result", "must be SUCCESS or FAILED")
	}
	if entry.RiskScore < 0 || entry.RiskScore > 100 {
		ve.Add("riskScore", "must be between 0 and 100")
	}
	if err := ve.Err(); err != nil {
		return err
	}

	entry.ID = uuid.NewString()
	entry.CreatedAt = time.Now().Unix()
	return p.repo.CreateLog(entry)
}

func (p *Platform) ListLogs() ([]*models.VerificationLog, error) {
	return p.repo.ListLogs()
}

// DashboardStats recomputes the dashboard aggregate from full-table scans.
// The security score is the enrolled share of the factor target, capped at 100.
func (p *Platform) DashboardStats() (*models.DashboardStats, error) {
	total, err := p.repo.TotalDeviceBalance()
	if err != nil {
		return nil, err
	}
	active, totalProfiles, err := p.repo.CountBiometricProfiles()
	if err != nil {
		return nil, err
	}
	recentLogs, err := p.repo.RecentLogs(recentWindow)
	if err != nil {
		return nil, err
	}
	recentUsers, err := p.repo.RecentUsers(recentWindow)
	if err != nil {
		return nil, err
	}

	score := active * 100 / enrolledFactorTarget
	if score > 100 {
		score = 100
	}

	return &models.DashboardStats{
		TotalBalance:   total.StringFixed(2),
		SecurityScore:  score,
		ActiveProfiles: active,
		TotalProfiles:  totalProfiles,
		RecentLogs:     recentLogs,
		RecentUsers:    recentUsers,
	}, nil
}
