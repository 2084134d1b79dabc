package repository

import (
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/taurusai/qgrid/internal/errs"
	"github.com/taurusai/qgrid/internal/models"
)

// MemoryDB is an in-memory implementation of models.Repository. It backs unit
// tests and the --in-memory demo mode; nothing survives a restart. A single
// mutex serializes every operation, which also gives the multi-row operations
// the same atomicity the Postgres implementation gets from transactions.
type MemoryDB struct {
	mu sync.Mutex

	users       []*models.KYCUser
	payments    []*models.PaymentTransaction
	credentials []*models.Credential
	devices     []*models.OfflineDevice
	meshTxs     []*models.MeshTransaction
	batches     []*models.SettlementBatch
	profiles    []*models.BiometricProfile
	logs        []*models.VerificationLog
}

// NewMemoryDB returns an empty in-memory repository.
func NewMemoryDB() *MemoryDB {
	return &MemoryDB{}
}

func (m *MemoryDB) Close() error { return nil }

// KYC users

func (m *MemoryDB) CreateUser(user *models.KYCUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.Email != "" {
		for _, u := range m.users {
			if u.Email == user.Email {
				return errs.E(errs.Conflict, "email already registered")
			}
		}
	}
	cp := *user
	m.users = append(m.users, &cp)
	return nil
}

func (m *MemoryDB) findUser(id string) *models.KYCUser {
	for _, u := range m.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (m *MemoryDB) GetUser(id string) (*models.KYCUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u := m.findUser(id); u != nil {
		cp := *u
		return &cp, nil
	}
	return nil, errs.E(errs.NotFound, "user not found")
}

func (m *MemoryDB) GetUserByEmail(email string) (*models.KYCUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, errs.E(errs.NotFound, "user not found")
}

func (m *MemoryDB) ListUsers() ([]*models.KYCUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.KYCUser, 0, len(m.users))
	for _, u := range m.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

func (m *MemoryDB) RecentUsers(n int) ([]*models.KYCUser, error) {
	users, _ := m.ListUsers()
	if len(users) > n {
		users = users[:n]
	}
	return users, nil
}

func (m *MemoryDB) UpdateUserStatus(id string, status models.KYCStatus, updatedAt int64) (*models.KYCUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.findUser(id)
	if u == nil {
		return nil, errs.E(errs.NotFound, "user not found")
	}
	u.KYCStatus = status
	u.UpdatedAt = updatedAt
	cp := *u
	return &cp, nil
}

// Payment transactions

func (m *MemoryDB) CreatePayment(payment *models.PaymentTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *payment
	m.payments = append(m.payments, &cp)
	return nil
}

func (m *MemoryDB) GetPayment(id string) (*models.PaymentTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, errs.E(errs.NotFound, "payment not found")
}

func (m *MemoryDB) ListPayments() ([]*models.PaymentTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.PaymentTransaction, 0, len(m.payments))
	for _, p := range m.payments {
		cp := *p
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

func (m *MemoryDB) ListPaymentsByUser(userID string) ([]*models.PaymentTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.PaymentTransaction
	for _, p := range m.payments {
		if p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

func (m *MemoryDB) UpdatePaymentStatus(id string, status models.PaymentStatus, txHash string) (*models.PaymentTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.ID == id {
			p.Status = status
			if txHash != "" {
				p.TransactionHash = txHash
			}
			cp := *p
			return &cp, nil
		}
	}
	return nil, errs.E(errs.NotFound, "payment not found")
}

// Credentials

func (m *MemoryDB) CreateCredential(credential *models.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *credential
	m.credentials = append(m.credentials, &cp)
	return nil
}

func (m *MemoryDB) ListCredentials() ([]*models.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Credential, 0, len(m.credentials))
	for _, c := range m.credentials {
		cp := *c
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].IssuedAt > out[j].IssuedAt })
	return out, nil
}

func (m *MemoryDB) ListCredentialsByUser(userID string) ([]*models.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Credential
	for _, c := range m.credentials {
		if c.UserID == userID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].IssuedAt > out[j].IssuedAt })
	return out, nil
}

// Devices and mesh ledger

func (m *MemoryDB) CreateDevice(device *models.OfflineDevice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.devices {
		if d.DeviceID == device.DeviceID {
			return errs.E(errs.Conflict, "device already registered")
		}
	}
	cp := *device
	m.devices = append(m.devices, &cp)
	return nil
}

func (m *MemoryDB) findDevice(deviceID string) *models.OfflineDevice {
	for _, d := range m.devices {
		if d.DeviceID == deviceID {
			return d
		}
	}
	return nil
}

func (m *MemoryDB) GetDevice(deviceID string) (*models.OfflineDevice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d := m.findDevice(deviceID); d != nil {
		cp := *d
		return &cp, nil
	}
	return nil, errs.E(errs.NotFound, "device not found")
}

func (m *MemoryDB) ListDevices() ([]*models.OfflineDevice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.OfflineDevice, 0, len(m.devices))
	for _, d := range m.devices {
		cp := *d
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MemoryDB) CreateMeshTransaction(mt *models.MeshTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.meshTxs {
		if existing.Nonce == mt.Nonce {
			return errs.E(errs.Conflict, "nonce already used")
		}
	}

	sender := m.findDevice(mt.FromDeviceID)
	if sender == nil {
		return errs.E(errs.NotFound, "sender device not found")
	}
	receiver := m.findDevice(mt.ToDeviceID)
	if receiver == nil {
		return errs.E(errs.NotFound, "receiver device not found")
	}

	newSenderBalance := sender.Balance.Sub(mt.Amount)
	if newSenderBalance.IsNegative() {
		return errs.E(errs.InsufficientFunds, "sender balance insufficient")
	}

	cp := *mt
	m.meshTxs = append(m.meshTxs, &cp)
	sender.Balance = newSenderBalance
	receiver.Balance = receiver.Balance.Add(mt.Amount)
	return nil
}

func (m *MemoryDB) ListMeshTransactions() ([]*models.MeshTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.MeshTransaction, 0, len(m.meshTxs))
	for _, mt := range m.meshTxs {
		cp := *mt
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

func (m *MemoryDB) ListPendingMeshTransactions() ([]*models.MeshTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.MeshTransaction
	for _, mt := range m.meshTxs {
		if mt.Status == models.MeshPendingSync {
			cp := *mt
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MemoryDB) SettlePending(ref string, now int64) (*models.SettlementBatch, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var pending []*models.MeshTransaction
	for _, mt := range m.meshTxs {
		if mt.Status == models.MeshPendingSync {
			pending = append(pending, mt)
		}
	}
	if len(pending) == 0 {
		return nil, 0, nil
	}

	total := decimal.Zero
	for _, mt := range pending {
		total = total.Add(mt.Amount)
	}

	batch := &models.SettlementBatch{
		ID:                  newID(),
		BatchSize:           len(pending),
		TotalAmount:         total,
		Status:              models.BatchConfirmed,
		HederaTransactionID: ref,
		CreatedAt:           now,
		SettledAt:           now,
	}
	m.batches = append(m.batches, batch)

	for _, mt := range pending {
		mt.Status = models.MeshConfirmed
		mt.TransactionHash = ref
		mt.SettledAt = now
	}

	cp := *batch
	return &cp, len(pending), nil
}

func (m *MemoryDB) ListBatches() ([]*models.SettlementBatch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.SettlementBatch, 0, len(m.batches))
	for _, b := range m.batches {
		cp := *b
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

func (m *MemoryDB) VerifyUser(userID string, payment *models.PaymentTransaction, credential *models.Credential, now int64) (*models.KYCUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user := m.findUser(userID)
	if user == nil {
		return nil, errs.E(errs.NotFound, "user not found")
	}

	pcp := *payment
	m.payments = append(m.payments, &pcp)
	ccp := *credential
	m.credentials = append(m.credentials, &ccp)

	user.KYCStatus = models.KYCVerified
	user.UpdatedAt = now
	cp := *user
	return &cp, nil
}

// Biometric profiles

func (m *MemoryDB) CreateBiometricProfile(profile *models.BiometricProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *profile
	m.profiles = append(m.profiles, &cp)
	return nil
}

func (m *MemoryDB) ListBiometricProfiles() ([]*models.BiometricProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.BiometricProfile, 0, len(m.profiles))
	for _, p := range m.profiles {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MemoryDB) CountBiometricProfiles() (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	active := 0
	for _, p := range m.profiles {
		if p.Status == models.BiometricActive {
			active++
		}
	}
	return active, len(m.profiles), nil
}

// Verification logs

func (m *MemoryDB) CreateLog(entry *models.VerificationLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *entry
	m.logs = append(m.logs, &cp)
	return nil
}

func (m *MemoryDB) ListLogs() ([]*models.VerificationLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.VerificationLog, 0, len(m.logs))
	for _, l := range m.logs {
		cp := *l
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

func (m *MemoryDB) RecentLogs(n int) ([]*models.VerificationLog, error) {
	logs, _ := m.ListLogs()
	if len(logs) > n {
		logs = logs[:n]
	}
	return logs, nil
}

func (m *MemoryDB) TotalDeviceBalance() (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := decimal.Zero
	for _, d := range m.devices {
		total = total.Add(d.Balance)
	}
	return total, nil
}
