package platform

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/taurusai/qgrid/internal/config"
	"github.com/taurusai/qgrid/internal/errs"
	"github.com/taurusai/qgrid/internal/models"
	"github.com/taurusai/qgrid/internal/paymentgate"
	"github.com/taurusai/qgrid/internal/repository"
	"github.com/taurusai/qgrid/pkg/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		APIPort:             5000,
		VerifyPriceAmount:   decimal.RequireFromString("0.15"),
		VerifyPriceCurrency: "USDC",
		VerifyRecipient:     "0.0.123456",
		SettlementNetwork:   "hedera",
	}
}

func newTestPlatform(t *testing.T) (models.Platform, *repository.MemoryDB) {
	t.Helper()
	repo := repository.NewMemoryDB()
	log := logger.NewNop()
	verifier := paymentgate.NewDemoVerifier(log)
	return NewPlatform(repo, verifier, log, testConfig()), repo
}

func mustCreateDevice(t *testing.T, p models.Platform, deviceID, owner string, balance string) *models.OfflineDevice {
	t.Helper()
	device := &models.OfflineDevice{
		DeviceID:     deviceID,
		OwnerName:    owner,
		DeviceType:   models.DeviceCustomer,
		Balance:      decimal.RequireFromString(balance),
		OfflineLimit: decimal.RequireFromString("5000"),
	}
	if err := p.CreateDevice(device); err != nil {
		t.Fatalf("CreateDevice(%s): %v", deviceID, err)
	}
	return device
}

func deviceBalance(t *testing.T, p models.Platform, deviceID string) decimal.Decimal {
	t.Helper()
	devices, err := p.ListDevices()
	if err != nil {
		t.Fatalf("ListDevices: %v", err)
	}
	for _, d := range devices {
		if d.DeviceID == deviceID {
			return d.Balance
		}
	}
	t.Fatalf("device %s not found", deviceID)
	return decimal.Zero
}

func TestCreateDeviceDefaults(t *testing.T) {
	p, _ := newTestPlatform(t)

	device := mustCreateDevice(t, p, "RURAL_FARMER_001", "Ramesh Kumar", "15000")

	if device.ID == "" {
		t.Fatal("expected a generated id")
	}
	if device.Status != models.DeviceActive {
		t.Fatalf("expected default status ACTIVE, got %s", device.Status)
	}
	if !device.Balance.Equal(decimal.RequireFromString("15000")) {
		t.Fatalf("balance drifted: %s", device.Balance)
	}
}

func TestCreateDeviceValidation(t *testing.T) {
	p, _ := newTestPlatform(t)

	err := p.CreateDevice(&models.OfflineDevice{
		DeviceID:   "BAD_DEVICE",
		OwnerName:  "",
		DeviceType: "DRONE",
		Balance:    decimal.RequireFromString("-5"),
	})
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if errs.KindOf(err) != errs.Invalid {
		t.Fatalf("expected Invalid kind, got %v", errs.KindOf(err))
	}
}

func TestMeshTransferMovesBalances(t *testing.T) {
	p, _ := newTestPlatform(t)
	mustCreateDevice(t, p, "RURAL_FARMER_001", "Ramesh Kumar", "15000")
	mustCreateDevice(t, p, "RURAL_MERCHANT_001", "Village Store", "5000")

	tx := &models.MeshTransaction{
		FromDeviceID:   "RURAL_FARMER_001",
		ToDeviceID:     "RURAL_MERCHANT_001",
		Amount:         decimal.RequireFromString("850"),
		SequenceNumber: 1,
		Nonce:          "n1",
		Scenario:       "rural",
	}
	if err := p.CreateMeshTransaction(tx); err != nil {
		t.Fatalf("CreateMeshTransaction: %v", err)
	}

	if tx.Status != models.MeshPendingSync {
		t.Fatalf("expected status PENDING_SYNC, got %s", tx.Status)
	}

	from := deviceBalance(t, p, "RURAL_FARMER_001")
	to := deviceBalance(t, p, "RURAL_MERCHANT_001")
	if !from.Equal(decimal.RequireFromString("14150")) {
		t.Fatalf("expected sender balance 14150, got %s", from)
	}
	if !to.Equal(decimal.RequireFromString("5850")) {
		t.Fatalf("expected receiver balance 5850, got %s", to)
	}
	if !from.Add(to).Equal(decimal.RequireFromString("20000")) {
		t.Fatalf("balance sum not invariant: %s", from.Add(to))
	}
}

func TestMeshTransferDuplicateNonce(t *testing.T) {
	p, _ := newTestPlatform(t)
	mustCreateDevice(t, p, "A", "Alice", "1000")
	mustCreateDevice(t, p, "B", "Bob", "1000")

	first := &models.MeshTransaction{
		FromDeviceID: "A", ToDeviceID: "B",
		Amount: decimal.RequireFromString("100"), Nonce: "dup",
	}
	if err := p.CreateMeshTransaction(first); err != nil {
		t.Fatalf("first transfer: %v", err)
	}

	second := &models.MeshTransaction{
		FromDeviceID: "A", ToDeviceID: "B",
		Amount: decimal.RequireFromString("100"), Nonce: "dup",
	}
	err := p.CreateMeshTransaction(second)
	if err == nil {
		t.Fatal("expected duplicate nonce to be rejected")
	}
	if errs.KindOf(err) != errs.Conflict {
		t.Fatalf("expected Conflict kind, got %v", errs.KindOf(err))
	}

	// Balances must reflect only the first transfer.
	if got := deviceBalance(t, p, "A"); !got.Equal(decimal.RequireFromString("900")) {
		t.Fatalf("expected sender balance 900, got %s", got)
	}
	if got := deviceBalance(t, p, "B"); !got.Equal(decimal.RequireFromString("1100")) {
		t.Fatalf("expected receiver balance 1100, got %s", got)
	}
}

func TestMeshTransferInsufficientFunds(t *testing.T) {
	p, _ := newTestPlatform(t)
	mustCreateDevice(t, p, "A", "Alice", "50")
	mustCreateDevice(t, p, "B", "Bob", "0")

	err := p.CreateMeshTransaction(&models.MeshTransaction{
		FromDeviceID: "A", ToDeviceID: "B",
		Amount: decimal.RequireFromString("50.01"), Nonce: "n1",
	})
	if errs.KindOf(err) != errs.InsufficientFunds {
		t.Fatalf("expected InsufficientFunds, got %v", err)
	}

	// An exact-balance transfer is allowed.
	err = p.CreateMeshTransaction(&models.MeshTransaction{
		FromDeviceID: "A", ToDeviceID: "B",
		Amount: decimal.RequireFromString("50"), Nonce: "n2",
	})
	if err != nil {
		t.Fatalf("exact-balance transfer: %v", err)
	}
	if got := deviceBalance(t, p, "A"); !got.IsZero() {
		t.Fatalf("expected sender drained to zero, got %s", got)
	}
}

func TestMeshTransferUnknownDevice(t *testing.T) {
	p, _ := newTestPlatform(t)
	mustCreateDevice(t, p, "A", "Alice", "100")

	err := p.CreateMeshTransaction(&models.MeshTransaction{
		FromDeviceID: "A", ToDeviceID: "GHOST",
		Amount: decimal.RequireFromString("10"), Nonce: "n1",
	})
	if errs.KindOf(err) != errs.NotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestSettleNoPending(t *testing.T) {
	p, _ := newTestPlatform(t)

	result, err := p.Settle()
	if err != nil {
		t.Fatalf("Settle: %v", err)
	}
	if result.Settled != 0 {
		t.Fatalf("expected zero settled, got %d", result.Settled)
	}
	if result.Batch != nil {
		t.Fatal("expected no batch for a no-op settlement")
	}
	if result.Message != "No pending transactions to settle" {
		t.Fatalf("unexpected message: %q", result.Message)
	}

	batches, err := p.ListBatches()
	if err != nil {
		t.Fatalf("ListBatches: %v", err)
	}
	if len(batches) != 0 {
		t.Fatalf("no-op settlement must not create a batch row, got %d", len(batches))
	}
}

func TestSettleConfirmsAllPending(t *testing.T) {
	p, _ := newTestPlatform(t)
	mustCreateDevice(t, p, "A", "Alice", "10000")
	mustCreateDevice(t, p, "B", "Bob", "0")

	amounts := []string{"850", "45", "5000"}
	for i, amt := range amounts {
		err := p.CreateMeshTransaction(&models.MeshTransaction{
			FromDeviceID: "A", ToDeviceID: "B",
			Amount: decimal.RequireFromString(amt),
			Nonce:  "nonce-" + amt, SequenceNumber: i + 1,
		})
		if err != nil {
			t.Fatalf("transfer %d: %v", i, err)
		}
	}

	result, err := p.Settle()
	if err != nil {
		t.Fatalf("Settle: %v", err)
	}
	if result.Settled != 3 {
		t.Fatalf("expected 3 settled, got %d", result.Settled)
	}
	if result.Batch == nil {
		t.Fatal("expected a batch")
	}
	if result.Batch.BatchSize != 3 {
		t.Fatalf("expected batchSize 3, got %d", result.Batch.BatchSize)
	}
	if !result.Batch.TotalAmount.Equal(decimal.RequireFromString("5895")) {
		t.Fatalf("expected totalAmount 5895, got %s", result.Batch.TotalAmount)
	}
	if result.Batch.Status != models.BatchConfirmed {
		t.Fatalf("expected batch CONFIRMED, got %s", result.Batch.Status)
	}
	if result.Batch.HederaTransactionID == "" {
		t.Fatal("expected a settlement reference on the batch")
	}

	txs, err := p.ListMeshTransactions("")
	if err != nil {
		t.Fatalf("ListMeshTransactions: %v", err)
	}
	for _, tx := range txs {
		if tx.Status != models.MeshConfirmed {
			t.Fatalf("transaction %s not confirmed: %s", tx.Nonce, tx.Status)
		}
		if tx.TransactionHash != result.Batch.HederaTransactionID {
			t.Fatalf("transaction %s settled under a different reference", tx.Nonce)
		}
		if tx.SettledAt == 0 {
			t.Fatalf("transaction %s has no settlement timestamp", tx.Nonce)
		}
	}

	// A second settlement run finds nothing left.
	again, err := p.Settle()
	if err != nil {
		t.Fatalf("second Settle: %v", err)
	}
	if again.Settled != 0 || again.Batch != nil {
		t.Fatal("second settlement must be a no-op")
	}
}

func TestListMeshTransactionsByStatus(t *testing.T) {
	p, _ := newTestPlatform(t)
	mustCreateDevice(t, p, "A", "Alice", "10000")
	mustCreateDevice(t, p, "B", "Bob", "0")

	for i, nonce := range []string{"n1", "n2"} {
		err := p.CreateMeshTransaction(&models.MeshTransaction{
			FromDeviceID:   "A",
			ToDeviceID:     "B",
			Amount:         decimal.RequireFromString("100"),
			SequenceNumber: i + 1,
			Nonce:          nonce,
		})
		if err != nil {
			t.Fatalf("CreateMeshTransaction(%s): %v", nonce, err)
		}
	}

	pending, err := p.ListMeshTransactions(models.MeshPendingSync)
	if err != nil {
		t.Fatalf("ListMeshTransactions(PENDING_SYNC): %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending before settlement, got %d", len(pending))
	}

	if _, err := p.Settle(); err != nil {
		t.Fatalf("Settle: %v", err)
	}

	pending, err = p.ListMeshTransactions(models.MeshPendingSync)
	if err != nil {
		t.Fatalf("ListMeshTransactions(PENDING_SYNC): %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending after settlement, got %d", len(pending))
	}

	confirmed, err := p.ListMeshTransactions(models.MeshConfirmed)
	if err != nil {
		t.Fatalf("ListMeshTransactions(CONFIRMED): %v", err)
	}
	if len(confirmed) != 2 {
		t.Fatalf("expected 2 confirmed after settlement, got %d", len(confirmed))
	}

	if _, err := p.ListMeshTransactions("SORT_OF_PENDING"); errs.KindOf(err) != errs.Invalid {
		t.Fatalf("expected Invalid for open status value, got %v", err)
	}
}

func TestGetDevice(t *testing.T) {
	p, _ := newTestPlatform(t)
	mustCreateDevice(t, p, "RURAL_FARMER_001", "Ramesh Kumar", "15000")

	device, err := p.GetDevice("RURAL_FARMER_001")
	if err != nil {
		t.Fatalf("GetDevice: %v", err)
	}
	if device.OwnerName != "Ramesh Kumar" {
		t.Fatalf("fetched wrong device: %+v", device)
	}

	if _, err := p.GetDevice("missing"); errs.KindOf(err) != errs.NotFound {
		t.Fatalf("expected NotFound for unregistered device, got %v", err)
	}
}

func TestVerifyWithoutMarkerMutatesNothing(t *testing.T) {
	p, _ := newTestPlatform(t)
	user := &models.KYCUser{Name: "Priya Sharma", Email: "priya@example.com"}
	if err := p.CreateUser(user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	result, err := p.Verify(user.ID, "full_kyc", "")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !result.PaymentRequired {
		t.Fatal("expected payment required")
	}
	if result.Quote == nil || result.Quote.Amount != "0.15" || result.Quote.Currency != "USDC" {
		t.Fatalf("unexpected quote: %+v", result.Quote)
	}

	got, err := p.GetUser(user.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.KYCStatus != models.KYCPending {
		t.Fatalf("quote request must not change status, got %s", got.KYCStatus)
	}
	payments, _ := p.ListPayments("")
	credentials, _ := p.ListCredentials("")
	if len(payments) != 0 || len(credentials) != 0 {
		t.Fatal("quote request must not write payment or credential rows")
	}
}

func TestVerifyWithMarker(t *testing.T) {
	p, _ := newTestPlatform(t)
	user := &models.KYCUser{Name: "Priya Sharma"}
	if err := p.CreateUser(user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	result, err := p.Verify(user.ID, "age_check", "demo-marker")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if result.PaymentRequired {
		t.Fatal("marker present, payment must not be required")
	}
	if result.Payment == nil || result.Credential == nil {
		t.Fatal("expected payment and credential in the result")
	}
	if result.Payment.Status != models.PaymentConfirmed {
		t.Fatalf("expected payment CONFIRMED, got %s", result.Payment.Status)
	}
	if result.Payment.VerificationType != "age_check" {
		t.Fatalf("unexpected verification type %q", result.Payment.VerificationType)
	}
	if result.User.KYCStatus != models.KYCVerified {
		t.Fatalf("expected user VERIFIED, got %s", result.User.KYCStatus)
	}
	if !strings.HasPrefix(result.Credential.DID, "did:hedera:mainnet:") {
		t.Fatalf("unexpected DID %q", result.Credential.DID)
	}
	if !strings.HasPrefix(result.Credential.CredentialHash, "sha256:") {
		t.Fatalf("unexpected credential hash %q", result.Credential.CredentialHash)
	}

	// Roughly ten years of validity.
	validity := result.Credential.ExpiresAt - result.Credential.IssuedAt
	tenYears := int64(10 * 365 * 24 * time.Hour / time.Second)
	if validity != tenYears {
		t.Fatalf("expected %d seconds of validity, got %d", tenYears, validity)
	}

	payments, _ := p.ListPayments("")
	credentials, _ := p.ListCredentials("")
	if len(payments) != 1 || len(credentials) != 1 {
		t.Fatalf("expected exactly one payment and one credential, got %d/%d", len(payments), len(credentials))
	}
}

func TestVerifyUnknownUser(t *testing.T) {
	p, _ := newTestPlatform(t)

	_, err := p.Verify("missing-user", "full_kyc", "demo-marker")
	if errs.KindOf(err) != errs.NotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}

	payments, _ := p.ListPayments("")
	credentials, _ := p.ListCredentials("")
	if len(payments) != 0 || len(credentials) != 0 {
		t.Fatal("failed verification must not leave dependent rows behind")
	}
}

func TestUpdateUserStatusRejectsOpenEnum(t *testing.T) {
	p, _ := newTestPlatform(t)
	user := &models.KYCUser{Name: "Ramesh Kumar"}
	if err := p.CreateUser(user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	if _, err := p.UpdateUserStatus(user.ID, "SORT_OF_VERIFIED"); errs.KindOf(err) != errs.Invalid {
		t.Fatalf("expected Invalid for open enum value, got %v", err)
	}

	updated, err := p.UpdateUserStatus(user.ID, models.KYCRejected)
	if err != nil {
		t.Fatalf("UpdateUserStatus: %v", err)
	}
	if updated.KYCStatus != models.KYCRejected {
		t.Fatalf("expected REJECTED, got %s", updated.KYCStatus)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	p, _ := newTestPlatform(t)
	if err := p.CreateUser(&models.KYCUser{Name: "Ramesh Kumar", Email: "ramesh@example.in"}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	err := p.CreateUser(&models.KYCUser{Name: "Someone Else", Email: "ramesh@example.in"})
	if errs.KindOf(err) != errs.Conflict {
		t.Fatalf("expected Conflict for reused email, got %v", err)
	}

	users, err := p.ListUsers()
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected 1 user after rejected duplicate, got %d", len(users))
	}
}

func TestCreateUserDuplicateEmailConcurrent(t *testing.T) {
	p, _ := newTestPlatform(t)

	const attempts = 16
	start := make(chan struct{})
	conflicts := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			err := p.CreateUser(&models.KYCUser{Name: "Ramesh Kumar", Email: "ramesh@example.in"})
			if err != nil {
				conflicts <- err
			}
		}()
	}
	close(start)
	wg.Wait()
	close(conflicts)

	rejected := 0
	for err := range conflicts {
		if errs.KindOf(err) != errs.Conflict {
			t.Fatalf("expected Conflict for reused email, got %v", err)
		}
		rejected++
	}
	if rejected != attempts-1 {
		t.Fatalf("expected %d rejections, got %d", attempts-1, rejected)
	}

	users, err := p.ListUsers()
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected exactly 1 user for the contested email, got %d", len(users))
	}
}

func TestListPaymentsByUser(t *testing.T) {
	p, _ := newTestPlatform(t)
	userA := &models.KYCUser{Name: "Ramesh Kumar"}
	userB := &models.KYCUser{Name: "Priya Sharma"}
	for _, u := range []*models.KYCUser{userA, userB} {
		if err := p.CreateUser(u); err != nil {
			t.Fatalf("CreateUser: %v", err)
		}
	}
	for _, userID := range []string{userA.ID, userA.ID, userB.ID} {
		payment := &models.PaymentTransaction{UserID: userID, Amount: decimal.RequireFromString("0.15")}
		if err := p.CreatePayment(payment); err != nil {
			t.Fatalf("CreatePayment: %v", err)
		}
	}

	all, err := p.ListPayments("")
	if err != nil {
		t.Fatalf("ListPayments: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 payments, got %d", len(all))
	}

	forA, err := p.ListPayments(userA.ID)
	if err != nil {
		t.Fatalf("ListPayments(%s): %v", userA.ID, err)
	}
	if len(forA) != 2 {
		t.Fatalf("expected 2 payments for user, got %d", len(forA))
	}
	for _, payment := range forA {
		if payment.UserID != userA.ID {
			t.Fatalf("payment %s belongs to %s", payment.ID, payment.UserID)
		}
	}
}

func TestDashboardStats(t *testing.T) {
	p, _ := newTestPlatform(t)
	user := &models.KYCUser{Name: "Priya Sharma"}
	if err := p.CreateUser(user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	mustCreateDevice(t, p, "A", "Alice", "1200.50")
	mustCreateDevice(t, p, "B", "Bob", "799.50")

	for i, biometricType := range []string{"FACE", "FINGERPRINT", "IRIS"} {
		err := p.CreateBiometricProfile(&models.BiometricProfile{
			UserID:        user.ID,
			BiometricType: biometricType,
			Status:        models.BiometricActive,
			LivenessScore: 90 + i,
		})
		if err != nil {
			t.Fatalf("CreateBiometricProfile: %v", err)
		}
	}
	// One enrolled-but-inactive factor must not move the score.
	if err := p.CreateBiometricProfile(&models.BiometricProfile{
		UserID: user.ID, BiometricType: "VOICE", Status: models.BiometricExpired,
	}); err != nil {
		t.Fatalf("CreateBiometricProfile: %v", err)
	}

	for i := 0; i < 7; i++ {
		err := p.CreateLog(&models.VerificationLog{
			UserID: user.ID, EventType: "AUTH_ATTEMPT", Method: "FACE",
			Result: models.LogSuccess, RiskScore: 10,
		})
		if err != nil {
			t.Fatalf("CreateLog: %v", err)
		}
	}

	stats, err := p.DashboardStats()
	if err != nil {
		t.Fatalf("DashboardStats: %v", err)
	}
	if stats.TotalBalance != "2000.00" {
		t.Fatalf("expected totalBalance 2000.00, got %s", stats.TotalBalance)
	}
	if stats.SecurityScore != 60 {
		t.Fatalf("expected score 60 for 3/5 active factors, got %d", stats.SecurityScore)
	}
	if stats.ActiveProfiles != 3 || stats.TotalProfiles != 4 {
		t.Fatalf("unexpected profile counts: %d/%d", stats.ActiveProfiles, stats.TotalProfiles)
	}
	if len(stats.RecentLogs) != 5 {
		t.Fatalf("expected 5 recent logs, got %d", len(stats.RecentLogs))
	}
}

func TestDashboardScoreClamped(t *testing.T) {
	p, _ := newTestPlatform(t)
	user := &models.KYCUser{Name: "Priya Sharma"}
	if err := p.CreateUser(user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	for i := 0; i < 7; i++ {
		err := p.CreateBiometricProfile(&models.BiometricProfile{
			UserID:        user.ID,
			BiometricType: "FACE",
			Status:        models.BiometricActive,
		})
		if err != nil {
			t.Fatalf("CreateBiometricProfile: %v", err)
		}
	}

	stats, err := p.DashboardStats()
	if err != nil {
		t.Fatalf("DashboardStats: %v", err)
	}
	if stats.SecurityScore != 100 {
		t.Fatalf("expected score clamped to 100, got %d", stats.SecurityScore)
	}
}
