package repository

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormLogger "gorm.io/gorm/logger"

	"github.com/taurusai/qgrid/internal/errs"
	"github.com/taurusai/qgrid/internal/models"
	"github.com/taurusai/qgrid/pkg/logger"
)

type PostgresDB struct {
	logger *logger.Logger

	Conn *gorm.DB
}

func NewPostgresDB(user, password, dbname, host string, port int, logger *logger.Logger) (models.Repository, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		host, user, password, dbname, port)

	// Configure GORM logger to suppress "record not found" messages
	gormLogger := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags), // Use standard logger
		gormLogger.Config{
			SlowThreshold:             200 * time.Millisecond, // Log queries slower than this
			LogLevel:                  gormLogger.Warn,        // Only log warnings or errors
			IgnoreRecordNotFoundError: true,                   // Suppress "record not found" errors
			Colorful:                  true,                   // Enable colorful logs
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLogger, TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %s", err)
	}

	if err := db.AutoMigrate(
		&models.KYCUser{},
		&models.PaymentTransaction{},
		&models.Credential{},
		&models.OfflineDevice{},
		&models.MeshTransaction{},
		&models.SettlementBatch{},
		&models.BiometricProfile{},
		&models.VerificationLog{},
	); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate models: %s", err)
	}
	logger.Info("Successfully connected to PostgreSQL!")
	return &PostgresDB{Conn: db, logger: logger}, nil
}

func (db *PostgresDB) Close() error {
	sqlDB, err := db.Conn.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %s", err)
	}
	return sqlDB.Close()
}

// isUniqueViolation reports whether err is a uniqueness constraint failure.
// TranslateError on the gorm config maps driver-level violations to
// gorm.ErrDuplicatedKey.
func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// KYC users

func (db *PostgresDB) CreateUser(user *models.KYCUser) error {
	if err := db.Conn.Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return errs.E(errs.Conflict, "email already registered", err)
		}
		return errs.E(errs.Internal, "failed to create user", err)
	}
	return nil
}

func (db *PostgresDB) GetUser(id string) (*models.KYCUser, error) {
	var user models.KYCUser
	if err := db.Conn.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.E(errs.NotFound, "user not found")
		}
		return nil, errs.E(errs.Internal, "failed to get user", err)
	}
	return &user, nil
}

func (db *PostgresDB) GetUserByEmail(email string) (*models.KYCUser, error) {
	var user models.KYCUser
	if err := db.Conn.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.E(errs.NotFound, "user not found")
		}
		return nil, errs.E(errs.Internal, "failed to get user by email", err)
	}
	return &user, nil
}

func (db *PostgresDB) ListUsers() ([]*models.KYCUser, error) {
	var users []*models.KYCUser
	if err := db.Conn.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, errs.E(errs.Internal, "failed to list users", err)
	}
	return users, nil
}

func (db *PostgresDB) RecentUsers(n int) ([]*models.KYCUser, error) {
	var users []*models.KYCUser
	if err := db.Conn.Order("created_at DESC").Limit(n).Find(&users).Error; err != nil {
		return nil, errs.E(errs.Internal, "failed to list recent users", err)
	}
	return users, nil
}

func (db *PostgresDB) UpdateUserStatus(id string, status models.KYCStatus, updatedAt int64) (*models.KYCUser, error) {
	var user models.KYCUser
	err := db.Conn.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.E(errs.NotFound, "user not found")
			}
			return errs.E(errs.Internal, "failed to get user", err)
		}

		user.KYCStatus = status
		user.UpdatedAt = updatedAt
		if err := tx.Save(&user).Error; err != nil {
			return errs.E(errs.Internal, "failed to update user status", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Payment transactions

func (db *PostgresDB) CreatePayment(payment *models.PaymentTransaction) error {
	if err := db.Conn.Create(payment).Error; err != nil {
		return errs.E(errs.Internal, "failed to create payment", err)
	}
	return nil
}

func (db *PostgresDB) GetPayment(id string) (*models.PaymentTransaction, error) {
	var payment models.PaymentTransaction
	if err := db.Conn.Where("id = ?", id).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.E(errs.NotFound, "payment not found")
		}
		return nil, errs.E(errs.Internal, "failed to get payment", err)
	}
	return &payment, nil
}

func (db *PostgresDB) ListPayments() ([]*models.PaymentTransaction, error) {
	var payments []*models.PaymentTransaction
	if err := db.Conn.Order("created_at DESC").Find(&payments).Error; err != nil {
		return nil, errs.E(errs.Internal, "failed to list payments", err)
	}
	return payments, nil
}

func (db *PostgresDB) ListPaymentsByUser(userID string) ([]*models.PaymentTransaction, error) {
	var payments []*models.PaymentTransaction
	if err := db.Conn.Where("user_id = ?", userID).Order("created_at DESC").Find(&payments).Error; err != nil {
		return nil, errs.E(errs.Internal, "failed to list payments by user", err)
	}
	return payments, nil
}

func (db *PostgresDB) UpdatePaymentStatus(id string, status models.PaymentStatus, txHash string) (*models.PaymentTransaction, error) {
	var payment models.PaymentTransaction
	err := db.Conn.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).First(&payment).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.E(errs.NotFound, "payment not found")
			}
			return errs.E(errs.Internal, "failed to get payment", err)
		}

		payment.Status = status
		if txHash != "" {
			payment.TransactionHash = txHash
		}
		if err := tx.Save(&payment).Error; err != nil {
			return errs.E(errs.Internal, "failed to update payment status", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// Credentials

func (db *PostgresDB) CreateCredential(credential *models.Credential) error {
	if err := db.Conn.Create(credential).Error; err != nil {
		return errs.E(errs.Internal, "failed to create credential", err)
	}
	return nil
}

func (db *PostgresDB) ListCredentials() ([]*models.Credential, error) {
	var credentials []*models.Credential
	if err := db.Conn.Order("issued_at DESC").Find(&credentials).Error; err != nil {
		return nil, errs.E(errs.Internal, "failed to list credentials", err)
	}
	return credentials, nil
}

func (db *PostgresDB) ListCredentialsByUser(userID string) ([]*models.Credential, error) {
	var credentials []*models.Credential
	if err := db.Conn.Where("user_id = ?", userID).Order("issued_at DESC").Find(&credentials).Error; err != nil {
		return nil, errs.E(errs.Internal, "failed to list credentials by user", err)
	}
	return credentials, nil
}

// Devices and mesh ledger

func (db *PostgresDB) CreateDevice(device *models.OfflineDevice) error {
	if err := db.Conn.Create(device).Error; err != nil {
		if isUniqueViolation(err) {
			return errs.E(errs.Conflict, "device already registered", err)
		}
		return errs.E(errs.Internal, "failed to create device", err)
	}
	return nil
}

func (db *PostgresDB) GetDevice(deviceID string) (*models.OfflineDevice, error) {
	var device models.OfflineDevice
	if err := db.Conn.Where("device_id = ?", deviceID).First(&device).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.E(errs.NotFound, "device not found")
		}
		return nil, errs.E(errs.Internal, "failed to get device", err)
	}
	return &device, nil
}

func (db *PostgresDB) ListDevices() ([]*models.OfflineDevice, error) {
	var devices []*models.OfflineDevice
	if err := db.Conn.Order("created_at ASC").Find(&devices).Error; err != nil {
		return nil, errs.E(errs.Internal, "failed to list devices", err)
	}
	return devices, nil
}

// CreateMeshTransaction inserts the transfer and applies the balance pair in
// one database transaction. Both device rows are locked for the duration so a
// concurrent transfer cannot interleave between read and write.
func (db *PostgresDB) CreateMeshTransaction(mt *models.MeshTransaction) error {
	return db.Conn.Transaction(func(tx *gorm.DB) error {
		var devices []*models.OfflineDevice
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("device_id IN ?", []string{mt.FromDeviceID, mt.ToDeviceID}).
			Order("device_id ASC").
			Find(&devices).Error; err != nil {
			return errs.E(errs.Internal, "failed to lock devices", err)
		}

		var sender, receiver *models.OfflineDevice
		for _, d := range devices {
			if d.DeviceID == mt.FromDeviceID {
				sender = d
			}
			if d.DeviceID == mt.ToDeviceID {
				receiver = d
			}
		}
		if sender == nil {
			return errs.E(errs.NotFound, "sender device not found")
		}
		if receiver == nil {
			return errs.E(errs.NotFound, "receiver device not found")
		}

		newSenderBalance := sender.Balance.Sub(mt.Amount)
		if newSenderBalance.IsNegative() {
			return errs.E(errs.InsufficientFunds, "sender balance insufficient")
		}

		if err := tx.Create(mt).Error; err != nil {
			if isUniqueViolation(err) {
				return errs.E(errs.Conflict, "nonce already used", err)
			}
			return errs.E(errs.Internal, "failed to create mesh transaction", err)
		}

		if err := tx.Model(&models.OfflineDevice{}).
			Where("device_id = ?", sender.DeviceID).
			Update("balance", newSenderBalance).Error; err != nil {
			return errs.E(errs.Internal, "failed to debit sender", err)
		}
		if err := tx.Model(&models.OfflineDevice{}).
			Where("device_id = ?", receiver.DeviceID).
			Update("balance", receiver.Balance.Add(mt.Amount)).Error; err != nil {
			return errs.E(errs.Internal, "failed to credit receiver", err)
		}
		return nil
	})
}

func (db *PostgresDB) ListMeshTransactions() ([]*models.MeshTransaction, error) {
	var txs []*models.MeshTransaction
	if err := db.Conn.Order("created_at DESC").Find(&txs).Error; err != nil {
		return nil, errs.E(errs.Internal, "failed to list mesh transactions", err)
	}
	return txs, nil
}

func (db *PostgresDB) ListPendingMeshTransactions() ([]*models.MeshTransaction, error) {
	var txs []*models.MeshTransaction
	if err := db.Conn.Where("status = ?", models.MeshPendingSync).
		Order("created_at ASC").Find(&txs).Error; err != nil {
		return nil, errs.E(errs.Internal, "failed to list pending mesh transactions", err)
	}
	return txs, nil
}

// SettlePending claims the pending set under row locks, so a concurrent caller
// blocks until the claim commits and then finds nothing left to settle.
func (db *PostgresDB) SettlePending(ref string, now int64) (*models.SettlementBatch, int, error) {
	var batch *models.SettlementBatch
	settled := 0

	err := db.Conn.Transaction(func(tx *gorm.DB) error {
		var pending []*models.MeshTransaction
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("status = ?", models.MeshPendingSync).
			Order("created_at ASC").
			Find(&pending).Error; err != nil {
			return errs.E(errs.Internal, "failed to claim pending transactions", err)
		}

		if len(pending) == 0 {
			return nil
		}

		total := decimal.Zero
		ids := make([]string, 0, len(pending))
		for _, mt := range pending {
			total = total.Add(mt.Amount)
			ids = append(ids, mt.ID)
		}

		b := &models.SettlementBatch{
			ID:                  newID(),
			BatchSize:           len(pending),
			TotalAmount:         total,
			Status:              models.BatchProcessing,
			HederaTransactionID: ref,
			CreatedAt:           now,
		}
		if err := tx.Create(b).Error; err != nil {
			return errs.E(errs.Internal, "failed to create settlement batch", err)
		}

		res := tx.Model(&models.MeshTransaction{}).
			Where("id IN ? AND status = ?", ids, models.MeshPendingSync).
			Updates(map[string]interface{}{
				"status":           models.MeshConfirmed,
				"transaction_hash": ref,
				"settled_at":       now,
			})
		if res.Error != nil {
			return errs.E(errs.Internal, "failed to confirm transactions", res.Error)
		}
		if int(res.RowsAffected) != len(ids) {
			return errs.E(errs.Internal, "settlement claim lost rows mid-batch")
		}

		if err := tx.Model(b).Updates(map[string]interface{}{
			"status":     models.BatchConfirmed,
			"settled_at": now,
		}).Error; err != nil {
			return errs.E(errs.Internal, "failed to confirm settlement batch", err)
		}

		b.Status = models.BatchConfirmed
		b.SettledAt = now
		batch = b
		settled = len(ids)
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return batch, settled, nil
}

func (db *PostgresDB) ListBatches() ([]*models.SettlementBatch, error) {
	var batches []*models.SettlementBatch
	if err := db.Conn.Order("created_at DESC").Find(&batches).Error; err != nil {
		return nil, errs.E(errs.Internal, "failed to list settlement batches", err)
	}
	return batches, nil
}

// VerifyUser writes the payment, the credential and the status flip in one
// database transaction; an unknown user aborts before any dependent row.
func (db *PostgresDB) VerifyUser(userID string, payment *models.PaymentTransaction, credential *models.Credential, now int64) (*models.KYCUser, error) {
	var user models.KYCUser
	err := db.Conn.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", userID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.E(errs.NotFound, "user not found")
			}
			return errs.E(errs.Internal, "failed to get user", err)
		}

		if err := tx.Create(payment).Error; err != nil {
			return errs.E(errs.Internal, "failed to create verification payment", err)
		}
		if err := tx.Create(credential).Error; err != nil {
			return errs.E(errs.Internal, "failed to create credential", err)
		}

		user.KYCStatus = models.KYCVerified
		user.UpdatedAt = now
		if err := tx.Save(&user).Error; err != nil {
			return errs.E(errs.Internal, "failed to update KYC status", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Biometric profiles

func (db *PostgresDB) CreateBiometricProfile(profile *models.BiometricProfile) error {
	if err := db.Conn.Create(profile).Error; err != nil {
		return errs.E(errs.Internal, "failed to create biometric profile", err)
	}
	return nil
}

func (db *PostgresDB) ListBiometricProfiles() ([]*models.BiometricProfile, error) {
	var profiles []*models.BiometricProfile
	if err := db.Conn.Order("created_at DESC").Find(&profiles).Error; err != nil {
		return nil, errs.E(errs.Internal, "failed to list biometric profiles", err)
	}
	return profiles, nil
}

func (db *PostgresDB) CountBiometricProfiles() (int, int, error) {
	var active, total int64
	if err := db.Conn.Model(&models.BiometricProfile{}).
		Where("status = ?", models.BiometricActive).Count(&active).Error; err != nil {
		return 0, 0, errs.E(errs.Internal, "failed to count active profiles", err)
	}
	if err := db.Conn.Model(&models.BiometricProfile{}).Count(&total).Error; err != nil {
		return 0, 0, errs.E(errs.Internal, "failed to count profiles", err)
	}
	return int(active), int(total), nil
}

// Verification logs

func (db *PostgresDB) CreateLog(entry *models.VerificationLog) error {
	if err := db.Conn.Create(entry).Error; err != nil {
		return errs.E(errs.Internal, "failed to create verification log", err)
	}
	return nil
}

func (db *PostgresDB) ListLogs() ([]*models.VerificationLog, error) {
	var logs []*models.VerificationLog
	if err := db.Conn.Order("created_at DESC").Find(&logs).Error; err != nil {
		return nil, errs.E(errs.Internal, "failed to list verification logs", err)
	}
	return logs, nil
}

func (db *PostgresDB) RecentLogs(n int) ([]*models.VerificationLog, error) {
	var logs []*models.VerificationLog
	if err := db.Conn.Order("created_at DESC").Limit(n).Find(&logs).Error; err != nil {
		return nil, errs.E(errs.Internal, "failed to list recent logs", err)
	}
	return logs, nil
}

func (db *PostgresDB) TotalDeviceBalance() (decimal.Decimal, error) {
	var total decimal.NullDecimal
	if err := db.Conn.Model(&models.OfflineDevice{}).
		Select("SUM(balance)").Scan(&total).Error; err != nil {
		return decimal.Zero, errs.E(errs.Internal, "failed to sum device balances", err)
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
