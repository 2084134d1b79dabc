package models

import "github.com/shopspring/decimal"

// DeviceType classifies a registered offline participant.
type DeviceType string

const (
	DeviceCustomer  DeviceType = "CUSTOMER"
	DeviceMerchant  DeviceType = "MERCHANT"
	DeviceAidWorker DeviceType = "AID_WORKER"
)

// Valid reports whether t is one of the closed device type values.
func (t DeviceType) Valid() bool {
	switch t {
	case DeviceCustomer, DeviceMerchant, DeviceAidWorker:
		return true
	}
	return false
}

// DeviceStatus is the connectivity state of an offline device.
type DeviceStatus string

const (
	DeviceActive  DeviceStatus = "ACTIVE"
	DeviceOffline DeviceStatus = "OFFLINE"
	DeviceSyncing DeviceStatus = "SYNCING"
)

// Valid reports whether s is one of the closed device status values.
func (s DeviceStatus) Valid() bool {
	switch s {
	case DeviceActive, DeviceOffline, DeviceSyncing:
		return true
	}
	return false
}

// OfflineDevice is a registered participant in the offline mesh. Balances are
// mutated directly at mesh-transaction creation; settlement only notarizes.
type OfflineDevice struct {
	// ID is the unique identifier for the row (UUID).
	ID string `json:"id" gorm:"column:id;primaryKey"`
	// DeviceID is the caller-chosen device identifier, unique across the mesh.
	DeviceID string `json:"deviceId" gorm:"column:device_id;unique;not null"`
	// OwnerName is the display name of the device holder.
	OwnerName string `json:"ownerName" gorm:"column:owner_name;not null"`
	// DeviceType classifies the participant.
	DeviceType DeviceType `json:"deviceType" gorm:"column:device_type;not null"`
	// Balance is the device's current digital-rupee balance.
	Balance decimal.Decimal `json:"balance" gorm:"column:balance;type:decimal(18,6);not null"`
	// OfflineLimit is the maximum amount the device may spend while offline.
	OfflineLimit decimal.Decimal `json:"offlineLimit" gorm:"column:offline_limit;type:decimal(18,6);not null"`
	// Status is the connectivity state.
	Status DeviceStatus `json:"status" gorm:"column:status;not null;default:ACTIVE"`
	// LastSyncAt is the Unix timestamp of the device's last sync, 0 if never.
	LastSyncAt int64 `json:"lastSyncAt,omitempty" gorm:"column:last_sync_at"`
	// CreatedAt is the Unix timestamp when the device was registered.
	CreatedAt int64 `json:"createdAt" gorm:"column:created_at;index"`
}

// TableName keeps the table name aligned with the platform schema.
func (OfflineDevice) TableName() string {
	return "offline_devices"
}
