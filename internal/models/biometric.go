package models

// BiometricStatus is the enrollment state of a biometric factor.
type BiometricStatus string

const (
	BiometricActive      BiometricStatus = "ACTIVE"
	BiometricNotEnrolled BiometricStatus = "NOT_ENROLLED"
	BiometricExpired     BiometricStatus = "EXPIRED"
)

// Valid reports whether s is one of the closed biometric status values.
func (s BiometricStatus) Valid() bool {
	switch s {
	case BiometricActive, BiometricNotEnrolled, BiometricExpired:
		return true
	}
	return false
}

// BiometricProfile records an enrolled biometric factor for a user. Capture
// and matching happen client-side; the server only stores the template hash.
type BiometricProfile struct {
	// ID is the unique identifier for the profile (UUID).
	ID string `json:"id" gorm:"column:id;primaryKey"`
	// UserID references the enrolled user.
	UserID string `json:"userId" gorm:"column:user_id;index;not null"`
	// BiometricType names the factor (FACE, FINGERPRINT, IRIS, VOICE, PALM).
	BiometricType string `json:"biometricType" gorm:"column:biometric_type;not null"`
	// Status is the enrollment state.
	Status BiometricStatus `json:"status" gorm:"column:status;not null;default:NOT_ENROLLED"`
	// LivenessScore is the liveness confidence reported at enrollment, 0-100.
	LivenessScore int `json:"livenessScore" gorm:"column:liveness_score"`
	// TemplateHash is the hash of the enrolled biometric template.
	TemplateHash string `json:"templateHash" gorm:"column:template_hash"`
	// CreatedAt is the Unix timestamp when the profile was created.
	CreatedAt int64 `json:"createdAt" gorm:"column:created_at;index"`
}

// TableName keeps the table name aligned with the platform schema.
func (BiometricProfile) TableName() string {
	return "biometric_profiles"
}
