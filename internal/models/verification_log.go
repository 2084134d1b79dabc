package models

// LogResult is the outcome of a logged verification event.
type LogResult string

const (
	LogSuccess LogResult = "SUCCESS"
	LogFailed  LogResult = "FAILED"
)

// Valid reports whether r is one of the closed log result values.
func (r LogResult) Valid() bool {
	return r == LogSuccess || r == LogFailed
}

// VerificationLog is an append-only audit record of a verification event.
// Logs are read-only once written.
type VerificationLog struct {
	// ID is the unique identifier for the log entry (UUID).
	ID string `json:"id" gorm:"column:id;primaryKey"`
	// UserID references the user the event concerns.
	UserID string `json:"userId" gorm:"column:user_id;index;not null"`
	// EventType names the event (AUTH_ATTEMPT, ENROLLMENT, PAYMENT_AUTH, etc.).
	EventType string `json:"eventType" gorm:"column:event_type;not null"`
	// Method is the verification method used (FACE, OTP, PIN, etc.).
	Method string `json:"method" gorm:"column:method;not null"`
	// Result is the event outcome.
	Result LogResult `json:"result" gorm:"column:result;not null"`
	// Location is the reported event location, if any.
	Location string `json:"location" gorm:"column:location"`
	// RiskScore is the computed risk for the event, 0-100.
	RiskScore int `json:"riskScore" gorm:"column:risk_score"`
	// CreatedAt is the Unix timestamp when the event was logged.
	CreatedAt int64 `json:"createdAt" gorm:"column:created_at;index"`
}

// TableName keeps the table name aligned with the platform schema.
func (VerificationLog) TableName() string {
	return "verification_logs"
}
