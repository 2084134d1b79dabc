package models

// Credential is an issued record representing a completed identity
// verification. Credentials are never revoked in this design.
type Credential struct {
	// ID is the unique identifier for the credential (UUID).
	ID string `json:"id" gorm:"column:id;primaryKey"`
	// UserID references the verified user.
	UserID string `json:"userId" gorm:"column:user_id;index;not null"`
	// CredentialType names the verification scheme (AADHAAR_KYC, DIGILOCKER_KYC, etc.).
	CredentialType string `json:"credentialType" gorm:"column:credential_type;not null"`
	// CredentialHash is the SHA-256 hash of the credential payload.
	CredentialHash string `json:"credentialHash" gorm:"column:credential_hash;not null"`
	// DID is the decentralized identifier bound to the credential.
	DID string `json:"did" gorm:"column:did"`
	// IssuedAt is the Unix timestamp when the credential was issued.
	IssuedAt int64 `json:"issuedAt" gorm:"column:issued_at;index"`
	// ExpiresAt is the Unix timestamp when the credential expires, 0 if it never does.
	ExpiresAt int64 `json:"expiresAt,omitempty" gorm:"column:expires_at"`
}

// TableName keeps the table name aligned with the platform schema.
func (Credential) TableName() string {
	return "kyc_credentials"
}
