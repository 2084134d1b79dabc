package http_api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taurusai/qgrid/internal/errs"
	"github.com/taurusai/qgrid/internal/models"
)

// CreateCredentialRequest represents the JSON body for issuing a credential
type CreateCredentialRequest struct {
	UserID         string `json:"userId" binding:"required"`
	CredentialType string `json:"credentialType" binding:"required"`
	CredentialHash string `json:"credentialHash" binding:"required"`
	DID            string `json:"did"`
	ExpiresAt      int64  `json:"expiresAt"`
}

// listCredentials is a handler for GET /api/credentials. A userId query
// parameter narrows the list to one user's credentials.
func (s *HTTPServer) listCredentials(c *gin.Context) {
	credentials, err := s.platform.ListCredentials(c.Query("userId"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, credentials)
}

// createCredential is a handler for POST /api/credentials.
func (s *HTTPServer) createCredential(c *gin.Context) {
	var req CreateCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, errs.E(errs.Invalid, "invalid request body", err))
		return
	}

	credential := &models.Credential{
		UserID:         req.UserID,
		CredentialType: req.CredentialType,
		CredentialHash: req.CredentialHash,
		DID:            req.DID,
		ExpiresAt:      req.ExpiresAt,
	}
	if err := s.platform.CreateCredential(credential); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, credential)
}
