package http_api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taurusai/qgrid/internal/errs"
	"github.com/taurusai/qgrid/internal/models"
)

// respondError maps an error kind to an HTTP status and writes the flat
// {"error": ...} body. Internal detail never reaches the client.
func (s *HTTPServer) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch errs.KindOf(err) {
	case errs.Invalid:
		status = http.StatusBadRequest
	case errs.NotFound:
		status = http.StatusNotFound
	case errs.Conflict:
		status = http.StatusConflict
	case errs.InsufficientFunds:
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		s.logger.Errorw("request failed", "path", c.FullPath(), "error", err)
	} else {
		s.logger.Debugw("request rejected", "path", c.FullPath(), "status", status, "error", err)
	}
	c.JSON(status, gin.H{"error": errs.Message(err)})
}

// CreateUserRequest represents the JSON body for user registration
type CreateUserRequest struct {
	Name          string `json:"name" binding:"required"`
	Email         string `json:"email" binding:"omitempty,email"`
	KYCStatus     string `json:"kycStatus"`
	WalletAddress string `json:"walletAddress"`
}

// UpdateStatusRequest represents the JSON body for a status update
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// VerifyRequest represents the JSON body for the verification gate
type VerifyRequest struct {
	UserID           string `json:"userId" binding:"required"`
	VerificationType string `json:"verificationType"`
}

// listUsers is a handler for GET /api/kyc/users.
func (s *HTTPServer) listUsers(c *gin.Context) {
	users, err := s.platform.ListUsers()
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// getUser is a handler for GET /api/kyc/users/:id.
func (s *HTTPServer) getUser(c *gin.Context) {
	user, err := s.platform.GetUser(c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// createUser is a handler for POST /api/kyc/users.
func (s *HTTPServer) createUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, errs.E(errs.Invalid, "invalid request body", err))
		return
	}

	user := &models.KYCUser{
		Name:          req.Name,
		Email:         req.Email,
		KYCStatus:     models.KYCStatus(req.KYCStatus),
		WalletAddress: req.WalletAddress,
	}
	if err := s.platform.CreateUser(user); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// updateUserStatus is a handler for PATCH /api/kyc/users/:id/status.
func (s *HTTPServer) updateUserStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, errs.E(errs.Invalid, "invalid request body", err))
		return
	}

	user, err := s.platform.UpdateUserStatus(c.Param("id"), models.KYCStatus(req.Status))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// verify is a handler for POST /api/kyc/verify. Without an X-Payment header
// it answers 402 with the price quote; with one it completes the
// verification and returns the created payment and credential.
func (s *HTTPServer) verify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, errs.E(errs.Invalid, "invalid request body", err))
		return
	}

	marker := c.GetHeader("X-Payment")
	result, err := s.platform.Verify(req.UserID, req.VerificationType, marker)
	if err != nil {
		s.respondError(c, err)
		return
	}

	if result.PaymentRequired {
		c.JSON(http.StatusPaymentRequired, gin.H{
			"error":               "Payment Required",
			"paymentRequirements": result.Quote,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "success",
		"message":    "KYC verification completed",
		"payment":    result.Payment,
		"credential": result.Credential,
	})
}
