package http_api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/taurusai/qgrid/internal/errs"
	"github.com/taurusai/qgrid/internal/models"
)

// CreatePaymentRequest represents the JSON body for recording a payment
type CreatePaymentRequest struct {
	UserID           string          `json:"userId" binding:"required"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	Status           string          `json:"status"`
	TransactionHash  string          `json:"transactionHash"`
	VerificationType string          `json:"verificationType"`
}

// UpdatePaymentStatusRequest represents the JSON body for a payment status update
type UpdatePaymentStatusRequest struct {
	Status          string `json:"status" binding:"required"`
	TransactionHash string `json:"transactionHash"`
}

// listPayments is a handler for GET /api/payments. A userId query parameter
// narrows the list to one user's payments.
func (s *HTTPServer) listPayments(c *gin.Context) {
	payments, err := s.platform.ListPayments(c.Query("userId"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

// getPayment is a handler for GET /api/payments/:id.
func (s *HTTPServer) getPayment(c *gin.Context) {
	payment, err := s.platform.GetPayment(c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

// createPayment is a handler for POST /api/payments.
func (s *HTTPServer) createPayment(c *gin.Context) {
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, errs.E(errs.Invalid, "invalid request body", err))
		return
	}

	payment := &models.PaymentTransaction{
		UserID:           req.UserID,
		Amount:           req.Amount,
		Currency:         req.Currency,
		Status:           models.PaymentStatus(req.Status),
		TransactionHash:  req.TransactionHash,
		VerificationType: req.VerificationType,
	}
	if err := s.platform.CreatePayment(payment); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

// updatePaymentStatus is a handler for PATCH /api/payments/:id/status.
func (s *HTTPServer) updatePaymentStatus(c *gin.Context) {
	var req UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, errs.E(errs.Invalid, "invalid request body", err))
		return
	}

	payment, err := s.platform.UpdatePaymentStatus(c.Param("id"), models.PaymentStatus(req.Status), req.TransactionHash)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}
