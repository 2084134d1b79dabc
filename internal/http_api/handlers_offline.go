package http_api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/taurusai/qgrid/internal/errs"
	"github.com/taurusai/qgrid/internal/models"
)

// CreateDeviceRequest represents the JSON body for registering a device
type CreateDeviceRequest struct {
	DeviceID     string          `json:"deviceId" binding:"required"`
	OwnerName    string          `json:"ownerName" binding:"required"`
	DeviceType   string          `json:"deviceType" binding:"required"`
	Balance      decimal.Decimal `json:"balance"`
	OfflineLimit decimal.Decimal `json:"offlineLimit"`
	Status       string          `json:"status"`
}

// CreateMeshTransactionRequest represents the JSON body for an offline transfer
type CreateMeshTransactionRequest struct {
	FromDeviceID   string          `json:"fromDeviceId" binding:"required"`
	ToDeviceID     string          `json:"toDeviceId" binding:"required"`
	Amount         decimal.Decimal `json:"amount"`
	SequenceNumber int             `json:"sequenceNumber"`
	Nonce          string          `json:"nonce" binding:"required"`
	Scenario       string          `json:"scenario"`
}

// listDevices is a handler for GET /api/offline/devices.
func (s *HTTPServer) listDevices(c *gin.Context) {
	devices, err := s.platform.ListDevices()
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, devices)
}

// createDevice is a handler for POST /api/offline/devices.
func (s *HTTPServer) createDevice(c *gin.Context) {
	var req CreateDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, errs.E(errs.Invalid, "invalid request body", err))
		return
	}

	device := &models.OfflineDevice{
		DeviceID:     req.DeviceID,
		OwnerName:    req.OwnerName,
		DeviceType:   models.DeviceType(req.DeviceType),
		Balance:      req.Balance,
		OfflineLimit: req.OfflineLimit,
		Status:       models.DeviceStatus(req.Status),
	}
	if err := s.platform.CreateDevice(device); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, device)
}

// getDevice is a handler for GET /api/offline/devices/:deviceId.
func (s *HTTPServer) getDevice(c *gin.Context) {
	device, err := s.platform.GetDevice(c.Param("deviceId"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, device)
}

// listMeshTransactions is a handler for GET /api/offline/transactions. A
// status query parameter narrows the list to one settlement state; sync
// clients poll with status=PENDING_SYNC.
func (s *HTTPServer) listMeshTransactions(c *gin.Context) {
	txs, err := s.platform.ListMeshTransactions(models.MeshStatus(c.Query("status")))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, txs)
}

// createMeshTransaction is a handler for POST /api/offline/transactions.
func (s *HTTPServer) createMeshTransaction(c *gin.Context) {
	var req CreateMeshTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, errs.E(errs.Invalid, "invalid request body", err))
		return
	}

	tx := &models.MeshTransaction{
		FromDeviceID:   req.FromDeviceID,
		ToDeviceID:     req.ToDeviceID,
		Amount:         req.Amount,
		SequenceNumber: req.SequenceNumber,
		Nonce:          req.Nonce,
		Scenario:       req.Scenario,
	}
	if err := s.platform.CreateMeshTransaction(tx); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tx)
}

// listBatches is a handler for GET /api/offline/batches.
func (s *HTTPServer) listBatches(c *gin.Context) {
	batches, err := s.platform.ListBatches()
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, batches)
}

// settle is a handler for POST /api/offline/settle. It confirms all pending
// transfers as one batch; with nothing pending it reports a no-op.
func (s *HTTPServer) settle(c *gin.Context) {
	result, err := s.platform.Settle()
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
