package http_api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taurusai/qgrid/internal/errs"
	"github.com/taurusai/qgrid/internal/models"
)

// CreateLogRequest represents the JSON body for appending a verification log
type CreateLogRequest struct {
	UserID    string `json:"userId" binding:"required"`
	EventType string `json:"eventType" binding:"required"`
	Method    string `json:"method" binding:"required"`
	Result    string `json:"result" binding:"required"`
	Location  string `json:"location"`
	RiskScore int    `json:"riskScore"`
}

// listLogs is a handler for GET /api/logs.
func (s *HTTPServer) listLogs(c *gin.Context) {
	logs, err := s.platform.ListLogs()
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

// createLog is a handler for POST /api/logs. Logs are append-only; there is
// no update or delete surface.
func (s *HTTPServer) createLog(c *gin.Context) {
	var req CreateLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, errs.E(errs.Invalid, "invalid request body", err))
		return
	}

	entry := &models.VerificationLog{
		UserID:    req.UserID,
		EventType: req.EventType,
		Method:    req.Method,
		Result:    models.LogResult(req.Result),
		Location:  req.Location,
		RiskScore: req.RiskScore,
	}
	if err := s.platform.CreateLog(entry); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}
