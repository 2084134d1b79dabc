package http_api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taurusai/qgrid/internal/errs"
	"github.com/taurusai/qgrid/internal/models"
)

// CreateBiometricRequest represents the JSON body for enrolling a biometric factor
type CreateBiometricRequest struct {
	UserID        string `json:"userId" binding:"required"`
	BiometricType string `json:"biometricType" binding:"required"`
	Status        string `json:"status"`
	LivenessScore int    `json:"livenessScore"`
	TemplateHash  string `json:"templateHash"`
}

// listBiometricProfiles is a handler for GET /api/biometrics.
func (s *HTTPServer) listBiometricProfiles(c *gin.Context) {
	profiles, err := s.platform.ListBiometricProfiles()
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profiles)
}

// createBiometricProfile is a handler for POST /api/biometrics.
func (s *HTTPServer) createBiometricProfile(c *gin.Context) {
	var req CreateBiometricRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, errs.E(errs.Invalid, "invalid request body", err))
		return
	}

	profile := &models.BiometricProfile{
		UserID:        req.UserID,
		BiometricType: req.BiometricType,
		Status:        models.BiometricStatus(req.Status),
		LivenessScore: req.LivenessScore,
		TemplateHash:  req.TemplateHash,
	}
	if err := s.platform.CreateBiometricProfile(profile); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, profile)
}
