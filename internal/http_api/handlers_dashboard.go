package http_api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// dashboardStats is a handler for GET /api/dashboard/stats. The aggregate is
// recomputed from the store on every call; nothing is cached.
func (s *HTTPServer) dashboardStats(c *gin.Context) {
	stats, err := s.platform.DashboardStats()
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
