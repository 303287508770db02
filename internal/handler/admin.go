package handler

import (
	"net/http"

	"miro-content-service/internal/repository"

	"github.com/gin-gonic/gin"
)

// AdminHandler handles admin-only operational endpoints
type AdminHandler struct {
	metrics *repository.Metrics
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(metrics *repository.Metrics) *AdminHandler {
	return &AdminHandler{metrics: metrics}
}

// GetAnalytics returns API analytics
// GET /api/admin/analytics
func (h *AdminHandler) GetAnalytics(c *gin.Context) {
	stats, err := h.metrics.GetOverallStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":  500,
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": stats,
	})
}

// GetEndpointStats returns stats for a specific endpoint
// GET /api/admin/analytics/endpoint?path=/api/movies
func (h *AdminHandler) GetEndpointStats(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":  400,
			"error": "path parameter required",
		})
		return
	}

	stats, err := h.metrics.GetEndpointStats(c.Request.Context(), path)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":  500,
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 200,
		"data": stats,
	})
}

// ResetAnalytics resets all analytics data
// DELETE /api/admin/analytics
func (h *AdminHandler) ResetAnalytics(c *gin.Context) {
	if err := h.metrics.ResetMetrics(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":  500,
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "statistics reset",
	})
}
