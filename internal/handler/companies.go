package handler

import (
	"net/http"
	"time"

	"miro-content-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// CompaniesHandler handles the production-company endpoints
type CompaniesHandler struct {
	catalog *service.CatalogService
}

// NewCompaniesHandler creates a new CompaniesHandler
func NewCompaniesHandler(catalog *service.CatalogService) *CompaniesHandler {
	return &CompaniesHandler{catalog: catalog}
}

// GetTopCompanies returns the most prolific production companies
// GET /api/production-companies
func (h *CompaniesHandler) GetTopCompanies(c *gin.Context) {
	companies, hit, err := h.catalog.TopCompanies(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("company query failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":  500,
			"error": "შიდა სერვერის შეცდომა",
		})
		return
	}

	if hit {
		c.Set("cache_hit", true)
	}
	setCacheHeaders(c)

	c.JSON(http.StatusOK, gin.H{
		"companies": companies,
		"count":     len(companies),
	})
}

// GetTVTopCompanies returns the most prolific TV-series companies
// GET /api/tv-production-companies
func (h *CompaniesHandler) GetTVTopCompanies(c *gin.Context) {
	companies, hit, err := h.catalog.TopTVCompanies(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("tv company query failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":  500,
			"error": "შიდა სერვერის შეცდომა",
		})
		return
	}

	if hit {
		c.Set("cache_hit", true)
	}
	setCacheHeaders(c)

	c.JSON(http.StatusOK, gin.H{
		"companies": companies,
		"count":     len(companies),
	})
}

// RevalidateCompanies drops the companies cache tag
// POST /api/production-companies
func (h *CompaniesHandler) RevalidateCompanies(c *gin.Context) {
	if err := h.catalog.Invalidate(c.Request.Context(), service.TagCompanies); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":  500,
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"revalidated": true,
		"now":         time.Now().UnixMilli(),
	})
}
