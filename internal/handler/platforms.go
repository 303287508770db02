package handler

import (
	"context"
	"net/http"

	"miro-content-service/internal/model"
	"miro-content-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// PlatformsHandler handles the platform aggregation endpoints
type PlatformsHandler struct {
	catalog *service.CatalogService
}

// NewPlatformsHandler creates a new PlatformsHandler
func NewPlatformsHandler(catalog *service.CatalogService) *PlatformsHandler {
	return &PlatformsHandler{catalog: catalog}
}

// GetPlatforms returns the platforms aggregated from movie homepages
// GET /api/platforms
func (h *PlatformsHandler) GetPlatforms(c *gin.Context) {
	h.serve(c, h.catalog.MoviePlatforms)
}

// GetTVPlatforms returns the platforms aggregated from series homepages
// GET /api/tv-platforms
func (h *PlatformsHandler) GetTVPlatforms(c *gin.Context) {
	h.serve(c, h.catalog.TVPlatforms)
}

func (h *PlatformsHandler) serve(c *gin.Context, list func(ctx context.Context) ([]model.Platform, bool, error)) {
	platforms, hit, err := list(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("platform query failed")
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
		"platforms": platforms,
		"count":     len(platforms),
	})
}
