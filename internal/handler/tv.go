package handler

import (
	"net/http"
	"strconv"
	"time"

	"miro-content-service/internal/query"
	"miro-content-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// TVHandler handles the TV-series catalog endpoints
type TVHandler struct {
	catalog *service.CatalogService
}

// NewTVHandler creates a new TVHandler
func NewTVHandler(catalog *service.CatalogService) *TVHandler {
	return &TVHandler{catalog: catalog}
}

// GetTVSeries returns one page of series matching the filters
// GET /api/tv-series
func (h *TVHandler) GetTVSeries(c *gin.Context) {
	p := query.Normalize(c.Request.URL.Query())

	page, hit, err := h.catalog.ListTVSeries(c.Request.Context(), p)
	if err != nil {
		log.Error().Err(err).Msg("tv series query failed")
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
		"series":  page.Items,
		"page":    page.Page,
		"limit":   page.Limit,
		"hasMore": page.HasMore,
	})
}

// GetTVSeriesDetail returns one series with genres, cast and companies
// GET /api/tv-series/:id
func (h *TVHandler) GetTVSeriesDetail(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":  400,
			"error": "სერიალის ID აუცილებელია",
		})
		return
	}

	locale := query.Params{Locale: query.NormalizeLocale(c.Query("locale"))}.StorageLocale()

	detail, hit, err := h.catalog.GetTVSeries(c.Request.Context(), id, locale)
	if err != nil {
		log.Error().Err(err).Int64("id", id).Msg("tv series detail query failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":  500,
			"error": "შიდა სერვერის შეცდომა",
		})
		return
	}
	if detail == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":  404,
			"error": "სერიალი ვერ მოიძებნა",
		})
		return
	}

	if hit {
		c.Set("cache_hit", true)
	}
	setCacheHeaders(c)

	c.JSON(http.StatusOK, detail)
}

// RevalidateTVSeries drops the tv-series cache tag
// POST /api/tv-series
func (h *TVHandler) RevalidateTVSeries(c *gin.Context) {
	if err := h.catalog.Invalidate(c.Request.Context(), service.TagTVSeries); err != nil {
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

// RevalidateTVSeriesDetail drops the per-series cache tag
// POST /api/tv-series/:id
func (h *TVHandler) RevalidateTVSeriesDetail(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":  400,
			"error": "სერიალის ID აუცილებელია",
		})
		return
	}

	if err := h.catalog.Invalidate(c.Request.Context(), service.SeriesTag(id)); err != nil {
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
