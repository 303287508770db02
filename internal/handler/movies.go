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

// MoviesHandler handles the movie catalog endpoints
type MoviesHandler struct {
	catalog *service.CatalogService
}

// NewMoviesHandler creates a new MoviesHandler
func NewMoviesHandler(catalog *service.CatalogService) *MoviesHandler {
	return &MoviesHandler{catalog: catalog}
}

// GetMovies returns one page of movies matching the filters
// GET /api/movies?page=&limit=&companies=&platform=&locale=
func (h *MoviesHandler) GetMovies(c *gin.Context) {
	p := query.Normalize(c.Request.URL.Query())

	page, hit, err := h.catalog.ListMovies(c.Request.Context(), p)
	if err != nil {
		log.Error().Err(err).Msg("movie query failed")
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
		"movies":  page.Items,
		"page":    page.Page,
		"limit":   page.Limit,
		"hasMore": page.HasMore,
	})
}

// GetMovieDetail returns one movie with its production companies
// GET /api/movies/:id
func (h *MoviesHandler) GetMovieDetail(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":  400,
			"error": "ფილმის ID აუცილებელია",
		})
		return
	}

	locale := query.Params{Locale: query.NormalizeLocale(c.Query("locale"))}.StorageLocale()

	detail, hit, err := h.catalog.GetMovie(c.Request.Context(), id, locale)
	if err != nil {
		log.Error().Err(err).Int64("id", id).Msg("movie detail query failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":  500,
			"error": "შიდა სერვერის შეცდომა",
		})
		return
	}
	if detail == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":  404,
			"error": "ფილმი ვერ მოიძებნა",
		})
		return
	}

	if hit {
		c.Set("cache_hit", true)
	}
	setCacheHeaders(c)

	c.JSON(http.StatusOK, detail)
}

// RevalidateMovies drops the movies cache tag
// POST /api/movies
func (h *MoviesHandler) RevalidateMovies(c *gin.Context) {
	if err := h.catalog.Invalidate(c.Request.Context(), service.TagMovies); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":  500,
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"revalidated": true,
		"now":         time.Now().UnixMilli(),
		"message":     "ფილმების ქეში წარმატებით განახლდა",
	})
}
