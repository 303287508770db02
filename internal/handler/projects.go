package handler

import (
	"errors"
	"net/http"

	"miro-content-service/internal/model"
	"miro-content-service/internal/repository"
	"miro-content-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ProjectsHandler handles the portfolio project CRUD endpoints
type ProjectsHandler struct {
	projects *service.ProjectService
}

// NewProjectsHandler creates a new ProjectsHandler
func NewProjectsHandler(projects *service.ProjectService) *ProjectsHandler {
	return &ProjectsHandler{projects: projects}
}

// ListProjects returns all projects flattened to the requested locale
// GET /api/projects?locale=
func (h *ProjectsHandler) ListProjects(c *gin.Context) {
	projects, err := h.projects.List(c.Request.Context(), c.Query("locale"))
	if err != nil {
		log.Error().Err(err).Msg("project list failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":  500,
			"error": "პროექტების წამოღება ვერ მოხერხდა",
		})
		return
	}

	setCacheHeaders(c)
	c.JSON(http.StatusOK, projects)
}

// GetProject returns one project flattened to the requested locale
// GET /api/projects/:id?locale=
func (h *ProjectsHandler) GetProject(c *gin.Context) {
	project, hit, err := h.projects.Get(c.Request.Context(), c.Param("id"), c.Query("locale"))
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"code":  404,
				"error": "პროექტი ვერ მოიძებნა",
			})
			return
		}
		log.Error().Err(err).Str("id", c.Param("id")).Msg("project read failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":  500,
			"error": "პროექტის წამოღება ვერ მოხერხდა",
		})
		return
	}

	if hit {
		c.Set("cache_hit", true)
	}
	setCacheHeaders(c)
	c.JSON(http.StatusOK, project)
}

// CreateProject stores a new project with a caller-assigned id
// POST /api/projects
func (h *ProjectsHandler) CreateProject(c *gin.Context) {
	var project model.Project
	if err := c.ShouldBindJSON(&project); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":  400,
			"error": "არასწორი მოთხოვნის ფორმატი",
		})
		return
	}

	if err := h.projects.Create(c.Request.Context(), project); err != nil {
		switch {
		case errors.Is(err, repository.ErrProjectBadID):
			c.JSON(http.StatusBadRequest, gin.H{
				"code":  400,
				"error": "პროექტის ID აუცილებელია",
			})
		case errors.Is(err, repository.ErrProjectExists):
			c.JSON(http.StatusConflict, gin.H{
				"code":  409,
				"error": "პროექტი ამ ID-ით უკვე არსებობს",
			})
		default:
			log.Error().Err(err).Str("id", project.ID).Msg("project create failed")
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":  500,
				"error": "პროექტის დამატების შეცდომა",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"id":      project.ID,
	})
}

// UpdateProject replaces an existing project. The body id must match the
// path id; projects cannot be renamed.
// PUT /api/projects/:id
func (h *ProjectsHandler) UpdateProject(c *gin.Context) {
	var project model.Project
	if err := c.ShouldBindJSON(&project); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":  400,
			"error": "არასწორი მოთხოვნის ფორმატი",
		})
		return
	}

	id := c.Param("id")
	if project.ID != "" && project.ID != id {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":  400,
			"error": "პროექტის ID-ის შეცვლა დაუშვებელია",
		})
		return
	}
	project.ID = id

	if err := h.projects.Update(c.Request.Context(), project); err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"code":  404,
				"error": "პროექტი ვერ მოიძებნა",
			})
			return
		}
		log.Error().Err(err).Str("id", id).Msg("project update failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":  500,
			"error": "პროექტის განახლების შეცდომა",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteProject removes a project
// DELETE /api/projects/:id
func (h *ProjectsHandler) DeleteProject(c *gin.Context) {
	id := c.Param("id")

	if err := h.projects.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"code":  404,
				"error": "პროექტი ვერ მოიძებნა",
			})
			return
		}
		log.Error().Err(err).Str("id", id).Msg("project delete failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":  500,
			"error": "პროექტის წაშლის შეცდომა",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
