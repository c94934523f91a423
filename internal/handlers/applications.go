package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/dtos"
	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/middleware"
	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/models"
	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/services"
	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/tracker"
)

type ApplicationHandler struct {
	Applications *services.ApplicationService
}

func NewApplicationHandler(apps *services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{Applications: apps}
}

// List is GET /applications. Query parameters mirror the dashboard filters.
func (h *ApplicationHandler) List(c *gin.Context) {
	q, err := tracker.ParseQuery(
		c.Query("search"),
		c.Query("status"),
		c.Query("jobType"),
		c.Query("dateRange"),
		c.Query("sortBy"),
		c.Query("sortOrder"),
	)
	if err != nil {
		respondError(c, err)
		return
	}

	apps, err := h.Applications.List(c.Request.Context(), middleware.GetUserID(c), q)
	if err != nil {
		respondError(c, err)
		return
	}
	if apps == nil {
		apps = []models.Application{}
	}
	c.JSON(http.StatusOK, gin.H{
		"applications": apps,
		"total":        len(apps),
		"query":        q,
	})
}

func (h *ApplicationHandler) Stats(c *gin.Context) {
	stats, err := h.Applications.Stats(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *ApplicationHandler) Create(c *gin.Context) {
	var form tracker.FormState
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c, "Invalid JSON format: "+err.Error())
		return
	}

	app, err := h.Applications.Create(c.Request.Context(), middleware.GetUserID(c), form)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, app)
}

func (h *ApplicationHandler) Get(c *gin.Context) {
	app, err := h.Applications.Get(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

func (h *ApplicationHandler) Update(c *gin.Context) {
	var form tracker.FormState
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c, "Invalid JSON format: "+err.Error())
		return
	}

	app, err := h.Applications.Update(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), form)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

// ChangeStatus is PATCH /applications/:id/status.
func (h *ApplicationHandler) ChangeStatus(c *gin.Context) {
	var req dtos.StatusChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid JSON format: "+err.Error())
		return
	}

	app, err := h.Applications.ChangeStatus(c.Request.Context(), middleware.GetUserID(c), c.Param("id"), req.Status, req.Details)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

func (h *ApplicationHandler) Delete(c *gin.Context) {
	if err := h.Applications.Delete(c.Request.Context(), middleware.GetUserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *ApplicationHandler) Events(c *gin.Context) {
	events, err := h.Applications.Events(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if events == nil {
		events = []models.ApplicationEvent{}
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}
