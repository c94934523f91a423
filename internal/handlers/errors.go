package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/auth"
	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/database"
	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/models"
	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/services"
	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/tracker"
	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/pkg/logger"
)

// respondError maps service errors to a status code and writes {"error": ...}.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, tracker.ErrInvalidForm),
		errors.Is(err, tracker.ErrInvalidStatus),
		errors.Is(err, tracker.ErrInvalidQuery),
		errors.Is(err, models.ErrInvalidDate):
		status = http.StatusBadRequest
	case errors.Is(err, database.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrGmailNotConnected):
		status = http.StatusConflict
	case errors.Is(err, services.ErrLLMDisabled),
		errors.Is(err, auth.ErrGoogleDisabled):
		status = http.StatusServiceUnavailable
	case errors.Is(err, services.ErrGmailUnavailable),
		errors.Is(err, services.ErrLLMInvalidResponse):
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		logger.Error(c.Request.Context(), "request failed", "status", status, "error", err)
	}
	if status == http.StatusInternalServerError {
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
