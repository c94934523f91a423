package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/middleware"
	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/services"
)

type GmailHandler struct {
	Gmail *services.GmailService
}

func NewGmailHandler(gmail *services.GmailService) *GmailHandler {
	return &GmailHandler{Gmail: gmail}
}

// ListMessages is GET /gmail/messages?q=&max=.
func (h *GmailHandler) ListMessages(c *gin.Context) {
	var max int64
	if v := c.Query("max"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			badRequest(c, "max must be a positive integer")
			return
		}
		max = n
	}

	messages, err := h.Gmail.ListMessages(c.Request.Context(), middleware.GetUserID(c), c.Query("q"), max)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}
