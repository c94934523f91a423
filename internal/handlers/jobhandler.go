package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/dtos"
	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/services"
)

type JobHandler struct {
	LLMService *services.LLMService
}

func NewJobHandler(llm *services.LLMService) *JobHandler {
	return &JobHandler{LLMService: llm}
}

// ParseJob is the POST /jobs/extract endpoint. The extracted fields prefill
// the application form.
func (h *JobHandler) ParseJob(c *gin.Context) {
	var req dtos.JobExtractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid JSON format: "+err.Error())
		return
	}

	details, err := h.LLMService.ExtractJobDetails(c.Request.Context(), req.RawHTML)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    details,
	})
}
