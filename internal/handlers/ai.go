// internal/handlers/ai.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/sapmusicgroup/sap-backend/internal/services"
	"github.com/sapmusicgroup/sap-backend/internal/utils"
)

// AIHandler answers with a fixed message instead of an error when the
// assistant is disabled or the upstream call fails.
type AIHandler struct {
	aiService *services.AIService
}

func NewAIHandler(aiService *services.AIService) *AIHandler {
	return &AIHandler{aiService: aiService}
}

// POST /ai/summarize-agreement
func (h *AIHandler) SummarizeAgreement(c *gin.Context) {
	var req services.SummarizeRequest
	if !bind(c, &req) {
		return
	}

	utils.SuccessResponse(c, gin.H{
		"summary": h.aiService.Summarize(c.Request.Context(), req.Text),
	})
}

// POST /ai/chat
func (h *AIHandler) Chat(c *gin.Context) {
	var req services.AssistantChatRequest
	if !bind(c, &req) {
		return
	}

	utils.SuccessResponse(c, h.aiService.Chat(c.Request.Context(), &req))
}
