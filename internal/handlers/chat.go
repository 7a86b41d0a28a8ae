// internal/handlers/chat.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/sapmusicgroup/sap-backend/internal/models"
	"github.com/sapmusicgroup/sap-backend/internal/services"
	"github.com/sapmusicgroup/sap-backend/internal/utils"
)

type ChatHandler struct {
	chatService *services.ChatService
}

func NewChatHandler(chatService *services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// GET /chat/sessions
func (h *ChatHandler) ListSessions(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	sessions, err := h.chatService.Sessions(a)
	if err != nil {
		respondError(c, err)
		return
	}
	if sessions == nil {
		sessions = []models.ChatSession{}
	}

	utils.SuccessResponse(c, sessions)
}

// GET /chat/sessions/:id/messages
func (h *ChatHandler) ListMessages(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "chat session")
	if !ok {
		return
	}

	messages, err := h.chatService.Messages(a, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if messages == nil {
		messages = []models.ChatMessage{}
	}

	utils.SuccessResponse(c, messages)
}

// POST /chat/messages
func (h *ChatHandler) SendMessage(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	var req services.SendMessageRequest
	if !bind(c, &req) {
		return
	}

	msg, err := h.chatService.Send(c.Request.Context(), a, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, msg)
}

// PATCH /chat/sessions/:id/read
func (h *ChatHandler) MarkRead(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "chat session")
	if !ok {
		return
	}

	session, err := h.chatService.MarkRead(c.Request.Context(), a, id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, session)
}
