package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/aether-industries/storefront-api/internal/service"
	"github.com/aether-industries/storefront-api/internal/utils"
)

// ChatbotHandler serves the storefront support chatbot endpoint.
type ChatbotHandler struct {
	chatbotService *service.ChatbotService
}

// NewChatbotHandler constructs a ChatbotHandler.
func NewChatbotHandler(chatbotService *service.ChatbotService) *ChatbotHandler {
	return &ChatbotHandler{chatbotService: chatbotService}
}

// Chat handles POST /v1/chat
func (h *ChatbotHandler) Chat(c *gin.Context) {
	var req service.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	reply, err := h.chatbotService.Chat(c.Request.Context(), &req)
	if err != nil {
		log.Error().Err(err).Msg("Chatbot request failed")
		utils.Error(c, 503, "CHAT_UNAVAILABLE", "The support assistant is unavailable right now, please try again later")
		return
	}

	utils.Success(c, 200, "Chat reply generated", reply)
}
