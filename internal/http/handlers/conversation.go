package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/assistant-store/internal/http/response"
	"github.com/yungbote/assistant-store/internal/platform/apierr"
	"github.com/yungbote/assistant-store/internal/services"
)

const defaultConversationLimit = 20

type ConversationHandler struct {
	conversationService services.ConversationService
}

func NewConversationHandler(conversationService services.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversationService: conversationService}
}

// GET /api/users/:id/conversations?limit=&topic=
// Rows are newest first, rendered with Conversation.ToMap.
func (h *ConversationHandler) List(c *gin.Context) {
	limit, err := limitQuery(c, defaultConversationLimit)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	var rows []map[string]interface{}
	if topic := strings.TrimSpace(c.Query("topic")); topic != "" {
		rows, err = h.conversationService.ListByTopic(c.Request.Context(), userIDParam(c), topic, limit)
	} else {
		rows, err = h.conversationService.ListRecent(c.Request.Context(), userIDParam(c), limit)
	}
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"conversations": rows})
}

// POST /api/users/:id/conversations
func (h *ConversationHandler) Create(c *gin.Context) {
	var req services.ConversationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondErr(c, apierr.BadRequest("invalid_request", err))
		return
	}
	row, err := h.conversationService.Record(c.Request.Context(), userIDParam(c), req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"conversation": row.ToMap()})
}
