package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/assistant-store/internal/http/response"
	"github.com/yungbote/assistant-store/internal/platform/apierr"
	"github.com/yungbote/assistant-store/internal/services"
)

type ContextHandler struct {
	contextService services.ContextService
}

func NewContextHandler(contextService services.ContextService) *ContextHandler {
	return &ContextHandler{contextService: contextService}
}

// GET /api/users/:id/context
// Not a pure read: the first call for a user persists a context row with defaults.
func (h *ContextHandler) Get(c *gin.Context) {
	uc, err := h.contextService.Get(c.Request.Context(), userIDParam(c))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"context": uc})
}

// POST /api/users/:id/context/messages
// body: { "role": "user" | "assistant", "content": "..." }
func (h *ContextHandler) AppendMessage(c *gin.Context) {
	var req struct {
		Role    string `json:"role" binding:"required"`
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondErr(c, apierr.BadRequest("invalid_request", err))
		return
	}
	uc, err := h.contextService.AppendMessage(c.Request.Context(), userIDParam(c), req.Role, req.Content)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"context": uc})
}

// POST /api/users/:id/context/topics
// body: { "topic": "..." }
func (h *ContextHandler) AddTopic(c *gin.Context) {
	var req struct {
		Topic string `json:"topic" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondErr(c, apierr.BadRequest("invalid_request", err))
		return
	}
	uc, err := h.contextService.AddTopic(c.Request.Context(), userIDParam(c), req.Topic)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"context": uc})
}
