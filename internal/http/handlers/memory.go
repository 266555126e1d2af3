package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/assistant-store/internal/http/response"
	"github.com/yungbote/assistant-store/internal/platform/apierr"
	"github.com/yungbote/assistant-store/internal/services"
)

const defaultMemoryLimit = 50

type MemoryHandler struct {
	memoryService services.MemoryService
}

func NewMemoryHandler(memoryService services.MemoryService) *MemoryHandler {
	return &MemoryHandler{memoryService: memoryService}
}

// GET /api/users/:id/memories?type=fact&type=preference&limit=
func (h *MemoryHandler) List(c *gin.Context) {
	limit, err := limitQuery(c, defaultMemoryLimit)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	var memoryTypes []string
	for _, raw := range c.QueryArray("type") {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				memoryTypes = append(memoryTypes, t)
			}
		}
	}
	rows, err := h.memoryService.ListActive(c.Request.Context(), userIDParam(c), memoryTypes, limit)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"memories": rows})
}

// POST /api/users/:id/memories
func (h *MemoryHandler) Create(c *gin.Context) {
	var req services.MemoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondErr(c, apierr.BadRequest("invalid_request", err))
		return
	}
	m, err := h.memoryService.Remember(c.Request.Context(), userIDParam(c), req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"memory": m})
}

// PATCH /api/users/:id/memories/:memoryID
// body: { "importance": 2.5 }
func (h *MemoryHandler) UpdateImportance(c *gin.Context) {
	memoryID, err := int64Param(c, "memoryID")
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	var req struct {
		Importance *float64 `json:"importance"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Importance == nil {
		response.RespondErr(c, apierr.BadRequest("invalid_request", errMissingImportance))
		return
	}
	m, err := h.memoryService.SetImportance(c.Request.Context(), userIDParam(c), memoryID, *req.Importance)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"memory": m})
}

// DELETE /api/users/:id/memories/:memoryID
// Soft delete: the memory is deactivated, not removed.
func (h *MemoryHandler) Delete(c *gin.Context) {
	memoryID, err := int64Param(c, "memoryID")
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if err := h.memoryService.Forget(c.Request.Context(), userIDParam(c), memoryID); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
