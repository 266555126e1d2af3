package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/assistant-store/internal/http/response"
	"github.com/yungbote/assistant-store/internal/platform/apierr"
	"github.com/yungbote/assistant-store/internal/services"
)

type UserHandler struct {
	userService     services.UserService
	snapshotService services.SnapshotService
}

func NewUserHandler(userService services.UserService, snapshotService services.SnapshotService) *UserHandler {
	return &UserHandler{
		userService:     userService,
		snapshotService: snapshotService,
	}
}

// GET /api/users/:id
func (uh *UserHandler) GetUser(c *gin.Context) {
	u, err := uh.userService.Get(c.Request.Context(), userIDParam(c))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"user": u})
}

// POST /api/users/:id/touch
func (uh *UserHandler) Touch(c *gin.Context) {
	u, err := uh.userService.Touch(c.Request.Context(), userIDParam(c))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"user": u})
}

// PUT /api/users/:id/preferences
// body: arbitrary JSON object
func (uh *UserHandler) UpdatePreferences(c *gin.Context) {
	var prefs map[string]interface{}
	if err := c.ShouldBindJSON(&prefs); err != nil {
		response.RespondErr(c, apierr.BadRequest("invalid_request", err))
		return
	}
	u, err := uh.userService.UpdatePreferences(c.Request.Context(), userIDParam(c), prefs)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"user": u})
}

// GET /api/users/:id/snapshot?limit=
func (uh *UserHandler) Snapshot(c *gin.Context) {
	limit, err := limitQuery(c, services.DefaultSnapshotLimit)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	snap, err := uh.snapshotService.Load(c.Request.Context(), userIDParam(c), limit)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, snap)
}
