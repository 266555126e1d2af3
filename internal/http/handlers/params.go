package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/assistant-store/internal/platform/apierr"
)

const maxListLimit = 200

var errMissingImportance = errors.New("importance is required")

func userIDParam(c *gin.Context) string {
	return strings.TrimSpace(c.Param("id"))
}

// limitQuery reads ?limit=, defaulting to def and capping at maxListLimit.
func limitQuery(c *gin.Context, def int) (int, error) {
	raw := strings.TrimSpace(c.Query("limit"))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apierr.BadRequest("invalid_limit", fmt.Errorf("limit must be a non-negative integer"))
	}
	if n == 0 || n > maxListLimit {
		n = maxListLimit
	}
	return n, nil
}

func int64Param(c *gin.Context, name string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(c.Param(name)), 10, 64)
	if err != nil || n <= 0 {
		return 0, apierr.BadRequest("invalid_"+name, fmt.Errorf("%s must be a positive integer", name))
	}
	return n, nil
}
