package controllers

import (
	"strconv"

	"research-tracker-api/utils"

	"github.com/gin-gonic/gin"
)

func getUserIDFromContext(c *gin.Context) (uint, bool) {
	if v, ok := c.Get("userID"); ok {
		switch t := v.(type) {
		case uint:
			return t, t > 0
		case int:
			if t > 0 {
				return uint(t), true
			}
		case string:
			if id64, err := strconv.ParseUint(t, 10, 64); err == nil && id64 > 0 {
				return uint(id64), true
			}
		}
	}
	return 0, false
}

// requireUserID aborts with 401 when no authenticated user is present.
func requireUserID(c *gin.Context) (uint, bool) {
	id, ok := getUserIDFromContext(c)
	if !ok {
		_ = c.Error(utils.ErrUnauthorized)
	}
	return id, ok
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id64, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id64 == 0 {
		_ = c.Error(utils.BadRequest("invalid %s", name))
		return 0, false
	}
	return uint(id64), true
}

func parseIntOrDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		_ = c.Error(utils.BadRequest("invalid request body: %v", err))
		return false
	}
	return true
}

func paging(total int64, limit, offset int) gin.H {
	return gin.H{"total": total, "limit": limit, "offset": offset}
}
