package controllers

import (
	"net/http"

	"research-tracker-api/levels"
	"research-tracker-api/utils"

	"github.com/gin-gonic/gin"
)

// GET /api/levels
func GetLevels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": levels.All()})
}

// GET /api/levels/:level
func GetLevel(c *gin.Context) {
	l, ok := levels.Parse(c.Param("level"))
	if !ok {
		_ = c.Error(utils.NotFound("unknown level"))
		return
	}
	resp := gin.H{"level": levels.Describe(l)}
	if next, ok := levels.Next(l); ok {
		resp["next"] = next
	} else {
		resp["next"] = nil
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": resp})
}

// POST /api/levels/evaluate
// Body: {"projects_count":4,"papers_count":1,"citations_count":2,"researcher_level":"bronze"}
func EvaluateLevel(c *gin.Context) {
	var p levels.Profile
	if !bindJSON(c, &p) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": levels.Evaluate(p)})
}
