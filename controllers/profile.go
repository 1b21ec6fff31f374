package controllers

import (
	"net/http"

	"research-tracker-api/levels"
	"research-tracker-api/services"

	"github.com/gin-gonic/gin"
)

// GET /api/profile
func GetProfile(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	user, err := services.NewUserService(nil).Get(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
		"level":   levels.Describe(levels.Level(user.ResearcherLevel)),
	})
}

type updateProfileRequest struct {
	Name          *string `json:"name"`
	Institution   *string `json:"institution"`
	ResearchField *string `json:"research_field"`
}

// PUT /api/profile
func UpdateProfile(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req updateProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := services.NewUserService(nil).UpdateProfile(c.Request.Context(), userID, services.ProfileUpdate{
		Name:          req.Name,
		Institution:   req.Institution,
		ResearchField: req.ResearchField,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": user})
}

// GET /api/profile/level
// Progress toward the next level for the signed-in researcher.
func GetProfileLevel(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	decision, err := services.NewPromotionService(nil).Preview(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": decision.Progress})
}

// GET /api/dashboard/stats
func GetDashboardStats(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	stats, err := services.NewDashboardService(nil).UserStats(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":            true,
		"data":               stats,
		"activeProjects":     stats.ActiveProjects,
		"publishedPapers":    stats.PublishedPapers,
		"runningExperiments": stats.RunningExperiments,
		"totalCitations":     stats.TotalCitations,
	})
}
