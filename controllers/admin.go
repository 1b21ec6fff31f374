package controllers

import (
	"net/http"

	"research-tracker-api/models"
	"research-tracker-api/services"
	"research-tracker-api/utils"

	"github.com/gin-gonic/gin"
)

// GET /api/admin/stats
func GetAdminStats(c *gin.Context) {
	stats, err := services.NewDashboardService(nil).AdminStats(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"data":              stats,
		"overview":          stats.Overview,
		"levelDistribution": stats.LevelDistribution,
		"generatedAt":       stats.GeneratedAt,
	})
}

// GET /api/admin/users?search=&role=&status=&level=&limit=100&offset=0
func GetAdminUsers(c *gin.Context) {
	limit := parseIntOrDefault(c.Query("limit"), 100)
	offset := parseIntOrDefault(c.Query("offset"), 0)

	users, total, err := services.NewUserService(nil).List(c.Request.Context(), services.UserFilter{
		Search: c.Query("search"),
		Role:   c.Query("role"),
		Status: c.Query("status"),
		Level:  c.Query("level"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": users, "paging": paging(total, limit, offset)})
}

type adminUpdateUserRequest struct {
	Name            *string `json:"name"`
	Institution     *string `json:"institution"`
	Role            *string `json:"role"`
	Status          *string `json:"status"`
	ResearcherLevel *string `json:"researcher_level"`
}

// PUT /api/admin/users/:id
func UpdateAdminUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req adminUpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	var actor *uint
	if actorID, ok := getUserIDFromContext(c); ok {
		if actorID == id && req.Role != nil && *req.Role != models.RoleAdmin {
			_ = c.Error(utils.Forbidden("administrators cannot remove their own admin role"))
			return
		}
		actor = &actorID
	}

	user, err := services.NewUserService(nil).AdminUpdate(c.Request.Context(), id, services.AdminUserUpdate{
		Name:            req.Name,
		Institution:     req.Institution,
		Role:            req.Role,
		Status:          req.Status,
		ResearcherLevel: req.ResearcherLevel,
		ActorID:         actor,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": user})
}

// GET /api/admin/users/:id/promotion
func PreviewUserPromotion(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	decision, err := services.NewPromotionService(nil).Preview(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": decision})
}

// POST /api/admin/users/:id/promote?dry_run=true
// The result fields are repeated at the top level for the admin panel,
// which reads newLevel straight off the response body.
func PromoteUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	input := services.PromoteInput{
		UserID:        id,
		TriggerSource: models.PromotionTriggerAdmin,
		DryRun:        c.Query("dry_run") == "true",
	}
	if actorID, ok := getUserIDFromContext(c); ok {
		input.ActorID = &actorID
	}

	res, err := services.NewPromotionService(nil).Promote(c.Request.Context(), input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"data":          res,
		"newLevel":      res.NewLevel,
		"previousLevel": res.PreviousLevel,
		"promoted":      res.Promoted,
	})
}

// GET /api/admin/users/:id/promotions?limit=50
func GetUserPromotions(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	rows, err := services.NewPromotionService(nil).History(c.Request.Context(), id, parseIntOrDefault(c.Query("limit"), 50))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": rows})
}

type runPromotionsRequest struct {
	UserIDs []uint `json:"user_ids"`
	Limit   int    `json:"limit"`
	DryRun  bool   `json:"dry_run"`
}

// POST /api/admin/promotions/run
func RunPromotions(c *gin.Context) {
	var req runPromotionsRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	if req.Limit < 0 {
		_ = c.Error(utils.BadRequest("limit must be >= 0"))
		return
	}

	summary, err := services.NewPromotionJobService(nil).RunForAll(c.Request.Context(), &services.PromotionJobInput{
		UserIDs:       req.UserIDs,
		Limit:         req.Limit,
		TriggerSource: models.PromotionTriggerAdmin,
		LockName:      services.DefaultPromotionLockName,
		DryRun:        req.DryRun,
		RecordRun:     true,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": summary})
}

// GET /api/admin/promotions/runs?limit=20&offset=0
func GetPromotionRuns(c *gin.Context) {
	limit := parseIntOrDefault(c.Query("limit"), 20)
	offset := parseIntOrDefault(c.Query("offset"), 0)
	runs, total, err := services.NewPromotionRunService(nil).List(c.Request.Context(), limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": runs, "paging": paging(total, limit, offset)})
}
