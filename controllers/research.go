package controllers

import (
	"net/http"

	"research-tracker-api/services"

	"github.com/gin-gonic/gin"
)

type projectRequest struct {
	Title       *string `json:"title"`
	Module      *string `json:"module"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Progress    *int    `json:"progress"`
}

func (r projectRequest) input() services.ProjectInput {
	return services.ProjectInput{
		Title:       r.Title,
		Module:      r.Module,
		Description: r.Description,
		Status:      r.Status,
		Progress:    r.Progress,
	}
}

// GET /api/projects?status=active&search=&limit=5&offset=0
func GetProjects(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	limit := parseIntOrDefault(c.Query("limit"), 50)
	offset := parseIntOrDefault(c.Query("offset"), 0)

	items, total, err := services.NewProjectService(nil).List(c.Request.Context(), userID, services.ProjectFilter{
		Status: c.Query("status"),
		Search: c.Query("search"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": items, "paging": paging(total, limit, offset)})
}

// GET /api/projects/:id
func GetProject(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	p, err := services.NewProjectService(nil).Get(c.Request.Context(), userID, id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": p})
}

// POST /api/projects
func CreateProject(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req projectRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := services.NewProjectService(nil).Create(c.Request.Context(), userID, req.input())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": p})
}

// PUT /api/projects/:id
func UpdateProject(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req projectRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := services.NewProjectService(nil).Update(c.Request.Context(), userID, id, req.input())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": p})
}

type paperRequest struct {
	Title           *string  `json:"title"`
	Authors         []string `json:"authors"`
	Journal         *string  `json:"journal"`
	Abstract        *string  `json:"abstract"`
	DOI             *string  `json:"doi"`
	Status          *string  `json:"status"`
	Citations       *int     `json:"citations"`
	ProjectID       *uint    `json:"project_id"`
	PublicationDate *string  `json:"publication_date"`
}

func (r paperRequest) input() services.PaperInput {
	return services.PaperInput{
		Title:           r.Title,
		Authors:         r.Authors,
		Journal:         r.Journal,
		Abstract:        r.Abstract,
		DOI:             r.DOI,
		Status:          r.Status,
		Citations:       r.Citations,
		ProjectID:       r.ProjectID,
		PublicationDate: r.PublicationDate,
	}
}

// GET /api/papers?status=published&search=plasticity
func GetPapers(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	limit := parseIntOrDefault(c.Query("limit"), 50)
	offset := parseIntOrDefault(c.Query("offset"), 0)

	items, total, err := services.NewPaperService(nil).List(c.Request.Context(), userID, services.PaperFilter{
		Status: c.Query("status"),
		Search: c.Query("search"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": items, "paging": paging(total, limit, offset)})
}

// POST /api/papers
func CreatePaper(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req paperRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := services.NewPaperService(nil).Create(c.Request.Context(), userID, req.input())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": p})
}

// PUT /api/papers/:id
func UpdatePaper(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req paperRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := services.NewPaperService(nil).Update(c.Request.Context(), userID, id, req.input())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": p})
}

type experimentRequest struct {
	Name      string `json:"name"`
	Status    string `json:"status"`
	ProjectID *uint  `json:"project_id"`
}

// GET /api/experiments?status=running
func GetExperiments(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	limit := parseIntOrDefault(c.Query("limit"), 50)
	items, err := services.NewExperimentService(nil).List(c.Request.Context(), userID, c.Query("status"), limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": items})
}

// POST /api/experiments
func CreateExperiment(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req experimentRequest
	if !bindJSON(c, &req) {
		return
	}
	e, err := services.NewExperimentService(nil).Create(c.Request.Context(), userID, services.ExperimentInput{
		Name:      req.Name,
		Status:    req.Status,
		ProjectID: req.ProjectID,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": e})
}
