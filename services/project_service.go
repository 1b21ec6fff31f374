package services

import (
	"context"
	"errors"
	"strings"

	"research-tracker-api/config"
	"research-tracker-api/models"
	"research-tracker-api/utils"

	"gorm.io/gorm"
)

var ErrProjectNotFound = errors.New("project not found")

type ProjectService struct {
	db    *gorm.DB
	users *UserService
}

func NewProjectService(db *gorm.DB) *ProjectService {
	if db == nil {
		db = config.DB
	}
	return &ProjectService{db: db, users: NewUserService(db)}
}

func (s *ProjectService) WithCache(c StatsCache) *ProjectService {
	s.users.WithCache(c)
	return s
}

type ProjectFilter struct {
	Status string
	Search string
	Limit  int
	Offset int
}

// List returns a user's projects, most recently updated first.
func (s *ProjectService) List(ctx context.Context, userID uint, f ProjectFilter) ([]models.Project, int64, error) {
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	q := s.db.WithContext(ctx).Model(&models.Project{}).Where("user_id = ?", userID)
	if f.Status != "" && f.Status != "all" {
		q = q.Where("status = ?", f.Status)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		like := "%" + search + "%"
		q = q.Where("(title LIKE ? OR module LIKE ?)", like, like)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var projects []models.Project
	if err := q.Order("updated_at DESC, id DESC").Limit(f.Limit).Offset(f.Offset).Find(&projects).Error; err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

// Get returns a project owned by userID.
func (s *ProjectService) Get(ctx context.Context, userID, id uint) (*models.Project, error) {
	return findProject(s.db.WithContext(ctx), userID, id)
}

func findProject(tx *gorm.DB, userID, id uint) (*models.Project, error) {
	var p models.Project
	if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &p, nil
}

type ProjectInput struct {
	Title       *string
	Module      *string
	Description *string
	Status      *string
	Progress    *int
}

func (s *ProjectService) Create(ctx context.Context, userID uint, in ProjectInput) (*models.Project, error) {
	if in.Title == nil || utils.SanitizeInput(*in.Title) == "" {
		return nil, invalidf("title is required")
	}
	p := &models.Project{
		UserID: userID,
		Title:  utils.SanitizeInput(*in.Title),
		Status: models.ProjectStatusPlanning,
	}
	if in.Module != nil {
		p.Module = utils.SanitizeInput(*in.Module)
	}
	if in.Description != nil {
		d := strings.TrimSpace(*in.Description)
		p.Description = &d
	}
	if in.Status != nil {
		if !utils.OneOf(*in.Status, models.ProjectStatuses) {
			return nil, invalidf("unknown project status %q", *in.Status)
		}
		p.Status = *in.Status
	}
	if in.Progress != nil {
		p.Progress = *in.Progress
	}

	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	s.recount(ctx, userID)
	return p, nil
}

func (s *ProjectService) Update(ctx context.Context, userID, id uint, in ProjectInput) (*models.Project, error) {
	p, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		title := utils.SanitizeInput(*in.Title)
		if title == "" {
			return nil, invalidf("title cannot be empty")
		}
		p.Title = title
	}
	if in.Module != nil {
		p.Module = utils.SanitizeInput(*in.Module)
	}
	if in.Description != nil {
		d := strings.TrimSpace(*in.Description)
		p.Description = &d
	}
	if in.Status != nil {
		if !utils.OneOf(*in.Status, models.ProjectStatuses) {
			return nil, invalidf("unknown project status %q", *in.Status)
		}
		p.Status = *in.Status
	}
	if in.Progress != nil {
		p.Progress = *in.Progress
	}
	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// recount is best effort; counter drift is repaired on the next write.
func (s *ProjectService) recount(ctx context.Context, userID uint) {
	if _, err := s.users.RecountActivity(ctx, userID); err != nil {
		config.Log.Warn().Err(err).Uint("user_id", userID).Msg("failed to recount activity")
	}
}
