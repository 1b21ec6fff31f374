package services

import (
	"context"
	"errors"
	"time"

	"research-tracker-api/config"
	"research-tracker-api/models"
	"research-tracker-api/utils"

	"gorm.io/gorm"
)

type ExperimentService struct {
	db *gorm.DB
}

func NewExperimentService(db *gorm.DB) *ExperimentService {
	if db == nil {
		db = config.DB
	}
	return &ExperimentService{db: db}
}

func (s *ExperimentService) List(ctx context.Context, userID uint, status string, limit int) ([]models.Experiment, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != "" && status != "all" {
		q = q.Where("status = ?", status)
	}
	var out []models.Experiment
	err := q.Order("id DESC").Limit(limit).Find(&out).Error
	return out, err
}

type ExperimentInput struct {
	Name      string
	Status    string
	ProjectID *uint
}

func (s *ExperimentService) Create(ctx context.Context, userID uint, in ExperimentInput) (*models.Experiment, error) {
	name := utils.SanitizeInput(in.Name)
	if name == "" {
		return nil, invalidf("name is required")
	}
	status := in.Status
	if status == "" {
		status = models.ExperimentStatusPlanned
	}
	if !utils.OneOf(status, models.ExperimentStatuses) {
		return nil, invalidf("unknown experiment status %q", status)
	}

	e := &models.Experiment{UserID: userID, Name: name, Status: status}
	if in.ProjectID != nil && *in.ProjectID != 0 {
		if _, err := findProject(s.db.WithContext(ctx), userID, *in.ProjectID); err != nil {
			if errors.Is(err, ErrProjectNotFound) {
				return nil, invalidf("project %d does not exist", *in.ProjectID)
			}
			return nil, err
		}
		pid := *in.ProjectID
		e.ProjectID = &pid
	}

	now := time.Now()
	switch status {
	case models.ExperimentStatusRunning:
		e.StartedAt = &now
	case models.ExperimentStatusCompleted, models.ExperimentStatusFailed:
		e.StartedAt = &now
		e.CompletedAt = &now
	}

	if err := s.db.WithContext(ctx).Create(e).Error; err != nil {
		return nil, err
	}
	return e, nil
}
