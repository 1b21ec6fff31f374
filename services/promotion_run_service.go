package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"research-tracker-api/config"
	"research-tracker-api/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrPromotionRunNotFound = errors.New("promotion run not found")
)

type PromotionRunService struct {
	db *gorm.DB
}

func NewPromotionRunService(db *gorm.DB) *PromotionRunService {
	if db == nil {
		db = config.DB
	}
	return &PromotionRunService{db: db}
}

func (s *PromotionRunService) Start(ctx context.Context, trigger string, dryRun bool) (*models.PromotionRun, error) {
	if trigger == "" {
		trigger = "unknown"
	}
	run := &models.PromotionRun{
		RunKey:        uuid.NewString(),
		TriggerSource: trigger,
		Status:        models.PromotionRunStatusRunning,
		DryRun:        dryRun,
	}
	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

func (s *PromotionRunService) MarkSuccess(ctx context.Context, runID uint, summary *PromotionSummary) error {
	return s.finish(ctx, runID, models.PromotionRunStatusSuccess, summary, nil)
}

func (s *PromotionRunService) MarkFailure(ctx context.Context, runID uint, summary *PromotionSummary, err error) error {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return s.finish(ctx, runID, models.PromotionRunStatusFailed, summary, &msg)
}

func (s *PromotionRunService) finish(ctx context.Context, runID uint, status string, summary *PromotionSummary, errMsg *string) error {
	updates := map[string]interface{}{
		"status":      status,
		"finished_at": time.Now(),
	}
	if summary != nil {
		updates["users_processed"] = summary.UsersProcessed
		updates["users_promoted"] = summary.UsersPromoted
		updates["users_with_errors"] = summary.UsersWithErrors
	}
	if errMsg != nil {
		if len(*errMsg) > 1000 {
			updates["error_message"] = fmt.Sprintf("%s...", (*errMsg)[:997])
		} else {
			updates["error_message"] = *errMsg
		}
	}
	res := s.db.WithContext(persistentContext(ctx)).Model(&models.PromotionRun{}).Where("id = ?", runID).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPromotionRunNotFound
	}
	return nil
}

// List returns the most recent runs first.
func (s *PromotionRunService) List(ctx context.Context, limit, offset int) ([]models.PromotionRun, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	q := s.db.WithContext(ctx).Model(&models.PromotionRun{}).Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var runs []models.PromotionRun
	if err := q.Order("id DESC").Limit(limit).Offset(offset).Find(&runs).Error; err != nil {
		return nil, 0, err
	}
	return runs, total, nil
}

func (s *PromotionRunService) Get(ctx context.Context, id uint) (*models.PromotionRun, error) {
	var run models.PromotionRun
	if err := s.db.WithContext(ctx).First(&run, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPromotionRunNotFound
		}
		return nil, err
	}
	return &run, nil
}
