package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"research-tracker-api/config"
	"research-tracker-api/models"

	"gorm.io/gorm"
)

// DefaultPromotionLockName is the MySQL advisory lock shared by the CLI and
// the admin endpoint.
const DefaultPromotionLockName = "auto_promote_job"

var (
	ErrPromotionAlreadyRunning = errors.New("promotion batch already running")
)

type PromotionSummary struct {
	UsersProcessed  int               `json:"users"`
	UsersPromoted   int               `json:"promoted"`
	UsersWithErrors int               `json:"users_with_errors"`
	RunID           uint              `json:"run_id,omitempty"`
	DryRun          bool              `json:"dry_run"`
	Promotions      []PromotionResult `json:"promotions"`
}

type PromotionJobInput struct {
	UserIDs       []uint
	Limit         int
	TriggerSource string
	LockName      string
	DryRun        bool
	RecordRun     bool
}

// PromotionJobService evaluates every active researcher and applies the
// promotions their counters justify.
type PromotionJobService struct {
	db         *gorm.DB
	promotions *PromotionService
	runService *PromotionRunService
}

func NewPromotionJobService(db *gorm.DB) *PromotionJobService {
	if db == nil {
		db = config.DB
	}
	return &PromotionJobService{
		db:         db,
		promotions: NewPromotionService(db),
		runService: NewPromotionRunService(db),
	}
}

// WithPromotionService swaps the per-user promoter, mainly for tests.
func (s *PromotionJobService) WithPromotionService(p *PromotionService) *PromotionJobService {
	if p != nil {
		s.promotions = p
	}
	return s
}

func (s *PromotionJobService) RunForAll(ctx context.Context, input *PromotionJobInput) (*PromotionSummary, error) {
	if input == nil {
		return nil, errors.New("input is nil")
	}
	trigger := input.TriggerSource
	if trigger == "" {
		trigger = models.PromotionTriggerBatch
	}
	summary := &PromotionSummary{DryRun: input.DryRun, Promotions: []PromotionResult{}}

	release, err := s.acquireLock(ctx, input.LockName)
	if err != nil {
		return nil, err
	}
	if release != nil {
		defer func() {
			if relErr := release(); relErr != nil {
				config.Log.Error().Err(relErr).Str("lock", input.LockName).Msg("failed to release promotion lock")
			}
		}()
	}

	var run *models.PromotionRun
	if input.RecordRun {
		run, err = s.runService.Start(ctx, trigger, input.DryRun)
		if err != nil {
			return nil, err
		}
		summary.RunID = run.ID
	}

	var finalErr error
	if run != nil {
		defer func() {
			if finalErr != nil {
				if err := s.runService.MarkFailure(ctx, run.ID, summary, finalErr); err != nil {
					config.Log.Error().Err(err).Uint("run_id", run.ID).Msg("failed to mark promotion run failure")
				}
				return
			}
			if err := s.runService.MarkSuccess(ctx, run.ID, summary); err != nil {
				config.Log.Error().Err(err).Uint("run_id", run.ID).Msg("failed to mark promotion run success")
			}
		}()
	}

	query := s.db.WithContext(ctx).Model(&models.User{}).
		Select("id").
		Where("status = ?", models.UserStatusActive)
	if len(input.UserIDs) > 0 {
		query = query.Where("id IN ?", input.UserIDs)
	}
	if input.Limit > 0 {
		query = query.Limit(input.Limit)
	}

	var ids []uint
	if err := query.Order("id ASC").Pluck("id", &ids).Error; err != nil {
		finalErr = err
		return nil, err
	}

	var runID *uint
	if run != nil {
		runID = &run.ID
	}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			finalErr = err
			return nil, err
		}
		res, err := s.promotions.Promote(ctx, PromoteInput{
			UserID:        id,
			TriggerSource: trigger,
			RunID:         runID,
			DryRun:        input.DryRun,
		})
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				finalErr = err
				return nil, err
			}
			summary.UsersWithErrors++
			config.Log.Warn().Err(err).Uint("user_id", id).Msg("promotion failed")
			continue
		}
		summary.UsersProcessed++
		if res.Promoted {
			summary.UsersPromoted++
			summary.Promotions = append(summary.Promotions, *res)
		}
	}

	config.Log.Info().
		Str("trigger", trigger).
		Bool("dry_run", input.DryRun).
		Int("processed", summary.UsersProcessed).
		Int("promoted", summary.UsersPromoted).
		Int("errors", summary.UsersWithErrors).
		Msg("promotion batch finished")

	return summary, nil
}

func (s *PromotionJobService) acquireLock(ctx context.Context, lockName string) (func() error, error) {
	if strings.TrimSpace(lockName) == "" {
		return nil, nil
	}
	// GET_LOCK only exists on MySQL.
	if s.db.Dialector.Name() != "mysql" {
		return nil, nil
	}

	lockCtx := persistentContext(ctx)

	var ok int
	if err := s.db.WithContext(lockCtx).Raw("SELECT GET_LOCK(?, 0)", lockName).Scan(&ok).Error; err != nil {
		return nil, err
	}
	if ok != 1 {
		return nil, ErrPromotionAlreadyRunning
	}

	return func() error {
		var released int
		if err := s.db.WithContext(lockCtx).Raw("SELECT RELEASE_LOCK(?)", lockName).Scan(&released).Error; err != nil {
			return err
		}
		if released != 1 {
			return fmt.Errorf("release lock %q returned %d", lockName, released)
		}
		return nil
	}, nil
}
