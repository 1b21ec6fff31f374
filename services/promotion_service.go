package services

import (
	"context"
	"errors"

	"research-tracker-api/config"
	"research-tracker-api/levels"
	"research-tracker-api/models"

	"gorm.io/gorm"
)

// ErrPromotionConflict means researcher_level changed between read and write.
var ErrPromotionConflict = errors.New("researcher level changed concurrently")

// PromotionDecision is the pure outcome of evaluating a stored user.
type PromotionDecision struct {
	UserID        uint            `json:"userId"`
	StoredLevel   string          `json:"storedLevel"`
	CurrentLevel  levels.Level    `json:"currentLevel"`
	TargetLevel   levels.Level    `json:"targetLevel"`
	Promotable    bool            `json:"promotable"`
	Progress      levels.Progress `json:"progress"`
	LevelMismatch bool            `json:"levelMismatch"`
}

// Decide evaluates u against the level table without touching storage.
// LevelMismatch flags a stored level that is unknown or above what the
// counters justify; such a level is reported, never rewritten downward.
func Decide(u models.User) PromotionDecision {
	profile := u.LevelProfile()
	current := levels.Describe(profile.CurrentLevel).Level
	target := levels.PromotionTarget(profile)

	_, known := levels.Parse(u.ResearcherLevel)
	fromCounters := profile
	fromCounters.CurrentLevel = levels.Student
	justified := levels.PromotionTarget(fromCounters)

	return PromotionDecision{
		UserID:        u.ID,
		StoredLevel:   u.ResearcherLevel,
		CurrentLevel:  current,
		TargetLevel:   target,
		Promotable:    levels.Rank(target) > levels.Rank(current),
		Progress:      levels.Evaluate(profile),
		LevelMismatch: !known || levels.Rank(current) > levels.Rank(justified),
	}
}

type PromoteInput struct {
	UserID        uint
	TriggerSource string
	ActorID       *uint
	RunID         *uint
	DryRun        bool
}

type PromotionResult struct {
	UserID        uint         `json:"userId"`
	PreviousLevel levels.Level `json:"previousLevel"`
	NewLevel      levels.Level `json:"newLevel"`
	Promoted      bool         `json:"promoted"`
}

type PromotionService struct {
	db       *gorm.DB
	notifier Notifier
	cache    StatsCache
}

func NewPromotionService(db *gorm.DB) *PromotionService {
	if db == nil {
		db = config.DB
	}
	return &PromotionService{
		db:       db,
		notifier: DefaultNotifier(),
		cache:    DefaultStatsCache(),
	}
}

func (s *PromotionService) WithNotifier(n Notifier) *PromotionService {
	if n == nil {
		n = NopNotifier{}
	}
	s.notifier = n
	return s
}

func (s *PromotionService) WithCache(c StatsCache) *PromotionService {
	if c == nil {
		c = NopStatsCache{}
	}
	s.cache = c
	return s
}

// Preview loads a user and returns the decision without applying it.
func (s *PromotionService) Preview(ctx context.Context, userID uint) (*PromotionDecision, error) {
	user, err := findUser(s.db.WithContext(ctx), userID)
	if err != nil {
		return nil, err
	}
	d := Decide(*user)
	return &d, nil
}

// Promote applies the decision for one user. The level update and the audit
// row are written in one transaction; the update only matches while the
// stored level is still the one that was evaluated.
func (s *PromotionService) Promote(ctx context.Context, in PromoteInput) (*PromotionResult, error) {
	if in.UserID == 0 {
		return nil, invalidf("user_id is required")
	}
	trigger := in.TriggerSource
	if trigger == "" {
		trigger = models.PromotionTriggerAdmin
	}

	var (
		result   *PromotionResult
		promoted models.User
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := findUser(tx, in.UserID)
		if err != nil {
			return err
		}
		d := Decide(*user)
		if d.LevelMismatch {
			config.Log.Warn().
				Uint("user_id", user.ID).
				Str("stored_level", user.ResearcherLevel).
				Int("projects", user.ProjectsCount).
				Int("papers", user.PapersCount).
				Int("citations", user.CitationsCount).
				Msg("stored researcher level does not match level thresholds")
		}

		result = &PromotionResult{
			UserID:        user.ID,
			PreviousLevel: d.CurrentLevel,
			NewLevel:      d.CurrentLevel,
		}
		if !d.Promotable {
			return nil
		}
		result.NewLevel = d.TargetLevel
		result.Promoted = true
		if in.DryRun {
			return nil
		}

		res := tx.Model(&models.User{}).
			Where("id = ? AND researcher_level = ?", user.ID, user.ResearcherLevel).
			Update("researcher_level", string(d.TargetLevel))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPromotionConflict
		}

		record := &models.LevelPromotion{
			UserID:        user.ID,
			FromLevel:     user.ResearcherLevel,
			ToLevel:       string(d.TargetLevel),
			TriggerSource: trigger,
			ActorID:       in.ActorID,
			RunID:         in.RunID,
		}
		if err := tx.Create(record).Error; err != nil {
			return err
		}
		promoted = *user
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Promoted && !in.DryRun {
		config.Log.Info().
			Uint("user_id", result.UserID).
			Str("from", string(result.PreviousLevel)).
			Str("to", string(result.NewLevel)).
			Str("trigger", trigger).
			Msg("researcher promoted")

		if err := s.cache.Invalidate(ctx, AdminStatsCacheKey); err != nil {
			config.Log.Warn().Err(err).Msg("failed to invalidate admin stats cache")
		}
		s.notify(ctx, promoted, result.PreviousLevel, result.NewLevel)
	}
	return result, nil
}

func (s *PromotionService) notify(ctx context.Context, user models.User, from, to levels.Level) {
	if s.notifier == nil {
		return
	}
	bg := persistentContext(ctx)
	go func() {
		if err := s.notifier.NotifyPromotion(bg, user, from, to); err != nil {
			config.Log.Warn().Err(err).Uint("user_id", user.ID).Msg("failed to send promotion notification")
		}
	}()
}

// History lists level changes for a user, newest first.
func (s *PromotionService) History(ctx context.Context, userID uint, limit int) ([]models.LevelPromotion, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var rows []models.LevelPromotion
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
