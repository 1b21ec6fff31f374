package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"research-tracker-api/config"
	"research-tracker-api/levels"
	"research-tracker-api/models"
	"research-tracker-api/utils"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidInput wraps every validation failure returned by the services.
	ErrInvalidInput = errors.New("invalid input")
)

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

type UserService struct {
	db    *gorm.DB
	cache StatsCache
}

func NewUserService(db *gorm.DB) *UserService {
	if db == nil {
		db = config.DB
	}
	return &UserService{db: db, cache: DefaultStatsCache()}
}

func (s *UserService) WithCache(c StatsCache) *UserService {
	if c == nil {
		c = NopStatsCache{}
	}
	s.cache = c
	return s
}

type UserFilter struct {
	Search string
	Role   string
	Status string
	Level  string
	Limit  int
	Offset int
}

func (s *UserService) List(ctx context.Context, f UserFilter) ([]models.User, int64, error) {
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 100
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	q := s.db.WithContext(ctx).Model(&models.User{})
	if search := strings.TrimSpace(f.Search); search != "" {
		like := "%" + search + "%"
		q = q.Where("(name LIKE ? OR email LIKE ? OR institution LIKE ?)", like, like, like)
	}
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Level != "" {
		q = q.Where("researcher_level = ?", f.Level)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	if err := q.Order("id ASC").Limit(f.Limit).Offset(f.Offset).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	return findUser(s.db.WithContext(ctx), id)
}

func findUser(tx *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	if err := tx.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

type ProfileUpdate struct {
	Name          *string
	Institution   *string
	ResearchField *string
}

// UpdateProfile changes the self-service fields of a profile.
func (s *UserService) UpdateProfile(ctx context.Context, id uint, in ProfileUpdate) (*models.User, error) {
	updates := map[string]interface{}{}
	if in.Name != nil {
		name := utils.SanitizeInput(*in.Name)
		if name == "" {
			return nil, invalidf("name cannot be empty")
		}
		updates["name"] = name
	}
	if in.Institution != nil {
		updates["institution"] = utils.SanitizeInput(*in.Institution)
	}
	if in.ResearchField != nil {
		field := utils.SanitizeInput(*in.ResearchField)
		if field != "" && !utils.OneOf(field, utils.ResearchFields) {
			return nil, invalidf("unknown research_field %q", field)
		}
		updates["research_field"] = field
	}
	return s.applyUpdates(ctx, id, updates)
}

type AdminUserUpdate struct {
	Name            *string
	Institution     *string
	Role            *string
	Status          *string
	ResearcherLevel *string
	ActorID         *uint
}

// AdminUpdate applies an administrator edit. A researcher_level change is a
// manual override and is recorded in level_promotions.
func (s *UserService) AdminUpdate(ctx context.Context, id uint, in AdminUserUpdate) (*models.User, error) {
	updates := map[string]interface{}{}
	if in.Name != nil {
		name := utils.SanitizeInput(*in.Name)
		if name == "" {
			return nil, invalidf("name cannot be empty")
		}
		updates["name"] = name
	}
	if in.Institution != nil {
		updates["institution"] = utils.SanitizeInput(*in.Institution)
	}
	if in.Role != nil {
		if !utils.OneOf(*in.Role, models.UserRoles) {
			return nil, invalidf("unknown role %q", *in.Role)
		}
		updates["role"] = *in.Role
	}
	if in.Status != nil {
		if !utils.OneOf(*in.Status, models.UserStatuses) {
			return nil, invalidf("unknown status %q", *in.Status)
		}
		updates["status"] = *in.Status
	}

	var newLevel levels.Level
	if in.ResearcherLevel != nil {
		parsed, ok := levels.Parse(*in.ResearcherLevel)
		if !ok {
			return nil, invalidf("unknown researcher_level %q", *in.ResearcherLevel)
		}
		newLevel = parsed
		updates["researcher_level"] = string(parsed)
	}

	if len(updates) == 0 {
		return s.Get(ctx, id)
	}

	var out *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := findUser(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Model(user).Updates(updates).Error; err != nil {
			return err
		}
		if newLevel != "" && string(newLevel) != user.ResearcherLevel {
			change := &models.LevelPromotion{
				UserID:        id,
				FromLevel:     user.ResearcherLevel,
				ToLevel:       string(newLevel),
				TriggerSource: models.PromotionTriggerManual,
				ActorID:       in.ActorID,
			}
			if err := tx.Create(change).Error; err != nil {
				return err
			}
		}
		out, err = findUser(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidateAdminStats(ctx)
	return out, nil
}

func (s *UserService) invalidateAdminStats(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, AdminStatsCacheKey); err != nil {
		config.Log.Warn().Err(err).Msg("failed to invalidate admin stats cache")
	}
}

func (s *UserService) applyUpdates(ctx context.Context, id uint, updates map[string]interface{}) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return user, nil
	}
	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// RecountActivity recomputes the denormalized counters on users from the
// projects and papers tables: every live project, published papers, and the
// citations of all papers.
func (s *UserService) RecountActivity(ctx context.Context, id uint) (*models.User, error) {
	db := s.db.WithContext(ctx)
	user, err := findUser(db, id)
	if err != nil {
		return nil, err
	}

	var projects int64
	if err := db.Model(&models.Project{}).Where("user_id = ?", id).Count(&projects).Error; err != nil {
		return nil, fmt.Errorf("count projects: %w", err)
	}

	var papers int64
	if err := db.Model(&models.Paper{}).
		Where("user_id = ? AND status = ?", id, models.PaperStatusPublished).
		Count(&papers).Error; err != nil {
		return nil, fmt.Errorf("count papers: %w", err)
	}

	var citations struct {
		Total int64
	}
	if err := db.Model(&models.Paper{}).
		Select("COALESCE(SUM(citations), 0) AS total").
		Where("user_id = ?", id).
		Scan(&citations).Error; err != nil {
		return nil, fmt.Errorf("sum citations: %w", err)
	}

	updates := map[string]interface{}{
		"projects_count":  projects,
		"papers_count":    papers,
		"citations_count": citations.Total,
	}
	if err := db.Model(user).Updates(updates).Error; err != nil {
		return nil, err
	}
	// project and paper totals feed the admin overview
	s.invalidateAdminStats(ctx)
	return findUser(db, id)
}
