package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"research-tracker-api/config"
	"research-tracker-api/models"
	"research-tracker-api/utils"

	"gorm.io/gorm"
)

var ErrPaperNotFound = errors.New("paper not found")

type PaperService struct {
	db    *gorm.DB
	users *UserService
}

func NewPaperService(db *gorm.DB) *PaperService {
	if db == nil {
		db = config.DB
	}
	return &PaperService{db: db, users: NewUserService(db)}
}

func (s *PaperService) WithCache(c StatsCache) *PaperService {
	s.users.WithCache(c)
	return s
}

type PaperFilter struct {
	Status string
	Search string
	Limit  int
	Offset int
}

func (s *PaperService) List(ctx context.Context, userID uint, f PaperFilter) ([]models.Paper, int64, error) {
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	q := s.db.WithContext(ctx).Model(&models.Paper{}).Where("user_id = ?", userID)
	if f.Status != "" && f.Status != "all" {
		q = q.Where("status = ?", f.Status)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		like := "%" + search + "%"
		q = q.Where("(title LIKE ? OR authors LIKE ? OR journal LIKE ?)", like, like, like)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var papers []models.Paper
	if err := q.Preload("Project").Order("created_at DESC, id DESC").Limit(f.Limit).Offset(f.Offset).Find(&papers).Error; err != nil {
		return nil, 0, err
	}
	for i := range papers {
		if papers[i].Project != nil {
			papers[i].ProjectTitle = papers[i].Project.Title
		}
	}
	return papers, total, nil
}

type PaperInput struct {
	Title           *string
	Authors         []string
	Journal         *string
	Abstract        *string
	DOI             *string
	Status          *string
	Citations       *int
	ProjectID       *uint
	PublicationDate *string // YYYY-MM-DD
}

func (s *PaperService) Create(ctx context.Context, userID uint, in PaperInput) (*models.Paper, error) {
	if in.Title == nil || utils.SanitizeInput(*in.Title) == "" {
		return nil, invalidf("title is required")
	}
	p := &models.Paper{UserID: userID, Status: models.PaperStatusDraft}
	p.SetAuthors(in.Authors)
	if err := s.apply(ctx, userID, p, in); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	s.recount(ctx, userID)
	return p, nil
}

func (s *PaperService) Update(ctx context.Context, userID, id uint, in PaperInput) (*models.Paper, error) {
	var p models.Paper
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaperNotFound
		}
		return nil, err
	}
	if in.Authors != nil {
		p.SetAuthors(in.Authors)
	}
	if err := s.apply(ctx, userID, &p, in); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Save(&p).Error; err != nil {
		return nil, err
	}
	s.recount(ctx, userID)
	return &p, nil
}

func (s *PaperService) apply(ctx context.Context, userID uint, p *models.Paper, in PaperInput) error {
	if in.Title != nil {
		title := utils.SanitizeInput(*in.Title)
		if title == "" {
			return invalidf("title cannot be empty")
		}
		p.Title = title
	}
	if in.Journal != nil {
		j := utils.SanitizeInput(*in.Journal)
		p.Journal = &j
	}
	if in.Abstract != nil {
		a := strings.TrimSpace(*in.Abstract)
		p.Abstract = &a
	}
	if in.DOI != nil {
		doi := strings.TrimSpace(*in.DOI)
		if doi == "" {
			p.DOI = nil
		} else {
			if !utils.ValidateDOI(doi) {
				return invalidf("invalid doi %q", doi)
			}
			p.DOI = &doi
		}
	}
	if in.Status != nil {
		if !utils.OneOf(*in.Status, models.PaperStatuses) {
			return invalidf("unknown paper status %q", *in.Status)
		}
		p.Status = *in.Status
	}
	if in.Citations != nil {
		if *in.Citations < 0 {
			return invalidf("citations cannot be negative")
		}
		p.Citations = *in.Citations
	}
	if in.ProjectID != nil {
		if *in.ProjectID == 0 {
			p.ProjectID = nil
			p.ProjectTitle = ""
		} else {
			project, err := findProject(s.db.WithContext(ctx), userID, *in.ProjectID)
			if err != nil {
				if errors.Is(err, ErrProjectNotFound) {
					return invalidf("project %d does not exist", *in.ProjectID)
				}
				return err
			}
			pid := *in.ProjectID
			p.ProjectID = &pid
			p.ProjectTitle = project.Title
		}
	} else if p.ProjectID != nil {
		if project, err := findProject(s.db.WithContext(ctx), userID, *p.ProjectID); err == nil {
			p.ProjectTitle = project.Title
		}
	}
	if in.PublicationDate != nil {
		raw := strings.TrimSpace(*in.PublicationDate)
		if raw == "" {
			p.PublicationDate = nil
		} else {
			d, err := time.Parse("2006-01-02", raw)
			if err != nil {
				return invalidf("publication_date must be YYYY-MM-DD")
			}
			p.PublicationDate = &d
		}
	}
	return nil
}

func (s *PaperService) recount(ctx context.Context, userID uint) {
	if _, err := s.users.RecountActivity(ctx, userID); err != nil {
		config.Log.Warn().Err(err).Uint("user_id", userID).Msg("failed to recount activity")
	}
}
