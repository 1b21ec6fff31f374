package services

import (
	"context"
	"time"

	"research-tracker-api/config"
	"research-tracker-api/levels"
	"research-tracker-api/models"

	"gorm.io/gorm"
)

type UserStats struct {
	ActiveProjects     int64 `json:"activeProjects"`
	PublishedPapers    int64 `json:"publishedPapers"`
	RunningExperiments int64 `json:"runningExperiments"`
	TotalCitations     int64 `json:"totalCitations"`
}

type AdminOverview struct {
	TotalUsers    int64 `json:"totalUsers"`
	ActiveUsers   int64 `json:"activeUsers"`
	TotalProjects int64 `json:"totalProjects"`
	TotalPapers   int64 `json:"totalPapers"`
}

type LevelCount struct {
	Level       levels.Level `json:"researcher_level"`
	DisplayName string       `json:"displayName"`
	Count       int64        `json:"count"`
}

type AdminStats struct {
	Overview          AdminOverview `json:"overview"`
	LevelDistribution []LevelCount  `json:"levelDistribution"`
	GeneratedAt       time.Time     `json:"generatedAt"`
}

type DashboardService struct {
	db    *gorm.DB
	cache StatsCache
	ttl   time.Duration
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	if db == nil {
		db = config.DB
	}
	ttl := time.Minute
	if config.AppConfig != nil && config.AppConfig.StatsCacheTTL > 0 {
		ttl = config.AppConfig.StatsCacheTTL
	}
	return &DashboardService{db: db, cache: DefaultStatsCache(), ttl: ttl}
}

func (s *DashboardService) WithCache(c StatsCache) *DashboardService {
	if c == nil {
		c = NopStatsCache{}
	}
	s.cache = c
	return s
}

func (s *DashboardService) UserStats(ctx context.Context, userID uint) (*UserStats, error) {
	db := s.db.WithContext(ctx)
	stats := &UserStats{}

	if err := db.Model(&models.Project{}).
		Where("user_id = ? AND status = ?", userID, models.ProjectStatusActive).
		Count(&stats.ActiveProjects).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Paper{}).
		Where("user_id = ? AND status = ?", userID, models.PaperStatusPublished).
		Count(&stats.PublishedPapers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Experiment{}).
		Where("user_id = ? AND status = ?", userID, models.ExperimentStatusRunning).
		Count(&stats.RunningExperiments).Error; err != nil {
		return nil, err
	}

	var citations struct{ Total int64 }
	if err := db.Model(&models.Paper{}).
		Select("COALESCE(SUM(citations), 0) AS total").
		Where("user_id = ?", userID).
		Scan(&citations).Error; err != nil {
		return nil, err
	}
	stats.TotalCitations = citations.Total
	return stats, nil
}

// AdminStats serves from the stats cache when possible. Cache failures are
// logged and fall through to the database.
func (s *DashboardService) AdminStats(ctx context.Context) (*AdminStats, error) {
	var cached AdminStats
	found, err := s.cache.Get(ctx, AdminStatsCacheKey, &cached)
	if err != nil {
		config.Log.Warn().Err(err).Msg("admin stats cache read failed")
	}
	if found {
		return &cached, nil
	}

	stats, err := s.computeAdminStats(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, AdminStatsCacheKey, stats, s.ttl); err != nil {
		config.Log.Warn().Err(err).Msg("admin stats cache write failed")
	}
	return stats, nil
}

type levelRow struct {
	ResearcherLevel string
	Total           int64
}

func (s *DashboardService) computeAdminStats(ctx context.Context) (*AdminStats, error) {
	db := s.db.WithContext(ctx)
	out := &AdminStats{GeneratedAt: time.Now().UTC()}

	if err := db.Model(&models.User{}).Count(&out.Overview.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.User{}).
		Where("status = ?", models.UserStatusActive).
		Count(&out.Overview.ActiveUsers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Project{}).Count(&out.Overview.TotalProjects).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Paper{}).Count(&out.Overview.TotalPapers).Error; err != nil {
		return nil, err
	}

	var rows []levelRow
	if err := db.Model(&models.User{}).
		Select("researcher_level, COUNT(*) AS total").
		Group("researcher_level").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	raw := make(map[string]int64, len(rows))
	for _, r := range rows {
		raw[r.ResearcherLevel] += r.Total
	}
	out.LevelDistribution = FoldLevelDistribution(raw)
	return out, nil
}

// FoldLevelDistribution maps raw stored level counts onto every defined
// level in rank order. Unknown values are counted as student.
func FoldLevelDistribution(raw map[string]int64) []LevelCount {
	byLevel := make(map[levels.Level]int64, len(raw))
	for stored, n := range raw {
		byLevel[levels.Describe(levels.Level(stored)).Level] += n
	}
	defs := levels.All()
	out := make([]LevelCount, 0, len(defs))
	for _, d := range defs {
		out = append(out, LevelCount{Level: d.Level, DisplayName: d.DisplayName, Count: byLevel[d.Level]})
	}
	return out
}
