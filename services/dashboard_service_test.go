package services

import (
	"context"
	"testing"
	"time"

	"research-tracker-api/levels"
	"research-tracker-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCache struct {
	values map[string]interface{}
	sets   int
}

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	v, ok := c.values[key]
	if !ok {
		return false, nil
	}
	*(dest.(*AdminStats)) = *(v.(*AdminStats))
	return true, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if c.values == nil {
		c.values = map[string]interface{}{}
	}
	c.values[key] = value
	c.sets++
	return nil
}

func (c *memoryCache) Invalidate(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.values, k)
	}
	return nil
}

func TestFoldLevelDistribution(t *testing.T) {
	got := FoldLevelDistribution(map[string]int64{
		"student": 2,
		"gold":    1,
		"":        4,
		"emerald": 1,
		"Silver":  3,
	})

	require.Len(t, got, len(levels.All()))
	want := map[levels.Level]int64{
		levels.Student: 7,
		levels.Silver:  3,
		levels.Gold:    1,
	}
	for i, row := range got {
		assert.Equal(t, levels.All()[i].Level, row.Level)
		assert.Equal(t, want[row.Level], row.Count, row.Level)
	}
	assert.Equal(t, "Student Researcher", got[0].DisplayName)
}

func TestUserStats(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db, models.User{})
	other := seedUser(t, db, models.User{})
	ctx := context.Background()

	require.NoError(t, db.Create(&[]models.Project{
		{UserID: u.ID, Title: "A", Status: models.ProjectStatusActive},
		{UserID: u.ID, Title: "B", Status: models.ProjectStatusActive},
		{UserID: u.ID, Title: "C", Status: models.ProjectStatusCompleted},
		{UserID: other.ID, Title: "D", Status: models.ProjectStatusActive},
	}).Error)
	require.NoError(t, db.Create(&[]models.Paper{
		{UserID: u.ID, Title: "P1", Status: models.PaperStatusPublished, Citations: 7},
		{UserID: u.ID, Title: "P2", Status: models.PaperStatusDraft, Citations: 2},
		{UserID: other.ID, Title: "P3", Status: models.PaperStatusPublished, Citations: 40},
	}).Error)
	require.NoError(t, db.Create(&[]models.Experiment{
		{UserID: u.ID, Name: "E1", Status: models.ExperimentStatusRunning},
		{UserID: u.ID, Name: "E2", Status: models.ExperimentStatusCompleted},
	}).Error)

	stats, err := NewDashboardService(db).WithCache(NopStatsCache{}).UserStats(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, UserStats{ActiveProjects: 2, PublishedPapers: 1, RunningExperiments: 1, TotalCitations: 9}, *stats)
}

func TestAdminStatsUsesCache(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, models.User{ResearcherLevel: "gold"})
	seedUser(t, db, models.User{ResearcherLevel: "student", Status: models.UserStatusInactive})
	seedUser(t, db, models.User{ResearcherLevel: "mystery"})

	cache := &memoryCache{}
	svc := NewDashboardService(db).WithCache(cache)
	ctx := context.Background()

	stats, err := svc.AdminStats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.Overview.TotalUsers)
	assert.EqualValues(t, 2, stats.Overview.ActiveUsers)
	assert.EqualValues(t, 2, stats.LevelDistribution[0].Count)
	assert.EqualValues(t, 1, stats.LevelDistribution[levels.Rank(levels.Gold)].Count)
	assert.Equal(t, 1, cache.sets)

	seedUser(t, db, models.User{})
	again, err := svc.AdminStats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, again.Overview.TotalUsers, "served from cache")

	require.NoError(t, cache.Invalidate(ctx, AdminStatsCacheKey))
	fresh, err := svc.AdminStats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 4, fresh.Overview.TotalUsers)
}
