package services

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"research-tracker-api/levels"
	"research-tracker-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLockName = "auto_promote_job"

var (
	getLockPattern     = regexp.MustCompile(`SELECT GET_LOCK`)
	releaseLockPattern = regexp.MustCompile(`SELECT RELEASE_LOCK`)
	activeUsersPattern = regexp.MustCompile("SELECT .*id.* FROM `users`")
)

func TestRunForAllReturnsAlreadyRunningWhenLockHeld(t *testing.T) {
	gormDB, state := newScriptedGormDB(t, []*queryStep{
		{
			pattern: getLockPattern,
			args:    []driver.Value{testLockName},
			columns: []string{"status"},
			rows:    [][]driver.Value{{int64(0)}},
		},
	})

	_, err := NewPromotionJobService(gormDB).RunForAll(context.Background(), &PromotionJobInput{LockName: testLockName})
	if !errors.Is(err, ErrPromotionAlreadyRunning) {
		t.Fatalf("expected ErrPromotionAlreadyRunning, got %v", err)
	}
	if n := state.remaining(); n != 0 {
		t.Fatalf("unmet expectations: %d", n)
	}
}

func TestRunForAllReleasesLockWhenContextCanceled(t *testing.T) {
	lockSteps := func(users *queryStep) []*queryStep {
		return []*queryStep{
			{pattern: getLockPattern, args: []driver.Value{testLockName}, columns: []string{"status"}, rows: [][]driver.Value{{int64(1)}}},
			users,
			{pattern: releaseLockPattern, args: []driver.Value{testLockName}, columns: []string{"status"}, rows: [][]driver.Value{{int64(1)}}},
		}
	}
	steps := append(
		lockSteps(&queryStep{
			pattern: activeUsersPattern,
			args:    []driver.Value{models.UserStatusActive},
			delay:   50 * time.Millisecond,
			columns: []string{"id"},
			err:     context.Canceled,
		}),
		lockSteps(&queryStep{
			pattern: activeUsersPattern,
			args:    []driver.Value{models.UserStatusActive},
			columns: []string{"id"},
		})...,
	)
	gormDB, state := newScriptedGormDB(t, steps)
	service := NewPromotionJobService(gormDB)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, runErr := service.RunForAll(ctx, &PromotionJobInput{LockName: testLockName})
		errCh <- runErr
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}

	summary, err := service.RunForAll(context.Background(), &PromotionJobInput{LockName: testLockName})
	if err != nil {
		t.Fatalf("unexpected error on second run: %v", err)
	}
	if summary == nil || summary.UsersProcessed != 0 {
		t.Fatalf("expected empty summary, got %+v", summary)
	}
	if n := state.remaining(); n != 0 {
		t.Fatalf("unmet expectations: %d", n)
	}
}

func TestRunForAllPromotesActiveUsersAndRecordsRun(t *testing.T) {
	db := newTestDB(t)
	eligible := seedUser(t, db, models.User{ProjectsCount: 5, PapersCount: 3, CitationsCount: 10})
	idle := seedUser(t, db, models.User{ProjectsCount: 1})
	seedUser(t, db, models.User{Status: models.UserStatusSuspended, ProjectsCount: 50, PapersCount: 25, CitationsCount: 500})

	promoter := NewPromotionService(db).WithNotifier(NopNotifier{}).WithCache(NopStatsCache{})
	job := NewPromotionJobService(db).WithPromotionService(promoter)

	summary, err := job.RunForAll(context.Background(), &PromotionJobInput{RecordRun: true})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.UsersProcessed)
	assert.Equal(t, 1, summary.UsersPromoted)
	assert.Zero(t, summary.UsersWithErrors)
	require.Len(t, summary.Promotions, 1)
	assert.Equal(t, eligible.ID, summary.Promotions[0].UserID)
	assert.Equal(t, levels.Silver, summary.Promotions[0].NewLevel)

	var stored models.User
	require.NoError(t, db.First(&stored, idle.ID).Error)
	assert.Equal(t, "student", stored.ResearcherLevel)

	run, err := NewPromotionRunService(db).Get(context.Background(), summary.RunID)
	require.NoError(t, err)
	assert.Equal(t, models.PromotionRunStatusSuccess, run.Status)
	assert.Equal(t, models.PromotionTriggerBatch, run.TriggerSource)
	assert.EqualValues(t, 2, run.UsersProcessed)
	assert.EqualValues(t, 1, run.UsersPromoted)
	assert.NotNil(t, run.FinishedAt)
	assert.NotEmpty(t, run.RunKey)

	var audit models.LevelPromotion
	require.NoError(t, db.Where("user_id = ?", eligible.ID).First(&audit).Error)
	require.NotNil(t, audit.RunID)
	assert.Equal(t, summary.RunID, *audit.RunID)
	assert.Equal(t, models.PromotionTriggerBatch, audit.TriggerSource)
}

func TestRunForAllDryRunHonoursUserIDs(t *testing.T) {
	db := newTestDB(t)
	a := seedUser(t, db, models.User{ProjectsCount: 3, PapersCount: 1})
	seedUser(t, db, models.User{ProjectsCount: 3, PapersCount: 1})

	promoter := NewPromotionService(db).WithNotifier(NopNotifier{}).WithCache(NopStatsCache{})
	job := NewPromotionJobService(db).WithPromotionService(promoter)

	summary, err := job.RunForAll(context.Background(), &PromotionJobInput{UserIDs: []uint{a.ID}, DryRun: true})
	require.NoError(t, err)
	assert.True(t, summary.DryRun)
	assert.Equal(t, 1, summary.UsersProcessed)
	assert.Equal(t, 1, summary.UsersPromoted)

	var promotedCount int64
	require.NoError(t, db.Model(&models.User{}).Where("researcher_level <> ?", "student").Count(&promotedCount).Error)
	assert.Zero(t, promotedCount)
}

func TestRunForAllRecordsDryRun(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, models.User{ProjectsCount: 5, PapersCount: 3, CitationsCount: 10})

	promoter := NewPromotionService(db).WithNotifier(NopNotifier{}).WithCache(NopStatsCache{})
	job := NewPromotionJobService(db).WithPromotionService(promoter)

	summary, err := job.RunForAll(context.Background(), &PromotionJobInput{TriggerSource: "cli", DryRun: true, RecordRun: true})
	require.NoError(t, err)
	require.NotZero(t, summary.RunID)
	assert.Equal(t, 1, summary.UsersPromoted)

	var run models.PromotionRun
	require.NoError(t, db.First(&run, summary.RunID).Error)
	assert.True(t, run.DryRun)
	assert.Equal(t, "cli", run.TriggerSource)
	assert.Equal(t, models.PromotionRunStatusSuccess, run.Status)

	var audit int64
	require.NoError(t, db.Model(&models.LevelPromotion{}).Count(&audit).Error)
	assert.Zero(t, audit)
}

func TestPromotionRunServiceListAndFailure(t *testing.T) {
	db := newTestDB(t)
	svc := NewPromotionRunService(db)
	ctx := context.Background()

	first, err := svc.Start(ctx, "", false)
	require.NoError(t, err)
	assert.Equal(t, "unknown", first.TriggerSource)
	second, err := svc.Start(ctx, "cli", true)
	require.NoError(t, err)

	require.NoError(t, svc.MarkFailure(ctx, second.ID, &PromotionSummary{UsersWithErrors: 3}, errors.New("boom")))
	assert.ErrorIs(t, svc.MarkSuccess(ctx, 9999, nil), ErrPromotionRunNotFound)

	runs, total, err := svc.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, runs, 2)
	assert.Equal(t, second.ID, runs[0].ID)
	assert.Equal(t, models.PromotionRunStatusFailed, runs[0].Status)
	require.NotNil(t, runs[0].ErrorMessage)
	assert.Equal(t, "boom", *runs[0].ErrorMessage)
	assert.EqualValues(t, 3, runs[0].UsersWithErrors)
	assert.True(t, runs[0].DryRun)
}
