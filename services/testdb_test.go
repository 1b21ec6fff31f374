package services

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"research-tracker-api/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

var seedSeq atomic.Int64

func seedUser(t *testing.T, db *gorm.DB, u models.User) models.User {
	t.Helper()
	if u.Email == "" {
		u.Email = fmt.Sprintf("user%d@example.org", seedSeq.Add(1))
	}
	if u.Name == "" {
		u.Name = "Researcher"
	}
	if u.ResearcherLevel == "" {
		u.ResearcherLevel = "student"
	}
	if u.Status == "" {
		u.Status = models.UserStatusActive
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func uintPtr(u uint) *uint { return &u }
