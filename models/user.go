package models

import (
	"time"

	"research-tracker-api/levels"

	"gorm.io/gorm"
)

const (
	RoleResearcher = "researcher"
	RoleAdmin      = "admin"

	UserStatusActive    = "active"
	UserStatusInactive  = "inactive"
	UserStatusSuspended = "suspended"
)

var (
	UserRoles    = []string{RoleResearcher, RoleAdmin}
	UserStatuses = []string{UserStatusActive, UserStatusInactive, UserStatusSuspended}
)

type User struct {
	ID              uint       `gorm:"primaryKey;column:id" json:"id"`
	Name            string     `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Email           string     `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	Institution     string     `gorm:"column:institution;type:varchar(255)" json:"institution"`
	ResearchField   string     `gorm:"column:research_field;type:varchar(64)" json:"research_field"`
	Role            string     `gorm:"column:role;type:varchar(16);not null;default:'researcher'" json:"role"`
	Status          string     `gorm:"column:status;type:varchar(16);not null;default:'active'" json:"status"`
	ResearcherLevel string     `gorm:"column:researcher_level;type:varchar(16);not null;default:'student';index" json:"researcher_level"`
	ProjectsCount   int        `gorm:"column:projects_count;not null;default:0" json:"projects_count"`
	PapersCount     int        `gorm:"column:papers_count;not null;default:0" json:"papers_count"`
	CitationsCount  int        `gorm:"column:citations_count;not null;default:0" json:"citations_count"`
	LastLoginAt     *time.Time `gorm:"column:last_login_at" json:"last_login_at,omitempty"`

	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// LevelProfile returns the counters and stored level the promotion rules read.
func (u User) LevelProfile() levels.Profile {
	return levels.Profile{
		ProjectsCount:  u.ProjectsCount,
		PapersCount:    u.PapersCount,
		CitationsCount: u.CitationsCount,
		CurrentLevel:   levels.Level(u.ResearcherLevel),
	}
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
