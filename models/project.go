package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	ProjectStatusPlanning  = "planning"
	ProjectStatusActive    = "active"
	ProjectStatusCompleted = "completed"
	ProjectStatusArchived  = "archived"
)

var ProjectStatuses = []string{ProjectStatusPlanning, ProjectStatusActive, ProjectStatusCompleted, ProjectStatusArchived}

// Project represents the projects table
type Project struct {
	ID          uint    `gorm:"primaryKey;column:id" json:"id"`
	UserID      uint    `gorm:"column:user_id;not null;index" json:"user_id"`
	Title       string  `gorm:"column:title;type:varchar(500);not null" json:"title"`
	Module      string  `gorm:"column:module;type:varchar(64)" json:"module"`
	Description *string `gorm:"column:description;type:text" json:"description,omitempty"`
	Status      string  `gorm:"column:status;type:varchar(16);not null;default:'planning'" json:"status"`
	Progress    int     `gorm:"column:progress;not null;default:0" json:"progress"`

	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

// TableName overrides the table name for Project
func (Project) TableName() string {
	return "projects"
}

// BeforeSave keeps progress within 0..100.
func (p *Project) BeforeSave(tx *gorm.DB) error {
	if p.Progress < 0 {
		p.Progress = 0
	}
	if p.Progress > 100 {
		p.Progress = 100
	}
	return nil
}

const (
	ExperimentStatusPlanned   = "planned"
	ExperimentStatusRunning   = "running"
	ExperimentStatusCompleted = "completed"
	ExperimentStatusFailed    = "failed"
)

var ExperimentStatuses = []string{ExperimentStatusPlanned, ExperimentStatusRunning, ExperimentStatusCompleted, ExperimentStatusFailed}

// Experiment represents the experiments table
type Experiment struct {
	ID          uint       `gorm:"primaryKey;column:id" json:"id"`
	UserID      uint       `gorm:"column:user_id;not null;index" json:"user_id"`
	ProjectID   *uint      `gorm:"column:project_id;index" json:"project_id,omitempty"`
	Name        string     `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Status      string     `gorm:"column:status;type:varchar(16);not null;default:'planned'" json:"status"`
	StartedAt   *time.Time `gorm:"column:started_at" json:"started_at,omitempty"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`

	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

// TableName overrides the table name for Experiment
func (Experiment) TableName() string {
	return "experiments"
}
