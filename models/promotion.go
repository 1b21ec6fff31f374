package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	PromotionTriggerAdmin  = "admin"
	PromotionTriggerBatch  = "batch"
	// researcher_level set directly by an administrator
	PromotionTriggerManual = "manual"

	PromotionRunStatusRunning = "running"
	PromotionRunStatusSuccess = "success"
	PromotionRunStatusFailed  = "failed"
)

// LevelPromotion records one applied level change.
type LevelPromotion struct {
	ID            uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID        uint      `json:"user_id" gorm:"not null;index"`
	FromLevel     string    `json:"from_level" gorm:"type:varchar(16);not null"`
	ToLevel       string    `json:"to_level" gorm:"type:varchar(16);not null"`
	TriggerSource string    `json:"trigger_source" gorm:"type:varchar(64);not null"`
	ActorID       *uint     `json:"actor_id,omitempty"`
	RunID         *uint     `json:"run_id,omitempty" gorm:"index"`
	CreatedAt     time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (LevelPromotion) TableName() string { return "level_promotions" }

type PromotionRun struct {
	ID     uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	RunKey string `json:"run_key" gorm:"type:varchar(36);uniqueIndex;not null"`

	TriggerSource string     `json:"trigger_source" gorm:"type:varchar(64);not null"`
	Status        string     `json:"status" gorm:"type:varchar(16);not null;default:'running'"`
	DryRun        bool       `json:"dry_run" gorm:"not null;default:false"`
	ErrorMessage  *string    `json:"error_message" gorm:"type:text"`
	StartedAt     time.Time  `json:"started_at" gorm:"column:started_at;autoCreateTime"`
	FinishedAt    *time.Time `json:"finished_at" gorm:"column:finished_at"`

	UsersProcessed  uint `json:"users_processed" gorm:"column:users_processed;not null;default:0"`
	UsersPromoted   uint `json:"users_promoted" gorm:"column:users_promoted;not null;default:0"`
	UsersWithErrors uint `json:"users_with_errors" gorm:"column:users_with_errors;not null;default:0"`

	CreatedAt time.Time      `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"column:deleted_at;index"`
}

func (PromotionRun) TableName() string { return "promotion_runs" }

// AllModels lists every table for AutoMigrate.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Project{},
		&Paper{},
		&Experiment{},
		&LevelPromotion{},
		&PromotionRun{},
	}
}
