package models

import (
	"encoding/json"
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	PaperStatusDraft       = "draft"
	PaperStatusSubmitted   = "submitted"
	PaperStatusUnderReview = "under-review"
	PaperStatusPublished   = "published"
	PaperStatusRejected    = "rejected"
)

var PaperStatuses = []string{PaperStatusDraft, PaperStatusSubmitted, PaperStatusUnderReview, PaperStatusPublished, PaperStatusRejected}

type Paper struct {
	ID              uint       `json:"id"                gorm:"primaryKey;autoIncrement"`
	UserID          uint       `json:"user_id"           gorm:"not null;index"`
	ProjectID       *uint      `json:"project_id,omitempty" gorm:"index"`
	Title           string     `json:"title"             gorm:"type:varchar(500);not null"`
	Authors         string     `json:"authors"           gorm:"type:text"` // JSON array of names
	Journal         *string    `json:"journal,omitempty" gorm:"type:varchar(255)"`
	Abstract        *string    `json:"abstract,omitempty" gorm:"type:text"`
	DOI             *string    `json:"doi,omitempty"     gorm:"type:varchar(255)"`
	Status          string     `json:"status"            gorm:"type:varchar(16);not null;default:'draft';index"`
	Citations       int        `json:"citations"         gorm:"not null;default:0"`
	PublicationDate *time.Time `json:"publication_date,omitempty" gorm:"type:date"`

	Project      *Project `json:"-"                       gorm:"foreignKey:ProjectID"`
	ProjectTitle string   `json:"project_title,omitempty" gorm:"-"`

	CreatedAt time.Time      `json:"created_at"  gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at"  gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"-"           gorm:"column:deleted_at;index"`
}

func (Paper) TableName() string { return "papers" }

// BeforeSave normalizes the DOI and makes sure authors is a JSON array.
func (p *Paper) BeforeSave(tx *gorm.DB) error {
	if p.DOI != nil {
		d := strings.TrimSpace(*p.DOI)
		d = strings.TrimPrefix(d, "https://doi.org/")
		p.DOI = &d
	}
	if strings.TrimSpace(p.Authors) == "" {
		p.Authors = "[]"
	}
	if p.Citations < 0 {
		p.Citations = 0
	}
	return nil
}

// AuthorList decodes Authors. Malformed data yields an empty list.
func (p Paper) AuthorList() []string {
	var out []string
	if err := json.Unmarshal([]byte(p.Authors), &out); err != nil {
		return []string{}
	}
	return out
}

// SetAuthors encodes names into Authors, dropping blanks.
func (p *Paper) SetAuthors(names []string) {
	cleaned := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			cleaned = append(cleaned, n)
		}
	}
	b, _ := json.Marshal(cleaned)
	p.Authors = string(b)
}
