package models

import (
	"time"

	"gorm.io/gorm"
)

// ProfileSnapshot is a local, read-only mirror of the profile service's data the
// metrics provider needs. Owned by the profile sync worker.
type ProfileSnapshot struct {
	ID                string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID            string `gorm:"uniqueIndex;not null" json:"user_id"` // profile service's external id
	BasicInfoComplete bool   `gorm:"default:false" json:"basic_info_complete"`
	CompletionPercent int    `gorm:"default:0" json:"completion_percent"`
	SkillsCount       int    `gorm:"default:0" json:"skills_count"`
	LanguagesCount    int    `gorm:"default:0" json:"languages_count"`

	// Set when CompletionPercent first reaches 100, cleared when it drops.
	CompleteSince *time.Time `json:"complete_since,omitempty"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
