package models

import (
	"time"
)

// UserAchievement: awarded instance. At most one row per (user_id, achievement_id);
// the composite unique index is the double-award guard.
type UserAchievement struct {
	ID            string         `gorm:"primaryKey;type:uuid" json:"id"`
	UserID        string         `gorm:"uniqueIndex:idx_user_achievement;not null" json:"user_id"`
	AchievementID string         `gorm:"uniqueIndex:idx_user_achievement;not null" json:"achievement_id"`
	EarnedAt      time.Time      `gorm:"not null" json:"earned_at"`
	Progress      float64        `json:"progress"`
	Metadata      map[string]any `gorm:"serializer:json;type:jsonb" json:"metadata,omitempty"` // e.g., {"catalog_version": "2024.1"}
}

// PointSource says what produced a point event.
type PointSource string

const (
	PointSourceAchievement PointSource = "achievement"
	PointSourceGrant       PointSource = "grant"
)

// PointEvent is an append-only point-earning record. (user_id, source, source_id)
// is unique so re-recording the same award or grant is a no-op.
type PointEvent struct {
	ID        string      `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    string      `gorm:"uniqueIndex:idx_point_event_source;index;not null" json:"user_id"`
	Source    PointSource `gorm:"uniqueIndex:idx_point_event_source;type:varchar(16);not null" json:"source"`
	SourceID  string      `gorm:"uniqueIndex:idx_point_event_source;not null" json:"source_id"`
	Points    int         `gorm:"not null" json:"points"`
	Reason    string      `json:"reason,omitempty"`
	CreatedAt time.Time   `gorm:"autoCreateTime" json:"created_at"`
}
