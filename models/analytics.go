package models

import (
	"time"
)

// Platform the client reported an event from.
type Platform string

const (
	PlatformWeb     Platform = "web"
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
)

// Event types the metrics provider understands.
const (
	EventPageView           = "page_view"
	EventCVGenerated        = "cv_generated"
	EventInterviewCompleted = "interview_completed"
	EventJobApplied         = "job_applied"
	EventProfileUpdated     = "profile_updated"
	EventSkillAdded         = "skill_added"
)

// AnalyticsEvent is a single tracked user action.
type AnalyticsEvent struct {
	ID         string         `gorm:"primaryKey;type:uuid" json:"id"`
	UserID     string         `gorm:"index:idx_event_user_type;not null" json:"user_id"`
	EventType  string         `gorm:"index:idx_event_user_type;type:varchar(64);not null" json:"event_type"`
	EventData  map[string]any `gorm:"serializer:json;type:jsonb" json:"event_data"`
	OccurredAt time.Time      `gorm:"index;not null" json:"timestamp"`
	SessionID  *string        `gorm:"index" json:"session_id,omitempty"`
	Platform   Platform       `gorm:"type:varchar(16);default:'web'" json:"platform"`
	AppVersion string         `gorm:"type:varchar(32)" json:"app_version"`
}

// Number reads a numeric payload field; missing or non-numeric values read as 0.
func (e AnalyticsEvent) Number(key string) float64 {
	switch v := e.EventData[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case int32:
		return float64(v)
	}
	return 0
}

// String reads a string payload field.
func (e AnalyticsEvent) String(key string) string {
	if v, ok := e.EventData[key].(string); ok {
		return v
	}
	return ""
}

// UserSession tracks a single app session; session starts drive login streaks.
type UserSession struct {
	ID              string     `gorm:"primaryKey;type:uuid" json:"id"`
	UserID          string     `gorm:"index;not null" json:"user_id"`
	SessionStart    time.Time  `gorm:"index;not null" json:"session_start"`
	SessionEnd      *time.Time `json:"session_end,omitempty"`
	DurationSeconds *int64     `json:"duration_seconds,omitempty"`
	PageViews       int        `gorm:"default:0" json:"page_views"`
	ActionsTaken    int        `gorm:"default:0" json:"actions_taken"`
	Platform        Platform   `gorm:"type:varchar(16)" json:"platform"`
	UserAgent       *string    `json:"user_agent,omitempty"`
}
