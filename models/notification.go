package models

import (
	"time"
)

// NotificationType indicates what a notification is about
type NotificationType string

const (
	NotificationTypeAchievement NotificationType = "achievement"
	NotificationTypeSystem      NotificationType = "system"
)

// NotificationPriority orders notifications in the client inbox
type NotificationPriority string

const (
	NotificationPriorityLow    NotificationPriority = "low"
	NotificationPriorityMedium NotificationPriority = "medium"
	NotificationPriorityHigh   NotificationPriority = "high"
	NotificationPriorityUrgent NotificationPriority = "urgent"
)

// Notification is an in-app inbox entry. Delivery to devices happens elsewhere.
type Notification struct {
	ID         string               `gorm:"primaryKey;type:uuid" json:"id"`
	UserID     string               `gorm:"index;not null" json:"user_id"`
	Title      string               `gorm:"not null" json:"title"`
	Message    string               `gorm:"type:text" json:"message"`
	Type       NotificationType     `gorm:"type:varchar(32);not null" json:"type"`
	Priority   NotificationPriority `gorm:"type:varchar(16);default:'medium'" json:"priority"`
	Read       bool                 `gorm:"default:false;index" json:"read"`
	ActionData map[string]any       `gorm:"serializer:json;type:jsonb" json:"action_data,omitempty"`
	CreatedAt  time.Time            `gorm:"autoCreateTime" json:"created_at"`
}
