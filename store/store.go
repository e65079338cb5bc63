// Package store persists award facts and point events.
//
// The (user_id, achievement_id) uniqueness of UserAchievement is the only guard
// against double awards: inserts are insert-if-absent and report whether a row
// was actually created, so a losing concurrent insert reads as "already earned".
package store

import (
	"context"
	"errors"

	"achievement-engine/models"
)

// ErrAlreadyEarned signals that an award insert hit an existing row.
var ErrAlreadyEarned = errors.New("achievement already earned")

// AchievementStore holds UserAchievement rows.
type AchievementStore interface {
	// InsertUserAchievement inserts ua unless the (user, achievement) pair
	// already exists. created is false when the row was already there.
	InsertUserAchievement(ctx context.Context, ua *models.UserAchievement) (created bool, err error)
	ListUserAchievements(ctx context.Context, userID string) ([]models.UserAchievement, error)
}

// PointStore holds the append-only point event log.
type PointStore interface {
	// AppendPointEvent inserts ev unless (user, source, source_id) exists.
	AppendPointEvent(ctx context.Context, ev *models.PointEvent) (created bool, err error)
	ListPointEvents(ctx context.Context, userID string) ([]models.PointEvent, error)
}

// Store is everything the engine persists.
type Store interface {
	AchievementStore
	PointStore
}
