package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"achievement-engine/catalog"
	"achievement-engine/models"
	"achievement-engine/store"
)

var ErrInvalidGrant = errors.New("invalid point grant")

// PointsLedger derives a user's point total. Achievement points come from the
// award facts themselves, so they can never be counted twice; grants come from
// the point event log.
type PointsLedger struct {
	catalog *catalog.Catalog
	store   store.Store
}

func NewPointsLedger(c *catalog.Catalog, s store.Store) *PointsLedger {
	return &PointsLedger{catalog: c, store: s}
}

// TotalPoints sums catalog points over the user's awards plus granted points.
// Awards of ids no longer in the catalog are worth 0.
func (l *PointsLedger) TotalPoints(ctx context.Context, userID string) (int, error) {
	awards, err := l.store.ListUserAchievements(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("total points: %w", err)
	}
	total := 0
	for _, ua := range awards {
		if a, ok := l.catalog.ByID(ua.AchievementID); ok {
			total += a.Points
		}
	}

	events, err := l.store.ListPointEvents(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("total points: %w", err)
	}
	for _, ev := range events {
		// achievement events are an audit trail of what was summed above
		if ev.Source == models.PointSourceAchievement {
			continue
		}
		total += ev.Points
	}
	return total, nil
}

// RecordPoints writes the audit event for an award. Recording the same award
// twice is a no-op.
func (l *PointsLedger) RecordPoints(ctx context.Context, userID, achievementID string, points int) error {
	_, err := l.store.AppendPointEvent(ctx, &models.PointEvent{
		UserID:   userID,
		Source:   models.PointSourceAchievement,
		SourceID: achievementID,
		Points:   points,
		Reason:   "achievement:" + achievementID,
	})
	if err != nil {
		return fmt.Errorf("record points: %w", err)
	}
	return nil
}

// GrantPoints adds a bonus keyed by grantID. created is false when that grant
// was already applied.
func (l *PointsLedger) GrantPoints(ctx context.Context, userID, grantID string, points int, reason string) (bool, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(grantID) == "" {
		return false, fmt.Errorf("%w: user_id and grant_id are required", ErrInvalidGrant)
	}
	if points <= 0 {
		return false, fmt.Errorf("%w: points must be positive", ErrInvalidGrant)
	}
	created, err := l.store.AppendPointEvent(ctx, &models.PointEvent{
		UserID:   userID,
		Source:   models.PointSourceGrant,
		SourceID: grantID,
		Points:   points,
		Reason:   reason,
	})
	if err != nil {
		return false, fmt.Errorf("grant points: %w", err)
	}
	return created, nil
}
