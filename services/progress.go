package services

import (
	"context"
	"fmt"
	"math"

	"achievement-engine/models"
)

// ProgressFor returns (progress, maxProgress) for one achievement.
//
// Earned achievements are always 1/1. Unearned ones preview only their first
// requirement, so a multi-requirement achievement can show full progress and
// still not be earned; eligibility is decided by Satisfied over all of them.
func ProgressFor(a models.Achievement, earned bool, snap *MetricsSnapshot) (progress, maxProgress float64) {
	if earned {
		return 1, 1
	}
	if len(a.Requirements) == 0 {
		return 0, 1
	}
	req := a.Requirements[0]
	maxProgress = math.Max(req.Value, 0)
	progress = math.Min(math.Max(ResolveMetric(req.Metric, snap), 0), maxProgress)
	return progress, maxProgress
}

// ProgressReport lists progress on every visible achievement plus the hidden
// ones the user has already earned.
func (e *Engine) ProgressReport(ctx context.Context, userID string) ([]models.AchievementProgress, error) {
	rows, err := e.store.ListUserAchievements(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("progress report: %w", err)
	}
	earned := make(map[string]models.UserAchievement, len(rows))
	for _, ua := range rows {
		earned[ua.AchievementID] = ua
	}

	snap, err := e.provider.Snapshot(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("progress report: %w", err)
	}

	report := make([]models.AchievementProgress, 0, e.catalog.Len())
	for _, a := range e.catalog.All() {
		ua, isEarned := earned[a.ID]
		if a.Hidden && !isEarned {
			continue
		}
		p := models.AchievementProgress{Achievement: a, Earned: isEarned}
		p.Progress, p.MaxProgress = ProgressFor(a, isEarned, snap)
		if isEarned {
			earnedAt := ua.EarnedAt
			p.EarnedAt = &earnedAt
		}
		report = append(report, p)
	}
	return report, nil
}
