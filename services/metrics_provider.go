package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"achievement-engine/models"

	"gorm.io/gorm"
)

// sessionHistoryLimit bounds the session rows read per snapshot. A streak can
// never be longer than the number of distinct days loaded.
const sessionHistoryLimit = 366

const languageSkillCategory = "languages"

// AnalyticsMetricsProvider builds snapshots from the analytics tables, the
// profile mirror and the points ledger.
type AnalyticsMetricsProvider struct {
	DB     *gorm.DB
	Ledger *PointsLedger
	Now    func() time.Time
}

func NewAnalyticsMetricsProvider(db *gorm.DB, ledger *PointsLedger) *AnalyticsMetricsProvider {
	return &AnalyticsMetricsProvider{DB: db, Ledger: ledger, Now: time.Now}
}

func (p *AnalyticsMetricsProvider) Snapshot(ctx context.Context, userID string) (*MetricsSnapshot, error) {
	db := p.DB.WithContext(ctx)

	var events []models.AnalyticsEvent
	if err := db.Where("user_id = ?", userID).Order("occurred_at ASC").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("load events for %s: %w", userID, err)
	}

	var starts []time.Time
	if err := db.Model(&models.UserSession{}).
		Where("user_id = ?", userID).
		Order("session_start DESC").
		Limit(sessionHistoryLimit).
		Pluck("session_start", &starts).Error; err != nil {
		return nil, fmt.Errorf("load sessions for %s: %w", userID, err)
	}

	var profile *models.ProfileSnapshot
	var row models.ProfileSnapshot
	err := db.Where("user_id = ?", userID).First(&row).Error
	switch {
	case err == nil:
		profile = &row
	case errors.Is(err, gorm.ErrRecordNotFound):
		// not synced yet
	default:
		return nil, fmt.Errorf("load profile for %s: %w", userID, err)
	}

	total, err := p.Ledger.TotalPoints(ctx, userID)
	if err != nil {
		return nil, err
	}

	return BuildSnapshot(userID, p.Now(), events, starts, profile, total), nil
}

// BuildSnapshot folds raw history into a snapshot. When no profile mirror
// exists, skill and language counts fall back to skill_added events.
func BuildSnapshot(userID string, now time.Time, events []models.AnalyticsEvent, sessionStarts []time.Time, profile *models.ProfileSnapshot, totalPoints int) *MetricsSnapshot {
	snap := &MetricsSnapshot{
		UserID:        userID,
		TakenAt:       now.UTC(),
		TotalPoints:   totalPoints,
		SessionStarts: sessionStarts,
		EventTimes:    make([]time.Time, 0, len(events)),
	}

	var interviewScoreSum float64
	var skillEvents, languageEvents int
	for _, ev := range events {
		snap.EventTimes = append(snap.EventTimes, ev.OccurredAt)

		switch ev.EventType {
		case models.EventCVGenerated:
			snap.CVGenerated++
			snap.BestCVScore = math.Max(snap.BestCVScore, ev.Number("completion_score"))
		case models.EventInterviewCompleted:
			score := ev.Number("score")
			snap.InterviewsCompleted++
			interviewScoreSum += score
			snap.BestInterviewScore = math.Max(snap.BestInterviewScore, score)
		case models.EventJobApplied:
			snap.JobApplications++
			if ev.Number("match_score") >= HighMatchThreshold {
				snap.HighMatchApplications++
			}
		case models.EventSkillAdded:
			skillEvents++
			if ev.String("category") == languageSkillCategory {
				languageEvents++
			}
		}
	}
	if snap.InterviewsCompleted > 0 {
		snap.AverageInterviewScore = interviewScoreSum / float64(snap.InterviewsCompleted)
	}

	if profile != nil {
		snap.ProfileBasicInfo = profile.BasicInfoComplete
		snap.ProfileCompletion = float64(profile.CompletionPercent)
		snap.ProfileCompleteSince = profile.CompleteSince
		snap.SkillsAdded = profile.SkillsCount
		snap.LanguagesAdded = profile.LanguagesCount
	} else {
		snap.SkillsAdded = skillEvents
		snap.LanguagesAdded = languageEvents
	}
	return snap
}
