package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"achievement-engine/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidEvent    = errors.New("invalid analytics event")
)

// AnalyticsService records the raw activity the metrics provider reads back.
type AnalyticsService struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{DB: db, Now: time.Now}
}

// TrackEvent stores ev and bumps the owning session's counters. Missing ids,
// timestamps and platform are filled in.
func (s *AnalyticsService) TrackEvent(ctx context.Context, ev *models.AnalyticsEvent) error {
	if strings.TrimSpace(ev.UserID) == "" || strings.TrimSpace(ev.EventType) == "" {
		return fmt.Errorf("%w: user_id and event_type are required", ErrInvalidEvent)
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = s.Now()
	}
	ev.OccurredAt = ev.OccurredAt.UTC()
	if ev.Platform == "" {
		ev.Platform = models.PlatformWeb
	}
	if ev.EventData == nil {
		ev.EventData = map[string]any{}
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(ev).Error; err != nil {
			return fmt.Errorf("track event %s: %w", ev.EventType, err)
		}
		if ev.SessionID == nil {
			return nil
		}

		updates := map[string]any{"actions_taken": gorm.Expr("actions_taken + 1")}
		if ev.EventType == models.EventPageView {
			updates["page_views"] = gorm.Expr("page_views + 1")
		}
		// Events may reference a session owned by someone else or already
		// purged; the event itself still counts.
		if err := tx.Model(&models.UserSession{}).
			Where("id = ? AND user_id = ?", *ev.SessionID, ev.UserID).
			Updates(updates).Error; err != nil {
			return fmt.Errorf("update session counters: %w", err)
		}
		return nil
	})
}

func (s *AnalyticsService) track(ctx context.Context, userID, eventType string, data map[string]any) error {
	return s.TrackEvent(ctx, &models.AnalyticsEvent{UserID: userID, EventType: eventType, EventData: data})
}

func (s *AnalyticsService) TrackPageView(ctx context.Context, userID, sessionID, page string) error {
	ev := &models.AnalyticsEvent{
		UserID:    userID,
		EventType: models.EventPageView,
		EventData: map[string]any{"page_name": page},
	}
	if sessionID != "" {
		ev.SessionID = &sessionID
	}
	return s.TrackEvent(ctx, ev)
}

func (s *AnalyticsService) TrackCVGenerated(ctx context.Context, userID, templateID string, completionScore float64) error {
	return s.track(ctx, userID, models.EventCVGenerated, map[string]any{
		"template_id":      templateID,
		"completion_score": completionScore,
	})
}

func (s *AnalyticsService) TrackInterviewCompleted(ctx context.Context, userID, interviewType string, score float64, duration time.Duration) error {
	return s.track(ctx, userID, models.EventInterviewCompleted, map[string]any{
		"interview_type":   interviewType,
		"score":            score,
		"duration_minutes": int(duration.Round(time.Minute) / time.Minute),
	})
}

func (s *AnalyticsService) TrackJobApplied(ctx context.Context, userID, jobID string, matchScore float64) error {
	return s.track(ctx, userID, models.EventJobApplied, map[string]any{
		"job_id":      jobID,
		"match_score": matchScore,
	})
}

func (s *AnalyticsService) TrackProfileUpdated(ctx context.Context, userID, section string, completionIncrease float64) error {
	return s.track(ctx, userID, models.EventProfileUpdated, map[string]any{
		"section":             section,
		"completion_increase": completionIncrease,
	})
}

func (s *AnalyticsService) TrackSkillAdded(ctx context.Context, userID, skill, category string) error {
	return s.track(ctx, userID, models.EventSkillAdded, map[string]any{
		"skill_name": skill,
		"category":   category,
	})
}

// StartSession opens a session. Session starts drive the daily login streak.
func (s *AnalyticsService) StartSession(ctx context.Context, userID string, platform models.Platform, userAgent string) (*models.UserSession, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrInvalidEvent)
	}
	if platform == "" {
		platform = models.PlatformWeb
	}
	sess := &models.UserSession{
		ID:           uuid.NewString(),
		UserID:       userID,
		SessionStart: s.Now().UTC(),
		Platform:     platform,
	}
	if userAgent != "" {
		sess.UserAgent = &userAgent
	}
	if err := s.DB.WithContext(ctx).Create(sess).Error; err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	return sess, nil
}

// EndSession closes the user's session and stores its duration. Ending an
// already-ended session returns it unchanged.
func (s *AnalyticsService) EndSession(ctx context.Context, userID, sessionID string) (*models.UserSession, error) {
	var sess models.UserSession
	err := s.DB.WithContext(ctx).Where("id = ? AND user_id = ?", sessionID, userID).First(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("end session: %w", err)
	}
	if sess.SessionEnd != nil {
		return &sess, nil
	}

	end := s.Now().UTC()
	duration := int64(end.Sub(sess.SessionStart) / time.Second)
	if duration < 0 {
		duration = 0
	}
	sess.SessionEnd = &end
	sess.DurationSeconds = &duration
	if err := s.DB.WithContext(ctx).Model(&sess).Updates(map[string]any{
		"session_end":      end,
		"duration_seconds": duration,
	}).Error; err != nil {
		return nil, fmt.Errorf("end session: %w", err)
	}
	return &sess, nil
}

// ActiveUsersSince lists users with an event or session start at or after since.
func (s *AnalyticsService) ActiveUsersSince(ctx context.Context, since time.Time) ([]string, error) {
	var fromEvents, fromSessions []string
	db := s.DB.WithContext(ctx)
	if err := db.Model(&models.AnalyticsEvent{}).
		Where("occurred_at >= ?", since).
		Distinct().Pluck("user_id", &fromEvents).Error; err != nil {
		return nil, fmt.Errorf("active users from events: %w", err)
	}
	if err := db.Model(&models.UserSession{}).
		Where("session_start >= ?", since).
		Distinct().Pluck("user_id", &fromSessions).Error; err != nil {
		return nil, fmt.Errorf("active users from sessions: %w", err)
	}

	seen := make(map[string]struct{}, len(fromEvents)+len(fromSessions))
	users := make([]string, 0, len(fromEvents)+len(fromSessions))
	for _, id := range append(fromEvents, fromSessions...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		users = append(users, id)
	}
	sort.Strings(users)
	return users, nil
}

// SweepCandidates lists users whose achievements may have moved since the
// given time: everyone active since then, plus every user currently at full
// profile completion, whose day count grows without any new activity.
func (s *AnalyticsService) SweepCandidates(ctx context.Context, since time.Time) ([]string, error) {
	active, err := s.ActiveUsersSince(ctx, since)
	if err != nil {
		return nil, err
	}
	var complete []string
	if err := s.DB.WithContext(ctx).Model(&models.ProfileSnapshot{}).
		Where("complete_since IS NOT NULL AND completion_percent >= ?", 100).
		Pluck("user_id", &complete).Error; err != nil {
		return nil, fmt.Errorf("users at full profile: %w", err)
	}
	if len(complete) == 0 {
		return active, nil
	}

	seen := make(map[string]struct{}, len(active)+len(complete))
	users := make([]string, 0, len(active)+len(complete))
	for _, id := range append(active, complete...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		users = append(users, id)
	}
	sort.Strings(users)
	return users, nil
}
