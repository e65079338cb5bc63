package workers

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"achievement-engine/models"
)

// CandidateLister finds users worth re-evaluating: recent activity, or a
// metric that advances with the calendar alone.
type CandidateLister interface {
	SweepCandidates(ctx context.Context, since time.Time) ([]string, error)
}

// AwardChecker runs an evaluation pass for one user.
type AwardChecker interface {
	CheckAndAward(ctx context.Context, userID string) []models.Achievement
}

type SweepResult struct {
	Since   time.Time `json:"since"`
	Users   int       `json:"users"`
	Awarded int       `json:"awarded"`
}

// ActivitySweeper re-evaluates recently active users and users at full
// profile completion so time-based achievements (streaks, days at full
// profile) are awarded even when no new event triggers a pass.
type ActivitySweeper struct {
	users    CandidateLister
	checker  AwardChecker
	lookback time.Duration
	logger   *slog.Logger
	now      func() time.Time

	mu     sync.Mutex
	cursor time.Time
}

func NewActivitySweeper(users CandidateLister, checker AwardChecker, lookback time.Duration, logger *slog.Logger) *ActivitySweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &ActivitySweeper{
		users:    users,
		checker:  checker,
		lookback: lookback,
		logger:   logger,
		now:      time.Now,
	}
}

// Sweep checks every candidate since the previous successful sweep (or the
// lookback window on the first run). The cursor only moves forward when every
// user was processed, so a failed sweep is retried over the same window.
func (s *ActivitySweeper) Sweep(ctx context.Context) (SweepResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	started := s.now().UTC()
	since := s.cursor
	if since.IsZero() {
		since = started.Add(-s.lookback)
	}
	result := SweepResult{Since: since}

	users, err := s.users.SweepCandidates(ctx, since)
	if err != nil {
		s.logger.Error("[SWEEP] listing candidates failed", "since", since, "error", err)
		return result, fmt.Errorf("list sweep candidates: %w", err)
	}

	for _, userID := range users {
		if err := ctx.Err(); err != nil {
			s.logger.Warn("[SWEEP] interrupted", "processed", result.Users, "remaining", len(users)-result.Users)
			return result, err
		}
		result.Awarded += len(s.checker.CheckAndAward(ctx, userID))
		result.Users++
	}

	s.cursor = started
	s.logger.Info("[SWEEP] completed", "since", since, "users", result.Users, "awarded", result.Awarded)
	return result, nil
}

// Run adapts Sweep to the scheduler's job signature.
func (s *ActivitySweeper) Run(ctx context.Context) error {
	_, err := s.Sweep(ctx)
	return err
}
