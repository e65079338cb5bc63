package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"achievement-engine/catalog"
	"achievement-engine/models"
	"achievement-engine/store"
)

// MetricsProvider returns one consistent snapshot of a user's metrics.
type MetricsProvider interface {
	Snapshot(ctx context.Context, userID string) (*MetricsSnapshot, error)
}

// Engine evaluates the catalog against a user's metrics and records new awards.
// It is safe for concurrent use; the store's uniqueness guard settles races
// between passes for the same user.
type Engine struct {
	catalog  *catalog.Catalog
	store    store.Store
	ledger   *PointsLedger
	provider MetricsProvider
	notifier Notifier
	metrics  *EngineMetrics
	logger   *slog.Logger
	now      func() time.Time
}

type EngineOption func(*Engine)

func WithNotifier(n Notifier) EngineOption {
	return func(e *Engine) {
		if n != nil {
			e.notifier = n
		}
	}
}

func WithEngineMetrics(m *EngineMetrics) EngineOption {
	return func(e *Engine) {
		if m != nil {
			e.metrics = m
		}
	}
}

func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock overrides the award timestamp source.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func NewEngine(c *catalog.Catalog, s store.Store, ledger *PointsLedger, provider MetricsProvider, opts ...EngineOption) *Engine {
	e := &Engine{
		catalog:  c,
		store:    s,
		ledger:   ledger,
		provider: provider,
		notifier: nopNotifier{},
		metrics:  NewEngineMetrics(nil),
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Catalog() *catalog.Catalog { return e.catalog }

func (e *Engine) Ledger() *PointsLedger { return e.ledger }

// CheckAndAward awards every catalog achievement the user newly satisfies and
// returns them. It never fails: load errors yield an empty result and
// per-achievement side-effect errors are logged while the pass continues.
func (e *Engine) CheckAndAward(ctx context.Context, userID string) []models.Achievement {
	started := time.Now()
	defer func() { e.metrics.CheckDuration.Observe(time.Since(started).Seconds()) }()

	newlyEarned := []models.Achievement{}

	existing, err := e.store.ListUserAchievements(ctx, userID)
	if err != nil {
		e.metrics.Failures.WithLabelValues(StageLoadAwards).Inc()
		e.logger.Error("[ENGINE] load awards failed", "user_id", userID, "error", err)
		return newlyEarned
	}
	earned := make(map[string]struct{}, len(existing))
	for _, ua := range existing {
		earned[ua.AchievementID] = struct{}{}
	}

	snap, err := e.provider.Snapshot(ctx, userID)
	if err != nil {
		e.metrics.Failures.WithLabelValues(StageLoadMetrics).Inc()
		e.logger.Error("[ENGINE] load metrics failed", "user_id", userID, "error", err)
		return newlyEarned
	}

	for _, a := range e.catalog.All() {
		if ctx.Err() != nil {
			e.logger.Warn("[ENGINE] pass cancelled", "user_id", userID, "error", ctx.Err())
			break
		}
		if _, ok := earned[a.ID]; ok {
			continue
		}
		if !Satisfied(a.Requirements, snap) {
			continue
		}

		err := e.award(ctx, userID, a)
		if errors.Is(err, store.ErrAlreadyEarned) {
			e.logger.Debug("[ENGINE] award lost race", "user_id", userID, "achievement_id", a.ID)
			continue
		}
		if err != nil {
			e.metrics.Failures.WithLabelValues(StagePersist).Inc()
			e.logger.Error("[ENGINE] award failed", "user_id", userID, "achievement_id", a.ID, "error", err)
			continue
		}

		e.metrics.Awarded.WithLabelValues(string(a.Category)).Inc()
		e.logger.Info("[ENGINE] achievement awarded",
			"user_id", userID, "achievement_id", a.ID, "points", a.Points)
		newlyEarned = append(newlyEarned, a)
	}
	return newlyEarned
}

// award inserts the award fact, then runs the best-effort side effects. Only
// the insert decides whether the achievement counts as newly earned.
func (e *Engine) award(ctx context.Context, userID string, a models.Achievement) error {
	ua := &models.UserAchievement{
		UserID:        userID,
		AchievementID: a.ID,
		EarnedAt:      e.now().UTC(),
		Progress:      1,
		Metadata:      map[string]any{"catalog_version": e.catalog.Version()},
	}
	created, err := e.store.InsertUserAchievement(ctx, ua)
	if err != nil {
		return fmt.Errorf("persist award: %w", err)
	}
	if !created {
		return store.ErrAlreadyEarned
	}

	if err := e.ledger.RecordPoints(ctx, userID, a.ID, a.Points); err != nil {
		e.metrics.Failures.WithLabelValues(StagePoints).Inc()
		e.logger.Warn("[ENGINE] point event not recorded", "user_id", userID, "achievement_id", a.ID, "error", err)
	}
	if err := e.notifier.NotifyAchievement(ctx, userID, a.Name, a.Points); err != nil {
		e.metrics.Failures.WithLabelValues(StageNotify).Inc()
		e.logger.Warn("[ENGINE] notification failed", "user_id", userID, "achievement_id", a.ID, "error", err)
	}
	return nil
}

// EarnedAchievements pairs the user's award rows with their catalog entries.
// Rows for ids no longer in the catalog are skipped.
func (e *Engine) EarnedAchievements(ctx context.Context, userID string) ([]EarnedAchievement, error) {
	rows, err := e.store.ListUserAchievements(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]EarnedAchievement, 0, len(rows))
	for _, ua := range rows {
		a, ok := e.catalog.ByID(ua.AchievementID)
		if !ok {
			continue
		}
		out = append(out, EarnedAchievement{Achievement: a, EarnedAt: ua.EarnedAt})
	}
	return out, nil
}

type EarnedAchievement struct {
	Achievement models.Achievement `json:"achievement"`
	EarnedAt    time.Time          `json:"earned_at"`
}
