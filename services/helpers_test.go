package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"achievement-engine/models"
	"achievement-engine/store"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, store.Migrate(db))
	return db
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// staticProvider hands out the same snapshot, or err, every call.
type staticProvider struct {
	mu    sync.Mutex
	snap  *MetricsSnapshot
	err   error
	calls int
}

func (p *staticProvider) Snapshot(_ context.Context, userID string) (*MetricsSnapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	s := *p.snap
	s.UserID = userID
	return &s, nil
}

func (p *staticProvider) set(snap *MetricsSnapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snap = snap
}

type sentNotification struct {
	UserID string
	Name   string
	Points int
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
	err  error
}

func (n *recordingNotifier) NotifyAchievement(_ context.Context, userID, name string, points int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentNotification{userID, name, points})
	return nil
}

// flakyStore fails award inserts for the listed achievement ids.
type flakyStore struct {
	store.Store
	failInsert map[string]bool
	failList   bool
	failPoints bool
}

func (f *flakyStore) InsertUserAchievement(ctx context.Context, ua *models.UserAchievement) (bool, error) {
	if f.failInsert[ua.AchievementID] {
		return false, errors.New("connection reset")
	}
	return f.Store.InsertUserAchievement(ctx, ua)
}

func (f *flakyStore) ListUserAchievements(ctx context.Context, userID string) ([]models.UserAchievement, error) {
	if f.failList {
		return nil, errors.New("connection refused")
	}
	return f.Store.ListUserAchievements(ctx, userID)
}

func (f *flakyStore) AppendPointEvent(ctx context.Context, ev *models.PointEvent) (bool, error) {
	if f.failPoints {
		return false, errors.New("disk full")
	}
	return f.Store.AppendPointEvent(ctx, ev)
}

func achievementIDs(as []models.Achievement) []string {
	ids := make([]string, 0, len(as))
	for _, a := range as {
		ids = append(ids, a.ID)
	}
	return ids
}
