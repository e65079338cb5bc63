package workers

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

// recordingChecker awards the achievements listed per user once.
type recordingChecker struct {
	mu     sync.Mutex
	calls  []string
	awards map[string][]models.Achievement
}

func (c *recordingChecker) CheckAndAward(_ context.Context, userID string) []models.Achievement {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, userID)
	out := c.awards[userID]
	delete(c.awards, userID)
	return out
}

func (c *recordingChecker) checked() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

type stubLister struct {
	users  []string
	err    error
	sinces []time.Time
}

func (l *stubLister) SweepCandidates(_ context.Context, since time.Time) ([]string, error) {
	l.sinces = append(l.sinces, since)
	if l.err != nil {
		return nil, l.err
	}
	return l.users, nil
}

var errBoom = errors.New("boom")
