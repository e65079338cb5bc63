package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"achievement-engine/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
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
	// :memory: is per connection.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, Migrate(db))
	return db
}

// stores runs each test against both implementations.
func stores(t *testing.T) map[string]Store {
	return map[string]Store{
		"gorm":   NewGormStore(newTestDB(t)),
		"memory": NewMemoryStore(),
	}
}

func TestInsertUserAchievement_InsertIfAbsent(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			earned := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

			created, err := s.InsertUserAchievement(ctx, &models.UserAchievement{
				UserID: "u1", AchievementID: "cv-first", EarnedAt: earned, Progress: 1,
			})
			require.NoError(t, err)
			assert.True(t, created)

			created, err = s.InsertUserAchievement(ctx, &models.UserAchievement{
				UserID: "u1", AchievementID: "cv-first", EarnedAt: earned.Add(time.Hour), Progress: 1,
			})
			require.NoError(t, err)
			assert.False(t, created, "second insert of the same pair must be a no-op")

			rows, err := s.ListUserAchievements(ctx, "u1")
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.True(t, rows[0].EarnedAt.Equal(earned), "earned_at must not be overwritten")
			assert.NotEmpty(t, rows[0].ID)
		})
	}
}

func TestInsertUserAchievement_ScopedPerUser(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, u := range []string{"u1", "u2"} {
				created, err := s.InsertUserAchievement(ctx, &models.UserAchievement{
					UserID: u, AchievementID: "cv-first", EarnedAt: time.Now().UTC(),
				})
				require.NoError(t, err)
				assert.True(t, created)
			}

			rows, err := s.ListUserAchievements(ctx, "u3")
			require.NoError(t, err)
			assert.Empty(t, rows)
		})
	}
}

func TestInsertUserAchievement_ConcurrentInsertsCreateOneRow(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			var wg sync.WaitGroup
			var mu sync.Mutex
			createdCount := 0

			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					created, err := s.InsertUserAchievement(ctx, &models.UserAchievement{
						UserID: "u1", AchievementID: "job-hunter", EarnedAt: time.Now().UTC(),
					})
					assert.NoError(t, err)
					if created {
						mu.Lock()
						createdCount++
						mu.Unlock()
					}
				}()
			}
			wg.Wait()

			assert.Equal(t, 1, createdCount)
			rows, err := s.ListUserAchievements(ctx, "u1")
			require.NoError(t, err)
			assert.Len(t, rows, 1)
		})
	}
}

func TestAppendPointEvent_Idempotent(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			ev := func() *models.PointEvent {
				return &models.PointEvent{UserID: "u1", Source: models.PointSourceAchievement, SourceID: "cv-first", Points: 100}
			}

			created, err := s.AppendPointEvent(ctx, ev())
			require.NoError(t, err)
			assert.True(t, created)

			created, err = s.AppendPointEvent(ctx, ev())
			require.NoError(t, err)
			assert.False(t, created)

			// Same source id under a different source is a different event.
			created, err = s.AppendPointEvent(ctx, &models.PointEvent{
				UserID: "u1", Source: models.PointSourceGrant, SourceID: "cv-first", Points: 5,
			})
			require.NoError(t, err)
			assert.True(t, created)

			events, err := s.ListPointEvents(ctx, "u1")
			require.NoError(t, err)
			assert.Len(t, events, 2)
		})
	}
}

func TestGormStore_MetadataRoundTrip(t *testing.T) {
	s := NewGormStore(newTestDB(t))
	ctx := context.Background()

	_, err := s.InsertUserAchievement(ctx, &models.UserAchievement{
		UserID: "u1", AchievementID: "cv-first", EarnedAt: time.Now().UTC(),
		Metadata: map[string]any{"catalog_version": "builtin-1"},
	})
	require.NoError(t, err)

	rows, err := s.ListUserAchievements(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "builtin-1", rows[0].Metadata["catalog_version"])
}
