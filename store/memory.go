package store

import (
	"context"
	"sync"
	"time"

	"achievement-engine/models"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store with the same uniqueness rules as
// GormStore. Used by tests.
type MemoryStore struct {
	mu      sync.Mutex
	awards  map[string][]models.UserAchievement
	points  map[string][]models.PointEvent
	awarded map[[2]string]bool
	sources map[[3]string]bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		awards:  make(map[string][]models.UserAchievement),
		points:  make(map[string][]models.PointEvent),
		awarded: make(map[[2]string]bool),
		sources: make(map[[3]string]bool),
	}
}

func (m *MemoryStore) InsertUserAchievement(_ context.Context, ua *models.UserAchievement) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := [2]string{ua.UserID, ua.AchievementID}
	if m.awarded[key] {
		return false, nil
	}
	if ua.ID == "" {
		ua.ID = uuid.NewString()
	}
	m.awarded[key] = true
	m.awards[ua.UserID] = append(m.awards[ua.UserID], *ua)
	return true, nil
}

func (m *MemoryStore) ListUserAchievements(_ context.Context, userID string) ([]models.UserAchievement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.UserAchievement(nil), m.awards[userID]...), nil
}

func (m *MemoryStore) AppendPointEvent(_ context.Context, ev *models.PointEvent) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := [3]string{ev.UserID, string(ev.Source), ev.SourceID}
	if m.sources[key] {
		return false, nil
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	m.sources[key] = true
	m.points[ev.UserID] = append(m.points[ev.UserID], *ev)
	return true, nil
}

func (m *MemoryStore) ListPointEvents(_ context.Context, userID string) ([]models.PointEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.PointEvent(nil), m.points[userID]...), nil
}
