package store

import (
	"context"
	"fmt"

	"achievement-engine/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Models lists every table the service owns, for AutoMigrate.
var Models = []any{
	&models.UserAchievement{},
	&models.PointEvent{},
	&models.AnalyticsEvent{},
	&models.UserSession{},
	&models.ProfileSnapshot{},
	&models.Notification{},
}

// Migrate creates or updates the service's tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// GormStore is the Postgres-backed Store.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) InsertUserAchievement(ctx context.Context, ua *models.UserAchievement) (bool, error) {
	if ua.ID == "" {
		ua.ID = uuid.NewString()
	}
	res := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_id"}},
		DoNothing: true,
	}).Create(ua)
	if res.Error != nil {
		return false, fmt.Errorf("insert user achievement %s/%s: %w", ua.UserID, ua.AchievementID, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *GormStore) ListUserAchievements(ctx context.Context, userID string) ([]models.UserAchievement, error) {
	var rows []models.UserAchievement
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("earned_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list user achievements for %s: %w", userID, err)
	}
	return rows, nil
}

func (s *GormStore) AppendPointEvent(ctx context.Context, ev *models.PointEvent) (bool, error) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	res := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "source"}, {Name: "source_id"}},
		DoNothing: true,
	}).Create(ev)
	if res.Error != nil {
		return false, fmt.Errorf("append point event %s/%s: %w", ev.UserID, ev.SourceID, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *GormStore) ListPointEvents(ctx context.Context, userID string) ([]models.PointEvent, error) {
	var rows []models.PointEvent
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list point events for %s: %w", userID, err)
	}
	return rows, nil
}
