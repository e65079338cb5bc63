package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"achievement-engine/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	achievementNotificationTitle = "Achievement Unlocked! 🏆"
	defaultNotificationLimit     = 50
	maxNotificationLimit         = 200
)

// NotificationService keeps the in-app inbox. It is the engine's default
// Notifier and serves the inbox endpoints.
type NotificationService struct {
	DB     *gorm.DB
	Logger *slog.Logger
}

func NewNotificationService(db *gorm.DB, logger *slog.Logger) *NotificationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationService{DB: db, Logger: logger}
}

// NotifyAchievement writes an inbox entry for a new award.
func (s *NotificationService) NotifyAchievement(ctx context.Context, userID, name string, points int) error {
	n := &models.Notification{
		ID:         uuid.NewString(),
		UserID:     userID,
		Title:      achievementNotificationTitle,
		Message:    fmt.Sprintf("%s (+%d points)", name, points),
		Type:       models.NotificationTypeAchievement,
		Priority:   models.NotificationPriorityMedium,
		ActionData: map[string]any{"points": points},
	}
	if err := s.DB.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// --- User Handlers ---

// GetUserNotifications lists the caller's notifications, newest first.
// Query: limit (default 50), unread=true.
func (s *NotificationService) GetUserNotifications(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User ID not found in context"})
	}

	limit := defaultNotificationLimit
	if raw := c.Query("limit"); raw != "" {
		l, err := strconv.Atoi(raw)
		if err != nil || l <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid limit parameter"})
		}
		limit = min(l, maxNotificationLimit)
	}

	query := s.DB.WithContext(c.UserContext()).Where("user_id = ?", userID)
	if strings.EqualFold(c.Query("unread"), "true") {
		query = query.Where("read = ?", false)
	}

	var notifications []models.Notification
	if err := query.Order("created_at DESC").Limit(limit).Find(&notifications).Error; err != nil {
		s.Logger.Error("[NOTIFY] fetch notifications failed", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch notifications"})
	}
	return c.JSON(notifications)
}

// MarkNotificationRead marks one of the caller's notifications as read (idempotent).
func (s *NotificationService) MarkNotificationRead(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid notification ID"})
	}

	var n models.Notification
	if err := s.DB.WithContext(c.UserContext()).Where("id = ? AND user_id = ?", id, userID).First(&n).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Notification not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	if !n.Read {
		if err := s.DB.WithContext(c.UserContext()).Model(&n).Update("read", true).Error; err != nil {
			s.Logger.Error("[NOTIFY] mark read failed", "notification_id", id, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to mark as read"})
		}
	}
	return c.JSON(fiber.Map{"message": "OK", "notification_id": n.ID, "read": true})
}

// MarkAllNotificationsRead marks every unread notification of the caller as read.
func (s *NotificationService) MarkAllNotificationsRead(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	result := s.DB.WithContext(c.UserContext()).Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)
	if result.Error != nil {
		s.Logger.Error("[NOTIFY] bulk mark read failed", "user_id", userID, "error", result.Error)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update notifications"})
	}
	return c.JSON(fiber.Map{"message": "OK", "marked_count": result.RowsAffected})
}
