package services

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"achievement-engine/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SSEPollInterval is how often the stream checks for new notifications.
var SSEPollInterval = 2 * time.Second

// StreamUserNotificationsSSE streams new notifications for the authenticated user.
func (s *NotificationService) StreamUserNotificationsSSE(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User ID not found in context"})
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no") // nginx

	// The request context is recycled once the handler returns; the stream
	// writer outlives it.
	done := c.Context().Done()

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		ticker := time.NewTicker(SSEPollInterval)
		defer ticker.Stop()
		s.streamNotifications(w, userID, ticker.C, done)
	})
	return nil
}

// streamNotifications runs until done closes or a flush fails. fasthttp only
// closes done at server shutdown, so a failed flush is how a disconnected
// client is noticed.
func (s *NotificationService) streamNotifications(w *bufio.Writer, userID string, ticks <-chan time.Time, done <-chan struct{}) {
	cursor, err := s.latestNotificationAt(userID)
	if err != nil {
		s.Logger.Error("[SSE] init failed", "user_id", userID, "error", err)
	}

	// Initial keepalive (comment event)
	_, _ = w.WriteString(":\n\n")
	if err := w.Flush(); err != nil {
		return
	}

	for {
		select {
		case <-ticks:
			cursor, err = s.streamTick(w, userID, cursor)
			if err != nil {
				s.Logger.Info("[SSE] client gone", "user_id", userID, "error", err)
				return
			}
		case <-done:
			return
		}
	}
}

// streamTick writes a keepalive plus any notifications newer than cursor and
// flushes. It returns the advanced cursor.
func (s *NotificationService) streamTick(w *bufio.Writer, userID string, cursor time.Time) (time.Time, error) {
	_, _ = w.WriteString(":\n\n")

	fresh, err := s.notificationsAfter(userID, cursor)
	if err != nil {
		s.Logger.Warn("[SSE] poll failed", "user_id", userID, "error", err)
	} else if len(fresh) > 0 {
		if err := writeNotificationEvents(w, fresh); err != nil {
			return cursor, err
		}
		cursor = fresh[len(fresh)-1].CreatedAt
	}
	return cursor, w.Flush()
}

func (s *NotificationService) latestNotificationAt(userID string) (time.Time, error) {
	var latest models.Notification
	err := s.DB.WithContext(context.Background()).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&latest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return latest.CreatedAt, nil
}

func (s *NotificationService) notificationsAfter(userID string, cursor time.Time) ([]models.Notification, error) {
	var fresh []models.Notification
	err := s.DB.WithContext(context.Background()).
		Where("user_id = ? AND created_at > ?", userID, cursor).
		Order("created_at ASC").
		Find(&fresh).Error
	return fresh, err
}

func writeNotificationEvents(w *bufio.Writer, notifications []models.Notification) error {
	for _, n := range notifications {
		payload, err := json.Marshal(n)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", n.Type, payload); err != nil {
			return err
		}
	}
	return nil
}
