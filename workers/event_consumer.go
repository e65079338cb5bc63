package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"achievement-engine/models"

	"github.com/nats-io/nats.go"
)

const (
	// ActivitySubject carries JSON analytics events from other services.
	ActivitySubject = "activity.events"
	// ActivityQueue spreads deliveries across engine replicas.
	ActivityQueue = "achievement-engine"
)

type EventTracker interface {
	TrackEvent(ctx context.Context, ev *models.AnalyticsEvent) error
}

// EventConsumer records activity published on NATS and runs a pass for the
// acting user.
type EventConsumer struct {
	tracker EventTracker
	checker AwardChecker
	logger  *slog.Logger
}

func NewEventConsumer(tracker EventTracker, checker AwardChecker, logger *slog.Logger) *EventConsumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventConsumer{tracker: tracker, checker: checker, logger: logger}
}

// Subscribe joins the activity queue group. Messages are handled with ctx
// until the returned subscription is drained.
func (c *EventConsumer) Subscribe(ctx context.Context, nc *nats.Conn) (*nats.Subscription, error) {
	sub, err := nc.QueueSubscribe(ActivitySubject, ActivityQueue, func(m *nats.Msg) {
		awarded, err := c.Handle(ctx, m.Data)
		if err != nil {
			c.logger.Warn("[EVENTS] message dropped", "subject", m.Subject, "error", err)
			return
		}
		if len(awarded) > 0 {
			c.logger.Debug("[EVENTS] event produced awards", "count", len(awarded))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", ActivitySubject, err)
	}
	return sub, nil
}

// Handle decodes one event, stores it and returns what the follow-up pass
// awarded. A redelivered event with the same id fails to store and is not
// evaluated twice.
func (c *EventConsumer) Handle(ctx context.Context, data []byte) ([]models.Achievement, error) {
	var ev models.AnalyticsEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("decode activity event: %w", err)
	}
	if err := c.tracker.TrackEvent(ctx, &ev); err != nil {
		return nil, err
	}
	return c.checker.CheckAndAward(ctx, ev.UserID), nil
}
