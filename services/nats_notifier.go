package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// AwardSubjectPrefix is followed by the user id.
const AwardSubjectPrefix = "achievements.awarded."

// Publisher is the slice of *nats.Conn the notifier needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

var _ Publisher = (*nats.Conn)(nil)

// AwardMessage is the payload published for each new award.
type AwardMessage struct {
	UserID      string    `json:"user_id"`
	Achievement string    `json:"achievement"`
	Points      int       `json:"points"`
	AwardedAt   time.Time `json:"awarded_at"`
}

// NATSNotifier publishes awards for downstream consumers (push delivery,
// feeds). It does not wait for any subscriber.
type NATSNotifier struct {
	pub Publisher
	now func() time.Time
}

func NewNATSNotifier(pub Publisher) *NATSNotifier {
	return &NATSNotifier{pub: pub, now: time.Now}
}

func (n *NATSNotifier) NotifyAchievement(ctx context.Context, userID, name string, points int) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before publish: %w", err)
	}
	data, err := json.Marshal(AwardMessage{
		UserID:      userID,
		Achievement: name,
		Points:      points,
		AwardedAt:   n.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal award message: %w", err)
	}
	if err := n.pub.Publish(AwardSubjectPrefix+userID, data); err != nil {
		return fmt.Errorf("publish award: %w", err)
	}
	return nil
}
