package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	subject string
	data    []byte
	err     error
}

func (p *capturePublisher) Publish(subject string, data []byte) error {
	p.subject, p.data = subject, data
	return p.err
}

func TestNATSNotifier_Publishes(t *testing.T) {
	pub := &capturePublisher{}
	n := NewNATSNotifier(pub)
	n.now = fixedClock(time.Date(2025, 6, 18, 9, 0, 0, 0, time.UTC))

	require.NoError(t, n.NotifyAchievement(context.Background(), "u1", "Polyglot", 200))
	assert.Equal(t, "achievements.awarded.u1", pub.subject)

	var msg AwardMessage
	require.NoError(t, json.Unmarshal(pub.data, &msg))
	assert.Equal(t, AwardMessage{
		UserID: "u1", Achievement: "Polyglot", Points: 200,
		AwardedAt: time.Date(2025, 6, 18, 9, 0, 0, 0, time.UTC),
	}, msg)
}

func TestNATSNotifier_Errors(t *testing.T) {
	pub := &capturePublisher{err: errors.New("nats: connection closed")}
	n := NewNATSNotifier(pub)
	assert.Error(t, n.NotifyAchievement(context.Background(), "u1", "Polyglot", 200))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	pub.err = nil
	assert.ErrorIs(t, NewNATSNotifier(pub).NotifyAchievement(ctx, "u1", "Polyglot", 200), context.Canceled)
}

func TestMultiNotifier(t *testing.T) {
	ok := &recordingNotifier{}
	failing := &recordingNotifier{err: errors.New("down")}
	m := MultiNotifier{ok, nil, failing}

	err := m.NotifyAchievement(context.Background(), "u1", "Job Hunter", 100)
	assert.Error(t, err)
	assert.Len(t, ok.sent, 1, "a failing notifier does not stop the others")
}
