package workers

import (
	"context"
	"testing"
	"time"

	"achievement-engine/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivitySweeper_FirstRunUsesLookback(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	lister := &stubLister{users: []string{"u1", "u2"}}
	checker := &recordingChecker{awards: map[string][]models.Achievement{
		"u2": {{ID: "daily-user"}},
	}}
	s := NewActivitySweeper(lister, checker, 24*time.Hour, nil)
	s.now = func() time.Time { return now }

	res, err := s.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, now.Add(-24*time.Hour), res.Since)
	assert.Equal(t, 2, res.Users)
	assert.Equal(t, 1, res.Awarded)
	assert.Equal(t, []string{"u1", "u2"}, checker.checked())

	later := now.Add(15 * time.Minute)
	s.now = func() time.Time { return later }
	res, err = s.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, now, res.Since, "second sweep starts where the first began")
}

func TestActivitySweeper_CursorHeldOnFailure(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	lister := &stubLister{err: errBoom}
	s := NewActivitySweeper(lister, &recordingChecker{}, time.Hour, nil)
	s.now = func() time.Time { return now }

	_, err := s.Sweep(context.Background())
	require.ErrorIs(t, err, errBoom)

	lister.err = nil
	s.now = func() time.Time { return now.Add(time.Minute) }
	require.NoError(t, s.Run(context.Background()))
	require.Len(t, lister.sinces, 2)
	assert.Equal(t, now.Add(-time.Hour), lister.sinces[0])
	assert.Equal(t, now.Add(time.Minute).Add(-time.Hour), lister.sinces[1], "cursor never advanced")
}

func TestActivitySweeper_Cancelled(t *testing.T) {
	lister := &stubLister{users: []string{"u1", "u2"}}
	checker := &recordingChecker{}
	s := NewActivitySweeper(lister, checker, time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Sweep(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, checker.checked())
	assert.True(t, s.cursor.IsZero())
}
