package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartSweepScheduler(t *testing.T) {
	var runs atomic.Int32
	sched, err := StartSweepScheduler(context.Background(), 20*time.Millisecond, func(context.Context) error {
		if runs.Add(1) == 1 {
			return errors.New("first run fails")
		}
		return nil
	}, nil)
	require.NoError(t, err)
	defer func() { _ = sched.Shutdown() }()

	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, 2*time.Second, 10*time.Millisecond,
		"a failed sweep must not stop later runs")
}

func TestStartSweepScheduler_RejectsBadInterval(t *testing.T) {
	_, err := StartSweepScheduler(context.Background(), 0, func(context.Context) error { return nil }, nil)
	assert.Error(t, err)
}
