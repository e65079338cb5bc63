package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartSweepScheduler runs sweep every interval until the returned scheduler
// is shut down. A run still in progress when the next one is due is skipped.
func StartSweepScheduler(ctx context.Context, interval time.Duration, sweep func(context.Context) error, logger *slog.Logger) (gocron.Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("sweep interval must be positive, got %s", interval)
	}
	if logger == nil {
		logger = slog.Default()
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if err := sweep(ctx); err != nil {
				logger.Error("[Scheduler] sweep failed", "error", err)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName("achievement-sweep"),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("schedule sweep: %w", err)
	}

	sched.Start()
	logger.Info("[Scheduler] sweep scheduled", "interval", interval)
	return sched, nil
}
