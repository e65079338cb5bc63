package services

import (
	"context"
	"errors"
)

// Notifier tells a user they earned something. Delivery is best effort: the
// engine logs a returned error and moves on.
type Notifier interface {
	NotifyAchievement(ctx context.Context, userID, name string, points int) error
}

// MultiNotifier fans out to every notifier and joins their errors.
type MultiNotifier []Notifier

func (m MultiNotifier) NotifyAchievement(ctx context.Context, userID, name string, points int) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.NotifyAchievement(ctx, userID, name, points); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type nopNotifier struct{}

func (nopNotifier) NotifyAchievement(context.Context, string, string, int) error { return nil }
