package services

import "time"

// All day arithmetic here is on UTC calendar days.

const (
	earlyMorningBeforeHour = 6
	lateNightFromHour      = 23
)

func utcDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// CurrentLoginStreak counts consecutive UTC days with at least one session,
// ending today. No session today means no streak, whatever came before.
// Sessions after now are ignored.
func CurrentLoginStreak(now time.Time, sessionStarts []time.Time) int {
	today := utcDay(now)
	days := make(map[time.Time]struct{}, len(sessionStarts))
	for _, s := range sessionStarts {
		d := utcDay(s)
		if d.After(today) {
			continue
		}
		days[d] = struct{}{}
	}

	streak := 0
	for d := today; ; d = d.AddDate(0, 0, -1) {
		if _, ok := days[d]; !ok {
			break
		}
		streak++
	}
	return streak
}

// WeekendActivities counts events on a UTC Saturday or Sunday.
func WeekendActivities(eventTimes []time.Time) int {
	n := 0
	for _, t := range eventTimes {
		switch t.UTC().Weekday() {
		case time.Saturday, time.Sunday:
			n++
		}
	}
	return n
}

// EarlyMorningActivities counts events before 06:00 UTC.
func EarlyMorningActivities(eventTimes []time.Time) int {
	n := 0
	for _, t := range eventTimes {
		if t.UTC().Hour() < earlyMorningBeforeHour {
			n++
		}
	}
	return n
}

// LateNightActivities counts events from 23:00 UTC.
func LateNightActivities(eventTimes []time.Time) int {
	n := 0
	for _, t := range eventTimes {
		if t.UTC().Hour() >= lateNightFromHour {
			n++
		}
	}
	return n
}

// DaysSince is the inclusive number of UTC days from since to now: the same
// day counts as 1. A since in the future yields 0.
func DaysSince(now, since time.Time) int {
	from, to := utcDay(since), utcDay(now)
	if from.After(to) {
		return 0
	}
	return int(to.Sub(from).Hours()/24) + 1
}
