package services

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Failure stages for EngineMetrics.Failures.
const (
	StageLoadAwards  = "load_awards"
	StageLoadMetrics = "load_metrics"
	StagePersist     = "persist"
	StagePoints      = "points"
	StageNotify      = "notify"
)

// EngineMetrics are the engine's prometheus collectors.
type EngineMetrics struct {
	Awarded       *prometheus.CounterVec
	Failures      *prometheus.CounterVec
	CheckDuration prometheus.Histogram
}

// NewEngineMetrics creates the collectors and registers them on reg. A nil reg
// leaves them unregistered, which is what tests want.
func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	m := &EngineMetrics{
		Awarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "achievements_awarded_total",
			Help: "Achievements awarded, by category.",
		}, []string{"category"}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "achievement_award_failures_total",
			Help: "Failures during check passes, by stage.",
		}, []string{"stage"}),
		CheckDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "achievement_check_duration_seconds",
			Help:    "Duration of a single user's check pass.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Awarded, m.Failures, m.CheckDuration)
	}
	return m
}
