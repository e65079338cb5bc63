package services

import (
	"time"

	"achievement-engine/models"
)

// MetricsSnapshot is one point-in-time read of everything the resolvers need.
// A check pass takes exactly one of these per user.
type MetricsSnapshot struct {
	UserID  string
	TakenAt time.Time

	ProfileBasicInfo     bool
	ProfileCompletion    float64
	ProfileCompleteSince *time.Time

	CVGenerated int
	BestCVScore float64

	InterviewsCompleted   int
	BestInterviewScore    float64
	AverageInterviewScore float64

	JobApplications       int
	HighMatchApplications int

	SkillsAdded    int
	LanguagesAdded int

	TotalPoints int

	// Raw history for the time-based metrics.
	SessionStarts []time.Time
	EventTimes    []time.Time
}

// Metric is a known metric key.
type Metric string

const (
	MetricProfileBasicInfo      Metric = "profile_basic_info"
	MetricProfileCompletion     Metric = "profile_completion"
	MetricProfileCompletion100  Metric = "profile_completion_100"
	MetricCVGenerated           Metric = "cv_generated"
	MetricCVCompletionScore     Metric = "cv_completion_score"
	MetricInterviewCompleted    Metric = "interview_completed"
	MetricInterviewBestScore    Metric = "interview_best_score"
	MetricInterviewAverageScore Metric = "interview_average_score"
	MetricJobApplied            Metric = "job_applied"
	MetricHighMatchApplications Metric = "high_match_applications"
	MetricSkillsAdded           Metric = "skills_added"
	MetricLanguagesAdded        Metric = "languages_added"
	MetricTotalPoints           Metric = "total_points"
	MetricDailyLogin            Metric = "daily_login"
	MetricWeekendActivities     Metric = "weekend_activities"
	MetricEarlyMorningActivity  Metric = "early_morning_activity"
	MetricLateNightActivity     Metric = "late_night_activity"
)

// HighMatchThreshold is the job match score at or above which an application
// counts toward high_match_applications.
const HighMatchThreshold = 90

type metricResolver func(s *MetricsSnapshot) float64

var metricResolvers = map[Metric]metricResolver{
	MetricProfileBasicInfo: func(s *MetricsSnapshot) float64 {
		if s.ProfileBasicInfo {
			return 1
		}
		return 0
	},
	MetricProfileCompletion: func(s *MetricsSnapshot) float64 { return s.ProfileCompletion },
	MetricProfileCompletion100: func(s *MetricsSnapshot) float64 {
		if s.ProfileCompletion < 100 || s.ProfileCompleteSince == nil {
			return 0
		}
		return float64(DaysSince(s.TakenAt, *s.ProfileCompleteSince))
	},
	MetricCVGenerated:           func(s *MetricsSnapshot) float64 { return float64(s.CVGenerated) },
	MetricCVCompletionScore:     func(s *MetricsSnapshot) float64 { return s.BestCVScore },
	MetricInterviewCompleted:    func(s *MetricsSnapshot) float64 { return float64(s.InterviewsCompleted) },
	MetricInterviewBestScore:    func(s *MetricsSnapshot) float64 { return s.BestInterviewScore },
	MetricInterviewAverageScore: func(s *MetricsSnapshot) float64 { return s.AverageInterviewScore },
	MetricJobApplied:            func(s *MetricsSnapshot) float64 { return float64(s.JobApplications) },
	MetricHighMatchApplications: func(s *MetricsSnapshot) float64 { return float64(s.HighMatchApplications) },
	MetricSkillsAdded:           func(s *MetricsSnapshot) float64 { return float64(s.SkillsAdded) },
	MetricLanguagesAdded:        func(s *MetricsSnapshot) float64 { return float64(s.LanguagesAdded) },
	MetricTotalPoints:           func(s *MetricsSnapshot) float64 { return float64(s.TotalPoints) },
	MetricDailyLogin: func(s *MetricsSnapshot) float64 {
		return float64(CurrentLoginStreak(s.TakenAt, s.SessionStarts))
	},
	MetricWeekendActivities: func(s *MetricsSnapshot) float64 {
		return float64(WeekendActivities(s.EventTimes))
	},
	MetricEarlyMorningActivity: func(s *MetricsSnapshot) float64 {
		return float64(EarlyMorningActivities(s.EventTimes))
	},
	MetricLateNightActivity: func(s *MetricsSnapshot) float64 {
		return float64(LateNightActivities(s.EventTimes))
	},
}

// IsKnownMetric reports whether ResolveMetric has a resolver for metric.
func IsKnownMetric(metric string) bool {
	_, ok := metricResolvers[Metric(metric)]
	return ok
}

// ResolveMetric maps a metric key to its current value. Unknown metrics and a
// nil snapshot resolve to 0, so a typo in the catalog makes a gte requirement
// unreachable rather than failing the pass.
func ResolveMetric(metric string, snap *MetricsSnapshot) float64 {
	if snap == nil {
		return 0
	}
	resolve, ok := metricResolvers[Metric(metric)]
	if !ok {
		return 0
	}
	return resolve(snap)
}

// Compare applies op to current and target. Unknown operators never match.
func Compare(current, target float64, op models.Operator) bool {
	switch op {
	case models.OpGTE:
		return current >= target
	case models.OpLTE:
		return current <= target
	case models.OpEQ:
		return current == target
	case models.OpGT:
		return current > target
	case models.OpLT:
		return current < target
	}
	return false
}

// Satisfied is true when every requirement holds. An empty list is vacuously
// satisfied; the catalog rejects such entries at load.
func Satisfied(reqs []models.Requirement, snap *MetricsSnapshot) bool {
	for _, r := range reqs {
		if !Compare(ResolveMetric(r.Metric, snap), r.Value, r.Operator) {
			return false
		}
	}
	return true
}
