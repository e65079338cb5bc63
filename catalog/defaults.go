package catalog

import "achievement-engine/models"

// DefaultVersion identifies the compiled-in catalog.
const DefaultVersion = "builtin-1"

// Default returns the compiled-in catalog.
func Default() *Catalog {
	return MustNew(DefaultVersion, defaultAchievements())
}

func req(t models.RequirementType, metric string, value float64) models.Requirement {
	return models.Requirement{Type: t, Metric: metric, Value: value, Operator: models.OpGTE}
}

func defaultAchievements() []models.Achievement {
	return []models.Achievement{

		// ── Profile ─────────────────────────────────────────────────────────

		{
			ID: "profile-starter", Name: "Getting Started",
			Description: "Complete your basic profile information", Icon: "👤",
			Category: models.CategoryProfile, Points: 50, Rarity: models.RarityCommon,
			Requirements: []models.Requirement{req(models.RequirementCompletion, "profile_basic_info", 1)},
		},
		{
			ID: "profile-complete", Name: "Profile Pro",
			Description: "Complete 100% of your profile", Icon: "⭐",
			Category: models.CategoryProfile, Points: 200, Rarity: models.RarityUncommon,
			Requirements: []models.Requirement{req(models.RequirementScore, "profile_completion", 100)},
		},
		{
			ID: "profile-perfectionist", Name: "Perfectionist",
			Description: "Maintain 100% profile completion for 30 days", Icon: "💎",
			Category: models.CategoryProfile, Points: 500, Rarity: models.RarityEpic,
			Requirements: []models.Requirement{req(models.RequirementStreak, "profile_completion_100", 30)},
		},

		// ── CV ──────────────────────────────────────────────────────────────

		{
			ID: "cv-first", Name: "CV Creator",
			Description: "Generate your first CV", Icon: "📄",
			Category: models.CategoryCV, Points: 100, Rarity: models.RarityCommon,
			Requirements: []models.Requirement{req(models.RequirementCount, "cv_generated", 1)},
		},
		{
			ID: "cv-master", Name: "CV Master",
			Description: "Generate 5 different CVs", Icon: "📋",
			Category: models.CategoryCV, Points: 300, Rarity: models.RarityRare,
			Requirements: []models.Requirement{req(models.RequirementCount, "cv_generated", 5)},
		},
		{
			ID: "cv-perfectionist", Name: "CV Perfectionist",
			Description: "Generate a CV with 95%+ completion score", Icon: "🏆",
			Category: models.CategoryCV, Points: 250, Rarity: models.RarityUncommon,
			Requirements: []models.Requirement{req(models.RequirementScore, "cv_completion_score", 95)},
		},

		// ── Interview ───────────────────────────────────────────────────────

		{
			ID: "interview-rookie", Name: "Interview Rookie",
			Description: "Complete your first interview practice", Icon: "🎤",
			Category: models.CategoryInterview, Points: 75, Rarity: models.RarityCommon,
			Requirements: []models.Requirement{req(models.RequirementCount, "interview_completed", 1)},
		},
		{
			ID: "interview-ready", Name: "Interview Ready",
			Description: "Complete 10 interview practice sessions", Icon: "🎯",
			Category: models.CategoryInterview, Points: 400, Rarity: models.RarityRare,
			Requirements: []models.Requirement{req(models.RequirementCount, "interview_completed", 10)},
		},
		{
			ID: "interview-ace", Name: "Interview Ace",
			Description: "Score 90%+ on an interview practice", Icon: "🌟",
			Category: models.CategoryInterview, Points: 300, Rarity: models.RarityUncommon,
			Requirements: []models.Requirement{req(models.RequirementScore, "interview_best_score", 90)},
		},
		{
			ID: "interview-legend", Name: "Interview Legend",
			Description: "Complete 50 interview sessions with 85%+ average score", Icon: "👑",
			Category: models.CategoryInterview, Points: 1000, Rarity: models.RarityLegendary,
			Requirements: []models.Requirement{
				req(models.RequirementCount, "interview_completed", 50),
				req(models.RequirementScore, "interview_average_score", 85),
			},
		},

		// ── Jobs ────────────────────────────────────────────────────────────

		{
			ID: "job-hunter", Name: "Job Hunter",
			Description: "Apply to your first job", Icon: "🎯",
			Category: models.CategoryJobs, Points: 100, Rarity: models.RarityCommon,
			Requirements: []models.Requirement{req(models.RequirementCount, "job_applied", 1)},
		},
		{
			ID: "job-seeker", Name: "Active Job Seeker",
			Description: "Apply to 10 jobs", Icon: "🔍",
			Category: models.CategoryJobs, Points: 300, Rarity: models.RarityUncommon,
			Requirements: []models.Requirement{req(models.RequirementCount, "job_applied", 10)},
		},
		{
			ID: "job-magnet", Name: "Job Magnet",
			Description: "Apply to 5 jobs with 90%+ match score", Icon: "🧲",
			Category: models.CategoryJobs, Points: 400, Rarity: models.RarityRare,
			Requirements: []models.Requirement{req(models.RequirementCount, "high_match_applications", 5)},
		},

		// ── Skills ──────────────────────────────────────────────────────────

		{
			ID: "skill-builder", Name: "Skill Builder",
			Description: "Add 5 skills to your profile", Icon: "🛠️",
			Category: models.CategorySkills, Points: 75, Rarity: models.RarityCommon,
			Requirements: []models.Requirement{req(models.RequirementCount, "skills_added", 5)},
		},
		{
			ID: "skill-master", Name: "Skill Master",
			Description: "Add 20 skills across all categories", Icon: "🎓",
			Category: models.CategorySkills, Points: 250, Rarity: models.RarityUncommon,
			Requirements: []models.Requirement{req(models.RequirementCount, "skills_added", 20)},
		},
		{
			ID: "polyglot", Name: "Polyglot",
			Description: "Add 3 or more languages", Icon: "🌍",
			Category: models.CategorySkills, Points: 200, Rarity: models.RarityUncommon,
			Requirements: []models.Requirement{req(models.RequirementCount, "languages_added", 3)},
		},

		// ── Engagement ──────────────────────────────────────────────────────

		{
			ID: "daily-user", Name: "Daily User",
			Description: "Use the app for 7 consecutive days", Icon: "📅",
			Category: models.CategoryEngagement, Points: 150, Rarity: models.RarityCommon,
			Requirements: []models.Requirement{req(models.RequirementStreak, "daily_login", 7)},
		},
		{
			ID: "power-user", Name: "Power User",
			Description: "Use the app for 30 consecutive days", Icon: "⚡",
			Category: models.CategoryEngagement, Points: 500, Rarity: models.RarityRare,
			Requirements: []models.Requirement{req(models.RequirementStreak, "daily_login", 30)},
		},
		// Meta-achievement: no extra points.
		{
			ID: "career-champion", Name: "Career Champion",
			Description: "Reach 1000 total points", Icon: "🏅",
			Category: models.CategoryEngagement, Points: 0, Rarity: models.RarityEpic,
			Requirements: []models.Requirement{req(models.RequirementCount, "total_points", 1000)},
		},

		// ── Hidden ──────────────────────────────────────────────────────────

		{
			ID: "early-bird", Name: "Early Bird",
			Description: "Complete a task before 6 AM", Icon: "🌅",
			Category: models.CategoryEngagement, Points: 100, Rarity: models.RarityUncommon, Hidden: true,
			Requirements: []models.Requirement{req(models.RequirementCompletion, "early_morning_activity", 1)},
		},
		{
			ID: "night-owl", Name: "Night Owl",
			Description: "Complete a task after 11 PM", Icon: "🦉",
			Category: models.CategoryEngagement, Points: 100, Rarity: models.RarityUncommon, Hidden: true,
			Requirements: []models.Requirement{req(models.RequirementCompletion, "late_night_activity", 1)},
		},
		{
			ID: "weekend-warrior", Name: "Weekend Warrior",
			Description: "Complete 10 activities on weekends", Icon: "⚔️",
			Category: models.CategoryEngagement, Points: 200, Rarity: models.RarityRare, Hidden: true,
			Requirements: []models.Requirement{req(models.RequirementCount, "weekend_activities", 10)},
		},
	}
}
