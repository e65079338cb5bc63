package models

import "time"

// Category groups achievements by the career area they reward.
type Category string

const (
	CategoryProfile    Category = "profile"
	CategoryCV         Category = "cv"
	CategoryInterview  Category = "interview"
	CategoryJobs       Category = "jobs"
	CategorySkills     Category = "skills"
	CategoryEngagement Category = "engagement"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryProfile,
	CategoryCV,
	CategoryInterview,
	CategoryJobs,
	CategorySkills,
	CategoryEngagement,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Rarity is a presentation weight only; evaluation never looks at it.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

var Rarities = []Rarity{RarityCommon, RarityUncommon, RarityRare, RarityEpic, RarityLegendary}

func (r Rarity) Valid() bool {
	for _, known := range Rarities {
		if r == known {
			return true
		}
	}
	return false
}

// RequirementType documents what kind of quantity a requirement measures.
type RequirementType string

const (
	RequirementCount      RequirementType = "count"
	RequirementScore      RequirementType = "score"
	RequirementStreak     RequirementType = "streak"
	RequirementTime       RequirementType = "time"
	RequirementCompletion RequirementType = "completion"
)

func (t RequirementType) Valid() bool {
	switch t {
	case RequirementCount, RequirementScore, RequirementStreak, RequirementTime, RequirementCompletion:
		return true
	}
	return false
}

// Operator compares a resolved metric against a requirement's target value.
type Operator string

const (
	OpGTE Operator = "gte"
	OpLTE Operator = "lte"
	OpEQ  Operator = "eq"
	OpGT  Operator = "gt"
	OpLT  Operator = "lt"
)

func (o Operator) Valid() bool {
	switch o {
	case OpGTE, OpLTE, OpEQ, OpGT, OpLT:
		return true
	}
	return false
}

// Requirement is a single condition: metric <operator> value.
type Requirement struct {
	Type     RequirementType `json:"type" yaml:"type"`
	Metric   string          `json:"metric" yaml:"metric"`
	Value    float64         `json:"value" yaml:"value"`
	Operator Operator        `json:"operator" yaml:"operator"`
}

// Achievement is an immutable catalog entry. All requirements must hold for it
// to be earned.
type Achievement struct {
	ID           string        `json:"id" yaml:"id"`
	Name         string        `json:"name" yaml:"name"`
	Description  string        `json:"description" yaml:"description"`
	Icon         string        `json:"icon" yaml:"icon"`
	Category     Category      `json:"category" yaml:"category"`
	Points       int           `json:"points" yaml:"points"`
	Requirements []Requirement `json:"requirements" yaml:"requirements"`
	Rarity       Rarity        `json:"rarity" yaml:"rarity"`
	Hidden       bool          `json:"hidden" yaml:"hidden"`
}

// AchievementProgress is a read view combining the catalog, the user's award
// record and live metrics. It is never persisted.
type AchievementProgress struct {
	Achievement Achievement `json:"achievement"`
	Earned      bool        `json:"earned"`
	Progress    float64     `json:"progress"`
	MaxProgress float64     `json:"max_progress"`
	EarnedAt    *time.Time  `json:"earned_at,omitempty"`
}
