package catalog

import (
	"achievement-engine/models"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CategoryLabel is the display name for a category.
func CategoryLabel(c models.Category) string {
	if c == models.CategoryCV {
		return "CV"
	}
	// Casers carry state, so one per call.
	return cases.Title(language.English).String(string(c))
}

// RarityLabel is the display name for a rarity.
func RarityLabel(r models.Rarity) string {
	return cases.Title(language.English).String(string(r))
}
