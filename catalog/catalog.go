// Package catalog holds the immutable, versioned list of achievement definitions.
//
// A Catalog is built once at process start (from the built-in defaults, a YAML
// file or an S3/R2 object), validated, and then passed explicitly to whatever
// needs it. There are no mutation operations.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"achievement-engine/models"

	"github.com/gosimple/slug"
)

// ErrNotFound is returned by lookups that must resolve an id.
var ErrNotFound = errors.New("achievement not found")

// Catalog is safe for concurrent use; every accessor returns copies.
type Catalog struct {
	version      string
	achievements []models.Achievement
	index        map[string]int
}

// New validates achievements and builds a Catalog. Every structural problem is
// reported at once in a *ValidationError.
func New(version string, achievements []models.Achievement) (*Catalog, error) {
	if err := Validate(achievements); err != nil {
		return nil, err
	}

	c := &Catalog{
		version:      version,
		achievements: make([]models.Achievement, len(achievements)),
		index:        make(map[string]int, len(achievements)),
	}
	for i, a := range achievements {
		c.achievements[i] = clone(a)
		c.index[a.ID] = i
	}
	return c, nil
}

// MustNew is New for compiled-in catalogs; it panics on invalid input.
func MustNew(version string, achievements []models.Achievement) *Catalog {
	c, err := New(version, achievements)
	if err != nil {
		panic(fmt.Sprintf("catalog %s: %v", version, err))
	}
	return c
}

func (c *Catalog) Version() string { return c.version }

func (c *Catalog) Len() int { return len(c.achievements) }

// ByID returns the achievement with the given id.
func (c *Catalog) ByID(id string) (models.Achievement, bool) {
	i, ok := c.index[id]
	if !ok {
		return models.Achievement{}, false
	}
	return clone(c.achievements[i]), true
}

// Lookup is ByID with an error for callers that propagate failures.
func (c *Catalog) Lookup(id string) (models.Achievement, error) {
	a, ok := c.ByID(id)
	if !ok {
		return models.Achievement{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return a, nil
}

// ByCategory returns achievements in category, in catalog order.
func (c *Catalog) ByCategory(category models.Category) []models.Achievement {
	return c.filter(func(a models.Achievement) bool { return a.Category == category })
}

// All returns every achievement in catalog order.
func (c *Catalog) All() []models.Achievement {
	return c.filter(func(models.Achievement) bool { return true })
}

// Visible returns the achievements whose existence may be shown before earning.
func (c *Catalog) Visible() []models.Achievement {
	return c.filter(func(a models.Achievement) bool { return !a.Hidden })
}

func (c *Catalog) filter(keep func(models.Achievement) bool) []models.Achievement {
	out := make([]models.Achievement, 0, len(c.achievements))
	for _, a := range c.achievements {
		if keep(a) {
			out = append(out, clone(a))
		}
	}
	return out
}

func clone(a models.Achievement) models.Achievement {
	a.Requirements = append([]models.Requirement(nil), a.Requirements...)
	return a
}

// ValidationError lists every problem found in a catalog definition.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid catalog (%d problems): %s", len(e.Problems), strings.Join(e.Problems, "; "))
}

// Validate checks the structural rules an achievement needs to ever be earnable.
// Metric names are not checked: unknown metrics resolve to 0 at evaluation time.
func Validate(achievements []models.Achievement) error {
	var problems []string
	seen := make(map[string]bool, len(achievements))

	for i, a := range achievements {
		ref := fmt.Sprintf("achievement[%d] %q", i, a.ID)

		switch {
		case a.ID == "":
			problems = append(problems, fmt.Sprintf("achievement[%d]: id is required", i))
		case !slug.IsSlug(a.ID):
			problems = append(problems, ref+": id must be a lowercase slug")
		case seen[a.ID]:
			problems = append(problems, ref+": duplicate id")
		}
		seen[a.ID] = true

		if strings.TrimSpace(a.Name) == "" {
			problems = append(problems, ref+": name is required")
		}
		if !a.Category.Valid() {
			problems = append(problems, fmt.Sprintf("%s: unknown category %q", ref, a.Category))
		}
		if !a.Rarity.Valid() {
			problems = append(problems, fmt.Sprintf("%s: unknown rarity %q", ref, a.Rarity))
		}
		if a.Points < 0 {
			problems = append(problems, ref+": points must not be negative")
		}
		if len(a.Requirements) == 0 {
			problems = append(problems, ref+": at least one requirement is required")
		}
		for j, r := range a.Requirements {
			rref := fmt.Sprintf("%s requirement[%d]", ref, j)
			if strings.TrimSpace(r.Metric) == "" {
				problems = append(problems, rref+": metric is required")
			}
			if !r.Operator.Valid() {
				problems = append(problems, fmt.Sprintf("%s: unknown operator %q", rref, r.Operator))
			}
			if !r.Type.Valid() {
				problems = append(problems, fmt.Sprintf("%s: unknown type %q", rref, r.Type))
			}
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
