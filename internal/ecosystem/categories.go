package ecosystem

import (
	"math"
	"slices"
	"strings"

	"github.com/clinicpulse/clinicpulse/internal/models"
)

// Collapsed is the set of category ids whose leaves are hidden.
type Collapsed map[string]struct{}

// NewCollapsed builds a set from category ids, skipping blanks.
func NewCollapsed(ids ...string) Collapsed {
	c := make(Collapsed, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			c[id] = struct{}{}
		}
	}
	return c
}

// ParseCollapsed reads a comma-separated list such as "category-0,category-3".
func ParseCollapsed(raw string) Collapsed {
	if raw == "" {
		return Collapsed{}
	}
	return NewCollapsed(strings.Split(raw, ",")...)
}

// Has reports whether id is collapsed. A nil set collapses nothing.
func (c Collapsed) Has(id string) bool {
	_, ok := c[id]
	return ok
}

// Toggle returns a new set with id flipped; the receiver is left untouched.
func (c Collapsed) Toggle(id string) Collapsed {
	next := make(Collapsed, len(c)+1)
	for k := range c {
		next[k] = struct{}{}
	}
	if c.Has(id) {
		delete(next, id)
	} else {
		next[id] = struct{}{}
	}
	return next
}

// IDs returns the collapsed ids in sorted order.
func (c Collapsed) IDs() []string {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

type categorySpec struct {
	name  string
	angle float64
	color string
	types []models.AssetType
}

var dashboardCategories = []categorySpec{
	{"Foundational Platforms", 0, "#10B981", []models.AssetType{models.AssetGMB, models.AssetWebsite}},
	{"Social Media", math.Pi / 3, "#8B5CF6", []models.AssetType{models.AssetSocialMedia}},
	{"Directories & Reviews", 2 * math.Pi / 3, "#F59E0B", []models.AssetType{models.AssetDirectory, models.AssetReviewPlatform}},
	{"Advertising", math.Pi, "#EF4444", []models.AssetType{models.AssetAdvertising}},
	{"Content & Engagement", 4 * math.Pi / 3, "#06B6D4", nil},
	{"Analytics & Tools", 5 * math.Pi / 3, "#6366F1", nil},
}

// DefaultCategories groups assets into the six dashboard categories. Assets
// keep their input order within a category; unknown types are left out.
func DefaultCategories(assets []models.Asset) []Category {
	cats := make([]Category, len(dashboardCategories))
	for i, spec := range dashboardCategories {
		cats[i] = Category{Name: spec.name, Angle: spec.angle, Color: spec.color}
		for _, a := range assets {
			if slices.Contains(spec.types, a.Type) {
				cats[i].Leaves = append(cats[i].Leaves, leafFromAsset(a))
			}
		}
	}
	return cats
}

// SpreadEvenly assigns angles 2πi/n to the categories in order.
func SpreadEvenly(categories []Category) []Category {
	out := slices.Clone(categories)
	for i := range out {
		out[i].Angle = 2 * math.Pi * float64(i) / float64(len(out))
	}
	return out
}

func leafFromAsset(a models.Asset) Leaf {
	return Leaf{
		ID:       a.ID,
		Label:    a.Name,
		Type:     string(a.Type),
		Status:   string(a.Status),
		Priority: string(a.Priority),
		Metrics:  a.Metrics,
		URL:      a.URL,
	}
}

func humanizeType(t string) string {
	return strings.ReplaceAll(t, "_", " ")
}
