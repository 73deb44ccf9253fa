package ecosystem

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicpulse/clinicpulse/internal/models"
)

func socialInput(collapsed Collapsed) Input {
	return NewInput("Clinic", []Category{{
		Name:   "Social",
		Angle:  0,
		Leaves: []Leaf{{ID: "A", Label: "Instagram"}, {ID: "B", Label: "Facebook"}},
	}}, collapsed)
}

func nodeByID(t *testing.T, g Graph, id string) Node {
	t.Helper()
	for _, n := range g.Nodes {
		if n.ID == id {
			return n
		}
	}
	t.Fatalf("node %q not found", id)
	return Node{}
}

func TestComputeIsDeterministic(t *testing.T) {
	first, err := Compute(socialInput(Collapsed{}))
	require.NoError(t, err)
	second, err := Compute(socialInput(Collapsed{}))
	require.NoError(t, err)

	require.Len(t, first.Nodes, 4)
	assert.Equal(t, first, second)
	for i := range first.Nodes {
		assert.Equal(t, first.Nodes[i].ID, second.Nodes[i].ID)
		assert.Equal(t, first.Nodes[i].Position.X, second.Nodes[i].Position.X)
		assert.Equal(t, first.Nodes[i].Position.Y, second.Nodes[i].Position.Y)
	}
}

func TestComputePositions(t *testing.T) {
	g, err := Compute(socialInput(nil))
	require.NoError(t, err)

	hub := nodeByID(t, g, HubID)
	assert.Equal(t, KindHub, hub.Kind)
	assert.Equal(t, "Clinic", hub.Label)
	assert.Equal(t, Point{X: 500, Y: 400}, hub.Position)

	cat := nodeByID(t, g, "category-0")
	assert.Equal(t, KindCategory, cat.Kind)
	assert.InDelta(t, 700, cat.Position.X, 1e-9)
	assert.InDelta(t, 400, cat.Position.Y, 1e-9)

	// two leaves at -45° and +45° around the category angle
	a := nodeByID(t, g, "A")
	b := nodeByID(t, g, "B")
	d := 100 / math.Sqrt2
	assert.InDelta(t, 700+d, a.Position.X, 1e-9)
	assert.InDelta(t, 400-d, a.Position.Y, 1e-9)
	assert.InDelta(t, 700+d, b.Position.X, 1e-9)
	assert.InDelta(t, 400+d, b.Position.Y, 1e-9)
	assert.Equal(t, "Social", a.Category)
}

func TestComputeFansLeavesEvenly(t *testing.T) {
	leaves := []Leaf{{ID: "1"}, {ID: "2"}, {ID: "3"}, {ID: "4"}, {ID: "5"}}
	in := NewInput("Clinic", []Category{{Name: "Ads", Angle: math.Pi / 2, Leaves: leaves}}, nil)

	g, err := Compute(in)
	require.NoError(t, err)

	cat := nodeByID(t, g, "category-0")
	for i, id := range []string{"1", "2", "3", "4", "5"} {
		leaf := nodeByID(t, g, id)
		want := math.Pi/2 - math.Pi/4 + float64(i)*(math.Pi/8)
		got := math.Atan2(leaf.Position.Y-cat.Position.Y, leaf.Position.X-cat.Position.X)
		assert.InDelta(t, want, got, 1e-9, "leaf %s", id)
		assert.InDelta(t, 100, math.Hypot(leaf.Position.X-cat.Position.X, leaf.Position.Y-cat.Position.Y), 1e-9)
	}
}

func TestComputeSingleLeafSitsAtFanStart(t *testing.T) {
	in := NewInput("Clinic", []Category{{Name: "Ads", Angle: math.Pi, Leaves: []Leaf{{ID: "only"}}}}, nil)

	g, err := Compute(in)
	require.NoError(t, err)

	category := nodeByID(t, g, "category-0")
	leaf := nodeByID(t, g, "only")
	angle := math.Atan2(leaf.Position.Y-category.Position.Y, leaf.Position.X-category.Position.X)
	assert.InDelta(t, 3*math.Pi/4, angle, 1e-9)
	assert.InDelta(t, 300+100*math.Cos(3*math.Pi/4), leaf.Position.X, 1e-9)
	assert.InDelta(t, 400+100*math.Sin(3*math.Pi/4), leaf.Position.Y, 1e-9)
}

func TestCollapsedCategoryOmitsLeaves(t *testing.T) {
	in := NewInput("Clinic", []Category{
		{Name: "Social", Angle: 0, Leaves: []Leaf{{ID: "A"}, {ID: "B"}}},
		{Name: "Ads", Angle: math.Pi, Leaves: []Leaf{{ID: "C"}}},
	}, NewCollapsed("category-0"))

	g, err := Compute(in)
	require.NoError(t, err)

	ids := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[i] = n.ID
	}
	assert.Equal(t, []string{HubID, "category-0", "category-1", "C"}, ids)
	assert.Equal(t, []Edge{
		{From: HubID, To: "category-0"},
		{From: HubID, To: "category-1"},
		{From: "category-1", To: "C"},
	}, g.Edges)
}

func TestDuplicateCategoryNamesStayDistinct(t *testing.T) {
	in := NewInput("Clinic", []Category{
		{Name: "Social", Angle: 0, Leaves: []Leaf{{ID: "A"}}},
		{Name: "Social", Angle: math.Pi, Leaves: []Leaf{{ID: "B"}}},
	}, NewCollapsed("category-1"))

	g, err := Compute(in)
	require.NoError(t, err)

	assert.Len(t, g.Nodes, 4)
	nodeByID(t, g, "A")
	for _, n := range g.Nodes {
		assert.NotEqual(t, "B", n.ID)
	}
	assert.NotEqual(t, nodeByID(t, g, "category-0").Position, nodeByID(t, g, "category-1").Position)
}

func TestEmptyCategoryStillEmitsNode(t *testing.T) {
	in := NewInput("Clinic", []Category{{Name: "Analytics & Tools", Angle: 5 * math.Pi / 3}}, nil)

	g, err := Compute(in)
	require.NoError(t, err)

	require.Len(t, g.Nodes, 2)
	assert.Equal(t, "Category containing 0 assets", g.Nodes[1].Description)
}

func TestComputeRejectsMalformedInput(t *testing.T) {
	valid := socialInput(nil)

	tests := []struct {
		name   string
		mutate func(*Input)
		field  string
	}{
		{"no categories", func(in *Input) { in.Categories = nil }, "categories"},
		{"negative category radius", func(in *Input) { in.CategoryRadius = -1 }, "category_radius"},
		{"negative leaf radius", func(in *Input) { in.LeafRadius = -0.5 }, "leaf_radius"},
		{"zero canvas", func(in *Input) { in.Canvas.Width = 0 }, "canvas"},
		{"infinite canvas", func(in *Input) { in.Canvas.Height = math.Inf(1) }, "canvas"},
		{"oversized fan", func(in *Input) { in.FanSpan = 7 }, "fan_span"},
		{"nan angle", func(in *Input) {
			in.Categories = []Category{{Name: "x", Angle: math.NaN()}}
		}, "category-0"},
		{"leaf without id", func(in *Input) {
			in.Categories = []Category{{Name: "x", Leaves: []Leaf{{Label: "anonymous"}}}}
		}, "category-0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)

			_, err := Compute(in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidLayout))

			var layoutErr *LayoutError
			require.True(t, errors.As(err, &layoutErr))
			assert.Equal(t, tt.field, layoutErr.Field)
		})
	}
}

func TestDefaultCategoriesGroupsAssets(t *testing.T) {
	assets := []models.Asset{
		{ID: "1", Name: "Website", Type: models.AssetWebsite, Status: models.StatusActive},
		{ID: "2", Name: "Instagram", Type: models.AssetSocialMedia, Status: models.StatusWarning},
		{ID: "3", Name: "GBP", Type: models.AssetGMB, Status: models.StatusActive},
		{ID: "4", Name: "Yelp", Type: models.AssetReviewPlatform},
		{ID: "5", Name: "Google Ads", Type: models.AssetAdvertising},
	}

	cats := DefaultCategories(assets)
	require.Len(t, cats, 6)

	assert.Equal(t, "Foundational Platforms", cats[0].Name)
	require.Len(t, cats[0].Leaves, 2)
	assert.Equal(t, "1", cats[0].Leaves[0].ID)
	assert.Equal(t, "3", cats[0].Leaves[1].ID)
	assert.Equal(t, "2", cats[1].Leaves[0].ID)
	assert.Equal(t, "4", cats[2].Leaves[0].ID)
	assert.Equal(t, "5", cats[3].Leaves[0].ID)
	assert.Empty(t, cats[4].Leaves)
	assert.InDelta(t, math.Pi, cats[3].Angle, 1e-12)

	g, err := Compute(NewInput("Clinic", cats, nil))
	require.NoError(t, err)
	assert.Equal(t, "social media with warning status", nodeByID(t, g, "2").Description)
}

func TestSpreadEvenly(t *testing.T) {
	cats := SpreadEvenly([]Category{{Name: "a"}, {Name: "b"}, {Name: "c"}, {Name: "d"}})
	assert.InDelta(t, 0, cats[0].Angle, 1e-12)
	assert.InDelta(t, math.Pi/2, cats[1].Angle, 1e-12)
	assert.InDelta(t, math.Pi, cats[2].Angle, 1e-12)
	assert.InDelta(t, 3*math.Pi/2, cats[3].Angle, 1e-12)
}

func TestCollapsedToggle(t *testing.T) {
	c := ParseCollapsed("category-2, category-0,")
	assert.Equal(t, []string{"category-0", "category-2"}, c.IDs())

	next := c.Toggle("category-0").Toggle("category-5")
	assert.Equal(t, []string{"category-2", "category-5"}, next.IDs())
	assert.True(t, c.Has("category-0"), "toggle must not mutate the receiver")

	var none Collapsed
	assert.False(t, none.Has("category-0"))
}
