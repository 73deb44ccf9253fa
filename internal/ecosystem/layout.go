// Package ecosystem computes the radial hub → category → leaf layout used by
// the ecosystem graph view. Layout is a pure function of its input: the same
// Input always yields the same nodes, in the same order, at the same positions.
package ecosystem

import (
	"fmt"
	"math"
	"strconv"
)

// Canvas and radius constants used by the dashboard graph.
const (
	DefaultWidth          = 1000.0
	DefaultHeight         = 800.0
	DefaultCategoryRadius = 200.0
	DefaultLeafRadius     = 100.0
	DefaultFanSpan        = math.Pi / 2

	HubID = "hub"
)

// NodeKind is the rank of a node in the graph.
type NodeKind string

const (
	KindHub      NodeKind = "hub"
	KindCategory NodeKind = "category"
	KindLeaf     NodeKind = "leaf"
)

// Point is a position on the canvas.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Node is one positioned vertex of the graph.
type Node struct {
	ID          string             `json:"id" yaml:"id"`
	Kind        NodeKind           `json:"kind" yaml:"kind"`
	Label       string             `json:"label" yaml:"label"`
	Category    string             `json:"category" yaml:"category"`
	Type        string             `json:"type,omitempty" yaml:"type,omitempty"`
	Status      string             `json:"status" yaml:"status"`
	Priority    string             `json:"priority" yaml:"priority"`
	Position    Point              `json:"position" yaml:"position"`
	Color       string             `json:"color,omitempty" yaml:"color,omitempty"`
	Metrics     map[string]float64 `json:"metrics,omitempty" yaml:"metrics,omitempty"`
	URL         string             `json:"url,omitempty" yaml:"url,omitempty"`
	Description string             `json:"description,omitempty" yaml:"description,omitempty"`
}

// Edge connects a parent node to a child node.
type Edge struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// Leaf is a concrete record rendered under a category.
type Leaf struct {
	ID       string
	Label    string
	Type     string
	Status   string
	Priority string
	Metrics  map[string]float64
	URL      string
}

// Category groups leaves at a fixed angle (radians) around the hub.
type Category struct {
	Name   string
	Angle  float64
	Color  string
	Leaves []Leaf
}

// Canvas is the drawing area; the hub sits at its centre.
type Canvas struct {
	Width  float64
	Height float64
}

// Input is everything the layout depends on.
type Input struct {
	Hub            string
	Categories     []Category
	Collapsed      Collapsed
	Canvas         Canvas
	CategoryRadius float64
	LeafRadius     float64
	FanSpan        float64
}

// Graph is the computed layout.
type Graph struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
}

// NewInput returns an Input using the dashboard's canvas and radii.
func NewInput(hub string, categories []Category, collapsed Collapsed) Input {
	return Input{
		Hub:            hub,
		Categories:     categories,
		Collapsed:      collapsed,
		Canvas:         Canvas{Width: DefaultWidth, Height: DefaultHeight},
		CategoryRadius: DefaultCategoryRadius,
		LeafRadius:     DefaultLeafRadius,
		FanSpan:        DefaultFanSpan,
	}
}

// CategoryID is the identity of the category at index i. Names are display
// only and may repeat.
func CategoryID(i int) string {
	return "category-" + strconv.Itoa(i)
}

// Compute lays out the hub, every category, and the leaves of every
// category that is not collapsed. Nodes are emitted hub first, then each
// category followed by its leaves, in input order.
func Compute(in Input) (Graph, error) {
	if err := in.validate(); err != nil {
		return Graph{}, err
	}

	center := Point{X: in.Canvas.Width / 2, Y: in.Canvas.Height / 2}
	leafCount := 0
	for _, cat := range in.Categories {
		leafCount += len(cat.Leaves)
	}

	g := Graph{
		Nodes: make([]Node, 0, 1+len(in.Categories)+leafCount),
		Edges: make([]Edge, 0, len(in.Categories)+leafCount),
	}

	g.Nodes = append(g.Nodes, Node{
		ID:          HubID,
		Kind:        KindHub,
		Label:       in.Hub,
		Category:    "Central Hub",
		Status:      "active",
		Priority:    "high",
		Position:    center,
		Description: "Primary digital hub for all ecosystem activities",
	})

	for i, cat := range in.Categories {
		id := CategoryID(i)
		pos := polar(center, in.CategoryRadius, cat.Angle)

		g.Nodes = append(g.Nodes, Node{
			ID:          id,
			Kind:        KindCategory,
			Label:       cat.Name,
			Category:    cat.Name,
			Status:      "active",
			Priority:    "medium",
			Position:    pos,
			Color:       cat.Color,
			Description: fmt.Sprintf("Category containing %d assets", len(cat.Leaves)),
		})
		g.Edges = append(g.Edges, Edge{From: HubID, To: id})

		if in.Collapsed.Has(id) {
			continue
		}

		for j, leaf := range cat.Leaves {
			g.Nodes = append(g.Nodes, Node{
				ID:          leaf.ID,
				Kind:        KindLeaf,
				Label:       leaf.Label,
				Category:    cat.Name,
				Type:        leaf.Type,
				Status:      leaf.Status,
				Priority:    leaf.Priority,
				Position:    polar(pos, in.LeafRadius, fanAngle(cat.Angle, in.FanSpan, j, len(cat.Leaves))),
				Color:       cat.Color,
				Metrics:     leaf.Metrics,
				URL:         leaf.URL,
				Description: leafDescription(leaf),
			})
			g.Edges = append(g.Edges, Edge{From: id, To: leaf.ID})
		}
	}

	return g, nil
}

// fanAngle spreads n leaves evenly over span, centred on the category angle.
// A single leaf sits at the start of the fan, half a span before the centre.
func fanAngle(center, span float64, i, n int) float64 {
	if n <= 1 {
		return center - span/2
	}
	step := span / float64(n-1)
	return center - span/2 + float64(i)*step
}

func polar(origin Point, radius, angle float64) Point {
	return Point{
		X: origin.X + math.Cos(angle)*radius,
		Y: origin.Y + math.Sin(angle)*radius,
	}
}

func leafDescription(leaf Leaf) string {
	kind := "Asset"
	if leaf.Type != "" {
		kind = humanizeType(leaf.Type)
	}
	return fmt.Sprintf("%s with %s status", kind, leaf.Status)
}

func (in Input) validate() error {
	switch {
	case len(in.Categories) == 0:
		return newLayoutError("categories", "at least one category is required")
	case !finitePositive(in.Canvas.Width) || !finitePositive(in.Canvas.Height):
		return newLayoutError("canvas", fmt.Sprintf("dimensions must be positive, got %vx%v", in.Canvas.Width, in.Canvas.Height))
	case !finiteNonNegative(in.CategoryRadius):
		return newLayoutError("category_radius", fmt.Sprintf("must be non-negative, got %v", in.CategoryRadius))
	case !finiteNonNegative(in.LeafRadius):
		return newLayoutError("leaf_radius", fmt.Sprintf("must be non-negative, got %v", in.LeafRadius))
	case !finiteNonNegative(in.FanSpan) || in.FanSpan > 2*math.Pi:
		return newLayoutError("fan_span", fmt.Sprintf("must be within [0, 2π], got %v", in.FanSpan))
	}

	for i, cat := range in.Categories {
		if math.IsNaN(cat.Angle) || math.IsInf(cat.Angle, 0) {
			return newLayoutError(CategoryID(i), "angle must be finite")
		}
		for j, leaf := range cat.Leaves {
			if leaf.ID == "" {
				return newLayoutError(CategoryID(i), fmt.Sprintf("leaf %d has no id", j))
			}
		}
	}
	return nil
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

func finiteNonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0)
}
