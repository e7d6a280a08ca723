// Package sizing maps graph size to a visual size tier and the force constants
// derived from it. Both the simulation and the render graph read their sizes
// from here so physical and visual size stay consistent.
package sizing

import "math"

// Bounds are the min/max values interpolated by the size tier.
type Bounds struct {
	MinSize            float64 `toml:"min_size"`
	MaxSize            float64 `toml:"max_size"`
	MinLabelSize       float64 `toml:"min_label_size"`
	MaxLabelSize       float64 `toml:"max_label_size"`
	MinCollisionRadius float64 `toml:"min_collision_radius"`
	MaxCollisionRadius float64 `toml:"max_collision_radius"`
}

// DefaultBounds returns the bounds used by the package-level functions.
func DefaultBounds() Bounds {
	return Bounds{
		MinSize:            20,
		MaxSize:            80,
		MinLabelSize:       12,
		MaxLabelSize:       16,
		MinCollisionRadius: 30,
		MaxCollisionRadius: 100,
	}
}

// NodeSize is the visual sizing for one tier.
type NodeSize struct {
	Ratio           float64 `json:"ratio"`
	NodeSize        float64 `json:"nodeSize"`
	LabelSize       float64 `json:"labelSize"`
	CollisionRadius float64 `json:"collisionRadius"`
	FontSize        float64 `json:"fontSize"`
}

// LinkDistance bounds the rest length of link springs.
type LinkDistance struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Base float64 `json:"base"`
}

// Clamp returns the rest length for a link of the given weight.
// Heavier links rest closer.
func (d LinkDistance) Clamp(weight, factor float64) float64 {
	return math.Max(d.Min, math.Min(d.Max, d.Base-factor*weight))
}

// Forces are the physical constants for a graph of a given size.
type Forces struct {
	NodeVisualSize    float64      `json:"nodeVisualSize"`
	CollisionRadius   float64      `json:"collisionRadius"`
	LinkDistance      LinkDistance `json:"linkDistance"`
	ChargeStrength    float64      `json:"chargeStrength"`
	ChargeDistanceMax float64      `json:"chargeDistanceMax"`
}

// Viewport is a suggested drawing area.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// SizeTier returns the size ratio for a node count.
func SizeTier(nodeCount int) float64 {
	switch {
	case nodeCount <= 5:
		return 1.0
	case nodeCount <= 10:
		return 0.8
	case nodeCount <= 20:
		return 0.6
	case nodeCount <= 50:
		return 0.4
	default:
		return 0.2
	}
}

// Calculator computes sizes from a set of bounds. The zero value is not useful;
// use New or Default.
type Calculator struct {
	bounds Bounds
}

// New returns a Calculator for the given bounds.
func New(b Bounds) Calculator {
	return Calculator{bounds: b}
}

// Default returns a Calculator using DefaultBounds.
func Default() Calculator {
	return New(DefaultBounds())
}

// Bounds returns the calculator's bounds.
func (c Calculator) Bounds() Bounds {
	return c.bounds
}

func lerp(lo, hi, ratio float64) float64 {
	return math.Round(lo + (hi-lo)*ratio)
}

// NodeSize returns the visual sizing for a node count.
func (c Calculator) NodeSize(nodeCount int) NodeSize {
	ratio := SizeTier(nodeCount)
	b := c.bounds
	return NodeSize{
		Ratio:           ratio,
		NodeSize:        lerp(b.MinSize, b.MaxSize, ratio),
		LabelSize:       lerp(b.MinLabelSize, b.MaxLabelSize, ratio),
		CollisionRadius: lerp(b.MinCollisionRadius, b.MaxCollisionRadius, ratio),
		FontSize:        math.Max(8, lerp(10, 16, ratio)),
	}
}

// Forces returns the force constants for a node count.
func (c Calculator) Forces(nodeCount int) Forces {
	size := c.NodeSize(nodeCount)
	return Forces{
		NodeVisualSize:  size.NodeSize,
		CollisionRadius: size.CollisionRadius,
		LinkDistance: LinkDistance{
			Min:  math.Max(80, size.NodeSize*2),
			Max:  math.Max(200, size.NodeSize*4),
			Base: math.Max(150, size.NodeSize*3),
		},
		// Denser graphs repel harder; small graphs are clamped so they still spread.
		ChargeStrength:    math.Min(-300, -200-float64(nodeCount)*5),
		ChargeDistanceMax: math.Max(400, size.NodeSize*6),
	}
}

// NodeSizeFor returns the visual sizing for a node count using the default bounds.
func NodeSizeFor(nodeCount int) NodeSize { return Default().NodeSize(nodeCount) }

// ForcesFor returns force constants for a node count using the default bounds.
func ForcesFor(nodeCount int) Forces { return Default().Forces(nodeCount) }

// ViewportFor suggests a drawing area for a node count.
func ViewportFor(nodeCount int) Viewport {
	switch {
	case nodeCount <= 10:
		return Viewport{Width: 800, Height: 600}
	case nodeCount <= 30:
		return Viewport{Width: 1200, Height: 800}
	default:
		return Viewport{Width: 1600, Height: 1000}
	}
}

// ShowLabels reports whether labels should be drawn for a node count.
func ShowLabels(nodeCount int) bool { return nodeCount <= 30 }

// ShowEdges reports whether edges should be drawn for a node count.
func ShowEdges(nodeCount int) bool { return nodeCount <= 100 }
