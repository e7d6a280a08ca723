package render

import (
	"math"

	"github.com/pkg/errors"

	"github.com/anthonybishopric/docgraph/pkg/graph"
)

// ErrNavigationDisabled is returned when a pan or zoom arrives while the
// matching interaction switch is off.
var ErrNavigationDisabled = errors.New("navigation disabled")

// FitPadding is the margin kept around the graph when framing it.
const FitPadding = 50

const (
	minZoom = 0.05
	maxZoom = 10
)

// Viewport maps layout coordinates to screen coordinates:
// screen = layout*Zoom + Pan.
type Viewport struct {
	Width  float64     `json:"width"`
	Height float64     `json:"height"`
	Zoom   float64     `json:"zoom"`
	Pan    graph.Point `json:"pan"`
}

// ToScreen converts a layout position to screen coordinates.
func (v Viewport) ToScreen(p graph.Point) graph.Point {
	return graph.Point{X: p.X*v.Zoom + v.Pan.X, Y: p.Y*v.Zoom + v.Pan.Y}
}

// ToLayout converts a screen position to layout coordinates.
func (v Viewport) ToLayout(p graph.Point) graph.Point {
	z := v.Zoom
	if z == 0 {
		z = 1
	}
	return graph.Point{X: (p.X - v.Pan.X) / z, Y: (p.Y - v.Pan.Y) / z}
}

// Viewport returns the current viewport.
func (s *Store) Viewport() Viewport { return s.viewport }

// SetViewport replaces the viewport.
func (s *Store) SetViewport(v Viewport) {
	if v.Zoom <= 0 {
		v.Zoom = 1
	}
	s.mutate(func() {
		s.viewport = v
		s.pending.View = true
	})
}

// Navigate applies a user pan and zoom. A pan needs Panning and a zoom change
// needs Zooming; otherwise the viewport is left alone. Zoom is clamped.
func (s *Store) Navigate(pan graph.Point, zoom float64) error {
	if !finiteCoord(pan.X) || !finiteCoord(pan.Y) || !finiteCoord(zoom) || zoom <= 0 {
		return errors.Errorf("invalid viewport pan=%v zoom=%v", pan, zoom)
	}
	zoom = math.Max(minZoom, math.Min(maxZoom, zoom))
	v := s.viewport
	if zoom != v.Zoom && !s.interaction.Zooming {
		return errors.Wrap(ErrNavigationDisabled, "zoom")
	}
	if pan != v.Pan && !s.interaction.Panning {
		return errors.Wrap(ErrNavigationDisabled, "pan")
	}
	v.Zoom, v.Pan = zoom, pan
	s.SetViewport(v)
	return nil
}

func finiteCoord(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// Resize changes the viewport size, keeping zoom and pan.
func (s *Store) Resize(width, height float64) {
	v := s.viewport
	v.Width, v.Height = width, height
	s.SetViewport(v)
}

// Fit frames all nodes inside the viewport with padding around them.
// An empty graph leaves the viewport unchanged.
func (s *Store) Fit(padding float64) {
	if len(s.nodes) == 0 {
		return
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range s.nodes {
		r := n.Size.NodeSize / 2
		minX = math.Min(minX, n.Position.X-r)
		minY = math.Min(minY, n.Position.Y-r)
		maxX = math.Max(maxX, n.Position.X+r)
		maxY = math.Max(maxY, n.Position.Y+r)
	}

	v := s.viewport
	w, h := maxX-minX, maxY-minY
	availW, availH := v.Width-2*padding, v.Height-2*padding
	zoom := 1.0
	if w > 0 && h > 0 && availW > 0 && availH > 0 {
		zoom = math.Min(availW/w, availH/h)
	}
	zoom = math.Max(minZoom, math.Min(maxZoom, zoom))

	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	v.Zoom = zoom
	v.Pan = graph.Point{X: v.Width/2 - cx*zoom, Y: v.Height/2 - cy*zoom}
	s.SetViewport(v)
}
