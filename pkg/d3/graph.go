// Package d3 renders a laid-out document graph as a self-contained D3.js page.
// The page is a frozen snapshot: positions come from the engine and no
// simulation runs in the browser.
package d3

import (
	"github.com/anthonybishopric/docgraph/pkg/graph"
	"github.com/anthonybishopric/docgraph/pkg/render"
	"github.com/anthonybishopric/docgraph/pkg/sizing"
)

// Graph is the data embedded in a snapshot page.
type Graph struct {
	Nodes      []Node `json:"nodes"`
	Links      []Link `json:"links"`
	SeedNodeID string `json:"seedNodeId,omitempty"`
	ShowLabels bool   `json:"showLabels"`
	ShowEdges  bool   `json:"showEdges"`
}

// Node is a positioned document.
type Node struct {
	ID      string  `json:"id"`
	Label   string  `json:"label"`
	Kind    string  `json:"kind"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Size    float64 `json:"size"`
	Font    float64 `json:"font"`
	Locked  bool    `json:"locked,omitempty"`
	Tooltip string  `json:"tooltip"`
}

// Link is an edge between two snapshot nodes.
type Link struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Kind   string  `json:"kind"`
	Weight float64 `json:"weight"`
}

// FromStore copies the current render graph.
func FromStore(s *render.Store, seed string) *Graph {
	nodes := s.Nodes()
	g := &Graph{
		Nodes:      make([]Node, 0, len(nodes)),
		ShowLabels: sizing.ShowLabels(len(nodes)),
		ShowEdges:  sizing.ShowEdges(len(nodes)),
	}
	for _, n := range nodes {
		g.Nodes = append(g.Nodes, Node{
			ID:      n.ID,
			Label:   n.Label,
			Kind:    n.Kind,
			X:       n.Position.X,
			Y:       n.Position.Y,
			Size:    n.Size.NodeSize,
			Font:    n.Size.FontSize,
			Locked:  n.Locked,
			Tooltip: n.Data.Summary(n.Label),
		})
	}
	for _, e := range s.Edges() {
		g.Links = append(g.Links, Link{
			Source: e.Source,
			Target: e.Target,
			Kind:   string(e.Kind),
			Weight: e.Weight,
		})
	}
	if s.Has(seed) {
		g.SeedNodeID = seed
	}
	return g
}

// Bounds returns the smallest box holding every node disc.
func (g *Graph) Bounds() (lo, hi graph.Point) {
	for i, n := range g.Nodes {
		r := n.Size / 2
		if i == 0 {
			lo = graph.Point{X: n.X - r, Y: n.Y - r}
			hi = graph.Point{X: n.X + r, Y: n.Y + r}
			continue
		}
		lo.X, lo.Y = min(lo.X, n.X-r), min(lo.Y, n.Y-r)
		hi.X, hi.Y = max(hi.X, n.X+r), max(hi.Y, n.Y+r)
	}
	return lo, hi
}
