package graph

import (
	"log/slog"

	"github.com/anthonybishopric/docgraph/pkg/sizing"
)

// Result is a payload converted into simulation-ready entities.
type Result struct {
	Nodes   []Node // Input order, duplicates removed
	Links   []Link // Only links whose endpoints are in Nodes
	Dropped []Edge // Edges that referenced an unknown node
	Size    sizing.NodeSize
	Forces  sizing.Forces
}

// Transformer converts payloads into simulation entities.
type Transformer struct {
	calc   sizing.Calculator
	logger *slog.Logger
}

// NewTransformer creates a Transformer. A nil logger uses slog.Default.
func NewTransformer(calc sizing.Calculator, logger *slog.Logger) *Transformer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Transformer{calc: calc, logger: logger}
}

// Transform converts a payload using the default sizing bounds.
func Transform(p *Payload) *Result {
	return NewTransformer(sizing.Default(), nil).Transform(p)
}

// Transform converts p into nodes and links. It never mutates p.
// Edges with a missing endpoint are dropped and logged, as are position
// hints that are not Usable. The conversion itself never fails.
func (t *Transformer) Transform(p *Payload) *Result {
	res := &Result{}
	if p == nil {
		res.Size = t.calc.NodeSize(0)
		res.Forces = t.calc.Forces(0)
		return res
	}

	known := make(map[string]bool, len(p.Nodes))
	res.Nodes = make([]Node, 0, len(p.Nodes))
	for _, n := range p.Nodes {
		if n.ID == "" {
			t.logger.Warn("node without id skipped")
			continue
		}
		if known[n.ID] {
			t.logger.Warn("duplicate node skipped", "node", n.ID)
			continue
		}
		known[n.ID] = true
		out := copyNode(n)
		if out.Position != nil && !out.Position.Usable() {
			t.logger.Warn("position hint ignored", "node", n.ID, "x", out.Position.X, "y", out.Position.Y)
			out.Position = nil
		}
		res.Nodes = append(res.Nodes, out)
	}

	res.Links = make([]Link, 0, len(p.Edges))
	for _, e := range p.Edges {
		missing := ""
		switch {
		case !known[e.Source]:
			missing = e.Source
		case !known[e.Target]:
			missing = e.Target
		}
		if missing != "" {
			t.logger.Warn("invalid edge skipped",
				"edge", e.ID, "source", e.Source, "target", e.Target, "missing", missing)
			res.Dropped = append(res.Dropped, e)
			continue
		}

		res.Links = append(res.Links, Link{
			ID:     e.ID,
			Source: e.Source,
			Target: e.Target,
			Weight: e.WeightOr(DefaultWeight),
			Kind:   ParseEdgeKind(string(e.Kind)),
		})
	}

	res.Size = t.calc.NodeSize(len(res.Nodes))
	res.Forces = t.calc.Forces(len(res.Nodes))
	return res
}

func copyNode(n Node) Node {
	out := n
	if n.Data != nil {
		out.Data = make(Document, len(n.Data))
		for k, v := range n.Data {
			out.Data[k] = v
		}
	}
	if n.Position != nil {
		p := *n.Position
		out.Position = &p
	}
	return out
}

// Adjacency returns the undirected neighbor lists of a set of links.
func Adjacency(nodes []Node, links []Link) map[string][]string {
	adj := make(map[string][]string, len(nodes))
	for _, n := range nodes {
		adj[n.ID] = nil
	}
	for _, l := range links {
		adj[l.Source] = append(adj[l.Source], l.Target)
		if l.Source != l.Target {
			adj[l.Target] = append(adj[l.Target], l.Source)
		}
	}
	return adj
}
