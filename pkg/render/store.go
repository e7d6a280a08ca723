// Package render holds the render-side graph that front ends draw from, and the
// adapter that copies simulated positions into it once per tick.
package render

import (
	"sort"

	"github.com/anthonybishopric/docgraph/pkg/graph"
	"github.com/anthonybishopric/docgraph/pkg/sizing"
)

// Classes applied to render nodes.
const (
	ClassHighlight = "highlight"
	ClassFaded     = "faded"
	ClassHover     = "hover"
	ClassSelected  = "selected"
)

// Node is a drawable node.
type Node struct {
	ID        string          `json:"id"`
	Label     string          `json:"label"`
	Kind      string          `json:"kind"`
	Position  graph.Point     `json:"position"`
	Locked    bool            `json:"locked"`
	Grabbable bool            `json:"grabbable"`
	Classes   []string        `json:"classes,omitempty"`
	Size      sizing.NodeSize `json:"size"`
	Data      graph.Document  `json:"-"`
}

// Edge is a drawable edge.
type Edge struct {
	ID     string         `json:"id,omitempty"`
	Source string         `json:"source"`
	Target string         `json:"target"`
	Weight float64        `json:"weight"`
	Kind   graph.EdgeKind `json:"kind"`
}

// Interaction are viewport-level input switches.
type Interaction struct {
	Panning      bool `json:"panning"`
	Zooming      bool `json:"zooming"`
	BoxSelection bool `json:"boxSelection"`
}

// Commit describes the changes of one batch.
type Commit struct {
	Seq       int                    // Monotonic commit number
	Positions map[string]graph.Point // Nodes moved in this batch
	Changed   []string               // Nodes whose lock, classes or grab state changed
	Structure bool                   // Elements were added or removed
	View      bool                   // Viewport or interaction flags changed
}

func (c *Commit) empty() bool {
	return len(c.Positions) == 0 && len(c.Changed) == 0 && !c.Structure && !c.View
}

type node struct {
	Node
	classes map[string]bool
}

// Store is an in-memory render graph. Every mutation belongs to a batch;
// mutations made outside Batch commit immediately. Store is not safe for
// concurrent use.
type Store struct {
	nodes map[string]*node
	order []string
	edges []Edge

	viewport    Viewport
	interaction Interaction

	depth     int
	pending   Commit
	changed   map[string]bool
	seq       int
	listeners []func(Commit)
}

// NewStore creates an empty render graph with a viewport of the given size.
func NewStore(width, height float64) *Store {
	return &Store{
		nodes:       make(map[string]*node),
		viewport:    Viewport{Width: width, Height: height, Zoom: 1},
		interaction: Interaction{Panning: true, Zooming: true, BoxSelection: true},
	}
}

// OnCommit registers fn to receive every non-empty commit.
func (s *Store) OnCommit(fn func(Commit)) {
	s.listeners = append(s.listeners, fn)
}

// Seq returns the number of commits so far.
func (s *Store) Seq() int { return s.seq }

// Batch groups the mutations made by fn into one commit.
func (s *Store) Batch(fn func()) {
	s.begin()
	defer s.end()
	fn()
}

func (s *Store) begin() {
	if s.depth == 0 {
		s.pending = Commit{}
		s.changed = make(map[string]bool)
	}
	s.depth++
}

func (s *Store) end() {
	s.depth--
	if s.depth > 0 {
		return
	}
	for id := range s.changed {
		s.pending.Changed = append(s.pending.Changed, id)
	}
	sort.Strings(s.pending.Changed)
	if s.pending.empty() {
		return
	}
	s.seq++
	s.pending.Seq = s.seq
	c := s.pending
	for _, fn := range s.listeners {
		fn(c)
	}
}

func (s *Store) mutate(fn func()) {
	s.begin()
	defer s.end()
	fn()
}

func (s *Store) touch(id string) { s.changed[id] = true }

// Sync reconciles the store with a new element set. Nodes already present keep
// their position and lock; nodes absent from nodes are removed. positions
// supplies positions for new nodes.
func (s *Store) Sync(nodes []graph.Node, links []graph.Link, size sizing.NodeSize, positions map[string]graph.Point) {
	s.mutate(func() {
		keep := make(map[string]bool, len(nodes))
		order := make([]string, 0, len(nodes))
		for _, gn := range nodes {
			keep[gn.ID] = true
			order = append(order, gn.ID)
			n, ok := s.nodes[gn.ID]
			if !ok {
				n = &node{classes: make(map[string]bool)}
				n.ID = gn.ID
				n.Position = positions[gn.ID]
				n.Locked = gn.Locked
				n.Grabbable = true
				s.nodes[gn.ID] = n
			}
			n.Label = gn.Data.Title()
			if n.Label == "" {
				n.Label = gn.ID
			}
			n.Kind = gn.Data.Kind()
			n.Data = gn.Data
			n.Size = size
		}
		for id := range s.nodes {
			if !keep[id] {
				delete(s.nodes, id)
			}
		}
		s.order = order

		s.edges = make([]Edge, 0, len(links))
		for _, l := range links {
			s.edges = append(s.edges, Edge{ID: l.ID, Source: l.Source, Target: l.Target, Weight: l.Weight, Kind: l.Kind})
		}
		s.pending.Structure = true
	})
}

// Len returns the number of nodes.
func (s *Store) Len() int { return len(s.order) }

// Has reports whether a node exists.
func (s *Store) Has(id string) bool {
	_, ok := s.nodes[id]
	return ok
}

// Node returns a copy of a node.
func (s *Store) Node(id string) (Node, bool) {
	n, ok := s.nodes[id]
	if !ok {
		return Node{}, false
	}
	return n.snapshot(), true
}

func (n *node) snapshot() Node {
	out := n.Node
	out.Classes = make([]string, 0, len(n.classes))
	for c := range n.classes {
		out.Classes = append(out.Classes, c)
	}
	sort.Strings(out.Classes)
	return out
}

// Nodes returns copies of all nodes in element order.
func (s *Store) Nodes() []Node {
	out := make([]Node, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.nodes[id].snapshot())
	}
	return out
}

// Edges returns the edges.
func (s *Store) Edges() []Edge {
	return append([]Edge(nil), s.edges...)
}

// Position returns a node's position.
func (s *Store) Position(id string) (graph.Point, bool) {
	n, ok := s.nodes[id]
	if !ok {
		return graph.Point{}, false
	}
	return n.Position, true
}

// Positions returns the positions of all nodes.
func (s *Store) Positions() map[string]graph.Point {
	out := make(map[string]graph.Point, len(s.nodes))
	for id, n := range s.nodes {
		out[id] = n.Position
	}
	return out
}

// SetPosition moves a node.
func (s *Store) SetPosition(id string, p graph.Point) bool {
	n, ok := s.nodes[id]
	if !ok {
		return false
	}
	s.mutate(func() {
		n.Position = p
		if s.pending.Positions == nil {
			s.pending.Positions = make(map[string]graph.Point)
		}
		s.pending.Positions[id] = p
	})
	return true
}

// Locked reports whether a node is locked.
func (s *Store) Locked(id string) bool {
	n, ok := s.nodes[id]
	return ok && n.Locked
}

// SetLocked locks or unlocks a node.
func (s *Store) SetLocked(id string, locked bool) bool {
	n, ok := s.nodes[id]
	if !ok {
		return false
	}
	if n.Locked == locked {
		return true
	}
	s.mutate(func() {
		n.Locked = locked
		s.touch(id)
	})
	return true
}

// LockedSet returns the ids of all locked nodes.
func (s *Store) LockedSet() map[string]bool {
	out := make(map[string]bool)
	for id, n := range s.nodes {
		if n.Locked {
			out[id] = true
		}
	}
	return out
}

// Adjacency returns an undirected neighbor snapshot built from the edges.
func (s *Store) Adjacency() map[string][]string {
	adj := make(map[string][]string, len(s.nodes))
	for _, id := range s.order {
		adj[id] = nil
	}
	for _, e := range s.edges {
		adj[e.Source] = append(adj[e.Source], e.Target)
		if e.Source != e.Target {
			adj[e.Target] = append(adj[e.Target], e.Source)
		}
	}
	return adj
}

// HasClass reports whether a node carries a class.
func (s *Store) HasClass(id, class string) bool {
	n, ok := s.nodes[id]
	return ok && n.classes[class]
}

// AddClass adds a class to a node.
func (s *Store) AddClass(id, class string) {
	n, ok := s.nodes[id]
	if !ok || n.classes[class] {
		return
	}
	s.mutate(func() {
		n.classes[class] = true
		s.touch(id)
	})
}

// RemoveClass removes a class from a node.
func (s *Store) RemoveClass(id, class string) {
	n, ok := s.nodes[id]
	if !ok || !n.classes[class] {
		return
	}
	s.mutate(func() {
		delete(n.classes, class)
		s.touch(id)
	})
}

// ClearClass removes a class from every node.
func (s *Store) ClearClass(class string) {
	s.mutate(func() {
		for id, n := range s.nodes {
			if n.classes[class] {
				delete(n.classes, class)
				s.touch(id)
			}
		}
	})
}

// WithClass returns the ids of nodes carrying a class, sorted.
func (s *Store) WithClass(class string) []string {
	var ids []string
	for id, n := range s.nodes {
		if n.classes[class] {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// SetGrabbable enables or disables grabbing for every node.
func (s *Store) SetGrabbable(grabbable bool) {
	s.mutate(func() {
		for id, n := range s.nodes {
			if n.Grabbable != grabbable {
				n.Grabbable = grabbable
				s.touch(id)
			}
		}
	})
}

// Grabbable reports whether a node may be grabbed.
func (s *Store) Grabbable(id string) bool {
	n, ok := s.nodes[id]
	return ok && n.Grabbable
}

// Interaction returns the viewport input switches.
func (s *Store) Interaction() Interaction { return s.interaction }

// SetInteraction replaces the viewport input switches.
func (s *Store) SetInteraction(in Interaction) {
	if s.interaction == in {
		return
	}
	s.mutate(func() {
		s.interaction = in
		s.pending.View = true
	})
}
