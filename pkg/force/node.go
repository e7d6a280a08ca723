package force

import (
	"math"

	"github.com/anthonybishopric/docgraph/pkg/graph"
)

// Node is a simulated document. Its position is written only by the
// simulation integrator; its pin and pointer override only through the
// Simulation's lock methods.
type Node struct {
	ID   string
	Data graph.Document

	x, y   float64
	vx, vy float64

	// pin is the committed lock position, override the pointer position
	// during a gesture. The effective fixed coordinate is override, then pin.
	pin      *graph.Point
	override *graph.Point

	lastX, lastY float64
}

// NewNode creates a node at pos. A locked node is pinned at pos. A non-finite
// pos is replaced by the origin.
func NewNode(id string, pos graph.Point, locked bool, data graph.Document) *Node {
	if !finite(pos.X) || !finite(pos.Y) {
		pos = graph.Point{}
	}
	n := &Node{ID: id, Data: data, x: pos.X, y: pos.Y, lastX: pos.X, lastY: pos.Y}
	if locked {
		p := pos
		n.pin = &p
	}
	return n
}

// WithVelocity seeds the node's velocity, carrying motion across a rebuild.
// A non-finite v is ignored.
func (n *Node) WithVelocity(v graph.Point) *Node {
	if finite(v.X) && finite(v.Y) {
		n.vx, n.vy = v.X, v.Y
	}
	return n
}

// Position returns the node's current position.
func (n *Node) Position() graph.Point { return graph.Point{X: n.x, Y: n.y} }

// Velocity returns the node's current velocity.
func (n *Node) Velocity() graph.Point { return graph.Point{X: n.vx, Y: n.vy} }

// Locked reports whether the node is pinned.
func (n *Node) Locked() bool { return n.pin != nil }

// Pin returns the committed lock position, if any.
func (n *Node) Pin() (graph.Point, bool) {
	if n.pin == nil {
		return graph.Point{}, false
	}
	return *n.pin, true
}

// Override returns the provisional pointer position, if a gesture holds the node.
func (n *Node) Override() (graph.Point, bool) {
	if n.override == nil {
		return graph.Point{}, false
	}
	return *n.override, true
}

// Fixed returns the effective fixed coordinate (fx, fy).
func (n *Node) Fixed() (graph.Point, bool) {
	if n.override != nil {
		return *n.override, true
	}
	if n.pin != nil {
		return *n.pin, true
	}
	return graph.Point{}, false
}

func (n *Node) free() bool { return n.pin == nil && n.override == nil }

func (n *Node) place(p graph.Point) {
	if !finite(p.X) || !finite(p.Y) {
		return
	}
	n.x, n.y = p.X, p.Y
	n.vx, n.vy = 0, 0
	n.lastX, n.lastY = p.X, p.Y
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
