// Package graph defines the document graph payload exchanged with the search and
// expansion collaborators and converts it into simulation-ready entities.
package graph

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultWeight is used for edges that arrive without a weight.
const DefaultWeight = 0.8

// MaxCoordinate bounds placement hints. Beyond it squared distances in the
// force pass overflow.
const MaxCoordinate = 1e6

// Point is a 2D coordinate in layout space.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Usable reports whether both coordinates are finite and within MaxCoordinate.
func (p Point) Usable() bool {
	return math.Abs(p.X) <= MaxCoordinate && math.Abs(p.Y) <= MaxCoordinate
}

// Payload is a document graph as produced by search or node expansion.
type Payload struct {
	Nodes      []Node `json:"nodes" yaml:"nodes"`
	Edges      []Edge `json:"edges" yaml:"edges"`
	SeedNodeID string `json:"seedNodeId,omitempty" yaml:"seedNodeId,omitempty"`
	Query      string `json:"query,omitempty" yaml:"query,omitempty"`
}

// Node is a document (paper or author) in the payload.
type Node struct {
	ID       string   `json:"id" yaml:"id"`
	Data     Document `json:"data,omitempty" yaml:"data,omitempty"`
	Locked   bool     `json:"locked,omitempty" yaml:"locked,omitempty"`
	Position *Point   `json:"position,omitempty" yaml:"position,omitempty"` // Optional placement hint
}

// EdgeKind is the relation an edge represents.
type EdgeKind string

const (
	Citation   EdgeKind = "citation"
	Similarity EdgeKind = "similarity"
)

// ParseEdgeKind maps a wire value to an EdgeKind. Unknown values are similarity edges.
func ParseEdgeKind(s string) EdgeKind {
	if EdgeKind(strings.ToLower(strings.TrimSpace(s))) == Citation {
		return Citation
	}
	return Similarity
}

// Edge is a weighted relation between two documents.
// A nil Weight means the producer did not send one.
type Edge struct {
	ID     string
	Source string
	Target string
	Kind   EdgeKind
	Weight *float64
}

// edgeWire accepts both the current field names and the older
// type/similarity names still sent by some producers.
type edgeWire struct {
	ID         string   `json:"id,omitempty" yaml:"id,omitempty"`
	Source     string   `json:"source" yaml:"source"`
	Target     string   `json:"target" yaml:"target"`
	Kind       string   `json:"kind,omitempty" yaml:"kind,omitempty"`
	Type       string   `json:"type,omitempty" yaml:"type,omitempty"`
	Weight     *float64 `json:"weight,omitempty" yaml:"weight,omitempty"`
	Similarity *float64 `json:"similarity,omitempty" yaml:"similarity,omitempty"`
}

func (w edgeWire) edge() Edge {
	kind := w.Kind
	if kind == "" {
		kind = w.Type
	}
	weight := w.Weight
	if weight == nil {
		weight = w.Similarity
	}
	return Edge{
		ID:     w.ID,
		Source: w.Source,
		Target: w.Target,
		Kind:   ParseEdgeKind(kind),
		Weight: weight,
	}
}

// MarshalJSON writes the edge using the current field names.
func (e Edge) MarshalJSON() ([]byte, error) {
	return json.Marshal(edgeWire{
		ID:     e.ID,
		Source: e.Source,
		Target: e.Target,
		Kind:   string(e.Kind),
		Weight: e.Weight,
	})
}

// MarshalYAML implements yaml.Marshaler.
func (e Edge) MarshalYAML() (interface{}, error) {
	return edgeWire{
		ID:     e.ID,
		Source: e.Source,
		Target: e.Target,
		Kind:   string(e.Kind),
		Weight: e.Weight,
	}, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Edge) UnmarshalJSON(data []byte) error {
	var w edgeWire
	if err := json.Unmarshal(data, &w); err != nil {
		return errors.Wrap(err, "decode edge")
	}
	*e = w.edge()
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (e *Edge) UnmarshalYAML(value *yaml.Node) error {
	var w edgeWire
	if err := value.Decode(&w); err != nil {
		return errors.Wrap(err, "decode edge")
	}
	*e = w.edge()
	return nil
}

// WeightOr returns the edge weight clamped into [0,1], or def when absent.
func (e Edge) WeightOr(def float64) float64 {
	w := def
	if e.Weight != nil {
		w = *e.Weight
	}
	switch {
	case w != w: // NaN
		return def
	case w < 0:
		return 0
	case w > 1:
		return 1
	}
	return w
}

// Link is an edge whose endpoints are both known nodes.
type Link struct {
	ID     string   `json:"id,omitempty"`
	Source string   `json:"source"`
	Target string   `json:"target"`
	Weight float64  `json:"weight"`
	Kind   EdgeKind `json:"kind"`
}
