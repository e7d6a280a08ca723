package graph

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anthonybishopric/docgraph/pkg/sizing"
)

func weight(w float64) *float64 { return &w }

func testTransformer(buf *bytes.Buffer) *Transformer {
	return NewTransformer(sizing.Default(), slog.New(slog.NewTextHandler(buf, nil)))
}

func TestTransformDropsDanglingEdges(t *testing.T) {
	var logs bytes.Buffer
	p := &Payload{
		Nodes: []Node{{ID: "A"}, {ID: "B"}, {ID: "C"}},
		Edges: []Edge{
			{ID: "e1", Source: "A", Target: "B", Kind: Citation, Weight: weight(0.5)},
			{ID: "e2", Source: "B", Target: "X", Kind: Similarity},
			{ID: "e3", Source: "Y", Target: "C"},
			{ID: "e4", Source: "B", Target: "C"},
		},
	}

	res := testTransformer(&logs).Transform(p)

	require.Len(t, res.Links, 2)
	assert.LessOrEqual(t, len(res.Links), len(p.Edges))
	assert.Equal(t, "e1", res.Links[0].ID)
	assert.Equal(t, "e4", res.Links[1].ID)
	require.Len(t, res.Dropped, 2)
	assert.Equal(t, 2, strings.Count(logs.String(), "invalid edge skipped"))
	assert.Contains(t, logs.String(), "missing=X")
	assert.Contains(t, logs.String(), "missing=Y")
}

func TestTransformPreservesOrderAndDedupes(t *testing.T) {
	var logs bytes.Buffer
	p := &Payload{Nodes: []Node{{ID: "c"}, {ID: "a"}, {ID: "c"}, {ID: ""}, {ID: "b"}}}

	res := testTransformer(&logs).Transform(p)

	ids := make([]string, 0, len(res.Nodes))
	for _, n := range res.Nodes {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids)
	assert.Contains(t, logs.String(), "duplicate node skipped")
}

func TestTransformIgnoresUnusablePositions(t *testing.T) {
	src := `
nodes:
  - id: nan
    position: {x: .nan, y: 0}
  - id: inf
    position: {x: 0, y: -.inf}
  - id: ok
    position: {x: 12, y: -3}
`
	p, err := DecodeBytes([]byte(src), FormatYAML)
	require.NoError(t, err)
	huge, err := DecodeBytes([]byte(`{"nodes": [{"id": "huge", "position": {"x": 1e308, "y": 0}}]}`), FormatJSON)
	require.NoError(t, err)
	p.Nodes = append(p.Nodes, huge.Nodes...)

	var logs bytes.Buffer
	res := testTransformer(&logs).Transform(p)

	require.Len(t, res.Nodes, 4)
	assert.Nil(t, res.Nodes[0].Position)
	assert.Nil(t, res.Nodes[1].Position)
	require.NotNil(t, res.Nodes[2].Position)
	assert.Equal(t, Point{X: 12, Y: -3}, *res.Nodes[2].Position)
	assert.Nil(t, res.Nodes[3].Position)
	assert.Equal(t, 3, strings.Count(logs.String(), "position hint ignored"))
	assert.NotNil(t, p.Nodes[0].Position, "input is not mutated")
}

func TestTransformWeightDefaults(t *testing.T) {
	var logs bytes.Buffer
	p := &Payload{
		Nodes: []Node{{ID: "A"}, {ID: "B"}},
		Edges: []Edge{
			{Source: "A", Target: "B"},
			{Source: "A", Target: "B", Weight: weight(1.7)},
			{Source: "A", Target: "B", Weight: weight(-1)},
		},
	}

	res := testTransformer(&logs).Transform(p)

	require.Len(t, res.Links, 3)
	assert.Equal(t, DefaultWeight, res.Links[0].Weight)
	assert.Equal(t, 1.0, res.Links[1].Weight)
	assert.Equal(t, 0.0, res.Links[2].Weight)
	assert.Equal(t, Similarity, res.Links[0].Kind)
}

func TestTransformDoesNotMutateInput(t *testing.T) {
	var logs bytes.Buffer
	p := &Payload{
		Nodes: []Node{{ID: "A", Data: Document{"title": "T"}, Position: &Point{X: 1, Y: 2}}},
		Edges: []Edge{{Source: "A", Target: "Z"}},
	}

	res := testTransformer(&logs).Transform(p)
	res.Nodes[0].Data["title"] = "changed"
	res.Nodes[0].Position.X = 99

	assert.Equal(t, "T", p.Nodes[0].Data["title"])
	assert.Equal(t, 1.0, p.Nodes[0].Position.X)
	assert.Len(t, p.Edges, 1)
}

func TestTransformSizing(t *testing.T) {
	p := &Payload{}
	for i := 0; i < 12; i++ {
		p.Nodes = append(p.Nodes, Node{ID: string(rune('a' + i))})
	}
	res := Transform(p)
	assert.Equal(t, 0.6, res.Size.Ratio)
	assert.Equal(t, sizing.ForcesFor(12), res.Forces)
}

func TestTransformNil(t *testing.T) {
	res := Transform(nil)
	assert.Empty(t, res.Nodes)
	assert.Equal(t, 1.0, res.Size.Ratio)
}

func TestDecodeJSONLegacyFields(t *testing.T) {
	src := `{
		"nodes": [{"id": "p1", "data": {"title": "RAG", "type": "paper"}, "locked": true}, {"id": "p2"}],
		"edges": [
			{"id": "e1", "source": "p1", "target": "p2", "type": "citation", "similarity": 0.92},
			{"id": "e2", "source": "p2", "target": "p1", "kind": "similarity"}
		],
		"seedNodeId": "p1"
	}`

	p, err := DecodeBytes([]byte(src), FormatJSON)
	require.NoError(t, err)

	require.Len(t, p.Nodes, 2)
	assert.True(t, p.Nodes[0].Locked)
	assert.Equal(t, "RAG", p.Nodes[0].Data.Title())
	assert.Equal(t, "p1", p.SeedNodeID)
	require.Len(t, p.Edges, 2)
	assert.Equal(t, Citation, p.Edges[0].Kind)
	require.NotNil(t, p.Edges[0].Weight)
	assert.Equal(t, 0.92, *p.Edges[0].Weight)
	assert.Nil(t, p.Edges[1].Weight)
}

func TestDecodeYAML(t *testing.T) {
	src := `
nodes:
  - id: a
    data:
      title: Alpha
      authors:
        - name: Ada
        - name: Grace
      year: 2021
  - id: b
edges:
  - source: a
    target: b
    kind: citation
    weight: 0.3
`
	p, err := DecodeBytes([]byte(src), FormatYAML)
	require.NoError(t, err)
	require.Len(t, p.Nodes, 2)
	assert.Equal(t, []string{"Ada", "Grace"}, p.Nodes[0].Data.Authors())
	assert.Equal(t, "2021", p.Nodes[0].Data.Year())
	require.Len(t, p.Edges, 1)
	assert.Equal(t, 0.3, p.Edges[0].WeightOr(DefaultWeight))
}

func TestDecodeError(t *testing.T) {
	_, err := DecodeBytes([]byte(`{"nodes": [`), FormatJSON)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode json payload")
}

func TestFormats(t *testing.T) {
	f, err := ParseFormat("YML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)
	_, err = ParseFormat("dot")
	assert.Error(t, err)

	assert.Equal(t, FormatYAML, FormatForPath("graph.yaml"))
	assert.Equal(t, FormatJSON, FormatForPath("graph.json"))
	assert.Equal(t, FormatJSON, SniffFormat("", []byte(` {"nodes":[]}`)))
	assert.Equal(t, FormatYAML, SniffFormat("application/x-yaml", []byte(`{}`)))
	assert.Equal(t, FormatYAML, SniffFormat("text/plain", []byte("nodes: []")))
}

func TestDocumentSummary(t *testing.T) {
	d := Document{"title": "Paper A", "authors": []any{map[string]any{"name": "X"}, "Y"}, "publication_date": "2020-01-01"}
	assert.Equal(t, "Paper: Paper A\nAuthors: X, Y\nYear: 2020-01-01", d.Summary("id"))

	author := Document{"type": "author", "authors": "Solo"}
	assert.Equal(t, "Author: id\nAuthors: Solo\nYear: N/A", author.Summary("id"))

	assert.Equal(t, "Paper: id\nAuthors: N/A\nYear: N/A", Document(nil).Summary("id"))
}

func TestAdjacency(t *testing.T) {
	nodes := []Node{{ID: "A"}, {ID: "B"}, {ID: "C"}}
	links := []Link{{Source: "A", Target: "B"}, {Source: "B", Target: "C"}}
	adj := Adjacency(nodes, links)
	assert.Equal(t, []string{"B"}, adj["A"])
	assert.ElementsMatch(t, []string{"A", "C"}, adj["B"])
	assert.Contains(t, adj, "C")
}
