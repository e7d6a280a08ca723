package d3

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/anthonybishopric/docgraph/pkg/graph"
	"github.com/anthonybishopric/docgraph/pkg/render"
	"github.com/anthonybishopric/docgraph/pkg/sizing"
)

func store(t *testing.T) *render.Store {
	t.Helper()
	nodes := []graph.Node{
		{ID: "A", Data: graph.Document{"title": "Deep Learning", "authors": []any{"LeCun"}, "year": 2015}},
		{ID: "B", Data: graph.Document{"title": "Backprop"}},
		{ID: "C", Data: graph.Document{"type": "author", "name": "Hinton"}},
	}
	links := []graph.Link{
		{Source: "A", Target: "B", Weight: 0.5, Kind: graph.Citation},
		{Source: "B", Target: "C", Weight: 0.8, Kind: graph.Similarity},
	}
	positions := map[string]graph.Point{
		"A": {X: -100, Y: 0},
		"B": {X: 100, Y: 50},
		"C": {X: 0, Y: -200},
	}
	s := render.NewStore(800, 600)
	s.Sync(nodes, links, sizing.NodeSizeFor(len(nodes)), positions)
	s.SetLocked("B", true)
	return s
}

func TestFromStore(t *testing.T) {
	g := FromStore(store(t), "A")

	if len(g.Nodes) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(g.Nodes))
	}
	if len(g.Links) != 2 {
		t.Fatalf("expected 2 links, got %d", len(g.Links))
	}
	if g.SeedNodeID != "A" {
		t.Errorf("expected seed A, got %q", g.SeedNodeID)
	}
	if !g.ShowLabels || !g.ShowEdges {
		t.Error("expected labels and edges for a small graph")
	}

	a := g.Nodes[0]
	if a.Label != "Deep Learning" || a.X != -100 || a.Size != 80 {
		t.Errorf("unexpected node A: %+v", a)
	}
	if !strings.Contains(a.Tooltip, "Authors: LeCun") || !strings.Contains(a.Tooltip, "Year: 2015") {
		t.Errorf("unexpected tooltip %q", a.Tooltip)
	}
	if !g.Nodes[1].Locked {
		t.Error("expected B to be locked")
	}
	if g.Nodes[2].Kind != "author" || g.Nodes[2].Label != "Hinton" {
		t.Errorf("unexpected node C: %+v", g.Nodes[2])
	}
	if g.Links[0].Kind != "citation" || g.Links[0].Weight != 0.5 {
		t.Errorf("unexpected link: %+v", g.Links[0])
	}
}

func TestFromStoreUnknownSeed(t *testing.T) {
	g := FromStore(store(t), "Z")
	if g.SeedNodeID != "" {
		t.Errorf("expected no seed, got %q", g.SeedNodeID)
	}
}

func TestBounds(t *testing.T) {
	g := FromStore(store(t), "")
	lo, hi := g.Bounds()
	if lo.X != -140 || lo.Y != -240 || hi.X != 140 || hi.Y != 90 {
		t.Errorf("unexpected bounds %v %v", lo, hi)
	}

	lo, hi = (&Graph{}).Bounds()
	if lo != (graph.Point{}) || hi != (graph.Point{}) {
		t.Errorf("expected zero bounds for an empty graph, got %v %v", lo, hi)
	}
}

func TestRenderHTML(t *testing.T) {
	g := FromStore(store(t), "A")
	html, err := RenderHTML(g, RenderOptions{Title: "Neural <nets>", Query: "backprop"})
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	out := string(html)

	if !strings.Contains(out, "<title>Neural &lt;nets&gt;</title>") {
		t.Error("expected escaped title")
	}
	if !strings.Contains(out, `class="query">backprop<`) {
		t.Error("expected query in header")
	}
	if !strings.Contains(out, "d3.v7.min.js") {
		t.Error("expected d3 script")
	}
	if !strings.Contains(out, `new CustomEvent("nodeClick"`) || !strings.Contains(out, `new CustomEvent("nodeExpand"`) {
		t.Error("expected nodeClick and nodeExpand events")
	}

	start := strings.Index(out, "const graphData = ")
	end := strings.Index(out, ";\n    const width")
	if start < 0 || end < start {
		t.Fatal("graph data not found")
	}
	var embedded Graph
	if err := json.Unmarshal([]byte(out[start+len("const graphData = "):end]), &embedded); err != nil {
		t.Fatalf("embedded graph is not JSON: %v", err)
	}
	if len(embedded.Nodes) != 3 || embedded.SeedNodeID != "A" {
		t.Errorf("unexpected embedded graph: %+v", embedded)
	}
}

func TestRenderHTMLDefaults(t *testing.T) {
	html, err := RenderHTML(&Graph{}, RenderOptions{})
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if !strings.Contains(string(html), "<title>Document Graph</title>") {
		t.Error("expected default title")
	}
	if strings.Contains(string(html), `class="query"`) {
		t.Error("expected no query line")
	}
}
