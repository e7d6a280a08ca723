package force

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anthonybishopric/docgraph/pkg/graph"
	"github.com/anthonybishopric/docgraph/pkg/sizing"
)

func pt(x, y float64) graph.Point { return graph.Point{X: x, Y: y} }

func chain(locked map[string]bool, ids ...string) ([]*Node, []graph.Link) {
	nodes := make([]*Node, len(ids))
	var links []graph.Link
	for i, id := range ids {
		nodes[i] = NewNode(id, pt(float64(i)*30, float64(i%2)*20), locked[id], nil)
		if i > 0 {
			links = append(links, graph.Link{Source: ids[i-1], Target: id, Weight: 0.8})
		}
	}
	return nodes, links
}

func dist(a, b graph.Point) float64 { return math.Hypot(a.X-b.X, a.Y-b.Y) }

func TestLockedNodeNeverMoves(t *testing.T) {
	nodes, links := chain(map[string]bool{"B": true}, "A", "B", "C", "D")
	sim := New(nodes, links, sizing.ForcesFor(len(nodes)), DefaultConfig())
	b, _ := sim.Node("B")
	start := b.Position()

	for i := 0; i < 200; i++ {
		sim.Tick()
		require.Equal(t, start, b.Position(), "tick %d", i)
		pin, ok := b.Pin()
		require.True(t, ok)
		require.Equal(t, start, pin)
	}
	a, _ := sim.Node("A")
	assert.NotEqual(t, pt(0, 0), a.Position(), "free nodes should have moved")
}

func TestAllLockedIsSettled(t *testing.T) {
	nodes, links := chain(map[string]bool{"A": true, "B": true, "C": true}, "A", "B", "C")
	sim := New(nodes, links, sizing.ForcesFor(3), DefaultConfig())
	before := make([]graph.Point, len(nodes))
	for i, n := range nodes {
		before[i] = n.Position()
	}

	ticks := 0
	sim.OnTick(func(*Simulation) { ticks++ })
	assert.True(t, sim.Settled())
	for i := 0; i < 10; i++ {
		st := sim.Tick()
		assert.True(t, st.Settled)
		assert.Zero(t, st.Moved)
	}
	for i, n := range nodes {
		assert.Equal(t, before[i], n.Position())
	}
	assert.Equal(t, 10, ticks)
}

func TestAlphaDecaysTowardFloor(t *testing.T) {
	nodes, links := chain(nil, "A", "B")
	cfg := DefaultConfig()
	sim := New(nodes, links, sizing.ForcesFor(2), cfg)
	assert.Equal(t, 0.4, sim.Alpha())

	sim.Tick()
	assert.InDelta(t, 0.4+(0.05-0.4)*0.02, sim.Alpha(), 1e-12)

	for i := 0; i < 2000; i++ {
		sim.Tick()
	}
	assert.InDelta(t, cfg.AlphaTarget, sim.Alpha(), 1e-6)
	assert.False(t, sim.Settled(), "the floor keeps the layout alive")

	sim.Reheat(cfg.Energy.DragStart)
	assert.Equal(t, 0.8, sim.Alpha())
}

func TestLinkDistanceByWeight(t *testing.T) {
	nodes := []*Node{NewNode("A", pt(0, 0), false, nil), NewNode("B", pt(1, 1), false, nil), NewNode("C", pt(2, 0), false, nil)}
	links := []graph.Link{
		{Source: "A", Target: "B", Weight: 1},
		{Source: "B", Target: "C", Weight: 0},
		{Source: "A", Target: "Z", Weight: 1},
	}
	params := sizing.ForcesFor(3)
	sim := New(nodes, links, params, DefaultConfig())

	ls := sim.Links()
	require.Len(t, ls, 2, "links to unknown nodes are ignored")
	assert.Equal(t, 190.0, ls[0].Distance)
	assert.Equal(t, 240.0, ls[1].Distance)
}

func TestLinkStrengthPartition(t *testing.T) {
	nodes, links := chain(map[string]bool{"C": true}, "A", "B", "C", "D", "E")
	links = append(links, graph.Link{Source: "A", Target: "E", Weight: 0.5})
	sim := New(nodes, links, sizing.ForcesFor(5), DefaultConfig())

	strengths := func() map[string]float64 {
		out := map[string]float64{}
		for _, l := range sim.Links() {
			out[l.Source+l.Target] = l.Strength
		}
		return out
	}

	assert.Equal(t, map[string]float64{"AB": 0.8, "BC": 0, "CD": 0, "DE": 0.8, "AE": 0.8}, strengths())

	sim.SetScope(map[string]bool{"B": true})
	assert.Equal(t, map[string]float64{"AB": 1.2, "BC": 0, "CD": 0, "DE": 0.3, "AE": 0.3}, strengths())

	sim.SetScope(nil)
	assert.Equal(t, 0.8, strengths()["AB"])

	sim.Unlock("C")
	assert.Equal(t, 0.8, strengths()["BC"])
	sim.Lock("A", pt(5, 5))
	assert.Equal(t, 0.0, strengths()["AB"])
	assert.Equal(t, 0.0, strengths()["AE"])
}

func TestLinkPullsNodesTogether(t *testing.T) {
	nodes := []*Node{NewNode("A", pt(0, 0), false, nil), NewNode("B", pt(1500, 10), false, nil)}
	links := []graph.Link{{Source: "A", Target: "B", Weight: 0.8}}
	sim := New(nodes, links, sizing.ForcesFor(2), DefaultConfig())

	for i := 0; i < 300; i++ {
		sim.Tick()
	}
	d := dist(nodes[0].Position(), nodes[1].Position())
	assert.Less(t, d, 1500.0)
	assert.Greater(t, d, 100.0)
}

func TestChargeSeparatesCoincidentNodes(t *testing.T) {
	nodes := []*Node{NewNode("A", pt(0, 0), false, nil), NewNode("B", pt(0, 0), false, nil)}
	sim := New(nodes, nil, sizing.ForcesFor(2), DefaultConfig())
	for i := 0; i < 50; i++ {
		sim.Tick()
	}
	assert.Greater(t, dist(nodes[0].Position(), nodes[1].Position()), 1.0)
}

func TestNonFinitePositionIsContained(t *testing.T) {
	nodes := []*Node{NewNode("A", pt(0, 0), false, nil), NewNode("B", pt(10, 0), false, nil), NewNode("C", pt(5000, 5000), false, nil)}
	params := sizing.Forces{ChargeStrength: math.Inf(-1), ChargeDistanceMax: 100}
	sim := New(nodes, nil, params, DefaultConfig())

	st := sim.Tick()

	assert.Equal(t, 2, st.Resets)
	assert.Equal(t, pt(0, 0), nodes[0].Position())
	assert.Equal(t, pt(10, 0), nodes[1].Position())
	assert.Equal(t, pt(5000, 5000), nodes[2].Position())
	assert.Equal(t, 1, st.Moved)
	assert.Equal(t, 2, sim.Stats().Resets)
	for _, n := range nodes {
		p := n.Position()
		assert.False(t, math.IsNaN(p.X) || math.IsInf(p.X, 0))
	}
}

func TestNonFiniteInputsAreRefused(t *testing.T) {
	n := NewNode("A", pt(math.NaN(), 3), true, nil)
	assert.Equal(t, pt(0, 0), n.Position())
	pin, ok := n.Pin()
	require.True(t, ok)
	assert.Equal(t, pt(0, 0), pin)

	n.WithVelocity(pt(math.Inf(1), 0))
	assert.Equal(t, pt(0, 0), n.Velocity())

	b := NewNode("B", pt(10, 0), false, nil)
	sim := New([]*Node{n, b}, nil, sizing.ForcesFor(2), DefaultConfig())
	assert.False(t, sim.Lock("B", pt(math.Inf(-1), 0)))
	assert.False(t, sim.SetOverride("B", pt(0, math.NaN())))
	assert.False(t, b.Locked())
	assert.Equal(t, pt(10, 0), b.Position())
}

func TestOverrideHoldsNode(t *testing.T) {
	nodes, links := chain(nil, "A", "B", "C")
	sim := New(nodes, links, sizing.ForcesFor(3), DefaultConfig())

	require.True(t, sim.SetOverride("B", pt(400, 400)))
	for i := 0; i < 20; i++ {
		sim.Tick()
	}
	b, _ := sim.Node("B")
	assert.Equal(t, pt(400, 400), b.Position())
	fixed, ok := b.Fixed()
	assert.True(t, ok)
	assert.Equal(t, pt(400, 400), fixed)
	assert.False(t, b.Locked(), "a pointer hold is not a lock")

	require.True(t, sim.ClearOverride("B"))
	_, ok = b.Fixed()
	assert.False(t, ok)
	assert.False(t, sim.SetOverride("missing", pt(0, 0)))
}

func TestOverrideOnlyNodeIsSettled(t *testing.T) {
	nodes := []*Node{NewNode("A", pt(0, 0), true, nil), NewNode("B", pt(10, 0), false, nil)}
	sim := New(nodes, nil, sizing.ForcesFor(2), DefaultConfig())
	sim.SetOverride("B", pt(50, 50))
	st := sim.Tick()
	assert.True(t, st.Settled)
	assert.Equal(t, pt(50, 50), nodes[1].Position())
	assert.Equal(t, pt(0, 0), nodes[0].Position())
}

func TestStopIsImmediate(t *testing.T) {
	nodes, links := chain(nil, "A", "B")
	sim := New(nodes, links, sizing.ForcesFor(2), DefaultConfig())
	calls := 0
	sim.OnTick(func(s *Simulation) {
		calls++
		s.Stop()
	})
	sim.OnTick(func(*Simulation) { calls += 100 })

	sim.Tick()
	assert.Equal(t, 1, calls, "listeners after Stop must not fire")

	before := nodes[0].Position()
	st := sim.Tick()
	assert.False(t, st.Ran)
	assert.Equal(t, before, nodes[0].Position())
	assert.True(t, sim.Settled())

	sim.Reheat(0.9)
	assert.NotEqual(t, 0.9, sim.Alpha())
}

func TestLockPlacesNode(t *testing.T) {
	nodes, links := chain(nil, "A", "B")
	sim := New(nodes, links, sizing.ForcesFor(2), DefaultConfig())
	require.True(t, sim.Lock("A", pt(7, 8)))
	a, _ := sim.Node("A")
	assert.Equal(t, pt(7, 8), a.Position())
	assert.Equal(t, map[string]bool{"A": true}, sim.LockedIDs())
	assert.False(t, sim.Lock("missing", pt(0, 0)))
	assert.False(t, sim.Unlock("missing"))
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.Energy.Toggle = 0.05
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.AlphaDecay = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.LinkReduced = -1
	assert.Error(t, cfg.Validate())
}
