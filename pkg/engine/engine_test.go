package engine

import (
	"context"
	"math"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anthonybishopric/docgraph/pkg/graph"
	"github.com/anthonybishopric/docgraph/pkg/render"
)

func activeGauge(t *testing.T) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, activeSimulations.Write(&m))
	return m.GetGauge().GetValue()
}

func payload(ids ...string) *graph.Payload {
	p := &graph.Payload{}
	for i, id := range ids {
		p.Nodes = append(p.Nodes, graph.Node{ID: id, Data: graph.Document{"title": "Doc " + id}})
		if i > 0 {
			p.Edges = append(p.Edges, graph.Edge{Source: ids[i-1], Target: id})
		}
	}
	return p
}

func TestLoadReplacesSimulation(t *testing.T) {
	base := activeGauge(t)
	v := NewView(DefaultOptions())

	v.Load(payload("A", "B", "C"))
	first := v.Simulation()
	v.Load(payload("B", "C", "D"))
	second := v.Simulation()

	assert.True(t, first.Stopped())
	assert.False(t, second.Stopped())
	assert.Equal(t, base+1, activeGauge(t))
	assert.False(t, first.Tick().Ran, "a replaced simulation never ticks again")

	var commits []render.Commit
	v.Store().OnCommit(func(c render.Commit) { commits = append(commits, c) })
	st := v.Frame(time.Now())
	require.True(t, st.Ran)
	require.Len(t, commits, 1, "one writer per frame")
	assert.Len(t, commits[0].Positions, 3)

	v.Close()
	assert.Equal(t, base, activeGauge(t))
	v.Close()
	assert.Equal(t, base, activeGauge(t))
}

func TestLoadKeepsExistingNodes(t *testing.T) {
	v := NewView(DefaultOptions())
	v.Load(payload("A", "B"))

	ctl := v.Controller()
	require.NoError(t, ctl.GrabStart("A"))
	require.NoError(t, ctl.DragMove("A", graph.Point{X: 42, Y: 42}))
	require.NoError(t, ctl.Release("A", graph.Point{X: 42, Y: 42}))

	v.Load(payload("A", "C"))
	defer v.Close()

	a, ok := v.Simulation().Node("A")
	require.True(t, ok)
	assert.True(t, a.Locked())
	assert.Equal(t, graph.Point{X: 42, Y: 42}, a.Position())
	assert.True(t, v.Store().Locked("A"))
	assert.False(t, v.Store().Has("B"))
	assert.True(t, v.Store().Has("C"))

	c, _ := v.Simulation().Node("C")
	assert.False(t, c.Locked())
}

func TestLoadPlacement(t *testing.T) {
	v := NewView(DefaultOptions())
	defer v.Close()

	p := payload("A", "B")
	p.Nodes[0].Position = &graph.Point{X: 500, Y: -500}
	p.Nodes[0].Locked = true
	p.SeedNodeID = "B"
	p.Edges = append(p.Edges, graph.Edge{Source: "A", Target: "ghost"})

	res := v.Load(p)
	assert.Len(t, res.Dropped, 1)

	a, _ := v.Store().Position("A")
	assert.Equal(t, graph.Point{X: 500, Y: -500}, a)
	assert.True(t, v.Store().Locked("A"))

	b, _ := v.Store().Position("B")
	assert.LessOrEqual(t, b.X*b.X+b.Y*b.Y, float64(DefaultStartRadius*DefaultStartRadius))

	assert.Equal(t, "B", v.Controller().Selected())
	assert.True(t, v.Store().HasClass("B", render.ClassSelected))
}

func TestLoadIgnoresUnusablePositions(t *testing.T) {
	src := `
nodes:
  - id: A
    position: {x: .nan, y: 0}
  - id: B
    position: {x: 1e308, y: 0}
  - id: C
edges:
  - source: A
    target: B
  - source: B
    target: C
`
	p, err := graph.DecodeBytes([]byte(src), graph.FormatYAML)
	require.NoError(t, err)

	v := NewView(DefaultOptions())
	defer v.Close()
	v.Load(p)
	before := v.Store().Positions()

	now := time.Now()
	for i := 0; i < 50; i++ {
		now = now.Add(time.Second / DefaultFPS)
		st := v.Frame(now)
		require.True(t, st.Ran)
		require.Zero(t, st.Resets)
	}

	after := v.Store().Positions()
	require.Len(t, after, 3)
	for id, pos := range after {
		assert.False(t, math.IsNaN(pos.X) || math.IsInf(pos.X, 0), id)
		assert.False(t, math.IsNaN(pos.Y) || math.IsInf(pos.Y, 0), id)
		assert.NotEqual(t, before[id], pos, "%s should move", id)
	}
}

func TestLoadKeepsVelocity(t *testing.T) {
	v := NewView(DefaultOptions())
	defer v.Close()
	v.Load(payload("A", "B"))
	for i := 0; i < 3; i++ {
		v.Frame(time.Now())
	}
	b, _ := v.Simulation().Node("B")
	vel := b.Velocity()
	require.NotEqual(t, graph.Point{}, vel)

	v.Load(payload("A", "B", "C"))
	b, _ = v.Simulation().Node("B")
	assert.Equal(t, vel, b.Velocity())
	c, _ := v.Simulation().Node("C")
	assert.Equal(t, graph.Point{}, c.Velocity())
}

func TestFrameSkipsSettledGraph(t *testing.T) {
	v := NewView(DefaultOptions())
	defer v.Close()

	p := payload("A", "B")
	for i := range p.Nodes {
		p.Nodes[i].Locked = true
	}
	v.Load(p)
	seq := v.Store().Seq()

	for i := 0; i < 5; i++ {
		st := v.Frame(time.Now())
		assert.False(t, st.Ran)
	}
	assert.Equal(t, seq, v.Store().Seq())
	assert.Equal(t, 0, v.Simulation().Stats().Ticks)
}

func TestFrameBeforeLoad(t *testing.T) {
	v := NewView(DefaultOptions())
	assert.False(t, v.Frame(time.Now()).Ran)
	assert.Nil(t, v.Result())
}

func TestLoopSerializesWork(t *testing.T) {
	v := NewView(DefaultOptions())
	loop := NewLoop(v, 200, nil)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- loop.Run(ctx) }()

	require.NoError(t, loop.Do(ctx, func(v *View) error {
		v.Load(payload("A", "B", "C"))
		return nil
	}))

	require.Eventually(t, func() bool {
		var ticks int
		_ = loop.Do(ctx, func(v *View) error {
			ticks = v.Simulation().Stats().Ticks
			return nil
		})
		return ticks > 0
	}, 2*time.Second, 10*time.Millisecond)

	var n int
	require.NoError(t, loop.Do(ctx, func(v *View) error {
		n = v.Store().Len()
		return nil
	}))
	assert.Equal(t, 3, n)

	cancel()
	require.NoError(t, <-errc)
	<-loop.Done()
	assert.True(t, v.Simulation().Stopped())
	assert.ErrorIs(t, loop.Do(context.Background(), func(*View) error { return nil }), ErrStopped)
}
