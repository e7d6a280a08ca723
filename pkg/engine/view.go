// Package engine owns one displayed graph and serializes its simulation ticks
// and interaction events on a single goroutine.
package engine

import (
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"github.com/anthonybishopric/docgraph/pkg/force"
	"github.com/anthonybishopric/docgraph/pkg/graph"
	"github.com/anthonybishopric/docgraph/pkg/interact"
	"github.com/anthonybishopric/docgraph/pkg/notify"
	"github.com/anthonybishopric/docgraph/pkg/render"
	"github.com/anthonybishopric/docgraph/pkg/sizing"
)

// DefaultStartRadius bounds the random placement of nodes that arrive
// without a position.
const DefaultStartRadius = 100

// Options configure a View.
type Options struct {
	Simulation force.Config
	Sizing     sizing.Bounds

	// Width and Height fix the viewport. When zero the viewport follows the
	// size suggested for the loaded node count.
	Width, Height float64

	StartRadius float64
	ClickWindow time.Duration
	Logger      *slog.Logger
}

// DefaultOptions returns the stock simulation and sizing settings.
func DefaultOptions() Options {
	return Options{
		Simulation:  force.DefaultConfig(),
		Sizing:      sizing.DefaultBounds(),
		StartRadius: DefaultStartRadius,
		ClickWindow: interact.DoubleClickWindow,
	}
}

// View is one displayed graph: its render store, the running simulation and
// the interaction controller bound to it. A View is not safe for concurrent
// use; drive it from a Loop.
type View struct {
	opts        Options
	logger      *slog.Logger
	calc        sizing.Calculator
	transformer *graph.Transformer
	rng         *rand.Rand

	store   *render.Store
	adapter *render.Adapter
	events  *notify.Notifier
	ctl     *interact.Controller

	sim    *force.Simulation
	result *graph.Result
}

// NewView creates an empty view.
func NewView(opts Options) *View {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.StartRadius <= 0 {
		opts.StartRadius = DefaultStartRadius
	}
	calc := sizing.New(opts.Sizing)
	w, h := opts.Width, opts.Height
	if w <= 0 || h <= 0 {
		vp := sizing.ViewportFor(0)
		w, h = float64(vp.Width), float64(vp.Height)
	}

	v := &View{
		opts:        opts,
		logger:      logger,
		calc:        calc,
		transformer: graph.NewTransformer(calc, logger),
		rng:         rand.New(rand.NewPCG(opts.Simulation.Seed, opts.Simulation.Seed+1)),
		store:       render.NewStore(w, h),
		events:      notify.New(logger),
	}
	v.adapter = render.NewAdapter(v.store)
	v.ctl = interact.NewController(v.store, v.events,
		interact.WithLogger(logger),
		interact.WithClickWindow(opts.ClickWindow))
	v.store.OnCommit(countCommit)
	return v
}

func countCommit(c render.Commit) {
	if len(c.Positions) > 0 {
		renderCommitsTotal.WithLabelValues("positions").Inc()
	}
	if c.Structure {
		renderCommitsTotal.WithLabelValues("structure").Inc()
	}
	if c.View {
		renderCommitsTotal.WithLabelValues("view").Inc()
	}
	if len(c.Changed) > 0 {
		renderCommitsTotal.WithLabelValues("state").Inc()
	}
}

// Store returns the render graph.
func (v *View) Store() *render.Store { return v.store }

// Controller returns the interaction controller.
func (v *View) Controller() *interact.Controller { return v.ctl }

// Events returns the notifier observers subscribe to.
func (v *View) Events() *notify.Notifier { return v.events }

// Simulation returns the running simulation, nil before the first Load.
func (v *View) Simulation() *force.Simulation { return v.sim }

// Result returns the last transformed payload.
func (v *View) Result() *graph.Result { return v.result }

// Adapter returns the render adapter.
func (v *View) Adapter() *render.Adapter { return v.adapter }

// Load replaces the displayed graph. The previous simulation is stopped before
// the new one is built, so at most one simulation writes into the store. Nodes
// already on screen keep their position, lock and velocity.
func (v *View) Load(p *graph.Payload) *graph.Result {
	v.stop()
	prevSim := v.sim

	res := v.transformer.Transform(p)
	droppedEdgesTotal.Add(float64(len(res.Dropped)))

	prev := v.store.Positions()
	prevLocked := v.store.LockedSet()
	positions := make(map[string]graph.Point, len(res.Nodes))
	nodes := make([]*force.Node, 0, len(res.Nodes))
	for _, n := range res.Nodes {
		pos, existing := prev[n.ID]
		locked := n.Locked
		switch {
		case existing:
			locked = prevLocked[n.ID]
		case n.Position != nil:
			pos = *n.Position
		default:
			pos = v.scatter()
		}
		positions[n.ID] = pos
		node := force.NewNode(n.ID, pos, locked, n.Data)
		if existing && !locked && prevSim != nil {
			if old, ok := prevSim.Node(n.ID); ok {
				node.WithVelocity(old.Velocity())
			}
		}
		nodes = append(nodes, node)
	}

	if v.opts.Width <= 0 || v.opts.Height <= 0 {
		vp := sizing.ViewportFor(len(res.Nodes))
		v.store.Resize(float64(vp.Width), float64(vp.Height))
	}
	v.store.Sync(res.Nodes, res.Links, res.Size, positions)

	v.sim = force.New(nodes, res.Links, res.Forces, v.opts.Simulation)
	v.adapter.Attach(v.sim)
	v.ctl.Bind(v.sim)
	v.adapter.Fit()
	if p != nil && p.SeedNodeID != "" && v.store.Has(p.SeedNodeID) {
		v.ctl.Select(p.SeedNodeID)
	}

	v.result = res
	activeSimulations.Inc()
	loadsTotal.Inc()
	v.logger.Info("graph loaded",
		"nodes", len(res.Nodes),
		"links", len(res.Links),
		"dropped", len(res.Dropped),
		"tier", res.Size.Ratio)
	return res
}

// scatter picks a start position uniformly inside the start disc.
func (v *View) scatter() graph.Point {
	r := v.opts.StartRadius * math.Sqrt(v.rng.Float64())
	a := 2 * math.Pi * v.rng.Float64()
	return graph.Point{X: r * math.Cos(a), Y: r * math.Sin(a)}
}

func (v *View) stop() {
	if v.sim == nil || v.sim.Stopped() {
		return
	}
	v.sim.Stop()
	activeSimulations.Dec()
}

// Frame advances the view by one frame: pending taps whose double click
// window has passed are resolved, then the simulation ticks unless it has
// settled.
func (v *View) Frame(now time.Time) force.TickStats {
	v.ctl.Flush(now)
	if v.sim == nil || v.sim.Settled() {
		return force.TickStats{}
	}

	start := time.Now()
	st := v.sim.Tick()
	tickDuration.Observe(time.Since(start).Seconds())
	ticksTotal.Inc()
	if st.Resets > 0 {
		nonfiniteResetsTotal.Add(float64(st.Resets))
		v.logger.Warn("non-finite positions reset", "nodes", st.Resets)
	}
	return st
}

// Close stops the running simulation.
func (v *View) Close() {
	v.stop()
}
