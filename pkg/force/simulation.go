// Package force implements the continuous force-directed layout: link springs,
// pairwise charge repulsion and collision, integrated once per tick.
package force

import (
	"math/rand/v2"

	"github.com/anthonybishopric/docgraph/pkg/graph"
	"github.com/anthonybishopric/docgraph/pkg/sizing"
)

// TickStats describes one call to Tick.
type TickStats struct {
	Ran     bool    // False when the simulation was stopped
	Settled bool    // No free node remained; positions were left alone
	Alpha   float64 // Alpha after decay
	Moved   int     // Free nodes integrated
	Resets  int     // Nodes restored after a non-finite step
}

// Stats are cumulative counters.
type Stats struct {
	Ticks  int
	Resets int
}

// LinkState is a link together with its current spring parameters.
type LinkState struct {
	graph.Link
	Distance float64
	Strength float64
}

type link struct {
	graph.Link
	source, target int
	distance       float64
	bias           float64
	strength       float64
}

// Simulation owns node positions and velocities. It is not safe for concurrent
// use; a single goroutine drives Tick and the lock methods.
type Simulation struct {
	cfg    Config
	params sizing.Forces

	nodes []*Node
	index map[string]int
	links []link

	alpha       float64
	alphaTarget float64
	scope       map[string]bool

	listeners []func(*Simulation)
	stopped   bool
	stats     Stats
	rng       *rand.Rand

	// Per-tick snapshot and force accumulators.
	px, py, pvx, pvy []float64
	dvx, dvy         []float64
}

// New builds a simulation over nodes and links. Links whose endpoints are not
// among nodes are ignored; callers are expected to have filtered them already.
func New(nodes []*Node, links []graph.Link, params sizing.Forces, cfg Config) *Simulation {
	s := &Simulation{
		cfg:         cfg,
		params:      params,
		nodes:       nodes,
		index:       make(map[string]int, len(nodes)),
		alpha:       cfg.AlphaInitial,
		alphaTarget: cfg.AlphaTarget,
		rng:         rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
	}
	for i, n := range nodes {
		s.index[n.ID] = i
		if p, ok := n.Fixed(); ok {
			n.place(p)
		}
	}

	count := make([]int, len(nodes))
	for _, l := range links {
		si, ok1 := s.index[l.Source]
		ti, ok2 := s.index[l.Target]
		if !ok1 || !ok2 {
			continue
		}
		count[si]++
		count[ti]++
		s.links = append(s.links, link{
			Link:     l,
			source:   si,
			target:   ti,
			distance: params.LinkDistance.Clamp(l.Weight, cfg.DistanceFactor),
		})
	}
	for i := range s.links {
		l := &s.links[i]
		l.bias = float64(count[l.source]) / float64(count[l.source]+count[l.target])
	}
	s.refreshStrengths()

	n := len(nodes)
	s.px, s.py = make([]float64, n), make([]float64, n)
	s.pvx, s.pvy = make([]float64, n), make([]float64, n)
	s.dvx, s.dvy = make([]float64, n), make([]float64, n)
	return s
}

// Config returns the simulation's tuning.
func (s *Simulation) Config() Config { return s.cfg }

// Params returns the size-derived force constants.
func (s *Simulation) Params() sizing.Forces { return s.params }

// Nodes returns the simulated nodes in construction order.
func (s *Simulation) Nodes() []*Node { return s.nodes }

// Node looks up a node by id.
func (s *Simulation) Node(id string) (*Node, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.nodes[i], true
}

// Links returns the links with their current spring parameters.
func (s *Simulation) Links() []LinkState {
	out := make([]LinkState, len(s.links))
	for i, l := range s.links {
		out[i] = LinkState{Link: l.Link, Distance: l.distance, Strength: l.strength}
	}
	return out
}

// LockedIDs returns the ids of all pinned nodes.
func (s *Simulation) LockedIDs() map[string]bool {
	ids := make(map[string]bool)
	for _, n := range s.nodes {
		if n.Locked() {
			ids[n.ID] = true
		}
	}
	return ids
}

// Alpha returns the current energy.
func (s *Simulation) Alpha() float64 { return s.alpha }

// AlphaTarget returns the energy floor alpha decays toward.
func (s *Simulation) AlphaTarget() float64 { return s.alphaTarget }

// SetAlphaTarget changes the floor.
func (s *Simulation) SetAlphaTarget(v float64) { s.alphaTarget = v }

// Reheat sets alpha so the layout re-settles.
func (s *Simulation) Reheat(alpha float64) {
	if s.stopped {
		return
	}
	s.alpha = alpha
}

// OnTick registers fn to run after every tick, in registration order.
func (s *Simulation) OnTick(fn func(*Simulation)) {
	s.listeners = append(s.listeners, fn)
}

// Stop halts the simulation. After Stop returns no tick runs and no listener
// fires; a stopped simulation is replaced, never restarted.
func (s *Simulation) Stop() {
	s.stopped = true
	s.listeners = nil
}

// Stopped reports whether Stop was called.
func (s *Simulation) Stopped() bool { return s.stopped }

// Stats returns cumulative counters.
func (s *Simulation) Stats() Stats { return s.stats }

// FreeCount returns the number of nodes the integrator may move.
func (s *Simulation) FreeCount() int {
	free := 0
	for _, n := range s.nodes {
		if n.free() {
			free++
		}
	}
	return free
}

// Settled reports whether ticking would change nothing: the simulation is
// stopped, every node is fixed, or alpha has cooled below its minimum.
func (s *Simulation) Settled() bool {
	if s.stopped || s.FreeCount() == 0 {
		return true
	}
	return s.alpha < s.cfg.AlphaMin && s.alphaTarget < s.cfg.AlphaMin
}

// Lock pins a node at p. It reports false for an unknown node or a
// non-finite p.
func (s *Simulation) Lock(id string, p graph.Point) bool {
	n, ok := s.Node(id)
	if !ok || !finite(p.X) || !finite(p.Y) {
		return false
	}
	pin := p
	n.pin = &pin
	if n.override == nil {
		n.place(p)
	}
	s.refreshStrengths()
	return true
}

// Unlock releases a node's pin. Its position is kept.
func (s *Simulation) Unlock(id string) bool {
	n, ok := s.Node(id)
	if !ok {
		return false
	}
	n.pin = nil
	s.refreshStrengths()
	return true
}

// SetOverride holds a node at p for the duration of a gesture. A non-finite
// p is refused.
func (s *Simulation) SetOverride(id string, p graph.Point) bool {
	n, ok := s.Node(id)
	if !ok || !finite(p.X) || !finite(p.Y) {
		return false
	}
	o := p
	n.override = &o
	n.place(p)
	return true
}

// ClearOverride ends the pointer hold on a node.
func (s *Simulation) ClearOverride(id string) bool {
	n, ok := s.Node(id)
	if !ok {
		return false
	}
	n.override = nil
	return true
}

// SetScope amplifies links touching ids and weakens all other unlocked links.
// A nil scope restores base strengths.
func (s *Simulation) SetScope(ids map[string]bool) {
	s.scope = ids
	s.refreshStrengths()
}

// Scope returns the current amplification scope, nil outside a drag.
func (s *Simulation) Scope() map[string]bool { return s.scope }

func (s *Simulation) refreshStrengths() {
	for i := range s.links {
		l := &s.links[i]
		src, tgt := s.nodes[l.source], s.nodes[l.target]
		switch {
		case src.Locked() || tgt.Locked():
			l.strength = 0
		case s.scope == nil:
			l.strength = s.cfg.LinkStrength
		case s.scope[src.ID] || s.scope[tgt.ID]:
			l.strength = s.cfg.LinkAmplified
		default:
			l.strength = s.cfg.LinkReduced
		}
	}
}

// Tick advances the simulation by one step and notifies listeners.
func (s *Simulation) Tick() TickStats {
	if s.stopped {
		return TickStats{}
	}
	s.alpha += (s.alphaTarget - s.alpha) * s.cfg.AlphaDecay
	st := TickStats{Ran: true, Alpha: s.alpha}

	if s.FreeCount() == 0 {
		st.Settled = true
		s.holdFixed()
	} else {
		s.snapshot()
		s.applyLinks()
		s.applyCharge()
		s.applyCollide()
		s.integrate(&st)
	}

	s.stats.Ticks++
	s.stats.Resets += st.Resets
	for _, fn := range s.listeners {
		if s.stopped {
			break
		}
		fn(s)
	}
	return st
}

func (s *Simulation) snapshot() {
	for i, n := range s.nodes {
		s.px[i], s.py[i] = n.x, n.y
		s.pvx[i], s.pvy[i] = n.vx, n.vy
		s.dvx[i], s.dvy[i] = 0, 0
	}
}

// holdFixed moves gesture-held nodes to their pointer position. Pinned
// nodes already sit on their pin and are not written.
func (s *Simulation) holdFixed() {
	for _, n := range s.nodes {
		if n.override != nil {
			n.place(*n.override)
		}
	}
}

// integrate writes new positions from the accumulated velocity changes. All
// reads come from the snapshot taken at the start of the tick.
func (s *Simulation) integrate(st *TickStats) {
	keep := 1 - s.cfg.VelocityDecay
	for i, n := range s.nodes {
		switch {
		case n.override != nil:
			n.place(*n.override)
			continue
		case n.pin != nil:
			n.vx, n.vy = 0, 0
			continue
		}

		vx := (s.pvx[i] + s.dvx[i]) * keep
		vy := (s.pvy[i] + s.dvy[i]) * keep
		x, y := s.px[i]+vx, s.py[i]+vy
		if !finite(x) || !finite(y) || !finite(vx) || !finite(vy) {
			n.x, n.y = n.lastX, n.lastY
			n.vx, n.vy = 0, 0
			st.Resets++
			continue
		}
		n.x, n.y, n.vx, n.vy = x, y, vx, vy
		n.lastX, n.lastY = x, y
		st.Moved++
	}
}

func (s *Simulation) jiggle() float64 {
	return (s.rng.Float64() - 0.5) * 1e-6
}
