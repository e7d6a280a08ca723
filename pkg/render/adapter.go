package render

import "github.com/anthonybishopric/docgraph/pkg/force"

// Adapter copies simulated positions into a Store. Nodes that are locked, held
// by a gesture or locked on the render side are never written: their position
// belongs to the interaction controller.
type Adapter struct {
	store  *Store
	writes int
}

// NewAdapter creates an adapter writing into store.
func NewAdapter(store *Store) *Adapter {
	return &Adapter{store: store}
}

// Attach subscribes the adapter to a simulation's ticks.
func (a *Adapter) Attach(sim *force.Simulation) {
	sim.OnTick(func(s *force.Simulation) { a.Sync(s) })
}

// Sync writes all free node positions in a single batch and returns the
// number of nodes written.
func (a *Adapter) Sync(sim *force.Simulation) int {
	written := 0
	a.store.Batch(func() {
		for _, n := range sim.Nodes() {
			if _, fixed := n.Fixed(); fixed || n.Locked() {
				continue
			}
			if !a.store.Has(n.ID) || a.store.Locked(n.ID) {
				continue
			}
			a.store.SetPosition(n.ID, n.Position())
			written++
		}
	})
	a.writes += written
	return written
}

// Writes returns the total number of position writes.
func (a *Adapter) Writes() int { return a.writes }

// Fit frames the viewport around all nodes.
func (a *Adapter) Fit() {
	a.store.Fit(FitPadding)
}
