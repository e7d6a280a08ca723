// Package interact turns pointer input into lock, drag and highlight changes on
// a running simulation and its render graph.
package interact

import (
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/anthonybishopric/docgraph/pkg/force"
	"github.com/anthonybishopric/docgraph/pkg/graph"
	"github.com/anthonybishopric/docgraph/pkg/notify"
	"github.com/anthonybishopric/docgraph/pkg/render"
)

var (
	// ErrUnknownNode is returned for ids absent from the current graph.
	ErrUnknownNode = errors.New("unknown node")
	// ErrBusy is returned when a drag is attempted while input is disabled.
	ErrBusy = errors.New("interaction disabled while busy")
	// ErrNoGesture is returned when a drag step names a node not being dragged.
	ErrNoGesture = errors.New("no gesture in progress for node")
)

// RenderGraph is the part of the render store the controller drives.
type RenderGraph interface {
	Has(id string) bool
	Node(id string) (render.Node, bool)
	Position(id string) (graph.Point, bool)
	SetPosition(id string, p graph.Point) bool
	Locked(id string) bool
	SetLocked(id string, locked bool) bool
	LockedSet() map[string]bool
	Adjacency() map[string][]string
	Grabbable(id string) bool
	SetGrabbable(grabbable bool)
	SetInteraction(in render.Interaction)
	AddClass(id, class string)
	RemoveClass(id, class string)
	ClearClass(class string)
	WithClass(class string) []string
	Batch(fn func())
}

// gesture is a node held by the pointer.
type gesture struct {
	id        string
	wasPinned bool
	pinnedAt  graph.Point
	start     graph.Point
	confirmed bool
	moved     bool
}

// Controller owns the per-node interaction state. It must be driven from the
// goroutine that ticks the simulation.
type Controller struct {
	sim    *force.Simulation
	graph  RenderGraph
	events *notify.Notifier
	clicks *Clicks
	logger *slog.Logger
	now    func() time.Time

	busy     bool
	grab     *gesture
	pressed  string
	selected string
	hovered  string
	tooltip  notify.Tooltip
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock sets the time source used to classify clicks.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithClickWindow sets the double click window.
func WithClickWindow(d time.Duration) Option {
	return func(c *Controller) { c.clicks = NewClicks(d) }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// NewController creates a controller over a render graph. events may be nil.
func NewController(g RenderGraph, events *notify.Notifier, opts ...Option) *Controller {
	c := &Controller{
		graph:  g,
		events: events,
		clicks: NewClicks(DoubleClickWindow),
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Bind points the controller at a new simulation. Any gesture on the previous
// simulation is dropped and the busy state is reapplied to the render graph.
func (c *Controller) Bind(sim *force.Simulation) {
	c.grab = nil
	c.pressed = ""
	c.hovered = ""
	c.tooltip = notify.Tooltip{}
	c.clicks.Reset()
	c.sim = sim
	c.graph.Batch(func() {
		c.graph.ClearClass(render.ClassHighlight)
		c.graph.ClearClass(render.ClassFaded)
		c.graph.ClearClass(render.ClassHover)
	})
	c.applyBusy()
}

// Simulation returns the bound simulation.
func (c *Controller) Simulation() *force.Simulation { return c.sim }

// Busy reports whether input is disabled.
func (c *Controller) Busy() bool { return c.busy }

// Dragging returns the id of the node held by the pointer, if any.
func (c *Controller) Dragging() (string, bool) {
	if c.grab == nil {
		return "", false
	}
	return c.grab.id, true
}

// Highlighted returns the ids currently highlighted by a drag, sorted.
func (c *Controller) Highlighted() []string {
	return c.graph.WithClass(render.ClassHighlight)
}

func (c *Controller) lookup(id string) (*force.Node, error) {
	if c.sim == nil || !c.graph.Has(id) {
		return nil, errors.Wrapf(ErrUnknownNode, "node %q", id)
	}
	n, ok := c.sim.Node(id)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownNode, "node %q", id)
	}
	return n, nil
}

func (c *Controller) position(n *force.Node) graph.Point {
	if p, ok := c.graph.Position(n.ID); ok {
		return p
	}
	return n.Position()
}

func (c *Controller) energy() force.Energy { return c.sim.Config().Energy }

// GrabStart begins holding a node. A locked node is released from its pin so
// it can move; its coordinates are kept.
func (c *Controller) GrabStart(id string) error {
	if c.busy {
		return ErrBusy
	}
	n, err := c.lookup(id)
	if err != nil {
		return err
	}
	if c.grab != nil {
		c.Cancel()
	}

	pos := c.position(n)
	g := &gesture{id: id, start: pos}
	if pin, ok := n.Pin(); ok {
		g.wasPinned, g.pinnedAt = true, pin
		c.sim.Unlock(id)
		c.graph.SetLocked(id, false)
	}
	c.sim.SetOverride(id, pos)
	c.grab = g
	c.logger.Debug("grab start", "node", id, "was_locked", g.wasPinned)
	return nil
}

// GrabConfirm commits a grab into a drag: it reheats the layout, highlights
// the unlocked component around the node and amplifies the springs touching
// it. Locked nodes bound the component.
func (c *Controller) GrabConfirm(id string) error {
	g, err := c.gesture(id)
	if err != nil {
		return err
	}
	if g.confirmed {
		return nil
	}
	g.confirmed = true
	c.sim.Reheat(c.energy().DragStart)

	reach := Connected(id, c.graph.Adjacency(), c.graph.LockedSet())
	c.graph.Batch(func() {
		c.graph.ClearClass(render.ClassHighlight)
		c.graph.ClearClass(render.ClassFaded)
		for nodeID := range c.graph.Adjacency() {
			switch {
			case reach[nodeID]:
				c.graph.AddClass(nodeID, render.ClassHighlight)
			case nodeID != id:
				c.graph.AddClass(nodeID, render.ClassFaded)
			}
		}
	})

	scope := make(map[string]bool, len(reach)+1)
	for nodeID := range reach {
		scope[nodeID] = true
	}
	scope[id] = true
	c.sim.SetScope(scope)
	c.logger.Debug("drag confirmed", "node", id, "highlighted", len(reach))
	return nil
}

// DragMove moves the held node to p. An unconfirmed grab is confirmed first,
// and that move keeps the drag start energy for the ticks that follow.
func (c *Controller) DragMove(id string, p graph.Point) error {
	g, err := c.gesture(id)
	if err != nil {
		return err
	}
	confirming := !g.confirmed
	if confirming {
		if err := c.GrabConfirm(id); err != nil {
			return err
		}
	}
	g.moved = true
	c.sim.SetOverride(id, p)
	c.graph.SetPosition(id, p)
	if !confirming {
		c.sim.Reheat(c.energy().DragMove)
	}
	return nil
}

// Release ends a drag and locks the node where it was dropped.
func (c *Controller) Release(id string, p graph.Point) error {
	if _, err := c.gesture(id); err != nil {
		return err
	}
	c.sim.ClearOverride(id)
	c.sim.Lock(id, p)
	c.graph.Batch(func() {
		c.graph.SetPosition(id, p)
		c.graph.SetLocked(id, true)
	})
	c.endGesture()
	c.sim.Reheat(c.energy().DragEnd)
	c.logger.Debug("released", "node", id, "x", p.X, "y", p.Y)
	return nil
}

// Cancel abandons the current gesture and restores the held node to its
// state before the grab.
func (c *Controller) Cancel() {
	g := c.grab
	if g == nil {
		return
	}
	if c.sim.ClearOverride(g.id) && g.wasPinned {
		c.sim.Lock(g.id, g.pinnedAt)
		c.graph.Batch(func() {
			c.graph.SetPosition(g.id, g.pinnedAt)
			c.graph.SetLocked(g.id, true)
		})
	}
	c.endGesture()
}

func (c *Controller) endGesture() {
	c.grab = nil
	c.graph.Batch(func() {
		c.graph.ClearClass(render.ClassHighlight)
		c.graph.ClearClass(render.ClassFaded)
	})
	c.sim.SetScope(nil)
}

func (c *Controller) gesture(id string) (*gesture, error) {
	if c.grab == nil || c.grab.id != id {
		return nil, errors.Wrapf(ErrNoGesture, "node %q", id)
	}
	return c.grab, nil
}

// ToggleLock flips a node between locked and free and returns the new state.
// Locking pins the node at its current render position; unlocking keeps it.
func (c *Controller) ToggleLock(id string) (bool, error) {
	n, err := c.lookup(id)
	if err != nil {
		return false, err
	}
	if c.grab != nil && c.grab.id == id {
		c.Cancel()
	}

	locked := !n.Locked()
	if locked {
		pos := c.position(n)
		c.sim.Lock(id, pos)
		c.graph.Batch(func() {
			c.graph.SetPosition(id, pos)
			c.graph.SetLocked(id, true)
		})
		if c.hovered == id {
			c.hideTooltip()
		}
	} else {
		c.sim.Unlock(id)
		c.graph.SetLocked(id, false)
	}
	c.sim.Reheat(c.energy().Toggle)
	c.logger.Debug("lock toggled", "node", id, "locked", locked)
	return locked, nil
}

// SetBusy enables or disables input. While busy no node can be grabbed and
// panning, zooming and box selection are off. Becoming busy abandons any
// gesture without locking the node.
func (c *Controller) SetBusy(busy bool) {
	if busy && c.grab != nil {
		c.Cancel()
	}
	c.busy = busy
	c.applyBusy()
}

func (c *Controller) applyBusy() {
	on := !c.busy
	c.graph.Batch(func() {
		c.graph.SetGrabbable(on)
		c.graph.SetInteraction(render.Interaction{Panning: on, Zooming: on, BoxSelection: on})
	})
}

// Select marks id as the persistent selection. An empty id clears it.
func (c *Controller) Select(id string) {
	c.graph.Batch(func() {
		c.graph.ClearClass(render.ClassSelected)
		if id != "" {
			c.graph.AddClass(id, render.ClassSelected)
		}
	})
	c.selected = id
}

// Selected returns the persistent selection.
func (c *Controller) Selected() string { return c.selected }

// Tap handles a single click: the node becomes the selection and observers are
// told. Lock state is not touched.
func (c *Controller) Tap(id string) {
	n, ok := c.graph.Node(id)
	if !ok {
		return
	}
	c.Select(id)
	if c.events != nil {
		c.events.Select(id, n.Data)
	}
}

// DoubleClick toggles the node's lock and requests expansion of its
// neighborhood.
func (c *Controller) DoubleClick(id string) error {
	if _, err := c.ToggleLock(id); err != nil {
		return err
	}
	if c.events != nil {
		c.events.RequestExpand(id)
	}
	return nil
}

// Click feeds a tap into the click classifier.
func (c *Controller) Click(id string, at time.Time) error {
	double, single := c.clicks.Add(id, at)
	if single != "" {
		c.Tap(single)
	}
	if double {
		return c.DoubleClick(id)
	}
	return nil
}

// Flush resolves a pending tap whose double click window has passed.
func (c *Controller) Flush(now time.Time) {
	if id := c.clicks.Flush(now); id != "" {
		c.Tap(id)
	}
}

// Hover shows the tooltip for a node at screen position p. Locked nodes show
// no tooltip.
func (c *Controller) Hover(id string, p graph.Point) {
	n, ok := c.graph.Node(id)
	if !ok {
		return
	}
	if c.hovered != "" && c.hovered != id {
		c.HoverOut(c.hovered)
	}
	c.hovered = id
	c.graph.AddClass(id, render.ClassHover)
	if n.Locked {
		return
	}
	c.tooltip = notify.Tooltip{Visible: true, Content: n.Data.Summary(n.Label), X: p.X, Y: p.Y}
	c.emitTooltip()
}

// HoverMove follows the pointer with a visible tooltip.
func (c *Controller) HoverMove(p graph.Point) {
	if !c.tooltip.Visible {
		return
	}
	c.tooltip.X, c.tooltip.Y = p.X, p.Y
	c.emitTooltip()
}

// HoverOut hides the tooltip.
func (c *Controller) HoverOut(id string) {
	c.graph.RemoveClass(id, render.ClassHover)
	if c.hovered == id {
		c.hovered = ""
	}
	c.hideTooltip()
}

func (c *Controller) hideTooltip() {
	if !c.tooltip.Visible {
		return
	}
	c.tooltip = notify.Tooltip{}
	c.emitTooltip()
}

func (c *Controller) emitTooltip() {
	if c.events != nil {
		c.events.Tooltip(c.tooltip)
	}
}
