package interact

import "github.com/anthonybishopric/docgraph/pkg/graph"

// PointerDown starts a gesture on a node at layout position p. While busy, or
// when the node cannot be grabbed, the press is only remembered as a
// potential tap.
func (c *Controller) PointerDown(id string, p graph.Point) error {
	if !c.graph.Has(id) {
		return nil
	}
	if c.busy || !c.graph.Grabbable(id) {
		c.pressed = id
		return nil
	}
	if err := c.GrabStart(id); err != nil {
		return err
	}
	c.grab.start = p
	return nil
}

// PointerMove drags the held node, if any. The first move that leaves the
// down position confirms the drag.
func (c *Controller) PointerMove(p graph.Point) error {
	g := c.grab
	if g == nil || (!g.moved && p == g.start) {
		return nil
	}
	return c.DragMove(g.id, p)
}

// PointerUp ends the gesture. A gesture that moved locks the node at p. One
// that never moved is a tap: the node returns to its state before the press
// and the tap goes to the click classifier.
func (c *Controller) PointerUp(p graph.Point) error {
	if id := c.pressed; id != "" {
		c.pressed = ""
		return c.Click(id, c.now())
	}
	g := c.grab
	if g == nil {
		return nil
	}
	if g.moved {
		return c.Release(g.id, p)
	}
	c.Cancel()
	return c.Click(g.id, c.now())
}
