package interact

import "time"

// DoubleClickWindow is the longest gap between two taps on the same node that
// still counts as a double click.
const DoubleClickWindow = 300 * time.Millisecond

type click struct {
	id string
	at time.Time
}

// Clicks classifies taps into single and double clicks. A single click is
// only known once the window has passed without a second tap, so pending taps
// are resolved by a later Add or by Flush.
type Clicks struct {
	window  time.Duration
	pending *click
}

// NewClicks creates a classifier. A non-positive window uses DoubleClickWindow.
func NewClicks(window time.Duration) *Clicks {
	if window <= 0 {
		window = DoubleClickWindow
	}
	return &Clicks{window: window}
}

// Add records a tap on id. double is true when the tap completes a double
// click. single names an earlier pending tap that is now known to be a single
// click, or is empty.
func (c *Clicks) Add(id string, at time.Time) (double bool, single string) {
	if p := c.pending; p != nil {
		c.pending = nil
		if p.id == id && at.Sub(p.at) <= c.window {
			return true, ""
		}
		single = p.id
	}
	c.pending = &click{id: id, at: at}
	return false, single
}

// Flush resolves a pending tap whose window has expired by now.
func (c *Clicks) Flush(now time.Time) (single string) {
	if p := c.pending; p != nil && now.Sub(p.at) > c.window {
		c.pending = nil
		return p.id
	}
	return ""
}

// Pending reports whether a tap is waiting for its window to close.
func (c *Clicks) Pending() bool { return c.pending != nil }

// Reset drops a pending tap.
func (c *Clicks) Reset() { c.pending = nil }
