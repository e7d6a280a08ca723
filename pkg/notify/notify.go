// Package notify fans out selection, expansion and tooltip events to observers
// registered by the embedding application.
package notify

import (
	"log/slog"
	"sync"

	"github.com/anthonybishopric/docgraph/pkg/graph"
)

// Type identifies an event.
type Type string

const (
	TypeSelection Type = "nodeClick"
	TypeExpand    Type = "nodeExpand"
	TypeTooltip   Type = "hoverTooltip"
)

// Selection is emitted on a single tap.
type Selection struct {
	NodeID string         `json:"nodeId"`
	Data   graph.Document `json:"nodeData,omitempty"`
}

// Expand asks the application to fetch documents related to a node. The
// engine does not wait for the result.
type Expand struct {
	NodeID string `json:"nodeId"`
}

// Tooltip is the hover state. X and Y are screen coordinates.
type Tooltip struct {
	Visible bool    `json:"visible"`
	Content string  `json:"content"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

// Event is one notification. Exactly one of the payload fields is set,
// matching Type.
type Event struct {
	Type      Type       `json:"type"`
	Selection *Selection `json:"selection,omitempty"`
	Expand    *Expand    `json:"expand,omitempty"`
	Tooltip   *Tooltip   `json:"tooltip,omitempty"`
}

// Observer receives events.
type Observer interface {
	Notify(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// Notify implements Observer.
func (f ObserverFunc) Notify(e Event) { f(e) }

// Notifier delivers events to observers in registration order. It keeps no
// state beyond the observer list.
type Notifier struct {
	mu        sync.Mutex
	next      int
	observers map[int]Observer
	order     []int
	logger    *slog.Logger
}

// New creates a Notifier. A nil logger uses slog.Default.
func New(logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{observers: make(map[int]Observer), logger: logger}
}

// Subscribe registers o and returns a function that removes it.
func (n *Notifier) Subscribe(o Observer) (unsubscribe func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.next
	n.next++
	n.observers[id] = o
	n.order = append(n.order, id)
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.observers, id)
		for i, v := range n.order {
			if v == id {
				n.order = append(n.order[:i], n.order[i+1:]...)
				break
			}
		}
	}
}

// Channel registers a buffered channel observer. Events are dropped, with a
// warning, when the channel is full so a slow consumer never stalls the engine.
func (n *Notifier) Channel(buffer int) (<-chan Event, func()) {
	ch := make(chan Event, buffer)
	unsubscribe := n.Subscribe(ObserverFunc(func(e Event) {
		select {
		case ch <- e:
		default:
			n.logger.Warn("event dropped, channel full", "type", e.Type)
		}
	}))
	return ch, unsubscribe
}

// Emit delivers e to every observer.
func (n *Notifier) Emit(e Event) {
	n.mu.Lock()
	observers := make([]Observer, 0, len(n.order))
	for _, id := range n.order {
		observers = append(observers, n.observers[id])
	}
	n.mu.Unlock()

	for _, o := range observers {
		o.Notify(e)
	}
}

// Select emits a selection event.
func (n *Notifier) Select(id string, data graph.Document) {
	n.Emit(Event{Type: TypeSelection, Selection: &Selection{NodeID: id, Data: data}})
}

// RequestExpand emits an expansion request.
func (n *Notifier) RequestExpand(id string) {
	n.Emit(Event{Type: TypeExpand, Expand: &Expand{NodeID: id}})
}

// Tooltip emits a tooltip update.
func (n *Notifier) Tooltip(t Tooltip) {
	n.Emit(Event{Type: TypeTooltip, Tooltip: &t})
}
