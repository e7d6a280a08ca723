package viewer

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/anthonybishopric/docgraph/pkg/engine"
	"github.com/anthonybishopric/docgraph/pkg/graph"
	"github.com/anthonybishopric/docgraph/pkg/notify"
	"github.com/anthonybishopric/docgraph/pkg/render"
	"github.com/anthonybishopric/docgraph/pkg/sizing"
)

// ErrUnknownInput is returned for client messages with an unrecognized type.
var ErrUnknownInput = errors.New("unknown input type")

// FrameNode is one node as drawn by the page.
type FrameNode struct {
	ID      string   `json:"id"`
	Label   string   `json:"label"`
	Kind    string   `json:"kind"`
	X       float64  `json:"x"`
	Y       float64  `json:"y"`
	Size    float64  `json:"size"`
	Font    float64  `json:"font"`
	Locked  bool     `json:"locked"`
	Classes []string `json:"classes,omitempty"`
}

// Frame is the drawable state of the render graph. Edges are only sent when
// the element set changed.
type Frame struct {
	Type        string             `json:"type"`
	Seq         int                `json:"seq"`
	Nodes       []FrameNode        `json:"nodes"`
	Edges       []render.Edge      `json:"edges,omitempty"`
	Viewport    render.Viewport    `json:"viewport"`
	Interaction render.Interaction `json:"interaction"`
	ShowLabels  bool               `json:"showLabels"`
	ShowEdges   bool               `json:"showEdges"`
}

// EventMessage wraps a notifier event for the page.
type EventMessage struct {
	Type  string       `json:"type"`
	Event notify.Event `json:"event"`
}

// ErrorMessage reports a rejected input.
type ErrorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// Input is a message from the page. X and Y are screen coordinates, or the
// pan for a viewport input.
type Input struct {
	Type   string  `json:"type"`
	Node   string  `json:"node,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Zoom   float64 `json:"zoom,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

func buildFrame(s *render.Store, withEdges bool) Frame {
	nodes := s.Nodes()
	f := Frame{
		Type:        "frame",
		Seq:         s.Seq(),
		Nodes:       make([]FrameNode, 0, len(nodes)),
		Viewport:    s.Viewport(),
		Interaction: s.Interaction(),
		ShowLabels:  sizing.ShowLabels(len(nodes)),
		ShowEdges:   sizing.ShowEdges(len(nodes)),
	}
	for _, n := range nodes {
		f.Nodes = append(f.Nodes, FrameNode{
			ID:      n.ID,
			Label:   n.Label,
			Kind:    n.Kind,
			X:       n.Position.X,
			Y:       n.Position.Y,
			Size:    n.Size.NodeSize,
			Font:    n.Size.FontSize,
			Locked:  n.Locked,
			Classes: n.Classes,
		})
	}
	if withEdges {
		f.Edges = s.Edges()
	}
	return f
}

func encode(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		// Message types contain only marshalable fields.
		panic(err)
	}
	return data
}

// dispatch applies one page input to the view.
func dispatch(v *engine.View, in Input) error {
	ctl := v.Controller()
	store := v.Store()
	screen := graph.Point{X: in.X, Y: in.Y}
	layout := store.Viewport().ToLayout(screen)

	switch in.Type {
	case "pointerdown":
		return ctl.PointerDown(in.Node, layout)
	case "pointermove":
		return ctl.PointerMove(layout)
	case "pointerup":
		return ctl.PointerUp(layout)
	case "hover":
		ctl.Hover(in.Node, screen)
	case "hovermove":
		ctl.HoverMove(screen)
	case "hoverout":
		ctl.HoverOut(in.Node)
	case "toggle":
		_, err := ctl.ToggleLock(in.Node)
		return err
	case "select":
		ctl.Select(in.Node)
	case "resize":
		if in.Width <= 0 || in.Height <= 0 {
			return errors.Errorf("invalid size %vx%v", in.Width, in.Height)
		}
		store.Resize(in.Width, in.Height)
		v.Adapter().Fit()
	case "viewport":
		return store.Navigate(screen, in.Zoom)
	case "fit":
		v.Adapter().Fit()
	default:
		return errors.Wrapf(ErrUnknownInput, "%q", in.Type)
	}
	return nil
}
