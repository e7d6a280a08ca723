// Package term draws the render graph in a terminal and maps mouse gestures
// onto the interaction controller.
package term

import (
	"context"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"

	"github.com/anthonybishopric/docgraph/pkg/engine"
	"github.com/anthonybishopric/docgraph/pkg/graph"
	"github.com/anthonybishopric/docgraph/pkg/notify"
)

// Options configure a Viewer.
type Options struct {
	FPS        int
	CellWidth  float64 // Viewport units per column
	ShowLabels bool
	Logger     *slog.Logger
}

// Viewer is a terminal front end for one engine loop.
type Viewer struct {
	screen tcell.Screen
	loop   *engine.Loop
	opts   Options
	cells  cells
	logger *slog.Logger

	pressed bool
	hovered string
	last    scene

	tooltip notify.Tooltip
	status  string
}

// New creates a viewer drawing on screen. The screen must already be
// initialized; New enables mouse reporting.
func New(screen tcell.Screen, loop *engine.Loop, opts Options) *Viewer {
	if opts.FPS <= 0 {
		opts.FPS = 30
	}
	if opts.CellWidth <= 0 {
		opts.CellWidth = 8
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	screen.EnableMouse()
	return &Viewer{
		screen: screen,
		loop:   loop,
		opts:   opts,
		cells:  cells{width: opts.CellWidth},
		logger: logger,
	}
}

// Run draws frames and handles input until the user quits or ctx ends. It
// returns nil on a normal quit.
func (v *Viewer) Run(ctx context.Context) error {
	var (
		events      <-chan notify.Event
		unsubscribe func()
	)
	err := v.loop.Do(ctx, func(view *engine.View) error {
		events, unsubscribe = view.Events().Channel(64)
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "subscribe to events")
	}
	defer func() {
		_ = v.loop.Do(context.Background(), func(*engine.View) error {
			unsubscribe()
			return nil
		})
	}()
	if err := v.resize(ctx); err != nil {
		return err
	}

	input := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case input <- ev:
			case <-quit:
				return
			}
		}
	}()

	ticker := time.NewTicker(time.Second / time.Duration(v.opts.FPS))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case e := <-events:
			v.observe(e)
		case ev := <-input:
			done, err := v.handle(ctx, ev)
			if err != nil {
				v.logger.Debug("input rejected", "error", err)
				v.status = err.Error()
			}
			if done {
				return nil
			}
		case <-ticker.C:
			if err := v.redraw(ctx); err != nil {
				if errors.Is(err, engine.ErrStopped) {
					return nil
				}
				return err
			}
		}
	}
}

func (v *Viewer) observe(e notify.Event) {
	switch e.Type {
	case notify.TypeTooltip:
		v.tooltip = *e.Tooltip
	case notify.TypeSelection:
		v.status = "selected " + e.Selection.NodeID
	case notify.TypeExpand:
		v.status = "expand " + e.Expand.NodeID
	}
}

func (v *Viewer) redraw(ctx context.Context) error {
	err := v.loop.Do(ctx, func(view *engine.View) error {
		v.last = snapshot(view, v.cells, v.opts.ShowLabels)
		return nil
	})
	if err != nil {
		return err
	}
	v.last.tooltip = v.tooltip
	v.last.status = v.status
	draw(v.screen, v.last, v.cells)
	v.screen.Show()
	return nil
}

func (v *Viewer) resize(ctx context.Context) error {
	w, h := v.screen.Size()
	width, height := float64(w)*v.cells.width, float64(h-1)*v.cells.height()
	return v.loop.Do(ctx, func(view *engine.View) error {
		view.Store().Resize(width, height)
		view.Adapter().Fit()
		return nil
	})
}

// handle processes one terminal event and reports whether to quit.
func (v *Viewer) handle(ctx context.Context, ev tcell.Event) (bool, error) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return v.key(ctx, ev)
	case *tcell.EventResize:
		v.screen.Sync()
		return false, v.resize(ctx)
	case *tcell.EventMouse:
		return false, v.mouse(ctx, ev)
	}
	return false, nil
}

func (v *Viewer) key(ctx context.Context, ev *tcell.EventKey) (bool, error) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true, nil
	case tcell.KeyRune:
	default:
		return false, nil
	}
	switch ev.Rune() {
	case 'q':
		return true, nil
	case 'f':
		return false, v.loop.Do(ctx, func(view *engine.View) error {
			view.Adapter().Fit()
			return nil
		})
	case 'b':
		return false, v.loop.Do(ctx, func(view *engine.View) error {
			ctl := view.Controller()
			ctl.SetBusy(!ctl.Busy())
			return nil
		})
	}
	return false, nil
}

// mouse turns terminal mouse reports into pointer and hover calls. Terminals
// report button state rather than transitions, so presses and releases are
// derived from the previous state.
func (v *Viewer) mouse(ctx context.Context, ev *tcell.EventMouse) error {
	x, y := ev.Position()
	screen := v.cells.toScreen(x, y)
	down := ev.Buttons()&tcell.Button1 != 0

	return v.loop.Do(ctx, func(view *engine.View) error {
		sc := snapshot(view, v.cells, false)
		ctl := view.Controller()
		layout := view.Store().Viewport().ToLayout(screen)

		switch {
		case down && !v.pressed:
			v.pressed = true
			if id, ok := sc.hit(screen, v.cells); ok {
				return ctl.PointerDown(id, layout)
			}
		case down:
			return ctl.PointerMove(layout)
		case v.pressed:
			v.pressed = false
			return ctl.PointerUp(layout)
		default:
			v.hover(ctl, sc, screen)
		}
		return nil
	})
}

type hoverer interface {
	Hover(id string, p graph.Point)
	HoverMove(p graph.Point)
	HoverOut(id string)
}

func (v *Viewer) hover(ctl hoverer, sc scene, screen graph.Point) {
	id, ok := sc.hit(screen, v.cells)
	switch {
	case ok && id == v.hovered:
		ctl.HoverMove(screen)
	case ok:
		if v.hovered != "" {
			ctl.HoverOut(v.hovered)
		}
		v.hovered = id
		ctl.Hover(id, screen)
	case v.hovered != "":
		ctl.HoverOut(v.hovered)
		v.hovered = ""
	}
}
