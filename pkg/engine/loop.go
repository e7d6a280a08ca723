package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
)

// DefaultFPS is the frame rate used when none is configured.
const DefaultFPS = 60

// ErrStopped is returned by Do once the loop has exited.
var ErrStopped = errors.New("engine loop stopped")

// Loop is the only goroutine that touches its View. Frames and submitted
// work run one at a time in arrival order.
type Loop struct {
	view     *View
	interval time.Duration
	logger   *slog.Logger

	work chan func()
	done chan struct{}
}

// NewLoop creates a loop driving view at fps frames per second.
func NewLoop(view *View, fps int, logger *slog.Logger) *Loop {
	if fps <= 0 {
		fps = DefaultFPS
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		view:     view,
		interval: time.Second / time.Duration(fps),
		logger:   logger,
		work:     make(chan func()),
		done:     make(chan struct{}),
	}
}

// Run drives frames until ctx is cancelled. It must be called once. The
// view's simulation is stopped on return.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	defer close(l.done)
	defer l.view.Close()

	l.logger.Debug("engine loop started", "interval", l.interval)
	for {
		select {
		case <-ctx.Done():
			l.logger.Debug("engine loop stopped")
			return nil
		case fn := <-l.work:
			fn()
		case now := <-ticker.C:
			l.view.Frame(now)
		}
	}
}

// Do runs fn on the loop goroutine and waits for its result.
func (l *Loop) Do(ctx context.Context, fn func(*View) error) error {
	errc := make(chan error, 1)
	task := func() { errc <- fn(l.view) }
	select {
	case l.work <- task:
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} { return l.done }
