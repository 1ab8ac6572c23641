package board

import (
	"sync"

	"github.com/pkg/errors"

	"go.viam.com/peripherals/logging"
)

// ErrClosed is returned by a driver operation once the driver has been closed.
var ErrClosed = errors.New("peripheral closed")

// Handle is a native resource identifier returned by an open call. It is valid iff non-negative.
type Handle int

// Valid reports whether the handle refers to an open resource.
func (h Handle) Valid() bool {
	return h >= 0
}

type releaseStep struct {
	category Category
	what     string
	fn       func() int
}

// A Guard owns whatever one driver acquired on a Runtime and gives it back exactly once.
//
// Drivers register a release step right after each acquisition succeeds. Close runs the steps
// newest first. A failing step is logged and skipped, never returned, so Close is safe on every
// path including a constructor bailing out half way.
type Guard struct {
	name   string
	rt     *Runtime
	logger logging.Logger

	mu     sync.Mutex
	steps  []releaseStep
	closed bool
}

// Acquire opens a guard for the named peripheral.
func (rt *Runtime) Acquire(name string) (*Guard, error) {
	if err := rt.retain(); err != nil {
		return nil, err
	}
	return &Guard{name: name, rt: rt, logger: rt.logger.Sublogger(name)}, nil
}

// Name returns the peripheral name the guard was acquired for.
func (g *Guard) Name() string {
	return g.name
}

// Logger returns the peripheral's logger.
func (g *Guard) Logger() logging.Logger {
	return g.logger
}

// Primitives returns the raw operations of the guard's runtime.
func (g *Guard) Primitives() Primitives {
	return g.rt.primitives
}

// OnRelease registers fn to be run by Close. The native status fn returns is translated under
// category and only ever logged.
func (g *Guard) OnRelease(category Category, what string, fn func() int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.steps = append(g.steps, releaseStep{category, what, fn})
}

// Close runs the release steps once, newest first. Subsequent calls do nothing.
func (g *Guard) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	g.closed = true
	for i := len(g.steps) - 1; i >= 0; i-- {
		step := g.steps[i]
		if err := Translate(step.category, step.fn()); err != nil {
			g.logger.Warnw("release failed", "step", step.what, "error", err)
		}
	}
	g.steps = nil
	g.rt.release()
}

// Closed reports whether Close has run. Drivers check it before every hardware call so nothing
// is driven after teardown.
func (g *Guard) Closed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.closed
}
