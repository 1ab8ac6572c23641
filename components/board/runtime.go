package board

import (
	"sync"

	"github.com/pkg/errors"

	"go.viam.com/peripherals/logging"
)

// A Runtime is the initialised hardware library. Create one before any driver, hand it to every
// driver constructor, and close it after the last driver has been closed.
type Runtime struct {
	primitives Primitives
	logger     logging.Logger

	mu     sync.Mutex
	open   int
	closed bool
}

// NewRuntime initialises the platform library behind primitives.
func NewRuntime(primitives Primitives, logger logging.Logger) (*Runtime, error) {
	if err := Translate(CategoryGPIO, primitives.Initialise()); err != nil {
		return nil, errors.Wrap(err, "initialising hardware runtime")
	}
	logger.Debug("hardware runtime initialised")
	return &Runtime{primitives: primitives, logger: logger}, nil
}

// Primitives returns the raw bus operations.
func (rt *Runtime) Primitives() Primitives {
	return rt.primitives
}

// Logger returns the logger drivers report through.
func (rt *Runtime) Logger() logging.Logger {
	return rt.logger
}

// Open returns the number of guards currently holding resources on this runtime.
func (rt *Runtime) Open() int {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.open
}

// Close terminates the platform library. It refuses while any driver is still open.
func (rt *Runtime) Close() error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.closed {
		return nil
	}
	if rt.open > 0 {
		return errors.Errorf("cannot terminate hardware runtime: %d peripherals still open", rt.open)
	}
	rt.primitives.Terminate()
	rt.closed = true
	rt.logger.Debug("hardware runtime terminated")
	return nil
}

func (rt *Runtime) retain() error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.closed {
		return errors.New("hardware runtime already terminated")
	}
	rt.open++
	return nil
}

func (rt *Runtime) release() {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.open--
}
