// Package output implements a digital output pin driven through pigpio.
package output

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"go.viam.com/peripherals/components/board"
)

// A Pin owns one digital output line. It remembers the last level it wrote.
type Pin struct {
	line  uint
	guard *board.Guard

	mu    sync.Mutex
	value bool
}

// NewPin configures line as an output and drives it to initial. Closing the pin drives it low.
func NewPin(ctx context.Context, rt *board.Runtime, line uint, initial bool) (*Pin, error) {
	guard, err := rt.Acquire(fmt.Sprintf("output.%d", line))
	if err != nil {
		return nil, err
	}
	p := &Pin{line: line, guard: guard}

	prims := guard.Primitives()
	if err := board.Translate(board.CategoryGPIO, prims.SetMode(line, board.ModeOutput)); err != nil {
		guard.Close()
		return nil, errors.Wrapf(err, "setting line %d to output", line)
	}
	guard.OnRelease(board.CategoryGPIO, "write low", func() int {
		return prims.Write(line, false)
	})

	if err := p.Set(ctx, initial); err != nil {
		guard.Close()
		return nil, err
	}
	guard.Logger().Debugw("output pin ready", "line", line, "initial", initial)
	return p, nil
}

// Line returns the line number the pin drives.
func (p *Pin) Line() uint {
	return p.line
}

// Set drives the line high or low.
func (p *Pin) Set(ctx context.Context, high bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.guard.Closed() {
		return errors.Wrapf(board.ErrClosed, "output pin on line %d", p.line)
	}
	if err := board.Translate(board.CategoryGPIO, p.guard.Primitives().Write(p.line, high)); err != nil {
		return errors.Wrapf(err, "writing line %d", p.line)
	}
	p.value = high
	return nil
}

// Value returns the level last written. The line is not read back.
func (p *Pin) Value() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value
}

// Close drives the line low. Failures are logged, never returned.
func (p *Pin) Close(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.guard.Close()
	return nil
}
