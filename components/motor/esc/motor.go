// Package esc implements a motor driven by an electronic speed controller on a servo pulse line.
//
// Speed is normalised to [0, 1] and mapped linearly onto pulse widths of [1000, 2000] us,
// the usual hobby ESC range.
package esc

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/pkg/errors"

	"go.viam.com/peripherals/components/board"
	"go.viam.com/peripherals/components/motor"
)

const (
	// MinPulseWidthUs is the pulse width commanding speed 0. It is also what the line is left at on Close.
	MinPulseWidthUs uint = 1000
	// MaxPulseWidthUs is the pulse width commanding full speed.
	MaxPulseWidthUs uint = 2000

	pulseRangeUs = float64(MaxPulseWidthUs - MinPulseWidthUs)
)

var _ motor.Motor = (*Motor)(nil)

// ErrSpeedOutOfRange is returned for speeds outside [0, 1]. Nothing is sent to the line.
var ErrSpeedOutOfRange = errors.New("speed must be between 0 and 1")

// PulseWidth maps a speed in [0, 1] to a pulse width in microseconds.
func PulseWidth(speed float64) uint {
	return MinPulseWidthUs + uint(math.Round(speed*pulseRangeUs))
}

// SpeedFromPulseWidth inverts PulseWidth.
func SpeedFromPulseWidth(us uint) float64 {
	return (float64(us) - float64(MinPulseWidthUs)) / pulseRangeUs
}

// A Motor owns one servo pulse capable line.
type Motor struct {
	mu    sync.Mutex
	line  uint
	guard *board.Guard
}

// NewMotor takes over line and commands speed 0.
func NewMotor(ctx context.Context, rt *board.Runtime, line uint) (*Motor, error) {
	guard, err := rt.Acquire(fmt.Sprintf("esc.%d", line))
	if err != nil {
		return nil, err
	}
	m := &Motor{line: line, guard: guard}

	prims := guard.Primitives()
	guard.OnRelease(board.CategoryGPIO, "minimum pulse width", func() int {
		return prims.Servo(line, MinPulseWidthUs)
	})
	if err := m.SetSpeed(ctx, 0); err != nil {
		guard.Close()
		return nil, err
	}
	guard.Logger().Debugw("motor ready", "line", line)
	return m, nil
}

// Line returns the line the motor is driven on.
func (m *Motor) Line() uint {
	return m.line
}

// SetSpeed commands a speed in [0, 1].
func (m *Motor) SetSpeed(ctx context.Context, speed float64) error {
	if math.IsNaN(speed) || speed < 0 || speed > 1 {
		return errors.Wrapf(ErrSpeedOutOfRange, "got %v", speed)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.guard.Closed() {
		return errors.Wrapf(board.ErrClosed, "motor on line %d", m.line)
	}
	us := PulseWidth(speed)
	if err := board.Translate(board.CategoryGPIO, m.guard.Primitives().Servo(m.line, us)); err != nil {
		return errors.Wrapf(err, "setting pulse width %dus on line %d", us, m.line)
	}
	return nil
}

// Speed reads the programmed pulse width back and returns the speed it encodes.
func (m *Motor) Speed(ctx context.Context) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.guard.Closed() {
		return 0, errors.Wrapf(board.ErrClosed, "motor on line %d", m.line)
	}
	res := m.guard.Primitives().ServoPulseWidth(m.line)
	if err := board.Translate(board.CategoryGPIO, res); err != nil {
		return 0, errors.Wrapf(err, "reading pulse width on line %d", m.line)
	}
	return SpeedFromPulseWidth(uint(res)), nil
}

// Stop commands speed 0.
func (m *Motor) Stop(ctx context.Context) error {
	return m.SetSpeed(ctx, 0)
}

// IsMoving reports whether anything above speed 0 is commanded.
func (m *Motor) IsMoving(ctx context.Context) (bool, error) {
	speed, err := m.Speed(ctx)
	if err != nil {
		return false, err
	}
	return speed > 0, nil
}

// Close commands the minimum pulse width. Failures are logged, never returned.
func (m *Motor) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.guard.Close()
	return nil
}
