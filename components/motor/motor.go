// Package motor defines a motor driven at a normalized speed.
package motor

import (
	"context"
)

// A Motor is driven at a speed in [0, 1], 0 being stopped and 1 full speed.
type Motor interface {
	// SetSpeed commands the given speed.
	SetSpeed(ctx context.Context, speed float64) error

	// Speed returns the currently commanded speed as read back from the hardware.
	Speed(ctx context.Context) (float64, error)

	// Stop commands speed 0.
	Stop(ctx context.Context) error

	// IsMoving reports whether a non zero speed is commanded.
	IsMoving(ctx context.Context) (bool, error)

	Close(ctx context.Context) error
}
