//go:build !(linux && (arm64 || arm) && !no_pigpio && !no_cgo)

// Package piimpl binds the raw board primitives to libpigpio on a Raspberry Pi.
package piimpl

import (
	"github.com/pkg/errors"

	"go.viam.com/peripherals/components/board"
)

// NewPrimitives always fails off a Pi or when built without pigpio.
func NewPrimitives() (board.Primitives, error) {
	return nil, errors.New("not running on a pi")
}
