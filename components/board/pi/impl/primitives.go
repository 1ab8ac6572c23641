//go:build linux && (arm64 || arm) && !no_pigpio && !no_cgo

// Package piimpl binds the raw board primitives to libpigpio on a Raspberry Pi.
package piimpl

// #include <stdlib.h>
// #include <pigpio.h>
// #cgo LDFLAGS: -lpigpio
import "C"

import (
	"github.com/pkg/errors"

	"go.viam.com/peripherals/components/board"
)

type piPigpio struct{}

// NewPrimitives returns the pigpio primitives. The library is not initialised until the returned
// value is handed to board.NewRuntime.
func NewPrimitives() (board.Primitives, error) {
	// this is so we can run it inside a daemon
	internals := C.gpioCfgGetInternals()
	internals |= C.PI_CFG_NOSIGHANDLER
	if resCode := C.gpioCfgSetInternals(internals); resCode < 0 {
		return nil, errors.Errorf("gpioCfgSetInternals failed with code: %d", resCode)
	}
	return &piPigpio{}, nil
}

func (pi *piPigpio) Initialise() int {
	return int(C.gpioInitialise())
}

func (pi *piPigpio) Terminate() {
	C.gpioTerminate()
}

func (pi *piPigpio) SetMode(line uint, mode board.Mode) int {
	return int(C.gpioSetMode(C.uint(line), C.uint(mode)))
}

func (pi *piPigpio) Write(line uint, high bool) int {
	v := 0
	if high {
		v = 1
	}
	return int(C.gpioWrite(C.uint(line), C.uint(v)))
}

func (pi *piPigpio) SetPullUpDown(line uint, pull board.Pull) int {
	return int(C.gpioSetPullUpDown(C.uint(line), C.uint(pull)))
}

func (pi *piPigpio) Servo(line, pulseWidthUs uint) int {
	return int(C.gpioServo(C.uint(line), C.uint(pulseWidthUs)))
}

func (pi *piPigpio) ServoPulseWidth(line uint) int {
	return int(C.gpioGetServoPulsewidth(C.uint(line)))
}
