//go:build linux && (arm64 || arm) && !no_pigpio && !no_cgo

package piimpl

// #include <stdlib.h>
// #include <pigpio.h>
import "C"

import (
	"go.viam.com/peripherals/components/board"
)

func (pi *piPigpio) SPIOpen(channel, baud, flags uint) int {
	return int(C.spiOpen(C.uint(channel), C.uint(baud), C.uint(flags)))
}

// SPIXfer clocks tx out and rx in. Both buffers must be the same length.
func (pi *piPigpio) SPIXfer(handle board.Handle, tx, rx []byte) int {
	if len(tx) == 0 || len(tx) != len(rx) {
		return int(C.PI_BAD_SPI_COUNT)
	}
	txPtr := C.CBytes(tx)
	defer C.free(txPtr)
	rxPtr := C.malloc(C.size_t(len(rx)))
	defer C.free(rxPtr)

	ret := int(C.spiXfer(C.uint(handle), (*C.char)(txPtr), (*C.char)(rxPtr), C.uint(len(tx))))
	if ret > 0 {
		copy(rx, C.GoBytes(rxPtr, C.int(ret)))
	}
	return ret
}

func (pi *piPigpio) SPIClose(handle board.Handle) int {
	return int(C.spiClose(C.uint(handle)))
}
