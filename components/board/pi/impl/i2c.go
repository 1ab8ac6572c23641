//go:build linux && (arm64 || arm) && !no_pigpio && !no_cgo

package piimpl

// #include <stdlib.h>
// #include <pigpio.h>
import "C"

import (
	"go.viam.com/peripherals/components/board"
)

// pigpio moves at most 32 bytes per block transfer.
const maxBlockLen = 32

func (pi *piPigpio) I2COpen(bus, addr, flags uint) int {
	return int(C.i2cOpen(C.uint(bus), C.uint(addr), C.uint(flags)))
}

func (pi *piPigpio) I2CClose(handle board.Handle) int {
	return int(C.i2cClose(C.uint(handle)))
}

// I2CReadBlockData reads len(buf) consecutive registers starting at register and returns the
// number of bytes read.
func (pi *piPigpio) I2CReadBlockData(handle board.Handle, register byte, buf []byte) int {
	if len(buf) == 0 || len(buf) > maxBlockLen {
		return int(C.PI_BAD_PARAM)
	}
	rxPtr := C.malloc(C.size_t(len(buf)))
	defer C.free(rxPtr)

	ret := int(C.i2cReadI2CBlockData(C.uint(handle), C.uint(register), (*C.char)(rxPtr), C.uint(len(buf))))
	if ret > 0 {
		copy(buf, C.GoBytes(rxPtr, C.int(ret)))
	}
	return ret
}

// I2CWriteBlockData writes data to consecutive registers starting at register.
func (pi *piPigpio) I2CWriteBlockData(handle board.Handle, register byte, data []byte) int {
	if len(data) == 0 || len(data) > maxBlockLen {
		return int(C.PI_BAD_PARAM)
	}
	txPtr := C.CBytes(data)
	defer C.free(txPtr)

	return int(C.i2cWriteI2CBlockData(C.uint(handle), C.uint(register), (*C.char)(txPtr), C.uint(len(data))))
}
