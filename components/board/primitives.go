// Package board holds what every peripheral driver shares: the raw pigpio primitives, the
// hardware runtime they run on, the ownership guards drivers release through and the
// translation of native status codes into errors.
package board

// Mode is a digital line mode.
type Mode uint

// Line modes, numbered as pigpio numbers them.
const (
	ModeInput  Mode = 0
	ModeOutput Mode = 1
)

// Pull is a line's pull-up/down bias.
type Pull uint

// Bias settings, numbered as pigpio numbers them.
const (
	PullOff  Pull = 0
	PullDown Pull = 1
	PullUp   Pull = 2
)

// SPIBaud is the clock rate every SPI handle is opened at.
const SPIBaud = 1000000

// SPIFlags returns the open flags selecting the auxiliary (true) or main (false) SPI controller.
func SPIFlags(aux bool) uint {
	if aux {
		return 1 << 8
	}
	return 0
}

// Primitives are the raw platform bus operations the drivers are built on. Every call that can fail
// returns a native status: negative on failure, otherwise zero or a call specific non-negative value
// (a handle, a byte count, a pulse width).
type Primitives interface {
	// Initialise and Terminate bracket all other calls; see Runtime.
	Initialise() int
	Terminate()

	SetMode(line uint, mode Mode) int
	Write(line uint, high bool) int
	SetPullUpDown(line uint, pull Pull) int

	// Servo starts servo pulses of the given width in microseconds on the line.
	Servo(line uint, pulseWidthUs uint) int
	// ServoPulseWidth returns the pulse width currently programmed on the line.
	ServoPulseWidth(line uint) int

	SPIOpen(channel, baud, flags uint) int
	// SPIXfer transfers len(tx) bytes, filling rx with the bytes clocked back.
	SPIXfer(handle Handle, tx, rx []byte) int
	SPIClose(handle Handle) int

	I2COpen(bus, addr, flags uint) int
	I2CClose(handle Handle) int
	// I2CReadBlockData reads len(buf) bytes starting at register and returns the count read.
	I2CReadBlockData(handle Handle, register byte, buf []byte) int
	I2CWriteBlockData(handle Handle, register byte, data []byte) int
}
