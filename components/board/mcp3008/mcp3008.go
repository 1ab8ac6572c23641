// Package mcp3008 implements an MCP3008 10-bit analog to digital converter read over SPI.
package mcp3008

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"go.viam.com/peripherals/components/board"
)

const (
	// MaxInput is the highest single-ended input of the converter.
	MaxInput = 7
	// MaxCode is the full scale conversion code.
	MaxCode = 0x3FF

	startBit    = 0x01
	singleEnded = 0x80
	xferLen     = 3
)

// ErrInvalidInput is returned when reading an input above MaxInput.
var ErrInvalidInput = errors.Errorf("input must be between 0 and %d", MaxInput)

// SelectByte returns the second request byte selecting a single-ended input.
func SelectByte(input uint) byte {
	return byte(singleEnded | (input << 4))
}

// Code assembles the conversion code from a 3 byte response. Shorter input yields 0.
func Code(rx []byte) int {
	if len(rx) < xferLen {
		return 0
	}
	return ((int(rx[1])&0x3)<<8 | int(rx[2])) & MaxCode
}

// Voltage converts a conversion code to volts against the reference voltage.
func Voltage(code int, vref float64) float64 {
	return float64(code) * vref / MaxCode
}

// A Channel owns one SPI handle on the chip select the converter is wired to.
type Channel struct {
	mu     sync.Mutex
	handle board.Handle
	vref   float64
	guard  *board.Guard
}

// New opens the converter on chipSelect of the main or auxiliary SPI controller.
func New(ctx context.Context, rt *board.Runtime, aux bool, chipSelect uint, vref float64) (*Channel, error) {
	if !(vref > 0) {
		return nil, errors.Errorf("reference voltage must be positive, got %v", vref)
	}
	guard, err := rt.Acquire(fmt.Sprintf("mcp3008.%d", chipSelect))
	if err != nil {
		return nil, err
	}
	prims := guard.Primitives()

	res := prims.SPIOpen(chipSelect, board.SPIBaud, board.SPIFlags(aux))
	if err := board.Translate(board.CategoryGPIO, res); err != nil {
		guard.Close()
		return nil, errors.Wrapf(err, "opening spi channel %d (aux %t)", chipSelect, aux)
	}
	handle := board.Handle(res)
	if handle.Valid() {
		guard.OnRelease(board.CategoryGPIO, "close spi", func() int {
			return prims.SPIClose(handle)
		})
	}
	guard.Logger().Debugw("adc ready", "chip_select", chipSelect, "aux", aux, "handle", handle)
	return &Channel{handle: handle, vref: vref, guard: guard}, nil
}

// ReferenceVoltage returns the voltage a full scale reading corresponds to.
func (c *Channel) ReferenceVoltage() float64 {
	return c.vref
}

// ReadCode returns the raw conversion code of a single-ended input.
func (c *Channel) ReadCode(ctx context.Context, input uint) (int, error) {
	if input > MaxInput {
		return 0, errors.Wrapf(ErrInvalidInput, "got %d", input)
	}
	tx := []byte{startBit, SelectByte(input), 0}
	rx := make([]byte, xferLen)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.guard.Closed() {
		return 0, errors.Wrap(board.ErrClosed, "adc")
	}
	if err := board.Translate(board.CategoryGPIO, c.guard.Primitives().SPIXfer(c.handle, tx, rx)); err != nil {
		return 0, errors.Wrapf(err, "reading input %d", input)
	}
	return Code(rx), nil
}

// Read returns the voltage on a single-ended input.
func (c *Channel) Read(ctx context.Context, input uint) (float64, error) {
	code, err := c.ReadCode(ctx, input)
	if err != nil {
		return 0, err
	}
	return Voltage(code, c.vref), nil
}

// Close closes the SPI handle. Failures are logged, never returned.
func (c *Channel) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.guard.Close()
	return nil
}
