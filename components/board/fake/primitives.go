// Package fake implements simulated pigpio primitives for testing drivers without hardware.
package fake

import (
	"sync"

	"go.viam.com/peripherals/components/board"
)

// An Op names one of the simulated primitive calls.
type Op string

// The simulated calls that a failure can be injected into.
const (
	OpInitialise      Op = "Initialise"
	OpSetMode         Op = "SetMode"
	OpWrite           Op = "Write"
	OpSetPullUpDown   Op = "SetPullUpDown"
	OpServo           Op = "Servo"
	OpServoPulseWidth Op = "ServoPulseWidth"
	OpSPIOpen         Op = "SPIOpen"
	OpSPIXfer         Op = "SPIXfer"
	OpSPIClose        Op = "SPIClose"
	OpI2COpen         Op = "I2COpen"
	OpI2CClose        Op = "I2CClose"
	OpI2CRead         Op = "I2CReadBlockData"
	OpI2CWrite        Op = "I2CWriteBlockData"
)

// pigpio status codes the simulation reports on misuse.
const (
	badGPIO       = -3
	badMode       = -4
	badPUD        = -6
	badPulseWidth = -7
	badHandle     = -25
	badSPIChannel = -76
	notServoGPIO  = -93
	maxGPIO       = 53
)

// LineState is the simulated state of one digital line.
type LineState struct {
	Mode       board.Mode
	ModeSet    bool
	High       bool
	Pull       board.Pull
	PulseWidth uint
}

// SPIResponder produces the bytes clocked back for a transfer on a chip select channel.
type SPIResponder func(channel uint, tx []byte) []byte

type spiDevice struct {
	channel uint
	baud    uint
	flags   uint
}

type i2cAddr struct {
	bus  uint
	addr uint
}

// Registers is a simulated I2C device register file.
type Registers [256]byte

// Primitives is an in memory board.Primitives. The zero value is not usable, use New.
type Primitives struct {
	mu sync.Mutex

	initialised bool
	terminated  bool
	lines       map[uint]*LineState
	spi         map[board.Handle]spiDevice
	i2c         map[board.Handle]i2cAddr
	devices     map[i2cAddr]*Registers
	nextSPI     board.Handle
	nextI2C     board.Handle
	failures    map[Op]int
	calls       []Op
	responder   SPIResponder
}

var _ board.Primitives = (*Primitives)(nil)

// New returns simulated primitives with every line unconfigured and no handles open.
func New() *Primitives {
	return &Primitives{
		lines:    map[uint]*LineState{},
		spi:      map[board.Handle]spiDevice{},
		i2c:      map[board.Handle]i2cAddr{},
		devices:  map[i2cAddr]*Registers{},
		failures: map[Op]int{},
	}
}

// Fail makes every following call of op return code until ClearFailure is called.
func (p *Primitives) Fail(op Op, code int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures[op] = code
}

// ClearFailure undoes Fail.
func (p *Primitives) ClearFailure(op Op) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.failures, op)
}

// SetSPIResponder installs the function answering SPI transfers. Without one, transfers read zeros.
func (p *Primitives) SetSPIResponder(r SPIResponder) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.responder = r
}

// SetRegisters writes data into the register file of the device at bus/addr starting at register.
func (p *Primitives) SetRegisters(bus, addr uint, register byte, data []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	regs := p.device(i2cAddr{bus, addr})
	copy(regs[register:], data)
}

// Registers returns a copy of the register file of the device at bus/addr.
func (p *Primitives) Registers(bus, addr uint) Registers {
	p.mu.Lock()
	defer p.mu.Unlock()
	return *p.device(i2cAddr{bus, addr})
}

// Line returns the simulated state of a line.
func (p *Primitives) Line(line uint) LineState {
	p.mu.Lock()
	defer p.mu.Unlock()
	if st, ok := p.lines[line]; ok {
		return *st
	}
	return LineState{}
}

// OpenSPIHandles returns the number of SPI handles not yet closed.
func (p *Primitives) OpenSPIHandles() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.spi)
}

// OpenI2CHandles returns the number of I2C handles not yet closed.
func (p *Primitives) OpenI2CHandles() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.i2c)
}

// Calls returns every call made so far, in order.
func (p *Primitives) Calls() []Op {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Op(nil), p.calls...)
}

// Count returns how many times op was called.
func (p *Primitives) Count(op Op) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.calls {
		if c == op {
			n++
		}
	}
	return n
}

// Terminated reports whether Terminate was called.
func (p *Primitives) Terminated() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.terminated
}

// enter records the call and returns an injected failure, if any. Callers hold mu.
func (p *Primitives) enter(op Op) (int, bool) {
	p.calls = append(p.calls, op)
	code, ok := p.failures[op]
	return code, ok
}

func (p *Primitives) line(line uint) *LineState {
	st, ok := p.lines[line]
	if !ok {
		st = &LineState{}
		p.lines[line] = st
	}
	return st
}

func (p *Primitives) device(a i2cAddr) *Registers {
	regs, ok := p.devices[a]
	if !ok {
		regs = &Registers{}
		p.devices[a] = regs
	}
	return regs
}

// Initialise implements board.Primitives.
func (p *Primitives) Initialise() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if code, ok := p.enter(OpInitialise); ok {
		return code
	}
	p.initialised = true
	p.terminated = false
	return 0
}

// Terminate implements board.Primitives.
func (p *Primitives) Terminate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, "Terminate")
	p.initialised = false
	p.terminated = true
}

// SetMode implements board.Primitives.
func (p *Primitives) SetMode(line uint, mode board.Mode) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if code, ok := p.enter(OpSetMode); ok {
		return code
	}
	if line > maxGPIO {
		return badGPIO
	}
	if mode > 7 {
		return badMode
	}
	st := p.line(line)
	st.Mode = mode
	st.ModeSet = true
	return 0
}

// Write implements board.Primitives.
func (p *Primitives) Write(line uint, high bool) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if code, ok := p.enter(OpWrite); ok {
		return code
	}
	if line > maxGPIO {
		return badGPIO
	}
	st := p.line(line)
	st.High = high
	// pigpio switches the line to output on write.
	st.Mode = board.ModeOutput
	st.ModeSet = true
	return 0
}

// SetPullUpDown implements board.Primitives.
func (p *Primitives) SetPullUpDown(line uint, pull board.Pull) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if code, ok := p.enter(OpSetPullUpDown); ok {
		return code
	}
	if line > maxGPIO {
		return badGPIO
	}
	if pull > board.PullUp {
		return badPUD
	}
	p.line(line).Pull = pull
	return 0
}

// Servo implements board.Primitives.
func (p *Primitives) Servo(line, pulseWidthUs uint) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if code, ok := p.enter(OpServo); ok {
		return code
	}
	if line > maxGPIO {
		return badGPIO
	}
	if pulseWidthUs != 0 && (pulseWidthUs < 500 || pulseWidthUs > 2500) {
		return badPulseWidth
	}
	p.line(line).PulseWidth = pulseWidthUs
	return 0
}

// ServoPulseWidth implements board.Primitives.
func (p *Primitives) ServoPulseWidth(line uint) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if code, ok := p.enter(OpServoPulseWidth); ok {
		return code
	}
	if line > maxGPIO {
		return badGPIO
	}
	st, ok := p.lines[line]
	if !ok || st.PulseWidth == 0 {
		return notServoGPIO
	}
	return int(st.PulseWidth)
}

// SPIOpen implements board.Primitives.
func (p *Primitives) SPIOpen(channel, baud, flags uint) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if code, ok := p.enter(OpSPIOpen); ok {
		return code
	}
	if channel > 2 {
		return badSPIChannel
	}
	h := p.nextSPI
	p.nextSPI++
	p.spi[h] = spiDevice{channel, baud, flags}
	return int(h)
}

// SPIXfer implements board.Primitives.
func (p *Primitives) SPIXfer(handle board.Handle, tx, rx []byte) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if code, ok := p.enter(OpSPIXfer); ok {
		return code
	}
	dev, ok := p.spi[handle]
	if !ok {
		return badHandle
	}
	for i := range rx {
		rx[i] = 0
	}
	if p.responder != nil {
		copy(rx, p.responder(dev.channel, append([]byte(nil), tx...)))
	}
	return len(tx)
}

// SPIClose implements board.Primitives.
func (p *Primitives) SPIClose(handle board.Handle) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if code, ok := p.enter(OpSPIClose); ok {
		return code
	}
	if _, ok := p.spi[handle]; !ok {
		return badHandle
	}
	delete(p.spi, handle)
	return 0
}

// SPIDevice returns the channel, baud and flags the handle was opened with.
func (p *Primitives) SPIDevice(handle board.Handle) (channel, baud, flags uint, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	dev, ok := p.spi[handle]
	return dev.channel, dev.baud, dev.flags, ok
}

// I2COpen implements board.Primitives.
func (p *Primitives) I2COpen(bus, addr, flags uint) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if code, ok := p.enter(OpI2COpen); ok {
		return code
	}
	h := p.nextI2C
	p.nextI2C++
	a := i2cAddr{bus, addr}
	p.i2c[h] = a
	p.device(a)
	return int(h)
}

// I2CClose implements board.Primitives.
func (p *Primitives) I2CClose(handle board.Handle) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if code, ok := p.enter(OpI2CClose); ok {
		return code
	}
	if _, ok := p.i2c[handle]; !ok {
		return badHandle
	}
	delete(p.i2c, handle)
	return 0
}

// I2CReadBlockData implements board.Primitives.
func (p *Primitives) I2CReadBlockData(handle board.Handle, register byte, buf []byte) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if code, ok := p.enter(OpI2CRead); ok {
		return code
	}
	a, ok := p.i2c[handle]
	if !ok {
		return badHandle
	}
	return copy(buf, p.device(a)[register:])
}

// I2CWriteBlockData implements board.Primitives.
func (p *Primitives) I2CWriteBlockData(handle board.Handle, register byte, data []byte) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if code, ok := p.enter(OpI2CWrite); ok {
		return code
	}
	a, ok := p.i2c[handle]
	if !ok {
		return badHandle
	}
	copy(p.device(a)[register:], data)
	return 0
}
