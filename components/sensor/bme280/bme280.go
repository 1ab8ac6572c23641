// Package bme280 implements a BME280 temperature, humidity and pressure sensor on a pigpio I2C bus,
// with the bus pull-ups driven from two digital lines.
package bme280

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"periph.io/x/conn/v3/physic"

	"go.viam.com/peripherals/components/board"
	"go.viam.com/peripherals/components/sensor"
	"go.viam.com/peripherals/components/sensor/bme280/driver"
)

// DefaultAddress is the 7-bit address with SDO tied low.
const DefaultAddress = 0x76

// The settings every sensor is configured with.
var defaultSettings = driver.Settings{
	OSRHumidity:    driver.Oversampling1x,
	OSRPressure:    driver.Oversampling16x,
	OSRTemperature: driver.Oversampling2x,
	Filter:         driver.FilterCoeff16,
	Standby:        driver.Standby62_5ms,
}

const settingsSelect = driver.SelOSRPress | driver.SelOSRTemp | driver.SelOSRHum | driver.SelStandby | driver.SelFilter

// Readout is one measurement: relative humidity in percent, temperature in degrees Celsius and
// pressure in Pa.
type Readout struct {
	Humidity    float64
	Temperature float64
	Pressure    float64
}

// Weather returns the readout in periph physical units.
func (r Readout) Weather() physic.Env {
	return physic.Env{
		Temperature: physic.ZeroCelsius + physic.Temperature(r.Temperature*float64(physic.Kelvin)),
		Pressure:    physic.Pressure(r.Pressure * float64(physic.Pascal)),
		Humidity:    physic.RelativeHumidity(r.Humidity * float64(physic.PercentRH)),
	}
}

// DewPoint returns the dew point in degrees Celsius.
func (r Readout) DewPoint() float64 {
	ratio := 373.15 / (273.15 + r.Temperature)
	rhs := -7.90298 * (ratio - 1)
	rhs += 5.02808 * math.Log10(ratio)
	rhs += -1.3816e-7 * (math.Pow(10, 11.344*(1-1/ratio)) - 1)
	rhs += 8.1328e-3 * (math.Pow(10, -3.49149*(ratio-1)) - 1)
	rhs += math.Log10(1013.246)

	// -3 converts the saturation vapour pressure to kPa
	vp := math.Pow(10, rhs-3) * r.Humidity
	t := math.Log(vp / 0.61078)
	return (241.88 * t) / (17.558 - t)
}

// device is the part of the register driver the sensor uses.
type device interface {
	Init() error
	SetSensorSettings(sel byte, settings driver.Settings) error
	SetSensorMode(mode driver.Mode) error
	GetSensorData(components byte) (driver.Data, error)
}

type deviceFactory func(driver.Interface) device

func newDevice(intf driver.Interface) device {
	return driver.New(intf)
}

var _ sensor.Sensor = (*Sensor)(nil)

// A Sensor owns one I2C handle to a BME280 and the two pull-up lines of its bus.
type Sensor struct {
	mu      sync.Mutex
	bus     uint
	address byte
	handle  board.Handle
	dev     device
	guard   *board.Guard
}

// NewSensor enables the pull-ups, opens the sensor at address on bus, initializes it and starts
// continuous measurement.
func NewSensor(ctx context.Context, rt *board.Runtime, bus uint, address byte, pullUps [2]uint) (*Sensor, error) {
	return newSensor(ctx, rt, bus, address, pullUps, clock.New(), newDevice)
}

func newSensor(
	ctx context.Context,
	rt *board.Runtime,
	bus uint,
	address byte,
	pullUps [2]uint,
	clk clock.Clock,
	newDev deviceFactory,
) (_ *Sensor, err error) {
	guard, err := rt.Acquire(fmt.Sprintf("bme280.%d.%#x", bus, address))
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			guard.Close()
		}
	}()
	prims := guard.Primitives()

	for _, line := range pullUps {
		if err := board.Translate(board.CategoryGPIO, prims.SetPullUpDown(line, board.PullUp)); err != nil {
			return nil, errors.Wrapf(err, "enabling pull-up on line %d", line)
		}
		guard.OnRelease(board.CategoryGPIO, fmt.Sprintf("pull-up off on line %d", line), func() int {
			return prims.SetPullUpDown(line, board.PullOff)
		})
	}

	res := prims.I2COpen(bus, uint(address), 0)
	if err := board.Translate(board.CategoryGPIO, res); err != nil {
		return nil, errors.Wrapf(err, "opening i2c bus %d address %#x", bus, address)
	}
	handle := board.Handle(res)
	if handle.Valid() {
		guard.OnRelease(board.CategoryGPIO, "close i2c", func() int {
			return prims.I2CClose(handle)
		})
	}

	dev := newDev(&i2cDevice{prims: prims, handle: handle, clk: clk})
	if err := translateDriver(dev.Init()); err != nil {
		return nil, errors.Wrap(err, "initializing sensor")
	}
	if err := translateDriver(dev.SetSensorSettings(settingsSelect, defaultSettings)); err != nil {
		return nil, errors.Wrap(err, "applying sensor settings")
	}
	if err := translateDriver(dev.SetSensorMode(driver.ModeNormal)); err != nil {
		return nil, errors.Wrap(err, "entering normal mode")
	}

	guard.Logger().Debugw("sensor ready", "bus", bus, "address", address, "handle", handle, "pull_ups", pullUps)
	return &Sensor{bus: bus, address: address, handle: handle, dev: dev, guard: guard}, nil
}

// translateDriver turns a register driver failure into a sensor error carrying the driver status.
func translateDriver(err error) error {
	if err == nil {
		return nil
	}
	var status driver.Status
	if !errors.As(err, &status) {
		status = driver.ErrCommFail
	}
	return board.Translate(board.CategorySensor, int(status))
}

// Read takes one measurement of all three quantities.
func (s *Sensor) Read(ctx context.Context) (Readout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.guard.Closed() {
		return Readout{}, errors.Wrapf(board.ErrClosed, "sensor on bus %d address %#x", s.bus, s.address)
	}
	data, err := s.dev.GetSensorData(driver.All)
	if err := translateDriver(err); err != nil {
		return Readout{}, errors.Wrap(err, "reading sensor data")
	}
	return Readout{Humidity: data.Humidity, Temperature: data.Temperature, Pressure: data.Pressure}, nil
}

// Readings returns a measurement together with the values derived from it.
func (s *Sensor) Readings(ctx context.Context) (map[string]interface{}, error) {
	r, err := s.Read(ctx)
	if err != nil {
		return nil, err
	}
	dewPoint := r.DewPoint()
	return map[string]interface{}{
		"temperature_celsius":    r.Temperature,
		"dew_point_celsius":      dewPoint,
		"temperature_fahrenheit": r.Temperature*1.8 + 32,
		"dew_point_fahrenheit":   dewPoint*1.8 + 32,
		"humidity_pct_rh":        r.Humidity,
		"pressure_pa":            r.Pressure,
	}, nil
}

// ReadoutFromReadings recovers the measurement from a map produced by Readings.
func ReadoutFromReadings(readings map[string]interface{}) (Readout, bool) {
	var r Readout
	var ok [3]bool
	r.Temperature, ok[0] = readings["temperature_celsius"].(float64)
	r.Humidity, ok[1] = readings["humidity_pct_rh"].(float64)
	r.Pressure, ok[2] = readings["pressure_pa"].(float64)
	return r, ok[0] && ok[1] && ok[2]
}

// Bus returns the I2C bus the sensor is on.
func (s *Sensor) Bus() uint {
	return s.bus
}

// Address returns the sensor's I2C address.
func (s *Sensor) Address() byte {
	return s.address
}

// Close closes the I2C handle and disables the pull-ups. Failures are logged, never returned.
func (s *Sensor) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.guard.Close()
	return nil
}

// i2cDevice routes the register driver's bus access through an open pigpio I2C handle.
type i2cDevice struct {
	prims  board.Primitives
	handle board.Handle
	clk    clock.Clock
}

// Read fails unless the whole block came back.
func (d *i2cDevice) Read(register byte, data []byte) error {
	res := d.prims.I2CReadBlockData(d.handle, register, data)
	if err := board.Translate(board.CategoryGPIO, res); err != nil {
		return err
	}
	if res != len(data) {
		return errors.Wrapf(board.Translate(board.CategoryGPIO, board.CodeI2CReadFailed),
			"read %d of %d bytes from register %#x", res, len(data), register)
	}
	return nil
}

func (d *i2cDevice) Write(register byte, data []byte) error {
	return board.Translate(board.CategoryGPIO, d.prims.I2CWriteBlockData(d.handle, register, data))
}

func (d *i2cDevice) Delay(us uint32) {
	d.clk.Sleep(time.Duration(us) * time.Microsecond)
}
