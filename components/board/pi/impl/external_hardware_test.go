//go:build linux && (arm64 || arm) && !no_pigpio && !no_cgo

package piimpl

import (
	"context"
	"os"
	"testing"
	"time"

	"go.viam.com/test"

	"go.viam.com/peripherals/components/board"
	"go.viam.com/peripherals/components/board/mcp3008"
	"go.viam.com/peripherals/components/motor/esc"
	"go.viam.com/peripherals/components/output"
	"go.viam.com/peripherals/components/sensor/bme280"
	"go.viam.com/peripherals/logging"
)

// TestPiHardware expects line 26 wired to input 0 of an MCP3008 on CE0, an ESC or servo on
// line 18 and optionally a BME280 at 0x76 on bus 1 with pull-ups on lines 2 and 3.
func TestPiHardware(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping external pi hardware tests")
		return
	}
	ctx := context.Background()
	logger := logging.NewTestLogger(t)

	prims, err := NewPrimitives()
	if os.Getuid() != 0 || err != nil && err.Error() == "not running on a pi" {
		t.Skip("not running as root on a pi")
		return
	}
	test.That(t, err, test.ShouldBeNil)

	rt, err := board.NewRuntime(prims, logger)
	test.That(t, err, test.ShouldBeNil)
	defer func() {
		test.That(t, rt.Close(), test.ShouldBeNil)
	}()

	t.Run("analog test", func(t *testing.T) {
		pin, err := output.NewPin(ctx, rt, 26, false)
		test.That(t, err, test.ShouldBeNil)
		defer pin.Close(ctx)

		adc, err := mcp3008.New(ctx, rt, false, 0, 3.3)
		test.That(t, err, test.ShouldBeNil)
		defer adc.Close(ctx)

		v, err := adc.ReadCode(ctx, 0)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, v, test.ShouldAlmostEqual, 0, 150)

		test.That(t, pin.Set(ctx, true), test.ShouldBeNil)
		v, err = adc.ReadCode(ctx, 0)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, v, test.ShouldAlmostEqual, 1023, 150)

		test.That(t, pin.Set(ctx, false), test.ShouldBeNil)
		v, err = adc.ReadCode(ctx, 0)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, v, test.ShouldAlmostEqual, 0, 150)
	})

	t.Run("motor pulse width", func(t *testing.T) {
		m, err := esc.NewMotor(ctx, rt, 18)
		test.That(t, err, test.ShouldBeNil)
		defer m.Close(ctx)

		test.That(t, m.SetSpeed(ctx, 0.5), test.ShouldBeNil)
		time.Sleep(300 * time.Millisecond)
		speed, err := m.Speed(ctx)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, speed, test.ShouldAlmostEqual, 0.5, 0.001)
	})

	t.Run("bme280", func(t *testing.T) {
		s, err := bme280.NewSensor(ctx, rt, 1, bme280.DefaultAddress, [2]uint{2, 3})
		if err != nil {
			t.Skipf("no bme280 found: %v", err)
			return
		}
		defer s.Close(ctx)

		r, err := s.Read(ctx)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, r.Temperature, test.ShouldBeBetweenOrEqual, -40.0, 85.0)
		test.That(t, r.Pressure, test.ShouldBeBetweenOrEqual, 30000.0, 110000.0)
		test.That(t, r.Humidity, test.ShouldBeBetweenOrEqual, 0.0, 100.0)
	})
}
