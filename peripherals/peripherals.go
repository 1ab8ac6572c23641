// Package peripherals builds every peripheral named in a config on one hardware runtime and
// tears them down again in reverse order.
package peripherals

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/peripherals/components/board"
	"go.viam.com/peripherals/components/board/mcp3008"
	"go.viam.com/peripherals/components/motor"
	"go.viam.com/peripherals/components/motor/esc"
	"go.viam.com/peripherals/components/output"
	"go.viam.com/peripherals/components/sensor"
	"go.viam.com/peripherals/components/sensor/bme280"
	"go.viam.com/peripherals/config"
	"go.viam.com/peripherals/logging"
)

type closer interface {
	Close(ctx context.Context) error
}

type built struct {
	name string
	c    closer
}

// A Set owns the drivers built from one config.
type Set struct {
	logger logging.Logger

	outputs map[string]*output.Pin
	motors  map[string]*esc.Motor
	analogs map[string]*mcp3008.Channel
	sensors map[string]*bme280.Sensor
	inputs  map[string][]uint

	// every motor and sensor again, behind the generic interfaces Status reads through
	movers  map[string]motor.Motor
	readers map[string]sensor.Sensor

	order []built
}

// New builds outputs, motors, analogs and sensors in that order. If any driver fails to build,
// the ones already built are closed and the error is returned.
func New(ctx context.Context, rt *board.Runtime, cfg *config.Config, logger logging.Logger) (_ *Set, err error) {
	s := &Set{
		logger:  logger,
		outputs: map[string]*output.Pin{},
		motors:  map[string]*esc.Motor{},
		analogs: map[string]*mcp3008.Channel{},
		sensors: map[string]*bme280.Sensor{},
		inputs:  map[string][]uint{},
		movers:  map[string]motor.Motor{},
		readers: map[string]sensor.Sensor{},
	}
	defer func() {
		if err != nil {
			err = multierr.Combine(err, s.Close(ctx))
		}
	}()

	for _, c := range cfg.Outputs {
		pin, err := output.NewPin(ctx, rt, *c.Pin, c.Initial)
		if err != nil {
			return nil, errors.Wrapf(err, "output %q", c.Name)
		}
		s.outputs[c.Name] = pin
		s.add(c.Name, pin)
	}
	for _, c := range cfg.Motors {
		m, err := esc.NewMotor(ctx, rt, *c.Pin)
		if err != nil {
			return nil, errors.Wrapf(err, "motor %q", c.Name)
		}
		s.motors[c.Name] = m
		s.movers[c.Name] = m
		s.add(c.Name, m)
	}
	for _, c := range cfg.Analogs {
		ch, err := mcp3008.New(ctx, rt, c.Aux, c.ChipSelect, c.ReferenceVoltage)
		if err != nil {
			return nil, errors.Wrapf(err, "analog %q", c.Name)
		}
		s.analogs[c.Name] = ch
		s.inputs[c.Name] = c.Inputs
		s.add(c.Name, ch)
	}
	for _, c := range cfg.Sensors {
		env, err := bme280.NewSensor(ctx, rt, c.Bus, c.AddressOrDefault(), c.PullUpLines())
		if err != nil {
			return nil, errors.Wrapf(err, "sensor %q", c.Name)
		}
		s.sensors[c.Name] = env
		s.readers[c.Name] = env
		s.add(c.Name, env)
	}
	logger.Infow("peripherals ready", "count", len(s.order))
	return s, nil
}

func (s *Set) add(name string, c closer) {
	s.logger.Debugw("built peripheral", "name", name)
	s.order = append(s.order, built{name, c})
}

// Output returns the named output pin.
func (s *Set) Output(name string) (*output.Pin, bool) {
	p, ok := s.outputs[name]
	return p, ok
}

// Motor returns the named motor.
func (s *Set) Motor(name string) (*esc.Motor, bool) {
	m, ok := s.motors[name]
	return m, ok
}

// Analog returns the named converter.
func (s *Set) Analog(name string) (*mcp3008.Channel, bool) {
	c, ok := s.analogs[name]
	return c, ok
}

// Sensor returns the named environmental sensor.
func (s *Set) Sensor(name string) (*bme280.Sensor, bool) {
	env, ok := s.sensors[name]
	return env, ok
}

// Names returns the names of all peripherals, sorted.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.order))
	for _, b := range s.order {
		names = append(names, b.name)
	}
	sort.Strings(names)
	return names
}

// Status reads the current state of every peripheral, keyed by name. A peripheral that fails to
// read is left out and its error is combined into the returned error.
func (s *Set) Status(ctx context.Context) (map[string]interface{}, error) {
	status := map[string]interface{}{}
	var errs error
	for name, pin := range s.outputs {
		status[name] = pin.Value()
	}
	for name, m := range s.movers {
		speed, err := m.Speed(ctx)
		if err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "motor %q", name))
			continue
		}
		status[name] = speed
	}
	for name, ch := range s.analogs {
		volts := map[uint]float64{}
		for _, input := range s.inputs[name] {
			v, err := ch.Read(ctx, input)
			if err != nil {
				errs = multierr.Append(errs, errors.Wrapf(err, "analog %q", name))
				continue
			}
			volts[input] = v
		}
		status[name] = volts
	}
	for name, r := range s.readers {
		readings, err := r.Readings(ctx)
		if err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "sensor %q", name))
			continue
		}
		status[name] = readings
	}
	return status, errs
}

// Close closes every peripheral, last built first.
func (s *Set) Close(ctx context.Context) error {
	var errs error
	for i := len(s.order) - 1; i >= 0; i-- {
		b := s.order[i]
		s.logger.Debugw("closing peripheral", "name", b.name)
		errs = multierr.Combine(errs, b.c.Close(ctx))
	}
	s.order = nil
	return errs
}
