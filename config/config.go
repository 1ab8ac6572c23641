// Package config defines the peripheral configuration file and how it is read and validated.
package config

import (
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"go.viam.com/peripherals/components/board/mcp3008"
	"go.viam.com/peripherals/components/motor/esc"
	"go.viam.com/peripherals/components/output"
	"go.viam.com/peripherals/components/sensor/bme280"
)

// Config lists every peripheral to build on one board.
type Config struct {
	Outputs []output.Config  `json:"outputs,omitempty"`
	Motors  []esc.Config     `json:"motors,omitempty"`
	Analogs []mcp3008.Config `json:"analogs,omitempty"`
	Sensors []bme280.Config  `json:"sensors,omitempty"`

	Debug bool `json:"debug,omitempty"`

	ConfigFilePath string `json:"-"`
}

// Ensure validates every peripheral and makes sure names are unique across all of them. All
// problems are reported together.
func (c *Config) Ensure() error {
	var errs error
	seen := map[string]string{}
	check := func(path, name string, validate func(string) error) {
		if err := validate(path); err != nil {
			errs = multierr.Append(errs, err)
			return
		}
		if other, ok := seen[name]; ok {
			errs = multierr.Append(errs, utils.NewConfigValidationError(path,
				errors.Errorf("name %q is already used by %s", name, other)))
			return
		}
		seen[name] = path
	}

	for idx := range c.Outputs {
		check(fmt.Sprintf("%s.%d", "outputs", idx), c.Outputs[idx].Name, c.Outputs[idx].Validate)
	}
	for idx := range c.Motors {
		check(fmt.Sprintf("%s.%d", "motors", idx), c.Motors[idx].Name, c.Motors[idx].Validate)
	}
	for idx := range c.Analogs {
		check(fmt.Sprintf("%s.%d", "analogs", idx), c.Analogs[idx].Name, c.Analogs[idx].Validate)
	}
	for idx := range c.Sensors {
		check(fmt.Sprintf("%s.%d", "sensors", idx), c.Sensors[idx].Name, c.Sensors[idx].Validate)
	}
	return errs
}

// Empty reports whether no peripheral is configured.
func (c *Config) Empty() bool {
	return len(c.Outputs)+len(c.Motors)+len(c.Analogs)+len(c.Sensors) == 0
}
