package mcp3008

import (
	"github.com/pkg/errors"
	"go.viam.com/utils"

	"go.viam.com/peripherals/components/board"
)

// Config describes one converter.
type Config struct {
	Name string `json:"name"`
	board.SPIConfig
	ReferenceVoltage float64 `json:"reference_voltage"`
	Inputs           []uint  `json:"inputs,omitempty"` // inputs sampled for status reports
}

// Validate ensures all parts of the config are valid.
func (config *Config) Validate(path string) error {
	if config.Name == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "name")
	}
	if err := config.SPIConfig.Validate(path); err != nil {
		return err
	}
	if !(config.ReferenceVoltage > 0) {
		return utils.NewConfigValidationError(path, errors.New("reference_voltage must be positive"))
	}
	for _, input := range config.Inputs {
		if input > MaxInput {
			return utils.NewConfigValidationError(path, errors.Wrapf(ErrInvalidInput, "inputs has %d", input))
		}
	}
	return nil
}
