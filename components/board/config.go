package board

import (
	"github.com/pkg/errors"
	"go.viam.com/utils"
)

const (
	// MaxLine is the highest line number pigpio accepts.
	MaxLine = 53

	minI2CAddress = 0x08
	maxI2CAddress = 0x77
)

// ValidateLine ensures a required line number is present and addressable.
func ValidateLine(path, field string, line *uint) error {
	if line == nil {
		return utils.NewConfigValidationFieldRequiredError(path, field)
	}
	if *line > MaxLine {
		return utils.NewConfigValidationError(path, errors.Errorf("%s must be between 0 and %d, got %d", field, MaxLine, *line))
	}
	return nil
}

// SPIConfig selects the controller and chip select line an SPI device is wired to.
type SPIConfig struct {
	ChipSelect uint `json:"chip_select"`
	Aux        bool `json:"aux_spi,omitempty"` // auxiliary controller instead of the main one
}

// Validate ensures all parts of the config are valid.
func (config *SPIConfig) Validate(path string) error {
	maxCS := uint(1)
	if config.Aux {
		maxCS = 2
	}
	if config.ChipSelect > maxCS {
		return utils.NewConfigValidationError(path,
			errors.Errorf("chip_select must be between 0 and %d (aux_spi %t), got %d", maxCS, config.Aux, config.ChipSelect))
	}
	return nil
}

// I2CConfig addresses a device on an I2C bus and names the two lines pulling the bus up.
type I2CConfig struct {
	Bus     uint   `json:"i2c_bus"`
	Address int    `json:"i2c_addr,omitempty"`
	PullUps []uint `json:"pull_up_pins"`
}

// Validate ensures all parts of the config are valid. A zero address means the device default.
func (config *I2CConfig) Validate(path string) error {
	if config.Address != 0 && (config.Address < minI2CAddress || config.Address > maxI2CAddress) {
		return utils.NewConfigValidationError(path,
			errors.Errorf("i2c_addr must be between %#x and %#x, got %#x", minI2CAddress, maxI2CAddress, config.Address))
	}
	if len(config.PullUps) == 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "pull_up_pins")
	}
	if len(config.PullUps) != 2 {
		return utils.NewConfigValidationError(path, errors.Errorf("pull_up_pins needs exactly 2 lines, got %d", len(config.PullUps)))
	}
	for _, line := range config.PullUps {
		if line > MaxLine {
			return utils.NewConfigValidationError(path, errors.Errorf("pull_up_pins must be between 0 and %d, got %d", MaxLine, line))
		}
	}
	return nil
}

// PullUpLines returns the pull-up lines as a pair. Call Validate first.
func (config *I2CConfig) PullUpLines() [2]uint {
	return [2]uint{config.PullUps[0], config.PullUps[1]}
}
