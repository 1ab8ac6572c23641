package bme280

import (
	"go.viam.com/utils"

	"go.viam.com/peripherals/components/board"
)

// Config describes one sensor.
type Config struct {
	Name string `json:"name"`
	board.I2CConfig
}

// Validate ensures all parts of the config are valid.
func (config *Config) Validate(path string) error {
	if config.Name == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "name")
	}
	return config.I2CConfig.Validate(path)
}

// AddressOrDefault returns the configured address, or DefaultAddress when none is set.
func (config *Config) AddressOrDefault() byte {
	if config.Address == 0 {
		return DefaultAddress
	}
	return byte(config.Address)
}
