package esc

import (
	"go.viam.com/utils"

	"go.viam.com/peripherals/components/board"
)

// Config describes one ESC driven motor.
type Config struct {
	Name string `json:"name"`
	Pin  *uint  `json:"pin"`
}

// Validate ensures all parts of the config are valid.
func (config *Config) Validate(path string) error {
	if config.Name == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "name")
	}
	return board.ValidateLine(path, "pin", config.Pin)
}
