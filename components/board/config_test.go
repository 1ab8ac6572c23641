package board

import (
	"testing"

	"go.viam.com/test"
)

func TestValidateLine(t *testing.T) {
	err := ValidateLine("path", "pin", nil)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "pin")

	line := uint(54)
	err = ValidateLine("path", "pin", &line)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "between 0 and 53")

	line = 0
	test.That(t, ValidateLine("path", "pin", &line), test.ShouldBeNil)
}

func TestSPIConfig(t *testing.T) {
	for _, tc := range []struct {
		cfg SPIConfig
		ok  bool
	}{
		{SPIConfig{ChipSelect: 0}, true},
		{SPIConfig{ChipSelect: 1}, true},
		{SPIConfig{ChipSelect: 2}, false},
		{SPIConfig{ChipSelect: 2, Aux: true}, true},
		{SPIConfig{ChipSelect: 3, Aux: true}, false},
	} {
		err := tc.cfg.Validate("path")
		if tc.ok {
			test.That(t, err, test.ShouldBeNil)
		} else {
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, err.Error(), test.ShouldContainSubstring, "chip_select")
		}
	}
}

func TestI2CConfig(t *testing.T) {
	cfg := I2CConfig{Bus: 1, Address: 0x76, PullUps: []uint{19, 21}}
	test.That(t, cfg.Validate("path"), test.ShouldBeNil)
	test.That(t, cfg.PullUpLines(), test.ShouldResemble, [2]uint{19, 21})

	cfg.Address = 0
	test.That(t, cfg.Validate("path"), test.ShouldBeNil)

	cfg.Address = 0x80
	err := cfg.Validate("path")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "i2c_addr")

	cfg.Address = 0x76
	cfg.PullUps = nil
	err = cfg.Validate("path")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "pull_up_pins")

	cfg.PullUps = []uint{19}
	test.That(t, cfg.Validate("path"), test.ShouldNotBeNil)

	cfg.PullUps = []uint{19, 99}
	test.That(t, cfg.Validate("path"), test.ShouldNotBeNil)
}
