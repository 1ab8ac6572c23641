package board

import (
	"fmt"

	"github.com/pkg/errors"
)

// A Category names the subsystem a native status code came from.
type Category string

const (
	// CategoryGPIO covers digital line configuration, PWM, SPI, I2C bus and pull-up calls into pigpio.
	CategoryGPIO Category = "pigpio"
	// CategorySensor covers calls into the BME280 register driver.
	CategorySensor Category = "bme280"
)

// CodeI2CReadFailed is pigpio's PI_I2C_READ_FAILED, also used when a block read comes back short.
const CodeI2CReadFailed = -83

// Error is a failed native call: the category it was made under and the raw negative status.
type Error struct {
	Category Category
	Code     int
}

func (e *Error) Error() string {
	if msg, ok := codeMessages[e.Category][e.Code]; ok {
		return fmt.Sprintf("%s error %d: %s", e.Category, e.Code, msg)
	}
	return fmt.Sprintf("%s error %d", e.Category, e.Code)
}

// Translate converts a native status into an error. Any code >= 0 is success and yields nil,
// any negative code yields an *Error carrying the category and the code unchanged.
func Translate(category Category, code int) error {
	if code >= 0 {
		return nil
	}
	return &Error{Category: category, Code: code}
}

// CodeOf returns the native status code carried by err, if any.
func CodeOf(err error) (int, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return 0, false
}

// IsCategory reports whether err wraps a native failure of the given category.
func IsCategory(err error, category Category) bool {
	var e *Error
	return errors.As(err, &e) && e.Category == category
}

// Messages for the status codes the drivers are likely to run into. Codes not listed here are
// still reported, just without the text.
var codeMessages = map[Category]map[int]string{
	CategoryGPIO: {
		-1:  "gpioInitialise failed",
		-2:  "GPIO not 0-31",
		-3:  "GPIO not 0-53",
		-4:  "mode not 0-7",
		-5:  "level not 0-1",
		-6:  "pud not 0-2",
		-7:  "pulsewidth not 0 or 500-2500",
		-8:  "dutycycle outside set range",
		-24: "no handle available",
		-25: "unknown handle",
		-31: "library not initialised",
		-71: "can't open I2C device",
		-73: "can't open SPI device",
		-74: "bad I2C bus",
		-75: "bad I2C address",
		-76: "bad SPI channel",
		-77: "bad i2c/spi/ser open flags",
		-78: "bad SPI speed",
		-81: "bad i2c/spi/ser parameter",
		-82: "I2C write failed",
		-83: "I2C read failed",
		-84: "bad SPI count",
		-89: "SPI xfer/read/write failed",
		-90: "bad (NULL) pointer",
		-92: "GPIO has no hardware PWM",
		-93: "GPIO is not in use for servo pulses",
	},
	CategorySensor: {
		-1: "null pointer",
		-2: "device not found",
		-3: "invalid length",
		-4: "communication failure",
		-5: "sleep mode failure",
		-6: "NVM copy failed",
	},
}
