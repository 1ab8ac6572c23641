package driver

// Register addresses.
const (
	RegCalibTempPress = 0x88 // dig_T1 LSB, start of the 26 byte temperature/pressure calibration block
	RegChipID         = 0xD0
	RegSoftReset      = 0xE0
	RegCalibHumidity  = 0xE1 // dig_H2 LSB, start of the 7 byte humidity calibration block
	RegCtrlHumidity   = 0xF2
	RegStatus         = 0xF3
	RegCtrlMeas       = 0xF4
	RegConfig         = 0xF5
	RegData           = 0xF7 // pressure MSB, start of the 8 byte measurement block
)

const (
	// ChipID is the value of RegChipID on a BME280.
	ChipID = 0x60

	softResetCommand = 0xB6

	calibTempPressLen = 26
	calibHumidityLen  = 7
	dataLen           = 8

	statusImUpdate = 0x01

	modeMask     = 0x03
	osrHumMask   = 0x07
	osrPressMask = 0x1C
	osrPressPos  = 2
	osrTempMask  = 0xE0
	osrTempPos   = 5
	filterMask   = 0x1C
	filterPos    = 2
	standbyMask  = 0xE0
	standbyPos   = 5
)

// Oversampling is a measurement oversampling factor.
type Oversampling uint8

// Oversampling factors as encoded in the control registers.
const (
	OversamplingNone Oversampling = iota
	Oversampling1x
	Oversampling2x
	Oversampling4x
	Oversampling8x
	Oversampling16x
)

// Filter is the IIR filter coefficient.
type Filter uint8

// Filter coefficients as encoded in RegConfig.
const (
	FilterOff Filter = iota
	FilterCoeff2
	FilterCoeff4
	FilterCoeff8
	FilterCoeff16
)

// Standby is the inactive period between measurements in normal mode.
type Standby uint8

// Standby durations as encoded in RegConfig.
const (
	Standby0_5ms Standby = iota
	Standby62_5ms
	Standby125ms
	Standby250ms
	Standby500ms
	Standby1000ms
	Standby10ms
	Standby20ms
)

// Mode is the sensor power mode.
type Mode uint8

// Power modes.
const (
	ModeSleep  Mode = 0x00
	ModeForced Mode = 0x01
	ModeNormal Mode = 0x03
)

// Settings selectors for SetSensorSettings.
const (
	SelOSRPress byte = 1 << iota
	SelOSRTemp
	SelOSRHum
	SelFilter
	SelStandby

	SelAll = SelOSRPress | SelOSRTemp | SelOSRHum | SelFilter | SelStandby
)

// Measurement components for GetSensorData.
const (
	Pressure byte = 1 << iota
	Temperature
	Humidity

	All = Pressure | Temperature | Humidity
)
