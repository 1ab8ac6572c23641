// Package driver is a register level BME280 driver. It follows the shape of the vendor's sensor
// API: the device is probed, reset and calibrated by Init, configured with a settings selector and
// a power mode, and produces compensated measurements in double precision.
//
// All bus access goes through an Interface supplied by the caller.
package driver

import (
	"encoding/binary"
	"fmt"
)

// Interface is the bus access the driver needs.
type Interface interface {
	// Read fills data with consecutive registers starting at register.
	Read(register byte, data []byte) error
	// Write writes data to consecutive registers starting at register.
	Write(register byte, data []byte) error
	// Delay blocks for the given number of microseconds.
	Delay(us uint32)
}

// Status is a driver result code. Every error the driver returns is a Status and is negative.
type Status int8

// Driver result codes, numbered as the vendor API numbers them.
const (
	ErrNullPtr       Status = -1
	ErrDevNotFound   Status = -2
	ErrInvalidLen    Status = -3
	ErrCommFail      Status = -4
	ErrSleepModeFail Status = -5
	ErrNVMCopyFailed Status = -6
)

func (s Status) Error() string {
	switch s {
	case ErrNullPtr:
		return "bme280: null pointer"
	case ErrDevNotFound:
		return "bme280: device not found"
	case ErrInvalidLen:
		return "bme280: invalid length"
	case ErrCommFail:
		return "bme280: communication failure"
	case ErrSleepModeFail:
		return "bme280: sleep mode failure"
	case ErrNVMCopyFailed:
		return "bme280: NVM copy failed"
	default:
		return fmt.Sprintf("bme280: status %d", int8(s))
	}
}

// Settings are the measurement settings of the sensor.
type Settings struct {
	OSRPressure    Oversampling
	OSRTemperature Oversampling
	OSRHumidity    Oversampling
	Filter         Filter
	Standby        Standby
}

// Data is one compensated measurement: pressure in Pa, temperature in degrees Celsius and
// relative humidity in percent.
type Data struct {
	Pressure    float64
	Temperature float64
	Humidity    float64
}

// Uncompensated is one raw measurement as read from the data registers.
type Uncompensated struct {
	Pressure    uint32
	Temperature uint32
	Humidity    uint32
}

// A Device is one BME280 reached through an Interface.
type Device struct {
	intf Interface

	ChipID      byte
	Calibration Calibration
	Settings    Settings
}

// New returns a device bound to intf. Call Init before anything else.
func New(intf Interface) *Device {
	return &Device{intf: intf}
}

func (d *Device) read(register byte, data []byte) error {
	if d == nil || d.intf == nil {
		return ErrNullPtr
	}
	if len(data) == 0 {
		return ErrInvalidLen
	}
	if err := d.intf.Read(register, data); err != nil {
		return ErrCommFail
	}
	return nil
}

func (d *Device) write(register, value byte) error {
	if d == nil || d.intf == nil {
		return ErrNullPtr
	}
	if err := d.intf.Write(register, []byte{value}); err != nil {
		return ErrCommFail
	}
	return nil
}

// Init probes for the chip id, soft resets the sensor and loads its calibration.
func (d *Device) Init() error {
	if d == nil || d.intf == nil {
		return ErrNullPtr
	}
	id := make([]byte, 1)
	var err error
	for try := 0; try < 5; try++ {
		if err = d.read(RegChipID, id); err == nil && id[0] == ChipID {
			d.ChipID = id[0]
			if err := d.SoftReset(); err != nil {
				return err
			}
			return d.loadCalibration()
		}
		d.intf.Delay(1000)
	}
	if err != nil {
		return err
	}
	return ErrDevNotFound
}

// SoftReset resets the sensor and waits for the calibration to be copied out of NVM.
func (d *Device) SoftReset() error {
	if err := d.write(RegSoftReset, softResetCommand); err != nil {
		return err
	}
	status := make([]byte, 1)
	for try := 0; try < 5; try++ {
		d.intf.Delay(2000)
		if err := d.read(RegStatus, status); err != nil {
			return err
		}
		if status[0]&statusImUpdate == 0 {
			return nil
		}
	}
	return ErrNVMCopyFailed
}

func (d *Device) loadCalibration() error {
	tp := make([]byte, calibTempPressLen)
	if err := d.read(RegCalibTempPress, tp); err != nil {
		return err
	}
	h := make([]byte, calibHumidityLen)
	if err := d.read(RegCalibHumidity, h); err != nil {
		return err
	}
	d.Calibration = ParseCalibration(tp, h)
	return nil
}

// SensorMode reads the current power mode.
func (d *Device) SensorMode() (Mode, error) {
	b := make([]byte, 1)
	if err := d.read(RegCtrlMeas, b); err != nil {
		return 0, err
	}
	return Mode(b[0] & modeMask), nil
}

// SetSensorMode puts the sensor into mode, passing through sleep first.
func (d *Device) SetSensorMode(mode Mode) error {
	if err := d.sleep(); err != nil {
		return err
	}
	if mode == ModeSleep {
		return nil
	}
	return d.setMode(mode)
}

func (d *Device) setMode(mode Mode) error {
	b := make([]byte, 1)
	if err := d.read(RegCtrlMeas, b); err != nil {
		return err
	}
	return d.write(RegCtrlMeas, (b[0]&^modeMask)|byte(mode)&modeMask)
}

func (d *Device) sleep() error {
	mode, err := d.SensorMode()
	if err != nil {
		return err
	}
	if mode == ModeSleep {
		return nil
	}
	if err := d.setMode(ModeSleep); err != nil {
		return err
	}
	if mode, err = d.SensorMode(); err != nil {
		return err
	}
	if mode != ModeSleep {
		return ErrSleepModeFail
	}
	return nil
}

// SetSensorSettings writes the settings chosen by sel (a combination of the Sel* selectors). The
// sensor is put to sleep first; the caller sets the power mode afterwards.
func (d *Device) SetSensorSettings(sel byte, s Settings) error {
	if err := d.sleep(); err != nil {
		return err
	}
	if sel&SelOSRHum != 0 {
		if err := d.write(RegCtrlHumidity, byte(s.OSRHumidity)&osrHumMask); err != nil {
			return err
		}
		d.Settings.OSRHumidity = s.OSRHumidity
	}
	if sel&(SelOSRPress|SelOSRTemp|SelOSRHum) != 0 {
		// ctrl_hum only takes effect after ctrl_meas is written, so it is rewritten even when only
		// the humidity oversampling changed.
		b := make([]byte, 1)
		if err := d.read(RegCtrlMeas, b); err != nil {
			return err
		}
		meas := b[0]
		if sel&SelOSRPress != 0 {
			meas = setBits(meas, osrPressMask, osrPressPos, byte(s.OSRPressure))
			d.Settings.OSRPressure = s.OSRPressure
		}
		if sel&SelOSRTemp != 0 {
			meas = setBits(meas, osrTempMask, osrTempPos, byte(s.OSRTemperature))
			d.Settings.OSRTemperature = s.OSRTemperature
		}
		if err := d.write(RegCtrlMeas, meas); err != nil {
			return err
		}
	}
	if sel&(SelFilter|SelStandby) != 0 {
		b := make([]byte, 1)
		if err := d.read(RegConfig, b); err != nil {
			return err
		}
		cfg := b[0]
		if sel&SelFilter != 0 {
			cfg = setBits(cfg, filterMask, filterPos, byte(s.Filter))
			d.Settings.Filter = s.Filter
		}
		if sel&SelStandby != 0 {
			cfg = setBits(cfg, standbyMask, standbyPos, byte(s.Standby))
			d.Settings.Standby = s.Standby
		}
		if err := d.write(RegConfig, cfg); err != nil {
			return err
		}
	}
	return nil
}

// SensorSettings reads the settings back from the sensor.
func (d *Device) SensorSettings() (Settings, error) {
	b := make([]byte, 4)
	if err := d.read(RegCtrlHumidity, b); err != nil {
		return Settings{}, err
	}
	// b[0] ctrl_hum, b[1] status, b[2] ctrl_meas, b[3] config
	return Settings{
		OSRHumidity:    Oversampling(b[0] & osrHumMask),
		OSRPressure:    Oversampling((b[2] & osrPressMask) >> osrPressPos),
		OSRTemperature: Oversampling((b[2] & osrTempMask) >> osrTempPos),
		Filter:         Filter((b[3] & filterMask) >> filterPos),
		Standby:        Standby((b[3] & standbyMask) >> standbyPos),
	}, nil
}

// GetSensorData reads one measurement and compensates the requested components (a combination
// of Pressure, Temperature and Humidity). Temperature is always compensated since the others
// depend on it.
func (d *Device) GetSensorData(components byte) (Data, error) {
	if components&All == 0 {
		return Data{}, ErrInvalidLen
	}
	raw := make([]byte, dataLen)
	if err := d.read(RegData, raw); err != nil {
		return Data{}, err
	}
	return d.Calibration.Compensate(ParseSensorData(raw), components), nil
}

// ParseSensorData splits the 8 byte data block into raw readings.
func ParseSensorData(raw []byte) Uncompensated {
	return Uncompensated{
		Pressure:    uint32(raw[0])<<12 | uint32(raw[1])<<4 | uint32(raw[2])>>4,
		Temperature: uint32(raw[3])<<12 | uint32(raw[4])<<4 | uint32(raw[5])>>4,
		Humidity:    uint32(binary.BigEndian.Uint16(raw[6:8])),
	}
}

func setBits(reg, mask, pos, value byte) byte {
	return (reg &^ mask) | ((value << pos) & mask)
}
