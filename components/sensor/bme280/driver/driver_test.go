package driver

import (
	"encoding/binary"
	"errors"
	"testing"

	"go.viam.com/test"
)

var errBus = errors.New("bus failure")

// registerMap simulates the register file of a BME280.
type registerMap struct {
	regs       [256]byte
	resets     int
	busyReads  int
	failRead   byte
	failWrites bool
	delays     []uint32
	writes     map[byte][]byte
}

func newRegisterMap() *registerMap {
	m := &registerMap{writes: map[byte][]byte{}}
	m.regs[RegChipID] = ChipID
	return m
}

func (m *registerMap) Read(register byte, data []byte) error {
	if m.failRead != 0 && m.failRead == register {
		return errBus
	}
	if register == RegStatus && m.busyReads > 0 {
		m.busyReads--
		data[0] = statusImUpdate
		return nil
	}
	copy(data, m.regs[int(register):])
	return nil
}

func (m *registerMap) Write(register byte, data []byte) error {
	if m.failWrites {
		return errBus
	}
	m.writes[register] = append(m.writes[register], data...)
	if register == RegSoftReset && data[0] == softResetCommand {
		m.resets++
		m.regs[RegCtrlHumidity] = 0
		m.regs[RegCtrlMeas] = 0
		m.regs[RegConfig] = 0
		return nil
	}
	copy(m.regs[int(register):], data)
	return nil
}

func (m *registerMap) Delay(us uint32) {
	m.delays = append(m.delays, us)
}

func putInt16(b []byte, v int16) {
	binary.LittleEndian.PutUint16(b, uint16(v))
}

// loadDatasheetCalibration writes the datasheet example trimming values.
func (m *registerMap) loadDatasheetCalibration() {
	tp := m.regs[RegCalibTempPress:]
	binary.LittleEndian.PutUint16(tp[0:], 27504)
	putInt16(tp[2:], 26435)
	putInt16(tp[4:], -1000)
	binary.LittleEndian.PutUint16(tp[6:], 36477)
	putInt16(tp[8:], -10685)
	putInt16(tp[10:], 3024)
	putInt16(tp[12:], 2855)
	putInt16(tp[14:], 140)
	putInt16(tp[16:], -7)
	putInt16(tp[18:], 15500)
	putInt16(tp[20:], -14600)
	putInt16(tp[22:], 6000)
	tp[25] = 75

	h := m.regs[RegCalibHumidity:]
	putInt16(h[0:], 362)
	h[2] = 0
	// H4 = 313, H5 = 50
	h[3] = 19
	h[4] = 0x29
	h[5] = 3
	h[6] = 30
}

func (m *registerMap) setRaw(pressure, temperature, humidity uint32) {
	d := m.regs[RegData:]
	d[0], d[1], d[2] = byte(pressure>>12), byte(pressure>>4), byte(pressure<<4)
	d[3], d[4], d[5] = byte(temperature>>12), byte(temperature>>4), byte(temperature<<4)
	binary.BigEndian.PutUint16(d[6:], uint16(humidity))
}

func TestInit(t *testing.T) {
	t.Run("calibration", func(t *testing.T) {
		m := newRegisterMap()
		m.loadDatasheetCalibration()
		m.busyReads = 2
		d := New(m)
		test.That(t, d.Init(), test.ShouldBeNil)
		test.That(t, d.ChipID, test.ShouldEqual, byte(ChipID))
		test.That(t, m.resets, test.ShouldEqual, 1)
		test.That(t, m.delays, test.ShouldResemble, []uint32{2000, 2000, 2000})

		c := d.Calibration
		test.That(t, c.T1, test.ShouldEqual, uint16(27504))
		test.That(t, c.T3, test.ShouldEqual, int16(-1000))
		test.That(t, c.P8, test.ShouldEqual, int16(-14600))
		test.That(t, c.H1, test.ShouldEqual, uint8(75))
		test.That(t, c.H2, test.ShouldEqual, int16(362))
		test.That(t, c.H4, test.ShouldEqual, int16(313))
		test.That(t, c.H5, test.ShouldEqual, int16(50))
		test.That(t, c.H6, test.ShouldEqual, int8(30))
	})

	t.Run("wrong chip id", func(t *testing.T) {
		m := newRegisterMap()
		m.regs[RegChipID] = 0x58
		err := New(m).Init()
		test.That(t, err, test.ShouldEqual, ErrDevNotFound)
		test.That(t, m.delays, test.ShouldHaveLength, 5)
		test.That(t, m.resets, test.ShouldEqual, 0)
	})

	t.Run("bus failure", func(t *testing.T) {
		m := newRegisterMap()
		m.failRead = RegChipID
		test.That(t, New(m).Init(), test.ShouldEqual, ErrCommFail)
	})

	t.Run("nvm copy never finishes", func(t *testing.T) {
		m := newRegisterMap()
		m.busyReads = 100
		test.That(t, New(m).Init(), test.ShouldEqual, ErrNVMCopyFailed)
	})

	t.Run("no interface", func(t *testing.T) {
		test.That(t, New(nil).Init(), test.ShouldEqual, ErrNullPtr)
	})
}

func TestSettings(t *testing.T) {
	m := newRegisterMap()
	d := New(m)
	test.That(t, d.Init(), test.ShouldBeNil)

	settings := Settings{
		OSRHumidity:    Oversampling1x,
		OSRPressure:    Oversampling16x,
		OSRTemperature: Oversampling2x,
		Filter:         FilterCoeff16,
		Standby:        Standby62_5ms,
	}
	test.That(t, d.SetSensorSettings(SelAll, settings), test.ShouldBeNil)
	test.That(t, d.SetSensorMode(ModeNormal), test.ShouldBeNil)

	test.That(t, m.regs[RegCtrlHumidity], test.ShouldEqual, byte(0x01))
	test.That(t, m.regs[RegCtrlMeas], test.ShouldEqual, byte(0x57))
	test.That(t, m.regs[RegConfig], test.ShouldEqual, byte(0x30))
	test.That(t, d.Settings, test.ShouldResemble, settings)

	mode, err := d.SensorMode()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, mode, test.ShouldEqual, ModeNormal)

	readBack, err := d.SensorSettings()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, readBack, test.ShouldResemble, settings)

	t.Run("changing settings in normal mode sleeps first", func(t *testing.T) {
		settings.Filter = FilterOff
		test.That(t, d.SetSensorSettings(SelFilter, settings), test.ShouldBeNil)
		test.That(t, m.regs[RegConfig], test.ShouldEqual, byte(0x20))
		mode, err := d.SensorMode()
		test.That(t, err, test.ShouldBeNil)
		test.That(t, mode, test.ShouldEqual, ModeSleep)
		// oversampling is preserved across the sleep transition
		test.That(t, m.regs[RegCtrlMeas], test.ShouldEqual, byte(0x54))
	})

	t.Run("humidity alone rewrites ctrl_meas", func(t *testing.T) {
		m.writes = map[byte][]byte{}
		test.That(t, d.SetSensorSettings(SelOSRHum, Settings{OSRHumidity: Oversampling4x}), test.ShouldBeNil)
		test.That(t, m.writes[RegCtrlHumidity], test.ShouldResemble, []byte{0x03})
		test.That(t, m.writes[RegCtrlMeas], test.ShouldResemble, []byte{0x54})
	})

	t.Run("write failure", func(t *testing.T) {
		m.failWrites = true
		test.That(t, d.SetSensorMode(ModeNormal), test.ShouldEqual, ErrCommFail)
	})
}

func TestGetSensorData(t *testing.T) {
	m := newRegisterMap()
	m.loadDatasheetCalibration()
	m.setRaw(415148, 519888, 30000)
	d := New(m)
	test.That(t, d.Init(), test.ShouldBeNil)

	data, err := d.GetSensorData(All)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, data.Temperature, test.ShouldAlmostEqual, 25.0825, 0.0001)
	test.That(t, data.Pressure, test.ShouldAlmostEqual, 100653.27, 0.01)
	test.That(t, data.Humidity, test.ShouldAlmostEqual, 55.0007, 0.0001)

	data, err = d.GetSensorData(Temperature)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, data.Temperature, test.ShouldAlmostEqual, 25.0825, 0.0001)
	test.That(t, data.Pressure, test.ShouldEqual, 0.0)
	test.That(t, data.Humidity, test.ShouldEqual, 0.0)

	_, err = d.GetSensorData(0)
	test.That(t, err, test.ShouldEqual, ErrInvalidLen)

	m.failRead = RegData
	_, err = d.GetSensorData(All)
	test.That(t, err, test.ShouldEqual, ErrCommFail)
}

func TestCompensationLimits(t *testing.T) {
	m := newRegisterMap()
	m.loadDatasheetCalibration()
	c := ParseCalibration(m.regs[RegCalibTempPress:], m.regs[RegCalibHumidity:])

	hot := c.Compensate(Uncompensated{Temperature: 1 << 20, Pressure: 0, Humidity: 0xFFFF}, All)
	test.That(t, hot.Temperature, test.ShouldEqual, 85.0)
	test.That(t, hot.Pressure, test.ShouldBeBetweenOrEqual, 30000.0, 110000.0)
	test.That(t, hot.Humidity, test.ShouldBeBetweenOrEqual, 0.0, 100.0)

	cold := c.Compensate(Uncompensated{Temperature: 0, Pressure: 1 << 20, Humidity: 0}, All)
	test.That(t, cold.Temperature, test.ShouldEqual, -40.0)
	test.That(t, cold.Pressure, test.ShouldEqual, 30000.0)
	test.That(t, cold.Humidity, test.ShouldEqual, 0.0)
}

func TestStatus(t *testing.T) {
	test.That(t, ErrCommFail.Error(), test.ShouldContainSubstring, "communication")
	test.That(t, Status(-42).Error(), test.ShouldContainSubstring, "-42")
	var err error = ErrSleepModeFail
	var status Status
	test.That(t, errors.As(err, &status), test.ShouldBeTrue)
	test.That(t, int8(status), test.ShouldEqual, int8(-5))
}
