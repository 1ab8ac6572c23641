package driver

import "encoding/binary"

// Calibration holds the trimming parameters burned into the sensor.
type Calibration struct {
	T1 uint16
	T2 int16
	T3 int16

	P1 uint16
	P2 int16
	P3 int16
	P4 int16
	P5 int16
	P6 int16
	P7 int16
	P8 int16
	P9 int16

	H1 uint8
	H2 int16
	H3 uint8
	H4 int16
	H5 int16
	H6 int8
}

// ParseCalibration decodes the 26 byte block at RegCalibTempPress and the 7 byte block at
// RegCalibHumidity.
func ParseCalibration(tp, h []byte) Calibration {
	le := binary.LittleEndian
	return Calibration{
		T1: le.Uint16(tp[0:]),
		T2: int16(le.Uint16(tp[2:])),
		T3: int16(le.Uint16(tp[4:])),
		P1: le.Uint16(tp[6:]),
		P2: int16(le.Uint16(tp[8:])),
		P3: int16(le.Uint16(tp[10:])),
		P4: int16(le.Uint16(tp[12:])),
		P5: int16(le.Uint16(tp[14:])),
		P6: int16(le.Uint16(tp[16:])),
		P7: int16(le.Uint16(tp[18:])),
		P8: int16(le.Uint16(tp[20:])),
		P9: int16(le.Uint16(tp[22:])),
		// tp[24] is reserved
		H1: tp[25],
		H2: int16(le.Uint16(h[0:])),
		H3: h[2],
		H4: int16(int8(h[3]))*16 | int16(h[4]&0x0F),
		H5: int16(int8(h[5]))*16 | int16(h[4]>>4),
		H6: int8(h[6]),
	}
}

// Compensation limits from the datasheet.
const (
	temperatureMin = -40.0
	temperatureMax = 85.0
	pressureMin    = 30000.0
	pressureMax    = 110000.0
	humidityMin    = 0.0
	humidityMax    = 100.0
)

// Compensate converts a raw measurement to physical units.
func (c *Calibration) Compensate(u Uncompensated, components byte) Data {
	temperature, tFine := c.temperature(u.Temperature)
	data := Data{Temperature: temperature}
	if components&Pressure != 0 {
		data.Pressure = c.pressure(u.Pressure, tFine)
	}
	if components&Humidity != 0 {
		data.Humidity = c.humidity(u.Humidity, tFine)
	}
	return data
}

func (c *Calibration) temperature(adc uint32) (float64, float64) {
	var1 := float64(adc)/16384.0 - float64(c.T1)/1024.0
	var1 *= float64(c.T2)
	var2 := float64(adc)/131072.0 - float64(c.T1)/8192.0
	var2 = var2 * var2 * float64(c.T3)
	tFine := var1 + var2
	return clamp(tFine/5120.0, temperatureMin, temperatureMax), tFine
}

func (c *Calibration) pressure(adc uint32, tFine float64) float64 {
	var1 := tFine/2.0 - 64000.0
	var2 := var1 * var1 * float64(c.P6) / 32768.0
	var2 += var1 * float64(c.P5) * 2.0
	var2 = var2/4.0 + float64(c.P4)*65536.0
	var3 := float64(c.P3) * var1 * var1 / 524288.0
	var1 = (var3 + float64(c.P2)*var1) / 524288.0
	var1 = (1.0 + var1/32768.0) * float64(c.P1)
	if var1 <= 0 {
		// avoid dividing by zero
		return pressureMin
	}
	p := 1048576.0 - float64(adc)
	p = (p - var2/4096.0) * 6250.0 / var1
	var1 = float64(c.P9) * p * p / 2147483648.0
	var2 = p * float64(c.P8) / 32768.0
	p += (var1 + var2 + float64(c.P7)) / 16.0
	return clamp(p, pressureMin, pressureMax)
}

func (c *Calibration) humidity(adc uint32, tFine float64) float64 {
	var1 := tFine - 76800.0
	var2 := float64(c.H4)*64.0 + float64(c.H5)/16384.0*var1
	var3 := float64(adc) - var2
	var4 := float64(c.H2) / 65536.0
	var5 := 1.0 + float64(c.H3)/67108864.0*var1
	var6 := 1.0 + float64(c.H6)/67108864.0*var1*var5
	var6 = var3 * var4 * var5 * var6
	h := var6 * (1.0 - float64(c.H1)*var6/524288.0)
	return clamp(h, humidityMin, humidityMax)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
