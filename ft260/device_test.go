package ft260

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeDevice records written reports and answers reads from a queue of prepared reports
type fakeDevice struct {
	written [][]byte
	reads   [][]byte
	closed  bool
}

func (d *fakeDevice) Write(b []byte) (int, error) {
	d.written = append(d.written, append([]byte(nil), b...))
	return len(b), nil
}

func (d *fakeDevice) Read(b []byte) (int, error) {
	if len(d.reads) == 0 {
		return 0, errors.New("no more reports")
	}
	n := copy(b, d.reads[0])
	d.reads = d.reads[1:]
	return n, nil
}

func (d *fakeDevice) Close() error {
	d.closed = true
	return nil
}

func (d *fakeDevice) queue(reports ...[]byte) {
	d.reads = append(d.reads, reports...)
}

func i2cStatus(status byte) []byte {
	return []byte{ReportID_I2CStatus, status, 0x90, 0x01, 0}
}

func TestGpioNames(t *testing.T) {
	a := assert.New(t)
	f := &Ft260{dev: new(fakeDevice)}
	test := func(name string, mask byte, ex bool) {
		pin, err := f.Gpio(name)
		if a.NoError(err, name) {
			a.Equal(mask, pin.mask, name)
			a.Equal(ex, pin.ex, name)
		}
	}
	test("2", 0x04, false)
	test("5", 0x20, false)
	test("A", 0x01, true)
	test("g", 0x40, true)
	test("H", 0x80, true)

	for _, invalid := range []string{"0", "1", "6", "I", "", "AB"} {
		_, err := f.Gpio(invalid)
		a.Error(err, invalid)
	}
}

func TestGpioSetLevel(t *testing.T) {
	a := assert.New(t)
	dev := new(fakeDevice)
	f := &Ft260{dev: dev}
	dev.queue([]byte{ReportID_GPIO, 0x00, 0x00, 0x00, 0x00})

	pin2, _ := f.Gpio("2")
	pinA, _ := f.Gpio("A")
	a.NoError(pin2.SetLevel(true))
	a.NoError(pinA.SetLevel(false))
	a.NoError(pinA.SetLevel(false)) // Unchanged, not written
	a.NoError(pin2.SetLevel(false))

	a.Equal([][]byte{
		{ReportID_GPIO, 0x04, 0x04, 0x00, 0x00},
		{ReportID_GPIO, 0x04, 0x04, 0x00, 0x01},
		{ReportID_GPIO, 0x00, 0x04, 0x00, 0x01},
	}, dev.written)
}

func TestI2cWrite(t *testing.T) {
	a := assert.New(t)
	dev := new(fakeDevice)
	f := &Ft260{dev: dev}
	dev.queue(i2cStatus(I2C_StatusControllerBusy), i2cStatus(I2C_StatusControllerIdle))

	a.NoError(f.I2cWrite(0x48, 0x01, 0xC3, 0x83))
	a.Equal([][]byte{
		{ReportID_I2CInOut, 0x48, I2C_MasterStartStop, 3, 0x01, 0xC3, 0x83, 0},
	}, dev.written)
	a.Empty(dev.reads)
}

func TestI2cNoAck(t *testing.T) {
	a := assert.New(t)
	dev := new(fakeDevice)
	f := &Ft260{dev: dev}
	dev.queue(i2cStatus(I2C_StatusError | I2C_StatusNoSlaveAck | I2C_StatusControllerIdle))

	err := f.I2cWrite(0x20, 0x00)
	a.Error(err)
	a.True(IsNoAck(err))
	a.False(IsNoAck(errors.New("other")))
}

func TestI2cGet(t *testing.T) {
	a := assert.New(t)
	dev := new(fakeDevice)
	f := &Ft260{dev: dev}
	dev.queue(
		i2cStatus(I2C_StatusControllerIdle),
		[]byte{ReportID_I2CInOut, 2, 0x12, 0x34, 0, 0},
		i2cStatus(I2C_StatusControllerIdle),
	)

	data, err := f.I2cGet(0x48, 0x00, 2)
	a.NoError(err)
	a.Equal([]byte{0x12, 0x34}, data)
	a.Equal([][]byte{
		{ReportID_I2CInOut, 0x48, I2C_MasterStart, 1, 0x00, 0, 0, 0},
		{ReportID_I2CRead, 0x48, I2C_MasterRepStartStop, 2, 0},
	}, dev.written)
}

func TestReadChipCode(t *testing.T) {
	a := assert.New(t)
	dev := new(fakeDevice)
	f := &Ft260{dev: dev}
	dev.queue([]byte{ReportID_ChipCode, 0x02, 0x60, 0x02, 0x00, 0, 0, 0, 0, 0, 0, 0, 0})

	var code ReportChipCode
	a.NoError(f.Read(&code))
	a.Equal(FT260_CHIP_CODE, code.ChipCode)

	// Wrong report ID
	dev.queue([]byte{ReportID_SystemSetting, 0x02, 0x60, 0x02, 0x00, 0, 0, 0, 0, 0, 0, 0, 0})
	a.Error(f.Read(&code))
}

func TestSetSystemStatus(t *testing.T) {
	a := assert.New(t)
	dev := new(fakeDevice)
	f := &Ft260{dev: dev}

	a.NoError(f.Write(&SetSystemStatus{Request: SetSystemSetting_I2CSetClock, Value: uint16(400)}))
	a.NoError(f.Write(&SetSystemStatus{Request: SetSystemSetting_EnableWakeupInt, Value: false}))
	a.NoError(f.Write(&SetSystemStatus{Request: SetSystemSetting_I2CReset}))
	a.Error(f.Write(&SetSystemStatus{Request: SetSystemSetting_Clock, Value: 2}))
	a.Equal([][]byte{
		{ReportID_SystemSetting, SetSystemSetting_I2CSetClock, 0x90, 0x01},
		{ReportID_SystemSetting, SetSystemSetting_EnableWakeupInt, 0},
		{ReportID_SystemSetting, SetSystemSetting_I2CReset},
	}, dev.written)
	a.NoError(f.Close())
	a.True(dev.closed)
}
