package ft260

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestI2cSplitTransaction(t *testing.T) {
	a := assert.New(t)
	test := func(stop bool, data []byte, expectedPayload [][]byte, expectedConditions []byte) {
		payload, conditions := i2cSplitTransaction(stop, data)
		a.Equal(expectedPayload, payload, "Payload differs (%v byte, stop %v)", len(data), stop)
		a.Equal(expectedConditions, conditions, "Conditions differ (%v byte, stop %v)", len(data), stop)
	}

	for _, stop := range []bool{true, false} {
		test(stop, nil, nil, nil)
		test(stop, []byte{}, nil, nil)
	}
	test(true, []byte{0x48}, [][]byte{{0x48}}, []byte{I2C_MasterStartStop})
	test(false, []byte{0x48}, [][]byte{{0x48}}, []byte{I2C_MasterStart})

	data := make([]byte, 130)
	for i := range data {
		data[i] = byte(i + 10)
	}
	chunks := func(n int) (res [][]byte) {
		for start := 0; start < n; start += I2CMaxPayload {
			end := start + I2CMaxPayload
			if end > n {
				end = n
			}
			res = append(res, data[start:end])
		}
		return
	}

	// Single report
	for _, n := range []int{59, 60} {
		test(true, data[:n], chunks(n), []byte{I2C_MasterStartStop})
		test(false, data[:n], chunks(n), []byte{I2C_MasterStart})
	}
	// Two reports
	for _, n := range []int{61, 119, 120} {
		test(true, data[:n], chunks(n), []byte{I2C_MasterStart, I2C_MasterStop})
		test(false, data[:n], chunks(n), []byte{I2C_MasterStart, I2C_MasterNone})
	}
	// Three reports
	for _, n := range []int{121, 130} {
		test(true, data[:n], chunks(n), []byte{I2C_MasterStart, I2C_MasterNone, I2C_MasterStop})
		test(false, data[:n], chunks(n), []byte{I2C_MasterStart, I2C_MasterNone, I2C_MasterNone})
	}
	a.Len(chunks(130)[2], 10)
}

func TestI2cWriteReportSize(t *testing.T) {
	a := assert.New(t)
	test := func(payloadLen int, expectedID byte, expectedLen int) {
		r := &OperationI2cWrite{SlaveAddr: 0x20, Payload: make([]byte, payloadLen)}
		a.Equal(expectedID, r.ReportID(), "report ID for %v byte", payloadLen)
		a.Equal(expectedLen, r.ReportLen(), "report len for %v byte", payloadLen)
	}
	test(1, 0xD0, 7)
	test(4, 0xD0, 7)
	test(5, 0xD1, 11)
	test(3, 0xD0, 7)
	test(60, 0xDE, 63)

	b := make([]byte, 7)
	a.NoError((&OperationI2cWrite{SlaveAddr: 0x48, Condition: I2C_MasterStartStop, Payload: []byte{1, 0xD3}}).Marshall(b))
	a.Equal([]byte{0x48, I2C_MasterStartStop, 2, 1, 0xD3, 0, 0}, b)
	a.Error((&OperationI2cWrite{SlaveAddr: 0x80, Payload: []byte{1}}).Marshall(b))
	a.Error((&OperationI2cWrite{SlaveAddr: 0x48}).Marshall(b))
}

func TestI2cInputReport(t *testing.T) {
	a := assert.New(t)
	r := &OperationI2cInput{Data: make([]byte, 2)}
	a.True(r.AcceptsReportID(0xD0))
	a.True(r.AcceptsReportID(0xDE))
	a.False(r.AcceptsReportID(0xC0))

	a.NoError(r.Unmarshall([]byte{2, 0x7F, 0xF0, 0, 0}))
	a.Equal(2, r.N)
	a.Equal([]byte{0x7F, 0xF0}, r.Data)
	a.Error(r.Unmarshall([]byte{3, 1, 2, 3}), "more data than requested")
	a.Error(r.Unmarshall([]byte{2, 1}), "short report")
}

func TestI2cStatusError(t *testing.T) {
	a := assert.New(t)
	noAck := &I2cStatusError{Addr: 0x21, Status: I2C_StatusError | I2C_StatusNoSlaveAck}
	a.True(IsNoAck(noAck))
	a.True(IsNoAck(fmt.Errorf("wrapped: %w", noAck)))
	a.Equal("I2C slave 0x21 did not acknowledge its address", noAck.Error())

	noData := &I2cStatusError{Addr: 0x21, Status: I2C_StatusError | I2C_StatusNoDataAck}
	a.False(IsNoAck(noData))
	a.False(IsNoAck(fmt.Errorf("I2C failure")))
	a.Equal("Repeated Start + Stop", I2cMasterCodeString(I2C_MasterRepStartStop))
}
