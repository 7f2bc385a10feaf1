package ft260

import (
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	ReportID_I2CStatus    = 0xC0 // Feature In
	ReportID_I2CRead      = 0xC2 // Output
	ReportID_I2CInOut     = 0xD0 // 0xD0 - 0xDE, Input, Output
	ReportID_I2CInOut_Max = 0xDE

	// Max size of I2C payload in one report: (1 + Report ID - 0xD0) * 4 byte
	I2CMaxPayload = (1 + ReportID_I2CInOut_Max - ReportID_I2CInOut) * 4

	i2cStatusTimeout = 200 * time.Millisecond
)

const (
	I2C_StatusControllerBusy = byte(1 << iota)
	I2C_StatusError
	I2C_StatusNoSlaveAck
	I2C_StatusNoDataAck
	I2C_StatusArbitrationLost
	I2C_StatusControllerIdle
	I2C_StatusBusBusy
)

const (
	I2C_MasterNone         = byte(0x0)
	I2C_MasterStart        = byte(0x2)
	I2C_MasterRepStart     = byte(0x3)
	I2C_MasterStop         = byte(0x4)
	I2C_MasterStartStop    = byte(0x6)
	I2C_MasterRepStartStop = byte(0x7)
)

// I2cBus is implemented by the FT260 and by the host I2C adapter of the board package.
type I2cBus interface {
	I2cWrite(addr byte, data ...byte) error
	I2cRead(addr byte, data []byte) error
	I2cGet(addr byte, registerAddr byte, size int) ([]byte, error)
}

var _ I2cBus = new(Ft260)

// I2cStatusError is returned when the FT260 I2C controller reports a failed transfer
type I2cStatusError struct {
	Addr   byte
	Status byte
}

func (e *I2cStatusError) Error() string {
	switch {
	case e.Status&I2C_StatusNoSlaveAck != 0:
		return fmt.Sprintf("I2C slave %#02x did not acknowledge its address", e.Addr)
	case e.Status&I2C_StatusNoDataAck != 0:
		return fmt.Sprintf("I2C slave %#02x did not acknowledge data", e.Addr)
	case e.Status&I2C_StatusArbitrationLost != 0:
		return fmt.Sprintf("I2C arbitration lost while talking to %#02x", e.Addr)
	default:
		return fmt.Sprintf("I2C error talking to %#02x (status %#02x)", e.Addr, e.Status)
	}
}

// IsNoAck returns true if the error means that no device answered on the addressed slave address
func IsNoAck(err error) bool {
	var statusErr *I2cStatusError
	return errors.As(err, &statusErr) && statusErr.Status&I2C_StatusNoSlaveAck != 0
}

func I2cMasterCodeString(code byte) string {
	switch code {
	case I2C_MasterNone:
		return "Nothing"
	case I2C_MasterStart:
		return "Start"
	case I2C_MasterRepStart:
		return "Repeated Start"
	case I2C_MasterStop:
		return "Stop"
	case I2C_MasterStartStop:
		return "Start + Stop"
	case I2C_MasterRepStartStop:
		return "Repeated Start + Stop"
	default:
		return fmt.Sprintf("Unknown I2C Master code %v", code)
	}
}

// Result of ReportID_I2CStatus Feature In
type ReportI2cStatus struct {
	BusStatus byte   // Bitmask of I2C_Status...
	BusSpeed  uint16 // 2 byte: LSB+MSB
	// 1 reserved
}

func (r *ReportI2cStatus) ReportID() byte {
	return ReportID_I2CStatus
}

func (r *ReportI2cStatus) ReportLen() int {
	return 4
}

func (r *ReportI2cStatus) Unmarshall(b []byte) error {
	r.BusStatus = b[0]
	r.BusSpeed = uint16(b[1]) + uint16(b[2])<<8
	return nil
}

// Data of ReportID_I2CRead Interrupt Out
type OperationI2cRead struct {
	SlaveAddr byte   // 0..127
	Condition byte   // I2C_Master...
	Len       uint16 // data length (little endian)
}

func (r *OperationI2cRead) ReportID() byte {
	return ReportID_I2CRead
}

func (r *OperationI2cRead) ReportLen() int {
	return 4
}

func (r *OperationI2cRead) Marshall(b []byte) error {
	if r.SlaveAddr&0x80 != 0 {
		return fmt.Errorf("Invalid I2C slave address: %02x", r.SlaveAddr)
	}
	b[0] = r.SlaveAddr
	b[1] = r.Condition
	b[2], b[3] = byte(r.Len), byte(r.Len>>8)
	return nil
}

// Data of ReportID_I2CInOut Interrupt Out
type OperationI2cWrite struct {
	SlaveAddr byte // 0..127
	Condition byte // I2C_Master...
	// 1 byte payload len
	Payload []byte
}

func (r *OperationI2cWrite) ReportID() byte {
	return ReportID_I2CInOut + byte(len(r.Payload)-1)/4
}

func (r *OperationI2cWrite) ReportLen() int {
	return (1+int(r.ReportID()-ReportID_I2CInOut))*4 + 3
}

func (r *OperationI2cWrite) Marshall(b []byte) error {
	if len(r.Payload) == 0 || len(r.Payload) > I2CMaxPayload {
		return fmt.Errorf("Payload len %v must be in 1..%v", len(r.Payload), I2CMaxPayload)
	}
	if r.SlaveAddr&0x80 != 0 {
		return fmt.Errorf("Invalid I2C slave address: %02x", r.SlaveAddr)
	}
	b[0] = r.SlaveAddr
	b[1] = r.Condition
	b[2] = byte(len(r.Payload))
	copy(b[3:], r.Payload)
	return nil
}

// Data of ReportID_I2CInOut Interrupt In
type OperationI2cInput struct {
	// 1 byte payload length
	Data []byte // Receives the payload, must be large enough
	N    int    // Number of payload bytes received
}

func (r *OperationI2cInput) IsVariableSize() bool {
	return true
}

func (r *OperationI2cInput) AcceptsReportID(id byte) bool {
	return id >= ReportID_I2CInOut && id <= ReportID_I2CInOut_Max
}

func (r *OperationI2cInput) ReportID() byte {
	// The report ID only indicates the payload size of the incoming report
	return ReportID_I2CInOut
}

func (r *OperationI2cInput) ReportLen() int {
	return I2CMaxPayload + 1 // Max possible report length
}

func (r *OperationI2cInput) Unmarshall(d []byte) error {
	l := int(d[0])
	if len(d) < l+1 {
		return fmt.Errorf("Short I2C read (%v, needed at least %v)", len(d), l+1)
	}
	if l > len(r.Data) {
		return fmt.Errorf("Received %v I2C byte, but expected at most %v", l, len(r.Data))
	}
	r.N = copy(r.Data, d[1:1+l])
	return nil
}

// Split a write into reports of at most I2CMaxPayload byte. The first report starts the transaction,
// the last one stops it if requested.
func i2cSplitTransaction(stop bool, data []byte) (payloads [][]byte, conditions []byte) {
	for start := 0; start < len(data); start += I2CMaxPayload {
		end := start + I2CMaxPayload
		if end > len(data) {
			end = len(data)
		}
		payloads = append(payloads, data[start:end])
		conditions = append(conditions, I2C_MasterNone)
	}
	if len(payloads) == 0 {
		return
	}
	conditions[0] = I2C_MasterStart
	if stop {
		conditions[len(conditions)-1] |= I2C_MasterStop
	}
	return
}

func (f *Ft260) I2cWrite(addr byte, data ...byte) error {
	return f.i2cWrite(addr, true, data)
}

func (f *Ft260) i2cWrite(addr byte, stop bool, data []byte) error {
	payloads, conditions := i2cSplitTransaction(stop, data)
	for i, payload := range payloads {
		log.Tracef("I2C write to %#02x (%v): %#x", addr, I2cMasterCodeString(conditions[i]), payload)
		err := f.Write(&OperationI2cWrite{
			SlaveAddr: addr,
			Condition: conditions[i],
			Payload:   payload,
		})
		if err != nil {
			return err
		}
	}
	return f.waitI2c(addr)
}

func (f *Ft260) I2cRead(addr byte, data []byte) error {
	return f.i2cRead(addr, I2C_MasterStartStop, data)
}

// I2cGet writes the register address and reads the register contents after a repeated start
func (f *Ft260) I2cGet(addr byte, registerAddr byte, size int) ([]byte, error) {
	if err := f.i2cWrite(addr, false, []byte{registerAddr}); err != nil {
		return nil, err
	}
	data := make([]byte, size)
	return data, f.i2cRead(addr, I2C_MasterRepStartStop, data)
}

func (f *Ft260) i2cRead(addr byte, condition byte, data []byte) error {
	if len(data) > 0xFFFF {
		return fmt.Errorf("I2C read of %v byte exceeds maximum of %v", len(data), 0xFFFF)
	}
	err := f.Write(&OperationI2cRead{
		SlaveAddr: addr,
		Condition: condition,
		Len:       uint16(len(data)),
	})
	if err != nil {
		return err
	}
	for received := 0; received < len(data); {
		input := OperationI2cInput{Data: data[received:]}
		if err := f.Read(&input); err != nil {
			if statusErr := f.waitI2c(addr); statusErr != nil {
				return statusErr
			}
			return err
		}
		if input.N == 0 {
			return f.waitI2c(addr)
		}
		received += input.N
	}
	log.Tracef("I2C read from %#02x (%v): %#x", addr, I2cMasterCodeString(condition), data)
	return f.waitI2c(addr)
}

// Poll the controller status until the last transfer completed
func (f *Ft260) waitI2c(addr byte) error {
	deadline := time.Now().Add(i2cStatusTimeout)
	for {
		var status ReportI2cStatus
		if err := f.Read(&status); err != nil {
			return err
		}
		if status.BusStatus&I2C_StatusControllerBusy == 0 {
			if status.BusStatus&(I2C_StatusError|I2C_StatusArbitrationLost) != 0 {
				return &I2cStatusError{Addr: addr, Status: status.BusStatus}
			}
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("I2C controller still busy after %v (status %#02x)", i2cStatusTimeout, status.BusStatus)
		}
	}
}

// I2cScan returns the addresses of all I2C slaves answering a one-byte read.
func I2cScan(bus I2cBus) ([]byte, error) {
	var slaves []byte
	var lastErr error
	buf := make([]byte, 1)
	for addr := byte(0x08); addr <= 0x77; addr++ {
		err := bus.I2cRead(addr, buf)
		if err == nil {
			slaves = append(slaves, addr)
		} else if !IsNoAck(err) {
			log.Debugf("I2C scan: address %#02x: %v", addr, err)
			lastErr = err
		}
	}
	if len(slaves) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return slaves, nil
}
