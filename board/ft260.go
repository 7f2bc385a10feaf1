package board

import (
	"errors"
	"fmt"

	"github.com/antongulenko/pipad/ft260"
)

func (b *Board) setupFt260() error {
	usb, err := ft260.OpenPath(b.UsbDevice)
	if err != nil {
		return err
	}
	b.usb = usb

	// Configure and validate system settings
	if err := validateFt260ChipCode(usb); err != nil {
		return err
	}
	if err := configureFt260(usb, b.I2cFreq); err != nil {
		return err
	}
	return validateFt260(usb, b.I2cFreq)
}

func validateFt260ChipCode(usb *ft260.Ft260) error {
	var code ft260.ReportChipCode
	if err := usb.Read(&code); err != nil {
		return err
	}
	if code.ChipCode != ft260.FT260_CHIP_CODE {
		return fmt.Errorf("Unexpected chip code %08x (expected %08x)", code.ChipCode, ft260.FT260_CHIP_CODE)
	}
	return nil
}

func configureFt260(usb *ft260.Ft260, i2cFreq uint) (err error) {
	write := func(address byte, val interface{}) {
		if err == nil {
			err = usb.Write(&ft260.SetSystemStatus{
				Request: address,
				Value:   val,
			})
		}
	}
	write(ft260.SetSystemSetting_Clock, ft260.Clock48MHz)
	write(ft260.SetSystemSetting_I2CReset, nil) // Reset i2c bus in case it was disturbed
	write(ft260.SetSystemSetting_I2CSetClock, uint16(i2cFreq))
	write(ft260.SetSystemSetting_Uart, ft260.UartOff) // Frees GPIO 4, 5 and B..F
	write(ft260.SetSystemSetting_GPIO_2, ft260.GPIO_2_Normal)
	write(ft260.SetSystemSetting_GPIO_A, ft260.GPIO_A_Normal)
	write(ft260.SetSystemSetting_GPIO_G, ft260.GPIO_G_Normal)
	write(ft260.SetSystemSetting_EnableWakeupInt, false) // Frees GPIO 3
	return
}

func validateFt260(usb *ft260.Ft260, i2cFreq uint) error {
	var status ft260.ReportSystemStatus
	if err := usb.Read(&status); err != nil {
		return err
	}
	if err := checkFt260Status(&status); err != nil {
		return err
	}
	var i2cStatus ft260.ReportI2cStatus
	if err := usb.Read(&i2cStatus); err != nil {
		return err
	}
	if i2cStatus.BusSpeed != uint16(i2cFreq) {
		return fmt.Errorf("FT260: unexpected I2C bus speed %v (expected %v)", i2cStatus.BusSpeed, i2cFreq)
	}
	return nil
}

func checkFt260Status(status *ft260.ReportSystemStatus) error {
	if status.Clock != ft260.Clock48MHz {
		return fmt.Errorf("FT260: unexpected clock value %02x (expected %02x)", status.Clock, ft260.Clock48MHz)
	}
	if status.UartMode != ft260.UartOff {
		return fmt.Errorf("FT260: unexpected UART mode %02x (expected %02x)", status.UartMode, ft260.UartOff)
	}
	if status.GPIO2Function != ft260.GPIO_2_Normal {
		return fmt.Errorf("FT260: unexpected GPIO 2 function %02x (expected %02x)", status.GPIO2Function, ft260.GPIO_2_Normal)
	}
	if status.GPIOAFunction != ft260.GPIO_A_Normal {
		return fmt.Errorf("FT260: unexpected GPIO A function %02x (expected %02x)", status.GPIOAFunction, ft260.GPIO_A_Normal)
	}
	if status.GPIOGFunction != ft260.GPIO_G_Normal {
		return fmt.Errorf("FT260: unexpected GPIO G function %02x (expected %02x)", status.GPIOGFunction, ft260.GPIO_G_Normal)
	}
	if status.EnableWakeupInt {
		return errors.New("FT260: wakeup interrupt is still enabled")
	}
	if status.Suspended {
		return errors.New("FT260: device is suspended")
	}
	if !status.PowerStatus {
		return errors.New("FT260: device is powered off")
	}
	if !status.I2CEnable {
		return errors.New("FT260: I2C is not enabled on the device")
	}
	return nil
}
