package ft260

import (
	"errors"
	"fmt"

	"github.com/karalabe/hid"
	log "github.com/sirupsen/logrus"
)

const (
	FTDIVendorId   = 0x0403
	FT260ProductId = 0x6030
)

type Ft260Driver struct {
	Vendor  uint16
	Product uint16
	Path    string // Optional, selects one of multiple connected devices
}

func (d *Ft260Driver) Open() (*Ft260, error) {
	if !hid.Supported() {
		return nil, errors.New("This libray github.com/karalabe/hid is not supported on this platform")
	}
	vendor, product := d.Vendor, d.Product
	if vendor == 0 {
		vendor = FTDIVendorId
	}
	if product == 0 {
		product = FT260ProductId
	}
	devices := hid.Enumerate(vendor, product)
	if d.Path != "" {
		var matching []hid.DeviceInfo
		for _, info := range devices {
			if info.Path == d.Path {
				matching = append(matching, info)
			}
		}
		devices = matching
	}
	if len(devices) == 0 {
		return nil, fmt.Errorf("No USB HID device found with vendorID=%04x productID=%04x path=%q", vendor, product, d.Path)
	}
	if len(devices) > 1 {
		log.Warnf("Multiple devices connected with vendorID=%04x productID=%04x, using first", vendor, product)
	}
	info := devices[0]
	log.Printf("Opening USB HID device %v (USB %v): %v (%04x) from %v (%04x), Release %v",
		info.Path, info.Interface, info.Product, info.ProductID, info.Manufacturer, info.VendorID, info.Release)
	dev, err := info.Open()
	if err != nil {
		return nil, err
	}
	return &Ft260{
		dev: dev,
	}, nil
}

func Open() (*Ft260, error) {
	return (&Ft260Driver{}).Open()
}

func OpenPath(path string) (*Ft260, error) {
	return (&Ft260Driver{Path: path}).Open()
}

// device is the part of *hid.Device used here
type device interface {
	Write(b []byte) (int, error)
	Read(b []byte) (int, error)
	Close() error
}

type Ft260 struct {
	dev device

	gpio       ReportGpio
	gpioLoaded bool
}

func (f *Ft260) Close() error {
	return f.dev.Close()
}

// Reports are marshalled without the leading report ID byte, which is handled by Write and Read.
type ReportIn interface {
	Unmarshall(data []byte) error
	ReportID() byte
	ReportLen() int
}

type ReportOut interface {
	Marshall(data []byte) error
	ReportID() byte
	ReportLen() int
}

// Input reports with a payload of varying length (I2C input)
type variableSizeReport interface {
	IsVariableSize() bool
}

// Input reports that arrive with one of a range of report IDs (I2C input)
type variableIDReport interface {
	AcceptsReportID(id byte) bool
}

func (f *Ft260) Write(input interface{}) error {
	var data []byte
	switch v := input.(type) {
	case []byte:
		data = v
	case ReportOut:
		data = make([]byte, v.ReportLen()+1)
		data[0] = v.ReportID()
		if err := v.Marshall(data[1:]); err != nil {
			return err
		}
	default:
		return fmt.Errorf("Unexpected type for writing to FT260: %T", input)
	}
	n, err := f.dev.Write(data)
	if err == nil && n != len(data) {
		err = fmt.Errorf("ft260: wrong write len (%v instead of %v)", n, len(data))
	}
	return err
}

func (f *Ft260) Read(report ReportIn) error {
	data := make([]byte, report.ReportLen()+1)
	data[0] = report.ReportID()
	n, err := f.dev.Read(data)
	if err != nil {
		return err
	}
	if variable, ok := report.(variableSizeReport); ok && variable.IsVariableSize() {
		if n < 2 {
			return fmt.Errorf("ft260: short read of %v byte", n)
		}
	} else if n != len(data) {
		return fmt.Errorf("ft260: wrong read len (%v instead of %v)", n, len(data))
	}
	if variable, ok := report.(variableIDReport); ok {
		if !variable.AcceptsReportID(data[0]) {
			return fmt.Errorf("Unexpected report id %#02x for %T", data[0], report)
		}
	} else if data[0] != report.ReportID() {
		return fmt.Errorf("Unexpected report id (expected %#02x, received %#02x)", report.ReportID(), data[0])
	}
	return report.Unmarshall(data[1:n])
}

func _readBool(b []byte, index int, e *error) bool {
	if *e == nil {
		val := b[index]
		if val == 0 {
			return false
		} else if val == 1 {
			return true
		} else {
			*e = fmt.Errorf("Expected 0 or 1 for byte at index %v, but got %02x", index, val)
		}
	}
	return false
}
