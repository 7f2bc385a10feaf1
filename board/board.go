package board

import (
	"flag"
	"fmt"
	"time"

	"github.com/antongulenko/golib"
	"github.com/antongulenko/pipad/ads1115"
	"github.com/antongulenko/pipad/ft260"
	"github.com/antongulenko/pipad/keypad"
	"github.com/antongulenko/pipad/mcp23017"
	"github.com/antongulenko/pipad/pca9685"
	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c"
)

const (
	BackendFt260  = "ft260"
	BackendPeriph = "periph"
	BackendDummy  = "dummy"
)

var DefaultBoard = Board{
	Backend:         BackendFt260,
	I2cFreq:         uint(400),
	I2cBus:          "",
	I2cRequestQueue: 20,
	SelectLines:     [keypad.NumSelectLines]string{"ft260:2", "ft260:3", "ft260:4", "ft260:5"},
	IndicatorLine:   "ft260:A",
	PwmFrequency:    1000,
	ScanInterval:    0,
	DummyValue:      2000,
	Adc: AdcConfig{
		Addr:           uint(ads1115.ADDR_GND),
		Inputs:         [keypad.NumBuses]int{0, 1},
		DataRate:       860,
		FullScale:      4096,
		Shift:          3,
		WaitConversion: true,
	},
	Sampler: SamplerConfig{
		Discard: false,
		Samples: 1,
		Settle:  0,
	},
}

type AdcConfig struct {
	Addr           uint                 `yaml:"addr"`
	Inputs         [keypad.NumBuses]int `yaml:"inputs"`     // Single-ended input (0..3) per analog bus
	DataRate       int                  `yaml:"data_rate"`  // Samples per second
	FullScale      int                  `yaml:"full_scale"` // Millivolts
	Shift          uint                 `yaml:"shift"`      // Right shift applied to every conversion result
	WaitConversion bool                 `yaml:"wait_conversion"`
	Timeout        time.Duration        `yaml:"timeout"`
}

type SamplerConfig struct {
	Discard bool          `yaml:"discard"`
	Samples int           `yaml:"samples"`
	Settle  time.Duration `yaml:"settle"`
}

// Board describes the hardware around the keypad and owns all handles to it after Setup.
// Lines are given as "<kind>:<name>", see ParseLine.
type Board struct {
	ConfigFile string `yaml:"-"`

	Backend         string `yaml:"backend"`
	UsbDevice       string `yaml:"usb_device"`
	I2cFreq         uint   `yaml:"i2c_freq"` // kHz
	I2cBus          string `yaml:"i2c_bus"`  // periph bus name, empty for the first one
	I2cRequestQueue int    `yaml:"i2c_request_queue"`
	NoI2cSequencer  bool   `yaml:"no_i2c_sequencer"` // Cleanup is then not serialized with the scanner

	SelectLines   [keypad.NumSelectLines]string `yaml:"select_lines"`
	IndicatorLine string                        `yaml:"indicator_line"`
	PwmFrequency  float64                       `yaml:"pwm_frequency"`

	Adc     AdcConfig     `yaml:"adc"`
	Sampler SamplerConfig `yaml:"sampler"`

	ScanInterval time.Duration `yaml:"scan_interval"`
	DummyValue   int           `yaml:"dummy_value"`

	usb         *ft260.Ft260
	periphBus   i2c.BusCloser
	bus         ft260.I2cBus
	sequencer   *sequencer
	expanders   map[byte]*mcp23017.Expander
	pwmDrivers  map[byte]*pca9685.Driver
	indicatorLn keypad.DigitalLine

	mux       *keypad.Mux
	sampler   *keypad.AveragingSampler
	indicator *keypad.Indicator
}

func (b *Board) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&b.ConfigFile, "config", b.ConfigFile, "YAML file with board configuration. Flags given on the command line take precedence")
	fs.StringVar(&b.Backend, "backend", b.Backend, fmt.Sprintf("Hardware backend, one of: %v, %v, %v", BackendFt260, BackendPeriph, BackendDummy))
	fs.StringVar(&b.UsbDevice, "dev", b.UsbDevice, "Specify a USB path for FT260")
	fs.UintVar(&b.I2cFreq, "freq", b.I2cFreq, "The I2C bus frequency in kHz (60 - 3400)")
	fs.StringVar(&b.I2cBus, "i2c-bus", b.I2cBus, "I2C bus name for the periph backend")
	fs.BoolVar(&b.NoI2cSequencer, "no-i2c-sequencer", b.NoI2cSequencer, "Disable the extra goroutine for sequencing I2C commands. Unsafe with the FT260 backend when a signal triggers cleanup during a scan")
	for i := range b.SelectLines {
		fs.StringVar(&b.SelectLines[i], fmt.Sprintf("sel%v", i), b.SelectLines[i], fmt.Sprintf("Mux select line S%v", i))
	}
	fs.StringVar(&b.IndicatorLine, "indicator", b.IndicatorLine, "Active-low indicator line")
	fs.Float64Var(&b.PwmFrequency, "pwm-freq", b.PwmFrequency, "PWM frequency for PCA9685 indicator lines")
	fs.UintVar(&b.Adc.Addr, "adc", b.Adc.Addr, "I2C address of the ADS1115")
	fs.IntVar(&b.Adc.Inputs[0], "adc-am0", b.Adc.Inputs[0], "ADS1115 input of analog bus am0")
	fs.IntVar(&b.Adc.Inputs[1], "adc-am1", b.Adc.Inputs[1], "ADS1115 input of analog bus am1")
	fs.IntVar(&b.Adc.DataRate, "adc-rate", b.Adc.DataRate, "ADS1115 samples per second")
	fs.IntVar(&b.Adc.FullScale, "adc-scale", b.Adc.FullScale, "ADS1115 full scale range in mV")
	fs.UintVar(&b.Adc.Shift, "adc-shift", b.Adc.Shift, "Right shift of ADS1115 results")
	fs.BoolVar(&b.Sampler.Discard, "discard", b.Sampler.Discard, "Discard the first conversion of every reading")
	fs.IntVar(&b.Sampler.Samples, "samples", b.Sampler.Samples, "Number of averaged conversions per reading")
	fs.DurationVar(&b.Sampler.Settle, "settle", b.Sampler.Settle, "Pause after addressing a channel, before converting")
	fs.DurationVar(&b.ScanInterval, "interval", b.ScanInterval, "Pause between scan cycles")
	fs.IntVar(&b.DummyValue, "dummy-value", b.DummyValue, "Reading of all analog inputs for the dummy backend")
}

func (b *Board) Setup() error {
	switch b.Backend {
	case BackendDummy:
		log.Println("Dummy board: skipping initialization of USB/I2C peripherals")
		b.bus = new(dummyI2cBus)
	case BackendFt260:
		if err := b.setupFt260(); err != nil {
			return err
		}
		b.bus = b.usb
	case BackendPeriph:
		if err := b.setupPeriph(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("Unknown board backend %q", b.Backend)
	}
	if !b.NoI2cSequencer && b.Backend != BackendDummy {
		b.sequencer = newSequencer(b.I2cRequestQueue)
		go b.sequencer.handleRequests()
		b.bus = &sequencedI2cBus{bus: b.bus, sequencer: b.sequencer}
	}

	var selectLines [keypad.NumSelectLines]keypad.DigitalLine
	for i, spec := range b.SelectLines {
		line, err := b.openLine(spec)
		if err != nil {
			return fmt.Errorf("Select line S%v: %v", i, err)
		}
		selectLines[i] = line
	}
	indicator, err := b.openLine(b.IndicatorLine)
	if err != nil {
		return fmt.Errorf("Indicator line: %v", err)
	}
	var analog [keypad.NumBuses]keypad.AnalogLine
	for bus := range analog {
		if analog[bus], err = b.openAnalog(keypad.Bus(bus)); err != nil {
			return err
		}
	}

	b.indicatorLn = indicator
	b.mux = keypad.NewMux(selectLines)
	b.indicator = keypad.NewIndicator(indicator)
	b.sampler = &keypad.AveragingSampler{
		Lines:   analog,
		Discard: b.Sampler.Discard,
		Samples: b.Sampler.Samples,
		Settle:  b.Sampler.Settle,
	}
	log.Println("Successfully initialized keypad peripherals")
	return nil
}

func (b *Board) openAnalog(bus keypad.Bus) (keypad.AnalogLine, error) {
	if b.Backend == BackendDummy {
		return &dummyAnalogLine{name: bus.String(), value: keypad.Value(b.DummyValue)}, nil
	}
	mux, err := ads1115.SingleEndedMux(b.Adc.Inputs[bus])
	if err != nil {
		return nil, fmt.Errorf("Analog bus %v: %v", bus, err)
	}
	gain, err := ads1115.GainConfig(b.Adc.FullScale)
	if err != nil {
		return nil, err
	}
	rate, err := ads1115.DataRateConfig(b.Adc.DataRate)
	if err != nil {
		return nil, err
	}
	return &adcLine{
		channel: &ads1115.Channel{
			Bus:            b.bus,
			Addr:           byte(b.Adc.Addr),
			Mux:            mux,
			Gain:           gain,
			DataRate:       rate,
			WaitConversion: b.Adc.WaitConversion,
			Timeout:        b.Adc.Timeout,
		},
		shift: b.Adc.Shift,
	}, nil
}

func (b *Board) Bus() ft260.I2cBus {
	return b.bus
}

func (b *Board) Mux() *keypad.Mux {
	return b.mux
}

func (b *Board) AnalogSampler() keypad.Sampler {
	return b.sampler
}

func (b *Board) Indicator() *keypad.Indicator {
	return b.indicator
}

// NewScanner calibrates a scanner for the default key layouts.
func (b *Board) NewScanner() (*keypad.Scanner, error) {
	scanner, err := keypad.NewScanner(b.mux, b.sampler, b.indicator, keypad.DefaultLayouts)
	if err != nil {
		return nil, err
	}
	scanner.Interval = b.ScanInterval
	return scanner, nil
}

// Cleanup switches the indicator off and releases the devices. It writes the indicator line
// directly, so it can be called from a different goroutine than the one running the scanner.
// Line drivers with cached state lock it. Device accesses are only serialized by the sequencer,
// so with NoI2cSequencer this must not run concurrently with a scan.
func (b *Board) Cleanup() {
	if b.indicatorLn != nil {
		golib.Printerr(b.indicatorLn.SetLevel(true))
	}
	closeDevice := func() error {
		if b.usb != nil {
			return b.usb.Close()
		}
		if b.periphBus != nil {
			return b.periphBus.Close()
		}
		return nil
	}
	if b.sequencer != nil {
		golib.Printerr(b.sequencer.do(closeDevice))
	} else {
		golib.Printerr(closeDevice())
	}
}

type adcLine struct {
	channel *ads1115.Channel
	shift   uint
}

func (l *adcLine) Convert() (keypad.Value, error) {
	val, err := l.channel.Convert()
	if err != nil {
		return 0, err
	}
	return keypad.Value(val >> l.shift), nil
}
