package board

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const testConfig = `
backend: periph
i2c_bus: "1"
select_lines: ["gpio:GPIO5", "gpio:GPIO6", "gpio:GPIO13", "gpio:GPIO19"]
indicator_line: "pca9685:0x40:15"
adc:
  addr: 0x49
  inputs: [2, 3]
  shift: 4
sampler:
  samples: 4
  settle: 2ms
scan_interval: 10ms
`

func TestParseConfig(t *testing.T) {
	a := assert.New(t)
	b := DefaultBoard
	a.NoError(b.ParseConfig([]byte(testConfig)))
	a.Equal(BackendPeriph, b.Backend)
	a.Equal("1", b.I2cBus)
	a.Equal("gpio:GPIO19", b.SelectLines[3])
	a.Equal("pca9685:0x40:15", b.IndicatorLine)
	a.Equal(uint(0x49), b.Adc.Addr)
	a.Equal([2]int{2, 3}, b.Adc.Inputs)
	a.Equal(uint(4), b.Adc.Shift)
	a.Equal(860, b.Adc.DataRate, "unchanged default")
	a.Equal(4, b.Sampler.Samples)
	a.Equal(2*time.Millisecond, b.Sampler.Settle)
	a.Equal(10*time.Millisecond, b.ScanInterval)
	a.Equal(DefaultBoard.I2cFreq, b.I2cFreq)

	a.NoError(b.ParseConfig(nil))
	a.Equal(BackendPeriph, b.Backend)
	a.Error(b.ParseConfig([]byte("bogus: 1")))
	a.Error(b.ParseConfig([]byte("adc:\n  inputs: [1, 2, 3]")))
}

func TestLoadConfigFlagsOverride(t *testing.T) {
	a := assert.New(t)
	b := DefaultBoard
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	b.RegisterFlags(fs)
	a.NoError(fs.Parse([]string{"-backend", "dummy", "-sel0", "dummy:s0", "-samples", "2"}))

	path := filepath.Join(t.TempDir(), "board.yaml")
	a.NoError(os.WriteFile(path, []byte(testConfig), 0644))
	a.NoError(b.LoadConfig(fs, path))

	a.Equal(BackendDummy, b.Backend)
	a.Equal("dummy:s0", b.SelectLines[0])
	a.Equal("gpio:GPIO6", b.SelectLines[1])
	a.Equal(2, b.Sampler.Samples)
	a.Equal(2*time.Millisecond, b.Sampler.Settle)
	a.Equal(uint(0x49), b.Adc.Addr)

	a.Error(b.LoadConfig(fs, filepath.Join(t.TempDir(), "missing.yaml")))
}
