package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLine(t *testing.T) {
	a := assert.New(t)
	check := func(spec string, expected LineSpec) {
		res, err := ParseLine(spec)
		a.NoError(err, spec)
		a.Equal(expected, res, spec)
	}
	check("ft260:A", LineSpec{Kind: LineFt260, Name: "A"})
	check("gpio:GPIO17", LineSpec{Kind: LineGpio, Name: "GPIO17"})
	check("dummy:sel0", LineSpec{Kind: LineDummy, Name: "sel0"})
	check("mcp23017:0x21:9", LineSpec{Kind: LineMcp23017, Name: "0x21:9", Addr: 0x21, Index: 9})
	check("pca9685:64:15", LineSpec{Kind: LinePca9685, Name: "64:15", Addr: 0x40, Index: 15})

	for _, invalid := range []string{"", "ft260", "ft260:", "gpio:a:b", "mcp23017:0x20", "mcp23017:0x200:1", "pca9685:0x40:x", "uart:1"} {
		_, err := ParseLine(invalid)
		a.Error(err, invalid)
	}
}

func TestLineSpecString(t *testing.T) {
	a := assert.New(t)
	spec, err := ParseLine("mcp23017:33:2")
	a.NoError(err)
	a.Equal("mcp23017:0x21:2", spec.String())
	spec, err = ParseLine("ft260:3")
	a.NoError(err)
	a.Equal("ft260:3", spec.String())
}
