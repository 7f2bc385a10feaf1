package keypad

import "fmt"

// KeyCode is the USB HID usage code (keyboard page) of a logical key.
type KeyCode byte

const (
	NoKey = KeyCode(0x00) // Marks a channel without a key

	NumLock    = KeyCode(0x53)
	KpSlash    = KeyCode(0x54)
	KpAsterisk = KeyCode(0x55)
	KpMinus    = KeyCode(0x56)
	KpPlus     = KeyCode(0x57)
	KpEnter    = KeyCode(0x58)
	Kp1        = KeyCode(0x59)
	Kp2        = KeyCode(0x5A)
	Kp3        = KeyCode(0x5B)
	Kp4        = KeyCode(0x5C)
	Kp5        = KeyCode(0x5D)
	Kp6        = KeyCode(0x5E)
	Kp7        = KeyCode(0x5F)
	Kp8        = KeyCode(0x60)
	Kp9        = KeyCode(0x61)
	Kp0        = KeyCode(0x62)
	KpDot      = KeyCode(0x63)
)

var keyNames = map[KeyCode]string{
	NoKey:      "None",
	NumLock:    "NumLock",
	KpSlash:    "KpSlash",
	KpAsterisk: "KpAsterisk",
	KpMinus:    "KpMinus",
	KpPlus:     "KpPlus",
	KpEnter:    "KpEnter",
	Kp1:        "Kp1",
	Kp2:        "Kp2",
	Kp3:        "Kp3",
	Kp4:        "Kp4",
	Kp5:        "Kp5",
	Kp6:        "Kp6",
	Kp7:        "Kp7",
	Kp8:        "Kp8",
	Kp9:        "Kp9",
	Kp0:        "Kp0",
	KpDot:      "KpDot",
}

func (k KeyCode) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Key(%#02x)", byte(k))
}

// Layout maps every multiplexer channel of one analog bus to a key. Unused channels hold NoKey.
type Layout [NumChannels]KeyCode

// Populated returns true if the given channel has a key attached.
func (l *Layout) Populated(channel int) bool {
	return l[channel] != NoKey
}

// Physical wiring of the pipad number block.
var (
	Bus0Layout = Layout{
		Kp0, Kp1, Kp4, NoKey,
		NoKey, NoKey, Kp7, NumLock,
		KpSlash, Kp8, NoKey, NoKey,
		NoKey, NoKey, Kp5, Kp2,
	}
	Bus1Layout = Layout{
		KpDot, Kp3, Kp6, NoKey,
		NoKey, NoKey, Kp9, KpAsterisk,
		KpMinus, NoKey, NoKey, NoKey,
		NoKey, NoKey, KpPlus, KpEnter,
	}

	DefaultLayouts = [NumBuses]Layout{Bus0Layout, Bus1Layout}
)
