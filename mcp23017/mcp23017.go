package mcp23017

// IODIR: 0: output, 1: input
// IPOL: 1: GPIO reflects inverted value of the pin
// GPIO: Reading reads pin values. Writing modifies to OLAT.
// OLAT: Output values ("latches")
// GPPU: 1: enable internal pull-up for input pins (100 kOhm)
// Interrupt registers (GPINTEN, DEFVAL, INTCON, INTF, INTCAP) are not used here.

// Register addresses with the BANK bit in IOCON cleared (default): ports A and B are paired.
// Sequential writes starting at a port A register continue with the port B register.
const (
	IODIR_A_PAIRED = byte(iota)
	IODIR_B_PAIRED
	IPOL_A_PAIRED
	IPOL_B_PAIRED
	GPINTEN_A_PAIRED
	GPINTEN_B_PAIRED
	DEFVAL_A_PAIRED
	DEFVAL_B_PAIRED
	INTCON_A_PAIRED
	INTCON_B_PAIRED
	IOCON_PAIRED
	_ // IOCON
	GPPU_A_PAIRED
	GPPU_B_PAIRED
	INTF_A_PAIRED
	INTF_B_PAIRED
	INTCAP_A_PAIRED
	INTCAP_B_PAIRED
	GPIO_A_PAIRED
	GPIO_B_PAIRED
	OLAT_A_PAIRED
	OLAT_B_PAIRED

	IODIR_PAIRED = IODIR_A_PAIRED
	GPIO_PAIRED  = GPIO_A_PAIRED
	OLAT_PAIRED  = OLAT_A_PAIRED
)

const (
	_                = byte(1 << iota)
	IOCON_BIT_INTPOL // 1: INT pins active-high 0: INT pins active-low
	IOCON_BIT_ODR    // (overrides INTPOL) 1: INT pins are open-drain 0: active output (INTPOL sets polarity)
	IOCON_BIT_HAEN   // Enable hardware address pins (zero otherwise)
	IOCON_BIT_DISSLW // 0: slew rate control for SDA output enabled 1: disabled
	IOCON_BIT_SEQOP  // 0: sequential operation enabled 1: disabled (address stays after read/write)
	IOCON_BIT_MIRROR // 0: INT pins not mirrored 1: INT pins mirrored (both high if one is high)
	IOCON_BIT_BANK   // 1: registers grouped in banks 0: registers paired
)

const (
	ADDRESS     = byte(0x20) // 0010 0000
	MAX_ADDRESS = byte(0x27) // 0010 0111

	// Values for IODIR registers
	INPUT  = byte(0xFF)
	OUTPUT = byte(0x00)

	NumPins = 16 // A0..A7 are pins 0..7, B0..B7 are pins 8..15
)
