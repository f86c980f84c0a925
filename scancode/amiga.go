package scancode

import "github.com/kbconv/converter/keycode"

// amigaTable maps the Amiga's native 7-bit key code (raw byte right-shifted
// by one, per the Hardware Reference Manual's bit layout) to an interface
// code. Amiga numbering bears little resemblance to the PC scancode sets,
// so this table is independent of the Set1/Set2/Set3 ones.
var amigaTable = map[byte]keycode.Code{
	0x00: keycode.IfaceGrave,
	0x01: keycode.Iface1,
	0x02: keycode.Iface2,
	0x03: keycode.Iface3,
	0x04: keycode.Iface4,
	0x05: keycode.Iface5,
	0x06: keycode.Iface6,
	0x07: keycode.Iface7,
	0x08: keycode.Iface8,
	0x09: keycode.Iface9,
	0x0A: keycode.Iface0,
	0x0B: keycode.IfaceMinus,
	0x0C: keycode.IfaceEqual,
	0x0D: keycode.IfaceBackslash,
	0x10: keycode.IfaceQ,
	0x11: keycode.IfaceW,
	0x12: keycode.IfaceE,
	0x13: keycode.IfaceR,
	0x14: keycode.IfaceT,
	0x15: keycode.IfaceY,
	0x16: keycode.IfaceU,
	0x17: keycode.IfaceI,
	0x18: keycode.IfaceO,
	0x19: keycode.IfaceP,
	0x1A: keycode.IfaceLBracket,
	0x1B: keycode.IfaceRBracket,
	0x1E: keycode.IfaceA,
	0x1F: keycode.IfaceS,
	0x20: keycode.IfaceD,
	0x21: keycode.IfaceF,
	0x22: keycode.IfaceG,
	0x23: keycode.IfaceH,
	0x24: keycode.IfaceJ,
	0x25: keycode.IfaceK,
	0x26: keycode.IfaceL,
	0x27: keycode.IfaceSemicolon,
	0x28: keycode.IfaceQuote,
	0x31: keycode.IfaceZ,
	0x32: keycode.IfaceX,
	0x33: keycode.IfaceC,
	0x34: keycode.IfaceV,
	0x35: keycode.IfaceB,
	0x36: keycode.IfaceN,
	0x37: keycode.IfaceM,
	0x38: keycode.IfaceComma,
	0x39: keycode.IfacePeriod,
	0x3A: keycode.IfaceSlash,
	0x40: keycode.IfaceSpace,
	0x41: keycode.IfaceBackspace,
	0x42: keycode.IfaceTab,
	0x43: keycode.IfaceKPEnter,
	0x44: keycode.IfaceEnter,
	0x45: keycode.IfaceEsc,
	0x46: keycode.IfaceDelete,
	0x4C: keycode.IfaceUp,
	0x4D: keycode.IfaceDown,
	0x4E: keycode.IfaceRight,
	0x4F: keycode.IfaceLeft,
	0x50: keycode.IfaceF1,
	0x51: keycode.IfaceF2,
	0x52: keycode.IfaceF3,
	0x53: keycode.IfaceF4,
	0x54: keycode.IfaceF5,
	0x55: keycode.IfaceF6,
	0x56: keycode.IfaceF7,
	0x57: keycode.IfaceF8,
	0x58: keycode.IfaceF9,
	0x59: keycode.IfaceF10,
	0x5A: keycode.IfaceKP9, // numpad "("
	0x5B: keycode.IfaceKP0, // numpad ")"
	0x5C: keycode.IfaceKPSlash,
	0x5D: keycode.IfaceKPStar,
	0x5E: keycode.IfaceKPPlus,
	0x5F: keycode.IfaceKPMinus,
	0x60: keycode.IfaceLShift,
	0x61: keycode.IfaceRShift,
	0x62: keycode.IfaceCapsLock,
	0x63: keycode.IfaceLCtrl,
	0x64: keycode.IfaceLAlt,
	0x65: keycode.IfaceRAlt,
	0x66: keycode.IfaceLGUI,
	0x67: keycode.IfaceRGUI,
}

// Amiga special full-byte codes, sent outside the normal 7-bit-code +
// up/down-flag convention.
const (
	amigaLastCodeBad   byte = 0xF9
	amigaBufferOverflow byte = 0xFA
	amigaSelfTestFailed byte = 0xFC
	amigaPowerUpStart   byte = 0xFD
	amigaPowerUpEnd     byte = 0xFE
)

// Amiga decodes the native Amiga keyboard code space: bits 7-1 are the key
// code, bit 0 is the up/down flag (0 = pressed, 1 = released), per the
// Hardware Reference Manual. A handful of full-byte values outside that
// convention report link-level conditions (lost sync, buffer overflow,
// power-up boundaries) rather than key events and are swallowed here, since
// they carry no keymap meaning.
type Amiga struct{}

func (d *Amiga) Reset() {}

func (d *Amiga) Feed(b byte) (keycode.Event, bool) {
	switch b {
	case amigaLastCodeBad, amigaBufferOverflow, amigaSelfTestFailed, amigaPowerUpStart, amigaPowerUpEnd:
		return keycode.Event{}, false
	}
	code := b >> 1
	released := b&0x01 != 0
	iface, ok := amigaTable[code]
	if !ok {
		return keycode.Event{}, false
	}
	edge := keycode.Make
	if released {
		edge = keycode.Break
	}
	return keycode.Event{Code: iface, Edge: edge}, true
}

var _ Decoder = (*Amiga)(nil)
