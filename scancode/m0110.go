package scancode

import "github.com/kbconv/converter/keycode"

type m0110State uint8

const (
	m0110Init m0110State = iota
	m0110Nav           // saw the 0x79 navigation-cluster prefix
	m0110P71           // saw 0x71, awaiting 0x79 to confirm the keypad-alternate prefix
	m0110Keypad        // saw 0x71 0x79, awaiting the keypad key byte
)

// m0110BaseTable maps an un-prefixed M0110 key code (bits 6-1 of the
// response byte) to an interface code.
var m0110BaseTable = map[byte]keycode.Code{
	0x00: keycode.IfaceA,
	0x01: keycode.IfaceS,
	0x02: keycode.IfaceD,
	0x03: keycode.IfaceF,
	0x04: keycode.IfaceH,
	0x05: keycode.IfaceG,
	0x06: keycode.IfaceZ,
	0x07: keycode.IfaceX,
	0x08: keycode.IfaceC,
	0x09: keycode.IfaceV,
	0x0B: keycode.IfaceB,
	0x0C: keycode.IfaceQ,
	0x0D: keycode.IfaceW,
	0x0E: keycode.IfaceE,
	0x0F: keycode.IfaceR,
	0x10: keycode.IfaceY,
	0x11: keycode.IfaceT,
	0x12: keycode.Iface1,
	0x13: keycode.Iface2,
	0x14: keycode.Iface3,
	0x15: keycode.Iface4,
	0x16: keycode.Iface6,
	0x17: keycode.Iface5,
	0x18: keycode.IfaceEqual,
	0x19: keycode.Iface9,
	0x1A: keycode.Iface7,
	0x1B: keycode.IfaceMinus,
	0x1C: keycode.Iface8,
	0x1D: keycode.Iface0,
	0x1E: keycode.IfaceRBracket,
	0x1F: keycode.IfaceO,
	0x20: keycode.IfaceU,
	0x21: keycode.IfaceLBracket,
	0x22: keycode.IfaceI,
	0x23: keycode.IfaceP,
	0x24: keycode.IfaceEnter,
	0x25: keycode.IfaceL,
	0x26: keycode.IfaceJ,
	0x27: keycode.IfaceQuote,
	0x28: keycode.IfaceK,
	0x29: keycode.IfaceSemicolon,
	0x2A: keycode.IfaceBackslash,
	0x2B: keycode.IfaceComma,
	0x2C: keycode.IfaceSlash,
	0x2D: keycode.IfaceN,
	0x2E: keycode.IfaceM,
	0x2F: keycode.IfacePeriod,
	0x30: keycode.IfaceTab,
	0x31: keycode.IfaceSpace,
	0x32: keycode.IfaceGrave,
	0x33: keycode.IfaceBackspace,
	0x35: keycode.IfaceEsc,
	0x37: keycode.IfaceLGUI,
	0x38: keycode.IfaceLShift,
	0x39: keycode.IfaceCapsLock,
	0x3A: keycode.IfaceLAlt,
	0x36: keycode.IfaceLCtrl,
}

// m0110NavTable maps the key code following a bare 0x79 prefix to an
// interface code — the M0110A's arrow and navigation cluster, which the
// base M0110 protocol has no codes for at all.
var m0110NavTable = map[byte]keycode.Code{
	0x0D: keycode.IfaceUp,
	0x01: keycode.IfaceDown,
	0x04: keycode.IfaceLeft,
	0x05: keycode.IfaceRight,
	0x0B: keycode.IfaceHome,
	0x19: keycode.IfaceEnd,
}

// m0110KeypadTable maps the key code following the 0x71 0x79 prefix pair to
// an interface code — the M0110A's numeric keypad, added after the base
// M0110's fixed 58-key layout was finalized.
var m0110KeypadTable = map[byte]keycode.Code{
	0x00: keycode.IfaceKP0,
	0x01: keycode.IfaceKP1,
	0x02: keycode.IfaceKP2,
	0x03: keycode.IfaceKP3,
	0x04: keycode.IfaceKP4,
	0x05: keycode.IfaceKP5,
	0x06: keycode.IfaceKP6,
	0x07: keycode.IfaceKP7,
	0x08: keycode.IfaceKP8,
	0x09: keycode.IfaceKP9,
	0x0A: keycode.IfaceKPDot,
	0x0B: keycode.IfaceKPPlus,
	0x0C: keycode.IfaceKPMinus,
	0x0D: keycode.IfaceKPStar,
	0x0E: keycode.IfaceKPSlash,
	0x0F: keycode.IfaceKPEnter,
}

// M0110 decodes the M0110/M0110A 1-byte-response protocol. Every response
// byte has bit 0 set (a framing marker, which neither the wire layer's
// readByte nor this decoder checks) and bit 7 as the up/down flag; bits 6-1 carry the key
// code. wire.M0110NullResponse (no event pending) and the 0x79 / 0x71 0x79
// lookup-table-select prefixes are the only bytes that do not themselves
// decode to a key.
type M0110 struct {
	state m0110State
}

func (d *M0110) Reset() { d.state = m0110Init }

const m0110NullResponse byte = 0x7B

func (d *M0110) Feed(b byte) (keycode.Event, bool) {
	switch d.state {
	case m0110Init:
		switch b {
		case m0110NullResponse:
			return keycode.Event{}, false
		case 0x79:
			d.state = m0110Nav
			return keycode.Event{}, false
		case 0x71:
			d.state = m0110P71
			return keycode.Event{}, false
		default:
			return d.lookup(m0110BaseTable, b)
		}

	case m0110Nav:
		d.state = m0110Init
		return d.lookup(m0110NavTable, b)

	case m0110P71:
		d.state = m0110Init
		if b == 0x79 {
			d.state = m0110Keypad
		}
		return keycode.Event{}, false

	case m0110Keypad:
		d.state = m0110Init
		return d.lookup(m0110KeypadTable, b)

	default:
		d.state = m0110Init
		return keycode.Event{}, false
	}
}

func (d *M0110) lookup(table map[byte]keycode.Code, b byte) (keycode.Event, bool) {
	code := (b >> 1) & 0x3F
	released := b&0x80 != 0
	iface, ok := table[code]
	if !ok {
		return keycode.Event{}, false
	}
	edge := keycode.Make
	if released {
		edge = keycode.Break
	}
	return keycode.Event{Code: iface, Edge: edge}, true
}

var _ Decoder = (*M0110)(nil)
