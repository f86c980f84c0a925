package scancode

import "github.com/kbconv/converter/keycode"

type xtState uint8

const (
	xtInit xtState = iota
	xtE0
	xtE1
	xtE1_1D
	xtE1_9D
)

// xtE0Table maps the low 7 bits of an E0-prefixed XT/Set 1 code to its
// interface code. These are the well-known extended codes the original PC/XT
// scancode set grew once the 101-key layout added a second set of arrows,
// GUI keys and an Insert/Delete/Home/End/PgUp/PgDn cluster.
var xtE0Table = map[byte]keycode.Code{
	0x1C: keycode.IfaceKPEnter,
	0x1D: keycode.IfaceRCtrl,
	0x35: keycode.IfaceKPSlash,
	0x37: keycode.IfacePrintScreen,
	0x38: keycode.IfaceRAlt,
	0x47: keycode.IfaceHome,
	0x48: keycode.IfaceUp,
	0x49: keycode.IfacePageUp,
	0x4B: keycode.IfaceLeft,
	0x4D: keycode.IfaceRight,
	0x4F: keycode.IfaceEnd,
	0x50: keycode.IfaceDown,
	0x51: keycode.IfacePageDown,
	0x52: keycode.IfaceInsert,
	0x53: keycode.IfaceDelete,
	0x5B: keycode.IfaceLGUI,
	0x5C: keycode.IfaceRGUI,
	0x5D: keycode.IfaceApps,
	0x5E: keycode.IfacePower,
	0x5F: keycode.IfaceSleep,
	0x63: keycode.IfaceWake,
}

// XT decodes the unidirectional 9-bit-frame XT / Scan Code Set 1 byte
// stream. The Pause key's E1 1D 45 / E1 9D C5 sequence is the only
// multi-byte form that is not E0-prefixed.
type XT struct {
	state xtState
}

func (d *XT) Reset() { d.state = xtInit }

func (d *XT) Feed(b byte) (keycode.Event, bool) {
	switch d.state {
	case xtInit:
		switch b {
		case 0xE0:
			d.state = xtE0
			return keycode.Event{}, false
		case 0xE1:
			d.state = xtE1
			return keycode.Event{}, false
		default:
			code := b & 0x7F
			edge := keycode.Make
			if b&0x80 != 0 {
				edge = keycode.Break
			}
			if code == 0 {
				return keycode.Event{}, false
			}
			return keycode.Event{Code: keycode.Code(code), Edge: edge}, true
		}

	case xtE0:
		d.state = xtInit
		code := b & 0x7F
		if isFakeShiftSet1(code) {
			return keycode.Event{}, false
		}
		iface, ok := xtE0Table[code]
		if !ok {
			return keycode.Event{}, false
		}
		edge := keycode.Make
		if b&0x80 != 0 {
			edge = keycode.Break
		}
		return keycode.Event{Code: iface, Edge: edge}, true

	case xtE1:
		switch b {
		case 0x1D:
			d.state = xtE1_1D
		case 0x9D:
			d.state = xtE1_9D
		default:
			d.state = xtInit
		}
		return keycode.Event{}, false

	case xtE1_1D:
		d.state = xtInit
		if b == 0x45 {
			return keycode.Event{Code: keycode.IfacePause, Edge: keycode.Make}, true
		}
		return keycode.Event{}, false

	case xtE1_9D:
		d.state = xtInit
		if b == 0xC5 {
			return keycode.Event{Code: keycode.IfacePause, Edge: keycode.Break}, true
		}
		return keycode.Event{}, false

	default:
		d.state = xtInit
		return keycode.Event{}, false
	}
}

var _ Decoder = (*XT)(nil)
