package scancode

import "github.com/kbconv/converter/keycode"

type set2State uint8

const (
	set2Init set2State = iota
	set2F0
	set2E0
	set2E0F0
	set2E1
	set2E1_14
	set2E1F0
	set2E1F0_14
	set2E1F0_14F0
)

// set2BaseRemap holds the single-byte codes that do not pass straight
// through as their own interface code: the modifier keys, whose interface
// codes live in the reserved 0xE0-0xE7 range, '[' (raw 0x54, which is
// IfacePrintScreen's interface code), and F7/SysRq's documented alternate
// make codes.
var set2BaseRemap = map[byte]keycode.Code{
	0x11: keycode.IfaceLAlt,
	0x12: keycode.IfaceLShift,
	0x14: keycode.IfaceLCtrl,
	0x54: keycode.IfaceLBracket,
	0x59: keycode.IfaceRShift,
	0x83: keycode.IfaceF7Alt,
	0x84: keycode.IfaceSysReq,
}

func set2BaseCode(b byte) keycode.Code {
	if c, ok := set2BaseRemap[b]; ok {
		return c
	}
	return keycode.Code(b)
}

// set2E0Table maps E0-prefixed Set 2 codes to interface codes. E0 77 and
// E0 7E are folded into Pause: both are alternate terminal-style encodings
// of the Pause/Break key seen in the field, and the upstream firmware's own
// README documents treating them as Pause rather than discarding them.
var set2E0Table = map[byte]keycode.Code{
	0x11: keycode.IfaceRAlt,
	0x14: keycode.IfaceRCtrl,
	0x1F: keycode.IfaceLGUI,
	0x27: keycode.IfaceRGUI,
	0x2F: keycode.IfaceApps,
	0x4A: keycode.IfaceKPSlash,
	0x5A: keycode.IfaceKPEnter,
	0x69: keycode.IfaceEnd,
	0x6B: keycode.IfaceLeft,
	0x6C: keycode.IfaceHome,
	0x70: keycode.IfaceInsert,
	0x71: keycode.IfaceDelete,
	0x72: keycode.IfaceDown,
	0x74: keycode.IfaceRight,
	0x75: keycode.IfaceUp,
	0x7A: keycode.IfacePageDown,
	0x7C: keycode.IfacePrintScreen,
	0x7D: keycode.IfacePageUp,
	0x37: keycode.IfacePower,
	0x3F: keycode.IfaceSleep,
	0x5E: keycode.IfaceWake,
	0x20: keycode.IfaceMute,
	0x21: keycode.IfaceVolumeDown,
	0x32: keycode.IfaceVolumeUp,
	0x3A: keycode.IfaceWWWHome,
	0x34: keycode.IfacePlayPause,
	0x3B: keycode.IfaceStop,
	0x15: keycode.IfacePrevTrack,
	0x4D: keycode.IfaceNextTrack,
	0x50: keycode.IfaceMediaSel,
	0x48: keycode.IfaceMail,
	0x2B: keycode.IfaceCalculator,
	0x77: keycode.IfacePause,
	0x7E: keycode.IfacePause,
}

// Set2 decodes the AT/PS2 Scan Code Set 2 byte stream: F0 is the break
// prefix, E0 extends into a second code page, and Pause arrives as the
// fixed 8-byte sequence E1 14 77 E1 F0 14 F0 77 with no break code of its
// own — a synthesized make is emitted once E1 14 77 lands and a break
// once the remaining E1 F0 14 F0 77 lands, since the key never repeats or
// reports release on real hardware.
type Set2 struct {
	state set2State
}

func (d *Set2) Reset() { d.state = set2Init }

func (d *Set2) Feed(b byte) (keycode.Event, bool) {
	switch d.state {
	case set2Init:
		switch b {
		case 0xF0:
			d.state = set2F0
		case 0xE0:
			d.state = set2E0
		case 0xE1:
			d.state = set2E1
		default:
			c := set2BaseCode(b)
			if c == keycode.NoKey {
				return keycode.Event{}, false
			}
			return keycode.Event{Code: c, Edge: keycode.Make}, true
		}
		return keycode.Event{}, false

	case set2F0:
		d.state = set2Init
		c := set2BaseCode(b)
		if c == keycode.NoKey {
			return keycode.Event{}, false
		}
		return keycode.Event{Code: c, Edge: keycode.Break}, true

	case set2E0:
		d.state = set2Init
		if b == 0xF0 {
			d.state = set2E0F0
			return keycode.Event{}, false
		}
		if isFakeShiftSet2(b) {
			return keycode.Event{}, false
		}
		c, ok := set2E0Table[b]
		if !ok {
			return keycode.Event{}, false
		}
		return keycode.Event{Code: c, Edge: keycode.Make}, true

	case set2E0F0:
		d.state = set2Init
		if isFakeShiftSet2(b) {
			return keycode.Event{}, false
		}
		c, ok := set2E0Table[b]
		if !ok {
			return keycode.Event{}, false
		}
		return keycode.Event{Code: c, Edge: keycode.Break}, true

	case set2E1:
		switch b {
		case 0x14:
			d.state = set2E1_14
		case 0xF0:
			d.state = set2E1F0
		default:
			d.state = set2Init
		}
		return keycode.Event{}, false

	case set2E1_14:
		d.state = set2Init
		if b == 0x77 {
			return keycode.Event{Code: keycode.IfacePause, Edge: keycode.Make}, true
		}
		return keycode.Event{}, false

	case set2E1F0:
		if b == 0x14 {
			d.state = set2E1F0_14
		} else {
			d.state = set2Init
		}
		return keycode.Event{}, false

	case set2E1F0_14:
		if b == 0xF0 {
			d.state = set2E1F0_14F0
		} else {
			d.state = set2Init
		}
		return keycode.Event{}, false

	case set2E1F0_14F0:
		d.state = set2Init
		if b == 0x77 {
			return keycode.Event{Code: keycode.IfacePause, Edge: keycode.Break}, true
		}
		return keycode.Event{}, false

	default:
		d.state = set2Init
		return keycode.Event{}, false
	}
}

var _ Decoder = (*Set2)(nil)
