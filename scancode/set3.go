package scancode

import "github.com/kbconv/converter/keycode"

type set3State uint8

const (
	set3Init set3State = iota
	set3F0
)

// set3Remap holds Set 3's departures from pass-through identity: the
// modifier keys (same raw codes as Set 2), '[' (raw 0x54, remapped as in
// Set 2), plus three keys Set 3 itself assigns different raw codes to.
var set3Remap = map[byte]keycode.Code{
	0x11: keycode.IfaceLAlt,
	0x12: keycode.IfaceLShift,
	0x14: keycode.IfaceLCtrl,
	0x54: keycode.IfaceLBracket,
	0x59: keycode.IfaceRShift,
	0x7C: keycode.IfaceF7,
	0x83: keycode.IfaceF7Alt,
	0x84: keycode.IfaceSysReq,
}

func set3Code(b byte) keycode.Code {
	if c, ok := set3Remap[b]; ok {
		return c
	}
	return keycode.Code(b)
}

// Set3 decodes AT/PS2 Scan Code Set 3, the terminal-keyboard set: every key
// has a single fixed make code and an explicit F0-prefixed break code, with
// no E0/E1 extension bytes and no typematic distinction to track.
type Set3 struct {
	state set3State
}

func (d *Set3) Reset() { d.state = set3Init }

func (d *Set3) Feed(b byte) (keycode.Event, bool) {
	switch d.state {
	case set3Init:
		if b == 0xF0 {
			d.state = set3F0
			return keycode.Event{}, false
		}
		c := set3Code(b)
		if c == keycode.NoKey {
			return keycode.Event{}, false
		}
		return keycode.Event{Code: c, Edge: keycode.Make}, true

	case set3F0:
		d.state = set3Init
		c := set3Code(b)
		if c == keycode.NoKey {
			return keycode.Event{}, false
		}
		return keycode.Event{Code: c, Edge: keycode.Break}, true

	default:
		d.state = set3Init
		return keycode.Event{}, false
	}
}

var _ Decoder = (*Set3)(nil)
