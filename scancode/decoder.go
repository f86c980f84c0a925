// Package scancode turns the raw bytes the wire package places on a ring
// buffer into canonical keycode.Event values, one finite state machine per
// protocol variant (§4.C). Every decoder is a tagged-dispatch state machine
// over a small enum, mirroring the teacher's inputParser.parse byte-at-a-time
// style (input.go) and vt/kbd.go's KbdEvent{Down, Code} event shape.
package scancode

import "github.com/kbconv/converter/keycode"

// Decoder consumes wire bytes one at a time and reports a decoded event
// whenever a complete sequence lands on the current byte. Multi-byte
// sequences that are still in progress return ok=false.
type Decoder interface {
	Feed(b byte) (ev keycode.Event, ok bool)
	// Reset returns the decoder to its initial state, discarding any
	// partially-received sequence. Callers invoke this after a ring buffer
	// overrun, since the byte stream may have lost synchronization. Wire
	// framing, parity and timeout errors are only reported and do not lead
	// to a Reset.
	Reset()
}

// isFakeShiftSet1 and isFakeShiftSet2 report whether code (for Set 1,
// already masked to its low 7 bits) is one
// of the shift keys the keyboard synthesizes around certain E0-prefixed
// keys so that legacy software sees a shift state matching the unextended
// version of the same key. These carry no keymap meaning of their own and
// are always filtered.
func isFakeShiftSet1(code byte) bool {
	switch code {
	case 0x2A, 0x36:
		return true
	default:
		return false
	}
}

func isFakeShiftSet2(code byte) bool {
	switch code {
	case 0x12, 0x59:
		return true
	default:
		return false
	}
}
