// Package keyboard implements Device Init (§4.D): the boot-time
// self-test/identify sequence, the keyboard-ID classification table, and
// the compile-time per-keyboard configuration registry that Device Init
// consults to pick a scancode decoder and a keymap.
//
// The classification table's shape (a short constant array of
// (id_mask, id_value, scancode_set, needs_f8) tuples, looked up linearly)
// is grounded on terminfo.go's LookupTerminfo name/alias table scan and
// §9's own explicit design note ("Keyboard ID table is a constant array
// ... lookup is linear, <=20 entries").
package keyboard

import (
	"errors"
	"time"
)

// ScancodeSet identifies which scancode decoder variant a keyboard's
// responses should be parsed with.
type ScancodeSet int

const (
	SetUnknown ScancodeSet = iota
	Set1
	Set2
	Set3
	SetAmiga
	SetM0110
)

func (s ScancodeSet) String() string {
	switch s {
	case Set1:
		return "set1"
	case Set2:
		return "set2"
	case Set3:
		return "set3"
	case SetAmiga:
		return "amiga"
	case SetM0110:
		return "m0110"
	default:
		return "unknown"
	}
}

// idEntry is one row of the §4.D step 3 classification table.
type idEntry struct {
	id       [2]byte
	len      int // 1 or 2 significant bytes in id
	set      ScancodeSet
	needsF8  bool
}

// idTable is the fixed classification table, <=20 entries, scanned
// linearly (§9).
var idTable = []idEntry{
	{id: [2]byte{0xAB, 0x41}, len: 2, set: Set2, needsF8: false},
	{id: [2]byte{0xAB, 0x83}, len: 2, set: Set2, needsF8: false},
	{id: [2]byte{0xAB, 0x84}, len: 2, set: Set2, needsF8: false},
	// The AB 86/90/91/92 family self-reports as either Set 2 or Set 3
	// depending on firmware; the converter never queries which (it never
	// sends a set-select command, per §4.D), so it assumes the common
	// Set 2 default and still issues F8 defensively, which is a no-op on
	// a keyboard actually already in Set 2.
	{id: [2]byte{0xAB, 0x86}, len: 2, set: Set2, needsF8: true},
	{id: [2]byte{0xAB, 0x90}, len: 2, set: Set2, needsF8: true},
	{id: [2]byte{0xAB, 0x91}, len: 2, set: Set2, needsF8: true},
	{id: [2]byte{0xAB, 0x92}, len: 2, set: Set2, needsF8: true},
	{id: [2]byte{0xBF, 0xBF}, len: 2, set: Set3, needsF8: true},
	{id: [2]byte{0xBF, 0xB0}, len: 2, set: Set3, needsF8: true},
	{id: [2]byte{0xBF, 0xB1}, len: 2, set: Set3, needsF8: true},
	{id: [2]byte{0x7F, 0x7F}, len: 2, set: Set3, needsF8: true},
}

// Classify implements §4.D step 3. An empty id (0 bytes) classifies as an
// XT keyboard (unidirectional, Set 1); any other id not found in idTable
// is reported unmatched, leaving the caller to decide a fallback.
func Classify(id []byte) (set ScancodeSet, needsF8, matched bool) {
	if len(id) == 0 {
		return Set1, false, true
	}
	for _, e := range idTable {
		if e.len != len(id) {
			continue
		}
		if e.id[0] != id[0] {
			continue
		}
		if e.len == 2 && e.id[1] != id[1] {
			continue
		}
		return e.set, e.needsF8, true
	}
	return SetUnknown, false, false
}

// Transport is the byte-level seam Boot drives: send a single command
// byte, and read a single response byte with a timeout. Engine.Boot takes
// one from its caller. No adapter from the wire decoders to this shape
// exists in this module: cmd/kbconv-firmware passes nil, so Device Init
// does not run there. Tests drive it directly with a scripted double.
type Transport interface {
	Send(b byte) error
	Read(timeout time.Duration) (byte, error)
}

// Boot-sequence timing constants (§4.D / §5).
const (
	SelfTestTimeout  = 1 * time.Second
	SelfTestRetries  = 3
	IdentifyTimeout  = 500 * time.Millisecond
	CommandACKTimeout = 100 * time.Millisecond
)

const (
	cmdIdentify byte = 0xF2
	cmdSetAllF8 byte = 0xF8
	selfTestOK  byte = 0xAA
)

// ErrDeviceAbsent is returned by Boot when the self-test byte never
// arrives after SelfTestRetries attempts (§4.D step 1 / §7 DeviceAbsent).
var ErrDeviceAbsent = errors.New("keyboard: device absent (self-test timed out)")

// Result is what Boot determines about the attached keyboard.
type Result struct {
	ID      []byte
	Set     ScancodeSet
	NeedsF8 bool
}

// Boot implements §4.D steps 1-3 over an already-selected Transport (the
// transport itself already knows whether it is AT/PS2, XT, Amiga, or
// M0110 - Boot only runs the identify handshake that is meaningful for
// bidirectional protocols; callers for XT/Amiga/M0110 transports skip
// straight to their own fixed Set/NeedsF8 without calling Boot at all,
// since those protocols have no self-test/identify handshake of AT/PS2's
// shape).
func Boot(t Transport) (Result, error) {
	ok := false
	for attempt := 0; attempt < SelfTestRetries; attempt++ {
		b, err := t.Read(SelfTestTimeout)
		if err == nil && b == selfTestOK {
			ok = true
			break
		}
	}
	if !ok {
		return Result{}, ErrDeviceAbsent
	}

	if err := t.Send(cmdIdentify); err != nil {
		return Result{}, err
	}
	var id []byte
	for len(id) < 2 {
		b, err := t.Read(IdentifyTimeout)
		if err != nil {
			break
		}
		id = append(id, b)
	}

	set, needsF8, _ := Classify(id)
	if needsF8 {
		_ = t.Send(cmdSetAllF8)
	}
	return Result{ID: id, Set: set, NeedsF8: needsF8}, nil
}
