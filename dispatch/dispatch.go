// Package dispatch implements the Event Dispatcher (§4.H): it is the main
// loop's per-scancode-event entry point, gluing the keymap engine, Command
// Mode, the config store, and the downstream HID/LED sinks together. It
// owns the press-state bitmap (keyed by interface code) and is the only
// place that assembles an outgoing HID report.
//
// Grounded on the teacher's vt/layout.go KeyboardState.pressed map[Key]bool
// press-tracking idiom, and on mock/backend.go's split between the struct
// that owns mutable state (KeyboardState/Dispatcher) and the narrow sink
// interfaces it drives (Backend/hidsink.Sink, ledsink.Sink).
package dispatch

import (
	"time"

	"github.com/kbconv/converter/command"
	"github.com/kbconv/converter/config"
	"github.com/kbconv/converter/hidsink"
	"github.com/kbconv/converter/keycode"
	"github.com/kbconv/converter/keymap"
	"github.com/kbconv/converter/ledsink"
)

// USB HID Keyboard/Keypad usage IDs this package names directly, rather
// than importing a full usage-table package for a handful of constants
// (§9: no third-party HID descriptor library is in scope; usages are data
// the keymap already carries as keycode.Entry values).
const (
	hidUsageB           uint8 = 0x05
	hidUsageErrorRollOver uint8 = 0x01
	hidUsageKeypadPlus  uint8 = 0x57
	hidUsageKeypadMinus uint8 = 0x56
)

// expandMacro implements §4.E's macro table (§3/§9: "the only current macro
// is KC_B -> KC_BOOT when a super-macro shift is active"). The macro slot
// simply expands to the literal 'B' usage in all cases; Command Mode's own
// 'B' menu entry (wired to Hooks.Reboot) observes that same usage value
// whenever Command Mode is active, which is what gives the macro its
// documented "-> KC_BOOT under a super shift" behavior without a second
// code path.
func expandMacro(idx int) (uint8, bool) {
	switch idx {
	case 0:
		return hidUsageB, true
	default:
		return 0, false
	}
}

// specialTarget names the downstream sink and HID usage a System/Consumer
// interface code (§3's 0xA5-0xFF range) is dispatched to (spec.md line 151:
// "System/Consumer/App ranges: dispatched to the matching HID sink"). Usage
// values are the standard USB HID System Control (Generic Desktop page) and
// Consumer Control (page 0x0C) selectors.
type specialTarget struct {
	consumer bool
	usage    uint16
}

// specialTargets maps every interface code this firmware assigns in the
// System/Consumer range to its HID sink and usage. Power/Sleep/Wake are
// HID System Control selectors; everything else is a Consumer Control
// selector.
var specialTargets = map[keycode.Code]specialTarget{
	keycode.IfacePower: {usage: 0x81},
	keycode.IfaceSleep: {usage: 0x82},
	keycode.IfaceWake:  {usage: 0x83},

	keycode.IfaceMute:       {consumer: true, usage: 0xE2},
	keycode.IfaceVolumeUp:   {consumer: true, usage: 0xE9},
	keycode.IfaceVolumeDown: {consumer: true, usage: 0xEA},
	keycode.IfacePlayPause:  {consumer: true, usage: 0xCD},
	keycode.IfaceStop:       {consumer: true, usage: 0xB7},
	keycode.IfaceNextTrack:  {consumer: true, usage: 0xB5},
	keycode.IfacePrevTrack:  {consumer: true, usage: 0xB6},
	keycode.IfaceMediaSel:   {consumer: true, usage: 0x183},
	keycode.IfaceCalculator: {consumer: true, usage: 0x192},
	keycode.IfaceWWWHome:    {consumer: true, usage: 0x223},
	keycode.IfaceMail:       {consumer: true, usage: 0x18A},
}

// hidLetter maps a resolved HID keyboard-page usage to the ASCII rune
// Command Mode's single-key menu dispatches on (command.Detector.Key),
// using the standard USB HID Keyboard/Keypad usage table where 0x04='A'
// through 0x1D='Z'.
func hidLetter(usage uint8) (rune, bool) {
	switch {
	case usage >= 0x04 && usage <= 0x1D:
		return rune('A' + (usage - 0x04)), true
	case usage == hidUsageKeypadPlus:
		return '+', true
	case usage == hidUsageKeypadMinus:
		return '-', true
	}
	return 0, false
}

// pressRecord remembers what a held interface code actually emitted, so
// Break releases exactly that - not whatever the keymap would resolve to
// if re-evaluated against the (possibly since-changed) active layer set -
// and so a shift-override's SUPPRESS_SHIFT decision, fixed at Make, is
// replayed unchanged at Break regardless of the physical shift state at
// release time (§4.E property 5).
type pressRecord struct {
	isModifier    bool
	modifierBit   uint8
	usage         uint8
	suppressShift bool
}

// Dispatcher is the Event Dispatcher. The zero value is not usable;
// construct with New.
type Dispatcher struct {
	Engine  *keymap.Engine
	Store   *config.Store
	Command *command.Detector
	HID     hidsink.Sink
	LED     ledsink.Sink

	// ShiftOverrideTables maps a layer index to that layer's substitution
	// table (§4.E); a keyboard that defines none leaves this nil/empty.
	ShiftOverrideTables map[uint8]keymap.ShiftOverrideTable

	// KeyboardID and LayersHash identify this compile-time keymap build for
	// the config store's layer-state persistence gate (§3/§8 property 10).
	KeyboardID uint32
	LayersHash uint32

	pressed map[keycode.Code]pressRecord
	order   []keycode.Code // insertion order of held non-modifier codes, for stable report-slot assignment
	physicalModifiers uint8

	lastActive bool // Command.Active() as of the previous Tick/HandleEvent, for edge-detecting entry/exit
}

// New constructs a Dispatcher wired to the given collaborators.
func New(engine *keymap.Engine, store *config.Store, det *command.Detector, hid hidsink.Sink, led ledsink.Sink, shiftOverride map[uint8]keymap.ShiftOverrideTable, keyboardID, layersHash uint32) *Dispatcher {
	return &Dispatcher{
		Engine:              engine,
		Store:               store,
		Command:             det,
		HID:                 hid,
		LED:                 led,
		ShiftOverrideTables: shiftOverride,
		KeyboardID:          keyboardID,
		LayersHash:          layersHash,
		pressed:             make(map[keycode.Code]pressRecord),
	}
}

func (d *Dispatcher) persistedLayerState() keycode.LayerState {
	return keycode.LayerState(d.Store.LayerState(d.KeyboardID, d.LayersHash))
}

// HandleEvent processes one decoded scancode event (§4.H). now is the
// caller's clock sample, threaded through to Command Mode's hold timer.
func (d *Dispatcher) HandleEvent(ev keycode.Event, now time.Time) {
	persisted := d.persistedLayerState()
	entry, edit := d.Engine.Decode(persisted, ev.Code, ev.Edge)
	if edit.Present {
		d.applyLayerEdit(edit, persisted)
	}

	if entry >= keycode.MacroBase && !keycode.Code(entry).IsModifier() {
		if usage, ok := expandMacro(int(entry - keycode.MacroBase)); ok {
			entry = keycode.Entry(usage)
		} else {
			entry = keycode.Entry(keycode.NoKey)
		}
	}

	if entry == keycode.Entry(keycode.NoKey) {
		d.syncAfterEvent(now)
		return
	}

	if keycode.Code(entry).IsModifier() {
		d.handleModifier(ev.Code, keycode.Code(entry), ev.Edge, now)
		d.syncAfterEvent(now)
		return
	}

	if keycode.Code(entry).IsSpecialRange() {
		if target, ok := specialTargets[keycode.Code(entry)]; ok {
			d.handleSpecialKey(target, ev.Edge)
			d.syncAfterEvent(now)
			return
		}
	}

	if d.Command.Active() {
		if ev.Edge == keycode.Make {
			if r, ok := hidLetter(uint8(entry)); ok {
				d.Command.Key(r)
			}
		}
		d.syncAfterEvent(now)
		return
	}

	d.handleUsageKey(ev.Code, uint8(entry), ev.Edge)
	d.syncAfterEvent(now)
}

func (d *Dispatcher) applyLayerEdit(edit keymap.LayerEdit, persisted keycode.LayerState) {
	next := persisted.Toggle(edit.Layer)
	d.Store.SetLayerState(uint8(next), d.KeyboardID, d.LayersHash)
}

func (d *Dispatcher) handleModifier(ifaceCode, modCode keycode.Code, edge keycode.Edge, now time.Time) {
	d.Command.ModifierEvent(modCode, edge, now)
	bit := modCode.ModifierBit()
	switch edge {
	case keycode.Make:
		d.physicalModifiers |= 1 << bit
		d.pressed[ifaceCode] = pressRecord{isModifier: true, modifierBit: bit}
	case keycode.Break:
		d.physicalModifiers &^= 1 << bit
		delete(d.pressed, ifaceCode)
	}
}

// handleSpecialKey dispatches a System/Consumer interface code to its
// matching HID sink (§4.H / §6). Unlike keyboard usages, these sinks carry
// a single active selector rather than a held-key set, so Make sends the
// selector and Break sends the idle code (0), matching how System Control
// and Consumer Control reports are conventionally paired on release.
func (d *Dispatcher) handleSpecialKey(target specialTarget, edge keycode.Edge) {
	code := target.usage
	if edge == keycode.Break {
		code = 0
	}
	if target.consumer {
		d.HID.EmitConsumerControl(code)
	} else {
		d.HID.EmitSystemControl(code)
	}
}

func (d *Dispatcher) handleUsageKey(ifaceCode keycode.Code, usage uint8, edge keycode.Edge) {
	switch edge {
	case keycode.Make:
		shiftHeld := d.physicalModifiers&(1<<keycode.IfaceLShift.ModifierBit()) != 0 ||
			d.physicalModifiers&(1<<keycode.IfaceRShift.ModifierBit()) != 0
		top := keymap.TopActiveLayer(uint8(d.persistedActiveBitmap()))
		finalUsage, suppress := keymap.ApplyShiftOverride(d.ShiftOverrideTables, d.Store.Record().Flags.ShiftOverrideEnabled, shiftHeld, top, usage)
		d.pressed[ifaceCode] = pressRecord{usage: finalUsage, suppressShift: suppress}
		d.order = append(d.order, ifaceCode)
	case keycode.Break:
		delete(d.pressed, ifaceCode)
		for i, c := range d.order {
			if c == ifaceCode {
				d.order = append(d.order[:i], d.order[i+1:]...)
				break
			}
		}
	}
	d.flush()
}

// persistedActiveBitmap mirrors Engine.Active without exposing Engine's
// momentary/one-shot bookkeeping; shift-override's "active top layer" must
// reflect the same active set the keymap just resolved against.
func (d *Dispatcher) persistedActiveBitmap() keycode.LayerState {
	return d.Engine.Active(d.persistedLayerState())
}

// flush assembles and emits the current HID report from press state
// (§4.H: "modifier byte + up to 6 usage codes...optionally NKRO via
// bitmap"). Any currently-held key with suppressShift true clears both
// shift bits for the whole report, since a single 6KRO report carries only
// one modifier byte (§4.E property 5).
func (d *Dispatcher) flush() {
	modifier := d.physicalModifiers
	for _, rec := range d.pressed {
		if !rec.isModifier && rec.suppressShift {
			modifier &^= 1 << keycode.IfaceLShift.ModifierBit()
			modifier &^= 1 << keycode.IfaceRShift.ModifierBit()
		}
	}

	if d.Store.Record().Flags.NKROEnabled {
		var bitmap [32]byte
		for _, rec := range d.pressed {
			if rec.isModifier {
				continue
			}
			bitmap[rec.usage/8] |= 1 << (rec.usage % 8)
		}
		d.HID.EmitNKROReport(modifier, bitmap)
		return
	}

	var codes [6]uint8
	if len(d.order) > 6 {
		for i := range codes {
			codes[i] = hidUsageErrorRollOver
		}
	} else {
		for i, c := range d.order {
			codes[i] = d.pressed[c].usage
		}
	}
	d.HID.EmitKeyboardReport(modifier, codes)
}

// ReleaseAll clears all press state and emits an all-released report
// (§4.H: "Press-state reconciliation: if a decoder reset occurs, all bits
// in the press-state bitmap are cleared and a full 'release all' report is
// emitted"). Callers invoke this whenever the scancode decoder's Reset is
// invoked (on a ring buffer overrun) and whenever Command Mode transitions
// into its active state, so stuck keys never survive either boundary.
// Wire-level errors do not reset the decoder and do not trigger this.
func (d *Dispatcher) ReleaseAll() {
	d.pressed = make(map[keycode.Code]pressRecord)
	d.order = nil
	d.physicalModifiers = 0
	d.Engine.Reset()
	d.HID.EmitKeyboardReport(0, [6]uint8{})
}

// syncAfterEvent runs the two pieces of per-iteration bookkeeping that
// don't depend on which event just arrived: advancing Command Mode's hold
// timer and reconciling the status LED with whatever state that produced.
func (d *Dispatcher) syncAfterEvent(now time.Time) {
	d.Tick(now)
}

// Tick advances Command Mode's hold-duration timer and reconciles LED
// status with the result. The main loop calls this once per cooperative
// round (§5), and HandleEvent calls it after every event so a
// just-crossed threshold takes effect immediately rather than waiting for
// the next idle tick.
func (d *Dispatcher) Tick(now time.Time) {
	justEntered := d.Command.Tick(now)
	if justEntered {
		d.ReleaseAll()
	}
	d.syncLED()
}

func (d *Dispatcher) syncLED() {
	if d.LED == nil {
		return
	}
	if !d.Command.Active() {
		d.LED.SetStatus(ledsink.Ready)
		return
	}
	if d.Command.SubMenuActive() == command.SubMenuLogLevel {
		d.LED.SetStatus(ledsink.LogLevelSelect)
		return
	}
	d.LED.SetStatus(ledsink.CommandModePrimary)
}

// SetLockLEDs forwards a host-originated Caps/Num/Scroll lock state change
// to the LED sink (§4.H: "propagates Caps/Num/Scroll lock LED state
// changes to (D) for host-to-device transmission"). The HID transport that
// receives these from the host is out of scope (§1); this is the seam it
// calls into.
func (d *Dispatcher) SetLockLEDs(caps, num, scroll bool) {
	if d.LED != nil {
		d.LED.SetLockLEDs(caps, num, scroll)
	}
}
