// Package command implements the converter's Command Mode (§4.F): a
// long-press detector on two configurable HID modifier keys that, once
// both have been held continuously for a threshold duration, suspends
// normal key emission in favor of a single-key menu (reboot to bootloader,
// log-level selection, factory reset, LED brightness, shift-override
// toggle).
//
// The hold-timing shape is grounded on the teacher's vt.KeyboardState
// repeat-tracking fields (repeatStart time.Time, repeatDelay
// time.Duration in vt/layout.go): a start timestamp that's cleared the
// instant either tracked key releases, exactly mirroring clearRepeat's
// "any change cancels the accumulation" rule.
package command

import (
	"time"

	"github.com/kbconv/converter/keycode"
)

// HoldDuration is how long both Keys must be held continuously before
// Command Mode is entered (§4.F: "3 s").
const HoldDuration = 3 * time.Second

// Keys are the two command-mode keys. Both must be HID modifier codes
// (0xE0-0xE7); Validate checks this. Nothing in the module calls Validate
// at build or registration time; DefaultKeys satisfies it.
type Keys struct {
	A, B keycode.Code
}

// DefaultKeys matches the firmware's documented default (LSHIFT+RSHIFT).
var DefaultKeys = Keys{A: keycode.IfaceLShift, B: keycode.IfaceRShift}

// Validate reports an error if either key is outside the HID modifier
// range.
func (k Keys) Validate() error {
	if !k.A.IsModifier() || !k.B.IsModifier() {
		return errInvalidCommandKeys
	}
	return nil
}

// errInvalidCommandKeys is returned by Validate; defined as a sentinel so
// code inside this package can compare against it with errors.Is.
var errInvalidCommandKeys = commandKeysError("command: both command-mode keys must be HID modifier codes (0xE0-0xE7)")

type commandKeysError string

func (e commandKeysError) Error() string { return string(e) }

// SubMenu identifies which single-key menu is currently being driven,
// distinct from Command Mode's top-level key dispatch.
type SubMenu int

const (
	SubMenuNone SubMenu = iota
	SubMenuLogLevel
)

// LogLevel mirrors the three levels the 'L' sub-menu can select.
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelInfo
	LogLevelDebug
)

// Hooks are the platform/config actions Command Mode's menu drives. All
// are synchronous; the caller (the main loop) invokes Tick/Key from its
// own cooperative round-robin, never from an ISR context.
type Hooks struct {
	Reboot              func()
	SetLogLevel         func(LogLevel)
	FactoryReset        func()
	AdjustBrightness    func(delta int)
	ToggleShiftOverride func()
	// ToggleReportMode flips NKRO/6KRO reporting (SPEC_FULL.md §3
	// supplemented feature, Command Mode's 'N' key).
	ToggleReportMode func()
	Save             func()
}

// Detector tracks command-mode key hold state and, once active, routes
// single-key presses to Hooks. The zero value is ready for use once Keys
// and Hooks are set.
type Detector struct {
	Keys  Keys
	Hooks Hooks

	held      map[keycode.Code]bool
	holdSince time.Time
	active    bool
	subMenu   SubMenu
}

// NewDetector constructs a Detector for the given command keys and hooks.
func NewDetector(keys Keys, hooks Hooks) *Detector {
	return &Detector{Keys: keys, Hooks: hooks, held: make(map[keycode.Code]bool)}
}

// Active reports whether Command Mode is currently engaged.
func (d *Detector) Active() bool { return d.active }

// isCommandKey reports whether c is one of the two tracked modifier keys.
func (d *Detector) isCommandKey(c keycode.Code) bool {
	return c == d.Keys.A || c == d.Keys.B
}

// bothHeld reports whether both command keys are currently tracked as
// pressed.
func (d *Detector) bothHeld() bool {
	return d.held[d.Keys.A] && d.held[d.Keys.B]
}

// ModifierEvent is called by the dispatcher for every Make/Break of a HID
// modifier key, before normal emission, so Command Mode can observe the
// hold even while suppressing everything else once active. now is passed
// in (rather than read from time.Now internally) so tests can drive the
// clock deterministically.
//
// It returns true if the event was a command key and should not be passed
// through to normal HID emission (either because it is being tracked for
// the hold, or because Command Mode is already active and consuming all
// input).
func (d *Detector) ModifierEvent(c keycode.Code, edge keycode.Edge, now time.Time) bool {
	if !d.isCommandKey(c) {
		return d.active
	}
	switch edge {
	case keycode.Make:
		d.held[c] = true
		if d.bothHeld() && d.holdSince.IsZero() {
			d.holdSince = now
		}
	case keycode.Break:
		d.held[c] = false
		d.holdSince = time.Time{}
		if d.active {
			d.exit()
		}
	}
	return true
}

// Tick is called once per main-loop iteration with the current time. It
// returns true the instant Command Mode transitions from inactive to
// active (the caller uses this to emit the "release all" HID report and
// switch the status LED), and false on every other call.
func (d *Detector) Tick(now time.Time) bool {
	if d.active || d.holdSince.IsZero() {
		return false
	}
	if now.Sub(d.holdSince) >= HoldDuration {
		d.active = true
		d.subMenu = SubMenuNone
		return true
	}
	return false
}

func (d *Detector) exit() {
	d.active = false
	d.subMenu = SubMenuNone
	if d.Hooks.Save != nil {
		d.Hooks.Save()
	}
}

// Key routes a single non-modifier keypress while Command Mode is active.
// Only Make edges drive the menu; callers should not invoke Key before
// checking Active().
func (d *Detector) Key(usage rune) {
	if !d.active {
		return
	}
	if d.subMenu == SubMenuLogLevel {
		d.subMenu = SubMenuNone
		switch usage {
		case 'E':
			d.callLogLevel(LogLevelError)
		case 'I':
			d.callLogLevel(LogLevelInfo)
		case 'D':
			d.callLogLevel(LogLevelDebug)
		}
		return
	}
	switch usage {
	case 'B':
		if d.Hooks.Reboot != nil {
			d.Hooks.Reboot()
		}
	case 'L':
		d.subMenu = SubMenuLogLevel
	case 'R':
		if d.Hooks.FactoryReset != nil {
			d.Hooks.FactoryReset()
		}
		d.exit()
	case '+':
		if d.Hooks.AdjustBrightness != nil {
			d.Hooks.AdjustBrightness(1)
		}
	case '-':
		if d.Hooks.AdjustBrightness != nil {
			d.Hooks.AdjustBrightness(-1)
		}
	case 'S':
		if d.Hooks.ToggleShiftOverride != nil {
			d.Hooks.ToggleShiftOverride()
		}
	case 'N':
		if d.Hooks.ToggleReportMode != nil {
			d.Hooks.ToggleReportMode()
		}
	}
}

func (d *Detector) callLogLevel(l LogLevel) {
	if d.Hooks.SetLogLevel != nil {
		d.Hooks.SetLogLevel(l)
	}
}

// SubMenuActive reports which sub-menu (if any) is currently being driven,
// for the LED driver to select LogLevelSelect vs CommandModePrimary.
func (d *Detector) SubMenuActive() SubMenu { return d.subMenu }

// ClampBrightness clamps a brightness level to the valid [0, 10] range
// (§4.G "led_brightness (clamped 0..=10)").
func ClampBrightness(level int) uint8 {
	if level < 0 {
		return 0
	}
	if level > 10 {
		return 10
	}
	return uint8(level)
}
