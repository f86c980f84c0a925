package command

import (
	"testing"
	"time"

	"github.com/kbconv/converter/keycode"
)

// S6: holding LSHIFT+RSHIFT for 3000ms enters Command Mode; pressing 'B'
// triggers the bootloader hook.
func TestCommandModeEntryAndBootloader(t *testing.T) {
	var rebooted bool
	d := NewDetector(DefaultKeys, Hooks{Reboot: func() { rebooted = true }})

	t0 := time.Unix(0, 0)
	d.ModifierEvent(keycode.IfaceLShift, keycode.Make, t0)
	d.ModifierEvent(keycode.IfaceRShift, keycode.Make, t0)

	if d.Tick(t0.Add(2999 * time.Millisecond)) {
		t.Fatalf("must not enter Command Mode before the hold threshold")
	}
	if d.Active() {
		t.Fatalf("must not be active before threshold")
	}
	if !d.Tick(t0.Add(3000 * time.Millisecond)) {
		t.Fatalf("expected Command Mode entry exactly at the hold threshold")
	}
	if !d.Active() {
		t.Fatalf("expected Active() true after entry")
	}

	d.Key('B')
	if !rebooted {
		t.Fatalf("expected bootloader hook to fire on 'B'")
	}
}

func TestPartialHoldDoesNotAccumulate(t *testing.T) {
	d := NewDetector(DefaultKeys, Hooks{})
	t0 := time.Unix(0, 0)

	d.ModifierEvent(keycode.IfaceLShift, keycode.Make, t0)
	d.ModifierEvent(keycode.IfaceRShift, keycode.Make, t0)
	// Release one key before the threshold - the hold must reset, not pause.
	d.ModifierEvent(keycode.IfaceLShift, keycode.Break, t0.Add(1*time.Second))
	d.ModifierEvent(keycode.IfaceLShift, keycode.Make, t0.Add(1100*time.Millisecond))

	if d.Tick(t0.Add(1*time.Second + HoldDuration)) {
		t.Fatalf("re-press must restart the 3s window, not resume the old one")
	}
}

func TestReleaseEitherKeyExitsAndSaves(t *testing.T) {
	var saved bool
	d := NewDetector(DefaultKeys, Hooks{Save: func() { saved = true }})
	t0 := time.Unix(0, 0)
	d.ModifierEvent(keycode.IfaceLShift, keycode.Make, t0)
	d.ModifierEvent(keycode.IfaceRShift, keycode.Make, t0)
	d.Tick(t0.Add(HoldDuration))
	if !d.Active() {
		t.Fatalf("expected active")
	}
	d.ModifierEvent(keycode.IfaceRShift, keycode.Break, t0.Add(HoldDuration))
	if d.Active() {
		t.Fatalf("expected Command Mode to exit on release of either key")
	}
	if !saved {
		t.Fatalf("expected config_save() to be called on exit")
	}
}

func TestLogLevelSubMenu(t *testing.T) {
	var got LogLevel
	var called bool
	d := NewDetector(DefaultKeys, Hooks{SetLogLevel: func(l LogLevel) { got = l; called = true }})
	t0 := time.Unix(0, 0)
	d.ModifierEvent(keycode.IfaceLShift, keycode.Make, t0)
	d.ModifierEvent(keycode.IfaceRShift, keycode.Make, t0)
	d.Tick(t0.Add(HoldDuration))

	d.Key('L')
	if d.SubMenuActive() != SubMenuLogLevel {
		t.Fatalf("expected log-level sub-menu active after 'L'")
	}
	d.Key('D')
	if !called || got != LogLevelDebug {
		t.Fatalf("expected debug level selected, got %v called=%v", got, called)
	}
	if d.SubMenuActive() != SubMenuNone {
		t.Fatalf("sub-menu should exit after a selection")
	}
}

func TestBrightnessClamping(t *testing.T) {
	if ClampBrightness(-5) != 0 {
		t.Fatalf("expected clamp to 0")
	}
	if ClampBrightness(15) != 10 {
		t.Fatalf("expected clamp to 10")
	}
	if ClampBrightness(5) != 5 {
		t.Fatalf("expected passthrough for in-range value")
	}
}

func TestValidateRejectsNonModifierKeys(t *testing.T) {
	k := Keys{A: keycode.IfaceA, B: keycode.IfaceLShift}
	if err := k.Validate(); err == nil {
		t.Fatalf("expected error for non-modifier command key")
	}
	if err := DefaultKeys.Validate(); err != nil {
		t.Fatalf("expected default keys to validate, got %v", err)
	}
}
