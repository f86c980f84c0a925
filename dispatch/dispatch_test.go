package dispatch

import (
	"testing"
	"time"

	"github.com/kbconv/converter/command"
	"github.com/kbconv/converter/config"
	"github.com/kbconv/converter/hidsink"
	"github.com/kbconv/converter/keycode"
	"github.com/kbconv/converter/keymap"
	"github.com/kbconv/converter/ledsink"
)

type memFlash struct {
	copies [2][]byte
}

func (f *memFlash) ReadCopy(idx int) ([]byte, error) {
	if f.copies[idx] == nil {
		return nil, nil
	}
	return f.copies[idx], nil
}

func (f *memFlash) WriteCopy(idx int, data []byte) error {
	buf := make([]byte, len(data))
	copy(buf, data)
	f.copies[idx] = buf
	return nil
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *hidsink.Mock, *ledsink.Mock) {
	t.Helper()
	store := config.NewStore(&memFlash{})
	if _, err := store.Load(); err != nil {
		t.Fatalf("unexpected error loading store: %v", err)
	}

	var layer keymap.Layer
	for r := 0; r < 16; r++ {
		for c := 0; c < 16; c++ {
			layer[r][c] = keycode.Trns
		}
	}
	m := &keymap.Map{Layers: []keymap.Layer{layer}, ActionLayer: -1}
	m.Layers[0][keycode.IfaceA>>4][keycode.IfaceA&0x0F] = keycode.Entry(0x04) // HID 'a'
	m.Layers[0][keycode.IfaceLShift>>4][keycode.IfaceLShift&0x0F] = keycode.Entry(keycode.IfaceLShift)
	m.Layers[0][keycode.IfaceRShift>>4][keycode.IfaceRShift&0x0F] = keycode.Entry(keycode.IfaceRShift)

	engine := keymap.NewEngine(m)
	hid := &hidsink.Mock{}
	led := &ledsink.Mock{}

	var rebooted bool
	det := command.NewDetector(command.DefaultKeys, command.Hooks{
		Reboot: func() { rebooted = true },
		Save:   func() { _ = store.Save() },
	})
	_ = rebooted

	return New(engine, store, det, hid, led, nil, 1, 1), hid, led
}

func TestHandleEventEmitsBasicKeypress(t *testing.T) {
	d, hid, _ := newTestDispatcher(t)
	now := time.Unix(0, 0)

	d.HandleEvent(keycode.Event{Code: keycode.IfaceA, Edge: keycode.Make}, now)
	last := hid.Last()
	if last.UsageCodes[0] != 0x04 {
		t.Fatalf("expected usage 0x04 in first slot, got %+v", last)
	}

	d.HandleEvent(keycode.Event{Code: keycode.IfaceA, Edge: keycode.Break}, now)
	last = hid.Last()
	if last.UsageCodes[0] != 0 {
		t.Fatalf("expected release to clear the slot, got %+v", last)
	}
}

func TestHandleEventTracksModifierByte(t *testing.T) {
	d, hid, _ := newTestDispatcher(t)
	now := time.Unix(0, 0)

	d.HandleEvent(keycode.Event{Code: keycode.IfaceLShift, Edge: keycode.Make}, now)
	d.HandleEvent(keycode.Event{Code: keycode.IfaceA, Edge: keycode.Make}, now)
	last := hid.Last()
	wantMod := uint8(1 << keycode.IfaceLShift.ModifierBit())
	if last.Modifier != wantMod {
		t.Fatalf("expected modifier byte %#x, got %#x", wantMod, last.Modifier)
	}
}

func TestCommandModeEntrySuspendsNormalEmissionAndReleasesAll(t *testing.T) {
	d, hid, led := newTestDispatcher(t)
	t0 := time.Unix(0, 0)

	d.HandleEvent(keycode.Event{Code: keycode.IfaceA, Edge: keycode.Make}, t0)
	if hid.Last().UsageCodes[0] != 0x04 {
		t.Fatalf("setup: expected 'a' pressed before command mode")
	}

	d.HandleEvent(keycode.Event{Code: keycode.IfaceLShift, Edge: keycode.Make}, t0)
	d.HandleEvent(keycode.Event{Code: keycode.IfaceRShift, Edge: keycode.Make}, t0)
	d.Tick(t0.Add(command.HoldDuration))

	if !d.Command.Active() {
		t.Fatalf("expected command mode active after hold threshold crossed")
	}
	if hid.Last().UsageCodes[0] != 0 {
		t.Fatalf("expected release-all report on command mode entry, got %+v", hid.Last())
	}
	if led.Status != ledsink.CommandModePrimary {
		t.Fatalf("expected LED status CommandModePrimary, got %v", led.Status)
	}
}

func TestCommandModeRoutesLetterKeyToReboot(t *testing.T) {
	store := config.NewStore(&memFlash{})
	if _, err := store.Load(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := &keymap.Map{Layers: []keymap.Layer{{}}, ActionLayer: -1}
	for r := 0; r < 16; r++ {
		for c := 0; c < 16; c++ {
			m.Layers[0][r][c] = keycode.Trns
		}
	}
	m.Layers[0][keycode.IfaceB>>4][keycode.IfaceB&0x0F] = keycode.Entry(0x05) // HID 'b'
	m.Layers[0][keycode.IfaceLShift>>4][keycode.IfaceLShift&0x0F] = keycode.Entry(keycode.IfaceLShift)
	m.Layers[0][keycode.IfaceRShift>>4][keycode.IfaceRShift&0x0F] = keycode.Entry(keycode.IfaceRShift)
	engine := keymap.NewEngine(m)
	hid := &hidsink.Mock{}
	led := &ledsink.Mock{}

	rebooted := false
	det := command.NewDetector(command.DefaultKeys, command.Hooks{Reboot: func() { rebooted = true }})
	d := New(engine, store, det, hid, led, nil, 1, 1)

	t0 := time.Unix(0, 0)
	d.HandleEvent(keycode.Event{Code: keycode.IfaceLShift, Edge: keycode.Make}, t0)
	d.HandleEvent(keycode.Event{Code: keycode.IfaceRShift, Edge: keycode.Make}, t0)
	d.Tick(t0.Add(command.HoldDuration))
	if !d.Command.Active() {
		t.Fatalf("expected command mode active")
	}
	d.HandleEvent(keycode.Event{Code: keycode.IfaceB, Edge: keycode.Make}, t0.Add(command.HoldDuration))
	if !rebooted {
		t.Fatalf("expected 'B' to route to the reboot hook while command mode is active")
	}
}

func TestHandleEventRoutesSystemAndConsumerRangesToTheirSinks(t *testing.T) {
	d, hid, _ := newTestDispatcher(t)
	now := time.Unix(0, 0)

	d.Engine.Map.Layers[0][keycode.IfacePower>>4][keycode.IfacePower&0x0F] = keycode.Entry(keycode.IfacePower)
	d.Engine.Map.Layers[0][keycode.IfaceMute>>4][keycode.IfaceMute&0x0F] = keycode.Entry(keycode.IfaceMute)

	d.HandleEvent(keycode.Event{Code: keycode.IfacePower, Edge: keycode.Make}, now)
	if len(hid.SystemControls) != 1 || hid.SystemControls[0] != 0x81 {
		t.Fatalf("expected a System Power Down control, got %+v", hid.SystemControls)
	}
	if len(hid.KeyboardReports) != 0 {
		t.Fatalf("expected no keyboard report for a System Control key, got %+v", hid.KeyboardReports)
	}
	d.HandleEvent(keycode.Event{Code: keycode.IfacePower, Edge: keycode.Break}, now)
	if hid.SystemControls[len(hid.SystemControls)-1] != 0 {
		t.Fatalf("expected release to send the idle System Control code")
	}

	d.HandleEvent(keycode.Event{Code: keycode.IfaceMute, Edge: keycode.Make}, now)
	if len(hid.ConsumerControls) != 1 || hid.ConsumerControls[0] != 0xE2 {
		t.Fatalf("expected a Consumer Control mute code, got %+v", hid.ConsumerControls)
	}
	d.HandleEvent(keycode.Event{Code: keycode.IfaceMute, Edge: keycode.Break}, now)
	if hid.ConsumerControls[len(hid.ConsumerControls)-1] != 0 {
		t.Fatalf("expected release to send the idle Consumer Control code")
	}
}

func TestReleaseAllClearsPressState(t *testing.T) {
	d, hid, _ := newTestDispatcher(t)
	now := time.Unix(0, 0)
	d.HandleEvent(keycode.Event{Code: keycode.IfaceA, Edge: keycode.Make}, now)
	d.ReleaseAll()
	if hid.Last().UsageCodes[0] != 0 || hid.Last().Modifier != 0 {
		t.Fatalf("expected all-clear report after ReleaseAll, got %+v", hid.Last())
	}
	if len(d.pressed) != 0 || len(d.order) != 0 {
		t.Fatalf("expected internal press state cleared")
	}
}
