// Package ansi104 registers the reference keyboard configuration this
// firmware image ships by default: a full-size ANSI AT/PS2 (Scan Code
// Set 2) keyboard with a single base layer. Importing this package for
// its side effect (init) is how cmd/kbconv-firmware picks a compile-time
// board without a runtime flag (SPEC_FULL.md §1 "Configuration").
package ansi104

import (
	"github.com/kbconv/converter/keyboard"
	"github.com/kbconv/converter/keycode"
	"github.com/kbconv/converter/keymap"
)

// USB HID Keyboard/Keypad usage IDs for the base layer's alphanumeric and
// control keys, per the standard USB HID usage table.
const (
	hidA uint8 = 0x04
	hid1 uint8 = 0x1E
	hid0 uint8 = 0x27

	hidEnter     uint8 = 0x28
	hidEsc       uint8 = 0x29
	hidBackspace uint8 = 0x2A
	hidTab       uint8 = 0x2B
	hidSpace     uint8 = 0x2C

	hidRight uint8 = 0x4F
	hidLeft  uint8 = 0x50
	hidDown  uint8 = 0x51
	hidUp    uint8 = 0x52
)

// binding pairs an interface code with the HID usage it emits, for
// buildLayer0's table-driven assembly.
type binding struct {
	iface keycode.Code
	usage uint8
}

func buildLayer0() keymap.Layer {
	var l keymap.Layer
	for r := 0; r < 16; r++ {
		for c := 0; c < 16; c++ {
			l[r][c] = keycode.Trns
		}
	}
	set := func(c keycode.Code, usage uint8) {
		l[c>>4][c&0x0F] = keycode.Entry(usage)
	}

	letters := []binding{
		{keycode.IfaceA, hidA + 0}, {keycode.IfaceB, hidA + 1}, {keycode.IfaceC, hidA + 2},
		{keycode.IfaceD, hidA + 3}, {keycode.IfaceE, hidA + 4}, {keycode.IfaceF, hidA + 5},
		{keycode.IfaceG, hidA + 6}, {keycode.IfaceH, hidA + 7}, {keycode.IfaceI, hidA + 8},
		{keycode.IfaceJ, hidA + 9}, {keycode.IfaceK, hidA + 10}, {keycode.IfaceL, hidA + 11},
		{keycode.IfaceM, hidA + 12}, {keycode.IfaceN, hidA + 13}, {keycode.IfaceO, hidA + 14},
		{keycode.IfaceP, hidA + 15}, {keycode.IfaceQ, hidA + 16}, {keycode.IfaceR, hidA + 17},
		{keycode.IfaceS, hidA + 18}, {keycode.IfaceT, hidA + 19}, {keycode.IfaceU, hidA + 20},
		{keycode.IfaceV, hidA + 21}, {keycode.IfaceW, hidA + 22}, {keycode.IfaceX, hidA + 23},
		{keycode.IfaceY, hidA + 24}, {keycode.IfaceZ, hidA + 25},
	}
	for _, b := range letters {
		set(b.iface, b.usage)
	}

	digits := []binding{
		{keycode.Iface1, hid1 + 0}, {keycode.Iface2, hid1 + 1}, {keycode.Iface3, hid1 + 2},
		{keycode.Iface4, hid1 + 3}, {keycode.Iface5, hid1 + 4}, {keycode.Iface6, hid1 + 5},
		{keycode.Iface7, hid1 + 6}, {keycode.Iface8, hid1 + 7}, {keycode.Iface9, hid1 + 8},
		{keycode.Iface0, hid0},
	}
	for _, b := range digits {
		set(b.iface, b.usage)
	}

	set(keycode.IfaceEnter, hidEnter)
	set(keycode.IfaceEsc, hidEsc)
	set(keycode.IfaceBackspace, hidBackspace)
	set(keycode.IfaceTab, hidTab)
	set(keycode.IfaceSpace, hidSpace)
	set(keycode.IfaceRight, hidRight)
	set(keycode.IfaceLeft, hidLeft)
	set(keycode.IfaceDown, hidDown)
	set(keycode.IfaceUp, hidUp)

	for _, m := range []keycode.Code{
		keycode.IfaceLCtrl, keycode.IfaceLShift, keycode.IfaceLAlt, keycode.IfaceLGUI,
		keycode.IfaceRCtrl, keycode.IfaceRShift, keycode.IfaceRAlt, keycode.IfaceRGUI,
	} {
		set(m, uint8(m))
	}

	return l
}

func init() {
	keyboard.MustRegister(keyboard.Config{
		Make:        "kbconv",
		Model:       "ansi104",
		Description: "Generic full-size ANSI AT/PS2 (Set 2) keyboard, single base layer",
		Protocol:    keyboard.ProtocolATPS2,
		Codeset:     keyboard.Set2,
		Layout: &keymap.Map{
			Layers:      []keymap.Layer{buildLayer0()},
			ActionLayer: -1,
		},
	})
}
