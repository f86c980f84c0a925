package keymap

import "github.com/kbconv/converter/keycode"

// flipTable is the 256-entry numpad<->navigation involution table (§4.E,
// §9 design note: "macro-as-ternary translation tables...become sparse
// 256-entry lookup arrays"). Every keypad digit/operator that has a
// navigation-cluster counterpart maps to it and back; KP5 has no
// navigation counterpart and maps to keycode.NoKey (and back, completing
// the involution over the full set of mapped values per §8 property 6).
var flipTable = buildFlipTable()

func buildFlipTable() [256]keycode.Code {
	var t [256]keycode.Code
	for i := range t {
		t[i] = keycode.Code(i)
	}
	pairs := [...][2]keycode.Code{
		{keycode.IfaceKP0, keycode.IfaceInsert},
		{keycode.IfaceKP1, keycode.IfaceEnd},
		{keycode.IfaceKP2, keycode.IfaceDown},
		{keycode.IfaceKP3, keycode.IfacePageDown},
		{keycode.IfaceKP4, keycode.IfaceLeft},
		{keycode.IfaceKP5, keycode.NoKey},
		{keycode.IfaceKP6, keycode.IfaceRight},
		{keycode.IfaceKP7, keycode.IfaceHome},
		{keycode.IfaceKP8, keycode.IfaceUp},
		{keycode.IfaceKP9, keycode.IfacePageUp},
		{keycode.IfaceKPDot, keycode.IfaceDelete},
	}
	for _, p := range pairs {
		t[p[0]] = p[1]
		t[p[1]] = p[0]
	}
	return t
}

// Flip returns the numpad/navigation counterpart of k, or k itself if k is
// not one of the mapped keypad/navigation codes. Flip(Flip(k)) == k always
// holds (§8 property 6).
func Flip(k byte) keycode.Code {
	return flipTable[k]
}
