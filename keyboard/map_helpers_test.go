package keyboard

import "github.com/kbconv/converter/keymap"

// testMap builds the minimal valid *keymap.Map used by registry tests.
func testMap() *keymap.Map {
	return &keymap.Map{
		Layers:      []keymap.Layer{{}},
		ActionLayer: -1,
	}
}
