package keymap

// ShiftOverrideTable is a per-layer substitution table over the HID usage
// range 0x00-0x7F: tbl[usage] holds the replacement usage in its low 7
// bits and the keycode.SuppressShift flag in bit 7. A zero entry is the
// distinguished "no override" value (§9): usage 0 is KC_NO and is never a
// legitimate override target, so no sentinel pointer/bool is needed.
type ShiftOverrideTable [128]uint8

// TopActiveLayer returns the highest-indexed active layer in bitmap
// active, the layer ApplyShiftOverride consults for its table (§4.E:
// "the active top layer").
func TopActiveLayer(active uint8) uint8 {
	for layer := 7; layer >= 0; layer-- {
		if active&(1<<uint(layer)) != 0 {
			return uint8(layer)
		}
	}
	return 0
}

// ApplyShiftOverride implements §4.E's shift-override step. usage is the
// HID usage about to be emitted for the current key's Make/Break; shiftHeld
// reports whether any shift modifier is currently held. It returns the
// (possibly substituted) usage and whether the outgoing modifier byte
// should have its shift bits stripped for this key's Make/Break.
//
// No substitution happens, and the original usage passes through
// unchanged, unless every one of enabled, shiftHeld, usage<=0x7F, a table
// for topLayer, and a non-"no override" entry in that table all hold.
func ApplyShiftOverride(tables map[uint8]ShiftOverrideTable, enabled, shiftHeld bool, topLayer uint8, usage uint8) (newUsage uint8, suppressShift bool) {
	if !enabled || !shiftHeld || usage > 0x7F {
		return usage, false
	}
	tbl, ok := tables[topLayer]
	if !ok {
		return usage, false
	}
	entry := tbl[usage]
	if entry == 0 {
		return usage, false
	}
	suppress := entry&0x80 != 0
	return entry &^ 0x80, suppress
}
