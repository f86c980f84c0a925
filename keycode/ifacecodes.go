package keycode

// Canonical interface codes. These are position identifiers, not HID usage
// IDs: the keymap engine looks entries up by interface code and the keymap
// ENTRY (not the interface code) carries the HID usage to emit (§4.E).
//
// Base alphanumeric/punctuation/function-key values below reuse the
// well-known AT scancode Set 2 single-byte codes directly (Set 2 and Set 3
// agree on nearly all of these), since §4.C's decoders for the base
// (non-prefixed) byte range are themselves near-identity translations with
// a handful of documented remaps — this is also why scenario S3 (Set 3 'A'
// key, raw byte 0x1C) maps straight to interface code 0x1C with no lookup.
const (
	IfaceF9    Code = 0x01
	IfaceF7Alt Code = 0x02 // target of the 0x83 -> 0x02 remap (F7's alternate make code)
	IfaceF5    Code = 0x03
	IfaceF3    Code = 0x04
	IfaceF1    Code = 0x05
	IfaceF2    Code = 0x06
	IfaceF12   Code = 0x07
	IfaceF10   Code = 0x09
	IfaceF8    Code = 0x0A
	IfaceF6    Code = 0x0B
	IfaceF4    Code = 0x0C
	IfaceTab   Code = 0x0D
	IfaceGrave Code = 0x0E

	IfaceQ Code = 0x15
	Iface1 Code = 0x16
	IfaceZ Code = 0x1A
	IfaceS Code = 0x1B
	IfaceA Code = 0x1C
	IfaceW Code = 0x1D
	Iface2 Code = 0x1E

	IfaceC Code = 0x21
	IfaceX Code = 0x22
	IfaceD Code = 0x23
	IfaceE Code = 0x24
	Iface4 Code = 0x25
	Iface3 Code = 0x26

	IfaceSpace Code = 0x29
	IfaceV     Code = 0x2A
	IfaceF     Code = 0x2B
	IfaceT     Code = 0x2C
	IfaceR     Code = 0x2D
	Iface5     Code = 0x2E

	IfaceN Code = 0x31
	IfaceB Code = 0x32
	IfaceH Code = 0x33
	IfaceG Code = 0x34
	IfaceY Code = 0x35
	Iface6 Code = 0x36

	IfaceM      Code = 0x3A
	IfaceJ      Code = 0x3B
	IfaceU      Code = 0x3C
	Iface7      Code = 0x3D
	Iface8      Code = 0x3E

	IfaceComma  Code = 0x41
	IfaceK      Code = 0x42
	IfaceI      Code = 0x43
	IfaceO      Code = 0x44
	Iface0      Code = 0x45
	Iface9      Code = 0x46

	IfacePeriod    Code = 0x49
	IfaceSlash     Code = 0x4A
	IfaceL         Code = 0x4B
	IfaceSemicolon Code = 0x4C
	IfaceP         Code = 0x4D
	IfaceMinus     Code = 0x4E

	IfaceQuote    Code = 0x52
	IfaceLBracket Code = 0x5C // target of the Set 2/3 0x54 remap; 0x54 is IfacePrintScreen
	IfaceEqual    Code = 0x55
	IfaceCapsLock Code = 0x58
	IfaceEnter    Code = 0x5A
	IfaceRBracket Code = 0x5B
	IfaceBackslash Code = 0x5D

	IfaceBackspace Code = 0x66

	IfaceKP1 Code = 0x69
	IfaceKP4 Code = 0x6B
	IfaceKP7 Code = 0x6C

	IfaceKP0 Code = 0x70
	IfaceKPDot Code = 0x71
	IfaceKP2  Code = 0x72
	IfaceKP5  Code = 0x73
	IfaceKP6  Code = 0x74
	IfaceKP8  Code = 0x75
	IfaceEsc  Code = 0x76
	IfaceNumLock Code = 0x77
	IfaceF11  Code = 0x78
	IfaceKPPlus Code = 0x79
	IfaceKP3  Code = 0x7A
	IfaceKPMinus Code = 0x7B
	IfaceKPStar Code = 0x7C
	IfaceKP9  Code = 0x7D
	IfaceScrollLock Code = 0x7E

	// Reserved, non-identity interface codes pinned by name to the exact
	// values §8's concrete scenarios assert.
	IfacePause       Code = 0x48
	IfacePrintScreen Code = 0x54

	IfaceKPSlash  Code = 0x60
	IfaceKPEnter  Code = 0x61
	IfaceInsert   Code = 0x62
	IfaceHome     Code = 0x63
	IfacePageUp   Code = 0x64
	IfaceDelete   Code = 0x65
	IfaceEnd      Code = 0x6F
	IfacePageDown Code = 0x67
	IfaceUp       Code = 0x10
	IfaceLeft     Code = 0x18
	IfaceDown     Code = 0x19
	IfaceRight    Code = 0x1F
	IfaceApps     Code = 0x6D
	IfacePower    Code = 0xA5
	IfaceSleep    Code = 0xA6
	IfaceWake     Code = 0xA7

	IfaceMute       Code = 0xA8
	IfaceVolumeUp   Code = 0xA9
	IfaceVolumeDown Code = 0xAA
	IfacePlayPause  Code = 0xAB
	IfaceStop       Code = 0xAC
	IfaceNextTrack  Code = 0xAD
	IfacePrevTrack  Code = 0xAE
	IfaceMediaSel   Code = 0xAF
	IfaceCalculator Code = 0xB0
	IfaceWWWHome    Code = 0xB1
	IfaceMail       Code = 0xB2

	// IfaceSysReq is the target of the 0x84 -> 0x7F remap (Alt+SysRq's
	// alternate make code on both Set 2 and Set 3).
	IfaceSysReq Code = 0x7F

	// IfaceF7 is the target of Set 3's own 0x7C -> 0x68 remap (Set 3 assigns
	// F7 a different raw code than Set 2 does).
	IfaceF7 Code = 0x68
)

// Modifier interface codes, matching the HID keyboard modifier byte's own
// bit order (bit0=LCtrl .. bit7=RGUI), which is why the interface code
// range for modifiers (0xE0-0xE7) was chosen to line up with it exactly.
const (
	IfaceLCtrl  Code = ModifierLo + 0
	IfaceLShift Code = ModifierLo + 1
	IfaceLAlt   Code = ModifierLo + 2
	IfaceLGUI   Code = ModifierLo + 3
	IfaceRCtrl  Code = ModifierLo + 4
	IfaceRShift Code = ModifierLo + 5
	IfaceRAlt   Code = ModifierLo + 6
	IfaceRGUI   Code = ModifierLo + 7
)
