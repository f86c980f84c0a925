// Package ledsink defines the downstream status/lock LED interface (§6)
// and the brightness math behind Command Mode's '+'/'-' adjustment. The
// LED driver itself is out of scope (§1); this package only owns the
// seam plus the one piece of real color math the converter performs:
// scaling an abstract color pattern's RGB toward black in perceptual
// (Lab) space, grounded on the teacher's color/fit.go use of
// github.com/lucasb-eyer/go-colorful for CIE-space color distance.
package ledsink

import "github.com/lucasb-eyer/go-colorful"

// Pattern identifies an abstract status-LED color/animation the LED
// driver knows how to render; the converter core never picks raw RGB
// values, only a pattern name (§6).
type Pattern int

const (
	Ready Pattern = iota
	WaitingForKeyboard
	Bootloader
	CommandModePrimary
	LogLevelSelect
	BrightnessAdjust
)

func (p Pattern) String() string {
	switch p {
	case Ready:
		return "ready"
	case WaitingForKeyboard:
		return "waiting_for_keyboard"
	case Bootloader:
		return "bootloader"
	case CommandModePrimary:
		return "command_mode_primary"
	case LogLevelSelect:
		return "log_level_select"
	case BrightnessAdjust:
		return "brightness_adjust"
	default:
		return "unknown"
	}
}

// paletteRGB is the base (full-brightness) color for each pattern. These
// are this firmware's own choices, not a hardware constant.
var paletteRGB = map[Pattern]colorful.Color{
	Ready:               {R: 0.0, G: 0.8, B: 0.1},
	WaitingForKeyboard:  {R: 0.9, G: 0.6, B: 0.0},
	Bootloader:          {R: 0.9, G: 0.0, B: 0.9},
	CommandModePrimary:  {R: 0.1, G: 0.3, B: 0.9},
	LogLevelSelect:      {R: 0.9, G: 0.9, B: 0.0},
	BrightnessAdjust:    {R: 1.0, G: 1.0, B: 1.0},
}

// black is the blend target for brightness level 0.
var black = colorful.Color{R: 0, G: 0, B: 0}

// RGB returns the 8-bit RGB triple for pattern at the given brightness
// level (clamped 0..10 per §3), blending the pattern's base color toward
// black in Lab space the same way color/fit.go blends for color matching,
// rather than a naive per-channel multiply, so perceived brightness steps
// stay roughly even across the palette.
func RGB(p Pattern, level uint8) (r, g, b uint8) {
	if level > 10 {
		level = 10
	}
	base, ok := paletteRGB[p]
	if !ok {
		base = paletteRGB[Ready]
	}
	t := float64(level) / 10.0
	blended := black.BlendLab(base, t)
	cr, cg, cb := blended.Clamped().RGB255()
	return cr, cg, cb
}

// Sink is the downstream LED driver interface (§6).
type Sink interface {
	SetStatus(p Pattern)
	SetLockLEDs(caps, num, scroll bool)
	SetBrightness(level uint8)
}

// Mock is an in-memory Sink recording every call, for tests.
type Mock struct {
	Status               Pattern
	Caps, Num, Scroll    bool
	Brightness           uint8
	StatusHistory        []Pattern
}

func (m *Mock) SetStatus(p Pattern) {
	m.Status = p
	m.StatusHistory = append(m.StatusHistory, p)
}

func (m *Mock) SetLockLEDs(caps, num, scroll bool) {
	m.Caps, m.Num, m.Scroll = caps, num, scroll
}

func (m *Mock) SetBrightness(level uint8) { m.Brightness = level }

var _ Sink = (*Mock)(nil)
