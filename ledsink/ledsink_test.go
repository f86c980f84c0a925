package ledsink

import "testing"

func TestRGBBrightnessZeroIsBlack(t *testing.T) {
	r, g, b := RGB(Ready, 0)
	if r != 0 || g != 0 || b != 0 {
		t.Fatalf("expected black at brightness 0, got (%d,%d,%d)", r, g, b)
	}
}

func TestRGBBrightnessFullMatchesPattern(t *testing.T) {
	r, g, b := RGB(CommandModePrimary, 10)
	if r == 0 && g == 0 && b == 0 {
		t.Fatalf("expected a non-black color at full brightness")
	}
}

func TestRGBClampsAboveTen(t *testing.T) {
	r1, g1, b1 := RGB(Bootloader, 10)
	r2, g2, b2 := RGB(Bootloader, 255)
	if r1 != r2 || g1 != g2 || b1 != b2 {
		t.Fatalf("expected brightness above 10 to clamp to the level-10 color")
	}
}

func TestMockRecordsStatusHistory(t *testing.T) {
	m := &Mock{}
	m.SetStatus(WaitingForKeyboard)
	m.SetStatus(Ready)
	if len(m.StatusHistory) != 2 || m.StatusHistory[1] != Ready {
		t.Fatalf("expected status history to record both transitions, got %v", m.StatusHistory)
	}
}
