package ringbuf

import "testing"

func TestPushPop(t *testing.T) {
	r := New(4)
	if r.Cap() != 4 {
		t.Fatalf("expected capacity 4, got %d", r.Cap())
	}
	for _, b := range []byte{0x11, 0x22, 0x33} {
		if !r.Push(b) {
			t.Fatalf("push of 0x%02X unexpectedly failed", b)
		}
	}
	for _, want := range []byte{0x11, 0x22, 0x33} {
		got, ok := r.Pop()
		if !ok {
			t.Fatalf("expected a byte, got empty")
		}
		if got != want {
			t.Fatalf("expected 0x%02X, got 0x%02X", want, got)
		}
	}
	if _, ok := r.Pop(); ok {
		t.Fatalf("expected empty ring, got a byte")
	}
}

func TestCapacityRoundsUpToPowerOfTwo(t *testing.T) {
	tests := []struct {
		request int
		want    int
	}{
		{1, 1},
		{3, 4},
		{8, 8},
		{9, 16},
		{64, 64},
	}
	for _, tc := range tests {
		r := New(tc.request)
		if r.Cap() != tc.want {
			t.Errorf("New(%d).Cap() = %d, want %d", tc.request, r.Cap(), tc.want)
		}
	}
}

func TestOverrunSetsStickyFlag(t *testing.T) {
	r := New(2)
	if !r.Push(1) || !r.Push(2) {
		t.Fatalf("unexpected push failure filling the buffer")
	}
	if r.Push(3) {
		t.Fatalf("expected push against full buffer to fail")
	}
	if !r.Overrun() {
		t.Fatalf("expected overrun flag to be set")
	}
	r.ClearOverrun()
	if r.Overrun() {
		t.Fatalf("expected overrun flag to clear")
	}
	// The two original bytes are still intact: overrun drops only the
	// byte that didn't fit, it does not corrupt what's already queued.
	if b, ok := r.Pop(); !ok || b != 1 {
		t.Fatalf("expected first queued byte 1, got %v ok=%v", b, ok)
	}
}

func TestLenTracksPushAndPop(t *testing.T) {
	r := New(8)
	if r.Len() != 0 {
		t.Fatalf("expected empty ring, len=%d", r.Len())
	}
	r.Push(1)
	r.Push(2)
	if r.Len() != 2 {
		t.Fatalf("expected len 2, got %d", r.Len())
	}
	r.Pop()
	if r.Len() != 1 {
		t.Fatalf("expected len 1, got %d", r.Len())
	}
}
