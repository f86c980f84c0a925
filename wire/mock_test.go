package wire

import (
	"testing"
	"time"

	"github.com/kbconv/converter/ringbuf"
)

// scriptedPins is a mock Pins that replays a fixed sequence of DATA levels,
// one per WaitClock call, and records SetData/SetClock calls. It is the
// test-double analogue of the teacher's mock backend (mock/backend.go).
type scriptedPins struct {
	script []Line
	pos    int
	data   Line
	clock  Line
	writes []Line
}

func newScriptedPins(script []Line) *scriptedPins {
	return &scriptedPins{script: script, clock: High, data: High}
}

func (p *scriptedPins) WaitClock(level Line, timeout time.Duration) (Line, error) {
	if p.pos >= len(p.script) {
		return Low, ErrTimeout
	}
	v := p.script[p.pos]
	p.pos++
	return v, nil
}

func (p *scriptedPins) Data() Line          { return p.data }
func (p *scriptedPins) SetClock(l Line)     { p.clock = l }
func (p *scriptedPins) SetData(l Line)      { p.data = l; p.writes = append(p.writes, l) }
func (p *scriptedPins) ReleaseClock()       { p.clock = High }
func (p *scriptedPins) ReleaseData()        { p.data = High }

func TestATPS2DecodeFrame(t *testing.T) {
	tests := []struct {
		name    string
		bits    [11]Line
		want    byte
		wantErr bool
	}{
		{
			name: "0x1C odd parity ok",
			// start=0, data=0x1C (00011100) LSB first -> bits 1..8
			bits:    bitsFor(Low, 0x1C, true, High),
			want:    0x1C,
			wantErr: false,
		},
		{
			name:    "bad parity",
			bits:    bitsFor(Low, 0x1C, false, High),
			wantErr: true,
		},
		{
			name:    "bad start bit",
			bits:    bitsFor(High, 0x1C, true, High),
			wantErr: true,
		},
		{
			name:    "bad stop bit",
			bits:    bitsFor(Low, 0x1C, true, Low),
			wantErr: true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := decodeATPS2Frame(tc.bits)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got byte 0x%02X", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got 0x%02X, want 0x%02X", got, tc.want)
			}
		})
	}
}

// bitsFor builds an 11-bit AT/PS2 frame for test construction. If
// correctParity is false, the parity bit is deliberately inverted.
func bitsFor(start Line, data byte, correctParity bool, stop Line) [11]Line {
	var bits [11]Line
	bits[0] = start
	ones := 0
	for i := 0; i < 8; i++ {
		if data&(1<<uint(i)) != 0 {
			bits[1+i] = High
			ones++
		} else {
			bits[1+i] = Low
		}
	}
	wantParityHigh := ones%2 == 0
	if !correctParity {
		wantParityHigh = !wantParityHigh
	}
	if wantParityHigh {
		bits[9] = High
	} else {
		bits[9] = Low
	}
	bits[10] = stop
	return bits
}

func TestATPS2ReadFrameThroughPins(t *testing.T) {
	bits := bitsFor(Low, 0x4D, true, High)
	pins := newScriptedPins(bits[:])
	d := &ATPS2{Ring: ringbuf.New(8)}
	got, err := d.readFrame(pins)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0x4D {
		t.Fatalf("got 0x%02X, want 0x4D", got)
	}
}

func TestATPS2ReadFrameTimeout(t *testing.T) {
	pins := newScriptedPins(nil)
	d := &ATPS2{Ring: ringbuf.New(8)}
	if _, err := d.readFrame(pins); err == nil {
		t.Fatalf("expected handshake timeout error")
	}
}

func TestXTDecodeFrame(t *testing.T) {
	var bits [9]Line
	bits[0] = High // XT start bit is 1
	data := byte(0x1E)
	for i := 0; i < 8; i++ {
		if data&(1<<uint(i)) != 0 {
			bits[1+i] = High
		}
	}
	got, err := decodeXTFrame(bits)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != data {
		t.Fatalf("got 0x%02X, want 0x%02X", got, data)
	}

	bits[0] = Low
	if _, err := decodeXTFrame(bits); err == nil {
		t.Fatalf("expected framing error for bad start bit")
	}
}

func TestAmigaDecodeFrame(t *testing.T) {
	var bits [8]Line
	// 0xA5 = 1010 0101, MSB first
	want := byte(0xA5)
	for i := 0; i < 8; i++ {
		bitIndex := 7 - i
		if want&(1<<uint(bitIndex)) != 0 {
			bits[i] = High
		} else {
			bits[i] = Low
		}
	}
	got := decodeAmigaFrame(bits)
	if got != want {
		t.Fatalf("got 0x%02X, want 0x%02X", got, want)
	}
}

func TestM0110InquiryTimeoutYieldsNullResponse(t *testing.T) {
	pins := newScriptedPins(nil)
	d := &M0110{Ring: ringbuf.New(8)}
	// With no scripted edges, Data() always reads High and WaitClock isn't
	// used by send/read paths (they poll Data() directly on a real
	// timeout-governed loop), so Inquiry must still return within the
	// timeout window rather than hang.
	start := time.Now()
	got := d.Inquiry(pins)
	if got != M0110NullResponse {
		t.Fatalf("got 0x%02X, want null response 0x%02X", got, M0110NullResponse)
	}
	if time.Since(start) < M0110InquiryTimeout {
		t.Fatalf("expected Inquiry to consume the full timeout window")
	}
}
