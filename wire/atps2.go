package wire

import (
	"time"

	"github.com/kbconv/converter/ringbuf"
)

// ATPS2BitTimeout bounds how long the reader waits for each successive
// falling clock edge once a frame has started. The line runs at 10-16 kHz
// (60-100 us/bit); this is generous relative to that rate so that ordinary
// scheduling jitter never triggers a false handshake_timeout.
const ATPS2BitTimeout = 2 * time.Millisecond

// ATPS2WriteBitTimeout bounds how long a host-to-device write waits for the
// device to generate each clock pulse once the host has asserted the start
// condition.
const ATPS2WriteBitTimeout = 10 * time.Millisecond

// ATPS2 decodes the AT/PS2 11-bit frame: start(0), 8 data bits LSB-first,
// odd parity, stop(1). The device drives CLOCK in both directions; DATA is
// sampled through Pins.WaitClock at each falling CLOCK edge.
type ATPS2 struct {
	Ring    *ringbuf.Ring
	OnError func(ErrorKind)
}

func (d *ATPS2) raise(k ErrorKind) {
	if d.OnError != nil {
		d.OnError(k)
	}
}

// decodeATPS2Frame validates and extracts the data byte from 11 sampled
// bits. It is a pure function of its input, matching the byte-to-event
// determinism property required of every decoder stage in this pipeline.
func decodeATPS2Frame(bits [11]Line) (byte, error) {
	if bits[0] != Low {
		return 0, &Error{Kind: ErrFraming}
	}
	var b byte
	ones := 0
	for i := 0; i < 8; i++ {
		if bits[1+i] == High {
			b |= 1 << uint(i)
			ones++
		}
	}
	wantParityHigh := ones%2 == 0 // odd parity: total 1-bits (data+parity) must be odd
	gotParityHigh := bits[9] == High
	if wantParityHigh != gotParityHigh {
		return 0, &Error{Kind: ErrParity}
	}
	if bits[10] != High {
		return 0, &Error{Kind: ErrFraming}
	}
	return b, nil
}

// readFrame samples 11 bits, one per falling CLOCK edge driven by the
// device, and decodes them.
func (d *ATPS2) readFrame(p Pins) (byte, error) {
	var bits [11]Line
	for i := range bits {
		data, err := p.WaitClock(Low, ATPS2BitTimeout)
		if err != nil {
			return 0, &Error{Kind: ErrHandshakeTimeout}
		}
		bits[i] = data
	}
	return decodeATPS2Frame(bits)
}

// Run drives the reader loop until stop is closed. Completed bytes are
// pushed to Ring; wire errors are reported via OnError and do not stop the
// loop. Nothing downstream resets the scancode decoder on a wire error.
func (d *ATPS2) Run(p Pins, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
		}
		b, err := d.readFrame(p)
		if err != nil {
			if we, ok := err.(*Error); ok {
				d.raise(we.Kind)
			}
			continue
		}
		d.Ring.Push(b)
	}
}

// frameBitsHostToDevice builds the 11-bit host-to-device frame for b:
// start(0), 8 data bits LSB-first, odd parity, stop(1).
func frameBitsHostToDevice(b byte) [11]Line {
	var bits [11]Line
	bits[0] = Low
	ones := 0
	for i := 0; i < 8; i++ {
		if b&(1<<uint(i)) != 0 {
			bits[1+i] = High
			ones++
		} else {
			bits[1+i] = Low
		}
	}
	bits[9] = Low
	if ones%2 == 0 {
		bits[9] = High
	}
	bits[10] = High
	return bits
}

// Write sends a single byte host-to-device: pull CLOCK low >=100us, assert
// the start bit on DATA, release CLOCK, then present each remaining bit as
// the device clocks it in, finishing by reading the device's low-pulse ACK.
func (d *ATPS2) Write(p Pins, b byte) error {
	bits := frameBitsHostToDevice(b)

	p.SetClock(Low)
	time.Sleep(100 * time.Microsecond)
	p.SetData(bits[0])
	p.ReleaseClock()

	for i := 1; i < len(bits); i++ {
		if _, err := p.WaitClock(Low, ATPS2WriteBitTimeout); err != nil {
			return &Error{Kind: ErrHandshakeTimeout}
		}
		p.SetData(bits[i])
	}

	// Final falling edge clocks in the stop bit; release DATA so the
	// device can drive its ACK.
	if _, err := p.WaitClock(Low, ATPS2WriteBitTimeout); err != nil {
		return &Error{Kind: ErrHandshakeTimeout}
	}
	p.ReleaseData()

	ack, err := p.WaitClock(Low, ATPS2WriteBitTimeout)
	if err != nil {
		return &Error{Kind: ErrHandshakeTimeout}
	}
	if ack != Low {
		return &Error{Kind: ErrFraming}
	}
	return nil
}
