package wire

import (
	"time"

	"github.com/kbconv/converter/ringbuf"
)

// AmigaBitTimeout bounds how long the reader waits for each successive
// clock edge once an Amiga frame has started. The Amiga keyboard clocks at
// 12-17 kHz.
const AmigaBitTimeout = 2 * time.Millisecond

// AmigaAckPulse is the minimum duration the host holds DATA low to
// acknowledge a received frame byte.
const AmigaAckPulse = 85 * time.Microsecond

// Amiga decodes the Amiga keyboard's 8-bit MSB-first frame and performs the
// DATA-line handshake the keyboard requires after every byte. If the host
// fails to ACK within roughly 143 ms the keyboard itself enters its "lost
// sync" recovery and retransmits the last code followed by a sync-lost
// marker byte — both arrive as ordinary frame bytes on the next read, so no
// special-case handling is needed here; that interpretation belongs to the
// scancode decoder, which carries no wire-level meaning of its own.
type Amiga struct {
	Ring    *ringbuf.Ring
	OnError func(ErrorKind)
}

func (d *Amiga) raise(k ErrorKind) {
	if d.OnError != nil {
		d.OnError(k)
	}
}

// decodeAmigaFrame extracts the data byte from 8 MSB-first sampled bits.
// The Amiga protocol carries no parity or stop framing; bit 0 of the
// resulting byte encodes make/break, which is the scancode decoder's
// concern, not this layer's.
func decodeAmigaFrame(bits [8]Line) byte {
	var b byte
	for i := 0; i < 8; i++ {
		b <<= 1
		if bits[i] == High {
			b |= 1
		}
	}
	return b
}

func (d *Amiga) readFrame(p Pins) (byte, error) {
	var bits [8]Line
	for i := range bits {
		data, err := p.WaitClock(Low, AmigaBitTimeout)
		if err != nil {
			return 0, &Error{Kind: ErrHandshakeTimeout}
		}
		bits[i] = data
	}
	return decodeAmigaFrame(bits), nil
}

// ack pulses DATA low for at least AmigaAckPulse to acknowledge receipt of
// a byte, as the Amiga keyboard requires before it will send the next one.
func (d *Amiga) ack(p Pins) {
	p.SetData(Low)
	time.Sleep(AmigaAckPulse)
	p.ReleaseData()
}

// Run drives the reader loop until stop is closed, acknowledging every
// successfully decoded byte.
func (d *Amiga) Run(p Pins, stop <-chan struct{}) {
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
		d.ack(p)
	}
}
