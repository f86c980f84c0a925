package wire

import (
	"time"

	"github.com/kbconv/converter/ringbuf"
)

// XTBitTimeout bounds how long the reader waits for each successive
// falling clock edge once an XT frame has started.
const XTBitTimeout = 2 * time.Millisecond

// XT decodes the unidirectional (device-to-host only) 9-bit XT frame: 1
// start bit (1), 8 data bits LSB-first, no parity, no stop bit.
type XT struct {
	Ring    *ringbuf.Ring
	OnError func(ErrorKind)
}

func (d *XT) raise(k ErrorKind) {
	if d.OnError != nil {
		d.OnError(k)
	}
}

// decodeXTFrame validates and extracts the data byte from 9 sampled bits.
func decodeXTFrame(bits [9]Line) (byte, error) {
	if bits[0] != High {
		return 0, &Error{Kind: ErrFraming}
	}
	var b byte
	for i := 0; i < 8; i++ {
		if bits[1+i] == High {
			b |= 1 << uint(i)
		}
	}
	return b, nil
}

func (d *XT) readFrame(p Pins) (byte, error) {
	var bits [9]Line
	for i := range bits {
		data, err := p.WaitClock(Low, XTBitTimeout)
		if err != nil {
			return 0, &Error{Kind: ErrHandshakeTimeout}
		}
		bits[i] = data
	}
	return decodeXTFrame(bits)
}

// Run drives the reader loop until stop is closed.
func (d *XT) Run(p Pins, stop <-chan struct{}) {
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
