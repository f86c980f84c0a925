package wire

import (
	"time"

	"github.com/kbconv/converter/ringbuf"
)

// M0110 host commands (§4.A).
const (
	M0110CmdInquiry = 0x10
	M0110CmdInstant = 0x14
	M0110CmdModel   = 0x16
	M0110CmdTest    = 0x36
)

// M0110NullResponse is returned by the keyboard (or synthesized locally on
// timeout) when there is no key event to report.
const M0110NullResponse byte = 0x7B

// M0110BitPulse is the CLOCK-low pulse width the host drives for every bit,
// in both directions: this protocol is entirely host-polled, so the host
// generates every clock edge.
const M0110BitPulse = 180 * time.Microsecond

// M0110InquiryTimeout bounds a full Inquiry cycle; on expiry the host
// synthesizes M0110NullResponse rather than treating it as a wire error,
// since an idle keyboard answering nothing is the expected common case.
const M0110InquiryTimeout = 250 * time.Millisecond

// M0110 implements the host-polled Macintosh M0110/M0110A keyboard
// protocol: the host sends a 1-byte command and clocks in a 1-byte
// response, generating every CLOCK edge itself (bits MSB-first).
type M0110 struct {
	Ring    *ringbuf.Ring
	OnError func(ErrorKind)
}

func (d *M0110) raise(k ErrorKind) {
	if d.OnError != nil {
		d.OnError(k)
	}
}

func (d *M0110) clockPulse(p Pins) {
	p.SetClock(Low)
	time.Sleep(M0110BitPulse)
	p.ReleaseClock()
	time.Sleep(M0110BitPulse)
}

func (d *M0110) sendByte(p Pins, b byte) {
	for i := 7; i >= 0; i-- {
		bit := Low
		if b&(1<<uint(i)) != 0 {
			bit = High
		}
		p.SetData(bit)
		d.clockPulse(p)
	}
	p.ReleaseData()
}

// readByte clocks in one response byte, MSB-first, aborting once deadline
// has passed.
func (d *M0110) readByte(p Pins, timeout time.Duration) (byte, error) {
	deadline := time.Now().Add(timeout)
	var b byte
	for i := 7; i >= 0; i-- {
		if time.Now().After(deadline) {
			return 0, &Error{Kind: ErrHandshakeTimeout}
		}
		p.SetClock(Low)
		time.Sleep(M0110BitPulse)
		lvl := p.Data()
		p.ReleaseClock()
		time.Sleep(M0110BitPulse)
		if lvl == High {
			b |= 1 << uint(i)
		}
	}
	return b, nil
}

// Inquiry sends the Inquiry command and returns the response, or
// M0110NullResponse if no key event arrives within M0110InquiryTimeout.
func (d *M0110) Inquiry(p Pins) byte {
	d.sendByte(p, M0110CmdInquiry)
	b, err := d.readByte(p, M0110InquiryTimeout)
	if err != nil {
		return M0110NullResponse
	}
	return b
}

// Run repeatedly issues Inquiry cycles until stop is closed, pushing every
// response byte (including M0110NullResponse) to Ring; the scancode decoder
// is responsible for discarding null responses.
func (d *M0110) Run(p Pins, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
		}
		b := d.Inquiry(p)
		d.Ring.Push(b)
	}
}
