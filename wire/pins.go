// Package wire implements the bit-level protocol decoders: the component
// that recovers frame bytes from asynchronous clocked serial lines for the
// AT/PS2, XT, Amiga, and M0110 keyboard families. It is the real-time
// producer side of the pipeline — it must never allocate on its hot path
// and must never hold a lock; completed bytes and error signals are handed
// off to a ringbuf.Ring for the main loop to consume.
//
// The seam between the bit-timing rules below and the physical pins is the
// Pins interface, mirrored on the teacher's pluggable TermDriver/Tty
// abstractions (driver.go, tty/tty.go): callers supply a concrete Pins for
// their board (see wire/gpiolinux for a real one) or a mock for tests.
package wire

import (
	"errors"
	"time"
)

// Line is the logical level of a single GPIO line.
type Line bool

const (
	Low  Line = false
	High Line = true
)

// ErrTimeout is returned by Pins.WaitClock when the requested edge does not
// arrive within the given duration.
var ErrTimeout = errors.New("wire: timed out waiting for clock edge")

// Pins abstracts the two GPIO lines (CLOCK and DATA) a protocol decoder
// drives. Implementations are expected to run on real hardware (see
// wire/gpiolinux) or to be a scripted test double.
//
// All methods may block the calling goroutine; callers run the bit decoder
// on its own goroutine (or hardware PIO/ISR equivalent) precisely so that
// this blocking never stalls the main loop.
type Pins interface {
	// WaitClock blocks until CLOCK reaches level, or timeout elapses, and
	// returns the DATA line level sampled at the moment CLOCK crossed.
	WaitClock(level Line, timeout time.Duration) (data Line, err error)

	// Data reads the current DATA line level without waiting for an edge.
	Data() Line

	// SetClock and SetData drive the corresponding line low or high. Used
	// by AT/PS2 writes, Amiga ACK pulses, and M0110, whose host generates
	// every clock edge. ReleaseClock/ReleaseData return the line to
	// high-impedance/pulled-up input mode.
	SetClock(level Line)
	SetData(level Line)
	ReleaseClock()
	ReleaseData()
}

// Kind identifies which bit-level protocol a Pins instance should be
// decoded as.
type Kind int

const (
	KindATPS2 Kind = iota
	KindXT
	KindAmiga
	KindM0110
)

func (k Kind) String() string {
	switch k {
	case KindATPS2:
		return "at-ps2"
	case KindXT:
		return "xt"
	case KindAmiga:
		return "amiga"
	case KindM0110:
		return "m0110"
	default:
		return "unknown"
	}
}

// ErrorKind classifies a non-fatal wire-level failure (§7 WireError /
// HandshakeTimeout; a buffer overrun is the ring buffer's own flag, not an
// ErrorKind). All are recoverable: the bit decoder reports them through
// OnError and keeps reading. They do not reset the scancode decoder.
type ErrorKind int

const (
	ErrFraming ErrorKind = iota
	ErrParity
	ErrHandshakeTimeout
)

func (k ErrorKind) String() string {
	switch k {
	case ErrFraming:
		return "framing_error"
	case ErrParity:
		return "parity_error"
	case ErrHandshakeTimeout:
		return "handshake_timeout"
	default:
		return "unknown_error"
	}
}

// Error is the event a bit decoder raises for a non-fatal wire condition.
type Error struct {
	Kind ErrorKind
}

func (e *Error) Error() string { return e.Kind.String() }
