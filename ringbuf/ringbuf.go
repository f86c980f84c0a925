// Package ringbuf implements the single-producer/single-consumer byte queue
// that sits between the real-time bit decoder (the producer, which must
// never allocate or block) and the main-loop scancode decoder (the
// consumer).
//
// This is a deliberate departure from the teacher's own producer/consumer
// idiom (a buffered Go channel feeding PostEvent/PollEvent in tscreen.go):
// a channel send can block and a channel is itself heap-allocated, which
// the bit decoder's real-time contract forbids. A fixed-size array with
// atomic head/tail indices gives the same single-writer/single-reader
// handoff without either property. See DESIGN.md.
package ringbuf

import "sync/atomic"

// Ring is a lock-free fixed-capacity byte queue. The zero value is not
// usable; construct with New. A Ring must have exactly one producer
// goroutine (calling Push) and one consumer goroutine (calling Pop/Len);
// no other concurrent access is safe.
type Ring struct {
	buf  []byte
	mask uint32
	head atomic.Uint32 // next slot the consumer will read
	tail atomic.Uint32 // next slot the producer will write

	// overrun is set by the producer when Push is called against a full
	// buffer, and observed (and cleared) by the consumer.
	overrun atomic.Bool
}

// New creates a Ring with the given capacity, rounded up to the next power
// of two. Capacity must cover at least the longest legal decoder prefix for
// the protocol in use (e.g. 8 bytes for a Set 2 Pause sequence) so that a
// config-store write's interrupt-disabled window cannot starve the decoder.
func New(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	n := uint32(1)
	for int(n) < capacity {
		n <<= 1
	}
	return &Ring{
		buf:  make([]byte, n),
		mask: n - 1,
	}
}

// Push is called by the producer. On success it returns true. If the
// buffer is full, the incoming byte is dropped, the overrun flag is set,
// and Push returns false. Push never allocates and never blocks.
func (r *Ring) Push(b byte) bool {
	tail := r.tail.Load()
	head := r.head.Load()
	if tail-head >= uint32(len(r.buf)) {
		r.overrun.Store(true)
		return false
	}
	r.buf[tail&r.mask] = b
	r.tail.Store(tail + 1)
	return true
}

// Pop is called by the consumer. It returns the next byte and true, or
// (0, false) if the buffer is empty.
func (r *Ring) Pop() (byte, bool) {
	head := r.head.Load()
	tail := r.tail.Load()
	if head == tail {
		return 0, false
	}
	b := r.buf[head&r.mask]
	r.head.Store(head + 1)
	return b, true
}

// Len reports the number of bytes currently queued.
func (r *Ring) Len() int {
	return int(r.tail.Load() - r.head.Load())
}

// Cap reports the buffer's capacity.
func (r *Ring) Cap() int {
	return len(r.buf)
}

// Overrun reports whether the producer has dropped a byte since the last
// call to ClearOverrun. The consumer's main loop observes this and, on
// seeing it true, resets the scancode decoder's state machine to INIT.
func (r *Ring) Overrun() bool {
	return r.overrun.Load()
}

// ClearOverrun clears the sticky overrun flag. Called by the consumer after
// it has reacted to an observed overrun.
func (r *Ring) ClearOverrun() {
	r.overrun.Store(false)
}
