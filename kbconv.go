// Package kbconv wires together the pipeline stages spec.md lays out as
// (A)->(B)->(C)->(H)->(E): the bit decoder, ring buffer, scancode decoder,
// and event dispatcher (which itself drives the keymap engine, Command
// Mode, and the config store). It runs Device Init (D) once at boot and
// then drives the main cooperative loop (§5: "single-threaded round-robin
// over (C)->(E)->(H), config I/O, USB tasks").
//
// Grounded on the teacher's tscreen.go tScreen struct: one struct owning
// every collaborator and a single blocking loop method, adapted here from
// a UI-refresh loop to a keyboard-conversion loop.
package kbconv

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/kbconv/converter/command"
	"github.com/kbconv/converter/config"
	"github.com/kbconv/converter/dispatch"
	"github.com/kbconv/converter/hidsink"
	"github.com/kbconv/converter/internal/convlog"
	"github.com/kbconv/converter/keyboard"
	"github.com/kbconv/converter/keymap"
	"github.com/kbconv/converter/ledsink"
	"github.com/kbconv/converter/ringbuf"
	"github.com/kbconv/converter/scancode"
	"github.com/kbconv/converter/wire"
)

// ringCapacity covers the "longest sequence" byte count §5 requires the
// ring buffer to absorb across a ~25ms config-save blackout (Set 2's Pause
// make+break sequence is 8 bytes; this leaves ample headroom at line
// rate).
const ringCapacity = 64

// bitRunner is the common shape of wire.ATPS2/XT/Amiga/M0110's Run method;
// Engine drives whichever one the keyboard's protocol selects without a
// type switch on every loop iteration.
type bitRunner interface {
	Run(p wire.Pins, stop <-chan struct{})
}

// Engine is the converter's runtime: one instance per attached keyboard.
type Engine struct {
	Config keyboard.Config
	Pins   wire.Pins

	ring    *ringbuf.Ring
	runner  bitRunner
	decoder scancode.Decoder

	store      *config.Store
	dispatcher *dispatch.Dispatcher

	log  *slog.Logger
	stop chan struct{}
}

// newDecoder selects the scancode decoder matching set.
func newDecoder(set keyboard.ScancodeSet) (scancode.Decoder, error) {
	switch set {
	case keyboard.Set1:
		return &scancode.XT{}, nil
	case keyboard.Set2:
		return &scancode.Set2{}, nil
	case keyboard.Set3:
		return &scancode.Set3{}, nil
	case keyboard.SetAmiga:
		return &scancode.Amiga{}, nil
	case keyboard.SetM0110:
		return &scancode.M0110{}, nil
	default:
		return nil, fmt.Errorf("kbconv: unknown scancode set %v", set)
	}
}

// newRunner selects the bit-level protocol decoder matching cfg, bound to
// ring and a debug-logging OnError callback (SPEC_FULL.md §1: wire errors
// route through convlog at debug).
func newRunner(cfg keyboard.Config, ring *ringbuf.Ring, log *slog.Logger) bitRunner {
	onErr := func(kind wire.ErrorKind) {
		log.Debug("wire error", "kind", kind.String())
	}
	switch cfg.Protocol {
	case keyboard.ProtocolXT:
		return &wire.XT{Ring: ring, OnError: onErr}
	case keyboard.ProtocolAmiga:
		return &wire.Amiga{Ring: ring, OnError: onErr}
	case keyboard.ProtocolM0110:
		return &wire.M0110{Ring: ring, OnError: onErr}
	default:
		return &wire.ATPS2{Ring: ring, OnError: onErr}
	}
}

// New constructs an Engine for cfg, ready to Boot and Run. shiftOverride
// may be nil if the keyboard defines no shift-override tables.
func New(cfg keyboard.Config, pins wire.Pins, flash config.Flash, hid hidsink.Sink, led ledsink.Sink, shiftOverride map[uint8]keymap.ShiftOverrideTable, layersHash uint32) (*Engine, error) {
	decoder, err := newDecoder(cfg.Codeset)
	if err != nil {
		return nil, err
	}

	log := convlog.New("kbconv")
	ring := ringbuf.New(ringCapacity)

	store := config.NewStore(flash)
	if _, err := store.Load(); err != nil {
		return nil, fmt.Errorf("kbconv: loading config: %w", err)
	}
	convlog.SetLevel(convlog.Level(store.Record().LogLevel))

	engine := keymap.NewEngine(cfg.Layout)

	var keyboardID uint32
	for _, b := range []byte(cfg.Make + "/" + cfg.Model) {
		keyboardID = keyboardID*31 + uint32(b)
	}

	det := command.NewDetector(command.DefaultKeys, command.Hooks{})
	disp := dispatch.New(engine, store, det, hid, led, shiftOverride, keyboardID, layersHash)

	det.Hooks = command.Hooks{
		Reboot: func() {
			if hid != nil {
				hid.RequestBootloaderReset()
			}
			if led != nil {
				led.SetStatus(ledsink.Bootloader)
			}
		},
		SetLogLevel: func(l command.LogLevel) {
			store.SetLogLevel(uint8(l))
			convlog.SetLevel(convlog.Level(l))
		},
		FactoryReset: func() {
			_ = store.FactoryReset()
		},
		AdjustBrightness: func(delta int) {
			level := store.AdjustBrightness(delta)
			if led != nil {
				led.SetBrightness(level)
			}
		},
		ToggleShiftOverride: func() {
			store.ToggleShiftOverride()
		},
		ToggleReportMode: func() {
			store.ToggleReportMode()
		},
		Save: func() {
			_ = store.Save()
		},
	}

	return &Engine{
		Config:     cfg,
		Pins:       pins,
		ring:       ring,
		runner:     newRunner(cfg, ring, log),
		decoder:    decoder,
		store:      store,
		dispatcher: disp,
		log:        log,
		stop:       make(chan struct{}),
	}, nil
}

// Boot runs Device Init (§4.D) for protocols that support it. AT/PS2 is
// the only protocol with a self-test/identify handshake of this shape;
// XT, Amiga, and M0110 keyboards have no such handshake, so Boot is a
// no-op for them and the compile-time Config's own Codeset is trusted
// as-is.
func (e *Engine) Boot(transport keyboard.Transport) error {
	if e.Config.Protocol != keyboard.ProtocolATPS2 || transport == nil {
		return nil
	}
	result, err := keyboard.Boot(transport)
	if err != nil {
		e.log.Info("device absent", "error", err)
		return err
	}
	e.log.Info("device identified", "set", result.Set.String(), "needs_f8", result.NeedsF8)
	return nil
}

// Run starts the bit-level producer goroutine and then drives the
// cooperative consumer loop (§5) until Stop is called. It blocks.
func (e *Engine) Run() {
	go e.runner.Run(e.Pins, e.stop)

	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-e.stop:
			return
		default:
		}
		if b, ok := e.ring.Pop(); ok {
			e.consume(b)
			continue
		}
		if e.ring.Overrun() {
			e.ring.ClearOverrun()
			e.log.Debug("ring buffer overrun")
			e.decoder.Reset()
			e.dispatcher.ReleaseAll()
			continue
		}
		select {
		case <-e.stop:
			return
		case now := <-ticker.C:
			e.dispatcher.Tick(now)
		}
	}
}

func (e *Engine) consume(b byte) {
	ev, ok := e.decoder.Feed(b)
	if !ok {
		return
	}
	e.dispatcher.HandleEvent(ev, time.Now())
}

// Stop terminates the bit-level producer and the consumer loop.
func (e *Engine) Stop() { close(e.stop) }

// Store exposes the config store for callers that need direct access
// (e.g. a factory-reset button wired outside Command Mode).
func (e *Engine) Store() *config.Store { return e.store }
