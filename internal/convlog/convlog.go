// Package convlog is the converter's logging surface: a thin wrapper over
// log/slog that tags every record with the emitting component, the way the
// teacher tags every event with a timestamp and origin (key.go's
// EventTime embedding, event_bundle.go's bundled-event metadata) rather
// than leaving call sites to thread that context through ad hoc.
//
// No third-party structured-logging library appears with real (non-dead)
// usage anywhere in the retrieved pack (see DESIGN.md); stdlib log/slog,
// used the way rcornwell/S370's util/logger/logger.go wraps its own
// leveled logger, is the grounded choice here.
package convlog

import (
	"context"
	"log/slog"
	"os"
)

// Level mirrors the three log levels Command Mode's 'L' sub-menu selects
// (§4.F) and the config record's persisted log_level field (§3).
type Level int

const (
	LevelError Level = iota
	LevelInfo
	LevelDebug
)

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelError:
		return slog.LevelError
	case LevelDebug:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// componentHandler wraps a slog.Handler and injects a "component"
// attribute into every record, so every call site only needs a Logger
// already bound to its own component rather than repeating the attribute.
type componentHandler struct {
	slog.Handler
	component string
}

func (h componentHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(slog.String("component", h.component))
	return h.Handler.Handle(ctx, r)
}

// levelVar is shared by every Logger this package hands out, so changing
// the level at runtime (Command Mode's 'L' sub-menu, SPEC_FULL.md §3 "Log
// level runtime change surfaces immediately") affects all of them without
// rebuilding any Logger.
var levelVar = new(slog.LevelVar)

func init() {
	levelVar.Set(slog.LevelInfo)
}

// SetLevel changes the effective log level for every Logger returned by
// this package, immediately (SPEC_FULL.md §3 supplemented feature).
func SetLevel(l Level) {
	levelVar.Set(l.slogLevel())
}

// base is the shared handler every component Logger is built from.
var base slog.Handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: levelVar})

// New returns a *slog.Logger tagged with component, suitable for a single
// package-level var in each package that needs to log (bitdecoder,
// scancode, keymap, config, dispatch, per SPEC_FULL.md §1).
func New(component string) *slog.Logger {
	return slog.New(componentHandler{Handler: base, component: component})
}
