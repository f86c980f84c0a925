package keyboard

import (
	"fmt"

	"github.com/kbconv/converter/keymap"
	"github.com/kbconv/converter/wire"
)

// Protocol identifies which bit-level wire protocol a keyboard speaks.
type Protocol int

const (
	ProtocolXT Protocol = iota
	ProtocolATPS2
	ProtocolAmiga
	ProtocolM0110
)

func (p Protocol) String() string {
	switch p {
	case ProtocolXT:
		return "xt"
	case ProtocolATPS2:
		return "at-ps2"
	case ProtocolAmiga:
		return "amiga"
	case ProtocolM0110:
		return "m0110"
	default:
		return "unknown"
	}
}

// Config is the compile-time per-keyboard configuration record (§6
// "Keyboard config record"). Register returns an error (MustRegister
// panics) if Make, Model, Description, Codeset or Layout is missing, the Go
// equivalent of the original firmware's "missing any required field is a
// hard build error". Protocol is not checked: its zero value is
// ProtocolXT, so an unset Protocol registers as XT.
type Config struct {
	Make        string
	Model       string
	Description string
	Protocol    Protocol
	Codeset     ScancodeSet
	Layout      *keymap.Map
}

func (c Config) validate() error {
	switch {
	case c.Make == "":
		return fmt.Errorf("keyboard: Make is required")
	case c.Model == "":
		return fmt.Errorf("keyboard: Model is required")
	case c.Description == "":
		return fmt.Errorf("keyboard: Description is required")
	case c.Codeset == SetUnknown:
		return fmt.Errorf("keyboard: Codeset is required")
	case c.Layout == nil:
		return fmt.Errorf("keyboard: Layout is required")
	case len(c.Layout.Layers) == 0:
		return fmt.Errorf("keyboard: Layout must define at least one layer")
	}
	return nil
}

// WireKind maps Config.Protocol to the wire package's Kind, since wire's
// bit decoder is parameterized independently of this package's higher-
// level Protocol enum.
func (c Config) WireKind() wire.Kind {
	switch c.Protocol {
	case ProtocolXT:
		return wire.KindXT
	case ProtocolAmiga:
		return wire.KindAmiga
	case ProtocolM0110:
		return wire.KindM0110
	default:
		return wire.KindATPS2
	}
}

// registry is the compile-time KEYBOARD=<vendor>/<model> lookup table,
// grounded on the teacher's named *Layout registry in vt/layout.go
// (KeyboardANSI and friends registered as package-level values) - here
// keyed by string instead of being individual exported variables, since
// the key itself (the KEYBOARD env var value) is the selection mechanism
// (§6 "CLI/Docker... a single environment variable KEYBOARD=<vendor>/
// <model> selects which compile-time config to bake").
var registry = map[string]Config{}

// Register adds a keyboard configuration under "<Make>/<Model>". It
// returns an error if cfg is missing a required field or the key is
// already registered.
func Register(cfg Config) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	key := cfg.Make + "/" + cfg.Model
	if _, exists := registry[key]; exists {
		return fmt.Errorf("keyboard: %q already registered", key)
	}
	registry[key] = cfg
	return nil
}

// MustRegister is Register, panicking on error - for use in package-level
// init() calls, the idiomatic Go equivalent of a hard build-time error.
func MustRegister(cfg Config) {
	if err := Register(cfg); err != nil {
		panic(err)
	}
}

// Lookup resolves a "<vendor>/<model>" key (the KEYBOARD env var's value)
// to its registered Config.
func Lookup(key string) (Config, bool) {
	cfg, ok := registry[key]
	return cfg, ok
}

// Keys returns every registered "<vendor>/<model>" key, for diagnostics
// (e.g. printing the valid KEYBOARD values when none is set or matched).
func Keys() []string {
	keys := make([]string, 0, len(registry))
	for k := range registry {
		keys = append(keys, k)
	}
	return keys
}
