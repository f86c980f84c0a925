// Command kbconv-firmware is the production boot entry point: it reads
// KEYBOARD from the environment (SPEC_FULL.md §1, spec.md §6 "a single
// environment variable KEYBOARD=<vendor>/<model> selects which
// compile-time config to bake"), opens the GPIO lines, and runs the
// converter's main loop until killed.
//
// Grounded on the teacher's demos/ "small standalone main wiring one
// concrete backend to the library" shape (e.g. demos/hello/main.go).
package main

import (
	"fmt"
	"os"
	"strconv"

	kbconv "github.com/kbconv/converter"
	_ "github.com/kbconv/converter/boards/ansi104"
	"github.com/kbconv/converter/hidsink"
	"github.com/kbconv/converter/keyboard"
	"github.com/kbconv/converter/ledsink"
	"github.com/kbconv/converter/wire/gpiolinux"
)

func envUint(name string, fallback uint32) uint32 {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return fallback
	}
	return uint32(n)
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "kbconv-firmware:", err)
		os.Exit(1)
	}
}

func run() error {
	key := os.Getenv("KEYBOARD")
	if key == "" {
		key = "kbconv/ansi104"
	}
	cfg, ok := keyboard.Lookup(key)
	if !ok {
		return fmt.Errorf("unknown KEYBOARD %q (known: %v)", key, keyboard.Keys())
	}

	chipPath := os.Getenv("KBCONV_GPIOCHIP")
	if chipPath == "" {
		chipPath = "/dev/gpiochip0"
	}
	clockOffset := envUint("KBCONV_CLOCK_PIN", 0)
	dataOffset := envUint("KBCONV_DATA_PIN", 1)
	pins, err := gpiolinux.Open(chipPath, clockOffset, dataOffset)
	if err != nil {
		return fmt.Errorf("opening gpio: %w", err)
	}
	defer pins.Close()

	flashPath := os.Getenv("KBCONV_CONFIG_FILE")
	if flashPath == "" {
		flashPath = "/etc/kbconv/config.bin"
	}
	flash, err := newFileFlash(flashPath)
	if err != nil {
		return fmt.Errorf("opening config store: %w", err)
	}

	hid := &hidsink.Mock{} // production HID transport is out of scope (§1); see DESIGN.md.
	led := &ledsink.Mock{} // production LED transport is out of scope (§1); see DESIGN.md.

	engine, err := kbconv.New(cfg, pins, flash, hid, led, nil, layersHash(cfg))
	if err != nil {
		return err
	}

	if err := engine.Boot(nil); err != nil {
		fmt.Fprintln(os.Stderr, "kbconv-firmware: device absent, continuing with empty event stream:", err)
	}

	engine.Run()
	return nil
}

// layersHash derives a stable identifier for a compile-time layout, used
// by the config store's layer-state persistence gate (§3/§8 property 10)
// so a firmware rebuild with a different keymap never honors a stale
// persisted toggle-layer bitmap.
func layersHash(cfg keyboard.Config) uint32 {
	var h uint32 = 2166136261
	for _, layer := range cfg.Layout.Layers {
		for r := range layer {
			for c := range layer[r] {
				h = (h ^ uint32(layer[r][c])) * 16777619
			}
		}
	}
	return h
}
