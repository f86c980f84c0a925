// Command kbreplay is a developer-only tool: it puts the controlling
// terminal into raw mode, turns each pair of hex digits typed at it into a
// byte, and feeds that byte into a scancode decoder, printing the decoded
// (interface code, edge) events as
// they land. It exists to exercise a scancode decoder by hand, without
// real keyboard hardware attached, by typing arbitrary hex byte sequences
// (two hex digits per keystroke pair) at the prompt.
//
// Not part of the production firmware image (cmd/kbconv-firmware); this is
// ambient dev tooling, the role the teacher's demos/_demos programs play,
// grounded on tcell's own raw-mode tty handling in tscreen_posix.go.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/kbconv/converter/keycode"
	"github.com/kbconv/converter/scancode"
	"github.com/pkg/term"
)

func newDecoder(set string) (scancode.Decoder, error) {
	switch set {
	case "set1", "xt":
		return &scancode.XT{}, nil
	case "set2":
		return &scancode.Set2{}, nil
	case "set3":
		return &scancode.Set3{}, nil
	case "amiga":
		return &scancode.Amiga{}, nil
	case "m0110":
		return &scancode.M0110{}, nil
	default:
		return nil, fmt.Errorf("unknown -set %q (want set1|set2|set3|amiga|m0110)", set)
	}
}

func main() {
	set := flag.String("set", "set2", "scancode set to decode: set1|set2|set3|amiga|m0110")
	flag.Parse()

	decoder, err := newDecoder(*set)
	if err != nil {
		fmt.Fprintln(os.Stderr, "kbreplay:", err)
		os.Exit(1)
	}

	tty, err := term.Open("/dev/tty", term.RawMode)
	if err != nil {
		fmt.Fprintln(os.Stderr, "kbreplay: opening tty:", err)
		os.Exit(1)
	}
	defer tty.Restore()
	defer tty.Close()

	fmt.Fprintf(os.Stderr, "kbreplay: decoding as %s; type hex byte pairs, Ctrl-C to exit\n", *set)

	hi := -1
	buf := make([]byte, 1)
	for {
		n, err := tty.Read(buf)
		if err != nil || n == 0 {
			return
		}
		c := buf[0]
		if c == 0x03 { // Ctrl-C
			return
		}
		nibble, ok := hexNibble(c)
		if !ok {
			continue
		}
		if hi < 0 {
			hi = nibble
			continue
		}
		b := byte(hi<<4 | nibble)
		hi = -1
		feed(decoder, b)
	}
}

func feed(d scancode.Decoder, b byte) {
	ev, ok := d.Feed(b)
	if !ok {
		fmt.Printf("%02X -> (pending)\n", b)
		return
	}
	edge := "make"
	if ev.Edge == keycode.Break {
		edge = "break"
	}
	fmt.Printf("%02X -> code=%02X edge=%s\n", b, uint8(ev.Code), edge)
}

func hexNibble(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10, true
	default:
		return 0, false
	}
}
