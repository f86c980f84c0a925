package keyboard

import (
	"errors"
	"testing"
	"time"
)

func TestClassifyEmptyIDIsSet1XT(t *testing.T) {
	set, needsF8, matched := Classify(nil)
	if !matched || set != Set1 || needsF8 {
		t.Fatalf("got set=%v needsF8=%v matched=%v", set, needsF8, matched)
	}
}

func TestClassifyKnownIDs(t *testing.T) {
	cases := []struct {
		id      []byte
		set     ScancodeSet
		needsF8 bool
	}{
		{[]byte{0xAB, 0x83}, Set2, false},
		{[]byte{0xAB, 0x86}, Set2, true},
		{[]byte{0xBF, 0xB1}, Set3, true},
	}
	for _, c := range cases {
		set, needsF8, matched := Classify(c.id)
		if !matched || set != c.set || needsF8 != c.needsF8 {
			t.Fatalf("Classify(%v) = (%v,%v,%v), want (%v,%v,true)", c.id, set, needsF8, matched, c.set, c.needsF8)
		}
	}
}

func TestClassifyUnknownIDUnmatched(t *testing.T) {
	_, _, matched := Classify([]byte{0x12, 0x34})
	if matched {
		t.Fatalf("expected unknown id to be unmatched")
	}
}

// scriptedTransport is a scripted mock Transport, the keyboard package's
// analogue of wire/mock_test.go's scriptedPins.
type scriptedTransport struct {
	reads []byte
	sent  []byte
}

func (s *scriptedTransport) Send(b byte) error {
	s.sent = append(s.sent, b)
	return nil
}

func (s *scriptedTransport) Read(timeout time.Duration) (byte, error) {
	if len(s.reads) == 0 {
		return 0, errors.New("no more scripted bytes")
	}
	b := s.reads[0]
	s.reads = s.reads[1:]
	return b, nil
}

func TestBootHappyPathSendsF8WhenNeeded(t *testing.T) {
	tr := &scriptedTransport{reads: []byte{selfTestOK, 0xAB, 0x86}}
	res, err := Boot(tr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Set != Set2 || !res.NeedsF8 {
		t.Fatalf("got %+v", res)
	}
	if len(tr.sent) != 2 || tr.sent[0] != cmdIdentify || tr.sent[1] != cmdSetAllF8 {
		t.Fatalf("expected identify then set-all-f8, got %v", tr.sent)
	}
}

func TestBootSkipsF8WhenNotNeeded(t *testing.T) {
	tr := &scriptedTransport{reads: []byte{selfTestOK, 0xAB, 0x83}}
	res, err := Boot(tr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.NeedsF8 {
		t.Fatalf("expected no F8 for AB 83")
	}
	if len(tr.sent) != 1 || tr.sent[0] != cmdIdentify {
		t.Fatalf("expected only identify to be sent, got %v", tr.sent)
	}
}

func TestBootDeviceAbsentAfterRetriesExhausted(t *testing.T) {
	tr := &scriptedTransport{}
	_, err := Boot(tr)
	if !errors.Is(err, ErrDeviceAbsent) {
		t.Fatalf("expected ErrDeviceAbsent, got %v", err)
	}
}

func TestRegisterRequiresFields(t *testing.T) {
	defer func() { registry = map[string]Config{} }()
	err := Register(Config{Make: "kbconv"})
	if err == nil {
		t.Fatalf("expected error for incomplete config")
	}
}

func TestRegisterAndLookup(t *testing.T) {
	defer func() { registry = map[string]Config{} }()
	cfg := Config{
		Make:        "kbconv",
		Model:       "test-board",
		Description: "unit test keyboard",
		Protocol:    ProtocolATPS2,
		Codeset:     Set2,
		Layout:      testMap(),
	}
	if err := Register(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok := Lookup("kbconv/test-board")
	if !ok || got.Description != cfg.Description {
		t.Fatalf("Lookup returned %+v, ok=%v", got, ok)
	}
	if err := Register(cfg); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
}
