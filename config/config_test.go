package config

import "testing"

// memFlash is an in-memory Flash double for tests: two independently
// addressable CopySize regions, with optional forced write failures to
// simulate a power-loss mid-program (§8 property 9).
type memFlash struct {
	copies    [2][]byte
	failWrite [2]bool
}

func newMemFlash() *memFlash {
	return &memFlash{copies: [2][]byte{make([]byte, CopySize), make([]byte, CopySize)}}
}

func (f *memFlash) ReadCopy(idx int) ([]byte, error) {
	buf := make([]byte, CopySize)
	copy(buf, f.copies[idx])
	return buf, nil
}

func (f *memFlash) WriteCopy(idx int, data []byte) error {
	if f.failWrite[idx] {
		return errSimulatedWriteFailure
	}
	f.copies[idx] = append([]byte(nil), data...)
	return nil
}

type writeFailure string

func (e writeFailure) Error() string { return string(e) }

var errSimulatedWriteFailure = writeFailure("simulated flash write failure")

func TestLoadInstallsFactoryDefaultsWhenBothCopiesInvalid(t *testing.T) {
	s := NewStore(newMemFlash())
	valid, err := s.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if valid {
		t.Fatalf("expected valid=false on blank flash")
	}
	if s.Dirty() {
		t.Fatalf("factory defaults should have been saved immediately")
	}
	if s.Record().LayerState != 0x01 {
		t.Fatalf("expected factory layer_state 0x01, got %#x", s.Record().LayerState)
	}
}

// §8 property 7: save then load returns a bitwise-equal record.
func TestSaveLoadRoundTrip(t *testing.T) {
	flash := newMemFlash()
	s := NewStore(flash)
	s.Load()
	s.SetLogLevel(2)
	s.AdjustBrightness(3)
	s.SetLayerState(0x05, 0xAABBCCDD, 0x11223344)
	if err := s.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	want := s.Record()

	s2 := NewStore(flash)
	if _, err := s2.Load(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	got := s2.Record()
	got.Sequence = want.Sequence // sequence is bumped by Save, identical across both views
	if got != want {
		t.Fatalf("round trip mismatch:\n got=%+v\nwant=%+v", got, want)
	}
}

// §8 property 8: flipping any byte outside the CRC field invalidates that
// copy.
func TestCRCCoverageDetectsCorruption(t *testing.T) {
	flash := newMemFlash()
	s := NewStore(flash)
	s.Load()
	s.SetLogLevel(4)
	s.Save()

	idx := s.lastLoaded
	buf, _ := flash.ReadCopy(idx)
	buf[20] ^= 0xFF // a byte well inside the payload, outside the crc16 field
	flash.copies[idx] = buf

	if _, ok := decode(buf); ok {
		t.Fatalf("expected corrupted copy to fail validation")
	}
}

// §8 property 9: a write failure on one copy leaves the other loadable.
func TestDualCopyDurabilityAcrossWriteFailure(t *testing.T) {
	flash := newMemFlash()
	s := NewStore(flash)
	s.Load() // copy 0 now holds factory defaults, valid

	s.SetLogLevel(7)
	if err := s.Save(); err != nil { // writes copy 1
		t.Fatalf("save: %v", err)
	}

	flash.failWrite[0] = true
	s.SetLogLevel(9)
	err := s.Save() // attempts to write copy 0 (alternation), fails
	if err == nil {
		t.Fatalf("expected simulated write failure")
	}
	if !s.Dirty() {
		t.Fatalf("dirty must remain set after a failed save")
	}

	// Copy 1 (the last successful write) must still load cleanly.
	buf, _ := flash.ReadCopy(1)
	rec, ok := decode(buf)
	if !ok {
		t.Fatalf("expected copy 1 to remain valid after copy 0's failed write")
	}
	if rec.LogLevel != 7 {
		t.Fatalf("expected copy 1 to retain log level 7, got %d", rec.LogLevel)
	}
}

// §8 property 10 / layer persistence gating.
func TestLayerStateGatingOnHashMismatch(t *testing.T) {
	s := NewStore(newMemFlash())
	s.Load()
	s.SetLayerState(0x07, 0x1000, 0x2000)
	s.Save()

	if got := s.LayerState(0x1000, 0x2000); got != 0x07 {
		t.Fatalf("expected stored layer_state when hashes match, got %#x", got)
	}
	if got := s.LayerState(0x1000, 0x9999); got != 0x01 {
		t.Fatalf("expected 0x01 fallback on layers_hash mismatch, got %#x", got)
	}
	if got := s.LayerState(0x9999, 0x2000); got != 0x01 {
		t.Fatalf("expected 0x01 fallback on keyboard_id mismatch, got %#x", got)
	}
}

// S5: a v1 record carrying only log_level, read by v3 firmware, migrates
// with factory brightness, default layer state, and a dirty flag primed
// for an immediate re-save at the current version.
func TestMigrationV1ToV3(t *testing.T) {
	buf := make([]byte, CopySize)
	copy(buf[0:4], Magic[:])
	const v1 uint16 = 1
	putU16 := func(b []byte, v uint16) { b[0] = byte(v); b[1] = byte(v >> 8) }
	putU16(buf[4:6], v1)
	putU16(buf[8:10], 0) // sequence low bytes; full write below
	seq := uint32(1)
	buf[8] = byte(seq)
	buf[9] = byte(seq >> 8)
	buf[10] = byte(seq >> 16)
	buf[11] = byte(seq >> 24)
	buf[headerSize] = 2 // log_level = 2
	declared, _ := declaredSize(v1)
	crc := CRC16CCITT(buf[8:declared])
	putU16(buf[6:8], crc)

	flash := newMemFlash()
	flash.copies[0] = buf

	s := NewStore(flash)
	valid, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !valid {
		t.Fatalf("expected the v1 copy to validate")
	}
	rec := s.Record()
	if rec.LogLevel != 2 {
		t.Fatalf("expected log_level=2 preserved, got %d", rec.LogLevel)
	}
	if rec.LEDBrightness != Factory().LEDBrightness {
		t.Fatalf("expected factory brightness after migration, got %d", rec.LEDBrightness)
	}
	if rec.LayerState != 0x01 {
		t.Fatalf("expected default layer_state 0x01, got %#x", rec.LayerState)
	}
	if !s.Dirty() {
		t.Fatalf("expected migrated record to be marked dirty")
	}
	if err := s.Save(); err != nil {
		t.Fatalf("save after migration: %v", err)
	}
	saved, ok := decode(mustReadLastWritten(t, flash))
	if !ok {
		t.Fatalf("expected migrated save to validate")
	}
	if saved.Version != CurrentVersion {
		t.Fatalf("expected saved version %d, got %d", CurrentVersion, saved.Version)
	}
}

func mustReadLastWritten(t *testing.T, flash *memFlash) []byte {
	t.Helper()
	// Copy 1 holds the most recent write in this test's flow (copy 0 held
	// the raw v1 bytes we seeded; Save always targets the copy that is not
	// lastLoaded, i.e. copy 1 here).
	return flash.copies[1]
}
