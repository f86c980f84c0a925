package config

// Flash abstracts the two fixed 2KB flash copies the store reads and
// writes. Grounded on the teacher's pluggable low-level transport shape
// (driver.go's TermDriver): the timing/algorithmic rules here never touch
// a physical register directly, only this seam.
type Flash interface {
	// ReadCopy returns exactly CopySize bytes for copy idx (0 or 1).
	ReadCopy(idx int) ([]byte, error)
	// WriteCopy programs copy idx with exactly CopySize bytes of data.
	// Implementations model the real erase+program critical section
	// (§9: "Interrupts must be disabled across the erase/program
	// window") as a single blocking call; the bit decoder's ring buffer
	// is sized to absorb the resulting ~25ms blackout (§5).
	WriteCopy(idx int, data []byte) error
}

// Store owns the in-RAM configuration record and its dual-copy flash
// backing. The zero value is not usable; construct with NewStore.
type Store struct {
	flash      Flash
	rec        Record
	lastLoaded int // index (0/1) of the copy Load chose, or -1
}

// NewStore constructs a Store bound to the given flash backend. Call Load
// before reading any field.
func NewStore(flash Flash) *Store {
	return &Store{flash: flash, lastLoaded: -1}
}

// Load implements §4.G's load sequence: read and validate both copies,
// select the valid one with the higher sequence number, migrate it if it
// predates CurrentVersion, or install factory defaults (and save them
// immediately) if neither copy validates. It returns whether a valid copy
// was found (false means factory defaults were installed).
func (s *Store) Load() (bool, error) {
	var recs [2]Record
	var oks [2]bool
	for idx := 0; idx < 2; idx++ {
		buf, err := s.flash.ReadCopy(idx)
		if err != nil {
			continue
		}
		recs[idx], oks[idx] = decode(buf)
	}

	switch {
	case oks[0] && oks[1]:
		if recs[1].Sequence > recs[0].Sequence {
			s.adopt(recs[1], 1)
		} else {
			s.adopt(recs[0], 0)
		}
	case oks[0]:
		s.adopt(recs[0], 0)
	case oks[1]:
		s.adopt(recs[1], 1)
	default:
		s.rec = Factory()
		s.lastLoaded = -1
		return false, s.Save()
	}
	return true, nil
}

// adopt installs rec (from copy idx) as the current record, migrating it
// to CurrentVersion first if needed.
func (s *Store) adopt(rec Record, idx int) {
	if rec.Version < CurrentVersion {
		rec = migrate(rec)
	}
	s.rec = rec
	s.lastLoaded = idx
}

// Save implements §4.G's save sequence. A no-op (returning nil) if the
// record is not dirty. Otherwise it bumps the sequence, recomputes the
// CRC, and writes to whichever copy is NOT the source Load last adopted
// from (wear-leveling alternation) - the copy Save did not just write
// from remains untouched and loadable even if this write fails midway
// (§8 property 9), which is exactly what §7's ConfigWriteFailed promises
// ("do not overwrite the other valid copy").
func (s *Store) Save() error {
	if !s.rec.Flags.Dirty {
		return nil
	}
	target := 0
	if s.lastLoaded == 0 {
		target = 1
	}
	newSeq := s.rec.Sequence + 1
	saved := s.rec
	saved.Flags.Dirty = false
	buf := saved.encode(newSeq)
	if err := s.flash.WriteCopy(target, buf); err != nil {
		return &Error{Kind: ErrConfigWriteFailed, Err: err}
	}
	s.rec.Sequence = newSeq
	s.rec.Flags.Dirty = false
	s.lastLoaded = target
	return nil
}

// FactoryReset installs compile-time defaults and saves immediately
// (§4.G "Factory reset").
func (s *Store) FactoryReset() error {
	s.rec = Factory()
	s.rec.Flags.Dirty = true
	return s.Save()
}

// markDirty sets the dirty flag; every mutator below calls this.
func (s *Store) markDirty() { s.rec.Flags.Dirty = true }

// Record returns a copy of the current in-RAM record.
func (s *Store) Record() Record { return s.rec }

// Dirty reports whether unsaved mutations are pending.
func (s *Store) Dirty() bool { return s.rec.Flags.Dirty }

// LayerState implements the layer persistence gating invariant (§3: "A
// persisted layer_state is honored iff keyboard_id and layers_hash both
// match current firmware; otherwise treated as 0x01") and §8 property 10.
func (s *Store) LayerState(keyboardID, layersHash uint32) uint8 {
	if s.rec.KeyboardID == keyboardID && s.rec.LayersHash == layersHash {
		return s.rec.LayerState
	}
	return 0x01
}

// SetLayerState persists a new toggle-layer bitmap together with the
// identifying hashes it is valid for, and marks the record dirty. Bit 0
// is always forced on.
func (s *Store) SetLayerState(state uint8, keyboardID, layersHash uint32) {
	s.rec.LayerState = state | 0x01
	s.rec.KeyboardID = keyboardID
	s.rec.LayersHash = layersHash
	s.markDirty()
}

// SetLogLevel persists a new log level (driven by Command Mode's 'L'
// sub-menu).
func (s *Store) SetLogLevel(level uint8) {
	s.rec.LogLevel = level
	s.markDirty()
}

// AdjustBrightness clamps and persists a brightness delta (Command Mode's
// '+'/'-' keys).
func (s *Store) AdjustBrightness(delta int) uint8 {
	v := int(s.rec.LEDBrightness) + delta
	if v < 0 {
		v = 0
	}
	if v > 10 {
		v = 10
	}
	s.rec.LEDBrightness = uint8(v)
	s.markDirty()
	return s.rec.LEDBrightness
}

// ToggleShiftOverride flips the shift-override-enabled flag (Command
// Mode's 'S' key).
func (s *Store) ToggleShiftOverride() bool {
	s.rec.Flags.ShiftOverrideEnabled = !s.rec.Flags.ShiftOverrideEnabled
	s.markDirty()
	return s.rec.Flags.ShiftOverrideEnabled
}

// ToggleReportMode flips the NKRO/6KRO HID report mode flag (Command
// Mode's 'N' key, SPEC_FULL.md §3 supplemented feature) and returns the
// new state (true = NKRO).
func (s *Store) ToggleReportMode() bool {
	s.rec.Flags.NKROEnabled = !s.rec.Flags.NKROEnabled
	s.markDirty()
	return s.rec.Flags.NKROEnabled
}
