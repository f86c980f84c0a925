// Package hidsink defines the downstream USB HID report interface the
// event dispatcher emits into (§6). USB HID enumeration and report
// transport are explicitly out of scope (§1); this package is only the
// narrow seam the core consumes.
//
// Grounded on the teacher's mock/backend.go MockBackend test-double
// pattern: a small interface plus an in-memory recorder implementation
// used by every other package's tests.
package hidsink

// Sink is the downstream HID report consumer.
type Sink interface {
	// EmitKeyboardReport sends a standard 6-key-rollover-compatible
	// keyboard report: the modifier byte (bit0=LCtrl..bit7=RGUI) and up
	// to 6 simultaneously-pressed usage codes (zero-padded).
	EmitKeyboardReport(modifier uint8, usageCodes [6]uint8)
	// EmitNKROReport sends an NKRO report as a bitmap over the full HID
	// keyboard usage range, used while the config record's
	// Flags.NKROEnabled is set.
	EmitNKROReport(modifier uint8, bitmap [32]byte)
	EmitSystemControl(code uint16)
	EmitConsumerControl(code uint16)
	RequestBootloaderReset()
}

// Mock is an in-memory Sink that records every call, for use in tests.
type Mock struct {
	KeyboardReports []KeyboardReport
	NKROReports     []NKROReport
	SystemControls  []uint16
	ConsumerControls []uint16
	BootloaderResets int
}

// KeyboardReport captures one EmitKeyboardReport call.
type KeyboardReport struct {
	Modifier   uint8
	UsageCodes [6]uint8
}

// NKROReport captures one EmitNKROReport call.
type NKROReport struct {
	Modifier uint8
	Bitmap   [32]byte
}

func (m *Mock) EmitKeyboardReport(modifier uint8, usageCodes [6]uint8) {
	m.KeyboardReports = append(m.KeyboardReports, KeyboardReport{Modifier: modifier, UsageCodes: usageCodes})
}

func (m *Mock) EmitNKROReport(modifier uint8, bitmap [32]byte) {
	m.NKROReports = append(m.NKROReports, NKROReport{Modifier: modifier, Bitmap: bitmap})
}

func (m *Mock) EmitSystemControl(code uint16) {
	m.SystemControls = append(m.SystemControls, code)
}

func (m *Mock) EmitConsumerControl(code uint16) {
	m.ConsumerControls = append(m.ConsumerControls, code)
}

func (m *Mock) RequestBootloaderReset() { m.BootloaderResets++ }

// Last returns the most recently emitted keyboard report, or the zero
// value if none has been emitted yet.
func (m *Mock) Last() KeyboardReport {
	if len(m.KeyboardReports) == 0 {
		return KeyboardReport{}
	}
	return m.KeyboardReports[len(m.KeyboardReports)-1]
}

var _ Sink = (*Mock)(nil)
