// Package keymap resolves interface codes through a stack of layers into
// HID usages, and decodes the action values a keymap entry can carry
// (momentary/toggle/one-shot layers, the Fn alias, numpad-flip requests,
// and macro expansion), per §4.E.
//
// The resolution and action-decode shape is grounded on the teacher's
// vt/layout.go: Layout's inheritance-by-lookup-until-match pattern becomes
// the descending-layer scan here, and KeyboardState's held-modifier /
// repeat-timing bookkeeping becomes Engine's per-code momentary-hold
// tracking below.
package keymap

import "github.com/kbconv/converter/keycode"

// Layer is one 16x16 matrix of keymap entries, indexed by interface code:
// row = high nibble, column = low nibble.
type Layer [16][16]keycode.Entry

// Get looks up the entry bound to interface code c within this layer.
// Codes outside the matrix (none exist, since Code is 8-bit and the matrix
// covers the whole byte range) would be a §7 KeymapLookupOutOfRange; the
// matrix shape makes that unreachable in Go, unlike the original's raw
// array indexing.
func (l *Layer) Get(c keycode.Code) keycode.Entry {
	return l[c>>4][c&0x0F]
}

// Map is an ordered stack of up to keycode.NumLayers layers. Layer 0 is the
// base layer and is always present.
type Map struct {
	Layers []Layer

	// ActionLayer is the layer index that keycode.Fn aliases MO_ to (the
	// keyboard's keymap_actions layer). -1 means the keyboard defines none,
	// in which case an FN entry resolves to keycode.NoKey (§4.E).
	ActionLayer int
}

// decodedMomentary records which layer a held key activated, so release
// restores exactly what that key's Make enabled even if the active layer
// set has since changed underneath it (e.g. from another key's TG_n).
type decodedMomentary struct {
	layer uint8
}

// Engine tracks the transient (non-persisted) layer state - momentary
// holds and a pending one-shot layer - and resolves interface codes to
// output entries against a Map. The persisted toggle-layer bitmap
// (layer_state) is owned by the caller (the config store) and passed into
// Resolve/Decode on each call rather than cached here, since config.Store
// is the single source of truth for it.
type Engine struct {
	Map *Map

	momentary map[keycode.Code]decodedMomentary
	oneShot   keycode.LayerState // pending one-shot layer bit, or 0
}

// NewEngine constructs an Engine bound to m. m.ActionLayer should be -1 if
// the keyboard defines no action (Fn) layer.
func NewEngine(m *Map) *Engine {
	return &Engine{
		Map:       m,
		momentary: make(map[keycode.Code]decodedMomentary),
	}
}

// Active returns the currently active layer bitmap: the persisted toggle
// bitmap, OR'd with every momentarily-held layer and any pending one-shot
// layer. Layer 0's bit is always set by the caller's persisted value per
// the layer_state invariant; Active does not force it on its own.
func (e *Engine) Active(persisted keycode.LayerState) keycode.LayerState {
	active := persisted
	for _, m := range e.momentary {
		active |= 1 << m.layer
	}
	active |= e.oneShot
	return active
}

// Resolve implements §4.E's layer resolution: scan active layers from the
// highest index down, returning the first entry that isn't keycode.Trns;
// if every active layer (including layer 0) yields Trns, the result is
// keycode.NoKey, since there is no layer below 0 to defer to. Resolve
// never returns keycode.Trns.
func (e *Engine) Resolve(persisted keycode.LayerState, c keycode.Code) keycode.Entry {
	active := e.Active(persisted)
	m := e.Map
	for layer := int(keycode.NumLayers) - 1; layer >= 0; layer-- {
		if !active.Active(uint8(layer)) {
			continue
		}
		if layer >= len(m.Layers) {
			continue
		}
		v := m.Layers[layer].Get(c)
		if v != keycode.Trns {
			return v
		}
	}
	return keycode.Entry(keycode.NoKey)
}

// LayerEdit describes a mutation Decode wants applied to the persisted
// toggle-layer bitmap (a TG_n action). The caller (the event dispatcher)
// applies this to config.Store and marks it dirty; Engine itself never
// touches persisted config.
type LayerEdit struct {
	Layer uint8
	// Present is true only when a TG_n action fired on this call.
	Present bool
}

// Decode resolves c against the active layers and, if the result is a
// layer-action entry (MO_n/TG_n/OSL_n/FN) or a numpad-flip request, applies
// the corresponding transient state change and returns the final emittable
// entry for the event (keycode.NoKey for pure layer actions, which produce
// no HID usage of their own).
//
// edge distinguishes Make from Break, since momentary layers activate on
// Make and deactivate on the matching Break, toggle fires only on Make,
// and one-shot arms on Make and is consumed by the very next Make that
// does not itself arm a one-shot (tracked inside Engine; the returned
// LayerEdit carries only TG_n edits).
func (e *Engine) Decode(persisted keycode.LayerState, c keycode.Code, edge keycode.Edge) (keycode.Entry, LayerEdit) {
	if edge == keycode.Break {
		return e.decodeBreak(persisted, c)
	}
	return e.decodeMake(persisted, c)
}

func (e *Engine) decodeMake(persisted keycode.LayerState, c keycode.Code) (keycode.Entry, LayerEdit) {
	v := e.Resolve(persisted, c)

	if v == keycode.Fn {
		if e.Map.ActionLayer < 0 {
			return keycode.Entry(keycode.NoKey), LayerEdit{}
		}
		v = keycode.EncodeMomentary(uint8(e.Map.ActionLayer))
	}

	action, layer := keycode.DecodeLayerAction(v)
	switch action {
	case keycode.ActionMomentary:
		e.momentary[c] = decodedMomentary{layer: layer}
		e.consumeOneShot()
		return keycode.Entry(keycode.NoKey), LayerEdit{}
	case keycode.ActionToggle:
		e.consumeOneShot()
		return keycode.Entry(keycode.NoKey), LayerEdit{Layer: layer, Present: true}
	case keycode.ActionOneShot:
		e.oneShot = 1 << layer
		return keycode.Entry(keycode.NoKey), LayerEdit{}
	}

	if v == keycode.Entry(keycode.Nflp) {
		v = keycode.Entry(Flip(byte(c)))
	}

	e.consumeOneShot()
	return v, LayerEdit{}
}

func (e *Engine) decodeBreak(persisted keycode.LayerState, c keycode.Code) (keycode.Entry, LayerEdit) {
	if m, ok := e.momentary[c]; ok {
		delete(e.momentary, c)
		_ = m
		return keycode.Entry(keycode.NoKey), LayerEdit{}
	}
	v := e.Resolve(persisted, c)
	if v == keycode.Fn {
		return keycode.Entry(keycode.NoKey), LayerEdit{}
	}
	if action, _ := keycode.DecodeLayerAction(v); action != keycode.ActionNone {
		return keycode.Entry(keycode.NoKey), LayerEdit{}
	}
	if v == keycode.Entry(keycode.Nflp) {
		v = keycode.Entry(Flip(byte(c)))
	}
	return v, LayerEdit{}
}

// consumeOneShot clears a pending one-shot layer once the key that
// triggered it is no longer the one being decoded - i.e. any other key's
// Make consumes it, per §4.E's "for exactly one subsequent key event".
func (e *Engine) consumeOneShot() {
	e.oneShot = 0
}

// Reset clears all transient layer state (momentary holds, pending
// one-shot) without touching the persisted bitmap. Called on decoder reset
// so a key release lost mid-resync can't wedge a layer active forever.
func (e *Engine) Reset() {
	e.momentary = make(map[keycode.Code]decodedMomentary)
	e.oneShot = 0
}
