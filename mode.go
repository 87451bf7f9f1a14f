package driftfield

import "math/rand"

// DisplayMode computes slot placement and motion every tick and decides when a slot
// has left the visible region and must be recycled. The three implementations are
// FloatingMode, TunnelMode, and GridMode.
//
// Modes write only to a Slot's Position, Roll, and Size; pushing the transform to
// the device and every lifecycle transition stays with the Field, which keeps the
// tick's ordering guarantees in one place.
type DisplayMode interface {
	// Kind identifies the mode.
	Kind() Mode

	// SlotCount returns how many slots the mode wants for the settings given. A
	// mode switch resizes the pool only when the counts differ.
	SlotCount(settings *Settings) int

	// Init derives the mode's per-slot layout data and places every slot. It runs
	// once on activation and again whenever a relevant setting changes the layout
	// wholesale; textures already bound are untouched.
	Init(pool *SlotPool, settings *Settings, rng *rand.Rand)

	// Update advances every Bound slot's placement by dt seconds.
	Update(pool *SlotPool, settings *Settings, dt float64)

	// Exited reports whether the slot has crossed the mode's exit boundary. It is
	// called once per tick per Bound slot, after Update, and may keep per-slot
	// timers (the floating mode's grace period) keyed by slot index.
	Exited(slot *Slot, settings *Settings, dt float64) bool

	// Reenter resets a recycled slot's transform to the mode's re-entry position
	// (the far end of the tunnel, a fresh point in the volume, the back of the
	// lattice).
	Reenter(slot *Slot, settings *Settings)
}

// newDisplayMode builds the DisplayMode for the Mode setting given.
func newDisplayMode(kind Mode) DisplayMode {
	switch kind {
	case ModeTunnel:
		return &TunnelMode{}
	case ModeGrid:
		return &GridMode{}
	default:
		return &FloatingMode{}
	}
}
