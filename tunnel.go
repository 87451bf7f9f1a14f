package driftfield

import (
	"math"
	"math/rand"
)

// tunnelRingSize is how many cards share one ring of the tunnel. The slot count
// setting controls how many rings deep the tunnel goes.
const tunnelRingSize = 8

// tunnelExitZ is how far behind the viewer (at the origin, looking down -Z) a card
// travels before it recycles to the far end.
const tunnelExitZ = 2.0

// TunnelMode arranges cards in rings around a cylinder and slides them toward the
// viewer. A card passing behind the viewer re-enters at the far end of the tunnel
// with the same angular coordinate, so the tunnel appears seamless and endless.
type TunnelMode struct {
	zs []float64 // per-slot longitudinal coordinate
}

// Kind identifies the mode.
func (mode *TunnelMode) Kind() Mode {
	return ModeTunnel
}

// SlotCount rounds the configured count down to whole rings.
func (mode *TunnelMode) SlotCount(settings *Settings) int {
	return max(settings.TunnelSlots/tunnelRingSize, 1) * tunnelRingSize
}

// Init distributes the slots along the tunnel, ring by ring.
func (mode *TunnelMode) Init(pool *SlotPool, settings *Settings, rng *rand.Rand) {

	mode.zs = make([]float64, pool.Len())
	spacing := mode.ringSpacing(pool.Len(), settings)

	for _, slot := range pool.Slots() {
		ring := slot.Index() / tunnelRingSize
		mode.zs[slot.Index()] = -float64(ring) * spacing
		mode.place(slot, settings)
	}

}

// Update advances every card along the tunnel axis. Loading cards advance too, so
// a texture that lands late appears where its ring now is, or gets superseded if
// the ring already wrapped.
func (mode *TunnelMode) Update(pool *SlotPool, settings *Settings, dt float64) {
	for _, slot := range pool.Slots() {
		mode.zs[slot.Index()] += settings.TunnelSpeed * dt
		mode.place(slot, settings)
	}
}

// Exited reports whether the card has passed behind the viewer.
func (mode *TunnelMode) Exited(slot *Slot, settings *Settings, dt float64) bool {
	return mode.zs[slot.Index()] > tunnelExitZ
}

// Reenter wraps the card to the far end of the tunnel, preserving its angular slot
// identity. The angle derives from the slot index, so only z moves.
func (mode *TunnelMode) Reenter(slot *Slot, settings *Settings) {
	mode.zs[slot.Index()] -= settings.TunnelDepth
	mode.place(slot, settings)
}

// place computes the card's world position from its ring angle, the tunnel radius,
// and its longitudinal coordinate, bending the tunnel axis sideways by the
// curvature setting. Cards roll to stand tangent to the cylinder wall.
func (mode *TunnelMode) place(slot *Slot, settings *Settings) {

	i := slot.Index()
	z := mode.zs[i]

	angle := float64(i%tunnelRingSize) / tunnelRingSize * 2 * math.Pi
	// Twist every other ring half a step so the cards don't line up in columns.
	if (i/tunnelRingSize)%2 == 1 {
		angle += math.Pi / tunnelRingSize
	}

	bend := settings.TunnelCurvature * z * z / max(settings.TunnelDepth, 1)

	slot.Position = NewVector(
		math.Cos(angle)*settings.TunnelRadius+bend,
		math.Sin(angle)*settings.TunnelRadius,
		z,
	)
	slot.Roll = angle + math.Pi/2
	slot.Size = settings.TunnelRadius * 0.55

}

// ringSpacing is the longitudinal distance between rings for the pool size given.
func (mode *TunnelMode) ringSpacing(slotCount int, settings *Settings) float64 {
	rings := max(slotCount/tunnelRingSize, 1)
	return settings.TunnelDepth / float64(rings)
}
