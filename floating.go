package driftfield

import (
	"math"
	"math/rand"
)

// FloatingMode drifts cards through a bounded volume, each with its own slow drift
// direction and a small sinusoidal wobble. A card that drifts outside the volume for
// longer than the grace period is recycled to a fresh random point inside it.
type FloatingMode struct {
	rng     *rand.Rand
	anchors []Vector
	drifts  []Vector
	phases  []float64
	outside []float64 // seconds each slot has spent outside the volume
	time    float64
}

// Kind identifies the mode.
func (mode *FloatingMode) Kind() Mode {
	return ModeFloating
}

// SlotCount returns the configured floating slot count.
func (mode *FloatingMode) SlotCount(settings *Settings) int {
	return settings.FloatingSlots
}

// Init scatters every slot through the volume with a fresh drift and wobble phase.
func (mode *FloatingMode) Init(pool *SlotPool, settings *Settings, rng *rand.Rand) {

	mode.rng = rng
	count := pool.Len()
	mode.anchors = make([]Vector, count)
	mode.drifts = make([]Vector, count)
	mode.phases = make([]float64, count)
	mode.outside = make([]float64, count)

	for _, slot := range pool.Slots() {
		mode.scatter(slot, settings, true)
	}

}

// Update drifts each anchor and wobbles the card around it.
func (mode *FloatingMode) Update(pool *SlotPool, settings *Settings, dt float64) {

	mode.time += dt

	// Every slot moves, Bound or not: a Loading card keeps drifting so that when
	// its texture lands it appears where the gap actually is. If it drifted out
	// before the load finished, the recycle supersedes the load.
	for _, slot := range pool.Slots() {

		i := slot.Index()
		mode.anchors[i] = mode.anchors[i].Add(mode.drifts[i].Scale(dt))

		phase := mode.phases[i]
		wobble := NewVector(
			math.Sin(mode.time*0.9+phase),
			math.Sin(mode.time*1.3+phase*2),
			math.Sin(mode.time*0.7+phase*3),
		).Scale(settings.WobbleAmplitude)

		slot.Position = mode.anchors[i].Add(wobble)
		slot.Roll = math.Sin(mode.time*0.5+phase) * 0.12

	}

}

// Exited reports whether the slot has been outside the volume for longer than the
// grace period.
func (mode *FloatingMode) Exited(slot *Slot, settings *Settings, dt float64) bool {

	i := slot.Index()
	bounds := NewVector(settings.FloatingBounds, settings.FloatingBounds, settings.FloatingBounds)

	if slot.Position.IsInside(bounds) {
		mode.outside[i] = 0
		return false
	}

	mode.outside[i] += dt
	return mode.outside[i] > settings.FloatingGrace

}

// Reenter respawns the slot at a fresh random point inside the volume.
func (mode *FloatingMode) Reenter(slot *Slot, settings *Settings) {
	mode.scatter(slot, settings, false)
}

// scatter picks a new anchor, drift, and phase for the slot. Initial placement uses
// the whole volume; re-entry keeps away from the edges so the card doesn't exit
// again immediately.
func (mode *FloatingMode) scatter(slot *Slot, settings *Settings, initial bool) {

	i := slot.Index()
	extent := settings.FloatingBounds
	if !initial {
		extent *= 0.8
	}

	mode.anchors[i] = NewVector(
		(mode.rng.Float64()*2-1)*extent,
		(mode.rng.Float64()*2-1)*extent,
		(mode.rng.Float64()*2-1)*extent,
	)

	mode.drifts[i] = NewVector(
		mode.rng.Float64()*2-1,
		mode.rng.Float64()*2-1,
		mode.rng.Float64()*2-1,
	).Unit().Scale(settings.FloatingDrift * (0.5 + mode.rng.Float64()*0.5))

	mode.phases[i] = mode.rng.Float64() * 2 * math.Pi
	mode.outside[i] = 0

	slot.Position = mode.anchors[i]
	slot.Roll = 0
	slot.Size = 1.5 + mode.rng.Float64()*1.5

}
