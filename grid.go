package driftfield

import (
	"math"
	"math/rand"
)

// gridCellsPerLayer is how many cards make up one spiral layer of the lattice.
const gridCellsPerLayer = 12

// gridNearZ is the near plane: a layer crossing it recycles to the back of the
// lattice.
const gridNearZ = 1.0

// goldenAngle spreads the spiral arms so cards in a layer never stack radially.
const goldenAngle = 2.39996322972865332

// GridMode lays cards out in a layered, spiraling lattice that advances toward the
// viewer. Within a layer, cards spiral outward phyllotaxis-style; layers stack into
// the screen and a card crossing the near plane recycles to the farthest layer
// position.
type GridMode struct {
	zs []float64 // per-slot depth coordinate
}

// Kind identifies the mode.
func (mode *GridMode) Kind() Mode {
	return ModeGrid
}

// SlotCount is one spiral of cards per configured layer.
func (mode *GridMode) SlotCount(settings *Settings) int {
	return settings.GridLayers * gridCellsPerLayer
}

// Init stacks the spiral layers into the screen.
func (mode *GridMode) Init(pool *SlotPool, settings *Settings, rng *rand.Rand) {

	mode.zs = make([]float64, pool.Len())

	for _, slot := range pool.Slots() {
		layer := slot.Index() / gridCellsPerLayer
		mode.zs[slot.Index()] = gridNearZ - float64(layer+1)*settings.GridSpacing
		mode.place(slot, settings)
	}

}

// Update advances every card toward the viewer, Bound or still Loading.
func (mode *GridMode) Update(pool *SlotPool, settings *Settings, dt float64) {
	for _, slot := range pool.Slots() {
		mode.zs[slot.Index()] += settings.GridSpeed * dt
		mode.place(slot, settings)
	}
}

// Exited reports whether the card has crossed the near plane.
func (mode *GridMode) Exited(slot *Slot, settings *Settings, dt float64) bool {
	return mode.zs[slot.Index()] > gridNearZ
}

// Reenter wraps the card to the farthest lattice position.
func (mode *GridMode) Reenter(slot *Slot, settings *Settings) {
	mode.zs[slot.Index()] -= float64(settings.GridLayers) * settings.GridSpacing
	mode.place(slot, settings)
}

// place computes the card's position on its layer's spiral. The cell index walks the
// spiral outward from the layer's center; alternating layers counter-rotate slightly
// so the lattice reads as a spiral in depth too.
func (mode *GridMode) place(slot *Slot, settings *Settings) {

	i := slot.Index()
	layer := i / gridCellsPerLayer
	cell := i % gridCellsPerLayer

	angle := float64(cell)*goldenAngle + float64(layer)*0.35
	radius := settings.GridSpacing * 0.6 * math.Sqrt(float64(cell)+1)

	slot.Position = NewVector(
		math.Cos(angle)*radius,
		math.Sin(angle)*radius,
		mode.zs[i],
	)
	slot.Roll = 0
	slot.Size = settings.GridSpacing * 0.7

}
