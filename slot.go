package driftfield

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// SlotState is the lifecycle state of a Slot.
type SlotState int

const (
	SlotEmpty     SlotState = iota // No image assigned
	SlotLoading                    // An image is assigned and its texture load is pending
	SlotBound                      // A texture (or the placeholder) is bound and the slot is visible
	SlotRecycling                  // The slot left the visible region and is marked for reuse
)

// String returns the SlotState's name.
func (state SlotState) String() string {
	switch state {
	case SlotLoading:
		return "Loading"
	case SlotBound:
		return "Bound"
	case SlotRecycling:
		return "Recycling"
	default:
		return "Empty"
	}
}

// Slot is one reusable drawable object, bound to one image at a time. Slots are
// pre-allocated at mode init and recycled rather than created or destroyed, which is
// what keeps the draw-call count constant regardless of collection size. A Slot is
// owned exclusively by its SlotPool; the cache entry it references is shared.
type Slot struct {
	index      int
	drawable   Drawable
	state      SlotState
	generation uint64 // bumped on every assignment; stale load results carry an older value
	imageID    int
	entry      *cacheEntry
	degraded   bool // bound to the placeholder after a load failure

	// Transform, written by the active display mode every tick and pushed to the
	// drawable afterwards.
	Position Vector
	Roll     float64
	Size     float64 // length of the card's longest side in world units

	aspect float64
	fade   *gween.Tween
	alpha  float32
}

// State returns the Slot's lifecycle state.
func (slot *Slot) State() SlotState {
	return slot.state
}

// Index returns the Slot's stable position in its pool. Display modes use it as the
// slot's placement identity (its tunnel angle, lattice cell, and so on).
func (slot *Slot) Index() int {
	return slot.index
}

// ImageID returns the id of the image currently assigned to the Slot, or 0 if the
// Slot is Empty.
func (slot *Slot) ImageID() int {
	return slot.imageID
}

// Aspect returns the bound image's natural aspect ratio (1 before anything bound).
func (slot *Slot) Aspect() float64 {
	return slot.aspect
}

// Degraded returns whether the Slot is showing the placeholder after a failed load.
func (slot *Slot) Degraded() bool {
	return slot.degraded
}

// assign gives the Slot a new image and moves it Empty -> Loading. The drawable
// stays hidden until a texture binds, so the previous image is never shown on the
// new transform.
func (slot *Slot) assign(imageID int) {
	slot.generation++
	slot.imageID = imageID
	slot.state = SlotLoading
	slot.degraded = false
	slot.drawable.SetVisible(false)
}

// bind delivers a texture to the Slot, moving it Loading -> Bound and fading it in
// over fadeDuration seconds.
func (slot *Slot) bind(entry *cacheEntry, texture TextureHandle, aspect float64, degraded bool, fadeDuration float64) {

	slot.entry = entry
	slot.degraded = degraded
	slot.aspect = aspect
	slot.state = SlotBound

	slot.drawable.BindTexture(texture)
	slot.drawable.SetVisible(true)

	if fadeDuration > 0 {
		slot.alpha = 0
		slot.fade = gween.New(0, 1, float32(fadeDuration), ease.OutQuad)
	} else {
		slot.alpha = 1
		slot.fade = nil
	}

	slot.push()

}

// startRecycle marks a Bound slot for reuse.
func (slot *Slot) startRecycle() {
	slot.state = SlotRecycling
}

// clear finishes recycling: the cache reference is already released by the field, so
// the Slot just forgets its assignment and goes back to Empty.
func (slot *Slot) clear() {
	slot.entry = nil
	slot.imageID = 0
	slot.degraded = false
	slot.state = SlotEmpty
	slot.drawable.SetVisible(false)
}

// updateFade advances the fade-in tween.
func (slot *Slot) updateFade(dt float64) {
	if slot.fade == nil {
		return
	}
	value, finished := slot.fade.Update(float32(dt))
	slot.alpha = value
	if finished {
		slot.fade = nil
	}
}

// push writes the Slot's transform and tint through to its drawable. The card mesh
// is square; the image's aspect ratio shapes it here.
func (slot *Slot) push() {

	scale := NewVector(slot.Size, slot.Size, 1)
	if slot.aspect >= 1 {
		scale.Y = slot.Size / max(slot.aspect, 1e-4)
	} else {
		scale.X = slot.Size * slot.aspect
	}

	slot.drawable.SetTransform(slot.Position, slot.Roll, scale)
	slot.drawable.SetColor(NewColor(1, 1, 1, slot.alpha))

}

// SlotPool is the fixed collection of Slots for the active display mode. Its size
// changes only when a mode switch demands a different slot count; in steady state no
// Slot is ever created or destroyed.
type SlotPool struct {
	device Device
	mesh   *Mesh
	slots  []*Slot
}

// NewSlotPool creates a pool of count Slots, all rendering the shared mesh given.
func NewSlotPool(device Device, mesh *Mesh, count int) *SlotPool {
	pool := &SlotPool{
		device: device,
		mesh:   mesh,
	}
	pool.Resize(count)
	return pool
}

// Len returns the number of Slots in the pool.
func (pool *SlotPool) Len() int {
	return len(pool.slots)
}

// Slots returns the pool's Slots. The slice is owned by the pool; don't grow it.
func (pool *SlotPool) Slots() []*Slot {
	return pool.slots
}

// Resize grows or shrinks the pool to count Slots. New Slots come up Empty; removed
// Slots must already have released their cache references.
func (pool *SlotPool) Resize(count int) {

	count = max(count, 0)

	for len(pool.slots) > count {
		last := pool.slots[len(pool.slots)-1]
		last.generation++ // orphans any in-flight load for this slot
		pool.device.DestroyDrawable(last.drawable)
		pool.slots = pool.slots[:len(pool.slots)-1]
	}

	for len(pool.slots) < count {
		slot := &Slot{
			index:    len(pool.slots),
			drawable: pool.device.CreateDrawable(pool.mesh),
			aspect:   1,
			Size:     1,
		}
		slot.drawable.SetVisible(false)
		pool.slots = append(pool.slots, slot)
	}

}

// Teardown destroys every Slot's drawable. Cache references must be released first.
func (pool *SlotPool) Teardown() {
	pool.Resize(0)
}
