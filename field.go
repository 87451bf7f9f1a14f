package driftfield

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"
)

// FieldConfig configures a new Field. Device and Index are required; everything
// else has a sensible zero value.
type FieldConfig struct {
	Device   Device
	Index    *Index
	Settings *Settings    // nil means DefaultSettings()
	Mesh     *Mesh        // shared card geometry; nil means NewCardMesh()
	Fetcher  Fetcher      // nil means the default goroutine-per-request fetcher
	Logger   *slog.Logger // nil means slog.Default()
	Seed     int64        // deck + placement seed; 0 means the clock
}

// FieldStats aggregates the engine's running counters.
type FieldStats struct {
	Frame    int64
	Recycles int64
	Cache    CacheStats
	Loads    SchedulerStats
}

// Field is the engine: it owns the shuffle deck, the load scheduler, the texture
// cache, the slot pool, and the active display mode, and drives them all from a
// single cooperative per-frame tick. Apart from the fetch+decode work the scheduler
// runs off-tick, nothing here is concurrent, so no state needs locking.
type Field struct {
	device Device
	index  *Index
	deck   *Deck
	cache  *TextureCache
	sched  *LoadScheduler
	pool   *SlotPool
	mode   DisplayMode
	mesh   *Mesh

	settings Settings
	pending  *Settings

	rng      *rand.Rand
	logger   *slog.Logger
	frame    int64
	recycles int64
}

// NewField creates a Field over the index given. It fails only on a missing device
// or an empty index; once running, no per-image failure is ever fatal.
func NewField(config FieldConfig) (*Field, error) {

	if config.Device == nil {
		return nil, fmt.Errorf("driftfield: FieldConfig.Device is required")
	}
	if config.Index == nil || config.Index.Len() == 0 {
		return nil, ErrEmptyIndex
	}

	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	settings := DefaultSettings()
	if config.Settings != nil {
		settings = *config.Settings
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	settings.Clamp(logger)

	deck, err := NewDeck(config.Index.Len(), seed)
	if err != nil {
		return nil, err
	}

	mesh := config.Mesh
	if mesh == nil {
		mesh = NewCardMesh()
	}

	field := &Field{
		device:   config.Device,
		index:    config.Index,
		deck:     deck,
		cache:    NewTextureCache(settings.CacheCapacity, logger),
		sched:    NewLoadScheduler(config.Fetcher, logger),
		mesh:     mesh,
		settings: settings,
		rng:      rand.New(rand.NewSource(seed)),
		logger:   logger,
	}

	field.cache.SetActiveTier(settings.Tier)
	field.mode = newDisplayMode(settings.Mode)
	field.pool = NewSlotPool(field.device, mesh, field.mode.SlotCount(&field.settings))
	field.mode.Init(field.pool, &field.settings, field.rng)

	return field, nil

}

// Settings returns the Field's current live configuration.
func (field *Field) Settings() Settings {
	return field.settings
}

// Stats returns the engine's running counters.
func (field *Field) Stats() FieldStats {
	return FieldStats{
		Frame:    field.frame,
		Recycles: field.recycles,
		Cache:    field.cache.Stats(),
		Loads:    field.sched.Stats(),
	}
}

// SlotCount returns the size of the active slot pool.
func (field *Field) SlotCount() int {
	return field.pool.Len()
}

// Apply stages a new live configuration; it takes effect at the start of the next
// tick. Out-of-range values are clamped, never rejected.
func (field *Field) Apply(settings Settings) {
	staged := settings
	field.pending = &staged
}

// ExportPreset serializes the current live configuration as a preset blob.
func (field *Field) ExportPreset() ([]byte, error) {
	return field.settings.ExportJSON()
}

// ImportPreset parses a preset blob and stages it as the live configuration.
func (field *Field) ImportPreset(data []byte) error {
	settings, err := ImportSettings(data)
	if err != nil {
		return err
	}
	field.Apply(settings)
	return nil
}

// AddDropped appends a drag-and-dropped image to the session. It joins the shuffle
// deck on its next reshuffle and is treated identically to indexed images, except
// that it has a single resolution tier.
func (field *Field) AddDropped(source, dataURL string) int {
	id := field.index.AddDropped(source, dataURL)
	field.deck.Grow(field.index.Len())
	return id
}

// Tick advances the Field by dt seconds. Within one tick the order is fixed: staged
// settings apply, completed loads bind, Bound slots move, exit detection runs, and
// only then do recycles issue new load requests, so a slot recycled this tick never
// receives this tick's placement under its old assignment. The tick ends by flushing
// at most TexturesPerFrame queued loads.
func (field *Field) Tick(dt float64) {

	field.frame++
	field.cache.Tick()

	field.applyPending()
	field.drainLoads()

	field.mode.Update(field.pool, &field.settings, dt)

	for _, slot := range field.pool.Slots() {
		switch slot.State() {
		case SlotBound:
			slot.updateFade(dt)
			if field.mode.Exited(slot, &field.settings, dt) {
				slot.startRecycle()
			} else {
				slot.push()
			}
		case SlotLoading:
			// A slot can leave the visible region before its texture arrives; the
			// recycle reassigns it and the generation guard supersedes the load.
			if field.mode.Exited(slot, &field.settings, dt) {
				slot.startRecycle()
			}
		case SlotEmpty:
			field.assignNext(slot)
		}
	}

	for _, slot := range field.pool.Slots() {
		if slot.State() == SlotRecycling {
			field.recycleSlot(slot)
		}
	}

	field.sched.Flush(field.settings.TexturesPerFrame)

}

// Teardown releases every slot binding, destroys the pool, and disposes every
// cached texture.
func (field *Field) Teardown() {
	for _, slot := range field.pool.Slots() {
		field.cache.Release(slot.entry)
		slot.clear()
	}
	field.pool.Teardown()
	field.sched.Reset()
	field.cache.Clear()
}

// applyPending makes a staged configuration live: retier the cache, resize the
// cache, swap or re-layout the display mode.
func (field *Field) applyPending() {

	if field.pending == nil {
		return
	}

	staged := *field.pending
	field.pending = nil
	staged.Clamp(field.logger)

	previous := field.settings
	field.settings = staged

	if staged.CacheCapacity != previous.CacheCapacity {
		field.cache.SetCapacity(staged.CacheCapacity)
	}

	if staged.Tier != previous.Tier {
		// Lazy invalidation: already-bound textures stay up; slots pick up the new
		// tier as they recycle.
		field.cache.SetActiveTier(staged.Tier)
	}

	switch {
	case staged.Mode != previous.Mode:
		field.switchMode(newDisplayMode(staged.Mode))
	case field.mode.SlotCount(&staged) != field.pool.Len():
		// Same mode, new slot count (e.g. GridLayers changed): re-derive the layout.
		field.switchMode(field.mode)
	}

}

// switchMode re-derives every slot's placement under the new mode's rule. Textures
// already Bound persist (only transforms change) unless the slot count differs,
// in which case extra slots are torn down and new ones spun up through Empty.
func (field *Field) switchMode(mode DisplayMode) {

	count := mode.SlotCount(&field.settings)

	if count < field.pool.Len() {
		for _, slot := range field.pool.Slots()[count:] {
			field.cache.Release(slot.entry)
			slot.clear()
		}
	}
	field.pool.Resize(count)

	field.mode = mode
	field.mode.Init(field.pool, &field.settings, field.rng)

	for _, slot := range field.pool.Slots() {
		if slot.State() == SlotBound {
			slot.push()
		}
	}

}

// assignNext draws the next image off the deck for an Empty slot. A cache hit binds
// immediately; a miss queues a throttled load.
func (field *Field) assignNext(slot *Slot) {

	id := field.deck.Next()
	slot.assign(id)

	if entry := field.cache.Acquire(id); entry != nil {
		slot.bind(entry, entry.texture, entry.aspect, false, field.settings.FadeDuration)
		return
	}

	record := field.index.Record(id)
	tier := field.settings.Tier
	if record.Dropped {
		tier = TierFull
	}

	url, err := field.index.URL(id, tier)
	if err != nil {
		// Can't happen for ids drawn from the deck, but degrade anyway.
		field.bindPlaceholder(slot)
		return
	}

	field.sched.Request(slot, id, tier, url, record.Dropped)

}

// recycleSlot finishes the Recycling -> Empty -> Loading loop: release the texture
// reference, reset the transform to the mode's re-entry position, and draw a fresh
// image.
func (field *Field) recycleSlot(slot *Slot) {
	field.cache.Release(slot.entry)
	slot.clear()
	field.mode.Reenter(slot, &field.settings)
	field.assignNext(slot)
	field.recycles++
}

// drainLoads applies every load completed since the last tick: install the texture,
// bind it, and remember the image's natural aspect ratio. Failures bind the shared
// placeholder instead: the slot is Bound (degraded), never stuck Loading, and the
// image retries only if the slot recycles naturally.
func (field *Field) drainLoads() {

	field.sched.Drain(func(result loadResult) {

		slot := result.req.slot

		if result.err != nil {
			field.logger.Warn("image load failed; binding placeholder",
				"image", result.req.imageID, "tier", result.req.tier.String(), "error", result.err)
			field.bindPlaceholder(slot)
			return
		}

		texture, err := field.device.CreateTexture(result.img)
		if err != nil {
			field.logger.Warn("texture upload failed; binding placeholder",
				"image", result.req.imageID, "error", err)
			field.bindPlaceholder(slot)
			return
		}

		aspect := imageAspect(result.img)
		if record := field.index.Record(result.req.imageID); record != nil {
			record.Aspect = aspect
		}

		// Retain the just-installed entry directly: if the tier moved while this
		// load was in flight the entry is already stale and an Acquire by id
		// would miss it, leaving the slot with no reference to its texture.
		entry := field.cache.Retain(field.cache.Install(result.req.imageID, result.req.tier, texture, aspect, result.req.dropped))
		slot.bind(entry, texture, aspect, false, field.settings.FadeDuration)

	})

}

// bindPlaceholder binds the device's shared placeholder texture to the slot.
func (field *Field) bindPlaceholder(slot *Slot) {
	slot.bind(nil, field.device.Placeholder(), 1, true, field.settings.FadeDuration)
}
