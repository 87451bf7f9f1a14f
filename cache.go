package driftfield

import "log/slog"

// cacheEntry is one resident texture. Slots hold pointers to the entries they are
// bound to, so reference counts survive the entry being displaced from the id map
// by a tier switch (a displaced entry lives on as a zombie until its last slot
// releases it).
type cacheEntry struct {
	id       int
	tier     Tier
	texture  TextureHandle
	aspect   float64
	refs     int   // number of slots currently bound to this texture
	lastUsed int64 // the frame the entry last dropped to zero references
	stale    bool  // the active tier moved away from this entry's tier
	zombie   bool  // displaced from the map; disposed as soon as refs drain
	dropped  bool  // single-tier drag-and-drop image; immune to tier switches
}

// CacheStats carries the TextureCache's running counters.
type CacheStats struct {
	Installs  int64
	Evictions int64
	Overflows int64 // times the cache exceeded capacity because every entry was in use
}

// TextureCache holds resident device textures keyed by image id, bounded by a
// capacity ceiling. Eviction removes the zero-reference entry that has been unbound
// the longest; an entry still bound to a live slot is never evicted, so when every
// entry is referenced the cache temporarily exceeds capacity instead. All mutation
// happens on the frame tick, so the cache needs no locking.
type TextureCache struct {
	capacity int
	entries  map[int]*cacheEntry
	zombies  []*cacheEntry
	frame    int64
	tier     Tier
	stats    CacheStats
	logger   *slog.Logger
}

// NewTextureCache creates a TextureCache bounded to the capacity given. A nil
// logger falls back to slog.Default().
func NewTextureCache(capacity int, logger *slog.Logger) *TextureCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &TextureCache{
		capacity: max(capacity, 1),
		entries:  map[int]*cacheEntry{},
		logger:   logger,
	}
}

// Len returns the number of entries currently occupying cache capacity.
func (cache *TextureCache) Len() int {
	return len(cache.entries)
}

// Capacity returns the cache's configured capacity ceiling.
func (cache *TextureCache) Capacity() int {
	return cache.capacity
}

// SetCapacity updates the capacity ceiling. Shrinking takes effect lazily, through
// normal eviction pressure.
func (cache *TextureCache) SetCapacity(capacity int) {
	cache.capacity = max(capacity, 1)
}

// Stats returns the cache's running counters.
func (cache *TextureCache) Stats() CacheStats {
	return cache.stats
}

// Tick advances the cache's frame counter, which timestamps unbinds for the
// least-recently-unbound eviction order.
func (cache *TextureCache) Tick() {
	cache.frame++
}

// SetActiveTier marks entries of any other tier stale. Stale entries are replaced
// lazily: lookups miss them (so slots re-request their image at the new tier as
// they recycle), and they evict ahead of fresh entries. Drag-and-drop images have a
// single resolution and are left untouched.
func (cache *TextureCache) SetActiveTier(tier Tier) {
	cache.tier = tier
	for _, entry := range cache.entries {
		entry.stale = !entry.dropped && entry.tier != tier
	}
}

// Retain takes a reference on an entry just returned by Install, binding the
// freshly installed texture to its requesting slot. Unlike Acquire it does not go
// through the id map and accepts stale entries, so a load that raced a tier switch
// still binds with a live reference and is disposed on its last Release instead of
// being evicted out from under a visible slot.
func (cache *TextureCache) Retain(entry *cacheEntry) *cacheEntry {
	entry.refs++
	return entry
}

// Acquire returns the resident entry for the image id given, incrementing its
// reference count, or nil if the image is absent or stale (in which case the caller
// schedules a load).
func (cache *TextureCache) Acquire(id int) *cacheEntry {
	entry := cache.entries[id]
	if entry == nil || entry.stale {
		return nil
	}
	entry.refs++
	return entry
}

// Release decrements the entry's reference count when a slot stops using it. An
// unreferenced zombie or stale entry is disposed immediately; a fresh one is
// timestamped for eviction order and kept resident.
func (cache *TextureCache) Release(entry *cacheEntry) {

	if entry == nil {
		return
	}

	entry.refs--
	if entry.refs > 0 {
		return
	}
	entry.refs = 0

	switch {
	case entry.zombie:
		cache.removeZombie(entry)
		entry.texture.Dispose()
	case entry.stale:
		delete(cache.entries, entry.id)
		entry.texture.Dispose()
		cache.stats.Evictions++
	default:
		entry.lastUsed = cache.frame
	}

}

// Install inserts a freshly loaded texture, evicting the least-recently-unbound
// zero-reference entry if the cache is at capacity. The returned entry starts
// unreferenced; callers Acquire it to bind it to a slot.
func (cache *TextureCache) Install(id int, tier Tier, texture TextureHandle, aspect float64, dropped bool) *cacheEntry {

	if existing := cache.entries[id]; existing != nil {
		if existing.refs == 0 {
			existing.texture.Dispose()
			delete(cache.entries, id)
		} else {
			// Still bound to live slots; park it until they recycle.
			existing.zombie = true
			cache.zombies = append(cache.zombies, existing)
			delete(cache.entries, id)
		}
	}

	if len(cache.entries) >= cache.capacity {
		if !cache.evictOne() {
			cache.stats.Overflows++
			cache.logger.Debug("texture cache over capacity; every entry in use",
				"capacity", cache.capacity, "resident", len(cache.entries)+1)
		}
	}

	entry := &cacheEntry{
		id:       id,
		tier:     tier,
		texture:  texture,
		aspect:   aspect,
		lastUsed: cache.frame,
		dropped:  dropped,
		// The active tier may have moved while this load was in flight.
		stale: !dropped && tier != cache.tier,
	}
	cache.entries[id] = entry
	cache.stats.Installs++

	return entry

}

// evictOne removes the best eviction candidate: a zero-reference entry, stale ones
// first, oldest unbind first. Returns false if every entry is referenced.
func (cache *TextureCache) evictOne() bool {

	var victim *cacheEntry

	for _, entry := range cache.entries {
		if entry.refs > 0 {
			continue
		}
		if victim == nil || better(entry, victim) {
			victim = entry
		}
	}

	if victim == nil {
		return false
	}

	delete(cache.entries, victim.id)
	victim.texture.Dispose()
	cache.stats.Evictions++
	return true

}

// better reports whether a beats b as an eviction victim.
func better(a, b *cacheEntry) bool {
	if a.stale != b.stale {
		return a.stale
	}
	return a.lastUsed < b.lastUsed
}

// Clear disposes every resident and zombie texture. Only valid at teardown, when no
// slot holds a binding.
func (cache *TextureCache) Clear() {
	for id, entry := range cache.entries {
		entry.texture.Dispose()
		delete(cache.entries, id)
	}
	for _, entry := range cache.zombies {
		entry.texture.Dispose()
	}
	cache.zombies = cache.zombies[:0]
}

func (cache *TextureCache) removeZombie(entry *cacheEntry) {
	for i, z := range cache.zombies {
		if z == entry {
			cache.zombies[i] = cache.zombies[len(cache.zombies)-1]
			cache.zombies = cache.zombies[:len(cache.zombies)-1]
			return
		}
	}
}
