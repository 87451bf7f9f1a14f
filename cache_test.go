package driftfield

import "testing"

func newTexture() *stubTexture {
	return &stubTexture{w: 8, h: 8}
}

func TestCacheAcquireRelease(t *testing.T) {

	cache := NewTextureCache(4, nil)

	tex := newTexture()
	cache.Install(1, TierFull, tex, 1.5, false)

	entry := cache.Acquire(1)
	if entry == nil {
		t.Fatal("Acquire missed a freshly installed entry")
	}
	if entry.texture != tex || entry.aspect != 1.5 {
		t.Fatal("entry does not carry the installed texture/aspect")
	}
	if entry.refs != 1 {
		t.Fatalf("refs = %d, want 1", entry.refs)
	}

	cache.Release(entry)
	if entry.refs != 0 {
		t.Fatalf("refs = %d after release, want 0", entry.refs)
	}
	if tex.disposed {
		t.Fatal("released entry was disposed while still fresh and resident")
	}

}

func TestCacheEvictsLeastRecentlyUnbound(t *testing.T) {

	cache := NewTextureCache(2, nil)

	texA, texB := newTexture(), newTexture()
	cache.Install(1, TierFull, texA, 1, false)
	a := cache.Acquire(1)
	cache.Tick()
	cache.Install(2, TierFull, texB, 1, false)
	b := cache.Acquire(2)

	// Unbind A first, then B: A has the older unbind stamp.
	cache.Release(a)
	cache.Tick()
	cache.Release(b)

	cache.Install(3, TierFull, newTexture(), 1, false)

	if !texA.disposed {
		t.Fatal("expected the least-recently-unbound entry (A) to be evicted")
	}
	if texB.disposed {
		t.Fatal("B was evicted despite a newer unbind stamp")
	}
	if cache.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", cache.Len())
	}

}

func TestCacheNeverEvictsReferencedEntries(t *testing.T) {

	cache := NewTextureCache(2, nil)

	texA, texB := newTexture(), newTexture()
	cache.Install(1, TierFull, texA, 1, false)
	cache.Acquire(1)
	cache.Install(2, TierFull, texB, 1, false)
	cache.Acquire(2)

	// Every resident entry is referenced; installing a third must overflow rather
	// than evict a texture in active use.
	cache.Install(3, TierFull, newTexture(), 1, false)

	if texA.disposed || texB.disposed {
		t.Fatal("a referenced entry was evicted")
	}
	if cache.Len() != 3 {
		t.Fatalf("Len() = %d, want 3 (capacity temporarily exceeded)", cache.Len())
	}
	if cache.Stats().Overflows != 1 {
		t.Fatalf("Overflows = %d, want 1", cache.Stats().Overflows)
	}

}

func TestCacheTierSwitchInvalidatesLazily(t *testing.T) {

	cache := NewTextureCache(4, nil)
	cache.SetActiveTier(TierHalf)

	tex := newTexture()
	cache.Install(1, TierHalf, tex, 1, false)
	entry := cache.Acquire(1)

	cache.SetActiveTier(TierQuarter)

	// The bound slot keeps its texture; new lookups miss so the image reloads at
	// the new tier when its slot next asks.
	if tex.disposed {
		t.Fatal("tier switch disposed a texture still in use")
	}
	if cache.Acquire(1) != nil {
		t.Fatal("Acquire hit a stale entry after the tier switch")
	}

	// Once the last slot lets go, the stale entry is dropped immediately.
	cache.Release(entry)
	if !tex.disposed {
		t.Fatal("stale entry survived its last release")
	}
	if cache.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", cache.Len())
	}

}

func TestCacheTierSwitchSparesDroppedImages(t *testing.T) {

	cache := NewTextureCache(4, nil)
	cache.SetActiveTier(TierHalf)

	cache.Install(9, TierFull, newTexture(), 1, true)
	cache.SetActiveTier(TierQuarter)

	if cache.Acquire(9) == nil {
		t.Fatal("tier switch invalidated a single-tier dropped image")
	}

}

func TestCacheReinstallDisplacesToZombie(t *testing.T) {

	cache := NewTextureCache(4, nil)
	cache.SetActiveTier(TierHalf)

	old := newTexture()
	cache.Install(1, TierHalf, old, 1, false)
	entry := cache.Acquire(1)

	// Reinstalling the same id after a tier change must not clobber the texture a
	// live slot still renders with.
	cache.SetActiveTier(TierQuarter)
	fresh := newTexture()
	cache.Install(1, TierQuarter, fresh, 1, false)

	if old.disposed {
		t.Fatal("displaced entry was disposed while still referenced")
	}
	if got := cache.Acquire(1); got == nil || got.texture != fresh {
		t.Fatal("Acquire after reinstall should return the fresh entry")
	}

	cache.Release(entry)
	if !old.disposed {
		t.Fatal("zombie entry survived its last release")
	}

}

func TestCacheRetainProtectsStaleInstalls(t *testing.T) {

	cache := NewTextureCache(1, nil)
	cache.SetActiveTier(TierQuarter)

	// A half-tier load landing after a switch to quarter installs stale; the slot
	// it was fetched for still binds it.
	tex := newTexture()
	entry := cache.Retain(cache.Install(1, TierHalf, tex, 1, false))

	if cache.Acquire(1) != nil {
		t.Fatal("stale install should miss new lookups")
	}

	// Capacity pressure must not dispose it while the slot holds the reference.
	cache.Install(2, TierQuarter, newTexture(), 1, false)
	if tex.disposed {
		t.Fatal("referenced stale entry was evicted")
	}

	cache.Release(entry)
	if !tex.disposed {
		t.Fatal("stale entry survived its last release")
	}

}

func TestCacheStaleEntriesEvictFirst(t *testing.T) {

	cache := NewTextureCache(2, nil)
	cache.SetActiveTier(TierHalf)

	staleTex, freshTex := newTexture(), newTexture()
	cache.Install(1, TierFull, staleTex, 1, false) // wrong tier once we retier below
	cache.Tick()
	cache.Install(2, TierHalf, freshTex, 1, false)
	cache.SetActiveTier(TierHalf)

	cache.Install(3, TierHalf, newTexture(), 1, false)

	if !staleTex.disposed {
		t.Fatal("expected the stale entry to evict ahead of the fresh one")
	}
	if freshTex.disposed {
		t.Fatal("fresh entry evicted while a stale candidate existed")
	}

}

func TestCacheClearDisposesEverything(t *testing.T) {

	cache := NewTextureCache(4, nil)
	texA, texB := newTexture(), newTexture()
	cache.Install(1, TierFull, texA, 1, false)
	cache.Install(2, TierFull, texB, 1, false)

	cache.Clear()

	if !texA.disposed || !texB.disposed {
		t.Fatal("Clear left textures resident")
	}
	if cache.Len() != 0 {
		t.Fatalf("Len() = %d after Clear, want 0", cache.Len())
	}

}
