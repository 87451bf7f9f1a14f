package driftfield

import "image"

// TextureHandle is a texture resident on the rendering device. The engine never
// inspects pixel data through it; it only binds it to drawables, asks its size,
// and disposes it on eviction.
type TextureHandle interface {
	// Size returns the width and height of the texture in pixels.
	Size() (int, int)
	// Dispose releases the device resources backing the texture. Calling any
	// other method after Dispose is invalid.
	Dispose()
}

// Drawable is one renderable object owned by a Slot. Its geometry is shared; only
// its transform, texture binding, tint, and visibility are per-slot.
type Drawable interface {
	SetTransform(position Vector, roll float64, scale Vector)
	BindTexture(texture TextureHandle)
	SetColor(color Color)
	SetVisible(visible bool)
}

// Device is the rendering device boundary. driftfield's core drives the device
// exclusively through this interface: creating drawables at mode init, uploading
// decoded images as textures, and falling back to the shared placeholder when a
// load fails. EbitenDevice is the shipped implementation; tests substitute a stub.
type Device interface {
	// CreateDrawable creates a drawable object rendering the shared mesh given.
	CreateDrawable(mesh *Mesh) Drawable
	// DestroyDrawable releases a drawable created by CreateDrawable. Only called
	// at mode teardown or when a mode switch shrinks the slot pool.
	DestroyDrawable(d Drawable)
	// CreateTexture uploads the decoded image, returning a resident handle.
	CreateTexture(img image.Image) (TextureHandle, error)
	// Placeholder returns the shared fallback texture bound to slots whose image
	// failed to load. Never disposed by the engine.
	Placeholder() TextureHandle
}
