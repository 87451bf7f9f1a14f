// Package driftfield renders large image collections as continuously
// animated 3D scenes (a floating field, an infinite tunnel, a spiraling
// grid) on top of Ebitengine. The engine streams texture data for
// collections far larger than what can stay resident by bounding uploads
// per frame, capping the resident texture count, and recycling a fixed
// pool of drawable slots so draw-call count stays constant regardless of
// collection size.
//
// The entry point is Field; see NewField. Everything runs on a single
// cooperative tick (Field.Tick). The only asynchronous work is image
// fetch + decode, which completes off-tick and is applied on the next one.
package driftfield

// Version is the current version of the driftfield engine.
const Version = "0.3.0"
