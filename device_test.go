package driftfield

import (
	"errors"
	"image"
)

// stubTexture implements TextureHandle for tests.
type stubTexture struct {
	w, h     int
	disposed bool
}

func (t *stubTexture) Size() (int, int) {
	return t.w, t.h
}

func (t *stubTexture) Dispose() {
	t.disposed = true
}

// stubDrawable records what the engine pushes to it.
type stubDrawable struct {
	position Vector
	roll     float64
	scale    Vector
	texture  TextureHandle
	tint     Color
	visible  bool
	binds    int // number of BindTexture calls
}

func (d *stubDrawable) SetTransform(position Vector, roll float64, scale Vector) {
	d.position = position
	d.roll = roll
	d.scale = scale
}

func (d *stubDrawable) BindTexture(texture TextureHandle) {
	d.texture = texture
	d.binds++
}

func (d *stubDrawable) SetColor(tint Color) {
	d.tint = tint
}

func (d *stubDrawable) SetVisible(visible bool) {
	d.visible = visible
}

// stubDevice implements Device without a graphics context.
type stubDevice struct {
	drawables   []*stubDrawable
	destroyed   int
	created     int // textures created
	placeholder *stubTexture
}

func newStubDevice() *stubDevice {
	return &stubDevice{placeholder: &stubTexture{w: 64, h: 64}}
}

func (device *stubDevice) CreateDrawable(mesh *Mesh) Drawable {
	d := &stubDrawable{scale: NewVector(1, 1, 1)}
	device.drawables = append(device.drawables, d)
	return d
}

func (device *stubDevice) DestroyDrawable(drawable Drawable) {
	for i, d := range device.drawables {
		if d == drawable {
			device.drawables = append(device.drawables[:i], device.drawables[i+1:]...)
			device.destroyed++
			return
		}
	}
}

func (device *stubDevice) CreateTexture(img image.Image) (TextureHandle, error) {
	device.created++
	b := img.Bounds()
	return &stubTexture{w: b.Dx(), h: b.Dy()}, nil
}

func (device *stubDevice) Placeholder() TextureHandle {
	return device.placeholder
}

// testImage builds a tiny decoded image of the dimensions given.
func testImage(w, h int) image.Image {
	return image.NewRGBA(image.Rect(0, 0, w, h))
}

// manualFetcher holds every delivery until the test releases it, so tests control
// exactly when a load "completes" relative to the tick.
type manualFetcher struct {
	urls     []string
	delivers []func(image.Image, error)
}

func (f *manualFetcher) Fetch(url string, deliver func(image.Image, error)) {
	f.urls = append(f.urls, url)
	f.delivers = append(f.delivers, deliver)
}

// complete releases the i-th fetch with the image given.
func (f *manualFetcher) complete(i int, img image.Image, err error) {
	f.delivers[i](img, err)
	f.delivers[i] = nil
}

// completeAll releases every still-held fetch with the same image.
func (f *manualFetcher) completeAll(img image.Image) {
	for i, deliver := range f.delivers {
		if deliver != nil {
			deliver(img, nil)
			f.delivers[i] = nil
		}
	}
}

// syncFetcher completes every fetch immediately with a fixed-size image, making
// loads land on the very next tick.
type syncFetcher struct {
	w, h    int
	fetched int
}

func (f *syncFetcher) Fetch(url string, deliver func(image.Image, error)) {
	f.fetched++
	deliver(testImage(f.w, f.h), nil)
}

// failingFetcher fails every fetch.
type failingFetcher struct{}

func (failingFetcher) Fetch(url string, deliver func(image.Image, error)) {
	deliver(nil, errors.New("fetch failed"))
}

// newTestField builds a Field over n images with the fetcher and settings given.
func newTestField(t interface{ Fatalf(string, ...interface{}) }, n int, fetcher Fetcher, settings *Settings) (*Field, *stubDevice) {
	index, err := NewIndex("assets", n, nil)
	if err != nil {
		t.Fatalf("building index: %v", err)
	}
	device := newStubDevice()
	field, err := NewField(FieldConfig{
		Device:   device,
		Index:    index,
		Settings: settings,
		Fetcher:  fetcher,
		Seed:     7,
	})
	if err != nil {
		t.Fatalf("building field: %v", err)
	}
	return field, device
}
