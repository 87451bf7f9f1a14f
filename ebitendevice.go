package driftfield

import (
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
)

// ebitenTexture wraps an *ebiten.Image as a TextureHandle.
type ebitenTexture struct {
	image *ebiten.Image
}

func (texture *ebitenTexture) Size() (int, int) {
	b := texture.image.Bounds()
	return b.Dx(), b.Dy()
}

func (texture *ebitenTexture) Dispose() {
	texture.image.Deallocate()
}

// ebitenDrawable is one slot's renderable state: the shared mesh plus the
// per-slot transform, binding, tint, and visibility the engine writes each tick.
type ebitenDrawable struct {
	mesh     *Mesh
	position Vector
	roll     float64
	scale    Vector
	texture  *ebitenTexture
	tint     Color
	visible  bool
}

func (d *ebitenDrawable) SetTransform(position Vector, roll float64, scale Vector) {
	d.position = position
	d.roll = roll
	d.scale = scale
}

func (d *ebitenDrawable) BindTexture(texture TextureHandle) {
	if texture == nil {
		d.texture = nil
		return
	}
	d.texture = texture.(*ebitenTexture)
}

func (d *ebitenDrawable) SetColor(tint Color) {
	d.tint = tint
}

func (d *ebitenDrawable) SetVisible(visible bool) {
	d.visible = visible
}

// EbitenDevice is the shipped Device implementation: drawables are perspective-
// projected card meshes rendered back-to-front with DrawTriangles. The viewer sits
// at the origin looking down -Z.
type EbitenDevice struct {
	FOV float64 // vertical field of view in radians

	drawables   []*ebitenDrawable
	placeholder *ebitenTexture

	// Scratch buffers reused across frames so rendering stays allocation-free.
	vertices []ebiten.Vertex
	indices  []uint16
	sorted   []*ebitenDrawable
}

// NewEbitenDevice creates an EbitenDevice with a dark checker placeholder texture.
func NewEbitenDevice() *EbitenDevice {

	placeholder := ebiten.NewImage(64, 64)
	placeholder.Fill(color.RGBA{40, 40, 48, 255})
	inner := placeholder.SubImage(image.Rect(4, 4, 60, 60)).(*ebiten.Image)
	inner.Fill(color.RGBA{24, 24, 30, 255})

	return &EbitenDevice{
		FOV:         ToRadians(60),
		placeholder: &ebitenTexture{image: placeholder},
	}

}

// CreateDrawable creates a drawable rendering the shared mesh given.
func (device *EbitenDevice) CreateDrawable(mesh *Mesh) Drawable {
	d := &ebitenDrawable{
		mesh:  mesh,
		scale: NewVector(1, 1, 1),
		tint:  NewColor(1, 1, 1, 1),
	}
	device.drawables = append(device.drawables, d)
	return d
}

// DestroyDrawable removes a drawable from the render set.
func (device *EbitenDevice) DestroyDrawable(drawable Drawable) {
	for i, d := range device.drawables {
		if d == drawable {
			device.drawables = append(device.drawables[:i], device.drawables[i+1:]...)
			return
		}
	}
}

// CreateTexture uploads a decoded image to the GPU.
func (device *EbitenDevice) CreateTexture(img image.Image) (TextureHandle, error) {
	return &ebitenTexture{image: ebiten.NewImageFromImage(img)}, nil
}

// Placeholder returns the shared fallback texture.
func (device *EbitenDevice) Placeholder() TextureHandle {
	return device.placeholder
}

const nearClip = 0.1

// Render projects and draws every visible drawable onto the screen, back-to-front.
func (device *EbitenDevice) Render(screen *ebiten.Image) {

	bounds := screen.Bounds()
	cx := float64(bounds.Dx()) / 2
	cy := float64(bounds.Dy()) / 2
	focal := cy / math.Tan(device.FOV/2)

	device.sorted = device.sorted[:0]
	for _, d := range device.drawables {
		if !d.visible || d.texture == nil || d.tint.A <= 0 {
			continue
		}
		if -d.position.Z <= nearClip {
			continue
		}
		device.sorted = append(device.sorted, d)
	}

	// Painter's algorithm: farthest first.
	sort.Slice(device.sorted, func(i, j int) bool {
		return device.sorted[i].position.Z < device.sorted[j].position.Z
	})

	op := &ebiten.DrawTrianglesOptions{
		Filter:         ebiten.FilterLinear,
		ColorScaleMode: ebiten.ColorScaleModeStraightAlpha,
	}

	for _, d := range device.sorted {
		device.drawOne(screen, d, cx, cy, focal, op)
	}

}

func (device *EbitenDevice) drawOne(screen *ebiten.Image, d *ebitenDrawable, cx, cy, focal float64, op *ebiten.DrawTrianglesOptions) {

	texW, texH := d.texture.Size()
	sinR, cosR := math.Sincos(d.roll)

	device.vertices = device.vertices[:0]
	device.indices = device.indices[:0]

	for _, v := range d.mesh.Vertices {

		// Model -> world: scale, roll around Z, translate.
		x := v.Position.X * d.scale.X
		y := v.Position.Y * d.scale.Y
		z := v.Position.Z * d.scale.Z
		x, y = x*cosR-y*sinR, x*sinR+y*cosR

		wx := x + d.position.X
		wy := y + d.position.Y
		wz := z + d.position.Z

		depth := -wz
		if depth <= nearClip {
			// A vertex poking behind the viewer would explode the projection; snap
			// it to the near plane instead of clipping the triangle properly.
			depth = nearClip
		}

		device.vertices = append(device.vertices, ebiten.Vertex{
			DstX:   float32(cx + wx*focal/depth),
			DstY:   float32(cy - wy*focal/depth),
			SrcX:   float32(v.U * float64(texW)),
			SrcY:   float32(v.V * float64(texH)),
			ColorR: d.tint.R,
			ColorG: d.tint.G,
			ColorB: d.tint.B,
			ColorA: d.tint.A,
		})
		device.indices = append(device.indices, uint16(len(device.indices)))

	}

	screen.DrawTriangles(device.vertices, device.indices, d.texture.image, op)

}
