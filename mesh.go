package driftfield

import "math"

// Dimensions represents the minimum and maximum spatial extents of a Mesh.
type Dimensions struct {
	Min, Max Vector
}

// Vertex represents a mesh vertex: a position in model space and a UV coordinate into
// whatever texture ends up bound to the drawable rendering the mesh.
type Vertex struct {
	Position Vector
	U, V     float64
}

// NewVertex creates a new Vertex with the position and UV values given.
func NewVertex(x, y, z, u, v float64) Vertex {
	return Vertex{Position: NewVector(x, y, z), U: u, V: v}
}

// Mesh holds the shared geometry that every Slot of a display mode renders with.
// Vertices come in groups of three, each group forming one triangle. A Mesh is
// created once per mode activation and shared between all of the mode's slots,
// which is what keeps the per-slot cost down to a transform and a texture binding.
type Mesh struct {
	Name       string
	Vertices   []Vertex
	Dimensions Dimensions
}

// NewMesh takes a name and a slice of Vertex instances and returns a new Mesh. The
// number of vertices must be divisible by 3, or NewMesh will panic.
func NewMesh(name string, verts ...Vertex) *Mesh {

	if len(verts) == 0 || len(verts)%3 != 0 {
		panic("Error: NewMesh() has not been given a number of vertices divisible by 3 to constitute triangles.")
	}

	mesh := &Mesh{
		Name:     name,
		Vertices: append([]Vertex{}, verts...),
	}

	mesh.UpdateBounds()

	return mesh

}

// TriangleCount returns the number of triangles in the Mesh.
func (mesh *Mesh) TriangleCount() int {
	return len(mesh.Vertices) / 3
}

// UpdateBounds updates the Mesh's Dimensions to match its current vertex positions.
func (mesh *Mesh) UpdateBounds() {

	dim := Dimensions{
		Min: NewVector(math.MaxFloat64, math.MaxFloat64, math.MaxFloat64),
		Max: NewVector(-math.MaxFloat64, -math.MaxFloat64, -math.MaxFloat64),
	}

	for _, v := range mesh.Vertices {
		dim.Min.X = math.Min(dim.Min.X, v.Position.X)
		dim.Min.Y = math.Min(dim.Min.Y, v.Position.Y)
		dim.Min.Z = math.Min(dim.Min.Z, v.Position.Z)
		dim.Max.X = math.Max(dim.Max.X, v.Position.X)
		dim.Max.Y = math.Max(dim.Max.Y, v.Position.Y)
		dim.Max.Z = math.Max(dim.Max.Z, v.Position.Z)
	}

	mesh.Dimensions = dim

}

// NewCardMesh creates the default card geometry: a unit quad in the XY plane facing
// the viewer (+Z), 1 unit on its longest side. Slots scale it by their image's
// aspect ratio at bind time.
func NewCardMesh() *Mesh {

	return NewMesh("Card",
		NewVertex(-0.5, 0.5, 0, 0, 0),
		NewVertex(0.5, 0.5, 0, 1, 0),
		NewVertex(0.5, -0.5, 0, 1, 1),

		NewVertex(-0.5, 0.5, 0, 0, 0),
		NewVertex(0.5, -0.5, 0, 1, 1),
		NewVertex(-0.5, -0.5, 0, 0, 1),
	)

}
