package driftfield

import "math"

// Vector represents a 3D vector, used for slot positions, velocities, and volume extents.
// Vector functions that modify the calling Vector return copies, so method-chaining works
// naturally and Vectors can live by value in the per-frame hot path without heap allocation.
type Vector struct {
	X float64 // The X (1st) component of the Vector
	Y float64 // The Y (2nd) component of the Vector
	Z float64 // The Z (3rd) component of the Vector
}

// NewVector creates a new Vector with the specified x, y, and z components.
func NewVector(x, y, z float64) Vector {
	return Vector{X: x, Y: y, Z: z}
}

// NewVectorZero creates a new "zero-ed out" Vector.
func NewVectorZero() Vector {
	return Vector{}
}

// Add returns a copy of the calling Vector, added together with the other Vector provided.
func (vec Vector) Add(other Vector) Vector {
	vec.X += other.X
	vec.Y += other.Y
	vec.Z += other.Z
	return vec
}

// Scale returns a copy of the calling Vector, multiplied by the scalar provided.
func (vec Vector) Scale(scalar float64) Vector {
	vec.X *= scalar
	vec.Y *= scalar
	vec.Z *= scalar
	return vec
}

// Magnitude returns the length of the Vector.
func (vec Vector) Magnitude() float64 {
	return math.Sqrt(vec.MagnitudeSquared())
}

// MagnitudeSquared returns the squared length of the Vector; this is faster than Magnitude().
func (vec Vector) MagnitudeSquared() float64 {
	return vec.X*vec.X + vec.Y*vec.Y + vec.Z*vec.Z
}

// Unit returns a copy of the Vector, normalized (set to be of unit length).
// A zero-length Vector is returned unmodified.
func (vec Vector) Unit() Vector {
	l := vec.Magnitude()
	if l < 1e-8 || l == 1 {
		return vec
	}
	vec.X /= l
	vec.Y /= l
	vec.Z /= l
	return vec
}

// Lerp returns a copy of the calling Vector, linearly interpolated towards the other
// Vector by the percentage given (0-1).
func (vec Vector) Lerp(other Vector, percentage float64) Vector {
	percentage = clamp(percentage, 0, 1)
	vec.X = vec.X + ((other.X - vec.X) * percentage)
	vec.Y = vec.Y + ((other.Y - vec.Y) * percentage)
	vec.Z = vec.Z + ((other.Z - vec.Z) * percentage)
	return vec
}

// IsInside returns true if the Vector lies within the axis-aligned box centered on the
// origin with the half-extents given.
func (vec Vector) IsInside(halfExtents Vector) bool {
	return math.Abs(vec.X) <= halfExtents.X && math.Abs(vec.Y) <= halfExtents.Y && math.Abs(vec.Z) <= halfExtents.Z
}
