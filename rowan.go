package rowan

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Vec2 is a 2D vector used for positions, offsets, sizes, and directions
// throughout the API.
type Vec2 struct {
	X, Y float64
}

// Range is a general-purpose min/max range, used by the particle system.
type Range struct {
	Min, Max float64
}

// MaxTextureSlots is the number of distinct textures a single Batch may bind,
// matching a shader's sampler array capacity.
const MaxTextureSlots = 16

// alphaEpsilon is the effective-alpha cutoff below which a node is excluded
// from draw work entirely.
const alphaEpsilon = 0.001
