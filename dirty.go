package rowan

// DirtyFlag is a bitmask recording which aspects of a node changed since the
// last collection or update pass. Mutators OR bits in; only a pass clears
// them, and only after acting on them.
type DirtyFlag uint16

const (
	// DirtyTransform is set when position, scale, rotation, or pivot changed.
	DirtyTransform DirtyFlag = 1 << iota
	// DirtySize is set when the node's width or height changed.
	DirtySize
	// DirtyTexture is set when the bound texture changed.
	DirtyTexture
	// DirtyColor is set when alpha or tint changed.
	DirtyColor
	// DirtyFilter is set when the node's filter list changed.
	DirtyFilter
	// DirtyChild is set on a node whose child set changed, forcing subtree
	// re-collection.
	DirtyChild
	// DirtyParent bubbles a descendant's structural change up the tree so the
	// ancestor's incremental fast path is bypassed.
	DirtyParent
)

// dirtyAll is the initial mask on freshly constructed nodes so the first
// collection packs everything.
const dirtyAll = DirtyTransform | DirtySize | DirtyTexture | DirtyColor

// dirtyStructural marks changes that invalidate buffer offsets and require a
// full re-collection of the owning batch group.
const dirtyStructural = DirtyChild | DirtyParent

// Has reports whether any bit of mask is set in d.
func (d DirtyFlag) Has(mask DirtyFlag) bool {
	return d&mask != 0
}
