package rowan

// NodeKind distinguishes rendering behavior for a Node. The set is closed and
// resolved once at construction; the batching pass never probes capabilities.
type NodeKind uint8

const (
	KindContainer      NodeKind = iota // group node with no visual output
	KindSprite                         // renders a Texture quad
	KindText                           // renders rasterized text
	KindCanvas                         // renders a caller-drawn raster surface
	KindAnimatedSprite                 // sprite cycling through texture frames
	KindShape                          // renders tessellated vector geometry
	KindEmitter                        // CPU-simulated particle quads
)

// nodeIDCounter is a plain counter (no atomic — rowan is single-threaded).
var nodeIDCounter uint32

func nextNodeID() uint32 {
	nodeIDCounter++
	return nodeIDCounter
}

// Node is the fundamental scene graph element. A single flat struct is used
// for all node kinds to avoid interface dispatch on the hot path.
//
// Geometry-affecting state is unexported and mutated through setters: every
// setter ORs the matching dirty bit, and setting a property to its current
// value is a strict no-op.
type Node struct {
	ID   uint32
	Name string
	Kind NodeKind

	Parent   *Node
	children []*Node

	// Local transform
	x, y           float64
	scaleX, scaleY float64
	rotation       float64
	pivotX, pivotY float64
	width, height  float64

	alpha   float64
	tint    Color
	visible bool

	dirty DirtyFlag

	// culled records whether the node's effective alpha was below the
	// cutoff at the last collection; a crossing forces re-collection.
	culled bool

	// World state, written by collection/update passes.
	localMatrix Matrix
	worldMatrix Matrix
	worldAlpha  float64
	worldColor  uint32 // packed ABGR, alpha premultiplied

	texture      *Texture
	renderObject *RenderObject

	filters []Filter
	cached  bool

	// Kind-specific payloads
	shape   *Shape
	canvas  *Canvas
	text    *TextBlock
	anim    *Animation
	emitter *Emitter

	// filterSource links a filter output proxy back to the filtered node;
	// proxy points the other way on the filtered node itself.
	filterSource *Node
	proxy        *Node

	onDestroy []func(*Node)
	destroyed bool
}

// nodeDefaults sets the field values shared by all constructors.
func nodeDefaults(n *Node) {
	n.ID = nextNodeID()
	n.scaleX = 1
	n.scaleY = 1
	n.alpha = 1
	n.tint = ColorWhite
	n.visible = true
	n.worldAlpha = 1
	n.localMatrix = MatrixIdentity
	n.worldMatrix = MatrixIdentity
	n.dirty = dirtyAll
}

// NewContainer creates a grouping node with no visual output of its own.
func NewContainer(name string) *Node {
	n := &Node{Name: name, Kind: KindContainer}
	nodeDefaults(n)
	return n
}

// NewSprite creates a sprite node rendering the given texture. A nil texture
// is a legitimate transient state (asset still loading); the node contributes
// no vertices until one is assigned.
func NewSprite(name string, tex *Texture) *Node {
	n := &Node{Name: name, Kind: KindSprite, texture: tex}
	nodeDefaults(n)
	if tex != nil {
		n.width = tex.Width
		n.height = tex.Height
	}
	n.renderObject = newRenderObject(n, quadPacker{})
	return n
}

// --- Transform & appearance setters ---

// SetPosition sets the node's local position.
func (n *Node) SetPosition(x, y float64) {
	if n.x == x && n.y == y {
		return
	}
	n.x = x
	n.y = y
	n.markTransformDirty()
}

// SetScale sets the node's scale factors.
func (n *Node) SetScale(sx, sy float64) {
	if n.scaleX == sx && n.scaleY == sy {
		return
	}
	n.scaleX = sx
	n.scaleY = sy
	n.markTransformDirty()
}

// SetRotation sets the node's rotation in radians.
func (n *Node) SetRotation(r float64) {
	if n.rotation == r {
		return
	}
	n.rotation = r
	n.markTransformDirty()
}

// SetPivot sets the node's pivot point in local coordinates.
func (n *Node) SetPivot(px, py float64) {
	if n.pivotX == px && n.pivotY == py {
		return
	}
	n.pivotX = px
	n.pivotY = py
	n.markTransformDirty()
}

// SetSize sets the node's width and height. For drawables this stretches the
// packed quad relative to the texture's authored size.
func (n *Node) SetSize(w, h float64) {
	if n.width == w && n.height == h {
		return
	}
	n.width = w
	n.height = h
	n.dirty |= DirtySize
	n.bubble(DirtySize)
}

// SetAlpha sets the node's opacity in [0, 1].
func (n *Node) SetAlpha(a float64) {
	if n.alpha == a {
		return
	}
	n.alpha = a
	n.markColorDirty()
}

// SetTint sets the node's tint color.
func (n *Node) SetTint(c Color) {
	if n.tint == c {
		return
	}
	n.tint = c
	n.markColorDirty()
}

// SetTexture assigns the node's texture. If the new texture's authored size
// or trim differs, the vertex data is also invalidated.
func (n *Node) SetTexture(tex *Texture) {
	if n.texture == tex {
		return
	}
	old := n.texture
	n.texture = tex
	bits := DirtyTexture
	if old == nil || tex == nil ||
		old.Width != tex.Width || old.Height != tex.Height || old.Trim != tex.Trim {
		bits |= DirtySize
	}
	n.dirty |= bits
	n.bubble(bits)
}

// SetVisible shows or hides the node and its subtree. Toggling visibility is
// a structural change: the owning group's visited list must be rebuilt.
func (n *Node) SetVisible(v bool) {
	if n.visible == v {
		return
	}
	n.visible = v
	if v {
		// Re-entering the visited list; everything must repack.
		markSubtreeDirty(n, dirtyAll)
	}
	n.markStructuralOnParent()
}

// SetFilters replaces the node's post-process filter list. A nil or empty
// list removes the filter boundary.
func (n *Node) SetFilters(filters []Filter) {
	if len(filters) == 0 && len(n.filters) == 0 {
		return
	}
	n.filters = filters
	n.dirty |= DirtyFilter
	n.markStructuralOnParent()
}

// SetCache marks or unmarks the node as an isolated render branch with its
// own persistent BatchGroup.
func (n *Node) SetCache(cached bool) {
	if n.cached == cached {
		return
	}
	n.cached = cached
	n.markStructuralOnParent()
}

// --- Getters ---

func (n *Node) X() float64            { return n.x }
func (n *Node) Y() float64            { return n.y }
func (n *Node) ScaleX() float64       { return n.scaleX }
func (n *Node) ScaleY() float64       { return n.scaleY }
func (n *Node) Rotation() float64     { return n.rotation }
func (n *Node) PivotX() float64       { return n.pivotX }
func (n *Node) PivotY() float64       { return n.pivotY }
func (n *Node) Width() float64        { return n.width }
func (n *Node) Height() float64       { return n.height }
func (n *Node) Alpha() float64        { return n.alpha }
func (n *Node) Tint() Color           { return n.tint }
func (n *Node) Visible() bool         { return n.visible }
func (n *Node) Texture() *Texture     { return n.texture }
func (n *Node) Filters() []Filter     { return n.filters }
func (n *Node) Cached() bool          { return n.cached }
func (n *Node) Dirty() DirtyFlag      { return n.dirty }
func (n *Node) Shape() *Shape         { return n.shape }
func (n *Node) Canvas() *Canvas       { return n.canvas }
func (n *Node) Text() *TextBlock      { return n.text }
func (n *Node) Anim() *Animation      { return n.anim }
func (n *Node) Emitter() *Emitter     { return n.emitter }

// WorldMatrix returns the node's world transform as of the last pass.
func (n *Node) WorldMatrix() Matrix { return n.worldMatrix }

// WorldAlpha returns the node's composed opacity as of the last pass.
func (n *Node) WorldAlpha() float64 { return n.worldAlpha }

// WorldColor returns the packed ABGR world color as of the last pass.
func (n *Node) WorldColor() uint32 { return n.worldColor }

// WorldToLocal converts a world-space point to this node's local space.
func (n *Node) WorldToLocal(wx, wy float64) (lx, ly float64) {
	return n.worldMatrix.Invert().Apply(wx, wy)
}

// LocalToWorld converts a local-space point to world space.
func (n *Node) LocalToWorld(lx, ly float64) (wx, wy float64) {
	return n.worldMatrix.Apply(lx, ly)
}

// --- Dirty propagation ---

// markTransformDirty flags the node and its descendants (their world matrices
// depend on this one) and bubbles the bit up so the owning group's early-out
// check wakes. Bubbled bits on ancestors resolve to byte-identical repacks.
func (n *Node) markTransformDirty() {
	markSubtreeDirty(n, DirtyTransform)
	n.bubble(DirtyTransform)
}

func (n *Node) markColorDirty() {
	markSubtreeDirty(n, DirtyColor)
	n.bubble(DirtyColor)
}

// bubble ORs bit into every ancestor up to the nearest group boundary
// (cached or filtered node) inclusive, or the tree root. Bits never cross a
// boundary upward; parent groups poll their nested groups each frame instead.
func (n *Node) bubble(bit DirtyFlag) {
	for p := n.Parent; p != nil; p = p.Parent {
		p.dirty |= bit
		if p.isGroupBoundary() {
			return
		}
	}
}

// markStructuralOnParent records that the parent's child set (or this node's
// participation in it) changed: DirtyChild on the parent, DirtyParent bubbled
// above it. A parentless node carries DirtyChild itself so a group rooted at
// it re-collects.
func (n *Node) markStructuralOnParent() {
	if n.Parent == nil {
		n.dirty |= DirtyChild
		return
	}
	n.Parent.dirty |= DirtyChild
	n.Parent.bubble(DirtyParent)
}

// isGroupBoundary reports whether the node roots its own BatchGroup.
func (n *Node) isGroupBoundary() bool {
	return n.cached || len(n.filters) > 0
}

// markSubtreeDirty ORs bits into node and all its descendants. A filtered
// node's output proxy lives outside the child list but inherits the same
// world state, so it is flagged alongside.
//
// Descent stops at filtered children: their subtree packs in its own isolated
// space, so only the proxy quad depends on anything above. The filtered node
// itself as origin still descends fully (its local transform is part of the
// isolated packing).
func markSubtreeDirty(node *Node, bits DirtyFlag) {
	node.dirty |= bits
	if node.proxy != nil {
		node.proxy.dirty |= bits
	}
	for _, child := range node.children {
		if len(child.filters) > 0 {
			if child.proxy != nil {
				child.proxy.dirty |= bits
			}
			continue
		}
		markSubtreeDirty(child, bits)
	}
}

// --- Tree manipulation ---

// AddChild appends child to this node's children. If child already has a
// parent, it is removed from that parent first. Panics if child is nil or an
// ancestor of this node.
func (n *Node) AddChild(child *Node) {
	n.addChildAt(child, len(n.children))
}

// AddChildAt inserts child at the given index. Same reparenting and
// cycle-check behavior as AddChild.
func (n *Node) AddChildAt(child *Node, index int) {
	if index < 0 || index > len(n.children) {
		panic("rowan: child index out of range")
	}
	n.addChildAt(child, index)
}

func (n *Node) addChildAt(child *Node, index int) {
	if child == nil {
		panic("rowan: cannot add nil child")
	}
	if isAncestor(child, n) {
		panic("rowan: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	child.Parent = n
	n.children = append(n.children, nil)
	copy(n.children[index+1:], n.children[index:])
	n.children[index] = child
	if debugChecks {
		debugCheckTreeDepth(child)
	}
	markSubtreeDirty(child, dirtyAll)
	n.dirty |= DirtyChild
	n.bubble(DirtyParent)
}

// RemoveChild detaches child from this node. Panics if child's parent is not
// this node.
func (n *Node) RemoveChild(child *Node) {
	if child.Parent != n {
		panic("rowan: child's parent is not this node")
	}
	n.removeChildByPtr(child)
	child.Parent = nil
	n.dirty |= DirtyChild
	n.bubble(DirtyParent)
}

// RemoveChildAt removes and returns the child at the given index.
func (n *Node) RemoveChildAt(index int) *Node {
	if index < 0 || index >= len(n.children) {
		panic("rowan: child index out of range")
	}
	child := n.children[index]
	n.RemoveChild(child)
	return child
}

// RemoveFromParent detaches this node from its parent. No-op without one.
func (n *Node) RemoveFromParent() {
	if n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// Children returns the child list. The returned slice must not be mutated.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// ChildAt returns the child at the given index.
func (n *Node) ChildAt(index int) *Node {
	return n.children[index]
}

// --- Destruction ---

// Destroy removes this node from its parent, fires destroyed callbacks, and
// recursively destroys all descendants. Never call from inside a collection
// pass; defer through Renderer.Defer instead.
func (n *Node) Destroy() {
	if n.destroyed {
		return
	}
	n.RemoveFromParent()
	n.destroy()
}

func (n *Node) destroy() {
	n.destroyed = true
	for _, fn := range n.onDestroy {
		fn(n)
	}
	n.onDestroy = nil
	for _, child := range n.children {
		child.Parent = nil
		child.destroy()
	}
	n.children = nil
	n.Parent = nil
	n.texture = nil
	n.renderObject = nil
	n.filters = nil
	n.shape = nil
	n.canvas = nil
	n.text = nil
	n.anim = nil
	n.emitter = nil
	n.filterSource = nil
}

// IsDestroyed reports whether this node has been destroyed.
func (n *Node) IsDestroyed() bool {
	return n.destroyed
}

// OnDestroyed registers a callback fired when the node is destroyed. The
// renderer's side tables use this to tear down per-node state.
func (n *Node) OnDestroyed(fn func(*Node)) {
	n.onDestroy = append(n.onDestroy, fn)
}

// --- Helpers ---

// isAncestor reports whether candidate is node or an ancestor of node.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing
// child.Parent. Shifts with copy and nils the tail to drop the reference.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}

// drawable reports whether the node carries a render object.
func (n *Node) drawable() bool {
	return n.renderObject != nil
}
