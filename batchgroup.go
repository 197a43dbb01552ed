package rowan

import "math"

// drawItem is one entry in a group's draw list: either one of the group's
// own batches or a nested cached group spliced in at this position. Holding
// the group rather than its batch handles keeps the splice valid across the
// nested group's own re-collections.
type drawItem struct {
	batch BatchHandle
	group *BatchGroup
}

// boundaryRef records a render boundary met during collection so the
// non-structural paths can poll it each frame. Exactly one of nested or fs
// is set.
type boundaryRef struct {
	node   *Node
	nested *BatchGroup  // cached subtree, batches spliced into the draw list
	fs     *filterState // filtered subtree, rendered offscreen behind a proxy
}

// BatchGroup owns the shared geometry buffers for one render branch of the
// tree and the batches carved out of them. The stage root has one; every
// cached or filtered node gets its own.
//
// Collect is the single entry point. It picks between three paths: full
// re-collection when the branch's structure changed, an incremental in-place
// update when only leaf state changed, and a near-free poll when nothing
// changed at all.
type BatchGroup struct {
	rend *Renderer
	root *Node

	// nodes is the flat visited list in draw order (parents before
	// children). The incremental path iterates this, never the tree.
	nodes []*Node

	batches    []BatchHandle
	drawList   []drawItem
	boundaries []boundaryRef

	positions *Float32Buffer
	colors    *Uint32Buffer
	uvs       *Float32Buffer
	indices   *Uint32Buffer

	cornerCount int
	indexCount  int

	// isolated groups (filtered subtrees) pack in the root's parent space:
	// no view, no ancestor transforms, root alpha deferred to the proxy.
	isolated bool

	// needsFull escalates an incremental pass that discovered it cannot
	// patch in place (texture slot overflow, alpha-cull crossing).
	needsFull bool

	// cur is the open batch while collecting.
	cur *Batch
}

// NewBatchGroup creates an empty group rooted at root.
func NewBatchGroup(r *Renderer, root *Node) *BatchGroup {
	return &BatchGroup{
		rend:      r,
		root:      root,
		positions: NewFloat32Buffer(BufferVertex),
		colors:    NewUint32Buffer(BufferColor),
		uvs:       NewFloat32Buffer(BufferUV),
		indices:   NewUint32Buffer(BufferIndex),
	}
}

// Root returns the node this group is rooted at.
func (g *BatchGroup) Root() *Node { return g.root }

// Buffers returns the group's shared buffers for device submission.
func (g *BatchGroup) Buffers() *GroupBuffers {
	return &GroupBuffers{
		Positions: g.positions,
		Colors:    g.colors,
		UVs:       g.uvs,
		Indices:   g.indices,
	}
}

// Batches returns the group's own batch handles in draw order.
func (g *BatchGroup) Batches() []BatchHandle { return g.batches }

// Nodes returns the flat visited list from the last collection.
func (g *BatchGroup) Nodes() []*Node { return g.nodes }

// Collect brings the group's buffers and batches up to date with the tree.
//
// Structural dirt on the root (its own child bit, or a bubbled parent bit)
// forces the full path. Otherwise leaf dirt is patched in place, and nested
// groups are polled regardless so changes isolated behind a cached or
// filtered boundary are picked up without waking this group.
func (g *BatchGroup) Collect() error {
	if len(g.nodes) == 0 || g.root.dirty&dirtyStructural != 0 {
		return g.collectFull()
	}
	if err := g.update(); err != nil {
		return err
	}
	if g.needsFull {
		g.needsFull = false
		return g.collectFull()
	}
	return nil
}

// --- Full collection ---

func (g *BatchGroup) collectFull() error {
	g.rend.stats.Collects++
	g.releaseBatches()
	g.nodes = g.nodes[:0]
	g.drawList = g.drawList[:0]
	g.boundaries = g.boundaries[:0]
	g.cornerCount = 0
	g.indexCount = 0
	g.cur = nil
	g.needsFull = false

	if err := g.visit(g.root); err != nil {
		return err
	}
	g.closeBatch()

	// One growth per stream, then a single pack pass over the flat list.
	dev := g.rend.dev
	g.positions.Fat(dev, g.cornerCount*2)
	g.colors.Fat(dev, g.cornerCount)
	g.uvs.Fat(dev, g.cornerCount*3)
	g.indices.Fat(dev, g.indexCount)

	for _, n := range g.nodes {
		g.packNode(n)
		n.dirty = 0
	}
	g.positions.Reset()
	g.colors.Reset()
	g.uvs.Reset()
	g.indices.Reset()
	return nil
}

// visit walks the subtree in draw order, computing world state, appending
// visited nodes, and assigning buffer ranges. Boundaries divert: cached
// children splice their group, filtered children contribute a proxy quad.
func (g *BatchGroup) visit(n *Node) error {
	g.computeWorld(n)
	g.nodes = append(g.nodes, n)

	n.culled = n.worldAlpha < alphaEpsilon && n != g.root
	if n.culled {
		// Drop any stale reservation: the incremental path would otherwise
		// repack this node into a range that now belongs to a sibling.
		if ro := n.renderObject; ro != nil {
			ro.batch = NoBatch
			ro.cornerCount = 0
			ro.indexCount = 0
		}
		return nil
	}

	if n.drawable() {
		g.assignRanges(n)
	}

	for _, child := range n.children {
		if !child.visible {
			continue
		}
		if child.isGroupBoundary() {
			if err := g.visitBoundary(child); err != nil {
				return err
			}
			continue
		}
		if err := g.visit(child); err != nil {
			return err
		}
	}
	return nil
}

func (g *BatchGroup) visitBoundary(child *Node) error {
	if len(child.filters) > 0 {
		fs := g.rend.filterStateFor(child)
		if _, err := fs.refresh(); err != nil {
			return err
		}
		g.boundaries = append(g.boundaries, boundaryRef{node: child, fs: fs})
		// The proxy rides in this group's streams like any sprite.
		proxy := fs.proxy
		g.computeWorld(proxy)
		g.nodes = append(g.nodes, proxy)
		proxy.culled = false
		g.assignRanges(proxy)
		return nil
	}

	nested := g.rend.groupFor(child)
	if err := nested.Collect(); err != nil {
		return err
	}
	g.boundaries = append(g.boundaries, boundaryRef{node: child, nested: nested})
	// Interleave in draw order; the open batch must not straddle the splice.
	g.closeBatch()
	g.drawList = append(g.drawList, drawItem{group: nested})
	return nil
}

// assignRanges reserves buffer space for a drawable and folds it into the
// open batch, splitting when the texture slots run out.
func (g *BatchGroup) assignRanges(n *Node) {
	ro := n.renderObject
	corners, idx := ro.counts()
	if corners == 0 {
		ro.batch = NoBatch
		ro.cornerCount = 0
		ro.indexCount = 0
		return
	}
	tex := g.textureFor(n)
	if tex == nil || tex.Buffer == nil {
		ro.batch = NoBatch
		ro.cornerCount = 0
		ro.indexCount = 0
		return
	}

	if g.cur == nil {
		g.openBatch()
	}
	slot := g.cur.textures.Add(tex.Buffer)
	if slot == -1 {
		g.closeBatch()
		g.openBatch()
		slot = g.cur.textures.Add(tex.Buffer)
	}

	ro.batch = g.cur.handle
	ro.slot = slot
	ro.cornerStart = g.cornerCount
	ro.cornerCount = corners
	ro.indexStart = g.indexCount
	ro.indexCount = idx

	g.cornerCount += corners
	g.indexCount += idx
	g.cur.cornerCount += corners
	g.cur.indexCount += idx
}

func (g *BatchGroup) openBatch() {
	h := g.rend.arena.alloc(g)
	g.cur = g.rend.arena.get(h)
	g.cur.startCorner = g.cornerCount
	g.cur.startIndex = g.indexCount
	g.batches = append(g.batches, h)
	g.drawList = append(g.drawList, drawItem{batch: h})
}

// closeBatch seals the open batch. An empty one is unwound entirely.
func (g *BatchGroup) closeBatch() {
	if g.cur == nil {
		return
	}
	if g.cur.indexCount == 0 {
		h := g.cur.handle
		g.batches = g.batches[:len(g.batches)-1]
		g.drawList = g.drawList[:len(g.drawList)-1]
		g.rend.arena.release(h)
	}
	g.cur = nil
}

// packNode writes all four streams for one node. No-op for non-drawables and
// nodes that reserved no space.
func (g *BatchGroup) packNode(n *Node) {
	ro := n.renderObject
	if ro == nil || ro.cornerCount == 0 {
		return
	}
	ro.pk.packVertex(n, ro.vertexSlice(g.positions))
	ro.pk.packColor(n, ro.colorSlice(g.colors))
	ro.pk.packUV(n, ro.slot, ro.uvSlice(g.uvs))
	ro.pk.packIndex(n, uint32(ro.cornerStart), ro.indexSlice(g.indices))
}

// --- Incremental update ---

func (g *BatchGroup) update() error {
	root := g.root
	if root.dirty != 0 {
		g.rend.stats.Updates++
		for _, n := range g.nodes {
			d := n.dirty
			if d == 0 {
				continue
			}
			if d&dirtyStructural != 0 {
				// Structural dirt below the root means a boundary moved
				// under us; rebuild rather than guess.
				g.needsFull = true
				break
			}
			if d&(DirtyTransform|DirtyColor) != 0 {
				g.computeWorld(n)
				if (n.worldAlpha < alphaEpsilon && n != root) != n.culled {
					g.needsFull = true
					break
				}
			}
			g.repackNode(n, d)
			n.dirty = 0
		}
	}

	// Nested branches are polled every frame: dirt never bubbles across a
	// cached or filtered boundary, so this is how isolated changes surface.
	for i := range g.boundaries {
		if err := g.pollBoundary(&g.boundaries[i]); err != nil {
			return err
		}
	}
	return nil
}

func (g *BatchGroup) pollBoundary(b *boundaryRef) error {
	if b.nested != nil {
		return b.nested.Collect()
	}
	changed, err := b.fs.refresh()
	if err != nil {
		return err
	}
	if changed {
		proxy := b.fs.proxy
		g.computeWorld(proxy)
		g.repackNode(proxy, dirtyAll)
		proxy.dirty = 0
	}
	return nil
}

// repackNode overwrites exactly the streams the dirty bits invalidate.
func (g *BatchGroup) repackNode(n *Node, d DirtyFlag) {
	ro := n.renderObject
	if ro == nil {
		return
	}
	if ro.cornerCount == 0 {
		// No reservation to patch. A texture landing on a node that had
		// none at collect time (still loading) needs new buffer space.
		if d&DirtyTexture != 0 {
			g.needsFull = true
		}
		return
	}
	if d&(DirtyTransform|DirtySize) != 0 {
		ro.pk.packVertex(n, ro.vertexSlice(g.positions))
		g.positions.Reset()
	}
	if d&DirtyColor != 0 {
		ro.pk.packColor(n, ro.colorSlice(g.colors))
		g.colors.Reset()
	}
	if d&DirtyTexture != 0 {
		// The replacement texture must fit the existing batch's slots;
		// otherwise the whole group re-collects.
		tex := g.textureFor(n)
		batch := g.rend.arena.get(ro.batch)
		if tex == nil || tex.Buffer == nil || batch == nil {
			g.needsFull = true
			return
		}
		slot := batch.textures.Add(tex.Buffer)
		if slot == -1 {
			g.needsFull = true
			return
		}
		ro.slot = slot
	}
	if d&DirtyTexture != 0 || (d&DirtySize != 0 && g.repeats(n)) {
		ro.pk.packUV(n, ro.slot, ro.uvSlice(g.uvs))
		g.uvs.Reset()
	}
}

func (g *BatchGroup) repeats(n *Node) bool {
	tex := g.textureFor(n)
	return tex != nil && tex.Repeat
}

// --- Shared helpers ---

// computeWorld refreshes a node's local matrix, world matrix, composed alpha,
// and packed world color. Parents are always refreshed before children, so
// reading the parent's world state here is safe. The stage root composes
// against the renderer's view.
func (g *BatchGroup) computeWorld(n *Node) {
	n.localMatrix = composeLocal(n.x, n.y, n.scaleX, n.scaleY, n.rotation, n.pivotX, n.pivotY)
	switch {
	case n == g.root && g.isolated:
		n.worldMatrix = n.localMatrix
		n.worldAlpha = 1
	case n.Parent != nil:
		n.worldMatrix = n.Parent.worldMatrix.Mul(n.localMatrix)
		n.worldAlpha = n.Parent.worldAlpha * n.alpha
	default:
		n.worldMatrix = g.rend.view.Mul(n.localMatrix)
		n.worldAlpha = n.alpha
	}
	n.worldColor = packWorldColor(n.tint, n.worldAlpha)
}

// textureFor resolves the texture a node samples. Shapes sample the shared
// 1x1 white texture so they batch freely with sprites.
func (g *BatchGroup) textureFor(n *Node) *Texture {
	if n.Kind == KindShape {
		return g.rend.whiteTex
	}
	return n.texture
}

// bounds returns the axis-aligned bounds of all packed corners, or a zero
// rect when the group packed nothing.
func (g *BatchGroup) bounds() Rect {
	if g.cornerCount == 0 {
		return Rect{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	data := g.positions.Data
	for i := 0; i < g.cornerCount; i++ {
		x := float64(data[i*2])
		y := float64(data[i*2+1])
		minX = math.Min(minX, x)
		minY = math.Min(minY, y)
		maxX = math.Max(maxX, x)
		maxY = math.Max(maxY, y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// releaseBatches returns all own batches to the arena.
func (g *BatchGroup) releaseBatches() {
	for _, h := range g.batches {
		g.rend.arena.release(h)
	}
	g.batches = g.batches[:0]
}

// release frees everything the group holds on the device. Called when the
// group's root leaves the tree for good.
func (g *BatchGroup) release() {
	g.releaseBatches()
	dev := g.rend.dev
	g.positions.release(dev)
	g.colors.release(dev)
	g.uvs.release(dev)
	g.indices.release(dev)
	g.nodes = nil
	g.drawList = nil
	g.boundaries = nil
}

// upload pushes any stream the last pass touched to the device.
func (g *BatchGroup) upload() error {
	dev := g.rend.dev
	if err := g.positions.Upload(dev); err != nil {
		return err
	}
	if err := g.colors.Upload(dev); err != nil {
		return err
	}
	if err := g.uvs.Upload(dev); err != nil {
		return err
	}
	return g.indices.Upload(dev)
}

// draw submits the draw list to target in order, recursing into spliced
// nested groups.
func (g *BatchGroup) draw(target *RenderTarget) error {
	if err := g.upload(); err != nil {
		return err
	}
	bufs := g.Buffers()
	for _, item := range g.drawList {
		if item.group != nil {
			if err := item.group.draw(target); err != nil {
				return err
			}
			continue
		}
		batch := g.rend.arena.get(item.batch)
		if batch == nil || batch.indexCount == 0 {
			continue
		}
		g.rend.stats.Draws++
		if err := g.rend.dev.DrawBatch(target, batch, bufs); err != nil {
			return err
		}
	}
	return nil
}
