package rowan

// packer turns one node into vertex-stream data. Implementations are
// stateless; all inputs come from the node. The packer for a node is resolved
// once at construction from its kind.
type packer interface {
	// counts returns the number of corners and indices the node occupies.
	// Must be stable between structural changes.
	counts(n *Node) (corners, indices int)
	// packVertex writes corners*2 world-space floats (x, y per corner).
	packVertex(n *Node, out []float32)
	// packColor writes corners packed ABGR values.
	packColor(n *Node, out []uint32)
	// packUV writes corners*3 floats (u, v, slot per corner).
	packUV(n *Node, slot int, out []float32)
	// packIndex writes triangle indices relative to base, the node's first
	// corner position in the shared buffers.
	packIndex(n *Node, base uint32, out []uint32)
}

// RenderObject records where a drawable node's geometry lives inside its
// group's shared buffers, so incremental updates can overwrite elements
// in place without re-walking the tree.
type RenderObject struct {
	node *Node
	pk   packer

	batch BatchHandle
	slot  int // texture slot within the batch

	cornerStart int // first corner in the group buffers
	cornerCount int
	indexStart  int // first element in the group index buffer
	indexCount  int
}

func newRenderObject(n *Node, pk packer) *RenderObject {
	return &RenderObject{node: n, pk: pk, batch: NoBatch}
}

// Batch returns the handle of the batch this object was assigned to during
// the last collection, or NoBatch.
func (ro *RenderObject) Batch() BatchHandle { return ro.batch }

func (ro *RenderObject) counts() (int, int) {
	return ro.pk.counts(ro.node)
}

// vertexSlice returns the object's window into the group position buffer.
func (ro *RenderObject) vertexSlice(buf *Float32Buffer) []float32 {
	return buf.Data[ro.cornerStart*2 : (ro.cornerStart+ro.cornerCount)*2]
}

func (ro *RenderObject) colorSlice(buf *Uint32Buffer) []uint32 {
	return buf.Data[ro.cornerStart : ro.cornerStart+ro.cornerCount]
}

func (ro *RenderObject) uvSlice(buf *Float32Buffer) []float32 {
	return buf.Data[ro.cornerStart*3 : (ro.cornerStart+ro.cornerCount)*3]
}

func (ro *RenderObject) indexSlice(buf *Uint32Buffer) []uint32 {
	return buf.Data[ro.indexStart : ro.indexStart+ro.indexCount]
}

// quadPacker packs a single textured quad. Corners are ordered TL, TR, BL,
// BR; the two triangles are (0,1,2) and (1,3,2). Covers sprites and every
// node kind that rasterizes to a texture (text, canvas, animated sprite).
type quadPacker struct{}

func (quadPacker) counts(n *Node) (int, int) {
	if n.texture == nil {
		return 0, 0
	}
	return 4, 6
}

func (quadPacker) packVertex(n *Node, out []float32) {
	tex := n.texture
	if tex == nil {
		return
	}
	// Stretch factors from authored size to the node's size.
	sx, sy := 1.0, 1.0
	if tex.Width > 0 {
		sx = n.width / tex.Width
	}
	if tex.Height > 0 {
		sy = n.height / tex.Height
	}
	// Trimmed sprites pack only the pixel-carrying sub-rectangle; the trim
	// offset keeps them aligned within the authored bounds.
	x0 := tex.Trim.X * sx
	y0 := tex.Trim.Y * sy
	x1 := (tex.Trim.X + tex.Trim.Width) * sx
	y1 := (tex.Trim.Y + tex.Trim.Height) * sy

	m := &n.worldMatrix
	packCorner(out[0:], m, x0, y0)
	packCorner(out[2:], m, x1, y0)
	packCorner(out[4:], m, x0, y1)
	packCorner(out[6:], m, x1, y1)
}

func packCorner(out []float32, m *Matrix, x, y float64) {
	wx, wy := m.Apply(x, y)
	out[0] = float32(wx)
	out[1] = float32(wy)
}

func (quadPacker) packColor(n *Node, out []uint32) {
	c := n.worldColor
	out[0] = c
	out[1] = c
	out[2] = c
	out[3] = c
}

func (quadPacker) packUV(n *Node, slot int, out []float32) {
	tex := n.texture
	if tex == nil {
		return
	}
	s := float32(slot)
	if tex.Repeat {
		// Tiling sprites span [0, size/textureSize] and rely on a repeating
		// sampler; trim does not apply to tiling textures.
		var u1, v1 float32
		if tex.Width > 0 {
			u1 = float32(n.width / tex.Width)
		}
		if tex.Height > 0 {
			v1 = float32(n.height / tex.Height)
		}
		out[0], out[1], out[2] = 0, 0, s
		out[3], out[4], out[5] = u1, 0, s
		out[6], out[7], out[8] = 0, v1, s
		out[9], out[10], out[11] = u1, v1, s
		return
	}
	for i := 0; i < 4; i++ {
		out[i*3+0] = tex.UVs[i*2+0]
		out[i*3+1] = tex.UVs[i*2+1]
		out[i*3+2] = s
	}
}

var quadIndexPattern = [6]uint32{0, 1, 2, 1, 3, 2}

func (quadPacker) packIndex(n *Node, base uint32, out []uint32) {
	for i, rel := range quadIndexPattern {
		out[i] = base + rel
	}
}
