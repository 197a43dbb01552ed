package rowan

import "math"

// Filter is a post-process pass applied to a node's rendered output. Setting
// any filter on a node diverts its subtree into an offscreen target; the
// chain runs src-to-dst and the final output is packed back into the parent
// group as a single quad.
type Filter interface {
	// Apply renders src into dst with the effect. Both targets have the
	// same logical dimensions.
	Apply(dev Device, src, dst *RenderTarget) error
	// Padding returns the extra pixels needed around the source to fit the
	// effect (blur radius, outline thickness). Zero means no padding.
	Padding() int
	// Dirty reports whether the filter's parameters changed since the last
	// Apply. A clean filter over clean content reuses the cached output.
	Dirty() bool
	// MarkClean is called after a successful Apply.
	MarkClean()
}

// filterMark is the embeddable dirty flag for filter implementations.
// New filters start dirty so the first frame always renders.
type filterMark struct {
	dirty bool
}

func newFilterMark() filterMark      { return filterMark{dirty: true} }
func (m *filterMark) Dirty() bool    { return m.dirty }
func (m *filterMark) MarkClean()     { m.dirty = false }
func (m *filterMark) markDirty()     { m.dirty = true }

// filterState is the renderer-side state for one filtered node: its isolated
// group, the retained output target, and the proxy sprite that stands in for
// the subtree in the parent group.
//
// The isolated group packs the subtree with the filtered node's parent space
// as its origin (no view, no ancestor transforms), so ancestor movement never
// forces a re-render; only the proxy quad moves.
type filterState struct {
	rend  *Renderer
	node  *Node
	group *BatchGroup
	proxy *Node

	output *RenderTarget
	outTex *Texture
	bounds Rect // padded output placement, in the parent's local space
}

func newFilterState(r *Renderer, node *Node) *filterState {
	g := NewBatchGroup(r, node)
	g.isolated = true
	proxy := NewSprite(node.Name+":filter", nil)
	proxy.filterSource = node
	proxy.Parent = node.Parent
	node.proxy = proxy
	return &filterState{rend: r, node: node, group: g, proxy: proxy}
}

// refresh brings the filter output up to date. Returns whether the proxy's
// packing inputs (placement, size, texture identity) changed, in which case
// the caller repacks the proxy's elements.
//
// The output is reused untouched when the subtree packed nothing new and no
// filter parameter changed.
func (fs *filterState) refresh() (changed bool, err error) {
	// The proxy follows reparenting of the filtered node.
	fs.proxy.Parent = fs.node.Parent

	if err := fs.group.Collect(); err != nil {
		return false, err
	}

	filtersDirty := false
	for _, f := range fs.node.filters {
		if f.Dirty() {
			filtersDirty = true
			break
		}
	}
	bufs := fs.group
	contentDirty := !bufs.positions.Loaded() || !bufs.colors.Loaded() ||
		!bufs.uvs.Loaded() || !bufs.indices.Loaded()

	if fs.output != nil && !contentDirty && !filtersDirty {
		return fs.syncProxy(), nil
	}
	if err := fs.render(); err != nil {
		return false, err
	}
	fs.rend.stats.FilterRenders++
	return fs.syncProxy(), nil
}

// render draws the isolated group offscreen and runs the filter chain into
// the retained output target.
func (fs *filterState) render() error {
	dev := fs.rend.dev

	pad := 0
	for _, f := range fs.node.filters {
		pad += f.Padding()
	}
	b := fs.group.bounds()
	w := int(math.Ceil(b.Width)) + 2*pad
	h := int(math.Ceil(b.Height)) + 2*pad
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	fs.bounds = Rect{X: b.X - float64(pad), Y: b.Y - float64(pad), Width: float64(w), Height: float64(h)}

	// The retained output keeps its texture identity across re-renders so
	// the proxy's batch slot stays valid. It is only replaced on growth.
	if fs.output != nil && (fs.output.Width < w || fs.output.Height < h) {
		dev.ReleaseTarget(fs.output)
		fs.output = nil
		fs.outTex = nil
	}

	src, err := dev.AcquireTarget(w, h)
	if err != nil {
		return err
	}
	src.OriginX = fs.bounds.X
	src.OriginY = fs.bounds.Y
	if err := fs.group.draw(src); err != nil {
		dev.ReleaseTarget(src)
		return err
	}

	for i, f := range fs.node.filters {
		var dst *RenderTarget
		if i == len(fs.node.filters)-1 {
			if fs.output == nil {
				fs.output, err = dev.AcquireTarget(w, h)
				if err != nil {
					dev.ReleaseTarget(src)
					return err
				}
			} else {
				dev.ClearTarget(fs.output)
			}
			fs.output.Width = w
			fs.output.Height = h
			dst = fs.output
		} else {
			dst, err = dev.AcquireTarget(w, h)
			if err != nil {
				dev.ReleaseTarget(src)
				return err
			}
		}
		if err := f.Apply(dev, src, dst); err != nil {
			dev.ReleaseTarget(src)
			return err
		}
		f.MarkClean()
		if src != fs.output {
			dev.ReleaseTarget(src)
		}
		src = dst
	}

	fs.refreshOutputTexture(w, h)
	return nil
}

// refreshOutputTexture rebuilds the proxy-facing texture view when the
// output's logical size or backing texture changed.
func (fs *filterState) refreshOutputTexture(w, h int) {
	buf := fs.output.Texture.Buffer
	if fs.outTex != nil && fs.outTex.Buffer == buf &&
		fs.outTex.Width == float64(w) && fs.outTex.Height == float64(h) {
		return
	}
	u1 := float32(w) / float32(buf.Width)
	v1 := float32(h) / float32(buf.Height)
	fs.outTex = &Texture{
		Width:  float64(w),
		Height: float64(h),
		UVs:    [8]float32{0, 0, u1, 0, 0, v1, u1, v1},
		Trim:   Rect{0, 0, float64(w), float64(h)},
		Buffer: buf,
	}
}

// syncProxy copies the current output placement onto the proxy sprite.
// Fields are written directly; the caller handles repacking.
func (fs *filterState) syncProxy() bool {
	p := fs.proxy
	changed := false
	if p.x != fs.bounds.X || p.y != fs.bounds.Y {
		p.x = fs.bounds.X
		p.y = fs.bounds.Y
		changed = true
	}
	if p.width != fs.bounds.Width || p.height != fs.bounds.Height {
		p.width = fs.bounds.Width
		p.height = fs.bounds.Height
		changed = true
	}
	if p.texture != fs.outTex {
		p.texture = fs.outTex
		changed = true
	}
	// The subtree renders at full opacity; the node's own alpha lands on
	// the proxy quad.
	if p.alpha != fs.node.alpha {
		p.alpha = fs.node.alpha
		changed = true
	}
	return changed
}

// release tears down the filter state when the node loses its filters or is
// destroyed.
func (fs *filterState) release() {
	if fs.output != nil {
		fs.rend.dev.ReleaseTarget(fs.output)
		fs.output = nil
	}
	fs.group.release()
	if fs.node.proxy == fs.proxy {
		fs.node.proxy = nil
	}
	fs.outTex = nil
}
