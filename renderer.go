package rowan

import (
	"image"
	"image/color"
	"time"
)

// Renderer drives the frame pipeline: deferred work, collection, and draw
// submission. It owns the batch arena, the stage's root group, and the side
// tables for cached and filtered branches.
//
// Like the rest of the package, Renderer is single-threaded. All calls must
// come from the same goroutine that mutates the tree.
type Renderer struct {
	dev   Device
	arena *batchArena

	root  *Node
	group *BatchGroup

	// Side tables keyed by node ID. Entries are pruned once the node is
	// destroyed or the boundary is removed.
	groups  map[uint32]*BatchGroup
	filters map[uint32]*filterState

	view Matrix

	// whiteTex is a shared 1x1 white texture sampled by untextured
	// geometry so it batches with sprites.
	whiteTex *Texture

	deferred []func()

	stats FrameStats
	debug bool
}

// NewRenderer creates a renderer over the given device.
func NewRenderer(dev Device) (*Renderer, error) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.SetRGBA(0, 0, color.RGBA{255, 255, 255, 255})
	white, err := NewTexture(dev, img)
	if err != nil {
		return nil, err
	}
	return &Renderer{
		dev:      dev,
		arena:    newBatchArena(),
		groups:   make(map[uint32]*BatchGroup),
		filters:  make(map[uint32]*filterState),
		view:     MatrixIdentity,
		whiteTex: white,
	}, nil
}

// Device returns the underlying device.
func (r *Renderer) Device() Device { return r.dev }

// SetRoot installs the stage root. The previous root's group is released.
func (r *Renderer) SetRoot(n *Node) {
	if r.group != nil {
		r.group.release()
		r.group = nil
	}
	r.root = n
	if n != nil {
		r.group = NewBatchGroup(r, n)
	}
}

// Root returns the stage root node.
func (r *Renderer) Root() *Node { return r.root }

// Group returns the stage's batch group, or nil before SetRoot.
func (r *Renderer) Group() *BatchGroup { return r.group }

// SetView sets the view matrix composed above the stage root. Changing it
// invalidates every world transform in the tree.
func (r *Renderer) SetView(m Matrix) {
	if r.view == m {
		return
	}
	r.view = m
	if r.root != nil {
		markSubtreeDirty(r.root, DirtyTransform)
	}
}

// View returns the current view matrix.
func (r *Renderer) View() Matrix { return r.view }

// SetDebug enables per-frame stats logging to stderr and extra structural
// checks in tree operations.
func (r *Renderer) SetDebug(v bool) {
	r.debug = v
	debugChecks = v
}

// Stats returns the counters from the last Render call.
func (r *Renderer) Stats() FrameStats { return r.stats }

// Defer queues fn to run at the start of the next Render, before collection.
// This is the safe place for tree mutations triggered from draw-adjacent
// callbacks (asset loads, destroy requests).
func (r *Renderer) Defer(fn func()) {
	r.deferred = append(r.deferred, fn)
}

// Render runs one frame into target: deferred work, collection, then draw
// submission in tree order.
func (r *Renderer) Render(target *RenderTarget) error {
	r.runDeferred()
	r.stats = FrameStats{}
	if r.group == nil {
		return nil
	}

	var start time.Time
	if r.debug {
		start = time.Now()
	}
	if err := r.group.Collect(); err != nil {
		return err
	}
	if r.debug {
		r.stats.CollectTime = time.Since(start)
		start = time.Now()
	}
	if err := r.group.draw(target); err != nil {
		return err
	}
	if r.debug {
		r.stats.DrawTime = time.Since(start)
	}

	r.prune()
	r.debugLog()
	return nil
}

// runDeferred executes this frame's queue. Work deferred from inside a
// callback lands in next frame's queue.
func (r *Renderer) runDeferred() {
	if len(r.deferred) == 0 {
		return
	}
	pending := r.deferred
	r.deferred = nil
	for _, fn := range pending {
		fn()
	}
}

// groupFor returns the persistent group for a cached node, creating it on
// first use.
func (r *Renderer) groupFor(n *Node) *BatchGroup {
	if g, ok := r.groups[n.ID]; ok {
		return g
	}
	g := NewBatchGroup(r, n)
	r.groups[n.ID] = g
	return g
}

// filterStateFor returns the filter state for a filtered node, creating it
// on first use.
func (r *Renderer) filterStateFor(n *Node) *filterState {
	if fs, ok := r.filters[n.ID]; ok {
		return fs
	}
	fs := newFilterState(r, n)
	r.filters[n.ID] = fs
	return fs
}

// prune releases side-table entries whose boundary is gone. Runs at frame
// end so removal in the middle of a pass is never observed.
func (r *Renderer) prune() {
	for id, g := range r.groups {
		if n := g.root; n.destroyed || !n.cached {
			g.release()
			delete(r.groups, id)
		}
	}
	for id, fs := range r.filters {
		if n := fs.node; n.destroyed || len(n.filters) == 0 {
			fs.release()
			delete(r.filters, id)
		}
	}
}
