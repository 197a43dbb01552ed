package rowan

// BatchHandle is a generation-checked reference into the batch arena. The
// zero value (NoBatch) never resolves: arena generations start at 1, so a
// stale or unset handle simply looks up to nil.
type BatchHandle struct {
	index int
	gen   uint32
}

// NoBatch is the null batch handle.
var NoBatch = BatchHandle{}

// Batch is one draw call's worth of geometry: a contiguous index range inside
// its group's shared buffers plus the texture slots those indices sample.
// Batches do not own vertex data; they only delimit it.
type Batch struct {
	handle BatchHandle
	group  *BatchGroup

	textures TextureGroup

	startCorner int
	cornerCount int
	startIndex  int
	indexCount  int
}

// Textures returns the batch's bound texture group.
func (b *Batch) Textures() *TextureGroup { return &b.textures }

// IndexRange returns the batch's element range in the group index buffer.
func (b *Batch) IndexRange() (start, count int) {
	return b.startIndex, b.indexCount
}

// CornerRange returns the batch's corner range in the group vertex buffers.
func (b *Batch) CornerRange() (start, count int) {
	return b.startCorner, b.cornerCount
}

// Handle returns the batch's arena handle.
func (b *Batch) Handle() BatchHandle { return b.handle }

// Group returns the owning batch group.
func (b *Batch) Group() *BatchGroup { return b.group }

// reset clears per-collection state while keeping the allocation.
func (b *Batch) reset(g *BatchGroup) {
	b.group = g
	b.textures.reset()
	b.startCorner = 0
	b.cornerCount = 0
	b.startIndex = 0
	b.indexCount = 0
}

// batchArena is a free-list allocator for batches. Handles carry a
// generation so references held across a release never resolve to a
// recycled batch.
type batchArena struct {
	batches []Batch
	gens    []uint32
	free    []int
}

func newBatchArena() *batchArena {
	return &batchArena{}
}

// alloc returns a fresh batch owned by g, reusing a released slot if any.
func (a *batchArena) alloc(g *BatchGroup) BatchHandle {
	var idx int
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		a.batches = append(a.batches, Batch{})
		a.gens = append(a.gens, 1)
		idx = len(a.batches) - 1
	}
	h := BatchHandle{index: idx, gen: a.gens[idx]}
	b := &a.batches[idx]
	b.reset(g)
	b.handle = h
	return h
}

// get resolves a handle, returning nil for NoBatch or stale handles.
func (a *batchArena) get(h BatchHandle) *Batch {
	if h.gen == 0 || h.index >= len(a.batches) || a.gens[h.index] != h.gen {
		return nil
	}
	return &a.batches[h.index]
}

// release returns the batch to the free list and bumps its generation.
// Releasing a stale handle is a no-op.
func (a *batchArena) release(h BatchHandle) {
	b := a.get(h)
	if b == nil {
		return
	}
	a.gens[h.index]++
	b.group = nil
	b.textures.reset()
	a.free = append(a.free, h.index)
}

// live returns the number of allocated, unreleased batches.
func (a *batchArena) live() int {
	return len(a.batches) - len(a.free)
}
