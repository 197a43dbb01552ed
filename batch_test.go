package rowan

import "testing"

func TestArenaAllocGetRelease(t *testing.T) {
	a := newBatchArena()
	g := &BatchGroup{}

	h := a.alloc(g)
	b := a.get(h)
	if b == nil {
		t.Fatal("fresh handle should resolve")
	}
	if b.Group() != g {
		t.Error("batch not owned by the allocating group")
	}
	if a.live() != 1 {
		t.Errorf("live = %d, want 1", a.live())
	}

	a.release(h)
	if a.get(h) != nil {
		t.Error("released handle must not resolve")
	}
	if a.live() != 0 {
		t.Errorf("live = %d, want 0", a.live())
	}
}

func TestArenaRecyclesWithNewGeneration(t *testing.T) {
	a := newBatchArena()
	g := &BatchGroup{}

	h1 := a.alloc(g)
	a.release(h1)
	h2 := a.alloc(g)
	if h2.index != h1.index {
		t.Fatalf("expected slot reuse, got %d then %d", h1.index, h2.index)
	}
	if h2.gen == h1.gen {
		t.Error("recycled slot must carry a new generation")
	}
	if a.get(h1) != nil {
		t.Error("stale handle resolves to the recycled batch")
	}
	if a.get(h2) == nil {
		t.Error("current handle should resolve")
	}
}

func TestNoBatchNeverResolves(t *testing.T) {
	a := newBatchArena()
	a.alloc(&BatchGroup{})
	if a.get(NoBatch) != nil {
		t.Error("the zero handle must never resolve")
	}
	// Releasing stale or zero handles is harmless.
	a.release(NoBatch)
	a.release(BatchHandle{index: 99, gen: 7})
}

func TestTextureGroupDedupe(t *testing.T) {
	var g TextureGroup
	a := &TextureBuffer{Handle: 1}
	b := &TextureBuffer{Handle: 2}

	if got := g.Add(a); got != 0 {
		t.Errorf("first add = %d, want slot 0", got)
	}
	if got := g.Add(b); got != 1 {
		t.Errorf("second add = %d, want slot 1", got)
	}
	if got := g.Add(a); got != 0 {
		t.Errorf("repeat add = %d, want the existing slot 0", got)
	}
	if g.Len() != 2 {
		t.Errorf("len = %d, want 2", g.Len())
	}
}

func TestTextureGroupOverflow(t *testing.T) {
	var g TextureGroup
	bufs := make([]*TextureBuffer, MaxTextureSlots)
	for i := range bufs {
		bufs[i] = &TextureBuffer{Handle: TextureHandle(i + 1)}
		if got := g.Add(bufs[i]); got != i {
			t.Fatalf("add %d = slot %d", i, got)
		}
	}
	if got := g.Add(&TextureBuffer{Handle: 99}); got != -1 {
		t.Errorf("overflow add = %d, want -1", got)
	}
	// Already-bound buffers still resolve at capacity.
	if got := g.Add(bufs[3]); got != 3 {
		t.Errorf("bound lookup at capacity = %d, want 3", got)
	}

	g.reset()
	if g.Len() != 0 {
		t.Errorf("len after reset = %d", g.Len())
	}
	if got := g.Add(bufs[5]); got != 0 {
		t.Errorf("add after reset = %d, want 0", got)
	}
}
