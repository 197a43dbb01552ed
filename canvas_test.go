package rowan

import "testing"

func TestNewCanvas(t *testing.T) {
	dev := newMockDevice()
	n, err := NewCanvas("surf", dev, 64, 32)
	assertNoError(t, err)
	if n.Kind != KindCanvas {
		t.Error("wrong kind")
	}
	c := n.Canvas()
	if c.Width() != 64 || c.Height() != 32 {
		t.Errorf("size = %dx%d", c.Width(), c.Height())
	}
	if n.Width() != 64 || n.Height() != 32 {
		t.Errorf("node size = (%v, %v)", n.Width(), n.Height())
	}

	if _, err := NewCanvas("bad", dev, 0, 10); err == nil {
		t.Error("zero width should fail")
	}
}

func TestCanvasFillAndRect(t *testing.T) {
	dev := newMockDevice()
	n, err := NewCanvas("surf", dev, 8, 8)
	assertNoError(t, err)
	c := n.Canvas()

	c.Fill(Color{1, 0, 0, 1})
	r, _, _, a := c.Image().At(4, 4).RGBA()
	if r == 0 || a == 0 {
		t.Error("fill left the surface blank")
	}

	c.Clear()
	if _, _, _, a := c.Image().At(4, 4).RGBA(); a != 0 {
		t.Error("clear should make the surface transparent")
	}

	c.FillRect(Rect{X: 2, Y: 2, Width: 2, Height: 2}, Color{0, 1, 0, 1})
	if _, g, _, _ := c.Image().At(3, 3).RGBA(); g == 0 {
		t.Error("rect interior not filled")
	}
	if _, _, _, a := c.Image().At(6, 6).RGBA(); a != 0 {
		t.Error("rect fill leaked outside its bounds")
	}

	// Rects hanging off the edge clip instead of panicking.
	c.FillRect(Rect{X: 6, Y: 6, Width: 10, Height: 10}, Color{0, 0, 1, 1})
}

func TestCanvasFlushUploadsAndInvalidates(t *testing.T) {
	r, dev, root := newTestScene(t)
	n, err := NewCanvas("surf", dev, 8, 8)
	assertNoError(t, err)
	root.AddChild(n)
	collect(t, r.Group())

	n.Canvas().Fill(Color{1, 1, 1, 1})
	assertNoError(t, n.Canvas().Flush())
	if dev.textureUpdates != 1 {
		t.Errorf("texture updates = %d, want 1", dev.textureUpdates)
	}
	if !n.Dirty().Has(DirtyTexture) || !root.Dirty().Has(DirtyTexture) {
		t.Error("flush should invalidate the texture stream up the tree")
	}
}

func TestCanvasResize(t *testing.T) {
	dev := newMockDevice()
	n, err := NewCanvas("surf", dev, 8, 8)
	assertNoError(t, err)
	oldHandle := n.Texture().Buffer.Handle

	assertNoError(t, n.Canvas().Resize(32, 16))
	if n.Canvas().Width() != 32 || n.Canvas().Height() != 16 {
		t.Error("size not updated")
	}
	if n.Width() != 32 || n.Height() != 16 {
		t.Error("node size not updated")
	}
	if n.Texture().Buffer.Handle == oldHandle {
		t.Error("resize should allocate a new device texture")
	}
	if dev.textureDestroys != 1 {
		t.Errorf("destroys = %d, want the old texture released", dev.textureDestroys)
	}

	if err := n.Canvas().Resize(0, 5); err == nil {
		t.Error("invalid resize should fail")
	}
}

func TestCanvasRelease(t *testing.T) {
	dev := newMockDevice()
	n, err := NewCanvas("surf", dev, 8, 8)
	assertNoError(t, err)
	n.Canvas().Release()
	if n.Texture() != nil {
		t.Error("release should drop the texture")
	}
	if err := n.Canvas().Flush(); err == nil {
		t.Error("flush after release should fail")
	}
}
