package rowan

import "testing"

func TestNewTextRasterizes(t *testing.T) {
	dev := newMockDevice()
	n, err := NewText("label", dev, nil, "hello")
	assertNoError(t, err)
	if n.Kind != KindText {
		t.Error("wrong kind")
	}
	if n.Texture() == nil {
		t.Fatal("text should carry a rasterized texture")
	}
	w, h := n.Text().Measure()
	// The fallback face is fixed-width at 7px per glyph.
	if w != 35 {
		t.Errorf("width = %v, want 35 for five glyphs", w)
	}
	if h <= 0 {
		t.Errorf("height = %v, want positive", h)
	}
	if n.Width() != w || n.Height() != h {
		t.Errorf("node size (%v, %v) should match measurement (%v, %v)", n.Width(), n.Height(), w, h)
	}
	if dev.textureCreates != 1 {
		t.Errorf("texture creates = %d, want 1", dev.textureCreates)
	}
}

func TestSetContentSwapsTexture(t *testing.T) {
	dev := newMockDevice()
	n, err := NewText("label", dev, nil, "hi")
	assertNoError(t, err)
	old := n.Texture()

	assertNoError(t, n.Text().SetContent("longer line"))
	if n.Texture() == old {
		t.Error("content change should swap the texture")
	}
	if dev.textureDestroys != 1 {
		t.Errorf("destroys = %d, want the old texture released", dev.textureDestroys)
	}

	// Writing the same content back does nothing.
	creates := dev.textureCreates
	assertNoError(t, n.Text().SetContent("longer line"))
	if dev.textureCreates != creates {
		t.Error("no-op content write re-rasterized")
	}
}

func TestEmptyTextPacksNothing(t *testing.T) {
	dev := newMockDevice()
	n, err := NewText("label", dev, nil, "")
	assertNoError(t, err)
	if n.Texture() != nil {
		t.Error("empty text should carry no texture")
	}
	c, i := n.renderObject.counts()
	if c != 0 || i != 0 {
		t.Errorf("counts = (%d, %d), want nothing to pack", c, i)
	}

	assertNoError(t, n.Text().SetContent("back"))
	if n.Texture() == nil {
		t.Error("content should restore the texture")
	}
}

func TestTextNewlinesStackLines(t *testing.T) {
	dev := newMockDevice()
	one, err := NewText("one", dev, nil, "aa")
	assertNoError(t, err)
	two, err := NewText("two", dev, nil, "aa\nbb")
	assertNoError(t, err)

	_, h1 := one.Text().Measure()
	_, h2 := two.Text().Measure()
	if h2 != 2*h1 {
		t.Errorf("two lines = %v, want double the single-line height %v", h2, h1)
	}
}

func TestTextWordWrap(t *testing.T) {
	dev := newMockDevice()
	n, err := NewText("wrap", dev, nil, "aa bb cc")
	assertNoError(t, err)
	_, h1 := n.Text().Measure()

	// 40px fits two 14px words plus a space but not three.
	assertNoError(t, n.Text().SetWrapWidth(40))
	w, h2 := n.Text().Measure()
	if h2 != 2*h1 {
		t.Errorf("wrapped height = %v, want two lines (%v)", h2, 2*h1)
	}
	if w > 40 {
		t.Errorf("wrapped width = %v, want within the wrap width", w)
	}
}

func TestTextLongWordGetsOwnLine(t *testing.T) {
	dev := newMockDevice()
	n, err := NewText("wrap", dev, nil, "a extraordinarily b")
	assertNoError(t, err)
	assertNoError(t, n.Text().SetWrapWidth(30))
	// No mid-word breaking: the long word overflows on its own line.
	w, _ := n.Text().Measure()
	if w <= 30 {
		t.Errorf("width = %v, want the unbroken word to overflow", w)
	}
}

func TestTextRecolorIsCheap(t *testing.T) {
	r, dev, root := newTestScene(t)
	n, err := NewText("label", dev, nil, "hi")
	assertNoError(t, err)
	root.AddChild(n)
	collect(t, r.Group())

	// Tinting never re-rasterizes; the glyphs are white and tint rides the
	// color stream.
	creates := dev.textureCreates
	n.SetTint(Color{0, 1, 0, 1})
	r.stats = FrameStats{}
	collect(t, r.Group())
	if dev.textureCreates != creates {
		t.Error("recolor re-rasterized the text")
	}
	if r.Stats().Collects != 0 || r.Stats().Updates != 1 {
		t.Errorf("recolor took collects=%d updates=%d", r.Stats().Collects, r.Stats().Updates)
	}
}
