package rowan

import (
	"math"
	"testing"
)

func TestShapeRect(t *testing.T) {
	n, err := NewShapeRect("box", 40, 30)
	assertNoError(t, err)
	if n.Kind != KindShape || n.Shape().Kind() != ShapeRect {
		t.Error("wrong kind")
	}
	if n.Width() != 40 || n.Height() != 30 {
		t.Errorf("size = (%v, %v)", n.Width(), n.Height())
	}
	c, i := n.renderObject.counts()
	if c != 4 || i != 6 {
		t.Errorf("counts = (%d, %d), want (4, 6)", c, i)
	}
}

func TestShapeRectValidation(t *testing.T) {
	for _, wh := range [][2]float64{{0, 10}, {10, 0}, {-5, 5}, {math.Inf(1), 5}, {math.NaN(), 5}} {
		if _, err := NewShapeRect("bad", wh[0], wh[1]); err == nil {
			t.Errorf("size %v should fail", wh)
		}
	}
}

func TestShapeCircle(t *testing.T) {
	n, err := NewShapeCircle("dot", 10, 12)
	assertNoError(t, err)
	c, i := n.renderObject.counts()
	if c != 13 || i != 36 {
		t.Errorf("counts = (%d, %d), want center+12 corners, 12 triangles", c, i)
	}
	if n.Width() != 20 || n.Height() != 20 {
		t.Errorf("bounds = (%v, %v), want the diameter", n.Width(), n.Height())
	}

	if _, err := NewShapeCircle("bad", -1, 12); err == nil {
		t.Error("negative radius should fail")
	}
	if _, err := NewShapeCircle("bad", 5, 2); err == nil {
		t.Error("2 segments should fail")
	}
}

func TestShapePolygon(t *testing.T) {
	pts := []Vec2{{0, 0}, {20, 0}, {20, 10}, {0, 10}}
	n, err := NewShapePolygon("quad", pts)
	assertNoError(t, err)
	c, i := n.renderObject.counts()
	if c != 4 || i != 6 {
		t.Errorf("counts = (%d, %d), want fan of 2 triangles", c, i)
	}
	if n.Width() != 20 || n.Height() != 10 {
		t.Errorf("bounds = (%v, %v)", n.Width(), n.Height())
	}

	if _, err := NewShapePolygon("bad", pts[:2]); err == nil {
		t.Error("2 points should fail")
	}
	if _, err := NewShapePolygon("bad", []Vec2{{0, 0}, {1, 0}, {math.NaN(), 1}}); err == nil {
		t.Error("NaN point should fail")
	}
}

func TestShapeLine(t *testing.T) {
	pts := []Vec2{{0, 5}, {10, 5}, {20, 5}}
	n, err := NewShapeLine("path", pts, 2)
	assertNoError(t, err)
	c, i := n.renderObject.counts()
	if c != 6 || i != 12 {
		t.Errorf("counts = (%d, %d), want 2 corners per point, 2 quads", c, i)
	}

	// A horizontal segment extrudes straight up and down.
	s := n.Shape()
	if s.verts[1] != 6 || s.verts[3] != 4 {
		t.Errorf("first point ribbon y = (%v, %v), want (6, 4)", s.verts[1], s.verts[3])
	}

	if _, err := NewShapeLine("bad", pts, 0); err == nil {
		t.Error("zero width should fail")
	}
	if _, err := NewShapeLine("bad", pts[:1], 2); err == nil {
		t.Error("single point should fail")
	}
}

func TestSetPointsSameCountStaysIncremental(t *testing.T) {
	r, _, root := newTestScene(t)
	n, err := NewShapePolygon("poly", []Vec2{{0, 0}, {10, 0}, {10, 10}})
	assertNoError(t, err)
	root.AddChild(n)
	collect(t, r.Group())

	assertNoError(t, n.Shape().SetPoints([]Vec2{{0, 0}, {20, 0}, {20, 20}}))
	r.stats = FrameStats{}
	collect(t, r.Group())
	if r.Stats().Collects != 0 || r.Stats().Updates != 1 {
		t.Errorf("same corner count took collects=%d updates=%d", r.Stats().Collects, r.Stats().Updates)
	}
	if got := r.Group().positions.Data[2]; got != 20 {
		t.Errorf("corner x = %v, want 20", got)
	}
}

func TestSetPointsChangedCountIsStructural(t *testing.T) {
	r, _, root := newTestScene(t)
	n, err := NewShapePolygon("poly", []Vec2{{0, 0}, {10, 0}, {10, 10}})
	assertNoError(t, err)
	root.AddChild(n)
	collect(t, r.Group())

	assertNoError(t, n.Shape().SetPoints([]Vec2{{0, 0}, {10, 0}, {10, 10}, {0, 10}}))
	r.stats = FrameStats{}
	collect(t, r.Group())
	if r.Stats().Collects != 1 {
		t.Errorf("corner-count change should force a full collect, got %d", r.Stats().Collects)
	}
	if r.Group().cornerCount != 4 {
		t.Errorf("corners = %d, want 4", r.Group().cornerCount)
	}
}

func TestSetPointsOnFixedGeometry(t *testing.T) {
	n, err := NewShapeRect("box", 10, 10)
	assertNoError(t, err)
	if err := n.Shape().SetPoints([]Vec2{{0, 0}, {1, 0}, {1, 1}}); err == nil {
		t.Error("SetPoints on a rect should fail")
	}
}

func TestShapesBatchWithSprites(t *testing.T) {
	r, _, root := newTestScene(t)
	root.AddChild(NewSprite("spr", solidTexture(8, 8)))
	box, err := NewShapeRect("box", 10, 10)
	assertNoError(t, err)
	box.SetTint(Color{1, 0, 0, 1})
	root.AddChild(box)
	collect(t, r.Group())

	// The shape samples the shared white texture: still one batch, two slots.
	g := r.Group()
	if len(g.Batches()) != 1 {
		t.Fatalf("batches = %d, want 1", len(g.Batches()))
	}
	b := r.arena.get(g.Batches()[0])
	if b.Textures().Len() != 2 {
		t.Errorf("slots = %d, want sprite texture + white", b.Textures().Len())
	}
	// Shape corners sample the white center and take the tint.
	if g.uvs.Data[4*3] != 0.5 || g.uvs.Data[4*3+1] != 0.5 {
		t.Errorf("shape uv = (%v, %v), want (0.5, 0.5)", g.uvs.Data[4*3], g.uvs.Data[4*3+1])
	}
	if g.colors.Data[4] != 0xFF0000FF {
		t.Errorf("shape color = %08x, want packed red", g.colors.Data[4])
	}
}

func TestNewShapeEllipse(t *testing.T) {
	n, err := NewShapeEllipse("egg", 20, 10, 16)
	assertNoError(t, err)
	if n.Shape().Kind() != ShapeEllipse {
		t.Error("wrong shape kind")
	}
	c, i := n.renderObject.counts()
	if c != 17 || i != 48 {
		t.Errorf("counts = (%d, %d), want center + 16 rim corners", c, i)
	}
	if n.Width() != 40 || n.Height() != 20 {
		t.Errorf("bounds = %vx%v, want the radii doubled", n.Width(), n.Height())
	}
	// Center vertex sits at the radii, rim vertex 0 on the right edge.
	s := n.Shape()
	if s.verts[0] != 20 || s.verts[1] != 10 {
		t.Errorf("center = (%v, %v), want (20, 10)", s.verts[0], s.verts[1])
	}
	if s.verts[2] != 40 || s.verts[3] != 10 {
		t.Errorf("rim 0 = (%v, %v), want (40, 10)", s.verts[2], s.verts[3])
	}

	if _, err := NewShapeEllipse("bad", 0, 10, 16); err == nil {
		t.Error("zero radius should fail")
	}
	if _, err := NewShapeEllipse("bad", 20, 10, 2); err == nil {
		t.Error("too few segments should fail")
	}
}

func TestNewShapeRoundedRect(t *testing.T) {
	n, err := NewShapeRoundedRect("panel", 40, 20, 5, 4)
	assertNoError(t, err)
	if n.Shape().Kind() != ShapeRoundedRect {
		t.Error("wrong shape kind")
	}
	// Center plus four arcs of 5 points each.
	c, i := n.renderObject.counts()
	if c != 21 || i != 60 {
		t.Errorf("counts = (%d, %d), want 21 corners and 60 indices", c, i)
	}
	if n.Width() != 40 || n.Height() != 20 {
		t.Errorf("bounds = %vx%v, want 40x20", n.Width(), n.Height())
	}
	// Every rim vertex stays inside the rect.
	s := n.Shape()
	for p := 2; p < len(s.verts); p += 2 {
		x, y := s.verts[p], s.verts[p+1]
		if x < -0.001 || x > 40.001 || y < -0.001 || y > 20.001 {
			t.Fatalf("rim vertex (%v, %v) outside the 40x20 bounds", x, y)
		}
	}
	// The first arc starts on the top edge and ends on the right edge.
	if !closeTo(float64(s.verts[2]), 35) || !closeTo(float64(s.verts[3]), 0) {
		t.Errorf("arc start = (%v, %v), want (35, 0)", s.verts[2], s.verts[3])
	}
	if !closeTo(float64(s.verts[10]), 40) || !closeTo(float64(s.verts[11]), 5) {
		t.Errorf("arc end = (%v, %v), want (40, 5)", s.verts[10], s.verts[11])
	}

	if _, err := NewShapeRoundedRect("bad", 40, 20, 15, 4); err == nil {
		t.Error("radius larger than half the short side should fail")
	}
	if _, err := NewShapeRoundedRect("bad", 40, 20, 0, 4); err == nil {
		t.Error("zero radius should fail")
	}
	if _, err := NewShapeRoundedRect("bad", 0, 20, 5, 4); err == nil {
		t.Error("zero width should fail")
	}
	if _, err := NewShapeRoundedRect("bad", 40, 20, 5, 0); err == nil {
		t.Error("zero segments should fail")
	}
}
