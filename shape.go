package rowan

import (
	"fmt"
	"math"
)

// ShapeKind identifies the geometry generator behind a shape node.
type ShapeKind uint8

const (
	ShapeRect ShapeKind = iota
	ShapeCircle
	ShapeEllipse
	ShapeRoundedRect
	ShapePolygon
	ShapeLine
)

// Shape holds pre-tessellated local-space geometry for a KindShape node.
// Tessellation happens once at construction (or SetPoints); the packing pass
// only transforms and copies. Shapes sample the shared white texture, so
// they batch freely with sprites and take their color from the node's tint.
type Shape struct {
	node  *Node
	kind  ShapeKind
	width float64 // ribbon width for ShapeLine

	verts []float32 // local x, y pairs
	inds  []uint32  // indices relative to the shape's first corner

	natW, natH float64 // natural bounds; SetSize stretches relative to these
}

// Kind returns the shape's geometry kind.
func (s *Shape) Kind() ShapeKind { return s.kind }

func newShapeNode(name string) *Node {
	n := &Node{Name: name, Kind: KindShape}
	nodeDefaults(n)
	n.shape = &Shape{node: n}
	n.renderObject = newRenderObject(n, shapePacker{})
	return n
}

// NewShapeRect creates a solid rectangle node. Width and height must be
// positive and finite.
func NewShapeRect(name string, w, h float64) (*Node, error) {
	if !(w > 0) || !(h > 0) || math.IsInf(w, 0) || math.IsInf(h, 0) {
		return nil, fmt.Errorf("rowan: shape %q: invalid rect size %gx%g", name, w, h)
	}
	n := newShapeNode(name)
	s := n.shape
	s.kind = ShapeRect
	s.verts = []float32{0, 0, float32(w), 0, 0, float32(h), float32(w), float32(h)}
	s.inds = []uint32{0, 1, 2, 1, 3, 2}
	s.setNatural(w, h)
	return n, nil
}

// NewShapeCircle creates a solid circle node tessellated as a fan around the
// center. The node's origin is the circle's top-left bounding corner.
// Requires a positive radius and at least 3 segments.
func NewShapeCircle(name string, radius float64, segments int) (*Node, error) {
	if !(radius > 0) || math.IsInf(radius, 0) {
		return nil, fmt.Errorf("rowan: shape %q: invalid radius %g", name, radius)
	}
	if segments < 3 {
		return nil, fmt.Errorf("rowan: shape %q: need at least 3 segments, got %d", name, segments)
	}
	n := newShapeNode(name)
	s := n.shape
	s.kind = ShapeCircle
	s.verts = make([]float32, (segments+1)*2)
	s.inds = make([]uint32, segments*3)
	s.verts[0] = float32(radius)
	s.verts[1] = float32(radius)
	for i := 0; i < segments; i++ {
		a := 2 * math.Pi * float64(i) / float64(segments)
		s.verts[(i+1)*2] = float32(radius + radius*math.Cos(a))
		s.verts[(i+1)*2+1] = float32(radius + radius*math.Sin(a))
		next := uint32(i+1)%uint32(segments) + 1
		s.inds[i*3] = 0
		s.inds[i*3+1] = uint32(i + 1)
		s.inds[i*3+2] = next
	}
	s.setNatural(radius*2, radius*2)
	return n, nil
}

// NewShapeEllipse creates a solid ellipse node tessellated as a fan around
// the center. The node's origin is the ellipse's top-left bounding corner.
// Requires positive radii and at least 3 segments.
func NewShapeEllipse(name string, rx, ry float64, segments int) (*Node, error) {
	if !(rx > 0) || !(ry > 0) || math.IsInf(rx, 0) || math.IsInf(ry, 0) {
		return nil, fmt.Errorf("rowan: shape %q: invalid radii %gx%g", name, rx, ry)
	}
	if segments < 3 {
		return nil, fmt.Errorf("rowan: shape %q: need at least 3 segments, got %d", name, segments)
	}
	n := newShapeNode(name)
	s := n.shape
	s.kind = ShapeEllipse
	s.verts = make([]float32, (segments+1)*2)
	s.inds = make([]uint32, segments*3)
	s.verts[0] = float32(rx)
	s.verts[1] = float32(ry)
	for i := 0; i < segments; i++ {
		a := 2 * math.Pi * float64(i) / float64(segments)
		s.verts[(i+1)*2] = float32(rx + rx*math.Cos(a))
		s.verts[(i+1)*2+1] = float32(ry + ry*math.Sin(a))
		next := uint32(i+1)%uint32(segments) + 1
		s.inds[i*3] = 0
		s.inds[i*3+1] = uint32(i + 1)
		s.inds[i*3+2] = next
	}
	s.setNatural(rx*2, ry*2)
	return n, nil
}

// NewShapeRoundedRect creates a solid rectangle with quarter-circle corners,
// fanned from the center. The radius must fit both dimensions; segments is
// the arc resolution per corner.
func NewShapeRoundedRect(name string, w, h, radius float64, segments int) (*Node, error) {
	if !(w > 0) || !(h > 0) || math.IsInf(w, 0) || math.IsInf(h, 0) {
		return nil, fmt.Errorf("rowan: shape %q: invalid rect size %gx%g", name, w, h)
	}
	if !(radius > 0) || radius > math.Min(w, h)/2 {
		return nil, fmt.Errorf("rowan: shape %q: corner radius %g does not fit %gx%g", name, radius, w, h)
	}
	if segments < 1 {
		return nil, fmt.Errorf("rowan: shape %q: need at least 1 corner segment, got %d", name, segments)
	}
	n := newShapeNode(name)
	s := n.shape
	s.kind = ShapeRoundedRect

	// Perimeter runs clockwise: four arcs of segments+1 points, starting at
	// the top edge of the top-right corner.
	per := 4 * (segments + 1)
	s.verts = make([]float32, (per+1)*2)
	s.inds = make([]uint32, per*3)
	s.verts[0] = float32(w / 2)
	s.verts[1] = float32(h / 2)
	centers := [4][2]float64{
		{w - radius, radius},
		{w - radius, h - radius},
		{radius, h - radius},
		{radius, radius},
	}
	p := 1
	for c := 0; c < 4; c++ {
		start := -math.Pi/2 + float64(c)*math.Pi/2
		for i := 0; i <= segments; i++ {
			a := start + math.Pi/2*float64(i)/float64(segments)
			s.verts[p*2] = float32(centers[c][0] + radius*math.Cos(a))
			s.verts[p*2+1] = float32(centers[c][1] + radius*math.Sin(a))
			p++
		}
	}
	for i := 0; i < per; i++ {
		next := uint32(i+1)%uint32(per) + 1
		s.inds[i*3] = 0
		s.inds[i*3+1] = uint32(i + 1)
		s.inds[i*3+2] = next
	}
	s.setNatural(w, h)
	return n, nil
}

// NewShapePolygon creates a solid polygon node from at least 3 points, fan
// triangulated from the first point. Concave outlines render incorrectly;
// this matches the convex-only contract of the tessellator.
func NewShapePolygon(name string, points []Vec2) (*Node, error) {
	if err := validatePoints(name, points, 3); err != nil {
		return nil, err
	}
	n := newShapeNode(name)
	n.shape.kind = ShapePolygon
	n.shape.buildPolygon(points)
	n.width = n.shape.natW
	n.height = n.shape.natH
	return n, nil
}

// NewShapeLine creates a ribbon of the given width along a polyline of at
// least 2 points. Interior joints use averaged miter normals.
func NewShapeLine(name string, points []Vec2, width float64) (*Node, error) {
	if err := validatePoints(name, points, 2); err != nil {
		return nil, err
	}
	if !(width > 0) || math.IsInf(width, 0) {
		return nil, fmt.Errorf("rowan: shape %q: invalid line width %g", name, width)
	}
	n := newShapeNode(name)
	n.shape.kind = ShapeLine
	n.shape.width = width
	n.shape.buildLine(points)
	n.width = n.shape.natW
	n.height = n.shape.natH
	return n, nil
}

// SetPoints replaces the outline of a polygon or line shape. If the corner
// count is unchanged the geometry is patched in place; otherwise the change
// is structural and the owning group re-collects.
func (s *Shape) SetPoints(points []Vec2) error {
	n := s.node
	switch s.kind {
	case ShapePolygon:
		if err := validatePoints(n.Name, points, 3); err != nil {
			return err
		}
		before := len(s.verts)
		s.buildPolygon(points)
		s.markRebuilt(before)
	case ShapeLine:
		if err := validatePoints(n.Name, points, 2); err != nil {
			return err
		}
		before := len(s.verts)
		s.buildLine(points)
		s.markRebuilt(before)
	default:
		return fmt.Errorf("rowan: shape %q: SetPoints on fixed geometry", n.Name)
	}
	return nil
}

func (s *Shape) markRebuilt(prevVertLen int) {
	n := s.node
	n.width = s.natW
	n.height = s.natH
	if len(s.verts) == prevVertLen {
		n.dirty |= DirtySize
		n.bubble(DirtySize)
		return
	}
	n.dirty |= dirtyAll
	n.markStructuralOnParent()
}

func (s *Shape) buildPolygon(points []Vec2) {
	np := len(points)
	s.verts = resizeFloat32(s.verts, np*2)
	s.inds = resizeUint32(s.inds, (np-2)*3)
	for i, p := range points {
		s.verts[i*2] = float32(p.X)
		s.verts[i*2+1] = float32(p.Y)
	}
	for i := 0; i < np-2; i++ {
		s.inds[i*3] = 0
		s.inds[i*3+1] = uint32(i + 1)
		s.inds[i*3+2] = uint32(i + 2)
	}
	s.measure()
}

// buildLine extrudes the polyline into a two-vertex-per-point ribbon,
// averaging adjacent segment normals at interior joints.
func (s *Shape) buildLine(points []Vec2) {
	np := len(points)
	s.verts = resizeFloat32(s.verts, np*4)
	s.inds = resizeUint32(s.inds, (np-1)*6)
	half := s.width / 2

	for i := 0; i < np; i++ {
		var nx, ny float64
		switch {
		case i == 0:
			nx, ny = perpendicular(points[0], points[1])
		case i == np-1:
			nx, ny = perpendicular(points[np-2], points[np-1])
		default:
			nx0, ny0 := perpendicular(points[i-1], points[i])
			nx1, ny1 := perpendicular(points[i], points[i+1])
			nx, ny = nx0+nx1, ny0+ny1
			ln := math.Sqrt(nx*nx + ny*ny)
			if ln > 1e-10 {
				nx /= ln
				ny /= ln
			}
		}
		s.verts[i*4] = float32(points[i].X + nx*half)
		s.verts[i*4+1] = float32(points[i].Y + ny*half)
		s.verts[i*4+2] = float32(points[i].X - nx*half)
		s.verts[i*4+3] = float32(points[i].Y - ny*half)
	}

	for i := 0; i < np-1; i++ {
		v := uint32(i * 2)
		ii := i * 6
		s.inds[ii+0] = v
		s.inds[ii+1] = v + 1
		s.inds[ii+2] = v + 2
		s.inds[ii+3] = v + 1
		s.inds[ii+4] = v + 3
		s.inds[ii+5] = v + 2
	}
	s.measure()
}

func (s *Shape) setNatural(w, h float64) {
	s.natW, s.natH = w, h
	s.node.width = w
	s.node.height = h
}

// measure recomputes the natural bounds from the tessellated vertices.
func (s *Shape) measure() {
	var maxX, maxY float32
	for i := 0; i < len(s.verts); i += 2 {
		if s.verts[i] > maxX {
			maxX = s.verts[i]
		}
		if s.verts[i+1] > maxY {
			maxY = s.verts[i+1]
		}
	}
	s.natW = float64(maxX)
	s.natH = float64(maxY)
}

// perpendicular returns the unit left-perpendicular of the segment a to b.
func perpendicular(a, b Vec2) (float64, float64) {
	dx := b.X - a.X
	dy := b.Y - a.Y
	ln := math.Sqrt(dx*dx + dy*dy)
	if ln < 1e-10 {
		return 0, -1
	}
	return -dy / ln, dx / ln
}

// validatePoints rejects short or non-finite outlines up front, before any
// geometry is allocated.
func validatePoints(name string, points []Vec2, min int) error {
	if len(points) < min {
		return fmt.Errorf("rowan: shape %q: need at least %d points, got %d", name, min, len(points))
	}
	for i, p := range points {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return fmt.Errorf("rowan: shape %q: non-finite point %d (%g, %g)", name, i, p.X, p.Y)
		}
	}
	return nil
}

func resizeFloat32(s []float32, n int) []float32 {
	if cap(s) < n {
		return make([]float32, n)
	}
	return s[:n]
}

func resizeUint32(s []uint32, n int) []uint32 {
	if cap(s) < n {
		return make([]uint32, n)
	}
	return s[:n]
}

// shapePacker packs pre-tessellated shape geometry, stretching the natural
// bounds to the node's size and sampling the center of the white texture.
type shapePacker struct{}

func (shapePacker) counts(n *Node) (int, int) {
	s := n.shape
	return len(s.verts) / 2, len(s.inds)
}

func (shapePacker) packVertex(n *Node, out []float32) {
	s := n.shape
	sx, sy := 1.0, 1.0
	if s.natW > 0 {
		sx = n.width / s.natW
	}
	if s.natH > 0 {
		sy = n.height / s.natH
	}
	m := &n.worldMatrix
	for i := 0; i < len(s.verts); i += 2 {
		packCorner(out[i:], m, float64(s.verts[i])*sx, float64(s.verts[i+1])*sy)
	}
}

func (shapePacker) packColor(n *Node, out []uint32) {
	c := n.worldColor
	for i := range out {
		out[i] = c
	}
}

func (shapePacker) packUV(n *Node, slot int, out []float32) {
	s := float32(slot)
	for i := 0; i < len(out); i += 3 {
		out[i] = 0.5
		out[i+1] = 0.5
		out[i+2] = s
	}
}

func (shapePacker) packIndex(n *Node, base uint32, out []uint32) {
	for i, rel := range n.shape.inds {
		out[i] = base + rel
	}
}
