package rowan

import (
	"fmt"
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// The built-in filters run on the ebiten backend. They type-assert the
// device; a custom Device needs its own Filter implementations.

const colorMatrixShaderSrc = `//kage:unit pixels
package main

var Matrix [20]float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src)
	// Un-premultiply alpha.
	if c.a > 0 {
		c.rgb /= c.a
	}
	// Apply 4x5 color matrix (row-major, offset in elements 4, 9, 14, 19).
	r := Matrix[0]*c.r + Matrix[1]*c.g + Matrix[2]*c.b + Matrix[3]*c.a + Matrix[4]
	g := Matrix[5]*c.r + Matrix[6]*c.g + Matrix[7]*c.b + Matrix[8]*c.a + Matrix[9]
	b := Matrix[10]*c.r + Matrix[11]*c.g + Matrix[12]*c.b + Matrix[13]*c.a + Matrix[14]
	a := Matrix[15]*c.r + Matrix[16]*c.g + Matrix[17]*c.b + Matrix[18]*c.a + Matrix[19]
	r = clamp(r, 0, 1)
	g = clamp(g, 0, 1)
	b = clamp(b, 0, 1)
	a = clamp(a, 0, 1)
	return vec4(r*a, g*a, b*a, a)
}
`

// Lazy shader compilation (no sync.Once — rowan is single-threaded).
var colorMatrixShader *ebiten.Shader

func ensureColorMatrixShader() *ebiten.Shader {
	if colorMatrixShader == nil {
		s, err := ebiten.NewShader([]byte(colorMatrixShaderSrc))
		if err != nil {
			panic("rowan: failed to compile color matrix shader: " + err.Error())
		}
		colorMatrixShader = s
	}
	return colorMatrixShader
}

// filterImages resolves both targets to their logical sub-images on the
// ebiten backend.
func filterImages(dev Device, src, dst *RenderTarget) (s, d *ebiten.Image, err error) {
	ed, ok := dev.(*EbitenDevice)
	if !ok {
		return nil, nil, fmt.Errorf("rowan: built-in filters require an EbitenDevice")
	}
	si := ed.targetImage(src)
	di := ed.targetImage(dst)
	if si == nil || di == nil {
		return nil, nil, fmt.Errorf("rowan: filter target not resolvable")
	}
	s = si.SubImage(image.Rect(0, 0, src.Width, src.Height)).(*ebiten.Image)
	d = di.SubImage(image.Rect(0, 0, dst.Width, dst.Height)).(*ebiten.Image)
	return s, d, nil
}

// --- ColorMatrixFilter ---

// ColorMatrixFilter applies a 4x5 color matrix in a Kage shader. The matrix
// is row-major: [R_r, R_g, R_b, R_a, R_offset, G_r, ...].
type ColorMatrixFilter struct {
	filterMark
	matrix    [20]float64
	matrixF32 [20]float32 // persistent buffer, avoids per-frame escapes
	uniforms  map[string]any
	shaderOp  ebiten.DrawRectShaderOptions
}

// NewColorMatrixFilter creates a color matrix filter set to the identity.
func NewColorMatrixFilter() *ColorMatrixFilter {
	f := &ColorMatrixFilter{
		filterMark: newFilterMark(),
		uniforms:   make(map[string]any, 1),
	}
	f.uniforms["Matrix"] = f.matrixF32[:]
	f.matrix[0] = 1
	f.matrix[6] = 1
	f.matrix[12] = 1
	f.matrix[18] = 1
	return f
}

// SetMatrix replaces the full 4x5 matrix.
func (f *ColorMatrixFilter) SetMatrix(m [20]float64) {
	f.matrix = m
	f.markDirty()
}

// SetBrightness adjusts brightness by the given offset in [-1, 1].
func (f *ColorMatrixFilter) SetBrightness(b float64) {
	f.SetMatrix([20]float64{
		1, 0, 0, 0, b,
		0, 1, 0, 0, b,
		0, 0, 1, 0, b,
		0, 0, 0, 1, 0,
	})
}

// SetContrast adjusts contrast. c=1 is normal, 0 is gray, >1 is higher.
func (f *ColorMatrixFilter) SetContrast(c float64) {
	t := (1.0 - c) / 2.0
	f.SetMatrix([20]float64{
		c, 0, 0, 0, t,
		0, c, 0, 0, t,
		0, 0, c, 0, t,
		0, 0, 0, 1, 0,
	})
}

// SetSaturation adjusts saturation. s=1 is normal, 0 is grayscale.
func (f *ColorMatrixFilter) SetSaturation(s float64) {
	sr := (1 - s) * 0.299
	sg := (1 - s) * 0.587
	sb := (1 - s) * 0.114
	f.SetMatrix([20]float64{
		sr + s, sg, sb, 0, 0,
		sr, sg + s, sb, 0, 0,
		sr, sg, sb + s, 0, 0,
		0, 0, 0, 1, 0,
	})
}

// Apply renders the color matrix transform from src into dst.
func (f *ColorMatrixFilter) Apply(dev Device, src, dst *RenderTarget) error {
	s, d, err := filterImages(dev, src, dst)
	if err != nil {
		return err
	}
	for i, v := range f.matrix {
		f.matrixF32[i] = float32(v)
	}
	f.shaderOp.Images[0] = s
	f.shaderOp.Uniforms = f.uniforms
	d.DrawRectShader(src.Width, src.Height, ensureColorMatrixShader(), &f.shaderOp)
	return nil
}

// Padding returns 0; color transforms don't expand the bounds.
func (f *ColorMatrixFilter) Padding() int { return 0 }

// --- BlurFilter ---

// BlurFilter applies a Kawase iterative blur with downscale/upscale passes.
// No shader needed; bilinear filtering during DrawImage does the work.
type BlurFilter struct {
	filterMark
	radius int
	temps  []*ebiten.Image
	imgOp  ebiten.DrawImageOptions
}

// NewBlurFilter creates a blur filter with the given radius in pixels.
func NewBlurFilter(radius int) *BlurFilter {
	if radius < 0 {
		radius = 0
	}
	return &BlurFilter{filterMark: newFilterMark(), radius: radius}
}

// Radius returns the blur radius.
func (f *BlurFilter) Radius() int { return f.radius }

// SetRadius changes the blur radius.
func (f *BlurFilter) SetRadius(radius int) {
	if radius < 0 {
		radius = 0
	}
	if f.radius == radius {
		return
	}
	f.radius = radius
	f.markDirty()
}

// Apply renders the blur from src into dst.
func (f *BlurFilter) Apply(dev Device, src, dst *RenderTarget) error {
	s, d, err := filterImages(dev, src, dst)
	if err != nil {
		return err
	}
	op := &f.imgOp

	if f.radius <= 0 {
		op.GeoM.Reset()
		op.ColorScale.Reset()
		op.Filter = ebiten.FilterNearest
		d.DrawImage(s, op)
		return nil
	}

	passes := int(math.Ceil(math.Log2(float64(f.radius))))
	if passes < 1 {
		passes = 1
	}

	w, h := src.Width, src.Height
	for len(f.temps) < passes {
		f.temps = append(f.temps, nil)
	}
	for i := passes; i < len(f.temps); i++ {
		if f.temps[i] != nil {
			f.temps[i].Deallocate()
			f.temps[i] = nil
		}
	}
	f.temps = f.temps[:passes]

	// Downscale chain, each pass half size.
	current := s
	for i := 0; i < passes; i++ {
		w = max(w/2, 1)
		h = max(h/2, 1)
		if f.temps[i] == nil || f.temps[i].Bounds().Dx() != w || f.temps[i].Bounds().Dy() != h {
			if f.temps[i] != nil {
				f.temps[i].Deallocate()
			}
			f.temps[i] = ebiten.NewImage(w, h)
		} else {
			f.temps[i].Clear()
		}
		op.GeoM.Reset()
		op.ColorScale.Reset()
		op.GeoM.Scale(float64(w)/float64(current.Bounds().Dx()), float64(h)/float64(current.Bounds().Dy()))
		op.Filter = ebiten.FilterLinear
		f.temps[i].DrawImage(current, op)
		current = f.temps[i]
	}

	// Upscale back through the chain.
	for i := passes - 2; i >= 0; i-- {
		f.temps[i].Clear()
		op.GeoM.Reset()
		op.ColorScale.Reset()
		tw := f.temps[i].Bounds().Dx()
		th := f.temps[i].Bounds().Dy()
		op.GeoM.Scale(float64(tw)/float64(current.Bounds().Dx()), float64(th)/float64(current.Bounds().Dy()))
		op.Filter = ebiten.FilterLinear
		f.temps[i].DrawImage(current, op)
		current = f.temps[i]
	}

	op.GeoM.Reset()
	op.ColorScale.Reset()
	op.GeoM.Scale(float64(dst.Width)/float64(current.Bounds().Dx()), float64(dst.Height)/float64(current.Bounds().Dy()))
	op.Filter = ebiten.FilterLinear
	d.DrawImage(current, op)
	return nil
}

// Padding returns the radius so the offscreen buffer can hold the spread.
func (f *BlurFilter) Padding() int { return f.radius }

// --- OutlineFilter ---

// OutlineFilter draws the source 8 times at cardinal and diagonal offsets in
// the outline color, then the original on top. Works at any thickness.
type OutlineFilter struct {
	filterMark
	thickness int
	color     Color
	imgOp     ebiten.DrawImageOptions
}

// NewOutlineFilter creates an outline filter.
func NewOutlineFilter(thickness int, c Color) *OutlineFilter {
	return &OutlineFilter{filterMark: newFilterMark(), thickness: thickness, color: c}
}

// SetThickness changes the outline thickness in pixels.
func (f *OutlineFilter) SetThickness(t int) {
	if f.thickness == t {
		return
	}
	f.thickness = t
	f.markDirty()
}

// SetColor changes the outline color.
func (f *OutlineFilter) SetColor(c Color) {
	if f.color == c {
		return
	}
	f.color = c
	f.markDirty()
}

// Apply draws the offset outline behind the source.
func (f *OutlineFilter) Apply(dev Device, src, dst *RenderTarget) error {
	s, d, err := filterImages(dev, src, dst)
	if err != nil {
		return err
	}
	t := float64(f.thickness)
	offsets := [8][2]float64{
		{-t, 0}, {t, 0}, {0, -t}, {0, t},
		{-t, -t}, {t, -t}, {-t, t}, {t, t},
	}

	op := &f.imgOp
	for _, off := range offsets {
		op.GeoM.Reset()
		op.ColorScale.Reset()
		op.GeoM.Translate(off[0], off[1])
		op.ColorScale.Scale(
			float32(f.color.R*f.color.A),
			float32(f.color.G*f.color.A),
			float32(f.color.B*f.color.A),
			float32(f.color.A),
		)
		d.DrawImage(s, op)
	}

	op.GeoM.Reset()
	op.ColorScale.Reset()
	d.DrawImage(s, op)
	return nil
}

// Padding returns the thickness so the outline isn't clipped.
func (f *OutlineFilter) Padding() int { return f.thickness }
