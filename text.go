package rowan

import (
	"image"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// TextAlign controls horizontal placement of lines within a text block.
type TextAlign uint8

const (
	AlignLeft TextAlign = iota
	AlignCenter
	AlignRight
)

// TextBlock renders a string to a texture and displays it as a quad. The
// text is rasterized CPU-side with an x/image font face; every content or
// style change re-rasterizes and swaps the node's texture, so the usual
// dirty propagation covers text updates.
//
// Text is always rasterized white; the node's tint supplies the color, which
// keeps recolors on the cheap incremental path.
type TextBlock struct {
	node *Node
	dev  Device

	face       font.Face
	content    string
	align      TextAlign
	wrapWidth  float64
	lineHeight float64 // override; 0 = face metrics

	measuredW, measuredH float64
}

// NewText creates a text node. A nil face falls back to the built-in
// fixed-width face.
func NewText(name string, dev Device, face font.Face, content string) (*Node, error) {
	if face == nil {
		face = basicfont.Face7x13
	}
	n := &Node{Name: name, Kind: KindText}
	nodeDefaults(n)
	n.renderObject = newRenderObject(n, quadPacker{})
	tb := &TextBlock{node: n, dev: dev, face: face, content: content}
	n.text = tb
	if err := tb.raster(); err != nil {
		return nil, err
	}
	return n, nil
}

// Content returns the current text.
func (tb *TextBlock) Content() string { return tb.content }

// SetContent replaces the text and re-rasterizes.
func (tb *TextBlock) SetContent(s string) error {
	if tb.content == s {
		return nil
	}
	tb.content = s
	return tb.raster()
}

// SetFace replaces the font face and re-rasterizes.
func (tb *TextBlock) SetFace(face font.Face) error {
	if face == nil {
		face = basicfont.Face7x13
	}
	tb.face = face
	return tb.raster()
}

// SetAlign sets line alignment and re-rasterizes.
func (tb *TextBlock) SetAlign(a TextAlign) error {
	if tb.align == a {
		return nil
	}
	tb.align = a
	return tb.raster()
}

// SetWrapWidth sets the word-wrap width in pixels. Zero disables wrapping.
func (tb *TextBlock) SetWrapWidth(w float64) error {
	if tb.wrapWidth == w {
		return nil
	}
	tb.wrapWidth = w
	return tb.raster()
}

// SetLineHeight overrides the face's line height. Zero restores the default.
func (tb *TextBlock) SetLineHeight(h float64) error {
	if tb.lineHeight == h {
		return nil
	}
	tb.lineHeight = h
	return tb.raster()
}

// Measure returns the rasterized text dimensions in pixels.
func (tb *TextBlock) Measure() (w, h float64) {
	return tb.measuredW, tb.measuredH
}

func (tb *TextBlock) effectiveLineHeight() float64 {
	if tb.lineHeight > 0 {
		return tb.lineHeight
	}
	m := tb.face.Metrics()
	return float64(m.Height.Ceil())
}

// raster lays out, rasterizes, and swaps the node texture. An empty string
// clears the texture; the node packs nothing until content returns.
func (tb *TextBlock) raster() error {
	lines := tb.layout()
	if len(lines) == 0 {
		old := tb.node.texture
		tb.node.SetTexture(nil)
		tb.releaseTexture(old)
		tb.measuredW = 0
		tb.measuredH = 0
		return nil
	}

	lh := tb.effectiveLineHeight()
	var maxW float64
	for _, ln := range lines {
		if w := tb.measureLine(ln); w > maxW {
			maxW = w
		}
	}
	w := int(maxW)
	if w < 1 {
		w = 1
	}
	h := int(lh * float64(len(lines)))
	if h < 1 {
		h = 1
	}
	tb.measuredW = float64(w)
	tb.measuredH = float64(h)

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	ascent := float64(tb.face.Metrics().Ascent.Ceil())
	d := font.Drawer{Dst: img, Src: image.White, Face: tb.face}
	for i, ln := range lines {
		lw := tb.measureLine(ln)
		var x float64
		switch tb.align {
		case AlignCenter:
			x = (maxW - lw) / 2
		case AlignRight:
			x = maxW - lw
		}
		d.Dot = fixed.Point26_6{
			X: fixed.Int26_6(x * 64),
			Y: fixed.Int26_6((ascent + float64(i)*lh) * 64),
		}
		d.DrawString(ln)
	}

	tex, err := NewTexture(tb.dev, img)
	if err != nil {
		return err
	}
	old := tb.node.texture
	tb.node.SetTexture(tex)
	tb.node.SetSize(float64(w), float64(h))
	tb.releaseTexture(old)
	return nil
}

func (tb *TextBlock) releaseTexture(t *Texture) {
	if t != nil && t.Buffer != nil {
		tb.dev.DestroyTexture(t.Buffer.Handle)
	}
}

func (tb *TextBlock) measureLine(s string) float64 {
	return float64(font.MeasureString(tb.face, s)) / 64
}

// layout splits content into lines, word-wrapping when a wrap width is set.
// Words longer than the wrap width get a line of their own rather than being
// broken mid-word.
func (tb *TextBlock) layout() []string {
	if tb.content == "" {
		return nil
	}
	raw := strings.Split(tb.content, "\n")
	if tb.wrapWidth <= 0 {
		return raw
	}
	var lines []string
	for _, para := range raw {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		cur := words[0]
		for _, word := range words[1:] {
			joined := cur + " " + word
			if tb.measureLine(joined) > tb.wrapWidth {
				lines = append(lines, cur)
				cur = word
				continue
			}
			cur = joined
		}
		lines = append(lines, cur)
	}
	return lines
}
