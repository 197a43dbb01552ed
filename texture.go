package rowan

import (
	"fmt"
	"image"
)

// Texture is the packable view of an image the render core consumes. The core
// never fetches or decodes images; loaders construct Textures and the core
// only reads these fields while packing.
//
// Width and Height are the authored (untrimmed) sprite dimensions. UVs are
// the four corner coordinates (TL, TR, BL, BR) normalized to the underlying
// page image. Trim is the sub-rectangle of the authored bounds that actually
// has pixels; untrimmed textures carry {0, 0, Width, Height}.
type Texture struct {
	Width, Height float64
	UVs           [8]float32
	Trim          Rect
	Repeat        bool
	Buffer        *TextureBuffer
}

// NewTexture uploads img to the device and returns an untrimmed Texture
// spanning it entirely.
func NewTexture(dev Device, img image.Image) (*Texture, error) {
	h, err := dev.CreateTexture(img)
	if err != nil {
		return nil, fmt.Errorf("rowan: texture create failed: %w", err)
	}
	b := img.Bounds()
	w, ht := b.Dx(), b.Dy()
	return &Texture{
		Width:  float64(w),
		Height: float64(ht),
		UVs:    [8]float32{0, 0, 1, 0, 0, 1, 1, 1},
		Trim:   Rect{0, 0, float64(w), float64(ht)},
		Buffer: &TextureBuffer{Handle: h, Width: w, Height: ht},
	}, nil
}

// targetTexture wraps a render-target-sized buffer as a full-span texture.
func targetTexture(buf *TextureBuffer, w, h int) *Texture {
	return &Texture{
		Width:  float64(w),
		Height: float64(h),
		UVs:    [8]float32{0, 0, 1, 0, 0, 1, 1, 1},
		Trim:   Rect{0, 0, float64(w), float64(h)},
		Buffer: buf,
	}
}

// TextureGroup maps texture identities to bound slot indices for one batch.
// Capacity matches MaxTextureSlots.
type TextureGroup struct {
	slots [MaxTextureSlots]*TextureBuffer
	count int
}

// Add returns the slot index for buf, binding it to a free slot if needed.
// Returns -1 when buf is not yet bound and the group is full.
func (g *TextureGroup) Add(buf *TextureBuffer) int {
	for i := 0; i < g.count; i++ {
		if g.slots[i] == buf {
			return i
		}
	}
	if g.count == MaxTextureSlots {
		return -1
	}
	g.slots[g.count] = buf
	g.count++
	return g.count - 1
}

// Len returns the number of bound slots.
func (g *TextureGroup) Len() int {
	return g.count
}

// Slot returns the texture buffer bound at slot i.
func (g *TextureGroup) Slot(i int) *TextureBuffer {
	return g.slots[i]
}

// reset unbinds all slots for reuse.
func (g *TextureGroup) reset() {
	for i := 0; i < g.count; i++ {
		g.slots[i] = nil
	}
	g.count = 0
}
