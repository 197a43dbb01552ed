package rowan

import (
	"fmt"
	"image"
	"image/draw"
)

// Canvas is a persistent caller-drawn raster surface attached to a node.
// Drawing happens CPU-side into an RGBA image; Flush pushes the pixels to
// the device texture. Unlike pooled render targets, a canvas is owned by its
// node and never recycled.
type Canvas struct {
	node *Node
	dev  Device
	img  *image.RGBA
	w, h int
}

// NewCanvas creates a canvas node of the given pixel size. The surface
// starts transparent.
func NewCanvas(name string, dev Device, w, h int) (*Node, error) {
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("rowan: canvas %q: invalid size %dx%d", name, w, h)
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	tex, err := NewTexture(dev, img)
	if err != nil {
		return nil, err
	}
	n := &Node{Name: name, Kind: KindCanvas, texture: tex}
	nodeDefaults(n)
	n.width = float64(w)
	n.height = float64(h)
	n.renderObject = newRenderObject(n, quadPacker{})
	n.canvas = &Canvas{node: n, dev: dev, img: img, w: w, h: h}
	return n, nil
}

// Image returns the underlying RGBA image for direct manipulation. Call
// Flush after drawing to push changes to the device.
func (c *Canvas) Image() *image.RGBA { return c.img }

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.w }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.h }

// Clear fills the canvas with transparent black.
func (c *Canvas) Clear() {
	for i := range c.img.Pix {
		c.img.Pix[i] = 0
	}
}

// Fill fills the entire canvas with the given color.
func (c *Canvas) Fill(col Color) {
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(col.toRGBA()), image.Point{}, draw.Src)
}

// FillRect fills a rectangle with the given color, clipped to the canvas.
func (c *Canvas) FillRect(r Rect, col Color) {
	rect := image.Rect(int(r.X), int(r.Y), int(r.X+r.Width), int(r.Y+r.Height))
	draw.Draw(c.img, rect.Intersect(c.img.Bounds()), image.NewUniform(col.toRGBA()), image.Point{}, draw.Over)
}

// DrawImage composites src onto the canvas at (x, y).
func (c *Canvas) DrawImage(src image.Image, x, y int) {
	b := src.Bounds()
	dst := image.Rect(x, y, x+b.Dx(), y+b.Dy())
	draw.Draw(c.img, dst.Intersect(c.img.Bounds()), src, b.Min, draw.Over)
}

// Flush uploads the canvas pixels to the device and invalidates the node's
// texture data so downstream filter caches re-render.
func (c *Canvas) Flush() error {
	if c.node.texture == nil || c.node.texture.Buffer == nil {
		return fmt.Errorf("rowan: canvas %q: texture released", c.node.Name)
	}
	if err := c.dev.UpdateTexture(c.node.texture.Buffer.Handle, c.img); err != nil {
		return fmt.Errorf("rowan: canvas %q: upload failed: %w", c.node.Name, err)
	}
	n := c.node
	n.dirty |= DirtyTexture
	n.bubble(DirtyTexture)
	return nil
}

// Resize replaces the surface with a new transparent one of the given size.
// The old device texture is destroyed.
func (c *Canvas) Resize(w, h int) error {
	if w < 1 || h < 1 {
		return fmt.Errorf("rowan: canvas %q: invalid size %dx%d", c.node.Name, w, h)
	}
	old := c.node.texture
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	tex, err := NewTexture(c.dev, img)
	if err != nil {
		return err
	}
	c.img = img
	c.w = w
	c.h = h
	c.node.SetTexture(tex)
	c.node.SetSize(float64(w), float64(h))
	if old != nil && old.Buffer != nil {
		c.dev.DestroyTexture(old.Buffer.Handle)
	}
	return nil
}

// Release destroys the canvas's device texture. The node stops rendering.
func (c *Canvas) Release() {
	if c.node.texture != nil && c.node.texture.Buffer != nil {
		c.dev.DestroyTexture(c.node.texture.Buffer.Handle)
	}
	c.node.SetTexture(nil)
}
