package rowan

import (
	"fmt"
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// EbitenDevice implements Device on top of Ebitengine. Ebiten draws from CPU
// vertex slices, so "device buffers" here are acknowledgment-only: DrawBatch
// reads the typed buffer data directly and builds ebiten vertices per
// texture-slot run.
type EbitenDevice struct {
	textures    map[TextureHandle]*ebiten.Image
	nextTexture TextureHandle

	// Buffer handles are issued for lifecycle tracking only.
	buffers    map[BufferHandle]struct{}
	nextBuffer BufferHandle

	pool    renderTexturePool
	targets map[*RenderTarget]*ebiten.Image

	// screenTarget is reused across frames by WrapScreen.
	screenTarget *RenderTarget

	vertScratch  []ebiten.Vertex
	indexScratch []uint32
}

// NewEbitenDevice creates an ebiten-backed device.
func NewEbitenDevice() *EbitenDevice {
	return &EbitenDevice{
		textures: make(map[TextureHandle]*ebiten.Image),
		buffers:  make(map[BufferHandle]struct{}),
		targets:  make(map[*RenderTarget]*ebiten.Image),
	}
}

// WrapScreen wraps the frame's screen image as a render target for
// Renderer.Render. Call each frame from the game's Draw.
func (d *EbitenDevice) WrapScreen(screen *ebiten.Image) *RenderTarget {
	b := screen.Bounds()
	if d.screenTarget == nil {
		d.screenTarget = &RenderTarget{}
	}
	d.screenTarget.Width = b.Dx()
	d.screenTarget.Height = b.Dy()
	d.targets[d.screenTarget] = screen
	return d.screenTarget
}

// Image returns the ebiten image behind a texture handle, for interop.
func (d *EbitenDevice) Image(h TextureHandle) *ebiten.Image {
	return d.textures[h]
}

// targetImage resolves a render target to its backing image.
func (d *EbitenDevice) targetImage(t *RenderTarget) *ebiten.Image {
	return d.targets[t]
}

// --- Buffers ---

func (d *EbitenDevice) CreateBuffer(kind BufferKind, byteSize int) (BufferHandle, error) {
	d.nextBuffer++
	d.buffers[d.nextBuffer] = struct{}{}
	return d.nextBuffer, nil
}

func (d *EbitenDevice) UploadBuffer(h BufferHandle, data []byte) error {
	if _, ok := d.buffers[h]; !ok {
		return fmt.Errorf("rowan: upload to unknown buffer %d", h)
	}
	return nil
}

func (d *EbitenDevice) DestroyBuffer(h BufferHandle) {
	delete(d.buffers, h)
}

// --- Textures ---

func (d *EbitenDevice) CreateTexture(img image.Image) (TextureHandle, error) {
	d.nextTexture++
	d.textures[d.nextTexture] = ebiten.NewImageFromImage(img)
	return d.nextTexture, nil
}

func (d *EbitenDevice) UpdateTexture(h TextureHandle, img *image.RGBA) error {
	e, ok := d.textures[h]
	if !ok {
		return fmt.Errorf("rowan: update of unknown texture %d", h)
	}
	b := e.Bounds()
	ib := img.Bounds()
	if b.Dx() != ib.Dx() || b.Dy() != ib.Dy() {
		return fmt.Errorf("rowan: texture %d is %dx%d, update is %dx%d",
			h, b.Dx(), b.Dy(), ib.Dx(), ib.Dy())
	}
	e.WritePixels(img.Pix)
	return nil
}

func (d *EbitenDevice) DestroyTexture(h TextureHandle) {
	if e, ok := d.textures[h]; ok {
		e.Deallocate()
		delete(d.textures, h)
	}
}

// --- Render targets ---

func (d *EbitenDevice) AcquireTarget(w, h int) (*RenderTarget, error) {
	img := d.pool.Acquire(w, h)
	b := img.Bounds()

	d.nextTexture++
	d.textures[d.nextTexture] = img

	t := &RenderTarget{
		Width:  w,
		Height: h,
		Texture: targetTexture(&TextureBuffer{
			Handle: d.nextTexture,
			Width:  b.Dx(),
			Height: b.Dy(),
		}, b.Dx(), b.Dy()),
	}
	d.targets[t] = img
	return t, nil
}

func (d *EbitenDevice) ReleaseTarget(t *RenderTarget) {
	img, ok := d.targets[t]
	if !ok {
		return
	}
	delete(d.targets, t)
	if t.Texture != nil && t.Texture.Buffer != nil {
		delete(d.textures, t.Texture.Buffer.Handle)
	}
	d.pool.Release(img)
}

func (d *EbitenDevice) ClearTarget(t *RenderTarget) {
	if img := d.targets[t]; img != nil {
		img.Clear()
	}
}

// --- Draw submission ---

// DrawBatch splits the batch's index range into runs sharing a texture slot
// and issues one DrawTriangles32 per run. Vertices for the batch's corner
// range are built once; per-corner UVs are scaled to the slot texture's
// pixel space as ebiten requires.
func (d *EbitenDevice) DrawBatch(target *RenderTarget, batch *Batch, buffers *GroupBuffers) error {
	dst := d.targets[target]
	if dst == nil {
		return fmt.Errorf("rowan: draw to unknown target")
	}
	idxStart, idxCount := batch.IndexRange()
	if idxCount == 0 {
		return nil
	}
	cornerStart, cornerCount := batch.CornerRange()

	pos := buffers.Positions.Data
	col := buffers.Colors.Data
	uv := buffers.UVs.Data
	idx := buffers.Indices.Data[idxStart : idxStart+idxCount]

	// Build the batch's vertex slice. SrcX/SrcY are filled per run since
	// they depend on the slot texture's dimensions.
	if cap(d.vertScratch) < cornerCount {
		d.vertScratch = make([]ebiten.Vertex, cornerCount)
	}
	verts := d.vertScratch[:cornerCount]
	for i := 0; i < cornerCount; i++ {
		c := cornerStart + i
		packed := col[c]
		verts[i] = ebiten.Vertex{
			DstX:   pos[c*2] - float32(target.OriginX),
			DstY:   pos[c*2+1] - float32(target.OriginY),
			ColorR: float32(packed&0xff) / 255,
			ColorG: float32((packed>>8)&0xff) / 255,
			ColorB: float32((packed>>16)&0xff) / 255,
			ColorA: float32((packed>>24)&0xff) / 255,
		}
	}

	op := &ebiten.DrawTrianglesOptions{
		ColorScaleMode: ebiten.ColorScaleModePremultipliedAlpha,
	}

	// Walk triangles, flushing a draw per slot change.
	runStart := 0
	runSlot := int(uv[idx[0]*3+2])
	flush := func(from, to, slot int) error {
		buf := batch.Textures().Slot(slot)
		if buf == nil {
			return fmt.Errorf("rowan: batch references unbound slot %d", slot)
		}
		img := d.textures[buf.Handle]
		if img == nil {
			return fmt.Errorf("rowan: batch references destroyed texture %d", buf.Handle)
		}
		tw := float32(buf.Width)
		th := float32(buf.Height)
		if cap(d.indexScratch) < to-from {
			d.indexScratch = make([]uint32, to-from)
		}
		run := d.indexScratch[:to-from]
		for i := from; i < to; i++ {
			rel := idx[i] - uint32(cornerStart)
			run[i-from] = rel
			verts[rel].SrcX = uv[idx[i]*3] * tw
			verts[rel].SrcY = uv[idx[i]*3+1] * th
		}
		dst.DrawTriangles32(verts, run, img, op)
		return nil
	}
	for i := 0; i < idxCount; i += 3 {
		slot := int(uv[idx[i]*3+2])
		if slot != runSlot {
			if err := flush(runStart, i, runSlot); err != nil {
				return err
			}
			runStart = i
			runSlot = slot
		}
	}
	return flush(runStart, idxCount, runSlot)
}

// --- Pooled offscreen images ---

// renderTexturePool manages reusable offscreen ebiten images keyed by
// power-of-two dimensions. After warmup, Acquire/Release are zero-alloc.
type renderTexturePool struct {
	buckets map[uint64][]*ebiten.Image
}

func poolKey(w, h int) uint64 {
	return uint64(w)<<32 | uint64(h)
}

// Acquire returns a cleared offscreen image with at least (w, h) pixels,
// rounded up to the next power of two.
func (p *renderTexturePool) Acquire(w, h int) *ebiten.Image {
	pw := nextPowerOfTwo(w)
	ph := nextPowerOfTwo(h)
	key := poolKey(pw, ph)

	if p.buckets != nil {
		if stack := p.buckets[key]; len(stack) > 0 {
			img := stack[len(stack)-1]
			p.buckets[key] = stack[:len(stack)-1]
			img.Clear()
			return img
		}
	}

	return ebiten.NewImageWithOptions(
		image.Rect(0, 0, pw, ph),
		&ebiten.NewImageOptions{Unmanaged: true},
	)
}

// Release returns an image to the pool. Clearing happens on next Acquire,
// not here.
func (p *renderTexturePool) Release(img *ebiten.Image) {
	if img == nil {
		return
	}
	b := img.Bounds()
	key := poolKey(b.Dx(), b.Dy())

	if p.buckets == nil {
		p.buckets = make(map[uint64][]*ebiten.Image)
	}
	p.buckets[key] = append(p.buckets[key], img)
}

// nextPowerOfTwo returns the smallest power of two >= n (minimum 1).
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << int(math.Ceil(math.Log2(float64(n))))
}
