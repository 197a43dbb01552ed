package rowan

import (
	"fmt"
	"image"
	"testing"
)

// mockDevice implements Device for tests, recording every call so tests can
// assert on upload and draw traffic.
type mockDevice struct {
	nextBuffer  BufferHandle
	nextTexture TextureHandle

	buffers  map[BufferHandle][]byte
	textures map[TextureHandle]image.Point

	bufferCreates   int
	bufferUploads   int
	bufferDestroys  int
	textureCreates  int
	textureUpdates  int
	textureDestroys int
	targetAcquires  int
	targetReleases  int
	targetClears    int

	draws []mockDraw

	failCreateBuffer bool
}

// mockDraw is a snapshot of one DrawBatch call.
type mockDraw struct {
	target      *RenderTarget
	indexStart  int
	indexCount  int
	cornerStart int
	slots       int
}

func newMockDevice() *mockDevice {
	return &mockDevice{
		buffers:  make(map[BufferHandle][]byte),
		textures: make(map[TextureHandle]image.Point),
	}
}

func (d *mockDevice) CreateBuffer(kind BufferKind, byteSize int) (BufferHandle, error) {
	if d.failCreateBuffer {
		return 0, fmt.Errorf("mock: buffer allocation refused")
	}
	d.bufferCreates++
	d.nextBuffer++
	d.buffers[d.nextBuffer] = nil
	return d.nextBuffer, nil
}

func (d *mockDevice) UploadBuffer(h BufferHandle, data []byte) error {
	if _, ok := d.buffers[h]; !ok {
		return fmt.Errorf("mock: upload to unknown buffer %d", h)
	}
	d.bufferUploads++
	d.buffers[h] = append(d.buffers[h][:0], data...)
	return nil
}

func (d *mockDevice) DestroyBuffer(h BufferHandle) {
	d.bufferDestroys++
	delete(d.buffers, h)
}

func (d *mockDevice) CreateTexture(img image.Image) (TextureHandle, error) {
	d.textureCreates++
	d.nextTexture++
	b := img.Bounds()
	d.textures[d.nextTexture] = image.Pt(b.Dx(), b.Dy())
	return d.nextTexture, nil
}

func (d *mockDevice) UpdateTexture(h TextureHandle, img *image.RGBA) error {
	if _, ok := d.textures[h]; !ok {
		return fmt.Errorf("mock: update of unknown texture %d", h)
	}
	d.textureUpdates++
	return nil
}

func (d *mockDevice) DestroyTexture(h TextureHandle) {
	d.textureDestroys++
	delete(d.textures, h)
}

func (d *mockDevice) AcquireTarget(w, h int) (*RenderTarget, error) {
	d.targetAcquires++
	pw := nextPowerOfTwo(w)
	ph := nextPowerOfTwo(h)
	d.nextTexture++
	d.textures[d.nextTexture] = image.Pt(pw, ph)
	return &RenderTarget{
		Width:  w,
		Height: h,
		Texture: targetTexture(&TextureBuffer{
			Handle: d.nextTexture,
			Width:  pw,
			Height: ph,
		}, pw, ph),
	}, nil
}

func (d *mockDevice) ReleaseTarget(t *RenderTarget) {
	d.targetReleases++
}

func (d *mockDevice) ClearTarget(t *RenderTarget) {
	d.targetClears++
}

func (d *mockDevice) DrawBatch(target *RenderTarget, batch *Batch, buffers *GroupBuffers) error {
	is, ic := batch.IndexRange()
	cs, _ := batch.CornerRange()
	d.draws = append(d.draws, mockDraw{
		target:      target,
		indexStart:  is,
		indexCount:  ic,
		cornerStart: cs,
		slots:       batch.Textures().Len(),
	})
	return nil
}

// --- Shared test helpers ---

// newTestScene builds a renderer over a mock device with an empty root.
func newTestScene(t *testing.T) (*Renderer, *mockDevice, *Node) {
	t.Helper()
	dev := newMockDevice()
	r, err := NewRenderer(dev)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	root := NewContainer("root")
	r.SetRoot(root)
	return r, dev, root
}

// solidTexture builds an untrimmed texture over its own buffer, no device
// upload involved. Distinct calls never share a batch slot.
func solidTexture(w, h float64) *Texture {
	return &Texture{
		Width:  w,
		Height: h,
		UVs:    [8]float32{0, 0, 1, 0, 0, 1, 1, 1},
		Trim:   Rect{0, 0, w, h},
		Buffer: &TextureBuffer{Handle: 1, Width: int(w), Height: int(h)},
	}
}

func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func assertPanics(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Error("expected panic, got none")
		}
	}()
	fn()
}
