package rowan

import "image"

// BufferKind identifies the role of a device buffer.
type BufferKind uint8

const (
	BufferVertex BufferKind = iota // 2 float32 per corner (x, y)
	BufferColor                    // 1 uint32 per corner (packed ABGR)
	BufferUV                       // 3 float32 per corner (u, v, slot)
	BufferIndex                    // uint32 triangle indices
)

// BufferHandle identifies a device-side buffer. Zero means not created.
type BufferHandle uint32

// TextureHandle identifies a device-side texture. Zero means not created.
type TextureHandle uint32

// TextureBuffer is the GPU side of a Texture: the device handle plus the
// pixel dimensions of the underlying image (the full atlas page for atlas
// regions).
type TextureBuffer struct {
	Handle TextureHandle
	Width  int
	Height int
}

// RenderTarget is an offscreen surface a BatchGroup can render into. Texture
// exposes the target's contents for packing back into a parent group.
// OriginX/OriginY shift incoming world-space geometry so a subtree whose
// bounds start away from (0, 0) lands at the target's top-left.
type RenderTarget struct {
	Width, Height    int
	OriginX, OriginY float64
	Texture          *Texture
}

// Device abstracts the GPU backend. The batching core is agnostic to the
// concrete graphics API; any backend satisfying this contract works.
// All calls are synchronous and single-threaded.
type Device interface {
	// CreateBuffer allocates a device buffer of the given byte size.
	// An out-of-memory failure is fatal to the frame and propagates.
	CreateBuffer(kind BufferKind, byteSize int) (BufferHandle, error)
	// UploadBuffer replaces the buffer's contents.
	UploadBuffer(h BufferHandle, data []byte) error
	// DestroyBuffer releases a device buffer. Destroying the zero handle is
	// a no-op.
	DestroyBuffer(h BufferHandle)

	// CreateTexture uploads an image as a device texture.
	CreateTexture(img image.Image) (TextureHandle, error)
	// UpdateTexture replaces a texture's pixels. The image must match the
	// texture's dimensions.
	UpdateTexture(h TextureHandle, img *image.RGBA) error
	// DestroyTexture releases a device texture.
	DestroyTexture(h TextureHandle)

	// AcquireTarget returns a cleared offscreen target with at least the
	// requested dimensions. Targets are pooled; release when done.
	AcquireTarget(w, h int) (*RenderTarget, error)
	// ReleaseTarget returns a target to the pool.
	ReleaseTarget(t *RenderTarget)
	// ClearTarget fills a target with transparent black.
	ClearTarget(t *RenderTarget)

	// DrawBatch submits one batch: the index range [batch.startIndex,
	// batch.startIndex+batch.size) of the given buffers, sampling the
	// batch's texture slots.
	DrawBatch(target *RenderTarget, batch *Batch, buffers *GroupBuffers) error
}

// GroupBuffers bundles the four shared buffers a batch's geometry lives in.
type GroupBuffers struct {
	Positions *Float32Buffer
	Colors    *Uint32Buffer
	UVs       *Float32Buffer
	Indices   *Uint32Buffer
}
