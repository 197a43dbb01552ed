package rowan

import "fmt"

// Float32Buffer is a growable typed buffer backing position or UV data.
// The Data slice is sized to the current maximum need; Fat grows it without
// losing contents. A device-side copy is created lazily on Upload and
// invalidated by Fat.
type Float32Buffer struct {
	Data []float32

	kind   BufferKind
	handle BufferHandle
	loaded bool
}

// NewFloat32Buffer creates a buffer for the given kind (BufferVertex or
// BufferUV).
func NewFloat32Buffer(kind BufferKind) *Float32Buffer {
	return &Float32Buffer{kind: kind}
}

// Fat grows the buffer to at least n elements, byte-copying old contents.
// The device buffer handle is invalidated so it is recreated on next upload.
// No-op if the buffer already holds n elements.
func (b *Float32Buffer) Fat(dev Device, n int) {
	if n <= len(b.Data) {
		return
	}
	grown := make([]float32, n)
	copy(grown, b.Data)
	b.Data = grown
	if b.handle != 0 {
		dev.DestroyBuffer(b.handle)
		b.handle = 0
	}
	b.loaded = false
}

// Reset marks the buffer not-loaded without freeing memory, for same-frame or
// next-frame reuse.
func (b *Float32Buffer) Reset() {
	b.loaded = false
}

// Loaded reports whether the device-side copy matches Data.
func (b *Float32Buffer) Loaded() bool {
	return b.loaded
}

// Upload pushes Data to the device. No-op if not marked dirty.
// Device allocation failure is unrecoverable and propagates.
func (b *Float32Buffer) Upload(dev Device) error {
	if b.loaded {
		return nil
	}
	if b.handle == 0 {
		h, err := dev.CreateBuffer(b.kind, len(b.Data)*4)
		if err != nil {
			return fmt.Errorf("rowan: buffer create failed: %w", err)
		}
		b.handle = h
	}
	if err := dev.UploadBuffer(b.handle, float32Bytes(b.Data)); err != nil {
		return fmt.Errorf("rowan: buffer upload failed: %w", err)
	}
	b.loaded = true
	return nil
}

// Handle returns the device buffer handle, or zero before the first upload.
func (b *Float32Buffer) Handle() BufferHandle {
	return b.handle
}

// release destroys the device-side copy.
func (b *Float32Buffer) release(dev Device) {
	if b.handle != 0 {
		dev.DestroyBuffer(b.handle)
		b.handle = 0
	}
	b.loaded = false
}

// Uint32Buffer is a growable typed buffer backing packed color or index data.
// Same lifecycle as Float32Buffer.
type Uint32Buffer struct {
	Data []uint32

	kind   BufferKind
	handle BufferHandle
	loaded bool
}

// NewUint32Buffer creates a buffer for the given kind (BufferColor or
// BufferIndex).
func NewUint32Buffer(kind BufferKind) *Uint32Buffer {
	return &Uint32Buffer{kind: kind}
}

// Fat grows the buffer to at least n elements, byte-copying old contents and
// invalidating the device handle.
func (b *Uint32Buffer) Fat(dev Device, n int) {
	if n <= len(b.Data) {
		return
	}
	grown := make([]uint32, n)
	copy(grown, b.Data)
	b.Data = grown
	if b.handle != 0 {
		dev.DestroyBuffer(b.handle)
		b.handle = 0
	}
	b.loaded = false
}

// Reset marks the buffer not-loaded without freeing memory.
func (b *Uint32Buffer) Reset() {
	b.loaded = false
}

// Loaded reports whether the device-side copy matches Data.
func (b *Uint32Buffer) Loaded() bool {
	return b.loaded
}

// Upload pushes Data to the device. No-op if not marked dirty.
func (b *Uint32Buffer) Upload(dev Device) error {
	if b.loaded {
		return nil
	}
	if b.handle == 0 {
		h, err := dev.CreateBuffer(b.kind, len(b.Data)*4)
		if err != nil {
			return fmt.Errorf("rowan: buffer create failed: %w", err)
		}
		b.handle = h
	}
	if err := dev.UploadBuffer(b.handle, uint32Bytes(b.Data)); err != nil {
		return fmt.Errorf("rowan: buffer upload failed: %w", err)
	}
	b.loaded = true
	return nil
}

// Handle returns the device buffer handle, or zero before the first upload.
func (b *Uint32Buffer) Handle() BufferHandle {
	return b.handle
}

func (b *Uint32Buffer) release(dev Device) {
	if b.handle != 0 {
		dev.DestroyBuffer(b.handle)
		b.handle = 0
	}
	b.loaded = false
}
