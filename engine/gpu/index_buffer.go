package gpu

import "fmt"

// IndexBuffer holds triangle-list indices.
type IndexBuffer struct {
	refCount
	data []uint32
}

var _ Resource = &IndexBuffer{}

// NewIndexBuffer wraps triangle-list indices.
func NewIndexBuffer(data []uint32) *IndexBuffer {
	return &IndexBuffer{refCount: newRefCount(), data: data}
}

// Data returns the CPU copy of the indices.
func (b *IndexBuffer) Data() []uint32 {
	return b.data
}

// NumTriangles returns len(Data()) / 3.
func (b *IndexBuffer) NumTriangles() int {
	return len(b.data) / 3
}

// Acquire creates and uploads the buffer on the first reference.
func (b *IndexBuffer) Acquire(ctx Context) error {
	return b.acquire(ctx, func(ctx Context) (Handle, error) {
		h, err := ctx.CreateIndexBuffer(len(b.data))
		if err != nil {
			return InvalidHandle, fmt.Errorf("create index buffer: %w", err)
		}
		if err := ctx.UploadIndexBufferData(h, 0, b.data); err != nil {
			_ = ctx.DeleteIndexBuffer(h)
			return InvalidHandle, fmt.Errorf("upload index buffer: %w", err)
		}
		return h, nil
	})
}

// Release deletes the buffer with the last reference.
func (b *IndexBuffer) Release() error {
	return b.release(func(ctx Context, h Handle) error {
		return ctx.DeleteIndexBuffer(h)
	})
}
