package gpu

import "fmt"

// VertexBuffer holds interleaved float vertex data. VertexSize is the number of floats per vertex.
type VertexBuffer struct {
	refCount
	data       []float32
	vertexSize int
}

var _ Resource = &VertexBuffer{}

// NewVertexBuffer wraps interleaved vertex data. Panics when vertexSize is not positive.
//
// Parameters:
//   - data: the interleaved vertex data
//   - vertexSize: the number of floats per vertex
//
// Returns:
//   - *VertexBuffer: the buffer, not yet uploaded
func NewVertexBuffer(data []float32, vertexSize int) *VertexBuffer {
	if vertexSize <= 0 {
		panic(fmt.Sprintf("gpu: vertex size must be positive, got %d", vertexSize))
	}
	return &VertexBuffer{refCount: newRefCount(), data: data, vertexSize: vertexSize}
}

// Data returns the CPU copy of the vertex data.
func (b *VertexBuffer) Data() []float32 {
	return b.data
}

// VertexSize returns the number of floats per vertex.
func (b *VertexBuffer) VertexSize() int {
	return b.vertexSize
}

// NumVertices returns the number of whole vertices held.
func (b *VertexBuffer) NumVertices() int {
	return len(b.data) / b.vertexSize
}

// Acquire creates and uploads the buffer on the first reference.
func (b *VertexBuffer) Acquire(ctx Context) error {
	return b.acquire(ctx, func(ctx Context) (Handle, error) {
		h, err := ctx.CreateVertexBuffer(len(b.data))
		if err != nil {
			return InvalidHandle, fmt.Errorf("create vertex buffer: %w", err)
		}
		if err := ctx.UploadVertexBufferData(h, 0, b.data); err != nil {
			_ = ctx.DeleteVertexBuffer(h)
			return InvalidHandle, fmt.Errorf("upload vertex buffer: %w", err)
		}
		return h, nil
	})
}

// Release deletes the buffer with the last reference.
func (b *VertexBuffer) Release() error {
	return b.release(func(ctx Context, h Handle) error {
		return ctx.DeleteVertexBuffer(h)
	})
}

// Update replaces the vertex data and re-uploads it when the buffer is live.
// The new data must keep the same length while the buffer is acquired.
func (b *VertexBuffer) Update(data []float32) error {
	if b.refs > 0 && len(data) != len(b.data) {
		return fmt.Errorf("update vertex buffer: size %d does not match live size %d", len(data), len(b.data))
	}
	b.data = data
	if b.refs == 0 {
		return nil
	}
	return b.ctx.UploadVertexBufferData(b.handle, 0, data)
}

// VertexAttribute names a component range inside a VertexBuffer. It is the value stored by
// geometry providers and resolved by attribute bindings.
type VertexAttribute struct {
	Buffer *VertexBuffer
	Name   string
	Size   int
	Offset int
}

// Stride returns the number of floats per vertex of the underlying buffer.
func (a VertexAttribute) Stride() int {
	if a.Buffer == nil {
		return 0
	}
	return a.Buffer.vertexSize
}
