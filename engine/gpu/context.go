// Package gpu defines the capability interface the scene core consumes from a graphics
// backend, together with the reference-counted resources that own backend handles.
//
// Nothing in this package talks to a real device. Implementations live in
// engine/gpu/backend (WebGPU) and engine/gpu/gputest (recording fake).
package gpu

// Handle is an opaque backend resource id.
type Handle uint32

// InvalidHandle marks a resource that has not been created yet.
const InvalidHandle Handle = 0xffffffff

// Valid reports whether h refers to a created resource.
func (h Handle) Valid() bool {
	return h != InvalidHandle
}

// Context is the low-level GPU capability interface.
//
// All methods must be called from the goroutine that owns the context. Handles returned by
// a Create call stay valid until the matching Delete call.
type Context interface {
	// CreateVertexBuffer allocates a vertex buffer able to hold size float32 values.
	//
	// Parameters:
	//   - size: the number of float32 values
	//
	// Returns:
	//   - Handle: the new buffer handle
	//   - error: an error if the backend cannot allocate the buffer
	CreateVertexBuffer(size int) (Handle, error)

	// UploadVertexBufferData writes data into the buffer starting at offset (in floats).
	UploadVertexBufferData(vertexBuffer Handle, offset int, data []float32) error

	// DeleteVertexBuffer frees the buffer.
	DeleteVertexBuffer(vertexBuffer Handle) error

	// CreateIndexBuffer allocates an index buffer able to hold size uint32 indices.
	CreateIndexBuffer(size int) (Handle, error)

	// UploadIndexBufferData writes indices into the buffer starting at offset.
	UploadIndexBufferData(indexBuffer Handle, offset int, data []uint32) error

	// DeleteIndexBuffer frees the buffer.
	DeleteIndexBuffer(indexBuffer Handle) error

	// CreateTexture allocates an RGBA8 2D texture.
	//
	// Parameters:
	//   - width: the width in texels
	//   - height: the height in texels
	//   - mipMapping: true to allocate a full mip chain
	//
	// Returns:
	//   - Handle: the new texture handle
	//   - error: an error if the backend cannot allocate the texture
	CreateTexture(width, height int, mipMapping bool) (Handle, error)

	// UploadTextureData writes RGBA8 pixels into the given mip level.
	UploadTextureData(texture Handle, width, height, mipLevel int, data []byte) error

	// DeleteTexture frees the texture.
	DeleteTexture(texture Handle) error

	// CreateProgram allocates an empty program object.
	CreateProgram() (Handle, error)

	// CreateVertexShader allocates an empty vertex shader object.
	CreateVertexShader() (Handle, error)

	// CreateFragmentShader allocates an empty fragment shader object.
	CreateFragmentShader() (Handle, error)

	// SetShaderSource stores source on the shader object.
	SetShaderSource(shader Handle, source string) error

	// CompileShader compiles the shader. Failures wrap ErrShaderCompile.
	CompileShader(shader Handle) error

	// AttachShader attaches a compiled shader to a program.
	AttachShader(program, shader Handle) error

	// LinkProgram links the attached shaders and reflects the program inputs.
	// Failures wrap ErrProgramLink.
	//
	// Parameters:
	//   - program: the program with a vertex and a fragment shader attached
	//
	// Returns:
	//   - ProgramInputs: the attributes, uniforms and textures the program reads
	//   - error: an error if linking fails
	LinkProgram(program Handle) (ProgramInputs, error)

	// DeleteShader frees the shader object.
	DeleteShader(shader Handle) error

	// DeleteProgram frees the program object.
	DeleteProgram(program Handle) error

	// SetProgram makes program current for the following Set*/Draw calls.
	SetProgram(program Handle) error

	// SetVertexBufferAt binds an attribute location of the current program to a vertex buffer.
	//
	// Parameters:
	//   - location: the attribute location reported by LinkProgram
	//   - vertexBuffer: the buffer handle
	//   - size: the number of components of the attribute
	//   - stride: the number of floats per vertex
	//   - offset: the attribute offset in floats inside one vertex
	//
	// Returns:
	//   - error: an error if the buffer handle is invalid
	SetVertexBufferAt(location int, vertexBuffer Handle, size, stride, offset int) error

	// SetUniformFloats writes a float uniform of the current program.
	SetUniformFloats(location int, values []float32) error

	// SetUniformInts writes an integer uniform of the current program.
	SetUniformInts(location int, values []int32) error

	// SetTextureAt binds texture to a texture slot of the current program.
	SetTextureAt(slot int, texture Handle) error

	// SetRenderState applies blending, depth, stencil, culling, color mask and scissor state.
	SetRenderState(state RenderState) error

	// DrawTriangles draws numTriangles triangles from indexBuffer starting at firstIndex.
	DrawTriangles(indexBuffer Handle, firstIndex, numTriangles int) error

	// Clear starts a frame by clearing the color, depth and stencil targets.
	Clear(options ClearOptions) error

	// Present ends the frame and presents it.
	Present() error

	// ConfigureViewport sets the viewport rectangle in pixels.
	ConfigureViewport(x, y, width, height int) error

	// Dispose releases every backend object owned by the context itself.
	Dispose()
}

// ClearOptions holds the values used by Context.Clear.
type ClearOptions struct {
	Color   [4]float32
	Depth   float32
	Stencil uint32
}

// DefaultClearOptions returns an opaque black color, depth 1 and stencil 0.
func DefaultClearOptions() ClearOptions {
	return ClearOptions{Color: [4]float32{0, 0, 0, 1}, Depth: 1}
}
