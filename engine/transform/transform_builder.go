package transform

import "github.com/go-gl/mathgl/mgl32"

// TransformBuilderOption is a function that configures a Transform during construction.
type TransformBuilderOption func(*Transform)

// WithMatrix sets the local matrix.
//
// Parameters:
//   - m: the local matrix
//
// Returns:
//   - TransformBuilderOption: a function that sets the local matrix
func WithMatrix(m mgl32.Mat4) TransformBuilderOption {
	return func(t *Transform) {
		t.set(MatrixProperty, m)
		t.set(ModelToWorldMatrixProperty, m)
	}
}

// WithPosition sets the local matrix to a translation.
func WithPosition(x, y, z float32) TransformBuilderOption {
	return WithMatrix(mgl32.Translate3D(x, y, z))
}
