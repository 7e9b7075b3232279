package gpu

import "errors"

var (
	// ErrInvalidHandle is returned when a handle is unknown to the context or already deleted.
	ErrInvalidHandle = errors.New("invalid gpu handle")

	// ErrShaderCompile is returned when a shader fails to compile.
	ErrShaderCompile = errors.New("shader compilation failed")

	// ErrProgramLink is returned when a program fails to link or reflect.
	ErrProgramLink = errors.New("program link failed")

	// ErrContextMismatch is returned when a live resource is acquired on a second context.
	ErrContextMismatch = errors.New("resource is bound to another context")

	// ErrNotAcquired is returned when releasing a resource that holds no reference.
	ErrNotAcquired = errors.New("resource not acquired")
)
