package gpu

import (
	"errors"
	"fmt"
)

// Program is a vertex + fragment shader pair. Its inputs are known once it has been acquired.
type Program struct {
	refCount
	name           string
	vertexSource   string
	fragmentSource string
	vertexShader   Handle
	fragmentShader Handle
	inputs         ProgramInputs
}

var _ Resource = &Program{}

// NewProgram creates a program from shader sources. The sources are compiled on the first Acquire.
//
// Parameters:
//   - name: a label used in errors and logs
//   - vertexSource: the vertex shader source
//   - fragmentSource: the fragment shader source
//
// Returns:
//   - *Program: the program, not yet compiled
func NewProgram(name, vertexSource, fragmentSource string) *Program {
	return &Program{
		refCount:       newRefCount(),
		name:           name,
		vertexSource:   vertexSource,
		fragmentSource: fragmentSource,
		vertexShader:   InvalidHandle,
		fragmentShader: InvalidHandle,
	}
}

// Name returns the program label.
func (p *Program) Name() string {
	return p.name
}

// VertexSource returns the vertex shader source.
func (p *Program) VertexSource() string {
	return p.vertexSource
}

// FragmentSource returns the fragment shader source.
func (p *Program) FragmentSource() string {
	return p.fragmentSource
}

// Inputs returns the reflected inputs of the linked program.
func (p *Program) Inputs() ProgramInputs {
	return p.inputs
}

// Acquire compiles and links the program on the first reference. Every shader or program
// object created along the way is deleted again when a later step fails.
func (p *Program) Acquire(ctx Context) error {
	return p.acquire(ctx, p.build)
}

// Release deletes the shaders and the program with the last reference.
func (p *Program) Release() error {
	return p.release(func(ctx Context, h Handle) error {
		err := errors.Join(
			ctx.DeleteShader(p.vertexShader),
			ctx.DeleteShader(p.fragmentShader),
			ctx.DeleteProgram(h),
		)
		p.vertexShader, p.fragmentShader = InvalidHandle, InvalidHandle
		p.inputs = ProgramInputs{}
		return err
	})
}

func (p *Program) build(ctx Context) (program Handle, err error) {
	var cleanup []func() error
	defer func() {
		if err == nil {
			return
		}
		for i := len(cleanup) - 1; i >= 0; i-- {
			_ = cleanup[i]()
		}
	}()

	program, err = ctx.CreateProgram()
	if err != nil {
		return InvalidHandle, fmt.Errorf("program %q: create: %w", p.name, err)
	}
	cleanup = append(cleanup, func() error { return ctx.DeleteProgram(program) })

	vs, err := p.compile(ctx, ctx.CreateVertexShader, p.vertexSource, &cleanup)
	if err != nil {
		return InvalidHandle, fmt.Errorf("program %q: vertex shader: %w", p.name, err)
	}
	fs, err := p.compile(ctx, ctx.CreateFragmentShader, p.fragmentSource, &cleanup)
	if err != nil {
		return InvalidHandle, fmt.Errorf("program %q: fragment shader: %w", p.name, err)
	}

	if err = ctx.AttachShader(program, vs); err != nil {
		return InvalidHandle, fmt.Errorf("program %q: attach: %w", p.name, err)
	}
	if err = ctx.AttachShader(program, fs); err != nil {
		return InvalidHandle, fmt.Errorf("program %q: attach: %w", p.name, err)
	}

	inputs, err := ctx.LinkProgram(program)
	if err != nil {
		return InvalidHandle, fmt.Errorf("program %q: %w", p.name, err)
	}

	p.vertexShader, p.fragmentShader, p.inputs = vs, fs, inputs
	return program, nil
}

func (p *Program) compile(ctx Context, create func() (Handle, error), source string, cleanup *[]func() error) (Handle, error) {
	shader, err := create()
	if err != nil {
		return InvalidHandle, err
	}
	*cleanup = append(*cleanup, func() error { return ctx.DeleteShader(shader) })

	if err := ctx.SetShaderSource(shader, source); err != nil {
		return InvalidHandle, err
	}
	if err := ctx.CompileShader(shader); err != nil {
		return InvalidHandle, err
	}
	return shader, nil
}
