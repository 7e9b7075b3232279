package gpu

// InputType is the value type of a reflected uniform.
type InputType int

const (
	InputTypeUnknown InputType = iota
	InputTypeFloat1
	InputTypeFloat2
	InputTypeFloat3
	InputTypeFloat4
	InputTypeInt1
	InputTypeInt2
	InputTypeInt3
	InputTypeInt4
	InputTypeFloat16
)

// Components returns the number of scalar components of t.
func (t InputType) Components() int {
	switch t {
	case InputTypeFloat1, InputTypeInt1:
		return 1
	case InputTypeFloat2, InputTypeInt2:
		return 2
	case InputTypeFloat3, InputTypeInt3:
		return 3
	case InputTypeFloat4, InputTypeInt4:
		return 4
	case InputTypeFloat16:
		return 16
	}
	return 0
}

// IsInt reports whether t holds integer components.
func (t InputType) IsInt() bool {
	return t >= InputTypeInt1 && t <= InputTypeInt4
}

// AttributeInput is a vertex attribute read by a program.
type AttributeInput struct {
	Name     string
	Location int
	Size     int
}

// UniformInput is a member of the program uniform block. Offset and Size are in bytes.
type UniformInput struct {
	Name     string
	Location int
	Type     InputType
	Offset   int
	Size     int
}

// TextureInput is a sampled texture read by a program. SamplerBinding is -1 when the
// program declares no matching sampler.
type TextureInput struct {
	Name           string
	Slot           int
	Binding        int
	SamplerBinding int
}

// ProgramInputs describes everything a linked program reads.
type ProgramInputs struct {
	Attributes       []AttributeInput
	Uniforms         []UniformInput
	Textures         []TextureInput
	UniformBlockSize int
}

// Attribute looks up an attribute input by name.
func (p ProgramInputs) Attribute(name string) (AttributeInput, bool) {
	for _, a := range p.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return AttributeInput{}, false
}

// Uniform looks up a uniform input by name.
func (p ProgramInputs) Uniform(name string) (UniformInput, bool) {
	for _, u := range p.Uniforms {
		if u.Name == name {
			return u, true
		}
	}
	return UniformInput{}, false
}

// Texture looks up a texture input by name.
func (p ProgramInputs) Texture(name string) (TextureInput, bool) {
	for _, t := range p.Textures {
		if t.Name == name {
			return t, true
		}
	}
	return TextureInput{}, false
}
