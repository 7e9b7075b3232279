package render

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"github.com/Carmen-Shannon/oxy-scene/engine/data"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu/wgsl"
)

// ErrInvalidEffect is returned for malformed effect definitions.
var ErrInvalidEffect = errors.New("invalid effect")

type effectDef struct {
	Name   string    `yaml:"name"`
	Passes []passDef `yaml:"passes"`
}

type passDef struct {
	Name               string                `yaml:"name"`
	Shader             string                `yaml:"shader"`
	ShaderFile         string                `yaml:"shaderFile"`
	VertexShader       string                `yaml:"vertexShader"`
	VertexShaderFile   string                `yaml:"vertexShaderFile"`
	FragmentShader     string                `yaml:"fragmentShader"`
	FragmentShaderFile string                `yaml:"fragmentShaderFile"`
	Attributes         map[string]bindingDef `yaml:"attributes"`
	Uniforms           map[string]bindingDef `yaml:"uniforms"`
	States             map[string]bindingDef `yaml:"states"`
	Indices            *bindingDef           `yaml:"indices"`
	DefaultStates      map[string]yaml.Node  `yaml:"defaultStates"`
}

// bindingDef accepts either a bare property name or a mapping.
type bindingDef struct {
	Property string    `yaml:"property"`
	Source   string    `yaml:"source"`
	Default  yaml.Node `yaml:"default"`
	Optional bool      `yaml:"optional"`
}

func (b *bindingDef) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		b.Property = node.Value
		return nil
	}
	type plain bindingDef
	return node.Decode((*plain)(b))
}

func (b bindingDef) hasDefault() bool {
	return b.Default.Kind != 0
}

// LoadEffectFile parses an effect file. Shader file references resolve relative to the
// directory of path.
//
// Parameters:
//   - path: the effect YAML path
//
// Returns:
//   - *Effect: the parsed effect
//   - error: read or parse errors
func LoadEffectFile(path string) (*Effect, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read effect %s: %w", path, err)
	}
	return ParseEffect(src, os.DirFS(filepath.Dir(path)))
}

// ParseEffect builds an effect from its YAML definition. Each pass takes a WGSL source,
// either one shader holding both entry points or a vertex and a fragment shader, inline or
// read from fsys. Binding defaults are typed against the reflected program inputs.
//
// Parameters:
//   - src: the YAML document
//   - fsys: the file system shader files are read from, may be nil for inline shaders
//
// Returns:
//   - *Effect: the parsed effect
//   - error: an ErrInvalidEffect wrapped error on malformed input
func ParseEffect(src []byte, fsys fs.FS) (*Effect, error) {
	var def effectDef
	if err := yaml.Unmarshal(src, &def); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEffect, err)
	}
	if len(def.Passes) == 0 {
		return nil, fmt.Errorf("%w: effect %q has no passes", ErrInvalidEffect, def.Name)
	}

	passes := make([]*Pass, 0, len(def.Passes))
	for i, pd := range def.Passes {
		if pd.Name == "" {
			pd.Name = fmt.Sprintf("%s#%d", def.Name, i)
		}
		p, err := parsePass(pd, fsys)
		if err != nil {
			return nil, fmt.Errorf("%w: pass %s: %w", ErrInvalidEffect, pd.Name, err)
		}
		passes = append(passes, p)
	}
	return NewEffect(def.Name, passes...), nil
}

func parsePass(pd passDef, fsys fs.FS) (*Pass, error) {
	vs, err := shaderSource(fsys, pd.VertexShader, pd.VertexShaderFile, pd.Shader, pd.ShaderFile)
	if err != nil {
		return nil, fmt.Errorf("vertex shader: %w", err)
	}
	fsrc, err := shaderSource(fsys, pd.FragmentShader, pd.FragmentShaderFile, pd.Shader, pd.ShaderFile)
	if err != nil {
		return nil, fmt.Errorf("fragment shader: %w", err)
	}
	inputs, err := wgsl.Reflect(vs, fsrc)
	if err != nil {
		return nil, err
	}

	var options []PassBuilderOption
	for name, bd := range pd.Attributes {
		if bd.hasDefault() {
			return nil, fmt.Errorf("attribute %s: defaults are not supported", name)
		}
		b, err := bd.binding(name, nil)
		if err != nil {
			return nil, err
		}
		options = append(options, WithAttributeBinding(name, b))
	}
	for name, bd := range pd.Uniforms {
		convert := func(n *yaml.Node) (data.Value, error) {
			in, ok := inputs.Uniform(name)
			if !ok {
				return data.Value{}, fmt.Errorf("uniform %s: only block uniforms take defaults", name)
			}
			return uniformDefault(in.Type, n)
		}
		b, err := bd.binding(name, convert)
		if err != nil {
			return nil, err
		}
		options = append(options, WithUniformBinding(name, b))
	}
	for name, bd := range pd.States {
		state := name
		b, err := bd.binding(name, func(n *yaml.Node) (data.Value, error) { return stateValue(state, n) })
		if err != nil {
			return nil, err
		}
		options = append(options, WithStateBinding(name, b))
	}
	if pd.Indices != nil {
		b, err := pd.Indices.binding(IndicesProperty, nil)
		if err != nil {
			return nil, err
		}
		options = append(options, WithIndicesBinding(b))
	}

	defaults := DefaultStates()
	for name, node := range pd.DefaultStates {
		v, err := stateValue(name, &node)
		if err != nil {
			return nil, err
		}
		if err := defaults.Apply(name, v); err != nil {
			return nil, err
		}
	}
	options = append(options, WithDefaultStates(defaults))

	return NewPass(pd.Name, gpu.NewProgram(pd.Name, vs, fsrc), options...), nil
}

func (bd bindingDef) binding(name string, convert func(*yaml.Node) (data.Value, error)) (Binding, error) {
	b := Binding{PropertyName: bd.Property, Optional: bd.Optional}
	if b.PropertyName == "" {
		b.PropertyName = name
	}
	src, ok := data.ParseSource(bd.Source)
	if !ok {
		return b, fmt.Errorf("%s: unknown source %q", name, bd.Source)
	}
	b.Source = src
	if bd.hasDefault() && convert != nil {
		v, err := convert(&bd.Default)
		if err != nil {
			return b, err
		}
		b.Default = v
	}
	return b, nil
}

func shaderSource(fsys fs.FS, inline, file, sharedInline, sharedFile string) (string, error) {
	switch {
	case inline != "":
		return inline, nil
	case file != "":
		return readShader(fsys, file)
	case sharedInline != "":
		return sharedInline, nil
	case sharedFile != "":
		return readShader(fsys, sharedFile)
	}
	return "", errors.New("no source")
}

func readShader(fsys fs.FS, name string) (string, error) {
	if fsys == nil {
		return "", fmt.Errorf("%s: no file system to read from", name)
	}
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func uniformDefault(t gpu.InputType, n *yaml.Node) (data.Value, error) {
	if t.IsInt() {
		if t.Components() != 1 {
			return data.Value{}, fmt.Errorf("vector int defaults are not supported")
		}
		var b bool
		if n.Tag == "!!bool" && n.Decode(&b) == nil {
			return data.ValueOf(b), nil
		}
		var i int
		if err := n.Decode(&i); err != nil {
			return data.Value{}, err
		}
		return data.ValueOf(i), nil
	}
	return floatsValue(n, t.Components())
}

func floatsValue(n *yaml.Node, components int) (data.Value, error) {
	if components == 1 {
		var f float32
		if err := n.Decode(&f); err != nil {
			return data.Value{}, err
		}
		return data.ValueOf(f), nil
	}
	var vals []float32
	if err := n.Decode(&vals); err != nil {
		return data.Value{}, err
	}
	if len(vals) != components {
		return data.Value{}, fmt.Errorf("want %d components, got %d", components, len(vals))
	}
	switch components {
	case 2:
		return data.ValueOf(mgl32.Vec2(vals)), nil
	case 3:
		return data.ValueOf(mgl32.Vec3(vals)), nil
	case 4:
		return data.ValueOf(mgl32.Vec4(vals)), nil
	case 16:
		return data.ValueOf(mgl32.Mat4(vals)), nil
	}
	return data.Value{}, fmt.Errorf("unsupported component count %d", components)
}

func stateValue(name string, n *yaml.Node) (data.Value, error) {
	var v data.Value
	var err error
	switch name {
	case StatePriority:
		v, err = floatsValue(n, 1)
	case StateZSorted, StateColorMask, StateDepthMask, StateScissorTest:
		var b bool
		err = n.Decode(&b)
		v = data.ValueOf(b)
	case StateStencilReference, StateStencilMask:
		var i int
		err = n.Decode(&i)
		v = data.ValueOf(i)
	case StateScissorBox:
		v, err = floatsValue(n, 4)
	default:
		var s string
		err = n.Decode(&s)
		v = data.ValueOf(s)
	}
	if err != nil {
		return data.Value{}, fmt.Errorf("state %s: %w", name, err)
	}
	scratch := DefaultStates()
	if err := scratch.Apply(name, v); err != nil {
		return data.Value{}, err
	}
	return v, nil
}
