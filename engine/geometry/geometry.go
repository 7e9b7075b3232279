package geometry

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/oxy-scene/engine/data"
	"github.com/Carmen-Shannon/oxy-scene/engine/gpu"
)

// Property names published by geometries.
const (
	PositionProperty       = "position"
	NormalProperty         = "normal"
	UVProperty             = "uv"
	IndicesProperty        = "indices"
	CenterPositionProperty = "centerPosition"
	BoundingRadiusProperty = "boundingRadius"
)

// AttributeLayout describes one attribute of an interleaved vertex.
type AttributeLayout struct {
	// Name is the property name the attribute is published under.
	Name string

	// Size is the number of float components.
	Size int
}

// DefaultLayout is position (3), normal (3), uv (2), the layout of the built-in primitives.
var DefaultLayout = []AttributeLayout{
	{Name: PositionProperty, Size: 3},
	{Name: NormalProperty, Size: 3},
	{Name: UVProperty, Size: 2},
}

// geometry is the implementation of the Geometry interface.
type geometry struct {
	name     string
	layout   []AttributeLayout
	vertices *gpu.VertexBuffer
	indices  *gpu.IndexBuffer
	provider *data.Provider
}

// Geometry defines the interface for indexed triangle geometry. Every vertex attribute is
// published as a gpu.VertexAttribute property over one interleaved buffer, next to the
// index buffer and the bounding sphere (centerPosition, boundingRadius) in local space.
type Geometry interface {
	// Name retrieves the geometry identifier.
	//
	// Returns:
	//   - string: the name of the geometry
	Name() string

	// Provider retrieves the data provider holding the attribute, index and bounds properties.
	//
	// Returns:
	//   - *data.Provider: the provider a Surface registers into its node container
	Provider() *data.Provider

	// Layout retrieves the interleaved vertex layout.
	//
	// Returns:
	//   - []AttributeLayout: the attributes in vertex order
	Layout() []AttributeLayout

	// VertexBuffer retrieves the interleaved vertex buffer.
	//
	// Returns:
	//   - *gpu.VertexBuffer: the shared vertex buffer
	VertexBuffer() *gpu.VertexBuffer

	// IndexBuffer retrieves the triangle index buffer.
	//
	// Returns:
	//   - *gpu.IndexBuffer: the shared index buffer
	IndexBuffer() *gpu.IndexBuffer

	// Attribute retrieves one vertex attribute by name.
	//
	// Parameters:
	//   - name: the attribute name, e.g. "position"
	//
	// Returns:
	//   - gpu.VertexAttribute: the attribute view over the vertex buffer
	//   - bool: false if the layout has no such attribute
	Attribute(name string) (gpu.VertexAttribute, bool)

	// CenterPosition retrieves the centroid of the vertex positions.
	//
	// Returns:
	//   - mgl32.Vec3: the centroid in local space
	CenterPosition() mgl32.Vec3

	// BoundingRadius retrieves the distance from the centroid to the farthest vertex.
	//
	// Returns:
	//   - float32: the bounding sphere radius in local space
	BoundingRadius() float32

	// SetVertexData replaces the vertex data, re-uploads it when live and recomputes the
	// bounds. The vertex count must not change while the geometry is drawn.
	//
	// Parameters:
	//   - vertices: the new interleaved vertex data
	//
	// Returns:
	//   - error: an error if the data does not fit the layout or the live buffer
	SetVertexData(vertices []float32) error
}

var _ Geometry = &geometry{}

// NewGeometry creates a Geometry over interleaved vertex data. Panics when the data does not
// divide into whole vertices of the layout, or an index points past the last vertex.
//
// Parameters:
//   - vertices: the interleaved vertex data
//   - indices: the triangle list indices
//   - options: variadic list of GeometryBuilderOption functions to configure the geometry
//
// Returns:
//   - Geometry: a new Geometry instance
func NewGeometry(vertices []float32, indices []uint32, options ...GeometryBuilderOption) Geometry {
	g := &geometry{
		name:   "geometry",
		layout: DefaultLayout,
	}
	for _, opt := range options {
		opt(g)
	}

	stride := vertexSize(g.layout)
	if err := checkVertices(vertices, stride); err != nil {
		panic(fmt.Sprintf("geometry %s: %v", g.name, err))
	}
	numVertices := uint32(len(vertices) / stride)
	for _, i := range indices {
		if i >= numVertices {
			panic(fmt.Sprintf("geometry %s: index %d out of range for %d vertices", g.name, i, numVertices))
		}
	}

	g.vertices = gpu.NewVertexBuffer(vertices, stride)
	g.indices = gpu.NewIndexBuffer(indices)
	g.provider = data.NewProvider("geometry:" + g.name)

	offset := 0
	for _, attr := range g.layout {
		g.mustSet(attr.Name, data.ValueOf(gpu.VertexAttribute{
			Buffer: g.vertices,
			Name:   attr.Name,
			Size:   attr.Size,
			Offset: offset,
		}))
		offset += attr.Size
	}
	g.mustSet(IndicesProperty, data.ValueOf(g.indices))
	g.updateBounds()
	return g
}

func vertexSize(layout []AttributeLayout) int {
	n := 0
	for _, attr := range layout {
		n += attr.Size
	}
	return n
}

func checkVertices(vertices []float32, stride int) error {
	if stride <= 0 {
		return fmt.Errorf("empty vertex layout")
	}
	if len(vertices)%stride != 0 {
		return fmt.Errorf("%d floats is not a multiple of the %d float vertex size", len(vertices), stride)
	}
	return nil
}

// mustSet writes a property on the unregistered provider, which cannot collide.
func (g *geometry) mustSet(name string, v data.Value) {
	if err := g.provider.SetValue(name, v); err != nil {
		panic(fmt.Sprintf("geometry %s: %v", g.name, err))
	}
}

func (g *geometry) Name() string {
	return g.name
}

func (g *geometry) Provider() *data.Provider {
	return g.provider
}

func (g *geometry) Layout() []AttributeLayout {
	return g.layout
}

func (g *geometry) VertexBuffer() *gpu.VertexBuffer {
	return g.vertices
}

func (g *geometry) IndexBuffer() *gpu.IndexBuffer {
	return g.indices
}

func (g *geometry) Attribute(name string) (gpu.VertexAttribute, bool) {
	for _, attr := range g.layout {
		if attr.Name == name {
			a, err := data.Get[gpu.VertexAttribute](g.provider, name)
			return a, err == nil
		}
	}
	return gpu.VertexAttribute{}, false
}

func (g *geometry) CenterPosition() mgl32.Vec3 {
	c, _ := data.Get[mgl32.Vec3](g.provider, CenterPositionProperty)
	return c
}

func (g *geometry) BoundingRadius() float32 {
	r, _ := data.Get[float32](g.provider, BoundingRadiusProperty)
	return r
}

func (g *geometry) SetVertexData(vertices []float32) error {
	if err := checkVertices(vertices, g.vertices.VertexSize()); err != nil {
		return fmt.Errorf("geometry %s: %w", g.name, err)
	}
	if err := g.vertices.Update(vertices); err != nil {
		return fmt.Errorf("geometry %s: %w", g.name, err)
	}
	for _, attr := range g.layout {
		if err := g.provider.Touch(attr.Name); err != nil {
			return err
		}
	}
	g.updateBounds()
	return nil
}

// updateBounds publishes the centroid of the positions and the radius of the sphere around
// it. Geometries without a position attribute are centered on the origin.
func (g *geometry) updateBounds() {
	var center mgl32.Vec3
	var radius float32

	pos, ok := g.Attribute(PositionProperty)
	if ok && pos.Size >= 3 && g.vertices.NumVertices() > 0 {
		stride := pos.Stride()
		buf := g.vertices.Data()
		n := g.vertices.NumVertices()
		for i := 0; i < n; i++ {
			o := i*stride + pos.Offset
			center = center.Add(mgl32.Vec3{buf[o], buf[o+1], buf[o+2]})
		}
		center = center.Mul(1 / float32(n))
		for i := 0; i < n; i++ {
			o := i*stride + pos.Offset
			d := mgl32.Vec3{buf[o], buf[o+1], buf[o+2]}.Sub(center)
			radius = math32.Max(radius, math32.Sqrt(d.Dot(d)))
		}
	}

	if err := g.provider.SetValue(CenterPositionProperty, data.ValueOf(center)); err != nil {
		panic(fmt.Sprintf("geometry %s: %v", g.name, err))
	}
	if err := g.provider.SetValue(BoundingRadiusProperty, data.ValueOf(radius)); err != nil {
		panic(fmt.Sprintf("geometry %s: %v", g.name, err))
	}
}
