package geometry

import "github.com/go-gl/mathgl/mgl32"

// cubeFaces holds the outward normal and the two in-plane axes of each cube face.
// u x v == normal so the face winds counter-clockwise seen from outside.
var cubeFaces = [6][3]mgl32.Vec3{
	{{1, 0, 0}, {0, 0, -1}, {0, 1, 0}},
	{{-1, 0, 0}, {0, 0, 1}, {0, 1, 0}},
	{{0, 1, 0}, {1, 0, 0}, {0, 0, -1}},
	{{0, -1, 0}, {1, 0, 0}, {0, 0, 1}},
	{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}},
	{{0, 0, -1}, {-1, 0, 0}, {0, 1, 0}},
}

// quadCorners are the (u, v) signs of a face's corners with their texture coordinates.
var quadCorners = [4][4]float32{
	{-1, -1, 0, 1},
	{1, -1, 1, 1},
	{1, 1, 1, 0},
	{-1, 1, 0, 0},
}

// Cube creates a unit cube centered on the origin with 24 vertices in DefaultLayout,
// so each face has its own normals and texture coordinates.
//
// Parameters:
//   - options: variadic list of GeometryBuilderOption functions, the layout option is ignored
//
// Returns:
//   - Geometry: the cube geometry
func Cube(options ...GeometryBuilderOption) Geometry {
	vertices := make([]float32, 0, 24*8)
	indices := make([]uint32, 0, 36)
	for i, face := range cubeFaces {
		vertices = appendFace(vertices, face[0].Mul(0.5), face[0], face[1].Mul(0.5), face[2].Mul(0.5))
		base := uint32(i * 4)
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return NewGeometry(vertices, indices, append([]GeometryBuilderOption{WithName("cube")}, withDefaultLayout(options)...)...)
}

// Quad creates a unit quad in the XY plane facing +Z, centered on the origin.
//
// Parameters:
//   - options: variadic list of GeometryBuilderOption functions, the layout option is ignored
//
// Returns:
//   - Geometry: the quad geometry
func Quad(options ...GeometryBuilderOption) Geometry {
	vertices := appendFace(make([]float32, 0, 4*8), mgl32.Vec3{}, mgl32.Vec3{0, 0, 1},
		mgl32.Vec3{0.5, 0, 0}, mgl32.Vec3{0, 0.5, 0})
	indices := []uint32{0, 1, 2, 0, 2, 3}
	return NewGeometry(vertices, indices, append([]GeometryBuilderOption{WithName("quad")}, withDefaultLayout(options)...)...)
}

// appendFace appends the four corners of a face centered on center and spanned by u and v.
func appendFace(dst []float32, center, normal, u, v mgl32.Vec3) []float32 {
	for _, c := range quadCorners {
		p := center.Add(u.Mul(c[0])).Add(v.Mul(c[1]))
		dst = append(dst,
			p.X(), p.Y(), p.Z(),
			normal.X(), normal.Y(), normal.Z(),
			c[2], c[3],
		)
	}
	return dst
}

// withDefaultLayout pins the layout the primitive data is generated in.
func withDefaultLayout(options []GeometryBuilderOption) []GeometryBuilderOption {
	return append(options, WithLayout(DefaultLayout...))
}
