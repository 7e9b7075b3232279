package common

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

// lookDownNegZ is a 90 degree camera at the origin with near 0.1 and far 100.
func lookDownNegZ() Frustum {
	proj := PerspectiveZO(math32.Pi/2, 1, 0.1, 100)
	view := mgl32.LookAtV(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0})
	return ExtractFrustum(proj.Mul4(view))
}

func TestFrustumContainsSphere(t *testing.T) {
	f := lookDownNegZ()

	tests := []struct {
		name   string
		center mgl32.Vec3
		radius float32
		want   bool
	}{
		{"in front", mgl32.Vec3{0, 0, -10}, 0, true},
		{"behind", mgl32.Vec3{0, 0, 10}, 0, false},
		{"beyond far", mgl32.Vec3{0, 0, -200}, 0, false},
		{"closer than near", mgl32.Vec3{0, 0, -0.05}, 0, false},
		{"left of the view", mgl32.Vec3{-50, 0, -10}, 0, false},
		{"large sphere reaching in", mgl32.Vec3{-50, 0, -10}, 50, true},
		{"above the view", mgl32.Vec3{0, 30, -10}, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.ContainsSphere(tt.center, tt.radius))
		})
	}
}

func TestFrustumPlanesAreNormalized(t *testing.T) {
	for i, p := range lookDownNegZ().Planes {
		assert.InDelta(t, 1.0, p.Normal.Len(), 1e-5, "plane %d", i)
	}
}
