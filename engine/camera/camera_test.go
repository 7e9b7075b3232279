package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/data"
	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
	"github.com/Carmen-Shannon/oxy-scene/engine/transform"
)

func cameraNode(t *testing.T, options ...CameraBuilderOption) (scene.Node, *Camera, *transform.Transform) {
	t.Helper()
	n := scene.NewNode("camera")
	tr := transform.NewTransform()
	cam := NewCamera(options...)
	require.NoError(t, n.AddComponent(tr))
	require.NoError(t, n.AddComponent(cam))
	return n, cam, tr
}

func TestCameraPublishesMatrices(t *testing.T) {
	n, cam, _ := cameraNode(t, WithAspect(2))

	for _, name := range []string{ViewMatrixProperty, ProjectionMatrixProperty, WorldToScreenMatrixProperty, EyePositionProperty} {
		assert.True(t, n.Data().Has(name), name)
	}
	assert.Equal(t, common.PerspectiveZO(cam.Fov(), 2, 0.1, 100), cam.ProjectionMatrix())
	assert.Equal(t, mgl32.Ident4(), cam.ViewMatrix())
}

func TestCameraFollowsTransform(t *testing.T) {
	n, cam, tr := cameraNode(t)
	var changes int
	n.Data().PropertyChanged(WorldToScreenMatrixProperty).Connect(func(data.PropertyEvent) { changes++ })

	tr.LookAt(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})

	assert.Equal(t, 1, changes)
	assert.True(t, cam.EyePosition().ApproxEqualThreshold(mgl32.Vec3{0, 0, 5}, 1e-5))
	assert.True(t, cam.ViewMatrix().ApproxEqualThreshold(mgl32.LookAtV(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}), 1e-5))

	origin := cam.WorldToScreenMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, 0, origin.X()/origin.W(), 1e-5)
	assert.InDelta(t, 0, origin.Y()/origin.W(), 1e-5)
}

func TestCameraFollowsParentTransform(t *testing.T) {
	root := scene.NewNode("root")
	rootTr := transform.NewTransform()
	require.NoError(t, root.AddComponent(rootTr))
	n, cam, _ := cameraNode(t)
	require.NoError(t, root.AddChild(n))

	rootTr.SetMatrix(mgl32.Translate3D(0, 3, 0))

	assert.Equal(t, mgl32.Vec3{0, 3, 0}, cam.EyePosition())
}

func TestCameraFrustum(t *testing.T) {
	_, cam, tr := cameraNode(t)
	tr.LookAt(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})

	f := cam.Frustum()
	assert.True(t, f.ContainsSphere(mgl32.Vec3{}, 0))
	assert.False(t, f.ContainsSphere(mgl32.Vec3{0, 0, 10}, 0))
	assert.False(t, f.ContainsSphere(mgl32.Vec3{0, 0, -200}, 0))
	assert.True(t, f.ContainsSphere(mgl32.Vec3{0, 0, 10}, 6))
}

func TestCameraAspect(t *testing.T) {
	_, cam, _ := cameraNode(t)
	cam.SetAspect(16.0 / 9)

	assert.Equal(t, common.PerspectiveZO(cam.Fov(), 16.0/9, cam.Near(), cam.Far()), cam.ProjectionMatrix())
}

func TestCameraWithoutTransform(t *testing.T) {
	n := scene.NewNode("bare")
	cam := NewCamera()
	require.NoError(t, n.AddComponent(cam))
	assert.Equal(t, mgl32.Vec3{}, cam.EyePosition())

	tr := transform.NewTransform(transform.WithPosition(1, 2, 3))
	require.NoError(t, n.AddComponent(tr))
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, cam.EyePosition())

	require.NoError(t, n.RemoveComponent(cam))
	assert.False(t, n.Data().Has(ViewMatrixProperty))
}

func TestOrbitControllerDrivesTransform(t *testing.T) {
	n, cam, _ := cameraNode(t)
	ctrl := NewOrbitController(WithRadius(5), WithElevation(0), WithPivot(mgl32.Vec3{1, 0, 0}))
	require.NoError(t, n.AddComponent(ctrl))

	assert.True(t, cam.EyePosition().ApproxEqualThreshold(mgl32.Vec3{1, 0, 5}, 1e-5))

	ctrl.Zoom(2)
	assert.Equal(t, float32(3), ctrl.Radius())
	assert.True(t, cam.EyePosition().ApproxEqualThreshold(mgl32.Vec3{1, 0, 3}, 1e-5))

	ctrl.PanRight(10)
	assert.True(t, ctrl.Pivot().ApproxEqualThreshold(mgl32.Vec3{2, 0, 0}, 1e-5))
	assert.True(t, cam.EyePosition().ApproxEqualThreshold(mgl32.Vec3{2, 0, 3}, 1e-5))
}

func TestOrbitControllerClamps(t *testing.T) {
	ctrl := NewOrbitController(WithRadiusBounds(2, 4), WithElevationBounds(-0.5, 0.5))

	ctrl.SetRadius(100)
	assert.Equal(t, float32(4), ctrl.Radius())
	ctrl.Zoom(100)
	assert.Equal(t, float32(2), ctrl.Radius())
	ctrl.SetElevation(3)
	assert.Equal(t, float32(0.5), ctrl.Elevation())
	ctrl.OrbitDown()
	assert.InDelta(t, 0.47, ctrl.Elevation(), 1e-5)
}

func TestSecondCameraIsRejected(t *testing.T) {
	n, cam, _ := cameraNode(t)
	other := NewCamera(WithFov(1))

	assert.ErrorIs(t, n.AddComponent(other), data.ErrDuplicatePropertyName)
	assert.Nil(t, other.Target())
	got, ok := scene.ComponentOf[*Camera](n)
	require.True(t, ok)
	assert.Same(t, cam, got)
}
