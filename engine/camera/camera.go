package camera

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/data"
	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
	"github.com/Carmen-Shannon/oxy-scene/engine/signal"
	"github.com/Carmen-Shannon/oxy-scene/engine/transform"
)

// Property names published by a Camera into its node container. Passes read them with
// renderer-scope bindings when the camera shares its node with a renderer.
const (
	ViewMatrixProperty          = "viewMatrix"
	ProjectionMatrixProperty    = "projectionMatrix"
	WorldToScreenMatrixProperty = "worldToScreenMatrix"
	EyePositionProperty         = "eyePosition"
)

// Camera is a perspective camera component. The view matrix is the inverse of the node's
// modelToWorldMatrix, so the camera is placed by a transform.Transform on the same node
// and follows it whenever the transform or one of its ancestors changes.
type Camera struct {
	scene.BaseComponent

	fov    float32
	aspect float32
	near   float32
	far    float32

	provider *data.Provider
	slots    signal.Slots
}

var _ scene.Component = &Camera{}

// NewCamera creates a new Camera with default perspective settings: 45 degree vertical
// field of view, aspect 1, near 0.1 and far 100.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - *Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) *Camera {
	c := &Camera{
		fov:      45.0 * (math.Pi / 180.0),
		aspect:   1.0,
		near:     0.1,
		far:      100.0,
		provider: data.NewProvider("camera"),
	}
	for _, option := range options {
		option(c)
	}
	c.updateMatrices(mgl32.Ident4())
	return c
}

// Provider returns the provider holding the camera matrices.
func (c *Camera) Provider() *data.Provider {
	return c.provider
}

// Fov returns the vertical field of view in radians.
func (c *Camera) Fov() float32 {
	return c.fov
}

// Aspect returns the aspect ratio (width / height).
func (c *Camera) Aspect() float32 {
	return c.aspect
}

// Near returns the near clipping plane distance.
func (c *Camera) Near() float32 {
	return c.near
}

// Far returns the far clipping plane distance.
func (c *Camera) Far() float32 {
	return c.far
}

// SetFov sets the field of view in radians and recomputes the matrices.
//
// Parameters:
//   - fov: field of view in radians
func (c *Camera) SetFov(fov float32) {
	c.fov = fov
	c.update()
}

// SetAspect sets the aspect ratio (width / height) and recomputes the matrices.
// The engine calls it when the window is resized.
//
// Parameters:
//   - aspect: the aspect ratio
func (c *Camera) SetAspect(aspect float32) {
	c.aspect = aspect
	c.update()
}

// SetNear sets the near clipping plane distance and recomputes the matrices.
func (c *Camera) SetNear(near float32) {
	c.near = near
	c.update()
}

// SetFar sets the far clipping plane distance and recomputes the matrices.
func (c *Camera) SetFar(far float32) {
	c.far = far
	c.update()
}

// ViewMatrix returns the world-to-view matrix.
func (c *Camera) ViewMatrix() mgl32.Mat4 {
	return c.mat4(ViewMatrixProperty)
}

// ProjectionMatrix returns the view-to-clip matrix.
func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	return c.mat4(ProjectionMatrixProperty)
}

// WorldToScreenMatrix returns projection * view.
func (c *Camera) WorldToScreenMatrix() mgl32.Mat4 {
	return c.mat4(WorldToScreenMatrixProperty)
}

// EyePosition returns the camera position in world space.
func (c *Camera) EyePosition() mgl32.Vec3 {
	v, _ := data.Get[mgl32.Vec3](c.provider, EyePositionProperty)
	return v
}

// Frustum returns the world-space view frustum used for culling.
//
// Returns:
//   - common.Frustum: the frustum planes of WorldToScreenMatrix
func (c *Camera) Frustum() common.Frustum {
	return common.ExtractFrustum(c.WorldToScreenMatrix())
}

func (c *Camera) mat4(name string) mgl32.Mat4 {
	m, _ := data.Get[mgl32.Mat4](c.provider, name)
	return m
}

func (c *Camera) OnAttach(target scene.Node) error {
	container := target.Data()
	if err := container.AddProvider(c.provider); err != nil {
		return fmt.Errorf("attach camera: %w", err)
	}
	onWorld := func(e data.PropertyEvent) {
		if e.Name == transform.ModelToWorldMatrixProperty {
			c.update()
		}
	}
	c.slots.Add(
		container.PropertyChanged(transform.ModelToWorldMatrixProperty).Connect(func(data.PropertyEvent) { c.update() }),
		container.PropertyAdded().Connect(onWorld),
		container.PropertyRemoved().Connect(onWorld),
	)
	c.update()
	return nil
}

func (c *Camera) OnDetach(target scene.Node) {
	c.slots.DisconnectAll()
	if target.Data().HasProvider(c.provider) {
		_ = target.Data().RemoveProvider(c.provider)
	}
}

func (c *Camera) OnClone() scene.Component {
	return NewCamera(WithFov(c.fov), WithAspect(c.aspect), WithNear(c.near), WithFar(c.far))
}

// update reads the node's world matrix, identity when the node has no transform.
func (c *Camera) update() {
	world := mgl32.Ident4()
	if target := c.Target(); target != nil {
		if m, err := data.Get[mgl32.Mat4](target.Data(), transform.ModelToWorldMatrixProperty); err == nil {
			world = m
		}
	}
	c.updateMatrices(world)
}

// updateMatrices recalculates the view, projection and world-to-screen matrices from the
// camera's world placement.
func (c *Camera) updateMatrices(world mgl32.Mat4) {
	view := world.Inv()
	projection := common.PerspectiveZO(c.fov, c.aspect, c.near, c.far)

	set := func(name string, v data.Value) {
		if err := c.provider.SetValue(name, v); err != nil {
			common.Logger("Camera").Error("matrix not published", "property", name, "err", err)
		}
	}
	set(ViewMatrixProperty, data.ValueOf(view))
	set(ProjectionMatrixProperty, data.ValueOf(projection))
	set(WorldToScreenMatrixProperty, data.ValueOf(projection.Mul4(view)))
	set(EyePositionProperty, data.ValueOf(world.Col(3).Vec3()))
}
