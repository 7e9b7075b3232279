package camera

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
	"github.com/Carmen-Shannon/oxy-scene/engine/transform"
)

// OrbitController is a component that places its node on a sphere around a pivot point.
// Orbit methods change the spherical coordinates (radius, azimuth, elevation); pan methods
// translate both the position and the pivot along the local axes, keeping the orbit.
//
// The controller writes the resulting look-at placement into the transform.Transform of
// its node, so a Camera on the same node follows it.
type OrbitController struct {
	scene.BaseComponent

	position mgl32.Vec3
	target   mgl32.Vec3

	// Spherical coordinates (offset from target)
	radius    float32
	azimuth   float32 // Horizontal angle around Y axis
	elevation float32 // Vertical angle from horizontal plane

	minRadius    float32
	maxRadius    float32
	minElevation float32
	maxElevation float32

	orbitSpeed       float32
	mouseSensitivity float32
	zoomSpeed        float32
	panSpeed         float32
}

var _ scene.Component = &OrbitController{}

// NewOrbitController creates a new orbit controller with sensible defaults.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - *OrbitController: the newly created controller
func NewOrbitController(options ...OrbitControllerOption) *OrbitController {
	cc := &OrbitController{
		radius:    10.0,
		azimuth:   0.0,
		elevation: math32.Pi / 6,

		minRadius:    1.0,
		maxRadius:    200.0,
		minElevation: -math32.Pi/2 + 0.1,
		maxElevation: math32.Pi/2 - 0.1,

		orbitSpeed:       0.03,
		mouseSensitivity: 0.005,
		zoomSpeed:        1.0,
		panSpeed:         0.1,
	}
	for _, option := range options {
		option(cc)
	}
	cc.updatePosition()
	return cc
}

// --- internal helpers ---

// updatePosition recomputes the position from spherical coordinates and moves the node.
// Must be called whenever radius, azimuth, elevation, or target changes.
func (cc *OrbitController) updatePosition() {
	cosElev, sinElev := math32.Cos(cc.elevation), math32.Sin(cc.elevation)
	cosAzim, sinAzim := math32.Cos(cc.azimuth), math32.Sin(cc.azimuth)

	cc.position = cc.target.Add(mgl32.Vec3{
		cc.radius * cosElev * sinAzim,
		cc.radius * sinElev,
		cc.radius * cosElev * cosAzim,
	})
	cc.apply()
}

// apply writes the look-at placement into the node's Transform.
func (cc *OrbitController) apply() {
	target := cc.Target()
	if target == nil {
		return
	}
	tr, ok := scene.ComponentOf[*transform.Transform](target)
	if !ok {
		common.Logger("OrbitController").Debug("node has no transform", "node", target.Name())
		return
	}
	tr.LookAt(cc.position, cc.target, mgl32.Vec3{0, 1, 0})
}

// localAxes computes the local right, up and forward axes consistent with the look-at
// matrix. If position and target coincide, all returned axes are zero.
func (cc *OrbitController) localAxes() (right, up, forward mgl32.Vec3) {
	backward := cc.position.Sub(cc.target)
	if backward.Len() < 1e-8 {
		return
	}
	backward = backward.Normalize()

	right = mgl32.Vec3{0, 1, 0}.Cross(backward)
	if right.Len() < 1e-8 {
		return mgl32.Vec3{}, mgl32.Vec3{}, mgl32.Vec3{}
	}
	right = right.Normalize()
	up = backward.Cross(right)
	forward = backward.Mul(-1)
	return
}

func (cc *OrbitController) pan(axis mgl32.Vec3, delta float32) {
	offset := axis.Mul(delta * cc.panSpeed)
	cc.target = cc.target.Add(offset)
	cc.position = cc.position.Add(offset)
	cc.apply()
}

func (cc *OrbitController) OnAttach(scene.Node) error {
	cc.apply()
	return nil
}

func (cc *OrbitController) OnClone() scene.Component {
	clone := *cc
	clone.BaseComponent = scene.BaseComponent{}
	return &clone
}

// Position returns the world-space position the controller places its node at.
func (cc *OrbitController) Position() mgl32.Vec3 {
	return cc.position
}

// Pivot returns the look-at point.
func (cc *OrbitController) Pivot() mgl32.Vec3 {
	return cc.target
}

// SetPivot sets the look-at point and recomputes the position from spherical coordinates.
//
// Parameters:
//   - pivot: world-space coordinates
func (cc *OrbitController) SetPivot(pivot mgl32.Vec3) {
	cc.target = pivot
	cc.updatePosition()
}

// Zoom adjusts the distance to the pivot. Positive delta zooms in.
//
// Parameters:
//   - delta: zoom amount scaled by the zoom speed
func (cc *OrbitController) Zoom(delta float32) {
	cc.SetRadius(cc.radius - delta*cc.zoomSpeed)
}

// OrbitLeft rotates left around the pivot by one orbit speed step.
func (cc *OrbitController) OrbitLeft() {
	cc.SetAzimuth(cc.azimuth - cc.orbitSpeed)
}

// OrbitRight rotates right around the pivot by one orbit speed step.
func (cc *OrbitController) OrbitRight() {
	cc.SetAzimuth(cc.azimuth + cc.orbitSpeed)
}

// OrbitUp tilts upward by one orbit speed step, clamped to the max elevation.
func (cc *OrbitController) OrbitUp() {
	cc.SetElevation(cc.elevation + cc.orbitSpeed)
}

// OrbitDown tilts downward by one orbit speed step, clamped to the min elevation.
func (cc *OrbitController) OrbitDown() {
	cc.SetElevation(cc.elevation - cc.orbitSpeed)
}

// Rotate orbits by a cursor movement scaled by the mouse sensitivity.
//
// Parameters:
//   - dx: horizontal cursor delta in pixels
//   - dy: vertical cursor delta in pixels
func (cc *OrbitController) Rotate(dx, dy float32) {
	cc.azimuth -= dx * cc.mouseSensitivity
	cc.SetElevation(cc.elevation + dy*cc.mouseSensitivity)
}

// Radius returns the current distance from the pivot.
func (cc *OrbitController) Radius() float32 {
	return cc.radius
}

// SetRadius sets the distance from the pivot, clamped to the radius bounds.
func (cc *OrbitController) SetRadius(radius float32) {
	cc.radius = common.Clamp(radius, cc.minRadius, cc.maxRadius)
	cc.updatePosition()
}

// Azimuth returns the horizontal angle around the Y axis in radians.
func (cc *OrbitController) Azimuth() float32 {
	return cc.azimuth
}

// SetAzimuth sets the horizontal angle around the Y axis in radians.
func (cc *OrbitController) SetAzimuth(azimuth float32) {
	cc.azimuth = azimuth
	cc.updatePosition()
}

// Elevation returns the vertical angle from the horizontal plane in radians.
func (cc *OrbitController) Elevation() float32 {
	return cc.elevation
}

// SetElevation sets the vertical angle, clamped to the elevation bounds.
func (cc *OrbitController) SetElevation(elevation float32) {
	cc.elevation = common.Clamp(elevation, cc.minElevation, cc.maxElevation)
	cc.updatePosition()
}

// PanRight moves the position and pivot along the local right axis.
func (cc *OrbitController) PanRight(delta float32) {
	right, _, _ := cc.localAxes()
	cc.pan(right, delta)
}

// PanUp moves the position and pivot along the local up axis.
func (cc *OrbitController) PanUp(delta float32) {
	_, up, _ := cc.localAxes()
	cc.pan(up, delta)
}

// PanForward moves the position and pivot along the view direction.
func (cc *OrbitController) PanForward(delta float32) {
	_, _, forward := cc.localAxes()
	cc.pan(forward, delta)
}
