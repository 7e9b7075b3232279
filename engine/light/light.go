package light

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/data"
	"github.com/Carmen-Shannon/oxy-scene/engine/scene"
	"github.com/Carmen-Shannon/oxy-scene/engine/signal"
	"github.com/Carmen-Shannon/oxy-scene/engine/transform"
)

// LightType identifies the kind of light source.
type LightType int

const (
	// LightTypeAmbient represents a uniform light with no position or direction.
	LightTypeAmbient LightType = iota

	// LightTypeDirectional represents a light with no position, only direction.
	// Used for large distant sources like the sun or moon. Affects all fragments
	// uniformly with no distance attenuation.
	LightTypeDirectional

	// LightTypePoint represents a light that emits in all directions from a position.
	// Attenuates with distance up to a configurable range.
	LightTypePoint

	// LightTypeSpot represents a light that emits in a cone from a position along a direction.
	// Attenuates with both distance and angle from the cone axis, controlled by inner and
	// outer cone angles.
	LightTypeSpot
)

// ArrayName returns the data array the light type is published under, e.g.
// pointLights[0].position.
func (t LightType) ArrayName() string {
	switch t {
	case LightTypeAmbient:
		return "ambientLights"
	case LightTypeDirectional:
		return "directionalLights"
	case LightTypePoint:
		return "pointLights"
	default:
		return "spotLights"
	}
}

// Property names of one light entry. Which ones a light publishes depends on its type.
const (
	ColorProperty               = "color"
	AmbientProperty             = "ambient"
	DiffuseProperty             = "diffuse"
	SpecularProperty            = "specular"
	PositionProperty            = "position"
	DirectionProperty           = "direction"
	AttenuationDistanceProperty = "attenuationDistance"
	InnerConeProperty           = "innerCone"
	OuterConeProperty           = "outerCone"
)

// Light is a light source component. While enabled, it registers an array provider into
// the data container of its scene root, so any pass can bind e.g.
// directionalLights[0].direction no matter where the light sits in the tree. Position and
// direction are published in world space and follow the node's transform.
type Light struct {
	scene.BaseComponent

	lightType  LightType
	position   mgl32.Vec3
	direction  mgl32.Vec3
	color      mgl32.Vec3
	intensity  float32
	specular   float32
	lightRange float32
	innerCone  float32 // stored as cos(angle in radians)
	outerCone  float32 // stored as cos(angle in radians)
	enabled    bool

	provider *data.Provider
	root     scene.Node
	slots    signal.Slots
	logger   *slog.Logger
}

var _ scene.Component = &Light{}

// NewLight creates a new Light of the specified type with sensible defaults and
// any provided options applied.
//
// Parameters:
//   - lightType: the kind of light to create
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - *Light: a new detached Light
func NewLight(lightType LightType, opts ...LightBuilderOption) *Light {
	l := &Light{
		lightType:  lightType,
		direction:  mgl32.Vec3{0, -1, 0},
		color:      mgl32.Vec3{1, 1, 1},
		intensity:  1.0,
		specular:   1.0,
		lightRange: 10.0,
		innerCone:  0.9063, // cos(25°)
		outerCone:  0.8192, // cos(35°)
		enabled:    true,
		provider:   data.NewArrayProvider(lightType.ArrayName()),
		logger:     common.Logger("Light"),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.publish()
	return l
}

// Type returns the kind of light source.
func (l *Light) Type() LightType {
	return l.lightType
}

// Provider returns the array provider holding the light entry.
func (l *Light) Provider() *data.Provider {
	return l.provider
}

// Position returns the position of the light relative to its node.
func (l *Light) Position() mgl32.Vec3 {
	return l.position
}

// Direction returns the normalized direction of the light relative to its node.
func (l *Light) Direction() mgl32.Vec3 {
	return l.direction
}

// Color returns the RGB color of the light.
func (l *Light) Color() mgl32.Vec3 {
	return l.color
}

// Intensity returns the ambient or diffuse intensity, depending on the type.
func (l *Light) Intensity() float32 {
	return l.intensity
}

// Range returns the attenuation distance of point and spot lights.
func (l *Light) Range() float32 {
	return l.lightRange
}

// Enabled returns whether the light is registered into the scene root.
func (l *Light) Enabled() bool {
	return l.enabled
}

// SetPosition sets the position of the light relative to its node.
//
// Parameters:
//   - x, y, z: position components
func (l *Light) SetPosition(x, y, z float32) {
	l.position = mgl32.Vec3{x, y, z}
	l.publish()
}

// SetDirection sets the direction of the light and normalizes it.
//
// Parameters:
//   - x, y, z: direction components (will be normalized)
func (l *Light) SetDirection(x, y, z float32) {
	l.direction = normalize3(x, y, z)
	l.publish()
}

// SetColor sets the RGB color of the light.
//
// Parameters:
//   - r, g, b: color components
func (l *Light) SetColor(r, g, b float32) {
	l.color = mgl32.Vec3{r, g, b}
	l.publish()
}

// SetIntensity sets the scalar intensity multiplier.
func (l *Light) SetIntensity(intensity float32) {
	l.intensity = intensity
	l.publish()
}

// SetRange sets the maximum attenuation distance.
func (l *Light) SetRange(lightRange float32) {
	l.lightRange = lightRange
	l.publish()
}

// SetSpotCone sets the inner and outer cone half-angles for spot lights.
// Angles are specified in degrees and stored internally as cosines.
//
// Parameters:
//   - innerDeg: inner cone half-angle in degrees
//   - outerDeg: outer cone half-angle in degrees
func (l *Light) SetSpotCone(innerDeg, outerDeg float32) {
	l.innerCone = cosDeg(innerDeg)
	l.outerCone = cosDeg(outerDeg)
	l.publish()
}

// SetEnabled registers or unregisters the light from the scene root.
//
// Parameters:
//   - enabled: true to enable
func (l *Light) SetEnabled(enabled bool) {
	if l.enabled == enabled {
		return
	}
	l.enabled = enabled
	if target := l.Target(); target != nil {
		l.register(target.Root())
	}
}

func (l *Light) OnAttach(target scene.Node) error {
	container := target.Data()
	onWorld := func(e data.PropertyEvent) {
		if e.Name == transform.ModelToWorldMatrixProperty {
			l.publish()
		}
	}
	l.slots.Add(
		target.Added().Connect(func(scene.NodeEvent) { l.register(target.Root()) }),
		target.Removed().Connect(func(scene.NodeEvent) { l.register(target.Root()) }),
		container.PropertyChanged(transform.ModelToWorldMatrixProperty).Connect(func(data.PropertyEvent) { l.publish() }),
		container.PropertyAdded().Connect(onWorld),
		container.PropertyRemoved().Connect(onWorld),
	)
	l.publish()
	l.register(target.Root())
	return nil
}

func (l *Light) OnDetach(scene.Node) {
	l.slots.DisconnectAll()
	l.register(nil)
}

func (l *Light) OnClone() scene.Component {
	clone := &Light{
		lightType:  l.lightType,
		position:   l.position,
		direction:  l.direction,
		color:      l.color,
		intensity:  l.intensity,
		specular:   l.specular,
		lightRange: l.lightRange,
		innerCone:  l.innerCone,
		outerCone:  l.outerCone,
		enabled:    l.enabled,
		provider:   data.NewArrayProvider(l.lightType.ArrayName()),
		logger:     l.logger,
	}
	clone.publish()
	return clone
}

// register moves the provider into the container of root, or out of every container when
// root is nil or the light is disabled.
func (l *Light) register(root scene.Node) {
	if !l.enabled {
		root = nil
	}
	if root == l.root {
		return
	}
	if l.root != nil {
		if err := l.root.Data().RemoveProvider(l.provider); err != nil {
			l.logger.Error("light not unregistered", "root", l.root.Name(), "err", err)
		}
	}
	l.root = nil
	if root == nil {
		return
	}
	if err := root.Data().AddProvider(l.provider); err != nil {
		l.logger.Error("light not registered", "root", root.Name(), "err", err)
		return
	}
	l.root = root
}

// publish writes the world-space light entry.
func (l *Light) publish() {
	world := mgl32.Ident4()
	if target := l.Target(); target != nil {
		if m, err := data.Get[mgl32.Mat4](target.Data(), transform.ModelToWorldMatrixProperty); err == nil {
			world = m
		}
	}

	l.set(ColorProperty, data.ValueOf(l.color))
	if l.lightType == LightTypeAmbient {
		l.set(AmbientProperty, data.ValueOf(l.intensity))
		return
	}
	l.set(DiffuseProperty, data.ValueOf(l.intensity))
	l.set(SpecularProperty, data.ValueOf(l.specular))
	if l.lightType != LightTypePoint {
		dir := world.Mul4x1(l.direction.Vec4(0)).Vec3()
		if dir.Len() > 0 {
			dir = dir.Normalize()
		}
		l.set(DirectionProperty, data.ValueOf(dir))
	}
	if l.lightType == LightTypeDirectional {
		return
	}
	l.set(PositionProperty, data.ValueOf(mgl32.TransformCoordinate(l.position, world)))
	l.set(AttenuationDistanceProperty, data.ValueOf(l.lightRange))
	if l.lightType == LightTypeSpot {
		l.set(InnerConeProperty, data.ValueOf(l.innerCone))
		l.set(OuterConeProperty, data.ValueOf(l.outerCone))
	}
}

func (l *Light) set(name string, v data.Value) {
	if err := l.provider.SetValue(name, v); err != nil {
		l.logger.Error("light property not published", "property", name, "err", err)
	}
}
