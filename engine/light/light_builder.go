package light

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// LightBuilderOption is a function that configures a Light instance during construction.
type LightBuilderOption func(*Light)

// WithPosition is an option builder that sets the position of the light relative to its node.
//
// Parameters:
//   - x: the x position component
//   - y: the y position component
//   - z: the z position component
//
// Returns:
//   - LightBuilderOption: a function that applies the position option to a Light
func WithPosition(x, y, z float32) LightBuilderOption {
	return func(l *Light) {
		l.position = mgl32.Vec3{x, y, z}
	}
}

// WithDirection is an option builder that sets the direction of the light.
// The direction is normalized before storing.
//
// Parameters:
//   - x: the x direction component
//   - y: the y direction component
//   - z: the z direction component
//
// Returns:
//   - LightBuilderOption: a function that applies the direction option to a Light
func WithDirection(x, y, z float32) LightBuilderOption {
	return func(l *Light) {
		l.direction = normalize3(x, y, z)
	}
}

// WithColor is an option builder that sets the RGB color of the light.
//
// Parameters:
//   - r: the red color component
//   - g: the green color component
//   - b: the blue color component
//
// Returns:
//   - LightBuilderOption: a function that applies the color option to a Light
func WithColor(r, g, b float32) LightBuilderOption {
	return func(l *Light) {
		l.color = mgl32.Vec3{r, g, b}
	}
}

// WithIntensity is an option builder that sets the ambient (ambient lights) or diffuse
// (other lights) intensity.
//
// Parameters:
//   - intensity: the intensity multiplier
//
// Returns:
//   - LightBuilderOption: a function that applies the intensity option to a Light
func WithIntensity(intensity float32) LightBuilderOption {
	return func(l *Light) {
		l.intensity = intensity
	}
}

// WithSpecular is an option builder that sets the specular intensity.
func WithSpecular(specular float32) LightBuilderOption {
	return func(l *Light) {
		l.specular = specular
	}
}

// WithRange is an option builder that sets the maximum attenuation distance for point and
// spot lights.
//
// Parameters:
//   - lightRange: the distance beyond which the light contributes nothing
//
// Returns:
//   - LightBuilderOption: a function that applies the range option to a Light
func WithRange(lightRange float32) LightBuilderOption {
	return func(l *Light) {
		l.lightRange = lightRange
	}
}

// WithSpotCone is an option builder that sets the inner and outer cone half-angles of a
// spot light. Angles are given in degrees and stored as cosines.
//
// Parameters:
//   - innerDeg: inner cone half-angle in degrees
//   - outerDeg: outer cone half-angle in degrees
//
// Returns:
//   - LightBuilderOption: a function that applies the cone option to a Light
func WithSpotCone(innerDeg, outerDeg float32) LightBuilderOption {
	return func(l *Light) {
		l.innerCone = cosDeg(innerDeg)
		l.outerCone = cosDeg(outerDeg)
	}
}

// WithEnabled is an option builder that sets whether the light starts registered.
func WithEnabled(enabled bool) LightBuilderOption {
	return func(l *Light) {
		l.enabled = enabled
	}
}

// normalize3 normalizes a 3-component vector. Returns a zero vector if the input
// has zero length.
func normalize3(x, y, z float32) mgl32.Vec3 {
	v := mgl32.Vec3{x, y, z}
	if v.Len() == 0 {
		return mgl32.Vec3{}
	}
	return v.Normalize()
}

// cosDeg converts an angle in degrees to the cosine of that angle in radians.
func cosDeg(deg float32) float32 {
	return math32.Cos(mgl32.DegToRad(deg))
}
