package camera

import "github.com/go-gl/mathgl/mgl32"

// OrbitControllerOption is a functional option for configuring an OrbitController.
type OrbitControllerOption func(*OrbitController)

// WithRadius sets the initial orbit radius (distance from the pivot).
//
// Parameters:
//   - radius: distance from the orbit pivot
//
// Returns:
//   - OrbitControllerOption: functional option to set the radius
func WithRadius(radius float32) OrbitControllerOption {
	return func(cc *OrbitController) {
		cc.radius = radius
	}
}

// WithAzimuth sets the initial horizontal angle around the Y axis.
//
// Parameters:
//   - azimuth: horizontal angle in radians (0 = +Z axis)
//
// Returns:
//   - OrbitControllerOption: functional option to set the azimuth
func WithAzimuth(azimuth float32) OrbitControllerOption {
	return func(cc *OrbitController) {
		cc.azimuth = azimuth
	}
}

// WithElevation sets the initial vertical angle from the horizontal plane.
//
// Parameters:
//   - elevation: vertical angle in radians (0 = horizontal)
//
// Returns:
//   - OrbitControllerOption: functional option to set the elevation
func WithElevation(elevation float32) OrbitControllerOption {
	return func(cc *OrbitController) {
		cc.elevation = elevation
	}
}

// WithPivot sets the look-at point.
//
// Parameters:
//   - pivot: world-space coordinates of the pivot
//
// Returns:
//   - OrbitControllerOption: functional option to set the pivot
func WithPivot(pivot mgl32.Vec3) OrbitControllerOption {
	return func(cc *OrbitController) {
		cc.target = pivot
	}
}

// WithRadiusBounds sets the minimum and maximum orbit radius.
//
// Parameters:
//   - min: minimum zoom distance
//   - max: maximum zoom distance
//
// Returns:
//   - OrbitControllerOption: functional option to set radius bounds
func WithRadiusBounds(min, max float32) OrbitControllerOption {
	return func(cc *OrbitController) {
		cc.minRadius = min
		cc.maxRadius = max
	}
}

// WithElevationBounds sets the minimum and maximum elevation angles.
//
// Parameters:
//   - min: minimum elevation in radians
//   - max: maximum elevation in radians
//
// Returns:
//   - OrbitControllerOption: functional option to set elevation bounds
func WithElevationBounds(min, max float32) OrbitControllerOption {
	return func(cc *OrbitController) {
		cc.minElevation = min
		cc.maxElevation = max
	}
}

// WithOrbitSpeed sets the angular step of one orbit key press.
func WithOrbitSpeed(speed float32) OrbitControllerOption {
	return func(cc *OrbitController) {
		cc.orbitSpeed = speed
	}
}

// WithMouseSensitivity sets the radians per pixel used by Rotate.
func WithMouseSensitivity(sensitivity float32) OrbitControllerOption {
	return func(cc *OrbitController) {
		cc.mouseSensitivity = sensitivity
	}
}

// WithZoomSpeed sets the distance covered by one unit of Zoom.
func WithZoomSpeed(speed float32) OrbitControllerOption {
	return func(cc *OrbitController) {
		cc.zoomSpeed = speed
	}
}

// WithPanSpeed sets the distance covered by one unit of panning.
func WithPanSpeed(speed float32) OrbitControllerOption {
	return func(cc *OrbitController) {
		cc.panSpeed = speed
	}
}
