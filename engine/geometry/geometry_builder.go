package geometry

// GeometryBuilderOption is a function that configures a geometry instance during construction.
type GeometryBuilderOption func(*geometry)

// WithName is an option builder that sets the name of the geometry.
//
// Parameters:
//   - name: the identifier for the geometry
//
// Returns:
//   - GeometryBuilderOption: a function that applies the name option to a geometry
func WithName(name string) GeometryBuilderOption {
	return func(g *geometry) {
		g.name = name
	}
}

// WithLayout is an option builder that sets the interleaved vertex layout.
// The default is DefaultLayout.
//
// Parameters:
//   - layout: the attributes in vertex order
//
// Returns:
//   - GeometryBuilderOption: a function that applies the layout option to a geometry
func WithLayout(layout ...AttributeLayout) GeometryBuilderOption {
	return func(g *geometry) {
		g.layout = layout
	}
}
