package render

type drawCallConfig struct {
	triggers []ZSortTrigger
}

// DrawCallBuilderOption is a functional option for configuring a DrawCall.
type DrawCallBuilderOption func(c *drawCallConfig)

// WithZSortTriggers replaces DefaultZSortTriggers.
//
// Parameters:
//   - triggers: the properties whose change invalidates the draw call depth
//
// Returns:
//   - DrawCallBuilderOption: option function to apply
func WithZSortTriggers(triggers []ZSortTrigger) DrawCallBuilderOption {
	return func(c *drawCallConfig) {
		c.triggers = triggers
	}
}
