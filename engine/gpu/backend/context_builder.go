package backend

// ContextBuilderOption is a functional option applied to a context during construction via NewContext.
type ContextBuilderOption func(*Context)

// WithPresentMode sets the initial presentation mode.
//
// Parameters:
//   - mode: PresentModeVSync (default) or PresentModeUncapped
//
// Returns:
//   - ContextBuilderOption: a function that applies the present mode option to a context
func WithPresentMode(mode PresentMode) ContextBuilderOption {
	return func(c *Context) {
		c.presentMode = wgpuPresentMode(mode)
	}
}

// WithMSAA sets the sample count of the color and depth targets.
//
// Parameters:
//   - count: the MSAA sample count, MSAA4x by default
//
// Returns:
//   - ContextBuilderOption: a function that applies the MSAA option to a context
func WithMSAA(count MSAASampleCount) ContextBuilderOption {
	return func(c *Context) {
		c.sampleCount = count
	}
}

// WithForceFallbackAdapter requests the software adapter.
func WithForceFallbackAdapter(force bool) ContextBuilderOption {
	return func(c *Context) {
		c.forceFallbackAdapter = force
	}
}

// WithUniformRingSize sets the per-frame uniform budget. Every draw takes at least 256 bytes.
//
// Parameters:
//   - size: the ring size in bytes, DefaultUniformRingSize by default
//
// Returns:
//   - ContextBuilderOption: a function that applies the ring size option to a context
func WithUniformRingSize(size uint64) ContextBuilderOption {
	return func(c *Context) {
		c.ringSize = size
	}
}
