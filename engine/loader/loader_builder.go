package loader

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*Loader)

// WithWorkers sets the number of worker goroutines.
//
// Parameters:
//   - n: the pool size, DefaultWorkers by default
//
// Returns:
//   - LoaderBuilderOption: a function that applies the workers option to a loader
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *Loader) {
		l.workers = n
	}
}

// WithQueueSize sets how many jobs can wait for a worker before a load call blocks.
func WithQueueSize(n int) LoaderBuilderOption {
	return func(l *Loader) {
		l.queueSize = n
	}
}

// WithMaxTextureSize scales down decoded images whose width or height exceeds size.
//
// Parameters:
//   - size: the largest texture side in pixels, 0 to keep every image as is
//
// Returns:
//   - LoaderBuilderOption: a function that applies the texture size option to a loader
func WithMaxTextureSize(size int) LoaderBuilderOption {
	return func(l *Loader) {
		l.maxTextureSize = size
	}
}

// WithMipMapping controls whether loaded textures allocate a mip chain. On by default.
func WithMipMapping(enabled bool) LoaderBuilderOption {
	return func(l *Loader) {
		l.mipMapping = enabled
	}
}

// WithHotReload watches the directories of requested assets and reloads an asset when its
// file is written. Handlers receive the new value from Drain.
//
// Parameters:
//   - enabled: true to start a file watcher
//
// Returns:
//   - LoaderBuilderOption: a function that applies the hot reload option to a loader
func WithHotReload(enabled bool) LoaderBuilderOption {
	return func(l *Loader) {
		l.hotReload = enabled
	}
}
