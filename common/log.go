package common

import "log/slog"

// Logger returns the default slog logger tagged with the owning subsystem,
// e.g. Logger("Renderer") logs with logger=Renderer.
//
// Parameters:
//   - name: the subsystem tag attached to every record
//
// Returns:
//   - *slog.Logger: a child of slog.Default()
func Logger(name string) *slog.Logger {
	return slog.Default().With("logger", name)
}
