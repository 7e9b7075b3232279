package render

import "errors"

var (
	// ErrUnresolvedBinding is returned when a required binding matches no property and has
	// no default. The pass is skipped until the name appears.
	ErrUnresolvedBinding = errors.New("unresolved binding")

	// ErrBindingType is returned when a bound property holds a value the input cannot use.
	ErrBindingType = errors.New("binding type mismatch")

	// ErrDrawCallDisposed is returned when using a disposed draw call.
	ErrDrawCallDisposed = errors.New("draw call disposed")

	// ErrDrawCallNotReady is returned when issuing a draw call without GPU resources.
	ErrDrawCallNotReady = errors.New("draw call not ready")
)

// IsBindingError reports whether err means the pass cannot bind rather than a GPU failure.
func IsBindingError(err error) bool {
	return errors.Is(err, ErrUnresolvedBinding) || errors.Is(err, ErrBindingType)
}
