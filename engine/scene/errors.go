package scene

import "errors"

var (
	// ErrCycle is returned when adding a node below itself or one of its descendants.
	ErrCycle = errors.New("node would become its own ancestor")

	// ErrNotChild is returned when removing a node that is not a direct child.
	ErrNotChild = errors.New("node is not a child")

	// ErrAlreadyAttached is returned when adding a component that already has a target.
	ErrAlreadyAttached = errors.New("component already attached")

	// ErrComponentNotFound is returned when removing a component the node does not hold.
	ErrComponentNotFound = errors.New("component not found")

	// ErrNotAttached is returned by operations that need the component to have a target.
	ErrNotAttached = errors.New("component not attached")
)
