package data

import "errors"

var (
	// ErrPropertyNotFound is returned when a name is not defined by a provider or container.
	ErrPropertyNotFound = errors.New("property not found")

	// ErrTypeMismatch is returned by Get when the requested type differs from the stored kind.
	ErrTypeMismatch = errors.New("property type mismatch")

	// ErrDuplicatePropertyName is returned when two providers of one container define the same name.
	ErrDuplicatePropertyName = errors.New("duplicate property name")

	// ErrProviderNotFound is returned when removing a provider a container does not hold.
	ErrProviderNotFound = errors.New("provider not found")

	// ErrArrayProviderShared is returned when an array provider is added to a second container.
	ErrArrayProviderShared = errors.New("array provider already belongs to a container")
)
