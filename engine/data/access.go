package data

import "fmt"

// Getter is implemented by Provider and Container.
type Getter interface {
	Value(name string) (Value, error)
}

// Setter is implemented by Provider and Container.
type Setter interface {
	SetValue(name string, v Value) error
}

// Get reads name from g as T.
//
// Parameters:
//   - g: the provider or container to read from
//   - name: the property name
//
// Returns:
//   - T: the stored value
//   - error: ErrPropertyNotFound when absent, ErrTypeMismatch when the stored kind is not T
func Get[T Type](g Getter, name string) (T, error) {
	var zero T
	v, err := g.Value(name)
	if err != nil {
		return zero, err
	}
	t, ok := As[T](v)
	if !ok {
		return zero, fmt.Errorf("%q holds %s, want %s: %w", name, v.Kind(), kindOf(any(zero)), ErrTypeMismatch)
	}
	return t, nil
}

// Set writes v to name through s.
func Set[T Type](s Setter, name string, v T) error {
	return s.SetValue(name, ValueOf(v))
}
