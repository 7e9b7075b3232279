package gpu

import (
	"errors"
	"fmt"
)

// Resource is a GPU object whose backend handle lives while at least one owner holds it.
type Resource interface {
	// Acquire takes a reference, creating and uploading the backend object on the first one.
	Acquire(ctx Context) error

	// Release drops a reference, deleting the backend object with the last one.
	Release() error

	// Handle returns the backend handle, or InvalidHandle while no reference is held.
	Handle() Handle
}

// refCount tracks the handle and owner count shared by every resource kind.
type refCount struct {
	ctx    Context
	handle Handle
	refs   int
}

func newRefCount() refCount {
	return refCount{handle: InvalidHandle}
}

func (r *refCount) acquire(ctx Context, create func(Context) (Handle, error)) error {
	if ctx == nil {
		panic("gpu: nil context")
	}
	if r.refs > 0 {
		if r.ctx != ctx {
			return ErrContextMismatch
		}
		r.refs++
		return nil
	}
	h, err := create(ctx)
	if err != nil {
		return err
	}
	r.ctx, r.handle, r.refs = ctx, h, 1
	return nil
}

func (r *refCount) release(destroy func(Context, Handle) error) error {
	if r.refs == 0 {
		return ErrNotAcquired
	}
	r.refs--
	if r.refs > 0 {
		return nil
	}
	ctx, h := r.ctx, r.handle
	r.ctx, r.handle = nil, InvalidHandle
	return destroy(ctx, h)
}

// Refs returns the number of owners currently holding the resource.
func (r *refCount) Refs() int {
	return r.refs
}

// Handle returns the backend handle, or InvalidHandle while the resource is not acquired.
func (r *refCount) Handle() Handle {
	return r.handle
}

// ResourceSet records acquisitions so that they can be released together. It is used to
// make multi-resource builds all-or-nothing: on any failure the caller releases the set.
type ResourceSet struct {
	ctx      Context
	acquired []Resource
}

// NewResourceSet creates an empty set acquiring on ctx.
func NewResourceSet(ctx Context) *ResourceSet {
	if ctx == nil {
		panic("gpu: nil context")
	}
	return &ResourceSet{ctx: ctx}
}

// Acquire takes a reference on r and records it.
func (s *ResourceSet) Acquire(r Resource) error {
	if err := r.Acquire(s.ctx); err != nil {
		return err
	}
	s.acquired = append(s.acquired, r)
	return nil
}

// Contains reports whether r was acquired through the set.
func (s *ResourceSet) Contains(r Resource) bool {
	for _, a := range s.acquired {
		if a == r {
			return true
		}
	}
	return false
}

// Release releases the most recent recorded acquisition of r and forgets it.
func (s *ResourceSet) Release(r Resource) error {
	for i := len(s.acquired) - 1; i >= 0; i-- {
		if s.acquired[i] == r {
			s.acquired = append(s.acquired[:i], s.acquired[i+1:]...)
			return r.Release()
		}
	}
	return ErrNotAcquired
}

// Len returns the number of recorded acquisitions.
func (s *ResourceSet) Len() int {
	return len(s.acquired)
}

// ReleaseAll releases every recorded acquisition in reverse order and empties the set.
// Every release is attempted; the errors are joined.
func (s *ResourceSet) ReleaseAll() error {
	var errs []error
	for i := len(s.acquired) - 1; i >= 0; i-- {
		if err := s.acquired[i].Release(); err != nil {
			errs = append(errs, fmt.Errorf("release resource %d: %w", i, err))
		}
	}
	s.acquired = nil
	return errors.Join(errs...)
}
