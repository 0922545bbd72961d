// Package cow provides a copy-on-write handle and a versioned undo/redo log
// built on it.
package cow

import "sync/atomic"

// Cloner is implemented by pointer types that know how to deep copy their
// value. Mut uses it when present; otherwise values are copied by assignment.
type Cloner[T any] interface {
	Clone() T
}

type box[T any] struct {
	value T
	refs  atomic.Int64
	// frozen boxes were published to a History and are never written again.
	frozen atomic.Bool
}

// Cow is a handle on a value that may be shared with other handles.
//
// Handles must be duplicated with Clone, not by assignment, so the share
// count stays accurate. A handle that is dropped without Release only costs
// an extra copy on the next Mut of a sibling.
type Cow[T any] struct {
	b *box[T]
}

// New wraps v in a uniquely owned handle.
func New[T any](v T) Cow[T] {
	b := &box[T]{value: v}
	b.refs.Store(1)
	return Cow[T]{b: b}
}

// Clone returns another handle on the same value.
func (c Cow[T]) Clone() Cow[T] {
	c.b.refs.Add(1)
	return Cow[T]{b: c.b}
}

// Get returns the value for reading. Callers must not write through it.
func (c Cow[T]) Get() *T {
	return &c.b.value
}

// Mut returns the value for writing, copying it first when other handles
// share it.
func (c *Cow[T]) Mut() *T {
	if c.b.refs.Load() == 1 && !c.b.frozen.Load() {
		return &c.b.value
	}
	next := &box[T]{value: copyValue(&c.b.value)}
	next.refs.Store(1)
	c.b.refs.Add(-1)
	c.b = next
	return &next.value
}

// Release gives up the handle. The handle must not be used afterwards.
func (c *Cow[T]) Release() {
	if c.b == nil {
		return
	}
	c.b.refs.Add(-1)
	c.b = nil
}

// PtrEq reports whether both handles share the same value.
func (c Cow[T]) PtrEq(o Cow[T]) bool {
	return c.b == o.b
}

// Valid reports whether the handle still refers to a value.
func (c Cow[T]) Valid() bool {
	return c.b != nil
}

func copyValue[T any](v *T) T {
	if cl, ok := any(v).(Cloner[T]); ok {
		return cl.Clone()
	}
	return *v
}
