package cow

import (
	"errors"
	"sync"
	"sync/atomic"

	log "github.com/schollz/logger"
)

// ErrConflict is returned by CompareAndCommit when another writer committed
// first.
var ErrConflict = errors.New("snapshot changed since it was read")

// Option configures a History.
type Option func(*options)

type options struct {
	limit int
}

// WithLimit caps the number of stored snapshots. The oldest are dropped first.
// Zero or negative means unbounded.
func WithLimit(n int) Option {
	return func(o *options) {
		o.limit = n
	}
}

// History is a linear undo/redo log of snapshots.
//
// Writers are serialized by a mutex. The snapshot at the cursor is also
// published atomically so Get never waits for a writer.
type History[T any] struct {
	mu      sync.Mutex
	entries []Cow[T]
	cursor  int
	limit   int

	current   atomic.Pointer[box[T]]
	conflicts atomic.Uint64
}

// NewHistory starts a log holding only initial.
func NewHistory[T any](initial T, opts ...Option) *History[T] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	h := &History[T]{limit: o.limit}
	h.entries = []Cow[T]{New(initial)}
	h.publishLocked()
	return h
}

func (h *History[T]) publishLocked() {
	b := h.entries[h.cursor].b
	b.frozen.Store(true)
	h.current.Store(b)
}

// Get returns a handle on the snapshot at the cursor.
func (h *History[T]) Get() Cow[T] {
	b := h.current.Load()
	b.refs.Add(1)
	return Cow[T]{b: b}
}

// Commit drops every redo entry, appends next and moves the cursor to it.
// The history takes ownership of next.
func (h *History[T]) Commit(next Cow[T]) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.commitLocked(next)
}

func (h *History[T]) commitLocked(next Cow[T]) {
	for i := h.cursor + 1; i < len(h.entries); i++ {
		h.entries[i].Release()
	}
	h.entries = append(h.entries[:h.cursor+1], next)
	h.cursor++
	if h.limit > 0 && len(h.entries) > h.limit {
		drop := len(h.entries) - h.limit
		for i := 0; i < drop; i++ {
			h.entries[i].Release()
		}
		h.entries = append(h.entries[:0], h.entries[drop:]...)
		h.cursor -= drop
	}
	h.publishLocked()
}

// CompareAndCommit commits next only if the snapshot at the cursor is still
// expected. On success the history owns next and the returned handle is the
// new current snapshot. On ErrConflict next stays with the caller and the
// returned handle is the snapshot that won.
func (h *History[T]) CompareAndCommit(expected, next Cow[T]) (Cow[T], error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.entries[h.cursor].PtrEq(expected) {
		return h.entries[h.cursor].Clone(), ErrConflict
	}
	h.commitLocked(next)
	return next.Clone(), nil
}

// CommitWith applies mutate to a copy of the current snapshot and commits it,
// retrying from the fresh snapshot while other writers win. mutate may run
// more than once and must not have side effects. An error from mutate aborts
// without committing.
func (h *History[T]) CommitWith(mutate func(*T) error) error {
	for {
		cur := h.Get()
		next := cur.Clone()
		if err := mutate(next.Mut()); err != nil {
			next.Release()
			cur.Release()
			return err
		}
		won, err := h.CompareAndCommit(cur, next)
		cur.Release()
		won.Release()
		if err == nil {
			return nil
		}
		next.Release()
		n := h.conflicts.Add(1)
		log.Debugf("commit conflict, retrying (total %d)", n)
	}
}

// Undo moves the cursor back one entry and reports whether it moved.
func (h *History[T]) Undo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cursor == 0 {
		return false
	}
	h.cursor--
	h.publishLocked()
	return true
}

// Redo moves the cursor forward one entry and reports whether it moved.
func (h *History[T]) Redo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cursor >= len(h.entries)-1 {
		return false
	}
	h.cursor++
	h.publishLocked()
	return true
}

// Len returns the number of stored snapshots.
func (h *History[T]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Cursor returns the position of the current snapshot.
func (h *History[T]) Cursor() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor
}

// Conflicts returns how many CommitWith attempts lost a race.
func (h *History[T]) Conflicts() uint64 {
	return h.conflicts.Load()
}
