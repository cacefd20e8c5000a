package cell

import "github.com/AnatoleLucet/cell/internal"

// Future is a write-once pending value, the unit of asynchrony the engine
// understands. Settling from another goroutine is safe: the update is
// handed to the owning runtime and applied at its next entry point
// (a write, batch, or FlushSync).
type Future[T any] struct {
	inner *internal.Future
}

// NewFuture creates an unsettled future.
func NewFuture[T any]() *Future[T] {
	return &Future[T]{internal.NewFuture()}
}

// Resolved creates a future already settled with v.
func Resolved[T any](v T) *Future[T] {
	f := NewFuture[T]()
	f.Resolve(v)
	return f
}

// Resolve settles the future with a value. Later settles are ignored.
func (f *Future[T]) Resolve(v T) {
	f.inner.Resolve(v)
}

// Reject settles the future with an error payload. Later settles are
// ignored. The payload surfaces through the error channel of whichever
// cell holds the future.
func (f *Future[T]) Reject(err any) {
	f.inner.Reject(err)
}
