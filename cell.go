// Package cell is a fine-grained reactive runtime: signals, memos, async
// memos and effects connected by an acyclic dependency graph. Writes mark
// descendants without recomputing; reads validate lazily; loading and
// error are first-class channels next to the value.
package cell

import "github.com/AnatoleLucet/cell/internal"

func as[T any](v any) T {
	if v == nil {
		var zero T
		return zero
	}

	return v.(T)
}

type Signal[T any] struct {
	cell *internal.Cell
}

// NewSignal creates your tipical read/write signal.
func NewSignal[T any](initial T, opts ...Option[T]) *Signal[T] {
	c := internal.GetRuntime().NewCell(initial)
	applyOptions(c, opts)
	return &Signal[T]{c}
}

// Read the current value of the signal, tracking the dependency if within
// a reactive context. Panics with the stored payload when the signal holds
// an error (after WriteFuture rejection).
func (s *Signal[T]) Read() T {
	return as[T](s.cell.Read())
}

// Write a new value to the signal, triggering updates to any dependents.
func (s *Signal[T]) Write(v T) {
	s.cell.Write(v)
}

// WriteFuture puts the signal in the loading state until f settles. A
// later write or future supersedes f; its resolution is then ignored.
func (s *Signal[T]) WriteFuture(f *Future[T]) {
	if f == nil {
		return
	}
	s.cell.Write(f.inner)
}

// Loading reports whether the signal's value depends on an unresolved
// future, tracking the loading channel only.
func (s *Signal[T]) Loading() bool {
	return s.cell.ReadLoading()
}

// Error reports whether the signal holds an error payload, tracking the
// error channel only.
func (s *Signal[T]) Error() bool {
	return s.cell.ReadError()
}

// Wait is Read, except a loading signal aborts the enclosing computation
// until the pending future settles. Only meaningful inside a computation.
func (s *Signal[T]) Wait() T {
	return as[T](s.cell.Wait())
}

// Dispose unlinks the signal from the graph. Further reads panic.
func (s *Signal[T]) Dispose() {
	s.cell.Dispose()
}

type Computed[T any] struct {
	cell *internal.Cell
}

// NewComputed creates a computed signal that derives its value from other
// signals (its a memo). The computation runs lazily: creation marks it
// dirty and the first read evaluates it.
func NewComputed[T any](compute func() T, opts ...Option[T]) *Computed[T] {
	c := internal.GetRuntime().NewComputed(func(any) any {
		return compute()
	})
	applyOptions(c, opts)
	return &Computed[T]{c}
}

// NewReducer is NewComputed with the previous value passed to the
// computation, seeded with initial on the first run.
func NewReducer[T any](initial T, compute func(prev T) T, opts ...Option[T]) *Computed[T] {
	first := true
	c := internal.GetRuntime().NewComputed(func(prev any) any {
		if first {
			first = false
			return compute(initial)
		}
		return compute(as[T](prev))
	})
	applyOptions(c, opts)
	return &Computed[T]{c}
}

// Read the current value of the computed signal, tracking the dependency
// if within a reactive context. Panics with the payload of a computation
// that panicked; the error is latched until an input change recomputes.
func (c *Computed[T]) Read() T {
	return as[T](c.cell.Read())
}

// Loading reports whether any transitive source is loading.
func (c *Computed[T]) Loading() bool {
	return c.cell.ReadLoading()
}

// Error reports whether the last computation panicked.
func (c *Computed[T]) Error() bool {
	return c.cell.ReadError()
}

// Wait is Read, except a loading computed aborts the enclosing computation.
func (c *Computed[T]) Wait() T {
	return as[T](c.cell.Wait())
}

// Dispose unlinks the computed from the graph. Further reads panic.
func (c *Computed[T]) Dispose() {
	c.cell.Dispose()
}

type AsyncComputed[T any] struct {
	cell *internal.Cell
}

// NewAsyncComputed creates a computed whose computation yields a future.
// The cell reports loading until the most recently returned future
// settles; superseded futures resolve into the void.
func NewAsyncComputed[T any](compute func() *Future[T], opts ...Option[T]) *AsyncComputed[T] {
	c := internal.GetRuntime().NewComputed(func(any) any {
		f := compute()
		if f == nil {
			return nil
		}
		return f.inner
	})
	applyOptions(c, opts)
	return &AsyncComputed[T]{c}
}

// Read returns the last settled value, the zero value while the first
// future is still pending. Panics with the rejection payload on error.
func (c *AsyncComputed[T]) Read() T {
	return as[T](c.cell.Read())
}

// Loading reports whether the current future is still pending.
func (c *AsyncComputed[T]) Loading() bool {
	return c.cell.ReadLoading()
}

// Error reports whether the current future was rejected.
func (c *AsyncComputed[T]) Error() bool {
	return c.cell.ReadError()
}

// Wait is Read, except a pending future aborts the enclosing computation;
// settling reruns it.
func (c *AsyncComputed[T]) Wait() T {
	return as[T](c.cell.Wait())
}

// Dispose unlinks the async computed. The in-flight future, if any, is
// orphaned: its resolution is ignored.
func (c *AsyncComputed[T]) Dispose() {
	c.cell.Dispose()
}

// NewBatch batches multiple signal writes into a single update cycle,
// instead of triggering updates after each write.
func NewBatch(fn func()) {
	internal.GetRuntime().Batch(fn)
}

// FlushSync drains the effect queue synchronously. It is a no-op while a
// flush is already running.
func FlushSync() {
	internal.GetRuntime().FlushSync()
}

// Untrack runs the given function without tracking any reactive
// dependencies. The current owner is retained.
func Untrack[T any](fn func() T) T {
	var result T
	internal.GetRuntime().Untracked(func() { result = fn() })
	return result
}

// IsPending reports whether fn aborted on a loading source via Wait.
// Any other panic propagates.
func IsPending(fn func()) bool {
	pending := false

	func() {
		defer func() {
			if r := recover(); r != nil {
				if !internal.IsNotReady(r) {
					panic(r)
				}
				pending = true
			}
		}()

		fn()
	}()

	return pending
}

// OnCleanup registers a function to be called when the current owner is
// disposed. Without a current owner the function is dropped.
func OnCleanup(fn func()) {
	internal.GetRuntime().OnCleanup(fn)
}

// CatchError runs fn under a fresh owner whose error handler is handler.
// Panics raised by fn itself and by effects created inside it route to
// handler; computeds latch their panics into their error channel instead.
// A handler that panics forwards to the next outer one.
func CatchError(fn func(), handler func(err any)) {
	o := NewOwner()
	o.OnError(handler)
	o.Run(func() error {
		fn()
		return nil
	})
}
