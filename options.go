package cell

import "github.com/AnatoleLucet/cell/internal"

// Option configures a cell at construction.
type Option[T any] func(c *internal.Cell)

// WithEquals replaces the identity change check. A write whose new value
// compares equal to the previous one does not notify observers.
func WithEquals[T any](equals func(prev, next T) bool) Option[T] {
	return func(c *internal.Cell) {
		c.Equals = func(prev, next any) bool {
			return equals(as[T](prev), as[T](next))
		}
	}
}

// AlwaysNotify disables the change check: every write notifies.
func AlwaysNotify[T any]() Option[T] {
	return func(c *internal.Cell) {
		c.Always = true
	}
}

// WithName labels the cell in trace output.
func WithName[T any](name string) Option[T] {
	return func(c *internal.Cell) {
		c.Name = name
	}
}

func applyOptions[T any](c *internal.Cell, opts []Option[T]) {
	for _, opt := range opts {
		opt(c)
	}
}
