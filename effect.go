package cell

import "github.com/AnatoleLucet/cell/internal"

type Effect struct {
	cell *internal.Cell
}

// NewEffect creates a reactive effect that runs the given function
// whenever its dependencies change. The first run happens immediately.
// Cleanups registered with OnCleanup inside fn run before each rerun and
// on disposal.
func NewEffect(fn func()) *Effect {
	c := internal.GetRuntime().NewEffect(func(any) any {
		fn()
		return nil
	})

	return &Effect{c}
}

// NewEffectWithCleanup is NewEffect for functions returning their cleanup.
func NewEffectWithCleanup(fn func() func()) *Effect {
	return NewEffect(func() {
		if cleanup := fn(); cleanup != nil {
			OnCleanup(cleanup)
		}
	})
}

// Dispose stops the effect, running its pending cleanups.
func (e *Effect) Dispose() {
	e.cell.Dispose()
}
