package cell

import "github.com/AnatoleLucet/cell/internal"

type Owner struct {
	owner *internal.Owner
}

// NewOwner creates a new reactive owner.
// An owner manages the lifecycle of reactive nodes created within its
// context. Created at the top level it is a detached root; created inside
// another owner it is disposed with its parent.
func NewOwner() *Owner {
	return &Owner{
		internal.GetRuntime().NewOwner(),
	}
}

// Run a function within the context of this owner.
// Each reactive node created within the function will be a child of this
// owner, and will be disposed when Dispose is called on this owner.
func (o *Owner) Run(fn func() error) error {
	var err error
	o.owner.Run(func() {
		err = fn()
	})
	return err
}

// Dispose this owner and all its children. Children die first, most
// recent first; the owner's own disposers then run in reverse
// registration order.
func (o *Owner) Dispose() { o.owner.Dispose() }

// OnCleanup adds a function to be called once when the owner is disposed.
func (o *Owner) OnCleanup(fn func()) { o.owner.OnCleanup(fn) }

// OnDispose adds a function to be called when the owner is disposed.
func (o *Owner) OnDispose(fn func()) { o.owner.OnCleanup(fn) }

// OnError adds a function to be called when a panic occurs within this
// owner. If no error listener is registered, the panic will propagate as
// usual.
func (o *Owner) OnError(fn func(any)) { o.owner.OnError(fn) }
