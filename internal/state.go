package internal

// State is the propagation state of a reactive node.
type State uint8

const (
	// StateClean means the node's value is known current.
	StateClean State = iota
	// StateCheck means a transitive source may have changed.
	StateCheck
	// StateDirty means a direct source changed and the node must recompute.
	StateDirty
	// StateDisposed means the node was torn down; reads raise.
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateClean:
		return "clean"
	case StateCheck:
		return "check"
	case StateDirty:
		return "dirty"
	case StateDisposed:
		return "disposed"
	}
	return "unknown"
}

// Flags is the auxiliary state bitfield of a node, orthogonal to State.
type Flags uint8

const (
	// FlagError marks the node's value as an error payload.
	FlagError Flags = 1 << iota
	// FlagWaiting marks that at least one source is loading.
	FlagWaiting
	// FlagAsync marks that the node's own last write was a pending future.
	FlagAsync
)

// has checks if any of the given flags is set
func (f Flags) has(flag Flags) bool {
	return f&flag != 0
}

// set adds the given flags
func (f *Flags) set(flag Flags) {
	*f |= flag
}

// clear removes the given flags
func (f *Flags) clear(flag Flags) {
	*f &^= flag
}
