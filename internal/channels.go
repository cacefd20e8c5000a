package internal

import "slices"

// sideNode gives a cell's loading and error projections their own source
// identity, so a consumer that only reads loading() is not invalidated by
// value changes and vice versa. The node holds no value of its own: the
// boolean always comes from the origin's flags.
type sideNode struct {
	origin    *Cell
	observers []observer
}

func (n *sideNode) addObserver(o observer) {
	n.observers = append(n.observers, o)
}

func (n *sideNode) removeObserver(o observer) {
	for i, x := range n.observers {
		if x == o {
			last := len(n.observers) - 1
			n.observers[i] = n.observers[last]
			n.observers[last] = nil
			n.observers = n.observers[:last]
			return
		}
	}
}

// updateIfNecessary validates the origin. A transition discovered during
// that validation notifies this node's observers dirty, promoting any
// in-flight pull past CHECK. The projection itself is never loading.
func (n *sideNode) updateIfNecessary() bool {
	if n.origin.state != StateDisposed && n.origin.compute != nil {
		n.origin.updateIfNecessary()
	}
	return false
}

func (n *sideNode) isLoading() bool { return false }

func (n *sideNode) notifyObservers(s State) {
	for _, o := range slices.Clone(n.observers) {
		o.notify(s)
	}
}

// detach drops the back-edges of remaining observers on origin disposal.
func (n *sideNode) detach() {
	for _, o := range slices.Clone(n.observers) {
		o.dropSource(n)
	}
	n.observers = nil
}
