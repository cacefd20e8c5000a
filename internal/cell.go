package internal

import (
	"reflect"
	"slices"
)

// source is anything an observer can depend on: cells and their loading and
// error side nodes.
type source interface {
	addObserver(o observer)
	removeObserver(o observer)

	// updateIfNecessary validates the source and reports whether it is
	// loading afterwards.
	updateIfNecessary() bool

	isLoading() bool
}

// observer is anything that depends on sources. Only cells observe.
type observer interface {
	notify(s State)
	setWaiting(b bool)
	dropSource(s source)
}

// Cell is the uniform reactive node: a leaf value when compute is nil, a
// memo or effect otherwise.
type Cell struct {
	rt *Runtime

	// Name labels the cell in trace output.
	Name string

	// Equals overrides the change check for writes. nil means identity.
	Equals func(prev, next any) bool

	// Always disables the change check entirely: every write notifies.
	Always bool

	value   any
	compute func(prev any) any

	// sources is ordered by read order of the last evaluation; observers
	// is an unordered back-edge set edited by swap-pop.
	sources   []source
	observers []observer

	state State
	flags Flags

	// pending is the most recently observed future; superseded futures
	// resolve into the void.
	pending *Future

	loading *sideNode
	errnode *sideNode

	// owner is the cell's own scope: children created during compute live
	// here and die before every rerun.
	owner *Owner

	isEffect bool
}

func (r *Runtime) newCell(compute func(prev any) any, isEffect bool) *Cell {
	c := &Cell{
		rt:       r,
		compute:  compute,
		isEffect: isEffect,
	}
	if compute != nil {
		c.state = StateDirty
	}

	c.owner = &Owner{cell: c}
	if r.owner != nil {
		r.owner.AddChild(c.owner)
	}

	return c
}

// NewCell creates a leaf cell holding initial.
func (r *Runtime) NewCell(initial any) *Cell {
	c := r.newCell(nil, false)
	c.value = initial
	return c
}

// NewComputed creates a derived cell. It is born dirty; the first read
// evaluates it.
func (r *Runtime) NewComputed(compute func(prev any) any) *Cell {
	return r.newCell(compute, false)
}

// NewEffect creates an effect cell and runs it once immediately.
func (r *Runtime) NewEffect(fn func(prev any) any) *Cell {
	c := r.newCell(fn, true)
	r.update(c)
	r.schedule()
	return c
}

// IsLoading reports whether the cell's value depends on an unresolved
// future, its own or an ancestor's.
func (c *Cell) IsLoading() bool {
	return c.flags.has(FlagAsync | FlagWaiting)
}

func (c *Cell) isLoading() bool { return c.IsLoading() }

// IsError reports whether the cell's value channel holds an error payload.
func (c *Cell) IsError() bool {
	return c.flags.has(FlagError)
}

// State exposes the propagation state, for tests and trace output.
func (c *Cell) State() State { return c.state }

// Owner returns the cell's own scope.
func (c *Cell) Owner() *Owner { return c.owner }

// Read validates the cell, records the dependency, and returns the value.
// It panics with the stored payload when the cell is errored and with
// ErrReadDisposed when it is disposed.
func (c *Cell) Read() any {
	if c.state == StateDisposed {
		panic(ErrReadDisposed)
	}

	rt := GetRuntime()
	if rt != c.rt {
		// foreign-goroutine read: last committed value, no tracking
		if c.flags.has(FlagError) {
			panic(c.value)
		}
		return c.value
	}

	if c.compute != nil {
		c.updateIfNecessary()
	}

	rt.trackSource(c)
	if c.IsLoading() {
		rt.markLoadingRead()
	}
	if c.flags.has(FlagError) {
		panic(c.value)
	}
	return c.value
}

// Wait is Read, except a loading cell aborts the enclosing computation with
// the not-ready sentinel and subscribes it to the loading channel so the
// resolution reruns it.
func (c *Cell) Wait() any {
	if c.state == StateDisposed {
		panic(ErrReadDisposed)
	}

	rt := GetRuntime()
	if rt != c.rt {
		if c.flags.has(FlagError) {
			panic(c.value)
		}
		return c.value
	}

	if c.compute != nil {
		c.updateIfNecessary()
	}

	rt.trackSource(c)
	if c.IsLoading() {
		rt.trackSource(c.loadingChannel())
		rt.markLoadingRead()
		panic(errNotReady)
	}
	if c.flags.has(FlagError) {
		panic(c.value)
	}
	return c.value
}

// ReadLoading validates the cell and returns its loading bit, registering a
// dependency on the loading channel only. Errors do not propagate here.
func (c *Cell) ReadLoading() bool {
	if c.state == StateDisposed {
		panic(ErrReadDisposed)
	}

	rt := GetRuntime()
	if rt != c.rt {
		return c.IsLoading()
	}

	if c.compute != nil {
		c.updateIfNecessary()
	}

	rt.trackSource(c.loadingChannel())
	return c.IsLoading()
}

// ReadError validates the cell and returns its error bit, registering a
// dependency on the error channel only.
func (c *Cell) ReadError() bool {
	if c.state == StateDisposed {
		panic(ErrReadDisposed)
	}

	rt := GetRuntime()
	if rt != c.rt {
		return c.IsError()
	}

	if c.compute != nil {
		c.updateIfNecessary()
	}

	rt.trackSource(c.errorChannel())
	return c.IsError()
}

// Write replaces the cell's value and propagates. Writing a *Future puts
// the cell in the loading state until that exact future settles.
func (c *Cell) Write(v any) {
	rt := c.rt
	rt.drainMailbox()

	if rt.computeDepth > 0 {
		panic(ErrWriteDuringCompute)
	}
	if c.state == StateDisposed {
		return
	}

	c.write(v)
	rt.schedule()
}

func (c *Cell) write(v any) {
	if f, ok := v.(*Future); ok && f != nil {
		c.writeFuture(f)
		return
	}

	wasLoading := c.IsLoading()
	c.pending = nil
	c.flags.clear(FlagAsync)

	hadError := c.flags.has(FlagError)
	changed := hadError || c.changed(c.value, v)

	if changed || c.isEffect {
		c.value = v
	}
	if hadError {
		c.flags.clear(FlagError)
	}

	if wasLoading && !c.IsLoading() {
		c.announceLoading(false)
	}
	if hadError {
		c.announceError()
	}

	traceWrite(c, changed)

	if changed && !c.isEffect {
		for _, o := range slices.Clone(c.observers) {
			o.notify(StateDirty)
		}
	}
}

func (c *Cell) writeFuture(f *Future) {
	if v, errv, failed, done := f.peek(); done {
		if failed {
			c.applyError(errv)
		} else {
			c.write(v)
		}
		return
	}

	wasLoading := c.IsLoading()
	c.pending = f
	c.flags.set(FlagAsync)

	f.onSettle(func(v, errv any, failed bool) {
		c.rt.dispatch(func() {
			if c.pending != f || c.state == StateDisposed {
				return
			}
			if failed {
				c.applyError(errv)
			} else {
				c.write(v)
			}
			c.rt.schedule()
		})
	})

	if !wasLoading {
		c.announceLoading(true)
	}
}

// applyError latches err into the value channel.
func (c *Cell) applyError(err any) {
	wasLoading := c.IsLoading()
	c.pending = nil
	c.flags.clear(FlagAsync)

	hadError := c.flags.has(FlagError)
	c.value = err
	c.flags.set(FlagError)

	if wasLoading && !c.IsLoading() {
		c.announceLoading(false)
	}
	if !hadError {
		c.announceError()
	}

	for _, o := range slices.Clone(c.observers) {
		o.notify(StateDirty)
	}
}

// changed applies the cell's change check to a candidate write.
func (c *Cell) changed(prev, next any) bool {
	if c.Always {
		return true
	}
	if c.Equals != nil {
		return !c.Equals(prev, next)
	}
	return !identical(prev, next)
}

// identical is identity equality made safe for uncomparable dynamic types,
// which always count as changed.
func identical(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}

// notify is the push-mark pass: monotone state promotion, no evaluation.
func (c *Cell) notify(s State) {
	if c.state == StateDisposed || c.state >= s {
		return
	}

	wasClean := c.state == StateClean
	c.state = s

	if !wasClean {
		return
	}

	if c.isEffect {
		c.rt.enqueueEffect(c)
	}

	for _, o := range slices.Clone(c.observers) {
		o.notify(StateCheck)
	}
	if c.loading != nil {
		c.loading.notifyObservers(StateCheck)
	}
	if c.errnode != nil {
		c.errnode.notifyObservers(StateCheck)
	}
}

// setWaiting eagerly flips the waiting bit without scheduling a recompute.
func (c *Cell) setWaiting(b bool) {
	was := c.IsLoading()
	if b {
		c.flags.set(FlagWaiting)
	} else {
		c.flags.clear(FlagWaiting)
	}
	if now := c.IsLoading(); now != was {
		c.announceLoading(now)
	}
}

// setWaitingTo is setWaiting as used by validation: the recomputed
// aggregate replaces the bit wholesale.
func (c *Cell) setWaitingTo(b bool) { c.setWaiting(b) }

// announceLoading runs the two loading propagations: eagerly mark value
// observers waiting on the way up, lazily re-check them on the way down,
// and wake the loading channel's own observers either way.
func (c *Cell) announceLoading(now bool) {
	traceLoading(c, now)

	for _, o := range slices.Clone(c.observers) {
		if now {
			o.setWaiting(true)
		} else {
			o.notify(StateCheck)
		}
	}
	if c.loading != nil {
		c.loading.notifyObservers(StateDirty)
	}
}

// announceError wakes the error channel's observers on a transition of the
// error bit.
func (c *Cell) announceError() {
	if c.errnode != nil {
		c.errnode.notifyObservers(StateDirty)
	}
}

func (c *Cell) loadingChannel() *sideNode {
	if c.loading == nil {
		c.loading = &sideNode{origin: c}
	}
	return c.loading
}

func (c *Cell) errorChannel() *sideNode {
	if c.errnode == nil {
		c.errnode = &sideNode{origin: c}
	}
	return c.errnode
}

func (c *Cell) addObserver(o observer) {
	c.observers = append(c.observers, o)
}

// removeObserver swap-pops: observer order carries no meaning.
func (c *Cell) removeObserver(o observer) {
	for i, x := range c.observers {
		if x == o {
			last := len(c.observers) - 1
			c.observers[i] = c.observers[last]
			c.observers[last] = nil
			c.observers = c.observers[:last]
			return
		}
	}
}

// dropSource removes every occurrence of s from the ordered source list.
func (c *Cell) dropSource(s source) {
	kept := c.sources[:0]
	for _, x := range c.sources {
		if x != s {
			kept = append(kept, x)
		}
	}
	for i := len(kept); i < len(c.sources); i++ {
		c.sources[i] = nil
	}
	c.sources = kept
}

// Dispose tears down the cell and its scope.
func (c *Cell) Dispose() {
	c.owner.Dispose()
}

// teardown unlinks the cell from the graph in both directions.
func (c *Cell) teardown() {
	traceDispose(c)

	for _, s := range c.sources {
		if s != nil {
			s.removeObserver(c)
		}
	}
	c.sources = nil

	for _, o := range slices.Clone(c.observers) {
		o.dropSource(c)
	}
	c.observers = nil

	if c.loading != nil {
		c.loading.detach()
		c.loading = nil
	}
	if c.errnode != nil {
		c.errnode.detach()
		c.errnode = nil
	}

	c.pending = nil
	c.state = StateDisposed
}

func (c *Cell) label() string {
	if c.Name != "" {
		return c.Name
	}
	return "anonymous"
}
