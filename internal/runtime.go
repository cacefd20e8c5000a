package internal

import "sync"

// Runtime owns every piece of process-wide engine state for one goroutine:
// the current owner and observer, the source scratch buffer, the effect
// queue, and the mailbox for foreign-goroutine future resolutions. All of
// it is mutated only by the owning goroutine; there is no locking on the
// graph itself.
type Runtime struct {
	gid int64

	owner    *Owner
	observer *Cell
	tracking bool

	// prefix-reuse scratch: while the observer's existing sources match
	// the reads in order, only the index advances and nothing allocates.
	newSources      []source
	newSourcesIndex int
	newLoadingState bool

	pendingEffects []*Cell

	flushing     bool
	batchDepth   int
	updateDepth  int
	computeDepth int

	mailboxMu sync.Mutex
	mailbox   []func()
}

func NewRuntime(gid int64) *Runtime {
	return &Runtime{
		gid:      gid,
		tracking: true,
	}
}

// CurrentOwner returns the owner of the evaluation in progress, if any.
func (r *Runtime) CurrentOwner() *Owner {
	return r.owner
}

// OnCleanup registers fn on the current owner; without one it is dropped.
func (r *Runtime) OnCleanup(fn func()) {
	if r.owner != nil {
		r.owner.OnCleanup(fn)
	}
}

// Untracked runs fn with the current observer cleared, so none of its reads
// are recorded. The owner stays. Computations evaluated inside fn still
// record their own sources.
func (r *Runtime) Untracked(fn func()) {
	prev := r.observer
	r.observer = nil
	defer func() { r.observer = prev }()

	fn()
}

// trackSource records a read against the current observer using the
// prefix-reuse buffer. Only the immediately previous entry is deduplicated.
func (r *Runtime) trackSource(s source) {
	o := r.observer
	if o == nil || !r.tracking {
		return
	}

	if r.newSources == nil {
		if r.newSourcesIndex > 0 && o.sources[r.newSourcesIndex-1] == s {
			return
		}
		if r.newSourcesIndex < len(o.sources) && o.sources[r.newSourcesIndex] == s {
			r.newSourcesIndex++
			return
		}
		r.newSources = append(r.newSources, s)
		return
	}

	if r.newSources[len(r.newSources)-1] != s {
		r.newSources = append(r.newSources, s)
	}
}

// markLoadingRead flags the enclosing computation as having read a loading
// source; validation folds it into the waiting bit.
func (r *Runtime) markLoadingRead() {
	if r.observer != nil && r.tracking {
		r.newLoadingState = true
	}
}

func (r *Runtime) enqueueEffect(c *Cell) {
	r.pendingEffects = append(r.pendingEffects, c)
}

// schedule flushes after a top-level mutation. Inside a batch, a flush, or
// an evaluation the pending effects wait for the outermost boundary.
func (r *Runtime) schedule() {
	if r.batchDepth > 0 || r.flushing || r.updateDepth > 0 {
		return
	}
	if len(r.pendingEffects) > 0 {
		r.FlushSync()
	}
}

// FlushSync drains the effect queue, ancestors first. Re-entrant calls are
// no-ops; effects enqueued by running effects drain in the same flush.
func (r *Runtime) FlushSync() {
	r.drainMailbox()

	if r.flushing {
		return
	}
	r.flushing = true
	defer func() { r.flushing = false }()

	cycles := 0
	for len(r.pendingEffects) > 0 {
		cycles++
		if cycles > 1e5 {
			panic("cell: possible infinite update loop detected")
		}

		queue := r.pendingEffects
		r.pendingEffects = nil

		traceFlush(len(queue))

		for _, e := range queue {
			if e.state == StateClean || e.state == StateDisposed {
				continue
			}
			r.runAncestorsFirst(e)
		}
	}
}

// runAncestorsFirst validates every non-clean computation on e's owner
// chain from the oldest down, so a parent effect reruns (and possibly
// disposes e) before e itself does.
func (r *Runtime) runAncestorsFirst(e *Cell) {
	var chain []*Cell
	for o := e.owner; o != nil; o = o.parent {
		if o.cell != nil && o.cell.state != StateClean && o.cell.state != StateDisposed {
			chain = append(chain, o.cell)
		}
	}

	for i := len(chain) - 1; i >= 0; i-- {
		c := chain[i]
		if c.state != StateClean && c.state != StateDisposed {
			c.updateIfNecessary()
		}
	}
}

// Batch coalesces writes: effects flush once at the outermost exit.
func (r *Runtime) Batch(fn func()) {
	r.drainMailbox()

	r.batchDepth++
	defer func() {
		r.batchDepth--
		r.schedule()
	}()

	fn()
}

// dispatch applies a mutation on the owning goroutine: immediately when
// called from it, through the mailbox otherwise.
func (r *Runtime) dispatch(fn func()) {
	if getGID() == r.gid {
		fn()
		return
	}

	r.mailboxMu.Lock()
	r.mailbox = append(r.mailbox, fn)
	r.mailboxMu.Unlock()
}

// drainMailbox applies foreign-goroutine resolutions. Runs at every entry
// point of the owning goroutine (write, flush, batch).
func (r *Runtime) drainMailbox() {
	r.mailboxMu.Lock()
	tasks := r.mailbox
	r.mailbox = nil
	r.mailboxMu.Unlock()

	for _, task := range tasks {
		task()
	}
}

// Context is an inheritable key on the owner tree. The key is the Context
// identity itself.
type Context struct {
	def any
}

func (r *Runtime) NewContext(initial any) *Context {
	return &Context{def: initial}
}

// Value returns the nearest value set on the current owner chain, or the
// context's initial value.
func (c *Context) Value() any {
	rt := GetRuntime()
	if rt.owner != nil {
		if v, ok := rt.owner.lookup(c); ok {
			return v
		}
	}
	return c.def
}

// Set binds the context on the current owner; without one it is dropped.
func (c *Context) Set(v any) {
	rt := GetRuntime()
	if rt.owner != nil {
		rt.owner.setContext(c, v)
	}
}
