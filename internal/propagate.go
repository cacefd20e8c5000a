package internal

// updateIfNecessary is the pull-validation pass. It settles the cell's
// state to CLEAN or DISPOSED and reports whether the cell is loading.
func (c *Cell) updateIfNecessary() bool {
	if c.state == StateDisposed {
		panic(ErrReadDisposed)
	}

	if c.state == StateCheck {
		anyLoading := false
		// indexed: disposals cascading out of a source's rerun may edit
		// the list under us
		for i := 0; i < len(c.sources); i++ {
			if c.state != StateCheck {
				// promoted to DIRTY by a source that changed, or
				// disposed by an ancestor's rerun
				break
			}
			if c.sources[i].updateIfNecessary() {
				anyLoading = true
			}
		}

		switch c.state {
		case StateCheck:
			c.setWaitingTo(anyLoading)
			c.state = StateClean
		case StateDisposed:
			return false
		}
	}

	if c.state == StateDirty {
		if c.compute != nil {
			c.rt.update(c)
		} else {
			c.state = StateClean
		}
	}

	return c.IsLoading()
}

// update reruns the computation: fresh scratch, children disposed, sources
// re-recorded with the prefix-reuse buffer, result written.
func (rt *Runtime) update(c *Cell) {
	traceUpdate(c)

	savedSources, savedIndex, savedLoading := rt.newSources, rt.newSourcesIndex, rt.newLoadingState
	savedObserver, savedOwner := rt.observer, rt.owner

	rt.updateDepth++

	// children die and cleanups run with tracking off: their reads must
	// not leak into the fresh source record
	rt.observer, rt.owner = nil, c.owner
	rt.newSources, rt.newSourcesIndex, rt.newLoadingState = nil, 0, false
	c.owner.reset()

	rt.observer = c
	if !c.isEffect {
		rt.computeDepth++
	}

	var result, caught any
	var panicked, notReady bool
	func() {
		defer func() {
			if r := recover(); r != nil {
				if IsNotReady(r) {
					notReady = true
				} else {
					caught = r
					panicked = true
				}
			}
		}()

		result = c.compute(c.value)
	}()

	if !c.isEffect {
		rt.computeDepth--
	}

	fresh, keep, loading := rt.newSources, rt.newSourcesIndex, rt.newLoadingState
	rt.observer, rt.owner = savedObserver, savedOwner
	rt.newSources, rt.newSourcesIndex, rt.newLoadingState = savedSources, savedIndex, savedLoading
	rt.updateDepth--

	if c.state == StateDisposed {
		// the computation disposed its own scope; nothing to commit
		return
	}

	c.commitSources(fresh, keep)
	c.state = StateClean

	switch {
	case panicked && c.isEffect:
		c.setWaitingTo(loading)
		HandleError(c.owner, caught)
	case panicked:
		c.applyError(caught)
		c.setWaitingTo(loading)
	case notReady:
		// aborted on a loading source: keep the previous value
		c.setWaitingTo(true)
	default:
		c.write(result)
		c.setWaitingTo(loading)
	}
}

// commitSources splices the freshly recorded reads after the retained
// prefix and fixes both directions of the edges. A run whose reads matched
// the old list exactly leaves the array untouched.
func (c *Cell) commitSources(fresh []source, keep int) {
	if keep > len(c.sources) {
		// a source registered this run was disposed before commit
		keep = len(c.sources)
	}
	if fresh == nil && keep == len(c.sources) {
		return
	}

	for i := keep; i < len(c.sources); i++ {
		c.sources[i].removeObserver(c)
	}
	c.sources = append(c.sources[:keep], fresh...)
	for _, s := range fresh {
		s.addObserver(c)
	}
}
