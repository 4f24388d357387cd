package internal

import "iter"

// computeState tracks a computed's validity: "clean", "dirty", or
// "computing" (mid-evaluation, used for cycle detection).
type computeState int

const (
	stateDirty computeState = iota
	stateComputing
	stateClean
)

type Computed struct {
	*Owner
	*Signal

	initialized bool
	state       computeState

	// called whenever the node has to recompute its value
	fn func()

	depsHead *DependencyLink

	compute func(*Computed) any

	// cycleErr is set (and the recompute aborted) if this computed is
	// re-entered while already computing.
	cycleErr error
}

func (r *Runtime) NewComputed(compute func(*Computed) any, cfg ...SignalConfig) *Computed {
	c := &Computed{
		Owner:  r.NewOwner(),
		Signal: r.NewSignal(nil, cfg...),

		compute: compute,
		state:   stateDirty,
	}
	c.fn = c.run

	c.OnDispose(func() {
		if c.depsHead != nil {
			r.heap.Remove(c)
			c.ClearDeps()
			c.RemoveFlag(FlagInHeap)
		}
	})

	r.recompute(c)

	return c
}

// Err returns the last ReactivityCycle error raised while recomputing, if
// any. A computed that has cycled through itself keeps returning this error
// until it is disposed and recreated.
func (c *Computed) Err() error { return c.cycleErr }

func (c *Computed) run() {
	if c.state == stateComputing {
		c.cycleErr = ErrReactivityCycle
		if !c.notifyError(ErrReactivityCycle) {
			Log().Error("reactive: reentrant computation, skipping recompute", "name", c.Name())
		}
		return
	}

	if c.initialized {
		c.resetRun()
	}
	c.initialized = true

	c.state = stateComputing
	value := c.compute(c)
	c.state = stateClean

	c.pendingValue = &value
}

// Link creates a bidirectional dependency link between this node (subscriber) and the given node (dependency).
func (c *Computed) Link(sub *Computed, dep *Signal) {
	// dont link if already present as the most recent dependency
	if sub.depsHead != nil {
		tail := sub.depsHead.prevDep
		if tail.dep == dep {
			return
		}
	}

	link := &DependencyLink{dep: dep, sub: sub}

	sub.addDepLink(link)
	dep.addSubLink(link)

	// Update subscriber height if needed
	if dep.height >= sub.height {
		sub.height = dep.height + 1
	}
}

// Deps returns an iterator over all dependencies.
func (c *Computed) Deps() iter.Seq[*Signal] {
	return func(yield func(*Signal) bool) {
		link := c.depsHead
		for link != nil {
			if !yield(link.dep) {
				return
			}

			link = link.nextDep
		}
	}
}

// ClearDeps removes all dependencies.
func (c *Computed) ClearDeps() {
	for link := c.depsHead; link != nil; {
		next := link.nextDep
		link.dep.removeSubLink(link)
		link = next
	}

	c.depsHead = nil
}

// MaxDepHeight returns the maximum height of the node's dependencies.
func (c *Computed) MaxDepHeight() int {
	maxHeight := 0
	for dep := range c.Deps() {
		if dep.height >= maxHeight {
			maxHeight = dep.height + 1
		}
	}

	return maxHeight
}

func (c *Computed) addDepLink(link *DependencyLink) {
	if c.depsHead == nil {
		c.depsHead = link
		link.prevDep = link // loop to self
		link.nextDep = nil
	} else {
		tail := c.depsHead.prevDep
		tail.nextDep = link
		link.prevDep = tail
		link.nextDep = nil
		c.depsHead.prevDep = link
	}
}
