package internal

// GetRuntime returns the calling goroutine's runtime, creating one on first
// use. Implemented per-build in runtime_default.go (keyed by goroutine id via
// petermattis/goid) and runtime_wasm.go (a single global runtime, since wasm
// is single-threaded and goid is unavailable there).

type Runtime struct {
	heap        *PriorityHeap
	tracker     *Tracker
	batcher     *Batcher
	scheduler   *Scheduler
	nodeQueue   *NodeQueue
	effectQueue *EffectQueue

	renderSettled *SettledQueue
	userSettled   *SettledQueue
	settled       *SettledQueue
}

func NewRuntime() *Runtime {
	return &Runtime{
		heap:        NewHeap(),
		tracker:     NewTracker(),
		batcher:     NewBatcher(),
		scheduler:   NewScheduler(),
		nodeQueue:   NewNodeQueue(),
		effectQueue: NewEffectQueue(),

		renderSettled: &SettledQueue{},
		userSettled:   &SettledQueue{},
		settled:       &SettledQueue{},
	}
}

func (r *Runtime) Schedule() {
	r.scheduler.Schedule()

	if !r.batcher.IsBatching() {
		r.Flush()
	}
}

// Flush drains every pending pass (signal commit, render effects, user
// effects), firing each settled tier as soon as its queue has actually run
// at least once this call. OnSettled only fires once the outermost Flush
// (the one that actually drove the scheduler's loop) has exhausted every
// cascaded pass; a reentrant Flush triggered from inside an effect is a
// no-op here and defers to the loop that is already running.
func (r *Runtime) Flush() {
	ran, _ := r.scheduler.Run(func() {
		r.heap.Drain(r.recompute)

		r.nodeQueue.Commit()

		r.effectQueue.RunEffects(EffectRender)
		r.renderSettled.Run()

		r.effectQueue.RunEffects(EffectUser)
		r.userSettled.Run()
	})

	if ran {
		r.settled.Run()
	}
}

func (r *Runtime) CurrentOwner() *Owner {
	return r.tracker.currentOwner
}

func (r *Runtime) CurrentComputation() *Computed {
	return r.tracker.currentComputation
}

func (r *Runtime) OnCleanup(fn func()) {
	owner := r.CurrentOwner()
	if owner != nil {
		owner.OnCleanup(fn)
	}
}

// Untrack runs fn without recording any dependency edges on signals it reads.
func (r *Runtime) Untrack(fn func()) {
	r.tracker.RunUntracked(fn)
}

// OnRenderSettled registers fn to run once the render-effect queue has next
// finished a pass.
func (r *Runtime) OnRenderSettled(fn func()) { r.renderSettled.Add(fn) }

// OnUserSettled registers fn to run once the user-effect queue has next
// finished a pass.
func (r *Runtime) OnUserSettled(fn func()) { r.userSettled.Add(fn) }

// OnSettled registers fn to run once the entire flush — including any
// cascaded writes effects make to other signals — has fully settled.
func (r *Runtime) OnSettled(fn func()) { r.settled.Add(fn) }

func (r *Runtime) recompute(node *Computed) {
	if node.fn == nil {
		return
	}

	node.DisposeChildren()

	node.ClearDeps()
	node.SetVersion(r.scheduler.Time())

	prev := node.Value()
	r.tracker.RunWithComputation(node, node.fn)

	// a recompute that leaves the value unchanged (by the node's equality
	// predicate) does not propagate; values the predicate cannot compare
	// count as changed
	unchanged := func() (same bool) {
		defer func() { _ = recover() }()
		return node.equal(prev, node.Value())
	}
	if node.subsHead != nil && unchanged() {
		return
	}

	r.heap.InsertAll(node.Subs())
}
