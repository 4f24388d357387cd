package internal

import "iter"

// SignalConfig carries the optional, debug-facing knobs a signal can be
// created with (name for diagnostics, a custom equality predicate gating
// Write). Both are optional; the zero value behaves like a plain signal.
type SignalConfig struct {
	Name  string
	Equal func(a, b any) bool
}

type Signal struct {
	value        any
	pendingValue *any // nil if no pending value

	height  int
	version Tick
	flags   NodeFlags

	name  string
	equal func(a, b any) bool

	subsHead *DependencyLink
}

func (r *Runtime) NewSignal(initial any, cfg ...SignalConfig) *Signal {
	s := &Signal{
		value: initial,
		equal: isEqual,
	}

	if len(cfg) > 0 {
		if cfg[0].Name != "" {
			s.name = cfg[0].Name
		}
		if cfg[0].Equal != nil {
			s.equal = cfg[0].Equal
		}
	}

	return s
}

func (s *Signal) Name() string { return s.name }

func (s *Signal) Read() any {
	r := GetRuntime()

	r.tracker.Track(s)

	return s.Value()
}

// Peek returns the current value without recording a dependency edge.
func (s *Signal) Peek() any {
	return s.Value()
}

func (s *Signal) Write(v any) {
	r := GetRuntime()

	if s.equal(s.Value(), v) {
		return
	}

	s.pendingValue = &v
	s.SetVersion(r.scheduler.Time())

	r.heap.InsertAll(s.Subs())
	r.Schedule()
}

func (s *Signal) Value() any {
	if s.pendingValue != nil {
		return *s.pendingValue
	}

	return s.value
}

// Commit applies the pending value to the signal.
func (s *Signal) Commit() {
	if s.pendingValue != nil {
		s.value = *s.pendingValue
		s.pendingValue = nil
	}
}

func (s *Signal) GetHeight() int    { return s.height }
func (s *Signal) SetHeight(h int)   { s.height = h }
func (s *Signal) GetVersion() Tick  { return s.version }
func (s *Signal) SetVersion(t Tick) { s.version = t }

func (n *Signal) HasFlag(flag NodeFlags) bool { return n.flags&flag != 0 }
func (n *Signal) AddFlag(flag NodeFlags)      { n.flags |= flag }
func (n *Signal) RemoveFlag(flag NodeFlags)   { n.flags &^= flag }

// Subs returns an iterator over all subscribers.
func (s *Signal) Subs() iter.Seq[*Computed] {
	return func(yield func(*Computed) bool) {
		link := s.subsHead
		for link != nil {
			if !yield(link.sub) {
				return
			}

			link = link.nextSub
		}
	}
}

func (s *Signal) addSubLink(link *DependencyLink) {
	if s.subsHead == nil {
		s.subsHead = link
		link.prevSub = link // loop to self
		link.nextSub = nil
	} else {
		tail := s.subsHead.prevSub
		tail.nextSub = link
		link.prevSub = tail
		link.nextSub = nil
		s.subsHead.prevSub = link
	}
}

func (s *Signal) removeSubLink(link *DependencyLink) {
	// single node
	if link.prevSub == link {
		s.subsHead = nil
		link.prevSub = nil
		link.nextSub = nil
		return
	}

	// multiple nodes
	if link == s.subsHead {
		s.subsHead = link.nextSub
	} else {
		link.prevSub.nextSub = link.nextSub
	}

	if link.nextSub != nil {
		link.nextSub.prevSub = link.prevSub
	} else {
		s.subsHead.prevSub = link.prevSub
	}

	link.prevSub = nil
	link.nextSub = nil
}

func isEqual(a, b any) bool {
	return a == b
}
