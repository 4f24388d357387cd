package internal

type EffectType int

const (
	// EffectRender is the extension point DOM-adapter-style collaborators
	// would schedule bindings under, so they flush before user effects
	// within the same tick.
	EffectRender EffectType = iota
	EffectUser
)

type Effect struct {
	*Computed

	typ EffectType
}

// NewEffect wires an effect on top of a Computed: an effect is just a
// computed whose value is an optional cleanup function, recomputed through
// the same height-ordered flush as any other computed but queued into the
// effect queue (run after every computed has settled for this tick) rather
// than recomputed inline.
func (r *Runtime) NewEffect(typ EffectType, effect func() func()) *Effect {
	c := r.NewComputed(func(*Computed) any {
		return effect()
	})
	compute := c.fn

	e := &Effect{
		Computed: c,
		typ:      typ,
	}
	e.fn = func() {
		rt := GetRuntime()
		rt.effectQueue.Enqueue(typ, func() {
			if e.disposed {
				Log().Warn("reactive: skipping re-run of disposed effect", "error", ErrDisposedAccess)
				return
			}

			defer func() {
				if p := recover(); p != nil {
					Log().Error("reactive: effect panicked", "panic", p)
				}
			}()

			if cleanup, ok := e.Value().(func()); ok && cleanup != nil {
				cleanup()
			}

			rt.tracker.RunWithComputation(c, compute)
		})
	}

	e.OnDispose(func() {
		if cleanup, ok := e.Value().(func()); ok && cleanup != nil {
			cleanup()
		}
	})

	return e
}
