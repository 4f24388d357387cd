// Package reactive provides the fine-grained signal/computed/effect graph
// the rest of this module's query/subscription layer is built on: typed
// generic façades over an untyped, goroutine-scoped engine in
// reactive/internal.
package reactive

import (
	"github.com/pulsehq/pulse-core/reactive/internal"
)

// ReactivityCycle is returned by Computed.Err when a computed's recompute
// is re-entered while it is already mid-evaluation (a dependency cycle).
// Reading a computed from inside its own derivation is not detected as a
// cycle.
var ReactivityCycle = internal.ErrReactivityCycle

// DisposedAccess is the sentinel error logged when a queued re-run of an
// already-disposed effect is skipped; it is not returned from any public
// call, only ever surfaced through the process logger.
var DisposedAccess = internal.ErrDisposedAccess

func as[T any](v any) T {
	if v == nil {
		var zero T
		return zero
	}

	return v.(T)
}

// SignalOption configures a Signal at construction time.
type SignalOption[T any] func(*internal.SignalConfig)

// WithName attaches a diagnostic name to a signal, surfaced in logs when
// its computed derivations hit a reactivity cycle.
func WithName[T any](name string) SignalOption[T] {
	return func(cfg *internal.SignalConfig) { cfg.Name = name }
}

// WithEqual overrides the default identity comparison (==) used to decide
// whether a write actually changes the signal's value. Required for any T
// that is not comparable with ==, e.g. slices or maps.
func WithEqual[T any](equal func(a, b T) bool) SignalOption[T] {
	return func(cfg *internal.SignalConfig) {
		cfg.Equal = func(a, b any) bool { return equal(as[T](a), as[T](b)) }
	}
}

func buildConfig[T any](opts []SignalOption[T]) internal.SignalConfig {
	var cfg internal.SignalConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Signal is a mutable reactive cell: Read tracks a dependency edge on the
// currently running computation (if any); Write propagates to every
// dependent through the batch scheduler.
type Signal[T any] struct {
	signal *internal.Signal
}

// NewSignal creates a read/write signal holding initial.
func NewSignal[T any](initial T, opts ...SignalOption[T]) *Signal[T] {
	cfg := buildConfig(opts)
	return &Signal[T]{
		internal.GetRuntime().NewSignal(initial, cfg),
	}
}

// Read returns the current value, tracking a dependency if called from
// within a Computed or Effect body.
func (s *Signal[T]) Read() T {
	return as[T](s.signal.Read())
}

// Peek returns the current value without tracking a dependency, for reads
// that should not make the caller re-run when this signal changes.
func (s *Signal[T]) Peek() T {
	return as[T](s.signal.Peek())
}

// Write stores v, scheduling every dependent for recomputation unless v
// equals the current value (by == or the signal's WithEqual override).
func (s *Signal[T]) Write(v T) {
	s.signal.Write(v)
}

// Update reads the current value, applies fn, and writes the result back
// (equivalent to s.Write(fn(s.Peek()))).
func (s *Signal[T]) Update(fn func(T) T) {
	s.signal.Write(fn(as[T](s.signal.Peek())))
}

// Name returns the diagnostic name given via WithName, or "".
func (s *Signal[T]) Name() string { return s.signal.Name() }

// Computed is a read-only cell whose value is derived from other signals,
// recomputed automatically (in height order) whenever a dependency changes.
type Computed[T any] struct {
	computed *internal.Computed
}

// NewComputed derives a value from other signals/computeds read inside fn.
func NewComputed[T any](fn func() T, opts ...SignalOption[T]) *Computed[T] {
	cfg := buildConfig(opts)
	return &Computed[T]{
		internal.GetRuntime().NewComputed(func(*internal.Computed) any {
			return fn()
		}, cfg),
	}
}

// Read returns the current (possibly just-recomputed) value, tracking a
// dependency if called from within another Computed or Effect body.
func (c *Computed[T]) Read() T {
	return as[T](c.computed.Signal.Read())
}

// Peek returns the current value without tracking a dependency.
func (c *Computed[T]) Peek() T {
	return as[T](c.computed.Signal.Peek())
}

// Err returns the reactivity-cycle error from the last recompute attempt,
// if this computed was re-entered while already mid-evaluation.
func (c *Computed[T]) Err() error {
	return c.computed.Err()
}

// Dispose tears down this computed and everything nested inside its body
// (nested effects, OnCleanup callbacks), preventing further recomputation.
func (c *Computed[T]) Dispose() { c.computed.Dispose() }

// Effect is a reactive side effect: it re-runs (with a fresh disposal
// scope) whenever any signal read during its last run changes.
type Effect struct {
	effect *internal.Effect
}

// NewEffect runs fn immediately and re-runs it whenever a signal it read
// changes. The function fn may itself return nothing; use NewEffectCleanup
// for an effect that returns a teardown function run before each re-run
// and on disposal.
func NewEffect(fn func()) *Effect {
	return NewEffectCleanup(func() func() {
		fn()
		return nil
	})
}

// NewEffectCleanup is NewEffect with an explicit cleanup: the returned
// func(), if non-nil, runs immediately before the next re-run and on
// disposal.
func NewEffectCleanup(fn func() func()) *Effect {
	return &Effect{
		internal.GetRuntime().NewEffect(internal.EffectUser, fn),
	}
}

// NewRenderEffect is like NewEffect but queued in the render tier: render
// effects settle (and fire OnRenderSettled) before user effects in the
// same flush, the extension point a DOM-style adapter layer schedules its
// own bindings under (out of scope for this module itself).
func NewRenderEffect(fn func()) *Effect {
	return &Effect{
		internal.GetRuntime().NewEffect(internal.EffectRender, func() func() {
			fn()
			return nil
		}),
	}
}

// Dispose stops this effect from re-running and runs its last cleanup.
func (e *Effect) Dispose() { e.effect.Dispose() }

// Batch coalesces every signal write made inside fn into a single flush,
// instead of flushing after each write.
func Batch(fn func()) {
	internal.GetRuntime().NewBatch(fn)
}

// Untrack runs fn without recording dependency edges for any signal it
// reads, returning fn's result.
func Untrack[T any](fn func() T) T {
	var result T
	internal.GetRuntime().Untrack(func() { result = fn() })
	return result
}

// OnCleanup registers fn to run once, in reverse registration order, the
// next time the current owner (effect, computed, or explicit Owner) is
// disposed or re-run.
func OnCleanup(fn func()) {
	internal.GetRuntime().OnCleanup(fn)
}

// OnSettled registers fn to run once the entire flush in progress (or the
// next one, if none is in progress) has fully settled, including any
// writes effects make to other signals as a side effect.
func OnSettled(fn func()) {
	internal.GetRuntime().OnSettled(fn)
}

// OnUserSettled registers fn to run once the user-effect tier has next
// finished a pass, without waiting for any writes those effects cascade.
func OnUserSettled(fn func()) {
	internal.GetRuntime().OnUserSettled(fn)
}

// OnRenderSettled registers fn to run once the render-effect tier has next
// finished a pass, before user effects run for that same pass.
func OnRenderSettled(fn func()) {
	internal.GetRuntime().OnRenderSettled(fn)
}

// Context is a value inherited down the active Owner tree: Value returns
// the nearest enclosing Set, or initial if none is active.
type Context[T any] struct {
	ctx *internal.Context
}

// NewContext creates a context cell defaulting to initial.
func NewContext[T any](initial T) *Context[T] {
	return &Context[T]{
		internal.GetRuntime().NewContext(initial),
	}
}

// Value returns the value set by the nearest enclosing owner, or the
// context's default if no owner (or no owner in the chain) has set one.
func (c *Context[T]) Value() T {
	return as[T](c.ctx.Value())
}

// Set stores value in the currently active owner. A no-op outside any
// owner.
func (c *Context[T]) Set(value T) {
	c.ctx.Set(value)
}

// Owner is an explicit disposal scope: every signal-derived node created
// while it is the active owner (via Run) becomes its child, disposed
// transitively when Dispose is called.
type Owner struct {
	owner *internal.Owner
}

// NewOwner creates an owner parented to whichever owner is currently
// active, or a root owner if none is.
func NewOwner() *Owner {
	return &Owner{
		internal.GetRuntime().NewOwner(),
	}
}

// Run executes fn with this owner active, routing any panic to the OnError
// catchers of this owner or of its nearest ancestor that has any
// (re-panicking if none in the chain has one).
func (o *Owner) Run(fn func() error) error {
	var err error
	o.owner.Run(func() { err = fn() })
	return err
}

// Dispose tears down this owner and every descendant owner/effect/computed,
// running their cleanups in reverse registration order.
func (o *Owner) Dispose() { o.owner.Dispose() }

// OnCleanup registers fn to run once when this owner is disposed.
func (o *Owner) OnCleanup(fn func()) { o.owner.OnCleanup(fn) }

// OnDispose registers fn to run once when this owner is disposed, after
// every OnCleanup callback has run. It is the same disposal-hook
// registration Computed/Effect use internally; unlike OnCleanup, it never
// fires on an effect or computed re-run.
func (o *Owner) OnDispose(fn func()) { o.owner.OnDispose(fn) }

// OnError registers fn to catch any panic raised while this owner (or a
// descendant effect/computed) is running. Without a registered catcher the
// panic propagates as usual.
func (o *Owner) OnError(fn func(any)) { o.owner.OnError(fn) }
