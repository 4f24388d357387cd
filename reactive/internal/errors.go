package internal

import "errors"

// ErrReactivityCycle is raised when a computed's recompute is re-entered
// while it is already mid-computation (spec §4.3(b): "a computed is never
// evaluated while marked computing"). Reading a computed from inside its
// own derivation does not raise it.
var ErrReactivityCycle = errors.New("reactivity cycle detected")

// ErrDisposedAccess is logged when a queued re-run of an already-disposed
// effect is skipped.
var ErrDisposedAccess = errors.New("operation on disposed reactive node")
