package query

import "sync/atomic"

// VersionToken discriminates current vs stale async completions (spec §3
// "Version token", §9 "Async and cancellation"). One VersionToken backs
// one hook instance; Begin increments the live generation and returns a
// token snapshot, IfCurrent gates a callback to only run if no later
// Begin has happened since.
type VersionToken struct {
	generation atomic.Int64
}

// generationToken is the immutable snapshot Begin hands out.
type generationToken struct {
	owner      *VersionToken
	generation int64
}

// Begin starts a new generation, superseding any token returned by a
// previous Begin call.
func (v *VersionToken) Begin() *generationToken {
	gen := v.generation.Add(1)
	return &generationToken{owner: v, generation: gen}
}

// IsCurrent reports whether no later Begin has happened since this token
// was issued.
func (t *generationToken) IsCurrent() bool {
	return t.owner.generation.Load() == t.generation
}

// IfCurrent runs fn only if this token is still the live generation.
func (t *generationToken) IfCurrent(fn func()) {
	if t.IsCurrent() {
		fn()
	}
}
