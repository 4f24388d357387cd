package internal

// Context implements a reactive context cell: a value inherited down the
// owner tree, overridable per-branch via Set, read via Value (spec §3
// "Observer context ... binds named scopes for reactive operations invoked
// from non-effect code").
type Context struct {
	key     any
	initial any
}

func (r *Runtime) NewContext(initial any) *Context {
	return &Context{
		key:     new(byte), // unique identity per context instance
		initial: initial,
	}
}

// Value walks the active owner chain looking for the nearest Set value,
// falling back to the context's initial value if none is found (including
// when there is no active owner at all).
func (c *Context) Value() any {
	o := GetRuntime().CurrentOwner()
	for o != nil {
		if v, ok := o.context[c.key]; ok {
			return v
		}
		o = o.parent
	}

	return c.initial
}

// Set stores v in the currently active owner. A no-op outside any owner:
// there is nowhere to scope the value to.
func (c *Context) Set(v any) {
	o := GetRuntime().CurrentOwner()
	if o == nil {
		return
	}

	o.context[c.key] = v
}
