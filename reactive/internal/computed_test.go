package internal

import "testing"

// TestComputedReactivityCycle forces a reentrant run() call (the shape a
// dependency cycle produces through the heap-scheduled recompute path) and
// checks it is caught rather than recursing forever.
func TestComputedReactivityCycle(t *testing.T) {
	r := GetRuntime()

	entered := false
	c := r.NewComputed(func(self *Computed) any {
		if !entered {
			entered = true
			self.run()
		}
		return 42
	})

	if err := c.Err(); err != ErrReactivityCycle {
		t.Fatalf("expected ErrReactivityCycle, got %v", err)
	}

	if got := c.Signal.Value(); got != 42 {
		t.Fatalf("expected outer compute to still finish with 42, got %v", got)
	}
}
