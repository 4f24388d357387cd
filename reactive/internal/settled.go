package internal

// SettledQueue holds one-shot callbacks waiting for a point in the flush
// cycle to be reached. Run fires and clears every registered callback;
// registering again after Run has fired starts a fresh batch.
type SettledQueue struct {
	callbacks []func()
}

func (q *SettledQueue) Add(fn func()) {
	q.callbacks = append(q.callbacks, fn)
}

func (q *SettledQueue) Run() {
	if len(q.callbacks) == 0 {
		return
	}

	callbacks := q.callbacks
	q.callbacks = nil

	for _, cb := range callbacks {
		cb()
	}
}
