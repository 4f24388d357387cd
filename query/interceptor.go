package query

import "sync"

// Secondary handles an error raised by a primary interceptor, returning a
// replacement value (or re-raising by returning the same error).
type Secondary func(err error, value any) (any, error)

// Primary transforms value, returning an error to delegate to its pair's
// Secondary (if any) or propagate.
type Primary func(value any) (any, error)

type interceptorPair struct {
	id        int
	primary   Primary
	secondary Secondary
}

// Interceptors is the ordered, addressable pipeline spec §4.6/§6.7
// describes: request-transforming and response-transforming chains both
// use this same type, one instance each, per Client.
type Interceptors struct {
	mu     sync.Mutex
	nextID int
	pairs  []interceptorPair
}

// NewInterceptors creates an empty pipeline.
func NewInterceptors() *Interceptors {
	return &Interceptors{}
}

// Use appends {primary, secondary} to the pipeline, returning an id for
// later Eject. secondary may be nil.
func (p *Interceptors) Use(primary Primary, secondary Secondary) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.nextID++
	id := p.nextID
	p.pairs = append(p.pairs, interceptorPair{id: id, primary: primary, secondary: secondary})
	return id
}

// Eject removes the pair registered under id, if any.
func (p *Interceptors) Eject(id int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, pair := range p.pairs {
		if pair.id == id {
			p.pairs = append(p.pairs[:i], p.pairs[i+1:]...)
			return
		}
	}
}

// Clear removes every registered pair.
func (p *Interceptors) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pairs = nil
}

// Run feeds value through every primary in registration order. If a
// primary errors, its own pair's secondary handles it (producing a
// replacement value to continue with); with no secondary the error
// propagates immediately.
func (p *Interceptors) Run(value any) (any, error) {
	p.mu.Lock()
	pairs := make([]interceptorPair, len(p.pairs))
	copy(pairs, p.pairs)
	p.mu.Unlock()

	for _, pair := range pairs {
		next, err := pair.primary(value)
		if err != nil {
			if pair.secondary == nil {
				return nil, err
			}

			next, err = pair.secondary(err, value)
			if err != nil {
				return nil, err
			}
		}

		value = next
	}

	return value, nil
}
