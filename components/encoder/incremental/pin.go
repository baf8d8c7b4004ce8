package incremental

import (
	"context"
	"sync"
)

// BasicPin is a Pin whose level is driven in software, through Tick. It stands in for
// a board interrupt in simulations and tests.
type BasicPin struct {
	mu        sync.Mutex
	level     int64
	callbacks []chan Edge
}

var _ Pin = (*BasicPin)(nil)

// Value returns the current level.
func (p *BasicPin) Value(ctx context.Context) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level, nil
}

// Tick sets the level and delivers the edge to every callback. It blocks until each
// callback has received it, or ctx is done.
func (p *BasicPin) Tick(ctx context.Context, high bool, nanos uint64) error {
	p.mu.Lock()
	p.level = 0
	if high {
		p.level = 1
	}
	callbacks := append([]chan Edge(nil), p.callbacks...)
	p.mu.Unlock()

	edge := Edge{High: high, TimestampNanosec: nanos}
	for _, c := range callbacks {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c <- edge:
		}
	}
	return nil
}

// AddCallback adds a listener for edges.
func (p *BasicPin) AddCallback(ch chan Edge) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.callbacks = append(p.callbacks, ch)
}

// RemoveCallback removes a listener for edges.
func (p *BasicPin) RemoveCallback(ch chan Edge) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, c := range p.callbacks {
		if c == ch {
			p.callbacks = append(p.callbacks[:i], p.callbacks[i+1:]...)
			return
		}
	}
}
