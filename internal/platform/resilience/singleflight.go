package resilience

import (
	"context"
	"sync"
)

// SingleFlight collapses concurrent calls sharing a key into one execution.
type SingleFlight[T any] struct {
	mu    sync.Mutex
	calls map[string]*flightCall[T]
}

type flightCall[T any] struct {
	done   chan struct{}
	val    T
	err    error
	dups   int
	shared bool
}

// Do runs fn once per key among overlapping callers. Each caller stops
// waiting when its own ctx ends; fn keeps running for the others, so fn must
// not depend on any single caller's context. shared reports whether the
// result was produced for another caller too.
func (g *SingleFlight[T]) Do(ctx context.Context, key string, fn func() (T, error)) (val T, err error, shared bool) {
	g.mu.Lock()
	if g.calls == nil {
		g.calls = make(map[string]*flightCall[T])
	}

	c, joined := g.calls[key]
	if joined {
		c.dups++
	} else {
		c = &flightCall[T]{done: make(chan struct{})}
		g.calls[key] = c
		go g.run(key, c, fn)
	}
	g.mu.Unlock()

	select {
	case <-c.done:
		return c.val, c.err, joined || c.shared
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err(), joined
	}
}

func (g *SingleFlight[T]) run(key string, c *flightCall[T], fn func() (T, error)) {
	c.val, c.err = fn()

	g.mu.Lock()
	delete(g.calls, key)
	c.shared = c.dups > 0
	g.mu.Unlock()
	close(c.done)
}
