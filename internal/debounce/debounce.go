// Package debounce delays calls per key so that only the last call of a
// burst runs (trailing edge).
package debounce

import (
	"context"
	"sync"
	"time"
)

// Group debounces calls sharing a key. It is safe for concurrent use.
type Group struct {
	delay   time.Duration
	mu      sync.Mutex
	pending map[string]*call
}

type call struct {
	superseded chan struct{}
}

// New creates a group with a fixed delay. A non-positive delay disables
// debouncing.
func New(delay time.Duration) *Group {
	return &Group{
		delay:   delay,
		pending: make(map[string]*call),
	}
}

// Delay returns the configured delay
func (g *Group) Delay() time.Duration {
	return g.delay
}

// Do waits for the delay and runs fn, unless a newer call with the same key
// arrives first. It reports whether fn ran.
func (g *Group) Do(ctx context.Context, key string, fn func() error) (bool, error) {
	if g.delay <= 0 {
		return true, fn()
	}

	c := &call{superseded: make(chan struct{})}

	g.mu.Lock()
	if prev, ok := g.pending[key]; ok {
		close(prev.superseded)
	}
	g.pending[key] = c
	g.mu.Unlock()

	timer := time.NewTimer(g.delay)
	defer timer.Stop()

	select {
	case <-c.superseded:
		return false, nil
	case <-ctx.Done():
		g.forget(key, c)
		return false, ctx.Err()
	case <-timer.C:
	}

	g.forget(key, c)
	return true, fn()
}

// Pending returns the number of keys waiting for their delay
func (g *Group) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.pending)
}

func (g *Group) forget(key string, c *call) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending[key] == c {
		delete(g.pending, key)
	}
}
