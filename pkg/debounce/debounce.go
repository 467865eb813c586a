// Package debounce coalesces bursts of calls that share a key. Each new call
// for a key supersedes the previous one: a pending delay is abandoned and an
// in-flight function is cancelled through its context. Only the latest call
// for a key may return a result.
package debounce

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrSuperseded is returned to a caller whose invocation was replaced by a
// newer call for the same key.
var ErrSuperseded = errors.New("debounce: superseded by a newer call")

// Group debounces calls per key with a fixed delay.
type Group[T any] struct {
	delay   time.Duration
	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	seq    uint64
	cancel context.CancelFunc
}

// NewGroup builds a debounce group. A non-positive delay disables the wait but
// keeps the supersede semantics for in-flight calls.
func NewGroup[T any](delay time.Duration) *Group[T] {
	return &Group[T]{
		delay:   delay,
		entries: make(map[string]*entry),
	}
}

// Do waits out the group's delay and then runs fn, unless a newer Do call for
// the same key arrives first. A superseded call returns ErrSuperseded whether
// it was still waiting or already in flight; its fn context is cancelled so
// downstream work stops promptly.
func (g *Group[T]) Do(ctx context.Context, key string, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g.mu.Lock()
	e, ok := g.entries[key]
	if !ok {
		e = &entry{}
		g.entries[key] = e
	}
	if e.cancel != nil {
		e.cancel()
	}
	e.seq++
	seq := e.seq
	e.cancel = cancel
	g.mu.Unlock()

	if g.delay > 0 {
		timer := time.NewTimer(g.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-callCtx.Done():
			if ctx.Err() != nil {
				return zero, ctx.Err()
			}
			return zero, ErrSuperseded
		}
	}

	result, err := fn(callCtx)

	g.mu.Lock()
	latest := e.seq == seq
	if latest {
		e.cancel = nil
	}
	g.mu.Unlock()

	if !latest {
		return zero, ErrSuperseded
	}
	if err != nil {
		if ctx.Err() == nil && errors.Is(err, context.Canceled) {
			return zero, ErrSuperseded
		}
		return zero, err
	}
	return result, nil
}

// Forget drops any pending or in-flight call for the key and clears its
// sequence state. Used when the key's owner is torn down.
func (g *Group[T]) Forget(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if e, ok := g.entries[key]; ok {
		if e.cancel != nil {
			e.cancel()
		}
		e.seq++ // in-flight calls still hold this entry and must see themselves stale
		delete(g.entries, key)
	}
}
