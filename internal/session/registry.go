// README: In-memory per-caller session registry with idle eviction.
package session

import (
	"context"
	"sync"
	"time"
)

type entry[T any] struct {
	value    T
	lastSeen time.Time
}

// Registry hands out one value per session key, creating it on first use.
type Registry[T any] struct {
	newValue func() T
	now      func() time.Time

	mu      sync.Mutex
	entries map[string]*entry[T]
}

func NewRegistry[T any](newValue func() T) *Registry[T] {
	return &Registry[T]{newValue: newValue, now: time.Now, entries: map[string]*entry[T]{}}
}

// Get returns the value for key, creating it if needed, and marks it as used.
func (r *Registry[T]) Get(key string) T {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[key]
	if !ok {
		e = &entry[T]{value: r.newValue()}
		r.entries[key] = e
	}
	e.lastSeen = r.now()
	return e.value
}

// Lookup returns the value for key without creating one.
func (r *Registry[T]) Lookup(key string) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[key]
	if !ok {
		var zero T
		return zero, false
	}
	e.lastSeen = r.now()
	return e.value, true
}

func (r *Registry[T]) Drop(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, key)
}

func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep drops sessions idle for longer than maxIdle and reports how many went.
func (r *Registry[T]) Sweep(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-maxIdle)
	n := 0
	for k, e := range r.entries {
		if e.lastSeen.Before(cutoff) {
			delete(r.entries, k)
			n++
		}
	}
	return n
}

// RunJanitor sweeps on every tick until ctx is done.
func (r *Registry[T]) RunJanitor(ctx context.Context, tick, maxIdle time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(maxIdle)
		}
	}
}
