// Package locking provides cooperative per-key mutual exclusion. Operations
// queued on the same key run strictly in issue order; distinct keys run
// fully concurrently. The backing store offers no read-modify-write
// atomicity, so every read-modify-write span must run inside a lock scope.
package locking

import (
	"context"
	"slices"
	"sync"
)

// Registry serializes operations per lock key. The zero value is not usable;
// construct with NewRegistry.
type Registry struct {
	mu    sync.Mutex
	tails map[string]chan struct{}
}

// NewRegistry creates an empty lock registry.
func NewRegistry() *Registry {
	return &Registry{tails: make(map[string]chan struct{})}
}

// WithLock runs fn with exclusive logical ownership of key. Callers queued
// on the same key proceed in FIFO order. The lock is released whether fn
// succeeds or fails; a failed fn never blocks its successors. If ctx is
// cancelled while waiting, fn does not run and ctx.Err() is returned, but
// successors are still unblocked.
func (r *Registry) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	done := make(chan struct{})

	r.mu.Lock()
	prev := r.tails[key]
	r.tails[key] = done
	r.mu.Unlock()

	release := func() {
		close(done)
		r.mu.Lock()
		// Remove the entry only if no later caller replaced us as tail.
		if r.tails[key] == done {
			delete(r.tails, key)
		}
		r.mu.Unlock()
	}

	if prev != nil {
		select {
		case <-prev:
		case <-ctx.Done():
			// Hand the baton to our successor only once the predecessor is
			// finished, otherwise two operations could hold the key at once.
			go func() {
				<-prev
				release()
			}()
			return ctx.Err()
		}
	}

	defer release()
	return fn(ctx)
}

// WithLocks runs fn holding every given key. Keys are deduplicated and
// acquired in sorted order so that compound operations touching the same
// key set cannot deadlock against each other.
func (r *Registry) WithLocks(ctx context.Context, keys []string, fn func(ctx context.Context) error) error {
	ordered := slices.Clone(keys)
	slices.Sort(ordered)
	ordered = slices.Compact(ordered)

	var acquire func(i int, ctx context.Context) error
	acquire = func(i int, ctx context.Context) error {
		if i == len(ordered) {
			return fn(ctx)
		}
		return r.WithLock(ctx, ordered[i], func(ctx context.Context) error {
			return acquire(i+1, ctx)
		})
	}
	return acquire(0, ctx)
}

// pendingKeys reports how many keys currently have queued or running
// operations. Used by tests to verify entries do not leak.
func (r *Registry) pendingKeys() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tails)
}
