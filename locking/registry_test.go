package locking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestWithLockRunsOperation(t *testing.T) {
	r := NewRegistry()
	ran := false
	err := r.WithLock(context.Background(), "prompts", func(ctx context.Context) error {
		ran = true
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ran {
		t.Fatal("operation did not run")
	}
}

func TestWithLockSerializesSameKey(t *testing.T) {
	r := NewRegistry()
	var mu sync.Mutex
	active := 0
	maxActive := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = r.WithLock(context.Background(), "prompts", func(ctx context.Context) error {
				mu.Lock()
				active++
				if active > maxActive {
					maxActive = active
				}
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				active--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	if maxActive != 1 {
		t.Fatalf("expected at most 1 concurrent holder, observed %d", maxActive)
	}
	if r.pendingKeys() != 0 {
		t.Fatalf("expected registry to drain, %d keys still registered", r.pendingKeys())
	}
}

func TestWithLockFIFOOrder(t *testing.T) {
	r := NewRegistry()
	var order []int
	var mu sync.Mutex

	// Hold the key so subsequent calls queue up in issue order.
	gate := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = r.WithLock(context.Background(), "k", func(ctx context.Context) error {
			close(started)
			<-gate
			return nil
		})
	}()
	<-started

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		i := i
		go func() {
			defer wg.Done()
			_ = r.WithLock(context.Background(), "k", func(ctx context.Context) error {
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
				return nil
			})
		}()
		// Give each call time to register itself as the new tail.
		time.Sleep(5 * time.Millisecond)
	}
	close(gate)
	wg.Wait()

	for i, got := range order {
		if got != i {
			t.Fatalf("expected FIFO order, got %v", order)
		}
	}
}

func TestWithLockFailureDoesNotPoisonQueue(t *testing.T) {
	r := NewRegistry()
	boom := errors.New("boom")

	if err := r.WithLock(context.Background(), "k", func(ctx context.Context) error {
		return boom
	}); !errors.Is(err, boom) {
		t.Fatalf("expected operation error to propagate, got %v", err)
	}

	ran := false
	if err := r.WithLock(context.Background(), "k", func(ctx context.Context) error {
		ran = true
		return nil
	}); err != nil {
		t.Fatalf("unexpected error after failed predecessor: %v", err)
	}
	if !ran {
		t.Fatal("queue was poisoned by the failed operation")
	}
	if r.pendingKeys() != 0 {
		t.Fatal("registry leaked entries")
	}
}

func TestWithLockDistinctKeysRunConcurrently(t *testing.T) {
	r := NewRegistry()
	aInside := make(chan struct{})
	bDone := make(chan struct{})

	go func() {
		_ = r.WithLock(context.Background(), "a", func(ctx context.Context) error {
			close(aInside)
			// Wait for a "b" operation to complete while "a" is held.
			select {
			case <-bDone:
				return nil
			case <-time.After(2 * time.Second):
				return errors.New("b never ran while a was held")
			}
		})
	}()

	<-aInside
	if err := r.WithLock(context.Background(), "b", func(ctx context.Context) error {
		return nil
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	close(bDone)
}

func TestWithLockCancelledWaiterUnblocksSuccessors(t *testing.T) {
	r := NewRegistry()
	gate := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = r.WithLock(context.Background(), "k", func(ctx context.Context) error {
			close(started)
			<-gate
			return nil
		})
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := r.WithLock(ctx, "k", func(ctx context.Context) error {
		t.Error("cancelled operation must not run")
		return nil
	}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- r.WithLock(context.Background(), "k", func(ctx context.Context) error {
			return nil
		})
	}()
	close(gate)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("successor failed: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("successor stayed blocked behind a cancelled waiter")
	}
}

func TestWithLocksAcquiresSortedOrder(t *testing.T) {
	r := NewRegistry()
	var held []string
	err := r.WithLocks(context.Background(), []string{"prompts", "categories", "prompts"}, func(ctx context.Context) error {
		held = append(held, "ran")
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(held) != 1 {
		t.Fatal("operation did not run exactly once")
	}
	if r.pendingKeys() != 0 {
		t.Fatal("registry leaked entries")
	}
}

func TestWithLocksExcludesSingleKeyHolders(t *testing.T) {
	r := NewRegistry()
	inside := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = r.WithLocks(context.Background(), []string{"categories", "prompts"}, func(ctx context.Context) error {
			close(inside)
			<-release
			return nil
		})
	}()
	<-inside

	promptsRan := make(chan struct{})
	go func() {
		_ = r.WithLock(context.Background(), "prompts", func(ctx context.Context) error {
			close(promptsRan)
			return nil
		})
	}()

	select {
	case <-promptsRan:
		t.Fatal("prompts lock was acquired while the compound operation held it")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-promptsRan:
	case <-time.After(2 * time.Second):
		t.Fatal("prompts operation never ran after compound release")
	}
}
