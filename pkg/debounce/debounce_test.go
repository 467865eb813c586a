package debounce

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestGroupRunsAfterDelay(t *testing.T) {
	group := NewGroup[string](5 * time.Millisecond)

	result, err := group.Do(context.Background(), "k", func(ctx context.Context) (string, error) {
		return "value", nil
	})
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if result != "value" {
		t.Fatalf("unexpected result %q", result)
	}
}

func TestGroupBurstRunsOnlyLatest(t *testing.T) {
	group := NewGroup[int](30 * time.Millisecond)

	var calls int32
	var wg sync.WaitGroup
	errs := make([]error, 3)
	results := make([]int, 3)

	for i := 0; i < 3; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = group.Do(context.Background(), "counter-1", func(ctx context.Context) (int, error) {
				atomic.AddInt32(&calls, 1)
				return i, nil
			})
		}()
		time.Sleep(5 * time.Millisecond)
	}
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected one execution for the burst, got %d", got)
	}
	superseded := 0
	for i := 0; i < 3; i++ {
		if errors.Is(errs[i], ErrSuperseded) {
			superseded++
			continue
		}
		if errs[i] != nil {
			t.Fatalf("call %d: unexpected error %v", i, errs[i])
		}
		if results[i] != i {
			t.Fatalf("call %d: unexpected result %d", i, results[i])
		}
	}
	if superseded != 2 {
		t.Fatalf("expected two superseded calls, got %d", superseded)
	}
}

func TestGroupDropsStaleInFlightResult(t *testing.T) {
	group := NewGroup[string](0)

	firstStarted := make(chan struct{})
	release := make(chan struct{})

	var firstErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, firstErr = group.Do(context.Background(), "k", func(ctx context.Context) (string, error) {
			close(firstStarted)
			<-release
			return "stale", nil
		})
	}()

	<-firstStarted
	result, err := group.Do(context.Background(), "k", func(ctx context.Context) (string, error) {
		return "fresh", nil
	})
	close(release)
	<-done

	if err != nil {
		t.Fatalf("latest call: %v", err)
	}
	if result != "fresh" {
		t.Fatalf("unexpected result %q", result)
	}
	if !errors.Is(firstErr, ErrSuperseded) {
		t.Fatalf("expected stale call to be superseded, got %v", firstErr)
	}
}

func TestGroupKeysAreIndependent(t *testing.T) {
	group := NewGroup[string](0)

	a, err := group.Do(context.Background(), "a", func(ctx context.Context) (string, error) {
		return "first", nil
	})
	if err != nil {
		t.Fatalf("key a: %v", err)
	}
	b, err := group.Do(context.Background(), "b", func(ctx context.Context) (string, error) {
		return "second", nil
	})
	if err != nil {
		t.Fatalf("key b: %v", err)
	}
	if a != "first" || b != "second" {
		t.Fatalf("unexpected results %q %q", a, b)
	}
}

func TestGroupCallerCancelSurfacesContextError(t *testing.T) {
	group := NewGroup[string](50 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	_, err := group.Do(ctx, "k", func(ctx context.Context) (string, error) {
		return "never", nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}

func TestGroupForgetCancelsPending(t *testing.T) {
	group := NewGroup[string](100 * time.Millisecond)

	done := make(chan error, 1)
	go func() {
		_, err := group.Do(context.Background(), "k", func(ctx context.Context) (string, error) {
			return "never", nil
		})
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	group.Forget("k")

	select {
	case err := <-done:
		if !errors.Is(err, ErrSuperseded) {
			t.Fatalf("expected superseded, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("forgotten call never returned")
	}
}
