package client

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestCoordinatorSingleFlight(t *testing.T) {
	t.Parallel()

	var performCalls int32
	release := make(chan struct{})
	rc := newRefreshCoordinator(func(ctx context.Context) (string, error) {
		atomic.AddInt32(&performCalls, 1)
		<-release
		return "t2", nil
	})

	const callers = 6
	var wg sync.WaitGroup
	tokens := make([]string, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tokens[i], errs[i] = rc.Refresh(context.Background())
		}(i)
	}

	// Let every caller reach the coordinator before the refresh settles.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := atomic.LoadInt32(&performCalls); n != 1 {
		t.Fatalf("perform called %d times, want 1", n)
	}
	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Errorf("caller %d: %v", i, errs[i])
		}
		if tokens[i] != "t2" {
			t.Errorf("caller %d got token %q", i, tokens[i])
		}
	}
}

func TestCoordinatorSharedFailure(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("refresh exploded")
	release := make(chan struct{})
	rc := newRefreshCoordinator(func(ctx context.Context) (string, error) {
		<-release
		return "", wantErr
	})

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = rc.Refresh(context.Background())
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i, err := range errs {
		if !errors.Is(err, wantErr) {
			t.Errorf("caller %d got %v, want shared refresh error", i, err)
		}
	}
}

func TestCoordinatorSequentialCyclesRunFreshRefresh(t *testing.T) {
	t.Parallel()

	var performCalls int32
	rc := newRefreshCoordinator(func(ctx context.Context) (string, error) {
		n := atomic.AddInt32(&performCalls, 1)
		if n == 1 {
			return "t2", nil
		}
		return "t3", nil
	})

	if token, err := rc.Refresh(context.Background()); err != nil || token != "t2" {
		t.Fatalf("first cycle: %q, %v", token, err)
	}
	if token, err := rc.Refresh(context.Background()); err != nil || token != "t3" {
		t.Fatalf("second cycle: %q, %v", token, err)
	}
	if n := atomic.LoadInt32(&performCalls); n != 2 {
		t.Errorf("perform called %d times, want 2", n)
	}
}

func TestCoordinatorWaiterHonorsContext(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	release := make(chan struct{})
	rc := newRefreshCoordinator(func(ctx context.Context) (string, error) {
		close(started)
		<-release
		return "t2", nil
	})

	go func() {
		_, _ = rc.Refresh(context.Background())
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := rc.Refresh(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled waiter got %v, want context.Canceled", err)
	}

	close(release)
}
