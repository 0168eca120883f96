package db

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestAcquireCollapsesConcurrentCallers(t *testing.T) {
	var dials int32
	handle := &Postgres{}
	cache := NewCache(func() (*Postgres, error) {
		atomic.AddInt32(&dials, 1)
		time.Sleep(20 * time.Millisecond)
		return handle, nil
	})

	const callers = 16
	results := make([]*Postgres, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = cache.Acquire(context.Background())
		}(i)
	}
	wg.Wait()

	if got := atomic.LoadInt32(&dials); got != 1 {
		t.Fatalf("expected exactly one establishment attempt, got %d", got)
	}
	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d failed: %v", i, errs[i])
		}
		if results[i] != handle {
			t.Fatalf("caller %d received a different handle", i)
		}
	}
}

func TestAcquireReturnsCachedHandleWithoutRedialing(t *testing.T) {
	var dials int32
	cache := NewCache(func() (*Postgres, error) {
		atomic.AddInt32(&dials, 1)
		return &Postgres{}, nil
	})

	first, err := cache.Acquire(context.Background())
	if err != nil {
		t.Fatalf("first acquire failed: %v", err)
	}
	second, err := cache.Acquire(context.Background())
	if err != nil {
		t.Fatalf("second acquire failed: %v", err)
	}
	if first != second {
		t.Fatal("expected the cached handle on the second acquire")
	}
	if got := atomic.LoadInt32(&dials); got != 1 {
		t.Fatalf("expected one dial, got %d", got)
	}
}

func TestAcquireRetriesAfterFailedEstablishment(t *testing.T) {
	dialErr := errors.New("connection refused")
	var dials int32
	cache := NewCache(func() (*Postgres, error) {
		if atomic.AddInt32(&dials, 1) == 1 {
			return nil, dialErr
		}
		return &Postgres{}, nil
	})

	if _, err := cache.Acquire(context.Background()); !errors.Is(err, dialErr) {
		t.Fatalf("expected dial error, got %v", err)
	}

	// The failed attempt must not stay cached.
	conn, err := cache.Acquire(context.Background())
	if err != nil {
		t.Fatalf("acquire after failure should retry, got %v", err)
	}
	if conn == nil {
		t.Fatal("expected an established handle after retry")
	}
	if got := atomic.LoadInt32(&dials); got != 2 {
		t.Fatalf("expected two dials, got %d", got)
	}
}

func TestAcquireHonorsContextCancellation(t *testing.T) {
	release := make(chan struct{})
	cache := NewCache(func() (*Postgres, error) {
		<-release
		return &Postgres{}, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := cache.Acquire(ctx)
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("acquire did not observe cancellation")
	}
	close(release)
}
