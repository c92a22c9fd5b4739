package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestEntryExpired(t *testing.T) {
	start := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)
	e := Entry[int]{Value: 1, FetchedAt: start, TTL: 30 * time.Second}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"at fetch", start, false},
		{"just before expiry", start.Add(30*time.Second - time.Nanosecond), false},
		{"exactly at expiry", start.Add(30 * time.Second), true},
		{"after expiry", start.Add(time.Minute), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Expired(tt.now); got != tt.want {
				t.Errorf("Expired(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestLoader_CachesUntilExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)}
	var calls int32
	l := NewLoader(30*time.Second, func(ctx context.Context) (int, error) {
		return int(atomic.AddInt32(&calls, 1)), nil
	})
	l.SetClock(clock.Now)

	var hits, misses int
	l.Observe(func(hit bool) {
		if hit {
			hits++
		} else {
			misses++
		}
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		v, err := l.Get(ctx)
		if err != nil || v != 1 {
			t.Fatalf("get %d = %d, %v", i, v, err)
		}
		clock.Advance(10 * time.Second)
	}
	// 30s after the fetch the entry is stale.
	v, _ := l.Get(ctx)
	if v != 2 {
		t.Fatalf("expected reload at expiry, got %d", v)
	}
	if hits != 2 || misses != 2 {
		t.Fatalf("hits=%d misses=%d", hits, misses)
	}

	e, ok := l.peek()
	if !ok || e.Value != 2 || !e.FetchedAt.Equal(clock.Now()) {
		t.Fatalf("peek = %+v, %v", e, ok)
	}
}

func TestLoader_ErrorsAreNotCached(t *testing.T) {
	fail := true
	l := NewLoader(time.Minute, func(ctx context.Context) (string, error) {
		if fail {
			return "", errors.New("boom")
		}
		return "ok", nil
	})
	if _, err := l.Get(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if _, ok := l.peek(); ok {
		t.Fatal("failed load must not populate the cache")
	}
	fail = false
	if v, err := l.Get(context.Background()); err != nil || v != "ok" {
		t.Fatalf("retry = %q, %v", v, err)
	}
}

func TestLoader_ZeroTTLAlwaysLoads(t *testing.T) {
	var calls int
	l := NewLoader(0, func(ctx context.Context) (int, error) {
		calls++
		return calls, nil
	})
	l.Get(context.Background())
	l.Get(context.Background())
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}

func TestLoader_Invalidate(t *testing.T) {
	var calls int
	l := NewLoader(time.Hour, func(ctx context.Context) (int, error) {
		calls++
		return calls, nil
	})
	l.Get(context.Background())
	l.Invalidate()
	if v, _ := l.Get(context.Background()); v != 2 {
		t.Fatalf("expected reload after invalidate, got %d", v)
	}
}

func TestLoader_CollapsesConcurrentMisses(t *testing.T) {
	release := make(chan struct{})
	var calls int32
	l := NewLoader(time.Minute, func(ctx context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return 7, nil
	})

	const n = 8
	var wg sync.WaitGroup
	results := make([]int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = l.Get(context.Background())
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if c := atomic.LoadInt32(&calls); c != 1 {
		t.Fatalf("load called %d times, want 1", c)
	}
	for i, v := range results {
		if v != 7 {
			t.Fatalf("result[%d] = %d", i, v)
		}
	}
}
