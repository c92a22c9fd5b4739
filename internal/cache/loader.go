package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// LoadFunc fetches a fresh value.
type LoadFunc[T any] func(ctx context.Context) (T, error)

// Loader serves a single value, reloading it once the cached entry expires.
// Concurrent misses share one load. Failed loads are never cached.
type Loader[T any] struct {
	ttl  time.Duration
	load LoadFunc[T]

	mu      sync.Mutex
	entry   *Entry[T]
	now     func() time.Time
	observe func(hit bool)

	group singleflight.Group
}

// NewLoader returns a loader with the given lifetime. A zero ttl disables
// caching.
func NewLoader[T any](ttl time.Duration, load LoadFunc[T]) *Loader[T] {
	return &Loader[T]{ttl: ttl, load: load, now: time.Now}
}

// SetClock replaces the time source.
func (l *Loader[T]) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}

// Observe registers fn to be told whether each Get was served from cache.
func (l *Loader[T]) Observe(fn func(hit bool)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.observe = fn
}

// Get returns the cached value while fresh and loads it otherwise.
func (l *Loader[T]) Get(ctx context.Context) (T, error) {
	l.mu.Lock()
	entry, now, observe := l.entry, l.now(), l.observe
	l.mu.Unlock()

	if entry != nil && !entry.Expired(now) {
		if observe != nil {
			observe(true)
		}
		return entry.Value, nil
	}
	if observe != nil {
		observe(false)
	}

	v, err, _ := l.group.Do("load", func() (interface{}, error) {
		val, err := l.load(ctx)
		if err != nil {
			return val, err
		}
		l.mu.Lock()
		l.entry = &Entry[T]{Value: val, FetchedAt: l.now(), TTL: l.ttl}
		l.mu.Unlock()
		return val, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// peek returns the current entry, fresh or not, without loading.
func (l *Loader[T]) peek() (Entry[T], bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.entry == nil {
		return Entry[T]{}, false
	}
	return *l.entry, true
}

// Invalidate drops the cached entry.
func (l *Loader[T]) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entry = nil
}
